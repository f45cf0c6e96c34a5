package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/boxhub-dev/boxhub/internal/models"
	"github.com/boxhub-dev/boxhub/internal/notifier"
	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/boxhub-dev/boxhub/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateWorkoutRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	WorkoutType     string    `json:"workout_type" binding:"required"`
	Date            time.Time `json:"date" binding:"required"`
	MaxParticipants int       `json:"max_participants" binding:"required,min=1"`
	TemplateID      *uint     `json:"template_id"`
}

type UpdateWorkoutRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	WorkoutType     string    `json:"workout_type" binding:"required"`
	Date            time.Time `json:"date" binding:"required"`
	MaxParticipants int       `json:"max_participants" binding:"required,min=1"`
}

type ParticipantSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Attended bool   `json:"attended"`
}

type WorkoutResponse struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	WorkoutType      string               `json:"workout_type"`
	Date             time.Time            `json:"date"`
	MaxParticipants  int                  `json:"max_participants"`
	CreatedBy        uint                 `json:"created_by"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Sequence         int                  `json:"sequence"`
	Result           *string              `json:"result"`
	Rating           *int                 `json:"rating"`
	Participants     []ParticipantSummary `json:"participants"`
	ParticipantCount int                  `json:"participant_count"`
	IsRegistered     bool                 `json:"is_registered"`
}

func buildWorkoutResponse(workout models.Workout, currentUserID uint) (WorkoutResponse, error) {
	registrations, err := store.ListRegistrations(workout.ID)

	if err != nil {
		return WorkoutResponse{}, err
	}

	participants := make([]ParticipantSummary, 0, len(registrations))
	isRegistered := false

	for _, registration := range registrations {
		participants = append(participants, ParticipantSummary{
			ID:       registration.UserID,
			Name:     registration.User.Name,
			Attended: registration.Attended,
		})

		if registration.UserID == currentUserID {
			isRegistered = true
		}
	}

	return WorkoutResponse{
		ID:               workout.ID,
		Title:            workout.Title,
		Description:      workout.Description,
		WorkoutType:      workout.WorkoutType,
		Date:             workout.Date,
		MaxParticipants:  workout.MaxParticipants,
		CreatedBy:        workout.CreatedBy,
		CreatedAt:        workout.CreatedAt,
		UpdatedAt:        workout.UpdatedAt,
		Sequence:         workout.Sequence,
		Result:           workout.Result,
		Rating:           workout.Rating,
		Participants:     participants,
		ParticipantCount: len(participants),
		IsRegistered:     isRegistered,
	}, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}

	return uint(id), true
}

func ListWorkouts(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workouts, err := store.ListWorkouts()

	if err != nil {
		log.Printf("Failed to list workouts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workouts"})
		return
	}

	response := make([]WorkoutResponse, 0, len(workouts))

	for _, workout := range workouts {
		summary, err := buildWorkoutResponse(workout, userID)

		if err != nil {
			log.Printf("Failed to build summary for workout %d: %v", workout.ID, err)
			continue
		}

		response = append(response, summary)
	}

	ctx.JSON(http.StatusOK, response)
}

type TodayWorkoutResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	WorkoutType     string    `json:"workout_type"`
	Date            time.Time `json:"date"`
	MaxParticipants int       `json:"max_participants"`
	CreatedBy       uint      `json:"created_by"`
	CreatorName     string    `json:"creator_name"`
	RegisteredCount int64     `json:"registered_count"`
}

// TodaysWorkouts handles GET /workouts/today: the day's schedule enriched
// with the creator's name and the current registration count.
func TodaysWorkouts(ctx *gin.Context) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	workouts, err := store.ListWorkoutsByDateRange(start, end)

	if err != nil {
		log.Printf("Failed to list today's workouts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workouts"})
		return
	}

	response := make([]TodayWorkoutResponse, 0, len(workouts))

	for _, workout := range workouts {
		creatorName := "Unknown"

		if creator, err := store.GetUser(workout.CreatedBy); err == nil {
			creatorName = creator.Name
		}

		count, err := store.CountRegistrations(workout.ID)

		if err != nil {
			log.Printf("Failed to count registrations for workout %d: %v", workout.ID, err)
			continue
		}

		response = append(response, TodayWorkoutResponse{
			ID:              workout.ID,
			Title:           workout.Title,
			Description:     workout.Description,
			WorkoutType:     workout.WorkoutType,
			Date:            workout.Date,
			MaxParticipants: workout.MaxParticipants,
			CreatedBy:       workout.CreatedBy,
			CreatorName:     creatorName,
			RegisteredCount: count,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"workouts": response})
}

func CreateWorkout(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateWorkoutRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workout, err := store.CreateWorkout(store.WorkoutInput{
		Title:           req.Title,
		Description:     req.Description,
		WorkoutType:     req.WorkoutType,
		Date:            req.Date,
		MaxParticipants: req.MaxParticipants,
	}, currentUser.ID, req.TemplateID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		log.Printf("Failed to create workout: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workout"})
		return
	}

	notifier.WorkoutCreated(workout, notifier.Recipient{
		UserID: currentUser.ID,
		Email:  currentUser.Email,
		Name:   currentUser.Name,
	})

	response, err := buildWorkoutResponse(workout, currentUser.ID)

	if err != nil {
		log.Printf("Failed to build workout response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

func GetWorkout(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	workout, err := store.GetWorkout(workoutID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
		} else {
			log.Printf("Failed to fetch workout %d: %v", workoutID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workout"})
		}
		return
	}

	response, err := buildWorkoutResponse(workout, userID)

	if err != nil {
		log.Printf("Failed to build workout response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateWorkout(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req UpdateWorkoutRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workout, err := store.UpdateWorkout(workoutID, store.WorkoutInput{
		Title:           req.Title,
		Description:     req.Description,
		WorkoutType:     req.WorkoutType,
		Date:            req.Date,
		MaxParticipants: req.MaxParticipants,
	}, currentUser.ID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
		} else {
			log.Printf("Failed to update workout %d: %v", workoutID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workout"})
		}
		return
	}

	notifier.WorkoutUpdated(workout, registeredRecipients(workout.ID))

	response, err := buildWorkoutResponse(workout, currentUser.ID)

	if err != nil {
		log.Printf("Failed to build workout response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteWorkout(ctx *gin.Context) {
	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	workout, err := store.GetWorkout(workoutID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
		} else {
			log.Printf("Failed to fetch workout %d: %v", workoutID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workout"})
		}
		return
	}

	// Snapshot the attendee list before the cascade removes it; the
	// cancellation notice goes to everyone registered at deletion time.
	attendees := registeredRecipients(workout.ID)

	if err := store.DeleteWorkout(workoutID); err != nil {
		log.Printf("Failed to delete workout %d: %v", workoutID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workout"})
		return
	}

	notifier.WorkoutCancelled(workout, attendees)

	ctx.Status(http.StatusNoContent)
}

func registeredRecipients(workoutID uint) []notifier.Recipient {
	registrations, err := store.ListRegistrations(workoutID)

	if err != nil {
		log.Printf("Failed to list recipients for workout %d: %v", workoutID, err)
		return nil
	}

	recipients := make([]notifier.Recipient, 0, len(registrations))

	for _, registration := range registrations {
		recipients = append(recipients, notifier.Recipient{
			UserID: registration.UserID,
			Email:  registration.User.Email,
			Name:   registration.User.Name,
		})
	}

	return recipients
}
