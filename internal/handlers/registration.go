package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/boxhub-dev/boxhub/internal/notifier"
	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/boxhub-dev/boxhub/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttendanceRequest struct {
	UserID   uint  `json:"user_id" binding:"required"`
	Attended *bool `json:"attended" binding:"required"`
}

type ResultRequest struct {
	Result string `json:"result" binding:"required"`
	Rating *int   `json:"rating" binding:"omitempty,min=1,max=5"`
}

// RegisterForWorkout handles POST /workouts/:id/register. Registering twice
// is a no-op that returns the existing registration.
func RegisterForWorkout(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	registration, err := store.RegisterForWorkout(workoutID, currentUser.ID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
			return
		}
		if errors.Is(err, store.ErrWorkoutFull) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Workout is at maximum capacity"})
			return
		}
		log.Printf("Failed to register for workout %d: %v", workoutID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	workout, err := store.GetWorkout(workoutID)

	if err == nil {
		notifier.WorkoutRegistered(workout, notifier.Recipient{
			UserID: currentUser.ID,
			Email:  currentUser.Email,
			Name:   currentUser.Name,
		})
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":            registration.ID,
		"workout_id":    registration.WorkoutID,
		"user_id":       registration.UserID,
		"attended":      registration.Attended,
		"registered_at": registration.CreatedAt,
	})
}

func UnregisterFromWorkout(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	if err := store.UnregisterFromWorkout(workoutID, currentUser.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		} else {
			log.Printf("Failed to unregister from workout %d: %v", workoutID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister"})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// MarkAttendance handles POST /workouts/:id/attendance. Admin only (enforced
// by route middleware); attendance can only be recorded for past workouts.
func MarkAttendance(ctx *gin.Context) {
	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req AttendanceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
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

	if workout.Date.After(time.Now()) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Attendance can only be marked for past workouts"})
		return
	}

	if err := store.MarkAttendance(workoutID, req.UserID, *req.Attended); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		} else {
			log.Printf("Failed to mark attendance for workout %d: %v", workoutID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark attendance"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Attendance updated"})
}

// SubmitResult handles POST /workouts/:id/result. Only participants may post
// a result, and only once the workout is over.
func SubmitResult(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workoutID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req ResultRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
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

	if _, err := store.GetRegistration(workoutID, currentUser.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only participants can submit results"})
		} else {
			log.Printf("Failed to fetch registration: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if workout.Date.After(time.Now()) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Results can only be submitted for past workouts"})
		return
	}

	workout, err = store.SetWorkoutResult(workoutID, req.Result, req.Rating)

	if err != nil {
		log.Printf("Failed to set result for workout %d: %v", workoutID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save result"})
		return
	}

	response, err := buildWorkoutResponse(workout, currentUser.ID)

	if err != nil {
		log.Printf("Failed to build workout response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
