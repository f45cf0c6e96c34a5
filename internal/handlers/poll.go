package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/boxhub-dev/boxhub/internal/models"
	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/boxhub-dev/boxhub/internal/types"
	"github.com/boxhub-dev/boxhub/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreatePollRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TemplateID  *uint  `json:"template_id"`
}

type UpdatePollRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreatePollOptionRequest struct {
	Date  time.Time `json:"date" binding:"required"`
	Label string    `json:"label"`
}

type VoteRequest struct {
	PollOptionID uint `json:"poll_option_id" binding:"required"`
}

type PollOptionResponse struct {
	ID        uint      `json:"id"`
	PollID    uint      `json:"poll_id"`
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	VoteCount int64     `json:"vote_count"`
	Voters    []string  `json:"voters"`
	CreatedAt time.Time `json:"created_at"`
}

type PollResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	TemplateID  *uint                `json:"template_id"`
	CreatedBy   uint                 `json:"created_by"`
	Status      string               `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	Options     []PollOptionResponse `json:"options"`
	TotalVoters int64                `json:"total_voters"`
	UserVotes   []uint               `json:"user_votes"`
}

func buildPollResponse(poll models.Poll, userID uint) (PollResponse, error) {
	tally, err := store.TallyPoll(poll.ID)

	if err != nil {
		return PollResponse{}, err
	}

	userVotes, err := store.GetUserVotesForPoll(poll.ID, userID)

	if err != nil {
		return PollResponse{}, err
	}

	options := make([]PollOptionResponse, 0, len(tally.Options))

	for _, optionTally := range tally.Options {
		options = append(options, PollOptionResponse{
			ID:        optionTally.Option.ID,
			PollID:    optionTally.Option.PollID,
			Date:      optionTally.Option.Date,
			Label:     optionTally.Option.Label,
			VoteCount: optionTally.VoteCount,
			Voters:    optionTally.Voters,
			CreatedAt: optionTally.Option.CreatedAt,
		})
	}

	if userVotes == nil {
		userVotes = []uint{}
	}

	return PollResponse{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		TemplateID:  poll.TemplateID,
		CreatedBy:   poll.CreatedBy,
		Status:      poll.Status,
		CreatedAt:   poll.CreatedAt,
		Options:     options,
		TotalVoters: tally.TotalVoters,
		UserVotes:   userVotes,
	}, nil
}

func ListPolls(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	polls, err := store.ListPolls()

	if err != nil {
		log.Printf("Failed to list polls: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}

	response := make([]PollResponse, 0, len(polls))

	for _, poll := range polls {
		summary, err := buildPollResponse(poll, userID)

		if err != nil {
			log.Printf("Failed to build summary for poll %d: %v", poll.ID, err)
			continue
		}

		response = append(response, summary)
	}

	ctx.JSON(http.StatusOK, response)
}

func CreatePoll(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePollRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.TemplateID != nil {
		if _, err := store.GetTemplate(*req.TemplateID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			} else {
				log.Printf("Failed to fetch template %d: %v", *req.TemplateID, err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
	}

	poll, err := store.CreatePoll(req.Title, req.Description, req.TemplateID, currentUser.ID)

	if err != nil {
		log.Printf("Failed to create poll: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create poll"})
		return
	}

	response, err := buildPollResponse(poll, currentUser.ID)

	if err != nil {
		log.Printf("Failed to build poll response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

func GetPoll(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pollID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	poll, err := store.GetPoll(pollID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		} else {
			log.Printf("Failed to fetch poll %d: %v", pollID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve poll"})
		}
		return
	}

	response, err := buildPollResponse(poll, userID)

	if err != nil {
		log.Printf("Failed to build poll response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdatePoll handles PUT /polls/:id. The only supported transition is
// active -> closed.
func UpdatePoll(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pollID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req UpdatePollRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Status != types.PollStatusClosed {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Polls can only be closed"})
		return
	}

	poll, err := store.ClosePoll(pollID)

	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		case errors.Is(err, store.ErrPollReopen):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Poll is already closed"})
		default:
			log.Printf("Failed to close poll %d: %v", pollID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update poll"})
		}
		return
	}

	response, err := buildPollResponse(poll, userID)

	if err != nil {
		log.Printf("Failed to build poll response: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	BroadcastPollTally(poll.ID)

	ctx.JSON(http.StatusOK, response)
}

func DeletePoll(ctx *gin.Context) {
	pollID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	if err := store.DeletePoll(pollID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		} else {
			log.Printf("Failed to delete poll %d: %v", pollID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete poll"})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func CreatePollOption(ctx *gin.Context) {
	pollID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req CreatePollOptionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	option, err := store.CreatePollOption(pollID, req.Date, req.Label)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		} else {
			log.Printf("Failed to create option for poll %d: %v", pollID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create option"})
		}
		return
	}

	BroadcastPollTally(pollID)

	ctx.JSON(http.StatusCreated, PollOptionResponse{
		ID:        option.ID,
		PollID:    option.PollID,
		Date:      option.Date,
		Label:     option.Label,
		VoteCount: 0,
		Voters:    []string{},
		CreatedAt: option.CreatedAt,
	})
}

func DeletePollOption(ctx *gin.Context) {
	pollID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	optionID, ok := parseIDParam(ctx, "option_id")

	if !ok {
		return
	}

	if err := store.DeletePollOption(pollID, optionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Option not found"})
		} else {
			log.Printf("Failed to delete option %d: %v", optionID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete option"})
		}
		return
	}

	BroadcastPollTally(pollID)

	ctx.Status(http.StatusNoContent)
}

// Vote handles POST /polls/vote. Voting twice for the same option is
// idempotent.
func Vote(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req VoteRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	vote, err := store.CastVote(req.PollOptionID, currentUser.ID)

	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Option not found"})
		case errors.Is(err, store.ErrPollClosed):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Poll is closed"})
		default:
			log.Printf("Failed to cast vote: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
		}
		return
	}

	if option, err := store.GetPollOption(req.PollOptionID); err == nil {
		BroadcastPollTally(option.PollID)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":             vote.ID,
		"poll_option_id": vote.PollOptionID,
		"user_id":        vote.UserID,
		"voted_at":       vote.CreatedAt,
	})
}

func Unvote(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req VoteRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	option, optionErr := store.GetPollOption(req.PollOptionID)

	if err := store.RemoveVote(req.PollOptionID, currentUser.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Vote not found"})
		} else {
			log.Printf("Failed to remove vote: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		}
		return
	}

	if optionErr == nil {
		BroadcastPollTally(option.PollID)
	}

	ctx.Status(http.StatusNoContent)
}
