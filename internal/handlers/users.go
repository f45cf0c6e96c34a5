package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/boxhub-dev/boxhub/internal/types"
	"github.com/boxhub-dev/boxhub/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func MyStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stats, err := store.GetUserStats(userID)

	if err != nil {
		log.Printf("Failed to compute stats for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

type MemberResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListMembers handles GET /users: the basic member list any authenticated
// user may see (attendance dropdowns and the like). The admin listing with
// flags and timestamps stays behind /admin/users.
func ListMembers(ctx *gin.Context) {
	users, err := store.ListUsers()

	if err != nil {
		log.Printf("Failed to list members: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]MemberResponse, 0, len(users))

	for _, user := range users {
		response = append(response, MemberResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"users": response})
}

func ListUsers(ctx *gin.Context) {
	users, err := store.ListUsers()

	if err != nil {
		log.Printf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]types.AdminUserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, types.AdminUserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			CreatedAt: user.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// DeleteUser handles DELETE /admin/users/:id. Admins cannot delete their own
// account.
func DeleteUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	if userID == currentUser.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	if err := store.DeleteUser(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to delete user %d: %v", userID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
