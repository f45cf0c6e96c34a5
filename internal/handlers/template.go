package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/boxhub-dev/boxhub/internal/models"
	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/boxhub-dev/boxhub/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TemplateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	WorkoutType string `json:"workout_type" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

type TemplateResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	WorkoutType string    `json:"workout_type"`
	Category    string    `json:"category"`
	TimesUsed   int       `json:"times_used"`
	CreatedAt   time.Time `json:"created_at"`
}

func templateResponse(template models.WorkoutTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          template.ID,
		Title:       template.Title,
		Description: template.Description,
		WorkoutType: template.WorkoutType,
		Category:    template.Category,
		TimesUsed:   template.TimesUsed,
		CreatedAt:   template.CreatedAt,
	}
}

func ListTemplates(ctx *gin.Context) {
	templates, err := store.ListTemplates()

	if err != nil {
		log.Printf("Failed to list templates: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve templates"})
		return
	}

	response := make([]TemplateResponse, 0, len(templates))

	for _, template := range templates {
		response = append(response, templateResponse(template))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateTemplate(ctx *gin.Context) {
	var req TemplateRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidTemplateCategory(req.Category) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	template, err := store.CreateTemplate(store.TemplateInput{
		Title:       req.Title,
		Description: req.Description,
		WorkoutType: req.WorkoutType,
		Category:    req.Category,
	})

	if err != nil {
		log.Printf("Failed to create template: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	ctx.JSON(http.StatusCreated, templateResponse(template))
}

func GetTemplate(ctx *gin.Context) {
	templateID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	template, err := store.GetTemplate(templateID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			log.Printf("Failed to fetch template %d: %v", templateID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve template"})
		}
		return
	}

	ctx.JSON(http.StatusOK, templateResponse(template))
}

func UpdateTemplate(ctx *gin.Context) {
	templateID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	var req TemplateRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.IsValidTemplateCategory(req.Category) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	template, err := store.UpdateTemplate(templateID, store.TemplateInput{
		Title:       req.Title,
		Description: req.Description,
		WorkoutType: req.WorkoutType,
		Category:    req.Category,
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			log.Printf("Failed to update template %d: %v", templateID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		}
		return
	}

	ctx.JSON(http.StatusOK, templateResponse(template))
}

func DeleteTemplate(ctx *gin.Context) {
	templateID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	if err := store.DeleteTemplate(templateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			log.Printf("Failed to delete template %d: %v", templateID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
