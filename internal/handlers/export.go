package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/boxhub-dev/boxhub/internal/store"
	"github.com/gin-gonic/gin"
)

// ExportWorkoutsTxt handles GET /export/workouts-txt: a human-readable dump
// of every scheduled workout, past included, and the whole template archive.
// Not meant to be machine-parseable.
func ExportWorkoutsTxt(ctx *gin.Context) {
	workouts, err := store.ListWorkouts()

	if err != nil {
		log.Printf("Failed to list workouts for export: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}

	templates, err := store.ListTemplates()

	if err != nil {
		log.Printf("Failed to list templates for export: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}

	var b strings.Builder

	b.WriteString("SCHEDULED WORKOUTS\n")
	b.WriteString("==================\n\n")

	for _, workout := range workouts {
		count, err := store.CountRegistrations(workout.ID)

		if err != nil {
			log.Printf("Failed to count registrations for workout %d: %v", workout.ID, err)
			continue
		}

		fmt.Fprintf(&b, "%s - %s\n", workout.Date.Format("Mon, 02 Jan 2006 15:04"), workout.Title)
		fmt.Fprintf(&b, "  Type: %s\n", workout.WorkoutType)
		fmt.Fprintf(&b, "  Spots: %d/%d\n", count, workout.MaxParticipants)

		if workout.Description != "" {
			fmt.Fprintf(&b, "  %s\n", workout.Description)
		}

		b.WriteString("\n")
	}

	b.WriteString("WORKOUT ARCHIVE\n")
	b.WriteString("===============\n\n")

	for _, template := range templates {
		fmt.Fprintf(&b, "%s (%s)\n", template.Title, template.Category)
		fmt.Fprintf(&b, "  Type: %s, used %d times\n", template.WorkoutType, template.TimesUsed)

		if template.Description != "" {
			fmt.Fprintf(&b, "  %s\n", template.Description)
		}

		b.WriteString("\n")
	}

	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}
