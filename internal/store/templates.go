package store

import (
	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"gorm.io/gorm"
)

type TemplateInput struct {
	Title       string
	Description string
	WorkoutType string
	Category    string
}

func CreateTemplate(in TemplateInput) (models.WorkoutTemplate, error) {
	template := models.WorkoutTemplate{
		Title:       in.Title,
		Description: in.Description,
		WorkoutType: in.WorkoutType,
		Category:    in.Category,
	}

	if err := db.DB.Create(&template).Error; err != nil {
		return models.WorkoutTemplate{}, err
	}

	return template, nil
}

func GetTemplate(id uint) (models.WorkoutTemplate, error) {
	var template models.WorkoutTemplate
	err := db.DB.First(&template, id).Error
	return template, err
}

func ListTemplates() ([]models.WorkoutTemplate, error) {
	var templates []models.WorkoutTemplate
	err := db.DB.Order("id ASC").Find(&templates).Error
	return templates, err
}

// UpdateTemplate replaces the descriptive fields. TimesUsed is not touched
// here; it only moves through CreateWorkout.
func UpdateTemplate(id uint, in TemplateInput) (models.WorkoutTemplate, error) {
	var template models.WorkoutTemplate

	if err := db.DB.First(&template, id).Error; err != nil {
		return models.WorkoutTemplate{}, err
	}

	template.Title = in.Title
	template.Description = in.Description
	template.WorkoutType = in.WorkoutType
	template.Category = in.Category

	if err := db.DB.Save(&template).Error; err != nil {
		return models.WorkoutTemplate{}, err
	}

	return template, nil
}

// DeleteTemplate removes the template and detaches any polls that pointed at
// it. Polls survive with a null template reference.
func DeleteTemplate(id uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var template models.WorkoutTemplate

		if err := tx.First(&template, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Poll{}).
			Where("template_id = ?", id).
			Update("template_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&template).Error
	})
}
