package store

import (
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"gorm.io/gorm"
)

type WorkoutInput struct {
	Title           string
	Description     string
	WorkoutType     string
	Date            time.Time
	MaxParticipants int
}

// CreateWorkout creates a workout with sequence 0. When templateID is set the
// workout is an instantiation of an archive template and the template's
// times_used counter is bumped in the same transaction.
func CreateWorkout(in WorkoutInput, createdBy uint, templateID *uint) (models.Workout, error) {
	workout := models.Workout{
		Title:           in.Title,
		Description:     in.Description,
		WorkoutType:     in.WorkoutType,
		Date:            in.Date,
		MaxParticipants: in.MaxParticipants,
		CreatedBy:       createdBy,
		Sequence:        0,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if templateID != nil {
			result := tx.Model(&models.WorkoutTemplate{}).
				Where("id = ?", *templateID).
				UpdateColumn("times_used", gorm.Expr("times_used + 1"))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		return tx.Create(&workout).Error
	})

	if err != nil {
		return models.Workout{}, err
	}

	return workout, nil
}

func GetWorkout(id uint) (models.Workout, error) {
	var workout models.Workout
	err := db.DB.First(&workout, id).Error
	return workout, err
}

func ListWorkouts() ([]models.Workout, error) {
	var workouts []models.Workout
	err := db.DB.Order("date ASC").Find(&workouts).Error
	return workouts, err
}

// ListWorkoutsByDateRange returns workouts whose date falls inside the
// inclusive range, soonest first.
func ListWorkoutsByDateRange(start, end time.Time) ([]models.Workout, error) {
	var workouts []models.Workout
	err := db.DB.Where("date BETWEEN ? AND ?", start, end).
		Order("date ASC").
		Find(&workouts).Error
	return workouts, err
}

// UpdateWorkout applies the new fields, bumps the calendar sequence number
// and appends an edit-log row, all in one transaction.
func UpdateWorkout(id uint, in WorkoutInput, editorID uint) (models.Workout, error) {
	var workout models.Workout

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&workout, id).Error; err != nil {
			return err
		}

		workout.Title = in.Title
		workout.Description = in.Description
		workout.WorkoutType = in.WorkoutType
		workout.Date = in.Date
		workout.MaxParticipants = in.MaxParticipants
		workout.Sequence++

		if err := tx.Save(&workout).Error; err != nil {
			return err
		}

		return tx.Create(&models.WorkoutEdit{
			WorkoutID: workout.ID,
			UserID:    editorID,
		}).Error
	})

	if err != nil {
		return models.Workout{}, err
	}

	return workout, nil
}

// DeleteWorkout removes the workout and everything hanging off it as a unit.
func DeleteWorkout(id uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var workout models.Workout

		if err := tx.First(&workout, id).Error; err != nil {
			return err
		}

		if err := tx.Where("workout_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
			return err
		}

		if err := tx.Where("workout_id = ?", id).Delete(&models.WorkoutEdit{}).Error; err != nil {
			return err
		}

		return tx.Delete(&workout).Error
	})
}

func SetWorkoutResult(id uint, result string, rating *int) (models.Workout, error) {
	var workout models.Workout

	if err := db.DB.First(&workout, id).Error; err != nil {
		return models.Workout{}, err
	}

	workout.Result = &result
	workout.Rating = rating

	if err := db.DB.Save(&workout).Error; err != nil {
		return models.Workout{}, err
	}

	return workout, nil
}
