package store

import (
	"errors"
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"gorm.io/gorm"
)

// RegisterForWorkout registers a user for a workout. The call is idempotent:
// an existing (workout, user) registration is returned unchanged. Capacity is
// enforced inside the transaction by inserting first and re-counting, so two
// concurrent registrations for the last slot cannot both commit.
func RegisterForWorkout(workoutID, userID uint) (models.Registration, error) {
	var registration models.Registration

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var workout models.Workout

		if err := tx.First(&workout, workoutID).Error; err != nil {
			return err
		}

		// Take a write lock on the workout row so two registrations for the
		// last slot serialize under READ COMMITTED. SQLite has no
		// SELECT ... FOR UPDATE, so a column touch acquires the lock instead.
		if err := tx.Model(&workout).
			UpdateColumn("updated_at", time.Now()).Error; err != nil {
			return err
		}

		err := tx.Where("workout_id = ? AND user_id = ?", workoutID, userID).
			First(&registration).Error

		if err == nil {
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		registration = models.Registration{
			WorkoutID: workoutID,
			UserID:    userID,
		}

		if err := tx.Create(&registration).Error; err != nil {
			return err
		}

		var count int64

		if err := tx.Model(&models.Registration{}).
			Where("workout_id = ?", workoutID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > int64(workout.MaxParticipants) {
			return ErrWorkoutFull
		}

		return nil
	})

	if err != nil {
		return models.Registration{}, err
	}

	return registration, nil
}

func UnregisterFromWorkout(workoutID, userID uint) error {
	result := db.DB.Where("workout_id = ? AND user_id = ?", workoutID, userID).
		Delete(&models.Registration{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ListRegistrations returns a workout's registrations with users preloaded,
// oldest first.
func ListRegistrations(workoutID uint) ([]models.Registration, error) {
	var registrations []models.Registration

	err := db.DB.Preload("User").
		Where("workout_id = ?", workoutID).
		Order("id ASC").
		Find(&registrations).Error

	return registrations, err
}

func CountRegistrations(workoutID uint) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Registration{}).
		Where("workout_id = ?", workoutID).
		Count(&count).Error
	return count, err
}

func GetRegistration(workoutID, userID uint) (models.Registration, error) {
	var registration models.Registration
	err := db.DB.Where("workout_id = ? AND user_id = ?", workoutID, userID).
		First(&registration).Error
	return registration, err
}

func MarkAttendance(workoutID, userID uint, attended bool) error {
	var registration models.Registration

	if err := db.DB.Where("workout_id = ? AND user_id = ?", workoutID, userID).
		First(&registration).Error; err != nil {
		return err
	}

	return db.DB.Model(&registration).Update("attended", attended).Error
}
