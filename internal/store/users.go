package store

import (
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"gorm.io/gorm"
)

func CreateUser(name, email, passwordHash string, isAdmin bool) (models.User, error) {
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func GetUser(id uint) (models.User, error) {
	var user models.User
	err := db.DB.First(&user, id).Error
	return user, err
}

func GetUserByEmail(email string) (models.User, error) {
	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	return user, err
}

func ListUsers() ([]models.User, error) {
	var users []models.User
	err := db.DB.Order("id ASC").Find(&users).Error
	return users, err
}

// DeleteUser removes the user together with their registrations, poll votes
// and edit-log rows in a single transaction. Workouts and polls the user
// created are left in place.
func DeleteUser(id uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User

		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.PollVote{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.WorkoutEdit{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

type UserStats struct {
	TotalWorkouts    int64 `json:"total_workouts"`
	AttendedWorkouts int64 `json:"attended_workouts"`
	UpcomingWorkouts int64 `json:"upcoming_workouts"`
	// CurrentStreak has no agreed definition yet; it stays null rather than
	// reporting a made-up number.
	CurrentStreak *int `json:"current_streak"`
}

// GetUserStats aggregates a user's attendance figures. UpcomingWorkouts
// counts every future workout, not only the user's: the dashboard shows
// "what's coming up at the gym" next to personal history.
func GetUserStats(userID uint) (UserStats, error) {
	var stats UserStats
	now := time.Now()

	err := db.DB.Model(&models.Registration{}).
		Joins("JOIN workouts ON workouts.id = registrations.workout_id").
		Where("registrations.user_id = ? AND workouts.date < ?", userID, now).
		Count(&stats.TotalWorkouts).Error

	if err != nil {
		return UserStats{}, err
	}

	err = db.DB.Model(&models.Registration{}).
		Where("user_id = ? AND attended = ?", userID, true).
		Count(&stats.AttendedWorkouts).Error

	if err != nil {
		return UserStats{}, err
	}

	err = db.DB.Model(&models.Workout{}).
		Where("date > ?", now).
		Count(&stats.UpcomingWorkouts).Error

	if err != nil {
		return UserStats{}, err
	}

	return stats, nil
}
