package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the global connection for an in-memory SQLite database.
// MaxOpenConns must stay at 1: every new connection to :memory: gets its own
// empty database.
func setupTestDB(t *testing.T) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := gormDB.DB()

	if err != nil {
		t.Fatalf("Failed to access underlying connection: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	db.DB = gormDB

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

func createTestUser(t *testing.T, name string, isAdmin bool) models.User {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", name)
	user, err := CreateUser(name, email, "hashed-password", isAdmin)

	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", name, err)
	}

	return user
}

func createTestWorkout(t *testing.T, createdBy uint, date time.Time, maxParticipants int) models.Workout {
	t.Helper()

	workout, err := CreateWorkout(WorkoutInput{
		Title:           "Test WOD",
		Description:     "5 rounds for time",
		WorkoutType:     "WOD",
		Date:            date,
		MaxParticipants: maxParticipants,
	}, createdBy, nil)

	if err != nil {
		t.Fatalf("Failed to create test workout: %v", err)
	}

	return workout
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	setupTestDB(t)

	if _, err := CreateUser("Alice", "alice@example.com", "hash", false); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	if _, err := CreateUser("Alice Clone", "alice@example.com", "hash", false); err == nil {
		t.Error("Expected duplicate email to be rejected")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)

	workout := createTestWorkout(t, admin.ID, time.Now().Add(24*time.Hour), 10)

	if _, err := RegisterForWorkout(workout.ID, alice.ID); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	poll, err := CreatePoll("Next week", "", nil, admin.ID)
	if err != nil {
		t.Fatalf("Failed to create poll: %v", err)
	}

	option, err := CreatePollOption(poll.ID, time.Now().Add(48*time.Hour), "Tuesday")
	if err != nil {
		t.Fatalf("Failed to create option: %v", err)
	}

	if _, err := CastVote(option.ID, alice.ID); err != nil {
		t.Fatalf("Failed to vote: %v", err)
	}

	if err := DeleteUser(alice.ID); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	var registrations int64
	db.DB.Model(&models.Registration{}).Where("user_id = ?", alice.ID).Count(&registrations)

	if registrations != 0 {
		t.Errorf("Expected 0 registrations after user delete, got %d", registrations)
	}

	var votes int64
	db.DB.Model(&models.PollVote{}).Where("user_id = ?", alice.ID).Count(&votes)

	if votes != 0 {
		t.Errorf("Expected 0 votes after user delete, got %d", votes)
	}

	// The workout and poll the admin created must survive
	if _, err := GetWorkout(workout.ID); err != nil {
		t.Errorf("Workout should survive participant deletion: %v", err)
	}

	if _, err := GetPoll(poll.ID); err != nil {
		t.Errorf("Poll should survive voter deletion: %v", err)
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	setupTestDB(t)

	if err := DeleteUser(9999); err != gorm.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetUserStats(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)
	bob := createTestUser(t, "bob", false)

	past := createTestWorkout(t, admin.ID, time.Now().Add(-48*time.Hour), 10)
	attended := createTestWorkout(t, admin.ID, time.Now().Add(-24*time.Hour), 10)
	upcoming := createTestWorkout(t, admin.ID, time.Now().Add(24*time.Hour), 10)

	for _, workoutID := range []uint{past.ID, attended.ID, upcoming.ID} {
		if _, err := RegisterForWorkout(workoutID, alice.ID); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
	}

	if err := MarkAttendance(attended.ID, alice.ID, true); err != nil {
		t.Fatalf("Failed to mark attendance: %v", err)
	}

	stats, err := GetUserStats(alice.ID)

	if err != nil {
		t.Fatalf("Failed to compute stats: %v", err)
	}

	if stats.TotalWorkouts != 2 {
		t.Errorf("Expected 2 past registrations, got %d", stats.TotalWorkouts)
	}

	if stats.AttendedWorkouts != 1 {
		t.Errorf("Expected 1 attended workout, got %d", stats.AttendedWorkouts)
	}

	if stats.UpcomingWorkouts != 1 {
		t.Errorf("Expected 1 upcoming workout, got %d", stats.UpcomingWorkouts)
	}

	if stats.CurrentStreak != nil {
		t.Errorf("Expected current streak to be null, got %d", *stats.CurrentStreak)
	}

	// Upcoming counts every future workout at the gym, registered or not
	bobStats, err := GetUserStats(bob.ID)

	if err != nil {
		t.Fatalf("Failed to compute stats: %v", err)
	}

	if bobStats.TotalWorkouts != 0 {
		t.Errorf("Expected 0 past registrations for bob, got %d", bobStats.TotalWorkouts)
	}

	if bobStats.UpcomingWorkouts != 1 {
		t.Errorf("Expected 1 upcoming workout for bob, got %d", bobStats.UpcomingWorkouts)
	}
}
