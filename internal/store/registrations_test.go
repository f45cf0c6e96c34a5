package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestRegisterForWorkoutIdempotent(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)

	workout := createTestWorkout(t, admin.ID, time.Now().Add(24*time.Hour), 10)

	first, err := RegisterForWorkout(workout.ID, alice.ID)

	if err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	second, err := RegisterForWorkout(workout.ID, alice.ID)

	if err != nil {
		t.Fatalf("Repeat registration failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected the same registration row, got %d and %d", first.ID, second.ID)
	}

	count, err := CountRegistrations(workout.ID)

	if err != nil {
		t.Fatalf("Failed to count registrations: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected 1 registration, got %d", count)
	}
}

func TestRegisterForWorkoutCapacity(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)
	bob := createTestUser(t, "bob", false)
	carol := createTestUser(t, "carol", false)

	workout := createTestWorkout(t, admin.ID, time.Now().Add(24*time.Hour), 2)

	if _, err := RegisterForWorkout(workout.ID, alice.ID); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	if _, err := RegisterForWorkout(workout.ID, bob.ID); err != nil {
		t.Fatalf("Second registration failed: %v", err)
	}

	if _, err := RegisterForWorkout(workout.ID, carol.ID); err != ErrWorkoutFull {
		t.Errorf("Expected ErrWorkoutFull, got %v", err)
	}

	// The rejected attempt must not leave a row behind
	count, err := CountRegistrations(workout.ID)

	if err != nil {
		t.Fatalf("Failed to count registrations: %v", err)
	}

	if count != 2 {
		t.Errorf("Expected 2 registrations, got %d", count)
	}

	// A registered user retrying while full still succeeds
	if _, err := RegisterForWorkout(workout.ID, alice.ID); err != nil {
		t.Errorf("Repeat registration at capacity should succeed: %v", err)
	}

	// Freeing a slot reopens the workout
	if err := UnregisterFromWorkout(workout.ID, bob.ID); err != nil {
		t.Fatalf("Failed to unregister: %v", err)
	}

	if _, err := RegisterForWorkout(workout.ID, carol.ID); err != nil {
		t.Errorf("Registration after a slot freed should succeed: %v", err)
	}
}

func TestRegisterForWorkoutConcurrent(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	workout := createTestWorkout(t, admin.ID, time.Now().Add(24*time.Hour), 3)

	userIDs := make([]uint, 6)

	for i := range userIDs {
		userIDs[i] = createTestUser(t, fmt.Sprintf("member%d", i), false).ID
	}

	var wg sync.WaitGroup
	results := make([]error, len(userIDs))

	for i, userID := range userIDs {
		wg.Add(1)

		go func(i int, userID uint) {
			defer wg.Done()
			_, results[i] = RegisterForWorkout(workout.ID, userID)
		}(i, userID)
	}

	wg.Wait()

	var succeeded, rejected int

	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrWorkoutFull):
			rejected++
		default:
			t.Errorf("Unexpected registration error: %v", err)
		}
	}

	if succeeded != 3 {
		t.Errorf("Expected exactly 3 successful registrations, got %d", succeeded)
	}

	if rejected != 3 {
		t.Errorf("Expected 3 capacity rejections, got %d", rejected)
	}

	count, err := CountRegistrations(workout.ID)

	if err != nil {
		t.Fatalf("Failed to count registrations: %v", err)
	}

	if count != 3 {
		t.Errorf("Expected 3 registrations in the database, got %d", count)
	}
}

func TestRegisterForWorkoutNotFound(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice", false)

	if _, err := RegisterForWorkout(9999, alice.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestUnregisterNotRegistered(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)

	workout := createTestWorkout(t, admin.ID, time.Now().Add(24*time.Hour), 10)

	if err := UnregisterFromWorkout(workout.ID, alice.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestMarkAttendance(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)

	workout := createTestWorkout(t, admin.ID, time.Now().Add(-24*time.Hour), 10)

	if _, err := RegisterForWorkout(workout.ID, alice.ID); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	if err := MarkAttendance(workout.ID, alice.ID, true); err != nil {
		t.Fatalf("Failed to mark attendance: %v", err)
	}

	registration, err := GetRegistration(workout.ID, alice.ID)

	if err != nil {
		t.Fatalf("Failed to load registration: %v", err)
	}

	if !registration.Attended {
		t.Error("Expected attended to be true")
	}

	// Attendance can be revoked
	if err := MarkAttendance(workout.ID, alice.ID, false); err != nil {
		t.Fatalf("Failed to unmark attendance: %v", err)
	}

	registration, err = GetRegistration(workout.ID, alice.ID)

	if err != nil {
		t.Fatalf("Failed to reload registration: %v", err)
	}

	if registration.Attended {
		t.Error("Expected attended to be false")
	}
}

func TestMarkAttendanceNotRegistered(t *testing.T) {
	setupTestDB(t)

	admin := createTestUser(t, "admin", true)
	alice := createTestUser(t, "alice", false)

	workout := createTestWorkout(t, admin.ID, time.Now().Add(-24*time.Hour), 10)

	if err := MarkAttendance(workout.ID, alice.ID, true); err != gorm.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}
