package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAdminUserManagement(t *testing.T) {
	r := setupTestServer(t)

	admin := signUpAdmin(t, r, "admin")
	alice := signUp(t, r, "alice")

	// Members cannot list users
	if w := doRequest(t, r, "GET", "/api/admin/users", nil, alice); w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin listing, got %d", w.Code)
	}

	w := doRequest(t, r, "GET", "/api/admin/users", nil, admin)

	if w.Code != http.StatusOK {
		t.Fatalf("Failed to list users: %d - %s", w.Code, w.Body.String())
	}

	var users []struct {
		ID      uint   `json:"id"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"is_admin"`
	}
	decodeJSON(t, w, &users)

	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}

	var adminID, aliceID uint

	for _, user := range users {
		switch user.Name {
		case "admin":
			adminID = user.ID
		case "alice":
			aliceID = user.ID
		}
	}

	// Admins cannot delete themselves
	w = doRequest(t, r, "DELETE", fmt.Sprintf("/api/admin/users/%d", adminID), nil, admin)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for self-delete, got %d", w.Code)
	}

	if msg := errorMessage(t, w); msg != "You cannot delete your own account" {
		t.Errorf("Unexpected self-delete message: %q", msg)
	}

	// Deleting another member works and kills their session
	w = doRequest(t, r, "DELETE", fmt.Sprintf("/api/admin/users/%d", aliceID), nil, admin)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Failed to delete alice: %d - %s", w.Code, w.Body.String())
	}

	if w := doRequest(t, r, "GET", "/api/auth/session", nil, alice); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected deleted user's session to be invalid, got %d", w.Code)
	}

	// Unknown user
	w = doRequest(t, r, "DELETE", "/api/admin/users/9999", nil, admin)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown user, got %d", w.Code)
	}
}

func TestListMembers(t *testing.T) {
	r := setupTestServer(t)

	signUpAdmin(t, r, "admin")
	alice := signUp(t, r, "alice")

	// Any authenticated member may fetch the basic list
	w := doRequest(t, r, "GET", "/api/users", nil, alice)

	if w.Code != http.StatusOK {
		t.Fatalf("Failed to list members: %d - %s", w.Code, w.Body.String())
	}

	// The basic list must not leak admin fields
	if strings.Contains(w.Body.String(), "is_admin") {
		t.Error("Expected no is_admin field in the member list")
	}

	var resp struct {
		Users []struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"users"`
	}
	decodeJSON(t, w, &resp)

	if len(resp.Users) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(resp.Users))
	}

	for _, user := range resp.Users {
		if user.Name == "" || user.Email == "" {
			t.Errorf("Expected name and email, got %+v", user)
		}
	}
}

func TestMyStats(t *testing.T) {
	r := setupTestServer(t)

	admin := signUpAdmin(t, r, "admin")
	alice := signUp(t, r, "alice")

	past := createWorkout(t, r, admin, "Past WOD", time.Now().Add(-24*time.Hour), 10)
	createWorkout(t, r, admin, "Future WOD", time.Now().Add(24*time.Hour), 10)

	if w := doRequest(t, r, "POST", fmt.Sprintf("/api/workouts/%d/register", past.ID), nil, alice); w.Code != http.StatusCreated {
		t.Fatalf("Registration failed: %d", w.Code)
	}

	w := doRequest(t, r, "GET", "/api/users/me/stats", nil, alice)

	if w.Code != http.StatusOK {
		t.Fatalf("Failed to fetch stats: %d - %s", w.Code, w.Body.String())
	}

	var stats struct {
		TotalWorkouts    int64 `json:"total_workouts"`
		AttendedWorkouts int64 `json:"attended_workouts"`
		UpcomingWorkouts int64 `json:"upcoming_workouts"`
		CurrentStreak    *int  `json:"current_streak"`
	}
	decodeJSON(t, w, &stats)

	if stats.TotalWorkouts != 1 {
		t.Errorf("Expected 1 past workout, got %d", stats.TotalWorkouts)
	}

	if stats.AttendedWorkouts != 0 {
		t.Errorf("Expected 0 attended workouts, got %d", stats.AttendedWorkouts)
	}

	if stats.UpcomingWorkouts != 1 {
		t.Errorf("Expected 1 upcoming workout, got %d", stats.UpcomingWorkouts)
	}

	if stats.CurrentStreak != nil {
		t.Errorf("Expected null streak, got %d", *stats.CurrentStreak)
	}

	// The raw body must carry an explicit null, not omit the field
	w = doRequest(t, r, "GET", "/api/users/me/stats", nil, alice)

	if !strings.Contains(w.Body.String(), `"current_streak":null`) {
		t.Errorf("Expected explicit null streak in body: %s", w.Body.String())
	}
}

func TestExportWorkoutsTxt(t *testing.T) {
	r := setupTestServer(t)

	admin := signUpAdmin(t, r, "admin")

	createWorkout(t, r, admin, "Saturday Throwdown", time.Now().Add(48*time.Hour), 12)
	createWorkout(t, r, admin, "Last Week WOD", time.Now().Add(-7*24*time.Hour), 8)

	w := doRequest(t, r, "POST", "/api/templates", gin.H{
		"title":        "Cindy",
		"workout_type": "AMRAP",
		"category":     "Solo",
	}, admin)

	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create template: %d - %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, "GET", "/api/export/workouts-txt", nil, admin)

	if w.Code != http.StatusOK {
		t.Fatalf("Export failed: %d - %s", w.Code, w.Body.String())
	}

	if contentType := w.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/plain") {
		t.Errorf("Expected text/plain, got %s", contentType)
	}

	body := w.Body.String()

	for _, want := range []string{
		"SCHEDULED WORKOUTS",
		"WORKOUT ARCHIVE",
		"Saturday Throwdown",
		"Last Week WOD",
		"Spots: 0/12",
		"Cindy (Solo)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected export to contain %q:\n%s", want, body)
		}
	}
}

func TestCreateTemplateInvalidCategory(t *testing.T) {
	r := setupTestServer(t)

	admin := signUpAdmin(t, r, "admin")

	w := doRequest(t, r, "POST", "/api/templates", gin.H{
		"title":        "Mystery",
		"workout_type": "WOD",
		"category":     "not-a-category",
	}, admin)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid category, got %d", w.Code)
	}

	if msg := errorMessage(t, w); msg != "Invalid category" {
		t.Errorf("Unexpected category error message: %q", msg)
	}
}
