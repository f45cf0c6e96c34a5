package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}

	f.sent = append(f.sent, msg)
	return "fake-message-id", nil
}

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

func resetNotifier() {
	mailer = nil
	enqueue = nil
	organizer = ""
}

func TestDeliverRecordsAuditRow(t *testing.T) {
	setupTestDB(t)
	defer resetNotifier()

	fake := &fakeMailer{}
	SetMailer(fake, "coach@example.com")

	workoutID := uint(11)
	userID := uint(22)

	msg := Message{
		To:        []string{"alice@example.com"},
		Subject:   "You're in: Murph",
		Method:    MethodRequest,
		Calendar:  "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		WorkoutID: &workoutID,
		UserID:    &userID,
	}

	if err := Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if len(fake.sent) != 1 {
		t.Fatalf("Expected 1 sent message, got %d", len(fake.sent))
	}

	var notification models.Notification

	if err := db.DB.First(&notification).Error; err != nil {
		t.Fatalf("Expected an audit row: %v", err)
	}

	if notification.Status != "sent" {
		t.Errorf("Expected status sent, got %s", notification.Status)
	}

	if notification.Verb != MethodRequest {
		t.Errorf("Expected verb REQUEST, got %s", notification.Verb)
	}

	if notification.WorkoutID == nil || *notification.WorkoutID != workoutID {
		t.Errorf("Expected workout id %d, got %v", workoutID, notification.WorkoutID)
	}

	if notification.SentAt == nil {
		t.Error("Expected sent_at to be set for a sent notification")
	}

	if !strings.Contains(string(notification.Payload), "alice@example.com") {
		t.Errorf("Expected payload to carry the message: %s", notification.Payload)
	}
}

func TestDeliverRecordsFailure(t *testing.T) {
	setupTestDB(t)
	defer resetNotifier()

	fake := &fakeMailer{err: errors.New("smtp on fire")}
	SetMailer(fake, "coach@example.com")

	msg := Message{
		To:      []string{"alice@example.com"},
		Subject: "Doomed",
		Method:  MethodCancel,
	}

	if err := Deliver(context.Background(), msg); err == nil {
		t.Fatal("Expected delivery error")
	}

	var notification models.Notification

	if err := db.DB.First(&notification).Error; err != nil {
		t.Fatalf("Expected an audit row for the failure: %v", err)
	}

	if notification.Status != "failed" {
		t.Errorf("Expected status failed, got %s", notification.Status)
	}

	if notification.SentAt != nil {
		t.Error("Expected sent_at to stay null for a failed notification")
	}

	if !strings.Contains(notification.Message, "smtp on fire") {
		t.Errorf("Expected failure detail, got %q", notification.Message)
	}
}

func TestTriggersAreNoOpsWithoutMailer(t *testing.T) {
	setupTestDB(t)
	resetNotifier()

	workout := models.Workout{BaseModel: models.BaseModel{ID: 1}, Title: "WOD", Date: time.Now()}

	// Must not panic or write anything with the mailer unset
	WorkoutCreated(workout, Recipient{UserID: 1, Email: "a@example.com", Name: "A"})
	WorkoutCancelled(workout, []Recipient{{UserID: 1, Email: "a@example.com", Name: "A"}})

	var count int64
	db.DB.Model(&models.Notification{}).Count(&count)

	if count != 0 {
		t.Errorf("Expected no audit rows without a mailer, got %d", count)
	}
}

func TestTriggersRouteThroughEnqueuer(t *testing.T) {
	setupTestDB(t)
	defer resetNotifier()

	fake := &fakeMailer{}
	SetMailer(fake, "coach@example.com")

	var queued []Message
	SetEnqueuer(func(msg Message) error {
		queued = append(queued, msg)
		return nil
	})

	workout := models.Workout{
		BaseModel: models.BaseModel{ID: 5},
		Title:     "Team WOD",
		Date:      time.Now().Add(24 * time.Hour),
		Sequence:  2,
	}

	WorkoutUpdated(workout, []Recipient{
		{UserID: 1, Email: "alice@example.com", Name: "Alice"},
		{UserID: 2, Email: "bob@example.com", Name: "Bob"},
	})

	if len(queued) != 2 {
		t.Fatalf("Expected 2 queued messages, got %d", len(queued))
	}

	// Nothing is sent directly when an enqueuer is installed
	if len(fake.sent) != 0 {
		t.Errorf("Expected no direct sends, got %d", len(fake.sent))
	}

	for _, msg := range queued {
		if msg.Method != MethodRequest {
			t.Errorf("Expected REQUEST method, got %s", msg.Method)
		}

		if !strings.Contains(msg.Calendar, "SEQUENCE:2") {
			t.Error("Expected the bumped sequence in the invite")
		}

		if !strings.Contains(msg.Calendar, "UID:workout-5@boxhub") {
			t.Error("Expected the stable workout UID in the invite")
		}
	}
}
