package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/boxhub-dev/boxhub/db"
	"github.com/boxhub-dev/boxhub/internal/models"
	"gorm.io/datatypes"
)

// Notification delivery is best effort by design: every failure below is
// logged and swallowed, the triggering request never sees it.

var (
	mailer    Mailer
	enqueue   func(Message) error
	organizer string
)

// Init configures the outbound mailer. With no API key configured the
// dispatcher stays disabled and triggers become no-ops.
func Init(apiKey, from string) {
	if apiKey == "" {
		log.Println("RESEND_API_KEY not set, email notifications disabled")
		return
	}

	organizer = from
	mailer = NewResendMailer(apiKey, from)
}

// SetMailer replaces the mailer (tests).
func SetMailer(m Mailer, from string) {
	mailer = m
	organizer = from
}

// SetEnqueuer routes dispatch through a background queue instead of an
// in-process goroutine.
func SetEnqueuer(fn func(Message) error) {
	enqueue = fn
}

type Recipient struct {
	UserID uint
	Email  string
	Name   string
}

// WorkoutCreated sends a calendar invite to the creator.
func WorkoutCreated(workout models.Workout, creator Recipient) {
	msg := buildMessage(workout, MethodRequest, creator,
		fmt.Sprintf("New workout: %s", workout.Title),
		fmt.Sprintf("<p>Hi %s,</p><p>Your workout <strong>%s</strong> on %s has been scheduled. The invite is attached.</p>",
			creator.Name, workout.Title, workout.Date.Format("Mon, 02 Jan 2006 15:04 MST")))
	dispatch([]Message{msg})
}

// WorkoutRegistered sends a calendar invite to the newly registered user.
func WorkoutRegistered(workout models.Workout, attendee Recipient) {
	msg := buildMessage(workout, MethodRequest, attendee,
		fmt.Sprintf("You're in: %s", workout.Title),
		fmt.Sprintf("<p>Hi %s,</p><p>You are registered for <strong>%s</strong> on %s. See you there!</p>",
			attendee.Name, workout.Title, workout.Date.Format("Mon, 02 Jan 2006 15:04 MST")))
	dispatch([]Message{msg})
}

// WorkoutUpdated sends an updated invite, carrying the bumped sequence
// number, to everyone currently registered.
func WorkoutUpdated(workout models.Workout, attendees []Recipient) {
	msgs := make([]Message, 0, len(attendees))

	for _, attendee := range attendees {
		msgs = append(msgs, buildMessage(workout, MethodRequest, attendee,
			fmt.Sprintf("Updated: %s", workout.Title),
			fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> has changed. It now takes place on %s. Your calendar will pick up the attached update.</p>",
				attendee.Name, workout.Title, workout.Date.Format("Mon, 02 Jan 2006 15:04 MST"))))
	}

	dispatch(msgs)
}

// WorkoutCancelled sends a cancellation to everyone who was registered when
// the workout was deleted.
func WorkoutCancelled(workout models.Workout, attendees []Recipient) {
	msgs := make([]Message, 0, len(attendees))

	for _, attendee := range attendees {
		msgs = append(msgs, buildMessage(workout, MethodCancel, attendee,
			fmt.Sprintf("Cancelled: %s", workout.Title),
			fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> on %s has been cancelled.</p>",
				attendee.Name, workout.Title, workout.Date.Format("Mon, 02 Jan 2006 15:04 MST"))))
	}

	dispatch(msgs)
}

func buildMessage(workout models.Workout, method string, recipient Recipient, subject, html string) Message {
	invite := WorkoutInvite(workout, method, organizer, []Attendee{
		{Email: recipient.Email, Name: recipient.Name},
	})

	workoutID := workout.ID
	userID := recipient.UserID

	return Message{
		To:        []string{recipient.Email},
		Subject:   subject,
		HTML:      html,
		Calendar:  invite.Render(),
		Method:    method,
		WorkoutID: &workoutID,
		UserID:    &userID,
	}
}

func dispatch(msgs []Message) {
	if mailer == nil {
		return
	}

	for _, msg := range msgs {
		if enqueue != nil {
			if err := enqueue(msg); err != nil {
				log.Printf("Failed to enqueue notification for %v: %v", msg.To, err)
			}
			continue
		}

		go func(m Message) {
			if err := Deliver(context.Background(), m); err != nil {
				log.Printf("Failed to deliver notification for %v: %v", m.To, err)
			}
		}(msg)
	}
}

// Deliver sends one message and records a dispatch audit row. Called either
// directly or from the queue worker.
func Deliver(ctx context.Context, msg Message) error {
	if mailer == nil {
		return nil
	}

	messageID, err := mailer.Send(ctx, msg)

	status := "sent"
	detail := messageID

	if err != nil {
		status = "failed"
		detail = err.Error()
	}

	recordDispatch(msg, status, detail)

	return err
}

func recordDispatch(msg Message, status, detail string) {
	payload, marshalErr := json.Marshal(msg)

	if marshalErr != nil {
		log.Printf("Failed to marshal notification payload: %v", marshalErr)
		payload = nil
	}

	notification := models.Notification{
		WorkoutID: msg.WorkoutID,
		UserID:    msg.UserID,
		Channel:   "email",
		Verb:      msg.Method,
		Status:    status,
		Message:   detail,
		Payload:   datatypes.JSON(payload),
	}

	if status == "sent" {
		now := time.Now()
		notification.SentAt = &now
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to record notification: %v", err)
	}
}
