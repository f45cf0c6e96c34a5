package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/boxhub-dev/boxhub/internal/models"
)

// iTIP methods used for outbound invites (RFC 5546). Calendar clients apply a
// REQUEST only when its SEQUENCE is greater than the last one seen, and
// always honor a CANCEL.
const (
	MethodRequest = "REQUEST"
	MethodCancel  = "CANCEL"
)

type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Invite is a single calendar event payload. UID is stable per workout so
// that updates and cancellations land on the same event in the recipient's
// calendar.
type Invite struct {
	UID         string     `json:"uid"`
	Method      string     `json:"method"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	Sequence    int        `json:"sequence"`
	Organizer   string     `json:"organizer"`
	Attendees   []Attendee `json:"attendees"`
}

// Workouts have no explicit end time; calendars need one.
const defaultDuration = time.Hour

func WorkoutInvite(workout models.Workout, method, organizer string, attendees []Attendee) Invite {
	return Invite{
		UID:         fmt.Sprintf("workout-%d@boxhub", workout.ID),
		Method:      method,
		Summary:     workout.Title,
		Description: workout.Description,
		Start:       workout.Date,
		Sequence:    workout.Sequence,
		Organizer:   organizer,
		Attendees:   attendees,
	}
}

// Render produces the text/calendar body. Lines are CRLF-terminated per RFC
// 5545.
func (inv Invite) Render() string {
	var b strings.Builder

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	status := "CONFIRMED"
	if inv.Method == MethodCancel {
		status = "CANCELLED"
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//BoxHub//Workout Calendar//EN")
	writeLine("METHOD:" + inv.Method)
	writeLine("BEGIN:VEVENT")
	writeLine("UID:" + inv.UID)
	writeLine(fmt.Sprintf("SEQUENCE:%d", inv.Sequence))
	writeLine("DTSTAMP:" + time.Now().UTC().Format("20060102T150405Z"))
	writeLine("DTSTART:" + inv.Start.UTC().Format("20060102T150405Z"))
	writeLine("DTEND:" + inv.Start.Add(defaultDuration).UTC().Format("20060102T150405Z"))
	writeLine("SUMMARY:" + escapeText(inv.Summary))

	if inv.Description != "" {
		writeLine("DESCRIPTION:" + escapeText(inv.Description))
	}

	writeLine("STATUS:" + status)

	if inv.Organizer != "" {
		writeLine("ORGANIZER;CN=BoxHub:mailto:" + inv.Organizer)
	}

	for _, attendee := range inv.Attendees {
		writeLine(fmt.Sprintf("ATTENDEE;CN=%s;RSVP=TRUE:mailto:%s", escapeText(attendee.Name), attendee.Email))
	}

	writeLine("END:VEVENT")
	writeLine("END:VCALENDAR")

	return b.String()
}

// escapeText escapes the characters RFC 5545 treats specially in TEXT values.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
		"\r", "",
	)
	return r.Replace(s)
}
