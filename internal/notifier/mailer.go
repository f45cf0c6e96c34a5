package notifier

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Message is a fully rendered notification email. It is self-contained so it
// can be serialized onto the dispatch queue and delivered after the workout
// it describes has been deleted.
type Message struct {
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	HTML      string   `json:"html"`
	Calendar  string   `json:"calendar"`
	Method    string   `json:"method"`
	WorkoutID *uint    `json:"workout_id"`
	UserID    *uint    `json:"user_id"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendMailer delivers messages through the Resend API with the invite as a
// text/calendar attachment.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	if msg.Calendar != "" {
		params.Attachments = []*resend.Attachment{
			{
				Filename:    "invite.ics",
				ContentType: fmt.Sprintf("text/calendar; method=%s", msg.Method),
				Content:     []byte(msg.Calendar),
			},
		}
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)

	if err != nil {
		return "", fmt.Errorf("resend send failed: %w", err)
	}

	return sent.Id, nil
}
