package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"distress/internal/geo"
	"distress/internal/session"
)

// SOSSubject is the subject line of every SOS email.
const SOSSubject = "URGENT: SOS Signal Received"

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	Body     string
	From     string // account that raised the SOS
	Location geo.Location
	SentAt   time.Time
}

// Mailer delivers SOS emails.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Outbox keeps sent messages in memory and optionally logs them.
type Outbox struct {
	Logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// Send implements Mailer.
func (o *Outbox) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	o.mu.Lock()
	o.sent = append(o.sent, m)
	o.mu.Unlock()
	if o.Logger != nil {
		o.Logger.Info("email queued", "to", m.To, "subject", m.Subject, "body", m.Body)
	}
	return nil
}

// Messages returns a copy of everything sent, oldest first.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}

// MailerFunc adapts a function to Mailer.
type MailerFunc func(ctx context.Context, m Message) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// composeSOS builds the alert email. distanceKM < 0 omits the distance line.
func composeSOS(from session.User, to string, loc geo.Location, distanceKM float64) Message {
	var b strings.Builder
	b.WriteString("URGENT: An SOS signal has been received from someone nearby!\n\n")
	if from.Name != "" {
		fmt.Fprintf(&b, "Sent by: %s <%s>\n\n", from.Name, from.Email)
	} else {
		fmt.Fprintf(&b, "Sent by: %s\n\n", from.Email)
	}
	b.WriteString("Location Details:\n")
	fmt.Fprintf(&b, "- Latitude: %v\n", loc.Latitude)
	fmt.Fprintf(&b, "- Longitude: %v\n", loc.Longitude)
	if distanceKM >= 0 {
		fmt.Fprintf(&b, "- Approximate distance from you: %.2f km\n", distanceKM)
	}
	fmt.Fprintf(&b, "\nGoogle Maps Link:\n%s\n\n", geo.MapsURL(loc))
	b.WriteString("This person needs immediate assistance. Please check their location and respond if you can help.\n")
	return Message{
		To:       to,
		Subject:  SOSSubject,
		Body:     b.String(),
		From:     from.Email,
		Location: loc,
	}
}
