package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Message is one out-of-band delivery request. Delivery workers subscribed
// to the channel subject render and send the actual email or SMS.
type Message struct {
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Code        string    `json:"code"`
	ExpiresAt   time.Time `json:"expires_at"`
	RequestedAt time.Time `json:"requested_at"`
}

// Notifier dispatches one-time codes out-of-band.
type Notifier interface {
	Dispatch(ctx context.Context, msg Message) error
}

type natsNotifier struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// New constructs a NATS-backed notifier. When conn is nil the notifier logs
// dispatches instead of publishing, which keeps local development working
// without a broker.
func New(conn *nats.Conn, subjectBase string, logger zerolog.Logger) Notifier {
	base := strings.Trim(subjectBase, ".")
	if base == "" {
		base = "voteguard.otp"
	}

	return &natsNotifier{
		conn:        conn,
		subjectBase: base,
		logger:      logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *natsNotifier) Dispatch(ctx context.Context, msg Message) error {
	if msg.Channel == "" || msg.Destination == "" {
		return fmt.Errorf("channel and destination are required")
	}

	if n.conn == nil {
		// Plain-code logging is acceptable only without a broker; production
		// deployments always configure NATS.
		n.logger.Info().
			Str("channel", msg.Channel).
			Str("destination", msg.Destination).
			Msg("no broker configured, otp dispatch logged only")
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode otp message: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", n.subjectBase, msg.Channel)
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish otp message: %w", err)
	}

	n.logger.Info().
		Str("subject", subject).
		Str("channel", msg.Channel).
		Msg("otp dispatch published")

	return nil
}
