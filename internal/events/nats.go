package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ALT-F4-LLC/ferry/internal/export"
)

// Subject suffixes appended to the configured prefix.
const (
	SubjectStarted   = "started"
	SubjectCompleted = "completed"
	SubjectFailed    = "failed"
)

// Publisher sends a message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON payload published for each lifecycle signal.
type Message struct {
	Type     string          `json:"type"`
	Event    export.Event    `json:"event"`
	Summary  *export.Summary `json:"summary,omitempty"`
	Error    string          `json:"error,omitempty"`
	SentAt   time.Time       `json:"sent_at"`
	Duration float64         `json:"duration_seconds,omitempty"`
}

// NATSListener publishes lifecycle signals. Publish failures are logged and
// never affect the export.
type NATSListener struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewNATSListener returns a listener publishing to "<prefix>.started",
// "<prefix>.completed" and "<prefix>.failed".
func NewNATSListener(pub Publisher, prefix string, logger *slog.Logger) *NATSListener {
	return &NATSListener{
		pub:    pub,
		prefix: prefix,
		logger: logger.With("component", "nats"),
		now:    time.Now,
	}
}

// PreExport implements export.Listener.
func (l *NATSListener) PreExport(ctx context.Context, ev export.Event) {
	l.publish(ctx, SubjectStarted, Message{Type: SubjectStarted, Event: ev})
}

// PostExport implements export.Listener.
func (l *NATSListener) PostExport(ctx context.Context, ev export.Event, sum export.Summary) {
	l.publish(ctx, SubjectCompleted, Message{
		Type:     SubjectCompleted,
		Event:    ev,
		Summary:  &sum,
		Duration: sum.Seconds(),
	})
}

// ExportFailed implements export.FailureListener.
func (l *NATSListener) ExportFailed(ctx context.Context, ev export.Event, err error) {
	l.publish(ctx, SubjectFailed, Message{Type: SubjectFailed, Event: ev, Error: err.Error()})
}

func (l *NATSListener) publish(ctx context.Context, suffix string, msg Message) {
	msg.SentAt = l.now().UTC()
	subject := l.prefix + "." + suffix

	data, err := json.Marshal(msg)
	if err != nil {
		l.logger.ErrorContext(ctx, "encoding lifecycle message", "subject", subject, "error", err)
		return
	}
	if err := l.pub.Publish(subject, data); err != nil {
		l.logger.WarnContext(ctx, "publishing lifecycle message", "subject", subject, "error", err)
	}
}

// Connect dials the NATS server at url.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("ferry"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(3),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
