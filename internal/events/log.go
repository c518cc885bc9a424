package events

import (
	"context"
	"log/slog"

	"github.com/ALT-F4-LLC/ferry/internal/export"
)

// LogListener writes lifecycle signals to a slog.Logger.
type LogListener struct {
	logger *slog.Logger
}

// NewLogListener returns a listener logging through logger.
func NewLogListener(logger *slog.Logger) *LogListener {
	return &LogListener{logger: logger.With("component", "export")}
}

// PreExport implements export.Listener.
func (l *LogListener) PreExport(ctx context.Context, ev export.Event) {
	l.logger.InfoContext(ctx, "export starting",
		"run_id", ev.RunID,
		"entity", ev.Entity,
		"format", string(ev.Format),
		"criteria", len(ev.Criteria),
		"limit", ev.Limit,
		"offset", ev.Offset,
	)
}

// PostExport implements export.Listener.
func (l *LogListener) PostExport(ctx context.Context, ev export.Event, sum export.Summary) {
	l.logger.InfoContext(ctx, "export completed",
		"run_id", ev.RunID,
		"entity", ev.Entity,
		"format", string(ev.Format),
		"records", sum.Count,
		"duration", sum.Duration,
	)
}

// ExportFailed implements export.FailureListener.
func (l *LogListener) ExportFailed(ctx context.Context, ev export.Event, err error) {
	l.logger.WarnContext(ctx, "export aborted",
		"run_id", ev.RunID,
		"entity", ev.Entity,
		"format", string(ev.Format),
		"error", err,
	)
}
