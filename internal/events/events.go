// Package events provides export lifecycle listeners: structured logging,
// Prometheus metrics and NATS publishing, plus a fan-out listener that
// combines them.
package events

import (
	"context"

	"github.com/ALT-F4-LLC/ferry/internal/export"
)

// Multi forwards every signal to each listener in order.
type Multi []export.Listener

// PreExport implements export.Listener.
func (m Multi) PreExport(ctx context.Context, ev export.Event) {
	for _, l := range m {
		l.PreExport(ctx, ev)
	}
}

// PostExport implements export.Listener.
func (m Multi) PostExport(ctx context.Context, ev export.Event, sum export.Summary) {
	for _, l := range m {
		l.PostExport(ctx, ev, sum)
	}
}

// ExportFailed implements export.FailureListener for the listeners that
// support it.
func (m Multi) ExportFailed(ctx context.Context, ev export.Event, err error) {
	for _, l := range m {
		if fl, ok := l.(export.FailureListener); ok {
			fl.ExportFailed(ctx, ev, err)
		}
	}
}

// Combine returns a single listener for ls, skipping nil entries.
func Combine(ls ...export.Listener) export.Listener {
	var out Multi
	for _, l := range ls {
		if l != nil {
			out = append(out, l)
		}
	}
	switch len(out) {
	case 0:
		return export.NopListener{}
	case 1:
		return out[0]
	}
	return out
}
