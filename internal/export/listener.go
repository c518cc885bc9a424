package export

import (
	"context"
	"time"

	"github.com/ALT-F4-LLC/ferry/internal/format"
)

// Event describes an export run. The same value is passed to PreExport and
// PostExport.
type Event struct {
	RunID     string         `json:"run_id"`
	Entity    string         `json:"entity"`
	Format    format.Format  `json:"format"`
	Criteria  map[string]any `json:"criteria,omitempty"`
	OrderBy   []SortKey      `json:"order_by,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	Offset    int            `json:"offset,omitempty"`
	Fields    []string       `json:"fields,omitempty"`
	Options   Options        `json:"options"`
	StartedAt time.Time      `json:"started_at"`
}

// Summary is the outcome of a completed export.
type Summary struct {
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration"`
}

// Seconds returns the elapsed wall-clock time in seconds.
func (s Summary) Seconds() float64 { return s.Duration.Seconds() }

// Listener observes export lifecycle signals. Calls are fire-and-forget;
// PostExport is only called for runs that consumed every record.
type Listener interface {
	PreExport(ctx context.Context, ev Event)
	PostExport(ctx context.Context, ev Event, sum Summary)
}

// NopListener ignores every signal.
type NopListener struct{}

// PreExport does nothing.
func (NopListener) PreExport(context.Context, Event) {}

// PostExport does nothing.
func (NopListener) PostExport(context.Context, Event, Summary) {}

// FailureListener is implemented by listeners that also observe runs that
// failed after PreExport. Such runs never reach PostExport.
type FailureListener interface {
	ExportFailed(ctx context.Context, ev Event, err error)
}
