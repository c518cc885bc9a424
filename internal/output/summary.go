package output

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// ExportSummary is the result reported after an export command.
type ExportSummary struct {
	RunID       string        `json:"run_id"`
	Entity      string        `json:"entity"`
	Format      string        `json:"format"`
	Destination string        `json:"destination"`
	Records     int           `json:"records"`
	Bytes       int64         `json:"bytes"`
	Duration    time.Duration `json:"duration_ns"`
}

// String renders the summary as one human-readable line, e.g.
// "Exported 1,204 user records as csv to users.csv (86 kB in 120ms)".
func (s ExportSummary) String() string {
	noun := "records"
	if s.Records == 1 {
		noun = "record"
	}
	return fmt.Sprintf("Exported %s %s %s as %s to %s (%s in %s)",
		humanize.Comma(int64(s.Records)),
		s.Entity,
		noun,
		s.Format,
		s.Destination,
		humanize.Bytes(uint64(max(s.Bytes, 0))),
		s.Duration.Round(time.Millisecond),
	)
}
