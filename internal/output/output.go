package output

import (
	"fmt"
	"io"
	"os"
)

// StdoutDestination names the export destination when records go to stdout.
const StdoutDestination = "stdout"

// Writer renders command results and failures, either as JSON envelopes or
// as styled text for a terminal.
type Writer struct {
	JSONMode  bool
	QuietMode bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// New creates a Writer configured by the given mode flags.
// Data output goes to os.Stdout; diagnostics go to os.Stderr.
func New(jsonMode, quietMode bool) *Writer {
	return &Writer{
		JSONMode:  jsonMode,
		QuietMode: quietMode,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Success renders a successful result: a JSON envelope around data, or the
// message for a human.
func (w *Writer) Success(data any, message string) {
	if w.JSONMode {
		writeJSONSuccess(w.Stdout, data, message)
		return
	}
	writeHumanSuccess(w.Stdout, message)
}

// Summary reports a finished export. An export to stdout already owns
// Stdout, so its summary is informational and goes to Stderr.
func (w *Writer) Summary(s ExportSummary) {
	if s.Destination == StdoutDestination {
		w.Info("%s", s)
		return
	}
	w.Success(s, s.String())
}

// Error renders err and returns the exit code for code. In JSON mode the
// envelope goes to Stdout with a details object for validation, format and
// sink failures. In human mode the message goes to Stderr followed by hints
// such as the entity's available fields or the path of a partial output.
func (w *Writer) Error(err error, code ErrorCode) int {
	if w.JSONMode {
		writeJSONError(w.Stdout, err, code)
	} else {
		writeHumanError(w.Stderr, err)
	}
	return ExitCodeForError(code)
}

// Info writes a progress note to Stderr. It is dropped in quiet and JSON
// mode.
func (w *Writer) Info(format string, args ...any) {
	if w.QuietMode || w.JSONMode {
		return
	}
	writeLine(w.Stderr, dimStyle, "ℹ", "", paint(dimStyle, fmt.Sprintf(format, args...)))
}

// Warn writes a warning to Stderr. Quiet mode keeps warnings; JSON mode
// drops them.
func (w *Writer) Warn(format string, args ...any) {
	if w.JSONMode {
		return
	}
	writeLine(w.Stderr, warnStyle, "⚠", "Warning:", fmt.Sprintf(format, args...))
}
