package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/render"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// paint styles text when colors are enabled.
func paint(style lipgloss.Style, text string) string {
	if !render.ColorsEnabled() {
		return text
	}
	return style.Render(text)
}

// writeLine writes msg after an optional label. The icon is only shown when
// colors are enabled so plain output stays grep-friendly.
func writeLine(w io.Writer, style lipgloss.Style, icon, label, msg string) {
	parts := make([]string, 0, 3)
	if render.ColorsEnabled() {
		parts = append(parts, style.Render(icon))
	}
	if label != "" {
		parts = append(parts, paint(style, label))
	}
	parts = append(parts, msg)
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// writeHumanSuccess writes a human-readable success message to w.
// Multi-line content (tables, entity listings, markdown) is printed as-is.
func writeHumanSuccess(w io.Writer, message string) {
	if message == "" {
		return
	}
	if strings.Contains(message, "\n") {
		fmt.Fprintln(w, message)
		return
	}
	writeLine(w, successStyle, "✔", "", message)
}

// writeHumanError writes the failure headline followed by indented hints
// taken from the error's details.
func writeHumanError(w io.Writer, err error) {
	writeLine(w, errorStyle, "✘", "Error:", headline(err))
	for _, h := range detailsOf(err).hints() {
		fmt.Fprintf(w, "  %s\n", paint(dimStyle, h))
	}
}

// headline returns the message of err without the available-field list,
// which is shown as a hint instead.
func headline(err error) string {
	msg := err.Error()
	var ve *export.ValidationError
	if errors.As(err, &ve) && len(ve.Available) > 0 {
		short := *ve
		short.Available = nil
		msg = strings.Replace(msg, ve.Error(), short.Error(), 1)
	}
	return msg
}

// hints returns follow-up lines for a human reader.
func (d *errorDetails) hints() []string {
	if d == nil {
		return nil
	}
	var out []string
	if len(d.Available) > 0 {
		out = append(out, "Available fields: "+strings.Join(d.Available, ", "))
	}
	switch {
	case d.Path == "":
	case d.Op == "open":
		out = append(out, fmt.Sprintf("Check that the directory for %s exists and is writable.", d.Path))
	default:
		out = append(out, fmt.Sprintf("Output written before the failure remains in %s.", d.Path))
	}
	return out
}
