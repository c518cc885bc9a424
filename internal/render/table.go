package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

const maxDescriptionWidth = 48

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// typeName returns the declared field type, or "string" when none was set.
func typeName(f schema.Field) string {
	if f.Type == "" {
		return string(schema.TypeString)
	}
	return string(f.Type)
}

// kindColor maps an association kind to a terminal color.
func kindColor(k schema.AssociationKind) lipgloss.Color {
	if k == schema.ToMany {
		return lipgloss.Color("13")
	}
	return lipgloss.Color("12")
}

// styledTable renders headers and rows with the shared border and header
// style. The first column is bold.
func styledTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if col == 0 {
				return s.Bold(true)
			}
			return s
		})
	return t.Render()
}

// plainTable renders rows as left-aligned columns separated by two spaces,
// with a dashed rule under the header.
func plainTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var b strings.Builder
	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
		}
		fmt.Fprintln(&b, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(headers)
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	fmt.Fprintln(&b, strings.Repeat("-", total))
	for _, r := range rows {
		line(r)
	}
	return b.String()
}

func renderTable(headers []string, rows [][]string) string {
	if !ColorsEnabled() {
		return plainTable(headers, rows)
	}
	return styledTable(headers, rows)
}

// RenderEntities renders one row per entity: its name, table, field and
// association counts, and description.
func RenderEntities(entities []*schema.Entity) string {
	if len(entities) == 0 {
		return EmptyState("No entities configured.", "Add some under entities: in ferry.yaml, or run: ferry demo", false)
	}

	headers := []string{"Entity", "Table", "Fields", "Associations", "Description"}
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{
			e.Name,
			e.TableName(),
			fmt.Sprintf("%d", len(e.Fields)),
			fmt.Sprintf("%d", len(e.Associations)),
			truncate(e.Description, maxDescriptionWidth),
		})
	}
	return renderTable(headers, rows)
}

// RenderFields renders the fields of e followed by its associations. The
// identifier fields are marked with an asterisk.
func RenderFields(e *schema.Entity) string {
	if len(e.Fields) == 0 && len(e.Associations) == 0 {
		return EmptyState(fmt.Sprintf("Entity %q has no fields.", e.Name), "", false)
	}

	ids := make(map[string]bool)
	for _, id := range e.IdentifierFields() {
		ids[id] = true
	}

	headers := []string{"Name", "Kind", "Type", "Column"}
	rows := make([][]string, 0, len(e.Fields)+len(e.Associations))
	for _, f := range e.Fields {
		name := f.Name
		if ids[f.Name] {
			name += " *"
		}
		rows = append(rows, []string{name, "field", typeName(f), f.ColumnName()})
	}
	for _, a := range e.Associations {
		rows = append(rows, []string{a.Name, string(a.Kind), a.Target, associationStorage(a)})
	}
	return renderTable(headers, rows)
}

// associationStorage describes where an association is stored.
func associationStorage(a schema.Association) string {
	switch {
	case a.Column != "":
		return a.Column
	case a.JoinTable != "":
		return fmt.Sprintf("%s(%s, %s)", a.JoinTable, a.JoinColumn, a.InverseColumn)
	case a.MappedBy != "":
		return "<- " + a.MappedBy
	default:
		return ""
	}
}

// RenderFormats renders the registered export formats with their media type.
func RenderFormats(formats []format.Format) string {
	if len(formats) == 0 {
		return EmptyState("No export formats registered.", "", false)
	}
	headers := []string{"Format", "Extension", "Media Type"}
	rows := make([][]string, 0, len(formats))
	for _, f := range formats {
		rows = append(rows, []string{f.String(), "." + f.Extension(), f.MimeType()})
	}
	return renderTable(headers, rows)
}

// RenderAssociationTree renders every entity as a tree node with its
// associations as children.
func RenderAssociationTree(entities []*schema.Entity) string {
	if len(entities) == 0 {
		return EmptyState("No entities configured.", "", false)
	}

	if !ColorsEnabled() {
		var b strings.Builder
		for _, e := range entities {
			fmt.Fprintln(&b, e.Name)
			for _, a := range e.Associations {
				fmt.Fprintf(&b, "  %s %s -> %s\n", a.Name, a.Kind, a.Target)
			}
		}
		return b.String()
	}

	t := tree.New().Root("Entities")
	nameStyle := lipgloss.NewStyle().Bold(true)
	for _, e := range entities {
		node := tree.Root(nameStyle.Render(e.Name))
		for _, a := range e.Associations {
			kind := lipgloss.NewStyle().Foreground(kindColor(a.Kind)).Render(string(a.Kind))
			node.Child(fmt.Sprintf("%s %s -> %s", a.Name, kind, a.Target))
		}
		t.Child(node)
	}
	return t.String()
}
