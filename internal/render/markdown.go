package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// ColorsEnabled returns whether terminal colors should be used.
// It returns false if the NO_COLOR environment variable is set (any value)
// or if TERM is set to "dumb".
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// RenderMarkdown renders markdown text for terminal display.
// When colors are disabled, it returns the content unmodified.
func RenderMarkdown(content string) (string, error) {
	if content == "" {
		return "", nil
	}

	if !ColorsEnabled() {
		return content, nil
	}

	rendered, err := glamour.RenderWithEnvironmentConfig(content)
	if err != nil {
		return content, err
	}

	return strings.TrimSpace(rendered), nil
}

// EntityMarkdown documents e as a markdown section: its description, a
// field table and an association table.
func EntityMarkdown(e *schema.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Name)
	if e.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Description)
	}
	fmt.Fprintf(&b, "Stored in `%s`, identified by `%s`.\n\n", e.TableName(), strings.Join(e.IdentifierFields(), ", "))

	b.WriteString("## Fields\n\n| Name | Type | Column |\n| --- | --- | --- |\n")
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "| %s | %s | `%s` |\n", f.Name, typeName(f), f.ColumnName())
	}

	if len(e.Associations) > 0 {
		b.WriteString("\n## Associations\n\n| Name | Kind | Target | Storage |\n| --- | --- | --- | --- |\n")
		for _, a := range e.Associations {
			fmt.Fprintf(&b, "| %s | %s | %s | `%s` |\n", a.Name, a.Kind, a.Target, associationStorage(a))
		}
	}
	return b.String()
}
