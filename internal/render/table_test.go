package render

import (
	"strings"
	"testing"

	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

func testEntities() []*schema.Entity {
	return []*schema.Entity{
		{
			Name:        "user",
			Table:       "users",
			Description: "People who write articles",
			Fields: []schema.Field{
				{Name: "id", Type: schema.TypeInteger},
				{Name: "email"},
				{Name: "createdAt", Column: "created_at", Type: schema.TypeDateTime},
			},
			Associations: []schema.Association{
				{Name: "articles", Kind: schema.ToMany, Target: "article", MappedBy: "author_id"},
			},
		},
		{
			Name:   "article",
			Table:  "articles",
			Fields: []schema.Field{{Name: "id", Type: schema.TypeInteger}, {Name: "title"}},
			Associations: []schema.Association{
				{Name: "author", Kind: schema.ToOne, Target: "user", Column: "author_id"},
				{Name: "tags", Kind: schema.ToMany, Target: "tag", JoinTable: "article_tags", JoinColumn: "article_id", InverseColumn: "tag_id"},
			},
		},
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer description", 10, "a much ..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestEmptyStatePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := EmptyState("Nothing.", "Try again", false); got != "Nothing.\nTry again" {
		t.Errorf("EmptyState = %q", got)
	}
	if got := EmptyState("Nothing.", "Try again", true); got != "Nothing." {
		t.Errorf("EmptyState quiet = %q", got)
	}
}

func TestRenderFormatsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderFormats([]format.Format{format.CSV, format.JSON, format.XML})
	want := "Format  Extension  Media Type\n" +
		"-----------------------------------\n" +
		"csv     .csv       text/csv\n" +
		"json    .json      application/json\n" +
		"xml     .xml       application/xml\n"
	if got != want {
		t.Errorf("RenderFormats =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderEntitiesPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderEntities(testEntities())
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "Entity") {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range []string{"user", "article"} {
		fields := strings.Fields(lines[i+2])
		if fields[0] != want {
			t.Errorf("row %d entity = %q, want %q", i, fields[0], want)
		}
	}
	if !strings.Contains(lines[2], "People who write articles") {
		t.Errorf("user row missing description: %q", lines[2])
	}
}

func TestRenderEntitiesEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderEntities(nil)
	if !strings.HasPrefix(got, "No entities configured.") {
		t.Errorf("RenderEntities(nil) = %q", got)
	}
}

func TestRenderFieldsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderFields(testEntities()[1])
	for _, want := range []string{
		"id *",
		"title   field    string   title",
		"author  to_one   user     author_id",
		"article_tags(article_id, tag_id)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
}

func TestAssociationStorage(t *testing.T) {
	tests := []struct {
		name string
		a    schema.Association
		want string
	}{
		{"column", schema.Association{Column: "author_id"}, "author_id"},
		{"join table", schema.Association{JoinTable: "jt", JoinColumn: "a", InverseColumn: "b"}, "jt(a, b)"},
		{"mapped by", schema.Association{MappedBy: "author_id"}, "<- author_id"},
		{"none", schema.Association{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := associationStorage(tt.a); got != tt.want {
				t.Errorf("associationStorage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderAssociationTreePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderAssociationTree(testEntities())
	want := "user\n" +
		"  articles to_many -> article\n" +
		"article\n" +
		"  author to_one -> user\n" +
		"  tags to_many -> tag\n"
	if got != want {
		t.Errorf("RenderAssociationTree =\n%s\nwant\n%s", got, want)
	}
}

func TestColorPathsExecute(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")

	entities := testEntities()
	for name, out := range map[string]string{
		"entities": RenderEntities(entities),
		"fields":   RenderFields(entities[0]),
		"formats":  RenderFormats([]format.Format{format.CSV}),
		"tree":     RenderAssociationTree(entities),
	} {
		if !strings.Contains(out, "user") && !strings.Contains(out, "csv") {
			t.Errorf("%s: colored output missing content:\n%s", name, out)
		}
	}
}

func TestEntityMarkdown(t *testing.T) {
	got := EntityMarkdown(testEntities()[0])

	for _, want := range []string{
		"# user\n\nPeople who write articles\n\n",
		"Stored in `users`, identified by `id`.",
		"| createdAt | datetime | `created_at` |",
		"| email | string | `email` |",
		"## Associations",
		"| articles | to_many | article | `<- author_id` |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in markdown, got:\n%s", want, got)
		}
	}
}

func TestRenderMarkdownPlainPassthrough(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got, err := RenderMarkdown("# Title")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if got != "# Title" {
		t.Errorf("RenderMarkdown = %q, want passthrough", got)
	}
}
