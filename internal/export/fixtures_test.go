package export_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/record"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
	"github.com/ALT-F4-LLC/ferry/internal/source/memory"
)

var fixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func testCatalog(t *testing.T) *schema.Catalog {
	t.Helper()
	c, err := schema.NewCatalog(
		&schema.Entity{
			Name: "user",
			Fields: []schema.Field{
				{Name: "id", Type: schema.TypeInteger},
				{Name: "email"},
				{Name: "firstName"},
				{Name: "lastName"},
				{Name: "isActive", Type: schema.TypeBoolean},
				{Name: "age", Type: schema.TypeInteger},
				{Name: "score", Type: schema.TypeFloat},
				{Name: "createdAt", Type: schema.TypeDateTime},
				{Name: "bio"},
			},
		},
		&schema.Entity{
			Name:   "tag",
			Fields: []schema.Field{{Name: "id"}, {Name: "name"}},
		},
		&schema.Entity{
			Name:   "article",
			Fields: []schema.Field{{Name: "id"}, {Name: "title"}},
			Associations: []schema.Association{
				{Name: "author", Kind: schema.ToOne, Target: "user"},
				{Name: "tags", Kind: schema.ToMany, Target: "tag"},
			},
		},
		&schema.Entity{
			Name:   "simple",
			Fields: []schema.Field{{Name: "id"}},
		},
	)
	require.NoError(t, err)
	return c
}

type people struct {
	src   *memory.Source
	users []*memory.Record
}

func newSource(t *testing.T) *people {
	t.Helper()
	src := memory.New(testCatalog(t))

	rows := []struct {
		first, last string
		active      bool
		age         any
		score       any
		bio         any
	}{
		{"John", "Doe", true, 30, 85.5, "Hello, world"},
		{"Jane", "Smith", false, 25, 92.0, nil},
		{"Bob", "Johnson", true, 45, nil, `Says "hi"`},
		{"Alice", "Williams", true, 17, 77.25, "Line1\nLine2"},
		{"Charlie", "Brown", false, nil, 60.0, "<b>bold</b> & more"},
		{"Diana", "Prince", true, 33, 99.9, ""},
	}
	var users []*memory.Record
	for i, r := range rows {
		users = append(users, memory.NewRecord("user", map[string]any{
			"id":        i + 1,
			"email":     strings.ToLower(r.first) + "@example.com",
			"firstName": r.first,
			"lastName":  r.last,
			"isActive":  r.active,
			"age":       r.age,
			"score":     r.score,
			"createdAt": fixedTime.Add(time.Duration(i) * time.Hour),
			"bio":       r.bio,
		}))
	}
	require.NoError(t, src.Add(users...))

	go1 := memory.NewRecord("tag", map[string]any{"id": "go", "name": "Go"})
	db := memory.NewRecord("tag", map[string]any{"id": "db", "name": "Databases"})
	require.NoError(t, src.Add(go1, db))
	require.NoError(t, src.Add(
		memory.NewRecord("article", map[string]any{"id": 1, "title": "Streams", "author": users[0], "tags": []*memory.Record{go1, db}}),
		memory.NewRecord("article", map[string]any{"id": 2, "title": "Orphan", "author": (*memory.Record)(nil), "tags": []*memory.Record{}}),
	))

	return &people{src: src, users: users}
}

type recordingListener struct {
	pre    []export.Event
	post   []export.Summary
	failed []error
}

func (l *recordingListener) PreExport(_ context.Context, ev export.Event) {
	l.pre = append(l.pre, ev)
}

func (l *recordingListener) PostExport(_ context.Context, _ export.Event, sum export.Summary) {
	l.post = append(l.post, sum)
}

func (l *recordingListener) ExportFailed(_ context.Context, _ export.Event, err error) {
	l.failed = append(l.failed, err)
}

// collect drains a stream into a string, returning the first error.
func collect(seq func(func(string, error) bool)) (string, error) {
	var b strings.Builder
	for frag, err := range seq {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

func upper(field string) export.Transformer {
	return export.TransformerFunc(func(_ context.Context, _ export.Record, row *record.Row, _ export.Options) (*record.Row, error) {
		if v, ok := row.Get(field); ok {
			if s, ok := v.(string); ok {
				row.Set(field, strings.ToUpper(s))
			}
		}
		return row, nil
	})
}

func bracket(field string) export.Transformer {
	return export.TransformerFunc(func(_ context.Context, _ export.Record, row *record.Row, _ export.Options) (*record.Row, error) {
		if v, ok := row.Get(field); ok {
			if s, ok := v.(string); ok {
				row.Set(field, "["+s+"]")
			}
		}
		return row, nil
	})
}

var errBoom = errors.New("boom")

type trackingSink struct {
	strings.Builder
	opened, closed bool
	openErr        error
}

func (s *trackingSink) Open() (io.WriteCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened = true
	return s, nil
}

func (s *trackingSink) Close() error {
	s.closed = true
	return nil
}

// failingSink accepts writes until the failOn-th one, which returns errBoom.
type failingSink struct {
	strings.Builder
	failOn int
	writes int
	closed bool
}

func (s *failingSink) Open() (io.WriteCloser, error) { return s, nil }

func (s *failingSink) Write(p []byte) (int, error) {
	s.writes++
	if s.writes >= s.failOn {
		return 0, errBoom
	}
	return s.Builder.Write(p)
}

func (s *failingSink) Close() error {
	s.closed = true
	return nil
}
