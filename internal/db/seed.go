package db

import (
	"database/sql"
	"fmt"

	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

type demoUser struct {
	id        int
	email     string
	firstName string
	lastName  string
	active    bool
	age       any
	score     any
	bio       any
	createdAt string
}

type demoArticle struct {
	id          int
	authorID    any
	title       string
	metadata    any
	publishedAt any
}

var demoUsers = []demoUser{
	{1, "alice@example.com", "Alice", "Smith", true, 34, 88.5, "Writes about Go", "2024-01-15T10:30:00Z"},
	{2, "bob@example.com", "Bob", "Jones", false, nil, 72.25, nil, "2024-02-01T09:00:00Z"},
	{3, "carol@example.com", "Carol", "White", true, 28, 91.0, `Likes "quotes", commas`, "2024-03-10T14:45:00Z"},
	{4, "dave@example.com", "Dave", "Brown", true, 41, nil, "Line one\nLine two", "2024-04-22T08:15:00Z"},
}

var demoTags = []string{"go", "databases", "testing"}

var demoArticles = []demoArticle{
	{1, 1, "Streaming exports", `{"words":1200}`, "2024-05-01T12:00:00Z"},
	{2, 1, "SQL dialects", nil, nil},
	{3, 3, "Table tests", `{"draft":false,"words":800}`, "2024-06-12T16:30:00Z"},
	{4, nil, "Orphan notes", nil, nil},
}

var demoArticleTags = [][2]int{{1, 1}, {1, 2}, {2, 2}, {3, 1}, {3, 3}}

// Seed fills an initialized demo database with sample users, tags and
// articles. It does nothing when users already exist.
func Seed(db *sql.DB) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range demoUsers {
		active := 0
		if u.active {
			active = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO users (id, email, first_name, last_name, is_active, age, score, bio, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.id, u.email, u.firstName, u.lastName, active, u.age, u.score, u.bio, u.createdAt,
		); err != nil {
			return fmt.Errorf("inserting user %d: %w", u.id, err)
		}
	}

	for i, name := range demoTags {
		if _, err := tx.Exec(`INSERT INTO tags (id, name) VALUES (?, ?)`, i+1, name); err != nil {
			return fmt.Errorf("inserting tag %q: %w", name, err)
		}
	}

	for _, a := range demoArticles {
		if _, err := tx.Exec(
			`INSERT INTO articles (id, author_id, title, metadata, published_at) VALUES (?, ?, ?, ?, ?)`,
			a.id, a.authorID, a.title, a.metadata, a.publishedAt,
		); err != nil {
			return fmt.Errorf("inserting article %d: %w", a.id, err)
		}
	}

	for _, at := range demoArticleTags {
		if _, err := tx.Exec(`INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?)`, at[0], at[1]); err != nil {
			return fmt.Errorf("tagging article %d: %w", at[0], err)
		}
	}

	return tx.Commit()
}

// DemoEntities returns the entity definitions matching the demo schema.
func DemoEntities() []*schema.Entity {
	return []*schema.Entity{
		{
			Name:        "user",
			Table:       "users",
			Description: "People who write articles.",
			Fields: []schema.Field{
				{Name: "id", Type: schema.TypeInteger},
				{Name: "email", Type: schema.TypeString},
				{Name: "firstName", Column: "first_name", Type: schema.TypeString},
				{Name: "lastName", Column: "last_name", Type: schema.TypeString},
				{Name: "isActive", Column: "is_active", Type: schema.TypeBoolean},
				{Name: "age", Type: schema.TypeInteger},
				{Name: "score", Type: schema.TypeFloat},
				{Name: "bio", Type: schema.TypeString},
				{Name: "createdAt", Column: "created_at", Type: schema.TypeDateTime},
			},
			Associations: []schema.Association{
				{Name: "articles", Kind: schema.ToMany, Target: "article", MappedBy: "author_id"},
			},
		},
		{
			Name:        "tag",
			Table:       "tags",
			Description: "Labels attached to articles.",
			Fields: []schema.Field{
				{Name: "id", Type: schema.TypeInteger},
				{Name: "name", Type: schema.TypeString},
			},
		},
		{
			Name:        "article",
			Table:       "articles",
			Description: "Published or draft articles.",
			Fields: []schema.Field{
				{Name: "id", Type: schema.TypeInteger},
				{Name: "title", Type: schema.TypeString},
				{Name: "metadata", Type: schema.TypeJSON},
				{Name: "publishedAt", Column: "published_at", Type: schema.TypeDateTime},
			},
			Associations: []schema.Association{
				{Name: "author", Kind: schema.ToOne, Target: "user", Column: "author_id"},
				{Name: "tags", Kind: schema.ToMany, Target: "tag", JoinTable: "article_tags", JoinColumn: "article_id", InverseColumn: "tag_id"},
			},
		},
	}
}
