package sqlsource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ALT-F4-LLC/ferry/internal/export"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// cursor streams rows one at a time; nothing beyond the current row is
// buffered by the source.
type cursor struct {
	src    *Source
	ctx    context.Context
	q      queryer
	pinned *sql.Conn
	rows   *sql.Rows
	entity *schema.Entity
	cols   []column
	cur    *Record
	err    error
}

func (c *cursor) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.rows.Next() {
		return false
	}
	if c.cols == nil {
		c.cols = c.src.columns(c.entity, "")
	}

	raw, ptrs := scanTargets(len(c.cols))
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = fmt.Errorf("scanning %s: %w", c.entity.Name, err)
		return false
	}
	rec := newRecord(c.ctx, c.src, c.q, c.entity)
	rec.assign(c.cols, raw)
	c.cur = rec
	return true
}

func (c *cursor) Record() export.Record { return c.cur }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *cursor) Close() error {
	err := c.rows.Close()
	if c.pinned != nil {
		if cerr := c.pinned.Close(); err == nil {
			err = cerr
		}
		c.pinned = nil
	}
	return err
}
