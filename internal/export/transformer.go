package export

import (
	"context"
	"fmt"

	"github.com/ALT-F4-LLC/ferry/internal/record"
)

// Transformer reads and rewrites the in-progress row of one record. It may
// overwrite values and add keys; returning nil keeps the row it was given.
type Transformer interface {
	Process(ctx context.Context, rec Record, row *record.Row, opts Options) (*record.Row, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(ctx context.Context, rec Record, row *record.Row, opts Options) (*record.Row, error)

// Process calls f.
func (f TransformerFunc) Process(ctx context.Context, rec Record, row *record.Row, opts Options) (*record.Row, error) {
	return f(ctx, rec, row, opts)
}

// Chain applies the default extractor followed by caller transformers.
type Chain struct {
	extractor Transformer
}

// NewChain returns a chain that runs extractor first unless the options
// disable default extraction. A nil extractor is never run.
func NewChain(extractor Transformer) *Chain {
	return &Chain{extractor: extractor}
}

// Process builds the initial row with every field set to nil and threads
// it through each transformer in order. Keys present at entry are present
// at exit, in their entry positions, even if a transformer returns a row
// without them.
func (c *Chain) Process(ctx context.Context, rec Record, fields []string, opts Options, custom []Transformer) (*record.Row, error) {
	row := record.New(fields)

	steps := make([]Transformer, 0, len(custom)+1)
	builtin := !opts.DisableDefaultExtraction && c.extractor != nil
	if builtin {
		steps = append(steps, c.extractor)
	}
	steps = append(steps, custom...)

	for i, t := range steps {
		next, err := t.Process(ctx, rec, row, opts)
		if err != nil {
			if i == 0 && builtin {
				return nil, err
			}
			return nil, fmt.Errorf("transformer %d (%T): %w", i, t, err)
		}
		if next != nil {
			row = next
		}
	}

	for _, f := range fields {
		if !row.Has(f) {
			return restoreFields(row, fields), nil
		}
	}
	return row, nil
}

// restoreFields returns fields in order, taking values from row and nil
// where row lacks them, followed by the remaining keys of row.
func restoreFields(row *record.Row, fields []string) *record.Row {
	out := record.New(fields)
	for k, v := range row.All() {
		out.Set(k, v)
	}
	return out
}
