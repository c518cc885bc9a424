package export

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/ALT-F4-LLC/ferry/internal/format"
	"github.com/ALT-F4-LLC/ferry/internal/schema"
)

// Exporter runs exports against one Source.
type Exporter struct {
	source   Source
	registry *format.Registry
	chain    *Chain
	listener Listener
	logger   *slog.Logger
	now      func() time.Time
	newRunID func() string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithListener sets the lifecycle listener.
func WithListener(l Listener) Option {
	return func(e *Exporter) { e.listener = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithRunID replaces the run identifier generator.
func WithRunID(fn func() string) Option {
	return func(e *Exporter) { e.newRunID = fn }
}

// New returns an Exporter reading from source. A nil registry means the
// default CSV, JSON and XML strategies.
func New(source Source, registry *format.Registry, opts ...Option) *Exporter {
	if registry == nil {
		registry = format.DefaultRegistry(format.Settings{})
	}
	e := &Exporter{
		source:   source,
		registry: registry,
		chain:    NewChain(NewFieldExtractor(source)),
		listener: NopListener{},
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.listener == nil {
		e.listener = NopListener{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Result summarizes a completed ExportToSink call.
type Result struct {
	RunID    string        `json:"run_id"`
	Records  int           `json:"records"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

type runStats struct {
	runID    string
	count    int
	duration time.Duration
	// abort is set by a consumer before it stops the sequence because of
	// its own failure, so the run can report it to the listener.
	abort error
}

// Stream returns the output fragments of one export in order. The
// sequence is lazy and single-pass; ranging over it again runs the query
// again. Any error is yielded once and ends the sequence.
func (e *Exporter) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return e.stream(ctx, req, nil)
}

func (e *Exporter) stream(ctx context.Context, req Request, st *runStats) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stats := st
		if stats == nil {
			stats = &runStats{}
		}
		if err := e.run(ctx, req, stats, yield); err != nil {
			e.logger.ErrorContext(ctx, "export failed",
				"run_id", stats.runID,
				"entity", req.Entity,
				"format", string(req.Format),
				"error", err,
			)
			if err != stats.abort {
				yield("", err)
			}
		}
	}
}

// Export writes the export to w without closing it.
func (e *Exporter) Export(ctx context.Context, req Request, w io.Writer) (Result, error) {
	return e.ExportToSink(ctx, req, WriterSink(w))
}

// ExportToFile writes the export to the file at path, creating or
// truncating it. A file that cannot be opened yields a *SinkIOError.
func (e *Exporter) ExportToFile(ctx context.Context, req Request, path string) (Result, error) {
	return e.ExportToSink(ctx, req, FileSink(path))
}

// ExportToSink opens sink, writes every fragment to it and closes it on
// every exit path. Output written before a failure is left in place.
func (e *Exporter) ExportToSink(ctx context.Context, req Request, sink Sink) (res Result, err error) {
	name := ""
	if s, ok := sink.(fmt.Stringer); ok {
		name = s.String()
	}

	wc, err := sink.Open()
	if err != nil {
		return Result{}, &SinkIOError{Op: "open", Path: name, Cause: err}
	}
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = &SinkIOError{Op: "close", Path: name, Cause: cerr}
		}
	}()

	cw := &countingWriter{w: wc}
	var st runStats
	for frag, ferr := range e.stream(ctx, req, &st) {
		if ferr != nil {
			return Result{RunID: st.runID, Records: st.count, Bytes: cw.n}, ferr
		}
		if _, werr := io.WriteString(cw, frag); werr != nil {
			st.abort = &SinkIOError{Op: "write", Path: name, Cause: werr}
			break
		}
	}
	if st.abort != nil {
		return Result{RunID: st.runID, Records: st.count, Bytes: cw.n}, st.abort
	}

	return Result{
		RunID:    st.runID,
		Records:  st.count,
		Bytes:    cw.n,
		Duration: st.duration,
	}, nil
}

// run drives one export. Fragments go to yield; a returned error other than
// st.abort has not been yielded yet. A false return from yield stops the
// run with st.abort, which is nil for a plain early stop.
func (e *Exporter) run(ctx context.Context, req Request, st *runStats, yield func(string, error) bool) (runErr error) {
	opts := req.options()

	entity, err := e.source.Metadata(req.Entity)
	if err != nil {
		return err
	}
	if err := validateRequest(entity, req, opts); err != nil {
		return err
	}
	strategy, err := e.registry.Strategy(req.Format)
	if err != nil {
		return err
	}

	ev := Event{
		RunID:     e.newRunID(),
		Entity:    entity.Name,
		Format:    strategy.Format(),
		Criteria:  maps.Clone(req.Criteria),
		OrderBy:   req.orderBy(),
		Limit:     req.Limit,
		Offset:    req.Offset,
		Fields:    req.requestedFields(),
		Options:   opts,
		StartedAt: e.now(),
	}
	st.runID = ev.RunID

	e.listener.PreExport(ctx, ev)
	e.logger.DebugContext(ctx, "export started",
		"run_id", ev.RunID,
		"entity", ev.Entity,
		"format", string(ev.Format),
	)
	if fl, ok := e.listener.(FailureListener); ok {
		defer func() {
			if runErr != nil {
				fl.ExportFailed(ctx, ev, runErr)
			}
		}()
	}

	cur, err := e.source.Query(ctx, Query{
		Entity:   entity.Name,
		Criteria: req.criteria(),
		OrderBy:  ev.OrderBy,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return fmt.Errorf("querying %s: %w", entity.Name, err)
	}
	defer cur.Close()

	var fields []string
	for cur.Next() {
		rec := cur.Record()
		if err := ctx.Err(); err != nil {
			e.source.Detach(rec)
			return err
		}

		if fields == nil {
			fields, err = e.resolveFields(rec.Type(), ev.Fields, opts)
			if err != nil {
				e.source.Detach(rec)
				return err
			}
			if h, ok := strategy.Header(fields); ok && !yield(h, nil) {
				e.source.Detach(rec)
				return st.abort
			}
		}

		frag, err := e.render(ctx, rec, fields, opts, req.Transformers, strategy)
		if err != nil {
			return err
		}
		st.count++
		if !yield(frag, nil) {
			return st.abort
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", entity.Name, err)
	}

	if fields == nil {
		fields, err = e.resolveFields(entity.Name, ev.Fields, opts)
		if err != nil {
			return err
		}
		if h, ok := strategy.Header(fields); ok && !yield(h, nil) {
			return st.abort
		}
	}
	if f, ok := strategy.Footer(); ok && !yield(f, nil) {
		return st.abort
	}

	st.duration = e.now().Sub(ev.StartedAt)
	if st.duration < 0 {
		st.duration = 0
	}
	sum := Summary{Count: st.count, Duration: st.duration}
	e.listener.PostExport(ctx, ev, sum)
	e.logger.DebugContext(ctx, "export finished",
		"run_id", ev.RunID,
		"entity", ev.Entity,
		"records", sum.Count,
		"duration", sum.Duration,
	)
	return nil
}

// render runs one record through the chain and the strategy, then detaches
// it from the source.
func (e *Exporter) render(ctx context.Context, rec Record, fields []string, opts Options, custom []Transformer, strategy format.Strategy) (string, error) {
	defer e.source.Detach(rec)

	row, err := e.chain.Process(ctx, rec, fields, opts, custom)
	if err != nil {
		return "", err
	}
	frag, err := strategy.Row(row)
	if err != nil {
		return "", fmt.Errorf("rendering %s row: %w", strategy.Format(), err)
	}
	return frag, nil
}

// resolveFields returns the requested fields, or every plain field of the
// entity when none were requested.
func (e *Exporter) resolveFields(entityName string, requested []string, opts Options) ([]string, error) {
	entity, err := e.source.Metadata(entityName)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return entity.FieldNames(), nil
	}
	if opts.StrictFields {
		if err := checkKnown(entity, requested, "fields"); err != nil {
			return nil, err
		}
	}
	return requested, nil
}

// validateRequest checks everything that can be checked before the source
// is queried.
func validateRequest(entity *schema.Entity, req Request, opts Options) error {
	for _, c := range req.criteria() {
		if err := checkFilterable(entity, c.Field, "criteria"); err != nil {
			return err
		}
	}
	for _, k := range req.OrderBy {
		if err := checkFilterable(entity, k.Field, "order by"); err != nil {
			return err
		}
		if _, err := ParseDirection(string(k.Direction)); err != nil {
			return &ValidationError{Entity: entity.Name, Field: "order by " + k.Field, Reason: err.Error()}
		}
	}
	if req.Limit < 0 {
		return &ValidationError{Entity: entity.Name, Field: "limit", Reason: "must not be negative"}
	}
	if req.Offset < 0 {
		return &ValidationError{Entity: entity.Name, Field: "offset", Reason: "must not be negative"}
	}
	if opts.StrictFields {
		return checkKnown(entity, req.Fields, "fields")
	}
	return nil
}

// checkFilterable rejects names that cannot restrict or order a query:
// unknown names and to-many associations.
func checkFilterable(entity *schema.Entity, name, usage string) error {
	if err := checkKnown(entity, []string{name}, usage); err != nil {
		return err
	}
	if a, ok := entity.Association(name); ok && a.Kind == schema.ToMany {
		return &ValidationError{
			Entity:  entity.Name,
			Field:   name,
			Context: usage,
			Reason:  fmt.Sprintf("to-many association cannot be used in %s", usage),
		}
	}
	return nil
}

func checkKnown(entity *schema.Entity, names []string, usage string) error {
	for _, n := range names {
		if !entity.Has(n) {
			return &ValidationError{
				Entity:    entity.Name,
				Field:     n,
				Context:   usage,
				Available: entity.Available(),
			}
		}
	}
	return nil
}
