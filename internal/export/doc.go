// Package export streams records from a Source through a transformer chain
// into a format strategy.
//
// # Pipeline
//
// An Exporter validates the request against the entity's field map, signals
// the configured Listener, opens a cursor on the Source and then pulls one
// record at a time. Each record becomes a record.Row keyed by the resolved
// field list, passes through the Chain (the FieldExtractor first unless
// disabled, then caller transformers in order), is rendered by the strategy
// and is detached from the source before the next record is fetched.
//
// Stream returns the fragments as an iter.Seq2. Stopping the iteration
// early closes the cursor. ExportToSink writes the fragments to a Sink and
// always closes it.
//
// # Errors
//
// Request problems surface as *ValidationError, unknown entities as
// *SourceNotFoundError, unknown formats as *UnsupportedFormatError and sink
// failures as *SinkIOError. Nothing is retried.
package export
