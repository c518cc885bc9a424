package export

import (
	"io"
	"os"
)

// Sink is a byte destination opened once per export.
type Sink interface {
	Open() (io.WriteCloser, error)
}

// FileSink creates or truncates the file at path.
func FileSink(path string) Sink { return fileSink(path) }

type fileSink string

func (p fileSink) Open() (io.WriteCloser, error) {
	return os.Create(string(p))
}

func (p fileSink) String() string { return string(p) }

// WriterSink writes to w. Closing the sink does not close w.
func WriterSink(w io.Writer) Sink { return writerSink{w} }

type writerSink struct{ w io.Writer }

func (s writerSink) Open() (io.WriteCloser, error) {
	return nopCloser{s.w}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// countingWriter tracks how many bytes reached the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
