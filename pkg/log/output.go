package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes formatted entries to stderr, routing ErrorLevel and
// above separately from os.Stdout is intentionally avoided: a single stream
// keeps interleaving predictable when piped.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns an Output writing to os.Stderr.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{w: os.Stderr}
}

func (c *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		c.w = os.Stderr
	}
	_, err := c.w.Write(formatted)
	return err
}

func (c *ConsoleOutput) Close() error { return nil }

// WriterOutput adapts any io.Writer into an Output.
type WriterOutput struct {
	mu sync.Mutex
	W  io.Writer
	C  io.Closer
}

// NewWriterOutput wraps w. If w also implements io.Closer, Close forwards to it.
func NewWriterOutput(w io.Writer) *WriterOutput {
	wo := &WriterOutput{W: w}
	if c, ok := w.(io.Closer); ok {
		wo.C = c
	}
	return wo
}

func (w *WriterOutput) Write(_ *Entry, formatted []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.W.Write(formatted)
	return err
}

func (w *WriterOutput) Close() error {
	if w.C == nil {
		return nil
	}
	return w.C.Close()
}

// NullOutput discards everything. Useful in tests that assert on returned
// values rather than log side effects.
type NullOutput struct{}

func (NullOutput) Write(*Entry, []byte) error { return nil }
func (NullOutput) Close() error               { return nil }
