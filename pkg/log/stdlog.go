package log

import (
	stdlog "log"
)

// stdWriter adapts a Logger into an io.Writer suitable for stdlog.SetOutput,
// so that libraries writing through the standard "log" package (pebble does)
// end up flowing through our formatter/output pipeline at InfoLevel.
type stdWriter struct {
	logger Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(p)
	for len(msg) > 0 && (msg[len(msg)-1] == '\n' || msg[len(msg)-1] == '\r') {
		msg = msg[:len(msg)-1]
	}
	w.logger.Info(msg, Str("source", "stdlib"))
	return len(p), nil
}

// RedirectStdLog routes the standard library's default logger through l.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdWriter{logger: l})
}

// ToStdLogger returns a *log.Logger whose output is routed through l at
// InfoLevel, for interop with APIs that require the standard library type.
func ToStdLogger(l Logger) *stdlog.Logger {
	return stdlog.New(stdWriter{logger: l}, "", 0)
}
