package observation

import (
	"io"
	"log"
)

const logPrefix = "[observation] "

// Decoder streams. A nil logger drops its messages.
var (
	opsLogger   *log.Logger // buffers too short for their config, rejected merges
	diagLogger  *log.Logger // decoder construction, empty-buffer zero observations
	traceLogger *log.Logger // one line per decoded buffer
)

// SetLogWriters routes the decoder's ops, diag and trace output. A nil
// writer silences that stream. Swap writers only while no Decoder is in
// use; the loggers are plain package variables.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger(ops)
	diagLogger = newLogger(diag)
	traceLogger = newLogger(trace)
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, logPrefix, log.LstdFlags|log.Lmicroseconds)
}

func logf(l *log.Logger, format string, args ...interface{}) {
	if l != nil {
		l.Printf(format, args...)
	}
}

// opsf reports a MalformedBufferError or IncompatibleObservablesError.
func opsf(format string, args ...interface{}) { logf(opsLogger, format, args...) }

func diagf(format string, args ...interface{}) { logf(diagLogger, format, args...) }

// tracef fires on every successful Decode, so keep it off in production.
func tracef(format string, args ...interface{}) { logf(traceLogger, format, args...) }
