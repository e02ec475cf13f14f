// Package monitoring summarises decoded observations: per-frame
// statistics, running counters, and depth heatmap export.
package monitoring

import (
	"io"
	"log"
)

var (
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters wires the Monitor and heatmap output. ops receives decode
// failures, diag the every-N-frames summaries and written heatmap paths,
// trace the statistics of each frame. nil disables a stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = monitorLogger(ops)
	diagLogger = monitorLogger(diag)
	traceLogger = monitorLogger(trace)
}

func monitorLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[monitoring] ", log.LstdFlags|log.Lmicroseconds)
}

// opsf records a frame the Monitor saw fail.
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// diagf carries interval summaries; Monitor calls it at most once per
// interval frames.
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
