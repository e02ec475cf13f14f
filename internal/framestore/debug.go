package framestore

import (
	"io"
	"log"
)

// The store has no per-frame stream: SaveFrame and LoadFrame stay quiet
// and report through their returned errors.
var (
	opsLogger  *log.Logger
	diagLogger *log.Logger
)

// SetLogWriters sets where the store writes replay failures (ops) and
// open/session/replay lifecycle events (diag). nil disables a stream.
func SetLogWriters(ops, diag io.Writer) {
	opsLogger = storeLogger(ops)
	diagLogger = storeLogger(diag)
}

func storeLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[framestore] ", log.LstdFlags|log.Lmicroseconds)
}

// opsf names the session and frame a replay callback rejected.
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}
