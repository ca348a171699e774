// Package telemetry is the pipeline's structured logger. It mirrors
// internal/lidar/pipeline's three-stream logging split: an ops stream for
// actionable warnings (bad APs dropped, classifier version mismatches),
// a diag stream for day-to-day parameter/tuning context, and a trace
// stream for high-frequency per-pair/per-timestamp detail.
package telemetry

import (
	"io"
	"log"
)

var (
	opsLogger   *log.Logger = log.New(log.Writer(), "[comove] ", log.LstdFlags)
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetWriters configures the three logging streams. Pass nil for any
// writer to silence that stream.
func SetWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger(ops)
	diagLogger = newLogger(diag)
	traceLogger = newLogger(trace)
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[comove] ", log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs an actionable, user-facing message.
func Opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// Diagf logs day-to-day diagnostic information (parameters, stage sizes).
func Diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

// Tracef logs high-frequency per-pair / per-timestamp detail.
func Tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
