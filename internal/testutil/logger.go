// Package testutil holds shared test helpers: slog loggers routed through
// testing.TB and small Verilog designs used across packages.
package testutil

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// LogCapture records every line of a logger built by CaptureLogs.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// String returns everything logged so far.
func (c *LogCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// CaptureLogs is NewTestLogger that also keeps the text of every record,
// for tests asserting on log output. Safe for concurrent loggers.
func CaptureLogs(t testing.TB) (*slog.Logger, *LogCapture) {
	t.Helper()
	c := &LogCapture{}
	logger := slog.New(slog.NewTextHandler(testWriter{t: t, capture: c}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, c
}

type testWriter struct {
	t       testing.TB
	capture *LogCapture
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	if w.capture != nil {
		w.capture.mu.Lock()
		w.capture.buf.Write(p)
		w.capture.mu.Unlock()
	}
	w.t.Log(string(p))
	return len(p), nil
}
