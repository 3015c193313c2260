package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("suppressed")
	if buf.Len() != 0 {
		t.Errorf("debug message leaked through info level: %q", buf.String())
	}

	logger.Info("shown")
	logger.Warn("also shown")
	out := buf.String()
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("info/warn messages missing from output: %q", out)
	}

	buf.Reset()
	verbose := newLogger(&buf, log.DebugLevel)
	verbose.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug message missing at debug level: %q", buf.String())
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	// Sleep so the rounded duration cannot be zero.
	time.Sleep(10 * time.Millisecond)
	prog.done("Arranged 3 nodes")

	out := buf.String()
	if !strings.Contains(out, "Arranged 3 nodes") {
		t.Errorf("done() output missing the message: %q", out)
	}
	if !strings.Contains(out, "(") || !strings.Contains(out, ")") {
		t.Errorf("done() output missing the parenthesized duration: %q", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	loggerFromContext(ctx).Info("ping")

	if !strings.Contains(buf.String(), "ping") {
		t.Errorf("context logger did not receive the message: %q", buf.String())
	}
}

func TestLoggerContextFallback(t *testing.T) {
	// A bare context falls back to log.Default rather than nil.
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext returned nil for a bare context")
	}
}
