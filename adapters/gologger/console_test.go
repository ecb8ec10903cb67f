package gologger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestConsoleLogger_InfoLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, false)

	logger.Debug("hidden")
	logger.Trace("hidden too")
	logger.Info("webhook for enigma \"abc123\" count \"6\" was successful", "enigma_id", "e1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug records to be dropped, got %q", out)
	}
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "enigma_id=e1") {
		t.Fatalf("expected info record with fields, got %q", out)
	}
}

func TestConsoleLogger_DebugModeEmitsTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, true)

	logger.Trace("tracing")
	logger.Debug("debugging")

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Fatalf("expected trace level name, got %q", out)
	}
	if !strings.Contains(out, "level=DEBUG") {
		t.Fatalf("expected debug record, got %q", out)
	}
}

func TestConsoleLogger_FatalExits(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, false)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal("cannot start")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "level=FATAL") {
		t.Fatalf("expected fatal level name, got %q", buf.String())
	}
}

func TestConsoleLogger_FieldsAndProvider(t *testing.T) {
	var buf bytes.Buffer
	root := NewConsoleLogger(&buf, false)

	root.WithFields(map[string]any{"b": 2, "a": 1}).WithContext(context.Background()).Warn("fields")
	line := buf.String()
	if strings.Index(line, "a=1") > strings.Index(line, "b=2") {
		t.Fatalf("expected fields in key order, got %q", line)
	}

	buf.Reset()
	NewConsoleProvider(root).GetLogger("enigma.inbound").Error("boom")
	if !strings.Contains(buf.String(), "logger=enigma.inbound") {
		t.Fatalf("expected provider to name the logger, got %q", buf.String())
	}

	if NewConsoleProvider(nil).GetLogger("x") == nil {
		t.Fatalf("expected nop logger for empty provider")
	}
}
