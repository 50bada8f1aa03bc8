package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf})
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WARN)

	l.Infof("hidden %d", 1)
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below WARN, got %q", buf.String())
	}

	l.Warnf("segment %d has %d triggers", 3, 40)
	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "segment 3 has 40 triggers") {
		t.Errorf("unexpected output %q", out)
	}

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("expected debug output after SetLevel, got %q", buf.String())
	}
}

func TestErrorLevel(t *testing.T) {
	l, buf := newTestLogger(ERROR)
	l.Warn("dropped")
	l.Errorf("failed: %v", "boom")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("warn should be filtered at ERROR, got %q", out)
	}
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "failed: boom") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestWithAddsField(t *testing.T) {
	l, buf := newTestLogger(INFO)
	l.With("segment", 7).Info("searching")
	out := buf.String()
	if !strings.Contains(out, "searching") || !strings.Contains(out, "segment") {
		t.Errorf("expected field in output, got %q", out)
	}

	buf.Reset()
	l.Info("plain")
	if strings.Contains(buf.String(), "segment") {
		t.Errorf("parent logger should not carry child fields, got %q", buf.String())
	}
}

func TestSetOutput(t *testing.T) {
	l, first := newTestLogger(INFO)
	var second bytes.Buffer
	l.SetOutput(&second)
	l.Info("moved")
	if first.Len() != 0 || !strings.Contains(second.String(), "moved") {
		t.Errorf("output not redirected: first=%q second=%q", first.String(), second.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"Error":   ERROR,
		"fatal":   FATAL,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
