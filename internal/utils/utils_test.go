package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	invalid := InvalidInput("simulate", "load_percent %.0f out of range", 140.0)
	wrapped := errors.Join(errors.New("context"), invalid)

	if KindOf(wrapped) != KindInvalidInput {
		t.Fatalf("expected invalid input kind")
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("plain errors are internal")
	}
	if !strings.Contains(invalid.Error(), "load_percent 140 out of range") {
		t.Fatalf("unexpected message %q", invalid.Error())
	}
}

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn", true)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"service":"mirador-twin"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestDurationDays(t *testing.T) {
	start, err := ParseRFC3339("2024-03-01T00:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	end := start.Add(36 * time.Hour)
	if got := DurationDays(start, end); got != 1.5 {
		t.Fatalf("expected 1.5 days, got %v", got)
	}
	if _, err := ParseRFC3339(""); err == nil {
		t.Fatalf("expected error for empty value")
	}
}

func TestParseRFC3339NormalisesToUTC(t *testing.T) {
	ts, err := ParseRFC3339("2024-03-01T02:30:00.250+02:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts.Location() != time.UTC || ts.Hour() != 0 || ts.Nanosecond() != 250_000_000 {
		t.Fatalf("unexpected time %v", ts)
	}
	if _, err := ParseRFC3339("01/03/2024"); KindOf(err) != KindInvalidInput {
		t.Fatalf("malformed timestamp should be invalid input, got %v", err)
	}
}
