package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newCapture() (*bytes.Buffer, Logger) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &buf, NewSlogLogger(slog.New(h))
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func TestSlogLogger_FieldsAndWith(t *testing.T) {
	buf, l := newCapture()
	l.With(String("component", "layout")).Warn("degraded", Int("page", 3), Error("error", errors.New("boom")))

	recs := records(t, buf)
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	rec := recs[0]
	if rec["msg"] != "degraded" || rec["level"] != "WARN" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["component"] != "layout" || rec["page"] != float64(3) || rec["error"] != "boom" {
		t.Fatalf("fields not propagated: %v", rec)
	}
}

func TestNewSlogLogger_Nil(t *testing.T) {
	l := NewSlogLogger(nil)
	l.Info("discarded")
	l.With(String("k", "v")).Error("discarded")
}

func TestTrace_Success(t *testing.T) {
	buf, l := newCapture()
	if err := Trace(l, "GenerateTourReport", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs := records(t, buf)
	if len(recs) != 2 {
		t.Fatalf("expected entry and exit records, got %d", len(recs))
	}
	if recs[0]["msg"] != "entering" || recs[1]["msg"] != "exiting" {
		t.Fatalf("unexpected messages: %v", recs)
	}
	if recs[1]["operation"] != "GenerateTourReport" {
		t.Fatalf("operation name missing: %v", recs[1])
	}
	if _, ok := recs[1]["duration"]; !ok {
		t.Fatalf("duration missing: %v", recs[1])
	}
}

func TestTrace_ErrorAndPanic(t *testing.T) {
	buf, l := newCapture()
	sentinel := errors.New("write failed")
	if err := Trace(l, "op", func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	err := Trace(l, "op", func() error { panic("layout exploded") })
	if err == nil || !strings.Contains(err.Error(), "layout exploded") {
		t.Fatalf("panic not converted: %v", err)
	}
	failures := 0
	for _, rec := range records(t, buf) {
		if rec["msg"] == "failed" {
			failures++
		}
	}
	if failures != 2 {
		t.Fatalf("expected two failure records, got %d", failures)
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(NopLogger); !ok {
		t.Fatalf("nil should map to NopLogger")
	}
	_, l := newCapture()
	if OrNop(l) != l {
		t.Fatalf("non-nil logger should pass through")
	}
}
