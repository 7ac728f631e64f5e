package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})
	log.With(String("variant", "Dry | Tired (2s)")).Warn(context.Background(), "undefined point", Float("speed_kmh", 40))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["msg"] != "undefined point" || rec["level"] != "WARN" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["variant"] != "Dry | Tired (2s)" || rec["speed_kmh"] != 40.0 {
		t.Fatalf("missing fields: %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	log.Error(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("error not logged: %q", buf.String())
	}
}

func TestEnsureRunIDIsStable(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a UUID: %v", id, err)
	}
	_, again := EnsureRunID(ctx)
	if again != id {
		t.Fatalf("second EnsureRunID = %q, want %q", again, id)
	}
}

func TestWithRunLoggerUsesExistingID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRunID(context.Background(), "run-42")
	ctx, log := WithRunLogger(ctx, New(Config{Format: "json", Output: &buf}))
	log.Info(ctx, "hello")
	if !strings.Contains(buf.String(), `"run_id":"run-42"`) {
		t.Fatalf("run id not attached: %q", buf.String())
	}
}

func TestNoopLogger(t *testing.T) {
	l := Noop().With(String("a", "b"))
	l.Info(context.Background(), "ignored")
	if _, log := WithRunLogger(context.TODO(), nil); log == nil {
		t.Fatal("WithRunLogger(context.TODO(), nil) returned nil logger")
	}
}
