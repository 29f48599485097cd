package history_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benchtrack/benchtrack/internal/history"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func testRun(name string, ts time.Time, rate float64) *history.Run {
	return &history.Run{
		Name:      name,
		Timestamp: ts,
		Total:     2,
		Success:   1,
		Failed:    1,
		Rate:      rate,
		Tasks: []history.TaskOutcome{
			{Task: "task-a", Status: history.StatusSuccess, DurationMS: intPtr(1200)},
			{Task: "task-b", Status: history.StatusFailed, ErrorMessage: strPtr("assertion failed")},
		},
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	h := store.Load()
	if len(h.Runs) != 0 {
		t.Errorf("expected empty history, got %d runs", len(h.Runs))
	}
	if h.Version != "1.0" {
		t.Errorf("version: got %q, want %q", h.Version, "1.0")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("nightly-01", ts, 50)
	run.Metadata = map[string]any{"agent": "v2"}

	if err := store.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := store.Load()
	if len(h.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(h.Runs))
	}
	got := h.Runs[0]
	if got.Name != "nightly-01" || !got.Timestamp.Equal(ts) || got.Rate != 50 {
		t.Errorf("run header mismatch: %+v", got)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got.Tasks))
	}
	if got.Tasks[0].DurationMS == nil || *got.Tasks[0].DurationMS != 1200 {
		t.Errorf("duration not preserved: %v", got.Tasks[0].DurationMS)
	}
	if got.Tasks[1].ErrorMessage == nil || *got.Tasks[1].ErrorMessage != "assertion failed" {
		t.Errorf("error message not preserved: %v", got.Tasks[1].ErrorMessage)
	}
	if got.Metadata["agent"] != "v2" {
		t.Errorf("metadata not preserved: %v", got.Metadata)
	}
	if h.LastUpdated.IsZero() {
		t.Error("last_updated not stamped")
	}
}

func TestSaveReplacesSameName(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(testRun("nightly", ts, 40)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(testRun("nightly", ts.Add(time.Hour), 90)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	h := store.Load()
	if len(h.Runs) != 1 {
		t.Fatalf("expected 1 run after overwrite, got %d", len(h.Runs))
	}
	if h.Runs[0].Rate != 90 {
		t.Errorf("rate: got %v, want second payload's 90", h.Runs[0].Rate)
	}
}

func TestSaveSortsByTimestamp(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for _, r := range []*history.Run{
		testRun("c", base.Add(48*time.Hour), 70),
		testRun("a", base, 70),
		testRun("b", base.Add(24*time.Hour), 70),
	} {
		if err := store.Save(r); err != nil {
			t.Fatalf("Save %s: %v", r.Name, err)
		}
	}

	h := store.Load()
	if len(h.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(h.Runs))
	}
	for i := 1; i < len(h.Runs); i++ {
		if h.Runs[i].Timestamp.Before(h.Runs[i-1].Timestamp) {
			t.Errorf("runs out of order at %d: %s before %s", i, h.Runs[i].Name, h.Runs[i-1].Name)
		}
	}
	if h.Runs[0].Name != "a" || h.Runs[2].Name != "c" {
		t.Errorf("unexpected order: %s, %s, %s", h.Runs[0].Name, h.Runs[1].Name, h.Runs[2].Name)
	}
}

func TestLoadSkipsCorruptRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	doc := `{
  "version": "1.0",
  "last_updated": "2026-08-01T00:00:00Z",
  "runs": [
    {"run_name": "good", "timestamp": "2026-08-01T00:00:00Z", "total": 1, "success": 1, "failed": 0, "timeout": 0, "rate": 100, "tasks": []},
    {"run_name": 42, "timestamp": "2026-08-02T00:00:00Z"},
    {"timestamp": "2026-08-03T00:00:00Z", "total": 1},
    "bogus"
  ]
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	h := history.NewStore(path, 0).Load()
	if len(h.Runs) != 1 {
		t.Fatalf("expected corrupt records skipped, got %d runs", len(h.Runs))
	}
	if h.Runs[0].Name != "good" {
		t.Errorf("surviving run: got %q, want %q", h.Runs[0].Name, "good")
	}
}

func TestLoadMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := history.NewStore(path, 0).Load()
	if len(h.Runs) != 0 {
		t.Errorf("expected empty history from malformed document, got %d runs", len(h.Runs))
	}
}

func TestRetentionCap(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 2)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "mid", "new"} {
		if err := store.Save(testRun(name, base.Add(time.Duration(i)*time.Hour), 70)); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	h := store.Load()
	if len(h.Runs) != 2 {
		t.Fatalf("expected 2 retained runs, got %d", len(h.Runs))
	}
	if h.Runs[0].Name != "mid" || h.Runs[1].Name != "new" {
		t.Errorf("expected oldest trimmed, got %s, %s", h.Runs[0].Name, h.Runs[1].Name)
	}
}

func TestDocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := history.NewStore(path, 0)
	if err := store.Save(testRun("nightly", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), 50)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	for _, key := range []string{"version", "last_updated", "runs"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q field", key)
		}
	}
	runs := doc["runs"].([]any)
	run := runs[0].(map[string]any)
	for _, key := range []string{"run_name", "timestamp", "total", "success", "failed", "timeout", "rate", "tasks"} {
		if _, ok := run[key]; !ok {
			t.Errorf("run record missing %q field", key)
		}
	}
	task := run["tasks"].([]any)[0].(map[string]any)
	for _, key := range []string{"task", "status", "duration_ms", "error_message"} {
		if _, ok := task[key]; !ok {
			t.Errorf("task record missing %q field", key)
		}
	}
}
