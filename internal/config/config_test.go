package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benchtrack/benchtrack/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchtrack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryFile != "benchtrack_history.json" {
		t.Errorf("history_file: got %q", cfg.HistoryFile)
	}
	if cfg.Regression.Threshold != 0.05 || cfg.Regression.TrendWindow != 3 {
		t.Errorf("regression defaults: %+v", cfg.Regression)
	}
	if cfg.Stability.MinRuns != 3 || cfg.Stability.FlakyMax != 80 {
		t.Errorf("stability defaults: %+v", cfg.Stability)
	}
	if cfg.Report.TrendRuns != 10 || cfg.Report.TargetRate != 70 {
		t.Errorf("report defaults: %+v", cfg.Report)
	}
	if cfg.Retention.MaxRuns != 0 {
		t.Errorf("retention default: %+v", cfg.Retention)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := writeConfig(t, `
history_file: /var/lib/bench/history.json
regression:
  threshold: 0.1
retention:
  max_runs: 50
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryFile != "/var/lib/bench/history.json" {
		t.Errorf("history_file: got %q", cfg.HistoryFile)
	}
	if cfg.Regression.Threshold != 0.1 {
		t.Errorf("threshold: got %v", cfg.Regression.Threshold)
	}
	if cfg.Retention.MaxRuns != 50 {
		t.Errorf("max_runs: got %d", cfg.Retention.MaxRuns)
	}
	// Untouched values keep their defaults.
	if cfg.Regression.TrendWindow != 3 || cfg.Report.RecentWindow != 5 {
		t.Errorf("defaults lost: %+v %+v", cfg.Regression, cfg.Report)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", ":\n  - ["},
		{"threshold too large", "regression:\n  threshold: 1.5\n"},
		{"zero threshold", "regression:\n  threshold: 0\n"},
		{"inverted flaky band", "stability:\n  flaky_min: 90\n  flaky_max: 10\n"},
		{"empty history file", "history_file: \"\"\n"},
		{"negative retention", "retention:\n  max_runs: -1\n"},
		{"warn above good", "report:\n  warn_rate: 90\n  good_rate: 60\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
