package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const docVersion = "1.0"

// Store owns the history document. One process at a time: every save is a
// full load-modify-rewrite of the file.
type Store struct {
	path    string
	maxRuns int
}

// NewStore returns a store for the document at path. maxRuns caps retained
// history at save time; 0 keeps everything.
func NewStore(path string, maxRuns int) *Store {
	return &Store{path: path, maxRuns: maxRuns}
}

// rawDocument keeps run records undecoded so one corrupt entry does not
// poison the rest of the document.
type rawDocument struct {
	Version     string            `json:"version"`
	LastUpdated time.Time         `json:"last_updated"`
	Runs        []json.RawMessage `json:"runs"`
}

// Load reads the history document. A missing file or an unparsable document
// yields an empty history; run records that fail to decode are skipped. Load
// never fails: degraded outcomes are logged instead.
func (s *Store) Load() *History {
	empty := &History{Version: docVersion}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("no history file, starting fresh", "path", s.path)
			return empty
		}
		slog.Error("reading history file", "path", s.path, "error", err)
		return empty
	}
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Error("history document is malformed, treating as empty", "path", s.path, "error", err)
		return empty
	}
	h := &History{Version: doc.Version, LastUpdated: doc.LastUpdated}
	if h.Version == "" {
		h.Version = docVersion
	}
	for i, raw := range doc.Runs {
		var run Run
		if err := json.Unmarshal(raw, &run); err != nil {
			slog.Warn("skipping unparsable run record", "index", i, "error", err)
			continue
		}
		if run.Name == "" || run.Timestamp.IsZero() {
			slog.Warn("skipping incomplete run record", "index", i, "run_name", run.Name)
			continue
		}
		h.Runs = append(h.Runs, run)
	}
	sortByTimestamp(h.Runs)
	return h
}

// Save records a run, replacing any existing run with the same name, and
// rewrites the document atomically.
func (s *Store) Save(run *Run) error {
	h := s.Load()
	kept := make([]Run, 0, len(h.Runs)+1)
	for _, r := range h.Runs {
		if r.Name != run.Name {
			kept = append(kept, r)
		}
	}
	kept = append(kept, *run)
	sortByTimestamp(kept)
	if s.maxRuns > 0 && len(kept) > s.maxRuns {
		dropped := len(kept) - s.maxRuns
		slog.Info("trimming history to retention cap", "dropped", dropped, "max_runs", s.maxRuns)
		kept = kept[dropped:]
	}
	doc := History{Version: docVersion, LastUpdated: time.Now().UTC(), Runs: kept}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if err := s.writeAtomic(data); err != nil {
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// over the document, so a crash mid-write never leaves a truncated file.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func sortByTimestamp(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
}
