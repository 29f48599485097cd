// Package stability aggregates per-task outcomes across history into
// stability tags.
package stability

import (
	"sort"

	"github.com/benchtrack/benchtrack/internal/history"
)

type Tag string

const (
	TagPerfect             Tag = "perfect"
	TagStable              Tag = "stable"
	TagFlaky               Tag = "flaky"
	TagConsistentlyFailing Tag = "consistently_failing"
	TagUnstable            Tag = "unstable"
)

type Stats struct {
	Task          string         `json:"task"`
	TotalRuns     int            `json:"total_runs"`
	Successes     int            `json:"successes"`
	Failures      int            `json:"failures"`
	Timeouts      int            `json:"timeouts"`
	SuccessRate   float64        `json:"success_rate"`
	LastStatus    history.Status `json:"last_status"`
	SuccessStreak int            `json:"success_streak"`
	FailureStreak int            `json:"failure_streak"`
	Tag           Tag            `json:"tag"`
}

type Config struct {
	// MinRuns is the sample floor below which a task cannot be tagged
	// flaky or consistently failing.
	MinRuns   int
	FlakyMin  float64
	FlakyMax  float64
	StableMin float64
}

type Classifier struct {
	cfg Config
}

func New(cfg Config) *Classifier {
	if cfg.MinRuns < 1 {
		cfg.MinRuns = 3
	}
	if cfg.FlakyMin <= 0 {
		cfg.FlakyMin = 20
	}
	if cfg.FlakyMax <= 0 {
		cfg.FlakyMax = 80
	}
	if cfg.StableMin <= 0 {
		cfg.StableMin = 80
	}
	return &Classifier{cfg: cfg}
}

// Classify walks runs in ascending timestamp order and accumulates per-task
// counts and consecutive-run streaks.
func (c *Classifier) Classify(runs []history.Run) map[string]*Stats {
	ordered := make([]history.Run, len(runs))
	copy(ordered, runs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	stats := make(map[string]*Stats)
	for _, run := range ordered {
		for _, t := range run.Tasks {
			st, ok := stats[t.Task]
			if !ok {
				st = &Stats{Task: t.Task}
				stats[t.Task] = st
			}
			st.TotalRuns++
			switch t.Status {
			case history.StatusSuccess:
				st.Successes++
				st.SuccessStreak++
				st.FailureStreak = 0
			case history.StatusTimeout:
				st.Timeouts++
				st.FailureStreak++
				st.SuccessStreak = 0
			default:
				st.Failures++
				st.FailureStreak++
				st.SuccessStreak = 0
			}
			st.LastStatus = t.Status
		}
	}

	for _, st := range stats {
		st.SuccessRate = float64(st.Successes) / float64(st.TotalRuns) * 100
		st.Tag = c.tag(st)
	}
	return stats
}

func (c *Classifier) tag(st *Stats) Tag {
	enoughRuns := st.TotalRuns >= c.cfg.MinRuns
	switch {
	case enoughRuns && st.SuccessRate < c.cfg.FlakyMin:
		return TagConsistentlyFailing
	case enoughRuns && st.SuccessRate >= c.cfg.FlakyMin && st.SuccessRate <= c.cfg.FlakyMax:
		return TagFlaky
	case st.SuccessRate == 100:
		return TagPerfect
	case st.SuccessRate >= c.cfg.StableMin:
		return TagStable
	default:
		return TagUnstable
	}
}

// Sorted orders stats ascending by success rate, worst first, with task name
// as a deterministic tiebreak.
func Sorted(stats map[string]*Stats) []*Stats {
	out := make([]*Stats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate < out[j].SuccessRate
		}
		return out[i].Task < out[j].Task
	})
	return out
}
