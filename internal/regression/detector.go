// Package regression compares a completed run against prior history and
// emits typed alerts.
package regression

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benchtrack/benchtrack/internal/history"
)

type Kind string

const (
	KindImprovement   Kind = "improvement"
	KindRegression    Kind = "regression"
	KindNewFailure    Kind = "new_failure"
	KindFixedTask     Kind = "fixed_task"
	KindDownwardTrend Kind = "downward_trend"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Alert struct {
	Kind         Kind     `json:"kind"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	BaselineRate float64  `json:"baseline_rate,omitempty"`
	CurrentRate  float64  `json:"current_rate,omitempty"`
	ChangePct    float64  `json:"change_pct,omitempty"`
	Tasks        []string `json:"tasks,omitempty"`
}

type Config struct {
	// Threshold is the relative rate change that counts as a regression
	// or improvement.
	Threshold float64
	// TrendWindow is the number of most recent prior runs averaged for
	// the trend check.
	TrendWindow int
}

type Detector struct {
	cfg Config
}

func New(cfg Config) *Detector {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.05
	}
	if cfg.TrendWindow < 1 {
		cfg.TrendWindow = 3
	}
	return &Detector{cfg: cfg}
}

// Detect compares current against the runs that precede it and reports
// whether the run regressed. Changes exactly at the threshold trigger
// nothing.
func (d *Detector) Detect(current *history.Run, prior []history.Run) (bool, []Alert) {
	if len(prior) == 0 {
		return false, nil
	}
	baseline := mostRecent(prior)
	var alerts []Alert

	// Ratio check is skipped on a zero baseline.
	if baseline.Rate > 0 {
		change := (current.Rate - baseline.Rate) / baseline.Rate
		switch {
		case change < -d.cfg.Threshold:
			alerts = append(alerts, Alert{
				Kind:     KindRegression,
				Severity: SeverityCritical,
				Message: fmt.Sprintf("overall success rate dropped %.1f%% (%.1f%% -> %.1f%%)",
					-change*100, baseline.Rate, current.Rate),
				BaselineRate: baseline.Rate,
				CurrentRate:  current.Rate,
				ChangePct:    change * 100,
			})
		case change > d.cfg.Threshold:
			alerts = append(alerts, Alert{
				Kind:     KindImprovement,
				Severity: SeverityInfo,
				Message: fmt.Sprintf("overall success rate increased %.1f%% (%.1f%% -> %.1f%%)",
					change*100, baseline.Rate, current.Rate),
				BaselineRate: baseline.Rate,
				CurrentRate:  current.Rate,
				ChangePct:    change * 100,
			})
		}
	}

	currentFailing := current.FailingTasks()
	baselineFailing := baseline.FailingTasks()
	if newFailures := diff(currentFailing, baselineFailing); len(newFailures) > 0 {
		alerts = append(alerts, Alert{
			Kind:     KindNewFailure,
			Severity: SeverityWarning,
			Message:  "new failures: " + strings.Join(newFailures, ", "),
			Tasks:    newFailures,
		})
	}
	if fixed := diff(baselineFailing, currentFailing); len(fixed) > 0 {
		alerts = append(alerts, Alert{
			Kind:     KindFixedTask,
			Severity: SeverityInfo,
			Message:  "fixed tasks: " + strings.Join(fixed, ", "),
			Tasks:    fixed,
		})
	}

	if len(prior) >= d.cfg.TrendWindow {
		avg := trailingAverage(prior, d.cfg.TrendWindow)
		if current.Rate < avg*(1-d.cfg.Threshold) {
			alerts = append(alerts, Alert{
				Kind:     KindDownwardTrend,
				Severity: SeverityCritical,
				Message: fmt.Sprintf("current rate %.1f%% is significantly below the %d-run average %.1f%%",
					current.Rate, d.cfg.TrendWindow, avg),
				BaselineRate: avg,
				CurrentRate:  current.Rate,
			})
		}
	}

	return HasRegression(alerts), alerts
}

// HasRegression reports whether any alert is of a regressing kind.
// Improvements, new failures, and fixed tasks never set the flag alone.
func HasRegression(alerts []Alert) bool {
	for _, a := range alerts {
		if a.Kind == KindRegression || a.Kind == KindDownwardTrend {
			return true
		}
	}
	return false
}

func mostRecent(runs []history.Run) *history.Run {
	latest := &runs[0]
	for i := range runs {
		if runs[i].Timestamp.After(latest.Timestamp) {
			latest = &runs[i]
		}
	}
	return latest
}

func trailingAverage(runs []history.Run, window int) float64 {
	ordered := make([]history.Run, len(runs))
	copy(ordered, runs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	recent := ordered[len(ordered)-window:]
	var sum float64
	for _, r := range recent {
		sum += r.Rate
	}
	return sum / float64(len(recent))
}

// diff returns the keys of a not present in b, sorted for deterministic
// alert output.
func diff(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
