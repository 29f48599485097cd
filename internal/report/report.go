package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/benchtrack/benchtrack/internal/history"
	"github.com/benchtrack/benchtrack/internal/regression"
	"github.com/benchtrack/benchtrack/internal/stability"
)

const rule = "----------------------------------------------------------------------"
const banner = "======================================================================"

type Options struct {
	TrendRuns    int
	RecentWindow int
	TargetRate   float64
	GoodRate     float64
	WarnRate     float64
}

func (o Options) withDefaults() Options {
	if o.TrendRuns < 1 {
		o.TrendRuns = 10
	}
	if o.RecentWindow < 1 {
		o.RecentWindow = 5
	}
	if o.TargetRate <= 0 {
		o.TargetRate = 70
	}
	if o.GoodRate <= 0 {
		o.GoodRate = 70
	}
	if o.WarnRate <= 0 {
		o.WarnRate = 50
	}
	return o
}

// Generate renders history, per-task statistics, and any alerts from the
// current check into the requested format.
func Generate(h *history.History, stats []*stability.Stats, alerts []regression.Alert,
	opts Options, format string, w io.Writer) error {
	opts = opts.withDefaults()
	if len(h.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No historical data available for report generation.")
		return err
	}
	switch format {
	case "markdown":
		return writeMarkdown(h, stats, alerts, opts, w)
	case "json":
		return writeJSON(h, stats, alerts, w)
	default:
		return writeText(h, stats, alerts, opts, w)
	}
}

func writeText(h *history.History, stats []*stability.Stats, alerts []regression.Alert,
	opts Options, w io.Writer) error {
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "BENCHTRACK REGRESSION REPORT")
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total Runs: %d\n\n", len(h.Runs))

	if len(alerts) > 0 {
		section(w, "ALERTS")
		for _, a := range alerts {
			fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
		}
		fmt.Fprintln(w)
	}

	section(w, "OVERALL TREND")
	for _, run := range trendRuns(h.Runs, opts.TrendRuns) {
		fmt.Fprintf(w, "%s %-30s | %5.1f%% | ok:%d fail:%d timeout:%d\n",
			marker(run.Rate, opts), run.Name, run.Rate, run.Success, run.Failed, run.Timeout)
	}
	fmt.Fprintln(w)

	section(w, "PER-TASK STATISTICS")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tRATE\tRUNS\tSTATUS")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%.1f%%\t%d\t%s\n", st.Task, st.SuccessRate, st.TotalRuns, label(st.Tag))
	}
	tw.Flush()
	fmt.Fprintln(w)

	failing, flaky := problemAreas(stats)
	section(w, "PROBLEM AREAS")
	if len(failing) > 0 {
		fmt.Fprintln(w, "\nConsistently failing:")
		for _, st := range failing {
			fmt.Fprintf(w, "  - %s (%.1f%% over %d runs)\n", st.Task, st.SuccessRate, st.TotalRuns)
		}
	}
	if len(flaky) > 0 {
		fmt.Fprintln(w, "\nFlaky:")
		for _, st := range flaky {
			fmt.Fprintf(w, "  - %s (%.1f%% over %d runs)\n", st.Task, st.SuccessRate, st.TotalRuns)
		}
	}
	if len(failing) == 0 && len(flaky) == 0 {
		fmt.Fprintln(w, "\nNo problem areas detected. All tasks are stable.")
	}
	fmt.Fprintln(w)

	section(w, "RECOMMENDATIONS")
	for _, r := range recommendations(h.Runs, failing, flaky, opts) {
		fmt.Fprintf(w, "- %s\n", r)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "END OF REPORT")
	fmt.Fprintln(w, banner)
	return nil
}

func writeMarkdown(h *history.History, stats []*stability.Stats, alerts []regression.Alert,
	opts Options, w io.Writer) error {
	fmt.Fprintln(w, "# Benchtrack Regression Report")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Generated: %s — %d runs on record\n\n",
		time.Now().Format("2006-01-02 15:04:05"), len(h.Runs))

	if len(alerts) > 0 {
		fmt.Fprintln(w, "## Alerts")
		fmt.Fprintln(w)
		for _, a := range alerts {
			fmt.Fprintf(w, "- **%s**: %s\n", a.Severity, a.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "## Overall Trend")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Run | Rate | Pass | Fail | Timeout |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, run := range trendRuns(h.Runs, opts.TrendRuns) {
		fmt.Fprintf(w, "| %s | %.1f%% | %d | %d | %d |\n",
			run.Name, run.Rate, run.Success, run.Failed, run.Timeout)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Per-Task Statistics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Task | Rate | Runs | Status |")
	fmt.Fprintln(w, "|---|---|---|---|")
	for _, st := range stats {
		fmt.Fprintf(w, "| %s | %.1f%% | %d | %s |\n",
			st.Task, st.SuccessRate, st.TotalRuns, label(st.Tag))
	}
	fmt.Fprintln(w)

	failing, flaky := problemAreas(stats)
	fmt.Fprintln(w, "## Recommendations")
	fmt.Fprintln(w)
	for _, r := range recommendations(h.Runs, failing, flaky, opts) {
		fmt.Fprintf(w, "- %s\n", r)
	}
	return nil
}

type jsonReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	TotalRuns   int                `json:"total_runs"`
	Trend       []jsonTrendEntry   `json:"trend"`
	Tasks       []*stability.Stats `json:"tasks"`
	Alerts      []regression.Alert `json:"alerts,omitempty"`
}

type jsonTrendEntry struct {
	Run     string  `json:"run"`
	Rate    float64 `json:"rate"`
	Success int     `json:"success"`
	Failed  int     `json:"failed"`
	Timeout int     `json:"timeout"`
}

func writeJSON(h *history.History, stats []*stability.Stats, alerts []regression.Alert, w io.Writer) error {
	rep := jsonReport{
		GeneratedAt: time.Now().UTC(),
		TotalRuns:   len(h.Runs),
		Tasks:       stats,
		Alerts:      alerts,
	}
	for _, run := range h.Runs {
		rep.Trend = append(rep.Trend, jsonTrendEntry{
			Run: run.Name, Rate: run.Rate,
			Success: run.Success, Failed: run.Failed, Timeout: run.Timeout,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

// trendRuns returns the most recent n runs, oldest first. Runs arrive
// already sorted ascending by timestamp.
func trendRuns(runs []history.Run, n int) []history.Run {
	if len(runs) > n {
		return runs[len(runs)-n:]
	}
	return runs
}

func marker(rate float64, opts Options) string {
	switch {
	case rate >= opts.GoodRate:
		return "[ ok ]"
	case rate >= opts.WarnRate:
		return "[warn]"
	default:
		return "[FAIL]"
	}
}

func label(tag stability.Tag) string {
	switch tag {
	case stability.TagPerfect:
		return "perfect"
	case stability.TagStable:
		return "stable"
	case stability.TagFlaky:
		return "FLAKY"
	case stability.TagConsistentlyFailing:
		return "ALWAYS FAILS"
	default:
		return "unstable"
	}
}

func problemAreas(stats []*stability.Stats) (failing, flaky []*stability.Stats) {
	for _, st := range stats {
		switch st.Tag {
		case stability.TagConsistentlyFailing:
			failing = append(failing, st)
		case stability.TagFlaky:
			flaky = append(flaky, st)
		}
	}
	return failing, flaky
}

func recommendations(runs []history.Run, failing, flaky []*stability.Stats, opts Options) []string {
	var recs []string
	if len(failing) > 0 {
		recs = append(recs,
			"Focus on consistently failing tasks with specialized prompts",
			"Consider adding integration tests for these workflows")
	}
	if len(flaky) > 0 {
		recs = append(recs,
			"Review flaky tasks for timing and race condition issues",
			"Consider increasing timeouts for borderline tasks")
	}
	recent := runs
	if len(recent) > opts.RecentWindow {
		recent = recent[len(recent)-opts.RecentWindow:]
	}
	if len(recent) >= 2 {
		var sum float64
		for _, r := range recent {
			sum += r.Rate
		}
		avg := sum / float64(len(recent))
		if avg < opts.TargetRate {
			recs = append(recs,
				fmt.Sprintf("Overall performance below target (recent avg: %.1f%%)", avg),
				"Review agent prompts and tool configurations")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "No action needed")
	}
	return recs
}
