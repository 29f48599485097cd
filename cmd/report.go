package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/benchtrack/benchtrack/internal/history"
	"github.com/benchtrack/benchtrack/internal/report"
	"github.com/benchtrack/benchtrack/internal/stability"
	"github.com/spf13/cobra"
)

var (
	flagFormat string
	flagOutput string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a stability report from stored history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := history.NewStore(cfg.HistoryFile, cfg.Retention.MaxRuns)
			h := store.Load()

			classifier := stability.New(stability.Config{
				MinRuns:   cfg.Stability.MinRuns,
				FlakyMin:  cfg.Stability.FlakyMin,
				FlakyMax:  cfg.Stability.FlakyMax,
				StableMin: cfg.Stability.StableMin,
			})
			stats := stability.Sorted(classifier.Classify(h.Runs))

			var w io.Writer = os.Stdout
			if flagOutput != "" {
				f, err := os.Create(flagOutput)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			opts := report.Options{
				TrendRuns:    cfg.Report.TrendRuns,
				RecentWindow: cfg.Report.RecentWindow,
				TargetRate:   cfg.Report.TargetRate,
				GoodRate:     cfg.Report.GoodRate,
				WarnRate:     cfg.Report.WarnRate,
			}
			return report.Generate(h, stats, nil, opts, flagFormat, w)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "output format (text, markdown, json)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "write report to file instead of stdout")
	return cmd
}
