package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/benchtrack/benchtrack/internal/history"
	"github.com/benchtrack/benchtrack/internal/ingest"
	"github.com/benchtrack/benchtrack/internal/regression"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <run-name> <results-file>",
		Short: "Save a run and fail if it regressed against history",
		Long:  "Compare the run against the stored history, print any alerts, save the run regardless, and exit 1 if a regression or downward trend was detected.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			payload, err := ingest.LoadFile(args[1])
			if err != nil {
				return err
			}
			run := payload.Run(args[0], time.Now().UTC(), nil)

			store := history.NewStore(cfg.HistoryFile, cfg.Retention.MaxRuns)
			prior := store.Load().Runs

			detector := regression.New(regression.Config{
				Threshold:   cfg.Regression.Threshold,
				TrendWindow: cfg.Regression.TrendWindow,
			})
			hasRegression, alerts := detector.Detect(run, prior)
			for _, a := range alerts {
				fmt.Printf("[%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
			}

			if err := store.Save(run); err != nil {
				return err
			}
			fmt.Printf("Saved run %q with %d tasks\n", run.Name, len(run.Tasks))
			if hasRegression {
				cmd.SilenceUsage = true
				return fmt.Errorf("regression detected in run %q", run.Name)
			}
			return nil
		},
	}
}
