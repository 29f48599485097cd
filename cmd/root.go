package cmd

import (
	"log/slog"
	"os"

	"github.com/benchtrack/benchtrack/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	historyFile string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "benchtrack",
		Short: "Track benchmark results over time and detect regressions",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "benchtrack.yaml", "config file path")
	root.PersistentFlags().StringVar(&historyFile, "history", "", "history file path (overrides config)")
	root.AddCommand(newSaveCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newListCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if historyFile != "" {
		cfg.HistoryFile = historyFile
	}
	return cfg, nil
}
