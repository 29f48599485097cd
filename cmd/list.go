package cmd

import (
	"fmt"

	"github.com/benchtrack/benchtrack/internal/history"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List runs stored in the history file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := history.NewStore(cfg.HistoryFile, cfg.Retention.MaxRuns)
			h := store.Load()
			if len(h.Runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}
			fmt.Printf("Runs (%d):\n", len(h.Runs))
			for _, r := range h.Runs {
				fmt.Printf("  - %s  %s  %.1f%% (%d/%d tasks)\n",
					r.Name, r.Timestamp.Format("2006-01-02 15:04"), r.Rate, r.Success, r.Total)
			}
			return nil
		},
	}
}
