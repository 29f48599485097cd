package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/benchtrack/benchtrack/internal/history"
	"github.com/benchtrack/benchtrack/internal/ingest"
	"github.com/spf13/cobra"
)

var flagMeta []string

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <run-name> <results-file>",
		Short: "Record a benchmark run in the history file",
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
			meta, err := parseMeta(flagMeta)
			if err != nil {
				return err
			}
			run := payload.Run(args[0], time.Now().UTC(), meta)
			store := history.NewStore(cfg.HistoryFile, cfg.Retention.MaxRuns)
			if err := store.Save(run); err != nil {
				return err
			}
			fmt.Printf("Saved run %q with %d tasks\n", run.Name, len(run.Tasks))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&flagMeta, "meta", nil, "attach metadata as key=value (repeatable)")
	return cmd
}

func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --meta value %q, expected key=value", p)
		}
		meta[k] = v
	}
	return meta, nil
}
