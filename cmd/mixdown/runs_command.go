package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mixdown/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded composition runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return fmt.Errorf("the run ledger is disabled in configuration")
			}
			store, err := ledger.Open(cfg.LedgerPath())
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			var statuses []ledger.Status
			if failedOnly {
				statuses = append(statuses, ledger.StatusFailed)
			}
			runs, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := run.OutputPath
				if run.Status == ledger.StatusFailed {
					detail = run.ErrorMessage
				}
				rows = append(rows, []string{
					shortID(run.RunID),
					fmt.Sprintf("%d-%d", run.ShardStart, run.ShardEnd),
					run.Format,
					string(run.Status),
					strconv.Itoa(run.SegmentCount),
					run.CreatedAt.Local().Format(time.DateTime),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Shard", "Format", "Status", "Segments", "Started", "Detail"}, rows, 5))
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed runs")
	return cmd
}
