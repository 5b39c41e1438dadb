package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"burncheck/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(records))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func renderHistoryTable(records []history.Record) string {
	headers := []string{"Started", "Device", "Media", "Result", "Stage", "Exit", "Files", "Duration"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		result := rec.Status
		if rec.Kind != "" {
			result = rec.Kind
		}
		rows = append(rows, []string{
			rec.StartedAt.Local().Format("2006-01-02 15:04"),
			rec.Device,
			rec.Media,
			result,
			rec.FailedStage,
			strconv.Itoa(rec.ExitCode),
			strconv.Itoa(rec.Files),
			rec.Duration().Round(time.Second).String(),
		})
	}
	return renderTable(headers, rows, aligns)
}
