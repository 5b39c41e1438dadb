package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"burncheck/internal/disc"
	"burncheck/internal/history"
	"burncheck/internal/runner"
)

const lsblkTimeout = 5 * time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <device>",
		Short: "Show drive tray state, inserted media, and recent results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			device, err := disc.ResolveDevice(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rep := &report{colorize: shouldColorize(out)}
			rep.section("Drive " + device)
			rep.add(driveLines(cmd.Context(), runner.New(), disc.NewProcMounts(), device)...)

			if store, err := history.Open(cfg.Paths.HistoryDB); err == nil {
				stats, statsErr := store.Stats(cmd.Context(), device)
				_ = store.Close()
				if statsErr == nil {
					rep.add(historyLine(stats))
				}
			}
			fmt.Fprintln(out, rep.String())
			return nil
		},
	}
}

func driveLines(ctx context.Context, r runner.Runner, table disc.MountTable, device string) []reportLine {
	status, statusErr := disc.CheckDriveStatus(device)
	mountPoint, mounted, mountErr := table.Lookup(device)
	info, infoErr := disc.ReadDiscInfo(ctx, r, device, lsblkTimeout)
	return []reportLine{
		trayLine(status, statusErr),
		mountLine(mountPoint, mounted, mountErr),
		mediaLine(info, infoErr),
	}
}
