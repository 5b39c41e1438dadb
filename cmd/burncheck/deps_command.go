package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"burncheck/internal/deps"
	"burncheck/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and paths a run needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			statuses := preflight.CheckSystemDeps(cfg)
			results := preflight.RunAll(cfg, strings.TrimSpace(device))

			rep := &report{colorize: shouldColorize(out)}
			rep.section("Tools")
			rep.add(toolLines(statuses)...)
			rep.section("Paths")
			for _, r := range results {
				rep.add(checkLine(r))
			}
			fmt.Fprintln(out, rep.String())

			if len(deps.MissingRequired(statuses)) > 0 || len(preflight.Failed(results)) > 0 {
				return errors.New("system is not ready for a burn")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "Also check this optical device")
	return cmd
}
