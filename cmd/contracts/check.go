package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/scenario"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check PATH...",
		Short: "Validate scenario files and their $ref data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := scenario.ResolveFiles(args)
			if err != nil {
				return err
			}
			files, loadErrs := scenario.LoadFiles(cmd.Context(), paths, a.cfg.Scenario.Concurrency)

			out := cmd.OutOrStdout()
			scenarios := 0
			for _, f := range files {
				scenarios += len(f.Scenarios)
				fmt.Fprintf(out, "ok   %s (target %s, %d scenarios)\n",
					f.Path, f.Target, len(f.Scenarios))
			}
			for _, err := range loadErrs {
				fmt.Fprintf(out, "FAIL %v\n", err)
			}

			a.logger.Info("scenario files checked",
				logging.IntField("files", len(paths)),
				logging.IntField("scenarios", scenarios),
				logging.IntField("errors", len(loadErrs)),
			)
			if len(loadErrs) > 0 {
				return fmt.Errorf("%d of %d scenario file(s) invalid", len(loadErrs), len(paths))
			}
			return nil
		},
	}
}
