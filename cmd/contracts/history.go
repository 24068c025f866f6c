package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/report"
)

func newHistoryCmd(_ *app) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "history FILE",
		Short: "List past scenario runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := report.ReadHistory(args[0])
			if err != nil {
				return err
			}
			if last > 0 && len(entries) > last {
				entries = entries[len(entries)-last:]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tTOTAL\tPASSED\tFAILED\tMISSES\tDURATION")
			for _, e := range entries {
				duration := e.Duration
				if e.TimedOut {
					duration += " (timed out)"
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
					e.Timestamp.Format(time.RFC3339), e.Total,
					e.Passed, e.Failed, e.Misses, duration)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 0, "show only the last N runs")
	return cmd
}
