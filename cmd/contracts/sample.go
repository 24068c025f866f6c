package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/autotest"
	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/record"
)

func newSampleCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "sample CONTRACT",
		Short: "Print the argument values auto-testing would use",
		Example: `  contracts sample 'age=><number> acceptedValues=:[18|21|65]'
  contracts sample --count 3 'tags=><array string>'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := contract.Parse(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("count") {
				count = a.cfg.SampleCount
			}

			compiled := &contract.Compiled{Params: []*contract.ParameterContract{c}}
			out := cmd.OutOrStdout()
			for _, cs := range autotest.Generate(compiled, count) {
				data, err := json.Marshal(record.Sanitize(cs.Args[0], record.DefaultDepth))
				if err != nil {
					return fmt.Errorf("failed to encode sample: %w", err)
				}
				fmt.Fprintf(out, "%s\t%s\n", data, cs.Sources[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of values (default: configured sample count)")
	return cmd
}
