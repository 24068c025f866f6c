package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/logging"
)

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE...",
		Short: "Check contract declaration files",
		Long: "Parses every declaration file and reports missing fields,\n" +
			"duplicate declarations and contracts that fail to parse.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := contract.NewParser(nil)
			out := cmd.OutOrStdout()
			total := 0
			for _, path := range args {
				issues := parser.LintFile(path)
				if len(issues) == 0 {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: %s\n", path, issue.Error())
				}
				total += len(issues)
				a.logger.Warn("declaration file has issues",
					logging.StringField("file", path),
					logging.IntField("issues", len(issues)),
				)
			}
			if total > 0 {
				return fmt.Errorf("%d contract issue(s) found", total)
			}
			return nil
		},
	}
}
