package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maxgio92/fnbound"
)

func reportCommand(a *app) *cobra.Command {
	var lists bool
	cmd := &cobra.Command{
		Use:   "report <truth.sym> <predicted>",
		Short: "Score a single binary and print its detail report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.logger()
			if err != nil {
				return err
			}

			tables, err := fnbound.LoadBinary(args[0], args[1])
			if err != nil {
				return runFailure(err)
			}
			stats, warnings := fnbound.Evaluate(filepath.Base(args[1]), tables)
			for _, w := range warnings {
				log.Warn("warning", "error", w)
			}

			if lists {
				err = fnbound.WriteListsCSV(a.stdout, stats)
			} else {
				err = fnbound.WriteDetailReport(a.stdout, stats)
			}
			if err != nil {
				return runFailure(fmt.Errorf("failed to write report: %w", err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&lists, "lists", false, "Print the short, long and missing addresses as CSV instead")
	return cmd
}
