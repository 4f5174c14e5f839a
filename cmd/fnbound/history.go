package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maxgio92/fnbound"
	"github.com/maxgio92/fnbound/internal/config"
	"github.com/maxgio92/fnbound/internal/store"
)

func historyCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [binary]",
		Short: "List recorded runs, or the recorded scores of one binary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(a.v, a.configFile); err != nil {
				return err
			}
			path := a.v.GetString(config.KeyDatabase)
			if path == "" {
				return errors.New("no database configured, use --db")
			}
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1, got %d", limit)
			}

			db, err := store.Open(path)
			if err != nil {
				return runFailure(err)
			}
			defer db.Close()

			if len(args) == 1 {
				scores, err := db.BinaryHistory(cmd.Context(), args[0], limit)
				if err != nil {
					return runFailure(err)
				}
				return a.printBinaryHistory(scores)
			}
			runs, err := db.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return runFailure(err)
			}
			return a.printRuns(runs)
		},
	}
	cmd.Flags().String("db", "", "SQLite database runs were recorded in")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of rows")
	a.bindFlags(cmd, map[string]string{config.KeyDatabase: "db"})
	return cmd
}

func (a *app) printRuns(runs []store.Run) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tBINARIES\tFAILED\tGT\tF1 START\tF1 BOUNDARY")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Binaries, r.Failed, r.GT,
			fnbound.Percent(r.F1St), fnbound.Percent(r.F1Bd))
	}
	return tw.Flush()
}

func (a *app) printBinaryHistory(scores []store.BinaryScore) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATUS\tGT\tLONG\tSHORT\tMISSING\tF1 START\tF1 BOUNDARY")
	for _, s := range scores {
		if s.Status == store.StatusFailed {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t-\n", s.RunID, s.Status)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			s.RunID, s.Status, s.GT, s.LongBd, s.ShortBd, s.Missing,
			fnbound.Percent(s.F1St), fnbound.Percent(s.F1Bd))
	}
	return tw.Flush()
}
