package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxgio92/fnbound"
	"github.com/maxgio92/fnbound/internal/config"
	"github.com/maxgio92/fnbound/internal/runner"
	"github.com/maxgio92/fnbound/internal/store"
	"github.com/maxgio92/fnbound/internal/telemetry"
)

func scoreCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [funcdir [symdir]]",
		Short: "Score every prediction file of a directory",
		Long: `Score pairs each prediction file in funcdir with the ground-truth table of
the same name in symdir, writes a detail report per binary and the corpus
CSV reports into outdir, and prints the corpus summary.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.v.Set(config.KeyFuncDir, args[0])
			}
			if len(args) > 1 {
				a.v.Set(config.KeySymDir, args[1])
			}
			return a.score(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.String("funcdir", "", "Directory of prediction tables")
	f.String("symdir", "", "Directory of ground-truth .sym tables")
	f.StringP("outdir", "o", "", "Directory reports are written to (default funcdir)")
	f.StringSlice("suffix", config.DefaultSuffixes, "Prediction file patterns, tried in order")
	f.IntP("workers", "j", 0, "Number of binaries scored concurrently (default number of CPUs)")
	f.String("summary-format", config.SummaryNone, "Machine-readable summary: none, json, yaml")
	f.String("db", "", "SQLite database to record the run in")
	f.String("metrics-file", "", "Prometheus textfile to write corpus metrics to")

	a.bindFlags(cmd, map[string]string{
		config.KeyFuncDir:       "funcdir",
		config.KeySymDir:        "symdir",
		config.KeyOutDir:        "outdir",
		config.KeySuffixes:      "suffix",
		config.KeyWorkers:       "workers",
		config.KeySummaryFormat: "summary-format",
		config.KeyDatabase:      "db",
		config.KeyMetricsFile:   "metrics-file",
	})

	return cmd
}

func (a *app) score(ctx context.Context) error {
	s, err := a.settings()
	if err != nil {
		return err
	}
	log, err := a.logger()
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, runner.Options{
		FuncDir:       s.FuncDir,
		SymDir:        s.SymDir,
		OutDir:        s.OutDir,
		Patterns:      s.Suffixes,
		Workers:       s.Workers,
		SummaryFormat: s.Summary.Format,
		Logger:        log,
	})
	if err != nil {
		return runFailure(err)
	}

	if err := fnbound.WriteSummary(a.stdout, res.Corpus); err != nil {
		return runFailure(err)
	}

	if s.Database != "" {
		if err := saveRun(ctx, s.Database, res); err != nil {
			return runFailure(err)
		}
		log.Info("run recorded", "database", s.Database, "run", res.ID.String())
	}
	if s.MetricsFile != "" {
		if err := telemetry.Export(s.MetricsFile, res.Corpus); err != nil {
			return runFailure(err)
		}
	}

	if failed := len(res.Corpus.Failures()); failed > 0 {
		return runFailure(fmt.Errorf("%d of %d binaries failed", failed, len(res.Binaries)))
	}
	return nil
}

func saveRun(ctx context.Context, path string, res *runner.Result) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveRun(ctx, store.NewRun(res.ID.String(), res.StartedAt, res.FinishedAt, res.Pattern, res.Corpus))
}
