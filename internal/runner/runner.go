// Package runner scores a directory of prediction tables against their
// ground truth with a bounded pool of workers and writes the run's reports.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maxgio92/fnbound"
	"github.com/maxgio92/fnbound/internal/fsx"
	"github.com/maxgio92/fnbound/internal/logger"
	"github.com/maxgio92/fnbound/internal/scan"
)

// Corpus-level report file names.
const (
	ResultsFile = "results.csv"
	ListsFile   = "results1.csv"
)

// Status is the outcome of one binary in a run.
type Status string

// Binary statuses.
const (
	StatusScored Status = "scored"
	StatusFailed Status = "failed"
)

// Options configures a run.
type Options struct {
	FuncDir  string
	SymDir   string
	OutDir   string
	Patterns []string
	// Workers bounds concurrent scoring. 1 scores sequentially.
	Workers int
	// SummaryFormat is "json", "yaml", or empty/"none" for no summary file.
	SummaryFormat string
	Logger        *slog.Logger
}

// BinaryResult is the outcome of one binary.
type BinaryResult struct {
	ID       string `json:"id" yaml:"id"`
	Status   Status `json:"status" yaml:"status"`
	Warnings int    `json:"warnings" yaml:"warnings"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result describes a completed run.
type Result struct {
	ID         uuid.UUID
	Pattern    string
	StartedAt  time.Time
	FinishedAt time.Time
	Corpus     *fnbound.Corpus
	// Binaries lists every discovered binary ordered by ID.
	Binaries []BinaryResult
}

// Failed reports whether any binary could not be scored.
func (r *Result) Failed() bool {
	return slices.ContainsFunc(r.Binaries, func(b BinaryResult) bool {
		return b.Status == StatusFailed
	})
}

// Run discovers the binaries of opts.FuncDir, scores each of them and writes
// the detail reports, results.csv, results1.csv and the optional summary into
// opts.OutDir. A binary whose truth table is missing aborts the run with an
// error wrapping fnbound.ErrMissingGroundTruth; any other per-binary failure
// is recorded in the result and the run continues.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	workers := max(opts.Workers, 1)

	binaries, pattern, err := scan.Discover(opts.FuncDir, opts.SymDir, opts.Patterns)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:        uuid.New(),
		Pattern:   pattern,
		StartedAt: time.Now().UTC(),
		Corpus:    fnbound.NewCorpus(),
		Binaries:  make([]BinaryResult, len(binaries)),
	}
	log = log.With("run", res.ID.String())
	log.Info("starting run",
		"binaries", len(binaries),
		"pattern", pattern,
		"workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, b := range binaries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			br, err := scoreBinary(res.Corpus, b, opts.OutDir, log.With("binary", b.ID))
			res.Binaries[i] = br
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := writeCorpusReports(opts.OutDir, res.Corpus); err != nil {
		return nil, err
	}

	res.FinishedAt = time.Now().UTC()
	if err := WriteSummaryFile(opts.OutDir, opts.SummaryFormat, res); err != nil {
		return nil, err
	}

	t := res.Corpus.Totals()
	log.Info("run complete",
		"scored", t.Binaries,
		"failed", len(res.Corpus.Failures()),
		"duration", res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

// scoreBinary loads, evaluates and reports one binary. Only a missing truth
// table is returned as an error; other failures are folded into the corpus.
func scoreBinary(c *fnbound.Corpus, b scan.Binary, outDir string, log *slog.Logger) (BinaryResult, error) {
	br := BinaryResult{ID: b.ID}

	tables, err := fnbound.LoadBinary(b.Truth, b.Predicted)
	if err != nil {
		if errors.Is(err, fnbound.ErrMissingGroundTruth) {
			log.Error("aborting run", "error", err)
			return br, fmt.Errorf("%s: %w", b.ID, err)
		}
		return fail(c, br, err, log), nil
	}

	stats, warnings := fnbound.Evaluate(b.ID, tables)
	br.Warnings = len(warnings)
	for _, w := range warnings {
		logWarning(log, w)
	}

	if err := fsx.Write(outDir, b.ReportName(), func(w io.Writer) error {
		return fnbound.WriteDetailReport(w, stats)
	}); err != nil {
		return fail(c, br, err, log), nil
	}
	if err := c.Add(stats); err != nil {
		return fail(c, br, err, log), nil
	}

	br.Status = StatusScored
	log.Debug("binary scored",
		"alignment", stats.Alignment.String(),
		"gt", stats.Counts.GT,
		"f1St", stats.Scores.F1St,
		"f1Bd", stats.Scores.F1Bd)
	return br, nil
}

func fail(c *fnbound.Corpus, br BinaryResult, err error, log *slog.Logger) BinaryResult {
	c.Fail(br.ID, err)
	br.Status = StatusFailed
	br.Error = err.Error()
	log.Error("binary failed", "error", err)
	return br
}

func logWarning(log *slog.Logger, err error) {
	var rec *fnbound.MalformedRecordError
	switch {
	case errors.As(err, &rec):
		log.Warn("skipped malformed record", "line", rec.Line, "reason", rec.Reason, "error", err)
	case errors.Is(err, fnbound.ErrAlignmentIndeterminate):
		log.Warn("alignment indeterminate, assuming byte alignment")
	default:
		log.Warn("warning", "error", err)
	}
}

func writeCorpusReports(outDir string, c *fnbound.Corpus) error {
	if err := fsx.Write(outDir, ResultsFile, func(w io.Writer) error {
		return fnbound.WriteResultsCSV(w, c.Files())
	}); err != nil {
		return err
	}
	return fsx.Write(outDir, ListsFile, func(w io.Writer) error {
		return fnbound.WriteListsCSV(w, c.Last())
	})
}

// SummaryFileName returns the summary file name for a format, or "" when the
// format writes no file.
func SummaryFileName(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "summary.json"
	case "yaml":
		return "summary.yaml"
	}
	return ""
}
