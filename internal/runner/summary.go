package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maxgio92/fnbound"
	"github.com/maxgio92/fnbound/internal/fsx"
)

// Summary is the machine-readable report of a run.
type Summary struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	Pattern    string            `json:"pattern" yaml:"pattern"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time         `json:"finished_at" yaml:"finished_at"`
	Totals     fnbound.Totals    `json:"totals" yaml:"totals"`
	Scores     fnbound.Triples   `json:"scores" yaml:"scores"`
	Rankings   []fnbound.Ranking `json:"rankings" yaml:"rankings"`
	Binaries   []BinarySummary   `json:"binaries" yaml:"binaries"`
	Failures   []fnbound.Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// BinarySummary is one binary's entry in a Summary.
type BinarySummary struct {
	BinaryResult `yaml:",inline"`
	Alignment    string          `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Buried       int             `json:"buried" yaml:"buried"`
	Counts       *fnbound.Counts `json:"counts,omitempty" yaml:"counts,omitempty"`
	Scores       *fnbound.Scores `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// NewSummary builds the Summary of a run.
func NewSummary(r *Result) Summary {
	s := Summary{
		RunID:      r.ID.String(),
		Pattern:    r.Pattern,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Totals:     r.Corpus.Totals(),
		Scores:     r.Corpus.Triples(),
		Rankings:   r.Corpus.Rankings(),
		Failures:   r.Corpus.Failures(),
	}

	stats := make(map[string]*fnbound.FileStats)
	for _, f := range r.Corpus.Files() {
		stats[f.Binary] = f
	}
	for _, b := range r.Binaries {
		bs := BinarySummary{BinaryResult: b}
		if f, ok := stats[b.ID]; ok {
			bs.Alignment = f.Alignment.String()
			bs.Buried = f.BuriedCount
			bs.Counts = &f.Counts
			bs.Scores = &f.Scores
		}
		s.Binaries = append(s.Binaries, bs)
	}
	return s
}

// EncodeSummary writes s to w as JSON or YAML.
func EncodeSummary(w io.Writer, format string, s Summary) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported summary format %q", format)
	}
}

// WriteSummaryFile writes the run summary into dir. Formats without a file
// name write nothing.
func WriteSummaryFile(dir, format string, r *Result) error {
	name := SummaryFileName(format)
	if name == "" {
		return nil
	}
	s := NewSummary(r)
	return fsx.Write(dir, name, func(w io.Writer) error {
		return EncodeSummary(w, format, s)
	})
}
