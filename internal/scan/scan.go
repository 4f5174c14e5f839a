// Package scan pairs prediction files with their ground-truth tables.
package scan

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// TruthExt is the extension of ground-truth tables.
const TruthExt = ".sym"

// ReportExt is the extension of per-binary detail reports.
const ReportExt = ".res"

// ErrNoPredictions is returned when none of the patterns matches a file.
var ErrNoPredictions = errors.New("no prediction files found")

// Binary is one unit of work: a prediction table and the truth table it is
// scored against.
type Binary struct {
	// ID is the prediction file's base name, unique within a run.
	ID string
	// Stem is ID without its extension.
	Stem      string
	Predicted string
	Truth     string
}

// ReportName returns the file name of the binary's detail report.
func (b Binary) ReportName() string {
	return b.Stem + ReportExt
}

// Discover globs funcDir with each pattern in turn and uses the first one that
// matches anything. Truth tables are expected in symDir as <stem>.sym. The
// result is ordered by ID.
func Discover(funcDir, symDir string, patterns []string) ([]Binary, string, error) {
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(funcDir, p))
		if err != nil {
			return nil, "", fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			continue
		}
		slices.Sort(matches)

		out := make([]Binary, 0, len(matches))
		for _, m := range matches {
			id := filepath.Base(m)
			stem := strings.TrimSuffix(id, filepath.Ext(id))
			out = append(out, Binary{
				ID:        id,
				Stem:      stem,
				Predicted: m,
				Truth:     filepath.Join(symDir, stem+TruthExt),
			})
		}
		return out, p, nil
	}
	return nil, "", fmt.Errorf("%w in %s (tried %s)", ErrNoPredictions, funcDir, strings.Join(patterns, ", "))
}
