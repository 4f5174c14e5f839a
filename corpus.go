package fnbound

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Ranking sizes.
const (
	WorstCount = 5
	WorstF1    = 15
)

// Metric names a per-binary category that can be ranked.
type Metric string

// Ranked metrics. The count metrics rank the highest values first; MetricF1St
// ranks the lowest first.
const (
	MetricLongBd  Metric = "longBd"
	MetricShortBd Metric = "shortBd"
	MetricFPSt    Metric = "fpSt"
	MetricMissing Metric = "missing"
	MetricF1St    Metric = "f1St"
)

// Totals are the corpus-wide outcome counts.
type Totals struct {
	Binaries int `json:"binaries" yaml:"binaries"`
	Matches  int `json:"matches" yaml:"matches"`
	Shorts   int `json:"shorts" yaml:"shorts"`
	Longs    int `json:"longs" yaml:"longs"`
	Others   int `json:"others" yaml:"others"`
	Missings int `json:"missings" yaml:"missings"`
	GT       int `json:"gt" yaml:"gt"`
}

// Triples are the three corpus-level scores. They share the precision
// denominator matches+longs+shorts+others and the recall denominator GT.
type Triples struct {
	// Start counts any detected start as a hit.
	Start Score `json:"start" yaml:"start"`
	// BoundaryWithShorts also accepts predictions that stop early.
	BoundaryWithShorts Score `json:"boundary_with_shorts" yaml:"boundary_with_shorts"`
	// Boundary only accepts matches.
	Boundary Score `json:"boundary" yaml:"boundary"`
}

// Ranking lists the worst binaries for one metric.
type Ranking struct {
	Metric Metric `json:"metric" yaml:"metric"`
	// Perfect is the number of binaries with a zero count, or with an F1 of
	// exactly 1 for MetricF1St.
	Perfect int      `json:"perfect" yaml:"perfect"`
	Total   int      `json:"total" yaml:"total"`
	Worst   []Ranked `json:"worst" yaml:"worst"`
}

// Failure records a binary that could not be scored.
type Failure struct {
	Binary string `json:"binary" yaml:"binary"`
	Err    error  `json:"-" yaml:"-"`
	Reason string `json:"reason" yaml:"reason"`
}

// Corpus accumulates the results of a run. It is safe for concurrent use;
// every fold is serialized.
type Corpus struct {
	mu       sync.Mutex
	totals   Totals
	files    map[string]*FileStats
	failures map[string]error
}

// NewCorpus returns an empty Corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		files:    make(map[string]*FileStats),
		failures: make(map[string]error),
	}
}

// Add folds a scored binary into the corpus. Binary identifiers must be
// unique within a run.
func (c *Corpus) Add(s *FileStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.files[s.Binary]; ok {
		return fmt.Errorf("binary %q already added", s.Binary)
	}
	c.files[s.Binary] = s

	c.totals.Binaries++
	c.totals.Matches += len(s.Match)
	c.totals.Shorts += len(s.Short)
	c.totals.Longs += len(s.Long)
	c.totals.Others += len(s.Other)
	c.totals.Missings += len(s.Missing)
	c.totals.GT += s.Counts.GT
	return nil
}

// Fail records a binary that could not be scored. It does not contribute to
// the totals.
func (c *Corpus) Fail(binary string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[binary] = err
}

// Totals returns the corpus-wide counts.
func (c *Corpus) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Triples returns the start, boundary-with-shorts and strict boundary scores
// of the whole corpus.
func (c *Corpus) Triples() Triples {
	t := c.Totals()
	reported := t.Matches + t.Longs + t.Shorts + t.Others
	return Triples{
		Start:              NewScore(t.Matches+t.Longs+t.Shorts, reported, t.GT),
		BoundaryWithShorts: NewScore(t.Matches+t.Shorts, reported, t.GT),
		Boundary:           NewScore(t.Matches, reported, t.GT),
	}
}

// Files returns every scored binary ordered by identifier.
func (c *Corpus) Files() []*FileStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*FileStats, 0, len(c.files))
	for _, s := range c.files {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *FileStats) int {
		return cmp.Compare(a.Binary, b.Binary)
	})
	return out
}

// Last returns the scored binary whose identifier sorts last, or nil.
func (c *Corpus) Last() *FileStats {
	files := c.Files()
	if len(files) == 0 {
		return nil
	}
	return files[len(files)-1]
}

// Failures returns the binaries that could not be scored, ordered by
// identifier.
func (c *Corpus) Failures() []Failure {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Failure, 0, len(c.failures))
	for b, err := range c.failures {
		out = append(out, Failure{Binary: b, Err: err, Reason: err.Error()})
	}
	slices.SortFunc(out, func(a, b Failure) int {
		return cmp.Compare(a.Binary, b.Binary)
	})
	return out
}

// Rankings returns, for each count metric, the WorstCount binaries with the
// highest counts and, for MetricF1St, the WorstF1 binaries with the lowest
// start-level F1.
func (c *Corpus) Rankings() []Ranking {
	files := c.Files()

	counts := []struct {
		metric Metric
		value  func(*FileStats) int
	}{
		{MetricLongBd, func(s *FileStats) int { return s.Counts.LongBd }},
		{MetricShortBd, func(s *FileStats) int { return s.Counts.ShortBd }},
		{MetricFPSt, func(s *FileStats) int { return s.Counts.FPSt }},
		{MetricMissing, func(s *FileStats) int { return s.Counts.Missing }},
	}

	out := make([]Ranking, 0, len(counts)+1)
	for _, m := range counts {
		r := Ranking{Metric: m.metric, Total: len(files)}
		items := make([]Ranked, 0, len(files))
		for _, s := range files {
			v := m.value(s)
			if v == 0 {
				r.Perfect++
			}
			items = append(items, Ranked{
				Binary: s.Binary,
				Value:  float64(v),
				Share:  ratio(v, s.Counts.GT),
			})
		}
		r.Worst = selectTop(items, WorstCount, highestFirst)
		out = append(out, r)
	}

	r := Ranking{Metric: MetricF1St, Total: len(files)}
	items := make([]Ranked, 0, len(files))
	for _, s := range files {
		if s.Scores.F1St == 1 {
			r.Perfect++
		}
		items = append(items, Ranked{Binary: s.Binary, Value: s.Scores.F1St})
	}
	r.Worst = selectTop(items, WorstF1, lowestFirst)
	return append(out, r)
}
