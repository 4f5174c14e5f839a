package fnbound

import "slices"

// Outcome is the classification of a single function start.
type Outcome string

// Classification outcomes. Buried is not an outcome of its own: a buried
// address is a Missing one swallowed by a Long prediction.
const (
	OutcomeMatch   Outcome = "match"
	OutcomeShort   Outcome = "short"
	OutcomeLong    Outcome = "long"
	OutcomeMissing Outcome = "missing"
	OutcomeOther   Outcome = "other"
)

// Entry is one classified address.
type Entry struct {
	Address uint64 `json:"address"`
	// Truth is the true length, zero when the address is not in the truth
	// table or its length is unknown.
	Truth int64 `json:"truth"`
	// Predicted is the tool's length, zero when the tool did not report the
	// address.
	Predicted int64 `json:"predicted"`
	// Delta is how far the prediction overshoots (Long) or falls short
	// (Short) of the true end.
	Delta int64 `json:"delta,omitempty"`
}

// End returns the last byte claimed by the prediction.
func (e Entry) End() uint64 {
	if e.Predicted <= 0 {
		return e.Address
	}
	return e.Address + uint64(e.Predicted) - 1
}

// Counts holds the integer categories of a binary.
type Counts struct {
	FPSt    int `json:"fpSt" yaml:"fpSt"`
	FPBd    int `json:"fpBd" yaml:"fpBd"`
	TPSt    int `json:"tpSt" yaml:"tpSt"`
	TPBd    int `json:"tpBd" yaml:"tpBd"`
	LongBd  int `json:"longBd" yaml:"longBd"`
	ShortBd int `json:"shortBd" yaml:"shortBd"`
	Missing int `json:"missing" yaml:"missing"`
	GT      int `json:"gt" yaml:"gt"`
}

// FileStats is the complete evaluation of one binary.
type FileStats struct {
	Binary    string        `json:"binary"`
	Region    TextRegion    `json:"region"`
	Alignment AlignmentMode `json:"alignment"`
	Counts    Counts        `json:"counts"`
	Scores    Scores        `json:"scores"`

	Match   map[uint64]Entry `json:"-"`
	Short   map[uint64]Entry `json:"-"`
	Long    map[uint64]Entry `json:"-"`
	Other   map[uint64]Entry `json:"-"`
	Missing map[uint64]Entry `json:"-"`

	// Buried maps each Long address to the missing addresses its predicted
	// span swallows, in ascending order.
	Buried map[uint64][]uint64 `json:"-"`
	// BuriedCount is the number of distinct buried addresses.
	BuriedCount int `json:"buried"`
}

// Outcome returns the classification of addr, if any. An address that is
// both Long and the owner of buried entries reports OutcomeLong; a buried
// address reports OutcomeMissing.
func (s *FileStats) Outcome(addr uint64) (Outcome, bool) {
	for _, c := range []struct {
		m map[uint64]Entry
		o Outcome
	}{
		{s.Match, OutcomeMatch},
		{s.Short, OutcomeShort},
		{s.Long, OutcomeLong},
		{s.Other, OutcomeOther},
		{s.Missing, OutcomeMissing},
	} {
		if _, ok := c.m[addr]; ok {
			return c.o, true
		}
	}
	return "", false
}

// Classify scores the predicted table of one binary against its truth.
//
// Every predicted address inside the truth's text region is classified as
// Match, Short, Long or Other. Every truth address the tool never reported is
// Missing, and a Missing address strictly inside the span of a Long
// prediction is also recorded as buried under it. Classify does not modify
// its inputs and always yields the same result for the same tables.
func Classify(binary string, truth *Truth, predicted AddressTable, mode AlignmentMode) *FileStats {
	s := &FileStats{
		Binary:    binary,
		Region:    truth.Region,
		Alignment: mode,
		Match:     make(map[uint64]Entry),
		Short:     make(map[uint64]Entry),
		Long:      make(map[uint64]Entry),
		Other:     make(map[uint64]Entry),
		Missing:   make(map[uint64]Entry),
		Buried:    make(map[uint64][]uint64),
	}
	c := &s.Counts

	for _, addr := range predicted.Sorted() {
		if !truth.Region.Contains(addr) {
			continue
		}
		e := Entry{Address: addr, Predicted: predicted[addr]}

		g, ok := truth.Table[addr]
		if !ok {
			c.FPSt++
			c.FPBd++
			s.Other[addr] = e
			continue
		}
		e.Truth = g
		c.TPSt++

		switch outcome, delta := classifyBoundary(g, e.Predicted, mode); outcome {
		case OutcomeMatch:
			c.TPBd++
			s.Match[addr] = e
		case OutcomeLong:
			c.LongBd++
			c.FPBd++
			e.Delta = delta
			s.Long[addr] = e
			s.Buried[addr] = nil
		case OutcomeShort:
			c.ShortBd++
			c.FPBd++
			e.Delta = delta
			s.Short[addr] = e
		}
	}

	longs := sortedKeys(s.Long)
	buried := make(map[uint64]struct{})
	for _, addr := range truth.Table.Sorted() {
		c.GT++
		if _, ok := predicted[addr]; ok {
			continue
		}
		c.Missing++
		s.Missing[addr] = Entry{Address: addr, Truth: truth.Table[addr]}

		for _, x := range longs {
			if x >= addr {
				break
			}
			if addr < x+uint64(s.Long[x].Predicted) {
				s.Buried[x] = append(s.Buried[x], addr)
				buried[addr] = struct{}{}
			}
		}
	}
	s.BuriedCount = len(buried)

	s.Scores = ComputeScores(s.Counts)
	return s
}

// classifyBoundary compares the lengths of an address found in both tables.
// A zero length on either side is unknown and matches. A prediction that
// extends past the true end is Long; one that stops early is Short unless the
// shortfall is within the alignment tolerance.
func classifyBoundary(truth, predicted int64, mode AlignmentMode) (Outcome, int64) {
	switch {
	case truth == 0 || predicted == 0 || truth == predicted:
		return OutcomeMatch, 0
	case predicted > truth:
		return OutcomeLong, predicted - truth
	default:
		if deficit := truth - predicted; deficit > mode.Tolerance() {
			return OutcomeShort, deficit
		}
		return OutcomeMatch, 0
	}
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
