package fnbound

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// buriedPerLine is how many buried addresses a detail report prints per line.
const buriedPerLine = 5

// Categories are the per-binary columns of the results CSV, in order.
var Categories = []string{
	"fpSt", "fpBd", "tpSt", "tpBd", "longBd", "shortBd", "missing", "gt",
	"precSt", "recallSt", "f1St", "precBd", "recallBd", "f1Bd",
}

// Category returns the value of a named category and whether it is a ratio.
func (s *FileStats) Category(name string) (float64, bool, error) {
	c, r := s.Counts, s.Scores
	switch name {
	case "fpSt":
		return float64(c.FPSt), false, nil
	case "fpBd":
		return float64(c.FPBd), false, nil
	case "tpSt":
		return float64(c.TPSt), false, nil
	case "tpBd":
		return float64(c.TPBd), false, nil
	case "longBd":
		return float64(c.LongBd), false, nil
	case "shortBd":
		return float64(c.ShortBd), false, nil
	case "missing":
		return float64(c.Missing), false, nil
	case "gt":
		return float64(c.GT), false, nil
	case "precSt":
		return r.PrecSt, true, nil
	case "recallSt":
		return r.RecallSt, true, nil
	case "f1St":
		return r.F1St, true, nil
	case "precBd":
		return r.PrecBd, true, nil
	case "recallBd":
		return r.RecallBd, true, nil
	case "f1Bd":
		return r.F1Bd, true, nil
	default:
		return 0, false, fmt.Errorf("unknown category %q", name)
	}
}

// Percent formats a ratio as a percentage with two decimals.
func Percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

// WriteDetailReport writes the human-readable report of one binary: a
// summary, then the Short, Long, Other and Missing entries in ascending
// address order. Long entries list the addresses buried under them.
func WriteDetailReport(w io.Writer, s *FileStats) error {
	bw := bufio.NewWriter(w)
	gt := s.Counts.GT
	share := func(n int) string { return Percent(ratio(n, gt)) }

	fmt.Fprintf(bw, "%d(%s) matches out of %d functions with %d others %d missing\n",
		len(s.Match), share(len(s.Match)), gt, len(s.Other), len(s.Missing))
	fmt.Fprintf(bw, "%d long and %d short and %d buried\n",
		len(s.Long), len(s.Short), s.BuriedCount)

	fmt.Fprintf(bw, "\nShort %d (%s)\n", len(s.Short), share(len(s.Short)))
	for _, a := range sortedKeys(s.Short) {
		e := s.Short[a]
		fmt.Fprintf(bw, "0x%x %5d  (%5d end at 0x%x)\n", a, e.Predicted, e.Delta, e.End())
	}

	fmt.Fprintf(bw, "\nLong %d (%s)\n", len(s.Long), share(len(s.Long)))
	for _, a := range sortedKeys(s.Long) {
		e := s.Long[a]
		buried := s.Buried[a]
		fmt.Fprintf(bw, "0x%08x %5d  (%5d end at 0x%08x -- buried %d)\n",
			a, e.Predicted, e.Delta, e.End(), len(buried))
		for i, b := range buried {
			if i%buriedPerLine == 0 {
				bw.WriteString("  ")
			}
			fmt.Fprintf(bw, "0x%08x  ", b)
			if (i+1)%buriedPerLine == 0 || i == len(buried)-1 {
				bw.WriteString("\n")
			}
		}
		bw.WriteString("\n")
	}

	fmt.Fprintf(bw, "\nOther %d (%s)\n", len(s.Other), share(len(s.Other)))
	for _, a := range sortedKeys(s.Other) {
		fmt.Fprintf(bw, "0x%x %5d\n", a, s.Other[a].Predicted)
	}

	fmt.Fprintf(bw, "\nMissing %d (%s)\n", len(s.Missing), share(len(s.Missing)))
	for _, a := range sortedKeys(s.Missing) {
		fmt.Fprintf(bw, "0x%x %5d\n", a, s.Missing[a].Truth)
	}

	return bw.Flush()
}

// WriteResultsCSV writes one row per binary, in the order given, with the
// columns name and Categories. Ratios are written as percentages.
func WriteResultsCSV(w io.Writer, files []*FileStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"name"}, Categories...)); err != nil {
		return err
	}

	row := make([]string, 0, len(Categories)+1)
	for _, s := range files {
		row = append(row[:0], s.Binary)
		for _, cat := range Categories {
			v, isRatio, err := s.Category(cat)
			if err != nil {
				return err
			}
			if isRatio {
				row = append(row, Percent(v))
			} else {
				row = append(row, strconv.FormatInt(int64(v), 10))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteListsCSV writes the Short, Long and Missing addresses of one binary
// side by side. Columns shorter than the longest are padded with 0x0.
func WriteListsCSV(w io.Writer, s *FileStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"short", "long", "missing"}); err != nil {
		return err
	}
	if s == nil {
		cw.Flush()
		return cw.Error()
	}

	cols := [][]uint64{sortedKeys(s.Short), sortedKeys(s.Long), sortedKeys(s.Missing)}
	rows := max(len(cols[0]), len(cols[1]), len(cols[2]))
	for i := range rows {
		rec := make([]string, len(cols))
		for j, col := range cols {
			var a uint64
			if i < len(col) {
				a = col[i]
			}
			rec[j] = "0x" + strconv.FormatUint(a, 16)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the corpus summary: totals, the three score triples,
// the rankings and any binaries that failed to load.
func WriteSummary(w io.Writer, c *Corpus) error {
	bw := bufio.NewWriter(w)
	t := c.Totals()
	share := func(n int) string { return Percent(ratio(n, t.GT)) }

	fmt.Fprintf(bw, "Found %d total matches in %d files from %d gts for %s\n",
		t.Matches, t.Binaries, t.GT, share(t.Matches))
	fmt.Fprintf(bw, "Found %d shorts (%s), %d longs (%s) %d (%s) other and %d (%s) missing\n",
		t.Shorts, share(t.Shorts), t.Longs, share(t.Longs),
		t.Others, share(t.Others), t.Missings, share(t.Missings))

	tr := c.Triples()
	writeScore := func(label string, s Score) {
		fmt.Fprintf(bw, "\n%s: Precision %s and recall %s and F1= %s\n",
			label, Percent(s.Precision), Percent(s.Recall), Percent(s.F1))
	}
	writeScore("For starts", tr.Start)
	writeScore(fmt.Sprintf("For boundary and shorts %d", t.Shorts), tr.BoundaryWithShorts)
	writeScore("For boundary", tr.Boundary)
	bw.WriteString("\n")

	for _, r := range c.Rankings() {
		direction := "Top"
		if r.Metric == MetricF1St {
			direction = "Bottom"
		}
		fmt.Fprintf(bw, "%s %s is %d perfect out of %d  = %s\n",
			direction, r.Metric, r.Perfect, r.Total, Percent(ratio(r.Perfect, r.Total)))
		for i, e := range r.Worst {
			if r.Metric == MetricF1St {
				fmt.Fprintf(bw, "%3d: %s : %s\n", i+1, Percent(e.Value), e.Binary)
				continue
			}
			fmt.Fprintf(bw, "%3d: %5d (%s) : %s\n", i+1, int(e.Value), Percent(e.Share), e.Binary)
		}
		bw.WriteString("\n")
	}

	if failures := c.Failures(); len(failures) > 0 {
		fmt.Fprintf(bw, "Failed %d\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(bw, "  %s: %s\n", f.Binary, f.Reason)
		}
	}

	return bw.Flush()
}
