package fnbound_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/maxgio92/fnbound"
)

func TestCorpus_Totals(t *testing.T) {
	c := fnbound.NewCorpus()
	perfect := fnbound.Classify("a.funcbd",
		truthOf(fnbound.AddressTable{0x10: 16, 0x20: 16}),
		fnbound.AddressTable{0x10: 16, 0x20: 16}, fnbound.Align4)
	for _, s := range []*fnbound.FileStats{sampleStats("b.funcbd"), perfect} {
		if err := c.Add(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := fnbound.Totals{Binaries: 2, Matches: 3, Shorts: 1, Longs: 1, Others: 1, Missings: 1, GT: 6}
	if got := c.Totals(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	tr := c.Triples()
	// reported = 3+1+1+1 = 6
	if !closeTo(tr.Start.Precision, 5.0/6) || !closeTo(tr.Start.Recall, 5.0/6) {
		t.Errorf("unexpected start score %+v", tr.Start)
	}
	if !closeTo(tr.BoundaryWithShorts.Precision, 4.0/6) || !closeTo(tr.BoundaryWithShorts.Recall, 4.0/6) {
		t.Errorf("unexpected boundary-with-shorts score %+v", tr.BoundaryWithShorts)
	}
	if !closeTo(tr.Boundary.Precision, 0.5) || !closeTo(tr.Boundary.Recall, 0.5) || !closeTo(tr.Boundary.F1, 0.5) {
		t.Errorf("unexpected boundary score %+v", tr.Boundary)
	}

	files := c.Files()
	if len(files) != 2 || files[0].Binary != "a.funcbd" || files[1].Binary != "b.funcbd" {
		t.Errorf("expected files sorted by name, got %v, %v", files[0].Binary, files[1].Binary)
	}
	if last := c.Last(); last == nil || last.Binary != "b.funcbd" {
		t.Errorf("expected b.funcbd last, got %v", last)
	}
}

func TestCorpus_Empty(t *testing.T) {
	c := fnbound.NewCorpus()
	if tr := c.Triples(); tr != (fnbound.Triples{}) {
		t.Errorf("expected zero scores for an empty corpus, got %+v", tr)
	}
	if c.Last() != nil {
		t.Error("expected no last binary")
	}
}

func TestCorpus_DuplicateBinary(t *testing.T) {
	c := fnbound.NewCorpus()
	if err := c.Add(sampleStats("bin")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Add(sampleStats("bin")); err == nil {
		t.Fatal("expected an error adding the same binary twice")
	}
	if got := c.Totals().Binaries; got != 1 {
		t.Errorf("expected the duplicate to be rejected, got %d binaries", got)
	}
}

func TestCorpus_Failures(t *testing.T) {
	c := fnbound.NewCorpus()
	c.Fail("z", errors.New("malformed text header"))
	c.Fail("y", errors.New("unreadable"))

	got := c.Failures()
	if len(got) != 2 || got[0].Binary != "y" || got[1].Binary != "z" {
		t.Fatalf("expected failures sorted by name, got %+v", got)
	}
	if c.Totals().Binaries != 0 {
		t.Error("failures must not count as scored binaries")
	}
}

func TestCorpus_ConcurrentAdd(t *testing.T) {
	c := fnbound.NewCorpus()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Add(sampleStats(fmt.Sprintf("bin%02d", i))); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := c.Totals(); got.Binaries != 50 || got.GT != 200 || got.Matches != 50 {
		t.Errorf("unexpected totals %+v", got)
	}
}

func TestCorpus_Rankings(t *testing.T) {
	c := fnbound.NewCorpus()
	// Binaries with 0..6 long predictions; ties are broken by name.
	for i := range 7 {
		table := fnbound.AddressTable{}
		pred := fnbound.AddressTable{}
		for j := range 8 {
			a := uint64(0x1000 + j*0x40)
			table[a] = 0x10
			pred[a] = 0x10
			if j < i%4 {
				pred[a] = 0x20
			}
		}
		if err := c.Add(fnbound.Classify(fmt.Sprintf("bin%d", i), truthOf(table), pred, fnbound.Align4)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rankings := c.Rankings()
	if len(rankings) != 5 {
		t.Fatalf("expected 5 rankings, got %d", len(rankings))
	}

	long := rankings[0]
	if long.Metric != fnbound.MetricLongBd {
		t.Fatalf("expected longBd first, got %s", long.Metric)
	}
	// long counts: bin0=0 bin1=1 bin2=2 bin3=3 bin4=0 bin5=1 bin6=2
	var order []string
	for _, r := range long.Worst {
		order = append(order, r.Binary)
	}
	want := []string{"bin3", "bin2", "bin6", "bin1", "bin5"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, order)
	}
	if long.Perfect != 2 || long.Total != 7 {
		t.Errorf("expected 2 of 7 perfect, got %d of %d", long.Perfect, long.Total)
	}
	if !closeTo(long.Worst[0].Share, 3.0/8) {
		t.Errorf("expected share 3/8, got %f", long.Worst[0].Share)
	}

	f1 := rankings[4]
	if f1.Metric != fnbound.MetricF1St {
		t.Fatalf("expected f1St last, got %s", f1.Metric)
	}
	// Start-level F1 ignores lengths, so every binary is perfect.
	if f1.Perfect != 7 || len(f1.Worst) != 7 {
		t.Errorf("expected 7 perfect f1St binaries, got %+v", f1)
	}
	if f1.Worst[0].Binary != "bin0" {
		t.Errorf("expected ties ordered by name, got %s first", f1.Worst[0].Binary)
	}
}
