package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxgio92/fnbound"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func score(t *testing.T, c *fnbound.Corpus, binary string, truth, pred fnbound.AddressTable) {
	t.Helper()
	stats, _ := fnbound.Evaluate(binary, &fnbound.Tables{
		Truth:     &fnbound.Truth{Table: truth, Region: fnbound.RegionOf(truth)},
		Predicted: pred,
	})
	require.NoError(t, c.Add(stats))
}

func sampleCorpus(t *testing.T) *fnbound.Corpus {
	c := fnbound.NewCorpus()
	score(t, c, "a.funcbd",
		fnbound.AddressTable{0x1000: 16, 0x1010: 16},
		fnbound.AddressTable{0x1000: 16, 0x1010: 16})
	score(t, c, "b.funcbd",
		fnbound.AddressTable{0x2000: 16, 0x2010: 16},
		fnbound.AddressTable{0x2000: 32})
	c.Fail("c.funcbd", errors.New("malformed text header"))
	return c
}

func TestNewRun(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRun("run-1", start, start.Add(time.Second), "*.funcbd", sampleCorpus(t))

	assert.Equal(t, 2, r.Binaries)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 4, r.GT)
	assert.Equal(t, 2, r.Matches)
	assert.Equal(t, 1, r.Longs)
	assert.Equal(t, 1, r.Missings)
	assert.InDelta(t, 2.0/3.0, r.PrecBd, 1e-9)
	assert.InDelta(t, 0.5, r.RecallBd, 1e-9)

	require.Len(t, r.Scores, 3)
	assert.Equal(t, "a.funcbd", r.Scores[0].Binary)
	assert.Equal(t, StatusScored, r.Scores[0].Status)
	assert.Equal(t, "align4", r.Scores[0].Alignment)
	assert.Equal(t, 1, r.Scores[1].Buried)
	assert.Equal(t, StatusFailed, r.Scores[2].Status)
	assert.Equal(t, "malformed text header", r.Scores[2].Error)
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := sampleCorpus(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, NewRun("run-1", base, base.Add(time.Second), "*.funcbd", c)))
	require.NoError(t, s.SaveRun(ctx, NewRun("run-2", base.Add(time.Hour), base.Add(time.Hour+time.Second), "*.funcbd", c)))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Empty(t, runs[0].Scores)

	runs, err = s.RecentRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	r, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 4, r.GT)
	require.Len(t, r.Scores, 3)
	assert.Equal(t, "a.funcbd", r.Scores[0].Binary)
	assert.Equal(t, "c.funcbd", r.Scores[2].Binary)

	hist, err := s.BinaryHistory(ctx, "b.funcbd", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "run-2", hist[0].RunID)
	assert.Equal(t, 1, hist[0].LongBd)
}

func TestStore_DuplicateRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r := NewRun("dup", now, now, "*.newgt", fnbound.NewCorpus())
	require.NoError(t, s.SaveRun(ctx, r))
	assert.Error(t, s.SaveRun(ctx, NewRun("dup", now, now, "*.newgt", fnbound.NewCorpus())))
}

func TestStore_GetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
