package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matflow/matflow/internal/facility"
	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
)

func openTemp(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

// runMine simulates a lone mine for three ticks with its monitor attached.
func runMine(t *testing.T) []facility.Facility {
	t.Helper()
	s := sim.New(sim.WithPropagateErrors())
	m, err := facility.NewMine(s, "mine", material.NewIndexer(), facility.MineConfig{DrumThroughput: 4})
	require.NoError(t, err)
	require.NoError(t, m.Start(s, nil))
	facility.MonitorInventory(s, m)
	require.NoError(t, s.Run(3))
	return []facility.Facility{m}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	r1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, r2.Close())
}

func TestRecordRun_RoundTrip(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	facilities := runMine(t)

	runID, err := r.RecordRun(ctx, "mine-only", 3, facilities)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := r.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "mine-only", runs[0].Scenario)
	assert.Equal(t, int64(3), runs[0].Duration)

	latest, err := r.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest.ID)

	summaries, err := r.Summarize(ctx, runID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, "mine", s.Facility)
	assert.Equal(t, "shipping", s.Store)
	assert.Equal(t, int64(2), s.LastTick)
	assert.Equal(t, 12, s.Count, "4 drums per tick over ticks 0..2")
	assert.Equal(t, 12.0, s.TotalIns)
	assert.Equal(t, 0.0, s.TotalOuts)

	items, err := r.FinalItemCounts(ctx, runID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, material.KindDrum, items[0].Kind)
	assert.Equal(t, 12, items[0].Count)
	assert.Equal(t, 4800.0, items[0].WeightKG)
}

func TestLatestRun_Empty(t *testing.T) {
	r := openTemp(t)
	_, err := r.LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestRecordRun_MultipleRunsSortNewestFirst(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	facilities := runMine(t)

	first, err := r.RecordRun(ctx, "a", 3, facilities)
	require.NoError(t, err)
	second, err := r.RecordRun(ctx, "b", 3, facilities)
	require.NoError(t, err)

	runs, err := r.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID, "UUIDv7 IDs sort by creation time")
	assert.Equal(t, first, runs[1].ID)

	latest, err := r.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
}
