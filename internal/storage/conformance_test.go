package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nklab/internal/model"
)

func sampleRun(id string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		N:               6,
		K:               2,
		Wiring:          "ring",
		Alphabet:        []int{0, 1},
		Seed:            11,
		WalkLength:      3,
		Changes:         1,
		Samples:         4,
		Ranker:          "totalistic",
		CreatedAtUTC:    "2026-01-02T03:04:05Z",
	}
}

func sampleWalk() []model.WalkStep {
	return []model.WalkStep{
		{VersionedRecord: CurrentVersion(), Step: 0, State: []int{0, 0, 0}, Scores: []int{5, 9, 1}, Fitness: 15},
		{VersionedRecord: CurrentVersion(), Step: 1, State: []int{0, 1, 0}, Scores: []int{7, 2, 8}, Fitness: 17, Distance: 1},
	}
}

func sampleRanking() []model.RankedState {
	return []model.RankedState{
		{VersionedRecord: CurrentVersion(), Rank: 1, State: []int{1, 1, 0}, Score: 900},
		{VersionedRecord: CurrentVersion(), Rank: 2, State: []int{0, 1, 1}, Score: 870},
	}
}

// exerciseStore runs the shared round-trip checks against an initialized store.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.GetRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	run := sampleRun("run-1")
	require.NoError(t, store.SaveRun(ctx, run))
	got, ok, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, run, got)

	run.Samples = 99
	require.NoError(t, store.SaveRun(ctx, run))
	got, _, err = store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 99, got.Samples)

	require.NoError(t, store.SaveFitnessHistory(ctx, "run-1", []int{15, 17, 17}))
	history, ok, err := store.GetFitnessHistory(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{15, 17, 17}, history)

	require.NoError(t, store.SaveWalk(ctx, "run-1", sampleWalk()))
	walk, ok, err := store.GetWalk(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleWalk(), walk)

	require.NoError(t, store.SaveRanking(ctx, "run-1", sampleRanking()))
	ranking, ok, err := store.GetRanking(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleRanking(), ranking)

	_, ok, err = store.GetWalk(ctx, "run-2")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetRanking(ctx, "run-2")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetFitnessHistory(ctx, "run-2")
	require.NoError(t, err)
	assert.False(t, ok)
}
