package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nklab/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	walk := []model.WalkStep{
		{Step: 0, State: []int{0, 0, 1}, Scores: []int{10, 20, 30}, Fitness: 60},
		{Step: 1, State: []int{0, 1, 1}, Scores: []int{40, 20, 30}, Fitness: 90, Distance: 1},
		{Step: 2, State: []int{1, 1, 1}, Scores: []int{5, 20, 30}, Fitness: 55, Distance: 2},
	}
	return RunArtifacts{
		Config: RunConfig{
			RunID:      runID,
			N:          3,
			K:          1,
			Wiring:     "ring",
			Alphabet:   []int{0, 1},
			Seed:       1,
			WalkLength: 2,
			Changes:    1,
			Samples:    4,
			Ranker:     "totalistic",
			Top:        2,
		},
		FitnessHistory: FitnessSeries(walk),
		Walk:           walk,
		Ranking: []model.RankedState{
			{Rank: 1, State: []int{0, 1, 1}, Score: 90},
			{Rank: 2, State: []int{0, 0, 1}, Score: 60},
		},
		Diagnostics: SummarizeWalk(walk),
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-123"))
	require.NoError(t, err)
	for _, file := range runFiles {
		_, err := os.Stat(filepath.Join(runDir, file))
		require.NoError(t, err, "expected file %s", file)
	}

	exportedDir, err := ExportRunArtifacts(baseDir, "run-123", outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "run-123"), exportedDir)
	for _, file := range runFiles {
		_, err := os.Stat(filepath.Join(exportedDir, file))
		require.NoError(t, err, "expected exported file %s", file)
	}

	_, err = ExportRunArtifacts(baseDir, "missing", outDir)
	assert.Error(t, err)
	_, err = ExportRunArtifacts(baseDir, "", outDir)
	assert.Error(t, err)
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	_, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{})
	assert.Error(t, err)
}

func TestReadBackRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := sampleArtifacts("run-7")
	_, err := WriteRunArtifacts(baseDir, artifacts)
	require.NoError(t, err)

	cfg, ok, err := ReadRunConfig(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, artifacts.Config, cfg)

	diagnostics, ok, err := ReadDiagnostics(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, artifacts.Diagnostics, diagnostics)

	ranking, ok, err := ReadRanking(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, artifacts.Ranking, ranking)

	series, ok, err := ReadWalkSeries(baseDir, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{60, 90, 55}, series)

	_, ok, err = ReadRunConfig(baseDir, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = ReadWalkSeries(baseDir, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalkSeriesRendersStates(t *testing.T) {
	runDir := t.TempDir()
	require.NoError(t, WriteWalkSeries(runDir, []model.WalkStep{
		{Step: 0, State: []int{0, 1, 1}, Fitness: 7},
		{Step: 1, State: []int{2, 13}, Fitness: 9, Distance: 1},
	}))

	data, err := os.ReadFile(filepath.Join(runDir, walkCSVFile))
	require.NoError(t, err)
	assert.Equal(t, "step,state,fitness,distance\n0,011,7,0\n1,\"2,13\",9,1\n", string(data))
}

func TestReadWalkSeriesRejectsMissingColumn(t *testing.T) {
	baseDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "run-1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "run-1", walkCSVFile), []byte("step,state\n0,01\n"), 0o644))

	_, _, err := ReadWalkSeries(baseDir, "run-1")
	assert.Error(t, err)
}

func TestRunIndexAppendListAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	require.NoError(t, AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-1",
		N:            8,
		K:            2,
		Seed:         1,
		BestFitness:  800,
		CreatedAtUTC: "2026-02-10T10:00:00Z",
	}))
	require.NoError(t, AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-2",
		N:            8,
		K:            2,
		Seed:         2,
		BestFitness:  820,
		CreatedAtUTC: "2026-02-10T11:00:00Z",
	}))

	entries, err := ListRunIndex(baseDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "run-2", entries[0].RunID)
	assert.Equal(t, "run-1", entries[1].RunID)

	require.NoError(t, AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-1",
		N:            8,
		K:            2,
		Seed:         1,
		BestFitness:  900,
		CreatedAtUTC: "2026-02-10T12:00:00Z",
	}))

	entries, err = ListRunIndex(baseDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, 900, entries[0].BestFitness)
}

func TestRunIndexEqualTimestampsPreferLaterAppend(t *testing.T) {
	baseDir := t.TempDir()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, AppendRunIndex(baseDir, RunIndexEntry{RunID: id, CreatedAtUTC: "2026-02-10T10:00:00Z"}))
	}

	entries, err := ListRunIndex(baseDir)
	require.NoError(t, err)
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.RunID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestListRunIndexEmpty(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Error(t, AppendRunIndex(t.TempDir(), RunIndexEntry{}))
}
