package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"nklab/internal/model"
	"nklab/internal/nk"
)

const (
	runIndexFile = "run_index.json"
	walkCSVFile  = "walk.csv"
)

// runFiles are the artifacts every run directory carries.
var runFiles = []string{
	"config.json",
	"fitness_history.json",
	"walk.json",
	walkCSVFile,
	"ranking.json",
	"diagnostics.json",
}

type RunConfig struct {
	RunID      string `json:"run_id"`
	N          int    `json:"n"`
	K          int    `json:"k"`
	Wiring     string `json:"wiring"`
	Alphabet   []int  `json:"alphabet"`
	Seed       int64  `json:"seed"`
	WalkLength int    `json:"walk_length"`
	Changes    int    `json:"changes"`
	Samples    int    `json:"samples"`
	Ranker     string `json:"ranker"`
	RankIndex  int    `json:"rank_index"`
	Top        int    `json:"top"`
}

type RunArtifacts struct {
	Config         RunConfig             `json:"config"`
	FitnessHistory []int                 `json:"fitness_history"`
	Walk           []model.WalkStep      `json:"walk"`
	Ranking        []model.RankedState   `json:"ranking"`
	Diagnostics    model.WalkDiagnostics `json:"diagnostics"`
}

type RunIndexEntry struct {
	RunID          string `json:"run_id"`
	N              int    `json:"n"`
	K              int    `json:"k"`
	Wiring         string `json:"wiring"`
	Seed           int64  `json:"seed"`
	WalkLength     int    `json:"walk_length"`
	Ranker         string `json:"ranker"`
	InitialFitness int    `json:"initial_fitness"`
	FinalFitness   int    `json:"final_fitness"`
	BestFitness    int    `json:"best_fitness"`
	CreatedAtUTC   string `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{
		"fitness_by_step": artifacts.FitnessHistory,
		"best_fitness":    artifacts.Diagnostics.BestFitness,
	}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "walk.json"), artifacts.Walk); err != nil {
		return "", err
	}
	if err := WriteWalkSeries(runDir, artifacts.Walk); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "ranking.json"), artifacts.Ranking); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns indexed runs newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Later appends win on equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range runFiles {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, "config.json"), &cfg)
	return cfg, ok, err
}

func ReadDiagnostics(baseDir, runID string) (model.WalkDiagnostics, bool, error) {
	var diagnostics model.WalkDiagnostics
	ok, err := readJSON(filepath.Join(baseDir, runID, "diagnostics.json"), &diagnostics)
	return diagnostics, ok, err
}

func ReadWalk(baseDir, runID string) ([]model.WalkStep, bool, error) {
	var steps []model.WalkStep
	ok, err := readJSON(filepath.Join(baseDir, runID, "walk.json"), &steps)
	return steps, ok, err
}

func ReadRanking(baseDir, runID string) ([]model.RankedState, bool, error) {
	var ranking []model.RankedState
	ok, err := readJSON(filepath.Join(baseDir, runID, "ranking.json"), &ranking)
	return ranking, ok, err
}

// WriteWalkSeries writes one row per walk step: step, state, fitness and
// distance from the start state.
func WriteWalkSeries(runDir string, steps []model.WalkStep) error {
	file, err := os.Create(filepath.Join(runDir, walkCSVFile))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"step", "state", "fitness", "distance"}); err != nil {
		return err
	}
	for _, step := range steps {
		if err := writer.Write([]string{
			strconv.Itoa(step.Step),
			nk.State(step.State).String(),
			strconv.Itoa(step.Fitness),
			strconv.Itoa(step.Distance),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadWalkSeries returns the fitness column of a run's walk.csv.
func ReadWalkSeries(baseDir, runID string) ([]int, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, walkCSVFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []int{}, true, nil
		}
		return nil, false, err
	}
	column := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "fitness" {
			column = i
		}
	}
	if column < 0 {
		return nil, false, fmt.Errorf("walk series header has no fitness column")
	}

	series := make([]int, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) <= column {
			return nil, false, fmt.Errorf("walk series row has %d columns, want > %d", len(record), column)
		}
		value, err := strconv.Atoi(record[column])
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
