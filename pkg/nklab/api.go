package nklab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"nklab/internal/model"
	"nklab/internal/nk"
	"nklab/internal/stats"
	"nklab/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "nklab.db"

	defaultN          = 20
	defaultK          = 2
	defaultWalkLength = 50
	defaultChanges    = 1
	defaultSamples    = 100
	defaultTop        = 10
	defaultRunsLimit  = 20

	// MaxLandscapeStates bounds exhaustive enumeration in Landscape.
	MaxLandscapeStates = nk.MaxEnumeratedStates
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
	Logger        *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger
	inited bool

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	N          int    `json:"n"`
	K          int    `json:"k"`
	Wiring     string `json:"wiring"`
	Seed       int64  `json:"seed"`
	WalkLength int    `json:"walk_length"`
	Changes    int    `json:"changes"`
	Samples    int    `json:"samples"`
	Ranker     string `json:"ranker"`
	RankIndex  int    `json:"rank_index"`
	Top        int    `json:"top"`
	Alphabet   []int  `json:"alphabet"`
}

type RunSummary struct {
	RunID        string                `json:"run_id"`
	ArtifactsDir string                `json:"artifacts_dir"`
	Request      RunRequest            `json:"request"`
	Start        nk.State              `json:"start"`
	Final        nk.State              `json:"final"`
	Diagnostics  model.WalkDiagnostics `json:"diagnostics"`
	Top          []model.RankedState   `json:"top"`
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string `json:"run_id"`
	CreatedAtUTC   string `json:"created_at_utc"`
	N              int    `json:"n"`
	K              int    `json:"k"`
	Wiring         string `json:"wiring"`
	Seed           int64  `json:"seed"`
	WalkLength     int    `json:"walk_length"`
	Ranker         string `json:"ranker"`
	InitialFitness int    `json:"initial_fitness"`
	FinalFitness   int    `json:"final_fitness"`
	BestFitness    int    `json:"best_fitness"`
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string `json:"run_id"`
	Directory string `json:"directory"`
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type WalkRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type RankingRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
}

// RunDiagnostics is a run's recorded request and walk statistics, read
// back from its artifact directory.
type RunDiagnostics struct {
	RunID       string                `json:"run_id"`
	Request     RunRequest            `json:"request"`
	Diagnostics model.WalkDiagnostics `json:"diagnostics"`
}

type LandscapeRequest struct {
	N        int
	K        int
	Wiring   string
	Seed     int64
	Alphabet []int
}

// LandscapePoint is one fully evaluated state.
type LandscapePoint struct {
	State   nk.State `json:"state"`
	Scores  []int    `json:"scores"`
	Fitness int      `json:"fitness"`
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		logger:        logger,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.inited {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.inited = true
	return nil
}

// Run builds a landscape, walks it from a random start, ranks a random
// sample and persists the result.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	req = withRunDefaults(req)
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	network, searcher, err := buildLandscape(req.N, req.K, req.Wiring, req.Alphabet, rng)
	if err != nil {
		return RunSummary{}, err
	}
	ranker, err := nk.RankerFromName(req.Ranker, req.RankIndex)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)
	logger.Info("run started", "n", req.N, "k", req.K, "wiring", req.Wiring, "seed", req.Seed)

	start := searcher.RandomState()
	states, err := searcher.MutantWalk(start, req.Changes, req.WalkLength)
	if err != nil {
		return RunSummary{}, err
	}
	walk, err := walkSteps(network, start, states)
	if err != nil {
		return RunSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return RunSummary{}, err
	}
	diagnostics := stats.SummarizeWalk(walk)
	logger.Debug("walk finished", "steps", diagnostics.Steps, "best_fitness", diagnostics.BestFitness)

	samples := make([]nk.State, req.Samples)
	for i := range samples {
		samples[i] = searcher.RandomState()
	}
	ranked, err := ranker.Rank(searcher, samples)
	if err != nil {
		return RunSummary{}, err
	}
	top := topRanked(ranked, req.Top)

	record := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		N:               req.N,
		K:               req.K,
		Wiring:          req.Wiring,
		Alphabet:        append([]int(nil), req.Alphabet...),
		Seed:            req.Seed,
		WalkLength:      req.WalkLength,
		Changes:         req.Changes,
		Samples:         req.Samples,
		Ranker:          ranker.Name(),
		RankIndex:       req.RankIndex,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
	}
	history := stats.FitnessSeries(walk)
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run %s: %w", runID, err)
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return RunSummary{}, fmt.Errorf("save fitness history %s: %w", runID, err)
	}
	if err := c.store.SaveWalk(ctx, runID, walk); err != nil {
		return RunSummary{}, fmt.Errorf("save walk %s: %w", runID, err)
	}
	if err := c.store.SaveRanking(ctx, runID, top); err != nil {
		return RunSummary{}, fmt.Errorf("save ranking %s: %w", runID, err)
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:      runID,
			N:          req.N,
			K:          req.K,
			Wiring:     req.Wiring,
			Alphabet:   append([]int(nil), req.Alphabet...),
			Seed:       req.Seed,
			WalkLength: req.WalkLength,
			Changes:    req.Changes,
			Samples:    req.Samples,
			Ranker:     ranker.Name(),
			RankIndex:  req.RankIndex,
			Top:        req.Top,
		},
		FitnessHistory: history,
		Walk:           walk,
		Ranking:        top,
		Diagnostics:    diagnostics,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:          runID,
		N:              req.N,
		K:              req.K,
		Wiring:         req.Wiring,
		Seed:           req.Seed,
		WalkLength:     req.WalkLength,
		Ranker:         ranker.Name(),
		InitialFitness: diagnostics.InitialFitness,
		FinalFitness:   diagnostics.FinalFitness,
		BestFitness:    diagnostics.BestFitness,
		CreatedAtUTC:   record.CreatedAtUTC,
	}); err != nil {
		return RunSummary{}, err
	}
	logger.Info("run finished", "artifacts", runDir, "best_fitness", diagnostics.BestFitness)

	return RunSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		Request:      req,
		Start:        states[0].Clone(),
		Final:        states[len(states)-1].Clone(),
		Diagnostics:  diagnostics,
		Top:          top,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:          e.RunID,
			CreatedAtUTC:   e.CreatedAtUTC,
			N:              e.N,
			K:              e.K,
			Wiring:         e.Wiring,
			Seed:           e.Seed,
			WalkLength:     e.WalkLength,
			Ranker:         e.Ranker,
			InitialFitness: e.InitialFitness,
			FinalFitness:   e.FinalFitness,
			BestFitness:    e.BestFitness,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]int, error) {
	runID, err := c.lookupRunID("fitness history", req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Runs from an earlier process are only on disk when the store is in-memory.
		history, ok, err = stats.ReadWalkSeries(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]int(nil), history...), nil
}

func (c *Client) Walk(ctx context.Context, req WalkRequest) ([]model.WalkStep, error) {
	runID, err := c.lookupRunID("walk", req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	steps, ok, err := c.store.GetWalk(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		steps, ok, err = stats.ReadWalk(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("walk not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(steps) > req.Limit {
		steps = steps[:req.Limit]
	}
	return steps, nil
}

func (c *Client) Ranking(ctx context.Context, req RankingRequest) ([]model.RankedState, error) {
	runID, err := c.lookupRunID("ranking", req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	ranking, ok, err := c.store.GetRanking(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		ranking, ok, err = stats.ReadRanking(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("ranking not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(ranking) > req.Limit {
		ranking = ranking[:req.Limit]
	}
	return ranking, nil
}

func (c *Client) Diagnostics(_ context.Context, req DiagnosticsRequest) (RunDiagnostics, error) {
	runID, err := c.lookupRunID("diagnostics", req.RunID, req.Latest, 0)
	if err != nil {
		return RunDiagnostics{}, err
	}

	cfg, ok, err := stats.ReadRunConfig(c.benchmarksDir, runID)
	if err != nil {
		return RunDiagnostics{}, err
	}
	if !ok {
		return RunDiagnostics{}, fmt.Errorf("run config not found for run id: %s", runID)
	}
	diagnostics, ok, err := stats.ReadDiagnostics(c.benchmarksDir, runID)
	if err != nil {
		return RunDiagnostics{}, err
	}
	if !ok {
		return RunDiagnostics{}, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}

	return RunDiagnostics{
		RunID: runID,
		Request: RunRequest{
			N:          cfg.N,
			K:          cfg.K,
			Wiring:     cfg.Wiring,
			Seed:       cfg.Seed,
			WalkLength: cfg.WalkLength,
			Changes:    cfg.Changes,
			Samples:    cfg.Samples,
			Ranker:     cfg.Ranker,
			RankIndex:  cfg.RankIndex,
			Top:        cfg.Top,
			Alphabet:   append([]int(nil), cfg.Alphabet...),
		},
		Diagnostics: diagnostics,
	}, nil
}

// Landscape evaluates every state of a small landscape in lexicographic
// order. Nothing is persisted.
func (c *Client) Landscape(_ context.Context, req LandscapeRequest) ([]LandscapePoint, error) {
	if req.N <= 0 {
		return nil, fmt.Errorf("landscape n must be positive, got %d", req.N)
	}
	if len(req.Alphabet) == 0 {
		req.Alphabet = nk.BinaryAlphabet()
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	states, err := nk.EnumerateStates(req.N, req.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("landscape: %w", err)
	}
	network, _, err := buildLandscape(req.N, req.K, req.Wiring, req.Alphabet, rand.New(rand.NewSource(req.Seed)))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("evaluating landscape", "n", req.N, "states", len(states))

	points := make([]LandscapePoint, 0, len(states))
	for _, state := range states {
		scores, err := network.EvaluateState(state)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, score := range scores {
			total += score
		}
		points = append(points, LandscapePoint{State: state, Scores: scores, Fitness: total})
	}
	return points, nil
}

func (c *Client) lookupRunID(what, runID string, latest bool, limit int) (string, error) {
	if limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if runID == "" && !latest {
		return "", fmt.Errorf("%s requires run id or latest", what)
	}
	return c.resolveRunID(runID, latest)
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if !latest {
		return runID, nil
	}
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func withRunDefaults(req RunRequest) RunRequest {
	if req.N <= 0 {
		req.N = defaultN
	}
	if req.K == 0 && req.Wiring == "" {
		req.K = defaultK
	}
	if req.Wiring == "" {
		req.Wiring = nk.WiringRandom
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	if req.WalkLength <= 0 {
		req.WalkLength = defaultWalkLength
	}
	if req.Changes <= 0 {
		req.Changes = defaultChanges
	}
	if req.Samples <= 0 {
		req.Samples = defaultSamples
	}
	if req.Ranker == "" {
		req.Ranker = nk.RankerTotalistic
	}
	if req.Top <= 0 {
		req.Top = defaultTop
	}
	if len(req.Alphabet) == 0 {
		req.Alphabet = nk.BinaryAlphabet()
	}
	return req
}

func buildLandscape(n, k int, wiringName string, alphabet []int, rng *rand.Rand) (*nk.Network, *nk.Searcher, error) {
	wiring, err := nk.WiringFromName(wiringName, n, k, rng)
	if err != nil {
		return nil, nil, err
	}
	network, err := nk.NewNetwork(n, wiring, rng)
	if err != nil {
		return nil, nil, err
	}
	searcher := nk.NewSearcher(network, rng)
	if err := searcher.SetAlphabet(alphabet); err != nil {
		return nil, nil, err
	}
	return network, searcher, nil
}

func walkSteps(network *nk.Network, start nk.State, states []nk.State) ([]model.WalkStep, error) {
	steps := make([]model.WalkStep, 0, len(states))
	for i, state := range states {
		scores, err := network.EvaluateState(state)
		if err != nil {
			return nil, err
		}
		fitness := 0
		for _, score := range scores {
			fitness += score
		}
		distance, err := nk.Hamming(start, state)
		if err != nil {
			return nil, err
		}
		steps = append(steps, model.WalkStep{
			VersionedRecord: storage.CurrentVersion(),
			Step:            i,
			State:           []int(state.Clone()),
			Scores:          scores,
			Fitness:         fitness,
			Distance:        distance,
		})
	}
	return steps, nil
}

// topRanked returns the best n entries of an ascending ranking, best first.
func topRanked(ranked []nk.Ranked, n int) []model.RankedState {
	if n > len(ranked) {
		n = len(ranked)
	}
	top := make([]model.RankedState, 0, n)
	for i := 0; i < n; i++ {
		r := ranked[len(ranked)-1-i]
		top = append(top, model.RankedState{
			VersionedRecord: storage.CurrentVersion(),
			Rank:            i + 1,
			State:           []int(r.State.Clone()),
			Score:           r.Score,
		})
	}
	return top
}
