package storage

import (
	"context"
	"errors"
	"sync"

	"nklab/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	history     map[string][]int
	walks       map[string][]model.WalkStep
	rankings    map[string][]model.RankedState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]int)
	s.walks = make(map[string][]model.WalkStep)
	s.rankings = make(map[string][]model.RankedState)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run.Alphabet = append([]int(nil), run.Alphabet...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Alphabet = append([]int(nil), run.Alphabet...)
	return run, true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.history[runID] = append([]int(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]int(nil), history...), true, nil
}

func (s *MemoryStore) SaveWalk(_ context.Context, runID string, steps []model.WalkStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.walks[runID] = copyWalk(steps)
	return nil
}

func (s *MemoryStore) GetWalk(_ context.Context, runID string) ([]model.WalkStep, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps, ok := s.walks[runID]
	if !ok {
		return nil, false, nil
	}
	return copyWalk(steps), true, nil
}

func (s *MemoryStore) SaveRanking(_ context.Context, runID string, ranking []model.RankedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.rankings[runID] = copyRanking(ranking)
	return nil
}

func (s *MemoryStore) GetRanking(_ context.Context, runID string) ([]model.RankedState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranking, ok := s.rankings[runID]
	if !ok {
		return nil, false, nil
	}
	return copyRanking(ranking), true, nil
}

func copyWalk(steps []model.WalkStep) []model.WalkStep {
	copied := make([]model.WalkStep, len(steps))
	for i, step := range steps {
		step.State = append([]int(nil), step.State...)
		step.Scores = append([]int(nil), step.Scores...)
		copied[i] = step
	}
	return copied
}

func copyRanking(ranking []model.RankedState) []model.RankedState {
	copied := make([]model.RankedState, len(ranking))
	for i, ranked := range ranking {
		ranked.State = append([]int(nil), ranked.State...)
		copied[i] = ranked
	}
	return copied
}
