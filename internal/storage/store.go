package storage

import (
	"context"

	"nklab/internal/model"
)

// Store defines persistence operations for landscape exploration runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []int) error
	GetFitnessHistory(ctx context.Context, runID string) ([]int, bool, error)
	SaveWalk(ctx context.Context, runID string, steps []model.WalkStep) error
	GetWalk(ctx context.Context, runID string) ([]model.WalkStep, bool, error)
	SaveRanking(ctx context.Context, runID string, ranking []model.RankedState) error
	GetRanking(ctx context.Context, runID string) ([]model.RankedState, bool, error)
}
