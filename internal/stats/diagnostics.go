package stats

import (
	"fmt"
	"math"

	"nklab/internal/model"
	"nklab/internal/nk"
)

// SummarizeWalk reduces a walk to its fitness trajectory statistics. An empty
// walk yields zero diagnostics.
func SummarizeWalk(steps []model.WalkStep) model.WalkDiagnostics {
	if len(steps) == 0 {
		return model.WalkDiagnostics{}
	}

	fitness := make([]float64, len(steps))
	diag := model.WalkDiagnostics{
		Steps:          len(steps),
		InitialFitness: steps[0].Fitness,
		FinalFitness:   steps[len(steps)-1].Fitness,
		BestFitness:    steps[0].Fitness,
		BestStep:       steps[0].Step,
		MinFitness:     steps[0].Fitness,
	}
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		fitness[i] = float64(step.Fitness)
		if step.Fitness > diag.BestFitness {
			diag.BestFitness = step.Fitness
			diag.BestStep = step.Step
		}
		if step.Fitness < diag.MinFitness {
			diag.MinFitness = step.Fitness
		}
		if i > 0 && step.Fitness > steps[i-1].Fitness {
			diag.Improvements++
		}
		if step.Distance > diag.MaxDistance {
			diag.MaxDistance = step.Distance
		}
		seen[nk.State(step.State).String()] = struct{}{}
	}
	diag.DistinctStates = len(seen)
	diag.MeanFitness, _ = avg(fitness)
	diag.StdFitness, _ = std(fitness)
	return diag
}

// FitnessSeries extracts per-step total fitness from a walk.
func FitnessSeries(steps []model.WalkStep) []int {
	series := make([]int, len(steps))
	for i, step := range steps {
		series[i] = step.Fitness
	}
	return series
}

func avg(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// std returns the population standard deviation.
func std(values []float64) (float64, error) {
	mean, err := avg(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}
