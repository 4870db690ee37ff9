package metrics

import (
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespacePrefix = "nk_"

var (
	// scoreLookups counts node score-table lookups by result (hit|miss).
	scoreLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nk_score_lookups_total",
		Help: "Node score-table lookups by result",
	}, []string{"result"})

	// evaluations counts full-network state evaluations.
	evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nk_state_evaluations_total",
		Help: "Full network state evaluations",
	})

	// walkSteps counts mutant-walk transitions.
	walkSteps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nk_walk_steps_total",
		Help: "Mutant walk steps taken",
	})

	// sortSizes tracks how many states each ranking call orders.
	sortSizes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nk_sort_states",
		Help:    "Number of states ordered per ranking call",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16384
	}, []string{"ranker"})
)

func ObserveScoreLookup(hit bool) {
	if hit {
		scoreLookups.WithLabelValues("hit").Inc()
		return
	}
	scoreLookups.WithLabelValues("miss").Inc()
}

func ObserveEvaluation() {
	evaluations.Inc()
}

func ObserveWalkStep() {
	walkSteps.Inc()
}

func ObserveSort(ranker string, n int) {
	sortSizes.WithLabelValues(ranker).Observe(float64(n))
}

// ScoreLookups exposes the lookup counter for a result label.
func ScoreLookups(result string) prometheus.Counter {
	return scoreLookups.WithLabelValues(result)
}

func Evaluations() prometheus.Counter {
	return evaluations
}

func WalkSteps() prometheus.Counter {
	return walkSteps
}

// WriteText dumps every nk_* metric family from the default registry in the
// Prometheus text exposition format.
func WriteText(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), namespacePrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
