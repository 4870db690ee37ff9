package nk

import "fmt"

const (
	RankerLexicase   = "lexicase"
	RankerTotalistic = "totalistic"
)

// Ranker orders a state collection ascending by some landscape criterion.
type Ranker interface {
	Name() string
	Rank(s *Searcher, states []State) ([]Ranked, error)
}

// LexicaseRanker ranks by a single node's score.
type LexicaseRanker struct {
	Index int
}

func (LexicaseRanker) Name() string {
	return RankerLexicase
}

func (r LexicaseRanker) Rank(s *Searcher, states []State) ([]Ranked, error) {
	return s.LexicaseRank(states, r.Index)
}

// TotalisticRanker ranks by the summed score across all nodes.
type TotalisticRanker struct{}

func (TotalisticRanker) Name() string {
	return RankerTotalistic
}

func (TotalisticRanker) Rank(s *Searcher, states []State) ([]Ranked, error) {
	return s.TotalisticRank(states)
}

// RankerFromName resolves a ranker; index is only used by lexicase.
func RankerFromName(name string, index int) (Ranker, error) {
	switch name {
	case "", RankerTotalistic:
		return TotalisticRanker{}, nil
	case RankerLexicase:
		return LexicaseRanker{Index: index}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrRankerNotFound, name)
	}
}
