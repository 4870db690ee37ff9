package nk

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"nklab/internal/metrics"
)

// Ranked pairs a state with the criterion score it was ordered by.
type Ranked struct {
	State State
	Score int
}

// Searcher explores a shared Network: it generates and mutates states,
// walks the landscape and ranks state collections. It never owns nodes.
//
// A Searcher is not safe for concurrent use: its generator and history are
// unguarded.
type Searcher struct {
	network  *Network
	rng      *rand.Rand
	alphabet []int
	history  []State
}

func NewSearcher(network *Network, rng *rand.Rand) *Searcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Searcher{
		network:  network,
		rng:      rng,
		alphabet: BinaryAlphabet(),
	}
}

func (s *Searcher) Network() *Network {
	return s.network
}

// Alphabet returns the value set used by RandomState and MutantWalk.
func (s *Searcher) Alphabet() []int {
	return append([]int(nil), s.alphabet...)
}

// SetAlphabet replaces the binary default with another value set of at
// least two distinct values.
func (s *Searcher) SetAlphabet(values []int) error {
	if err := validateAlphabet(values); err != nil {
		return err
	}
	s.alphabet = append([]int(nil), values...)
	return nil
}

// RandomState draws one value per node uniformly from the alphabet.
func (s *Searcher) RandomState() State {
	state := make(State, s.network.Size())
	for i := range state {
		state[i] = s.alphabet[s.rng.Intn(len(s.alphabet))]
	}
	return state
}

// PointMutant copies state and replaces the value at a uniformly random
// position with a different value from possible. A nil possible means the
// binary alphabet.
func (s *Searcher) PointMutant(state State, possible []int) (State, error) {
	if len(state) == 0 {
		return nil, fmt.Errorf("point mutant: %w: empty state", ErrInvalidState)
	}
	return s.PointMutantAt(state, s.rng.Intn(len(state)), possible)
}

// PointMutantAt is PointMutant with the target position fixed.
func (s *Searcher) PointMutantAt(state State, position int, possible []int) (State, error) {
	if len(state) == 0 {
		return nil, fmt.Errorf("point mutant: %w: empty state", ErrInvalidState)
	}
	if position < 0 || position >= len(state) {
		return nil, fmt.Errorf("point mutant: %w: %d not in [0, %d)", ErrPositionOutOfRange, position, len(state))
	}
	if possible == nil {
		possible = BinaryAlphabet()
	}

	current := state[position]
	choices := make([]int, 0, len(possible))
	for _, v := range possible {
		if v != current {
			choices = append(choices, v)
		}
	}
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: no alternative to %d at position %d in %v", ErrInvalidMutation, current, position, possible)
	}

	mutant := state.Clone()
	mutant[position] = choices[s.rng.Intn(len(choices))]
	return mutant, nil
}

// Neighbors returns one point mutant per position, in position order.
func (s *Searcher) Neighbors(state State, possible []int) ([]State, error) {
	if len(state) == 0 {
		return nil, fmt.Errorf("neighbors: %w: empty state", ErrInvalidState)
	}
	out := make([]State, len(state))
	for i := range state {
		mutant, err := s.PointMutantAt(state, i, possible)
		if err != nil {
			return nil, err
		}
		out[i] = mutant
	}
	return out, nil
}

// MutantWalk returns length states beginning with a copy of start. Every
// later state differs from its predecessor in exactly changes positions.
// With changes == 1 each step is a uniform pick from Neighbors. Visited
// states are appended to the history. Each call draws fresh randomness.
func (s *Searcher) MutantWalk(start State, changes, length int) ([]State, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWalkLength, length)
	}
	if len(start) == 0 {
		return nil, fmt.Errorf("mutant walk: %w: empty state", ErrInvalidState)
	}
	if changes < 1 || changes > len(start) {
		return nil, fmt.Errorf("%w: changes=%d must be in [1, %d]", ErrInvalidMutation, changes, len(start))
	}

	walk := make([]State, 0, length)
	current := start.Clone()
	walk = append(walk, current)
	s.record(current)
	for len(walk) < length {
		next, err := s.step(current, changes)
		if err != nil {
			return nil, err
		}
		walk = append(walk, next)
		s.record(next)
		metrics.ObserveWalkStep()
		current = next
	}
	return walk, nil
}

func (s *Searcher) step(state State, changes int) (State, error) {
	if changes == 1 {
		neighbors, err := s.Neighbors(state, s.alphabet)
		if err != nil {
			return nil, err
		}
		return neighbors[s.rng.Intn(len(neighbors))], nil
	}

	next := state
	for _, position := range s.rng.Perm(len(state))[:changes] {
		mutant, err := s.PointMutantAt(next, position, s.alphabet)
		if err != nil {
			return nil, err
		}
		next = mutant
	}
	return next, nil
}

// Hamming counts differing positions; unequal lengths are an error.
func (s *Searcher) Hamming(a, b State) (int, error) {
	return Hamming(a, b)
}

// History lists every state recorded by MutantWalk, oldest first.
func (s *Searcher) History() []State {
	out := make([]State, len(s.history))
	for i, state := range s.history {
		out[i] = state.Clone()
	}
	return out
}

func (s *Searcher) ResetHistory() {
	s.history = nil
}

func (s *Searcher) record(state State) {
	s.history = append(s.history, state.Clone())
}

// LexicaseSort orders states ascending by the score node index assigns
// them. Ties are broken randomly: the input is shuffled before a stable
// sort, so repeated calls order tied states differently.
func (s *Searcher) LexicaseSort(states []State, index int) ([]State, error) {
	ranked, err := s.LexicaseRank(states, index)
	if err != nil {
		return nil, err
	}
	return rankedStates(ranked), nil
}

// TotalisticSort orders states ascending by summed network score with the
// same randomized tie-break as LexicaseSort.
func (s *Searcher) TotalisticSort(states []State) ([]State, error) {
	ranked, err := s.TotalisticRank(states)
	if err != nil {
		return nil, err
	}
	return rankedStates(ranked), nil
}

// LexicaseRank is LexicaseSort keeping each state's criterion score. index
// selects a node and must be in [0, N); it does not wrap.
func (s *Searcher) LexicaseRank(states []State, index int) ([]Ranked, error) {
	node, err := s.network.Node(index)
	if err != nil {
		return nil, err
	}
	return s.rankBy(RankerLexicase, states, node.Score)
}

// TotalisticRank is TotalisticSort keeping each state's summed score.
func (s *Searcher) TotalisticRank(states []State) ([]Ranked, error) {
	return s.rankBy(RankerTotalistic, states, s.network.Fitness)
}

func (s *Searcher) rankBy(name string, states []State, score func(State) (int, error)) ([]Ranked, error) {
	ranked := make([]Ranked, len(states))
	for i, state := range states {
		value, err := score(state)
		if err != nil {
			return nil, fmt.Errorf("%s rank state %d: %w", name, i, err)
		}
		ranked[i] = Ranked{State: state.Clone(), Score: value}
	}

	s.rng.Shuffle(len(ranked), func(i, j int) {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})
	metrics.ObserveSort(name, len(ranked))
	return ranked, nil
}

func rankedStates(ranked []Ranked) []State {
	out := make([]State, len(ranked))
	for i, r := range ranked {
		out[i] = r.State
	}
	return out
}
