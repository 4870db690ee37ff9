package nk

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"nklab/internal/metrics"
)

// MaxScore bounds node fitness contributions: scores are uniform integers
// in [0, MaxScore).
const MaxScore = 1024

// Node is one epistatic site of an NK landscape. Its score table is filled
// lazily: the first lookup of a substate draws a fresh score and every later
// lookup of the same substate returns it unchanged.
//
// A Node is safe for concurrent use; the mutex makes get-or-generate atomic
// so one substate can never be assigned two different scores.
type Node struct {
	id int

	mu     sync.Mutex
	inputs []int
	scores map[string]int
	order  []State
	rng    *rand.Rand
	source func() int
}

// NewNode builds a node reading its own position followed by inputs, with
// duplicates removed. A nil rng seeds a private generator from the clock.
func NewNode(id int, inputs []int, rng *rand.Rand) *Node {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	}
	return &Node{
		id:     id,
		inputs: withOwnID(id, inputs),
		scores: make(map[string]int),
		rng:    rng,
	}
}

func (n *Node) ID() int {
	return n.id
}

// Inputs returns a copy of the node's input indices; the first is always the
// node's own id.
func (n *Node) Inputs() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.inputs...)
}

// SetInputs rewires the node to read its own id followed by others. The
// score table is kept: previously cached substates stay valid keys.
func (n *Node) SetInputs(others []int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs = withOwnID(n.id, others)
}

// SetScoreSource replaces the random score draw. A nil fn restores the
// uniform [0, MaxScore) generator.
func (n *Node) SetScoreSource(fn func() int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.source = fn
}

// RandomScore draws a fresh score without recording it.
func (n *Node) RandomScore() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.randomScoreLocked()
}

// Substate reads the node's inputs out of state. Input indices wrap modulo
// len(state), so negative and oversized indices are always valid.
func (n *Node) Substate(state State) (State, error) {
	if len(state) == 0 {
		return nil, fmt.Errorf("node %d: %w: empty state", n.id, ErrInvalidState)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.substateLocked(state), nil
}

// Score returns the node's fitness contribution for state, generating and
// caching it on first sight of the substate.
func (n *Node) Score(state State) (int, error) {
	if len(state) == 0 {
		return 0, fmt.Errorf("node %d: %w: empty state", n.id, ErrInvalidState)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	substate := n.substateLocked(state)
	key := substate.key()
	if score, ok := n.scores[key]; ok {
		metrics.ObserveScoreLookup(true)
		return score, nil
	}

	score := n.randomScoreLocked()
	n.storeLocked(key, substate, score)
	metrics.ObserveScoreLookup(false)
	return score, nil
}

// Lookup returns the cached score for a substate without generating one.
func (n *Node) Lookup(substate State) (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	score, ok := n.scores[substate.key()]
	return score, ok
}

// SetScore assigns a score to a substate, overwriting any cached value.
func (n *Node) SetScore(substate State, score int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := substate.key()
	if _, ok := n.scores[key]; ok {
		n.scores[key] = score
		return
	}
	n.storeLocked(key, substate.Clone(), score)
}

// Substates lists cached substates in the order they were first seen.
func (n *Node) Substates() []State {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]State, 0, len(n.order))
	for _, substate := range n.order {
		out = append(out, substate.Clone())
	}
	return out
}

func (n *Node) CacheSize() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.scores)
}

// ClearScores drops every cached score; later lookups draw fresh values.
func (n *Node) ClearScores() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scores = make(map[string]int)
	n.order = nil
}

func (n *Node) substateLocked(state State) State {
	substate := make(State, len(n.inputs))
	for i, input := range n.inputs {
		substate[i] = state[wrapIndex(input, len(state))]
	}
	return substate
}

func (n *Node) storeLocked(key string, substate State, score int) {
	n.scores[key] = score
	n.order = append(n.order, substate)
}

func (n *Node) randomScoreLocked() int {
	if n.source != nil {
		return n.source()
	}
	return n.rng.Intn(MaxScore)
}

// withOwnID prepends id to others and drops later duplicates, keeping
// first-occurrence order.
func withOwnID(id int, others []int) []int {
	out := make([]int, 0, len(others)+1)
	seen := make(map[int]struct{}, len(others)+1)
	out = append(out, id)
	seen[id] = struct{}{}
	for _, input := range others {
		if _, dup := seen[input]; dup {
			continue
		}
		seen[input] = struct{}{}
		out = append(out, input)
	}
	return out
}
