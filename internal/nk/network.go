package nk

import (
	"fmt"
	"math/rand"
	"time"

	"nklab/internal/metrics"
)

// Wiring lists, per node, the extra input indices that feed it. Indices
// may be negative or exceed the network size; they are resolved modulo the
// evaluated state's length.
type Wiring [][]int

// Network is an ordered set of nodes whose ids equal their positions.
type Network struct {
	nodes []*Node
}

// NewNetwork creates size isolated nodes and applies wiring when non-empty.
// Each node receives a private generator derived from rng, so a seeded rng
// makes every score table reproducible.
func NewNetwork(size int, wiring Wiring, rng *rand.Rand) (*Network, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNetworkSize, size)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	nodes := make([]*Node, size)
	for i := range nodes {
		nodes[i] = NewNode(i, nil, rand.New(rand.NewSource(rng.Int63())))
	}
	network := &Network{nodes: nodes}
	if len(wiring) > 0 {
		if err := network.SetWiring(wiring); err != nil {
			return nil, err
		}
	}
	return network, nil
}

func (n *Network) Size() int {
	return len(n.nodes)
}

// Nodes returns the node list in id order. The slice is a copy; the nodes
// are shared.
func (n *Network) Nodes() []*Node {
	return append([]*Node(nil), n.nodes...)
}

// Node selects a node by position. Unlike input indices, node selectors do
// not wrap.
func (n *Network) Node(index int) (*Node, error) {
	if index < 0 || index >= len(n.nodes) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrNodeIndexOutOfRange, index, len(n.nodes))
	}
	return n.nodes[index], nil
}

// SetWiring rewires node i from wiring[i]. Nodes past len(wiring) keep
// their current inputs.
func (n *Network) SetWiring(wiring Wiring) error {
	if len(wiring) > len(n.nodes) {
		return fmt.Errorf("%w: wiring has %d entries for %d nodes", ErrNodeIndexOutOfRange, len(wiring), len(n.nodes))
	}
	for i, inputs := range wiring {
		n.nodes[i].SetInputs(inputs)
	}
	return nil
}

// InputGraph reports every node's current inputs, own id first.
func (n *Network) InputGraph() [][]int {
	graph := make([][]int, len(n.nodes))
	for i, node := range n.nodes {
		graph[i] = node.Inputs()
	}
	return graph
}

// EvaluateState scores state at every node. The result always has one
// entry per node whatever len(state) is.
func (n *Network) EvaluateState(state State) ([]int, error) {
	if len(state) == 0 {
		return nil, fmt.Errorf("evaluate: %w: empty state", ErrInvalidState)
	}
	scores := make([]int, len(n.nodes))
	for i, node := range n.nodes {
		score, err := node.Score(state)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	metrics.ObserveEvaluation()
	return scores, nil
}

// Fitness is the summed score vector of state.
func (n *Network) Fitness(state State) (int, error) {
	scores, err := n.EvaluateState(state)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, score := range scores {
		total += score
	}
	return total, nil
}

// CompleteNetwork returns a wiring in which every node reads every other
// node (K = N-1).
func (n *Network) CompleteNetwork() Wiring {
	return CompleteWiring(len(n.nodes))
}
