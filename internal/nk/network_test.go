package nk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetwork(t *testing.T, size int, wiring Wiring) *Network {
	t.Helper()
	network, err := NewNetwork(size, wiring, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	return network
}

func TestNetworkHasNodesWithPositionalIDs(t *testing.T) {
	network := newTestNetwork(t, 10, nil)
	require.Equal(t, 10, network.Size())
	for i, node := range network.Nodes() {
		assert.Equal(t, i, node.ID())
		assert.Equal(t, []int{i}, node.Inputs())
	}
}

func TestNewNetworkRejectsNonPositiveSize(t *testing.T) {
	_, err := NewNetwork(0, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidNetworkSize)
	_, err = NewNetwork(-3, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidNetworkSize)
}

func TestNetworkSetWiring(t *testing.T) {
	network := newTestNetwork(t, 3, nil)
	require.NoError(t, network.SetWiring(Wiring{{2, 11}, {}, {9}}))
	assert.Equal(t, [][]int{{0, 2, 11}, {1}, {2, 9}}, network.InputGraph())
}

func TestNetworkSetWiringLeavesTrailingNodesUnchanged(t *testing.T) {
	network := newTestNetwork(t, 3, Wiring{{1}, {2}, {0}})
	require.NoError(t, network.SetWiring(Wiring{{2}}))
	assert.Equal(t, [][]int{{0, 2}, {1, 2}, {2, 0}}, network.InputGraph())
}

func TestNetworkSetWiringRejectsTooManyEntries(t *testing.T) {
	network := newTestNetwork(t, 2, nil)
	err := network.SetWiring(Wiring{{1}, {0}, {1}})
	assert.ErrorIs(t, err, ErrNodeIndexOutOfRange)
}

func TestNetworkInitialWiringStar(t *testing.T) {
	wiring := make(Wiring, 12)
	for i := range wiring {
		wiring[i] = []int{9}
	}
	network := newTestNetwork(t, 12, wiring)
	assert.Equal(t, [][]int{
		{0, 9}, {1, 9}, {2, 9}, {3, 9}, {4, 9}, {5, 9},
		{6, 9}, {7, 9}, {8, 9}, {9}, {10, 9}, {11, 9},
	}, network.InputGraph())
}

func TestNetworkCompleteNetwork(t *testing.T) {
	network := newTestNetwork(t, 5, nil)
	assert.Equal(t, Wiring{
		{1, 2, 3, 4},
		{0, 2, 3, 4},
		{0, 1, 3, 4},
		{0, 1, 2, 4},
		{0, 1, 2, 3},
	}, network.CompleteNetwork())
}

func TestNetworkNodeSelectorDoesNotWrap(t *testing.T) {
	network := newTestNetwork(t, 4, nil)
	node, err := network.Node(3)
	require.NoError(t, err)
	assert.Equal(t, 3, node.ID())

	for _, index := range []int{-1, 4, 33} {
		_, err := network.Node(index)
		assert.ErrorIs(t, err, ErrNodeIndexOutOfRange, "index %d", index)
	}
}

func TestNetworkEvaluatesEveryBinaryState(t *testing.T) {
	network := newTestNetwork(t, 3, nil)
	require.NoError(t, network.SetWiring(Wiring{{1}, {2}, {3}}))
	assert.Equal(t, [][]int{{0, 1}, {1, 2}, {2, 3}}, network.InputGraph())

	states, err := EnumerateStates(3, BinaryAlphabet())
	require.NoError(t, err)
	require.Len(t, states, 8)

	for _, state := range states {
		scores, err := network.EvaluateState(state)
		require.NoError(t, err)
		assert.Len(t, scores, 3)
	}
}

func TestNetworkEvaluateLengthIndependentOfStateLength(t *testing.T) {
	network := newTestNetwork(t, 5, CompleteWiring(5))
	for _, state := range []State{{1}, {0, 1}, {1, 0, 1, 1, 0}, {0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 1}} {
		scores, err := network.EvaluateState(state)
		require.NoError(t, err)
		assert.Len(t, scores, 5)
	}
}

func TestNetworkEvaluateIsStable(t *testing.T) {
	network := newTestNetwork(t, 6, CompleteWiring(6))
	state := State{1, 0, 1, 1, 0, 0}
	first, err := network.EvaluateState(state)
	require.NoError(t, err)
	second, err := network.EvaluateState(state.Clone())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNetworkModuloWiringResolvesSubstates(t *testing.T) {
	network := newTestNetwork(t, 3, Wiring{{-1, 1}, {0, 2}, {1, 3}})

	tests := []struct {
		state State
		want  []State
	}{
		{state: State{1, 0, 0}, want: []State{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
		{state: State{0, 1, 1}, want: []State{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}}},
	}
	for _, tc := range tests {
		for i, node := range network.Nodes() {
			got, err := node.Substate(tc.state)
			require.NoError(t, err)
			assert.Equal(t, tc.want[i], got, "node %d state %v", i, tc.state)
		}
	}
}

func TestNetworkModuloWiringIsPeriodic(t *testing.T) {
	network := newTestNetwork(t, 3, Wiring{{-1, 1}, {0, 2}, {1, 3}})

	for _, state := range []State{{1, 0, 0}, {0, 1, 1}} {
		doubled := append(state.Clone(), state...)
		short, err := network.EvaluateState(state)
		require.NoError(t, err)
		long, err := network.EvaluateState(doubled)
		require.NoError(t, err)
		assert.Equal(t, short, long, "state %v and its repetition %v", state, doubled)
	}
}

func TestNetworkModuloWiringWithSharedScoresIsSymmetric(t *testing.T) {
	network := newTestNetwork(t, 3, Wiring{{-1, 1}, {0, 2}, {1, 3}})
	for _, node := range network.Nodes() {
		node.SetScoreSource(func() int { return 512 })
	}

	a, err := network.EvaluateState(State{1, 0, 0})
	require.NoError(t, err)
	b, err := network.EvaluateState(State{0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNetworkEvaluateRejectsEmptyState(t *testing.T) {
	network := newTestNetwork(t, 3, nil)
	_, err := network.EvaluateState(State{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNetworkFitnessSumsScores(t *testing.T) {
	network := newTestNetwork(t, 4, CompleteWiring(4))
	state := State{0, 1, 1, 0}
	scores, err := network.EvaluateState(state)
	require.NoError(t, err)
	total, err := network.Fitness(state)
	require.NoError(t, err)
	assert.Equal(t, scores[0]+scores[1]+scores[2]+scores[3], total)
}

func TestNetworkSeedReproducesLandscape(t *testing.T) {
	a, err := NewNetwork(8, CompleteWiring(8), rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := NewNetwork(8, CompleteWiring(8), rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	state := State{1, 1, 0, 1, 0, 0, 1, 0}
	sa, err := a.EvaluateState(state)
	require.NoError(t, err)
	sb, err := b.EvaluateState(state)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}
