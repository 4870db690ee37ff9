package nk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankerFromName(t *testing.T) {
	ranker, err := RankerFromName("", 0)
	require.NoError(t, err)
	assert.Equal(t, RankerTotalistic, ranker.Name())

	ranker, err = RankerFromName(RankerLexicase, 3)
	require.NoError(t, err)
	assert.Equal(t, LexicaseRanker{Index: 3}, ranker)

	_, err = RankerFromName("pareto", 0)
	assert.ErrorIs(t, err, ErrRankerNotFound)
}

func TestRankersMatchSearcherSorts(t *testing.T) {
	searcher := newTestSearcher(t, 8, CompleteWiring(8))
	samples := make([]State, 40)
	for i := range samples {
		samples[i] = searcher.RandomState()
	}

	lexicase, err := LexicaseRanker{Index: 5}.Rank(searcher, samples)
	require.NoError(t, err)
	node, err := searcher.Network().Node(5)
	require.NoError(t, err)
	for i, r := range lexicase {
		score, err := node.Score(r.State)
		require.NoError(t, err)
		assert.Equal(t, score, r.Score)
		if i > 0 {
			assert.LessOrEqual(t, lexicase[i-1].Score, r.Score)
		}
	}

	totalistic, err := TotalisticRanker{}.Rank(searcher, samples)
	require.NoError(t, err)
	for i := 1; i < len(totalistic); i++ {
		assert.LessOrEqual(t, totalistic[i-1].Score, totalistic[i].Score)
	}

	_, err = LexicaseRanker{Index: 8}.Rank(searcher, samples)
	assert.ErrorIs(t, err, ErrNodeIndexOutOfRange)
}
