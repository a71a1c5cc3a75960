package allocate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_TieBreakLowestSigma(t *testing.T) {
	scores := map[string]float64{"A": 20, "B": 20, "C": 5}
	sigmas := map[string]float64{"A": 0.1, "B": 0.05, "C": 0.2}

	got, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	assert.Equal(t, "B", got)
}

func TestSelect_HighestScoreWins(t *testing.T) {
	scores := map[string]float64{"A": 10, "B": 20, "C": 5}
	sigmas := map[string]float64{"A": 0.1, "B": 0.05, "C": 0.15}

	got, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	assert.Equal(t, "B", got)
}

func TestSelect_ExcludesLastWinner(t *testing.T) {
	scores := map[string]float64{"A": 10, "B": 20, "C": 5}
	sigmas := map[string]float64{"A": 0.1, "B": 0.05, "C": 0.15}

	got, ok := Select(scores, sigmas, "B")
	assert.True(t, ok)
	assert.Equal(t, "A", got)

	// Never returns the previous winner, whatever its score.
	for _, last := range []string{"A", "B", "C"} {
		if got, ok := Select(scores, sigmas, last); ok {
			assert.NotEqual(t, last, got)
		}
	}
}

func TestSelect_RiskGateIsMedian(t *testing.T) {
	scores := map[string]float64{"A": 50, "B": 40, "C": 30}
	// Median sigma = 0.2: A (0.3) is gated out despite the top score.
	sigmas := map[string]float64{"A": 0.3, "B": 0.2, "C": 0.1}

	got, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	assert.Equal(t, "B", got)
}

func TestSelect_MedianKeepsExactly(t *testing.T) {
	// Even count: median averages the middle pair.
	scores := map[string]float64{"A": 1, "B": 2, "C": 3, "D": 4}
	sigmas := map[string]float64{"A": 0.1, "B": 0.2, "C": 0.3, "D": 0.4}
	// median = 0.25; only A and B are gated in, B has the higher score.
	got, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	assert.Equal(t, "B", got)
}

func TestSelect_NaNSigmaExcluded(t *testing.T) {
	scores := map[string]float64{"A": 100, "B": 10}
	sigmas := map[string]float64{"A": math.NaN(), "B": 0.2}

	got, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	assert.Equal(t, "B", got, "NaN sigma must fail the gate, not pass it")
}

func TestSelect_Empty(t *testing.T) {
	_, ok := Select(map[string]float64{}, map[string]float64{}, "")
	assert.False(t, ok)

	// All sigmas NaN: no finite median, no selection.
	_, ok = Select(
		map[string]float64{"A": 10},
		map[string]float64{"A": math.NaN()},
		"",
	)
	assert.False(t, ok)

	// Sole candidate is the last winner.
	_, ok = Select(
		map[string]float64{"A": 10},
		map[string]float64{"A": 0.1},
		"A",
	)
	assert.False(t, ok)
}

func TestSelect_NeedsBothMaps(t *testing.T) {
	scores := map[string]float64{"A": 10, "B": 20}
	sigmas := map[string]float64{"A": 0.1} // B has no sigma

	got, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	assert.Equal(t, "A", got)
}

func TestSelect_Deterministic(t *testing.T) {
	// Identical score and sigma: result must still be stable across calls.
	scores := map[string]float64{"A": 20, "B": 20}
	sigmas := map[string]float64{"A": 0.1, "B": 0.1}

	first, ok := Select(scores, sigmas, "")
	assert.True(t, ok)
	for i := 0; i < 20; i++ {
		got, ok := Select(scores, sigmas, "")
		assert.True(t, ok)
		assert.Equal(t, first, got)
	}
}
