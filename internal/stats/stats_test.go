package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestMonetarySpace_RejectsNonPD(t *testing.T) {
	rho := mat.NewSymDense(2, []float64{1, 2, 2, 1}) // eigenvalues 3, -1
	_, err := NewMonetarySpace(rho)
	assert.Error(t, err)
}

func TestMonetarySpace_Delist(t *testing.T) {
	rho := mat.NewSymDense(3, []float64{
		2, 0, 0,
		0, 2, 0,
		0, 0, 2,
	})
	ms, err := NewMonetarySpace(rho)
	require.NoError(t, err)

	require.NoError(t, ms.Delist(1))
	assert.Equal(t, 2, ms.Dim())

	// Diagonal rho: the Schur complement leaves the survivors untouched.
	got := ms.Rho()
	assert.Equal(t, 2.0, got.At(0, 0))
	assert.Equal(t, 2.0, got.At(1, 1))
	assert.Equal(t, 0.0, got.At(0, 1))
}

func TestMonetarySpace_DelistCorrelated(t *testing.T) {
	rho := mat.NewSymDense(2, []float64{
		1, 0.5,
		0.5, 1,
	})
	ms, err := NewMonetarySpace(rho)
	require.NoError(t, err)

	require.NoError(t, ms.Delist(1))
	require.Equal(t, 1, ms.Dim())
	// 1 - 0.5*0.5/1
	assert.InDelta(t, 0.75, ms.Rho().At(0, 0), 1e-12)
}

func TestMonetarySpace_DelistBounds(t *testing.T) {
	ms, err := NewMonetarySpace(mat.NewSymDense(1, []float64{1}))
	require.NoError(t, err)

	assert.Error(t, ms.Delist(5))
	require.NoError(t, ms.Delist(0))
	assert.Equal(t, 0, ms.Dim())
}

func TestJumpDiffusion_Sample(t *testing.T) {
	j := JumpDiffusion{Mu: 0, Sigma: 0.1, Lambda: 0.2, JumpMu: 0, JumpDelta: 0.05, Dt: 1}
	path := j.Sample(0, 5, rand.NewSource(7))
	require.Len(t, path, 6)
	assert.Equal(t, 0.0, path[0])
}

func TestJumpDiffusion_PureDrift(t *testing.T) {
	j := JumpDiffusion{Mu: 1, Sigma: 0, Lambda: 0, Dt: 0.5}
	path := j.Sample(2, 4, rand.NewSource(1))
	assert.InDelta(t, 4.0, path[4], 1e-12)
}

func TestReplicatorStep(t *testing.T) {
	w := ReplicatorStep(
		[]float64{0.5, 0.5},
		[]float64{0.01, -0.02},
		[]float64{0.1, 0.1},
		1.0,
	)
	// Winner gains, loser shrinks, weights stay on the simplex.
	assert.Greater(t, w[0], 0.5)
	assert.Less(t, w[1], 0.5)
	assert.InDelta(t, 1.0, w[0]+w[1], 1e-12)
	assert.InDelta(t, 0.53, w[0], 0.005)
}

func TestReplicatorStep_ClipsOutliers(t *testing.T) {
	// A 10σ print must be treated as 5σ.
	a := ReplicatorStep([]float64{0.5, 0.5}, []float64{1.0, 0}, []float64{0.1, 0.1}, 1.0)
	b := ReplicatorStep([]float64{0.5, 0.5}, []float64{0.5, 0}, []float64{0.1, 0.1}, 1.0)
	assert.InDelta(t, b[0], a[0], 1e-12)
}

func TestReplicatorStep_DegenerateKeepsWeights(t *testing.T) {
	w := ReplicatorStep([]float64{1, 0}, []float64{-10, 0}, []float64{0.1, 0.1}, 10)
	assert.Equal(t, []float64{1, 0}, w)
}

func TestEVTThreshold_SmallTailFallsBack(t *testing.T) {
	e := NewEVTThreshold(0.9)
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := e.Fit(data)
	// Too few excesses for a GPD fit: the empirical quantile comes back.
	assert.GreaterOrEqual(t, got, 9.0)
}

func TestEVTThreshold_ExtendsBeyondEmpirical(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	data := make([]float64, 5000)
	for i := range data {
		// Exponential tail: a textbook POT subject.
		data[i] = rng.ExpFloat64()
	}

	e := NewEVTThreshold(0.95)
	got := e.Fit(data)
	empirical := 3.0 // ~= -ln(0.05)
	assert.Greater(t, got, empirical*0.8)
	assert.Less(t, got, 20.0)
}

func TestEVTThreshold_DefaultQuantile(t *testing.T) {
	assert.Equal(t, 0.999, NewEVTThreshold(0).Quantile)
	assert.Equal(t, 0.999, NewEVTThreshold(1.5).Quantile)
}

func TestBenfordError_Conforming(t *testing.T) {
	// A geometric series follows Benford's law closely.
	data := make([]float64, 0, 2000)
	x := 1.0
	for i := 0; i < 2000; i++ {
		x *= 1.01
		data = append(data, x)
	}
	assert.Less(t, BenfordError(data), 1e-3)
}

func TestBenfordError_Uniform(t *testing.T) {
	// Constant leading digit is maximally non-Benford.
	data := []float64{1, 1.2, 1.5, 1.9, 10, 12, 150}
	assert.Greater(t, BenfordError(data), 0.1)
}

func TestBenfordError_Empty(t *testing.T) {
	assert.Zero(t, BenfordError(nil))
	assert.Zero(t, BenfordError([]float64{0, 0}))
}

func TestLeadingDigit(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{123.4, 1}, {0.045, 4}, {-950, 9}, {1, 1}, {0, 0}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leadingDigit(tt.in), "leadingDigit(%v)", tt.in)
	}
}

func TestRiskFreeRate(t *testing.T) {
	// The least liquid constituent is weighted out entirely.
	r, err := RiskFreeRate([]float64{1, 1}, []float64{0.1, 0.2}, []float64{0.02, 0.03})
	require.NoError(t, err)
	assert.InDelta(t, 0.02, r, 1e-12)
}

func TestRiskFreeRate_Errors(t *testing.T) {
	_, err := RiskFreeRate(nil, nil, nil)
	assert.Error(t, err)

	_, err = RiskFreeRate([]float64{1}, []float64{0}, []float64{0.02})
	assert.Error(t, err, "zero max illiquidity is degenerate")

	_, err = RiskFreeRate([]float64{1, 2}, []float64{0.1}, []float64{0.02})
	assert.Error(t, err)
}
