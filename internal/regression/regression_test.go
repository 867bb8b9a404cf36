package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLinear(t *testing.T) {
	pts := make([]Point, 0, 20)
	for i := 0; i < 20; i++ {
		x := float64(i) * 0.5
		pts = append(pts, Point{X: x, Y: 2*x + 1})
	}

	res, ok := FitLinear(pts)
	require.True(t, ok)
	assert.InDelta(t, 2.0, res.Slope(), 1e-6)
	assert.InDelta(t, 1.0, res.Intercept(), 1e-6)
	assert.InDelta(t, 1.0, res.RSquared, 1e-6)
	assert.Equal(t, 20, res.N)
	assert.Equal(t, "y = 2.000x + 1.000", res.Equation())
	assert.Equal(t, "R² = 1.0000", res.RSquaredLabel())
}

func TestFitLinearDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
	}{
		{name: "empty", pts: nil},
		{name: "single point", pts: []Point{{1, 2}}},
		{name: "zero x variance", pts: []Point{{0.1, 1}, {0.1, 2}, {0.1, 3}}},
		{name: "only non-finite", pts: []Point{{math.NaN(), 1}, {2, math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := FitLinear(tt.pts)
			assert.False(t, ok)
		})
	}
}

func TestFitLinearSkipsNonFinite(t *testing.T) {
	pts := []Point{{0, 1}, {1, 3}, {math.NaN(), 100}, {2, 5}, {3, math.Inf(-1)}}

	res, ok := FitLinear(pts)
	require.True(t, ok)
	assert.Equal(t, 3, res.N)
	assert.InDelta(t, 2.0, res.Slope(), 1e-9)
	assert.InDelta(t, 1.0, res.Intercept(), 1e-9)
}

func TestFitLinearNoisyRSquaredInRange(t *testing.T) {
	pts := []Point{{0, 5}, {1, -3}, {2, 8}, {3, -1}, {4, 2}}

	res, ok := FitLinear(pts)
	require.True(t, ok)
	assert.GreaterOrEqual(t, res.RSquared, 0.0)
	assert.LessOrEqual(t, res.RSquared, 1.0)
	assert.Less(t, res.RSquared, 0.5)
}

func TestFitQuadratic(t *testing.T) {
	pts := make([]Point, 0, 30)
	for i := -15; i < 15; i++ {
		x := float64(i) + 100
		pts = append(pts, Point{X: x, Y: 3 - 2*x + 0.5*x*x})
	}

	res, ok := FitQuadratic(pts)
	require.True(t, ok)
	require.Len(t, res.Coefficients, 3)
	assert.InDelta(t, 3.0, res.Coefficients[0], 1e-4)
	assert.InDelta(t, -2.0, res.Coefficients[1], 1e-6)
	assert.InDelta(t, 0.5, res.Coefficients[2], 1e-8)
	assert.InDelta(t, 1.0, res.RSquared, 1e-9)
	assert.InDelta(t, 3-2*4+0.5*16, res.Predict(4), 1e-4)
	assert.Contains(t, res.Equation(), "x²")
}

func TestFitQuadraticNeedsThreeDistinctX(t *testing.T) {
	_, ok := FitQuadratic([]Point{{1, 1}, {1, 2}, {2, 3}, {2, 4}})
	assert.False(t, ok)

	_, ok = FitQuadratic([]Point{{1, 1}, {2, 2}})
	assert.False(t, ok)
}

func TestFitDispatch(t *testing.T) {
	pts := []Point{{0, 0}, {1, 1}, {2, 4}, {3, 9}}

	lin, ok := Fit(Linear, pts)
	require.True(t, ok)
	assert.Equal(t, Linear, lin.Kind)

	poly, ok := Fit(Polynomial, pts)
	require.True(t, ok)
	assert.Equal(t, Polynomial, poly.Kind)
	assert.InDelta(t, 1.0, poly.RSquared, 1e-9)

	fallback, ok := Fit("", pts)
	require.True(t, ok)
	assert.Equal(t, Linear, fallback.Kind)
}

func TestConstantResponse(t *testing.T) {
	res, ok := FitLinear([]Point{{0, 4}, {1, 4}, {2, 4}})
	require.True(t, ok)
	assert.InDelta(t, 0.0, res.Slope(), 1e-12)
	assert.Equal(t, 1.0, res.RSquared)
	assert.Equal(t, "y = 0.000x + 4.000", res.Equation())
}

func TestNegativeInterceptEquation(t *testing.T) {
	res, ok := FitLinear([]Point{{0, -1}, {1, 2}})
	require.True(t, ok)
	assert.Equal(t, "y = 3.000x - 1.000", res.Equation())
}
