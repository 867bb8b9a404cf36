// Package regression implements closed-form least-squares fits used by
// trend overlays: ordinary linear regression and a degree-2 polynomial fit,
// both reporting the coefficient of determination.
package regression

import (
	"fmt"
	"math"
)

// Kind selects the fitted model.
type Kind string

const (
	Linear     Kind = "linear"
	Polynomial Kind = "polynomial"
)

// Valid reports whether k is a known model (empty means linear).
func (k Kind) Valid() bool {
	return k == "" || k == Linear || k == Polynomial
}

// Point is one observation.
type Point struct {
	X, Y float64
}

// Result is a fitted model. Coefficients are ordered by power of x, so a
// linear fit has [intercept, slope] and a quadratic fit has [a0, a1, a2].
type Result struct {
	Kind         Kind
	Coefficients []float64
	RSquared     float64
	N            int
}

// Slope of a linear fit.
func (r Result) Slope() float64 { return r.coef(1) }

// Intercept of either fit.
func (r Result) Intercept() float64 { return r.coef(0) }

func (r Result) coef(i int) float64 {
	if i < len(r.Coefficients) {
		return r.Coefficients[i]
	}
	return 0
}

// Predict evaluates the fitted polynomial at x.
func (r Result) Predict(x float64) float64 {
	y := 0.0
	for i := len(r.Coefficients) - 1; i >= 0; i-- {
		y = y*x + r.Coefficients[i]
	}
	return y
}

// Equation renders the model with three decimals per coefficient.
func (r Result) Equation() string {
	switch r.Kind {
	case Polynomial:
		return fmt.Sprintf("y = %.3fx² %s %s", r.coef(2), signed(r.coef(1), "x"), signed(r.coef(0), ""))
	default:
		return fmt.Sprintf("y = %.3fx %s", r.coef(1), signed(r.coef(0), ""))
	}
}

// RSquaredLabel renders R² with four decimals.
func (r Result) RSquaredLabel() string {
	return fmt.Sprintf("R² = %.4f", r.RSquared)
}

func signed(v float64, suffix string) string {
	if v < 0 {
		return fmt.Sprintf("- %.3f%s", -v, suffix)
	}
	return fmt.Sprintf("+ %.3f%s", v, suffix)
}

// Fit dispatches on kind; unknown kinds fit a line.
func Fit(kind Kind, pts []Point) (Result, bool) {
	if kind == Polynomial {
		return FitQuadratic(pts)
	}
	return FitLinear(pts)
}

// FitLinear computes an ordinary least-squares line. It reports false when
// fewer than two finite points remain or x has no variance.
func FitLinear(pts []Point) (Result, bool) {
	valid := finite(pts)
	n := len(valid)
	if n < 2 {
		return Result{}, false
	}
	mx, my := means(valid)
	var sxx, sxy, sq float64
	for _, p := range valid {
		dx := p.X - mx
		sxx += dx * dx
		sxy += dx * (p.Y - my)
		sq += p.X * p.X
	}
	// Variance below rounding noise of Σx² means every x is the same.
	if sxx <= 1e-12*sq || sxx == 0 {
		return Result{}, false
	}
	slope := sxy / sxx
	res := Result{
		Kind:         Linear,
		Coefficients: []float64{my - slope*mx, slope},
		N:            n,
	}
	res.RSquared = rSquared(valid, my, res.Predict)
	return res, true
}

// FitQuadratic solves the normal equations for y = a0 + a1·x + a2·x².
// x is centred on its mean before solving to keep the system well
// conditioned, and the coefficients are shifted back afterwards.
func FitQuadratic(pts []Point) (Result, bool) {
	valid := finite(pts)
	n := len(valid)
	if n < 3 || distinctX(valid) < 3 {
		return Result{}, false
	}
	mx, my := means(valid)

	var s [5]float64 // Σu^k for k = 0..4
	var t [3]float64 // Σu^k·y for k = 0..2
	for _, p := range valid {
		u := p.X - mx
		pow := 1.0
		for k := 0; k < 5; k++ {
			s[k] += pow
			if k < 3 {
				t[k] += pow * p.Y
			}
			pow *= u
		}
	}
	m := [3][4]float64{
		{s[0], s[1], s[2], t[0]},
		{s[1], s[2], s[3], t[1]},
		{s[2], s[3], s[4], t[2]},
	}
	b, ok := solve3(m)
	if !ok {
		return Result{}, false
	}
	res := Result{
		Kind: Polynomial,
		Coefficients: []float64{
			b[0] - b[1]*mx + b[2]*mx*mx,
			b[1] - 2*b[2]*mx,
			b[2],
		},
		N: n,
	}
	res.RSquared = rSquared(valid, my, res.Predict)
	return res, true
}

// solve3 runs Gaussian elimination with partial pivoting on an augmented
// 3x4 matrix.
func solve3(m [3][4]float64) ([3]float64, bool) {
	var x [3]float64
	for col := 0; col < 3; col++ {
		pivot := col
		for r := col + 1; r < 3; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if m[pivot][col] == 0 {
			return x, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := col + 1; r < 3; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c < 4; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}
	for r := 2; r >= 0; r-- {
		sum := m[r][3]
		for c := r + 1; c < 3; c++ {
			sum -= m[r][c] * x[c]
		}
		x[r] = sum / m[r][r]
	}
	return x, true
}

// rSquared is 1 − SS_res/SS_tot clamped to [0, 1]. A constant response that
// the model reproduces exactly scores 1.
func rSquared(pts []Point, my float64, predict func(float64) float64) float64 {
	var ssRes, ssTot float64
	for _, p := range pts {
		d := p.Y - predict(p.X)
		ssRes += d * d
		e := p.Y - my
		ssTot += e * e
	}
	if ssTot == 0 {
		if ssRes < 1e-12 {
			return 1
		}
		return 0
	}
	r2 := 1 - ssRes/ssTot
	return math.Max(0, math.Min(1, r2))
}

func finite(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if isFinite(p.X) && isFinite(p.Y) {
			out = append(out, p)
		}
	}
	return out
}

func distinctX(pts []Point) int {
	seen := make(map[float64]struct{}, len(pts))
	for _, p := range pts {
		seen[p.X] = struct{}{}
	}
	return len(seen)
}

func means(pts []Point) (float64, float64) {
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return sx / n, sy / n
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
