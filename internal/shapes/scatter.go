package shapes

import (
	"math"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/regression"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
)

// HoverGrowth is the radius multiplier for the hovered scatter point.
const HoverGrowth = 1.2

// ScatterStyle styles one scatter series.
type ScatterStyle struct {
	Color   string
	Radius  float64
	Opacity float64
	// Size maps Point.Size to a radius; nil keeps Radius for every point.
	Size scale.Continuous
	// Colors maps Point.Group to a fill; nil keeps Color.
	Colors *scale.Ordinal
	// Hovered is the key of the point under the pointer, if any.
	Hovered string
}

// Scatter draws one circle per point. Circles grow from radius zero on
// enter and shrink back on exit.
func Scatter(pts []Point, x, y scale.Scale, style ScatterStyle) Result {
	var res Result
	if x == nil || y == nil {
		return res
	}
	base := orDefault(style.Radius, 5)
	opacity := orDefault(style.Opacity, 0.8)
	for _, q := range place(pts, x, y) {
		r := base
		if style.Size != nil && finite(q.P.Size) {
			if sr := style.Size.Map(q.P.Size); finite(sr) && sr >= 0 {
				r = sr
			}
		}
		if style.Hovered != "" && style.Hovered == q.P.Key {
			r *= HoverGrowth
		}
		fill := style.Color
		if style.Colors != nil && q.P.Group != nil {
			fill = style.Colors.Color(q.P.Group)
		}
		target := scene.Attrs{}.Set("cx", q.X).Set("cy", q.Y).Set("r", r).Set("opacity", opacity).
			SetStr("fill", fill)
		closed := target.Clone().Set("r", 0).Set("opacity", 0)
		res.add(scene.Spec{
			Key:    q.P.Key,
			Kind:   scene.KindCircle,
			Target: target,
			Enter:  ptr(closed),
			Exit:   ptr(closed),
		}, q.P.Index)
	}
	return res
}

// RegressionSamples is how many x values a fitted curve is sampled at.
const RegressionSamples = 100

// RegressionStyle styles a trend line.
type RegressionStyle struct {
	Kind         regression.Kind
	Color        string
	StrokeWidth  float64
	ShowEquation bool
	ShowRSquared bool
}

// Regression mark keys.
const (
	RegressionKey = "regression"
	EquationKey   = "regression:equation"
	RSquaredKey   = "regression:r2"
)

// RegressionLine fits the points and draws the fitted curve dashed across
// the x scale's domain. It draws nothing when the x scale is not
// continuous or the fit is degenerate; ok reports whether a line was drawn.
func RegressionLine(pts []Point, x, y scale.Scale, style RegressionStyle) (res Result, fit regression.Result, ok bool) {
	cx, isContinuous := x.(scale.Continuous)
	if !isContinuous || y == nil {
		return res, fit, false
	}
	obs := make([]regression.Point, 0, len(pts))
	for _, p := range pts {
		xv, ok := numericX(cx, p.X)
		if !ok || !finite(p.Y) {
			continue
		}
		obs = append(obs, regression.Point{X: xv, Y: p.Y})
	}
	kind := style.Kind
	if kind == "" {
		kind = regression.Linear
	}
	fit, ok = regression.Fit(kind, obs)
	if !ok {
		return res, fit, false
	}

	lo, hi := cx.Extent()
	var path scene.Path
	var last pt
	for i := 0; i < RegressionSamples; i++ {
		xv := lo + (hi-lo)*float64(i)/float64(RegressionSamples-1)
		py, ok := y.Position(fit.Predict(xv))
		px := cx.Map(xv)
		if !ok || !finite(py) || !finite(px) {
			continue
		}
		if path == nil {
			path = path.MoveTo(px, py)
		} else {
			path = path.LineTo(px, py)
		}
		last = pt{px, py}
	}
	if path == nil {
		return res, fit, false
	}

	color := style.Color
	if color == "" {
		color = "#555555"
	}
	line := scene.Attrs{}.WithPath(path).
		Set("stroke-width", orDefault(style.StrokeWidth, 1.5)).
		Set("opacity", 1).
		SetStr("fill", "none").
		SetStr("stroke", color).
		SetStr("stroke-dasharray", "5,5")
	res.add(scene.Spec{Key: RegressionKey, Kind: scene.KindPath, Target: line}, -1)

	ty := last.Y - 8
	if style.ShowEquation {
		res.add(scene.Spec{Key: EquationKey, Kind: scene.KindText, Target: label(last.X, ty, color, fit.Equation())}, -1)
		ty += 14
	}
	if style.ShowRSquared {
		res.add(scene.Spec{Key: RSquaredKey, Kind: scene.KindText, Target: label(last.X, ty, color, fit.RSquaredLabel())}, -1)
	}
	return res, fit, true
}

func label(x, y float64, color, text string) scene.Attrs {
	return scene.Attrs{}.Set("x", x).Set("y", y).Set("opacity", 1).Set("font-size", 11).
		SetStr("fill", color).SetStr("text-anchor", "end").WithText(text)
}

// numericX converts an x value into the numeric space of a continuous
// scale; time scales work in Unix milliseconds.
func numericX(s scale.Continuous, v any) (float64, bool) {
	if s.Kind() == scale.KindTime {
		if t, ok := chart.Time(v); ok {
			return float64(t.UnixMilli()), true
		}
	}
	f, ok := chart.NumberOK(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
