package shapes

import (
	"github.com/conneroisu/combochart/internal/align"
	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
	"github.com/conneroisu/combochart/internal/stack"
)

// AreaStyle styles one area series.
type AreaStyle struct {
	Color    string
	Curve    chart.Curve
	Opacity  float64
	Gradient *chart.Gradient
	// Baseline is a fixed lower bound in data units. BaselineFunc, when
	// set, wins and is evaluated per point. Without either the area fills
	// down to zero.
	Baseline     *float64
	BaselineFunc func(Point) float64
}

func (s AreaStyle) baseline(p Point) float64 {
	switch {
	case s.BaselineFunc != nil:
		return s.BaselineFunc(p)
	case s.Baseline != nil:
		return *s.Baseline
	}
	return 0
}

// Area fills between the curve through the points and the baseline. The
// area fades in on enter and out on exit.
func Area(pts []Point, x, y scale.Scale, style AreaStyle) Result {
	var res Result
	if x == nil || y == nil {
		return res
	}
	var top, bottom []pt
	for _, q := range place(pts, x, y) {
		b := style.baseline(q.P)
		if !finite(b) {
			continue
		}
		by, ok := y.Position(b)
		if !ok {
			continue
		}
		top = append(top, pt{q.X, q.Y})
		bottom = append(bottom, pt{q.X, by})
	}
	if len(top) == 0 {
		return res
	}

	fill := style.Color
	if g := style.Gradient; g != nil && g.ID != "" && len(g.Stops) > 0 {
		res.Defs = append(res.Defs, gradientNode(g, style.Color))
		fill = "url(#" + g.ID + ")"
	}
	target := scene.Attrs{}.
		WithPath(band(style.Curve, top, bottom)).
		Set("opacity", 1).
		Set("fill-opacity", orDefault(style.Opacity, 0.4)).
		Set("stroke-width", 1.5).
		SetStr("fill", fill).
		SetStr("stroke", style.Color)
	res.add(scene.Spec{Key: PathKey, Kind: scene.KindPath, Target: target}, -1)
	return res
}

// band builds a closed shape: the curve along top, then back along bottom.
func band(c chart.Curve, top, bottom []pt) scene.Path {
	curve := curveFor(c)
	p := curve(nil, top, false)
	rev := make([]pt, len(bottom))
	for i, q := range bottom {
		rev[len(bottom)-1-i] = q
	}
	return curve(p, rev, true).Close()
}

func gradientNode(g *chart.Gradient, fallback string) scene.Node {
	n := scene.Node{
		Key:  g.ID,
		Kind: scene.KindGradient,
		Attrs: scene.Attrs{}.
			SetStr("id", g.ID).
			SetStr("x1", "0").SetStr("y1", "0").
			SetStr("x2", "0").SetStr("y2", "1"),
	}
	for _, s := range g.Stops {
		color := s.Color
		if color == "" {
			color = fallback
		}
		opacity := s.Opacity
		if opacity == 0 {
			opacity = 1
		}
		n.Children = append(n.Children, scene.Node{
			Kind:  scene.KindStop,
			Attrs: scene.Attrs{}.Set("offset", s.Offset).Set("stop-opacity", opacity).SetStr("stop-color", color),
		})
	}
	return n
}

// StackedLayer is one series of a stack group; Values is parallel to the
// group's x values.
type StackedLayer struct {
	Key    string
	Color  string
	Values []float64
}

// StackedStyle configures a stack group.
type StackedStyle struct {
	Order   stack.Order
	Offset  stack.Offset
	Curve   chart.Curve
	Opacity float64
}

// StackedArea stacks the layers and draws one closed path per layer, keyed
// by layer key. Points sit at band centres so curves stay smooth across
// category ticks. New layers rise from the baseline.
func StackedArea(xs []any, layers []StackedLayer, x, y scale.Scale, style StackedStyle) Result {
	var res Result
	if x == nil || y == nil || len(layers) == 0 {
		return res
	}
	keys := make([]string, len(layers))
	values := make([][]float64, len(layers))
	for i, l := range layers {
		keys[i] = l.Key
		values[i] = l.Values
	}
	stacked := stack.Stack(keys, values, style.Order, style.Offset)

	cols := make([]int, 0, len(xs))
	px := make([]float64, 0, len(xs))
	for j, v := range xs {
		p, ok := align.Position(x, v, align.Center)
		if !ok || !finite(p) {
			continue
		}
		cols = append(cols, j)
		px = append(px, p)
	}
	if len(cols) == 0 {
		return res
	}
	base := scale.Baseline(y)

	for _, l := range stacked {
		top := make([]pt, 0, len(cols))
		bottom := make([]pt, 0, len(cols))
		for i, j := range cols {
			if j >= len(l.Spans) {
				continue
			}
			hi, ok1 := y.Position(l.Spans[j].Upper)
			lo, ok2 := y.Position(l.Spans[j].Lower)
			if !ok1 || !ok2 || !finite(hi) || !finite(lo) {
				continue
			}
			top = append(top, pt{px[i], hi})
			bottom = append(bottom, pt{px[i], lo})
		}
		if len(top) == 0 {
			continue
		}
		color := layers[l.Index].Color
		path := band(style.Curve, top, bottom)
		target := scene.Attrs{}.
			WithPath(path).
			Set("opacity", 1).
			Set("fill-opacity", orDefault(style.Opacity, 0.7)).
			Set("stroke-width", 1).
			SetStr("fill", color).
			SetStr("stroke", color)
		flat := target.Clone().
			WithPath(path.Map(func(x, _ float64) (float64, float64) { return x, base })).
			Set("opacity", 0)
		res.add(scene.Spec{
			Key:    l.Key,
			Kind:   scene.KindPath,
			Target: target,
			Enter:  ptr(flat),
			Exit:   ptr(flat),
		}, -1)
	}
	return res
}
