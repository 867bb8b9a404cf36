package shapes

import (
	"math"

	"github.com/conneroisu/combochart/internal/align"
	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
	"github.com/conneroisu/combochart/internal/stack"
)

// DefaultWaterfallColors colour bars by row classification.
var DefaultWaterfallColors = chart.WaterfallColors{
	Positive: "#2ca02c",
	Negative: "#d62728",
	Total:    "#1f77b4",
	Subtotal: "#9467bd",
}

// WaterfallStyle styles a waterfall series.
type WaterfallStyle struct {
	Colors         chart.WaterfallColors
	Opacity        float64
	ShowConnectors bool
}

func (s WaterfallStyle) color(k stack.StepKind) string {
	pick := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}
	c, d := s.Colors, DefaultWaterfallColors
	switch k {
	case stack.StepNegative:
		return pick(c.Negative, d.Negative)
	case stack.StepTotal:
		return pick(c.Total, d.Total)
	case stack.StepSubtotal:
		return pick(c.Subtotal, d.Subtotal)
	}
	return pick(c.Positive, d.Positive)
}

// Waterfall draws one bar per step. steps is parallel to pts. Delta bars
// span the running total before and after the row; total and subtotal
// bars rise from zero. New bars grow out of the previous running total.
func Waterfall(pts []Point, steps []stack.Step, x, y scale.Scale, style WaterfallStyle) Result {
	var res Result
	if x == nil || y == nil {
		return res
	}
	slot := align.Width(x, len(pts))
	opacity := orDefault(style.Opacity, 1)

	type placed struct {
		key   string
		slot  align.Slot
		after float64
	}
	var drawn []placed

	for i, p := range pts {
		if i >= len(steps) || !finite(p.Y) {
			continue
		}
		st := steps[i]
		s, ok := align.BarSlot(x, p.X, 0, 1, slot)
		if !ok {
			continue
		}
		low, high := st.BarBounds()
		yLow, ok1 := y.Position(low)
		yHigh, ok2 := y.Position(high)
		yBefore, ok3 := y.Position(st.Before)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		top := math.Min(yLow, yHigh)
		target := rect(s.X, top, s.Width, math.Abs(yLow-yHigh), 0).
			Set("opacity", opacity).
			SetStr("fill", style.color(st.Kind))
		closed := target.Clone().Set("y", yBefore).Set("height", 0)
		res.add(scene.Spec{
			Key:    p.Key,
			Kind:   scene.KindRect,
			Target: target,
			Enter:  ptr(closed),
			Exit:   ptr(closed.Clone().Set("opacity", 0)),
		}, p.Index)
		drawn = append(drawn, placed{key: p.Key, slot: s, after: st.After})
	}

	if !style.ShowConnectors {
		return res
	}
	for i := 0; i+1 < len(drawn); i++ {
		a, b := drawn[i], drawn[i+1]
		yy, ok := y.Position(a.after)
		if !ok {
			continue
		}
		target := scene.Attrs{}.
			Set("x1", a.slot.X+a.slot.Width).Set("y1", yy).
			Set("x2", b.slot.X).Set("y2", yy).
			Set("opacity", 1).Set("stroke-width", 1).
			SetStr("stroke", "#888888").SetStr("stroke-dasharray", "3,3")
		res.add(scene.Spec{Key: "conn:" + a.key, Kind: scene.KindLine, Target: target}, -1)
	}
	return res
}
