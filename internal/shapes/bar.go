package shapes

import (
	"math"

	"github.com/conneroisu/combochart/internal/align"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
)

// BarStyle styles one bar series.
type BarStyle struct {
	Color   string
	Opacity float64
	Radius  float64
}

// BarOptions places a bar series inside its cluster.
type BarOptions struct {
	Style   BarStyle
	Member  int
	Members int
	// SlotWidth is the width shared by the whole cluster; zero derives it
	// from the x scale.
	SlotWidth float64
}

// Bar draws one rect per point, rising from the zero baseline. New bars
// grow from height zero; removed bars collapse back to it.
func Bar(pts []Point, x, y scale.Scale, opts BarOptions) Result {
	var res Result
	if x == nil || y == nil {
		return res
	}
	slot := opts.SlotWidth
	if slot <= 0 {
		slot = align.Width(x, len(pts))
	}
	base := scale.Baseline(y)
	opacity := orDefault(opts.Style.Opacity, 1)

	for _, p := range pts {
		if !finite(p.Y) {
			continue
		}
		s, ok := align.BarSlot(x, p.X, opts.Member, opts.Members, slot)
		if !ok {
			continue
		}
		yv, ok := y.Position(p.Y)
		if !ok || !finite(yv) {
			continue
		}
		target := rect(s.X, math.Min(yv, base), s.Width, math.Abs(base-yv), opts.Style.Radius).
			Set("opacity", opacity).
			SetStr("fill", opts.Style.Color)
		closed := target.Clone().Set("y", base).Set("height", 0)
		res.add(scene.Spec{
			Key:    p.Key,
			Kind:   scene.KindRect,
			Target: target,
			Enter:  ptr(closed),
			Exit:   ptr(closed.Clone().Set("opacity", 0)),
		}, p.Index)
	}
	return res
}

func rect(x, y, w, h, rx float64) scene.Attrs {
	a := scene.Attrs{}.Set("x", x).Set("y", y).Set("width", w).Set("height", h)
	if rx > 0 {
		a = a.Set("rx", rx)
	}
	return a
}

// BarMember is one series of a bar cluster. Y is the scale for the
// series' own value axis.
type BarMember struct {
	Points []Point
	Y      scale.Scale
	Style  BarStyle
}

// MultiBar renders a cluster of bar series side by side. Each member gets
// bandwidth/n of the slot, offset from the category centre by
// (i - (n-1)/2) * width. Members without a y scale are left out of the
// cluster. The result slice is parallel to members.
func MultiBar(members []BarMember, x scale.Scale) []Result {
	out := make([]Result, len(members))
	if x == nil {
		return out
	}
	n, most := 0, 0
	for _, m := range members {
		if m.Y != nil {
			n++
			most = max(most, len(m.Points))
		}
	}
	slot := align.Width(x, most)
	i := 0
	for j, m := range members {
		if m.Y == nil {
			continue
		}
		out[j] = Bar(m.Points, x, m.Y, BarOptions{Style: m.Style, Member: i, Members: n, SlotWidth: slot})
		i++
	}
	return out
}
