// Package axis draws the bottom x axis, the left and right value axes and
// optional gridlines from the scales published in a registry. An axis
// whose scale is not registered is not drawn.
package axis

import (
	"fmt"
	"strconv"
	"time"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
)

// Layer ids.
const (
	LayerGrid  = "grid"
	LayerX     = "axis:x"
	LayerLeft  = "axis:left"
	LayerRight = "axis:right"
)

const (
	tickSize    = 6
	tickPadding = 3
	axisColor   = "#6b7280"
	gridColor   = "#e5e7eb"
	fontSize    = 11.0
)

// Options controls axis layout.
type Options struct {
	Area   chart.ContentArea
	Margin chart.Margin
	// XTicks and YTicks are the approximate tick counts; zero picks one
	// from the available space.
	XTicks int
	YTicks int
	Grid   bool
	// Titles by axis; empty titles are not drawn.
	XTitle     string
	LeftTitle  string
	RightTitle string
}

func (o Options) xTicks() int {
	if o.XTicks > 0 {
		return o.XTicks
	}
	return max(2, int(o.Area.Width/80))
}

func (o Options) yTicks() int {
	if o.YTicks > 0 {
		return o.YTicks
	}
	return max(2, int(o.Area.Height/50))
}

// Layer is one axis worth of marks.
type Layer struct {
	ID    string
	Axis  scale.AxisTag
	Specs []scene.Spec
}

// Render reads the x, left and right scales from reg and lays out their
// axes. Gridlines follow the left axis, or the right one when the chart
// only uses the right axis.
func Render(reg *scale.Registry, opts Options) []Layer {
	var out []Layer
	left, hasLeft := reg.Get(scale.KeyLeftY)
	right, hasRight := reg.Get(scale.KeyRightY)

	if opts.Grid {
		g := left
		if !hasLeft {
			g = right
		}
		if g != nil {
			out = append(out, Layer{ID: LayerGrid, Axis: scale.AxisY, Specs: grid(g, opts)})
		}
	}
	if x, ok := reg.Get(scale.KeyX); ok {
		out = append(out, Layer{ID: LayerX, Axis: scale.AxisX, Specs: bottom(x, opts)})
	}
	if hasLeft {
		out = append(out, Layer{ID: LayerLeft, Axis: scale.AxisY, Specs: vertical(left, opts, 0, -1, opts.LeftTitle)})
	}
	if hasRight {
		out = append(out, Layer{ID: LayerRight, Axis: scale.AxisY2, Specs: vertical(right, opts, opts.Area.Width, 1, opts.RightTitle)})
	}
	return out
}

func line(x1, y1, x2, y2 float64, color string) scene.Attrs {
	return scene.Attrs{}.
		Set("x1", x1).Set("y1", y1).Set("x2", x2).Set("y2", y2).
		Set("opacity", 1).Set("stroke-width", 1).
		SetStr("stroke", color)
}

func text(x, y float64, anchor, s string) scene.Attrs {
	return scene.Attrs{}.
		Set("x", x).Set("y", y).Set("opacity", 1).Set("font-size", fontSize).
		SetStr("fill", axisColor).SetStr("text-anchor", anchor).
		WithText(s)
}

// tickKey identifies a tick by its value. Labels can repeat, for example
// clock times on a domain spanning several days.
func tickKey(t scale.Tick) string {
	switch v := t.Value.(type) {
	case time.Time:
		return strconv.FormatInt(v.UnixMilli(), 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	}
	return fmt.Sprint(t.Value)
}

func bottom(s scale.Scale, opts Options) []scene.Spec {
	h := opts.Area.Height
	r0, r1 := s.Range()
	specs := []scene.Spec{{Key: "domain", Kind: scene.KindLine, Target: line(r0, h, r1, h, axisColor)}}
	for _, t := range s.Ticks(opts.xTicks()) {
		specs = append(specs,
			scene.Spec{Key: "tick:" + tickKey(t), Kind: scene.KindLine, Target: line(t.Position, h, t.Position, h+tickSize, axisColor)},
			scene.Spec{Key: "text:" + tickKey(t), Kind: scene.KindText, Target: text(t.Position, h+tickSize+tickPadding+fontSize, "middle", t.Label)},
		)
	}
	if opts.XTitle != "" {
		specs = append(specs, scene.Spec{Key: "title", Kind: scene.KindText,
			Target: text((r0+r1)/2, h+opts.Margin.Bottom-4, "middle", opts.XTitle)})
	}
	return specs
}

// vertical draws a value axis at x; dir is -1 for ticks pointing left and
// 1 for ticks pointing right.
func vertical(s scale.Scale, opts Options, x, dir float64, title string) []scene.Spec {
	r0, r1 := s.Range()
	anchor := "end"
	if dir > 0 {
		anchor = "start"
	}
	specs := []scene.Spec{{Key: "domain", Kind: scene.KindLine, Target: line(x, r0, x, r1, axisColor)}}
	for _, t := range s.Ticks(opts.yTicks()) {
		specs = append(specs,
			scene.Spec{Key: "tick:" + tickKey(t), Kind: scene.KindLine, Target: line(x, t.Position, x+dir*tickSize, t.Position, axisColor)},
			scene.Spec{Key: "text:" + tickKey(t), Kind: scene.KindText, Target: text(x+dir*(tickSize+tickPadding), t.Position+fontSize/3, anchor, t.Label)},
		)
	}
	if title != "" {
		mid := (r0 + r1) / 2
		var a scene.Attrs
		if dir < 0 {
			// rotate(-90) maps (x, y) to (y, -x).
			a = text(-mid, -(opts.Margin.Left-fontSize-2), "middle", title).SetStr("transform", "rotate(-90)")
		} else {
			// rotate(90) maps (x, y) to (-y, x).
			a = text(mid, -(x+opts.Margin.Right-fontSize-2), "middle", title).SetStr("transform", "rotate(90)")
		}
		specs = append(specs, scene.Spec{Key: "title", Kind: scene.KindText, Target: a})
	}
	return specs
}

func grid(s scale.Scale, opts Options) []scene.Spec {
	var specs []scene.Spec
	for _, t := range s.Ticks(opts.yTicks()) {
		specs = append(specs, scene.Spec{
			Key:    "grid:" + tickKey(t),
			Kind:   scene.KindLine,
			Target: line(0, t.Position, opts.Area.Width, t.Position, gridColor),
		})
	}
	return specs
}
