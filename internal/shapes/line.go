package shapes

import (
	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
)

// PathKey is the mark key of a series' single path.
const PathKey = "path"

// LineStyle styles one line series.
type LineStyle struct {
	Color       string
	Curve       chart.Curve
	StrokeWidth float64
	Dashed      bool
	ShowPoints  bool
	PointRadius float64
}

// Line draws a path through the points in data order. Point markers, when
// enabled, are keyed per point and reconcile independently of the path.
func Line(pts []Point, x, y scale.Scale, style LineStyle) Result {
	var res Result
	if x == nil || y == nil {
		return res
	}
	placed := place(pts, x, y)
	if len(placed) == 0 {
		return res
	}
	coords := make([]pt, len(placed))
	for i, q := range placed {
		coords[i] = pt{q.X, q.Y}
	}

	target := scene.Attrs{}.
		WithPath(curveFor(style.Curve)(nil, coords, false)).
		Set("stroke-width", orDefault(style.StrokeWidth, 2)).
		Set("opacity", 1).
		SetStr("fill", "none").
		SetStr("stroke", style.Color)
	if style.Dashed {
		target = target.SetStr("stroke-dasharray", "6,4")
	}
	res.add(scene.Spec{Key: PathKey, Kind: scene.KindPath, Target: target}, -1)

	if !style.ShowPoints {
		return res
	}
	r := orDefault(style.PointRadius, 3)
	for _, q := range placed {
		dot := scene.Attrs{}.Set("cx", q.X).Set("cy", q.Y).Set("r", r).Set("opacity", 1).
			SetStr("fill", style.Color)
		closed := dot.Clone().Set("r", 0).Set("opacity", 0)
		res.add(scene.Spec{
			Key:    "pt:" + q.P.Key,
			Kind:   scene.KindCircle,
			Target: dot,
			Enter:  ptr(closed),
			Exit:   ptr(closed),
		}, q.P.Index)
	}
	return res
}
