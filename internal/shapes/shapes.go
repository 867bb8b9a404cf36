// Package shapes turns data points plus an x/y scale pair into keyed scene
// specs. Every primitive filters out points it cannot place (non-finite
// values, x values outside the scale) instead of failing, and renders
// nothing when a scale is missing.
package shapes

import (
	"math"
	"strconv"

	"github.com/conneroisu/combochart/internal/align"
	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
)

// Point is one record prepared for a primitive.
type Point struct {
	// Key identifies the mark across renders: an explicit id field when the
	// record has one, else the record index.
	Key    string
	Index  int
	X      any
	Y      float64
	Size   float64
	Group  any
	Record chart.Record
}

// Result is what a primitive produces for one frame.
type Result struct {
	Specs []scene.Spec
	Defs  []scene.Node
	// Hits maps mark keys to the index of the point they draw, or -1 for
	// marks that stand for the whole series.
	Hits map[string]int
}

func (r *Result) add(s scene.Spec, hit int) {
	r.Specs = append(r.Specs, s)
	if r.Hits == nil {
		r.Hits = make(map[string]int)
	}
	r.Hits[s.Key] = hit
}

// Merge appends other's marks, defs and hits to r.
func (r *Result) Merge(other Result) {
	for _, s := range other.Specs {
		r.add(s, other.Hits[s.Key])
	}
	r.Defs = append(r.Defs, other.Defs...)
}

// PointKey derives a mark key from a record: its "id" field when present,
// otherwise its index.
func PointKey(r chart.Record, index int) string {
	if id, ok := r["id"]; ok && id != nil {
		if s := chart.Label(id); s != "" {
			return s
		}
	}
	return strconv.Itoa(index)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// xy is a placed point in pixel space.
type xy struct {
	X, Y float64
	P    Point
}

// place maps points through the scales, dropping anything that cannot be
// positioned. X lands on the band centre for band scales.
func place(pts []Point, x, y scale.Scale) []xy {
	out := make([]xy, 0, len(pts))
	for _, p := range pts {
		if !finite(p.Y) {
			continue
		}
		px, ok := align.Position(x, p.X, align.Center)
		if !ok || !finite(px) {
			continue
		}
		py, ok := y.Position(p.Y)
		if !ok || !finite(py) {
			continue
		}
		out = append(out, xy{X: px, Y: py, P: p})
	}
	return out
}

func orDefault(v, def float64) float64 {
	if v <= 0 || !finite(v) {
		return def
	}
	return v
}

func ptr(a scene.Attrs) *scene.Attrs { return &a }
