// Package align positions marks relative to a scale: at the start, centre
// or end of a band, and with a usable width on continuous x axes.
package align

import (
	"github.com/conneroisu/combochart/internal/scale"
)

// Alignment is where inside a band a mark is anchored.
type Alignment string

const (
	Start  Alignment = "start"
	Center Alignment = "center"
	End    Alignment = "end"
)

// ContinuousBarFraction is the share of the per-point slot a bar fills when
// the x scale has no bands.
const ContinuousBarFraction = 0.8

// Position maps v through s and shifts it inside the band. Continuous
// scales have zero bandwidth, so every alignment yields the mapped value.
func Position(s scale.Scale, v any, a Alignment) (float64, bool) {
	if s == nil {
		return 0, false
	}
	p, ok := s.Position(v)
	if !ok {
		return 0, false
	}
	switch a {
	case Center:
		return p + s.Bandwidth()/2, true
	case End:
		return p + s.Bandwidth(), true
	}
	return p, true
}

// Width is the space a bar slot occupies at x. Band scales give their
// bandwidth; continuous scales divide the range by the number of points.
func Width(s scale.Scale, points int) float64 {
	if s == nil {
		return 0
	}
	if bw := s.Bandwidth(); bw > 0 {
		return bw
	}
	if points < 1 {
		points = 1
	}
	r0, r1 := s.Range()
	span := r1 - r0
	if span < 0 {
		span = -span
	}
	return span / float64(points) * ContinuousBarFraction
}

// GroupOffset is the displacement of member i of an n-member cluster from
// the cluster centre, given the member width.
func GroupOffset(i, n int, width float64) float64 {
	if n <= 1 {
		return 0
	}
	return (float64(i) - float64(n-1)/2) * width
}

// Slot is the horizontal extent of one clustered bar.
type Slot struct {
	X     float64
	Width float64
}

// BarSlot places member i of an n-member cluster at v. The cluster is
// centred on the band centre (or on the mapped value for continuous
// scales) and each member is slotWidth/n wide.
func BarSlot(s scale.Scale, v any, i, n int, slotWidth float64) (Slot, bool) {
	c, ok := Position(s, v, Center)
	if !ok {
		return Slot{}, false
	}
	if n < 1 {
		n = 1
	}
	w := slotWidth / float64(n)
	mid := c + GroupOffset(i, n, w)
	return Slot{X: mid - w/2, Width: w}, true
}
