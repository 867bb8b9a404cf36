package shapes

import (
	"math"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/scene"
)

// pt is a plain pixel coordinate.
type pt struct{ X, Y float64 }

// curveFunc appends a curve through pts to p. When join is set the first
// point continues the current subpath instead of starting a new one.
type curveFunc func(p scene.Path, pts []pt, join bool) scene.Path

func curveFor(c chart.Curve) curveFunc {
	switch c {
	case chart.CurveMonotone:
		return monotone
	case chart.CurveCardinal:
		return cardinal
	case chart.CurveBasis:
		return basis
	case chart.CurveStep:
		return step
	}
	return linear
}

func start(p scene.Path, q pt, join bool) scene.Path {
	if join {
		return p.LineTo(q.X, q.Y)
	}
	return p.MoveTo(q.X, q.Y)
}

func linear(p scene.Path, pts []pt, join bool) scene.Path {
	for i, q := range pts {
		if i == 0 {
			p = start(p, q, join)
			continue
		}
		p = p.LineTo(q.X, q.Y)
	}
	return p
}

// step holds each value until halfway to the next point.
func step(p scene.Path, pts []pt, join bool) scene.Path {
	for i, q := range pts {
		if i == 0 {
			p = start(p, q, join)
			continue
		}
		prev := pts[i-1]
		mid := (prev.X + q.X) / 2
		p = p.LineTo(mid, prev.Y).LineTo(mid, q.Y).LineTo(q.X, q.Y)
	}
	return p
}

// cardinal draws a cardinal spline with zero tension through every point;
// the end points are duplicated to give the first and last segments a
// tangent.
func cardinal(p scene.Path, pts []pt, join bool) scene.Path {
	if len(pts) < 3 {
		return linear(p, pts, join)
	}
	const k = 1.0 / 6
	p = start(p, pts[0], join)
	at := func(i int) pt {
		return pts[max(0, min(len(pts)-1, i))]
	}
	for i := 0; i < len(pts)-1; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		p = p.CurveTo(
			p1.X+k*(p2.X-p0.X), p1.Y+k*(p2.Y-p0.Y),
			p2.X-k*(p3.X-p1.X), p2.Y-k*(p3.Y-p1.Y),
			p2.X, p2.Y,
		)
	}
	return p
}

// basis draws a uniform cubic B-spline; it passes through the end points
// but only approximates the interior ones.
func basis(p scene.Path, pts []pt, join bool) scene.Path {
	n := len(pts)
	if n < 3 {
		return linear(p, pts, join)
	}
	seg := func(p scene.Path, a, b, c pt) scene.Path {
		return p.CurveTo(
			(2*a.X+b.X)/3, (2*a.Y+b.Y)/3,
			(a.X+2*b.X)/3, (a.Y+2*b.Y)/3,
			(a.X+4*b.X+c.X)/6, (a.Y+4*b.Y+c.Y)/6,
		)
	}
	p = start(p, pts[0], join)
	p = p.LineTo((5*pts[0].X+pts[1].X)/6, (5*pts[0].Y+pts[1].Y)/6)
	for i := 2; i < n; i++ {
		p = seg(p, pts[i-2], pts[i-1], pts[i])
	}
	p = seg(p, pts[n-2], pts[n-1], pts[n-1])
	return p.LineTo(pts[n-1].X, pts[n-1].Y)
}

// monotone draws a cubic Hermite spline whose tangents are limited so the
// curve never overshoots between points (monotone in y for monotone data).
func monotone(p scene.Path, pts []pt, join bool) scene.Path {
	n := len(pts)
	if n < 3 {
		return linear(p, pts, join)
	}
	t := make([]float64, n)
	for i := 1; i < n-1; i++ {
		t[i] = slope3(pts[i-1], pts[i], pts[i+1])
	}
	t[0] = slope2(pts[0], pts[1], t[1])
	t[n-1] = slope2(pts[n-2], pts[n-1], t[n-2])

	p = start(p, pts[0], join)
	for i := 0; i < n-1; i++ {
		a, b := pts[i], pts[i+1]
		dx := (b.X - a.X) / 3
		p = p.CurveTo(a.X+dx, a.Y+dx*t[i], b.X-dx, b.Y-dx*t[i+1], b.X, b.Y)
	}
	return p
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func slope3(a, b, c pt) float64 {
	h0, h1 := b.X-a.X, c.X-b.X
	if h0 == 0 || h1 == 0 {
		return 0
	}
	s0, s1 := (b.Y-a.Y)/h0, (c.Y-b.Y)/h1
	q := (s0*h1 + s1*h0) / (h0 + h1)
	v := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(q))
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func slope2(a, b pt, t float64) float64 {
	h := b.X - a.X
	if h == 0 {
		return t
	}
	return (3*(b.Y-a.Y)/h - t) / 2
}
