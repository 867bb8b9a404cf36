package scene

import (
	"strings"
)

// Segment is one SVG path command with absolute coordinates.
type Segment struct {
	Cmd  byte
	Args []float64
}

// Path is a sequence of segments.
type Path []Segment

// MoveTo appends an M command.
func (p Path) MoveTo(x, y float64) Path { return append(p, Segment{Cmd: 'M', Args: []float64{x, y}}) }

// LineTo appends an L command.
func (p Path) LineTo(x, y float64) Path { return append(p, Segment{Cmd: 'L', Args: []float64{x, y}}) }

// CurveTo appends a cubic Bézier C command.
func (p Path) CurveTo(x1, y1, x2, y2, x, y float64) Path {
	return append(p, Segment{Cmd: 'C', Args: []float64{x1, y1, x2, y2, x, y}})
}

// Close appends a Z command.
func (p Path) Close() Path { return append(p, Segment{Cmd: 'Z'}) }

// Clone returns a deep copy.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	for i, s := range p {
		out[i] = Segment{Cmd: s.Cmd, Args: append([]float64(nil), s.Args...)}
	}
	return out
}

// String renders the path data attribute.
func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteByte(s.Cmd)
		for i, a := range s.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(FormatNumber(a))
		}
	}
	return b.String()
}

// compatible reports whether p and q have the same command structure and
// can be interpolated point by point.
func (p Path) compatible(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].Cmd != q[i].Cmd || len(p[i].Args) != len(q[i].Args) {
			return false
		}
	}
	return true
}

// Map returns a copy of p with every coordinate pair replaced by f(x, y).
// Shapes use it to build neutral enter and exit geometry.
func (p Path) Map(f func(x, y float64) (float64, float64)) Path {
	out := p.Clone()
	for _, s := range out {
		for i := 0; i+1 < len(s.Args); i += 2 {
			s.Args[i], s.Args[i+1] = f(s.Args[i], s.Args[i+1])
		}
	}
	return out
}
