// Package scene is the retained scene graph the shape primitives render
// into. Each Layer holds keyed marks; applying a new set of mark specs
// diffs them against what is on screen (enter, update, exit) and starts
// time-based transitions that Advance steps forward.
package scene

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind is the SVG element a mark becomes.
type Kind string

const (
	KindRect     Kind = "rect"
	KindPath     Kind = "path"
	KindCircle   Kind = "circle"
	KindLine     Kind = "line"
	KindText     Kind = "text"
	KindGradient Kind = "linearGradient"
	KindStop     Kind = "stop"
)

// Attrs is the animatable state of a mark. Numeric attributes and the path
// geometry interpolate; colours interpolate when both ends are hex
// colours; everything else switches at the start of a transition.
type Attrs struct {
	Num  map[string]float64
	Str  map[string]string
	Path Path
	Text string
}

// Set returns a with the numeric attribute name set to v.
func (a Attrs) Set(name string, v float64) Attrs {
	if a.Num == nil {
		a.Num = make(map[string]float64, 6)
	}
	a.Num[name] = v
	return a
}

// SetStr returns a with the string attribute name set to v. Empty values
// are dropped.
func (a Attrs) SetStr(name, v string) Attrs {
	if v == "" {
		return a
	}
	if a.Str == nil {
		a.Str = make(map[string]string, 4)
	}
	a.Str[name] = v
	return a
}

// WithPath returns a with path geometry p.
func (a Attrs) WithPath(p Path) Attrs {
	a.Path = p
	return a
}

// WithText returns a with text content s.
func (a Attrs) WithText(s string) Attrs {
	a.Text = s
	return a
}

// Get returns a numeric attribute.
func (a Attrs) Get(name string) (float64, bool) {
	v, ok := a.Num[name]
	return v, ok
}

// Clone returns a deep copy.
func (a Attrs) Clone() Attrs {
	return Attrs{
		Num:  maps.Clone(a.Num),
		Str:  maps.Clone(a.Str),
		Path: a.Path.Clone(),
		Text: a.Text,
	}
}

// Equal reports whether a and b describe the same state.
func Equal(a, b Attrs) bool {
	if a.Text != b.Text || !maps.Equal(a.Num, b.Num) || !maps.Equal(a.Str, b.Str) || len(a.Path) != len(b.Path) {
		return false
	}
	for i := range a.Path {
		if a.Path[i].Cmd != b.Path[i].Cmd || !slices.Equal(a.Path[i].Args, b.Path[i].Args) {
			return false
		}
	}
	return true
}

// Node is a rendered element snapshot handed to serializers.
type Node struct {
	Key      string
	Kind     Kind
	Attrs    Attrs
	Children []Node
}

// FormatNumber writes v with at most three decimals.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
