package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ease maps linear progress in [0, 1] to eased progress.
type Ease func(t float64) float64

// EaseCubicInOut is the default transition easing.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// EaseLinear applies no easing.
func EaseLinear(t float64) float64 { return t }

var colorAttrs = map[string]bool{"fill": true, "stroke": true, "stop-color": true}

// Lerp interpolates between two states. Numeric attributes present on only
// one side snap to the target; paths interpolate when their structure
// matches and otherwise snap.
func Lerp(from, to Attrs, t float64) Attrs {
	if t >= 1 {
		return to.Clone()
	}
	if t < 0 {
		t = 0
	}
	out := Attrs{Text: to.Text}
	if len(to.Num) > 0 {
		out.Num = make(map[string]float64, len(to.Num))
		for k, b := range to.Num {
			if a, ok := from.Num[k]; ok {
				out.Num[k] = a + (b-a)*t
			} else {
				out.Num[k] = b
			}
		}
	}
	if len(to.Str) > 0 {
		out.Str = make(map[string]string, len(to.Str))
		for k, b := range to.Str {
			a, ok := from.Str[k]
			if ok && colorAttrs[k] && a != b {
				if c, ok := lerpColor(a, b, t); ok {
					out.Str[k] = c
					continue
				}
			}
			out.Str[k] = b
		}
	}
	if from.Path.compatible(to.Path) {
		out.Path = make(Path, len(to.Path))
		for i, s := range to.Path {
			args := make([]float64, len(s.Args))
			for j, b := range s.Args {
				a := from.Path[i].Args[j]
				args[j] = a + (b-a)*t
			}
			out.Path[i] = Segment{Cmd: s.Cmd, Args: args}
		}
	} else {
		out.Path = to.Path.Clone()
	}
	return out
}

type rgb struct{ r, g, b float64 }

func parseHex(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, true
}

func lerpColor(a, b string, t float64) (string, bool) {
	ca, ok1 := parseHex(a)
	cb, ok2 := parseHex(b)
	if !ok1 || !ok2 {
		return "", false
	}
	ch := func(x, y float64) int { return int(math.Round(x + (y-x)*t)) }
	return fmt.Sprintf("#%02x%02x%02x", ch(ca.r, cb.r), ch(ca.g, cb.g), ch(ca.b, cb.b)), true
}
