package scale

import (
	"math"

	"github.com/conneroisu/combochart/internal/chart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear is a continuous linear mapping. With sqrt set it maps the signed
// square root of values instead, which makes circle areas proportional.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
	sqrt   bool
	cfg    Config
}

// NewLinear maps [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1,
		cfg: Config{Kind: KindLinear, Domain: []any{d0, d1}, Range: [2]float64{r0, r1}}}
}

// NewSqrt maps [d0, d1] onto [r0, r1] through a square root.
func NewSqrt(d0, d1, r0, r1 float64) *Linear {
	s := NewLinear(d0, d1, r0, r1)
	s.sqrt = true
	s.cfg.Kind = KindSqrt
	return s
}

func (s *Linear) Kind() Kind {
	if s.sqrt {
		return KindSqrt
	}
	return KindLinear
}

func (s *Linear) Config() Config             { return s.cfg }
func (s *Linear) Bandwidth() float64         { return 0 }
func (s *Linear) Range() (float64, float64)  { return s.r0, s.r1 }
func (s *Linear) Extent() (float64, float64) { return s.d0, s.d1 }

func (s *Linear) transform(v float64) float64 {
	if !s.sqrt {
		return v
	}
	if v < 0 {
		return -math.Sqrt(-v)
	}
	return math.Sqrt(v)
}

func (s *Linear) untransform(v float64) float64 {
	if !s.sqrt {
		return v
	}
	if v < 0 {
		return -v * v
	}
	return v * v
}

// Map converts a domain value to a coordinate. A degenerate domain maps
// everything to the middle of the range.
func (s *Linear) Map(v float64) float64 {
	a, b := s.transform(s.d0), s.transform(s.d1)
	if a == b {
		return (s.r0 + s.r1) / 2
	}
	t := (s.transform(v) - a) / (b - a)
	return s.r0 + t*(s.r1-s.r0)
}

// Invert converts a coordinate back to a domain value.
func (s *Linear) Invert(px float64) float64 {
	if s.r0 == s.r1 {
		return s.d0
	}
	a, b := s.transform(s.d0), s.transform(s.d1)
	t := (px - s.r0) / (s.r1 - s.r0)
	return s.untransform(a + t*(b-a))
}

func (s *Linear) Position(v any) (float64, bool) {
	f, ok := chart.NumberOK(v)
	if !ok {
		return 0, false
	}
	return s.Map(f), true
}

// Nice extends the domain outwards to round tick values.
func (s *Linear) Nice(count int) {
	start, stop := s.d0, s.d1
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}
	var prestep float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, float64(count))
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			i = 10
			continue
		}
		prestep = step
	}
	if reversed {
		start, stop = stop, start
	}
	s.d0, s.d1 = start, stop
}

// Ticks returns roughly count round values inside the domain.
func (s *Linear) Ticks(count int) []Tick {
	values := TickValues(s.d0, s.d1, count)
	step := 0.0
	if len(values) > 1 {
		step = math.Abs(values[1] - values[0])
	}
	out := make([]Tick, len(values))
	for i, v := range values {
		out[i] = Tick{Value: v, Position: s.Map(v), Label: FormatNumber(v, step)}
	}
	return out
}

// TickValues generates evenly spaced round values in [start, stop].
func TickValues(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, float64(count))
	if i2 < i1 {
		return nil
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if inc < 0 {
			out[i] = (i1 + float64(i)) / -inc
		} else {
			out[i] = (i1 + float64(i)) * inc
		}
	}
	if reversed {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func tickSpec(start, stop, count float64) (float64, float64, float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	errv := step / math.Pow(10, power)
	factor := stepFactor(errv)
	var i1, i2, inc float64
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// tickIncrement returns the tick step; negative values encode 1/|step| so
// that fractional steps stay exact.
func tickIncrement(start, stop, count float64) float64 {
	step := (stop - start) / math.Max(0, count)
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	power := math.Floor(math.Log10(step))
	errv := step / math.Pow(10, power)
	factor := stepFactor(errv)
	if power < 0 {
		return -math.Pow(10, -power) / factor
	}
	return factor * math.Pow(10, power)
}

func stepFactor(errv float64) float64 {
	switch {
	case errv >= e10:
		return 10
	case errv >= e5:
		return 5
	case errv >= e2:
		return 2
	default:
		return 1
	}
}

// FormatNumber renders a tick value with grouping separators and just
// enough fraction digits for the given step.
func FormatNumber(v, step float64) string {
	digits := 0
	if step > 0 && step < 1 {
		digits = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	if v == 0 {
		v = 0 // normalise -0
	}
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(digits), number.MinFractionDigits(digits)))
}
