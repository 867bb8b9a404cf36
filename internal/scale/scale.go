// Package scale maps domain values to pixel coordinates. It provides the
// linear, time and band scales used for axes and marks, the sqrt and
// ordinal scales used for scatter encodings, and the per-render Registry
// through which every layer reads the same scale instances.
package scale

import (
	"fmt"
	"time"

	"github.com/conneroisu/combochart/internal/chart"
)

// Kind tags a scale for introspection.
type Kind string

const (
	KindLinear Kind = "linear"
	KindTime   Kind = "time"
	KindBand   Kind = "band"
	KindSqrt   Kind = "sqrt"
)

// Config is the declarative description a scale is built from.
type Config struct {
	Kind    Kind       `json:"type" yaml:"type"`
	Domain  []any      `json:"domain" yaml:"domain"`
	Range   [2]float64 `json:"range" yaml:"range"`
	Padding float64    `json:"padding,omitempty" yaml:"padding,omitempty"`
	Nice    bool       `json:"nice,omitempty" yaml:"nice,omitempty"`
}

// Tick is one axis tick.
type Tick struct {
	Value    any
	Position float64
	Label    string
}

// Scale maps a domain value to a coordinate.
type Scale interface {
	Kind() Kind
	// Position returns the coordinate for v. For band scales this is the
	// start of the band.
	Position(v any) (float64, bool)
	// Bandwidth is the band width, or 0 for continuous scales.
	Bandwidth() float64
	Range() (float64, float64)
	Ticks(count int) []Tick
	Config() Config
}

// Continuous scales additionally expose a numeric mapping and its inverse.
type Continuous interface {
	Scale
	Map(v float64) float64
	Invert(px float64) float64
	// Extent is the numeric domain after any niceness was applied. Time
	// domains are expressed in Unix milliseconds.
	Extent() (float64, float64)
}

// New builds a scale from its declarative config.
func New(cfg Config) (Scale, error) {
	switch cfg.Kind {
	case KindLinear, KindSqrt:
		lo, hi, err := numericPair(cfg.Domain)
		if err != nil {
			return nil, err
		}
		var s *Linear
		if cfg.Kind == KindSqrt {
			s = NewSqrt(lo, hi, cfg.Range[0], cfg.Range[1])
		} else {
			s = NewLinear(lo, hi, cfg.Range[0], cfg.Range[1])
		}
		if cfg.Nice {
			s.Nice(10)
		}
		s.cfg = cfg
		return s, nil
	case KindTime:
		if len(cfg.Domain) != 2 {
			return nil, fmt.Errorf("time scale needs a [start, end] domain, got %d values", len(cfg.Domain))
		}
		start, ok1 := chart.Time(cfg.Domain[0])
		end, ok2 := chart.Time(cfg.Domain[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("time scale domain is not temporal: %v", cfg.Domain)
		}
		s := NewTime(start, end, cfg.Range[0], cfg.Range[1])
		s.cfg = cfg
		return s, nil
	case KindBand:
		labels := make([]string, len(cfg.Domain))
		for i, v := range cfg.Domain {
			labels[i] = chart.Label(v)
		}
		s := NewBand(labels, cfg.Range[0], cfg.Range[1], cfg.Padding)
		s.cfg = cfg
		return s, nil
	}
	return nil, fmt.Errorf("unknown scale kind %q", cfg.Kind)
}

func numericPair(d []any) (float64, float64, error) {
	if len(d) != 2 {
		return 0, 0, fmt.Errorf("continuous scale needs a [min, max] domain, got %d values", len(d))
	}
	lo, ok1 := chart.NumberOK(d[0])
	hi, ok2 := chart.NumberOK(d[1])
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("continuous scale domain is not numeric: %v", d)
	}
	return lo, hi, nil
}

// Center returns the coordinate of v's band centre (or v itself for
// continuous scales).
func Center(s Scale, v any) (float64, bool) {
	p, ok := s.Position(v)
	if !ok {
		return 0, false
	}
	return p + s.Bandwidth()/2, true
}

// Baseline is the coordinate of zero clamped into the scale's range, the
// anchor for bars and areas.
func Baseline(s Scale) float64 {
	r0, r1 := s.Range()
	lo, hi := min(r0, r1), max(r0, r1)
	if c, ok := s.(Continuous); ok {
		return clamp(c.Map(0), lo, hi)
	}
	return max(r0, r1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func timeFromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
