// Package domain derives the shared x domain and the per-axis y domains
// from raw records and series descriptors, including stacked and
// cumulative (waterfall) series.
package domain

import (
	"math"
	"time"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/stack"
)

// Headroom is the multiplier applied to every y-domain ceiling.
const Headroom = 1.1

// XKind classifies the x column.
type XKind string

const (
	XTemporal    XKind = "temporal"
	XNumeric     XKind = "numeric"
	XCategorical XKind = "categorical"
)

// XDomain is either a continuous [Min, Max] pair (temporal or numeric) or
// an ordered set of distinct category labels.
type XDomain struct {
	Kind       XKind
	Min, Max   float64
	Start, End time.Time
	Categories []string
}

// Extent is a closed numeric interval with Min <= Max.
type Extent struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultExtent is used for axes without series.
var DefaultExtent = Extent{Min: 0, Max: 1}

// Result is the output of Process.
type Result struct {
	X      XDomain
	LeftY  Extent
	RightY Extent
	Series []chart.Series

	// LeftUsed and RightUsed report whether any series targets the axis.
	LeftUsed  bool
	RightUsed bool
}

// Empty reports the "nothing to render" case.
func (r Result) Empty() bool {
	return len(r.Series) == 0
}

// Process computes domains and assigns colours. Empty data or series yield
// an empty Result rather than an error; values that do not coerce to a
// number count as zero.
func Process(data []chart.Record, series []chart.Series, xKey string, palette []string) Result {
	if len(data) == 0 || len(series) == 0 {
		return Result{LeftY: DefaultExtent, RightY: DefaultExtent}
	}
	if len(palette) == 0 {
		palette = chart.DefaultPalette
	}

	processed := make([]chart.Series, 0, len(series))
	for i, s := range series {
		if s == nil {
			continue
		}
		c := chart.Clone(s)
		b := c.Base()
		if b.Color == "" {
			b.Color = palette[i%len(palette)]
		}
		b.YAxis = b.Axis()
		processed = append(processed, c)
	}

	res := Result{
		X:      XExtent(data, xKey),
		Series: processed,
	}
	res.LeftY, res.LeftUsed = YExtent(data, processed, chart.AxisLeft)
	res.RightY, res.RightUsed = YExtent(data, processed, chart.AxisRight)
	return res
}

// XExtent classifies the x column from its first value and computes the
// matching domain.
func XExtent(data []chart.Record, xKey string) XDomain {
	if len(data) == 0 {
		return XDomain{Kind: XCategorical}
	}
	first := data[0].Value(xKey)

	if _, ok := chart.Time(first); ok {
		d := XDomain{Kind: XTemporal}
		seen := false
		for _, r := range data {
			t, ok := chart.Time(r.Value(xKey))
			if !ok {
				continue
			}
			if !seen || t.Before(d.Start) {
				d.Start = t
			}
			if !seen || t.After(d.End) {
				d.End = t
			}
			seen = true
		}
		d.Min, d.Max = float64(d.Start.UnixMilli()), float64(d.End.UnixMilli())
		return d
	}

	if chart.IsNumeric(first) {
		d := XDomain{Kind: XNumeric, Min: math.Inf(1), Max: math.Inf(-1)}
		for _, r := range data {
			v, ok := chart.NumberOK(r.Value(xKey))
			if !ok {
				continue
			}
			d.Min, d.Max = math.Min(d.Min, v), math.Max(d.Max, v)
		}
		// No finite value: a collapsed domain, nothing gets plotted.
		if d.Min > d.Max {
			d.Min, d.Max = 0, 0
		}
		return d
	}

	d := XDomain{Kind: XCategorical}
	seen := make(map[string]struct{}, len(data))
	for _, r := range data {
		v := r.Value(xKey)
		if v == nil {
			continue
		}
		label := chart.Label(v)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		d.Categories = append(d.Categories, label)
	}
	return d
}

// YExtent computes the domain for one axis and whether any series uses it.
func YExtent(data []chart.Record, series []chart.Series, axis chart.Axis) (Extent, bool) {
	var (
		values  []float64
		used    bool
		stacked bool
		groups  = make(map[string][]string)
		order   []string
	)

	for _, s := range series {
		b := s.Base()
		if b.Axis() != axis {
			continue
		}
		used = true
		switch t := s.(type) {
		case *chart.StackedAreaSeries:
			stacked = true
			if _, ok := groups[t.StackGroupKey]; !ok {
				order = append(order, t.StackGroupKey)
			}
			groups[t.StackGroupKey] = append(groups[t.StackGroupKey], b.DataKey)
		case *chart.WaterfallSeries:
			values = append(values, stack.Markers(WaterfallSteps(data, t))...)
		default:
			for _, r := range data {
				values = append(values, chart.Number(r.Value(b.DataKey)))
			}
		}
	}

	for _, g := range order {
		keys := groups[g]
		for _, r := range data {
			sum := 0.0
			for _, k := range keys {
				sum += chart.Number(r.Value(k))
			}
			values = append(values, sum)
		}
	}

	if !used {
		return DefaultExtent, false
	}
	if len(values) == 0 {
		return DefaultExtent, true
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	floor := math.Min(0, lo)
	if stacked {
		floor = 0
	}
	ceil := hi * Headroom
	if hi <= 0 {
		ceil = 0
	}
	if ceil <= floor {
		ceil = floor + 1
	}
	return Extent{Min: floor, Max: ceil}, true
}

// WaterfallSteps runs the waterfall algorithm over the series' records.
func WaterfallSteps(data []chart.Record, s *chart.WaterfallSeries) []stack.Step {
	rows := make([]stack.Row, len(data))
	typeKey := s.TypeField()
	for i, r := range data {
		v := chart.Number(r.Value(s.DataKey))
		rows[i] = stack.Row{
			Value: v,
			Kind:  stack.ParseStepKind(chart.Label(r.Value(typeKey)), v),
		}
	}
	return stack.Waterfall(rows)
}
