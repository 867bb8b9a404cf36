package stack

import "strings"

// StepKind classifies a waterfall row.
type StepKind string

const (
	StepPositive StepKind = "positive"
	StepNegative StepKind = "negative"
	StepTotal    StepKind = "total"
	StepSubtotal StepKind = "subtotal"
)

// ParseStepKind maps a row classification, falling back to the sign of the
// value when the label is missing or unknown.
func ParseStepKind(label string, value float64) StepKind {
	switch StepKind(strings.ToLower(strings.TrimSpace(label))) {
	case StepTotal:
		return StepTotal
	case StepSubtotal:
		return StepSubtotal
	case StepPositive:
		return StepPositive
	case StepNegative:
		return StepNegative
	}
	if value < 0 {
		return StepNegative
	}
	return StepPositive
}

// IsAnchor reports whether the row resets the running total.
func (k StepKind) IsAnchor() bool {
	return k == StepTotal || k == StepSubtotal
}

// Step is one row of a waterfall.
//
// Before and After are the running totals around the row. For anchor rows
// Before keeps the pre-reset total and After is the row's own value. The
// bar drawn for the row spans [BarLow, BarHigh]: Before..After for deltas,
// 0..value for anchors.
type Step struct {
	Index  int
	Kind   StepKind
	Value  float64
	Before float64
	After  float64
}

// BarBounds returns the ordered extent of the row's bar.
func (s Step) BarBounds() (low, high float64) {
	a, b := s.Before, s.After
	if s.Kind.IsAnchor() {
		a = 0
	}
	if a > b {
		a, b = b, a
	}
	return a, b
}

// Row is the input to Waterfall.
type Row struct {
	Value float64
	Kind  StepKind
}

// Waterfall runs the cumulative algorithm: deltas add their signed value
// to the running total; totals and subtotals anchor it to their own value.
func Waterfall(rows []Row) []Step {
	steps := make([]Step, len(rows))
	cumulative := 0.0
	for i, r := range rows {
		before := cumulative
		if r.Kind.IsAnchor() {
			cumulative = r.Value
		} else {
			cumulative += r.Value
		}
		steps[i] = Step{
			Index:  i,
			Kind:   r.Kind,
			Value:  r.Value,
			Before: before,
			After:  cumulative,
		}
	}
	return steps
}

// Markers returns every Before and After value, which is what a value axis
// must contain so no partial-sum bar is clipped.
func Markers(steps []Step) []float64 {
	out := make([]float64, 0, 2*len(steps))
	for _, s := range steps {
		out = append(out, s.Before, s.After)
	}
	return out
}
