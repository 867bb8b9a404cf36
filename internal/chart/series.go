package chart

import (
	"github.com/conneroisu/combochart/internal/regression"
	"github.com/conneroisu/combochart/internal/stack"
)

// MarkType identifies the series variant.
type MarkType string

const (
	MarkBar         MarkType = "bar"
	MarkLine        MarkType = "line"
	MarkArea        MarkType = "area"
	MarkStackedArea MarkType = "stackedArea"
	MarkScatter     MarkType = "scatter"
	MarkWaterfall   MarkType = "waterfall"
)

// ZOrder is the fixed layering rank; lower ranks are drawn first.
func (m MarkType) ZOrder() int {
	switch m {
	case MarkStackedArea:
		return 0
	case MarkArea:
		return 1
	case MarkBar:
		return 2
	case MarkWaterfall:
		return 3
	case MarkScatter:
		return 4
	case MarkLine:
		return 5
	default:
		return 6
	}
}

// Valid reports whether m names a known variant.
func (m MarkType) Valid() bool {
	return m.ZOrder() < 6
}

// Axis selects which value axis a series is plotted against.
type Axis string

const (
	AxisLeft  Axis = "left"
	AxisRight Axis = "right"
)

// Valid reports whether a is left or right.
func (a Axis) Valid() bool {
	return a == AxisLeft || a == AxisRight
}

// Curve selects the interpolation used for line and area paths.
type Curve string

const (
	CurveLinear   Curve = "linear"
	CurveMonotone Curve = "monotone"
	CurveCardinal Curve = "cardinal"
	CurveBasis    Curve = "basis"
	CurveStep     Curve = "step"
)

// Valid reports whether c is a known curve (empty means linear).
func (c Curve) Valid() bool {
	switch c {
	case "", CurveLinear, CurveMonotone, CurveCardinal, CurveBasis, CurveStep:
		return true
	}
	return false
}

// Series is the descriptor union. Each variant embeds SeriesBase and carries
// only the fields relevant to its mark type.
type Series interface {
	Type() MarkType
	Base() *SeriesBase
}

// SeriesBase carries the fields shared by all variants.
type SeriesBase struct {
	ID      string `mapstructure:"id" json:"id,omitempty" yaml:"id,omitempty"`
	DataKey string `mapstructure:"dataKey" json:"dataKey" yaml:"dataKey"`
	Name    string `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`
	YAxis   Axis   `mapstructure:"yAxis" json:"yAxis,omitempty" yaml:"yAxis,omitempty"`
	Color   string `mapstructure:"color" json:"color,omitempty" yaml:"color,omitempty"`
}

// Base returns b itself so embedding types satisfy Series.
func (b *SeriesBase) Base() *SeriesBase { return b }

// Axis returns the target axis, defaulting to left.
func (b *SeriesBase) Axis() Axis {
	if b.YAxis == AxisRight {
		return AxisRight
	}
	return AxisLeft
}

// Key is the stable identity used for layers and mark keys.
func (b *SeriesBase) Key() string {
	if b.ID != "" {
		return b.ID
	}
	return b.DataKey
}

// BarSeries renders one rect per record. Bars sharing BarGroupKey (or all
// bars without one) are clustered side by side.
type BarSeries struct {
	SeriesBase  `mapstructure:",squash"`
	BarGroupKey string  `mapstructure:"barGroupKey"`
	Radius      float64 `mapstructure:"radius"`
	Opacity     float64 `mapstructure:"opacity"`
}

func (*BarSeries) Type() MarkType { return MarkBar }

// LineSeries renders a path through the ordered points.
type LineSeries struct {
	SeriesBase  `mapstructure:",squash"`
	Curve       Curve   `mapstructure:"curve"`
	StrokeWidth float64 `mapstructure:"strokeWidth"`
	ShowPoints  bool    `mapstructure:"showPoints"`
	PointRadius float64 `mapstructure:"pointRadius"`
	Dashed      bool    `mapstructure:"dashed"`
}

func (*LineSeries) Type() MarkType { return MarkLine }

// GradientStop is one colour stop of a linear gradient fill.
type GradientStop struct {
	Offset  float64 `mapstructure:"offset"`
	Color   string  `mapstructure:"color"`
	Opacity float64 `mapstructure:"opacity"`
}

// Gradient is a caller-supplied vertical linear gradient.
type Gradient struct {
	ID    string         `mapstructure:"id"`
	Stops []GradientStop `mapstructure:"stops"`
}

// AreaSeries fills between the curve and a baseline.
type AreaSeries struct {
	SeriesBase `mapstructure:",squash"`
	Curve      Curve     `mapstructure:"curve"`
	Opacity    float64   `mapstructure:"opacity"`
	Baseline   *float64  `mapstructure:"baseline"`
	Gradient   *Gradient `mapstructure:"gradient"`
}

func (*AreaSeries) Type() MarkType { return MarkArea }

// StackedAreaSeries is one layer of a stack group.
type StackedAreaSeries struct {
	SeriesBase    `mapstructure:",squash"`
	StackGroupKey string       `mapstructure:"stackGroupKey"`
	StackOrder    stack.Order  `mapstructure:"stackOrder"`
	StackOffset   stack.Offset `mapstructure:"stackOffset"`
	Curve         Curve        `mapstructure:"curve"`
	Opacity       float64      `mapstructure:"opacity"`
}

func (*StackedAreaSeries) Type() MarkType { return MarkStackedArea }

// ScatterSeries renders one circle per record, optionally with a trend line.
type ScatterSeries struct {
	SeriesBase     `mapstructure:",squash"`
	Radius         float64         `mapstructure:"radius"`
	SizeKey        string          `mapstructure:"sizeKey"`
	SizeRange      []float64       `mapstructure:"sizeRange"`
	GroupKey       string          `mapstructure:"groupKey"`
	Opacity        float64         `mapstructure:"opacity"`
	ShowRegression bool            `mapstructure:"showRegression"`
	RegressionType regression.Kind `mapstructure:"regressionType"`
	ShowEquation   bool            `mapstructure:"showEquation"`
	ShowRSquared   bool            `mapstructure:"showRSquared"`
}

func (*ScatterSeries) Type() MarkType { return MarkScatter }

// WaterfallColors overrides the per-classification bar colours.
type WaterfallColors struct {
	Positive string `mapstructure:"positive"`
	Negative string `mapstructure:"negative"`
	Total    string `mapstructure:"total"`
	Subtotal string `mapstructure:"subtotal"`
}

// WaterfallSeries renders running-total bars.
type WaterfallSeries struct {
	SeriesBase     `mapstructure:",squash"`
	TypeKey        string          `mapstructure:"typeKey"`
	Colors         WaterfallColors `mapstructure:"colors"`
	ShowConnectors bool            `mapstructure:"showConnectors"`
}

func (*WaterfallSeries) Type() MarkType { return MarkWaterfall }

// TypeField returns the record field holding the row classification.
func (w *WaterfallSeries) TypeField() string {
	if w.TypeKey == "" {
		return "type"
	}
	return w.TypeKey
}

// Clone returns a shallow copy of s with its own SeriesBase so that
// post-processing never mutates caller-owned descriptors.
func Clone(s Series) Series {
	switch t := s.(type) {
	case *BarSeries:
		c := *t
		return &c
	case *LineSeries:
		c := *t
		return &c
	case *AreaSeries:
		c := *t
		return &c
	case *StackedAreaSeries:
		c := *t
		return &c
	case *ScatterSeries:
		c := *t
		return &c
	case *WaterfallSeries:
		c := *t
		return &c
	}
	return s
}
