package scale

import (
	"slices"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/domain"
)

// Set is the trio of scales a render pass uses. LeftY and RightY are nil
// when no series targets that axis.
type Set struct {
	X      Scale
	LeftY  Scale
	RightY Scale
}

// Y returns the scale for a value axis.
func (s Set) Y(axis chart.Axis) (Scale, bool) {
	if axis == chart.AxisRight {
		return s.RightY, s.RightY != nil
	}
	return s.LeftY, s.LeftY != nil
}

// XConfig chooses the x scale for a domain: time for temporal columns,
// niced linear for numeric ones and a padded band scale for categories.
func XConfig(x domain.XDomain, area chart.ContentArea) Config {
	rng := [2]float64{0, area.Width}
	switch x.Kind {
	case domain.XTemporal:
		return Config{Kind: KindTime, Domain: []any{x.Start, x.End}, Range: rng}
	case domain.XNumeric:
		return Config{Kind: KindLinear, Domain: []any{x.Min, x.Max}, Range: rng, Nice: true}
	}
	cats := make([]any, len(x.Categories))
	for i, c := range x.Categories {
		cats[i] = c
	}
	return Config{Kind: KindBand, Domain: cats, Range: rng, Padding: DefaultBandPadding}
}

// YConfig is the niced, inverted linear scale for a value axis.
func YConfig(e domain.Extent, area chart.ContentArea) Config {
	return Config{
		Kind:   KindLinear,
		Domain: []any{e.Min, e.Max},
		Range:  [2]float64{area.Height, 0},
		Nice:   true,
	}
}

// axesUsed reports which value axes any series targets.
func axesUsed(series []chart.Series) (left, right bool) {
	for _, s := range series {
		if s == nil {
			continue
		}
		if s.Base().Axis() == chart.AxisRight {
			right = true
		} else {
			left = true
		}
	}
	return left, right
}

// RegisterScales builds the x scale and the value-axis scales that at least
// one series needs, publishing each through register.
func RegisterScales(register RegisterFunc, x domain.XDomain, left, right domain.Extent,
	area chart.ContentArea, series []chart.Series,
) (Set, error) {
	var set Set
	var err error
	if set.X, err = register(KeyX, XConfig(x, area), AxisX); err != nil {
		return Set{}, err
	}
	useLeft, useRight := axesUsed(series)
	if useLeft {
		if set.LeftY, err = register(KeyLeftY, YConfig(left, area), AxisY); err != nil {
			return Set{}, err
		}
	}
	if useRight {
		if set.RightY, err = register(KeyRightY, YConfig(right, area), AxisY2); err != nil {
			return Set{}, err
		}
	}
	return set, nil
}

type inputs struct {
	x           domain.XDomain
	left, right domain.Extent
	area        chart.ContentArea
	useLeft     bool
	useRight    bool
}

func (a inputs) equal(b inputs) bool {
	return a.x.Kind == b.x.Kind &&
		a.x.Min == b.x.Min && a.x.Max == b.x.Max &&
		a.x.Start.Equal(b.x.Start) && a.x.End.Equal(b.x.End) &&
		slices.Equal(a.x.Categories, b.x.Categories) &&
		a.left == b.left && a.right == b.right && a.area == b.area &&
		a.useLeft == b.useLeft && a.useRight == b.useRight
}

// Coordinator rebuilds the registry only when its inputs change, so
// repeated renders with identical inputs read the very same scale
// instances.
type Coordinator struct {
	last     *inputs
	registry *Registry
	set      Set
}

// NewCoordinator returns a coordinator with no cached pass.
func NewCoordinator() *Coordinator { return &Coordinator{} }

// Scales returns the frozen registry and scale set for the given inputs.
// The second return value reports whether a cached registry was reused.
func (c *Coordinator) Scales(res domain.Result, area chart.ContentArea) (*Registry, Set, bool, error) {
	useLeft, useRight := axesUsed(res.Series)
	in := inputs{x: res.X, left: res.LeftY, right: res.RightY, area: area, useLeft: useLeft, useRight: useRight}
	if c.last != nil && c.last.equal(in) {
		return c.registry, c.set, true, nil
	}

	reg := NewRegistry()
	set, err := RegisterScales(reg.Register, res.X, res.LeftY, res.RightY, area, res.Series)
	if err != nil {
		return nil, Set{}, false, err
	}
	reg.Freeze()

	in.x.Categories = slices.Clone(in.x.Categories)
	c.last, c.registry, c.set = &in, reg, set
	return reg, set, false, nil
}

// Reset drops the cached pass.
func (c *Coordinator) Reset() {
	c.last, c.registry, c.set = nil, nil, Set{}
}
