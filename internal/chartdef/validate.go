package chartdef

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/stack"
)

var markTypes = []chart.MarkType{
	chart.MarkBar, chart.MarkLine, chart.MarkArea,
	chart.MarkStackedArea, chart.MarkScatter, chart.MarkWaterfall,
}

// Validate reports every problem in d. The engine renders invalid input
// as best it can; validation is for authors.
func (d *Definition) Validate() error {
	var err error
	field := func(name string, value any, msg string, hints ...string) {
		err = multierr.Append(err, errors.NewFieldValidationError(name, value, msg, hints...))
	}

	if d.XKey == "" {
		field("xKey", d.XKey, "required")
	}
	if d.Width < 0 {
		field("width", d.Width, "must not be negative")
	}
	if d.Height < 0 {
		field("height", d.Height, "must not be negative")
	}
	if d.DataFile != "" && len(d.Data) > 0 {
		field("dataFile", d.DataFile, "cannot be combined with inline data")
	}
	if a := d.Animation; a != nil && a.Duration < 0 {
		field("animation.duration", a.Duration, "must not be negative")
	}
	if len(d.Series) == 0 {
		field("series", nil, "at least one series is required")
	}

	for i, raw := range d.Series {
		prefix := fmt.Sprintf("series[%d]", i)
		t := SeriesType(raw)
		if !t.Valid() {
			field(prefix+".type", raw["type"], "unknown series type",
				fmt.Sprintf("use one of %v", markTypes))
			continue
		}
		s, decodeErr := DecodeSeries(raw)
		if decodeErr != nil {
			field(prefix, nil, decodeErr.Error())
			continue
		}
		err = multierr.Append(err, validateSeries(prefix, s))
	}

	if err != nil && d.Path != "" {
		err = errors.WrapValidation(err, errors.ErrCodeValidationFailed, "invalid chart definition").
			WithLocation(d.Path, 0)
	}
	return err
}

func validateSeries(prefix string, s chart.Series) error {
	var err error
	field := func(name string, value any, msg string, hints ...string) {
		err = multierr.Append(err, errors.NewFieldValidationError(prefix+"."+name, value, msg, hints...))
	}

	b := s.Base()
	if b.DataKey == "" {
		field("dataKey", b.DataKey, "required")
	}
	if b.YAxis != "" && !b.YAxis.Valid() {
		field("yAxis", b.YAxis, "must be left or right")
	}

	curve := func(c chart.Curve) {
		if !c.Valid() {
			field("curve", c, "unknown curve", "use linear, monotone, cardinal, basis or step")
		}
	}
	switch t := s.(type) {
	case *chart.LineSeries:
		curve(t.Curve)
	case *chart.AreaSeries:
		curve(t.Curve)
		if t.Gradient != nil && len(t.Gradient.Stops) == 0 {
			field("gradient.stops", nil, "a gradient needs at least one stop")
		}
	case *chart.StackedAreaSeries:
		curve(t.Curve)
		if !t.StackOrder.Valid() {
			field("stackOrder", t.StackOrder, "unknown stack order",
				fmt.Sprintf("use one of %v", []stack.Order{stack.OrderNone, stack.OrderAscending, stack.OrderDescending, stack.OrderInsideOut, stack.OrderReverse}))
		}
		if !t.StackOffset.Valid() {
			field("stackOffset", t.StackOffset, "unknown stack offset",
				fmt.Sprintf("use one of %v", []stack.Offset{stack.OffsetNone, stack.OffsetExpand, stack.OffsetDiverging, stack.OffsetSilhouette, stack.OffsetWiggle}))
		}
	case *chart.ScatterSeries:
		if !t.RegressionType.Valid() {
			field("regressionType", t.RegressionType, "must be linear or polynomial")
		}
		if n := len(t.SizeRange); n != 0 && (n != 2 || t.SizeRange[0] > t.SizeRange[1] || t.SizeRange[0] < 0) {
			field("sizeRange", t.SizeRange, "must be [min, max] with 0 <= min <= max")
		}
		if t.Radius < 0 {
			field("radius", t.Radius, "must not be negative")
		}
	case *chart.BarSeries:
		if t.Radius < 0 {
			field("radius", t.Radius, "must not be negative")
		}
	}
	return err
}
