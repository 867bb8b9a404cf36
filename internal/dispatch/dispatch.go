// Package dispatch is the layering engine. It orders series by mark type,
// clusters bars and stacks areas that share a group key, resolves each
// series' value scale and hands the points to the matching shape
// primitive.
package dispatch

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/domain"
	"github.com/conneroisu/combochart/internal/logging"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/shapes"
)

// DefaultSizeRange is the radius range for size-encoded scatter points.
var DefaultSizeRange = [2]float64{4, 20}

// Input is one render pass worth of data.
type Input struct {
	Data    []chart.Record
	Series  []chart.Series
	XKey    string
	Scales  scale.Set
	Palette []string
	// Hovered is the Ref of the mark under the pointer, if any.
	Hovered Ref
}

// Ref addresses one mark: the layer it lives in and its key there.
type Ref struct {
	Layer string `json:"layer"`
	Key   string `json:"key"`
}

// String renders the ref as "layer/key".
func (r Ref) String() string { return r.Layer + "/" + r.Key }

// Target is what a mark stands for, for event delivery.
type Target struct {
	Series chart.Series
	Datum  chart.Datum
}

// Layer is the output for one series or stack group.
type Layer struct {
	ID     string
	Class  string
	Series []chart.Series
	Result shapes.Result
}

// Plan is the ordered set of layers for a pass.
type Plan struct {
	Layers  []Layer
	Targets map[Ref]Target
	// Skipped lists the keys of series that could not be drawn because
	// their value axis has no scale.
	Skipped []string
}

// Dispatcher builds plans.
type Dispatcher struct {
	log logging.Logger
}

// New returns a dispatcher that logs through log.
func New(log logging.Logger) *Dispatcher {
	return &Dispatcher{log: logging.OrNop(log).WithComponent("dispatch")}
}

// Sort orders series by mark type for painting: stacked areas first, lines
// last. Series of the same type keep their input order.
func Sort(series []chart.Series) []chart.Series {
	out := make([]chart.Series, 0, len(series))
	for _, s := range series {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Type().ZOrder() < out[j].Type().ZOrder()
	})
	return out
}

// Plan lays out every series. It never fails: series whose value axis has
// no scale are skipped and logged, and malformed records are dropped by
// the primitives.
func (d *Dispatcher) Plan(ctx context.Context, in Input) Plan {
	plan := Plan{Targets: make(map[Ref]Target)}
	if len(in.Data) == 0 || len(in.Series) == 0 || in.Scales.X == nil {
		return plan
	}
	ordered := Sort(in.Series)

	renderable := make([]chart.Series, 0, len(ordered))
	for _, s := range ordered {
		if _, ok := in.Scales.Y(s.Base().Axis()); !ok {
			d.log.Warn(ctx, nil, "Skipping series without a scale",
				"series", s.Base().Key(), "axis", string(s.Base().Axis()))
			plan.Skipped = append(plan.Skipped, s.Base().Key())
			continue
		}
		renderable = append(renderable, s)
	}

	bars := barClusters(renderable)
	stacks := stackGroups(renderable)
	ids := make(map[string]int)
	stacked := make(map[stackKey]bool)

	for _, s := range renderable {
		y, _ := in.Scales.Y(s.Base().Axis())
		switch t := s.(type) {
		case *chart.StackedAreaSeries:
			k := stackKey{axis: t.Axis(), group: t.StackGroupKey}
			if stacked[k] {
				continue
			}
			stacked[k] = true
			d.add(&plan, d.unique(ids, k.layerID()), string(chart.MarkStackedArea), stacks[k],
				d.stackGroup(in, stacks[k], y), in)
		case *chart.BarSeries:
			c := bars[t.BarGroupKey]
			if c.results == nil {
				c.results = d.cluster(in, c)
			}
			d.add(&plan, d.unique(ids, "series:"+t.Key()), string(chart.MarkBar), []chart.Series{s}, c.results[c.index[t]], in)
		case *chart.LineSeries:
			res := shapes.Line(d.points(in, s), in.Scales.X, y, shapes.LineStyle{
				Color:       t.Color,
				Curve:       t.Curve,
				StrokeWidth: t.StrokeWidth,
				Dashed:      t.Dashed,
				ShowPoints:  t.ShowPoints,
				PointRadius: t.PointRadius,
			})
			d.add(&plan, d.unique(ids, "series:"+t.Key()), string(chart.MarkLine), []chart.Series{s}, res, in)
		case *chart.AreaSeries:
			g := t.Gradient
			if g != nil && g.ID == "" {
				c := *g
				c.ID = "gradient-" + t.Key()
				g = &c
			}
			res := shapes.Area(d.points(in, s), in.Scales.X, y, shapes.AreaStyle{
				Color:    t.Color,
				Curve:    t.Curve,
				Opacity:  t.Opacity,
				Gradient: g,
				Baseline: t.Baseline,
			})
			d.add(&plan, d.unique(ids, "series:"+t.Key()), string(chart.MarkArea), []chart.Series{s}, res, in)
		case *chart.ScatterSeries:
			d.scatter(ctx, &plan, ids, in, t, y)
		case *chart.WaterfallSeries:
			res := shapes.Waterfall(d.points(in, s), domain.WaterfallSteps(in.Data, t), in.Scales.X, y,
				shapes.WaterfallStyle{Colors: t.Colors, ShowConnectors: t.ShowConnectors})
			d.add(&plan, d.unique(ids, "series:"+t.Key()), string(chart.MarkWaterfall), []chart.Series{s}, res, in)
		}
	}
	return plan
}

func (d *Dispatcher) scatter(ctx context.Context, plan *Plan, ids map[string]int, in Input, t *chart.ScatterSeries, y scale.Scale) {
	pts := d.points(in, t)
	style := shapes.ScatterStyle{
		Color:   t.Color,
		Radius:  t.Radius,
		Opacity: t.Opacity,
	}
	if t.SizeKey != "" {
		style.Size = sizeScale(pts, t.SizeRange)
	}
	if t.GroupKey != "" {
		style.Colors = scale.NewOrdinal(in.Palette)
	}
	id := d.unique(ids, "series:"+t.Key())
	if in.Hovered.Layer == id {
		style.Hovered = in.Hovered.Key
	}
	d.add(plan, id, string(chart.MarkScatter), []chart.Series{t}, shapes.Scatter(pts, in.Scales.X, y, style), in)

	if !t.ShowRegression {
		return
	}
	res, _, ok := shapes.RegressionLine(pts, in.Scales.X, y, shapes.RegressionStyle{
		Kind:         t.RegressionType,
		Color:        t.Color,
		ShowEquation: t.ShowEquation,
		ShowRSquared: t.ShowRSquared,
	})
	if !ok {
		d.log.Debug(ctx, "No regression line for degenerate input", "series", t.Key())
		return
	}
	d.add(plan, d.unique(ids, "regression:"+t.Key()), "regression", []chart.Series{t}, res, in)
}

// unique returns id, suffixed when an earlier layer already took it.
func (d *Dispatcher) unique(ids map[string]int, id string) string {
	n := ids[id]
	ids[id] = n + 1
	if n == 0 {
		return id
	}
	return id + "#" + strconv.Itoa(n+1)
}

// add appends a layer and indexes its marks for event delivery.
func (d *Dispatcher) add(plan *Plan, id, class string, series []chart.Series, res shapes.Result, in Input) {
	l := Layer{ID: id, Class: class, Series: series, Result: res}
	plan.Layers = append(plan.Layers, l)
	d.index(plan, l, in)
}

func (d *Dispatcher) index(plan *Plan, l Layer, in Input) {
	for key, i := range l.Result.Hits {
		t := Target{Series: l.Series[0], Datum: chart.Datum{Index: i}}
		if len(l.Series) > 1 {
			for _, s := range l.Series {
				if s.Base().Key() == key {
					t.Series = s
				}
			}
		}
		if i >= 0 && i < len(in.Data) {
			r := in.Data[i]
			t.Datum.X = r.Value(in.XKey)
			t.Datum.Y = chart.Number(r.Value(t.Series.Base().DataKey))
			t.Datum.Record = r
		}
		plan.Targets[Ref{Layer: l.ID, Key: key}] = t
	}
}

// points converts records to primitive input. Values that do not coerce
// to a finite number become NaN so the primitive drops them.
func (d *Dispatcher) points(in Input, s chart.Series) []shapes.Point {
	b := s.Base()
	var sizeKey, groupKey string
	if sc, ok := s.(*chart.ScatterSeries); ok {
		sizeKey, groupKey = sc.SizeKey, sc.GroupKey
	}
	out := make([]shapes.Point, len(in.Data))
	for i, r := range in.Data {
		p := shapes.Point{
			Key:    shapes.PointKey(r, i),
			Index:  i,
			X:      r.Value(in.XKey),
			Y:      numberOrNaN(r.Value(b.DataKey)),
			Size:   math.NaN(),
			Record: r,
		}
		if sizeKey != "" {
			p.Size = numberOrNaN(r.Value(sizeKey))
		}
		if groupKey != "" {
			p.Group = r.Value(groupKey)
		}
		out[i] = p
	}
	return out
}

func numberOrNaN(v any) float64 {
	if f, ok := chart.NumberOK(v); ok {
		return f
	}
	return math.NaN()
}

func sizeScale(pts []shapes.Point, rng []float64) scale.Continuous {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if !math.IsNaN(p.Size) {
			lo, hi = math.Min(lo, p.Size), math.Max(hi, p.Size)
		}
	}
	if math.IsInf(lo, 1) {
		return nil
	}
	r := DefaultSizeRange
	if len(rng) == 2 {
		r = [2]float64{rng[0], rng[1]}
	}
	return scale.NewSqrt(lo, hi, r[0], r[1])
}

func (d *Dispatcher) stackGroup(in Input, members []chart.Series, y scale.Scale) shapes.Result {
	xs := make([]any, len(in.Data))
	for i, r := range in.Data {
		xs[i] = r.Value(in.XKey)
	}
	layers := make([]shapes.StackedLayer, len(members))
	var style shapes.StackedStyle
	for i, s := range members {
		t := s.(*chart.StackedAreaSeries)
		values := make([]float64, len(in.Data))
		for j, r := range in.Data {
			values[j] = numberOrNaN(r.Value(t.DataKey))
		}
		layers[i] = shapes.StackedLayer{Key: t.Key(), Color: t.Color, Values: values}
		if i == 0 {
			style = shapes.StackedStyle{Order: t.StackOrder, Offset: t.StackOffset, Curve: t.Curve, Opacity: t.Opacity}
		}
	}
	return shapes.StackedArea(xs, layers, in.Scales.X, y, style)
}

func groupName(g string) string {
	if g == "" {
		return "default"
	}
	return g
}

// cluster is a bar group: its members in paint order and, once drawn,
// their results.
type cluster struct {
	members []*chart.BarSeries
	index   map[*chart.BarSeries]int
	results []shapes.Result
}

func (d *Dispatcher) cluster(in Input, c *cluster) []shapes.Result {
	members := make([]shapes.BarMember, len(c.members))
	for i, b := range c.members {
		y, _ := in.Scales.Y(b.Axis())
		members[i] = shapes.BarMember{
			Points: d.points(in, b),
			Y:      y,
			Style:  shapes.BarStyle{Color: b.Color, Opacity: b.Opacity, Radius: b.Radius},
		}
	}
	return shapes.MultiBar(members, in.Scales.X)
}

func barClusters(series []chart.Series) map[string]*cluster {
	out := make(map[string]*cluster)
	for _, s := range series {
		b, ok := s.(*chart.BarSeries)
		if !ok {
			continue
		}
		c, ok := out[b.BarGroupKey]
		if !ok {
			c = &cluster{index: make(map[*chart.BarSeries]int)}
			out[b.BarGroupKey] = c
		}
		c.index[b] = len(c.members)
		c.members = append(c.members, b)
	}
	return out
}

// stackKey identifies a stacked-area group. Groups never span axes: the
// domain stage sums each axis separately.
type stackKey struct {
	axis  chart.Axis
	group string
}

// layerID is stack:<group> on the left axis and stack:right:<group> on
// the right one.
func (k stackKey) layerID() string {
	if k.axis == chart.AxisRight {
		return "stack:right:" + groupName(k.group)
	}
	return "stack:" + groupName(k.group)
}

func stackGroups(series []chart.Series) map[stackKey][]chart.Series {
	out := make(map[stackKey][]chart.Series)
	for _, s := range series {
		if t, ok := s.(*chart.StackedAreaSeries); ok {
			k := stackKey{axis: t.Axis(), group: t.StackGroupKey}
			out[k] = append(out[k], s)
		}
	}
	return out
}
