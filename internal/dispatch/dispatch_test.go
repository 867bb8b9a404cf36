package dispatch

import (
	"context"
	"testing"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/domain"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var area = chart.ContentArea{Width: 600, Height: 300}

func input(t *testing.T, data []chart.Record, series []chart.Series, xKey string) Input {
	t.Helper()
	res := domain.Process(data, series, xKey, nil)
	set, err := scale.RegisterScales(scale.NewRegistry().Register, res.X, res.LeftY, res.RightY, area, res.Series)
	require.NoError(t, err)
	return Input{Data: data, Series: res.Series, XKey: xKey, Scales: set, Palette: chart.DefaultPalette}
}

func layerIDs(p Plan) []string {
	out := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		out[i] = l.ID
	}
	return out
}

func TestPlanComboScenario(t *testing.T) {
	data := []chart.Record{
		{"m": "Jan", "a": 10, "b": 20},
		{"m": "Feb", "a": 15, "b": 5},
	}
	series := []chart.Series{
		&chart.LineSeries{SeriesBase: chart.SeriesBase{DataKey: "b", YAxis: chart.AxisRight}},
		&chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "a", YAxis: chart.AxisLeft}},
	}
	in := input(t, data, series, "m")

	plan := New(nil).Plan(context.Background(), in)
	require.Equal(t, []string{"series:a", "series:b"}, layerIDs(plan))
	assert.Empty(t, plan.Skipped)

	bars := plan.Layers[0].Result.Specs
	require.Len(t, bars, 2)
	band := in.Scales.X.(*scale.Band)
	for _, b := range bars {
		assert.Equal(t, scene.KindRect, b.Kind)
		w, _ := b.Target.Get("width")
		assert.InDelta(t, band.Bandwidth(), w, 1e-9, "a lone bar fills its band")
	}

	line := plan.Layers[1].Result.Specs
	require.Len(t, line, 1)
	assert.Equal(t, scene.KindPath, line[0].Kind)
	assert.Len(t, line[0].Target.Path, 2)

	target, ok := plan.Targets[Ref{Layer: "series:a", Key: "1"}]
	require.True(t, ok)
	assert.Equal(t, "Feb", target.Datum.X)
	assert.Equal(t, 15.0, target.Datum.Y)
	assert.Equal(t, "a", target.Series.Base().DataKey)
}

func TestSortZOrder(t *testing.T) {
	mk := func(m chart.MarkType, key string) chart.Series {
		b := chart.SeriesBase{DataKey: key}
		switch m {
		case chart.MarkLine:
			return &chart.LineSeries{SeriesBase: b}
		case chart.MarkScatter:
			return &chart.ScatterSeries{SeriesBase: b}
		case chart.MarkWaterfall:
			return &chart.WaterfallSeries{SeriesBase: b}
		case chart.MarkBar:
			return &chart.BarSeries{SeriesBase: b}
		case chart.MarkArea:
			return &chart.AreaSeries{SeriesBase: b}
		}
		return &chart.StackedAreaSeries{SeriesBase: b}
	}
	in := []chart.Series{
		mk(chart.MarkLine, "l1"), mk(chart.MarkScatter, "s"), mk(chart.MarkWaterfall, "w"),
		mk(chart.MarkBar, "b"), mk(chart.MarkArea, "a"), mk(chart.MarkStackedArea, "st"),
		mk(chart.MarkLine, "l2"), nil,
	}
	var got []string
	for _, s := range Sort(in) {
		got = append(got, s.Base().DataKey)
	}
	assert.Equal(t, []string{"st", "a", "b", "w", "s", "l1", "l2"}, got)
}

func TestPlanSkipsSeriesWithoutScale(t *testing.T) {
	data := []chart.Record{{"x": 1, "v": 3}, {"x": 2, "v": 4}}
	series := []chart.Series{&chart.LineSeries{SeriesBase: chart.SeriesBase{DataKey: "v", YAxis: chart.AxisRight}}}
	in := input(t, data, series, "x")
	require.Nil(t, in.Scales.LeftY)

	// A left series arriving with scales built for the right axis only.
	in.Series = append(in.Series, &chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "v", ID: "orphan"}})
	plan := New(nil).Plan(context.Background(), in)

	assert.Equal(t, []string{"orphan"}, plan.Skipped)
	assert.Equal(t, []string{"series:v"}, layerIDs(plan))
}

func TestPlanEmptyInputs(t *testing.T) {
	d := New(nil)
	assert.Empty(t, d.Plan(context.Background(), Input{}).Layers)

	in := input(t, []chart.Record{{"x": "a", "v": 1}}, []chart.Series{&chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "v"}}}, "x")
	in.Data = nil
	assert.Empty(t, d.Plan(context.Background(), in).Layers)
}

func TestPlanClustersBarsByGroup(t *testing.T) {
	data := []chart.Record{{"x": "a", "p": 1, "q": 2, "r": 3}}
	series := []chart.Series{
		&chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "p"}},
		&chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "q"}},
		&chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "r"}, BarGroupKey: "solo"},
	}
	in := input(t, data, series, "x")
	plan := New(nil).Plan(context.Background(), in)
	require.Len(t, plan.Layers, 3)

	bw := in.Scales.X.Bandwidth()
	width := func(i int) float64 {
		w, _ := plan.Layers[i].Result.Specs[0].Target.Get("width")
		return w
	}
	xpos := func(i int) float64 {
		x, _ := plan.Layers[i].Result.Specs[0].Target.Get("x")
		return x
	}
	assert.InDelta(t, bw/2, width(0), 1e-9)
	assert.InDelta(t, bw/2, width(1), 1e-9)
	assert.InDelta(t, xpos(0)+bw/2, xpos(1), 1e-9)
	assert.InDelta(t, bw, width(2), 1e-9)
}

func TestPlanStacksAreaGroups(t *testing.T) {
	data := []chart.Record{{"x": "a", "p": 1, "q": 2}, {"x": "b", "p": 3, "q": 4}}
	series := []chart.Series{
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "p"}},
		&chart.LineSeries{SeriesBase: chart.SeriesBase{DataKey: "p"}, Curve: chart.CurveMonotone},
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "q"}},
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "q", ID: "q2"}, StackGroupKey: "other"},
	}
	in := input(t, data, series, "x")
	plan := New(nil).Plan(context.Background(), in)

	require.Equal(t, []string{"stack:default", "stack:other", "series:p"}, layerIDs(plan))
	stackLayer := plan.Layers[0]
	require.Len(t, stackLayer.Result.Specs, 2)
	assert.Equal(t, "p", stackLayer.Result.Specs[0].Key)
	assert.Equal(t, "q", stackLayer.Result.Specs[1].Key)

	target := plan.Targets[Ref{Layer: "stack:default", Key: "q"}]
	assert.Equal(t, "q", target.Series.Base().DataKey)
	assert.Equal(t, -1, target.Datum.Index)
}

func TestPlanStacksPerAxis(t *testing.T) {
	data := []chart.Record{{"x": "a", "l": 10, "r": 100}, {"x": "b", "l": 10, "r": 100}}
	series := []chart.Series{
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "l"}},
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "r", YAxis: chart.AxisRight}},
	}
	in := input(t, data, series, "x")
	plan := New(nil).Plan(context.Background(), in)

	require.Equal(t, []string{"stack:default", "stack:right:default"}, layerIDs(plan))
	for _, l := range plan.Layers {
		require.Len(t, l.Result.Specs, 1, l.ID)
		for _, seg := range l.Result.Specs[0].Target.Path {
			for i := 1; i < len(seg.Args); i += 2 {
				assert.GreaterOrEqual(t, seg.Args[i], -1e-9, l.ID)
				assert.LessOrEqual(t, seg.Args[i], area.Height+1e-9, l.ID)
			}
		}
	}

	target := plan.Targets[Ref{Layer: "stack:right:default", Key: "r"}]
	assert.Equal(t, "r", target.Series.Base().DataKey)
}

func TestPlanScatterRegressionAndHover(t *testing.T) {
	data := []chart.Record{
		{"x": 1, "y": 3, "id": "p1"},
		{"x": 2, "y": 5, "id": "p2"},
		{"x": 3, "y": 7, "id": "p3"},
	}
	series := []chart.Series{&chart.ScatterSeries{
		SeriesBase:     chart.SeriesBase{DataKey: "y"},
		Radius:         5,
		ShowRegression: true,
		ShowEquation:   true,
	}}
	in := input(t, data, series, "x")
	in.Hovered = Ref{Layer: "series:y", Key: "p2"}

	plan := New(nil).Plan(context.Background(), in)
	require.Equal(t, []string{"series:y", "regression:y"}, layerIDs(plan))

	dots := plan.Layers[0].Result.Specs
	require.Len(t, dots, 3)
	r, _ := dots[1].Target.Get("r")
	assert.InDelta(t, 6, r, 1e-9)
	assert.Equal(t, "p2", dots[1].Key)

	reg := plan.Layers[1].Result.Specs
	require.Len(t, reg, 2)
	assert.Equal(t, "y = 2.000x + 1.000", reg[1].Target.Text)
}

func TestPlanScatterRegressionDegenerate(t *testing.T) {
	data := []chart.Record{{"x": 1, "y": 3}}
	series := []chart.Series{&chart.ScatterSeries{SeriesBase: chart.SeriesBase{DataKey: "y"}, ShowRegression: true}}
	plan := New(nil).Plan(context.Background(), input(t, data, series, "x"))
	assert.Equal(t, []string{"series:y"}, layerIDs(plan))
}

func TestPlanWaterfall(t *testing.T) {
	data := []chart.Record{
		{"step": "Start", "v": 100, "type": "total"},
		{"step": "Cost", "v": -30},
		{"step": "Sales", "v": 50},
		{"step": "Q1", "v": 120, "type": "subtotal"},
	}
	series := []chart.Series{&chart.WaterfallSeries{SeriesBase: chart.SeriesBase{DataKey: "v"}, ShowConnectors: true}}
	plan := New(nil).Plan(context.Background(), input(t, data, series, "step"))
	require.Len(t, plan.Layers, 1)
	assert.Len(t, plan.Layers[0].Result.Specs, 7)
}

func TestPlanDuplicateSeriesKeysGetDistinctLayers(t *testing.T) {
	data := []chart.Record{{"x": "a", "v": 1}}
	series := []chart.Series{
		&chart.LineSeries{SeriesBase: chart.SeriesBase{DataKey: "v"}},
		&chart.LineSeries{SeriesBase: chart.SeriesBase{DataKey: "v", Color: "#000"}},
	}
	plan := New(nil).Plan(context.Background(), input(t, data, series, "x"))
	assert.Equal(t, []string{"series:v", "series:v#2"}, layerIDs(plan))
}
