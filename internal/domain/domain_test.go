package domain

import (
	"math"
	"testing"
	"time"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(key string, axis chart.Axis) *chart.BarSeries {
	return &chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: key, YAxis: axis}}
}

func line(key string, axis chart.Axis) *chart.LineSeries {
	return &chart.LineSeries{SeriesBase: chart.SeriesBase{DataKey: key, YAxis: axis}}
}

func TestProcessComboScenario(t *testing.T) {
	data := []chart.Record{
		{"m": "Jan", "a": 10, "b": 20},
		{"m": "Feb", "a": 15, "b": 5},
	}
	series := []chart.Series{bar("a", chart.AxisLeft), line("b", chart.AxisRight)}

	res := Process(data, series, "m", nil)

	assert.Equal(t, XCategorical, res.X.Kind)
	assert.Equal(t, []string{"Jan", "Feb"}, res.X.Categories)
	assert.Equal(t, 0.0, res.LeftY.Min)
	assert.InDelta(t, 16.5, res.LeftY.Max, 1e-9)
	assert.Equal(t, 0.0, res.RightY.Min)
	assert.InDelta(t, 22.0, res.RightY.Max, 1e-9)
	assert.True(t, res.LeftUsed)
	assert.True(t, res.RightUsed)
	require.Len(t, res.Series, 2)
	assert.Equal(t, chart.DefaultPalette[0], res.Series[0].Base().Color)
	assert.Equal(t, chart.DefaultPalette[1], res.Series[1].Base().Color)
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	s := bar("a", "")
	res := Process([]chart.Record{{"x": 1, "a": 1}}, []chart.Series{s}, "x", []string{"#000"})

	assert.Empty(t, s.Color)
	assert.Empty(t, string(s.YAxis))
	assert.Equal(t, "#000", res.Series[0].Base().Color)
	assert.Equal(t, chart.AxisLeft, res.Series[0].Base().YAxis)
}

func TestProcessKeepsExplicitColourAndCyclesPalette(t *testing.T) {
	series := []chart.Series{
		&chart.BarSeries{SeriesBase: chart.SeriesBase{DataKey: "a", Color: "#abc"}},
		line("b", chart.AxisLeft),
		line("c", chart.AxisLeft),
	}
	res := Process([]chart.Record{{"x": "q", "a": 1, "b": 2, "c": 3}}, series, "x", []string{"#111", "#222"})

	assert.Equal(t, "#abc", res.Series[0].Base().Color)
	assert.Equal(t, "#222", res.Series[1].Base().Color)
	assert.Equal(t, "#111", res.Series[2].Base().Color)
}

func TestProcessEmptyInputs(t *testing.T) {
	res := Process(nil, []chart.Series{bar("a", chart.AxisLeft)}, "x", nil)
	assert.True(t, res.Empty())
	assert.Equal(t, DefaultExtent, res.LeftY)

	res = Process([]chart.Record{{"x": 1}}, nil, "x", nil)
	assert.True(t, res.Empty())
}

func TestXExtentClassification(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		data  []chart.Record
		check func(t *testing.T, d XDomain)
	}{
		{
			name: "numeric column without a finite value",
			data: []chart.Record{{"x": math.NaN()}, {"x": math.Inf(1)}},
			check: func(t *testing.T, d XDomain) {
				assert.Equal(t, XNumeric, d.Kind)
				assert.Equal(t, 0.0, d.Min)
				assert.Equal(t, 0.0, d.Max)
			},
		},
		{
			name: "time values",
			data: []chart.Record{{"x": mar}, {"x": jan}},
			check: func(t *testing.T, d XDomain) {
				assert.Equal(t, XTemporal, d.Kind)
				assert.True(t, d.Start.Equal(jan))
				assert.True(t, d.End.Equal(mar))
			},
		},
		{
			name: "date strings",
			data: []chart.Record{{"x": "2024-03-01"}, {"x": "2024-01-01"}, {"x": "garbage"}},
			check: func(t *testing.T, d XDomain) {
				assert.Equal(t, XTemporal, d.Kind)
				assert.Equal(t, jan.UnixMilli(), d.Start.UnixMilli())
				assert.Equal(t, mar.UnixMilli(), d.End.UnixMilli())
			},
		},
		{
			name: "numbers",
			data: []chart.Record{{"x": 5}, {"x": -2.5}, {"x": 11}, {"x": nil}},
			check: func(t *testing.T, d XDomain) {
				assert.Equal(t, XNumeric, d.Kind)
				assert.Equal(t, -2.5, d.Min)
				assert.Equal(t, 11.0, d.Max)
			},
		},
		{
			name: "categories keep first-seen order",
			data: []chart.Record{{"x": "b"}, {"x": "a"}, {"x": "b"}, {"x": "c"}},
			check: func(t *testing.T, d XDomain) {
				assert.Equal(t, XCategorical, d.Kind)
				assert.Equal(t, []string{"b", "a", "c"}, d.Categories)
			},
		},
		{
			name: "numeric strings are categories",
			data: []chart.Record{{"x": "2020"}, {"x": "2021"}},
			check: func(t *testing.T, d XDomain) {
				assert.Equal(t, XCategorical, d.Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, XExtent(tt.data, "x"))
		})
	}
}

func TestYExtentStackedGroupsSumAndPinFloor(t *testing.T) {
	data := []chart.Record{
		{"x": "a", "p": 10, "q": 20, "r": 1},
		{"x": "b", "p": 30, "q": 40, "r": 2},
	}
	series := []chart.Series{
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "p"}, StackGroupKey: "g"},
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "q"}, StackGroupKey: "g"},
		&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "r"}, StackGroupKey: "other"},
	}

	ext, used := YExtent(data, series, chart.AxisLeft)
	require.True(t, used)
	assert.Equal(t, 0.0, ext.Min)
	assert.InDelta(t, 77.0, ext.Max, 1e-9)
}

func TestYExtentStackedFloorIgnoresNegatives(t *testing.T) {
	data := []chart.Record{{"p": -5}, {"p": 10}}
	series := []chart.Series{&chart.StackedAreaSeries{SeriesBase: chart.SeriesBase{DataKey: "p"}}}

	ext, _ := YExtent(data, series, chart.AxisLeft)
	assert.Equal(t, 0.0, ext.Min)
}

func TestYExtentWaterfallIncludesPartialSums(t *testing.T) {
	data := []chart.Record{
		{"v": 100, "type": "total"},
		{"v": -130, "type": "negative"},
		{"v": 50, "type": "positive"},
	}
	series := []chart.Series{&chart.WaterfallSeries{SeriesBase: chart.SeriesBase{DataKey: "v"}}}

	ext, used := YExtent(data, series, chart.AxisLeft)
	require.True(t, used)
	assert.Equal(t, -30.0, ext.Min)
	assert.InDelta(t, 110.0, ext.Max, 1e-9)
}

func TestYExtentCoercesInvalidToZero(t *testing.T) {
	data := []chart.Record{{"a": "abc"}, {"a": nil}, {"a": "12"}, {"a": -4}}

	ext, _ := YExtent(data, []chart.Series{bar("a", chart.AxisLeft)}, chart.AxisLeft)
	assert.Equal(t, -4.0, ext.Min)
	assert.InDelta(t, 13.2, ext.Max, 1e-9)
}

func TestYExtentUnusedAndDegenerate(t *testing.T) {
	ext, used := YExtent([]chart.Record{{"a": 1}}, []chart.Series{bar("a", chart.AxisRight)}, chart.AxisLeft)
	assert.False(t, used)
	assert.Equal(t, DefaultExtent, ext)

	ext, used = YExtent([]chart.Record{{"a": 0}}, []chart.Series{bar("a", chart.AxisLeft)}, chart.AxisLeft)
	assert.True(t, used)
	assert.Equal(t, Extent{Min: 0, Max: 1}, ext)

	ext, _ = YExtent([]chart.Record{{"a": -3}, {"a": -1}}, []chart.Series{bar("a", chart.AxisLeft)}, chart.AxisLeft)
	assert.Equal(t, Extent{Min: -3, Max: 0}, ext)
}

func TestRightOnlySeries(t *testing.T) {
	res := Process([]chart.Record{{"x": "a", "v": 3}}, []chart.Series{line("v", chart.AxisRight)}, "x", nil)

	assert.False(t, res.LeftUsed)
	assert.True(t, res.RightUsed)
	assert.Equal(t, DefaultExtent, res.LeftY)
}
