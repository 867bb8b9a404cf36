package chartdef

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/regression"
	"github.com/conneroisu/combochart/internal/scene"
	"github.com/conneroisu/combochart/internal/stack"
)

const comboYAML = `
title: Revenue vs cost
xKey: m
width: 640
legend: true
animation:
  duration: 500ms
data:
  - {m: Jan, a: 10, b: 20}
  - {m: Feb, a: 15, b: 5}
series:
  - type: bar
    dataKey: a
    barGroupKey: g1
    showPoints: true
  - type: line
    dataKey: b
    yAxis: right
    curve: monotone
    dashed: true
  - type: stackedArea
    dataKey: a
    stackGroupKey: s
    stackOrder: ascending
  - type: scatter
    dataKey: b
    sizeRange: [2, 8]
    showRegression: true
    regressionType: polynomial
  - type: waterfall
    dataKey: a
    typeKey: kind
    colors: {positive: "#00ff00"}
`

var defaults = Defaults{
	Width:      800,
	Height:     400,
	Margin:     chart.DefaultMargin(),
	Palette:    chart.DefaultPalette,
	Transition: scene.DefaultTransition(),
}

func TestParseYAMLVariants(t *testing.T) {
	def, err := Parse([]byte(comboYAML), false)
	require.NoError(t, err)
	require.NoError(t, def.Validate())

	series, err := def.DecodeAll()
	require.NoError(t, err)
	require.Len(t, series, 5)

	bar := series[0].(*chart.BarSeries)
	assert.Equal(t, "a", bar.DataKey)
	assert.Equal(t, "g1", bar.BarGroupKey)

	line := series[1].(*chart.LineSeries)
	assert.Equal(t, chart.AxisRight, line.YAxis)
	assert.Equal(t, chart.CurveMonotone, line.Curve)
	assert.True(t, line.Dashed)

	st := series[2].(*chart.StackedAreaSeries)
	assert.Equal(t, stack.OrderAscending, st.StackOrder)

	sc := series[3].(*chart.ScatterSeries)
	assert.Equal(t, []float64{2, 8}, sc.SizeRange)
	assert.Equal(t, regression.Polynomial, sc.RegressionType)

	wf := series[4].(*chart.WaterfallSeries)
	assert.Equal(t, "kind", wf.TypeField())
	assert.Equal(t, "#00ff00", wf.Colors.Positive)
}

func TestParseJSON(t *testing.T) {
	def, err := Parse([]byte(`{"xKey":"x","height":300,"data":[{"x":1,"y":2.5}],"series":[{"type":"line","dataKey":"y","strokeWidth":3}]}`), true)
	require.NoError(t, err)
	assert.Equal(t, 300.0, def.Height)

	c, err := Resolve(afero.NewMemMapFs(), def, defaults)
	require.NoError(t, err)
	assert.Equal(t, 3.0, c.Input.Series[0].(*chart.LineSeries).StrokeWidth)
	require.Len(t, c.Input.Data, 1)
	assert.Equal(t, int64(1), c.Input.Data[0]["x"])
	assert.Equal(t, 2.5, c.Input.Data[0]["y"])
	assert.Equal(t, 800.0, c.Input.Width)
}

func TestOpenAppliesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "charts/combo.yaml", []byte(comboYAML), 0o644))

	c, err := Open(fs, "charts/combo.yaml", defaults)
	require.NoError(t, err)
	assert.Equal(t, "Revenue vs cost", c.Input.Title)
	assert.Equal(t, 640.0, c.Input.Width)
	assert.Equal(t, 400.0, c.Input.Height)
	assert.True(t, c.Input.Legend)
	assert.Equal(t, chart.DefaultMargin(), c.Input.Margin)
	assert.Equal(t, 500*time.Millisecond, c.Transition.Duration)
	assert.True(t, c.Transition.Enabled)
	assert.Len(t, c.Input.Data, 2)
	assert.Equal(t, "charts/combo.yaml", c.Definition.Path)
}

func TestResolveDataFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "charts/data/sales.csv", []byte("m,a\nJan,1\nFeb,2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "charts/c.yml", []byte("xKey: m\ndataFile: data/sales.csv\nseries:\n  - {type: bar, dataKey: a}\n"), 0o644))

	c, err := Open(fs, "charts/c.yml", defaults)
	require.NoError(t, err)
	assert.Equal(t, "charts/data/sales.csv", c.DataPath)
	require.Len(t, c.Input.Data, 2)
	assert.Equal(t, 2.0, c.Input.Data[1]["a"])
}

func TestResolveMissingDataFile(t *testing.T) {
	def, err := Parse([]byte("xKey: m\ndataFile: nope.csv\nseries: [{type: bar, dataKey: a}]\n"), false)
	require.NoError(t, err)
	_, err = Resolve(afero.NewMemMapFs(), def, defaults)
	assert.True(t, errors.IsIOError(err))
}

func TestAnimationDisabled(t *testing.T) {
	def, err := Parse([]byte("xKey: m\nanimation: {enabled: false}\nseries: [{type: bar, dataKey: a}]\n"), false)
	require.NoError(t, err)
	c, err := Resolve(afero.NewMemMapFs(), def, defaults)
	require.NoError(t, err)
	assert.False(t, c.Transition.Enabled)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	def, err := Parse([]byte(`
width: -1
data: [{m: a}]
dataFile: x.csv
series:
  - type: pie
    dataKey: a
  - type: line
    yAxis: top
    curve: wobbly
  - type: stackedArea
    dataKey: a
    stackOffset: sideways
  - type: scatter
    dataKey: a
    sizeRange: [9, 1]
    regressionType: cubic
`), false)
	require.NoError(t, err)
	def.Path = "bad.yml"

	verr := def.Validate()
	require.Error(t, verr)
	assert.True(t, errors.IsValidationError(verr))

	var fields []string
	for _, e := range multierr.Errors(errors.ExtractCause(verr)) {
		var fe *errors.FieldValidationError
		require.ErrorAs(t, e, &fe)
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{
		"xKey", "width", "dataFile",
		"series[0].type",
		"series[1].dataKey", "series[1].yAxis", "series[1].curve",
		"series[2].stackOffset",
		"series[3].regressionType", "series[3].sizeRange",
	}, fields)
}

func TestDecodeAllUnknownType(t *testing.T) {
	def := &Definition{XKey: "m", Series: []map[string]any{{"type": "pie", "dataKey": "a"}}}
	_, err := def.DecodeAll()
	assert.ErrorIs(t, err, &errors.ChartError{Type: errors.ErrorTypeValidation, Code: errors.ErrCodeUnknownMark})
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "missing.yml")
	assert.True(t, errors.IsIOError(err))
	assert.ErrorIs(t, err, &errors.ChartError{Type: errors.ErrorTypeIO, Code: errors.ErrCodeFileNotFound})

	require.NoError(t, afero.WriteFile(fs, "broken.json", []byte("{"), 0o644))
	_, err = Load(fs, "broken.json")
	assert.True(t, errors.IsValidationError(err))
}
