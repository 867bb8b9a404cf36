package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaterfallRunningTotals(t *testing.T) {
	rows := []Row{
		{Value: 100, Kind: StepTotal},
		{Value: -30, Kind: StepNegative},
		{Value: 50, Kind: StepPositive},
		{Value: 120, Kind: StepSubtotal},
	}

	steps := Waterfall(rows)
	require.Len(t, steps, 4)

	after := make([]float64, len(steps))
	for i, s := range steps {
		after[i] = s.After
	}
	assert.Equal(t, []float64{100, 70, 120, 120}, after)
	assert.Equal(t, steps[2].After, steps[3].Before)

	low, high := steps[1].BarBounds()
	assert.Equal(t, 70.0, low)
	assert.Equal(t, 100.0, high)

	low, high = steps[3].BarBounds()
	assert.Equal(t, 0.0, low)
	assert.Equal(t, 120.0, high)

	assert.Equal(t, []float64{0, 100, 100, 70, 70, 120, 120, 120}, Markers(steps))
}

func TestWaterfallSubtotalResets(t *testing.T) {
	steps := Waterfall([]Row{
		{Value: 10, Kind: StepPositive},
		{Value: 5, Kind: StepPositive},
		{Value: 40, Kind: StepSubtotal},
		{Value: -50, Kind: StepNegative},
	})

	assert.Equal(t, 15.0, steps[2].Before)
	assert.Equal(t, 40.0, steps[2].After)
	assert.Equal(t, -10.0, steps[3].After)

	low, high := steps[3].BarBounds()
	assert.Equal(t, -10.0, low)
	assert.Equal(t, 40.0, high)
}

func TestParseStepKind(t *testing.T) {
	tests := []struct {
		label string
		value float64
		want  StepKind
	}{
		{label: "total", value: 5, want: StepTotal},
		{label: " Subtotal ", value: 5, want: StepSubtotal},
		{label: "negative", value: 5, want: StepNegative},
		{label: "positive", value: -5, want: StepPositive},
		{label: "", value: -1, want: StepNegative},
		{label: "whatever", value: 0, want: StepPositive},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStepKind(tt.label, tt.value))
		})
	}
}

func TestWaterfallEmpty(t *testing.T) {
	assert.Empty(t, Waterfall(nil))
	assert.Empty(t, Markers(nil))
}
