//go:build property
// +build property

package stack

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestStackProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("offset none yields prefix sums", prop.ForAll(
		func(a, b, c []float64) bool {
			values := [][]float64{a, b, c}
			for pass := 0; pass < 2; pass++ {
				layers := Stack([]string{"a", "b", "c"}, values, OrderNone, OffsetNone)
				for j := range a {
					prefix := 0.0
					for i, l := range layers {
						prefix += values[i][j]
						if math.Abs(l.Spans[j].Upper-prefix) > 1e-9 {
							return false
						}
					}
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.Float64Range(0, 1000)),
		gen.SliceOfN(6, gen.Float64Range(0, 1000)),
		gen.SliceOfN(6, gen.Float64Range(0, 1000)),
	))

	properties.Property("expand columns end at one", prop.ForAll(
		func(a, b []float64) bool {
			layers := Stack([]string{"a", "b"}, [][]float64{a, b}, OrderNone, OffsetExpand)
			top := layers[len(layers)-1]
			for j := range a {
				if a[j]+b[j] == 0 {
					continue
				}
				if math.Abs(top.Spans[j].Upper-1) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Float64Range(0, 100)),
		gen.SliceOfN(5, gen.Float64Range(0, 100)),
	))

	properties.Property("waterfall after equals running sum of deltas", prop.ForAll(
		func(deltas []float64) bool {
			rows := make([]Row, len(deltas))
			for i, d := range deltas {
				rows[i] = Row{Value: d, Kind: ParseStepKind("", d)}
			}
			sum := 0.0
			for i, s := range Waterfall(rows) {
				if s.Before != sum {
					return false
				}
				sum += deltas[i]
				if math.Abs(s.After-sum) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-500, 500)),
	))

	properties.TestingRun(t)
}
