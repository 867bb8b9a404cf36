package engine

import (
	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/dispatch"
	"github.com/conneroisu/combochart/internal/scene"
)

// LayerLegend is the id of the legend layer.
const LayerLegend = "legend"

const (
	swatchSize  = 10
	legendFont  = 11.0
	legendGap   = 16
	charAdvance = 6.5
)

// legend lays out one swatch and label per drawn series, left to right in
// the top margin, in paint order.
func legend(plan dispatch.Plan, m chart.Margin) []scene.Spec {
	var specs []scene.Spec
	seen := make(map[string]bool)
	x := m.Left
	y := max(swatchSize, m.Top/2)
	for _, l := range plan.Layers {
		for _, s := range l.Series {
			key := s.Base().Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			name := chart.DisplayName(s)
			specs = append(specs,
				scene.Spec{
					Key:  "swatch:" + key,
					Kind: scene.KindRect,
					Target: scene.Attrs{}.
						Set("x", x).Set("y", y-swatchSize+1).
						Set("width", swatchSize).Set("height", swatchSize).
						Set("opacity", 1).SetStr("fill", s.Base().Color),
				},
				scene.Spec{
					Key:  "label:" + key,
					Kind: scene.KindText,
					Target: scene.Attrs{}.
						Set("x", x+swatchSize+4).Set("y", y).
						Set("opacity", 1).Set("font-size", legendFont).
						SetStr("fill", "#374151").
						WithText(name),
				},
			)
			x += swatchSize + 4 + float64(len(name))*charAdvance + legendGap
		}
	}
	return specs
}
