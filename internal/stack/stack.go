// Package stack implements the cumulative transforms behind stacked areas
// and waterfalls. Layer ordering and baseline offsets follow the
// conventional stacked-area semantics (none, ascending, descending,
// inside-out, reverse; none, expand, diverging, silhouette, wiggle).
package stack

import (
	"math"
	"sort"
)

// Order controls the bottom-to-top sequence of layers.
type Order string

const (
	OrderNone       Order = "none"
	OrderAscending  Order = "ascending"
	OrderDescending Order = "descending"
	OrderInsideOut  Order = "insideOut"
	OrderReverse    Order = "reverse"
)

// Valid reports whether o is a known order (empty means none).
func (o Order) Valid() bool {
	switch o {
	case "", OrderNone, OrderAscending, OrderDescending, OrderInsideOut, OrderReverse:
		return true
	}
	return false
}

// Offset controls the baseline of the stack.
type Offset string

const (
	OffsetNone       Offset = "none"
	OffsetExpand     Offset = "expand"
	OffsetDiverging  Offset = "diverging"
	OffsetSilhouette Offset = "silhouette"
	OffsetWiggle     Offset = "wiggle"
)

// Valid reports whether o is a known offset (empty means none).
func (o Offset) Valid() bool {
	switch o {
	case "", OffsetNone, OffsetExpand, OffsetDiverging, OffsetSilhouette, OffsetWiggle:
		return true
	}
	return false
}

// Span is one stacked value: the layer occupies [Lower, Upper] at a column.
type Span struct {
	Lower, Upper float64
}

// Layer is one stacked series. Index is the layer's position in the input,
// not in the stacking order.
type Layer struct {
	Key   string
	Index int
	Spans []Span
}

// Stack stacks values[i][j] (layer i, column j). keys names the layers and
// must match values in length. Inputs are not modified. Layers are returned
// bottom to top.
func Stack(keys []string, values [][]float64, order Order, offset Offset) []Layer {
	n := len(values)
	if n == 0 {
		return nil
	}
	m := 0
	for _, row := range values {
		m = max(m, len(row))
	}

	layers := make([]Layer, n)
	for i := range values {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		spans := make([]Span, m)
		for j := 0; j < m; j++ {
			v := 0.0
			if j < len(values[i]) && !math.IsNaN(values[i][j]) {
				v = values[i][j]
			}
			spans[j] = Span{Lower: 0, Upper: v}
		}
		layers[i] = Layer{Key: key, Index: i, Spans: spans}
	}

	idx := orderIndices(layers, order)
	applyOffset(layers, idx, offset)

	out := make([]Layer, n)
	for pos, i := range idx {
		out[pos] = layers[i]
	}
	return out
}

func orderIndices(layers []Layer, order Order) []int {
	idx := make([]int, len(layers))
	for i := range idx {
		idx[i] = i
	}
	switch order {
	case OrderAscending:
		sums := layerSums(layers)
		sort.SliceStable(idx, func(a, b int) bool { return sums[idx[a]] < sums[idx[b]] })
	case OrderDescending:
		sums := layerSums(layers)
		sort.SliceStable(idx, func(a, b int) bool { return sums[idx[a]] < sums[idx[b]] })
		reverse(idx)
	case OrderReverse:
		reverse(idx)
	case OrderInsideOut:
		idx = insideOut(layers)
	}
	return idx
}

// insideOut places the earliest-peaking layers in the middle so that a
// streamgraph grows outwards over time.
func insideOut(layers []Layer) []int {
	sums := layerSums(layers)
	peaks := make([]int, len(layers))
	for i, l := range layers {
		best := math.Inf(-1)
		for j, s := range l.Spans {
			if s.Upper > best {
				best, peaks[i] = s.Upper, j
			}
		}
	}
	byPeak := make([]int, len(layers))
	for i := range byPeak {
		byPeak[i] = i
	}
	sort.SliceStable(byPeak, func(a, b int) bool { return peaks[byPeak[a]] < peaks[byPeak[b]] })

	var top, bottom float64
	var tops, bottoms []int
	for _, j := range byPeak {
		if top < bottom {
			top += sums[j]
			tops = append(tops, j)
		} else {
			bottom += sums[j]
			bottoms = append(bottoms, j)
		}
	}
	reverse(bottoms)
	return append(bottoms, tops...)
}

func applyOffset(layers []Layer, idx []int, offset Offset) {
	switch offset {
	case OffsetExpand:
		expand(layers, idx)
	case OffsetDiverging:
		diverging(layers, idx)
	case OffsetSilhouette:
		silhouette(layers, idx)
	case OffsetWiggle:
		wiggle(layers, idx)
	default:
		cumulate(layers, idx)
	}
}

// cumulate stacks each layer on top of the previous one in order; the
// bottom layer keeps whatever baseline it already has.
func cumulate(layers []Layer, idx []int) {
	for k := 1; k < len(idx); k++ {
		below, cur := layers[idx[k-1]].Spans, layers[idx[k]].Spans
		for j := range cur {
			base := below[j].Upper
			if math.IsNaN(base) {
				base = below[j].Lower
			}
			cur[j].Lower = base
			cur[j].Upper += base
		}
	}
}

// expand normalises every column to sum to one before stacking.
func expand(layers []Layer, idx []int) {
	m := len(layers[0].Spans)
	for j := 0; j < m; j++ {
		total := 0.0
		for i := range layers {
			total += layers[i].Spans[j].Upper
		}
		if total == 0 {
			continue
		}
		for i := range layers {
			layers[i].Spans[j].Upper /= total
		}
	}
	cumulate(layers, idx)
}

// diverging stacks positive values upwards and negative values downwards
// from zero.
func diverging(layers []Layer, idx []int) {
	m := len(layers[0].Spans)
	for j := 0; j < m; j++ {
		var pos, neg float64
		for _, i := range idx {
			s := &layers[i].Spans[j]
			dy := s.Upper - s.Lower
			switch {
			case dy > 0:
				s.Lower = pos
				pos += dy
				s.Upper = pos
			case dy < 0:
				s.Upper = neg
				neg += dy
				s.Lower = neg
			default:
				s.Lower, s.Upper = 0, dy
			}
		}
	}
}

// silhouette centres the stack around zero.
func silhouette(layers []Layer, idx []int) {
	bottom := layers[idx[0]].Spans
	for j := range bottom {
		total := 0.0
		for i := range layers {
			total += layers[i].Spans[j].Upper
		}
		bottom[j].Lower = -total / 2
		bottom[j].Upper += bottom[j].Lower
	}
	cumulate(layers, idx)
}

// wiggle shifts the baseline to minimise the weighted change in slope,
// which is the streamgraph layout.
func wiggle(layers []Layer, idx []int) {
	bottom := layers[idx[0]].Spans
	m := len(bottom)
	if m == 0 {
		return
	}
	y := 0.0
	for j := 1; j < m; j++ {
		var s1, s2 float64
		for k, i := range idx {
			cur, prev := layers[i].Spans[j].Upper, layers[i].Spans[j-1].Upper
			s3 := (cur - prev) / 2
			for _, below := range idx[:k] {
				s3 += layers[below].Spans[j].Upper - layers[below].Spans[j-1].Upper
			}
			s1 += cur
			s2 += s3 * cur
		}
		bottom[j-1].Lower = y
		bottom[j-1].Upper += y
		if s1 != 0 {
			y -= s2 / s1
		}
	}
	bottom[m-1].Lower = y
	bottom[m-1].Upper += y
	cumulate(layers, idx)
}

func layerSums(layers []Layer) []float64 {
	sums := make([]float64, len(layers))
	for i, l := range layers {
		for _, s := range l.Spans {
			sums[i] += s.Upper
		}
	}
	return sums
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
