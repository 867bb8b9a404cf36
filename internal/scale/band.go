package scale

import (
	"math"

	"github.com/conneroisu/combochart/internal/chart"
)

// DefaultBandPadding is used for categorical x axes.
const DefaultBandPadding = 0.1

// Band divides the range into equal bands, one per category.
type Band struct {
	labels    []string
	index     map[string]int
	r0, r1    float64
	padding   float64
	step      float64
	bandwidth float64
	offset    float64
	cfg       Config
}

// NewBand lays out labels over [r0, r1] with the same inner and outer
// padding, expressed as a fraction of the step.
func NewBand(labels []string, r0, r1, padding float64) *Band {
	padding = clamp(padding, 0, 1)
	b := &Band{
		labels:  append([]string(nil), labels...),
		index:   make(map[string]int, len(labels)),
		r0:      r0,
		r1:      r1,
		padding: padding,
	}
	domain := make([]any, 0, len(labels))
	for _, l := range labels {
		if _, dup := b.index[l]; dup {
			continue
		}
		b.index[l] = len(domain)
		domain = append(domain, l)
	}
	b.labels = b.labels[:0]
	for _, d := range domain {
		b.labels = append(b.labels, d.(string))
	}
	b.cfg = Config{Kind: KindBand, Domain: domain, Range: [2]float64{r0, r1}, Padding: padding}
	b.layout()
	return b
}

func (b *Band) layout() {
	n := float64(len(b.labels))
	start, stop := b.r0, b.r1
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	b.step = (stop - start) / math.Max(1, n-b.padding+b.padding*2)
	start += (stop - start - b.step*(n-b.padding)) * 0.5
	b.bandwidth = b.step * (1 - b.padding)
	b.offset = start
	if reverse {
		b.offset = start + b.step*(n-1)
		b.step = -b.step
	}
}

func (b *Band) Kind() Kind                { return KindBand }
func (b *Band) Config() Config            { return b.cfg }
func (b *Band) Bandwidth() float64        { return b.bandwidth }
func (b *Band) Range() (float64, float64) { return b.r0, b.r1 }

// Step is the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return math.Abs(b.step) }

// Labels returns the categories in display order.
func (b *Band) Labels() []string { return append([]string(nil), b.labels...) }

// Position returns the start of v's band.
func (b *Band) Position(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := b.index[chart.Label(v)]
	if !ok {
		return 0, false
	}
	return b.offset + float64(i)*b.step, true
}

// Ticks returns one tick per category at the band centre. Count is
// ignored.
func (b *Band) Ticks(int) []Tick {
	out := make([]Tick, len(b.labels))
	for i, l := range b.labels {
		out[i] = Tick{Value: l, Position: b.offset + float64(i)*b.step + b.bandwidth/2, Label: l}
	}
	return out
}

// Ordinal assigns colours to group values in first-seen order, cycling
// through the palette. Unknown values are added to the domain on lookup.
type Ordinal struct {
	palette []string
	index   map[string]int
	order   []string
}

// NewOrdinal builds a colour scale with an optional initial domain.
func NewOrdinal(palette []string, domain ...string) *Ordinal {
	if len(palette) == 0 {
		palette = chart.DefaultPalette
	}
	o := &Ordinal{palette: palette, index: map[string]int{}}
	for _, d := range domain {
		o.lookup(d)
	}
	return o
}

func (o *Ordinal) lookup(key string) int {
	if i, ok := o.index[key]; ok {
		return i
	}
	i := len(o.order)
	o.index[key] = i
	o.order = append(o.order, key)
	return i
}

// Color returns the colour for a group value.
func (o *Ordinal) Color(v any) string {
	return o.palette[o.lookup(chart.Label(v))%len(o.palette)]
}

// Domain returns the group values seen so far.
func (o *Ordinal) Domain() []string { return append([]string(nil), o.order...) }
