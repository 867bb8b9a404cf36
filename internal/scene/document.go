package scene

import (
	"time"
)

// Document is the retained scene for one chart: its size, gradient
// definitions and layers in paint order. Layers persist across passes by
// ID; a layer missing from a pass has all its marks exit.
type Document struct {
	Width  float64
	Height float64
	Title  string
	Defs   []Node

	layers map[string]*Layer
	order  []string
	pass   []string
	inPass map[string]bool
}

// NewDocument returns an empty document.
func NewDocument(width, height float64) *Document {
	return &Document{
		Width:  width,
		Height: height,
		layers: make(map[string]*Layer),
	}
}

// Begin starts a render pass.
func (d *Document) Begin() {
	d.pass = d.pass[:0]
	d.inPass = make(map[string]bool)
	d.Defs = nil
}

// Layer returns the layer with id, creating it if needed, and records it
// in the current pass's paint order.
func (d *Document) Layer(id string) *Layer {
	l, ok := d.layers[id]
	if !ok {
		l = NewLayer(id)
		d.layers[id] = l
	}
	if d.inPass != nil && !d.inPass[id] {
		d.inPass[id] = true
		d.pass = append(d.pass, id)
	}
	return l
}

// Lookup returns an existing layer.
func (d *Document) Lookup(id string) (*Layer, bool) {
	l, ok := d.layers[id]
	return l, ok
}

// End finishes a pass. Layers not touched during the pass are emptied so
// their marks exit; until the exit completes they stay painted right after
// the layer that preceded them in the previous order.
func (d *Document) End(now time.Time, tr Transition) {
	after := make(map[string][]string)
	anchor := ""
	for _, id := range d.order {
		if d.inPass[id] {
			anchor = id
			continue
		}
		l := d.layers[id]
		l.Apply(nil, now, tr)
		if l.Len() == 0 {
			delete(d.layers, id)
			continue
		}
		after[anchor] = append(after[anchor], id)
	}

	order := make([]string, 0, len(d.pass)+len(after))
	order = append(order, after[""]...)
	for _, id := range d.pass {
		order = append(order, id)
		order = append(order, after[id]...)
	}
	d.order = order
	d.inPass = nil
}

// Advance steps all transitions to now and reports whether the document
// has settled.
func (d *Document) Advance(now time.Time) bool {
	settled := true
	kept := d.order[:0]
	for _, id := range d.order {
		l := d.layers[id]
		if !l.Advance(now) {
			settled = false
		}
		if l.Len() == 0 && !d.requested(id) {
			delete(d.layers, id)
			continue
		}
		kept = append(kept, id)
	}
	d.order = kept
	return settled
}

// requested reports whether the last pass asked for layer id, so empty
// layers it drew are kept.
func (d *Document) requested(id string) bool {
	for _, p := range d.pass {
		if p == id {
			return true
		}
	}
	return false
}

// Settled reports whether no mark is moving.
func (d *Document) Settled() bool {
	for _, id := range d.order {
		if !d.layers[id].Settled() {
			return false
		}
	}
	return true
}

// Layers returns the layers in paint order.
func (d *Document) Layers() []*Layer {
	out := make([]*Layer, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.layers[id])
	}
	return out
}
