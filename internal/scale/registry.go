package scale

import (
	"errors"
	"fmt"
	"sort"
)

// AxisTag is the logical axis a registered scale drives.
type AxisTag string

const (
	AxisX  AxisTag = "x"
	AxisY  AxisTag = "y"
	AxisY2 AxisTag = "y2"
)

// Registry keys.
const (
	KeyX      = "x"
	KeyLeftY  = "leftY"
	KeyRightY = "rightY"
)

// ErrFrozen is returned when registering into a registry that is already
// being read.
var ErrFrozen = errors.New("scale registry is frozen")

// Entry is one registered scale with its declarative config.
type Entry struct {
	Key    string  `json:"key" yaml:"key"`
	Axis   AxisTag `json:"axis" yaml:"axis"`
	Config Config  `json:"config" yaml:"config"`
	Scale  Scale   `json:"-" yaml:"-"`
}

// RegisterFunc builds and publishes a scale.
type RegisterFunc func(key string, cfg Config, axis AxisTag) (Scale, error)

// Registry is the per-render scale snapshot. It is written while the
// coordinator runs and read-only once frozen; a new render builds a new
// registry rather than mutating the old one.
type Registry struct {
	entries map[string]Entry
	frozen  bool
}

// NewRegistry returns an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register builds a scale from cfg and stores it under key.
func (r *Registry) Register(key string, cfg Config, axis AxisTag) (Scale, error) {
	if r.frozen {
		return nil, ErrFrozen
	}
	s, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", key, err)
	}
	r.entries[key] = Entry{Key: key, Axis: axis, Config: cfg, Scale: s}
	return s, nil
}

// Freeze ends the write phase.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether the write phase has ended.
func (r *Registry) Frozen() bool { return r.frozen }

// Get returns the scale registered under key. A nil registry has no scales.
func (r *Registry) Get(key string) (Scale, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.entries[key]
	return e.Scale, ok
}

// Lookup returns the full entry for key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[key]
	return e, ok
}

// ByAxis returns the scale registered for a logical axis.
func (r *Registry) ByAxis(axis AxisTag) (Scale, bool) {
	if r == nil {
		return nil, false
	}
	for _, e := range r.entries {
		if e.Axis == axis {
			return e.Scale, true
		}
	}
	return nil, false
}

// Entries lists registrations ordered x, y, y2.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Axis != out[j].Axis {
			return out[i].Axis < out[j].Axis
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Len returns the number of registered scales.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
