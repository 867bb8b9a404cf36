package scene

import (
	"time"
)

// DefaultDuration is the transition length when none is configured.
const DefaultDuration = 300 * time.Millisecond

// Transition configures how marks move between states.
type Transition struct {
	Enabled  bool
	Duration time.Duration
	Ease     Ease
}

// DefaultTransition animates over DefaultDuration with cubic easing.
func DefaultTransition() Transition {
	return Transition{Enabled: true, Duration: DefaultDuration, Ease: EaseCubicInOut}
}

// Immediate applies every change without animation.
func Immediate() Transition { return Transition{} }

func (t Transition) animated() bool { return t.Enabled && t.Duration > 0 }

func (t Transition) ease(p float64) float64 {
	if t.Ease == nil {
		return EaseCubicInOut(p)
	}
	return t.Ease(p)
}

// Spec describes one mark a primitive wants on screen. Enter is the
// neutral geometry a new mark starts from and Exit the closed geometry a
// removed mark collapses to; both default to Target with zero opacity.
type Spec struct {
	Key    string
	Kind   Kind
	Target Attrs
	Enter  *Attrs
	Exit   *Attrs
}

// Fade returns a copy of a with opacity 0.
func Fade(a Attrs) Attrs {
	return a.Clone().Set("opacity", 0)
}

func (s Spec) enter() Attrs {
	if s.Enter != nil {
		return *s.Enter
	}
	return Fade(s.Target)
}

func (s Spec) exit() Attrs {
	if s.Exit != nil {
		return *s.Exit
	}
	return Fade(s.Target)
}

// Mark is a retained, keyed element.
type Mark struct {
	Key  string
	Kind Kind

	current Attrs
	exit    Attrs
	from    Attrs
	to      Attrs
	start   time.Time
	tr      Transition
	moving  bool
	exiting bool
}

// Current returns the state as of the last Apply or Advance.
func (m *Mark) Current() Attrs { return m.current }

// Target returns the state the mark is heading to.
func (m *Mark) Target() Attrs { return m.to }

// Exiting reports whether the mark is collapsing before removal.
func (m *Mark) Exiting() bool { return m.exiting }

// Moving reports whether a transition is in flight.
func (m *Mark) Moving() bool { return m.moving }

func (m *Mark) retarget(from, to Attrs, now time.Time, tr Transition) {
	m.from, m.to, m.tr = from, to, tr
	if !tr.animated() {
		m.current = to.Clone()
		m.moving = false
		return
	}
	m.current = from.Clone()
	m.start = now
	m.moving = true
}

// step advances the transition and reports whether it has finished.
func (m *Mark) step(now time.Time) bool {
	if !m.moving {
		return true
	}
	p := float64(now.Sub(m.start)) / float64(m.tr.Duration)
	if p >= 1 {
		m.current = m.to.Clone()
		m.moving = false
		return true
	}
	if p < 0 {
		p = 0
	}
	m.current = Lerp(m.from, m.to, m.tr.ease(p))
	return false
}

// Diff lists the keys touched by one Apply.
type Diff struct {
	Enter  []string
	Update []string
	Exit   []string
}

// Stable reports whether nothing entered or exited.
func (d Diff) Stable() bool { return len(d.Enter) == 0 && len(d.Exit) == 0 }

// Layer is an ordered, keyed set of marks owned by one primitive.
type Layer struct {
	ID    string
	Class string
	// Attrs holds group-level attributes such as a translate offset.
	Attrs Attrs

	marks map[string]*Mark
	order []string
}

// NewLayer returns an empty layer.
func NewLayer(id string) *Layer {
	return &Layer{ID: id, marks: make(map[string]*Mark)}
}

// Apply reconciles the layer against specs at time now. Marks whose key
// persists transition from their current on-screen state, so a new pass
// always supersedes one still in flight. Marks whose key disappeared
// collapse to their exit state and are dropped once that finishes.
func (l *Layer) Apply(specs []Spec, now time.Time, tr Transition) Diff {
	var diff Diff
	seen := make(map[string]bool, len(specs))
	order := make([]string, 0, len(specs)+len(l.order))

	for _, s := range specs {
		if seen[s.Key] {
			continue
		}
		seen[s.Key] = true
		order = append(order, s.Key)

		m, ok := l.marks[s.Key]
		if !ok {
			m = &Mark{Key: s.Key, Kind: s.Kind, exit: s.exit()}
			l.marks[s.Key] = m
			m.retarget(s.enter(), s.Target, now, tr)
			diff.Enter = append(diff.Enter, s.Key)
			continue
		}
		m.exit = s.exit()
		if m.Kind != s.Kind {
			m.Kind = s.Kind
			m.exiting = false
			m.retarget(s.enter(), s.Target, now, tr)
			diff.Update = append(diff.Update, s.Key)
			continue
		}
		if !m.exiting && Equal(m.to, s.Target) {
			// Same destination: keep any transition already running.
			diff.Update = append(diff.Update, s.Key)
			continue
		}
		m.exiting = false
		m.retarget(m.current, s.Target, now, tr)
		diff.Update = append(diff.Update, s.Key)
	}

	for _, key := range l.order {
		if seen[key] {
			continue
		}
		m := l.marks[key]
		if !m.exiting {
			diff.Exit = append(diff.Exit, key)
		}
		if !tr.animated() {
			delete(l.marks, key)
			continue
		}
		if !m.exiting {
			m.exiting = true
			m.retarget(m.current, m.exit, now, tr)
		}
		order = append(order, key)
	}
	l.order = order
	return diff
}

// Advance steps every transition to now and drops exited marks whose
// collapse has finished. It reports whether the layer is settled.
func (l *Layer) Advance(now time.Time) bool {
	settled := true
	kept := l.order[:0]
	for _, key := range l.order {
		m := l.marks[key]
		done := m.step(now)
		if m.exiting && done {
			delete(l.marks, key)
			continue
		}
		if !done {
			settled = false
		}
		kept = append(kept, key)
	}
	l.order = kept
	return settled
}

// Settled reports whether no transition is in flight.
func (l *Layer) Settled() bool {
	for _, m := range l.marks {
		if m.moving || m.exiting {
			return false
		}
	}
	return true
}

// Mark returns the mark for key, including marks that are exiting.
func (l *Layer) Mark(key string) (*Mark, bool) {
	m, ok := l.marks[key]
	return m, ok
}

// Keys lists mark keys in paint order.
func (l *Layer) Keys() []string {
	return append([]string(nil), l.order...)
}

// Len is the number of marks on screen, exiting ones included.
func (l *Layer) Len() int { return len(l.order) }

// Nodes snapshots the current state of every mark in paint order.
func (l *Layer) Nodes() []Node {
	out := make([]Node, 0, len(l.order))
	for _, key := range l.order {
		m := l.marks[key]
		out = append(out, Node{Key: m.Key, Kind: m.Kind, Attrs: m.current.Clone()})
	}
	return out
}
