// Package engine runs render passes: it derives domains, builds the frozen
// scale registry, lays out axes and series, reconciles the retained scene
// and delivers pointer events to the caller's handlers.
//
// An Engine is not safe for concurrent use; callers that share one across
// goroutines serialize access themselves.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/conneroisu/combochart/internal/axis"
	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/dispatch"
	"github.com/conneroisu/combochart/internal/domain"
	"github.com/conneroisu/combochart/internal/errors"
	"github.com/conneroisu/combochart/internal/logging"
	"github.com/conneroisu/combochart/internal/scale"
	"github.com/conneroisu/combochart/internal/scene"
	"github.com/conneroisu/combochart/internal/svg"
)

// Input is everything one render pass needs.
type Input struct {
	Title   string
	Data    []chart.Record
	Series  []chart.Series
	XKey    string
	Width   float64
	Height  float64
	Margin  chart.Margin
	Palette []string
	Grid    bool
	Legend  bool
}

// Options configures an Engine.
type Options struct {
	Logger     logging.Logger
	Handlers   chart.Handlers
	Transition scene.Transition
}

// Pass summarizes one render pass.
type Pass struct {
	Domain   domain.Result
	Registry *scale.Registry
	// Reused reports whether the scales of the previous pass were kept.
	Reused  bool
	Skipped []string
	Diffs   map[string]scene.Diff
}

// Exits counts marks that started exiting in this pass.
func (p Pass) Exits() int {
	n := 0
	for _, d := range p.Diffs {
		n += len(d.Exit)
	}
	return n
}

// Engine owns the retained scene of one chart.
type Engine struct {
	log      logging.Logger
	handlers chart.Handlers
	tr       scene.Transition

	coord *scale.Coordinator
	disp  *dispatch.Dispatcher
	doc   *scene.Document

	input    Input
	rendered bool
	plan     dispatch.Plan
	hovered  dispatch.Ref
}

// New returns an engine with an empty document.
func New(opts Options) *Engine {
	log := logging.OrNop(opts.Logger).WithComponent("engine")
	h := opts.Handlers
	if h == nil {
		h = chart.NopHandlers{}
	}
	return &Engine{
		log:      log,
		handlers: h,
		tr:       opts.Transition,
		coord:    scale.NewCoordinator(),
		disp:     dispatch.New(log),
		doc:      scene.NewDocument(0, 0),
	}
}

// Render runs one pass at time now. A pass supersedes any transition still
// in flight from an earlier pass.
func (e *Engine) Render(ctx context.Context, in Input, now time.Time) (Pass, error) {
	perf := logging.StartOperation(e.log, "render")
	pass, err := e.render(ctx, in, now)
	if err != nil {
		perf.EndWithError(ctx, err)
		return pass, err
	}
	perf.End(ctx, "series", len(in.Series), "records", len(in.Data), "exits", pass.Exits())
	return pass, nil
}

func (e *Engine) render(ctx context.Context, in Input, now time.Time) (Pass, error) {
	e.input, e.rendered = in, true
	e.doc.Width, e.doc.Height, e.doc.Title = in.Width, in.Height, in.Title

	res := domain.Process(in.Data, in.Series, in.XKey, in.Palette)
	pass := Pass{Domain: res, Diffs: make(map[string]scene.Diff)}

	if res.Empty() {
		e.log.Debug(ctx, "Nothing to render", "series", len(in.Series), "records", len(in.Data))
		e.plan = dispatch.Plan{}
		e.doc.Begin()
		e.doc.End(now, e.tr)
		return pass, nil
	}

	area := chart.Content(in.Width, in.Height, in.Margin)
	reg, set, reused, err := e.coord.Scales(res, area)
	if err != nil {
		return pass, errors.NewRenderError(errors.ErrCodeScale, "cannot build scales", err)
	}
	pass.Registry, pass.Reused = reg, reused

	plan := e.disp.Plan(ctx, dispatch.Input{
		Data:    in.Data,
		Series:  res.Series,
		XKey:    in.XKey,
		Scales:  set,
		Palette: in.Palette,
		Hovered: e.hovered,
	})
	e.plan = plan
	pass.Skipped = plan.Skipped

	axes := axis.Render(reg, axis.Options{
		Area:       area,
		Margin:     in.Margin,
		Grid:       in.Grid,
		XTitle:     in.XKey,
		LeftTitle:  axisTitle(res.Series, chart.AxisLeft),
		RightTitle: axisTitle(res.Series, chart.AxisRight),
	})

	e.doc.Begin()
	apply := func(id, class string, specs []scene.Spec, translate bool) {
		l := e.doc.Layer(id)
		l.Class = class
		if translate {
			l.Attrs = l.Attrs.Set(svg.AttrTranslateX, in.Margin.Left).Set(svg.AttrTranslateY, in.Margin.Top)
		}
		pass.Diffs[id] = l.Apply(specs, now, e.tr)
	}

	for _, a := range axes {
		if a.ID == axis.LayerGrid {
			apply(a.ID, "grid", a.Specs, true)
		}
	}
	for _, l := range plan.Layers {
		apply(l.ID, l.Class, l.Result.Specs, true)
		e.doc.Defs = append(e.doc.Defs, l.Result.Defs...)
	}
	for _, a := range axes {
		if a.ID != axis.LayerGrid {
			apply(a.ID, "axis", a.Specs, true)
		}
	}
	if in.Legend {
		apply(LayerLegend, "legend", legend(plan, in.Margin), false)
	}
	e.doc.End(now, e.tr)
	return pass, nil
}

// axisTitle joins the display names of the series plotted on axis.
func axisTitle(series []chart.Series, a chart.Axis) string {
	var names []string
	for _, s := range series {
		if s.Base().Axis() == a {
			names = append(names, chart.DisplayName(s))
		}
	}
	return strings.Join(names, ", ")
}

// SetTransition changes the transition used by later passes. Transitions
// already in flight keep their timing.
func (e *Engine) SetTransition(tr scene.Transition) {
	e.tr = tr
}

// Advance steps every transition to now and reports whether the scene has
// settled.
func (e *Engine) Advance(now time.Time) bool {
	return e.doc.Advance(now)
}

// Settled reports whether no transition is in flight.
func (e *Engine) Settled() bool {
	return e.doc.Settled()
}

// Document returns the retained scene for serialization.
func (e *Engine) Document() *scene.Document {
	return e.doc
}

// Plan returns the layout of the last pass.
func (e *Engine) Plan() dispatch.Plan {
	return e.plan
}

// Hovered returns the mark currently under the pointer, if any.
func (e *Engine) Hovered() (dispatch.Ref, bool) {
	return e.hovered, e.hovered != (dispatch.Ref{})
}

// Resolve maps a "layer/key" mark address to its ref and target. Layer ids
// and keys may themselves contain slashes, so every split is tried.
func (e *Engine) Resolve(addr string) (dispatch.Ref, dispatch.Target, bool) {
	for i := strings.Index(addr, "/"); i >= 0; {
		ref := dispatch.Ref{Layer: addr[:i], Key: addr[i+1:]}
		if t, ok := e.plan.Targets[ref]; ok {
			return ref, t, true
		}
		next := strings.Index(addr[i+1:], "/")
		if next < 0 {
			break
		}
		i += next + 1
	}
	return dispatch.Ref{}, dispatch.Target{}, false
}

// Dispatch delivers ev to the handlers. Hover and leave change which mark
// is highlighted and re-render at now when that changes. It reports
// whether the event addressed a known mark.
func (e *Engine) Dispatch(ctx context.Context, ev chart.Event, now time.Time) (bool, error) {
	if ev.Kind == chart.EventLeave {
		return false, e.hover(ctx, dispatch.Ref{}, now)
	}

	ref, target, ok := e.Resolve(ev.Key)
	if !ok {
		e.log.Debug(ctx, "Event for unknown mark", "kind", string(ev.Kind), "key", ev.Key)
		return false, nil
	}

	switch ev.Kind {
	case chart.EventClick:
		e.handlers.OnSeriesClick(target.Series, target.Datum, ev)
	case chart.EventHover:
		e.handlers.OnSeriesHover(target.Series, target.Datum, ev)
		if err := e.hover(ctx, ref, now); err != nil {
			return true, err
		}
	default:
		return false, errors.NewValidationError(errors.ErrCodeValidationFailed, "unknown event kind "+string(ev.Kind))
	}
	return true, nil
}

func (e *Engine) hover(ctx context.Context, ref dispatch.Ref, now time.Time) error {
	if ref == e.hovered {
		return nil
	}
	e.hovered = ref
	if !e.rendered {
		return nil
	}
	_, err := e.render(ctx, e.input, now)
	return err
}
