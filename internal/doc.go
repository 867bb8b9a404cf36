// Package internal contains the implementation packages for combochart.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - chart: Series model, records, mark types and event handlers
//   - domain: X domain discovery, y extents and palette assignment
//   - align, stack, regression: Per-type data transforms
//   - scale: Linear, sqrt, time, band and ordinal scales and the scale
//     registry
//   - shapes: Bar, area, line, scatter and waterfall geometry
//   - scene: Scene graph, animated marks and transitions
//   - dispatch: Layering: z-order, bar and stack grouping, per-series
//     primitives
//   - axis: Axis rendering from the scale registry
//   - engine: The render pass tying the above together, and pointer
//     event routing to mark handlers
//   - svg: Scene serialization
//   - chartdef, dataset: Chart definitions and external data files
//   - config, logging, errors, version: Ambient infrastructure
//   - watcher, websocket, server: The live preview
//
// # Render Flow
//
// A render pass flows in one direction:
//
//	records -> domain -> scales -> shapes -> scene -> svg
//
// The engine owns the scene between passes so marks animate from their
// previous geometry to the new one.
package internal
