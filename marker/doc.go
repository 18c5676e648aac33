// Package marker turns pointer gestures into sets of canvas positions.
//
// A Marker is one of a closed set of kinds (Stroke, Line, Rectangle,
// Ellipse, Fill, Lasso, Pick, Noop). It is fed the latest pointer position
// together with a discrete PointerState and reports the positions the
// gesture currently covers:
//
//	m := marker.New(marker.Line)
//	m.Mark(ws, pixcil.Pos(0, 0), marker.Pressing)
//	m.Mark(ws, pixcil.Pos(4, 2), marker.Clicked)
//	positions := m.MarkedPixels(ws)
//
// Most kinds snap pointer positions to the workspace unit size before
// computing their shape and expand every marked cell back to unit pixels
// when reporting, so drawing on a coarse grid paints whole blocks.
//
// # Handler
//
// Handler wraps a Marker for raw pointer input. It drops consumed,
// non-primary and repeated events, derives the PointerState from the
// Move/Down/Up action stream and reports which positions need a redraw.
//
// Abandoning a gesture is done by replacing the marker with a fresh one.
package marker
