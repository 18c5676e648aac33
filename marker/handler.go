package marker

import (
	"slices"

	"github.com/gogpu/pixcil"
)

// Action is the raw pointer action of an event.
type Action uint8

const (
	Move Action = iota
	Down
	Up
)

// PointerKind identifies the input device.
type PointerKind uint8

const (
	Mouse PointerKind = iota
	Pen
	Touch
)

// PointerEvent is one pointer sample delivered by the surrounding UI.
type PointerEvent struct {
	Position pixcil.PixelPosition
	Action   Action
	Kind     PointerKind
	// Primary is false for secondary touches and buttons.
	Primary bool
	// Consumed is set by UI layers that already handled the event.
	Consumed bool
}

// Update is the result of a handled event.
type Update struct {
	// Dirty lists the positions whose rendering changed, ascending.
	Dirty []pixcil.PixelPosition
	// Region bounds Dirty. It is empty when Dirty is.
	Region pixcil.PixelRegion
	// State is the pointer state after the event.
	State PointerState
}

// Handler feeds pointer events into a Marker and tracks what needs a redraw.
type Handler struct {
	marker *Marker
	state  PointerState
	marked []pixcil.PixelPosition

	lastPos    pixcil.PixelPosition
	lastAction Action
	hasLast    bool
}

// NewHandler returns a handler driving m.
func NewHandler(m *Marker) *Handler {
	return &Handler{marker: m}
}

// Marker returns the marker being driven.
func (h *Handler) Marker() *Marker { return h.marker }

// State returns the current pointer state.
func (h *Handler) State() PointerState { return h.state }

// Marked returns the positions marked after the last handled event.
func (h *Handler) Marked() []pixcil.PixelPosition { return slices.Clone(h.marked) }

// Reset replaces the marker, abandoning any gesture in progress. The
// previously marked positions are returned as dirty.
func (h *Handler) Reset(m *Marker) Update {
	u := Update{Dirty: h.marked, Region: pixcil.RegionFromPositions(h.marked), State: Neutral}
	h.marker = m
	h.state = Neutral
	h.marked = nil
	h.hasLast = false
	return u
}

// Handle processes ev. It reports false when the event was ignored:
// consumed, non-primary, or an exact repeat of the previous event.
func (h *Handler) Handle(ctx Context, ev PointerEvent) (Update, bool) {
	if ev.Consumed || !ev.Primary {
		return Update{State: h.state}, false
	}
	if h.hasLast && h.lastPos == ev.Position && h.lastAction == ev.Action {
		return Update{State: h.state}, false
	}
	h.lastPos, h.lastAction, h.hasLast = ev.Position, ev.Action, true

	prev := h.state
	h.state = nextState(prev, ev.Action)
	h.marker.Mark(ctx, ev.Position, h.state)
	marked := h.marker.MarkedPixels(ctx)

	var dirty []pixcil.PixelPosition
	if prev == h.state {
		dirty = symmetricDifference(h.marked, marked)
	} else {
		dirty = pixcil.SortPositions(append(slices.Clone(h.marked), marked...))
	}
	h.marked = marked
	return Update{Dirty: dirty, Region: pixcil.RegionFromPositions(dirty), State: h.state}, true
}

func nextState(s PointerState, a Action) PointerState {
	switch {
	case a == Down && (s == Neutral || s == Clicked):
		return Pressing
	case s == Pressing && a == Up:
		return Clicked
	case s == Pressing && (a == Move || a == Down):
		return Pressing
	default:
		return Neutral
	}
}

// symmetricDifference merges two ascending position lists, keeping the
// positions present in exactly one of them.
func symmetricDifference(a, b []pixcil.PixelPosition) []pixcil.PixelPosition {
	var out []pixcil.PixelPosition
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := a[i].Compare(b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
