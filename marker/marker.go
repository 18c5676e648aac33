package marker

import (
	"fmt"
	"slices"

	"github.com/gogpu/pixcil"
)

// Kind selects the algorithm a Marker runs.
type Kind uint8

const (
	// Noop never marks anything. It backs tools without pixel semantics.
	Noop Kind = iota
	// Stroke marks a freehand trail, one connected line per pointer move.
	Stroke
	// Line marks a straight line from the press position.
	Line
	// Rectangle marks a rectangle spanned from the press position.
	Rectangle
	// Ellipse marks an ellipse centered on the press position.
	Ellipse
	// Fill marks the same-colored region under the pointer.
	Fill
	// Lasso marks the stored pixels enclosed by a freehand boundary.
	Lasso
	// Pick marks the single position under the pointer.
	Pick
)

var kindNames = [...]string{
	Noop:      "noop",
	Stroke:    "stroke",
	Line:      "line",
	Rectangle: "rectangle",
	Ellipse:   "ellipse",
	Fill:      "fill",
	Lasso:     "lasso",
	Pick:      "pick",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	if i := slices.Index(kindNames[:], s); i >= 0 {
		return Kind(i), nil
	}
	return Noop, fmt.Errorf("marker: unknown kind %q", s)
}

// PointerState is the discrete gesture phase a Marker is fed.
type PointerState uint8

const (
	// Neutral is hovering with no button held.
	Neutral PointerState = iota
	// Pressing is dragging with the button held.
	Pressing
	// Clicked is the release that completes a gesture.
	Clicked
)

func (s PointerState) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Pressing:
		return "pressing"
	case Clicked:
		return "clicked"
	default:
		return fmt.Sprintf("PointerState(%d)", s)
	}
}

// Context is the canvas view a Marker reads. *pixcil.Workspace implements it.
type Context interface {
	// UnitSize is the grid granularity positions are snapped to.
	UnitSize() int
	// StoredPixel returns the raw pixel stored at pos.
	StoredPixel(pos pixcil.PixelPosition) (pixcil.RGBA, bool)
	// PopulatedBounds returns the bounding box of every stored pixel.
	PopulatedBounds() (pixcil.PixelRegion, bool)
	// Version changes whenever the stored pixels change.
	Version() uint64
}

// Option configures a Marker.
type Option func(*Marker)

// WithFilled makes Rectangle and Ellipse mark their whole area instead of
// the outline. Other kinds ignore it.
func WithFilled(filled bool) Option {
	return func(m *Marker) {
		m.filled = filled
	}
}

// Marker is a gesture-to-positions algorithm. The zero value is a Noop.
//
// A Marker is not safe for concurrent use.
type Marker struct {
	kind   Kind
	filled bool

	stroke strokeState
	shape  shapeState
	fill   fillState
	lasso  lassoState

	pick    pixcil.PixelPosition
	hasPick bool
}

// New returns a fresh marker of the given kind.
func New(kind Kind, opts ...Option) *Marker {
	m := &Marker{kind: kind}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ForConfig returns a fresh marker of kind with the fill flags of cfg.
func ForConfig(kind Kind, cfg pixcil.Config) *Marker {
	switch kind {
	case Rectangle:
		return New(kind, WithFilled(cfg.FillRectangle))
	case Ellipse:
		return New(kind, WithFilled(cfg.FillEllipse))
	default:
		return New(kind)
	}
}

// Kind returns the marker kind.
func (m *Marker) Kind() Kind { return m.kind }

// Filled reports whether shapes are marked filled.
func (m *Marker) Filled() bool { return m.filled }

// Mark feeds the latest pointer position and state into the marker.
func (m *Marker) Mark(ctx Context, pos pixcil.PixelPosition, state PointerState) {
	switch m.kind {
	case Stroke:
		m.stroke.mark(Normalize(pos, ctx.UnitSize()), state)
	case Line, Rectangle, Ellipse:
		m.shape.mark(Normalize(pos, ctx.UnitSize()), state)
	case Fill:
		m.fill.mark(ctx, pos)
	case Lasso:
		m.lasso.mark(ctx, Normalize(pos, ctx.UnitSize()), state)
	case Pick:
		m.pick, m.hasPick = pos, true
	case Noop:
	}
}

// MarkedPixels returns the positions the gesture currently covers, in
// ascending order.
func (m *Marker) MarkedPixels(ctx Context) []pixcil.PixelPosition {
	switch m.kind {
	case Stroke:
		return denormalizeAll(m.stroke.cells(), ctx.UnitSize())
	case Line:
		if !m.shape.valid {
			return nil
		}
		return denormalizeAll(LinePositions(m.shape.from, m.shape.to), ctx.UnitSize())
	case Rectangle:
		if !m.shape.valid {
			return nil
		}
		return denormalizeAll(RectanglePositions(m.shape.from, m.shape.to, m.filled), ctx.UnitSize())
	case Ellipse:
		if !m.shape.valid {
			return nil
		}
		d := m.shape.to.Sub(m.shape.from)
		return denormalizeAll(EllipsePositions(m.shape.from, int(d.X), int(d.Y), m.filled), ctx.UnitSize())
	case Fill:
		return slices.Clone(m.fill.marked)
	case Lasso:
		return m.lasso.pixels(ctx.UnitSize())
	case Pick:
		if !m.hasPick {
			return nil
		}
		return []pixcil.PixelPosition{m.pick}
	default:
		return nil
	}
}

// Apply performs the edit a finished gesture of kind stands for on ws:
// drawing kinds paint the current color, Pick adopts the color under the
// first position. Lasso and Noop only select and change nothing.
// It reports whether ws changed.
func Apply(ws *pixcil.Workspace, kind Kind, positions []pixcil.PixelPosition) bool {
	if len(positions) == 0 {
		return false
	}
	switch kind {
	case Stroke, Line, Rectangle, Ellipse, Fill:
		return ws.Paint(positions)
	case Pick:
		return ws.PickColor(positions[0])
	default:
		return false
	}
}
