package marker

import (
	"maps"
	"slices"

	"github.com/gogpu/pixcil"
)

// strokeState accumulates a freehand trail of grid cells.
type strokeState struct {
	trail    map[pixcil.PixelPosition]struct{}
	last     pixcil.PixelPosition
	pressing bool
}

func (s *strokeState) mark(cell pixcil.PixelPosition, state PointerState) {
	switch state {
	case Neutral:
		s.pressing = false
		s.trail = map[pixcil.PixelPosition]struct{}{cell: {}}
	case Pressing:
		if !s.pressing {
			s.pressing = true
			s.trail = map[pixcil.PixelPosition]struct{}{cell: {}}
		} else {
			s.connect(cell)
		}
		s.last = cell
	case Clicked:
		if s.pressing {
			s.connect(cell)
		} else {
			s.trail = map[pixcil.PixelPosition]struct{}{cell: {}}
		}
		s.pressing = false
	}
}

func (s *strokeState) connect(cell pixcil.PixelPosition) {
	for _, p := range LinePositions(s.last, cell) {
		s.trail[p] = struct{}{}
	}
}

func (s *strokeState) cells() []pixcil.PixelPosition {
	return slices.Collect(maps.Keys(s.trail))
}

// shapeState tracks the anchor of a Line, Rectangle or Ellipse gesture.
// from/to are the endpoints the shape is drawn between; for an ellipse
// from is the center.
type shapeState struct {
	anchor    pixcil.PixelPosition
	hasAnchor bool
	from, to  pixcil.PixelPosition
	valid     bool
}

func (s *shapeState) mark(cell pixcil.PixelPosition, state PointerState) {
	s.valid = true
	switch state {
	case Neutral:
		s.hasAnchor = false
		s.from, s.to = cell, cell
	case Pressing:
		if !s.hasAnchor {
			s.anchor, s.hasAnchor = cell, true
		}
		s.from, s.to = s.anchor, cell
	case Clicked:
		if s.hasAnchor {
			s.from = s.anchor
		} else {
			s.from = cell
		}
		s.to = cell
		s.hasAnchor = false
	}
}
