package marker

import (
	"slices"

	"github.com/gogpu/pixcil"
)

// lassoState draws a freehand boundary with the stroke algorithm and, once
// the gesture completes, selects the stored pixels it encloses.
type lassoState struct {
	boundary  strokeState
	selection []pixcil.PixelPosition
	done      bool
}

func (s *lassoState) mark(ctx Context, cell pixcil.PixelPosition, state PointerState) {
	if state != Clicked {
		s.done = false
		s.selection = nil
		s.boundary.mark(cell, state)
		return
	}
	s.boundary.mark(cell, state)
	s.selection = enclosedPixels(ctx, denormalizeAll(s.boundary.cells(), ctx.UnitSize()))
	s.done = true
}

func (s *lassoState) pixels(unit int) []pixcil.PixelPosition {
	if s.done {
		return slices.Clone(s.selection)
	}
	return denormalizeAll(s.boundary.cells(), unit)
}

// enclosedPixels returns the stored pixels on or inside boundary.
//
// Everything reachable from the edge of the boundary's bounding box (grown
// by one) without crossing the boundary is outside; whatever remains in the
// box and holds a stored pixel is selected.
func enclosedPixels(ctx Context, boundary []pixcil.PixelPosition) []pixcil.PixelPosition {
	if len(boundary) == 0 {
		return nil
	}
	wall := make(map[pixcil.PixelPosition]struct{}, len(boundary))
	for _, p := range boundary {
		wall[p] = struct{}{}
	}
	inner := pixcil.RegionFromPositions(boundary)
	box := inner.Expand(1)

	outside := make(map[pixcil.PixelPosition]struct{})
	var stack []pixcil.PixelPosition
	push := func(p pixcil.PixelPosition) {
		if !box.Contains(p) {
			return
		}
		if _, ok := wall[p]; ok {
			return
		}
		if _, ok := outside[p]; ok {
			return
		}
		outside[p] = struct{}{}
		stack = append(stack, p)
	}
	for x := box.Start.X; x < box.End.X; x++ {
		push(pixcil.Pos(x, box.Start.Y))
		push(pixcil.Pos(x, box.End.Y-1))
	}
	for y := box.Start.Y; y < box.End.Y; y++ {
		push(pixcil.Pos(box.Start.X, y))
		push(pixcil.Pos(box.End.X-1, y))
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range neighbors4 {
			push(p.Offset(d[0], d[1]))
		}
	}

	var out []pixcil.PixelPosition
	for _, p := range inner.Positions() {
		if _, ok := outside[p]; ok {
			continue
		}
		if _, ok := ctx.StoredPixel(p); ok {
			out = append(out, p)
		}
	}
	return out
}
