package marker

import "github.com/gogpu/pixcil"

// fillState holds the last flood result and the positions known to lie in
// an unbounded region for the current store version.
type fillState struct {
	origin  pixcil.PixelPosition
	version uint64
	fresh   bool
	marked  []pixcil.PixelPosition

	cacheVersion uint64
	cannotFill   map[pixcil.PixelPosition]struct{}
}

func (s *fillState) mark(ctx Context, origin pixcil.PixelPosition) {
	version := ctx.Version()
	if s.fresh && s.origin == origin && s.version == version {
		return
	}
	s.origin, s.version, s.fresh = origin, version, true

	if s.cannotFill == nil || s.cacheVersion != version {
		s.cannotFill = make(map[pixcil.PixelPosition]struct{})
		s.cacheVersion = version
	}
	if _, ok := s.cannotFill[origin]; ok {
		s.marked = nil
		return
	}

	bounds, ok := ctx.PopulatedBounds()
	if !ok {
		s.cannotFill[origin] = struct{}{}
		s.marked = nil
		return
	}
	positions, unbounded := FloodFill(ctx, origin, bounds)
	if unbounded {
		for _, p := range positions {
			s.cannotFill[p] = struct{}{}
		}
		pixcil.Logger().Debug("fill region unbounded", "origin", origin, "visited", len(positions))
		s.marked = nil
		return
	}
	s.marked = positions
}
