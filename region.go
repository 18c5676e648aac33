package pixcil

import "fmt"

// PixelRegion is the half-open rectangle [Start, End).
type PixelRegion struct {
	Start, End PixelPosition
}

// NewRegion returns the region [start, end).
// It panics with an *InvariantError if end is above or left of start.
func NewRegion(start, end PixelPosition) PixelRegion {
	if end.X < start.X || end.Y < start.Y {
		panic(&InvariantError{Op: "region", Position: end, Reason: fmt.Sprintf("end before start %v", start)})
	}
	return PixelRegion{Start: start, End: end}
}

// RegionFromPositions returns the bounding box of ps.
// The zero region is returned for an empty slice.
func RegionFromPositions(ps []PixelPosition) PixelRegion {
	if len(ps) == 0 {
		return PixelRegion{}
	}
	minX, minY := ps[0].X, ps[0].Y
	maxX, maxY := minX, minY
	for _, p := range ps[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return PixelRegion{Start: Pos(minX, minY), End: Pos(maxX+1, maxY+1)}
}

// Width returns the horizontal extent of r.
func (r PixelRegion) Width() int { return int(r.End.X) - int(r.Start.X) }

// Height returns the vertical extent of r.
func (r PixelRegion) Height() int { return int(r.End.Y) - int(r.Start.Y) }

// Area returns the number of positions inside r.
func (r PixelRegion) Area() int { return r.Width() * r.Height() }

// IsEmpty reports whether r contains no position.
func (r PixelRegion) IsEmpty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Contains reports whether p lies inside r.
func (r PixelRegion) Contains(p PixelPosition) bool {
	return r.Start.X <= p.X && p.X < r.End.X && r.Start.Y <= p.Y && p.Y < r.End.Y
}

// Expand grows r by n positions on every side (clamped to ±MaxCoord).
func (r PixelRegion) Expand(n int) PixelRegion {
	return PixelRegion{Start: r.Start.Offset(-n, -n), End: r.End.Offset(n, n)}
}

// Union returns the smallest region containing r and o.
// An empty operand is ignored.
func (r PixelRegion) Union(o PixelRegion) PixelRegion {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return PixelRegion{
		Start: Pos(min(r.Start.X, o.Start.X), min(r.Start.Y, o.Start.Y)),
		End:   Pos(max(r.End.X, o.End.X), max(r.End.Y, o.End.Y)),
	}
}

// Intersect returns the overlap of r and o, which may be empty.
func (r PixelRegion) Intersect(o PixelRegion) PixelRegion {
	out := PixelRegion{
		Start: Pos(max(r.Start.X, o.Start.X), max(r.Start.Y, o.Start.Y)),
		End:   Pos(min(r.End.X, o.End.X), min(r.End.Y, o.End.Y)),
	}
	if out.IsEmpty() {
		return PixelRegion{}
	}
	return out
}

// Positions lists every position of r in ascending order.
func (r PixelRegion) Positions() []PixelPosition {
	if r.IsEmpty() {
		return nil
	}
	ps := make([]PixelPosition, 0, r.Area())
	for y := r.Start.Y; y < r.End.Y; y++ {
		for x := r.Start.X; x < r.End.X; x++ {
			ps = append(ps, Pos(x, y))
		}
	}
	return ps
}

func (r PixelRegion) String() string {
	return fmt.Sprintf("[%v, %v)", r.Start, r.End)
}
