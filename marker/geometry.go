package marker

import (
	"slices"

	"github.com/gogpu/pixcil"
)

// Normalize snaps pos to the grid cell of size unit that contains it.
// Division floors, so negative coordinates map to the cell on their left.
func Normalize(pos pixcil.PixelPosition, unit int) pixcil.PixelPosition {
	if unit <= 1 {
		return pos
	}
	return pixcil.PixelPosition{
		X: pixcil.ClampCoord(floorDiv(int(pos.X), unit)),
		Y: pixcil.ClampCoord(floorDiv(int(pos.Y), unit)),
	}
}

// DenormalizeToRegion returns the unit pixels covered by grid cell.
func DenormalizeToRegion(cell pixcil.PixelPosition, unit int) pixcil.PixelRegion {
	if unit <= 1 {
		return pixcil.PixelRegion{Start: cell, End: cell.Offset(1, 1)}
	}
	start := pixcil.PixelPosition{
		X: pixcil.ClampCoord(int(cell.X) * unit),
		Y: pixcil.ClampCoord(int(cell.Y) * unit),
	}
	return pixcil.PixelRegion{Start: start, End: start.Offset(unit, unit)}
}

// denormalizeAll expands cells to unit pixels, sorted and deduplicated.
func denormalizeAll(cells []pixcil.PixelPosition, unit int) []pixcil.PixelPosition {
	if len(cells) == 0 {
		return nil
	}
	if unit <= 1 {
		return pixcil.SortPositions(slices.Clone(cells))
	}
	out := make([]pixcil.PixelPosition, 0, len(cells)*unit*unit)
	for _, c := range cells {
		out = append(out, DenormalizeToRegion(c, unit).Positions()...)
	}
	return pixcil.SortPositions(out)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// roundDiv returns n/d rounded half away from zero. d must be positive.
func roundDiv(n, d int) int {
	if n >= 0 {
		return (2*n + d) / (2 * d)
	}
	return -((-2*n + d) / (2 * d))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// LinePositions rasterizes the segment a-b with one position per step
// along the major axis. Endpoints are ordered along that axis first, so
// LinePositions(a, b) and LinePositions(b, a) return the same set.
func LinePositions(a, b pixcil.PixelPosition) []pixcil.PixelPosition {
	if a == b {
		return []pixcil.PixelPosition{a}
	}
	dx := int(b.X) - int(a.X)
	dy := int(b.Y) - int(a.Y)

	out := make([]pixcil.PixelPosition, 0, max(abs(dx), abs(dy))+1)
	if abs(dx) >= abs(dy) {
		if dx < 0 {
			a, b = b, a
			dx, dy = -dx, -dy
		}
		for i := 0; i <= dx; i++ {
			out = append(out, pixcil.PixelPosition{X: a.X + int16(i), Y: a.Y + int16(roundDiv(dy*i, dx))})
		}
	} else {
		if dy < 0 {
			a, b = b, a
			dx, dy = -dx, -dy
		}
		for i := 0; i <= dy; i++ {
			out = append(out, pixcil.PixelPosition{X: a.X + int16(roundDiv(dx*i, dy)), Y: a.Y + int16(i)})
		}
	}
	return pixcil.SortPositions(out)
}

// RectanglePositions returns the outline (or, if filled, the whole area) of
// the rectangle with opposite corners a and b, both inclusive.
func RectanglePositions(a, b pixcil.PixelPosition, filled bool) []pixcil.PixelPosition {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minY, maxY := min(a.Y, b.Y), max(a.Y, b.Y)

	var out []pixcil.PixelPosition
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if filled || y == minY || y == maxY || x == minX || x == maxX {
				out = append(out, pixcil.Pos(x, y))
			}
		}
	}
	return out
}

// ellipseSamples is the per-axis sub-sample count used to estimate how much
// of a cell lies inside the ellipse.
const ellipseSamples = 11

// EllipsePositions returns the outline (or, if filled, the whole area) of
// the axis-aligned ellipse centered at center with radii rx and ry.
//
// One quadrant is traced from (0, ry) to (rx, 0). At each step the walk
// moves right, diagonally or down to whichever neighbor's sampled coverage
// is closest to one half, preferring that order on ties. The quadrant is
// then mirrored into the other three. A zero radius degenerates to a line.
func EllipsePositions(center pixcil.PixelPosition, rx, ry int, filled bool) []pixcil.PixelPosition {
	rx, ry = abs(rx), abs(ry)
	if rx == 0 || ry == 0 {
		return LinePositions(center.Offset(-rx, -ry), center.Offset(rx, ry))
	}

	quadrant := traceEllipseQuadrant(rx, ry)

	// spans[dy] is the widest |dx| reached on row dy.
	spans := make(map[int]int, ry+1)
	var out []pixcil.PixelPosition
	for _, q := range quadrant {
		spans[q[1]] = max(spans[q[1]], q[0])
		if filled {
			continue
		}
		for _, s := range [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}} {
			out = append(out, center.Offset(s[0]*q[0], s[1]*q[1]))
		}
	}
	if filled {
		for dy, w := range spans {
			for dx := -w; dx <= w; dx++ {
				out = append(out, center.Offset(dx, dy), center.Offset(dx, -dy))
			}
		}
	}
	return pixcil.SortPositions(out)
}

func traceEllipseQuadrant(rx, ry int) [][2]int {
	x, y := 0, ry
	out := [][2]int{{x, y}}
	for x != rx || y != 0 {
		switch {
		case y == 0:
			x++
		case x == rx:
			y--
		default:
			candidates := [3][2]int{{x + 1, y}, {x + 1, y - 1}, {x, y - 1}}
			best, bestDist := 0, 2.0
			for i, c := range candidates {
				d := ellipseCoverage(c[0], c[1], rx, ry) - 0.5
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					best, bestDist = i, d
				}
			}
			x, y = candidates[best][0], candidates[best][1]
		}
		out = append(out, [2]int{x, y})
	}
	return out
}

// ellipseCoverage estimates the fraction of the unit cell centered on
// (x, y) that lies inside (x/rx)^2 + (y/ry)^2 <= 1.
func ellipseCoverage(x, y, rx, ry int) float64 {
	fx, fy := float64(rx), float64(ry)
	inside := 0
	for i := range ellipseSamples {
		sx := float64(x) - 0.5 + (float64(i)+0.5)/ellipseSamples
		for j := range ellipseSamples {
			sy := float64(y) - 0.5 + (float64(j)+0.5)/ellipseSamples
			if (sx/fx)*(sx/fx)+(sy/fy)*(sy/fy) <= 1 {
				inside++
			}
		}
	}
	return float64(inside) / (ellipseSamples * ellipseSamples)
}

var neighbors4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FloodFill returns the 4-connected positions reachable from origin that
// hold exactly the same stored pixel as origin, empty included.
//
// The flood never leaves bounds. When it tries to, unbounded is true and
// positions holds everything visited so far; callers treat that as an
// unfillable region. An origin outside bounds is unbounded immediately.
func FloodFill(ctx Context, origin pixcil.PixelPosition, bounds pixcil.PixelRegion) (positions []pixcil.PixelPosition, unbounded bool) {
	if !bounds.Contains(origin) {
		return []pixcil.PixelPosition{origin}, true
	}
	target, hasTarget := ctx.StoredPixel(origin)
	matches := func(p pixcil.PixelPosition) bool {
		c, ok := ctx.StoredPixel(p)
		return ok == hasTarget && c == target
	}

	visited := map[pixcil.PixelPosition]struct{}{origin: {}}
	stack := []pixcil.PixelPosition{origin}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		positions = append(positions, p)
		for _, d := range neighbors4 {
			n := p.Offset(d[0], d[1])
			if _, seen := visited[n]; seen || !matches(n) {
				continue
			}
			if !bounds.Contains(n) {
				unbounded = true
				continue
			}
			visited[n] = struct{}{}
			stack = append(stack, n)
		}
	}
	return pixcil.SortPositions(positions), unbounded
}
