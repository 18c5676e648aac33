package pixcil

import (
	"cmp"
	"fmt"
	"slices"
)

// MaxCoord bounds coordinates produced by position arithmetic so that
// frame and layer offsets never overflow int16.
const MaxCoord = 20000

// PixelPosition is a canvas position in unit pixels.
//
// Positions are totally ordered y-major: rows first, then columns.
// The order is load-bearing for command logs and serialization.
type PixelPosition struct {
	X, Y int16
}

// Pos is shorthand for PixelPosition{X: x, Y: y}.
func Pos(x, y int16) PixelPosition {
	return PixelPosition{X: x, Y: y}
}

// ClampCoord clamps v to [-MaxCoord, MaxCoord].
func ClampCoord(v int) int16 {
	if v < -MaxCoord {
		return -MaxCoord
	}
	if v > MaxCoord {
		return MaxCoord
	}
	return int16(v)
}

// Compare returns -1, 0 or +1 comparing p to q in y-major order.
func (p PixelPosition) Compare(q PixelPosition) int {
	if c := cmp.Compare(p.Y, q.Y); c != 0 {
		return c
	}
	return cmp.Compare(p.X, q.X)
}

// Less reports whether p sorts before q.
func (p PixelPosition) Less(q PixelPosition) bool {
	return p.Compare(q) < 0
}

// Add returns p+q with each coordinate clamped to ±MaxCoord.
func (p PixelPosition) Add(q PixelPosition) PixelPosition {
	return PixelPosition{
		X: ClampCoord(int(p.X) + int(q.X)),
		Y: ClampCoord(int(p.Y) + int(q.Y)),
	}
}

// Sub returns p-q with each coordinate clamped to ±MaxCoord.
func (p PixelPosition) Sub(q PixelPosition) PixelPosition {
	return PixelPosition{
		X: ClampCoord(int(p.X) - int(q.X)),
		Y: ClampCoord(int(p.Y) - int(q.Y)),
	}
}

// Offset returns p moved by (dx, dy), clamped to ±MaxCoord.
func (p PixelPosition) Offset(dx, dy int) PixelPosition {
	return PixelPosition{
		X: ClampCoord(int(p.X) + dx),
		Y: ClampCoord(int(p.Y) + dy),
	}
}

func (p PixelPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// SortPositions sorts ps ascending and removes duplicates in place.
// The deduplicated slice is returned.
func SortPositions(ps []PixelPosition) []PixelPosition {
	slices.SortFunc(ps, PixelPosition.Compare)
	return slices.Compact(ps)
}
