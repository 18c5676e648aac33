package pixcil

import "slices"

// Pixel is a colored canvas position.
type Pixel struct {
	Position PixelPosition
	Color    RGBA
}

// NewPixel is shorthand for Pixel{Position: pos, Color: c}.
func NewPixel(pos PixelPosition, c RGBA) Pixel {
	return Pixel{Position: pos, Color: c}
}

func comparePixels(a, b Pixel) int {
	return a.Position.Compare(b.Position)
}

// sortPixels sorts ps by position. When a position appears more than
// once only the last occurrence is kept.
func sortPixels(ps []Pixel) []Pixel {
	slices.SortStableFunc(ps, comparePixels)
	out := ps[:0]
	for i, p := range ps {
		if i+1 < len(ps) && ps[i+1].Position == p.Position {
			continue
		}
		out = append(out, p)
	}
	return out
}

// isSortedUnique reports whether ps is strictly ascending by position.
func isSortedUnique(ps []Pixel) bool {
	for i := 1; i < len(ps); i++ {
		if ps[i-1].Position.Compare(ps[i].Position) >= 0 {
			return false
		}
	}
	return true
}
