package pixcil

import (
	"github.com/google/btree"
)

// storeDegree is the B-tree node degree used by PixelStore.
const storeDegree = 32

// PixelStore is an exact sparse map from position to color.
//
// Iteration is always in ascending position order, which makes
// serialization deterministic. Draw and Erase enforce pairing:
// a position must be erased before it can be drawn again, and an erase
// must name the exact stored color. Together these make every command
// exactly reversible.
//
// Every successful mutation bumps Version, which lets derived caches
// (such as a fill marker's unbounded-region cache) detect staleness.
type PixelStore struct {
	tree    *btree.BTreeG[Pixel]
	version uint64
}

// NewPixelStore returns an empty store.
func NewPixelStore() *PixelStore {
	return &PixelStore{tree: btree.NewG(storeDegree, pixelLess)}
}

func pixelLess(a, b Pixel) bool {
	return a.Position.Less(b.Position)
}

// Len returns the number of stored pixels.
func (s *PixelStore) Len() int {
	return s.tree.Len()
}

// Version returns the mutation counter.
func (s *PixelStore) Version() uint64 {
	return s.version
}

// Get returns the color stored at pos.
func (s *PixelStore) Get(pos PixelPosition) (RGBA, bool) {
	px, ok := s.tree.Get(Pixel{Position: pos})
	return px.Color, ok
}

// Draw stores px. It fails if the position is already occupied.
func (s *PixelStore) Draw(px Pixel) error {
	if s.tree.Has(px) {
		return &InvariantError{Op: "draw", Position: px.Position, Reason: "position already occupied"}
	}
	s.tree.ReplaceOrInsert(px)
	s.version++
	return nil
}

// Erase removes px. It fails unless exactly px.Color is stored at the position.
func (s *PixelStore) Erase(px Pixel) error {
	got, ok := s.Get(px.Position)
	if !ok {
		return &InvariantError{Op: "erase", Position: px.Position, Reason: "no pixel stored"}
	}
	if got != px.Color {
		return &InvariantError{Op: "erase", Position: px.Position, Reason: "stored " + got.String() + ", erasing " + px.Color.String()}
	}
	s.tree.Delete(px)
	s.version++
	return nil
}

// Ascend calls fn for every pixel in ascending order until fn returns false.
func (s *PixelStore) Ascend(fn func(Pixel) bool) {
	s.tree.Ascend(fn)
}

// AscendRegion calls fn, in ascending order, for every pixel inside r.
func (s *PixelStore) AscendRegion(r PixelRegion, fn func(Pixel) bool) {
	if r.IsEmpty() {
		return
	}
	for y := r.Start.Y; y < r.End.Y; y++ {
		stop := false
		s.tree.AscendRange(Pixel{Position: Pos(r.Start.X, y)}, Pixel{Position: Pos(r.End.X, y)}, func(px Pixel) bool {
			if !fn(px) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}

// Pixels returns every stored pixel in ascending order.
func (s *PixelStore) Pixels() []Pixel {
	out := make([]Pixel, 0, s.tree.Len())
	s.tree.Ascend(func(px Pixel) bool {
		out = append(out, px)
		return true
	})
	return out
}

// Bounds returns the bounding box of all stored pixels.
// ok is false when the store is empty.
func (s *PixelStore) Bounds() (r PixelRegion, ok bool) {
	first, ok := s.tree.Min()
	if !ok {
		return PixelRegion{}, false
	}
	last, _ := s.tree.Max()
	minX, maxX := first.Position.X, first.Position.X
	s.tree.Ascend(func(px Pixel) bool {
		minX = min(minX, px.Position.X)
		maxX = max(maxX, px.Position.X)
		return true
	})
	return PixelRegion{
		Start: Pos(minX, first.Position.Y),
		End:   Pos(maxX+1, last.Position.Y+1),
	}, true
}

// Equal reports whether s and o hold exactly the same pixels.
func (s *PixelStore) Equal(o *PixelStore) bool {
	if s.Len() != o.Len() {
		return false
	}
	equal := true
	s.tree.Ascend(func(px Pixel) bool {
		c, ok := o.Get(px.Position)
		if !ok || c != px.Color {
			equal = false
		}
		return equal
	})
	return equal
}

// Clone returns an independent copy of s sharing no mutable state.
func (s *PixelStore) Clone() *PixelStore {
	return &PixelStore{tree: s.tree.Clone(), version: s.version}
}
