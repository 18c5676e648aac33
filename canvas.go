package pixcil

import (
	"fmt"
	"slices"
)

// Canvas is the pixel-canvas engine: a PixelStore edited exclusively
// through reversible commands recorded in a CommandLog.
//
// Every mutating method appends at most one command and returns whether it
// did. Edits that change nothing are suppressed. Touched positions are
// expanded through the Addressing to every layer whose composite they
// affect and accumulated until TakeDirtyPositions drains them.
//
// A Canvas is not safe for concurrent use. Callers that share one across
// goroutines must serialize all access through a single lock or owner.
//
// Store invariant violations while applying a command indicate a bug and
// panic with an *InvariantError.
type Canvas struct {
	store      *PixelStore
	log        CommandLog
	addr       *Addressing
	dirty      map[PixelPosition]struct{}
	trackDirty bool
}

// NewCanvas returns an empty canvas.
func NewCanvas(opts ...CanvasOption) *Canvas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Canvas{
		store:      NewPixelStore(),
		addr:       o.addressing,
		dirty:      make(map[PixelPosition]struct{}),
		trackDirty: o.trackDirty,
	}
}

// RestoreCanvas rebuilds a canvas from persisted state. pixels must be
// strictly ascending, every command must satisfy the list invariants and
// tail must lie within [0, len(commands)]. The whole history must also
// replay against pixels: every command can be undone down to an empty log
// and then redone to its end without a store invariant violation.
func RestoreCanvas(pixels []Pixel, commands []Command, tail int, opts ...CanvasOption) (*Canvas, error) {
	if !isSortedUnique(pixels) {
		return nil, &InvariantError{Op: "restore", Reason: "pixels not strictly ascending"}
	}
	if tail < 0 || tail > len(commands) {
		return nil, &InvariantError{Op: "restore", Reason: fmt.Sprintf("tail %d outside [0, %d]", tail, len(commands))}
	}
	for i, cmd := range commands {
		if cmd.IsEmpty() {
			return nil, &InvariantError{Op: "restore", Reason: fmt.Sprintf("command %d is empty", i)}
		}
		if err := cmd.validate(); err != nil {
			return nil, &InvariantError{Op: "restore", Reason: fmt.Sprintf("command %d: %v", i, err)}
		}
	}

	c := NewCanvas(opts...)
	for _, px := range pixels {
		if err := c.store.Draw(px); err != nil {
			return nil, err
		}
	}
	if err := replayHistory(c.store.Clone(), commands, tail); err != nil {
		return nil, err
	}
	c.log = CommandLog{commands: slices.Clone(commands), tail: tail}
	return c, nil
}

// replayHistory undoes commands[:tail] and then redoes every command on s.
func replayHistory(s *PixelStore, commands []Command, tail int) error {
	step := func(i int, erase, draw []Pixel) error {
		for _, px := range erase {
			if err := s.Erase(px); err != nil {
				return fmt.Errorf("pixcil: restore command %d: %w", i, err)
			}
		}
		for _, px := range draw {
			if err := s.Draw(px); err != nil {
				return fmt.Errorf("pixcil: restore command %d: %w", i, err)
			}
		}
		return nil
	}
	for i := tail - 1; i >= 0; i-- {
		if err := step(i, commands[i].Draw, commands[i].Erase); err != nil {
			return err
		}
	}
	for i, cmd := range commands {
		if err := step(i, cmd.Erase, cmd.Draw); err != nil {
			return err
		}
	}
	return nil
}

// Addressing returns the frame/layer addressing, or nil for a flat canvas.
func (c *Canvas) Addressing() *Addressing { return c.addr }

// SetAddressing replaces the frame/layer addressing.
func (c *Canvas) SetAddressing(a *Addressing) { c.addr = a }

// DrawPixels draws pixels over the canvas. A pixel landing on an occupied
// position is alpha-blended over the stored color. Fully transparent pixels
// on empty positions are ignored.
func (c *Canvas) DrawPixels(pixels []Pixel) bool {
	pixels = sortPixels(slices.Clone(pixels))

	var erase, draw []Pixel
	for _, px := range pixels {
		col := px.Color
		if old, ok := c.store.Get(px.Position); ok {
			erase = append(erase, Pixel{Position: px.Position, Color: old})
			col = col.AlphaBlend(old)
		} else if col.A == 0 {
			continue
		}
		draw = append(draw, Pixel{Position: px.Position, Color: col})
	}
	return c.appendCommand(newCommand(erase, draw))
}

// ErasePixels removes the pixels at positions. Empty positions are skipped.
func (c *Canvas) ErasePixels(positions []PixelPosition) bool {
	positions = SortPositions(slices.Clone(positions))

	var erase []Pixel
	for _, pos := range positions {
		if old, ok := c.store.Get(pos); ok {
			erase = append(erase, Pixel{Position: pos, Color: old})
		}
	}
	return c.appendCommand(newCommand(erase, nil))
}

// MovePixels moves the pixels at positions by delta. A moved pixel is
// blended over whatever stays at its destination. Pixels whose destination
// would leave the coordinate range stay where they are.
func (c *Canvas) MovePixels(positions []PixelPosition, delta PixelPosition) bool {
	positions = SortPositions(slices.Clone(positions))

	var erase, draw, moving []Pixel
	vacated := make(map[PixelPosition]struct{}, len(positions))
	for _, pos := range positions {
		if pos.Add(delta).Sub(delta) != pos {
			continue
		}
		if col, ok := c.store.Get(pos); ok {
			px := Pixel{Position: pos, Color: col}
			erase = append(erase, px)
			moving = append(moving, px)
			vacated[pos] = struct{}{}
		}
	}

	for _, px := range moving {
		dst := px.Position.Add(delta)
		col := px.Color
		if _, gone := vacated[dst]; !gone {
			if old, ok := c.store.Get(dst); ok {
				erase = append(erase, Pixel{Position: dst, Color: old})
				col = col.AlphaBlend(old)
			}
		}
		draw = append(draw, Pixel{Position: dst, Color: col})
	}
	return c.appendCommand(newCommand(erase, draw))
}

// ReplaceColor redraws every pixel stored as from with to. Replacing with
// a fully transparent color erases the pixels.
//
// This scans the whole store.
// TODO: keep a color -> positions index so large canvases avoid the scan.
func (c *Canvas) ReplaceColor(from, to RGBA) bool {
	if from == to {
		return false
	}

	var erase, draw []Pixel
	c.store.Ascend(func(px Pixel) bool {
		if px.Color == from {
			erase = append(erase, px)
			if to.A != 0 {
				draw = append(draw, Pixel{Position: px.Position, Color: to})
			}
		}
		return true
	})
	return c.appendCommand(newCommand(erase, draw))
}

// Undo reverts the most recently applied command.
func (c *Canvas) Undo() bool {
	if !c.log.CanUndo() {
		return false
	}
	c.log.tail--
	cmd := c.log.At(c.log.tail)
	c.apply(cmd.Draw, cmd.Erase)
	Logger().Debug("undo", "tail", c.log.tail, "len", c.log.Len())
	return true
}

// Redo re-applies the next redoable command.
func (c *Canvas) Redo() bool {
	if !c.log.CanRedo() {
		return false
	}
	cmd := c.log.At(c.log.tail)
	c.apply(cmd.Erase, cmd.Draw)
	c.log.tail++
	Logger().Debug("redo", "tail", c.log.tail, "len", c.log.Len())
	return true
}

// ForgetOldest evicts the oldest command from the history. It is never
// called by the canvas itself; see the history package for a policy.
func (c *Canvas) ForgetOldest() bool {
	if !c.log.forgetOldest() {
		return false
	}
	Logger().Debug("forget oldest command", "tail", c.log.tail, "len", c.log.Len())
	return true
}

// CanUndo reports whether Undo would do anything.
func (c *Canvas) CanUndo() bool { return c.log.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (c *Canvas) CanRedo() bool { return c.log.CanRedo() }

// HistoryLen returns the number of commands in the log.
func (c *Canvas) HistoryLen() int { return c.log.Len() }

// Tail returns the command log cursor.
func (c *Canvas) Tail() int { return c.log.Tail() }

// Commands returns a copy of the command log.
func (c *Canvas) Commands() []Command { return c.log.Commands() }

// StoredPixel returns the raw color stored at pos, without compositing.
func (c *Canvas) StoredPixel(pos PixelPosition) (RGBA, bool) {
	return c.store.Get(pos)
}

// Pixels returns every stored pixel in ascending position order.
func (c *Canvas) Pixels() []Pixel { return c.store.Pixels() }

// PixelCount returns the number of stored pixels.
func (c *Canvas) PixelCount() int { return c.store.Len() }

// Bounds returns the bounding box of all stored pixels.
func (c *Canvas) Bounds() (PixelRegion, bool) { return c.store.Bounds() }

// Version returns the store mutation counter.
func (c *Canvas) Version() uint64 { return c.store.Version() }

// GetPixel returns the composited color visible at pos: the layers at or
// below the layer pos lives on, blended back to front.
func (c *Canvas) GetPixel(pos PixelPosition) (RGBA, bool) {
	if c.addr == nil {
		return c.store.Get(pos)
	}
	frame, layer, local, ok := c.addr.Locate(pos)
	if !ok {
		return c.store.Get(pos)
	}
	var out RGBA
	found := false
	c.addr.ForEachLowerLayerPixel(frame, layer, local, func(p PixelPosition) {
		out, found = c.blendStored(p, out, found)
	})
	return out, found
}

// GetPixelWithAlpha is GetPixel with the alpha of the front-most layer (the
// layer pos lives on) overridden. An alpha of 0 hides that layer and shows
// only the layers beneath it.
func (c *Canvas) GetPixelWithAlpha(pos PixelPosition, alpha uint8) (RGBA, bool) {
	var out RGBA
	found := false
	if c.addr != nil {
		if frame, layer, local, ok := c.addr.Locate(pos); ok {
			c.addr.ForEachLowerLayerPixelExcludingTop(frame, layer, local, func(p PixelPosition) {
				out, found = c.blendStored(p, out, found)
			})
		}
	}
	if alpha == 0 {
		return out, found
	}
	top, ok := c.store.Get(pos)
	if !ok {
		return out, found
	}
	top.A = alpha
	if !found {
		return top, true
	}
	return top.AlphaBlend(out), true
}

// GetPixels returns the composited pixels inside region in ascending order.
func (c *Canvas) GetPixels(region PixelRegion) []Pixel {
	var out []Pixel
	if c.addr == nil {
		c.store.AscendRegion(region, func(px Pixel) bool {
			out = append(out, px)
			return true
		})
		return out
	}
	for _, pos := range region.Positions() {
		if col, ok := c.GetPixel(pos); ok {
			out = append(out, Pixel{Position: pos, Color: col})
		}
	}
	return out
}

// TakeDirtyPositions returns and clears the positions invalidated since the
// previous call, in ascending order.
func (c *Canvas) TakeDirtyPositions() []PixelPosition {
	if len(c.dirty) == 0 {
		return nil
	}
	out := make([]PixelPosition, 0, len(c.dirty))
	for pos := range c.dirty {
		out = append(out, pos)
	}
	clear(c.dirty)
	slices.SortFunc(out, PixelPosition.Compare)
	return out
}

func (c *Canvas) blendStored(p PixelPosition, acc RGBA, found bool) (RGBA, bool) {
	col, ok := c.store.Get(p)
	if !ok {
		return acc, found
	}
	if !found {
		return col, true
	}
	return col.AlphaBlend(acc), true
}

// appendCommand truncates the redo history, records cmd and applies it.
func (c *Canvas) appendCommand(cmd Command) bool {
	if cmd.IsEmpty() {
		return false
	}
	c.log.push(cmd)
	c.apply(cmd.Erase, cmd.Draw)
	c.log.tail++
	Logger().Debug("command appended", "erase", len(cmd.Erase), "draw", len(cmd.Draw), "tail", c.log.tail)
	return true
}

// apply erases then draws, panicking on any store invariant violation.
func (c *Canvas) apply(erase, draw []Pixel) {
	for _, px := range erase {
		if err := c.store.Erase(px); err != nil {
			panic(err)
		}
		c.markDirty(px.Position)
	}
	for _, px := range draw {
		if err := c.store.Draw(px); err != nil {
			panic(err)
		}
		c.markDirty(px.Position)
	}
}

func (c *Canvas) markDirty(pos PixelPosition) {
	if !c.trackDirty {
		return
	}
	if c.addr != nil {
		if frame, layer, local, ok := c.addr.Locate(pos); ok {
			c.addr.ForEachUpperLayerPixel(frame, layer, local, func(p PixelPosition) {
				c.dirty[p] = struct{}{}
			})
			return
		}
	}
	c.dirty[pos] = struct{}{}
}
