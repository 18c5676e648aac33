package pixcil

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestCanvas_DrawUndoRedoScenario(t *testing.T) {
	c := NewCanvas()

	if !c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: Red}}) {
		t.Fatal("DrawPixels() = false, want true")
	}
	if got, ok := c.GetPixel(Pos(0, 0)); !ok || got != Red {
		t.Errorf("GetPixel() = %v, %v, want red", got, ok)
	}

	if !c.Undo() {
		t.Fatal("Undo() = false, want true")
	}
	if _, ok := c.GetPixel(Pos(0, 0)); ok {
		t.Error("GetPixel() after Undo found a pixel")
	}

	if !c.Redo() {
		t.Fatal("Redo() = false, want true")
	}
	if got, ok := c.GetPixel(Pos(0, 0)); !ok || got != Red {
		t.Errorf("GetPixel() after Redo = %v, %v, want red", got, ok)
	}
}

func TestCanvas_EditAfterUndoTruncates(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: Red}})
	c.DrawPixels([]Pixel{{Position: Pos(1, 0), Color: Red}})
	c.Undo()
	c.DrawPixels([]Pixel{{Position: Pos(2, 0), Color: Blue}})

	if c.HistoryLen() != 2 {
		t.Errorf("HistoryLen() = %d, want 2", c.HistoryLen())
	}
	if c.Tail() != 2 {
		t.Errorf("Tail() = %d, want 2", c.Tail())
	}
	if c.Redo() {
		t.Error("Redo() after a new edit = true, want false")
	}
	if _, ok := c.StoredPixel(Pos(1, 0)); ok {
		t.Error("discarded command is still reachable")
	}
}

func TestCanvas_UndoRedoEmpty(t *testing.T) {
	c := NewCanvas()
	if c.Undo() || c.Redo() {
		t.Error("Undo()/Redo() on an empty log should return false")
	}
	if c.CanUndo() || c.CanRedo() {
		t.Error("CanUndo()/CanRedo() on an empty log should be false")
	}
}

func TestCanvas_DrawBlending(t *testing.T) {
	tests := []struct {
		name string
		c1   RGBA
		c2   RGBA
	}{
		{"opaque overwrite", RGB(10, 20, 30), RGB(200, 100, 50)},
		{"translucent", RGB(0, 0, 255), RGBA{255, 0, 0, 100}},
		{"translucent over translucent", RGBA{0, 255, 0, 60}, RGBA{255, 0, 0, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas()
			c.DrawPixels([]Pixel{{Position: Pos(1, 1), Color: tt.c1}})
			c.DrawPixels([]Pixel{{Position: Pos(1, 1), Color: tt.c2}})

			got, _ := c.StoredPixel(Pos(1, 1))
			if want := tt.c2.AlphaBlend(tt.c1); got != want {
				t.Errorf("stored = %v, want %v", got, want)
			}
			if tt.c2.A == 255 && got != tt.c2 {
				t.Errorf("opaque draw stored %v, want exactly %v", got, tt.c2)
			}

			cmd := c.Commands()[1]
			if len(cmd.Erase) != 1 || cmd.Erase[0].Color != tt.c1 {
				t.Errorf("erase = %v, want the previous pixel", cmd.Erase)
			}
		})
	}
}

func TestCanvas_NoopEditsSuppressed(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: Red}, {Position: Pos(1, 0), Color: Red}})

	tests := []struct {
		name string
		fn   func() bool
	}{
		{"draw nothing", func() bool { return c.DrawPixels(nil) }},
		{"redraw same opaque color", func() bool { return c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: Red}}) }},
		{"draw transparent", func() bool { return c.DrawPixels([]Pixel{{Position: Pos(5, 5), Color: Transparent}}) }},
		{"erase empty", func() bool { return c.ErasePixels([]PixelPosition{Pos(9, 9)}) }},
		{"move by zero", func() bool { return c.MovePixels([]PixelPosition{Pos(0, 0), Pos(1, 0)}, Pos(0, 0)) }},
		{"move nothing", func() bool { return c.MovePixels([]PixelPosition{Pos(7, 7)}, Pos(1, 0)) }},
		{"replace same color", func() bool { return c.ReplaceColor(Red, Red) }},
		{"replace absent color", func() bool { return c.ReplaceColor(Blue, Green) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fn() {
				t.Error("operation appended a command, want no-op")
			}
			if c.HistoryLen() != 1 {
				t.Errorf("HistoryLen() = %d, want 1", c.HistoryLen())
			}
		})
	}
}

func TestCanvas_ErasePixels(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: Red}, {Position: Pos(1, 0), Color: Blue}})
	if !c.ErasePixels([]PixelPosition{Pos(1, 0), Pos(3, 3), Pos(1, 0)}) {
		t.Fatal("ErasePixels() = false")
	}
	if c.PixelCount() != 1 {
		t.Errorf("PixelCount() = %d, want 1", c.PixelCount())
	}
	cmd := c.Commands()[1]
	if len(cmd.Erase) != 1 || cmd.Erase[0] != NewPixel(Pos(1, 0), Blue) || len(cmd.Draw) != 0 {
		t.Errorf("erase command = %+v", cmd)
	}
}

func TestCanvas_MovePixelsOverlapping(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{
		{Position: Pos(0, 0), Color: Red},
		{Position: Pos(1, 0), Color: Green},
		{Position: Pos(2, 0), Color: Blue},
	})
	c.TakeDirtyPositions()

	if !c.MovePixels([]PixelPosition{Pos(0, 0), Pos(1, 0), Pos(2, 0)}, Pos(1, 0)) {
		t.Fatal("MovePixels() = false")
	}

	want := map[PixelPosition]RGBA{Pos(1, 0): Red, Pos(2, 0): Green, Pos(3, 0): Blue}
	if c.PixelCount() != len(want) {
		t.Fatalf("PixelCount() = %d, want %d", c.PixelCount(), len(want))
	}
	for pos, col := range want {
		if got, _ := c.StoredPixel(pos); got != col {
			t.Errorf("StoredPixel(%v) = %v, want %v", pos, got, col)
		}
	}

	cmd := c.Commands()[1]
	assertCommandInvariants(t, cmd)

	dirty := c.TakeDirtyPositions()
	wantDirty := []PixelPosition{Pos(0, 0), Pos(1, 0), Pos(2, 0), Pos(3, 0)}
	if !slices.Equal(dirty, wantDirty) {
		t.Errorf("TakeDirtyPositions() = %v, want %v", dirty, wantDirty)
	}
}

func TestCanvas_MovePixelsBlendsOverDestination(t *testing.T) {
	c := NewCanvas()
	translucent := RGBA{255, 0, 0, 128}
	c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: translucent}, {Position: Pos(0, 1), Color: Blue}})
	c.MovePixels([]PixelPosition{Pos(0, 0)}, Pos(0, 1))

	if _, ok := c.StoredPixel(Pos(0, 0)); ok {
		t.Error("source position still occupied")
	}
	if got, want := mustStored(t, c, Pos(0, 1)), translucent.AlphaBlend(Blue); got != want {
		t.Errorf("destination = %v, want %v", got, want)
	}

	c.Undo()
	if got := mustStored(t, c, Pos(0, 1)); got != Blue {
		t.Errorf("destination after Undo = %v, want %v", got, Blue)
	}
	if got := mustStored(t, c, Pos(0, 0)); got != translucent {
		t.Errorf("source after Undo = %v, want %v", got, translucent)
	}
}

func TestCanvas_MovePixelsKeepsOutOfRange(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{
		{Position: Pos(19990, 0), Color: Red},
		{Position: Pos(19999, 0), Color: Green},
		{Position: Pos(MaxCoord, 0), Color: Blue},
	})

	if !c.MovePixels([]PixelPosition{Pos(19990, 0), Pos(19999, 0), Pos(MaxCoord, 0)}, Pos(5, 0)) {
		t.Fatal("MovePixels() = false, want true")
	}
	if got := mustStored(t, c, Pos(19995, 0)); got != Red {
		t.Errorf("moved pixel = %v, want %v", got, Red)
	}
	if got := mustStored(t, c, Pos(19999, 0)); got != Green {
		t.Errorf("pixel (19999, 0) = %v, want it left in place", got)
	}
	if got := mustStored(t, c, Pos(MaxCoord, 0)); got != Blue {
		t.Errorf("pixel (%d, 0) = %v, want it left in place", MaxCoord, got)
	}
	if c.PixelCount() != 3 {
		t.Errorf("PixelCount() = %d, want 3", c.PixelCount())
	}

	if c.MovePixels([]PixelPosition{Pos(19999, 0), Pos(MaxCoord, 0)}, Pos(5, 0)) {
		t.Error("MovePixels() with every destination out of range = true, want false")
	}
}

func TestCanvas_ReplaceColor(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{
		{Position: Pos(0, 0), Color: Red},
		{Position: Pos(1, 0), Color: Blue},
		{Position: Pos(2, 0), Color: Red},
	})
	if !c.ReplaceColor(Red, Green) {
		t.Fatal("ReplaceColor() = false")
	}
	for _, pos := range []PixelPosition{Pos(0, 0), Pos(2, 0)} {
		if got := mustStored(t, c, pos); got != Green {
			t.Errorf("StoredPixel(%v) = %v, want green", pos, got)
		}
	}
	if got := mustStored(t, c, Pos(1, 0)); got != Blue {
		t.Errorf("untouched pixel = %v, want blue", got)
	}

	c.ReplaceColor(Green, Transparent)
	if c.PixelCount() != 1 {
		t.Errorf("PixelCount() after replacing with transparent = %d, want 1", c.PixelCount())
	}
}

func TestCanvas_ForgetOldest(t *testing.T) {
	c := NewCanvas()
	for i := int16(0); i < 3; i++ {
		c.DrawPixels([]Pixel{{Position: Pos(i, 0), Color: Red}})
	}
	c.Undo()

	if !c.ForgetOldest() {
		t.Fatal("ForgetOldest() = false")
	}
	if c.HistoryLen() != 2 || c.Tail() != 1 {
		t.Errorf("after ForgetOldest: len=%d tail=%d, want len=2 tail=1", c.HistoryLen(), c.Tail())
	}
	// The forgotten pixel stays on the canvas; only its history is gone.
	if _, ok := c.StoredPixel(Pos(0, 0)); !ok {
		t.Error("ForgetOldest() changed the store")
	}

	c.Undo()
	if c.Undo() {
		t.Error("Undo() past the forgotten command = true")
	}
	if !c.Redo() || !c.Redo() || c.Redo() {
		t.Error("Redo() sequence after ForgetOldest is wrong")
	}
}

func TestCanvas_ForgetOldestAtTailZero(t *testing.T) {
	c := NewCanvas()
	c.DrawPixels([]Pixel{{Position: Pos(0, 0), Color: Red}})
	c.DrawPixels([]Pixel{{Position: Pos(1, 0), Color: Red}})
	c.Undo()
	c.Undo()
	// Nothing is applied, so the redo chain built on the oldest command goes too.
	if !c.ForgetOldest() {
		t.Fatal("ForgetOldest() = false")
	}
	if c.Tail() != 0 || c.HistoryLen() != 0 || c.CanRedo() {
		t.Errorf("tail=%d len=%d, want an empty log", c.Tail(), c.HistoryLen())
	}
	if c.ForgetOldest() {
		t.Error("ForgetOldest() on an empty log = true")
	}
}

// TestCanvas_RandomHistory drives random edits and checks that every undo
// restores the exact previous store, that redo replays to the final store,
// and that every recorded command keeps its list invariants.
func TestCanvas_RandomHistory(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	palette := []RGBA{Red, Green, Blue, {255, 255, 0, 90}, {0, 255, 255, 200}}
	randPos := func() PixelPosition { return Pos(int16(rng.IntN(8)), int16(rng.IntN(8))) }

	c := NewCanvas()
	snapshots := []*PixelStore{c.store.Clone()}

	for i := 0; i < 200; i++ {
		var changed bool
		switch rng.IntN(4) {
		case 0:
			var ps []Pixel
			for j := rng.IntN(6); j >= 0; j-- {
				ps = append(ps, Pixel{Position: randPos(), Color: palette[rng.IntN(len(palette))]})
			}
			changed = c.DrawPixels(ps)
		case 1:
			changed = c.ErasePixels([]PixelPosition{randPos(), randPos(), randPos()})
		case 2:
			changed = c.MovePixels([]PixelPosition{randPos(), randPos(), randPos(), randPos()},
				Pos(int16(rng.IntN(3)-1), int16(rng.IntN(3)-1)))
		case 3:
			changed = c.ReplaceColor(palette[rng.IntN(len(palette))], palette[rng.IntN(len(palette))])
		}
		if changed {
			snapshots = append(snapshots, c.store.Clone())
		}
	}

	if c.HistoryLen() != len(snapshots)-1 {
		t.Fatalf("HistoryLen() = %d, want %d", c.HistoryLen(), len(snapshots)-1)
	}
	for _, cmd := range c.Commands() {
		assertCommandInvariants(t, cmd)
	}

	final := c.store.Clone()
	for i := len(snapshots) - 2; i >= 0; i-- {
		if !c.Undo() {
			t.Fatalf("Undo() #%d = false", i)
		}
		if !c.store.Equal(snapshots[i]) {
			t.Fatalf("store after undo to %d differs from snapshot", i)
		}
	}
	for c.Redo() {
	}
	if !c.store.Equal(final) {
		t.Error("store after redoing everything differs from the final store")
	}
}

func TestCanvas_LayerCompositing(t *testing.T) {
	addr := NewAddressing(NewRegion(Pos(0, 0), Pos(4, 4)))
	addr.AddLayer("top")
	c := NewCanvas(WithAddressing(addr))

	bottom := addr.Physical(0, 0, Pos(1, 1))
	top := addr.Physical(0, 1, Pos(1, 1))
	translucent := RGBA{255, 0, 0, 128}

	c.DrawPixels([]Pixel{{Position: bottom, Color: Blue}, {Position: top, Color: translucent}})

	if got, _ := c.GetPixel(bottom); got != Blue {
		t.Errorf("GetPixel(bottom) = %v, want %v", got, Blue)
	}
	if got, want := mustPixel(t, c, top), translucent.AlphaBlend(Blue); got != want {
		t.Errorf("GetPixel(top) = %v, want %v", got, want)
	}

	if got, _ := c.GetPixelWithAlpha(top, 0); got != Blue {
		t.Errorf("GetPixelWithAlpha(top, 0) = %v, want lower layer %v", got, Blue)
	}
	if got, want := mustPixelAlpha(t, c, top, 255), Red; got != want {
		t.Errorf("GetPixelWithAlpha(top, 255) = %v, want %v", got, want)
	}

	addr.SetLayerEnabled(0, false)
	if got, _ := c.GetPixel(top); got != translucent {
		t.Errorf("GetPixel(top) with disabled bottom = %v, want %v", got, translucent)
	}

	region := addr.FrameRegion(0, 1)
	pixels := c.GetPixels(region)
	if len(pixels) != 1 || pixels[0].Position != top {
		t.Errorf("GetPixels(top frame) = %v, want single pixel at %v", pixels, top)
	}
}

func TestCanvas_DisabledViewedLayer(t *testing.T) {
	addr := NewAddressing(NewRegion(Pos(0, 0), Pos(4, 4)))
	addr.AddLayer("top")
	c := NewCanvas(WithAddressing(addr))

	bottom := addr.Physical(0, 0, Pos(2, 2))
	top := addr.Physical(0, 1, Pos(2, 2))
	lone := addr.Physical(0, 1, Pos(0, 0))
	c.DrawPixels([]Pixel{{Position: bottom, Color: Blue}, {Position: top, Color: Red}, {Position: lone, Color: Red}})

	addr.SetLayerEnabled(1, false)
	if got := mustPixel(t, c, top); got != Blue {
		t.Errorf("GetPixel(top) with viewed layer disabled = %v, want %v", got, Blue)
	}
	if got, ok := c.GetPixel(lone); ok {
		t.Errorf("GetPixel(lone) = %v, true, want no pixel", got)
	}
}

func TestCanvas_DirtyPropagatesToUpperLayers(t *testing.T) {
	addr := NewAddressing(NewRegion(Pos(0, 0), Pos(4, 4)))
	addr.AddLayer("middle")
	addr.AddLayer("top")
	c := NewCanvas(WithAddressing(addr))

	c.DrawPixels([]Pixel{{Position: addr.Physical(0, 0, Pos(2, 3)), Color: Red}})
	got := c.TakeDirtyPositions()
	want := []PixelPosition{Pos(2, 3), Pos(2, 7), Pos(2, 11)}
	if !slices.Equal(got, want) {
		t.Errorf("TakeDirtyPositions() = %v, want %v", got, want)
	}
	if again := c.TakeDirtyPositions(); len(again) != 0 {
		t.Errorf("second TakeDirtyPositions() = %v, want empty", again)
	}

	c.Undo()
	if got := c.TakeDirtyPositions(); !slices.Equal(got, want) {
		t.Errorf("TakeDirtyPositions() after Undo = %v, want %v", got, want)
	}
}

func TestRestoreCanvas_InconsistentHistory(t *testing.T) {
	red := Pixel{Position: Pos(1, 1), Color: Red}
	blue := Pixel{Position: Pos(1, 1), Color: Blue}
	tests := []struct {
		name     string
		pixels   []Pixel
		commands []Command
		tail     int
	}{
		{"undo erases missing pixel", nil, []Command{{Draw: []Pixel{red}}}, 1},
		{"undo erases wrong color", []Pixel{blue}, []Command{{Draw: []Pixel{red}}}, 1},
		{"redo draws occupied", []Pixel{blue}, []Command{{Draw: []Pixel{red}}}, 0},
		{"redo erases missing pixel", nil, []Command{{Erase: []Pixel{red}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := RestoreCanvas(tt.pixels, tt.commands, tt.tail)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("RestoreCanvas() error = %v, want ErrInvariant", err)
			}
			if c != nil {
				t.Error("RestoreCanvas() returned a canvas for an inconsistent history")
			}
		})
	}

	c, err := RestoreCanvas([]Pixel{red}, []Command{{Draw: []Pixel{red}}, {Erase: []Pixel{red}, Draw: []Pixel{blue}}}, 1)
	if err != nil {
		t.Fatalf("RestoreCanvas() error = %v", err)
	}
	if !c.Redo() || !c.Undo() || !c.Undo() {
		t.Error("restored history does not replay")
	}
	if c.PixelCount() != 0 {
		t.Errorf("PixelCount() after undoing everything = %d, want 0", c.PixelCount())
	}
}

func TestRestoreCanvas_Validation(t *testing.T) {
	good := []Command{{Draw: []Pixel{NewPixel(Pos(0, 0), Red)}}}

	tests := []struct {
		name     string
		pixels   []Pixel
		commands []Command
		tail     int
		wantErr  bool
	}{
		{"valid", []Pixel{NewPixel(Pos(0, 0), Red)}, good, 1, false},
		{"tail too large", nil, good, 2, true},
		{"negative tail", nil, good, -1, true},
		{"unsorted pixels", []Pixel{NewPixel(Pos(1, 0), Red), NewPixel(Pos(0, 0), Red)}, nil, 0, true},
		{"empty command", nil, []Command{{}}, 0, true},
		{"unsorted command", nil, []Command{{Draw: []Pixel{NewPixel(Pos(1, 0), Red), NewPixel(Pos(0, 0), Red)}}}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := RestoreCanvas(tt.pixels, tt.commands, tt.tail)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RestoreCanvas() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (c.Tail() != tt.tail || c.PixelCount() != len(tt.pixels)) {
				t.Errorf("restored tail=%d pixels=%d", c.Tail(), c.PixelCount())
			}
		})
	}
}

func assertCommandInvariants(t *testing.T, cmd Command) {
	t.Helper()
	if cmd.IsEmpty() {
		t.Error("empty command in log")
	}
	if err := cmd.validate(); err != nil {
		t.Errorf("command %+v: %v", cmd, err)
	}
}

func mustStored(t *testing.T, c *Canvas, pos PixelPosition) RGBA {
	t.Helper()
	col, ok := c.StoredPixel(pos)
	if !ok {
		t.Fatalf("no pixel stored at %v", pos)
	}
	return col
}

func mustPixel(t *testing.T, c *Canvas, pos PixelPosition) RGBA {
	t.Helper()
	col, ok := c.GetPixel(pos)
	if !ok {
		t.Fatalf("no pixel visible at %v", pos)
	}
	return col
}

func mustPixelAlpha(t *testing.T, c *Canvas, pos PixelPosition, alpha uint8) RGBA {
	t.Helper()
	col, ok := c.GetPixelWithAlpha(pos, alpha)
	if !ok {
		t.Fatalf("no pixel visible at %v", pos)
	}
	return col
}
