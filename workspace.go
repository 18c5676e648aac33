package pixcil

// Workspace is a Config plus the Canvas it describes: the unit that is
// saved, loaded and exported.
//
// Workspace also provides the canvas view markers need (unit size, raw
// pixel lookup, populated bounds and store version).
type Workspace struct {
	Config Config
	Canvas *Canvas
}

// NewWorkspace returns an empty workspace using cfg.
func NewWorkspace(cfg Config) *Workspace {
	cfg = cfg.withDefaults()
	return &Workspace{
		Config: cfg,
		Canvas: NewCanvas(WithAddressing(cfg.Addressing)),
	}
}

// RestoreWorkspace pairs a decoded config with a decoded canvas.
func RestoreWorkspace(cfg Config, canvas *Canvas) *Workspace {
	cfg = cfg.withDefaults()
	canvas.SetAddressing(cfg.Addressing)
	return &Workspace{Config: cfg, Canvas: canvas}
}

// UnitSize returns the minimum pixel size.
func (w *Workspace) UnitSize() int { return int(w.Config.UnitSize) }

// StoredPixel returns the raw color stored at pos.
func (w *Workspace) StoredPixel(pos PixelPosition) (RGBA, bool) { return w.Canvas.StoredPixel(pos) }

// PopulatedBounds returns the bounding box of all stored pixels.
func (w *Workspace) PopulatedBounds() (PixelRegion, bool) { return w.Canvas.Bounds() }

// Version returns the store mutation counter.
func (w *Workspace) Version() uint64 { return w.Canvas.Version() }

// Paint draws the current color at positions as one command.
func (w *Workspace) Paint(positions []PixelPosition) bool {
	pixels := make([]Pixel, len(positions))
	for i, pos := range positions {
		pixels[i] = Pixel{Position: pos, Color: w.Config.Color}
	}
	return w.Canvas.DrawPixels(pixels)
}

// Erase removes the pixels at positions as one command.
func (w *Workspace) Erase(positions []PixelPosition) bool {
	return w.Canvas.ErasePixels(positions)
}

// PickColor makes the composited color at pos the current color.
// It reports false when nothing is visible at pos.
func (w *Workspace) PickColor(pos PixelPosition) bool {
	c, ok := w.Canvas.GetPixel(pos)
	if !ok {
		return false
	}
	w.Config.Color = c
	return true
}

// CurrentFrameRegion returns the physical region of the frame and layer
// being edited.
func (w *Workspace) CurrentFrameRegion() PixelRegion {
	return w.Config.Addressing.FrameRegion(int(w.Config.CurrentFrame), int(w.Config.CurrentLayer))
}

func (cfg Config) withDefaults() Config {
	if cfg.UnitSize == 0 {
		cfg.UnitSize = 1
	}
	if cfg.Addressing == nil {
		cfg.Addressing = NewAddressing(NewRegion(Pos(0, 0), Pos(DefaultFrameSize, DefaultFrameSize)))
	}
	return cfg
}
