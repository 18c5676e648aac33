package pixcil

// CanvasOption configures a Canvas during creation.
//
// Example:
//
//	addr := pixcil.NewAddressing(pixcil.NewRegion(pixcil.Pos(0, 0), pixcil.Pos(32, 32)))
//	c := pixcil.NewCanvas(pixcil.WithAddressing(addr))
type CanvasOption func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	addressing *Addressing
	trackDirty bool
}

// defaultOptions returns the default canvas options.
func defaultOptions() canvasOptions {
	return canvasOptions{
		addressing: nil, // flat canvas: no layer compositing
		trackDirty: true,
	}
}

// WithAddressing enables frame/layer compositing for queries and dirty
// tracking. The Canvas keeps a reference: later frame or layer changes
// made through a are seen by the Canvas.
func WithAddressing(a *Addressing) CanvasOption {
	return func(o *canvasOptions) {
		o.addressing = a
	}
}

// WithDirtyTracking controls whether mutations accumulate dirty positions.
// Headless tools (export, batch conversion) can turn it off.
func WithDirtyTracking(enabled bool) CanvasOption {
	return func(o *canvasOptions) {
		o.trackDirty = enabled
	}
}
