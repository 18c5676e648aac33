package pixcil

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Frame is one animation frame: a named copy of the frame region laid out
// to the right of the previous frame.
type Frame struct {
	Name string
}

// Layer is a named stacking level. Layer 0 is the back-most layer.
type Layer struct {
	Name    string
	Enabled bool
}

// Addressing maps logical (frame, layer, local position) triples onto
// physical store positions.
//
// The frame region describes frame 0 on layer 0. Frame f is shifted right
// by f region widths and layer l is shifted down by l region heights, so
// every (frame, layer) pair owns a disjoint cell of canvas space:
//
//	physical = region.Start + local + (f*width, l*height)
//
// Compositing iterates layers back to front within one frame.
type Addressing struct {
	region PixelRegion
	frames []Frame
	layers []Layer
}

// NewAddressing returns an addressing with one frame and one enabled layer.
func NewAddressing(region PixelRegion) *Addressing {
	return &Addressing{
		region: region,
		frames: []Frame{{Name: "frame 1"}},
		layers: []Layer{{Name: "layer 1", Enabled: true}},
	}
}

// RestoreAddressing rebuilds an addressing from persisted parts.
func RestoreAddressing(region PixelRegion, frames []Frame, layers []Layer) (*Addressing, error) {
	if region.IsEmpty() {
		return nil, fmt.Errorf("pixcil: empty frame region %v", region)
	}
	if len(frames) == 0 || len(layers) == 0 {
		return nil, fmt.Errorf("pixcil: addressing needs at least one frame and one layer")
	}
	a := &Addressing{region: region}
	for _, f := range frames {
		a.frames = append(a.frames, Frame{Name: NormalizeName(f.Name)})
	}
	for _, l := range layers {
		a.layers = append(a.layers, Layer{Name: NormalizeName(l.Name), Enabled: l.Enabled})
	}
	return a, nil
}

// NormalizeName trims surrounding space and converts s to Unicode NFC so
// that visually identical frame and layer names compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Region returns the region of frame 0 on layer 0.
func (a *Addressing) Region() PixelRegion { return a.region }

// Frames returns a copy of the frame list.
func (a *Addressing) Frames() []Frame { return append([]Frame(nil), a.frames...) }

// Layers returns a copy of the layer list, back-most first.
func (a *Addressing) Layers() []Layer { return append([]Layer(nil), a.layers...) }

// FrameCount returns the number of frames.
func (a *Addressing) FrameCount() int { return len(a.frames) }

// LayerCount returns the number of layers.
func (a *Addressing) LayerCount() int { return len(a.layers) }

// AddFrame appends a frame and returns its index.
func (a *Addressing) AddFrame(name string) int {
	a.frames = append(a.frames, Frame{Name: NormalizeName(name)})
	return len(a.frames) - 1
}

// AddLayer appends an enabled front-most layer and returns its index.
func (a *Addressing) AddLayer(name string) int {
	a.layers = append(a.layers, Layer{Name: NormalizeName(name), Enabled: true})
	return len(a.layers) - 1
}

// SetLayerEnabled toggles whether layer contributes to composites.
func (a *Addressing) SetLayerEnabled(layer int, enabled bool) {
	a.layers[layer].Enabled = enabled
}

// RenameFrame sets the name of frame.
func (a *Addressing) RenameFrame(frame int, name string) {
	a.frames[frame].Name = NormalizeName(name)
}

// RenameLayer sets the name of layer.
func (a *Addressing) RenameLayer(layer int, name string) {
	a.layers[layer].Name = NormalizeName(name)
}

// Physical returns the store position of local within (frame, layer).
func (a *Addressing) Physical(frame, layer int, local PixelPosition) PixelPosition {
	return a.region.Start.Offset(
		int(local.X)+frame*a.region.Width(),
		int(local.Y)+layer*a.region.Height(),
	)
}

// FrameRegion returns the physical region owned by (frame, layer).
func (a *Addressing) FrameRegion(frame, layer int) PixelRegion {
	start := a.Physical(frame, layer, PixelPosition{})
	return PixelRegion{Start: start, End: start.Offset(a.region.Width(), a.region.Height())}
}

// Locate is the inverse of Physical. ok is false for positions outside
// every (frame, layer) cell.
func (a *Addressing) Locate(pos PixelPosition) (frame, layer int, local PixelPosition, ok bool) {
	w, h := a.region.Width(), a.region.Height()
	if w <= 0 || h <= 0 {
		return 0, 0, PixelPosition{}, false
	}
	dx := int(pos.X) - int(a.region.Start.X)
	dy := int(pos.Y) - int(a.region.Start.Y)
	if dx < 0 || dy < 0 {
		return 0, 0, PixelPosition{}, false
	}
	frame, layer = dx/w, dy/h
	if frame >= len(a.frames) || layer >= len(a.layers) {
		return 0, 0, PixelPosition{}, false
	}
	return frame, layer, Pos(int16(dx%w), int16(dy%h)), true
}

// ForEachLowerLayerPixel calls f, back to front, with the physical position
// of local on every enabled layer at or below layer.
func (a *Addressing) ForEachLowerLayerPixel(frame, layer int, local PixelPosition, f func(PixelPosition)) {
	a.ForEachLowerLayerPixelExcludingTop(frame, layer, local, f)
	if layer < len(a.layers) && a.layers[layer].Enabled {
		f(a.Physical(frame, layer, local))
	}
}

// ForEachLowerLayerPixelExcludingTop is ForEachLowerLayerPixel without the
// final visit of layer itself.
func (a *Addressing) ForEachLowerLayerPixelExcludingTop(frame, layer int, local PixelPosition, f func(PixelPosition)) {
	for l := 0; l < layer && l < len(a.layers); l++ {
		if a.layers[l].Enabled {
			f(a.Physical(frame, l, local))
		}
	}
}

// ForEachUpperLayerPixel calls f with the physical position of local on
// layer and on every layer whose composite includes layer. A change on a
// disabled layer is only visible on the layer itself.
func (a *Addressing) ForEachUpperLayerPixel(frame, layer int, local PixelPosition, f func(PixelPosition)) {
	f(a.Physical(frame, layer, local))
	if layer >= len(a.layers) || !a.layers[layer].Enabled {
		return
	}
	for l := layer + 1; l < len(a.layers); l++ {
		f(a.Physical(frame, l, local))
	}
}

// Clone returns a deep copy of a.
func (a *Addressing) Clone() *Addressing {
	return &Addressing{region: a.region, frames: a.Frames(), layers: a.Layers()}
}
