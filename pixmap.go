package pixcil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap is a dense straight-alpha RGBA snapshot of a canvas region.
// It is the hand-off format for exporters; the canvas itself stays sparse.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // NRGBA format, 4 bytes per pixel
}

// NewPixmap creates a new transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (NRGBA format).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel. Out-of-bounds writes are ignored.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return RGBA{R: p.data[i+0], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// ToImage converts the pixmap to an image.NRGBA.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from an image.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	pm := NewPixmap(bounds.Dx(), bounds.Dy())

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == pm.width*4 {
		copy(pm.data, nrgba.Pix)
		return pm
	}
	for y := 0; y < pm.height; y++ {
		for x := 0; x < pm.width; x++ {
			pm.SetPixel(x, y, FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return pm
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, p.ToImage()); err != nil {
		_ = f.Close()
		return fmt.Errorf("pixcil: encode PNG: %w", err)
	}
	return f.Close()
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).Color()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}

// Rasterize composites region into a pixmap using GetPixel.
func (c *Canvas) Rasterize(region PixelRegion) *Pixmap {
	pm := NewPixmap(max(region.Width(), 0), max(region.Height(), 0))
	for _, px := range c.GetPixels(region) {
		pm.SetPixel(int(px.Position.X-region.Start.X), int(px.Position.Y-region.Start.Y), px.Color)
	}
	return pm
}

// RasterizeFrame composites every enabled layer of frame, back to front,
// into a pixmap the size of the frame region. Disabled layers are skipped
// even when they are front-most, which is what an exported image shows.
func (c *Canvas) RasterizeFrame(frame int) (*Pixmap, error) {
	if c.addr == nil {
		r, ok := c.Bounds()
		if !ok {
			return NewPixmap(0, 0), nil
		}
		return c.Rasterize(r), nil
	}
	if frame < 0 || frame >= c.addr.FrameCount() {
		return nil, fmt.Errorf("pixcil: frame %d out of range [0, %d)", frame, c.addr.FrameCount())
	}

	region := c.addr.Region()
	layers := c.addr.Layers()
	pm := NewPixmap(region.Width(), region.Height())
	for l, layer := range layers {
		if !layer.Enabled {
			continue
		}
		c.store.AscendRegion(c.addr.FrameRegion(frame, l), func(px Pixel) bool {
			_, _, local, _ := c.addr.Locate(px.Position)
			x, y := int(local.X), int(local.Y)
			dst := pm.GetPixel(x, y)
			if dst.A == 0 {
				pm.SetPixel(x, y, px.Color)
			} else {
				pm.SetPixel(x, y, px.Color.AlphaBlend(dst))
			}
			return true
		})
	}
	return pm, nil
}
