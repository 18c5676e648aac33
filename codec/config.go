package codec

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/pixcil"
)

const (
	flagFillRectangle = 1 << iota
	flagFillEllipse
)

// encodeConfig serializes cfg. Fields are appended in a fixed order; newer
// writers may add fields at the end, which older readers skip.
func encodeConfig(cfg pixcil.Config) []byte {
	w := &writer{}
	w.bytes(cfg.ID[:])
	w.str(cfg.Name)
	w.u16(cfg.UnitSize)
	w.color(cfg.Color)
	var flags uint8
	if cfg.FillRectangle {
		flags |= flagFillRectangle
	}
	if cfg.FillEllipse {
		flags |= flagFillEllipse
	}
	w.u8(flags)
	w.u16(cfg.CurrentFrame)
	w.u16(cfg.CurrentLayer)

	addr := cfg.Addressing
	if addr == nil {
		addr = pixcil.DefaultConfig().Addressing
	}
	region := addr.Region()
	w.i16(region.Start.X)
	w.i16(region.Start.Y)
	w.i16(region.End.X)
	w.i16(region.End.Y)
	frames := addr.Frames()
	w.u16(uint16(len(frames)))
	for _, f := range frames {
		w.str(f.Name)
	}
	layers := addr.Layers()
	w.u16(uint16(len(layers)))
	for _, l := range layers {
		w.str(l.Name)
		if l.Enabled {
			w.u8(1)
		} else {
			w.u8(0)
		}
	}
	return w.buf
}

func decodeConfig(data []byte) (pixcil.Config, error) {
	r := &reader{data: data}
	var cfg pixcil.Config
	copy(cfg.ID[:], r.take(len(uuid.UUID{})))
	cfg.Name = pixcil.NormalizeName(r.str())
	cfg.UnitSize = r.u16()
	cfg.Color = r.color()
	flags := r.u8()
	cfg.FillRectangle = flags&flagFillRectangle != 0
	cfg.FillEllipse = flags&flagFillEllipse != 0
	cfg.CurrentFrame = r.u16()
	cfg.CurrentLayer = r.u16()

	var region pixcil.PixelRegion
	region.Start.X, region.Start.Y = r.i16(), r.i16()
	region.End.X, region.End.Y = r.i16(), r.i16()
	frames := make([]pixcil.Frame, r.u16())
	for i := range frames {
		frames[i].Name = r.str()
	}
	layers := make([]pixcil.Layer, r.u16())
	for i := range layers {
		layers[i].Name = r.str()
		layers[i].Enabled = r.u8() != 0
	}
	if r.err != nil {
		return pixcil.Config{}, fmt.Errorf("codec: config: %w", r.err)
	}
	// Anything left in r.data was written by a newer version and is ignored.

	addr, err := pixcil.RestoreAddressing(region, frames, layers)
	if err != nil {
		return pixcil.Config{}, fmt.Errorf("codec: config: %w: %w", ErrMalformed, err)
	}
	if int(cfg.CurrentFrame) >= addr.FrameCount() || int(cfg.CurrentLayer) >= addr.LayerCount() {
		return pixcil.Config{}, fmt.Errorf("codec: config: %w: current frame/layer out of range", ErrMalformed)
	}
	if cfg.UnitSize == 0 || cfg.UnitSize > pixcil.MaxUnitSize {
		return pixcil.Config{}, fmt.Errorf("codec: config: %w: unit size %d outside [1, %d]",
			ErrMalformed, cfg.UnitSize, pixcil.MaxUnitSize)
	}
	cfg.Addressing = addr
	return cfg, nil
}
