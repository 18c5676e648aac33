// Package codec reads and writes the binary workspace format.
//
// Layout, big-endian:
//
//	magic     "PIXCIL"
//	version   u16 (0)
//	config    u16 length, then that many bytes
//	body      deflate stream: command log, tail, pixel store
//
// Position lists inside the body store all zigzag y-deltas first and then
// all zigzag x-deltas, which keeps the ascending order of the store cheap
// to compress.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/gogpu/pixcil"
)

// Magic starts every workspace file.
const Magic = "PIXCIL"

// Version is the only format version this package reads and writes.
const Version uint16 = 0

// Encode writes ws to w.
func Encode(w io.Writer, ws *pixcil.Workspace) error {
	data, err := Marshal(ws)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a workspace from r.
func Decode(r io.Reader) (*pixcil.Workspace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read: %w", err)
	}
	return Unmarshal(data)
}

// Marshal returns the encoding of ws.
func Marshal(ws *pixcil.Workspace) ([]byte, error) {
	cfg := encodeConfig(ws.Config)
	if len(cfg) > 0xffff {
		return nil, fmt.Errorf("codec: config block is %d bytes", len(cfg))
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	head := writer{}
	head.u16(Version)
	head.u16(uint16(len(cfg)))
	head.bytes(cfg)
	out.Write(head.buf)

	fw, err := flate.NewWriter(&out, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	if _, err := fw.Write(encodeBody(ws.Canvas)); err != nil {
		return nil, fmt.Errorf("codec: compress: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("codec: compress: %w", err)
	}
	return out.Bytes(), nil
}

// Unmarshal decodes a workspace from data. A failure wraps ErrMalformed.
func Unmarshal(data []byte) (*pixcil.Workspace, error) {
	r := &reader{data: data}
	if string(r.take(len(Magic))) != Magic {
		return nil, ErrBadMagic
	}
	if v := r.u16(); r.err == nil && v != Version {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedVersion, v)
	}
	cfgBytes := r.take(int(r.u16()))
	if r.err != nil {
		return nil, fmt.Errorf("codec: header: %w", r.err)
	}
	cfg, err := decodeConfig(cfgBytes)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(flate.NewReader(bytes.NewReader(r.data)))
	if err != nil {
		return nil, fmt.Errorf("codec: decompress: %w: %w", ErrMalformed, err)
	}
	canvas, err := decodeBody(body, cfg.Addressing)
	if err != nil {
		return nil, err
	}

	pixcil.Logger().Debug("workspace decoded",
		"id", cfg.ID, "pixels", canvas.PixelCount(), "commands", canvas.HistoryLen())
	return pixcil.RestoreWorkspace(cfg, canvas), nil
}

func encodeBody(c *pixcil.Canvas) []byte {
	w := &writer{}
	cmds := c.Commands()
	w.u32(uint32(len(cmds)))
	for _, cmd := range cmds {
		w.u32(uint32(len(cmd.Erase)))
		w.u32(uint32(len(cmd.Draw)))
		w.pixels(append(append([]pixcil.Pixel(nil), cmd.Erase...), cmd.Draw...))
	}
	w.u32(uint32(c.Tail()))
	pixels := c.Pixels()
	w.u32(uint32(len(pixels)))
	w.pixels(pixels)
	return w.buf
}

// pixelBytes is the smallest encoding of one pixel: two deltas and a color.
const pixelBytes = 8

func decodeBody(body []byte, addr *pixcil.Addressing) (*pixcil.Canvas, error) {
	r := &reader{data: body}
	n := r.count(8)
	cmds := make([]pixcil.Command, 0, n)
	for range n {
		erase := int(r.u32())
		draw := int(r.u32())
		if r.err != nil {
			break
		}
		if (erase+draw)*pixelBytes > len(r.data) {
			r.err = fmt.Errorf("%w: command of %d pixels exceeds data", ErrMalformed, erase+draw)
			break
		}
		ps := r.pixels(erase + draw)
		cmds = append(cmds, pixcil.Command{Erase: ps[:erase:erase], Draw: ps[erase:]})
	}
	tail := int(r.u32())
	pixels := r.pixels(r.count(pixelBytes))
	if r.err == nil && len(r.data) > 0 {
		r.err = fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(r.data))
	}
	if r.err != nil {
		return nil, fmt.Errorf("codec: body: %w", r.err)
	}

	c, err := pixcil.RestoreCanvas(pixels, cmds, tail, pixcil.WithAddressing(addr))
	if err != nil {
		if errors.Is(err, pixcil.ErrInvariant) {
			return nil, fmt.Errorf("codec: %w: %w", ErrMalformed, err)
		}
		return nil, err
	}
	return c, nil
}
