package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/pixcil"
)

var be = binary.BigEndian

// writer appends big-endian fields to a byte slice.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = be.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = be.AppendUint32(w.buf, v) }
func (w *writer) i16(v int16)  { w.u16(uint16(v)) }

func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

// str writes a u16 length followed by at most 65535 bytes of s.
func (w *writer) str(s string) {
	if len(s) > 0xffff {
		s = s[:0xffff]
	}
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) color(c pixcil.RGBA) {
	w.buf = append(w.buf, c.R, c.G, c.B, c.A)
}

// positions writes the zigzag y-deltas of ps, then the zigzag x-deltas.
// Deltas are taken from the previous entry, starting at zero.
func (w *writer) positions(ps []pixcil.PixelPosition) {
	var prev int16
	for _, p := range ps {
		w.u16(zigzag(p.Y - prev))
		prev = p.Y
	}
	prev = 0
	for _, p := range ps {
		w.u16(zigzag(p.X - prev))
		prev = p.X
	}
}

// pixels writes the positions of ps followed by their colors.
func (w *writer) pixels(ps []pixcil.Pixel) {
	pos := make([]pixcil.PixelPosition, len(ps))
	for i, px := range ps {
		pos[i] = px.Position
	}
	w.positions(pos)
	for _, px := range ps {
		w.color(px.Color)
	}
}

// reader consumes big-endian fields. The first short read sticks in err
// and every later call returns zero values.
type reader struct {
	data []byte
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data) < n {
		r.err = errTruncated
		r.data = nil
		return nil
	}
	b := r.data[:n:n]
	r.data = r.data[n:]
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return be.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return be.Uint32(b)
	}
	return 0
}

func (r *reader) i16() int16 { return int16(r.u16()) }

func (r *reader) str() string {
	return string(r.take(int(r.u16())))
}

func (r *reader) color() pixcil.RGBA {
	if b := r.take(4); b != nil {
		return pixcil.RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}
	}
	return pixcil.RGBA{}
}

// count reads a u32 element count and rejects counts that cannot fit in
// the remaining data given at least size bytes per element.
func (r *reader) count(size int) int {
	n := int(r.u32())
	if r.err == nil && n*size > len(r.data) {
		r.err = fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrMalformed, n, len(r.data))
		return 0
	}
	return n
}

func (r *reader) positions(n int) []pixcil.PixelPosition {
	if n == 0 || r.err != nil {
		return nil
	}
	ps := make([]pixcil.PixelPosition, n)
	var prev int16
	for i := range ps {
		prev += unzigzag(r.u16())
		ps[i].Y = prev
	}
	prev = 0
	for i := range ps {
		prev += unzigzag(r.u16())
		ps[i].X = prev
	}
	return ps
}

func (r *reader) pixels(n int) []pixcil.Pixel {
	pos := r.positions(n)
	if r.err != nil || n == 0 {
		return nil
	}
	ps := make([]pixcil.Pixel, n)
	for i, p := range pos {
		ps[i] = pixcil.Pixel{Position: p, Color: r.color()}
	}
	return ps
}

func zigzag(v int16) uint16 {
	return uint16(v<<1) ^ uint16(v>>15)
}

func unzigzag(u uint16) int16 {
	return int16(u>>1) ^ -int16(u&1)
}
