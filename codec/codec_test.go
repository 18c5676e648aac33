package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/gogpu/pixcil"
)

func sampleWorkspace(t *testing.T) *pixcil.Workspace {
	t.Helper()
	cfg := pixcil.DefaultConfig()
	cfg.Name = "sprite"
	cfg.UnitSize = 2
	cfg.Color = pixcil.RGBA{R: 10, G: 20, B: 30, A: 200}
	cfg.FillEllipse = true
	cfg.Addressing = pixcil.NewAddressing(pixcil.NewRegion(pixcil.Pos(-4, -4), pixcil.Pos(12, 12)))
	cfg.Addressing.AddFrame("walk 2")
	cfg.Addressing.AddLayer("outline")
	cfg.Addressing.SetLayerEnabled(0, false)
	cfg.CurrentFrame = 1
	cfg.CurrentLayer = 1

	ws := pixcil.NewWorkspace(cfg)
	c := ws.Canvas
	c.DrawPixels([]pixcil.Pixel{
		pixcil.NewPixel(pixcil.Pos(-4, -4), pixcil.Red),
		pixcil.NewPixel(pixcil.Pos(11, 27), pixcil.Blue),
		pixcil.NewPixel(pixcil.Pos(3, 3), pixcil.RGBA{R: 1, G: 2, B: 3, A: 128}),
	})
	c.MovePixels([]pixcil.PixelPosition{pixcil.Pos(3, 3)}, pixcil.Pos(-1, 2))
	c.ReplaceColor(pixcil.Red, pixcil.Green)
	c.ErasePixels([]pixcil.PixelPosition{pixcil.Pos(11, 27)})
	c.Undo()
	if c.Tail() != 3 || c.HistoryLen() != 4 {
		t.Fatalf("sample history tail=%d len=%d, want 3/4", c.Tail(), c.HistoryLen())
	}
	return ws
}

func commandsEqual(a, b pixcil.Command) bool {
	return slices.Equal(a.Erase, b.Erase) && slices.Equal(a.Draw, b.Draw)
}

func TestRoundTrip(t *testing.T) {
	ws := sampleWorkspace(t)
	data, err := Marshal(ws)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PIXCIL\x00\x00")) {
		t.Errorf("header = %q", data[:8])
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !slices.Equal(got.Canvas.Pixels(), ws.Canvas.Pixels()) {
		t.Errorf("Pixels() = %v, want %v", got.Canvas.Pixels(), ws.Canvas.Pixels())
	}
	if !slices.EqualFunc(got.Canvas.Commands(), ws.Canvas.Commands(), commandsEqual) {
		t.Errorf("Commands() = %v, want %v", got.Canvas.Commands(), ws.Canvas.Commands())
	}
	if got.Canvas.Tail() != ws.Canvas.Tail() {
		t.Errorf("Tail() = %d, want %d", got.Canvas.Tail(), ws.Canvas.Tail())
	}

	gc, wc := got.Config, ws.Config
	if gc.ID != wc.ID || gc.Name != wc.Name || gc.UnitSize != wc.UnitSize || gc.Color != wc.Color {
		t.Errorf("Config = %+v, want %+v", gc, wc)
	}
	if gc.FillRectangle || !gc.FillEllipse || gc.CurrentFrame != 1 || gc.CurrentLayer != 1 {
		t.Errorf("Config flags = %+v", gc)
	}
	if gc.Addressing.Region() != wc.Addressing.Region() ||
		!slices.Equal(gc.Addressing.Frames(), wc.Addressing.Frames()) ||
		!slices.Equal(gc.Addressing.Layers(), wc.Addressing.Layers()) {
		t.Error("Addressing did not round-trip")
	}
	if got.Canvas.Addressing() != gc.Addressing {
		t.Error("decoded canvas does not use the decoded addressing")
	}

	// Redo continues the decoded history.
	if !got.Canvas.Redo() {
		t.Fatal("Redo() on decoded canvas = false")
	}
	if _, ok := got.Canvas.StoredPixel(pixcil.Pos(11, 27)); ok {
		t.Error("Redo() did not re-apply the erase")
	}

	got.Canvas.Undo()
	again, err := Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again, data) {
		t.Error("re-encoding the decoded workspace changed the bytes")
	}
}

func TestEncodeDecode_Stream(t *testing.T) {
	ws := pixcil.NewWorkspace(pixcil.DefaultConfig())
	var buf bytes.Buffer
	if err := Encode(&buf, ws); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Canvas.PixelCount() != 0 || got.Canvas.HistoryLen() != 0 {
		t.Error("empty workspace decoded with content")
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	data, err := Marshal(sampleWorkspace(t))
	if err != nil {
		t.Fatal(err)
	}
	withVersion := slices.Clone(data)
	binary.BigEndian.PutUint16(withVersion[6:], 1)
	n := 10 + int(binary.BigEndian.Uint16(data[8:]))
	garbage := append(slices.Clone(data[:n]), 0xff, 0xff, 0xff)

	withBody := func(fill func(w *writer)) []byte {
		body := &writer{}
		fill(body)
		var compressed bytes.Buffer
		fw, _ := flate.NewWriter(&compressed, flate.DefaultCompression)
		fw.Write(body.buf)
		fw.Close()
		return append(slices.Clone(data[:n]), compressed.Bytes()...)
	}
	// A well-formed stream whose tail points past the command log.
	badTail := withBody(func(w *writer) {
		w.u32(0)
		w.u32(5)
		w.u32(0)
	})
	// One applied draw command over an empty store: undoing it would erase
	// a pixel that is not there.
	badHistory := withBody(func(w *writer) {
		w.u32(1)
		w.u32(0)
		w.u32(1)
		w.pixels([]pixcil.Pixel{pixcil.NewPixel(pixcil.Pos(1, 1), pixcil.Red)})
		w.u32(1)
		w.u32(0)
	})
	bigUnit := slices.Clone(data)
	binary.BigEndian.PutUint16(bigUnit[unitOffset(data):], pixcil.MaxUnitSize+1)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrBadMagic},
		{"bad magic", append([]byte("PIXCEL"), data[6:]...), ErrBadMagic},
		{"version", withVersion, ErrUnsupportedVersion},
		{"truncated header", data[:9], ErrMalformed},
		{"truncated body", data[:len(data)-5], ErrMalformed},
		{"garbage body", garbage, ErrMalformed},
		{"tail out of range", badTail, pixcil.ErrInvariant},
		{"inconsistent history", badHistory, pixcil.ErrInvariant},
		{"unit size too large", bigUnit, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := Unmarshal(tt.data)
			if ws != nil {
				t.Error("Unmarshal() returned a workspace for malformed data")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Unmarshal() error = %v does not wrap ErrMalformed", err)
			}
		})
	}
}

// unitOffset returns the offset of the unit size field: after the header,
// the config length, the 16-byte ID and the length-prefixed name.
func unitOffset(data []byte) int {
	nameAt := 10 + 16
	return nameAt + 2 + int(binary.BigEndian.Uint16(data[nameAt:]))
}

func TestUnmarshal_SkipsUnknownConfigFields(t *testing.T) {
	ws := sampleWorkspace(t)
	data, err := Marshal(ws)
	if err != nil {
		t.Fatal(err)
	}
	n := int(binary.BigEndian.Uint16(data[8:]))
	extra := []byte{0xde, 0xad, 0xbe, 0xef}

	var patched []byte
	patched = append(patched, data[:8]...)
	patched = binary.BigEndian.AppendUint16(patched, uint16(n+len(extra)))
	patched = append(patched, data[10:10+n]...)
	patched = append(patched, extra...)
	patched = append(patched, data[10+n:]...)

	got, err := Unmarshal(patched)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Config.Name != "sprite" || got.Canvas.PixelCount() != ws.Canvas.PixelCount() {
		t.Error("workspace with extra config bytes decoded differently")
	}
}

func TestZigzag(t *testing.T) {
	tests := []struct {
		v    int16
		want uint16
	}{
		{0, 0}, {-1, 1}, {1, 2}, {-2, 3}, {2, 4},
		{32767, 65534}, {-32768, 65535},
	}
	for _, tt := range tests {
		if got := zigzag(tt.v); got != tt.want {
			t.Errorf("zigzag(%d) = %d, want %d", tt.v, got, tt.want)
		}
		if got := unzigzag(tt.want); got != tt.v {
			t.Errorf("unzigzag(%d) = %d, want %d", tt.want, got, tt.v)
		}
	}
}

func TestPositionsLayout(t *testing.T) {
	w := &writer{}
	w.positions([]pixcil.PixelPosition{pixcil.Pos(5, 1), pixcil.Pos(3, 2)})
	// y-deltas 1, 1 then x-deltas 5, -2.
	want := []byte{0, 2, 0, 2, 0, 10, 0, 3}
	if !bytes.Equal(w.buf, want) {
		t.Errorf("positions() = %v, want %v", w.buf, want)
	}

	r := &reader{data: w.buf}
	got := r.positions(2)
	if r.err != nil || !slices.Equal(got, []pixcil.PixelPosition{pixcil.Pos(5, 1), pixcil.Pos(3, 2)}) {
		t.Errorf("reader.positions() = %v, %v", got, r.err)
	}
}
