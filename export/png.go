package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image/png"
	"io"

	"github.com/gogpu/pixcil"
	"github.com/gogpu/pixcil/codec"
)

// ErrUnsupportedBitDepth is returned when importing a PNG with more than
// eight bits per channel.
var ErrUnsupportedBitDepth = errors.New("export: unsupported PNG bit depth")

// ErrNotPNG is returned when the input lacks the PNG signature.
var ErrNotPNG = errors.New("export: not a PNG file")

// workspaceChunk is the private, ancillary, safe-to-copy chunk type that
// holds the encoded workspace.
const workspaceChunk = "pxCl"

const pngSignature = "\x89PNG\r\n\x1a\n"

// EncodePNG writes one frame of ws as a PNG with the encoded workspace
// embedded in a pxCl chunk placed just before IEND.
func EncodePNG(w io.Writer, ws *pixcil.Workspace, opts ...Option) error {
	img, err := Image(ws, opts...)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("export: encode PNG: %w", err)
	}
	data, err := codec.Marshal(ws)
	if err != nil {
		return err
	}

	raw := buf.Bytes()
	// IEND is always the last twelve bytes written by image/png.
	iend := len(raw) - 12
	if _, err := w.Write(raw[:iend]); err != nil {
		return err
	}
	if _, err := w.Write(appendChunk(nil, workspaceChunk, data)); err != nil {
		return err
	}
	_, err = w.Write(raw[iend:])
	return err
}

func appendChunk(b []byte, typ string, data []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	start := len(b)
	b = append(b, typ...)
	b = append(b, data...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(b[start:]))
}

type chunk struct {
	typ  string
	data []byte
}

// readChunks splits a PNG stream into its chunks, verifying checksums.
func readChunks(raw []byte) ([]chunk, error) {
	if !bytes.HasPrefix(raw, []byte(pngSignature)) {
		return nil, ErrNotPNG
	}
	raw = raw[len(pngSignature):]
	var chunks []chunk
	for len(raw) > 0 {
		if len(raw) < 12 {
			return nil, fmt.Errorf("export: truncated PNG chunk")
		}
		n := int(binary.BigEndian.Uint32(raw))
		if n > len(raw)-12 {
			return nil, fmt.Errorf("export: PNG chunk length %d exceeds data", n)
		}
		body := raw[4 : 8+n]
		if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(raw[8+n:]) {
			return nil, fmt.Errorf("export: PNG chunk %q checksum mismatch", body[:4])
		}
		chunks = append(chunks, chunk{typ: string(body[:4]), data: body[4:]})
		raw = raw[12+n:]
		if chunks[len(chunks)-1].typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// DecodePNG opens a PNG as a workspace. A PNG written by EncodePNG yields
// the embedded workspace with its full history. Any other PNG of up to
// eight bits per channel is imported into a fresh single-frame workspace
// the size of the image, with no history.
func DecodePNG(r io.Reader) (*pixcil.Workspace, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("export: read PNG: %w", err)
	}
	chunks, err := readChunks(raw)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || chunks[0].typ != "IHDR" || len(chunks[0].data) < 13 {
		return nil, fmt.Errorf("export: PNG without IHDR")
	}
	for _, c := range chunks {
		if c.typ == workspaceChunk {
			return codec.Unmarshal(c.data)
		}
	}
	if depth := chunks[0].data[8]; depth > 8 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("export: decode PNG: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > pixcil.MaxCoord || b.Dy() > pixcil.MaxCoord {
		return nil, fmt.Errorf("export: image %dx%d too large", b.Dx(), b.Dy())
	}
	pm := pixcil.FromImage(img)

	var pixels []pixcil.Pixel
	for y := range pm.Height() {
		for x := range pm.Width() {
			if c := pm.GetPixel(x, y); c.A != 0 {
				pixels = append(pixels, pixcil.NewPixel(pixcil.Pos(int16(x), int16(y)), c))
			}
		}
	}

	cfg := pixcil.DefaultConfig()
	cfg.Addressing = pixcil.NewAddressing(pixcil.NewRegion(pixcil.Pos(0, 0), pixcil.Pos(int16(pm.Width()), int16(pm.Height()))))
	canvas, err := pixcil.RestoreCanvas(pixels, nil, 0, pixcil.WithAddressing(cfg.Addressing))
	if err != nil {
		return nil, fmt.Errorf("export: import PNG: %w", err)
	}
	pixcil.Logger().Debug("png imported", "width", pm.Width(), "height", pm.Height(), "pixels", len(pixels))
	return pixcil.RestoreWorkspace(cfg, canvas), nil
}
