// Package export renders workspaces to image files and imports PNGs.
//
// A frame is exported as the composite of its enabled layers. PNG output
// additionally carries the whole workspace in a private ancillary chunk, so
// an exported PNG can be opened again for editing with DecodePNG.
package export

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pixcil"
)

// Format is an output file format.
type Format uint8

const (
	PNG Format = iota
	BMP
	TIFF
	PDF
)

var formatNames = [...]string{PNG: "png", BMP: "bmp", TIFF: "tiff", PDF: "pdf"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", f)
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string { return "." + f.String() }

// ParseFormat returns the format named s, case-insensitively.
// "tif" is accepted for TIFF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "pdf":
		return PDF, nil
	}
	return PNG, fmt.Errorf("export: unknown format %q", s)
}

// FormatFromPath picks the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

type options struct {
	frame int
	scale int
}

// Option configures an export.
type Option func(*options)

// WithFrame selects the frame to export. PDF export ignores it and writes
// every frame.
func WithFrame(frame int) Option {
	return func(o *options) {
		o.frame = frame
	}
}

// WithScale magnifies every pixel to a scale x scale block.
// Values below 1 are treated as 1.
func WithScale(scale int) Option {
	return func(o *options) {
		o.scale = max(scale, 1)
	}
}

func buildOptions(opts []Option) options {
	o := options{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Image renders one frame of ws.
func Image(ws *pixcil.Workspace, opts ...Option) (*image.NRGBA, error) {
	o := buildOptions(opts)
	return frameImage(ws, o.frame, o.scale)
}

func frameImage(ws *pixcil.Workspace, frame, scale int) (*image.NRGBA, error) {
	pm, err := ws.Canvas.RasterizeFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	img := pm.ToImage()
	if scale <= 1 {
		return img, nil
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// Write encodes ws to w in format f.
func Write(w io.Writer, ws *pixcil.Workspace, f Format, opts ...Option) error {
	switch f {
	case PNG:
		return EncodePNG(w, ws, opts...)
	case BMP:
		return EncodeBMP(w, ws, opts...)
	case TIFF:
		return EncodeTIFF(w, ws, opts...)
	case PDF:
		return EncodePDF(w, ws, opts...)
	default:
		return fmt.Errorf("export: unsupported format %v", f)
	}
}
