package export

import (
	"fmt"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/pixcil"
)

// EncodeBMP writes one frame of ws as a 32-bit BMP.
func EncodeBMP(w io.Writer, ws *pixcil.Workspace, opts ...Option) error {
	img, err := Image(ws, opts...)
	if err != nil {
		return err
	}
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode BMP: %w", err)
	}
	return nil
}

// EncodeTIFF writes one frame of ws as a deflate-compressed TIFF.
func EncodeTIFF(w io.Writer, ws *pixcil.Workspace, opts ...Option) error {
	img, err := Image(ws, opts...)
	if err != nil {
		return err
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("export: encode TIFF: %w", err)
	}
	return nil
}
