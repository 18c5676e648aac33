package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gogpu/pixcil"
)

// EncodePDF writes every frame of ws as one page of a new PDF document.
func EncodePDF(w io.Writer, ws *pixcil.Workspace, opts ...Option) error {
	o := buildOptions(opts)

	frames := 1
	if addr := ws.Canvas.Addressing(); addr != nil {
		frames = addr.FrameCount()
	}
	pages := make([]io.Reader, 0, frames)
	for f := range frames {
		img, err := frameImage(ws, f, o.scale)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("export: frame %d: %w", f, err)
		}
		pages = append(pages, &buf)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ImportImages(nil, w, pages, pdfcpu.DefaultImportConfig(), conf); err != nil {
		return fmt.Errorf("export: write PDF: %w", err)
	}
	pixcil.Logger().Debug("pdf exported", "pages", len(pages))
	return nil
}
