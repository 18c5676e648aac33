package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/pixcil"
	"github.com/gogpu/pixcil/codec"
	"github.com/gogpu/pixcil/export"
)

// workspaceExt is the extension of native workspace files.
const workspaceExt = ".pixcil"

// loadWorkspace opens a native workspace file or a PNG.
func loadWorkspace(path string) (*pixcil.Workspace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	var ws *pixcil.Workspace
	if strings.EqualFold(filepath.Ext(path), ".png") {
		ws, err = export.DecodePNG(bytes.NewReader(data))
	} else {
		ws, err = codec.Unmarshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return ws, nil
}

// saveWorkspace writes ws to path through a temporary file so a failed
// write never leaves a truncated workspace behind.
func saveWorkspace(path string, ws *pixcil.Workspace) error {
	data, err := codec.Marshal(ws)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pixcil-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// exportFile renders ws to out, picking the format from out's extension.
func exportFile(ws *pixcil.Workspace, out string, opts ...export.Option) error {
	f, err := export.FormatFromPath(out)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, ws, f, opts...); err != nil {
		return err
	}
	return writeFileAtomic(out, buf.Bytes())
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
