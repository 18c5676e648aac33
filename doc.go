// Package pixcil is the editing core of a pixel-art editor.
//
// # Overview
//
// A [Canvas] holds a sparse set of colored pixels and edits it only through
// reversible commands, so every edit can be undone and redone exactly.
// Canvas space is split into frames and layers by an [Addressing]: frames
// sit side by side, layers are stacked below one another, and compositing a
// position blends every enabled layer of its frame back to front.
//
// # Quick Start
//
//	import "github.com/gogpu/pixcil"
//
//	c := pixcil.NewCanvas()
//	c.DrawPixels([]pixcil.Pixel{pixcil.NewPixel(pixcil.Pos(0, 0), pixcil.Red)})
//	c.Undo()
//	c.Redo()
//	color, ok := c.GetPixel(pixcil.Pos(0, 0))
//
// # Commands
//
// Every mutating method appends at most one [Command] to the history and
// reports whether it did. An edit that changes nothing is not recorded.
// Editing after an undo discards the undone commands for good.
//
// Colors are straight-alpha RGBA. Drawing over an existing pixel blends the
// new color over it with source-over; an opaque color replaces it.
//
// # Workspaces
//
// A [Workspace] pairs a Canvas with its [Config] (unit size, current color,
// frames and layers). Sub-packages build on it:
//
//   - marker turns pointer gestures into sets of positions
//   - codec reads and writes the binary workspace format
//   - export renders frames to PNG, BMP, TIFF and PDF
//   - history bounds the command log
//   - library stores workspace snapshots
//
// # Logging
//
// pixcil is silent by default. See [SetLogger].
//
// # Concurrency
//
// Nothing in this package locks. A Canvas and its Workspace must have a
// single owner that serializes every call.
package pixcil
