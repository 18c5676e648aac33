package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/pixcil/export"
)

// debouncer coalesces rapid event bursts into a single callback per file.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.onFire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

// watcher re-exports workspace files whenever they change.
type watcher struct {
	dir    string
	output string
	format export.Format
	scale  int
	log    *slog.Logger

	// exports serializes conversions of the same output file.
	exports sync.Mutex
}

func newWatcher(cfg *Config, log *slog.Logger) (*watcher, error) {
	if cfg.Watch.Dir == "" {
		return nil, fmt.Errorf("[watch] dir must be set")
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	output := cfg.Watch.Output
	if output == "" {
		output = cfg.Watch.Dir
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, err
	}
	return &watcher{dir: cfg.Watch.Dir, output: output, format: format, scale: cfg.Export.Scale, log: log}, nil
}

func (w *watcher) outputPath(src string) string {
	return filepath.Join(w.output, replaceExt(filepath.Base(src), w.format.Extension()))
}

func (w *watcher) convert(src string) {
	if !strings.EqualFold(filepath.Ext(src), workspaceExt) {
		return
	}
	w.exports.Lock()
	defer w.exports.Unlock()

	ws, err := loadWorkspace(src)
	if err != nil {
		w.log.Warn("skipping workspace", "path", src, "err", err)
		return
	}
	out := w.outputPath(src)
	if err := exportFile(ws, out, export.WithScale(w.scale)); err != nil {
		w.log.Error("export failed", "path", src, "err", err)
		return
	}
	w.log.Info("exported", "path", src, "output", out)
}

// initialScan exports every workspace already present in the directory.
func (w *watcher) initialScan() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.convert(filepath.Join(w.dir, e.Name()))
		}
	}
	return nil
}

// run watches until ctx is cancelled.
func (w *watcher) run(ctx context.Context, delay time.Duration) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	db := newDebouncer(delay, w.convert)
	defer db.stop()

	if err := w.initialScan(); err != nil {
		return err
	}
	w.log.Info("watching", "dir", w.dir, "output", w.output, "format", w.format)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Remove) {
				continue
			}
			// Atomic replacement shows up as a rename onto the watched name.
			if ev.Has(fsnotify.Rename) {
				if _, err := os.Stat(ev.Name); err != nil {
					continue
				}
			}
			db.trigger(ev.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)
		}
	}
}
