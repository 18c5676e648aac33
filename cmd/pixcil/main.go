// Command pixcil inspects, converts and archives pixcil workspace files.
//
// Usage:
//
//	pixcil [-config pixcil.toml] <command> [flags] [args]
//
// Commands:
//
//	new       create an empty workspace file
//	info      print a summary of a workspace
//	export    render a workspace to PNG, BMP, TIFF or PDF
//	import    convert a PNG into a workspace file
//	trim      drop old history from a workspace file
//	watch     re-export workspaces in a directory whenever they change
//	snapshot  store a workspace in the snapshot library
//	restore   write a library snapshot back to a file
//	list      list the workspaces in the snapshot library
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/gogpu/pixcil"
	"github.com/gogpu/pixcil/export"
	"github.com/gogpu/pixcil/history"
	"github.com/gogpu/pixcil/library"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *Config
	log    *slog.Logger
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pixcil", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "pixcil.toml", "Path to config file (TOML)")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pixcil [-config pixcil.toml] [-v] <new|info|export|import|trim|watch|snapshot|restore|list> [flags] [args]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	pixcil.SetLogger(logger)
	defer pixcil.SetLogger(nil)

	a := &app{cfg: cfg, log: logger, stdout: stdout}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "new":
		return a.cmdNew(rest)
	case "info":
		return a.cmdInfo(rest)
	case "export":
		return a.cmdExport(rest)
	case "import":
		return a.cmdImport(rest)
	case "trim":
		return a.cmdTrim(rest)
	case "watch":
		return a.cmdWatch(ctx, rest)
	case "snapshot":
		return a.cmdSnapshot(rest)
	case "restore":
		return a.cmdRestore(rest)
	case "list":
		return a.cmdList(rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return errUsage
	}
}

// parse parses a subcommand's flags and checks its positional arguments.
func parse(fs *flag.FlagSet, args []string, nargs int, usage string) error {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pixcil %s %s\n", fs.Name(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != nargs {
		fs.Usage()
		return errUsage
	}
	return nil
}

func (a *app) cmdNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	name := fs.String("name", "untitled", "Workspace name")
	width := fs.Int("width", pixcil.DefaultFrameSize, "Frame width")
	height := fs.Int("height", pixcil.DefaultFrameSize, "Frame height")
	frames := fs.Int("frames", 1, "Number of frames")
	layers := fs.Int("layers", 1, "Number of layers")
	unit := fs.Uint("unit", 1, "Minimum pixel size")
	if err := parse(fs, args, 1, "[flags] <file.pixcil>"); err != nil {
		return err
	}
	if *width < 1 || *height < 1 || *frames < 1 || *layers < 1 || *unit < 1 {
		return fmt.Errorf("width, height, frames, layers and unit must be positive")
	}
	if *unit > pixcil.MaxUnitSize {
		return fmt.Errorf("unit %d exceeds %d", *unit, pixcil.MaxUnitSize)
	}
	if (*width)*(*frames) > pixcil.MaxCoord || (*height)*(*layers) > pixcil.MaxCoord {
		return fmt.Errorf("canvas of %d frames and %d layers of %dx%d exceeds %d pixels per axis",
			*frames, *layers, *width, *height, pixcil.MaxCoord)
	}

	cfg := pixcil.DefaultConfig()
	cfg.Name = pixcil.NormalizeName(*name)
	cfg.UnitSize = uint16(*unit)
	cfg.Addressing = pixcil.NewAddressing(pixcil.NewRegion(pixcil.Pos(0, 0), pixcil.Pos(int16(*width), int16(*height))))
	for i := 1; i < *frames; i++ {
		cfg.Addressing.AddFrame(fmt.Sprintf("frame %d", i+1))
	}
	for i := 1; i < *layers; i++ {
		cfg.Addressing.AddLayer(fmt.Sprintf("layer %d", i+1))
	}
	ws := pixcil.NewWorkspace(cfg)
	if err := saveWorkspace(fs.Arg(0), ws); err != nil {
		return err
	}
	a.log.Info("created workspace", "path", fs.Arg(0), "id", cfg.ID)
	return nil
}

func (a *app) cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := parse(fs, args, 1, "<file>"); err != nil {
		return err
	}
	ws, err := loadWorkspace(fs.Arg(0))
	if err != nil {
		return err
	}
	c, addr := ws.Canvas, ws.Config.Addressing
	fmt.Fprintf(a.stdout, "name:     %s\n", ws.Config.Name)
	fmt.Fprintf(a.stdout, "id:       %s\n", ws.Config.ID)
	fmt.Fprintf(a.stdout, "unit:     %d\n", ws.Config.UnitSize)
	fmt.Fprintf(a.stdout, "color:    %s\n", ws.Config.Color)
	fmt.Fprintf(a.stdout, "region:   %s\n", addr.Region())
	for i, f := range addr.Frames() {
		fmt.Fprintf(a.stdout, "frame %d:  %s\n", i, f.Name)
	}
	for i, l := range addr.Layers() {
		state := "enabled"
		if !l.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(a.stdout, "layer %d:  %s (%s)\n", i, l.Name, state)
	}
	fmt.Fprintf(a.stdout, "pixels:   %d\n", c.PixelCount())
	if b, ok := c.Bounds(); ok {
		fmt.Fprintf(a.stdout, "bounds:   %s\n", b)
	}
	fmt.Fprintf(a.stdout, "history:  %d commands, tail %d\n", c.HistoryLen(), c.Tail())
	return nil
}

func (a *app) cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "Output file (default: input name with the configured format)")
	frame := fs.Int("frame", 0, "Frame to export (ignored for PDF)")
	scale := fs.Int("scale", a.cfg.Export.Scale, "Pixel magnification")
	if err := parse(fs, args, 1, "[flags] <file>"); err != nil {
		return err
	}
	ws, err := loadWorkspace(fs.Arg(0))
	if err != nil {
		return err
	}
	target := *out
	if target == "" {
		f, err := export.ParseFormat(a.cfg.Export.Format)
		if err != nil {
			return err
		}
		target = replaceExt(fs.Arg(0), f.Extension())
	}
	if err := exportFile(ws, target, export.WithFrame(*frame), export.WithScale(*scale)); err != nil {
		return err
	}
	a.log.Info("exported", "path", fs.Arg(0), "output", target)
	return nil
}

func (a *app) cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	out := fs.String("o", "", "Output workspace file (default: input name with .pixcil)")
	name := fs.String("name", "", "Workspace name (default: file name)")
	if err := parse(fs, args, 1, "[flags] <image.png>"); err != nil {
		return err
	}
	ws, err := loadWorkspace(fs.Arg(0))
	if err != nil {
		return err
	}
	if *name != "" {
		ws.Config.Name = pixcil.NormalizeName(*name)
	} else if ws.Canvas.HistoryLen() == 0 && ws.Config.Name == "untitled" {
		ws.Config.Name = pixcil.NormalizeName(replaceExt(filepath.Base(fs.Arg(0)), ""))
	}
	target := *out
	if target == "" {
		target = replaceExt(fs.Arg(0), workspaceExt)
	}
	if err := saveWorkspace(target, ws); err != nil {
		return err
	}
	a.log.Info("imported", "path", fs.Arg(0), "output", target, "pixels", ws.Canvas.PixelCount())
	return nil
}

func (a *app) cmdTrim(args []string) error {
	fs := flag.NewFlagSet("trim", flag.ContinueOnError)
	maxCommands := fs.Int("max", a.cfg.History.MaxCommands, "Commands to keep")
	if err := parse(fs, args, 1, "[flags] <file.pixcil>"); err != nil {
		return err
	}
	ws, err := loadWorkspace(fs.Arg(0))
	if err != nil {
		return err
	}
	n := history.Policy{MaxCommands: *maxCommands}.Enforce(ws.Canvas)
	if n == 0 {
		a.log.Info("history within bound", "path", fs.Arg(0), "commands", ws.Canvas.HistoryLen())
		return nil
	}
	if err := saveWorkspace(fs.Arg(0), ws); err != nil {
		return err
	}
	a.log.Info("history trimmed", "path", fs.Arg(0), "forgotten", n)
	return nil
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	dir := fs.String("dir", a.cfg.Watch.Dir, "Directory to watch")
	out := fs.String("o", a.cfg.Watch.Output, "Output directory (default: the watched directory)")
	if err := parse(fs, args, 0, "[flags]"); err != nil {
		return err
	}
	cfg := *a.cfg
	cfg.Watch.Dir, cfg.Watch.Output = *dir, *out
	w, err := newWatcher(&cfg, a.log)
	if err != nil {
		return err
	}
	return w.run(ctx, cfg.Watch.DebounceDuration())
}

func (a *app) openLibrary() (*library.Library, error) {
	return library.Open(a.cfg.Library.Path)
}

func (a *app) cmdSnapshot(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	if err := parse(fs, args, 1, "<file>"); err != nil {
		return err
	}
	ws, err := loadWorkspace(fs.Arg(0))
	if err != nil {
		return err
	}
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	seq, err := lib.Save(ws)
	if err != nil {
		return err
	}
	if a.cfg.Library.Keep > 0 {
		if _, err := lib.Prune(ws.Config.ID, a.cfg.Library.Keep); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stdout, "%s %d\n", ws.Config.ID, seq)
	return nil
}

func (a *app) cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	out := fs.String("o", "", "Output workspace file (required)")
	seq := fs.Uint64("snapshot", 0, "Snapshot number (default: newest)")
	if err := parse(fs, args, 1, "-o <file.pixcil> [flags] <workspace-id>"); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return errUsage
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid workspace id: %w", err)
	}
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	var ws *pixcil.Workspace
	if *seq == 0 {
		ws, err = lib.Load(id)
	} else {
		ws, err = lib.LoadSnapshot(id, *seq)
	}
	if err != nil {
		return err
	}
	if err := saveWorkspace(*out, ws); err != nil {
		return err
	}
	a.log.Info("restored", "id", id, "output", *out)
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := parse(fs, args, 0, ""); err != nil {
		return err
	}
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(a.stdout, "%s  %-20s  %3d snapshots  latest %d  %s\n",
			e.ID, e.Name, e.Snapshots, e.Latest, e.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
