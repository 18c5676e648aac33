package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/pixcil/export"
	"github.com/gogpu/pixcil/history"
)

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

type ExportConfig struct {
	Format string `toml:"format"`
	Scale  int    `toml:"scale"`
}

type LibraryConfig struct {
	Path string `toml:"path"`
	Keep int    `toml:"keep"` // snapshots kept per workspace, 0 = all
}

type HistoryConfig struct {
	MaxCommands int `toml:"max_commands"`
}

type WatchConfig struct {
	Dir      string `toml:"dir"`
	Output   string `toml:"output"`
	Debounce int    `toml:"debounce_ms"` // 0 = default (500ms)
}

func (w WatchConfig) DebounceDuration() time.Duration {
	if w.Debounce <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.Debounce) * time.Millisecond
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Export  ExportConfig  `toml:"export"`
	Library LibraryConfig `toml:"library"`
	History HistoryConfig `toml:"history"`
	Watch   WatchConfig   `toml:"watch"`
}

func defaultConfig() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Export:  ExportConfig{Format: "png", Scale: 1},
		Library: LibraryConfig{Path: "pixcil.db"},
		History: HistoryConfig{MaxCommands: history.DefaultMaxCommands},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return err
	}
	if c.Export.Scale < 1 {
		return fmt.Errorf("export scale %d must be at least 1", c.Export.Scale)
	}
	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
}
