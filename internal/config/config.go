// Package config provides configuration types and defaults for perch.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/tracing"
	"github.com/zjrosen/perch/internal/tree"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid config")

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config holds all configuration options for perch.
type Config struct {
	Log     LogConfig      `mapstructure:"log"`
	Tree    TreeConfig     `mapstructure:"tree"`
	Sorter  SorterConfig   `mapstructure:"sorter"`
	Theme   ThemeConfig    `mapstructure:"theme"`
	Replay  ReplayConfig   `mapstructure:"replay"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// ReplayConfig tunes `perch run`.
type ReplayConfig struct {
	// CacheTTL is how long the frames of an unchanged scenario are reused
	// instead of replaying it. Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Path  string `mapstructure:"path"`  // default: debug.log in the working directory
	Level string `mapstructure:"level"` // "debug" (default), "info", "warn", "error"
}

// TreeConfig tunes the node tree substrate.
type TreeConfig struct {
	// MaxFlushPasses bounds how many delivery passes a single flush makes
	// when observer callbacks keep mutating the tree.
	MaxFlushPasses int `mapstructure:"max_flush_passes"`
}

// SorterConfig holds options for the interactive scene sorter.
type SorterConfig struct {
	Deck          []string `mapstructure:"deck"`           // initial scene titles
	ShowAnchors   bool     `mapstructure:"show_anchors"`   // render collection anchors in the tree pane
	ActivityLines int      `mapstructure:"activity_lines"` // lines kept in the activity pane
}

// ThemeConfig holds the sorter's colors.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"`
	Subtle    string `mapstructure:"subtle"`
	Error     string `mapstructure:"error"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
		Tree: TreeConfig{
			MaxFlushPasses: tree.DefaultMaxFlushPasses,
		},
		Sorter: SorterConfig{
			Deck:          []string{"Intro", "Body", "Outro"},
			ActivityLines: 6,
		},
		Theme: ThemeConfig{
			Highlight: "#7D56F4",
			Subtle:    "#696969",
			Error:     "#FF5F87",
		},
		Replay: ReplayConfig{
			CacheTTL: 10 * time.Minute,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// SetDefaults registers every default on v so that Unmarshal fills keys the
// config file leaves out while lists from the file replace the defaults whole.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tree.max_flush_passes", d.Tree.MaxFlushPasses)
	v.SetDefault("sorter.deck", d.Sorter.Deck)
	v.SetDefault("sorter.show_anchors", d.Sorter.ShowAnchors)
	v.SetDefault("sorter.activity_lines", d.Sorter.ActivityLines)
	v.SetDefault("theme.highlight", d.Theme.Highlight)
	v.SetDefault("theme.subtle", d.Theme.Subtle)
	v.SetDefault("theme.error", d.Theme.Error)
	v.SetDefault("replay.cache_ttl", d.Replay.CacheTTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Validate checks the configuration for values the rest of perch cannot use.
func (c Config) Validate() error {
	if c.Tree.MaxFlushPasses <= 0 {
		return fmt.Errorf("%w: tree.max_flush_passes must be positive, got %d", ErrInvalid, c.Tree.MaxFlushPasses)
	}
	if c.Sorter.ActivityLines < 0 {
		return fmt.Errorf("%w: sorter.activity_lines must not be negative, got %d", ErrInvalid, c.Sorter.ActivityLines)
	}
	if c.Replay.CacheTTL < 0 {
		return fmt.Errorf("%w: replay.cache_ttl must not be negative, got %s", ErrInvalid, c.Replay.CacheTTL)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("%w: tracing: %w", ErrInvalid, err)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
		}
	}
	colors := []struct {
		key, value string
	}{
		{"theme.highlight", c.Theme.Highlight},
		{"theme.subtle", c.Theme.Subtle},
		{"theme.error", c.Theme.Error},
	}
	for _, col := range colors {
		if col.value != "" && !hexColor.MatchString(col.value) {
			return fmt.Errorf("%w: %s: %q is not a hex color", ErrInvalid, col.key, col.value)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the commented config file written by init-config.
func DefaultConfigTemplate() string {
	return `# Perch Configuration

# Debug logging (also enabled by --debug or PERCH_DEBUG=1)
log:
  debug: false
  path: debug.log
  level: debug            # debug, info, warn, error

# Node tree tuning
tree:
  max_flush_passes: 16    # delivery passes per flush before giving up

# Scene sorter
sorter:
  deck:
    - Intro
    - Body
    - Outro
  show_anchors: false     # show collection anchors in the tree pane
  activity_lines: 6       # lines kept in the activity pane

# Colors (hex)
theme:
  highlight: "#7D56F4"
  subtle: "#696969"
  error: "#FF5F87"

# perch run
replay:
  cache_ttl: 10m          # reuse frames of an unchanged scenario; 0 disables

# OpenTelemetry spans for scenario replays
tracing:
  enabled: false
  exporter: file          # none, file, stdout, otlp
  file_path: traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: perch
`
}

// WriteDefaultConfig creates a config file with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// DefaultPath returns the per-user config location, ~/.config/perch/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "perch", "config.yaml"), nil
}
