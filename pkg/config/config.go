// Package config loads biomimic settings from YAML, TOML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/chazu/biomimic/pkg/export"
	"github.com/chazu/biomimic/pkg/pattern"
)

// Duration is a time.Duration that reads human readable strings such as
// "5s" from every supported file format. JSON also accepts a number of
// nanoseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.UnmarshalText([]byte(s))
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration: invalid value %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// Config holds every tunable setting of the CLI and preview server.
type Config struct {
	Store      StoreConfig      `json:"store" yaml:"store" toml:"store"`
	Generation GenerationConfig `json:"generation" yaml:"generation" toml:"generation"`
	Export     ExportConfig     `json:"export" yaml:"export" toml:"export"`
	Viewer     ViewerConfig     `json:"viewer" yaml:"viewer" toml:"viewer"`
	Log        LogConfig        `json:"log" yaml:"log" toml:"log"`
}

type StoreConfig struct {
	// Path of the design file. Empty uses DefaultStorePath.
	Path string `json:"path" yaml:"path" toml:"path"`
}

type GenerationConfig struct {
	Timeout       Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	Surface       string   `json:"surface" yaml:"surface" toml:"surface"`                   // "patch" or "marching-cubes"
	MarchingCells int      `json:"marchingCells" yaml:"marchingCells" toml:"marchingCells"` // 0 derives from resolution
	Scale         float64  `json:"scale" yaml:"scale" toml:"scale"`
	Workers       int      `json:"workers" yaml:"workers" toml:"workers"` // batch concurrency
}

type ExportConfig struct {
	Format string `json:"format" yaml:"format" toml:"format"`
	Dir    string `json:"dir" yaml:"dir" toml:"dir"`
}

type ViewerConfig struct {
	Listen string `json:"listen" yaml:"listen" toml:"listen"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Timeout: Duration(10 * time.Second),
			Surface: pattern.SurfacePatch.String(),
			Scale:   1.0,
			Workers: 4,
		},
		Export: ExportConfig{
			Format: string(export.FormatSTL),
			Dir:    ".",
		},
		Viewer: ViewerConfig{Listen: "127.0.0.1:8765"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. The format follows the file extension:
// .yaml/.yml, .toml or .json. Unknown keys are rejected. An empty path
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Generation.Timeout <= 0 {
		return errors.New("generation.timeout must be positive")
	}
	if _, err := pattern.ParseSurfaceMode(c.Generation.Surface); err != nil {
		return fmt.Errorf("generation.surface: %w", err)
	}
	if c.Generation.MarchingCells < 0 || c.Generation.MarchingCells > pattern.MaxMarchingCells {
		return fmt.Errorf("generation.marchingCells must be within [0, %d]", pattern.MaxMarchingCells)
	}
	if c.Generation.Scale <= 0 {
		return errors.New("generation.scale must be positive")
	}
	if c.Generation.Workers < 0 {
		return errors.New("generation.workers cannot be negative")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if c.Viewer.Listen == "" {
		return errors.New("viewer.listen must be set")
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel parses Log.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.Log.Level))
	return l, err
}

// PatternOptions converts the generation section to pattern options.
func (c *Config) PatternOptions() ([]pattern.Option, error) {
	mode, err := pattern.ParseSurfaceMode(c.Generation.Surface)
	if err != nil {
		return nil, err
	}
	opts := []pattern.Option{pattern.WithSurface(mode)}
	if c.Generation.MarchingCells > 0 {
		opts = append(opts, pattern.WithMarchingCells(c.Generation.MarchingCells))
	}
	return opts, nil
}

// StorePath returns Store.Path, or DefaultStorePath when unset.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return DefaultStorePath()
}

// DefaultStorePath places the design file in the user config directory,
// falling back to the working directory.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "biomimic-designs.json"
	}
	return filepath.Join(dir, "biomimic", "designs.json")
}
