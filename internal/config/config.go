package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths. Relative paths resolve against BaseDir.
	BaseDir   string `json:"base_dir"`
	Model     string `json:"model"`
	ShortProp string `json:"short_prop"`
	LongProp  string `json:"long_prop"`
	Texture   string `json:"texture"`
	OutputDir string `json:"output_dir"`

	// Animation
	HandJoint   string  `json:"hand_joint"`
	RangeStart  int     `json:"range_start"`
	RangeEnd    int     `json:"range_end"`
	StartTime   float64 `json:"start_time"`
	Clamp       bool    `json:"clamp"`
	FPS         float64 `json:"fps"`
	Frames      int     `json:"frames"`
	Held        string  `json:"held"`
	ToggleEvery int     `json:"toggle_every"`

	// Render settings
	RenderSize  int `json:"render_size"`
	Supersample int `json:"supersample"`
	Workers     int `json:"workers"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Model     string
	ShortProp string
	LongProp  string
	Texture   string
	OutputDir string
	Frames    int
	FPS       float64
	Held      string
	Workers   int
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values. BaseDir defaults to the
// directory holding the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
	}
	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty. Paths from the config file
// resolve against BaseDir; flag paths are kept as given, relative to the
// working directory.
func (c *Config) Resolve(flags Flags) {
	if c.OutputDir == "" && flags.OutputDir == "" {
		c.OutputDir = "renders"
	}
	if c.BaseDir != "" {
		for _, p := range []*string{&c.Model, &c.ShortProp, &c.LongProp, &c.Texture, &c.OutputDir} {
			if *p != "" && !filepath.IsAbs(*p) {
				*p = filepath.Join(c.BaseDir, *p)
			}
		}
	}

	// CLI flags override config file
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.ShortProp != "" {
		c.ShortProp = flags.ShortProp
	}
	if flags.LongProp != "" {
		c.LongProp = flags.LongProp
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Held != "" {
		c.Held = flags.Held
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// The tutorial's walk cycle
	if c.HandJoint == "" {
		c.HandJoint = "Hand_R"
	}
	if c.RangeStart == 0 && c.RangeEnd == 0 {
		c.RangeStart, c.RangeEnd = 6, 17
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Frames <= 0 {
		c.Frames = 60
	}
	if c.Held == "" {
		c.Held = attach.ShortProp.String()
	}

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 400
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports every problem that would stop a render.
func (c *Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model path is required"))
	}
	if c.ShortProp == "" {
		errs = append(errs, errors.New("short_prop path is required"))
	}
	if c.LongProp == "" {
		errs = append(errs, errors.New("long_prop path is required"))
	}
	if c.RangeStart < 0 || c.RangeEnd < c.RangeStart {
		errs = append(errs, fmt.Errorf("range %d..%d is invalid", c.RangeStart, c.RangeEnd))
	}
	if _, err := attach.ParseProp(c.Held); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
