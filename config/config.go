// Package config provides configuration loading and access for the galaxy viewer.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig      `yaml:"screen" toml:"screen"`
	Galaxy    galaxy.Parameters `yaml:"galaxy" toml:"galaxy"`
	Render    RenderConfig      `yaml:"render" toml:"render"`
	Camera    CameraConfig      `yaml:"camera" toml:"camera"`
	Telemetry TelemetryConfig   `yaml:"telemetry" toml:"telemetry"`
	Snapshot  SnapshotConfig    `yaml:"snapshot" toml:"snapshot"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width         int     `yaml:"width" toml:"width"`
	Height        int     `yaml:"height" toml:"height"`
	TargetFPS     int     `yaml:"target_fps" toml:"target_fps"`
	Title         string  `yaml:"title" toml:"title"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio" toml:"max_pixel_ratio"` // device pixel ratio cap
}

// RenderConfig holds point cloud rendering and generation settings.
type RenderConfig struct {
	Mode              string  `yaml:"mode" toml:"mode"`                             // deferred or baked
	BakedSize         float64 `yaml:"baked_size" toml:"baked_size"`                 // world-space point size in baked mode
	TimeStep          float64 `yaml:"time_step" toml:"time_step"`                   // time added per animated tick
	AsyncThreshold    int     `yaml:"async_threshold" toml:"async_threshold"`       // counts above this generate off the render thread (0 = never)
	ParallelThreshold int     `yaml:"parallel_threshold" toml:"parallel_threshold"` // counts above this generate in chunks (0 = never)
	Workers           int     `yaml:"workers" toml:"workers"`                       // chunk workers (0 = GOMAXPROCS)
	Background        string  `yaml:"background" toml:"background"`
}

// CameraConfig holds the initial orbit camera placement and control feel.
type CameraConfig struct {
	Position    [3]float64 `yaml:"position" toml:"position"`
	Target      [3]float64 `yaml:"target" toml:"target"`
	FOV         float64    `yaml:"fov" toml:"fov"` // vertical, degrees
	Near        float64    `yaml:"near" toml:"near"`
	Far         float64    `yaml:"far" toml:"far"`
	Damping     float64    `yaml:"damping" toml:"damping"` // 0 disables damping
	MinDistance float64    `yaml:"min_distance" toml:"min_distance"`
	MaxDistance float64    `yaml:"max_distance" toml:"max_distance"`
	RotateSpeed float64    `yaml:"rotate_speed" toml:"rotate_speed"` // radians per dragged pixel
	ZoomSpeed   float64    `yaml:"zoom_speed" toml:"zoom_speed"`     // distance factor per wheel step
}

// TelemetryConfig holds performance and generation logging settings.
type TelemetryConfig struct {
	PerfCollectorWindow int     `yaml:"perf_collector_window" toml:"perf_collector_window"` // frames in the rolling window
	StatsWindow         float64 `yaml:"stats_window" toml:"stats_window"`                   // seconds between perf log lines
	FieldStats          bool    `yaml:"field_stats" toml:"field_stats"`                     // compute radius statistics per generation
}

// SnapshotConfig holds headless PNG rendering settings.
type SnapshotConfig struct {
	Width    int     `yaml:"width" toml:"width"`
	Height   int     `yaml:"height" toml:"height"`
	Exposure float64 `yaml:"exposure" toml:"exposure"` // intensity multiplier before tone mapping
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Mode       galaxy.Mode       // Render.Mode parsed
	Params     galaxy.Parameters // Galaxy with the size for Mode applied
	ScreenW32  float32           // Screen.Width as float32
	ScreenH32  float32           // Screen.Height as float32
	TimeStep32 float32           // Render.TimeStep as float32
	Background colorful.Color    // Render.Background parsed
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set replaces the global configuration.
func Set(cfg *Config) {
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML or TOML file, merging with embedded
// defaults. The format follows the file extension (.toml, otherwise YAML).
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if isTOML(path) {
			err = toml.Unmarshal(data, cfg)
		} else {
			err = yaml.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	mode, err := galaxy.ParseMode(c.Render.Mode)
	if err != nil {
		return fmt.Errorf("render.mode: %w", err)
	}
	c.Derived.Mode = mode

	bg, err := colorful.Hex(c.Render.Background)
	if err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	c.Derived.Background = bg

	c.Derived.Params = c.ParamsFor(mode)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.TimeStep32 = float32(c.Render.TimeStep)

	if c.Screen.MaxPixelRatio <= 0 {
		c.Screen.MaxPixelRatio = 2
	}
	return nil
}

// ParamsFor returns the galaxy parameters with the point size used by mode.
// Baked mode sizes are world units, so the galaxy size (pixels) is swapped
// for render.baked_size.
func (c *Config) ParamsFor(mode galaxy.Mode) galaxy.Parameters {
	p := c.Galaxy
	if mode == galaxy.Baked {
		p.Size = c.Render.BakedSize
		if p.Size <= 0 {
			p.Size = galaxy.DefaultBakedSize
		}
		p.Animate = false
	}
	return p
}

// SetMode overrides the render mode, for example from the command line.
func (c *Config) SetMode(name string) error {
	mode, err := galaxy.ParseMode(name)
	if err != nil {
		return err
	}
	c.Render.Mode = mode.String()
	c.Derived.Mode = mode
	c.Derived.Params = c.ParamsFor(mode)
	return nil
}

// PixelRatio clamps a device pixel ratio to the configured cap.
func (c *Config) PixelRatio(dpr float64) float64 {
	if !(dpr > 0) {
		dpr = 1
	}
	return min(dpr, c.Screen.MaxPixelRatio)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// WriteTOML writes the configuration to a TOML file.
func (c *Config) WriteTOML(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
