// Package config loads the runtime settings of a brics application from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned when a loaded config holds an out-of-range or unknown value.
var ErrInvalid = errors.New("config: invalid value")

// Window holds the [window] table.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Render holds the [render] table.
type Render struct {
	// PresentMode is one of "fifo", "immediate" or "mailbox".
	PresentMode string `toml:"present_mode"`

	// ClearColor is the RGBA clear color of the main pass.
	ClearColor [4]float64 `toml:"clear_color"`

	// ShadowMapSize is the edge length in texels of the square shadow map.
	ShadowMapSize uint32 `toml:"shadow_map_size"`

	// ShaderFormat is "spirv" or "wgsl".
	ShaderFormat string `toml:"shader_format"`

	// HotReload rebuilds pipelines when their shader files change on disk.
	HotReload bool `toml:"hot_reload"`

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool `toml:"force_fallback_adapter"`
}

// Loop holds the [loop] table.
type Loop struct {
	// TickRate is the number of ticks per second.
	TickRate float64 `toml:"tick_rate"`

	// Profiling logs frame statistics once per second.
	Profiling bool `toml:"profiling"`
}

// Log holds the [log] table.
type Log struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `toml:"level"`
}

// Config is the full application configuration.
type Config struct {
	Window Window `toml:"window"`
	Render Render `toml:"render"`
	Loop   Loop   `toml:"loop"`
	Log    Log    `toml:"log"`
}

// Default returns the configuration used when no file is given. Loaded files override it
// field by field.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: Window{
			Title:  "brics",
			Width:  1280,
			Height: 720,
		},
		Render: Render{
			PresentMode:   "fifo",
			ClearColor:    [4]float64{0.1, 0.2, 0.3, 1.0},
			ShadowMapSize: 2048,
			ShaderFormat:  "spirv",
		},
		Loop: Loop{
			TickRate: 60,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Parse decodes TOML data over the defaults and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: TOML document bytes
//
// Returns:
//   - Config: the merged configuration
//   - error: a decode error or ErrInvalid
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the TOML file at path. An empty path returns the defaults.
//
// Parameters:
//   - path: the config file path, or ""
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks every field range and enumerated string.
//
// Returns:
//   - error: ErrInvalid naming the first bad field, or nil
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Loop.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate %v", ErrInvalid, c.Loop.TickRate)
	case c.Render.ShadowMapSize == 0:
		return fmt.Errorf("%w: shadow_map_size 0", ErrInvalid)
	}
	if _, ok := presentModes[strings.ToLower(c.Render.PresentMode)]; !ok {
		return fmt.Errorf("%w: present_mode %q", ErrInvalid, c.Render.PresentMode)
	}
	switch strings.ToLower(c.Render.ShaderFormat) {
	case "spirv", "wgsl":
	default:
		return fmt.Errorf("%w: shader_format %q", ErrInvalid, c.Render.ShaderFormat)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color component %v", ErrInvalid, v)
		}
	}
	return nil
}

var presentModes = map[string]wgpu.PresentMode{
	"fifo":      wgpu.PresentModeFifo,
	"immediate": wgpu.PresentModeImmediate,
	"mailbox":   wgpu.PresentModeMailbox,
}

// WGPUPresentMode maps PresentMode to the surface present mode, falling back to FIFO.
func (r Render) WGPUPresentMode() wgpu.PresentMode {
	if mode, ok := presentModes[strings.ToLower(r.PresentMode)]; ok {
		return mode
	}
	return wgpu.PresentModeFifo
}

// WGPUClearColor returns ClearColor as a wgpu.Color.
func (r Render) WGPUClearColor() wgpu.Color {
	return wgpu.Color{R: r.ClearColor[0], G: r.ClearColor[1], B: r.ClearColor[2], A: r.ClearColor[3]}
}
