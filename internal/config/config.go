// Package config loads, validates and watches the tessera
// configuration. Configuration comes from a TOML file, with
// environment variables and runtime overrides layered on top.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidValue marks a configuration value outside its allowed
// range or set.
var ErrInvalidValue = errors.New("invalid config value")

// Config is a complete configuration snapshot. The struct is plain
// data; mutating a snapshot never affects the source it was loaded
// from.
type Config struct {
	Render   RenderConfig   `toml:"render" json:"render"`
	Terminal TerminalConfig `toml:"terminal" json:"terminal"`
	Profile  ProfileConfig  `toml:"profile" json:"profile"`
}

// RenderConfig controls the frame pipeline.
type RenderConfig struct {
	// MaxFPS caps how many frames may be drawn per second.
	MaxFPS int `toml:"max_fps" json:"max_fps"`

	// ColorDepth selects the output palette: "auto", "mono", "16",
	// "256" or "truecolor". "auto" defers to terminal detection.
	ColorDepth string `toml:"color_depth" json:"color_depth"`
}

// TerminalConfig controls the terminal layer.
type TerminalConfig struct {
	// EscTimeoutMS is how long a lone ESC byte waits for follow-up
	// bytes before being treated as the Escape key, in milliseconds.
	EscTimeoutMS int `toml:"esc_timeout_ms" json:"esc_timeout_ms"`

	// EventBuffer is the key event channel capacity.
	EventBuffer int `toml:"event_buffer" json:"event_buffer"`
}

// ProfileConfig controls frame profiling.
type ProfileConfig struct {
	// Enabled turns per-frame metric collection on.
	Enabled bool `toml:"enabled" json:"enabled"`

	// Output is a path for JSON Lines metric records. Empty keeps
	// metrics in the in-memory ring only.
	Output string `toml:"output" json:"output"`

	// Ring is how many recent frames the in-memory collector keeps.
	Ring int `toml:"ring" json:"ring"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			MaxFPS:     60,
			ColorDepth: "auto",
		},
		Terminal: TerminalConfig{
			EscTimeoutMS: 50,
			EventBuffer:  32,
		},
		Profile: ProfileConfig{
			Ring: 120,
		},
	}
}

// Validate checks every field against its allowed range. The first
// violation is returned, wrapping ErrInvalidValue.
func (c Config) Validate() error {
	if c.Render.MaxFPS < 1 || c.Render.MaxFPS > 240 {
		return fmt.Errorf("%w: render.max_fps %d, want 1-240", ErrInvalidValue, c.Render.MaxFPS)
	}
	switch c.Render.ColorDepth {
	case "auto", "mono", "16", "256", "truecolor":
	default:
		return fmt.Errorf("%w: render.color_depth %q", ErrInvalidValue, c.Render.ColorDepth)
	}
	if c.Terminal.EscTimeoutMS < 0 {
		return fmt.Errorf("%w: terminal.esc_timeout_ms %d, want >= 0", ErrInvalidValue, c.Terminal.EscTimeoutMS)
	}
	if c.Terminal.EventBuffer < 1 {
		return fmt.Errorf("%w: terminal.event_buffer %d, want >= 1", ErrInvalidValue, c.Terminal.EventBuffer)
	}
	if c.Profile.Ring < 1 {
		return fmt.Errorf("%w: profile.ring %d, want >= 1", ErrInvalidValue, c.Profile.Ring)
	}
	return nil
}
