package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads the TOML file at path over the defaults, applies
// TESSERA_* environment overrides and validates the result. A
// missing file is not an error; the defaults are used.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &c); err != nil {
				return Config{}, parseError(path, err)
			}
		}
	}
	applyEnv(&c, os.LookupEnv)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parseError(path string, err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return &ParseError{Path: path, Line: row, Column: col, Message: derr.Error(), Err: err}
	}
	return &ParseError{Path: path, Message: err.Error(), Err: err}
}

// envMapping pairs each recognized variable with the setter that
// applies it.
var envMapping = map[string]func(*Config, string){
	"TESSERA_MAX_FPS":        func(c *Config, v string) { setInt(&c.Render.MaxFPS, v) },
	"TESSERA_COLOR_DEPTH":    func(c *Config, v string) { c.Render.ColorDepth = strings.ToLower(v) },
	"TESSERA_ESC_TIMEOUT_MS": func(c *Config, v string) { setInt(&c.Terminal.EscTimeoutMS, v) },
	"TESSERA_EVENT_BUFFER":   func(c *Config, v string) { setInt(&c.Terminal.EventBuffer, v) },
	"TESSERA_PROFILE":        func(c *Config, v string) { setBool(&c.Profile.Enabled, v) },
	"TESSERA_PROFILE_OUTPUT": func(c *Config, v string) { c.Profile.Output = v },
	"TESSERA_PROFILE_RING":   func(c *Config, v string) { setInt(&c.Profile.Ring, v) },
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	for name, apply := range envMapping {
		if v, ok := lookup(name); ok {
			apply(c, v)
		}
	}
}

// setInt and setBool leave the target untouched on unparseable
// input, so a bad environment value cannot zero a valid default.
func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
