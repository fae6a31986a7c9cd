package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fps too low", func(c *Config) { c.Render.MaxFPS = 0 }},
		{"fps too high", func(c *Config) { c.Render.MaxFPS = 500 }},
		{"bad color depth", func(c *Config) { c.Render.ColorDepth = "8bit" }},
		{"negative esc timeout", func(c *Config) { c.Terminal.EscTimeoutMS = -1 }},
		{"zero event buffer", func(c *Config) { c.Terminal.EventBuffer = 0 }},
		{"zero ring", func(c *Config) { c.Profile.Ring = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Validate() = %v, want ErrInvalidValue", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tessera.toml")
	content := `
[render]
max_fps = 30
color_depth = "256"

[profile]
enabled = true
ring = 60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Render.MaxFPS != 30 {
		t.Errorf("MaxFPS = %d, want 30", c.Render.MaxFPS)
	}
	if c.Render.ColorDepth != "256" {
		t.Errorf("ColorDepth = %q, want %q", c.Render.ColorDepth, "256")
	}
	if !c.Profile.Enabled || c.Profile.Ring != 60 {
		t.Errorf("Profile = %+v, want enabled with ring 60", c.Profile)
	}
	// Untouched sections keep their defaults.
	if c.Terminal.EscTimeoutMS != 50 {
		t.Errorf("EscTimeoutMS = %d, want default 50", c.Terminal.EscTimeoutMS)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c != DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults", c)
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[render\nmax_fps = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
	}
	if perr.Line < 1 {
		t.Errorf("ParseError.Line = %d, want >= 1", perr.Line)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tessera.toml")
	if err := os.WriteFile(path, []byte("[render]\nmax_fps = 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Load() error = %v, want ErrInvalidValue", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TESSERA_MAX_FPS":     "24",
		"TESSERA_COLOR_DEPTH": "TRUECOLOR",
		"TESSERA_PROFILE":     "true",
	}
	c := DefaultConfig()
	applyEnv(&c, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if c.Render.MaxFPS != 24 {
		t.Errorf("MaxFPS = %d, want 24", c.Render.MaxFPS)
	}
	if c.Render.ColorDepth != "truecolor" {
		t.Errorf("ColorDepth = %q, want %q", c.Render.ColorDepth, "truecolor")
	}
	if !c.Profile.Enabled {
		t.Error("Profile.Enabled = false, want true")
	}
}

func TestApplyEnvIgnoresGarbage(t *testing.T) {
	env := map[string]string{
		"TESSERA_MAX_FPS": "fast",
		"TESSERA_PROFILE": "yes please",
	}
	c := DefaultConfig()
	applyEnv(&c, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if c.Render.MaxFPS != 60 {
		t.Errorf("MaxFPS = %d, want untouched default 60", c.Render.MaxFPS)
	}
	if c.Profile.Enabled {
		t.Error("Profile.Enabled = true, want untouched default false")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tessera.toml")
	if err := os.WriteFile(path, []byte("[render]\nmax_fps = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TESSERA_MAX_FPS", "120")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Render.MaxFPS != 120 {
		t.Errorf("MaxFPS = %d, want env override 120", c.Render.MaxFPS)
	}
}
