package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
log_level: debug
display:
  width: 1920
export:
  pdf: true
detector:
  max_hands: 2
plugins:
  timeout: 2s
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Display.Width != 1920 {
		t.Errorf("Display.Width = %d, want 1920", cfg.Display.Width)
	}
	if cfg.Display.Height != 720 || cfg.Display.FPS != 30 {
		t.Errorf("unset display fields lost their defaults: %+v", cfg.Display)
	}
	if !cfg.Export.PDF {
		t.Error("Export.PDF should be true")
	}
	if cfg.Detector.MaxHands != 2 || cfg.Detector.MinConfidence != 0.5 {
		t.Errorf("Detector = %+v", cfg.Detector)
	}
	if cfg.Plugins.Timeout != 2*time.Second {
		t.Errorf("Plugins.Timeout = %s, want 2s", cfg.Plugins.Timeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("display: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config.yaml") {
		t.Errorf("Load() error = %v, want a parse error naming the file", err)
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.DataDir = t.TempDir()

	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Export.Dir != filepath.Join(cfg.DataDir, "exports") {
		t.Errorf("Export.Dir = %q", cfg.Export.Dir)
	}
	if cfg.Plugins.Dir != filepath.Join(cfg.DataDir, "plugins") {
		t.Errorf("Plugins.Dir = %q", cfg.Plugins.Dir)
	}
	if cfg.DBPath() != filepath.Join(cfg.DataDir, "mirrorpaint.db") {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero display", mutate: func(c *Config) { c.Display.Width = 0 }},
		{name: "zero camera box", mutate: func(c *Config) { c.Camera.Height = 0 }},
		{name: "zero fps", mutate: func(c *Config) { c.Display.FPS = 0 }},
		{name: "no hands", mutate: func(c *Config) { c.Detector.MaxHands = 0 }},
		{name: "negative motion", mutate: func(c *Config) { c.Camera.MotionThreshold = -1 }},
		{name: "negative plugin timeout", mutate: func(c *Config) { c.Plugins.Timeout = -time.Second }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.MDNS = true
	cfg.Camera.MotionThreshold = 1.5
	cfg.Plugins.Timeout = 3 * time.Second

	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != cfg {
		t.Errorf("Load(Write(cfg)) = %+v, want %+v", got, cfg)
	}
}
