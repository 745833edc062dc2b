// Package config loads mirrorpaint settings from a YAML file on top of
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/logging"
)

// DirName is the per-user data directory under the home directory.
const DirName = ".mirrorpaint"

// Config is the full application configuration.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	Camera   CameraConfig    `yaml:"camera"`
	Display  DisplayConfig   `yaml:"display"`
	Detector detector.Config `yaml:"detector"`
	Export   ExportConfig    `yaml:"export"`
	Server   ServerConfig    `yaml:"server"`
	Plugins  PluginsConfig   `yaml:"plugins"`

	Tray bool `yaml:"tray"`
}

// CameraConfig selects the capture device. Width and Height are the size of
// the on-screen camera box that landmarks are expressed in.
type CameraConfig struct {
	ID            int `yaml:"id"`
	CaptureWidth  int `yaml:"capture_width"`
	CaptureHeight int `yaml:"capture_height"`
	Width         int `yaml:"width"`
	Height        int `yaml:"height"`
	// MotionThreshold is the percentage of changed pixels needed to run the
	// detector. Zero runs the detector on every frame.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// DisplayConfig sizes the preview and the drawing surface.
type DisplayConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	FPS    int  `yaml:"fps"`
	Window bool `yaml:"window"`
}

// ExportConfig controls where snapshots go.
type ExportConfig struct {
	Dir string `yaml:"dir"`
	PDF bool   `yaml:"pdf"`
}

// ServerConfig controls the preview HTTP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	MDNS      bool   `yaml:"mdns"`
}

// PluginsConfig locates the export hooks. Timeout bounds a single run.
type PluginsConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is present.
// Paths are left empty and filled in by Resolve.
func Default() Config {
	return Config{
		LogLevel: "info",
		Camera: CameraConfig{
			ID:            0,
			CaptureWidth:  640,
			CaptureHeight: 480,
			Width:         320,
			Height:        240,
		},
		Display: DisplayConfig{
			Width:  1280,
			Height: 720,
			FPS:    30,
			Window: true,
		},
		Detector: detector.DefaultConfig(),
		Server: ServerConfig{
			Addr: ":8080",
		},
		Plugins: PluginsConfig{
			Timeout: 10 * time.Second,
		},
		Tray: false,
	}
}

// DefaultPath returns ~/.mirrorpaint/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Resolve fills empty paths from the home directory and validates the result.
func (c *Config) Resolve() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, DirName)
	}
	if c.Export.Dir == "" {
		c.Export.Dir = filepath.Join(c.DataDir, "exports")
	}
	if c.Plugins.Dir == "" {
		c.Plugins.Dir = filepath.Join(c.DataDir, "plugins")
	}
	return c.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("camera box must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	case c.Display.Width <= 0 || c.Display.Height <= 0:
		return fmt.Errorf("display must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	case c.Display.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", c.Display.FPS)
	case c.Detector.MaxHands <= 0:
		return fmt.Errorf("detector max_hands must be positive, got %d", c.Detector.MaxHands)
	case c.Camera.MotionThreshold < 0:
		return fmt.Errorf("motion_threshold must not be negative, got %v", c.Camera.MotionThreshold)
	case c.Plugins.Timeout < 0:
		return fmt.Errorf("plugins timeout must not be negative, got %s", c.Plugins.Timeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DBPath is the SQLite file holding export history and settings.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mirrorpaint.db")
}

// Write saves the configuration as YAML, creating the parent directory.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
