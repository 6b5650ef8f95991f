// Package config loads handscene settings from a YAML file layered over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handscene/internal/capture"
	"github.com/ayusman/handscene/internal/detector"
	"github.com/ayusman/handscene/internal/projection"
	"github.com/ayusman/handscene/internal/scene"
)

// DefaultAddr is the HTTP listen address.
const DefaultAddr = ":8080"

// DefaultRenderFPS is the display tick rate of the render loop.
const DefaultRenderFPS = 60

// Config holds all runtime settings.
type Config struct {
	DataDir  string          `yaml:"data_dir"`
	Camera   capture.Config  `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Scene    SceneConfig     `yaml:"scene"`
	Render   RenderConfig    `yaml:"render"`
	Server   ServerConfig    `yaml:"server"`
	UI       UIConfig        `yaml:"ui"`
}

// SceneConfig describes the virtual camera and marker behavior.
type SceneConfig struct {
	FOV             float64 `yaml:"fov"`
	Near            float64 `yaml:"near"`
	Far             float64 `yaml:"far"`
	OrbitRadius     float64 `yaml:"orbit_radius"`
	OrbitAngle      float64 `yaml:"orbit_angle"`
	ScaleOffset     float64 `yaml:"scale_offset"`
	SpinRate        float64 `yaml:"spin_rate"`
	MalformedPolicy string  `yaml:"malformed_policy"`
}

// RenderConfig controls the display refresh loop.
type RenderConfig struct {
	FPS int `yaml:"fps"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// UIConfig selects the desktop front ends.
type UIConfig struct {
	Tray         bool `yaml:"tray"`
	Window       bool `yaml:"window"`
	WindowWidth  int  `yaml:"window_width"`
	WindowHeight int  `yaml:"window_height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:  defaultDataDir(),
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Scene: SceneConfig{
			FOV:             projection.DefaultFOV,
			Near:            projection.DefaultNear,
			Far:             projection.DefaultFar,
			OrbitRadius:     projection.DefaultOrbitRadius,
			OrbitAngle:      projection.DefaultOrbitAngle,
			ScaleOffset:     scene.DefaultScaleOffset,
			SpinRate:        scene.DefaultSpinRate,
			MalformedPolicy: string(scene.PolicySkip),
		},
		Render: RenderConfig{FPS: DefaultRenderFPS},
		Server: ServerConfig{Addr: DefaultAddr},
		UI: UIConfig{
			WindowWidth:  capture.DefaultWidth,
			WindowHeight: capture.DefaultHeight,
		},
	}
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".handscene"
	}
	return filepath.Join(homeDir, ".handscene")
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the settings that cannot be repaired at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Render.FPS <= 0 {
		errs = append(errs, fmt.Errorf("render.fps must be positive, got %d", c.Render.FPS))
	}
	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > detector.NumSides {
		errs = append(errs, fmt.Errorf("detector.max_hands must be 1 or 2, got %d", c.Detector.MaxHands))
	}
	if !scene.MalformedPolicy(c.Scene.MalformedPolicy).Valid() {
		errs = append(errs, fmt.Errorf("scene.malformed_policy must be %q or %q, got %q",
			scene.PolicySkip, scene.PolicyStrict, c.Scene.MalformedPolicy))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.UI.Tray && c.UI.Window {
		errs = append(errs, errors.New("ui.tray and ui.window cannot both run on the main thread"))
	}

	if _, err := projection.NewCamera(c.CameraParams()); err != nil {
		errs = append(errs, fmt.Errorf("scene camera: %w", err))
	}

	return errors.Join(errs...)
}

// CameraParams builds the virtual camera for the configured capture aspect.
func (c *Config) CameraParams() projection.Params {
	aspect := 16.0 / 9.0
	if c.Camera.Width > 0 && c.Camera.Height > 0 {
		aspect = float64(c.Camera.Width) / float64(c.Camera.Height)
	}

	p := projection.DefaultParams(aspect)
	p.FOV = c.Scene.FOV
	p.Near = c.Scene.Near
	p.Far = c.Scene.Far
	p.Position = projection.OrbitPosition(c.Scene.OrbitRadius, c.Scene.OrbitAngle)
	return p
}

// SceneConfig returns the settings for scene.New.
func (c *Config) SceneConfig() scene.Config {
	return scene.Config{
		Camera:      c.CameraParams(),
		ScaleOffset: c.Scene.ScaleOffset,
		SpinRate:    c.Scene.SpinRate,
		Policy:      scene.MalformedPolicy(c.Scene.MalformedPolicy),
	}
}

// DBPath is the settings database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "handscene.db")
}
