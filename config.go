package scenekit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

const ConfigFilename = "scenekit.yml"

// Config is the user-tunable part of an exercise run. Fields left out of the
// YAML keep their defaults.
type Config struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Title         string  `yaml:"title"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
	ClearColor    string  `yaml:"clear_color"`
	AssetRoot     string  `yaml:"asset_root"`

	Particles int    `yaml:"particles"`
	Text      string `yaml:"text"`
	Donuts    int    `yaml:"donuts"`
	Seed      int64  `yaml:"seed"`

	// headless rendering
	Frames int    `yaml:"frames"`
	FPS    int    `yaml:"fps"`
	OutDir string `yaml:"out_dir"`

	Debug bool `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Width:         800,
		Height:        600,
		Title:         "scenekit",
		MaxPixelRatio: 2,
		ClearColor:    "#000000",
		AssetRoot:     "static",
		Particles:     5000,
		Text:          "Hello Three.js",
		Donuts:        100,
		Seed:          1,
		Frames:        60,
		FPS:           60,
		OutDir:        "frames",
	}
}

// LoadConfig reads a YAML config. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Particles < 0 || c.Donuts < 0 {
		return errors.New("counts must not be negative")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps %d must be positive", c.FPS)
	}
	if _, err := ParseHexColor(c.ClearColor); err != nil {
		return err
	}
	return nil
}

// Clear returns ClearColor as an opaque RGBA value, black when unparsable.
func (c Config) Clear() mgl32.Vec4 {
	rgb, err := ParseHexColor(c.ClearColor)
	if err != nil {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	return rgb.Vec4(1)
}
