package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/einslab/sketchphys/internal/normalize"
	"github.com/einslab/sketchphys/internal/transform"
)

const (
	DefaultDuration    = 10.0
	DefaultImageWidth  = 800.0
	DefaultImageHeight = 600.0
	DefaultFrameRate   = 30
	DefaultPaddingPx   = 24.0
)

type Config struct {
	Duration  float64         `yaml:"duration"`
	Image     ImageConfig     `yaml:"image"`
	Normalize NormalizeConfig `yaml:"normalize"`
	View      ViewConfig      `yaml:"view"`
}

// ImageConfig is the source-image pixel size the scene mapping refers to.
type ImageConfig struct {
	WidthPx  float64 `yaml:"width_px"`
	HeightPx float64 `yaml:"height_px"`
}

type NormalizeConfig struct {
	MarginM         float64 `yaml:"margin_m"`
	Mode            string  `yaml:"mode"`
	Target          string  `yaml:"target"`
	ScaleVelocities bool    `yaml:"scale_velocities"`
}

type ViewConfig struct {
	FrameRate int     `yaml:"fps"`
	PaddingPx float64 `yaml:"padding_px"`
}

func DefaultConfig() *Config {
	return &Config{
		Duration: DefaultDuration,
		Image: ImageConfig{
			WidthPx:  DefaultImageWidth,
			HeightPx: DefaultImageHeight,
		},
		Normalize: NormalizeConfig{
			MarginM: normalize.DefaultMarginM,
			Mode:    string(normalize.TranslateAndScale),
			Target:  string(normalize.DynamicBodies),
		},
		View: ViewConfig{
			FrameRate: DefaultFrameRate,
			PaddingPx: DefaultPaddingPx,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) ImageSize() transform.Size {
	return transform.Size{W: c.Image.WidthPx, H: c.Image.HeightPx}
}

func (c *Config) NormalizeOptions() normalize.Options {
	return normalize.Options{
		MarginM:         c.Normalize.MarginM,
		Mode:            normalize.Mode(c.Normalize.Mode),
		Target:          normalize.Target(c.Normalize.Target),
		ScaleVelocities: c.Normalize.ScaleVelocities,
	}
}
