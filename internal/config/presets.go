package config

import "sort"

// Presets are named run profiles covering the common workflows: quick
// previews, strict fitting for publication figures, and translate-only
// inspection of raw parser output.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"preview": {
		Duration: 3.0,
		Image:    ImageConfig{WidthPx: DefaultImageWidth, HeightPx: DefaultImageHeight},
		Normalize: NormalizeConfig{
			MarginM: 0.02,
			Mode:    "translate-and-scale",
			Target:  "dynamic",
		},
		View: ViewConfig{FrameRate: 15, PaddingPx: DefaultPaddingPx},
	},
	"strict": {
		Duration: 10.0,
		Image:    ImageConfig{WidthPx: DefaultImageWidth, HeightPx: DefaultImageHeight},
		Normalize: NormalizeConfig{
			MarginM: 0.05,
			Mode:    "translate-and-scale",
			Target:  "all",
		},
		View: ViewConfig{FrameRate: 60, PaddingPx: DefaultPaddingPx},
	},
	"raw": {
		Duration: 10.0,
		Image:    ImageConfig{WidthPx: DefaultImageWidth, HeightPx: DefaultImageHeight},
		Normalize: NormalizeConfig{
			MarginM: 0.02,
			Mode:    "translate",
			Target:  "dynamic",
		},
		View: ViewConfig{FrameRate: DefaultFrameRate, PaddingPx: DefaultPaddingPx},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
