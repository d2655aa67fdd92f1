package main

import (
	"Volumetrics/internal/logger"
	"Volumetrics/internal/quality"
	"Volumetrics/internal/volumetric"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Config is the optional file passed with -config, JSON or TOML by extension
type Config struct {
	Volumetric volumetric.Settings    `json:"volumetric" toml:"volumetric"`
	Quality    int                    `json:"quality" toml:"quality"`
	Tiers      []quality.VideoSetting `json:"tiers,omitempty" toml:"tiers,omitempty"`
}

func defaultConfig() Config {
	video := quality.DefaultVideoSettings()
	return Config{
		Volumetric: volumetric.DefaultSettings(),
		Quality:    video.Quality(),
		Tiers:      video.Tiers(),
	}
}

// loadConfig overlays the file at path onto the defaults. Keys missing from the file
// keep their default values.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// parseQuality accepts a tier index or a tier name
func parseQuality(value string, tiers []quality.VideoSetting) (int, error) {
	if i, err := strconv.Atoi(value); err == nil {
		return i, nil
	}
	for i, tier := range tiers {
		if strings.EqualFold(tier.Name, value) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown quality %q: %w", value, quality.ErrConfigInvalid)
}

// applyConfig pushes a reloaded config into the running feature and quality tiers.
// Tiers themselves are fixed at startup; only the selected index follows the file.
// Nothing changes unless the whole config is accepted.
func (a *app) applyConfig(config Config) error {
	if n := len(a.video.Tiers()); config.Quality < 0 || config.Quality >= n {
		return fmt.Errorf("quality %d outside [0, %d): %w", config.Quality, n, quality.ErrConfigInvalid)
	}
	if err := a.feature.SetSettings(config.Volumetric); err != nil {
		return err
	}
	if err := a.video.SetQuality(config.Quality); err != nil {
		return err
	}
	a.config.Volumetric = config.Volumetric
	a.config.Quality = config.Quality
	logger.Log.Info("Config applied",
		zap.Stringer("stage", config.Volumetric.Stage),
		zap.Float32("intensity", config.Volumetric.Intensity),
		zap.String("quality", a.video.Current().Name))
	return nil
}
