package quality

import (
	"Volumetrics/internal/logger"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// VideoSettings holds the ordered quality tiers and the index of the active one.
// Renderer passes read it once per frame through Current.
type VideoSettings struct {
	mu       sync.RWMutex
	quality  int
	settings []VideoSetting
}

// NewVideoSettings validates every tier and selects the one at index quality
func NewVideoSettings(settings []VideoSetting, quality int) (*VideoSettings, error) {
	if len(settings) == 0 {
		return nil, fmt.Errorf("no quality tiers: %w", ErrConfigInvalid)
	}
	for _, s := range settings {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if quality < 0 || quality >= len(settings) {
		return nil, fmt.Errorf("quality index %d out of range [0,%d): %w", quality, len(settings), ErrConfigInvalid)
	}

	tiers := make([]VideoSetting, len(settings))
	copy(tiers, settings)
	return &VideoSettings{quality: quality, settings: tiers}, nil
}

// DefaultVideoSettings returns Low, Medium, High and Ultra with High selected
func DefaultVideoSettings() *VideoSettings {
	vs, _ := NewVideoSettings([]VideoSetting{
		LowVideoSetting(),
		MediumVideoSetting(),
		HighVideoSetting(),
		UltraVideoSetting(),
	}, 2)
	return vs
}

// Quality returns the active tier index
func (vs *VideoSettings) Quality() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.quality
}

// SetQuality selects another tier. An out of range index leaves the selection untouched.
func (vs *VideoSettings) SetQuality(quality int) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if quality < 0 || quality >= len(vs.settings) {
		return fmt.Errorf("quality index %d out of range [0,%d): %w", quality, len(vs.settings), ErrConfigInvalid)
	}
	if quality != vs.quality {
		vs.quality = quality
		logger.Log.Info("Video quality changed",
			zap.Int("quality", quality),
			zap.String("tier", vs.settings[quality].Name))
	}
	return nil
}

// Current returns a copy of the active tier
func (vs *VideoSettings) Current() VideoSetting {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.settings[vs.quality]
}

// Tiers returns a copy of all configured tiers in order
func (vs *VideoSettings) Tiers() []VideoSetting {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	tiers := make([]VideoSetting, len(vs.settings))
	copy(tiers, vs.settings)
	return tiers
}

// SetVolumetricEnabled toggles the effect on the active tier only
func (vs *VideoSettings) SetVolumetricEnabled(enabled bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.settings[vs.quality].EnableVolumetricLighting = enabled
}
