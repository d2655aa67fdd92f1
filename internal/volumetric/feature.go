package volumetric

import (
	"Volumetrics/internal/logger"
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"fmt"

	"go.uber.org/zap"
)

// FeatureStats counts what happened to the frames handed to a Feature
type FeatureStats struct {
	Frames   int
	Rendered int
	Skipped  int
	Faults   int
}

// Feature is the render pass the engine schedules once per view and frame. Nothing it
// runs is allowed to take the frame down: failures skip the effect and get logged.
type Feature struct {
	name     string
	settings Settings
	video    *quality.VideoSettings
	graph    *PassGraph
	gate     FeatureGate
	stats    FeatureStats
}

// NewFeature validates settings and binds the feature to a target pool
func NewFeature(name string, settings Settings, video *quality.VideoSettings, pool *renderer.TargetPool) (*Feature, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("feature %s has no target pool: %w", name, ErrConfigInvalid)
	}
	return &Feature{
		name:     name,
		settings: settings,
		video:    video,
		graph:    NewPassGraph(pool, renderer.NewMaterial(settings.Shader)),
		gate:     FeatureGate{Name: name},
	}, nil
}

func (f *Feature) Name() string {
	return f.name
}

// Event is the injection point the engine schedules this pass at
func (f *Feature) Event() renderer.RenderPassEvent {
	return f.settings.InjectionPoint
}

func (f *Feature) Settings() Settings {
	return f.settings
}

// SetSettings swaps the configuration between frames. The shader and the injection
// point cannot change; the engine orders passes only when they are added.
func (f *Feature) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Shader != f.settings.Shader {
		return fmt.Errorf("shader is fixed at %q: %w", f.settings.Shader, ErrConfigInvalid)
	}
	if s.InjectionPoint != f.settings.InjectionPoint {
		return fmt.Errorf("injection point is fixed at %s: %w", f.settings.InjectionPoint, ErrConfigInvalid)
	}
	f.settings = s
	return nil
}

func (f *Feature) Stats() FeatureStats {
	return f.stats
}

// Render runs the pass graph over target for view and reports whether the effect was
// applied.
func (f *Feature) Render(view renderer.View, target renderer.ViewTarget) (applied bool) {
	f.stats.Frames++
	defer func() {
		if r := recover(); r != nil {
			f.stats.Faults++
			logger.Log.Error("Volumetric pass panicked",
				zap.String("feature", f.name),
				zap.String("view", view.Name),
				zap.Error(fmt.Errorf("%v", r)))
			applied = false
		}
	}()

	if !f.gate.Evaluate(f.video, view) {
		f.stats.Skipped++
		return false
	}

	profile := f.video.Current()
	params := f.settings.Params()
	if err := params.Validate(); err != nil {
		f.stats.Skipped++
		logger.Log.Warn("Volumetric parameters rejected", zap.String("feature", f.name), zap.Error(err))
		return false
	}

	state, err := f.graph.ConfigureRect(view.Resolution, view.FullResolution(), profile)
	if err != nil {
		f.stats.Skipped++
		logger.Log.Warn("Volumetric targets unavailable",
			zap.String("feature", f.name),
			zap.String("view", view.Name),
			zap.String("quality", profile.Name),
			zap.Error(err))
		return false
	}

	if err := f.graph.Execute(target, state, params, profile); err != nil {
		f.stats.Faults++
		logger.Log.Error("Volumetric pass failed",
			zap.String("feature", f.name),
			zap.String("view", view.Name),
			zap.Stringer("stage", params.Stage),
			zap.Error(err))
		return false
	}

	f.stats.Rendered++
	return true
}
