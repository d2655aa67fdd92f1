package volumetric

import (
	"Volumetrics/internal/logger"
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"fmt"

	"go.uber.org/zap"
)

// FeatureGate decides per view and frame whether the pass graph runs at all
type FeatureGate struct {
	Name string
}

// ShouldRun is true only when the quality tier enables the effect and the view is a
// main or editor preview view. Reflection probes, overlays and thumbnails never get it.
func (g FeatureGate) ShouldRun(view renderer.View, qualityEnabled bool) bool {
	if !qualityEnabled {
		return false
	}
	return view.Kind == renderer.ViewMain || view.Kind == renderer.ViewEditorPreview
}

// Evaluate queries the active quality tier and applies ShouldRun. Any fault while
// reading the settings is logged and treated as "do not run".
func (g FeatureGate) Evaluate(video *quality.VideoSettings, view renderer.View) (run bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Feature gate failed closed",
				zap.String("feature", g.Name),
				zap.String("view", view.Name),
				zap.Error(fmt.Errorf("%v", r)))
			run = false
		}
	}()

	if video == nil {
		logger.Log.Error("Feature gate failed closed",
			zap.String("feature", g.Name),
			zap.String("view", view.Name),
			zap.Error(fmt.Errorf("no video settings: %w", ErrConfigInvalid)))
		return false
	}
	return g.ShouldRun(view, video.Current().EnableVolumetricLighting)
}
