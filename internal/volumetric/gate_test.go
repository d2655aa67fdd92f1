package volumetric

import (
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"testing"
)

func TestFeatureGateShouldRun(t *testing.T) {
	gate := FeatureGate{Name: "test"}
	kinds := []struct {
		kind     renderer.ViewKind
		eligible bool
	}{
		{renderer.ViewMain, true},
		{renderer.ViewEditorPreview, true},
		{renderer.ViewReflectionProbe, false},
		{renderer.ViewOverlay, false},
		{renderer.ViewThumbnail, false},
	}

	for _, k := range kinds {
		for _, enabled := range []bool{true, false} {
			view := renderer.View{Kind: k.kind}
			want := enabled && k.eligible
			if got := gate.ShouldRun(view, enabled); got != want {
				t.Errorf("ShouldRun(%s, %v) = %v, want %v", k.kind, enabled, got, want)
			}
		}
	}
}

func TestFeatureGateEvaluate(t *testing.T) {
	gate := FeatureGate{Name: "test"}
	view := renderer.View{Name: "Main Camera", Kind: renderer.ViewMain}

	if gate.Evaluate(nil, view) {
		t.Error("nil video settings should fail closed")
	}

	video := quality.DefaultVideoSettings()
	if !gate.Evaluate(video, view) {
		t.Error("high quality should enable the main view")
	}
	video.SetVolumetricEnabled(false)
	if gate.Evaluate(video, view) {
		t.Error("disabled volumetrics should gate the view")
	}
}
