package volumetric

import (
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestFeature(t *testing.T, f *fixture, settings Settings, video *quality.VideoSettings) *Feature {
	t.Helper()
	feature, err := NewFeature("Volumetric Light", settings, video, f.pool)
	if err != nil {
		t.Fatalf("NewFeature failed: %v", err)
	}
	return feature
}

func mainView(f *fixture) renderer.View {
	return renderer.View{Name: "Main Camera", Kind: renderer.ViewMain, Resolution: f.full}
}

func TestFeatureZeroIntensityLeavesImageUntouched(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	settings := DefaultSettings()
	settings.Intensity = 0
	feature := newTestFeature(t, f, settings, quality.DefaultVideoSettings())

	if !feature.Render(mainView(f), f.target) {
		t.Fatalf("effect should apply, stats %+v", feature.Stats())
	}

	s := f.surface(t, f.target.Color)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := s.At(x, y)
			if c.X() != 0.5 || c.Y() != 0.5 || c.Z() != 0.5 || c.W() != 1 {
				t.Fatalf("pixel (%d,%d) changed to %v", x, y, c)
			}
		}
	}
	assertBalanced(t, f.pool)
}

func TestFeatureAddsScattering(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	feature := newTestFeature(t, f, DefaultSettings(), quality.DefaultVideoSettings())

	if !feature.Render(mainView(f), f.target) {
		t.Fatalf("effect should apply, stats %+v", feature.Stats())
	}

	s := f.surface(t, f.target.Color)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if c := s.At(x, y); c.X() <= 0.5 {
				t.Fatalf("pixel (%d,%d) should be brightened, got %v", x, y, c)
			}
		}
	}
}

func TestFeatureSkipsIneligibleViews(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	feature := newTestFeature(t, f, DefaultSettings(), quality.DefaultVideoSettings())

	view := mainView(f)
	view.Kind = renderer.ViewReflectionProbe
	if feature.Render(view, f.target) {
		t.Error("reflection probes should not get volumetrics")
	}
	if len(f.device.created) != 0 || len(f.device.blits) != 0 {
		t.Error("a gated view must not touch the device")
	}

	stats := feature.Stats()
	if stats.Frames != 1 || stats.Skipped != 1 || stats.Rendered != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestFeatureSkipsWhenQualityDisables(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	video := quality.DefaultVideoSettings()
	if err := video.SetQuality(0); err != nil {
		t.Fatalf("SetQuality failed: %v", err)
	}
	feature := newTestFeature(t, f, DefaultSettings(), video)

	if feature.Render(mainView(f), f.target) {
		t.Error("the low tier disables volumetrics")
	}
	if feature.Stats().Skipped != 1 {
		t.Errorf("expected one skipped frame, got %+v", feature.Stats())
	}
}

func TestFeatureWithoutVideoSettingsFailsClosed(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	feature := newTestFeature(t, f, DefaultSettings(), nil)

	if feature.Render(mainView(f), f.target) {
		t.Error("missing video settings should skip the effect")
	}
}

func TestFeatureUsesPixelRect(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	settings := DefaultSettings()
	settings.Intensity = 0
	feature := newTestFeature(t, f, settings, quality.DefaultVideoSettings())

	src := f.surface(t, f.target.Color)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			src.Set(x, y, mgl32.Vec4{float32(x) / 16, float32(y) / 8, 0.25, 1})
		}
	}
	before := append([]float32(nil), src.Pix...)

	view := mainView(f)
	view.Kind = renderer.ViewEditorPreview
	view.PixelRect = renderer.Resolution{Width: 8, Height: 4}
	if !feature.Render(view, f.target) {
		t.Fatalf("editor preview should render, stats %+v", feature.Stats())
	}

	composite, work := f.device.created[0], f.device.created[1]
	if composite.Width != 16 || composite.Height != 8 {
		t.Errorf("composite should match the colour target, got %dx%d", composite.Width, composite.Height)
	}
	// High halves the 8x4 pixel rect
	if work.Width != 4 || work.Height != 2 {
		t.Errorf("work targets should follow the pixel rect, got %dx%d", work.Width, work.Height)
	}
	for i, v := range src.Pix {
		if v != before[i] {
			t.Fatalf("zero intensity changed value %d from %f to %f", i, before[i], v)
		}
	}
	assertBalanced(t, f.pool)
}

func TestFeatureRejectsNaNIntensity(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	feature := newTestFeature(t, f, DefaultSettings(), quality.DefaultVideoSettings())

	settings := DefaultSettings()
	settings.Intensity = math32.NaN()
	if err := feature.SetSettings(settings); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for NaN intensity, got %v", err)
	}
	if _, err := NewFeature("nan", settings, quality.DefaultVideoSettings(), f.pool); err == nil {
		t.Error("NewFeature should reject NaN intensity")
	}

	if !feature.Render(mainView(f), f.target) {
		t.Fatalf("previous settings should still render, stats %+v", feature.Stats())
	}
	c := f.surface(t, f.target.Color).At(3, 3)
	if math32.IsNaN(c.X()) || math32.IsNaN(c.Y()) || math32.IsNaN(c.Z()) {
		t.Errorf("output should stay finite, got %v", c)
	}
}

func TestFeatureCountsFaults(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	feature := newTestFeature(t, f, DefaultSettings(), quality.DefaultVideoSettings())

	f.device.failAt = 2
	if feature.Render(mainView(f), f.target) {
		t.Error("a submission fault should skip the frame")
	}
	f.device.failAt = 0
	f.device.panicAt = len(f.device.blits) + 1
	if feature.Render(mainView(f), f.target) {
		t.Error("a device panic should skip the frame")
	}

	stats := feature.Stats()
	if stats.Faults != 2 || stats.Frames != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	assertBalanced(t, f.pool)

	f.device.panicAt = 0
	if !feature.Render(mainView(f), f.target) {
		t.Errorf("the feature should recover on the next frame, stats %+v", feature.Stats())
	}
	if got := f.pool.GetStats().Created; got != 3 {
		t.Errorf("later frames should reuse pooled targets, created %d", got)
	}
}

func TestFeatureConfigureFailureSkips(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())
	feature := newTestFeature(t, f, DefaultSettings(), quality.DefaultVideoSettings())

	view := mainView(f)
	view.Resolution = renderer.Resolution{}
	if feature.Render(view, f.target) {
		t.Error("an empty view should skip the effect")
	}
	if feature.Stats().Skipped != 1 {
		t.Errorf("expected one skipped frame, got %+v", feature.Stats())
	}
}

func TestFeatureSettings(t *testing.T) {
	f := newFixture(t, renderer.DefaultSoftwareDeviceLimits())

	bad := DefaultSettings()
	bad.Intensity = -1
	if _, err := NewFeature("bad", bad, nil, f.pool); err == nil {
		t.Error("negative intensity should be rejected")
	}

	feature := newTestFeature(t, f, DefaultSettings(), quality.DefaultVideoSettings())
	if feature.Event() != renderer.AfterRenderingPostProcessing {
		t.Errorf("default injection point should be AfterRenderingPostProcessing, got %s", feature.Event())
	}

	debug := DefaultSettings()
	debug.Stage = StageRaymarch
	if err := feature.SetSettings(debug); err != nil {
		t.Errorf("switching the debug stage failed: %v", err)
	}
	if feature.Settings().Stage != StageRaymarch {
		t.Error("stage switch was not applied")
	}

	other := DefaultSettings()
	other.Shader = "Hidden/Other"
	if err := feature.SetSettings(other); err == nil {
		t.Error("changing the shader should be rejected")
	}

	moved := DefaultSettings()
	moved.InjectionPoint = renderer.AfterRenderingTransparents
	if err := feature.SetSettings(moved); !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("changing the injection point should fail with ErrConfigInvalid, got %v", err)
	}
	if feature.Event() != renderer.AfterRenderingPostProcessing {
		t.Errorf("injection point must stay put, got %s", feature.Event())
	}
}
