package volumetric

import (
	"Volumetrics/internal/logger"
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CommandBufferName labels the volumetric command buffer in logs and errors
const CommandBufferName = "Volumetric Light"

// PassGraphState owns the temporaries of one frame and view
type PassGraphState struct {
	// Target is the size of the view's colour buffer; Composite matches it
	Target    renderer.Resolution
	// Full is the area the camera covers, the base of the low resolution
	Full      renderer.Resolution
	Low       renderer.Resolution
	Composite renderer.TargetID
	WorkA     renderer.TargetID
	WorkB     renderer.TargetID

	pool     *renderer.TargetPool
	held     []renderer.TargetID
	released bool
}

// Release hands every temporary back to the pool exactly once. Later calls are no-ops.
func (s *PassGraphState) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true

	var errs []error
	for _, id := range s.held {
		if err := s.pool.ReleaseTemporary(id); err != nil {
			errs = append(errs, err)
		}
	}
	s.held = nil
	return errors.Join(errs...)
}

// Released reports whether Release already ran
func (s *PassGraphState) Released() bool {
	return s.released
}

func (s *PassGraphState) acquire(desc renderer.TargetDesc) (renderer.TargetID, error) {
	id, err := s.pool.GetTemporary(desc)
	if err != nil {
		return 0, err
	}
	s.held = append(s.held, id)
	return id, nil
}

// PassGraph runs raymarch, bilateral blur, depth downsample and composite over a view's
// colour buffer with one material.
type PassGraph struct {
	pool     *renderer.TargetPool
	material *renderer.Material
}

func NewPassGraph(pool *renderer.TargetPool, material *renderer.Material) *PassGraph {
	return &PassGraph{pool: pool, material: material}
}

// Material returns the stage-set the graph parameterises
func (g *PassGraph) Material() *renderer.Material {
	return g.material
}

// Configure derives the low resolution from the quality tier and acquires the three
// temporaries for a view whose camera covers its whole target. On failure nothing
// stays acquired.
func (g *PassGraph) Configure(full renderer.Resolution, profile quality.VideoSetting) (*PassGraphState, error) {
	return g.ConfigureRect(full, full, profile)
}

// ConfigureRect is Configure for a camera covering only rect of a target sized target.
// The low resolution follows rect; Composite follows target so copying it back over the
// view's colour buffer never resamples.
func (g *PassGraph) ConfigureRect(target, rect renderer.Resolution, profile quality.VideoSetting) (*PassGraphState, error) {
	factor := profile.Volumetric.Downsampling
	if err := factor.Validate(); err != nil {
		return nil, err
	}
	if target.Empty() || rect.Empty() {
		return nil, fmt.Errorf("view resolution %s (rect %s): %w", target, rect, ErrConfigInvalid)
	}
	full := rect

	state := &PassGraphState{
		Target: target,
		Full:   full,
		Low:    full.Divide(int(factor)),
		pool: g.pool,
	}

	descs := []struct {
		id   *renderer.TargetID
		desc renderer.TargetDesc
	}{
		{&state.Composite, renderer.TargetDesc{Width: target.Width, Height: target.Height, Format: renderer.FormatRGBA16F, MSAASamples: 1}},
		{&state.WorkA, renderer.TargetDesc{Width: state.Low.Width, Height: state.Low.Height, Format: renderer.FormatR16F, MSAASamples: 1}},
		{&state.WorkB, renderer.TargetDesc{Width: state.Low.Width, Height: state.Low.Height, Format: renderer.FormatR16F, MSAASamples: 1}},
	}
	for _, d := range descs {
		id, err := state.acquire(d.desc)
		if err != nil {
			if relErr := state.Release(); relErr != nil {
				logger.Log.Error("Failed to release partial volumetric targets", zap.Error(relErr))
			}
			if !errors.Is(err, renderer.ErrAllocation) {
				err = fmt.Errorf("%w: %w", renderer.ErrAllocation, err)
			}
			return nil, fmt.Errorf("configure volumetric targets at %s: %w", state.Low, err)
		}
		*d.id = id
	}

	logger.Log.Debug("Volumetric targets configured",
		zap.Stringer("target", state.Target),
		zap.Stringer("full", state.Full),
		zap.Stringer("low", state.Low),
		zap.Stringer("downsampling", factor))
	return state, nil
}

type stageRecorder func(g *PassGraph, cb *renderer.CommandBuffer, src renderer.ViewTarget, s *PassGraphState)

var stageTable = map[Stage]stageRecorder{
	StageRaymarch: recordRaymarch,
	StageBlur:     recordBlur,
	StageFull:     recordFull,
}

func recordRaymarch(g *PassGraph, cb *renderer.CommandBuffer, src renderer.ViewTarget, s *PassGraphState) {
	cb.Copy(src.Color, s.WorkA)
	g.blit(cb, src, s.WorkA, src.Color, PassRaymarch)
}

func recordBlur(g *PassGraph, cb *renderer.CommandBuffer, src renderer.ViewTarget, s *PassGraphState) {
	g.blit(cb, src, src.Color, s.WorkA, PassRaymarch)
	g.blit(cb, src, s.WorkA, s.WorkB, PassBlurHorizontal)
	g.blit(cb, src, s.WorkB, src.Color, PassBlurVertical)
}

func recordFull(g *PassGraph, cb *renderer.CommandBuffer, src renderer.ViewTarget, s *PassGraphState) {
	g.blit(cb, src, src.Color, s.WorkA, PassRaymarch)
	g.blit(cb, src, s.WorkA, s.WorkB, PassBlurHorizontal)
	g.blit(cb, src, s.WorkB, s.WorkA, PassBlurVertical)

	// composite samples the downsampled depth, so it has to exist first
	g.blit(cb, src, src.Color, s.WorkB, PassDepthDownsample)
	cb.SetGlobalTexture(LowResDepthTexture, s.WorkB)
	cb.SetGlobalTexture(VolumetricTexture, s.WorkA)

	g.blit(cb, src, src.Color, s.Composite, PassComposite)
	cb.Copy(s.Composite, src.Color)
}

func (g *PassGraph) blit(cb *renderer.CommandBuffer, src renderer.ViewTarget, from, to renderer.TargetID, pass int) {
	b := renderer.Blit{Source: from, Dest: to, Material: g.material, Pass: pass}
	if src.Depth != 0 {
		b.Textures = map[string]renderer.TargetID{renderer.CameraDepthTexture: src.Depth}
	}
	cb.BlitWith(b)
}

func (g *PassGraph) pushUniforms(params EffectParameters, profile quality.VideoSetting) {
	m := g.material
	m.SetFloat(ScatteringProperty, params.Scattering)
	m.SetFloat(StepsProperty, profile.Volumetric.Samples)
	m.SetFloat(JitterProperty, params.Jitter)
	m.SetFloat(MaxDistanceProperty, params.MaxDistance)
	m.SetFloat(IntensityProperty, params.Intensity)
	m.SetFloat(GaussSamplesProperty, profile.Volumetric.BlurSamples)
	m.SetFloat(GaussAmountProperty, profile.Volumetric.BlurAmount)
}

// Execute records and submits the stage selected by params.Stage. The state's
// temporaries are released on every path out, including device panics.
func (g *PassGraph) Execute(src renderer.ViewTarget, state *PassGraphState, params EffectParameters, profile quality.VideoSetting) (err error) {
	if state == nil || state.Released() {
		return fmt.Errorf("execute without configured targets: %w", ErrConfigInvalid)
	}

	globals := g.pool.Device().Globals()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", renderer.ErrSubmission, CommandBufferName, r)
		}
		// the published textures point at temporaries that are about to be recycled
		globals.UnsetTexture(LowResDepthTexture)
		globals.UnsetTexture(VolumetricTexture)
		if relErr := state.Release(); relErr != nil {
			logger.Log.Error("Failed to release volumetric targets", zap.Error(relErr))
			if err == nil {
				err = relErr
			}
		}
	}()

	if err := params.Validate(); err != nil {
		return err
	}
	record, ok := stageTable[params.Stage]
	if !ok {
		return fmt.Errorf("stage %s: %w", params.Stage, ErrConfigInvalid)
	}
	if src.Color == 0 {
		return fmt.Errorf("view has no colour target: %w", ErrConfigInvalid)
	}

	g.pushUniforms(params, profile)

	cb := renderer.GetCommandBuffer(CommandBufferName)
	defer renderer.ReleaseCommandBuffer(cb)

	record(g, cb, src, state)
	return renderer.ExecuteCommandBuffer(g.pool.Device(), cb)
}
