package volumetric

import (
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrConfigInvalid is the quality package's sentinel, re-exported for callers that
// only import this package.
var ErrConfigInvalid = quality.ErrConfigInvalid

// Shader property names shared by every pass of the volumetric shader
const (
	ScatteringProperty   = "_Scattering"
	StepsProperty        = "_Steps"
	JitterProperty       = "_JitterVolumetric"
	MaxDistanceProperty  = "_MaxDistance"
	IntensityProperty    = "_Intensity"
	GaussSamplesProperty = "_GaussSamples"
	GaussAmountProperty  = "_GaussAmount"

	LowResDepthTexture = "_LowResDepth"
	VolumetricTexture  = "_volumetricTexture"
)

// Pass indices of the volumetric shader
const (
	PassRaymarch = iota
	PassBlurHorizontal
	PassBlurVertical
	PassComposite
	PassDepthDownsample
)

// Stage selects how far the pipeline runs. Raymarch and Blur are debug views.
type Stage int

const (
	StageRaymarch Stage = iota
	StageBlur
	StageFull
)

var stageNames = map[Stage]string{
	StageRaymarch: "raymarch",
	StageBlur:     "gaussianBlur",
	StageFull:     "full",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ParseStage is the inverse of String
func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q: %w", name, ErrConfigInvalid)
}

func (s Stage) MarshalText() ([]byte, error) {
	if _, ok := stageNames[s]; !ok {
		return nil, fmt.Errorf("stage %d: %w", int(s), ErrConfigInvalid)
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	stage, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

// EffectParameters are the per-frame inputs of the pass graph. They are copied at the
// start of a frame and never mutated while it executes.
type EffectParameters struct {
	Scattering  float32
	Intensity   float32
	Jitter      float32
	MaxDistance float32
	Stage       Stage
}

// Validate checks every range the shader passes assume
func (p EffectParameters) Validate() error {
	for _, v := range []float32{p.Scattering, p.Intensity, p.Jitter, p.MaxDistance} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("effect parameters must be finite, got %f: %w", v, ErrConfigInvalid)
		}
	}
	if p.Scattering < -1 || p.Scattering > 1 {
		return fmt.Errorf("scattering %f outside [-1,1]: %w", p.Scattering, ErrConfigInvalid)
	}
	if p.Intensity < 0 || p.Jitter < 0 || p.MaxDistance < 0 {
		return fmt.Errorf("intensity, jitter and max distance must not be negative: %w", ErrConfigInvalid)
	}
	if _, ok := stageNames[p.Stage]; !ok {
		return fmt.Errorf("stage %d: %w", int(p.Stage), ErrConfigInvalid)
	}
	return nil
}

// Settings is the configuration surface of the volumetric light feature
type Settings struct {
	Stage          Stage                    `json:"stage" toml:"stage"`
	Intensity      float32                  `json:"intensity" toml:"intensity"`
	Scattering     float32                  `json:"scattering" toml:"scattering"`
	MaxDistance    float32                  `json:"maxDistance" toml:"maxDistance"`
	Jitter         float32                  `json:"jitter" toml:"jitter"`
	InjectionPoint renderer.RenderPassEvent `json:"renderPassEvent" toml:"renderPassEvent"`
	Shader         string                   `json:"shader" toml:"shader"`
}

// DefaultSettings returns the production configuration
func DefaultSettings() Settings {
	return Settings{
		Stage:          StageFull,
		Intensity:      1,
		Scattering:     0,
		MaxDistance:    100,
		Jitter:         1,
		InjectionPoint: renderer.AfterRenderingPostProcessing,
		Shader:         ShaderName,
	}
}

// Params snapshots the per-frame effect parameters
func (s Settings) Params() EffectParameters {
	return EffectParameters{
		Scattering:  s.Scattering,
		Intensity:   s.Intensity,
		Jitter:      s.Jitter,
		MaxDistance: s.MaxDistance,
		Stage:       s.Stage,
	}
}

func (s Settings) Validate() error {
	if s.Shader == "" {
		return fmt.Errorf("no shader configured: %w", ErrConfigInvalid)
	}
	return s.Params().Validate()
}
