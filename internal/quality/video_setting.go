package quality

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrConfigInvalid reports a settings value the renderer cannot use, such as a zero
// downsample factor or a quality index outside the configured tiers.
var ErrConfigInvalid = errors.New("invalid configuration")

// DownSample is the integer divisor applied to both dimensions of the low resolution
// volumetric buffers.
type DownSample int

const (
	DownSampleOff     DownSample = 1
	DownSampleHalf    DownSample = 2
	DownSampleThird   DownSample = 3
	DownSampleQuarter DownSample = 4
)

func (d DownSample) String() string {
	switch d {
	case DownSampleOff:
		return "off"
	case DownSampleHalf:
		return "half"
	case DownSampleThird:
		return "third"
	case DownSampleQuarter:
		return "quarter"
	}
	return fmt.Sprintf("DownSample(%d)", int(d))
}

// Validate fails for anything but 1..4. Zero in particular must never reach a division.
func (d DownSample) Validate() error {
	if d < DownSampleOff || d > DownSampleQuarter {
		return fmt.Errorf("downsample factor %d: %w", int(d), ErrConfigInvalid)
	}
	return nil
}

// VolumetricSettings are the per-tier knobs of the volumetric lighting pass
type VolumetricSettings struct {
	Downsampling DownSample `json:"downsampling" toml:"downsampling"`
	Samples      float32    `json:"samples" toml:"samples"`         // raymarch steps
	BlurAmount   float32    `json:"blurAmount" toml:"blurAmount"`   // gaussian spread
	BlurSamples  float32    `json:"blurSamples" toml:"blurSamples"` // bilateral taps
}

// Validate checks the ranges the pass relies on
func (v VolumetricSettings) Validate() error {
	if err := v.Downsampling.Validate(); err != nil {
		return err
	}
	for _, f := range []float32{v.Samples, v.BlurAmount, v.BlurSamples} {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return fmt.Errorf("sample counts and blur amount must be finite, got %f: %w", f, ErrConfigInvalid)
		}
	}
	if v.Samples < 0 || v.BlurAmount < 0 || v.BlurSamples < 0 {
		return fmt.Errorf("negative sample count or blur amount: %w", ErrConfigInvalid)
	}
	return nil
}

// VideoSetting is one quality tier. It is handed around by value so a frame always sees
// the tier that was active when it started.
type VideoSetting struct {
	Name                     string             `json:"name" toml:"name"`
	EnableVolumetricLighting bool               `json:"enableVolumetricLighting" toml:"enableVolumetricLighting"`
	Volumetric               VolumetricSettings `json:"volumetricSettings" toml:"volumetricSettings"`
}

// Validate checks the volumetric knobs of the tier
func (s VideoSetting) Validate() error {
	if err := s.Volumetric.Validate(); err != nil {
		return fmt.Errorf("video setting %q: %w", s.Name, err)
	}
	return nil
}

// LowVideoSetting turns volumetric lighting off entirely
func LowVideoSetting() VideoSetting {
	return VideoSetting{
		Name:                     "Low",
		EnableVolumetricLighting: false,
		Volumetric: VolumetricSettings{
			Downsampling: DownSampleQuarter,
			Samples:      8,
			BlurAmount:   1,
			BlurSamples:  2,
		},
	}
}

// MediumVideoSetting raymarches at a quarter of the screen
func MediumVideoSetting() VideoSetting {
	return VideoSetting{
		Name:                     "Medium",
		EnableVolumetricLighting: true,
		Volumetric: VolumetricSettings{
			Downsampling: DownSampleQuarter,
			Samples:      16,
			BlurAmount:   2,
			BlurSamples:  4,
		},
	}
}

// HighVideoSetting raymarches at half resolution
func HighVideoSetting() VideoSetting {
	config := MediumVideoSetting()
	config.Name = "High"
	config.Volumetric.Downsampling = DownSampleHalf
	config.Volumetric.Samples = 32
	config.Volumetric.BlurSamples = 6
	return config
}

// UltraVideoSetting raymarches every pixel
func UltraVideoSetting() VideoSetting {
	config := HighVideoSetting()
	config.Name = "Ultra"
	config.Volumetric.Downsampling = DownSampleOff
	config.Volumetric.Samples = 64
	config.Volumetric.BlurAmount = 3
	config.Volumetric.BlurSamples = 8
	return config
}
