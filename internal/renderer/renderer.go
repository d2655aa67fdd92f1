package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrAllocation is returned when a device cannot provide a render target of the
	// requested size or format.
	ErrAllocation = errors.New("render target allocation failed")
	// ErrSubmission is returned when a draw or copy fails after recording, for example
	// because a shader or pass is missing or the device was lost.
	ErrSubmission = errors.New("draw submission failed")
	// ErrUnknownTarget is returned for handles that were never created or already freed.
	ErrUnknownTarget = errors.New("unknown render target")
)

type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA16F
	FormatR16F
	FormatDepth32F
)

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatR16F:
		return "R16F"
	case FormatDepth32F:
		return "Depth32F"
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// Channels is the number of stored components per pixel
func (f TextureFormat) Channels() int {
	switch f {
	case FormatR16F, FormatDepth32F:
		return 1
	}
	return 4
}

// TargetID is a device-side render target handle. Zero means "no target".
type TargetID uint32

type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Divide floors both dimensions. The caller validates factor; zero panics.
func (r Resolution) Divide(factor int) Resolution {
	return Resolution{Width: r.Width / factor, Height: r.Height / factor}
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// TargetDesc describes a render target. It is comparable so pools can key on it.
type TargetDesc struct {
	Width       int
	Height      int
	Format      TextureFormat
	MSAASamples int
	DepthBits   int
	ClearColor  mgl32.Vec4
}

func (d TargetDesc) Resolution() Resolution {
	return Resolution{Width: d.Width, Height: d.Height}
}

// Blit draws a full-screen triangle into Dest, sampling Source as the main texture.
// A nil Material is a plain copy. Dest is always fully overwritten, never blended.
type Blit struct {
	Source   TargetID
	Dest     TargetID
	Material *Material
	Pass     int
	Textures map[string]TargetID
}

// Device is the slice of a GPU backend the post passes need
type Device interface {
	CreateTarget(desc TargetDesc) (TargetID, error)
	DestroyTarget(id TargetID) error
	Clear(id TargetID, color mgl32.Vec4) error
	Blit(b Blit) error
	Globals() *ShaderGlobals
}

// ViewTarget is the colour and depth a view renders into. Passes borrow it; they
// never free it.
type ViewTarget struct {
	Color TargetID
	Depth TargetID
}

type LightType int

const (
	STATIC_LIGHT LightType = iota
	DYNAMIC_LIGHT
)

type Light struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Type      LightType // "static", "dynamic"
	Mode      string    // "directional", "point", "spot"
}

// CreateDirectionalLight creates a directional light (like the sun)
func CreateDirectionalLight(direction mgl32.Vec3, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Direction: direction.Normalize(),
		Color:     color,
		Intensity: intensity,
		Type:      DYNAMIC_LIGHT,
		Mode:      "directional",
	}
}

// CreateSunlight creates a warm daylight sun
func CreateSunlight(direction mgl32.Vec3) *Light {
	return CreateDirectionalLight(direction, mgl32.Vec3{1.0, 0.95, 0.8}, 1.2)
}

// CreateMoonlight creates a dim, cold directional light
func CreateMoonlight(direction mgl32.Vec3) *Light {
	return CreateDirectionalLight(direction, mgl32.Vec3{0.55, 0.62, 0.8}, 0.25)
}

// ColorRGBA returns the light colour with alpha 1. Intensity is not folded in.
func (l *Light) ColorRGBA() mgl32.Vec4 {
	return l.Color.Vec4(1)
}
