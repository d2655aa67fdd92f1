package behaviour

import (
	"Volumetrics/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// SkyDirectionPublisher feeds the direction and colour of the sun it is attached to
// into the shader globals, every frame.
type SkyDirectionPublisher struct {
	BaseComponent
	// Light supplies the colour. When nil the colour is left as last published.
	Light *renderer.Light
	// Globals defaults to renderer.GlobalShaderState
	Globals *renderer.ShaderGlobals
}

func init() {
	RegisterScript("SkyDirectionPublisher", func() Component {
		return &SkyDirectionPublisher{}
	})
}

func NewSkyDirectionPublisher(light *renderer.Light, globals *renderer.ShaderGlobals) *SkyDirectionPublisher {
	return &SkyDirectionPublisher{Light: light, Globals: globals}
}

// Awake adopts the light of the game object when none was given
func (s *SkyDirectionPublisher) Awake() {
	if s.Light == nil && s.GetGameObject() != nil {
		s.Light = s.GetGameObject().Light
	}
}

func (s *SkyDirectionPublisher) Start() {
	s.Publish()
}

func (s *SkyDirectionPublisher) Update() {
	s.Publish()
}

// Publish writes _SunDirection (forward, w=0) and _SunMoonColor
func (s *SkyDirectionPublisher) Publish() {
	obj := s.GetGameObject()
	if obj == nil || obj.Transform == nil {
		return
	}
	globals := s.Globals
	if globals == nil {
		globals = renderer.GlobalShaderState
	}

	forward := obj.Transform.Forward()
	globals.SetVector(renderer.SunDirection, forward.Vec4(0))
	if s.Light != nil {
		s.Light.Direction = forward
		globals.SetVector(renderer.SunMoonColor, s.Light.ColorRGBA())
	}
}

// SunDirection reads back the published direction
func SunDirection(globals *renderer.ShaderGlobals) (mgl32.Vec3, bool) {
	v, ok := globals.Vector(renderer.SunDirection)
	return v.Vec3(), ok
}
