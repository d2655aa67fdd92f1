package scripts

import (
	"Volumetrics/internal/behaviour"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SunOrbitScript swings its game object around Axis once per DayLength seconds and
// tints the attached light from DayColor to NightColor as it sets.
type SunOrbitScript struct {
	behaviour.BaseComponent
	DayLength  float32 // seconds per full orbit
	Axis       mgl32.Vec3
	Angle      float32 // radians, 0 points the sun at the horizon
	DayColor   mgl32.Vec3
	NightColor mgl32.Vec3
	Paused     bool
}

func init() {
	behaviour.RegisterScript("SunOrbitScript", func() behaviour.Component {
		return NewSunOrbitScript()
	})
}

func NewSunOrbitScript() *SunOrbitScript {
	return &SunOrbitScript{
		DayLength:  120,
		Axis:       mgl32.Vec3{1, 0, 0.3}.Normalize(),
		Angle:      -math32.Pi / 4,
		DayColor:   mgl32.Vec3{1.0, 0.95, 0.8},
		NightColor: mgl32.Vec3{0.2, 0.25, 0.4},
	}
}

func (s *SunOrbitScript) Start() {
	s.apply()
}

func (s *SunOrbitScript) Update() {
	if s.Paused || s.DayLength <= 0 {
		return
	}
	s.Angle = math32.Mod(s.Angle-behaviour.Time.DeltaTime*2*math32.Pi/s.DayLength, 2*math32.Pi)
	s.apply()
}

// Daylight is 1 with the sun well above the horizon and 0 below it
func (s *SunOrbitScript) Daylight() float32 {
	obj := s.GetGameObject()
	if obj == nil {
		return 0
	}
	return mgl32.Clamp(-obj.Transform.Forward().Y()*4, 0, 1)
}

func (s *SunOrbitScript) apply() {
	obj := s.GetGameObject()
	if obj == nil {
		return
	}
	obj.Transform.SetRotation(mgl32.QuatRotate(s.Angle, s.Axis))
	if obj.Light != nil {
		day := s.Daylight()
		obj.Light.Color = s.NightColor.Mul(1 - day).Add(s.DayColor.Mul(day))
	}
}
