// Package scene draws a small procedural test scene: a ground plane with a ring of
// pillars under an open sky. It fills a view's colour and depth buffers so post passes
// have something to work on without a mesh pipeline.
package scene

import (
	"Volumetrics/internal/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Pillar is a vertical cylinder standing on the ground
type Pillar struct {
	Center mgl32.Vec2 // x, z
	Radius float32
	Height float32
}

// Scene is the analytic geometry both backends trace
type Scene struct {
	GroundHeight float32
	Pillars      []Pillar
	Ground       mgl32.Vec3
	Stone        mgl32.Vec3
	SkyZenith    mgl32.Vec3
	SkyHorizon   mgl32.Vec3
	Ambient      float32
	// FarDistance is written to the depth buffer where nothing is hit
	FarDistance float32
}

// Default is eight pillars on a circle of radius 30. shaders/common.glsl mirrors it.
func Default() Scene {
	s := Scene{
		GroundHeight: 0,
		Ground:       mgl32.Vec3{0.35, 0.33, 0.3},
		Stone:        mgl32.Vec3{0.6, 0.58, 0.55},
		SkyZenith:    mgl32.Vec3{0.18, 0.32, 0.6},
		SkyHorizon:   mgl32.Vec3{0.7, 0.75, 0.8},
		Ambient:      0.15,
		FarDistance:  1000,
	}
	for i := 0; i < 8; i++ {
		angle := float32(i) * 2 * math32.Pi / 8
		s.Pillars = append(s.Pillars, Pillar{
			Center: mgl32.Vec2{30 * math32.Cos(angle), 30 * math32.Sin(angle)},
			Radius: 2,
			Height: 25,
		})
	}
	return s
}

// Hit is the result of tracing one ray
type Hit struct {
	Distance float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Albedo   mgl32.Vec3
}

// Trace returns the nearest surface along ray
func (s Scene) Trace(ray renderer.Ray) (Hit, bool) {
	best := Hit{Distance: math32.Inf(1)}
	found := false

	if ok, t, p := renderer.RayIntersectPlane(ray, s.GroundHeight); ok && ray.Origin.Y() > s.GroundHeight {
		best = Hit{Distance: t, Point: p, Normal: mgl32.Vec3{0, 1, 0}, Albedo: s.Ground}
		found = true
	}
	for _, pillar := range s.Pillars {
		base := mgl32.Vec3{pillar.Center.X(), s.GroundHeight, pillar.Center.Y()}
		ok, t, p := renderer.RayIntersectCylinder(ray, base, pillar.Radius, pillar.Height)
		if !ok || t >= best.Distance {
			continue
		}
		normal := mgl32.Vec3{p.X() - base.X(), 0, p.Z() - base.Z()}.Normalize()
		best = Hit{Distance: t, Point: p, Normal: normal, Albedo: s.Stone}
		found = true
	}
	return best, found
}

// Sky is the background colour seen along dir
func (s Scene) Sky(dir mgl32.Vec3) mgl32.Vec3 {
	k := math32.Max(dir.Y(), 0)
	return s.SkyHorizon.Mul(1 - k).Add(s.SkyZenith.Mul(k))
}

// Shade lights a hit with the sun. Pillars shadow the ground.
func (s Scene) Shade(hit Hit, sunDir mgl32.Vec3, sunColor mgl32.Vec3) mgl32.Vec3 {
	toSun := sunDir.Mul(-1)
	diffuse := math32.Max(hit.Normal.Dot(toSun), 0)
	if diffuse > 0 {
		shadowRay := renderer.Ray{Origin: hit.Point.Add(hit.Normal.Mul(1e-3)), Direction: toSun}
		if _, blocked := s.Trace(shadowRay); blocked {
			diffuse = 0
		}
	}
	light := sunColor.Mul(diffuse).Add(mgl32.Vec3{s.Ambient, s.Ambient, s.Ambient})
	return mgl32.Vec3{hit.Albedo.X() * light.X(), hit.Albedo.Y() * light.Y(), hit.Albedo.Z() * light.Z()}
}
