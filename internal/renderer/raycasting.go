package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point t units along the ray
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayIntersectPlane intersects the horizontal plane y = height from above or below
func RayIntersectPlane(ray Ray, height float32) (bool, float32, mgl32.Vec3) {
	if math32.Abs(ray.Direction.Y()) < 1e-6 {
		return false, 0, mgl32.Vec3{}
	}
	t := (height - ray.Origin.Y()) / ray.Direction.Y()
	if t <= 0 {
		return false, 0, mgl32.Vec3{}
	}
	return true, t, ray.At(t)
}

// RayIntersectCylinder intersects the side of a vertical cylinder standing on base
// and rising height units. Caps are not hit.
func RayIntersectCylinder(ray Ray, base mgl32.Vec3, radius, height float32) (bool, float32, mgl32.Vec3) {
	ox, oz := ray.Origin.X()-base.X(), ray.Origin.Z()-base.Z()
	dx, dz := ray.Direction.X(), ray.Direction.Z()

	a := dx*dx + dz*dz
	if a < 1e-12 {
		return false, 0, mgl32.Vec3{}
	}
	b := 2 * (ox*dx + oz*dz)
	c := ox*ox + oz*oz - radius*radius

	t, ok := nearestRoot(a, b, c)
	if !ok {
		return false, 0, mgl32.Vec3{}
	}
	p := ray.At(t)
	if p.Y() < base.Y() || p.Y() > base.Y()+height {
		return false, 0, mgl32.Vec3{}
	}
	return true, t, p
}

// nearestRoot returns the smallest positive root of a*t^2 + b*t + c
func nearestRoot(a, b, c float32) (float32, bool) {
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtDisc := math32.Sqrt(discriminant)
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	switch {
	case t1 > 0:
		return t1, true
	case t2 > 0:
		return t2, true
	}
	return 0, false
}

// ClipToRay rebuilds the world space ray through normalized screen coordinates (u, v)
// in [0,1] from an inverse view projection matrix. v = 0 is the bottom row.
func ClipToRay(inverseViewProjection mgl32.Mat4, u, v float32) (Ray, bool) {
	x, y := u*2-1, v*2-1
	near := inverseViewProjection.Mul4x1(mgl32.Vec4{x, y, -1, 1})
	far := inverseViewProjection.Mul4x1(mgl32.Vec4{x, y, 1, 1})
	if near.W() == 0 || far.W() == 0 {
		return Ray{}, false
	}
	origin := near.Vec3().Mul(1 / near.W())
	dir := far.Vec3().Mul(1 / far.W()).Sub(origin)
	if dir.Len() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: origin, Direction: dir.Normalize()}, true
}

// ScreenToRay converts a window position in pixels to a world space ray
func ScreenToRay(camera *Camera, screenX, screenY float32, windowWidth, windowHeight int) (Ray, bool) {
	u := screenX / float32(windowWidth)
	v := 1 - screenY/float32(windowHeight)
	ray, ok := ClipToRay(camera.InverseViewProjection(), u, v)
	if ok {
		ray.Origin = camera.Position
	}
	return ray, ok
}
