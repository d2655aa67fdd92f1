package volumetric

import (
	"Volumetrics/internal/renderer"

	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderName is the stage-set every backend registers the five passes under
const ShaderName = "Hidden/VolumetricLight"

const (
	jitterNoiseScale = 0.37
	minBlurSpread    = 1e-3
	depthEdgeFalloff = 4
)

// SoftwareShaderPasses returns the CPU kernels in pass order. The depth texture they
// read holds linear eye distance in world units.
func SoftwareShaderPasses(seed int64) []renderer.Kernel {
	noise := perlin.NewPerlin(2, 2, 3, seed)
	return []renderer.Kernel{
		PassRaymarch:        raymarchKernel(noise),
		PassBlurHorizontal:  bilateralBlurKernel(1, 0),
		PassBlurVertical:    bilateralBlurKernel(0, 1),
		PassComposite:       compositeKernel,
		PassDepthDownsample: depthDownsampleKernel,
	}
}

// RegisterSoftwareShader installs the volumetric passes on a CPU device
func RegisterSoftwareShader(device *renderer.SoftwareDevice, seed int64) {
	device.RegisterShader(ShaderName, SoftwareShaderPasses(seed))
}

// henyeyGreenstein is the single scattering phase function, g in [-1,1]
func henyeyGreenstein(g, cosTheta float32) float32 {
	g2 := g * g
	denom := 1 + g2 - 2*g*cosTheta
	if denom <= 0 {
		denom = 1e-6
	}
	return (1 - g2) / (4 * math32.Pi * math32.Pow(denom, 1.5))
}

func viewRay(ctx *renderer.KernelContext, u, v float32) mgl32.Vec3 {
	if inv, ok := ctx.Globals.Matrix(renderer.InverseViewProjection); ok {
		if ray, ok := renderer.ClipToRay(inv, u, v); ok {
			return ray.Direction
		}
	}
	return mgl32.Vec3{0, 0, -1}
}

func raymarchKernel(noise *perlin.Perlin) renderer.Kernel {
	return func(ctx *renderer.KernelContext, x, y int) mgl32.Vec4 {
		maxDistance := ctx.Float(MaxDistanceProperty)
		steps := math32.Floor(ctx.Float(StepsProperty))
		if maxDistance <= 0 || steps < 1 {
			return mgl32.Vec4{0, 0, 0, 1}
		}

		u, v := ctx.UV(x, y)
		rayLength := maxDistance
		if depth := ctx.Texture(renderer.CameraDepthTexture); depth != nil {
			rayLength = math32.Min(depth.Sample(u, v).X(), maxDistance)
		}
		if rayLength <= 0 {
			return mgl32.Vec4{0, 0, 0, 1}
		}

		sunDir := mgl32.Vec3{0, -1, 0}
		if d, ok := ctx.Vector(renderer.SunDirection); ok && d.Vec3().Len() > 0 {
			sunDir = d.Vec3().Normalize()
		}
		cosTheta := viewRay(ctx, u, v).Dot(sunDir.Mul(-1))
		phase := henyeyGreenstein(ctx.Float(ScatteringProperty), cosTheta)

		stepLength := rayLength / steps
		n := float32(noise.Noise2D(float64(x)*jitterNoiseScale, float64(y)*jitterNoiseScale))
		offset := math32.Min(math32.Max((n*0.5+0.5)*ctx.Float(JitterProperty), 0), 0.999) * stepLength

		var accum float32
		for t := offset; t < rayLength; t += stepLength {
			accum += math32.Exp(-t/maxDistance) * stepLength
		}
		light := phase * accum / maxDistance
		return mgl32.Vec4{light, light, light, 1}
	}
}

func bilateralBlurKernel(dx, dy int) renderer.Kernel {
	return func(ctx *renderer.KernelContext, x, y int) mgl32.Vec4 {
		u, v := ctx.UV(x, y)
		src := ctx.Source
		sx := int(math32.Floor(u * float32(src.Width)))
		sy := int(math32.Floor(v * float32(src.Height)))

		taps := int(math32.Max(0, math32.Floor(ctx.Float(GaussSamplesProperty))))
		sigma := math32.Max(ctx.Float(GaussAmountProperty), minBlurSpread)
		depth := ctx.Texture(renderer.CameraDepthTexture)

		var centerDepth float32
		if depth != nil {
			centerDepth = depth.Sample(u, v).X()
		}

		var sum, weights float32
		for k := -taps; k <= taps; k++ {
			px, py := sx+k*dx, sy+k*dy
			w := math32.Exp(-float32(k*k) / (2 * sigma * sigma))
			if depth != nil {
				du := (float32(px) + 0.5) / float32(src.Width)
				dv := (float32(py) + 0.5) / float32(src.Height)
				w *= math32.Exp(-math32.Abs(depth.Sample(du, dv).X()-centerDepth) * depthEdgeFalloff)
			}
			sum += src.At(px, py).X() * w
			weights += w
		}
		if weights == 0 {
			return src.At(sx, sy)
		}
		r := sum / weights
		return mgl32.Vec4{r, r, r, 1}
	}
}

// compositeKernel adds the upsampled scattering term to the scene colour. The low
// resolution sample is picked among the 2x2 neighbours by closest depth.
func compositeKernel(ctx *renderer.KernelContext, x, y int) mgl32.Vec4 {
	u, v := ctx.UV(x, y)
	base := ctx.Source.Sample(u, v)

	vol := ctx.Texture(VolumetricTexture)
	if vol == nil {
		return base
	}
	scatter := upsample(ctx, vol, u, v)

	color := mgl32.Vec4{1, 1, 1, 1}
	if c, ok := ctx.Vector(renderer.SunMoonColor); ok {
		color = c
	}
	k := scatter * ctx.Float(IntensityProperty)
	return mgl32.Vec4{
		base.X() + k*color.X(),
		base.Y() + k*color.Y(),
		base.Z() + k*color.Z(),
		base.W(),
	}
}

func upsample(ctx *renderer.KernelContext, vol *renderer.Surface, u, v float32) float32 {
	lowDepth := ctx.Texture(LowResDepthTexture)
	fullDepth := ctx.Texture(renderer.CameraDepthTexture)
	if lowDepth == nil || fullDepth == nil {
		return vol.Sample(u, v).X()
	}

	target := fullDepth.Sample(u, v).X()
	bx := int(math32.Floor(u*float32(vol.Width) - 0.5))
	by := int(math32.Floor(v*float32(vol.Height) - 0.5))
	best, bestDiff := vol.Sample(u, v).X(), math32.Inf(1)
	for j := 0; j <= 1; j++ {
		for i := 0; i <= 1; i++ {
			lu := (float32(bx+i) + 0.5) / float32(vol.Width)
			lv := (float32(by+j) + 0.5) / float32(vol.Height)
			if diff := math32.Abs(lowDepth.Sample(lu, lv).X() - target); diff < bestDiff {
				best, bestDiff = vol.At(bx+i, by+j).X(), diff
			}
		}
	}
	return best
}

// depthDownsampleKernel keeps the nearest depth of the footprint a low resolution
// pixel covers.
func depthDownsampleKernel(ctx *renderer.KernelContext, x, y int) mgl32.Vec4 {
	depth := ctx.Texture(renderer.CameraDepthTexture)
	if depth == nil {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	x0 := x * depth.Width / ctx.Dest.Width
	y0 := y * depth.Height / ctx.Dest.Height
	x1 := max((x+1)*depth.Width/ctx.Dest.Width, x0+1)
	y1 := max((y+1)*depth.Height/ctx.Dest.Height, y0+1)

	nearest := math32.Inf(1)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			nearest = math32.Min(nearest, depth.At(px, py).X())
		}
	}
	return mgl32.Vec4{nearest, nearest, nearest, 1}
}
