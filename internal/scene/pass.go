package scene

import (
	"Volumetrics/internal/logger"
	"Volumetrics/internal/renderer"
	"embed"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ShaderName is the stage-set the scene registers: pass 0 colour, pass 1 depth
const ShaderName = "Hidden/ProceduralScene"

const glslVersion = "#version 410 core\n"

const (
	PassColor = iota
	PassDepth
)

//go:embed shaders
var shaderFiles embed.FS

// Pass draws the scene into a view before anything else runs
type Pass struct {
	device   renderer.Device
	material *renderer.Material
	event    renderer.RenderPassEvent
}

func NewPass(device renderer.Device) *Pass {
	return &Pass{
		device:   device,
		material: renderer.NewMaterial(ShaderName),
		event:    renderer.BeforeRenderingOpaques,
	}
}

func (p *Pass) Name() string {
	return "Procedural Scene"
}

func (p *Pass) Event() renderer.RenderPassEvent {
	return p.event
}

// Render fills target.Color and target.Depth for view
func (p *Pass) Render(view renderer.View, target renderer.ViewTarget) bool {
	if target.Color == 0 || target.Depth == 0 {
		return false
	}
	cb := renderer.GetCommandBuffer(p.Name())
	defer renderer.ReleaseCommandBuffer(cb)

	cb.Blit(target.Depth, target.Color, p.material, PassColor)
	cb.Blit(target.Color, target.Depth, p.material, PassDepth)
	if err := renderer.ExecuteCommandBuffer(p.device, cb); err != nil {
		logger.Log.Error("Scene pass failed", zap.String("view", view.Name), zap.Error(err))
		return false
	}
	return true
}

// SoftwarePasses traces s on the CPU. Depth is linear distance from the camera.
func SoftwarePasses(s Scene) []renderer.Kernel {
	return []renderer.Kernel{
		PassColor: func(ctx *renderer.KernelContext, x, y int) mgl32.Vec4 {
			ray, ok := cameraRay(ctx, x, y)
			if !ok {
				return s.Sky(mgl32.Vec3{0, 0, -1}).Vec4(1)
			}
			hit, found := s.Trace(ray)
			if !found {
				return s.Sky(ray.Direction).Vec4(1)
			}
			sunDir := mgl32.Vec3{0, -1, 0}
			if d, ok := ctx.Vector(renderer.SunDirection); ok && d.Vec3().Len() > 0 {
				sunDir = d.Vec3().Normalize()
			}
			sunColor := mgl32.Vec3{1, 1, 1}
			if c, ok := ctx.Vector(renderer.SunMoonColor); ok {
				sunColor = c.Vec3()
			}
			return s.Shade(hit, sunDir, sunColor).Vec4(1)
		},
		PassDepth: func(ctx *renderer.KernelContext, x, y int) mgl32.Vec4 {
			d := s.FarDistance
			if ray, ok := cameraRay(ctx, x, y); ok {
				if hit, found := s.Trace(ray); found && hit.Distance < d {
					d = hit.Distance
				}
			}
			return mgl32.Vec4{d, d, d, 1}
		},
	}
}

func cameraRay(ctx *renderer.KernelContext, x, y int) (renderer.Ray, bool) {
	inv, ok := ctx.Globals.Matrix(renderer.InverseViewProjection)
	if !ok {
		return renderer.Ray{}, false
	}
	u, v := ctx.UV(x, y)
	ray, ok := renderer.ClipToRay(inv, u, v)
	if !ok {
		return renderer.Ray{}, false
	}
	if pos, ok := ctx.Vector(renderer.CameraPosition); ok {
		ray.Origin = pos.Vec3()
	}
	return ray, true
}

// RegisterSoftware installs the scene passes on a CPU device
func RegisterSoftware(device *renderer.SoftwareDevice, s Scene) {
	device.RegisterShader(ShaderName, SoftwarePasses(s))
}

// RegisterGL compiles the scene passes on an OpenGL device. The GLSL traces Default().
func RegisterGL(device *renderer.GLDevice) error {
	common, err := shaderFiles.ReadFile("shaders/common.glsl")
	if err != nil {
		return fmt.Errorf("read scene shader library: %w", err)
	}
	var sources []string
	for _, path := range []string{"shaders/color.frag", "shaders/depth.frag"} {
		body, err := shaderFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		sources = append(sources, glslVersion+string(common)+string(body))
	}
	return device.RegisterShader(ShaderName, renderer.FullscreenVertexShaderSource, sources)
}
