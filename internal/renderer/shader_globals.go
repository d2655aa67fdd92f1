package renderer

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Well known global shader properties
const (
	SunDirection          = "_SunDirection"
	SunMoonColor          = "_SunMoonColor"
	CameraPosition        = "_WorldSpaceCameraPos"
	ViewProjection        = "_ViewProjection"
	InverseViewProjection = "_InverseViewProjection"
	MainTexture           = "_MainTex"
	CameraDepthTexture    = "_CameraDepthTexture"
)

// ShaderGlobals is renderer-wide uniform state visible to every shader, the
// equivalent of global shader properties. Writers may run outside the render thread.
type ShaderGlobals struct {
	mu       sync.RWMutex
	vectors  map[string]mgl32.Vec4
	matrices map[string]mgl32.Mat4
	textures map[string]TargetID
}

func NewShaderGlobals() *ShaderGlobals {
	return &ShaderGlobals{
		vectors:  make(map[string]mgl32.Vec4),
		matrices: make(map[string]mgl32.Mat4),
		textures: make(map[string]TargetID),
	}
}

// GlobalShaderState is used by publishers that were not handed a device's globals
var GlobalShaderState = NewShaderGlobals()

func (g *ShaderGlobals) SetVector(name string, value mgl32.Vec4) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vectors[name] = value
}

func (g *ShaderGlobals) Vector(name string) (mgl32.Vec4, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vectors[name]
	return v, ok
}

func (g *ShaderGlobals) SetMatrix(name string, value mgl32.Mat4) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.matrices[name] = value
}

func (g *ShaderGlobals) Matrix(name string) (mgl32.Mat4, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.matrices[name]
	return m, ok
}

func (g *ShaderGlobals) SetTexture(name string, id TargetID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.textures[name] = id
}

func (g *ShaderGlobals) Texture(name string) (TargetID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.textures[name]
	return id, ok
}

// Textures returns a snapshot of all global texture bindings
func (g *ShaderGlobals) Textures() map[string]TargetID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]TargetID, len(g.textures))
	for name, id := range g.textures {
		out[name] = id
	}
	return out
}

// Vectors returns a snapshot of all global vectors
func (g *ShaderGlobals) Vectors() map[string]mgl32.Vec4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]mgl32.Vec4, len(g.vectors))
	for name, v := range g.vectors {
		out[name] = v
	}
	return out
}

// Matrices returns a snapshot of all global matrices
func (g *ShaderGlobals) Matrices() map[string]mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]mgl32.Mat4, len(g.matrices))
	for name, m := range g.matrices {
		out[name] = m
	}
	return out
}

// UnsetTexture drops a binding, used when the texture it points at is freed
func (g *ShaderGlobals) UnsetTexture(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.textures, name)
}
