package engine

import (
	"Volumetrics/internal/behaviour"
	"Volumetrics/internal/logger"
	"Volumetrics/internal/renderer"
	"sort"

	"go.uber.org/zap"
)

// DefaultFixedStep is the FixedUpdate interval in seconds
const DefaultFixedStep = float32(1.0 / 50.0)

// maxFixedStepsPerFrame stops a long hitch from spiralling into catch-up work
const maxFixedStepsPerFrame = 5

// RenderPass is anything the engine schedules per view at an injection point
type RenderPass interface {
	Name() string
	Event() renderer.RenderPassEvent
	// Render reports whether the pass applied anything to target
	Render(view renderer.View, target renderer.ViewTarget) bool
}

// ViewBinding is a view and the buffers it renders into
type ViewBinding struct {
	View   renderer.View
	Target renderer.ViewTarget
}

// FrameStats describes the last frame
type FrameStats struct {
	Frame   uint64
	Views   int
	Passes  int
	Applied int
	Fixed   int
}

// Engine runs one frame at a time: fixed updates, component updates, then every
// registered pass for every view in injection point order.
type Engine struct {
	Components *behaviour.ComponentManager
	Globals    *renderer.ShaderGlobals
	FixedStep  float32

	passes      []RenderPass
	views       []ViewBinding
	accumulator float32
	frame       uint64
	last        FrameStats
}

// NewEngine uses the global component manager and shader state when given nil
func NewEngine(components *behaviour.ComponentManager, globals *renderer.ShaderGlobals) *Engine {
	if components == nil {
		components = behaviour.GlobalComponentManager
	}
	if globals == nil {
		globals = renderer.GlobalShaderState
	}
	return &Engine{
		Components: components,
		Globals:    globals,
		FixedStep:  DefaultFixedStep,
	}
}

// AddPass schedules p. Passes sharing an injection point keep registration order.
func (e *Engine) AddPass(p RenderPass) {
	e.passes = append(e.passes, p)
	sort.SliceStable(e.passes, func(i, j int) bool {
		return e.passes[i].Event() < e.passes[j].Event()
	})
	logger.Log.Info("Render pass added",
		zap.String("pass", p.Name()),
		zap.Stringer("event", p.Event()))
}

// RemovePass unschedules the pass with the given name
func (e *Engine) RemovePass(name string) bool {
	for i, p := range e.passes {
		if p.Name() == name {
			e.passes = append(e.passes[:i], e.passes[i+1:]...)
			return true
		}
	}
	return false
}

// Passes returns the scheduled passes in execution order
func (e *Engine) Passes() []RenderPass {
	return append([]RenderPass(nil), e.passes...)
}

// SetView adds a view, or replaces the view with the same name
func (e *Engine) SetView(view renderer.View, target renderer.ViewTarget) {
	for i := range e.views {
		if e.views[i].View.Name == view.Name {
			e.views[i] = ViewBinding{View: view, Target: target}
			return
		}
	}
	e.views = append(e.views, ViewBinding{View: view, Target: target})
}

func (e *Engine) RemoveView(name string) bool {
	for i := range e.views {
		if e.views[i].View.Name == name {
			e.views = append(e.views[:i], e.views[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) Views() []ViewBinding {
	return append([]ViewBinding(nil), e.views...)
}

// LastFrame returns the stats of the most recent RenderFrame
func (e *Engine) LastFrame() FrameStats {
	return e.last
}

// RenderFrame advances the scene by deltaTime seconds and renders every view
func (e *Engine) RenderFrame(deltaTime float32) FrameStats {
	e.frame++
	stats := FrameStats{Frame: e.frame, Views: len(e.views)}

	if e.FixedStep > 0 {
		e.accumulator += deltaTime
		for e.accumulator >= e.FixedStep && stats.Fixed < maxFixedStepsPerFrame {
			e.Components.FixedUpdateAll()
			e.accumulator -= e.FixedStep
			stats.Fixed++
		}
		if stats.Fixed == maxFixedStepsPerFrame {
			e.accumulator = 0
		}
	}
	e.Components.UpdateAll(deltaTime)

	for _, binding := range e.views {
		e.publishCamera(binding.View)
		for _, pass := range e.passes {
			stats.Passes++
			if pass.Render(binding.View, binding.Target) {
				stats.Applied++
			}
		}
	}

	e.last = stats
	return stats
}

func (e *Engine) publishCamera(view renderer.View) {
	if view.Camera == nil {
		return
	}
	e.Globals.SetMatrix(renderer.ViewProjection, view.Camera.GetViewProjection())
	e.Globals.SetMatrix(renderer.InverseViewProjection, view.Camera.InverseViewProjection())
	e.Globals.SetVector(renderer.CameraPosition, view.Camera.Position.Vec4(1))
}
