package engine

import (
	"Volumetrics/internal/logger"
	"Volumetrics/internal/renderer"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MainViewName names the window's camera view
const MainViewName = "Main Camera"

// SetupFunc runs once the GL context and device exist, before the first frame
type SetupFunc func(g *Gopher, device *renderer.GLDevice) error

// Gopher hosts an Engine in a glfw window backed by the OpenGL device
type Gopher struct {
	Width             int32
	Height            int32
	Title             string
	Engine            *Engine
	Camera            *renderer.Camera
	EnableCameraInput bool // Disable to keep WASD/mouse for something else

	device           *renderer.GLDevice
	window           *glfw.Window
	target           renderer.ViewTarget
	onSetup          SetupFunc
	onRenderCallback func(deltaTime float64)
	lastX, lastY     float64
	firstMouse       bool
}

// NewGopher creates a window host. Initialise the logger first to see its output.
func NewGopher(width, height int32) *Gopher {
	logger.Log.Info("Volumetrics initializing...")
	return &Gopher{
		Width:             width,
		Height:            height,
		Title:             "Volumetrics",
		Engine:            NewEngine(nil, nil),
		EnableCameraInput: true,
		firstMouse:        true,
	}
}

// SetOnSetup registers the scene setup hook
func (g *Gopher) SetOnSetup(fn SetupFunc) {
	g.onSetup = fn
}

// SetOnRenderCallback sets a callback that will be called each frame before the
// engine renders
func (g *Gopher) SetOnRenderCallback(callback func(deltaTime float64)) {
	g.onRenderCallback = callback
}

// GetWindow returns the GLFW window
func (g *Gopher) GetWindow() *glfw.Window {
	return g.window
}

// Device returns the OpenGL device, nil before Render
func (g *Gopher) Device() *renderer.GLDevice {
	return g.device
}

// Render opens the window at (x, y) and runs until it is closed
func (g *Gopher) Render(x, y int) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(g.Width), int(g.Height), g.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("could not create glfw window: %w", err)
	}
	g.window = window
	g.window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("could not initialize OpenGL: %w", err)
	}
	glfw.SwapInterval(1)
	g.window.SetPos(x, y)

	g.device, err = renderer.NewGLDevice(g.Engine.Globals)
	if err != nil {
		return err
	}
	defer g.device.Cleanup()

	g.Camera = renderer.NewDefaultCamera(g.Width, g.Height)
	if err := g.resize(g.Width, g.Height); err != nil {
		return err
	}

	if g.onSetup != nil {
		if err := g.onSetup(g, g.device); err != nil {
			return fmt.Errorf("scene setup: %w", err)
		}
	}

	g.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	g.window.SetCursorPosCallback(g.mouseCallback)

	return g.RenderLoop()
}

// resize recreates the view buffers at width x height and rebinds the main view
func (g *Gopher) resize(width, height int32) error {
	if g.target.Color != 0 {
		g.device.DestroyTarget(g.target.Color)
		g.device.DestroyTarget(g.target.Depth)
	}

	color, err := g.device.CreateTarget(renderer.TargetDesc{Width: int(width), Height: int(height), Format: renderer.FormatRGBA16F, MSAASamples: 1})
	if err != nil {
		return fmt.Errorf("view colour buffer: %w", err)
	}
	depth, err := g.device.CreateTarget(renderer.TargetDesc{Width: int(width), Height: int(height), Format: renderer.FormatDepth32F, MSAASamples: 1, DepthBits: 32})
	if err != nil {
		g.device.DestroyTarget(color)
		return fmt.Errorf("view depth buffer: %w", err)
	}

	g.Width, g.Height = width, height
	g.target = renderer.ViewTarget{Color: color, Depth: depth}
	g.Camera.SetAspectRatio(float32(width) / float32(height))
	g.Engine.SetView(renderer.View{
		Name:       MainViewName,
		Kind:       renderer.ViewMain,
		Resolution: renderer.Resolution{Width: int(width), Height: int(height)},
		Camera:     g.Camera,
	}, g.target)

	logger.Log.Info("View buffers resized", zap.Int32("width", width), zap.Int32("height", height))
	return nil
}

func (g *Gopher) RenderLoop() error {
	lastTime := glfw.GetTime()

	for !g.window.ShouldClose() {
		currentTime := glfw.GetTime()
		deltaTime := currentTime - lastTime
		lastTime = currentTime

		// minimised windows report 0x0, keep the old buffers until restored
		fbWidth, fbHeight := g.window.GetFramebufferSize()
		if fbWidth > 0 && fbHeight > 0 && (int32(fbWidth) != g.Width || int32(fbHeight) != g.Height) {
			if err := g.resize(int32(fbWidth), int32(fbHeight)); err != nil {
				return err
			}
		}

		if g.EnableCameraInput {
			g.Camera.ProcessKeyboard(g.window, float32(deltaTime))
		}
		if g.onRenderCallback != nil {
			g.onRenderCallback(deltaTime)
		}

		g.Engine.RenderFrame(float32(deltaTime))

		if err := g.device.Present(g.target.Color, g.Width, g.Height); err != nil {
			logger.Log.Error("Present failed", zap.Error(err))
		}
		g.window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func (g *Gopher) GetMousePosition() mgl32.Vec2 {
	x, y := g.window.GetCursorPos()
	return mgl32.Vec2{float32(x), float32(y)}
}

// Mouse callback function
func (g *Gopher) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	// Only look around while the right mouse button is held
	if g.EnableCameraInput && w.GetAttrib(glfw.Focused) == glfw.True && w.GetMouseButton(glfw.MouseButtonRight) == glfw.Press {
		if g.firstMouse {
			g.lastX = xpos
			g.lastY = ypos
			g.firstMouse = false
			return
		}

		xoffset := xpos - g.lastX
		yoffset := g.lastY - ypos // Reversed since y-coordinates go from bottom to top
		g.lastX = xpos
		g.lastY = ypos

		g.Camera.ProcessMouseMovement(float32(xoffset), float32(yoffset), true)
	} else {
		g.firstMouse = true
	}
}
