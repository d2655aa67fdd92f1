package main

import (
	"Volumetrics/internal/engine"
	"Volumetrics/internal/logger"
	"Volumetrics/internal/renderer"
	"Volumetrics/internal/scene"
	"Volumetrics/internal/volumetric"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

const headlessFrameTime = float32(1.0 / 30.0)

func (a *app) renderHeadless(opts options) error {
	globals := renderer.NewShaderGlobals()
	device := renderer.NewSoftwareDevice(renderer.DefaultSoftwareDeviceLimits(), globals)
	scene.RegisterSoftware(device, scene.Default())
	volumetric.RegisterSoftwareShader(device, opts.seed)

	eng := engine.NewEngine(nil, globals)
	if err := a.populate(eng, device); err != nil {
		return err
	}

	full := renderer.Resolution{Width: opts.width, Height: opts.height}
	colorID, err := device.CreateTarget(renderer.TargetDesc{Width: full.Width, Height: full.Height, Format: renderer.FormatRGBA16F, MSAASamples: 1})
	if err != nil {
		return err
	}
	depth, err := device.CreateTarget(renderer.TargetDesc{Width: full.Width, Height: full.Height, Format: renderer.FormatDepth32F, MSAASamples: 1})
	if err != nil {
		return err
	}

	camera := renderer.NewDefaultCamera(int32(full.Width), int32(full.Height))
	camera.Position = mgl32.Vec3{0, 8, 55}
	camera.SetFar(1000)
	eng.SetView(renderer.View{Name: engine.MainViewName, Kind: renderer.ViewMain, Resolution: full, Camera: camera},
		renderer.ViewTarget{Color: colorID, Depth: depth})

	for i := 0; i < opts.frames; i++ {
		stats := eng.RenderFrame(headlessFrameTime)
		logger.Log.Debug("Frame rendered", zap.Uint64("frame", stats.Frame), zap.Int("applied", stats.Applied))
	}
	logger.Log.Info("Headless render done",
		zap.Int("frames", opts.frames),
		zap.Any("volumetric", a.feature.Stats()))
	a.pool.LogStats()

	surface, _ := device.Surface(colorID)
	return writeBMP(opts.out, surface)
}

// writeBMP stores s with a plain clamp to 8 bits; rows are flipped so v=0 is the bottom
func writeBMP(path string, s *renderer.Surface) error {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := s.At(x, s.Height-1-y)
			img.SetRGBA(x, y, color.RGBA{R: to8(c.X()), G: to8(c.Y()), B: to8(c.Z()), A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	logger.Log.Info("Image written", zap.String("path", path))
	return f.Close()
}

func to8(v float32) uint8 {
	return uint8(math32.Floor(mgl32.Clamp(v, 0, 1)*255 + 0.5))
}
