// Command volumetrics renders a procedural scene with volumetric sun light, either in
// a window on OpenGL or headless on the CPU.
package main

import (
	"Volumetrics/internal/behaviour"
	"Volumetrics/internal/engine"
	"Volumetrics/internal/logger"
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"Volumetrics/internal/scene"
	"Volumetrics/internal/volumetric"
	"Volumetrics/scripts"
	"flag"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	width, height int
	quality       string
	stage         string
	config        string
	headless      bool
	frames        int
	out           string
	seed          int64
	verbose       bool
	watch         bool
}

func main() {
	var opts options
	flag.IntVar(&opts.width, "width", 1280, "window or image width")
	flag.IntVar(&opts.height, "height", 720, "window or image height")
	flag.StringVar(&opts.quality, "quality", "", "quality tier name or index (default from config)")
	flag.StringVar(&opts.stage, "stage", "", "raymarch, gaussianBlur or full (default from config)")
	flag.StringVar(&opts.config, "config", "", "JSON file with volumetric settings and quality tiers")
	flag.BoolVar(&opts.headless, "headless", false, "render on the CPU and write an image")
	flag.IntVar(&opts.frames, "frames", 1, "frames to render in headless mode")
	flag.StringVar(&opts.out, "out", "volumetrics.bmp", "headless output image")
	flag.Int64Var(&opts.seed, "seed", 1, "jitter noise seed for the CPU shaders")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.BoolVar(&opts.watch, "watch", false, "reload -config when it changes (window mode)")
	flag.Parse()

	level := zapcore.InfoLevel
	if opts.verbose {
		level = zapcore.DebugLevel
	}
	logger.InitWithLevel(level)
	defer logger.Sync()

	if err := run(opts); err != nil {
		logger.Log.Error("volumetrics failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// app is everything the demo wires together, independent of the device
type app struct {
	config  Config
	video   *quality.VideoSettings
	sun     *behaviour.GameObject
	orbit   *scripts.SunOrbitScript
	feature *volumetric.Feature
	pool    *renderer.TargetPool
}

func newApp(opts options) (*app, error) {
	config, err := loadConfig(opts.config)
	if err != nil {
		return nil, err
	}
	if opts.quality != "" {
		if config.Quality, err = parseQuality(opts.quality, config.Tiers); err != nil {
			return nil, err
		}
	}
	if opts.stage != "" {
		if config.Volumetric.Stage, err = volumetric.ParseStage(opts.stage); err != nil {
			return nil, err
		}
	}

	video, err := quality.NewVideoSettings(config.Tiers, config.Quality)
	if err != nil {
		return nil, err
	}
	return &app{config: config, video: video}, nil
}

// populate adds the sun and the passes to eng, rendering through device
func (a *app) populate(eng *engine.Engine, device renderer.Device) error {
	a.sun = behaviour.NewGameObject("Sun")
	a.sun.Light = renderer.CreateSunlight(mgl32.Vec3{0, -1, 0})
	a.orbit = scripts.NewSunOrbitScript()
	a.sun.AddComponent(a.orbit)
	a.sun.AddComponent(behaviour.NewSkyDirectionPublisher(nil, eng.Globals))
	eng.Components.RegisterGameObject(a.sun)

	a.pool = renderer.NewTargetPool(device)
	feature, err := volumetric.NewFeature("Volumetric Light", a.config.Volumetric, a.video, a.pool)
	if err != nil {
		return err
	}
	a.feature = feature

	eng.AddPass(scene.NewPass(device))
	eng.AddPass(feature)

	logger.Log.Info("Scene ready",
		zap.String("quality", a.video.Current().Name),
		zap.Stringer("stage", a.config.Volumetric.Stage),
		zap.Stringer("injection", feature.Event()))
	return nil
}

func run(opts options) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	if opts.headless {
		return a.renderHeadless(opts)
	}

	gopher := engine.NewGopher(int32(opts.width), int32(opts.height))
	if opts.watch && opts.config != "" {
		watcher, err := newConfigWatcher(opts.config)
		if err != nil {
			return err
		}
		defer watcher.Close()
		gopher.SetOnRenderCallback(func(float64) {
			select {
			case config := <-watcher.Updates():
				if err := a.applyConfig(config); err != nil {
					logger.Log.Warn("Reloaded config rejected", zap.Error(err))
				}
			default:
			}
		})
	}
	gopher.SetOnSetup(func(g *engine.Gopher, device *renderer.GLDevice) error {
		if err := scene.RegisterGL(device); err != nil {
			return err
		}
		if err := volumetric.RegisterGLShader(device); err != nil {
			return err
		}
		g.Camera.Position = mgl32.Vec3{0, 8, 55}
		g.Camera.Speed = 20
		g.Camera.InvertMouse = false
		g.GetWindow().SetKeyCallback(a.onKey)
		return a.populate(g.Engine, device)
	})
	err = gopher.Render(100, 100)
	if a.pool != nil {
		a.pool.LogStats()
	}
	return err
}

// onKey: 1-3 pick the debug stage, Q cycles quality, V toggles the effect, P pauses the sun
func (a *app) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.Key1, glfw.Key2, glfw.Key3:
		settings := a.feature.Settings()
		settings.Stage = volumetric.Stage(key - glfw.Key1)
		if err := a.feature.SetSettings(settings); err != nil {
			logger.Log.Warn("Stage switch rejected", zap.Error(err))
			return
		}
		logger.Log.Info("Volumetric stage", zap.Stringer("stage", settings.Stage))
	case glfw.KeyQ:
		next := (a.video.Quality() + 1) % len(a.video.Tiers())
		if err := a.video.SetQuality(next); err == nil {
			logger.Log.Info("Quality", zap.String("tier", a.video.Current().Name))
		}
	case glfw.KeyV:
		a.video.SetVolumetricEnabled(!a.video.Current().EnableVolumetricLighting)
		logger.Log.Info("Volumetric lighting", zap.Bool("enabled", a.video.Current().EnableVolumetricLighting))
	case glfw.KeyP:
		a.orbit.Paused = !a.orbit.Paused
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	}
}
