package volumetric

import (
	"Volumetrics/internal/quality"
	"Volumetrics/internal/renderer"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type blitRecord struct {
	Source   renderer.TargetID
	Dest     renderer.TargetID
	Pass     int
	Material bool
}

// recordingDevice runs on the software backend and remembers what it was asked to do
type recordingDevice struct {
	*renderer.SoftwareDevice
	blits   []blitRecord
	created []renderer.TargetDesc
	failAt  int
	panicAt int
	onBlit  func(renderer.Blit)
}

func (d *recordingDevice) CreateTarget(desc renderer.TargetDesc) (renderer.TargetID, error) {
	d.created = append(d.created, desc)
	return d.SoftwareDevice.CreateTarget(desc)
}

func (d *recordingDevice) Blit(b renderer.Blit) error {
	d.blits = append(d.blits, blitRecord{Source: b.Source, Dest: b.Dest, Pass: b.Pass, Material: b.Material != nil})
	n := len(d.blits)
	if d.onBlit != nil {
		d.onBlit(b)
	}
	if n == d.panicAt {
		panic("device lost")
	}
	if n == d.failAt {
		return errors.New("device lost")
	}
	return d.SoftwareDevice.Blit(b)
}

type fixture struct {
	device *recordingDevice
	pool   *renderer.TargetPool
	graph  *PassGraph
	target renderer.ViewTarget
	full   renderer.Resolution
}

func newFixture(t *testing.T, limits renderer.SoftwareDeviceLimits) *fixture {
	t.Helper()
	dev := &recordingDevice{SoftwareDevice: renderer.NewSoftwareDevice(limits, nil)}
	RegisterSoftwareShader(dev.SoftwareDevice, 7)

	full := renderer.Resolution{Width: 16, Height: 8}
	color, err := dev.SoftwareDevice.CreateTarget(renderer.TargetDesc{Width: full.Width, Height: full.Height, Format: renderer.FormatRGBA16F})
	if err != nil {
		t.Fatalf("failed to create colour target: %v", err)
	}
	depth, err := dev.SoftwareDevice.CreateTarget(renderer.TargetDesc{Width: full.Width, Height: full.Height, Format: renderer.FormatDepth32F})
	if err != nil {
		t.Fatalf("failed to create depth target: %v", err)
	}
	dev.Clear(color, mgl32.Vec4{0.5, 0.5, 0.5, 1})
	dev.Clear(depth, mgl32.Vec4{10, 10, 10, 1})

	pool := renderer.NewTargetPool(dev)
	return &fixture{
		device: dev,
		pool:   pool,
		graph:  NewPassGraph(pool, renderer.NewMaterial(ShaderName)),
		target: renderer.ViewTarget{Color: color, Depth: depth},
		full:   full,
	}
}

func (f *fixture) surface(t *testing.T, id renderer.TargetID) *renderer.Surface {
	t.Helper()
	s, ok := f.device.Surface(id)
	if !ok {
		t.Fatalf("target %d does not exist", id)
	}
	return s
}

func assertBalanced(t *testing.T, pool *renderer.TargetPool) {
	t.Helper()
	stats := pool.GetStats()
	if stats.Active != 0 {
		t.Errorf("expected no active temporaries, got %d", stats.Active)
	}
	if stats.Acquired != stats.Released {
		t.Errorf("acquired %d temporaries but released %d", stats.Acquired, stats.Released)
	}
}

func enabledProfile() quality.VideoSetting {
	return quality.HighVideoSetting()
}
