package renderer

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestShaderGlobalsVectors(t *testing.T) {
	g := NewShaderGlobals()

	if _, ok := g.Vector(SunDirection); ok {
		t.Error("Unset vector should not be reported")
	}

	g.SetVector(SunDirection, mgl32.Vec4{0, -1, 0, 0})
	v, ok := g.Vector(SunDirection)
	if !ok || v != (mgl32.Vec4{0, -1, 0, 0}) {
		t.Errorf("Expected (0,-1,0,0), got %v (ok=%v)", v, ok)
	}
}

func TestShaderGlobalsTexturesSnapshot(t *testing.T) {
	g := NewShaderGlobals()
	g.SetTexture("_LowResDepth", 3)

	snapshot := g.Textures()
	snapshot["_LowResDepth"] = 9

	if id, _ := g.Texture("_LowResDepth"); id != 3 {
		t.Errorf("Snapshot should not alias the store, got %d", id)
	}

	g.UnsetTexture("_LowResDepth")
	if _, ok := g.Texture("_LowResDepth"); ok {
		t.Error("UnsetTexture should drop the binding")
	}
}

func TestShaderGlobalsConcurrentWriters(t *testing.T) {
	g := NewShaderGlobals()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.SetVector(SunMoonColor, mgl32.Vec4{float32(i), 0, 0, 1})
			g.Vectors()
		}(i)
	}
	wg.Wait()

	if _, ok := g.Vector(SunMoonColor); !ok {
		t.Error("Colour should be set after concurrent writes")
	}
}
