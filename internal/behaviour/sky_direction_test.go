package behaviour

import (
	"Volumetrics/internal/renderer"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSkyDirectionPublisherPublishesForward(t *testing.T) {
	globals := renderer.NewShaderGlobals()
	sun := NewGameObject("Sun")
	light := renderer.CreateDirectionalLight(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0.9, 0.8}, 2)
	sun.AddComponent(NewSkyDirectionPublisher(light, globals))

	cm := NewComponentManager()
	cm.RegisterGameObject(sun)

	dir, ok := SunDirection(globals)
	if !ok {
		t.Fatal("Start() should publish the sun direction")
	}
	if dir.Sub(mgl32.Vec3{0, 0, -1}).Len() >= 1e-5 {
		t.Errorf("Expected identity forward (0,0,-1), got %v", dir)
	}

	sun.Transform.Rotate(mgl32.Vec3{1, 0, 0}, mgl32.DegToRad(-90))
	cm.UpdateAll(0.016)

	dir, _ = SunDirection(globals)
	if dir.Sub(mgl32.Vec3{0, -1, 0}).Len() >= 1e-5 {
		t.Errorf("Expected straight down after pitching, got %v", dir)
	}
	if raw, _ := globals.Vector(renderer.SunDirection); raw.W() != 0 {
		t.Errorf("Direction must have w=0, got %v", raw)
	}

	color, ok := globals.Vector(renderer.SunMoonColor)
	if !ok || color != (mgl32.Vec4{1, 0.9, 0.8, 1}) {
		t.Errorf("Expected light colour (1,0.9,0.8,1), got %v", color)
	}
	if light.Direction.Sub(mgl32.Vec3{0, -1, 0}).Len() >= 1e-5 {
		t.Errorf("Light direction should follow the transform, got %v", light.Direction)
	}
}

func TestSkyDirectionPublisherWithoutLight(t *testing.T) {
	globals := renderer.NewShaderGlobals()
	globals.SetVector(renderer.SunMoonColor, mgl32.Vec4{0.2, 0.2, 0.3, 1})

	sun := NewGameObject("Sun")
	sun.AddComponent(NewSkyDirectionPublisher(nil, globals))
	NewComponentManager().RegisterGameObject(sun)

	if _, ok := SunDirection(globals); !ok {
		t.Error("Direction should be published even without a light")
	}
	color, _ := globals.Vector(renderer.SunMoonColor)
	if color != (mgl32.Vec4{0.2, 0.2, 0.3, 1}) {
		t.Errorf("Colour should be left alone without a light, got %v", color)
	}
}

func TestSkyDirectionPublisherAdoptsObjectLight(t *testing.T) {
	globals := renderer.NewShaderGlobals()
	sun := NewGameObject("Sun")
	sun.Light = renderer.CreateSunlight(mgl32.Vec3{0, -1, 0})

	publisher := NewSkyDirectionPublisher(nil, globals)
	sun.AddComponent(publisher)
	if publisher.Light != sun.Light {
		t.Fatal("Awake() should pick up the game object's light")
	}

	NewComponentManager().RegisterGameObject(sun)
	if _, ok := globals.Vector(renderer.SunMoonColor); !ok {
		t.Error("Colour should be published from the adopted light")
	}
}

func TestSkyDirectionPublisherIsRegistered(t *testing.T) {
	if _, ok := CreateScript("SkyDirectionPublisher").(*SkyDirectionPublisher); !ok {
		t.Error("CreateScript should build a SkyDirectionPublisher")
	}
}
