package behaviour

import (
	"testing"
)

func TestComponentManagerRegister(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test")

	cm.RegisterGameObject(obj)

	all := cm.GetAllGameObjects()
	if len(all) != 1 {
		t.Errorf("Expected 1 registered object, got %d", len(all))
	}
}

func TestComponentManagerUnregister(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test")

	cm.RegisterGameObject(obj)
	cm.UnregisterGameObject(obj)

	all := cm.GetAllGameObjects()
	if len(all) != 0 {
		t.Errorf("Expected 0 objects after unregister, got %d", len(all))
	}
}

func TestComponentManagerUpdateAll(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test")
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.UpdateAll(0.016)

	if !comp.updateCalled {
		t.Error("Update() was not called on component")
	}
}

func TestComponentManagerFixedUpdateAll(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test")
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.FixedUpdateAll()

	if !comp.fixedCalled {
		t.Error("FixedUpdate() was not called on component")
	}
}

func TestComponentManagerInactiveObject(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test")
	obj.Active = false
	comp := &MockComponent{}
	obj.AddComponent(comp)
	cm.RegisterGameObject(obj)

	cm.UpdateAll(0.016)

	if comp.updateCalled {
		t.Error("Update() should not be called on inactive object")
	}
}

func TestComponentManagerFindGameObject(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("FindMe")
	cm.RegisterGameObject(obj)

	found := cm.FindGameObject("FindMe")

	if found == nil {
		t.Error("FindGameObject should find registered object")
	}
	if found != obj {
		t.Error("FindGameObject returned wrong object")
	}
}

func TestComponentManagerFindGameObjectNotFound(t *testing.T) {
	cm := NewComponentManager()

	found := cm.FindGameObject("NotHere")

	if found != nil {
		t.Error("FindGameObject should return nil for non-existent object")
	}
}

func TestComponentManagerClear(t *testing.T) {
	cm := NewComponentManager()
	cm.RegisterGameObject(NewGameObject("A"))
	cm.RegisterGameObject(NewGameObject("B"))

	cm.Clear()

	all := cm.GetAllGameObjects()
	if len(all) != 0 {
		t.Errorf("Clear should remove all objects, got %d", len(all))
	}
}

func TestComponentManagerStartsLateComponents(t *testing.T) {
	cm := NewComponentManager()
	obj := NewGameObject("Test")
	cm.RegisterGameObject(obj)

	comp := &MockComponent{}
	obj.AddComponent(comp)
	if comp.startCalled {
		t.Error("Start() should wait for the next frame")
	}

	cm.UpdateAll(0.016)
	if !comp.startCalled || !comp.updateCalled {
		t.Error("a component added after registration should start and update on the next frame")
	}
}

func TestComponentManagerAdvancesTime(t *testing.T) {
	cm := NewComponentManager()
	before := Time

	cm.UpdateAll(0.5)
	cm.UpdateAll(0.25)

	if Time.DeltaTime != 0.25 {
		t.Errorf("Expected delta 0.25, got %f", Time.DeltaTime)
	}
	if Time.Elapsed-before.Elapsed != 0.75 {
		t.Errorf("Expected 0.75s elapsed, got %f", Time.Elapsed-before.Elapsed)
	}
	if Time.Frame-before.Frame != 2 {
		t.Errorf("Expected 2 frames, got %d", Time.Frame-before.Frame)
	}
}
