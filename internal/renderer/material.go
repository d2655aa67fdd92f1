package renderer

import "sort"

// Material names a shader registered on the device and carries the float uniforms
// its passes read. Values are cached here and bound by the device at draw time.
type Material struct {
	Shader string
	floats map[string]float32
}

// NewMaterial creates a material for the named shader
func NewMaterial(shader string) *Material {
	return &Material{
		Shader: shader,
		floats: make(map[string]float32),
	}
}

// SetFloat sets a float uniform for every pass of the material
func (m *Material) SetFloat(name string, value float32) {
	m.floats[name] = value
}

// GetFloat returns the cached value, if any
func (m *Material) GetFloat(name string) (float32, bool) {
	v, ok := m.floats[name]
	return v, ok
}

// Float returns the cached value or zero
func (m *Material) Float(name string) float32 {
	return m.floats[name]
}

// Names returns the uniform names in sorted order
func (m *Material) Names() []string {
	names := make([]string, 0, len(m.floats))
	for name := range m.floats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear drops every cached uniform
func (m *Material) Clear() {
	m.floats = make(map[string]float32)
}
