package renderer

import (
	"Volumetrics/internal/logger"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	vertexSource   string
	fragmentSource string
	program        uint32
	isCompiled     bool
	locations      map[string]int32
}

// NewShader pairs a vertex and fragment source. Sources are null terminated here.
func NewShader(vertexSource, fragmentSource string) *Shader {
	return &Shader{
		vertexSource:   terminate(vertexSource),
		fragmentSource: terminate(fragmentSource),
		locations:      make(map[string]int32),
	}
}

func terminate(source string) string {
	if strings.HasSuffix(source, "\x00") {
		return source
	}
	return source + "\x00"
}

// Compile builds the program. It needs a current GL context.
func (shader *Shader) Compile() error {
	if shader.isCompiled {
		return nil
	}
	vertexShader, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	fragmentShader, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return err
	}
	program, err := GenShaderProgram(vertexShader, fragmentShader)
	if err != nil {
		return err
	}
	shader.program = program
	shader.isCompiled = true
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

func (shader *Shader) Delete() {
	if shader.isCompiled {
		gl.DeleteProgram(shader.program)
		shader.isCompiled = false
	}
}

// location returns the cached uniform location or fetches and caches it
func (shader *Shader) location(name string) int32 {
	if loc, exists := shader.locations[name]; exists {
		return loc
	}
	loc := gl.GetUniformLocation(shader.program, gl.Str(name+"\x00"))
	shader.locations[name] = loc
	return loc
}

func (shader *Shader) SetFloat(name string, value float32) {
	if loc := shader.location(name); loc != -1 {
		gl.Uniform1f(loc, value)
	}
}

func (shader *Shader) SetInt(name string, value int32) {
	if loc := shader.location(name); loc != -1 {
		gl.Uniform1i(loc, value)
	}
}

func (shader *Shader) SetVec4(name string, value mgl32.Vec4) {
	if loc := shader.location(name); loc != -1 {
		gl.Uniform4f(loc, value.X(), value.Y(), value.Z(), value.W())
	}
}

func (shader *Shader) SetMat4(name string, value mgl32.Mat4) {
	if loc := shader.location(name); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &value[0])
	}
}

func GenShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.Uint32("shader type:", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("compile shader type %d: %s", shaderType, log)
	}
	return shader, nil
}

func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("link program: %s", log)
	}
	return program, nil
}

// FullscreenVertexShaderSource draws one oversized triangle from gl_VertexID, no buffers
var FullscreenVertexShaderSource = `#version 410 core

out vec2 uv;

void main() {
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
    uv = pos;
    gl_Position = vec4(pos * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

var copyFragmentShaderSource = `#version 410 core

in vec2 uv;
uniform sampler2D _MainTex;

out vec4 FragColor;

void main() {
    FragColor = texture(_MainTex, uv);
}
` + "\x00"
