package renderer

import (
	"Volumetrics/internal/logger"
	"fmt"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type glTarget struct {
	fbo     uint32
	texture uint32
	desc    TargetDesc
}

type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

var glFormats = map[TextureFormat]glFormat{
	FormatRGBA8:    {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	FormatRGBA16F:  {gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT},
	FormatR16F:     {gl.R16F, gl.RED, gl.HALF_FLOAT},
	FormatDepth32F: {gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT},
}

// GLDevice implements Device on an OpenGL 4.1 core context. Every method must run on
// the thread that owns the context.
type GLDevice struct {
	targets        map[TargetID]*glTarget
	nextID         TargetID
	shaders        map[string][]*Shader
	copyShader     *Shader
	vao            uint32
	maxTextureSize int32
	globals        *ShaderGlobals
}

// NewGLDevice wraps the current context. gl.Init must already have succeeded.
func NewGLDevice(globals *ShaderGlobals) (*GLDevice, error) {
	if globals == nil {
		globals = NewShaderGlobals()
	}
	dev := &GLDevice{
		targets: make(map[TargetID]*glTarget),
		shaders: make(map[string][]*Shader),
		globals: globals,
	}
	var cleanup Unwind
	defer cleanup.Unwind()

	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &dev.maxTextureSize)
	gl.GenVertexArrays(1, &dev.vao)
	cleanup.Add(func() { gl.DeleteVertexArrays(1, &dev.vao) })

	dev.copyShader = NewShader(FullscreenVertexShaderSource, copyFragmentShaderSource)
	if err := dev.copyShader.Compile(); err != nil {
		return nil, fmt.Errorf("copy shader: %w", err)
	}
	cleanup.Discard()

	logger.Log.Info("OpenGL device initialized",
		zap.Int32("maxTextureSize", dev.maxTextureSize),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return dev, nil
}

func (d *GLDevice) Globals() *ShaderGlobals {
	return d.globals
}

// RegisterShader compiles one program per pass. An empty vertex source uses the
// full-screen triangle.
func (d *GLDevice) RegisterShader(name, vertexSource string, fragmentSources []string) error {
	if vertexSource == "" {
		vertexSource = FullscreenVertexShaderSource
	}
	var cleanup Unwind
	defer cleanup.Unwind()

	passes := make([]*Shader, 0, len(fragmentSources))
	for i, fragment := range fragmentSources {
		shader := NewShader(vertexSource, fragment)
		if err := shader.Compile(); err != nil {
			return fmt.Errorf("shader %q pass %d: %w", name, i, err)
		}
		cleanup.Add(shader.Delete)
		passes = append(passes, shader)
	}
	cleanup.Discard()
	if old, ok := d.shaders[name]; ok {
		for _, shader := range old {
			shader.Delete()
		}
	}
	d.shaders[name] = passes
	logger.Log.Info("Shader registered", zap.String("shader", name), zap.Int("passes", len(passes)))
	return nil
}

func (d *GLDevice) CreateTarget(desc TargetDesc) (TargetID, error) {
	format, ok := glFormats[desc.Format]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported format %s", ErrAllocation, desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		int32(desc.Width) > d.maxTextureSize || int32(desc.Height) > d.maxTextureSize {
		return 0, fmt.Errorf("%w: size %dx%d outside 1..%d", ErrAllocation, desc.Width, desc.Height, d.maxTextureSize)
	}
	// post intermediates are resolved once at the end, never per pass
	if desc.MSAASamples > 1 {
		return 0, fmt.Errorf("%w: multisampled targets are not supported", ErrAllocation)
	}

	t := &glTarget{desc: desc}
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, format.internal, int32(desc.Width), int32(desc.Height), 0, format.format, format.xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	if desc.Format == FormatDepth32F {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.texture, 0)
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	} else {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE || gl.GetError() != gl.NO_ERROR {
		gl.DeleteFramebuffers(1, &t.fbo)
		gl.DeleteTextures(1, &t.texture)
		return 0, fmt.Errorf("%w: framebuffer incomplete (status 0x%x) for %s %dx%d", ErrAllocation, status, desc.Format, desc.Width, desc.Height)
	}

	d.nextID++
	d.targets[d.nextID] = t
	return d.nextID, nil
}

func (d *GLDevice) DestroyTarget(id TargetID) error {
	t, ok := d.targets[id]
	if !ok {
		return fmt.Errorf("destroy target %d: %w", id, ErrUnknownTarget)
	}
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.texture)
	delete(d.targets, id)
	return nil
}

func (d *GLDevice) Clear(id TargetID, color mgl32.Vec4) error {
	t, ok := d.targets[id]
	if !ok {
		return fmt.Errorf("clear target %d: %w", id, ErrUnknownTarget)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.desc.Width), int32(t.desc.Height))
	if t.desc.Format == FormatDepth32F {
		gl.DepthMask(true)
		gl.ClearDepth(float64(color.X()))
		gl.Clear(gl.DEPTH_BUFFER_BIT)
	} else {
		gl.ClearColor(color.X(), color.Y(), color.Z(), color.W())
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (d *GLDevice) Blit(b Blit) error {
	_, ok := d.targets[b.Source]
	if !ok {
		return fmt.Errorf("blit source %d: %w", b.Source, ErrUnknownTarget)
	}
	dst, ok := d.targets[b.Dest]
	if !ok {
		return fmt.Errorf("blit dest %d: %w", b.Dest, ErrUnknownTarget)
	}
	if b.Source == b.Dest {
		return fmt.Errorf("%w: target %d cannot be sampled while bound for drawing", ErrSubmission, b.Source)
	}
	depthOnly := dst.desc.Format == FormatDepth32F
	if depthOnly && b.Material == nil {
		return fmt.Errorf("%w: depth target %d needs a shader writing gl_FragDepth", ErrSubmission, b.Dest)
	}

	shader := d.copyShader
	if b.Material != nil {
		passes, ok := d.shaders[b.Material.Shader]
		if !ok {
			return fmt.Errorf("%w: shader %q not registered", ErrSubmission, b.Material.Shader)
		}
		if b.Pass < 0 || b.Pass >= len(passes) {
			return fmt.Errorf("%w: shader %q has no pass %d", ErrSubmission, b.Material.Shader, b.Pass)
		}
		shader = passes[b.Pass]
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, dst.fbo)
	gl.Viewport(0, 0, int32(dst.desc.Width), int32(dst.desc.Height))
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
	if depthOnly {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.ALWAYS)
		gl.DepthMask(true)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	shader.Use()

	// global bindings first so per blit bindings win on name clashes
	textures := d.globals.Textures()
	for name, id := range b.Textures {
		textures[name] = id
	}
	textures[MainTexture] = b.Source
	names := make([]string, 0, len(textures))
	for name := range textures {
		if name != MainTexture {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{MainTexture}, names...)

	for unit, name := range names {
		t, ok := d.targets[textures[name]]
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, t.texture)
		shader.SetInt(name, int32(unit))
		shader.SetVec4(name+"_TexelSize", mgl32.Vec4{
			1 / float32(t.desc.Width), 1 / float32(t.desc.Height),
			float32(t.desc.Width), float32(t.desc.Height),
		})
	}

	for name, value := range d.globals.Vectors() {
		shader.SetVec4(name, value)
	}
	for name, value := range d.globals.Matrices() {
		shader.SetMat4(name, value)
	}
	if b.Material != nil {
		for _, name := range b.Material.Names() {
			shader.SetFloat(name, b.Material.Float(name))
		}
	}

	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%w: gl error 0x%x", ErrSubmission, code)
	}
	return nil
}

// Present copies a colour target to the window framebuffer
func (d *GLDevice) Present(id TargetID, width, height int32) error {
	t, ok := d.targets[id]
	if !ok {
		return fmt.Errorf("present target %d: %w", id, ErrUnknownTarget)
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(t.desc.Width), int32(t.desc.Height), 0, 0, width, height, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Cleanup frees every target and program
func (d *GLDevice) Cleanup() {
	for id := range d.targets {
		_ = d.DestroyTarget(id)
	}
	for _, passes := range d.shaders {
		for _, shader := range passes {
			shader.Delete()
		}
	}
	d.shaders = make(map[string][]*Shader)
	d.copyShader.Delete()
	gl.DeleteVertexArrays(1, &d.vao)
	logger.Log.Info("OpenGL device cleaned up")
}
