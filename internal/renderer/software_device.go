package renderer

import (
	"Volumetrics/internal/logger"
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Surface is a CPU render target: Width*Height pixels of Format.Channels() float32s
type Surface struct {
	Width  int
	Height int
	Format TextureFormat
	Pix    []float32
}

func newSurface(desc TargetDesc) *Surface {
	return &Surface{
		Width:  desc.Width,
		Height: desc.Height,
		Format: desc.Format,
		Pix:    make([]float32, desc.Width*desc.Height*desc.Format.Channels()),
	}
}

// At returns the pixel at (x, y) clamped to the edges. Single channel surfaces
// replicate their value into rgb with alpha 1.
func (s *Surface) At(x, y int) mgl32.Vec4 {
	x = clampInt(x, 0, s.Width-1)
	y = clampInt(y, 0, s.Height-1)
	channels := s.Format.Channels()
	i := (y*s.Width + x) * channels
	if channels == 1 {
		v := s.Pix[i]
		return mgl32.Vec4{v, v, v, 1}
	}
	return mgl32.Vec4{s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]}
}

// Set writes the pixel at (x, y). Single channel surfaces keep the red component.
func (s *Surface) Set(x, y int, c mgl32.Vec4) {
	channels := s.Format.Channels()
	i := (y*s.Width + x) * channels
	if channels == 1 {
		s.Pix[i] = c.X()
		return
	}
	s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3] = c.X(), c.Y(), c.Z(), c.W()
}

// Sample reads the texel under normalized coordinates (u, v), nearest filtering
func (s *Surface) Sample(u, v float32) mgl32.Vec4 {
	x := int(math32.Floor(u * float32(s.Width)))
	y := int(math32.Floor(v * float32(s.Height)))
	return s.At(x, y)
}

// Fill sets every pixel to c
func (s *Surface) Fill(c mgl32.Vec4) {
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			s.Set(x, y, c)
		}
	}
}

func (s *Surface) Resolution() Resolution {
	return Resolution{Width: s.Width, Height: s.Height}
}

// KernelContext is what a CPU shader pass sees while shading one destination pixel
type KernelContext struct {
	Source   *Surface
	Dest     *Surface
	Material *Material
	Textures map[string]*Surface
	Globals  *ShaderGlobals
}

// Float reads a material uniform
func (ctx *KernelContext) Float(name string) float32 {
	if ctx.Material == nil {
		return 0
	}
	return ctx.Material.Float(name)
}

// Texture returns a bound texture by name, or nil
func (ctx *KernelContext) Texture(name string) *Surface {
	return ctx.Textures[name]
}

// Vector reads a global vector
func (ctx *KernelContext) Vector(name string) (mgl32.Vec4, bool) {
	return ctx.Globals.Vector(name)
}

// UV returns the normalized centre of destination pixel (x, y)
func (ctx *KernelContext) UV(x, y int) (float32, float32) {
	return (float32(x) + 0.5) / float32(ctx.Dest.Width), (float32(y) + 0.5) / float32(ctx.Dest.Height)
}

// Kernel shades one destination pixel
type Kernel func(ctx *KernelContext, x, y int) mgl32.Vec4

// SoftwareDeviceLimits bounds what CreateTarget accepts
type SoftwareDeviceLimits struct {
	MaxTextureSize int
	MaxMSAASamples int
	Formats        []TextureFormat
}

// DefaultSoftwareDeviceLimits mirrors a modest desktop GPU
func DefaultSoftwareDeviceLimits() SoftwareDeviceLimits {
	return SoftwareDeviceLimits{
		MaxTextureSize: 8192,
		MaxMSAASamples: 1,
		Formats:        []TextureFormat{FormatRGBA8, FormatRGBA16F, FormatR16F, FormatDepth32F},
	}
}

// SoftwareDevice runs full-screen passes on the CPU. It backs headless rendering and
// tests, and executes the same shader pass numbering as the GPU backends.
type SoftwareDevice struct {
	mu       sync.Mutex
	nextID   TargetID
	surfaces map[TargetID]*Surface
	shaders  map[string][]Kernel
	limits   SoftwareDeviceLimits
	globals  *ShaderGlobals
}

// NewSoftwareDevice creates a CPU device. A nil globals gets a private store.
func NewSoftwareDevice(limits SoftwareDeviceLimits, globals *ShaderGlobals) *SoftwareDevice {
	if globals == nil {
		globals = NewShaderGlobals()
	}
	return &SoftwareDevice{
		surfaces: make(map[TargetID]*Surface),
		shaders:  make(map[string][]Kernel),
		limits:   limits,
		globals:  globals,
	}
}

// RegisterShader installs the passes of a shader, indexed by pass number
func (d *SoftwareDevice) RegisterShader(name string, passes []Kernel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shaders[name] = passes
	logger.Log.Debug("Software shader registered", zap.String("shader", name), zap.Int("passes", len(passes)))
}

func (d *SoftwareDevice) Globals() *ShaderGlobals {
	return d.globals
}

func (d *SoftwareDevice) supports(format TextureFormat) bool {
	for _, f := range d.limits.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (d *SoftwareDevice) CreateTarget(desc TargetDesc) (TargetID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("%w: empty size %dx%d", ErrAllocation, desc.Width, desc.Height)
	}
	if desc.Width > d.limits.MaxTextureSize || desc.Height > d.limits.MaxTextureSize {
		return 0, fmt.Errorf("%w: size %dx%d exceeds %d", ErrAllocation, desc.Width, desc.Height, d.limits.MaxTextureSize)
	}
	if !d.supports(desc.Format) {
		return 0, fmt.Errorf("%w: unsupported format %s", ErrAllocation, desc.Format)
	}
	if desc.MSAASamples > d.limits.MaxMSAASamples {
		return 0, fmt.Errorf("%w: %d msaa samples unsupported", ErrAllocation, desc.MSAASamples)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.surfaces[d.nextID] = newSurface(desc)
	return d.nextID, nil
}

func (d *SoftwareDevice) DestroyTarget(id TargetID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.surfaces[id]; !ok {
		return fmt.Errorf("destroy target %d: %w", id, ErrUnknownTarget)
	}
	delete(d.surfaces, id)
	return nil
}

func (d *SoftwareDevice) Clear(id TargetID, color mgl32.Vec4) error {
	s, ok := d.Surface(id)
	if !ok {
		return fmt.Errorf("clear target %d: %w", id, ErrUnknownTarget)
	}
	s.Fill(color)
	return nil
}

// Surface exposes the CPU storage of a target, for uploads and readback
func (d *SoftwareDevice) Surface(id TargetID) (*Surface, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.surfaces[id]
	return s, ok
}

// TargetCount is the number of live targets
func (d *SoftwareDevice) TargetCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.surfaces)
}

func (d *SoftwareDevice) Blit(b Blit) error {
	src, ok := d.Surface(b.Source)
	if !ok {
		return fmt.Errorf("blit source %d: %w", b.Source, ErrUnknownTarget)
	}
	dst, ok := d.Surface(b.Dest)
	if !ok {
		return fmt.Errorf("blit dest %d: %w", b.Dest, ErrUnknownTarget)
	}

	kernel := copyKernel
	if b.Material != nil {
		d.mu.Lock()
		passes, ok := d.shaders[b.Material.Shader]
		d.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: shader %q not registered", ErrSubmission, b.Material.Shader)
		}
		if b.Pass < 0 || b.Pass >= len(passes) || passes[b.Pass] == nil {
			return fmt.Errorf("%w: shader %q has no pass %d", ErrSubmission, b.Material.Shader, b.Pass)
		}
		kernel = passes[b.Pass]
	}

	ctx := &KernelContext{
		Source:   src,
		Dest:     dst,
		Material: b.Material,
		Textures: make(map[string]*Surface),
		Globals:  d.globals,
	}
	for name, id := range d.globals.Textures() {
		if s, ok := d.Surface(id); ok {
			ctx.Textures[name] = s
		}
	}
	for name, id := range b.Textures {
		s, ok := d.Surface(id)
		if !ok {
			return fmt.Errorf("blit texture %s (%d): %w", name, id, ErrUnknownTarget)
		}
		ctx.Textures[name] = s
	}
	ctx.Textures[MainTexture] = src

	// shade into scratch so a pass may read the target it writes
	out := newSurface(TargetDesc{Width: dst.Width, Height: dst.Height, Format: dst.Format})
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			out.Set(x, y, kernel(ctx, x, y))
		}
	}
	copy(dst.Pix, out.Pix)
	return nil
}

func copyKernel(ctx *KernelContext, x, y int) mgl32.Vec4 {
	u, v := ctx.UV(x, y)
	return ctx.Source.Sample(u, v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
