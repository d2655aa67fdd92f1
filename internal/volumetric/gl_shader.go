package volumetric

import (
	"Volumetrics/internal/renderer"
	"embed"
	"fmt"
)

//go:embed shaders/*.frag
var shaderFiles embed.FS

// passSources lists the fragment stages in pass order
var passSources = []string{
	PassRaymarch:        "shaders/raymarch.frag",
	PassBlurHorizontal:  "shaders/blur_x.frag",
	PassBlurVertical:    "shaders/blur_y.frag",
	PassComposite:       "shaders/composite.frag",
	PassDepthDownsample: "shaders/depth_downsample.frag",
}

// FragmentSources returns the GLSL of every pass, indexed by pass number
func FragmentSources() ([]string, error) {
	sources := make([]string, len(passSources))
	for pass, path := range passSources {
		src, err := shaderFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read pass %d shader: %w", pass, err)
		}
		sources[pass] = string(src)
	}
	return sources, nil
}

// RegisterGLShader compiles the volumetric passes on an OpenGL device
func RegisterGLShader(device *renderer.GLDevice) error {
	sources, err := FragmentSources()
	if err != nil {
		return err
	}
	return device.RegisterShader(ShaderName, renderer.FullscreenVertexShaderSource, sources)
}
