package renderer

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func TestGLFormatsCoverEveryTextureFormat(t *testing.T) {
	for _, format := range DefaultSoftwareDeviceLimits().Formats {
		if _, ok := glFormats[format]; !ok {
			t.Errorf("no OpenGL mapping for %s", format)
		}
	}
}

func TestGLSingleChannelFormatIsFloat(t *testing.T) {
	// scattering values above 1 must survive between passes
	f := glFormats[FormatR16F]
	if f.internal != gl.R16F || f.xtype != gl.HALF_FLOAT {
		t.Errorf("R16F should map to GL_R16F/HALF_FLOAT, got internal 0x%x type 0x%x", f.internal, f.xtype)
	}
}
