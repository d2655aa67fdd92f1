package renderer

import "fmt"

// ViewKind says what a view is used for. Only real views get post effects.
type ViewKind int

const (
	ViewMain ViewKind = iota
	ViewEditorPreview
	ViewReflectionProbe
	ViewOverlay
	ViewThumbnail
)

func (k ViewKind) String() string {
	switch k {
	case ViewMain:
		return "main"
	case ViewEditorPreview:
		return "editor-preview"
	case ViewReflectionProbe:
		return "reflection-probe"
	case ViewOverlay:
		return "overlay"
	case ViewThumbnail:
		return "thumbnail"
	}
	return fmt.Sprintf("ViewKind(%d)", int(k))
}

// View is one camera rendering into one target this frame
type View struct {
	Name       string
	Kind       ViewKind
	Resolution Resolution
	// PixelRect, when non-empty, is the area of the target actually covered by the
	// camera (editor scene windows). Post passes size their buffers from it.
	PixelRect Resolution
	Camera    *Camera
}

// FullResolution is the resolution post passes should work at
func (v View) FullResolution() Resolution {
	if !v.PixelRect.Empty() {
		return v.PixelRect
	}
	return v.Resolution
}

// RenderPassEvent orders passes within a frame
type RenderPassEvent int

const (
	BeforeRenderingOpaques RenderPassEvent = iota
	AfterRenderingOpaques
	BeforeRenderingTransparents
	AfterRenderingTransparents
	BeforeRenderingPostProcessing
	AfterRenderingPostProcessing
	AfterRendering
)

var renderPassEventNames = map[RenderPassEvent]string{
	BeforeRenderingOpaques:        "BeforeRenderingOpaques",
	AfterRenderingOpaques:         "AfterRenderingOpaques",
	BeforeRenderingTransparents:   "BeforeRenderingTransparents",
	AfterRenderingTransparents:    "AfterRenderingTransparents",
	BeforeRenderingPostProcessing: "BeforeRenderingPostProcessing",
	AfterRenderingPostProcessing:  "AfterRenderingPostProcessing",
	AfterRendering:                "AfterRendering",
}

func (e RenderPassEvent) String() string {
	if name, ok := renderPassEventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("RenderPassEvent(%d)", int(e))
}

// ParseRenderPassEvent is the inverse of String
func ParseRenderPassEvent(name string) (RenderPassEvent, error) {
	for event, n := range renderPassEventNames {
		if n == name {
			return event, nil
		}
	}
	return 0, fmt.Errorf("unknown render pass event %q", name)
}

func (e RenderPassEvent) MarshalText() ([]byte, error) {
	if _, ok := renderPassEventNames[e]; !ok {
		return nil, fmt.Errorf("unknown render pass event %d", int(e))
	}
	return []byte(e.String()), nil
}

func (e *RenderPassEvent) UnmarshalText(text []byte) error {
	event, err := ParseRenderPassEvent(string(text))
	if err != nil {
		return err
	}
	*e = event
	return nil
}
