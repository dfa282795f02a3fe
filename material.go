package scenekit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Color is linear RGB in [0,1].
type Color = mgl32.Vec3

// Hex converts 0xRRGGBB to a Color.
func Hex(rgb uint32) Color {
	return Color{
		float32((rgb>>16)&0xff) / 255,
		float32((rgb>>8)&0xff) / 255,
		float32(rgb&0xff) / 255,
	}
}

// ParseHexColor accepts "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseHexColor(s string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#"), "0x")
	if len(v) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Hex(uint32(n)), nil
}

type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
	NoBlending
)

// MaterialOptions holds the pipeline state every material shares.
type MaterialOptions struct {
	Transparent bool
	Opacity     float32
	DepthTest   bool
	DepthWrite  bool
	Blending    Blending
	Side        Side
	AlphaTest   float32
}

func defaultMaterialOptions() MaterialOptions {
	return MaterialOptions{Opacity: 1, DepthTest: true, DepthWrite: true}
}

// Material is implemented by every material kind the renderer understands.
type Material interface {
	Options() *MaterialOptions
}

// BasicMaterial is unlit.
type BasicMaterial struct {
	MaterialOptions
	Color        Color
	Map          AssetId
	Wireframe    bool
	VertexColors bool
}

func NewBasicMaterial(color Color) *BasicMaterial {
	return &BasicMaterial{MaterialOptions: defaultMaterialOptions(), Color: color}
}

func (m *BasicMaterial) Options() *MaterialOptions { return &m.MaterialOptions }

// MatcapMaterial looks up a lit sphere image by view-space normal.
type MatcapMaterial struct {
	MaterialOptions
	Color  Color
	Matcap AssetId
}

func NewMatcapMaterial(matcap AssetId) *MatcapMaterial {
	return &MatcapMaterial{MaterialOptions: defaultMaterialOptions(), Color: Color{1, 1, 1}, Matcap: matcap}
}

func (m *MatcapMaterial) Options() *MaterialOptions { return &m.MaterialOptions }

// StandardMaterial is lit by ambient, directional and point lights.
type StandardMaterial struct {
	MaterialOptions
	Color     Color
	Metalness float32
	Roughness float32
	Map       AssetId
}

func NewStandardMaterial(color Color, metalness, roughness float32) *StandardMaterial {
	return &StandardMaterial{MaterialOptions: defaultMaterialOptions(), Color: color, Metalness: metalness, Roughness: roughness}
}

func (m *StandardMaterial) Options() *MaterialOptions { return &m.MaterialOptions }

// PointsMaterial draws screen-aligned squares. With SizeAttenuation the size is
// in world units at unit distance, otherwise in pixels.
type PointsMaterial struct {
	MaterialOptions
	Color           Color
	Size            float32
	SizeAttenuation bool
	VertexColors    bool
	Map             AssetId
	AlphaMap        AssetId
}

func NewPointsMaterial(size float32) *PointsMaterial {
	return &PointsMaterial{MaterialOptions: defaultMaterialOptions(), Color: Color{1, 1, 1}, Size: size, SizeAttenuation: true}
}

func (m *PointsMaterial) Options() *MaterialOptions { return &m.MaterialOptions }
