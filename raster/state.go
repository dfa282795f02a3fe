package raster

import "github.com/go-gl/mathgl/mgl32"

type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendNormal
	BlendAdditive
)

type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// State is the fixed-function configuration of a draw call.
type State struct {
	DepthTest  bool
	DepthWrite bool
	Blend      BlendMode
	Cull       CullMode
	// Fragments with alpha below AlphaTest are discarded.
	AlphaTest float32
}

// DefaultState is opaque, depth tested and back-face culled.
func DefaultState() State {
	return State{DepthTest: true, DepthWrite: true, Blend: BlendNone, Cull: CullBack}
}

// MaxVaryings is the number of per-vertex floats interpolated across primitives.
const MaxVaryings = 12

type Varyings [MaxVaryings]float32

// Vertex is a clip-space position and its varyings.
type Vertex struct {
	Clip     mgl32.Vec4
	Varyings Varyings
}

// FragmentShader returns the fragment color, or false to discard it.
type FragmentShader func(v *Varyings, frontFacing bool) (mgl32.Vec4, bool)

// PointShader shades a point sprite fragment. pointCoord is in [0,1]^2, origin top-left.
type PointShader func(v *Varyings, pointCoord mgl32.Vec2) (mgl32.Vec4, bool)
