package scenekit

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshComponent draws triangles (or their edges for wireframe materials).
type MeshComponent struct {
	Geometry AssetId
	Material AssetId
}

// PointsComponent draws every vertex of Geometry as a sprite.
type PointsComponent struct {
	Geometry AssetId
	Material AssetId
}

// SkinComponent deforms a mesh by the world transforms of its joints.
// Joint i influences vertices through InverseBind[i].
type SkinComponent struct {
	Joints      []EntityId
	InverseBind []mgl32.Mat4
}
