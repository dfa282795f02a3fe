package scenekit

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is an entity's world transform. For entities with a Parent it
// is derived from LocalTransformComponent by the hierarchy system every frame.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Hidden   bool
}

// LocalTransformComponent is the transform relative to the Parent entity.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

type Name struct {
	Value string
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{Position: position, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

func NewLocalTransform(position mgl32.Vec3) LocalTransformComponent {
	return LocalTransformComponent{Position: position, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// EulerXYZ builds an intrinsic X-Y-Z rotation (radians): x about the local X axis,
// then y about the rotated Y, then z about the twice-rotated Z.
func EulerXYZ(x, y, z float32) mgl32.Quat {
	qx := mgl32.QuatRotate(x, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(y, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(z, mgl32.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz).Normalize()
}

// zero quaternions show up in literal-built transforms; treat them as identity.
func safeRotation(q mgl32.Quat) mgl32.Quat {
	if q.W == 0 && q.V == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	return q
}

// Matrix is translation * rotation * scale.
func (t *TransformComponent) Matrix() mgl32.Mat4 {
	return composeMatrix(t.Position, t.Rotation, t.Scale)
}

func (t *LocalTransformComponent) Matrix() mgl32.Mat4 {
	return composeMatrix(t.Position, t.Rotation, t.Scale)
}

func composeMatrix(p mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(safeRotation(r).Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// propagate computes a child's world transform from its parent's world transform.
// Components are combined directly so that negative scales survive.
func propagate(parent *TransformComponent, local *LocalTransformComponent, world *TransformComponent) {
	pr := safeRotation(parent.Rotation)
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	world.Position = parent.Position.Add(pr.Rotate(scaledLocalPos))
	world.Rotation = pr.Mul(safeRotation(local.Rotation)).Normalize()
	world.Scale = mgl32.Vec3{
		parent.Scale.X() * local.Scale.X(),
		parent.Scale.Y() * local.Scale.Y(),
		parent.Scale.Z() * local.Scale.Z(),
	}
}
