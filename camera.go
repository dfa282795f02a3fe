package scenekit

import (
	"github.com/go-gl/mathgl/mgl32"
)

type ProjectionKind int

const (
	Perspective ProjectionKind = iota
	Orthographic
)

// CameraComponent describes a projection. The view comes from the entity's
// TransformComponent; cameras look down their local -Z axis.
type CameraComponent struct {
	Projection ProjectionKind
	// Fov is the vertical field of view in degrees.
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
	// HalfHeight is the orthographic half extent along Y; X is scaled by Aspect.
	HalfHeight float32
	Zoom       float32

	projection mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) CameraComponent {
	c := CameraComponent{Projection: Perspective, Fov: fov, Aspect: aspect, Near: near, Far: far, Zoom: 1}
	c.UpdateProjectionMatrix()
	return c
}

func NewOrthographicCamera(halfHeight, aspect, near, far float32) CameraComponent {
	c := CameraComponent{Projection: Orthographic, HalfHeight: halfHeight, Aspect: aspect, Near: near, Far: far, Zoom: 1}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix must be called after changing any projection parameter.
func (c *CameraComponent) UpdateProjectionMatrix() {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	switch c.Projection {
	case Orthographic:
		h := c.HalfHeight / zoom
		c.projection = mgl32.Ortho(-h*aspect, h*aspect, -h, h, c.Near, c.Far)
	default:
		c.projection = mgl32.Perspective(mgl32.DegToRad(c.Fov)/zoom, aspect, c.Near, c.Far)
	}
}

func (c *CameraComponent) ProjectionMatrix() mgl32.Mat4 {
	if c.projection == (mgl32.Mat4{}) {
		c.UpdateProjectionMatrix()
	}
	return c.projection
}

// ViewMatrix is the inverse of the camera's world transform, ignoring scale.
func ViewMatrix(tr *TransformComponent) mgl32.Mat4 {
	r := safeRotation(tr.Rotation).Conjugate()
	p := r.Rotate(tr.Position.Mul(-1))
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(r.Mat4())
}

// LookAt rotates tr so that its -Z axis points at target with +Y up.
func LookAt(tr *TransformComponent, target mgl32.Vec3) {
	dir := target.Sub(tr.Position)
	if dir.Len() < 1e-6 {
		return
	}
	up := mgl32.Vec3{0, 1, 0}
	if f := dir.Normalize(); f.Cross(up).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, -1}
	}
	view := mgl32.LookAtV(tr.Position, target, up)
	tr.Rotation = mgl32.Mat4ToQuat(view).Conjugate().Normalize()
}

// MainCamera selects the camera entity the renderer draws from.
type MainCamera struct {
	Entity EntityId
	Set    bool
}

// mainCamera resolves the active camera and its transform.
func mainCamera(cmd *Commands, main *MainCamera) (EntityId, *CameraComponent, *TransformComponent, bool) {
	if main != nil && main.Set {
		cam, ok := GetComponent[CameraComponent](cmd, main.Entity)
		tr, ok2 := GetComponent[TransformComponent](cmd, main.Entity)
		if ok && ok2 {
			return main.Entity, cam, tr, true
		}
	}
	var (
		found  EntityId
		camera *CameraComponent
		tr     *TransformComponent
	)
	MakeQuery2[CameraComponent, TransformComponent](cmd).Map(func(eid EntityId, c *CameraComponent, t *TransformComponent) bool {
		if camera == nil || eid < found {
			found, camera, tr = eid, c, t
		}
		return true
	})
	return found, camera, tr, camera != nil
}
