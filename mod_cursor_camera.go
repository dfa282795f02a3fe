package scenekit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CursorCameraComponent places a camera on a circle around Target driven by the
// normalized cursor, then looks at the target.
type CursorCameraComponent struct {
	Target EntityId
	Radius float32
	Height float32
}

func NewCursorCamera(target EntityId) CursorCameraComponent {
	return CursorCameraComponent{Target: target, Radius: 2, Height: 3}
}

// CursorCameraPosition is the camera position for a cursor in [-0.5,0.5]^2.
func CursorCameraPosition(c Cursor, radius, height float32) mgl32.Vec3 {
	angle := c.X * math32.Pi * 2
	return mgl32.Vec3{
		math32.Sin(angle) * radius,
		c.Y * height,
		math32.Cos(angle) * radius,
	}
}

type CursorCameraModule struct{}

func (CursorCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(cursorCameraSystem).
			InStage(Update).
			RunAlways(),
	)
}

func cursorCameraSystem(cmd *Commands, cursor *Cursor) {
	MakeQuery2[CursorCameraComponent, TransformComponent](cmd).Map(func(_ EntityId, cc *CursorCameraComponent, tr *TransformComponent) bool {
		tr.Position = CursorCameraPosition(*cursor, cc.Radius, cc.Height)
		var target mgl32.Vec3
		if ttr, ok := GetComponent[TransformComponent](cmd, cc.Target); ok {
			target = ttr.Position
		}
		LookAt(tr, target)
		return true
	})
}
