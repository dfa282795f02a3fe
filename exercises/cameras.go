package exercises

import (
	"github.com/gekko3d/scenekit"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Cameras orbits the camera around a subdivided cube following the cursor.
func Cameras() scenekit.Harness {
	return scenekit.Harness{
		Name:           "cameras",
		Description:    "cursor driven camera looking at a cube",
		CameraPosition: mgl32.Vec3{0, 0, 3},
		CameraNear:     1,
		CameraFar:      1000,
		Setup: func(cmd *scenekit.Commands, ctx *scenekit.SceneContext) error {
			box := ctx.Assets.AddGeometry(geometry.NewBox(1, 1, 1, 5, 5, 5))
			red := ctx.Assets.AddMaterial(scenekit.NewBasicMaterial(scenekit.Hex(0xff0000)))
			cube := addMesh(cmd, box, red, scenekit.NewTransform(mgl32.Vec3{}))
			cc := scenekit.NewCursorCamera(cube)
			cmd.AddComponents(ctx.Camera, &cc)
			return nil
		},
	}
}
