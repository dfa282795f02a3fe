package exercises

import (
	"github.com/gekko3d/scenekit"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// BasicScene is a red unit cube seen from three units away.
func BasicScene() scenekit.Harness {
	return scenekit.Harness{
		Name:           "basic-scene",
		Description:    "red cube, static camera",
		CameraPosition: mgl32.Vec3{0, 0, 3},
		Setup: func(cmd *scenekit.Commands, ctx *scenekit.SceneContext) error {
			box := ctx.Assets.AddGeometry(geometry.NewBox(1, 1, 1, 1, 1, 1))
			red := ctx.Assets.AddMaterial(scenekit.NewBasicMaterial(scenekit.Hex(0xff0000)))
			addMesh(cmd, box, red, scenekit.NewTransform(mgl32.Vec3{}))
			return nil
		},
	}
}
