package exercises

import (
	"github.com/gekko3d/scenekit"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Animations slides the cube to x=2 over one second after a one second delay.
func Animations() scenekit.Harness {
	return scenekit.Harness{
		Name:           "animations",
		Description:    "tweened cube position",
		CameraPosition: mgl32.Vec3{0, 0, 3},
		Setup: func(cmd *scenekit.Commands, ctx *scenekit.SceneContext) error {
			box := ctx.Assets.AddGeometry(geometry.NewBox(1, 1, 1, 1, 1, 1))
			red := ctx.Assets.AddMaterial(scenekit.NewBasicMaterial(scenekit.Hex(0xff0000)))
			cube := addMesh(cmd, box, red, scenekit.NewTransform(mgl32.Vec3{}))
			tween := scenekit.NewTweenComponent(scenekit.Tween{
				Property: scenekit.TweenPositionX,
				To:       2,
				Duration: 1,
				Delay:    1,
				OnComplete: func() {
					ctx.Logger.Debugf("cube tween complete")
				},
			})
			cmd.AddComponents(cube, &tween)
			return nil
		},
	}
}
