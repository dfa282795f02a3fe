package exercises

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/scenekit"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	foxModel = "models/Fox/glTF/Fox.gltf"
	foxScale = 0.025
	foxClip  = 2
)

// ImportedModels loads an animated glTF model onto a lit floor.
func ImportedModels() scenekit.Harness {
	return scenekit.Harness{
		Name:           "imported-models",
		Description:    "glTF model with skeletal animation, lights, orbit controls",
		CameraPosition: mgl32.Vec3{2, 2, 2},
		Setup: func(cmd *scenekit.Commands, ctx *scenekit.SceneContext) error {
			controls := scenekit.NewOrbitControls(mgl32.Vec3{0, 0.75, 0})
			controls.EnableDamping = true
			cmd.AddComponents(ctx.Camera, &controls)

			floorMat := scenekit.NewStandardMaterial(scenekit.Hex(0x444444), 0, 0.5)
			floor := scenekit.NewTransform(mgl32.Vec3{})
			floor.Rotation = scenekit.EulerXYZ(-math32.Pi*0.5, 0, 0)
			addMesh(cmd, ctx.Assets.AddGeometry(geometry.NewPlane(10, 10, 1, 1)), ctx.Assets.AddMaterial(floorMat), floor)

			ambient := scenekit.AmbientLight(scenekit.Hex(0xffffff), 0.8)
			ambientTr := scenekit.NewTransform(mgl32.Vec3{})
			cmd.AddEntity(&ambientTr, &ambient, &scenekit.Name{Value: "ambient"})

			sun := scenekit.DirectionalLight(scenekit.Hex(0xffffff), 0.6)
			sun.CastShadow = true
			sun.ShadowMapSize = 1024
			sun.ShadowFar = 15
			sunTr := scenekit.NewTransform(mgl32.Vec3{5, 5, 5})
			cmd.AddEntity(&sunTr, &sun, &scenekit.Name{Value: "sun"})

			ctx.Assets.LoadModel(ctx.Loads, foxModel, scenekit.LoadHandlers[*scenekit.Model]{
				OnLoad: func(cmd *scenekit.Commands, m *scenekit.Model) {
					root := scenekit.NewTransform(mgl32.Vec3{})
					root.Scale = mgl32.Vec3{foxScale, foxScale, foxScale}
					sp := scenekit.SpawnModel(cmd, ctx.Assets, m, root)

					mixer := scenekit.NewAnimationMixer(m, sp)
					if action, ok := mixer.ClipAction(foxClip); ok {
						action.Play()
					} else {
						ctx.Logger.Warnf("%s has no animations", m.Name)
					}
					cmd.AddComponents(sp.Root, &mixer)
				},
			})
			return nil
		},
	}
}
