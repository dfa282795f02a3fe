package exercises

import (
	"github.com/gekko3d/scenekit"
	"github.com/go-gl/mathgl/mgl32"
)

const particleTexture = "textures/particles/2.png"

// Particles scatters colored additive sprites that ripple along a sine wave.
func Particles() scenekit.Harness {
	return scenekit.Harness{
		Name:           "particles",
		Description:    "5000 vertex-colored points in a sine wave",
		CameraPosition: mgl32.Vec3{0, 0, 3},
		Setup: func(cmd *scenekit.Commands, ctx *scenekit.SceneContext) error {
			controls := scenekit.NewOrbitControls(mgl32.Vec3{})
			controls.EnableDamping = true
			cmd.AddComponents(ctx.Camera, &controls)

			buf := scenekit.NewParticleBuffer(ctx.Config.Particles, 10, ctx.Rand)
			geom := ctx.Assets.AddGeometry(buf.Geometry())

			alpha, _ := ctx.Assets.LoadTexture(ctx.Loads, particleTexture, scenekit.SpriteImage(64))
			mat := scenekit.NewPointsMaterial(0.1)
			mat.VertexColors = true
			mat.Transparent = true
			mat.DepthWrite = false
			mat.Blending = scenekit.AdditiveBlending
			mat.AlphaMap = alpha

			tr := scenekit.NewTransform(mgl32.Vec3{})
			cmd.AddEntity(
				&tr,
				&scenekit.PointsComponent{Geometry: geom, Material: ctx.Assets.AddMaterial(mat)},
				&scenekit.ParticleFieldComponent{Buffer: buf, Geometry: geom, Wave: true},
			)
			return nil
		},
	}
}
