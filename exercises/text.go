package exercises

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gekko3d/scenekit"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/sfnt"
)

const matcapTexture = "textures/matcaps/1.png"

func textOptions() geometry.TextOptions {
	return geometry.TextOptions{
		Size:          0.5,
		CurveSegments: 12,
		ExtrudeOptions: geometry.ExtrudeOptions{
			Depth:          0.2,
			Steps:          1,
			BevelEnabled:   true,
			BevelThickness: 0.03,
			BevelSize:      0.02,
			BevelOffset:    0,
			BevelSegments:  5,
		},
	}
}

// Text shows centered extruded text surrounded by donuts, all sharing one
// matcap material. Nothing is spawned until the font has loaded.
func Text() scenekit.Harness {
	return scenekit.Harness{
		Name:           "text",
		Description:    "extruded matcap text and donuts, orbit controls",
		CameraPosition: mgl32.Vec3{1, 1, 2},
		Setup: func(cmd *scenekit.Commands, ctx *scenekit.SceneContext) error {
			controls := scenekit.NewOrbitControls(mgl32.Vec3{})
			controls.EnableDamping = true
			cmd.AddComponents(ctx.Camera, &controls)

			matcap, _ := ctx.Assets.LoadTexture(ctx.Loads, matcapTexture, scenekit.MatcapImage(256, scenekit.Hex(0xb8b8c8)))
			material := ctx.Assets.AddMaterial(scenekit.NewMatcapMaterial(matcap))

			ctx.Assets.LoadFont(ctx.Loads, "", scenekit.LoadHandlers[*sfnt.Font]{
				OnLoad: func(cmd *scenekit.Commands, f *sfnt.Font) {
					if err := spawnText(cmd, ctx, f, material); err != nil {
						ctx.Logger.Errorf("text: %v", err)
					}
				},
			})
			return nil
		},
	}
}

func spawnText(cmd *scenekit.Commands, ctx *scenekit.SceneContext, f *sfnt.Font, material scenekit.AssetId) error {
	g, err := geometry.NewText(f, ctx.Config.Text, textOptions())
	if err != nil {
		return fmt.Errorf("build text geometry: %w", err)
	}
	g.Center()
	addMesh(cmd, ctx.Assets.AddGeometry(g), material, scenekit.NewTransform(mgl32.Vec3{}))

	donut := ctx.Assets.AddGeometry(geometry.NewTorus(0.3, 0.2, 20, 45))
	rng := ctx.Rand
	for i := 0; i < ctx.Config.Donuts; i++ {
		tr := scenekit.NewTransform(mgl32.Vec3{
			(rng.Float32() - 0.5) * 10,
			(rng.Float32() - 0.5) * 10,
			(rng.Float32() - 0.5) * 10,
		})
		tr.Rotation = scenekit.EulerXYZ(rng.Float32()*math32.Pi, rng.Float32()*math32.Pi, 0)
		s := rng.Float32()
		tr.Scale = mgl32.Vec3{s, s, s}
		addMesh(cmd, donut, material, tr)
	}
	return nil
}
