package scenekit

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Buffer lengths never change; only y moves, following sin(elapsed + x).
func TestParticleBuffer_Wave(t *testing.T) {
	const count = 500
	b := NewParticleBuffer(count, 10, rand.New(rand.NewSource(7)))
	require.Len(t, b.Positions, 3*count)
	require.Len(t, b.Colors, 3*count)
	for i := range b.Positions {
		assert.True(t, b.Positions[i] >= -5 && b.Positions[i] <= 5)
		assert.True(t, b.Colors[i] >= 0 && b.Colors[i] <= 1)
	}

	before := slices.Clone(b.Positions)
	colors := slices.Clone(b.Colors)
	for _, elapsed := range []float32{0, 0.016, 0.5, 3.25, 100} {
		b.Wave(elapsed)
		require.Len(t, b.Positions, 3*count)
		for i := 0; i < count; i++ {
			x := b.Positions[3*i]
			assert.Equal(t, before[3*i], x)
			assert.Equal(t, before[3*i+2], b.Positions[3*i+2])
			assert.InDelta(t, math32.Sin(elapsed+x), b.Positions[3*i+1], 1e-6)
		}
	}
	assert.Equal(t, colors, b.Colors)
}

func TestParticleBuffer_Empty(t *testing.T) {
	b := NewParticleBuffer(0, 10, rand.New(rand.NewSource(1)))
	b.Wave(1)
	assert.Empty(t, b.Positions)
	assert.Empty(t, b.Geometry().Positions)
}

func TestParticleWaveSystem_SyncsGeometry(t *testing.T) {
	var field *ParticleFieldComponent
	app, ctx := buildTestApp(t, Harness{
		Name: "particles",
		Setup: func(cmd *Commands, ctx *SceneContext) error {
			buf := NewParticleBuffer(50, 10, ctx.Rand)
			geom := ctx.Assets.AddGeometry(buf.Geometry())
			mat := NewPointsMaterial(0.1)
			mat.VertexColors = true
			tr := NewTransform(mgl32.Vec3{})
			cmd.AddEntity(&tr,
				&PointsComponent{Geometry: geom, Material: ctx.Assets.AddMaterial(mat)},
				&ParticleFieldComponent{Buffer: buf, Geometry: geom, Wave: true})
			return nil
		},
	}, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, app.Step())
	}
	MakeQuery1[ParticleFieldComponent](app.Commands()).Map(func(_ EntityId, pf *ParticleFieldComponent) bool {
		field = pf
		return false
	})
	require.NotNil(t, field)

	elapsed := ctx.Clock.ElapsedSeconds()
	assert.InDelta(t, 3*testStep.Seconds(), elapsed, 1e-6)
	g, ok := ctx.Assets.Geometry(field.Geometry)
	require.True(t, ok)
	require.Len(t, g.Positions, 50)
	for i, p := range g.Positions {
		assert.InDelta(t, math32.Sin(elapsed+p.X()), p.Y(), 1e-6)
		assert.Equal(t, field.Buffer.Positions[3*i+2], p.Z())
	}
}
