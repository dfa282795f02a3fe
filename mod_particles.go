package scenekit

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleBuffer holds flat, index-aligned attributes: particle i owns
// Positions[3i:3i+3] and Colors[3i:3i+3]. Both always have length 3*Count.
type ParticleBuffer struct {
	Count     int
	Positions []float32
	Colors    []float32
}

// NewParticleBuffer scatters count particles uniformly in a cube of side spread
// centered on the origin, with uniform random colors.
func NewParticleBuffer(count int, spread float32, rng *rand.Rand) *ParticleBuffer {
	b := &ParticleBuffer{
		Count:     count,
		Positions: make([]float32, 3*count),
		Colors:    make([]float32, 3*count),
	}
	for i := range b.Positions {
		b.Positions[i] = (rng.Float32() - 0.5) * spread
		b.Colors[i] = rng.Float32()
	}
	return b
}

// Wave sets every particle's y to sin(elapsed + x); x and z are unchanged.
func (b *ParticleBuffer) Wave(elapsed float32) {
	for i := 0; i < b.Count; i++ {
		x := b.Positions[3*i]
		b.Positions[3*i+1] = math32.Sin(elapsed + x)
	}
}

// Geometry builds a points geometry sharing the buffer's layout.
func (b *ParticleBuffer) Geometry() *geometry.BufferGeometry {
	g := geometry.NewPoints(make([]mgl32.Vec3, b.Count), make([]mgl32.Vec3, b.Count))
	b.sync(g)
	return g
}

func (b *ParticleBuffer) sync(g *geometry.BufferGeometry) {
	if len(g.Positions) != b.Count {
		g.Positions = make([]mgl32.Vec3, b.Count)
	}
	if len(g.Colors) != b.Count {
		g.Colors = make([]mgl32.Vec3, b.Count)
	}
	for i := 0; i < b.Count; i++ {
		g.Positions[i] = mgl32.Vec3{b.Positions[3*i], b.Positions[3*i+1], b.Positions[3*i+2]}
		g.Colors[i] = mgl32.Vec3{b.Colors[3*i], b.Colors[3*i+1], b.Colors[3*i+2]}
	}
}

// ParticleFieldComponent ties a particle buffer to the geometry drawn by a
// PointsComponent on the same entity.
type ParticleFieldComponent struct {
	Buffer   *ParticleBuffer
	Geometry AssetId
	Wave     bool
}

type ParticlesModule struct{}

func (ParticlesModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(particleWaveSystem).
			InStage(Update).
			RunAlways(),
	)
}

func particleWaveSystem(cmd *Commands, clock *Clock, assets *AssetServer) {
	elapsed := clock.ElapsedSeconds()
	MakeQuery1[ParticleFieldComponent](cmd).Map(func(_ EntityId, pf *ParticleFieldComponent) bool {
		if pf.Buffer == nil {
			return true
		}
		if pf.Wave {
			pf.Buffer.Wave(elapsed)
		}
		if g, ok := assets.Geometry(pf.Geometry); ok {
			pf.Buffer.sync(g)
		}
		return true
	})
}
