package scenekit

import (
	"context"
	"testing"

	"github.com/gekko3d/scenekit/anim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slidingModel(t *testing.T) *Model {
	t.Helper()
	m, err := DecodeModel(triangleGLTF(t), "tri.gltf")
	require.NoError(t, err)
	m.Clips = []*anim.Clip{anim.NewClip("slide", []anim.Track{{
		Target: 0,
		Path:   anim.PathTranslation,
		Times:  []float32{0, 10},
		Values: []float32{0, 0, 0, 10, 0, 0},
	}})}
	return m
}

// The mixer only exists once the model has loaded, then advances by each frame's delta.
func TestAnimationMixer_WaitsForLoad(t *testing.T) {
	release := make(chan struct{})
	var (
		future *Future[*Model]
		action *anim.Action
		root   EntityId
		nodes  map[int]EntityId
	)
	app, ctx := buildTestApp(t, Harness{
		Name: "mixer",
		Setup: func(cmd *Commands, ctx *SceneContext) error {
			future = LoadAsync(ctx.Loads, "slide", func(c context.Context) (*Model, error) {
				select {
				case <-release:
				case <-c.Done():
					return nil, c.Err()
				}
				return slidingModel(t), nil
			}, LoadHandlers[*Model]{OnLoad: func(cmd *Commands, m *Model) {
				sp := SpawnModel(cmd, ctx.Assets, m, NewTransform(mgl32.Vec3{}))
				mixer := NewAnimationMixer(m, sp)
				var ok bool
				action, ok = mixer.ClipAction(5)
				require.True(t, ok, "clip index is clamped")
				action.Play()
				cmd.AddComponents(sp.Root, &mixer)
				root, nodes = sp.Root, sp.Nodes
			}})
			return nil
		},
	}, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, app.Step())
		assert.Equal(t, Pending, future.State())
		assert.Nil(t, action)
		assert.Empty(t, MakeQuery1[AnimationMixerComponent](app.Commands()).Entities())
	}

	close(release)
	require.NoError(t, ctx.Loads.WaitIdle(context.Background()))

	dt := float32(testStep.Seconds())
	require.NoError(t, app.Step())
	require.Equal(t, Loaded, future.State())
	require.NotNil(t, action)
	assert.Equal(t, []EntityId{root}, MakeQuery1[AnimationMixerComponent](app.Commands()).Entities())
	assert.InDelta(t, dt, action.Time, 1e-6, "first tick after the load advances by one delta")

	for i := 2; i <= 5; i++ {
		require.NoError(t, app.Step())
		assert.InDelta(t, float32(i)*dt, action.Time, 1e-5)
	}

	local, ok := GetComponent[LocalTransformComponent](app.Commands(), nodes[0])
	require.True(t, ok)
	assert.InDelta(t, 5*dt, local.Position.X(), 1e-4)
}

func TestAnimationMixer_NoClips(t *testing.T) {
	m, err := DecodeModel(triangleGLTF(t), "tri.gltf")
	require.NoError(t, err)
	mixer := NewAnimationMixer(m, SpawnedModel{})
	_, ok := mixer.ClipAction(0)
	assert.False(t, ok)
}
