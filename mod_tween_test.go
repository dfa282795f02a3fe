package scenekit

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTween_DelayThenEaseOut(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{})
	completed := 0
	tw := Tween{Property: TweenPositionX, To: 2, Duration: 1, Delay: 1, OnComplete: func() { completed++ }}

	tw.Advance(0.5, &tr)
	assert.Equal(t, float32(0), tr.Position.X(), "nothing moves during the delay")

	tw.Advance(1, &tr)
	assert.InDelta(t, 2*EasePower1Out(0.5), tr.Position.X(), 1e-6)
	assert.False(t, tw.Done())

	tw.Advance(1, &tr)
	assert.Equal(t, float32(2), tr.Position.X())
	assert.True(t, tw.Done())

	tw.Advance(1, &tr)
	assert.Equal(t, 1, completed)
}

func TestTween_FromIsCapturedAtStart(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{0, 0, 0})
	tw := Tween{Property: TweenPositionY, To: 1, Duration: 1, Delay: 1, Ease: EaseLinear}

	tw.Advance(0.5, &tr)
	tr.Position[1] = 3
	tw.Advance(1, &tr)
	assert.InDelta(t, 2, tr.Position.Y(), 1e-6)
}

func TestTween_YoyoRepeat(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{})
	tw := Tween{Property: TweenScale, To: 3, Duration: 1, Ease: EaseLinear, Repeat: 1, Yoyo: true}
	tr.Scale = mgl32.Vec3{1, 1, 1}

	tw.Advance(1, &tr)
	assert.InDelta(t, 3, tr.Scale.X(), 1e-6)
	tw.Advance(0.5, &tr)
	assert.InDelta(t, 2, tr.Scale.X(), 1e-6)
	tw.Advance(0.5, &tr)
	assert.InDelta(t, 1, tr.Scale.X(), 1e-6)
	assert.True(t, tw.Done())
}

func TestTween_Rotation(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{})
	tw := Tween{Property: TweenRotationY, To: math32.Pi / 2, Duration: 1, Ease: EaseLinear}
	tw.Advance(1, &tr)
	v := tr.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, v.X(), 1e-5)
	assert.InDelta(t, -1, v.Z(), 1e-5)
}

func TestEasings(t *testing.T) {
	for name, ease := range easings {
		assert.InDelta(t, 0, ease(0), 1e-5, name)
		assert.InDelta(t, 1, ease(1), 1e-5, name)
	}
	e, ok := EaseByName("power1.out")
	assert.True(t, ok)
	assert.InDelta(t, EasePower1Out(0.3), e(0.3), 1e-6)
	_, ok = EaseByName("nope")
	assert.False(t, ok)
}

func TestTweenSystem_UsesClockDelta(t *testing.T) {
	var cube EntityId
	app, _ := buildTestApp(t, Harness{
		Name: "tween",
		Setup: func(cmd *Commands, ctx *SceneContext) error {
			cube = redCube(cmd, ctx)
			tw := NewTweenComponent(Tween{Property: TweenPositionX, To: 2, Duration: 1, Delay: 1})
			cmd.AddComponents(cube, &tw)
			return nil
		},
	}, nil)

	frames := int(2.1 / testStep.Seconds())
	for i := 0; i < frames; i++ {
		if i == frames/3 {
			assert.Equal(t, float32(0), worldOf(t, app.Commands(), cube).Position.X())
		}
		assert.NoError(t, app.Step())
	}
	assert.Equal(t, float32(2), worldOf(t, app.Commands(), cube).Position.X())
}
