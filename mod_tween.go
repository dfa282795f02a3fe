package scenekit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float32) float32

func EaseLinear(t float32) float32 { return t }

func EasePower1In(t float32) float32 { return t * t }
func EasePower1Out(t float32) float32 { return 1 - (1-t)*(1-t) }
func EasePower1InOut(t float32) float32 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

func EasePower2In(t float32) float32 { return t * t * t }
func EasePower2Out(t float32) float32 { return 1 - (1-t)*(1-t)*(1-t) }
func EasePower2InOut(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 1 - t
	return 1 - 4*u*u*u
}

func EaseSineInOut(t float32) float32 { return -(math32.Cos(math32.Pi*t) - 1) / 2 }

func EaseBackOut(t float32) float32 {
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

func EaseBounceOut(t float32) float32 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

var easings = map[string]Ease{
	"linear":       EaseLinear,
	"none":         EaseLinear,
	"power1.in":    EasePower1In,
	"power1.out":   EasePower1Out,
	"power1.inOut": EasePower1InOut,
	"power2.in":    EasePower2In,
	"power2.out":   EasePower2Out,
	"power2.inOut": EasePower2InOut,
	"sine.inOut":   EaseSineInOut,
	"back.out":     EaseBackOut,
	"bounce.out":   EaseBounceOut,
}

// EaseByName resolves easing names such as "power1.out".
func EaseByName(name string) (Ease, bool) {
	e, ok := easings[name]
	return e, ok
}

type TweenProperty int

const (
	TweenPositionX TweenProperty = iota
	TweenPositionY
	TweenPositionZ
	// Rotation tweens turn about the local axis by the tweened angle (radians),
	// starting from the rotation the entity had when the tween began.
	TweenRotationX
	TweenRotationY
	TweenRotationZ
	TweenScale
)

// Tween animates one transform property from its value at start time to To.
type Tween struct {
	Property TweenProperty
	To       float32
	Duration float32
	Delay    float32
	// Ease defaults to EasePower1Out.
	Ease Ease
	// Repeat is the number of extra runs; negative repeats forever.
	Repeat     int
	Yoyo       bool
	OnComplete func()

	from     float32
	startRot mgl32.Quat
	elapsed  float32
	started  bool
	done     bool
	run      int
}

func (t *Tween) Done() bool { return t.done }

type TweenComponent struct {
	Tweens []Tween
}

func NewTweenComponent(tweens ...Tween) TweenComponent {
	return TweenComponent{Tweens: tweens}
}

type TweenModule struct{}

func (TweenModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(tweenSystem).
			InStage(Update).
			RunAlways(),
	)
}

func tweenSystem(cmd *Commands, clock *Clock) {
	dt := clock.DeltaSeconds()
	MakeQuery2[TweenComponent, TransformComponent](cmd).Map(func(_ EntityId, tc *TweenComponent, tr *TransformComponent) bool {
		for i := range tc.Tweens {
			tc.Tweens[i].Advance(dt, tr)
		}
		return true
	})
}

// Advance moves the tween forward by dt seconds and writes the property into tr.
func (t *Tween) Advance(dt float32, tr *TransformComponent) {
	if t.done {
		return
	}
	t.elapsed += dt
	if t.elapsed < t.Delay {
		return
	}
	if !t.started {
		t.started = true
		t.from = t.read(tr)
		t.startRot = safeRotation(tr.Rotation)
	}
	local := t.elapsed - t.Delay
	p := float32(1)
	if t.Duration > 0 {
		p = min(local/t.Duration, 1)
	}
	forward := !t.Yoyo || t.run%2 == 0
	if !forward {
		p = 1 - p
	}
	ease := t.Ease
	if ease == nil {
		ease = EasePower1Out
	}
	t.write(tr, t.from+(t.To-t.from)*ease(p))

	if local < t.Duration {
		return
	}
	if t.Repeat < 0 || t.run < t.Repeat {
		t.run++
		t.elapsed = t.Delay + (local - t.Duration)
		if !t.Yoyo {
			t.write(tr, t.from)
		}
		return
	}
	t.done = true
	if t.OnComplete != nil {
		t.OnComplete()
	}
}

func (t *Tween) read(tr *TransformComponent) float32 {
	switch t.Property {
	case TweenPositionX:
		return tr.Position[0]
	case TweenPositionY:
		return tr.Position[1]
	case TweenPositionZ:
		return tr.Position[2]
	case TweenScale:
		return tr.Scale[0]
	}
	return 0
}

func (t *Tween) write(tr *TransformComponent, v float32) {
	switch t.Property {
	case TweenPositionX:
		tr.Position[0] = v
	case TweenPositionY:
		tr.Position[1] = v
	case TweenPositionZ:
		tr.Position[2] = v
	case TweenScale:
		tr.Scale = mgl32.Vec3{v, v, v}
	case TweenRotationX:
		tr.Rotation = t.startRot.Mul(mgl32.QuatRotate(v, mgl32.Vec3{1, 0, 0}))
	case TweenRotationY:
		tr.Rotation = t.startRot.Mul(mgl32.QuatRotate(v, mgl32.Vec3{0, 1, 0}))
	case TweenRotationZ:
		tr.Rotation = t.startRot.Mul(mgl32.QuatRotate(v, mgl32.Vec3{0, 0, 1}))
	}
}
