package scenekit

import (
	"github.com/gekko3d/scenekit/anim"
)

// AnimationMixerComponent drives the nodes of a spawned model. It is only ever
// attached once the model has loaded, so the mixer never runs ahead of its data.
type AnimationMixerComponent struct {
	Mixer *anim.Mixer
	Clips []*anim.Clip
	Nodes map[int]EntityId
	Rest  map[int]anim.Pose
}

// NewAnimationMixer binds a fresh mixer to a spawned model.
func NewAnimationMixer(m *Model, sp SpawnedModel) AnimationMixerComponent {
	rest := make(map[int]anim.Pose, len(m.Nodes))
	for i, n := range m.Nodes {
		rest[i] = n.Rest
	}
	return AnimationMixerComponent{Mixer: anim.NewMixer(), Clips: m.Clips, Nodes: sp.Nodes, Rest: rest}
}

// ClipAction returns the action for clip index i, clamped to the available clips.
func (c *AnimationMixerComponent) ClipAction(i int) (*anim.Action, bool) {
	if len(c.Clips) == 0 {
		return nil, false
	}
	i = min(max(i, 0), len(c.Clips)-1)
	return c.Mixer.ClipAction(c.Clips[i]), true
}

type mixerBinder struct {
	cmd   *Commands
	mixer *AnimationMixerComponent
}

func (b mixerBinder) RestPose(target int) (anim.Pose, bool) {
	if _, ok := b.mixer.Nodes[target]; !ok {
		return anim.Pose{}, false
	}
	p, ok := b.mixer.Rest[target]
	return p, ok
}

func (b mixerBinder) ApplyPose(target int, p anim.Pose) {
	local, ok := GetComponent[LocalTransformComponent](b.cmd, b.mixer.Nodes[target])
	if !ok {
		return
	}
	local.Position = p.Translation
	local.Rotation = p.Rotation
	local.Scale = p.Scale
}

type AnimationModule struct{}

func (AnimationModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(animationSystem).
			InStage(Update).
			RunAlways(),
	)
}

func animationSystem(cmd *Commands, clock *Clock) {
	dt := clock.DeltaSeconds()
	MakeQuery1[AnimationMixerComponent](cmd).Map(func(_ EntityId, m *AnimationMixerComponent) bool {
		if m.Mixer != nil {
			m.Mixer.Update(dt, mixerBinder{cmd: cmd, mixer: m})
		}
		return true
	})
}
