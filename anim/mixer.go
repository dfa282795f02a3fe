package anim

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type LoopMode int

const (
	LoopRepeat LoopMode = iota
	LoopOnce
	LoopPingPong
)

// Pose is a local transform.
type Pose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

func IdentityPose() Pose {
	return Pose{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Binder connects track targets to the objects they animate.
type Binder interface {
	// RestPose is the pose a target returns to where no action has full weight.
	RestPose(target int) (Pose, bool)
	ApplyPose(target int, p Pose)
}

// Action is the playback state of one clip inside a mixer.
type Action struct {
	clip  *Clip
	mixer *Mixer

	Time              float32
	TimeScale         float32
	Weight            float32
	Loop              LoopMode
	ClampWhenFinished bool

	running, paused, finished bool

	fading                 bool
	fadeFrom, fadeTo       float32
	fadeDuration, fadeTime float32
	stopAfterFade          bool
}

func (a *Action) Clip() *Clip { return a.clip }

// Play starts the action from its current time.
func (a *Action) Play() *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.running = true
	a.finished = false
	return a
}

// Stop halts the action and rewinds it.
func (a *Action) Stop() *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.stopLocked()
	return a
}

func (a *Action) stopLocked() {
	a.running = false
	a.fading = false
	a.Time = 0
	a.Weight = 1
}

// Reset rewinds without changing whether the action runs.
func (a *Action) Reset() *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.Time = 0
	a.finished = false
	a.paused = false
	a.fading = false
	a.Weight = 1
	a.mixer.elapsed[a] = 0
	return a
}

func (a *Action) SetPaused(p bool) *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.paused = p
	return a
}

func (a *Action) IsRunning() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.running && !a.paused && !a.finished
}

func (a *Action) Finished() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.finished
}

func (a *Action) FadeIn(duration float32) *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.fadeLocked(0, 1, duration, false)
	return a
}

func (a *Action) FadeOut(duration float32) *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.fadeLocked(a.Weight, 0, duration, true)
	return a
}

// CrossFadeTo fades this action out while next fades in and starts playing.
func (a *Action) CrossFadeTo(next *Action, duration float32) *Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.fadeLocked(a.Weight, 0, duration, true)
	next.running = true
	next.finished = false
	next.fadeLocked(0, 1, duration, false)
	return next
}

func (a *Action) fadeLocked(from, to, duration float32, stop bool) {
	if duration <= 0 {
		a.Weight = to
		a.fading = false
		if stop && to == 0 {
			a.stopLocked()
		}
		return
	}
	a.fading = true
	a.fadeFrom, a.fadeTo = from, to
	a.fadeDuration, a.fadeTime = duration, 0
	a.stopAfterFade = stop
	a.Weight = from
}

func (a *Action) advance(dt float32) {
	if a.fading {
		a.fadeTime += dt
		p := min(a.fadeTime/a.fadeDuration, 1)
		a.Weight = a.fadeFrom + (a.fadeTo-a.fadeFrom)*p
		if p >= 1 {
			a.fading = false
			if a.stopAfterFade {
				a.stopLocked()
				return
			}
		}
	}
	d := a.clip.Duration
	a.Time += dt * a.TimeScale
	if d <= 0 {
		a.Time = 0
		return
	}
	switch a.Loop {
	case LoopOnce:
		if a.Time >= d || a.Time < 0 {
			a.Time = min(max(a.Time, 0), d)
			a.finished = true
			if !a.ClampWhenFinished {
				a.running = false
			}
		}
	default:
		if a.Time >= d || a.Time < 0 {
			a.Time = float32(math.Mod(float64(a.Time), float64(d)))
			if a.Time < 0 {
				a.Time += d
			}
		}
	}
}

// localTime maps action time to clip time; ping-pong mirrors every other cycle.
func (a *Action) localTime(total float32) float32 {
	if a.Loop != LoopPingPong || a.clip.Duration <= 0 {
		return a.Time
	}
	d := a.clip.Duration
	cycle := int(math.Floor(float64(total / d)))
	if cycle%2 == 1 {
		return d - a.Time
	}
	return a.Time
}

// Mixer plays actions and blends their output into poses.
type Mixer struct {
	mu      sync.Mutex
	actions []*Action
	byClip  map[*Clip]*Action
	elapsed map[*Action]float32

	Time      float32
	TimeScale float32
}

func NewMixer() *Mixer {
	return &Mixer{
		byClip:    map[*Clip]*Action{},
		elapsed:   map[*Action]float32{},
		TimeScale: 1,
	}
}

// ClipAction returns the action for clip, creating it on first use.
func (m *Mixer) ClipAction(clip *Clip) *Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byClip[clip]; ok {
		return a
	}
	a := &Action{clip: clip, mixer: m, TimeScale: 1, Weight: 1}
	m.byClip[clip] = a
	m.actions = append(m.actions, a)
	return a
}

func (m *Mixer) Actions() []*Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Action(nil), m.actions...)
}

func (m *Mixer) StopAllAction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		a.stopLocked()
		m.elapsed[a] = 0
	}
}

type channelKey struct {
	target int
	path   Path
}

type accum struct {
	weight float32
	vec    mgl32.Vec3
	quat   mgl32.Quat
}

// Update advances every running action by dt seconds and writes the blended
// result through b. Targets only partially covered by action weights are mixed
// with their rest pose.
func (m *Mixer) Update(dt float32, b Binder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dt *= m.TimeScale
	m.Time += dt

	acc := map[channelKey]*accum{}
	var order []channelKey
	var sample [4]float32
	for _, a := range m.actions {
		if !a.running || a.paused {
			continue
		}
		step := dt
		if a.finished {
			step = 0
		}
		m.elapsed[a] += step * a.TimeScale
		a.advance(step)
		if !a.running || a.Weight <= 0 {
			continue
		}
		t := a.localTime(m.elapsed[a])
		for i := range a.clip.Tracks {
			tr := &a.clip.Tracks[i]
			tr.Sample(t, sample[:])
			k := channelKey{tr.Target, tr.Path}
			c, ok := acc[k]
			if !ok {
				c = &accum{}
				acc[k] = c
				order = append(order, k)
			}
			c.add(tr.Path, sample, a.Weight)
		}
	}

	poses := map[int]Pose{}
	var targets []int
	for _, k := range order {
		p, ok := poses[k.target]
		if !ok {
			p, ok = b.RestPose(k.target)
			if !ok {
				continue
			}
			targets = append(targets, k.target)
		}
		c := acc[k]
		switch k.path {
		case PathTranslation:
			p.Translation = c.blendVec(p.Translation)
		case PathScale:
			p.Scale = c.blendVec(p.Scale)
		case PathRotation:
			p.Rotation = c.blendQuat(p.Rotation)
		}
		poses[k.target] = p
	}
	for _, t := range targets {
		b.ApplyPose(t, poses[t])
	}
}

func (c *accum) add(path Path, v [4]float32, w float32) {
	if path == PathRotation {
		q := mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
		if c.weight == 0 {
			c.quat = q
		} else {
			c.quat = mgl32.QuatSlerp(c.quat, q, w/(c.weight+w))
		}
	} else {
		c.vec = c.vec.Add(mgl32.Vec3{v[0], v[1], v[2]}.Mul(w))
	}
	c.weight += w
}

func (c *accum) blendVec(rest mgl32.Vec3) mgl32.Vec3 {
	if c.weight >= 1 {
		return c.vec.Mul(1 / c.weight)
	}
	return c.vec.Add(rest.Mul(1 - c.weight))
}

func (c *accum) blendQuat(rest mgl32.Quat) mgl32.Quat {
	if c.weight >= 1 {
		return c.quat.Normalize()
	}
	return mgl32.QuatSlerp(rest, c.quat, c.weight).Normalize()
}
