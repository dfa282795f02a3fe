// Package anim samples keyframed transform tracks and mixes them into node poses.
package anim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// Path is the transform property a track drives.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	}
	return "unknown"
}

// Track animates one path of one target. Values holds Components() floats per
// key, or three times that for cubic splines (in-tangent, value, out-tangent).
type Track struct {
	Target        int
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        []float32
}

func (t *Track) Components() int {
	if t.Path == PathRotation {
		return 4
	}
	return 3
}

func (t *Track) key(i int) []float32 {
	n := t.Components()
	if t.Interpolation == InterpolationCubicSpline {
		return t.Values[(3*i+1)*n : (3*i+2)*n]
	}
	return t.Values[i*n : (i+1)*n]
}

// Sample writes the track value at time into out, which must hold Components() floats.
func (t *Track) Sample(time float32, out []float32) {
	n := t.Components()
	if len(t.Times) == 0 {
		return
	}
	last := len(t.Times) - 1
	if time <= t.Times[0] || last == 0 {
		copy(out[:n], t.key(0))
		return
	}
	if time >= t.Times[last] {
		copy(out[:n], t.key(last))
		return
	}
	i := sort.Search(len(t.Times), func(i int) bool { return t.Times[i] > time }) - 1
	t0, t1 := t.Times[i], t.Times[i+1]
	dt := t1 - t0
	s := (time - t0) / dt

	switch t.Interpolation {
	case InterpolationStep:
		copy(out[:n], t.key(i))
	case InterpolationCubicSpline:
		// Hermite spline with tangents scaled by the key interval.
		p0, p1 := t.key(i), t.key(i+1)
		m0 := t.Values[(3*i+2)*n : (3*i+3)*n]
		m1 := t.Values[(3*(i+1))*n : (3*(i+1)+1)*n]
		s2, s3 := s*s, s*s*s
		h00 := 2*s3 - 3*s2 + 1
		h10 := s3 - 2*s2 + s
		h01 := -2*s3 + 3*s2
		h11 := s3 - s2
		for k := 0; k < n; k++ {
			out[k] = h00*p0[k] + h10*dt*m0[k] + h01*p1[k] + h11*dt*m1[k]
		}
		if t.Path == PathRotation {
			q := mgl32.Quat{W: out[3], V: mgl32.Vec3{out[0], out[1], out[2]}}.Normalize()
			out[0], out[1], out[2], out[3] = q.V[0], q.V[1], q.V[2], q.W
		}
	default:
		a, b := t.key(i), t.key(i+1)
		if t.Path == PathRotation {
			q := mgl32.QuatSlerp(toQuat(a), toQuat(b), s)
			out[0], out[1], out[2], out[3] = q.V[0], q.V[1], q.V[2], q.W
			return
		}
		for k := 0; k < n; k++ {
			out[k] = a[k] + (b[k]-a[k])*s
		}
	}
}

func toQuat(v []float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// Clip is a named set of tracks played together.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []Track
}

// NewClip derives the duration from the latest key time.
func NewClip(name string, tracks []Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	for _, t := range tracks {
		if n := len(t.Times); n > 0 && t.Times[n-1] > c.Duration {
			c.Duration = t.Times[n-1]
		}
	}
	return c
}

// FindClip returns the clip called name.
func FindClip(clips []*Clip, name string) (*Clip, bool) {
	for _, c := range clips {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
