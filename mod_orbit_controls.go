package scenekit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitControlsComponent orbits a camera around Target. Left drag rotates,
// scrolling dollies. With damping, motion eases out over the following frames.
type OrbitControlsComponent struct {
	Target mgl32.Vec3

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32

	MinDistance, MaxDistance     float32
	MinPolarAngle, MaxPolarAngle float32

	deltaTheta, deltaPhi float32
	scale                float32
}

func NewOrbitControls(target mgl32.Vec3) OrbitControlsComponent {
	return OrbitControlsComponent{
		Target:        target,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MaxDistance:   math32.Inf(1),
		MaxPolarAngle: math32.Pi,
		scale:         1,
	}
}

// Rotate queues an orbit by theta around the up axis and phi towards the pole.
func (c *OrbitControlsComponent) Rotate(theta, phi float32) {
	c.deltaTheta -= theta
	c.deltaPhi -= phi
}

// Dolly queues a radius change; factors below 1 move closer.
func (c *OrbitControlsComponent) Dolly(factor float32) {
	if c.scale == 0 {
		c.scale = 1
	}
	c.scale *= factor
}

// Moving reports whether queued motion remains.
func (c *OrbitControlsComponent) Moving() bool {
	const eps = 1e-6
	return math32.Abs(c.deltaTheta) > eps || math32.Abs(c.deltaPhi) > eps
}

// Update applies queued motion to tr and aims it at Target.
func (c *OrbitControlsComponent) Update(tr *TransformComponent) {
	const eps = 1e-6
	offset := tr.Position.Sub(c.Target)
	radius := offset.Len()
	theta := math32.Atan2(offset[0], offset[2])
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(mgl32.Clamp(offset[1]/radius, -1, 1))
	}

	if c.EnableDamping {
		theta += c.deltaTheta * c.DampingFactor
		phi += c.deltaPhi * c.DampingFactor
	} else {
		theta += c.deltaTheta
		phi += c.deltaPhi
	}
	phi = mgl32.Clamp(phi, c.MinPolarAngle, c.MaxPolarAngle)
	phi = mgl32.Clamp(phi, eps, math32.Pi-eps)

	if c.scale == 0 {
		c.scale = 1
	}
	radius *= c.scale
	radius = max(radius, c.MinDistance)
	if c.MaxDistance > 0 {
		radius = min(radius, c.MaxDistance)
	}

	sinPhi := math32.Sin(phi)
	tr.Position = c.Target.Add(mgl32.Vec3{
		radius * sinPhi * math32.Sin(theta),
		radius * math32.Cos(phi),
		radius * sinPhi * math32.Cos(theta),
	})
	LookAt(tr, c.Target)

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
	}
	c.scale = 1
}

type OrbitControlsModule struct{}

func (OrbitControlsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(orbitControlsSystem).
			InStage(Update).
			RunAlways(),
	)
}

func orbitControlsSystem(cmd *Commands, input *Input, sizes *Sizes) {
	MakeQuery2[OrbitControlsComponent, TransformComponent](cmd).Map(func(_ EntityId, oc *OrbitControlsComponent, tr *TransformComponent) bool {
		h := float32(sizes.Height)
		if input.Pressed[MouseButtonLeft] && h > 0 {
			oc.Rotate(
				2*math32.Pi*float32(input.MouseDeltaX)/h*oc.RotateSpeed,
				2*math32.Pi*float32(input.MouseDeltaY)/h*oc.RotateSpeed,
			)
		}
		if input.ScrollY != 0 {
			zoom := math32.Pow(0.95, oc.ZoomSpeed)
			if input.ScrollY > 0 {
				oc.Dolly(zoom)
			} else {
				oc.Dolly(1 / zoom)
			}
		}
		oc.Update(tr)
		return true
	})
}
