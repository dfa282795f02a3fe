package scenekit

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderer turns a collected Frame into an image. Size is in window pixels;
// the drawing buffer is Size scaled by the pixel ratio.
type Renderer interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	Size() (int, int)
	PixelRatio() float32
	DrawingBufferSize() (int, int)
	Render(frame *Frame) error
	Image() *image.RGBA
}

// RendererResource exposes the active renderer to systems.
type RendererResource struct {
	Name     RendererName
	Renderer Renderer
	// Frames counts completed Render calls.
	Frames uint64
}

type DrawKind int

const (
	DrawMesh DrawKind = iota
	DrawPoints
)

// DrawItem is one entity's draw call.
type DrawItem struct {
	Entity   EntityId
	Kind     DrawKind
	Geometry *geometry.BufferGeometry
	Material Material
	Model    mgl32.Mat4
	// Skin holds one matrix per joint (joint world * inverse bind); nil when unskinned.
	Skin []mgl32.Mat4

	transparent bool
	depth       float32
}

type FrameLight struct {
	Type LightType
	// Radiance is color times intensity.
	Radiance  mgl32.Vec3
	Position  mgl32.Vec3
	Direction mgl32.Vec3 // towards the light, directional only
	Range     float32

	entity EntityId
}

// Frame is everything a renderer needs for one image.
type Frame struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3
	Items          []DrawItem
	Lights         []FrameLight
	Assets         *AssetServer
	ClearColor     mgl32.Vec4
}

// CollectFrame snapshots the visible scene. Opaque items come first in entity
// order, then transparent items back to front, ties broken by entity.
func CollectFrame(cmd *Commands, assets *AssetServer, main *MainCamera) (*Frame, error) {
	_, cam, camTr, ok := mainCamera(cmd, main)
	if !ok {
		return nil, ErrNoCamera
	}
	f := &Frame{
		View:           ViewMatrix(camTr),
		Projection:     cam.ProjectionMatrix(),
		CameraPosition: camTr.Position,
		Assets:         assets,
		ClearColor:     mgl32.Vec4{0, 0, 0, 1},
	}

	add := func(eid EntityId, kind DrawKind, geomId, matId AssetId, tr *TransformComponent) error {
		if hidden(cmd, eid, tr) {
			return nil
		}
		g, ok := assets.Geometry(geomId)
		if !ok {
			return fmt.Errorf("entity %d geometry %s: %w", eid, geomId, ErrAssetNotFound)
		}
		mat, ok := assets.Material(matId)
		if !ok {
			return fmt.Errorf("entity %d material %s: %w", eid, matId, ErrAssetNotFound)
		}
		opts := mat.Options()
		item := DrawItem{
			Entity:      eid,
			Kind:        kind,
			Geometry:    g,
			Material:    mat,
			Model:       tr.Matrix(),
			transparent: opts.Transparent || opts.Blending == AdditiveBlending,
		}
		if skin, ok := GetComponent[SkinComponent](cmd, eid); ok && kind == DrawMesh {
			item.Skin = jointMatrices(cmd, skin)
		}
		viewPos := f.View.Mul4x1(tr.Position.Vec4(1))
		item.depth = viewPos[2]
		f.Items = append(f.Items, item)
		return nil
	}

	var err error
	MakeQuery2[MeshComponent, TransformComponent](cmd).Map(func(eid EntityId, m *MeshComponent, tr *TransformComponent) bool {
		err = add(eid, DrawMesh, m.Geometry, m.Material, tr)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	MakeQuery2[PointsComponent, TransformComponent](cmd).Map(func(eid EntityId, p *PointsComponent, tr *TransformComponent) bool {
		err = add(eid, DrawPoints, p.Geometry, p.Material, tr)
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(f.Items, func(a, b DrawItem) int {
		if a.transparent != b.transparent {
			if a.transparent {
				return 1
			}
			return -1
		}
		if a.transparent && a.depth != b.depth {
			// more negative view z is farther away
			return cmp.Compare(a.depth, b.depth)
		}
		return cmp.Compare(a.Entity, b.Entity)
	})

	MakeQuery2[LightComponent, TransformComponent](cmd).Map(func(eid EntityId, l *LightComponent, tr *TransformComponent) bool {
		if hidden(cmd, eid, tr) {
			return true
		}
		fl := FrameLight{Type: l.Type, Radiance: l.Color.Mul(l.Intensity), Position: tr.Position, Range: l.Range, entity: eid}
		if l.Type == LightTypeDirectional {
			dir := tr.Position.Sub(mgl32.Vec3(l.Target))
			if dir.Len() > 0 {
				fl.Direction = dir.Normalize()
			} else {
				fl.Direction = mgl32.Vec3{0, 1, 0}
			}
		}
		f.Lights = append(f.Lights, fl)
		return true
	})
	slices.SortFunc(f.Lights, func(a, b FrameLight) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.entity, b.entity))
	})
	return f, nil
}

// hidden reports whether the entity or any of its ancestors is hidden.
func hidden(cmd *Commands, eid EntityId, tr *TransformComponent) bool {
	if tr.Hidden {
		return true
	}
	seen := 0
	for {
		p, ok := GetComponent[Parent](cmd, eid)
		if !ok || seen > 64 {
			return false
		}
		ptr, ok := GetComponent[TransformComponent](cmd, p.Entity)
		if !ok {
			return false
		}
		if ptr.Hidden {
			return true
		}
		eid = p.Entity
		seen++
	}
}

func jointMatrices(cmd *Commands, skin *SkinComponent) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, len(skin.Joints))
	for i, j := range skin.Joints {
		world := mgl32.Ident4()
		if tr, ok := GetComponent[TransformComponent](cmd, j); ok {
			world = tr.Matrix()
		}
		inv := mgl32.Ident4()
		if i < len(skin.InverseBind) {
			inv = skin.InverseBind[i]
		}
		out[i] = world.Mul4(inv)
	}
	return out
}
