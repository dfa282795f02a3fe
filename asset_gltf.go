package scenekit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gekko3d/scenekit/anim"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/gekko3d/scenekit/raster"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Model is a decoded glTF scene ready to be spawned any number of times.
type Model struct {
	Name      string
	Nodes     []ModelNode
	Roots     []int
	Meshes    [][]ModelPrimitive
	Materials []ModelMaterial
	Skins     []ModelSkin
	Clips     []*anim.Clip

	// Asset ids assigned by RegisterModel.
	registered  bool
	geometryIds [][]AssetId
	materialIds []AssetId
	defaultMat  AssetId
}

type ModelNode struct {
	Name     string
	Parent   int
	Children []int
	Rest     anim.Pose
	Mesh     int
	Skin     int
}

type ModelPrimitive struct {
	Geometry *geometry.BufferGeometry
	Material int
}

type ModelMaterial struct {
	Name        string
	Color       Color
	Opacity     float32
	Metalness   float32
	Roughness   float32
	Texture     image.Image
	DoubleSided bool
}

type ModelSkin struct {
	Joints      []int
	InverseBind []mgl32.Mat4
}

// ReadModel decodes a .gltf or .glb file. External buffers and images are
// resolved relative to the file.
func ReadModel(path string) (*Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return modelFromDocument(doc, filepath.Dir(path), filepath.Base(path))
}

// DecodeModel decodes a self-contained document (embedded or data-URI buffers).
func DecodeModel(data []byte, name string) (*Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return modelFromDocument(doc, "", name)
}

func modelFromDocument(doc *gltf.Document, dir, name string) (*Model, error) {
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m := &Model{Name: name}

	images := make([]image.Image, len(doc.Images))
	for i, img := range doc.Images {
		decoded, err := readImage(doc, img, dir)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		images[i] = decoded
	}

	for _, mat := range doc.Materials {
		mm := ModelMaterial{Name: mat.Name, Color: Color{1, 1, 1}, Opacity: 1, Metalness: 1, Roughness: 1, DoubleSided: mat.DoubleSided}
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			mm.Color = Color{float32(c[0]), float32(c[1]), float32(c[2])}
			mm.Opacity = float32(c[3])
			mm.Metalness = float32(pbr.MetallicFactorOrDefault())
			mm.Roughness = float32(pbr.RoughnessFactorOrDefault())
			if ti := pbr.BaseColorTexture; ti != nil && ti.Index < len(doc.Textures) {
				if src := doc.Textures[ti.Index].Source; src != nil && *src < len(images) {
					mm.Texture = images[*src]
				}
			}
		}
		m.Materials = append(m.Materials, mm)
	}

	for mi, mesh := range doc.Meshes {
		var prims []ModelPrimitive
		for pi, p := range mesh.Primitives {
			g, err := readPrimitive(doc, p)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			mat := -1
			if p.Material != nil {
				mat = *p.Material
			}
			prims = append(prims, ModelPrimitive{Geometry: g, Material: mat})
		}
		m.Meshes = append(m.Meshes, prims)
	}

	m.Nodes = make([]ModelNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		node := ModelNode{Name: n.Name, Parent: -1, Children: n.Children, Mesh: -1, Skin: -1, Rest: nodePose(n)}
		if n.Mesh != nil {
			node.Mesh = *n.Mesh
		}
		if n.Skin != nil {
			node.Skin = *n.Skin
		}
		m.Nodes[i] = node
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if p := m.Nodes[c].Parent; p >= 0 {
				return nil, fmt.Errorf("node %d is a child of both %d and %d: %w", c, p, i, ErrUnsupportedFormat)
			}
			m.Nodes[c].Parent = i
		}
	}
	if err := checkAcyclic(m.Nodes); err != nil {
		return nil, err
	}
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		m.Roots = doc.Scenes[*doc.Scene].Nodes
	} else if len(doc.Scenes) > 0 {
		m.Roots = doc.Scenes[0].Nodes
	} else {
		for i, n := range m.Nodes {
			if n.Parent < 0 {
				m.Roots = append(m.Roots, i)
			}
		}
	}

	for si, s := range doc.Skins {
		skin := ModelSkin{Joints: s.Joints}
		if s.InverseBindMatrices != nil {
			data, err := modeler.ReadAccessor(doc, doc.Accessors[*s.InverseBindMatrices], nil)
			if err != nil {
				return nil, fmt.Errorf("skin %d: %w", si, err)
			}
			mats, ok := data.([][4][4]float32)
			if !ok {
				return nil, fmt.Errorf("skin %d inverse bind matrices: %w", si, ErrUnsupportedFormat)
			}
			for _, mm := range mats {
				var out mgl32.Mat4
				for c := 0; c < 4; c++ {
					for r := 0; r < 4; r++ {
						out[c*4+r] = mm[c][r]
					}
				}
				skin.InverseBind = append(skin.InverseBind, out)
			}
		}
		for len(skin.InverseBind) < len(skin.Joints) {
			skin.InverseBind = append(skin.InverseBind, mgl32.Ident4())
		}
		m.Skins = append(m.Skins, skin)
	}

	for ai, a := range doc.Animations {
		clip, err := readAnimation(doc, a, ai)
		if err != nil {
			return nil, err
		}
		m.Clips = append(m.Clips, clip)
	}
	return m, nil
}

type indexChecker struct {
	err error
}

func (c *indexChecker) check(idx, n int, what string, args ...any) {
	if c.err != nil || (idx >= 0 && idx < n) {
		return
	}
	c.err = fmt.Errorf("%s index %d out of range [0, %d): %w", fmt.Sprintf(what, args...), idx, n, ErrUnsupportedFormat)
}

func (c *indexChecker) checkPtr(idx *int, n int, what string, args ...any) {
	if idx != nil {
		c.check(*idx, n, what, args...)
	}
}

// validateDocument checks every index the document uses before anything
// dereferences it. Buffer contents are checked later by the accessor readers.
func validateDocument(doc *gltf.Document) error {
	var c indexChecker
	nAcc, nView, nBuf := len(doc.Accessors), len(doc.BufferViews), len(doc.Buffers)
	nNodes := len(doc.Nodes)

	if err := noNils(doc); err != nil {
		return err
	}
	c.checkPtr(doc.Scene, len(doc.Scenes), "default scene")

	for i, bv := range doc.BufferViews {
		c.check(bv.Buffer, nBuf, "buffer view %d: buffer", i)
	}
	for i, acc := range doc.Accessors {
		if acc.BufferView != nil {
			c.check(*acc.BufferView, nView, "accessor %d: buffer view", i)
			if c.err == nil && acc.ByteOffset > doc.BufferViews[*acc.BufferView].ByteLength {
				c.err = fmt.Errorf("accessor %d: byte offset %d past its buffer view: %w", i, acc.ByteOffset, ErrUnsupportedFormat)
			}
		}
		if sp := acc.Sparse; sp != nil {
			c.check(sp.Indices.BufferView, nView, "accessor %d sparse indices: buffer view", i)
			c.check(sp.Values.BufferView, nView, "accessor %d sparse values: buffer view", i)
		}
	}
	for i, img := range doc.Images {
		c.checkPtr(img.BufferView, nView, "image %d: buffer view", i)
	}
	for i, tex := range doc.Textures {
		c.checkPtr(tex.Source, len(doc.Images), "texture %d: source", i)
		c.checkPtr(tex.Sampler, len(doc.Samplers), "texture %d: sampler", i)
	}
	for i, mat := range doc.Materials {
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			c.check(pbr.BaseColorTexture.Index, len(doc.Textures), "material %d: base color texture", i)
		}
	}
	for mi, mesh := range doc.Meshes {
		for pi, p := range mesh.Primitives {
			for attr, idx := range p.Attributes {
				c.check(idx, nAcc, "mesh %d primitive %d %s: accessor", mi, pi, attr)
			}
			c.checkPtr(p.Indices, nAcc, "mesh %d primitive %d indices: accessor", mi, pi)
			c.checkPtr(p.Material, len(doc.Materials), "mesh %d primitive %d: material", mi, pi)
		}
	}
	for i, n := range doc.Nodes {
		c.checkPtr(n.Mesh, len(doc.Meshes), "node %d: mesh", i)
		c.checkPtr(n.Skin, len(doc.Skins), "node %d: skin", i)
		for _, child := range n.Children {
			c.check(child, nNodes, "node %d: child", i)
		}
	}
	for i, sc := range doc.Scenes {
		for _, root := range sc.Nodes {
			c.check(root, nNodes, "scene %d: node", i)
		}
	}
	for i, sk := range doc.Skins {
		c.checkPtr(sk.InverseBindMatrices, nAcc, "skin %d inverse bind matrices: accessor", i)
		c.checkPtr(sk.Skeleton, nNodes, "skin %d: skeleton", i)
		for _, j := range sk.Joints {
			c.check(j, nNodes, "skin %d: joint", i)
		}
	}
	for ai, a := range doc.Animations {
		for si, s := range a.Samplers {
			c.check(s.Input, nAcc, "animation %d sampler %d input: accessor", ai, si)
			c.check(s.Output, nAcc, "animation %d sampler %d output: accessor", ai, si)
		}
		for ci, ch := range a.Channels {
			c.check(ch.Sampler, len(a.Samplers), "animation %d channel %d: sampler", ai, ci)
			c.checkPtr(ch.Target.Node, nNodes, "animation %d channel %d: target node", ai, ci)
		}
	}
	return c.err
}

func firstNil[T any](items []*T) int {
	return slices.Index(items, nil)
}

// noNils rejects null entries in the top-level arrays, e.g. "nodes": [null].
func noNils(doc *gltf.Document) error {
	for what, i := range map[string]int{
		"accessor":    firstNil(doc.Accessors),
		"buffer":      firstNil(doc.Buffers),
		"buffer view": firstNil(doc.BufferViews),
		"image":       firstNil(doc.Images),
		"texture":     firstNil(doc.Textures),
		"material":    firstNil(doc.Materials),
		"mesh":        firstNil(doc.Meshes),
		"node":        firstNil(doc.Nodes),
		"scene":       firstNil(doc.Scenes),
		"skin":        firstNil(doc.Skins),
		"animation":   firstNil(doc.Animations),
	} {
		if i >= 0 {
			return fmt.Errorf("%s %d is null: %w", what, i, ErrUnsupportedFormat)
		}
	}
	for mi, mesh := range doc.Meshes {
		if i := firstNil(mesh.Primitives); i >= 0 {
			return fmt.Errorf("mesh %d primitive %d is null: %w", mi, i, ErrUnsupportedFormat)
		}
	}
	for ai, a := range doc.Animations {
		if firstNil(a.Channels) >= 0 || firstNil(a.Samplers) >= 0 {
			return fmt.Errorf("animation %d has a null channel or sampler: %w", ai, ErrUnsupportedFormat)
		}
	}
	return nil
}

// checkAcyclic walks parent links from every node; with single parents, a
// walk longer than the node count means a cycle.
func checkAcyclic(nodes []ModelNode) error {
	for i := range nodes {
		steps := 0
		for p := nodes[i].Parent; p >= 0; p = nodes[p].Parent {
			if steps++; steps > len(nodes) {
				return fmt.Errorf("node %d: hierarchy has a cycle: %w", i, ErrUnsupportedFormat)
			}
		}
	}
	return nil
}

func nodePose(n *gltf.Node) anim.Pose {
	if n.Matrix != [16]float64{} && n.Matrix != gltf.DefaultMatrix {
		var mat mgl32.Mat4
		for i, v := range n.Matrix {
			mat[i] = float32(v)
		}
		return decompose(mat)
	}
	t, r, s := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	return anim.Pose{
		Translation: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation:    mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize(),
		Scale:       mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

func decompose(m mgl32.Mat4) anim.Pose {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	rot := mgl32.Mat3FromCols(
		m.Col(0).Vec3().Mul(1/sx),
		m.Col(1).Vec3().Mul(1/sy),
		m.Col(2).Vec3().Mul(1/sz),
	)
	return anim.Pose{
		Translation: m.Col(3).Vec3(),
		Rotation:    mgl32.Mat4ToQuat(rot.Mat4()).Normalize(),
		Scale:       mgl32.Vec3{sx, sy, sz},
	}
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive) (*geometry.BufferGeometry, error) {
	if p.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("primitive mode %v: %w", p.Mode, ErrUnsupportedFormat)
	}
	g := &geometry.BufferGeometry{}
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("missing %s", gltf.POSITION)
	}
	pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	for _, v := range pos {
		g.Positions = append(g.Positions, mgl32.Vec3(v))
	}
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		for _, v := range normals {
			g.Normals = append(g.Normals, mgl32.Vec3(v))
		}
	}
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
		for _, v := range uvs {
			g.UVs = append(g.UVs, mgl32.Vec2(v))
		}
	}
	if idx, ok := p.Attributes[gltf.COLOR_0]; ok {
		colors, err := modeler.ReadAccessor(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("colors: %w", err)
		}
		switch c := colors.(type) {
		case [][3]float32:
			for _, v := range c {
				g.Colors = append(g.Colors, mgl32.Vec3(v))
			}
		case [][4]float32:
			for _, v := range c {
				g.Colors = append(g.Colors, mgl32.Vec3{v[0], v[1], v[2]})
			}
		}
	}
	if idx, ok := p.Attributes[gltf.JOINTS_0]; ok {
		joints, err := modeler.ReadJoints(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("joints: %w", err)
		}
		g.Joints = joints
	}
	if idx, ok := p.Attributes[gltf.WEIGHTS_0]; ok {
		weights, err := modeler.ReadWeights(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
		for _, v := range weights {
			g.Weights = append(g.Weights, mgl32.Vec4(v))
		}
	}
	if p.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		g.Indices = indices
	}
	if len(g.Normals) != len(g.Positions) {
		g.ComputeVertexNormals()
	}
	return g, nil
}

func readAnimation(doc *gltf.Document, a *gltf.Animation, index int) (*anim.Clip, error) {
	var tracks []anim.Track
	for ci, ch := range a.Channels {
		if ch.Target.Node == nil {
			continue
		}
		s := a.Samplers[ch.Sampler]
		tr := anim.Track{Target: *ch.Target.Node}
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			tr.Path = anim.PathTranslation
		case gltf.TRSRotation:
			tr.Path = anim.PathRotation
		case gltf.TRSScale:
			tr.Path = anim.PathScale
		default:
			// morph target weights are not animated
			continue
		}
		switch s.Interpolation {
		case gltf.InterpolationStep:
			tr.Interpolation = anim.InterpolationStep
		case gltf.InterpolationCubicSpline:
			tr.Interpolation = anim.InterpolationCubicSpline
		default:
			tr.Interpolation = anim.InterpolationLinear
		}

		in, err := modeler.ReadAccessor(doc, doc.Accessors[s.Input], nil)
		if err != nil {
			return nil, fmt.Errorf("animation %d channel %d input: %w", index, ci, err)
		}
		times, ok := in.([]float32)
		if !ok {
			return nil, fmt.Errorf("animation %d channel %d input: %w", index, ci, ErrUnsupportedFormat)
		}
		tr.Times = times

		out, err := modeler.ReadAccessor(doc, doc.Accessors[s.Output], nil)
		if err != nil {
			return nil, fmt.Errorf("animation %d channel %d output: %w", index, ci, err)
		}
		switch v := out.(type) {
		case [][3]float32:
			for _, e := range v {
				tr.Values = append(tr.Values, e[:]...)
			}
		case [][4]float32:
			for _, e := range v {
				tr.Values = append(tr.Values, e[:]...)
			}
		default:
			return nil, fmt.Errorf("animation %d channel %d output %T: %w", index, ci, out, ErrUnsupportedFormat)
		}
		tracks = append(tracks, tr)
	}
	name := a.Name
	if name == "" {
		name = fmt.Sprintf("animation%d", index)
	}
	return anim.NewClip(name, tracks), nil
}

func readImage(doc *gltf.Document, img *gltf.Image, dir string) (image.Image, error) {
	var data []byte
	var err error
	switch {
	case img.BufferView != nil:
		data, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		data, err = img.MarshalData()
	case img.URI != "":
		data, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(img.URI)))
	default:
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return decoded, nil
}

// RegisterModel adds the model's geometries, materials and textures to server.
// It is idempotent.
func RegisterModel(server *AssetServer, m *Model) {
	if m.registered {
		return
	}
	m.registered = true
	for _, mm := range m.Materials {
		mat := NewStandardMaterial(mm.Color, mm.Metalness, mm.Roughness)
		mat.Opacity = mm.Opacity
		mat.Transparent = mm.Opacity < 1
		if mm.DoubleSided {
			mat.Side = DoubleSide
		}
		if mm.Texture != nil {
			tex := raster.NewTexture(mm.Texture)
			tex.FlipY = false
			tex.Wrap = raster.WrapRepeat
			mat.Map = server.AddTexture(tex)
		}
		m.materialIds = append(m.materialIds, server.AddMaterial(mat))
	}
	m.defaultMat = server.AddMaterial(NewStandardMaterial(Color{1, 1, 1}, 0, 1))
	for _, prims := range m.Meshes {
		var ids []AssetId
		for _, p := range prims {
			ids = append(ids, server.AddGeometry(p.Geometry))
		}
		m.geometryIds = append(m.geometryIds, ids)
	}
}

// LoadModel decodes name in the background and registers it on completion.
// The returned id reports ErrNotLoaded from Model until the load is applied.
func (server *AssetServer) LoadModel(q *LoadQueue, name string, h LoadHandlers[*Model]) (AssetId, *Future[*Model]) {
	path := server.Path(name)
	id := server.ReserveId()
	server.markLoading(id)

	onLoad, onError := h.OnLoad, h.OnError
	h.OnLoad = func(cmd *Commands, m *Model) {
		RegisterModel(server, m)
		server.setModel(id, m)
		if onLoad != nil {
			onLoad(cmd, m)
		}
	}
	h.OnError = func(cmd *Commands, err error) {
		server.setModel(id, nil)
		if onError != nil {
			onError(cmd, err)
		}
	}
	return id, LoadAsync(q, path, func(ctx context.Context) (*Model, error) {
		return ReadModel(path)
	}, h)
}

// SpawnedModel maps the model's node indices to the entities created for them.
type SpawnedModel struct {
	Root  EntityId
	Nodes map[int]EntityId
}

// SpawnModel instantiates every node of m under a new root entity. The model
// must have been registered with server.
func SpawnModel(cmd *Commands, server *AssetServer, m *Model, root TransformComponent) SpawnedModel {
	RegisterModel(server, m)
	sp := SpawnedModel{Nodes: make(map[int]EntityId, len(m.Nodes))}
	sp.Root = cmd.AddEntity(&root, &Name{Value: m.Name})

	var spawn func(idx int, parent EntityId)
	spawn = func(idx int, parent EntityId) {
		n := m.Nodes[idx]
		local := LocalTransformComponent{Position: n.Rest.Translation, Rotation: n.Rest.Rotation, Scale: n.Rest.Scale}
		world := NewTransform(mgl32.Vec3{})
		eid := cmd.AddEntity(&local, &world, &Parent{Entity: parent}, &Name{Value: n.Name})
		sp.Nodes[idx] = eid
		for _, c := range n.Children {
			spawn(c, eid)
		}
	}
	for _, r := range m.Roots {
		spawn(r, sp.Root)
	}

	for idx, n := range m.Nodes {
		eid, ok := sp.Nodes[idx]
		if !ok || n.Mesh < 0 || n.Mesh >= len(m.Meshes) {
			continue
		}
		var skin *SkinComponent
		if n.Skin >= 0 && n.Skin < len(m.Skins) {
			s := m.Skins[n.Skin]
			skin = &SkinComponent{InverseBind: s.InverseBind}
			for _, j := range s.Joints {
				skin.Joints = append(skin.Joints, sp.Nodes[j])
			}
		}
		for pi, p := range m.Meshes[n.Mesh] {
			mat := m.defaultMat
			if p.Material >= 0 && p.Material < len(m.materialIds) {
				mat = m.materialIds[p.Material]
			}
			comps := []any{
				&MeshComponent{Geometry: m.geometryIds[n.Mesh][pi], Material: mat},
				&Parent{Entity: eid},
				&LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
				&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
			}
			if skin != nil {
				comps = append(comps, skin)
			}
			cmd.AddEntity(comps...)
		}
	}
	return sp
}
