package scenekit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worldOf(t *testing.T, cmd *Commands, eid EntityId) TransformComponent {
	t.Helper()
	tr, ok := GetComponent[TransformComponent](cmd, eid)
	require.True(t, ok)
	return *tr
}

func TestTransformHierarchy(t *testing.T) {
	app := NewApp()
	app.UseModules(HierarchyModule{})
	cmd := app.Commands()

	parent := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	child := cmd.AddEntity(
		&Parent{Entity: parent},
		ptr(NewLocalTransform(mgl32.Vec3{0, 5, 0})),
		&TransformComponent{},
	)
	grandchild := cmd.AddEntity(
		&Parent{Entity: child},
		ptr(NewLocalTransform(mgl32.Vec3{0, 0, 2})),
		&TransformComponent{},
	)
	app.FlushCommands()

	TransformHierarchySystem(cmd)
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, worldOf(t, cmd, child).Position)
	assert.Equal(t, mgl32.Vec3{10, 5, 2}, worldOf(t, cmd, grandchild).Position)

	// parent rotated 90 degrees about Y, child offset along X
	pt, _ := GetComponent[TransformComponent](cmd, parent)
	pt.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	lt, _ := GetComponent[LocalTransformComponent](cmd, child)
	lt.Position = mgl32.Vec3{5, 0, 0}

	TransformHierarchySystem(cmd)
	got := worldOf(t, cmd, child).Position
	assert.InDelta(t, 0, got.Sub(mgl32.Vec3{10, 0, -5}).Len(), 1e-3)
}

func TestTransformHierarchy_ScalePropagates(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	parent := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{2, 2, -1},
	})
	child := cmd.AddEntity(&Parent{Entity: parent}, ptr(NewLocalTransform(mgl32.Vec3{1, 1, 1})), &TransformComponent{})
	app.FlushCommands()

	TransformHierarchySystem(cmd)
	w := worldOf(t, cmd, child)
	assert.Equal(t, mgl32.Vec3{2, 2, -1}, w.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, -1}, w.Scale)
}

func TestTransformHierarchy_OrphanKeepsLastTransform(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	parent := cmd.AddEntity(ptr(NewTransform(mgl32.Vec3{3, 0, 0})))
	child := cmd.AddEntity(&Parent{Entity: parent}, ptr(NewLocalTransform(mgl32.Vec3{1, 0, 0})), &TransformComponent{})
	app.FlushCommands()
	TransformHierarchySystem(cmd)

	cmd.RemoveEntity(parent)
	app.FlushCommands()
	TransformHierarchySystem(cmd)

	assert.Equal(t, mgl32.Vec3{4, 0, 0}, worldOf(t, cmd, child).Position)
}

func TestEulerXYZ_ZeroIsIdentity(t *testing.T) {
	assert.True(t, EulerXYZ(0, 0, 0).ApproxEqual(mgl32.QuatIdent()))
	tr := TransformComponent{Position: mgl32.Vec3{1, 2, 3}, Scale: mgl32.Vec3{1, 1, 1}}
	assert.True(t, tr.Matrix().ApproxEqual(mgl32.Translate3D(1, 2, 3)), "zero rotation reads as identity")
}

func ptr[T any](v T) *T { return &v }
