package scenekit

import (
	"cmp"
	"slices"
)

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

type hierarchyNode struct {
	eid    EntityId
	parent EntityId
	depth  int
}

// TransformHierarchySystem derives world transforms of parented entities,
// parents before children. A child whose parent has been removed keeps its
// last world transform.
func TransformHierarchySystem(cmd *Commands) {
	parents := map[EntityId]EntityId{}
	MakeQuery2[Parent, LocalTransformComponent](cmd).Map(func(eid EntityId, parent *Parent, _ *LocalTransformComponent) bool {
		parents[eid] = parent.Entity
		return true
	})
	if len(parents) == 0 {
		return
	}

	nodes := make([]hierarchyNode, 0, len(parents))
	for eid, parent := range parents {
		depth := 1
		for p, ok := parents[parent]; ok && depth <= len(parents); p, ok = parents[p] {
			depth++
		}
		nodes = append(nodes, hierarchyNode{eid: eid, parent: parent, depth: depth})
	}
	slices.SortFunc(nodes, func(a, b hierarchyNode) int {
		if a.depth != b.depth {
			return a.depth - b.depth
		}
		return cmp.Compare(a.eid, b.eid)
	})

	for _, n := range nodes {
		parentWorld, ok := GetComponent[TransformComponent](cmd, n.parent)
		if !ok {
			continue
		}
		local, ok := GetComponent[LocalTransformComponent](cmd, n.eid)
		if !ok {
			continue
		}
		world, ok := GetComponent[TransformComponent](cmd, n.eid)
		if !ok {
			continue
		}
		propagate(parentWorld, local, world)
	}
}
