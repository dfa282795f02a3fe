// Package exercises contains the scenes scenekit can run, each expressed as a
// scenekit.Harness.
package exercises

import (
	"errors"
	"fmt"

	"github.com/gekko3d/scenekit"
)

var ErrUnknownExercise = errors.New("unknown exercise")

var registry = []func() scenekit.Harness{
	BasicScene,
	Animations,
	Cameras,
	Text,
	Particles,
	ImportedModels,
}

// All returns fresh harnesses for every exercise in order.
func All() []scenekit.Harness {
	out := make([]scenekit.Harness, 0, len(registry))
	for _, mk := range registry {
		out = append(out, mk())
	}
	return out
}

// Lookup returns a fresh harness for the named exercise.
func Lookup(name string) (scenekit.Harness, error) {
	for _, mk := range registry {
		if h := mk(); h.Name == name {
			return h, nil
		}
	}
	return scenekit.Harness{}, fmt.Errorf("%q: %w", name, ErrUnknownExercise)
}

// addMesh spawns an entity drawing geometry g with material mat.
func addMesh(cmd *scenekit.Commands, g scenekit.AssetId, mat scenekit.AssetId, tr scenekit.TransformComponent) scenekit.EntityId {
	return cmd.AddEntity(&tr, &scenekit.MeshComponent{Geometry: g, Material: mat})
}
