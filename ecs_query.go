package scenekit

import (
	"reflect"
	"slices"
)

// Queries visit every entity whose archetype holds all of the requested components.
// Components listed as optionals may be missing; the callback then receives nil for them.
// Returning false from the callback stops the iteration.
type Query1[A any] struct{ q queryBase }
type Query2[A, B any] struct{ q queryBase }
type Query3[A, B, C any] struct{ q queryBase }
type Query4[A, B, C, D any] struct{ q queryBase }
type Query5[A, B, C, D, E any] struct{ q queryBase }

type queryBase struct {
	ecs     *Ecs
	without []any
}

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{queryBase{ecs: cmd.app.ecs}} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{queryBase{ecs: cmd.app.ecs}}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{queryBase{ecs: cmd.app.ecs}}
}
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{queryBase{ecs: cmd.app.ecs}}
}
func MakeQuery5[A, B, C, D, E any](cmd *Commands) Query5[A, B, C, D, E] {
	return Query5[A, B, C, D, E]{queryBase{ecs: cmd.app.ecs}}
}

// Without excludes archetypes holding any of the given component types.
func (q Query1[A]) Without(types ...any) Query1[A] { q.q = q.q.exclude(types); return q }
func (q Query2[A, B]) Without(types ...any) Query2[A, B] {
	q.q = q.q.exclude(types)
	return q
}
func (q Query3[A, B, C]) Without(types ...any) Query3[A, B, C] {
	q.q = q.q.exclude(types)
	return q
}

func (q queryBase) exclude(types []any) queryBase {
	return queryBase{ecs: q.ecs, without: append(slices.Clone(q.without), types...)}
}

func (q queryBase) excluded(arch *archetype) bool {
	for _, t := range q.without {
		if _, ok := arch.componentData[q.ecs.getComponentId(componentType(t))]; ok {
			return true
		}
	}
	return false
}

// column resolves the typed storage of T in arch. ok is false when the archetype does not match.
func column[T any](ecs *Ecs, arch *archetype, opt set[componentId]) (data []T, ok bool) {
	var zero T
	id := ecs.getComponentId(reflect.TypeOf(zero))
	if raw, found := arch.componentData[id]; found {
		return raw.([]T), true
	}
	if _, optional := opt[id]; optional {
		return nil, true
	}
	return nil, false
}

func at[T any](data []T, r row) *T {
	if data == nil {
		return nil
	}
	return &data[r]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	opt := identifyOptionals(q.q.ecs, optionals...)
	for _, arch := range q.q.ecs.archetypes {
		if q.q.excluded(arch) {
			continue
		}
		a, ok := column[A](q.q.ecs, arch, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(a, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	opt := identifyOptionals(q.q.ecs, optionals...)
	for _, arch := range q.q.ecs.archetypes {
		if q.q.excluded(arch) {
			continue
		}
		a, okA := column[A](q.q.ecs, arch, opt)
		b, okB := column[B](q.q.ecs, arch, opt)
		if !okA || !okB {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(a, r), at(b, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	opt := identifyOptionals(q.q.ecs, optionals...)
	for _, arch := range q.q.ecs.archetypes {
		if q.q.excluded(arch) {
			continue
		}
		a, okA := column[A](q.q.ecs, arch, opt)
		b, okB := column[B](q.q.ecs, arch, opt)
		c, okC := column[C](q.q.ecs, arch, opt)
		if !okA || !okB || !okC {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(a, r), at(b, r), at(c, r)) {
				return
			}
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	opt := identifyOptionals(q.q.ecs, optionals...)
	for _, arch := range q.q.ecs.archetypes {
		if q.q.excluded(arch) {
			continue
		}
		a, okA := column[A](q.q.ecs, arch, opt)
		b, okB := column[B](q.q.ecs, arch, opt)
		c, okC := column[C](q.q.ecs, arch, opt)
		d, okD := column[D](q.q.ecs, arch, opt)
		if !okA || !okB || !okC || !okD {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(a, r), at(b, r), at(c, r), at(d, r)) {
				return
			}
		}
	}
}

func (q Query5[A, B, C, D, E]) Map(m func(EntityId, *A, *B, *C, *D, *E) bool, optionals ...any) {
	opt := identifyOptionals(q.q.ecs, optionals...)
	for _, arch := range q.q.ecs.archetypes {
		if q.q.excluded(arch) {
			continue
		}
		a, okA := column[A](q.q.ecs, arch, opt)
		b, okB := column[B](q.q.ecs, arch, opt)
		c, okC := column[C](q.q.ecs, arch, opt)
		d, okD := column[D](q.q.ecs, arch, opt)
		e, okE := column[E](q.q.ecs, arch, opt)
		if !okA || !okB || !okC || !okD || !okE {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(a, r), at(b, r), at(c, r), at(d, r), at(e, r)) {
				return
			}
		}
	}
}

// Entities returns the matching entity ids in ascending order. Systems whose
// output depends on visiting order iterate this instead of Map.
func (q Query1[A]) Entities() []EntityId {
	var ids []EntityId
	q.Map(func(eid EntityId, _ *A) bool {
		ids = append(ids, eid)
		return true
	})
	slices.Sort(ids)
	return ids
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}
