package scenekit

type opKind uint8

const (
	opSpawn opKind = iota
	opDespawn
	opInsert
	opStrip
)

type queuedOp struct {
	kind       opKind
	eid        EntityId
	components []any
}

// Commands is the handle systems use to mutate the world. Structural changes are
// queued and applied in order when the current stage finishes. Reads see the
// world as of the last flush.
type Commands struct {
	app *App
}

func (cmd *Commands) App() *App { return cmd.app }

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// AddResources registers resources immediately.
func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) queue(kind opKind, eid EntityId, components []any) {
	cmd.app.queued = append(cmd.app.queued, queuedOp{kind: kind, eid: eid, components: components})
}

// AddEntity reserves an id now; the entity exists after the next flush.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.queue(opSpawn, eid, components)
	return eid
}

func (cmd *Commands) AddComponents(eid EntityId, components ...any) {
	cmd.queue(opInsert, eid, components)
}

func (cmd *Commands) RemoveComponents(eid EntityId, components ...any) {
	cmd.queue(opStrip, eid, components)
}

func (cmd *Commands) RemoveEntity(eid EntityId) {
	cmd.queue(opDespawn, eid, nil)
}

func (cmd *Commands) Exists(eid EntityId) bool {
	return cmd.app.ecs.hasEntity(eid)
}

// GetAllComponents copies out every component of eid in component-id order.
func (cmd *Commands) GetAllComponents(eid EntityId) []any {
	w := cmd.app.ecs
	archId, ok := w.entityIndex[eid]
	if !ok {
		return nil
	}
	arch := w.archetypes[archId]
	r := int(arch.entities[eid])
	out := make([]any, len(arch.key))
	for i, compId := range arch.key {
		out[i] = reflectSliceGet(arch.componentData[compId], r).Interface()
	}
	return out
}

// GetComponent returns a live pointer into component storage. It is valid until
// the entity's archetype changes.
func GetComponent[T any](cmd *Commands, eid EntityId) (*T, bool) {
	return component[T](cmd.app.ecs, eid)
}
