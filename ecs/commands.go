package ecs

// Commands buffers ECS mutations raised while a view's forEach or a
// system is running, so they can be applied once the entity system is
// safe to mutate again (spec §5: "Mutations to the entity system from
// inside a parallel forEach are disallowed"). Queued operations run in
// enqueue order at Flush, against whichever entities/components still
// exist at that point — a Delete queued for an entity a later op also
// touches simply makes that later op a no-op, since every EntitySystem
// mutation is already silent on a stale id (spec §7).
//
// Grounded on the teacher's commands.go Commands, generalized from typed
// per-kind slices (spawns/adds/removes/defers) to a single ordered
// closure queue, since queuing a typed AddComponent[T]/RemoveComponent[T]
// here would otherwise need one slice per component type.
type Commands struct {
	ops []func(es *EntitySystem)
}

func newCommands() *Commands {
	return &Commands{}
}

// Defer queues an arbitrary function to run against the entity system at
// Flush.
func (c *Commands) Defer(fn func(es *EntitySystem)) {
	c.ops = append(c.ops, fn)
}

// Spawn queues the creation of a new entity. init, if given, runs against
// the live Entity immediately after creation, so callers can attach
// components to it with AddComponent[T].
func (c *Commands) Spawn(init func(Entity)) {
	c.ops = append(c.ops, func(es *EntitySystem) {
		e := Spawn(es)
		if init != nil {
			init(e)
		}
	})
}

// Delete queues an entity destruction.
func (c *Commands) Delete(entity EntityId) {
	c.ops = append(c.ops, func(es *EntitySystem) {
		es.DestroyEntity(entity)
	})
}

// QueueAddComponent queues attaching a fresh component of type T, built
// from value, to entity.
func QueueAddComponent[T any](c *Commands, entity EntityId, value T) {
	c.ops = append(c.ops, func(es *EntitySystem) {
		if !es.IsAliveEntity(entity) {
			return
		}
		cid := CreateComponent(es, value)
		es.AttachComponent(cid, entity, true)
	})
}

// QueueRemoveComponent queues destroying entity's component of type T, if
// it has one.
func QueueRemoveComponent[T any](c *Commands, entity EntityId) {
	c.ops = append(c.ops, func(es *EntitySystem) {
		if !HasComponent[T](es, entity) {
			return
		}
		h := GetComponentForEntity[T](es, entity)
		defer h.Release()
		if h.Empty() {
			return
		}
		es.DestroyComponent(h.Id())
	})
}

// Flush runs every queued operation against es, in enqueue order, then
// resets the buffer.
func (c *Commands) Flush(es *EntitySystem) {
	ops := c.ops
	c.ops = nil
	for _, op := range ops {
		op(es)
	}
}
