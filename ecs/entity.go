package ecs

// Entity is a light value type wrapping an EntitySystem reference and an
// EntityId, so application code can carry "an entity" around without
// threading the EntitySystem pointer through every call site (spec §6).
// Equality is equality of the underlying id; two Entity values for the
// same system and id are interchangeable.
type Entity struct {
	system *EntitySystem
	id     EntityId
}

// WrapEntity pairs an EntityId with the system that owns it.
func WrapEntity(es *EntitySystem, id EntityId) Entity {
	return Entity{system: es, id: id}
}

// Spawn creates a fresh entity on es and returns it already wrapped.
func Spawn(es *EntitySystem) Entity {
	return WrapEntity(es, es.CreateEntity())
}

// Id returns the wrapped EntityId.
func (e Entity) Id() EntityId { return e.id }

// System returns the EntitySystem this Entity belongs to.
func (e Entity) System() *EntitySystem { return e.system }

// IsAlive reports whether the wrapped id still names a live entity.
func (e Entity) IsAlive() bool { return e.system.IsAliveEntity(e.id) }

// Destroy destroys the wrapped entity.
func (e Entity) Destroy() { e.system.DestroyEntity(e.id) }

// Equal reports whether e and other name the same id. Two Entity values
// for different systems but the same numeric id are still Equal, by
// design: id equality is the contract, not system identity.
func (e Entity) Equal(other Entity) bool { return e.id == other.id }

// AddComponent creates a component of type T from value, attaches it to
// e, and returns a live handle to it.
func AddComponent[T any](e Entity, value T) ComponentHandle[T] {
	cid := CreateComponent(e.system, value)
	e.system.AttachComponent(cid, e.id, true)
	return GetComponent[T](e.system, cid)
}

// GetComponentOf resolves e's component of type T, or an empty handle if
// it has none.
func GetComponentOf[T any](e Entity) ComponentHandle[T] {
	return GetComponentForEntity[T](e.system, e.id)
}

// HasComponentOf reports whether e currently has a component of type T.
func HasComponentOf[T any](e Entity) bool {
	return HasComponent[T](e.system, e.id)
}
