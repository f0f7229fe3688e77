package ecs

// Resource gives cheap, always-current access to a single component
// instance that is never attached to any entity — global state,
// configuration, shared caches. Not part of the spec's hard core; carried
// forward as the ambient singleton-access layer the teacher's systems
// expect (see DESIGN.md).
//
// Grounded on the teacher's singleton.go Singleton[T] (same Init-by-
// reflection contract so Scheduler.Register can wire it into a System
// struct field), rebuilt on top of
// CreateComponent/ComponentHandle instead of a bespoke singleton table
// since the id-keyed pool already gives a stable, non-relocating slot.
type Resource[T any] struct {
	es  *EntitySystem
	cid ComponentId
}

// NewResource creates a Resource backed by a fresh, unattached component
// on es, seeded from initializer if given or T's zero value otherwise.
func NewResource[T any](es *EntitySystem, initializer ...T) *Resource[T] {
	var value T
	if len(initializer) > 0 {
		value = initializer[0]
	}
	return &Resource[T]{es: es, cid: CreateComponent(es, value)}
}

// Init binds the Resource to es, creating its backing component if one
// does not already exist. Called automatically by Scheduler.Register for
// Resource[T] fields on a registered System.
func (r *Resource[T]) Init(es *EntitySystem) {
	r.es = es
	if r.cid.IsNone() || !es.IsAliveComponent(r.cid) {
		var zero T
		r.cid = CreateComponent(es, zero)
	}
}

// Get returns a pointer to the resource's current value, or nil if Init
// has not yet bound this Resource to a system.
func (r *Resource[T]) Get() *T {
	if r.es == nil {
		return nil
	}
	h := GetComponent[T](r.es, r.cid)
	if h.Empty() || !h.IsAlive() {
		h.Release()
		return nil
	}
	ptr := h.Get()
	h.Release()
	return ptr
}

// Exists reports whether the resource's backing component is still alive.
func (r *Resource[T]) Exists() bool {
	return r.es != nil && r.es.IsAliveComponent(r.cid)
}
