package ecs

// ComponentHandle is a ref-counted, aliveness-checking accessor to a
// pooled component (spec §4.4). Clone increments the slot's refcount,
// Release decrements it, and a plain Go assignment of the handle value
// does not touch the count. The decrement-to-zero case is a hint only:
// freeing the slot is always done by the EntitySystem, never by the
// handle itself.
//
// Grounded on the teacher's archetype.go EntityRef / weak.Pointer[EntityRef]
// idiom — the one place the teacher carries a "handle that must keep
// surviving storage reorganizations" concept — reworked from GC-observed
// weak references into an explicit atomic refcount (see DESIGN.md).
type ComponentHandle[T any] struct {
	pool  *pool[T]
	index int
	id    ComponentId
}

// GetComponent resolves a ComponentHandle for cid, incrementing its
// slot's refcount. If cid is stale (destroyed, generation mismatch, or
// names an unborn family) GetComponent returns an empty handle.
func GetComponent[T any](es *EntitySystem, cid ComponentId) ComponentHandle[T] {
	if cid.IsNone() {
		return ComponentHandle[T]{}
	}
	family := cid.Family()
	if int(family) >= len(es.pools) || es.pools[family] == nil {
		return ComponentHandle[T]{}
	}
	p, ok := es.pools[family].(*pool[T])
	if !ok {
		return ComponentHandle[T]{}
	}
	index := int(cid.Index())
	if index >= p.sizeOf() || !p.hasBit(index) || p.generationAt(index) != cid.Generation() {
		return ComponentHandle[T]{}
	}
	p.acquireAt(index)
	return ComponentHandle[T]{pool: p, index: index, id: cid}
}

// GetComponentForEntity resolves the family-T component attached to eid,
// or an empty handle if eid has none or is stale.
func GetComponentForEntity[T any](es *EntitySystem, eid EntityId) ComponentHandle[T] {
	family := familyFor[T](es.registry)
	rec := es.recordFor(eid)
	if rec == nil {
		return ComponentHandle[T]{}
	}
	cid := rec.componentFor(family)
	if cid.IsNone() {
		return ComponentHandle[T]{}
	}
	return GetComponent[T](es, cid)
}

// IsAlive reports whether the handle's slot is still the live slot it
// was acquired for. A dereference of a handle that is not alive is
// undefined; callers must check first.
func (h ComponentHandle[T]) IsAlive() bool {
	if h.pool == nil {
		return false
	}
	return h.index < h.pool.sizeOf() && h.pool.hasBit(h.index) && h.pool.generationAt(h.index) == h.id.Generation()
}

// Empty reports whether the handle holds no slot at all (as opposed to a
// slot that has since died).
func (h ComponentHandle[T]) Empty() bool { return h.pool == nil }

// Id returns the ComponentId this handle was resolved for.
func (h ComponentHandle[T]) Id() ComponentId { return h.id }

// Get dereferences the handle. Calling Get on a handle that is not alive
// is undefined behavior; check IsAlive first if there is any doubt.
func (h ComponentHandle[T]) Get() *T {
	return h.pool.data(h.index)
}

// Clone returns a new handle to the same slot, incrementing its refcount
// (copy semantics).
func (h ComponentHandle[T]) Clone() ComponentHandle[T] {
	if h.pool == nil {
		return ComponentHandle[T]{}
	}
	h.pool.acquireAt(h.index)
	return h
}

// Release drops this handle's hold on the slot, decrementing its
// refcount. Reaching zero is a hint only — it does not free the slot;
// the EntitySystem's own destroy/compaction path does that.
func (h *ComponentHandle[T]) Release() {
	if h.pool == nil {
		return
	}
	h.pool.releaseAt(h.index)
	h.pool = nil
}

// Unlink detaches the handle from refcount bookkeeping without
// decrementing, for when ownership has logically transferred elsewhere
// (spec §4.4).
func (h *ComponentHandle[T]) Unlink() {
	h.pool = nil
}
