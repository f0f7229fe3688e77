package ecs

// Built-in events the EntitySystem emits around every structural mutation
// (spec §4.6). They carry no behavior of their own; EventSystem fans them
// out to any RegisterEvent[T] subscriber.
type EntityCreated struct{ Entity EntityId }
type EntityDestroyed struct{ Entity EntityId }
type ComponentAttached struct {
	Entity    EntityId
	Component ComponentId
}
type ComponentDetached struct {
	Entity    EntityId
	Component ComponentId
}
type ComponentDestroyed struct{ Component ComponentId }

// EntitySystem owns every component pool and every entity record; it is
// the sole mediator of create/destroy/attach/detach (spec §4.3).
//
// Grounded on the teacher's storage.go Storage type for its public-method
// shape (Spawn/Delete/AddComponent/RemoveComponent/GetComponent/
// HasComponent), and on original_source/source/Kunlaboro/EntitySystem.cpp
// for the exact attach/detach/destroy invariants.
type EntitySystem struct {
	registry *componentRegistry
	pools    []componentPool

	entities     []entityRecord
	freeEntities []uint32

	messages *MessageSystem
	events   *EventSystem
}

// NewEntitySystem creates an empty EntitySystem. chunkSize overrides the
// default 256-slot chunk size used by every family's pool; pass 0 to keep
// the default.
func NewEntitySystem(chunkSize int) *EntitySystem {
	es := &EntitySystem{
		registry: newComponentRegistry(chunkSize),
	}
	// Index 0 is reserved, permanently destroyed, and never recycled: it
	// is what lets the zero EntityId mean "no entity" unambiguously,
	// rather than colliding with the very first entity ever created.
	es.entities = append(es.entities, entityRecord{destroyed: true})
	es.messages = newMessageSystem()
	es.events = newEventSystem()
	es.messages.owner = es
	es.events.owner = es
	return es
}

// GetMessageSystem returns the EntitySystem's request-id-keyed messaging
// registry (spec §4.5).
func (es *EntitySystem) GetMessageSystem() *MessageSystem { return es.messages }

// GetEventSystem returns the EntitySystem's compile-time-typed event
// registry (spec §4.6).
func (es *EntitySystem) GetEventSystem() *EventSystem { return es.events }

func (es *EntitySystem) ensurePool(family uint16) componentPool {
	for uint16(len(es.pools)) <= family {
		es.pools = append(es.pools, nil)
	}
	if es.pools[family] == nil {
		es.pools[family] = es.registry.newPoolForFamily(family)
	}
	return es.pools[family]
}

func poolFor[T any](es *EntitySystem) (*pool[T], uint16) {
	family := familyFor[T](es.registry)
	p := es.ensurePool(family)
	return p.(*pool[T]), family
}

func (es *EntitySystem) recordFor(eid EntityId) *entityRecord {
	idx := eid.Index()
	if int(idx) >= len(es.entities) {
		return nil
	}
	rec := &es.entities[idx]
	if rec.destroyed || rec.generation != eid.Generation() {
		return nil
	}
	return rec
}

// CreateEntity creates a fresh entity, reusing a recycled index (LIFO)
// when one is available, and emits EntityCreated.
func (es *EntitySystem) CreateEntity() EntityId {
	var index uint32
	if n := len(es.freeEntities); n > 0 {
		index = es.freeEntities[n-1]
		es.freeEntities = es.freeEntities[:n-1]
	} else {
		index = uint32(len(es.entities))
		es.entities = append(es.entities, entityRecord{})
	}
	rec := &es.entities[index]
	rec.destroyed = false

	eid := NewEntityId(index, rec.generation)
	EmitEvent(es.events, EntityCreated{Entity: eid})
	return eid
}

// IsAliveEntity reports whether eid names a live, non-destroyed entity.
func (es *EntitySystem) IsAliveEntity(eid EntityId) bool {
	return es.recordFor(eid) != nil
}

// IsAliveComponent reports whether cid names a present slot whose
// generation matches.
func (es *EntitySystem) IsAliveComponent(cid ComponentId) bool {
	family := cid.Family()
	if int(family) >= len(es.pools) || es.pools[family] == nil {
		return false
	}
	p := es.pools[family]
	index := int(cid.Index())
	return index < p.sizeOf() && p.hasBit(index) && p.generationAt(index) == cid.Generation()
}

// DestroyEntity destroys eid: every attached component is destroyed,
// generation is bumped, and the index is recycled. Idempotent and silent
// on a stale or already-destroyed id (spec §4.3, §8 invariant 1).
func (es *EntitySystem) DestroyEntity(eid EntityId) {
	rec := es.recordFor(eid)
	if rec == nil {
		return
	}

	for family := 0; family < len(rec.components); family++ {
		if !rec.hasFamily(uint16(family)) {
			continue
		}
		cid := rec.components[family]
		es.destroyAttachedComponent(cid, uint16(family))
	}

	rec.destroyed = true
	rec.generation++
	rec.components = nil
	rec.attached = Bitfield{}
	es.freeEntities = append(es.freeEntities, eid.Index())

	EmitEvent(es.events, EntityDestroyed{Entity: eid})
}

// destroyAttachedComponent destroys a component known to currently be
// attached to the entity being torn down, skipping the detach step
// (the whole record is being discarded anyway).
func (es *EntitySystem) destroyAttachedComponent(cid ComponentId, family uint16) {
	p := es.pools[family]
	index := int(cid.Index())
	if index >= p.sizeOf() || !p.hasBit(index) || p.generationAt(index) != cid.Generation() {
		return
	}
	es.messages.unregisterAllForComponent(cid)
	es.events.unregisterAllForComponent(cid)
	p.destroy(index)
	p.resetBit(index)
	p.clearOwnerAt(index)
	p.free(index)
	EmitEvent(es.events, ComponentDestroyed{Component: cid})
}

// AttachComponent attaches cid to eid. Attachment is exclusive per family
// per entity: when checkDetach is true, any prior owner of cid is
// detached first, and any existing component of cid's family already on
// eid is detached first. Passing checkDetach=false is only safe when the
// caller guarantees both are already clear (spec §4.3).
func (es *EntitySystem) AttachComponent(cid ComponentId, eid EntityId, checkDetach bool) {
	if !es.IsAliveComponent(cid) {
		return
	}
	rec := es.recordFor(eid)
	if rec == nil {
		return
	}

	family := cid.Family()
	p := es.pools[family]
	index := int(cid.Index())

	if checkDetach {
		if prevOwner := p.ownerAt(index); !prevOwner.IsNone() {
			es.DetachComponent(cid, prevOwner)
		}
		if existing := rec.componentFor(family); !existing.IsNone() {
			es.DetachComponent(existing, eid)
		}
	}

	rec.setComponent(family, cid)
	p.setOwnerAt(index, eid)
	EmitEvent(es.events, ComponentAttached{Entity: eid, Component: cid})
}

// DetachComponent clears the attachment between cid and eid without
// destroying the component. A no-op if cid is not currently attached to
// eid.
func (es *EntitySystem) DetachComponent(cid ComponentId, eid EntityId) {
	rec := es.recordFor(eid)
	if rec == nil {
		return
	}
	family := cid.Family()
	if rec.componentFor(family) != cid {
		return
	}
	rec.clearComponent(family)
	if int(family) < len(es.pools) && es.pools[family] != nil {
		es.pools[family].clearOwnerAt(int(cid.Index()))
	}
	EmitEvent(es.events, ComponentDetached{Entity: eid, Component: cid})
}

// DestroyComponent detaches cid from its owning entity (if any),
// unregisters any messaging/eventing subscriptions keyed by it, runs the
// pool destructor, bumps its generation, and returns the slot to the
// family's free list.
func (es *EntitySystem) DestroyComponent(cid ComponentId) {
	family := cid.Family()
	if int(family) >= len(es.pools) || es.pools[family] == nil {
		return
	}
	p := es.pools[family]
	index := int(cid.Index())
	if index >= p.sizeOf() || !p.hasBit(index) || p.generationAt(index) != cid.Generation() {
		return
	}

	if owner := p.ownerAt(index); !owner.IsNone() {
		es.DetachComponent(cid, owner)
	}

	es.messages.unregisterAllForComponent(cid)
	es.events.unregisterAllForComponent(cid)
	p.destroy(index)
	p.resetBit(index)
	p.free(index)

	EmitEvent(es.events, ComponentDestroyed{Component: cid})
}

// CreateComponent allocates a fresh (or recycled) slot in T's family
// pool, stores value in it, and returns the new ComponentId. The
// component is not attached to any entity until AttachComponent is
// called.
func CreateComponent[T any](es *EntitySystem, value T) ComponentId {
	p, family := poolFor[T](es)
	index := p.alloc()
	*p.data(index) = value
	p.setBit(index)
	return NewComponentId(family, uint32(index), p.generationAt(index))
}

// HasComponent reports whether eid currently has a component of type T
// attached.
func HasComponent[T any](es *EntitySystem, eid EntityId) bool {
	rec := es.recordFor(eid)
	if rec == nil {
		return false
	}
	family := familyFor[T](es.registry)
	return rec.hasFamily(family)
}

// GetEntity returns the entity cid is currently attached to, if any.
func GetEntity(es *EntitySystem, cid ComponentId) (EntityId, bool) {
	if !es.IsAliveComponent(cid) {
		return 0, false
	}
	p := es.pools[cid.Family()]
	owner := p.ownerAt(int(cid.Index()))
	if owner.IsNone() {
		return 0, false
	}
	return owner, true
}

// CleanComponents compacts the tail of every family's pool: the
// contiguous run of trailing slots whose presence bit is already clear
// (components destroyed by DestroyComponent/DestroyEntity) is removed and
// pruned from the free list. The scan stops at the first present slot,
// whatever its refcount, so every surviving slot keeps its stable index;
// present components are never removed by this call.
func (es *EntitySystem) CleanComponents() {
	for _, p := range es.pools {
		if p != nil {
			p.compactTail()
		}
	}
}

// CleanEntities erases trailing entity records whose Destroyed flag is
// set.
func (es *EntitySystem) CleanEntities() {
	for len(es.entities) > 1 {
		last := len(es.entities) - 1
		if !es.entities[last].destroyed {
			break
		}
		es.entities = es.entities[:last]
	}
	if len(es.freeEntities) == 0 {
		return
	}
	kept := es.freeEntities[:0]
	for _, idx := range es.freeEntities {
		if int(idx) < len(es.entities) {
			kept = append(kept, idx)
		}
	}
	es.freeEntities = kept
}

// ComponentPoolSize returns family T's current high-water size: one past
// the highest slot index in use or on the free list, counting the reserved
// index 0, so a family with no components yet reports 1. CleanComponents
// can lower it. Diagnostic only; not part of any hot path.
func ComponentPoolSize[T any](es *EntitySystem) int {
	p, _ := poolFor[T](es)
	return p.sizeOf()
}

// ComponentPoolFreeCount returns the number of slots in family T's
// free-index stack. Diagnostic only.
func ComponentPoolFreeCount[T any](es *EntitySystem) int {
	p, _ := poolFor[T](es)
	return p.freeCount()
}

// entityCount returns the number of entity record slots currently held
// (including recycled/destroyed ones), for view iteration.
func (es *EntitySystem) entityCount() int { return len(es.entities) }

// entityAt returns the EntityId and record for slot index i, or ok=false
// if that slot is currently destroyed.
func (es *EntitySystem) entityAt(index int) (EntityId, *entityRecord, bool) {
	rec := &es.entities[index]
	if rec.destroyed {
		return 0, nil, false
	}
	return NewEntityId(uint32(index), rec.generation), rec, true
}
