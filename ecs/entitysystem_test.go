package ecs_test

import (
	"testing"

	"github.com/plus3/kernecs/ecs"
	"github.com/stretchr/testify/assert"
)

type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }
type Number struct{ Value int }
type Name struct{ Value string }

func TestCreateEntityAssignsDistinctIds(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()
	b := es.CreateEntity()

	assert.NotEqual(t, a, b)
	assert.True(t, es.IsAliveEntity(a))
	assert.True(t, es.IsAliveEntity(b))
}

func TestDestroyEntityIsIdempotent(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()

	es.DestroyEntity(a)
	assert.False(t, es.IsAliveEntity(a))

	// second destroy is a silent no-op (spec §7, round-trip/idempotence)
	es.DestroyEntity(a)
	assert.False(t, es.IsAliveEntity(a))
}

// Invariant 1: after destroyEntity(e) then createEntity() possibly
// reusing e's index, any handle acquired before destruction reports "not
// alive" and dereferences to no-op.
func TestGenerationalSafetyAfterRecycle(t *testing.T) {
	es := ecs.NewEntitySystem(0)

	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Position{X: 1, Y: 2})
	es.AttachComponent(cid, a, true)
	handle := ecs.GetComponent[Position](es, cid)
	assert.True(t, handle.IsAlive())

	es.DestroyEntity(a)
	_ = es.CreateEntity() // may recycle a's index

	assert.False(t, handle.IsAlive())
	empty := ecs.GetComponent[Position](es, cid)
	assert.True(t, empty.Empty())
}

// Invariant 2: for every (family, index) with presence bit set,
// entity_of(cid).Components[family] == cid whenever getEntity(cid) != null.
func TestGetEntityMatchesAttachment(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Position{X: 5, Y: 6})
	es.AttachComponent(cid, a, true)

	owner, ok := ecs.GetEntity(es, cid)
	assert.True(t, ok)
	assert.Equal(t, a, owner)
	assert.True(t, ecs.HasComponent[Position](es, a))
}

// Invariant 3: attachComponent(c, e); detachComponent(c, e) restores
// hasComponent(family, e) to false and leaves isAlive(c) true.
func TestDetachRestoresHasComponentKeepsComponentAlive(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Velocity{DX: 1, DY: 1})
	es.AttachComponent(cid, a, true)
	assert.True(t, es.IsAliveComponent(cid))

	es.DetachComponent(cid, a)

	assert.False(t, ecs.HasComponent[Velocity](es, a))
	assert.True(t, es.IsAliveComponent(cid))
}

// Invariant 4: destroyComponent(c) bumps its generation by exactly one;
// any handle held on it dereferences as non-alive.
func TestDestroyComponentBumpsGeneration(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Number{Value: 3})
	es.AttachComponent(cid, a, true)
	handle := ecs.GetComponent[Number](es, cid)
	assert.True(t, handle.IsAlive())

	generationBefore := cid.Generation()
	es.DestroyComponent(cid)

	assert.False(t, handle.IsAlive())
	assert.False(t, es.IsAliveComponent(cid))

	recreated := ecs.CreateComponent(es, Number{Value: 4})
	if recreated.Index() == cid.Index() && recreated.Family() == cid.Family() {
		assert.Equal(t, generationBefore+1, recreated.Generation())
	}
}

func TestAttachDetachReattachSameFamily(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()
	first := ecs.CreateComponent(es, Position{X: 1})
	second := ecs.CreateComponent(es, Position{X: 2})

	es.AttachComponent(first, a, true)
	assert.True(t, ecs.HasComponent[Position](es, a))

	// attaching a second Position to the same entity detaches the first
	es.AttachComponent(second, a, true)
	owner, ok := ecs.GetEntity(es, first)
	assert.False(t, ok)
	assert.Zero(t, owner)

	owner, ok = ecs.GetEntity(es, second)
	assert.True(t, ok)
	assert.Equal(t, a, owner)
}

func TestCleanComponentsCompactsTrailingDestroyed(t *testing.T) {
	es := ecs.NewEntitySystem(4)
	a := ecs.CreateComponent(es, Number{Value: 1})
	b := ecs.CreateComponent(es, Number{Value: 2})

	sizeBefore := ecs.ComponentPoolSize[Number](es)

	es.DestroyComponent(b)
	assert.Equal(t, sizeBefore, ecs.ComponentPoolSize[Number](es), "destroy alone must not shrink the pool")
	assert.Equal(t, 1, ecs.ComponentPoolFreeCount[Number](es))

	es.CleanComponents()

	assert.False(t, es.IsAliveComponent(b))
	assert.True(t, es.IsAliveComponent(a))
	assert.Equal(t, sizeBefore-1, ecs.ComponentPoolSize[Number](es), "compaction must shrink the pool's tail")
	assert.Equal(t, 0, ecs.ComponentPoolFreeCount[Number](es), "the reclaimed index must be pruned from the free list")
}

// A live, attached component created via CreateComponent (no handle ever
// acquired, so its refCount stays 0) must survive CleanComponents even when
// it sits at the pool's tail: compaction is keyed off presence, not
// refcount, since a present slot can legitimately be at refCount 0.
func TestCleanComponentsDoesNotDiscardUnreferencedLiveComponent(t *testing.T) {
	es := ecs.NewEntitySystem(4)
	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Number{Value: 9})
	es.AttachComponent(cid, a, true)

	es.CleanComponents()

	assert.True(t, es.IsAliveComponent(cid))
	assert.True(t, ecs.HasComponent[Number](es, a))
	handle := ecs.GetComponent[Number](es, cid)
	assert.True(t, handle.IsAlive())
	assert.Equal(t, 9, handle.Get().Value)
}
