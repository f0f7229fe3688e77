package ecs_test

import (
	"testing"

	"github.com/plus3/kernecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestComponentHandleGetAndClone(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	cid := ecs.CreateComponent(es, Position{X: 1, Y: 2})

	h := ecs.GetComponent[Position](es, cid)
	assert.True(t, h.IsAlive())
	assert.Equal(t, 1.0, h.Get().X)

	clone := h.Clone()
	assert.True(t, clone.IsAlive())
	assert.Equal(t, h.Id(), clone.Id())
}

func TestComponentHandleEmptyOnStaleId(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	cid := ecs.CreateComponent(es, Position{X: 1, Y: 2})
	es.DestroyComponent(cid)

	h := ecs.GetComponent[Position](es, cid)
	assert.True(t, h.Empty())
	assert.False(t, h.IsAlive())
}

func TestComponentHandleUnlinkSkipsRelease(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	cid := ecs.CreateComponent(es, Velocity{DX: 1})

	h := ecs.GetComponent[Velocity](es, cid)
	h.Unlink()
	assert.True(t, h.Empty())
}

func TestGetComponentForEntity(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Number{Value: 9})
	es.AttachComponent(cid, a, true)

	h := ecs.GetComponentForEntity[Number](es, a)
	assert.True(t, h.IsAlive())
	assert.Equal(t, 9, h.Get().Value)
}
