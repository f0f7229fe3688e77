package ecs_test

import (
	"testing"

	"github.com/plus3/kernecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestBuiltinEntityLifecycleEvents(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	events := es.GetEventSystem()
	comp := ecs.CreateComponent(es, Number{Value: 1})

	var created, destroyed int
	ecs.RegisterEvent(events, comp, func(ecs.EntityCreated) { created++ })
	ecs.RegisterEvent(events, comp, func(ecs.EntityDestroyed) { destroyed++ })

	a := es.CreateEntity()
	assert.Equal(t, 1, created)

	es.DestroyEntity(a)
	assert.Equal(t, 1, destroyed)
}

func TestAttachDetachEvents(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	events := es.GetEventSystem()
	listener := ecs.CreateComponent(es, Number{Value: 0})

	var attached, detached int
	ecs.RegisterEvent(events, listener, func(ecs.ComponentAttached) { attached++ })
	ecs.RegisterEvent(events, listener, func(ecs.ComponentDetached) { detached++ })

	a := es.CreateEntity()
	cid := ecs.CreateComponent(es, Position{X: 1})
	es.AttachComponent(cid, a, true)
	es.DetachComponent(cid, a)

	assert.Equal(t, 1, attached)
	assert.Equal(t, 1, detached)
}

func TestEventPriorityOrdering(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	events := es.GetEventSystem()
	low := ecs.CreateComponent(es, Number{Value: 0})
	high := ecs.CreateComponent(es, Number{Value: 1})

	var order []string
	ecs.RegisterEvent(events, low, func(ecs.EntityCreated) { order = append(order, "low") }, 0)
	ecs.RegisterEvent(events, high, func(ecs.EntityCreated) { order = append(order, "high") }, 10)

	es.CreateEntity()

	assert.Equal(t, []string{"high", "low"}, order)
}

func TestUnregisterAllEventsStopsDispatch(t *testing.T) {
	es := ecs.NewEntitySystem(0)
	events := es.GetEventSystem()
	comp := ecs.CreateComponent(es, Number{Value: 0})

	hits := 0
	ecs.RegisterEvent(events, comp, func(ecs.EntityCreated) { hits++ })
	ecs.UnregisterAllEvents(events, comp)

	es.CreateEntity()
	assert.Equal(t, 0, hits)
}
