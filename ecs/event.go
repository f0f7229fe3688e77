package ecs

import (
	"reflect"
	"sort"
)

// EventSystem is the compile-time-typed mirror of MessageSystem: instead
// of a hashed RequestId, registrations are keyed by the Go type of the
// event struct itself (spec §4.6). Its dispatch internals are otherwise
// isomorphic to the Message System's (priority-ordered buckets, snapshot
// iteration) per spec §9.
type EventSystem struct {
	owner       *EntitySystem
	buckets     map[reflect.Type]*eventBucket
	byComponent map[ComponentId]map[reflect.Type]struct{}
}

type eventRegistration struct {
	component ComponentId
	callback  func(any)
	priority  int
	seq       int
}

type eventBucket struct {
	regs    []eventRegistration
	nextSeq int
}

func (b *eventBucket) indexOf(component ComponentId) int {
	for i := range b.regs {
		if b.regs[i].component == component {
			return i
		}
	}
	return -1
}

func (b *eventBucket) sort() {
	sort.SliceStable(b.regs, func(i, j int) bool {
		if b.regs[i].priority != b.regs[j].priority {
			return b.regs[i].priority > b.regs[j].priority
		}
		return b.regs[i].seq < b.regs[j].seq
	})
}

func (b *eventBucket) snapshot() []eventRegistration {
	snap := make([]eventRegistration, len(b.regs))
	copy(snap, b.regs)
	return snap
}

func newEventSystem() *EventSystem {
	return &EventSystem{
		buckets:     make(map[reflect.Type]*eventBucket),
		byComponent: make(map[ComponentId]map[reflect.Type]struct{}),
	}
}

func (es *EventSystem) bucketFor(t reflect.Type) *eventBucket {
	b, ok := es.buckets[t]
	if !ok {
		b = &eventBucket{}
		es.buckets[t] = b
	}
	return b
}

// RegisterEvent subscribes component to events of type E. A second
// registration for the same (E, component) pair replaces the first, the
// same at-most-one-registration rule the Message System enforces.
func RegisterEvent[E any](events *EventSystem, component ComponentId, callback func(E), priority ...int) {
	p := 0
	if len(priority) > 0 {
		p = priority[0]
	}
	t := reflect.TypeFor[E]()
	b := events.bucketFor(t)
	if idx := b.indexOf(component); idx >= 0 {
		b.regs = append(b.regs[:idx], b.regs[idx+1:]...)
	}
	seq := b.nextSeq
	b.nextSeq++
	b.regs = append(b.regs, eventRegistration{
		component: component,
		callback:  func(a any) { callback(a.(E)) },
		priority:  p,
		seq:       seq,
	})
	b.sort()

	reqs, ok := events.byComponent[component]
	if !ok {
		reqs = make(map[reflect.Type]struct{})
		events.byComponent[component] = reqs
	}
	reqs[t] = struct{}{}
}

// UnregisterAllEvents removes every event registration component holds,
// across every event type.
func UnregisterAllEvents(events *EventSystem, component ComponentId) {
	events.unregisterAllForComponent(component)
}

func (es *EventSystem) unregisterAllForComponent(component ComponentId) {
	types, ok := es.byComponent[component]
	if !ok {
		return
	}
	for t := range types {
		if b, ok := es.buckets[t]; ok {
			if idx := b.indexOf(component); idx >= 0 {
				b.regs = append(b.regs[:idx], b.regs[idx+1:]...)
			}
		}
	}
	delete(es.byComponent, component)
}

// EmitEvent materializes e and fans it out to every component registered
// for E, in descending-priority order.
func EmitEvent[E any](events *EventSystem, e E) {
	b, ok := events.buckets[reflect.TypeFor[E]()]
	if !ok {
		return
	}
	for _, reg := range b.snapshot() {
		reg.callback(e)
	}
}
