package ecs

import (
	"reflect"
	"sort"

	"github.com/kamstrup/intmap"
)

// Payload is a type-erased, tagged value built from any copyable Go
// value. It mirrors original_source/include/Kunlaboro/Defines.hpp's
// Payload class (construct-from-any-T, inspect with is<T>(), extract
// with get<T>()) without needing C++'s manual heap buffer — Go's `any`
// already boxes the value, so Payload is just that plus the type it was
// built from, for the Is/PayloadGet type check (spec §4.5).
type Payload struct {
	value any
	typ   reflect.Type
}

// NewPayload builds a Payload from any value, including nil (the empty
// payload).
func NewPayload(v any) Payload {
	if v == nil {
		return Payload{}
	}
	return Payload{value: v, typ: reflect.TypeOf(v)}
}

// Is reports whether the payload was built from a value of type t.
func (p Payload) Is(t reflect.Type) bool { return p.typ == t }

// Empty reports whether the payload carries no value.
func (p Payload) Empty() bool { return p.typ == nil }

// PayloadGet extracts a T from p. ok is false if p was not built from a
// T (spec round-trip property: PayloadGet must round-trip for any T used
// in construction).
func PayloadGet[T any](p Payload) (T, bool) {
	v, ok := p.value.(T)
	return v, ok
}

// Envelope is the message passed to every subscriber of a dispatch: who
// sent it (if anyone), the payload, and a Handled flag a subscriber can
// flip to answer a "question" message (spec §4.5 "Message envelope").
type Envelope struct {
	RequestId RequestId
	Sender    ComponentId
	Payload   Payload
	Handled   bool
}

// Handle is the question/answer idiom from the original source's
// Message::handle<T>: set the reply payload and mark the envelope
// handled in one call.
func (e *Envelope) Handle(ret any) {
	e.Payload = NewPayload(ret)
	e.Handled = true
}

// MessageFunc is a type-erased message callback.
type MessageFunc func(*Envelope)

type messageRegistration struct {
	component ComponentId
	callback  MessageFunc
	priority  int
	local     bool
	seq       int
}

type messageBucket struct {
	regs    []messageRegistration
	nextSeq int
}

func (b *messageBucket) indexOf(component ComponentId) int {
	for i := range b.regs {
		if b.regs[i].component == component {
			return i
		}
	}
	return -1
}

func (b *messageBucket) sort() {
	sort.SliceStable(b.regs, func(i, j int) bool {
		if b.regs[i].priority != b.regs[j].priority {
			return b.regs[i].priority > b.regs[j].priority
		}
		return b.regs[i].seq < b.regs[j].seq
	})
}

func (b *messageBucket) snapshot() []messageRegistration {
	snap := make([]messageRegistration, len(b.regs))
	copy(snap, b.regs)
	return snap
}

// MessageSystem is a RequestId-keyed registry of type-erased callbacks,
// dispatched either globally or to the components of one entity, in
// descending-priority order (spec §4.5).
//
// Grounded on original_source/include/Kunlaboro/Defines.hpp's
// ComponentRegistered/RequestMap and source/Kunlaboro/EntitySystem.cpp's
// dispatch loop (priority-sorted bucket, snapshot-by-index iteration so
// handlers may register/unregister mid-dispatch).
type MessageSystem struct {
	owner   *EntitySystem
	buckets *intmap.Map[RequestId, *messageBucket]
	// byComponent tracks which request ids each component currently holds
	// a registration for, so UnregisterAllMessages/unregisterAllForComponent
	// don't need to scan every bucket.
	byComponent map[ComponentId]map[RequestId]struct{}
}

func newMessageSystem() *MessageSystem {
	return &MessageSystem{
		buckets:     intmap.New[RequestId, *messageBucket](64),
		byComponent: make(map[ComponentId]map[RequestId]struct{}),
	}
}

func (ms *MessageSystem) trackRegistration(requestId RequestId, component ComponentId) {
	reqs, ok := ms.byComponent[component]
	if !ok {
		reqs = make(map[RequestId]struct{})
		ms.byComponent[component] = reqs
	}
	reqs[requestId] = struct{}{}
}

func (ms *MessageSystem) untrackRegistration(requestId RequestId, component ComponentId) {
	if reqs, ok := ms.byComponent[component]; ok {
		delete(reqs, requestId)
		if len(reqs) == 0 {
			delete(ms.byComponent, component)
		}
	}
}

func (ms *MessageSystem) bucketFor(requestId RequestId) *messageBucket {
	if b, ok := ms.buckets.Get(requestId); ok {
		return b
	}
	b := &messageBucket{}
	ms.buckets.Put(requestId, b)
	return b
}

// RegisterMessage registers callback for requestId on behalf of
// component. local toggles whether the callback only fires for messages
// directed at component's owning entity (sendLocalMessage) or for every
// message with that request id (sendGlobalMessage). A second
// registration for the same (requestId, component) replaces the first,
// keeping the (requestId, component) → at-most-one-registration
// invariant from spec §3.
func (ms *MessageSystem) RegisterMessage(requestId RequestId, component ComponentId, callback MessageFunc, priority int, local bool) {
	b := ms.bucketFor(requestId)
	if idx := b.indexOf(component); idx >= 0 {
		b.regs = append(b.regs[:idx], b.regs[idx+1:]...)
	}
	seq := b.nextSeq
	b.nextSeq++
	b.regs = append(b.regs, messageRegistration{
		component: component,
		callback:  callback,
		priority:  priority,
		local:     local,
		seq:       seq,
	})
	b.sort()
	ms.trackRegistration(requestId, component)
}

// UnregisterMessage removes component's registration for requestId, if
// any.
func (ms *MessageSystem) UnregisterMessage(requestId RequestId, component ComponentId) {
	b, ok := ms.buckets.Get(requestId)
	if !ok {
		return
	}
	if idx := b.indexOf(component); idx >= 0 {
		b.regs = append(b.regs[:idx], b.regs[idx+1:]...)
	}
	ms.untrackRegistration(requestId, component)
}

// UnregisterAllMessages removes every registration component holds,
// across every request id.
func (ms *MessageSystem) UnregisterAllMessages(component ComponentId) {
	ms.unregisterAllForComponent(component)
}

func (ms *MessageSystem) unregisterAllForComponent(component ComponentId) {
	reqs, ok := ms.byComponent[component]
	if !ok {
		return
	}
	for requestId := range reqs {
		if b, ok := ms.buckets.Get(requestId); ok {
			if idx := b.indexOf(component); idx >= 0 {
				b.regs = append(b.regs[:idx], b.regs[idx+1:]...)
			}
		}
	}
	delete(ms.byComponent, component)
}

// ChangeRequestPriority rewrites component's priority for requestId and
// re-sorts the bucket.
func (ms *MessageSystem) ChangeRequestPriority(requestId RequestId, component ComponentId, priority int) {
	b, ok := ms.buckets.Get(requestId)
	if !ok {
		return
	}
	idx := b.indexOf(component)
	if idx < 0 {
		return
	}
	b.regs[idx].priority = priority
	b.sort()
}

// SendGlobalMessage invokes every non-local registration for requestId,
// ordered by descending priority then registration order.
func (ms *MessageSystem) SendGlobalMessage(requestId RequestId, payload Payload) {
	b, ok := ms.buckets.Get(requestId)
	if !ok {
		return
	}
	for _, reg := range b.snapshot() {
		if reg.local {
			continue
		}
		reg.callback(&Envelope{RequestId: requestId, Payload: payload})
	}
}

// SendSafeGlobalMessage is SendGlobalMessage, but skips any registration
// whose owning component is no longer alive.
func (ms *MessageSystem) SendSafeGlobalMessage(requestId RequestId, payload Payload) {
	b, ok := ms.buckets.Get(requestId)
	if !ok {
		return
	}
	for _, reg := range b.snapshot() {
		if reg.local || !ms.owner.IsAliveComponent(reg.component) {
			continue
		}
		reg.callback(&Envelope{RequestId: requestId, Payload: payload})
	}
}

// SendLocalMessage invokes callbacks registered local-to entityId, plus
// non-local callbacks whose owning component is currently attached to
// entityId.
func (ms *MessageSystem) SendLocalMessage(entityId EntityId, requestId RequestId, payload Payload) {
	b, ok := ms.buckets.Get(requestId)
	if !ok {
		return
	}
	for _, reg := range b.snapshot() {
		owner, alive := GetEntity(ms.owner, reg.component)
		if !alive || owner != entityId {
			continue
		}
		reg.callback(&Envelope{RequestId: requestId, Payload: payload})
	}
}

// SendSafeLocalMessage is SendLocalMessage, but skips any registration
// whose owning component is no longer alive before checking ownership.
func (ms *MessageSystem) SendSafeLocalMessage(entityId EntityId, requestId RequestId, payload Payload) {
	if !ms.owner.IsAliveEntity(entityId) {
		return
	}
	ms.SendLocalMessage(entityId, requestId, payload)
}
