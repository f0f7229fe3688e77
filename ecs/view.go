package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// componentPool gained a ptrAt method (pool.go) purely so views can project
// typed fields the same way the teacher's View[T] does: box a *T into an
// any, then peel the raw pointer back out of the interface with iface.go's
// layout trick, instead of type-switching on every family.

// EntityView iterates live entities in ascending index order, optionally
// narrowed to those whose attached-component bitfield matches a required
// set under MatchAll or MatchAny semantics (spec §4.7).
type EntityView struct {
	es       *EntitySystem
	required Bitfield
	matchAny bool
	pred     func(EntityId) bool
	parallel bool
	queue    *JobQueue
}

// NewEntityView creates an unnarrowed view over every live entity of es.
func NewEntityView(es *EntitySystem) *EntityView {
	return &EntityView{es: es}
}

// FamilyOf returns the component family id T has been assigned (assigning
// one on first use), for building narrowed views without exposing the
// registry internals.
func FamilyOf[T any](es *EntitySystem) uint16 {
	return familyFor[T](es.registry)
}

// MatchAll narrows the view to entities whose attached bitfield is a
// superset of families.
func (v *EntityView) MatchAll(families ...uint16) *EntityView {
	v.matchAny = false
	v.required = NewBitfield(0)
	for _, f := range families {
		v.required.SetBit(int(f))
	}
	return v
}

// MatchAny narrows the view to entities whose attached bitfield intersects
// families.
func (v *EntityView) MatchAny(families ...uint16) *EntityView {
	v.matchAny = true
	v.required = NewBitfield(0)
	for _, f := range families {
		v.required.SetBit(int(f))
	}
	return v
}

// Where installs a predicate applied after structural matching.
func (v *EntityView) Where(pred func(EntityId) bool) *EntityView {
	v.pred = pred
	return v
}

// Parallel opts into a parallel forEach, bounded by queue if given or the
// package default queue otherwise. Ownership of a queue passed in is the
// caller's; the default queue is shared across views.
func (v *EntityView) Parallel(enable bool, queue ...*JobQueue) *EntityView {
	v.parallel = enable
	if len(queue) > 0 {
		v.queue = queue[0]
	}
	return v
}

func (v *EntityView) matches(rec *entityRecord) bool {
	if v.required.CountBits() > 0 {
		if v.matchAny {
			if !rec.attached.IntersectsAny(&v.required) {
				return false
			}
		} else if !rec.attached.ContainsAll(&v.required) {
			return false
		}
	}
	return true
}

// Iter returns a begin/end-equivalent sequential iterator, advancing past
// every non-matching slot.
func (v *EntityView) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for i := 0; i < v.es.entityCount(); i++ {
			eid, rec, ok := v.es.entityAt(i)
			if !ok || !v.matches(rec) {
				continue
			}
			if v.pred != nil && !v.pred(eid) {
				continue
			}
			if !yield(eid) {
				return
			}
		}
	}
}

// ForEach runs fn over every structurally-matched, predicate-passed entity.
// In parallel mode every entity index is submitted to the view's job queue
// as its own job, at most the queue's worker count running at once; ForEach
// blocks until every job has finished (spec §5 join-on-drain). The range is
// not split into per-worker sub-ranges, and no visiting order is guaranteed.
func (v *EntityView) ForEach(fn func(EntityId)) {
	if !v.parallel {
		for eid := range v.Iter() {
			fn(eid)
		}
		return
	}
	q := v.queue
	if q == nil {
		q = defaultJobQueue
	}
	n := v.es.entityCount()
	q.RunEach(n, func(i int) {
		eid, rec, ok := v.es.entityAt(i)
		if !ok || !v.matches(rec) {
			return
		}
		if v.pred != nil && !v.pred(eid) {
			return
		}
		fn(eid)
	})
}

// ComponentView iterates live slots of family T in ascending index order
// (spec §4.7 "Component view over family F").
type ComponentView[T any] struct {
	es       *EntitySystem
	pred     func(ComponentId, *T) bool
	parallel bool
	queue    *JobQueue
}

// NewComponentView creates a view over every live component of type T.
func NewComponentView[T any](es *EntitySystem) *ComponentView[T] {
	return &ComponentView[T]{es: es}
}

// Where installs a predicate applied after presence matching.
func (v *ComponentView[T]) Where(pred func(ComponentId, *T) bool) *ComponentView[T] {
	v.pred = pred
	return v
}

// Parallel opts into a parallel forEach; see EntityView.Parallel.
func (v *ComponentView[T]) Parallel(enable bool, queue ...*JobQueue) *ComponentView[T] {
	v.parallel = enable
	if len(queue) > 0 {
		v.queue = queue[0]
	}
	return v
}

func (v *ComponentView[T]) componentId(p *pool[T], family uint16, index int) ComponentId {
	return NewComponentId(family, uint32(index), p.generationAt(index))
}

// Iter returns a sequential iterator over (ComponentId, *value) pairs.
func (v *ComponentView[T]) Iter() iter.Seq2[ComponentId, *T] {
	return func(yield func(ComponentId, *T) bool) {
		p, family := poolFor[T](v.es)
		for i := 0; i < p.sizeOf(); i++ {
			if !p.hasBit(i) {
				continue
			}
			val := p.data(i)
			cid := v.componentId(p, family, i)
			if v.pred != nil && !v.pred(cid, val) {
				continue
			}
			if !yield(cid, val) {
				return
			}
		}
	}
}

// ForEach runs fn over every live slot; see EntityView.ForEach for the
// parallel contract.
func (v *ComponentView[T]) ForEach(fn func(ComponentId, *T)) {
	if !v.parallel {
		for cid, val := range v.Iter() {
			fn(cid, val)
		}
		return
	}
	q := v.queue
	if q == nil {
		q = defaultJobQueue
	}
	p, family := poolFor[T](v.es)
	q.RunEach(p.sizeOf(), func(i int) {
		if !p.hasBit(i) {
			return
		}
		val := p.data(i)
		cid := v.componentId(p, family, i)
		if v.pred != nil && !v.pred(cid, val) {
			return
		}
		fn(cid, val)
	})
}

// TypedEntityView projects a struct of pointer fields onto a MatchAll or
// MatchAny entity view, populating each field with a pointer to the
// matching family's component for the visited entity (spec §4.7 "typed
// component projection"). T's fields must all be pointer types; a field
// tagged `ecs:"optional"` may be nil even in MatchAll mode — untagged
// fields are the required set MatchAll matches against, while MatchAny
// accepts an entity that has any of T's fields, tagged or not.
//
// Grounded on the teacher's view.go View[T] (struct-of-pointer-fields,
// precomputed field offsets, iface.go pointer extraction), generalized
// from its one-archetype-lookup model to a per-family pool lookup since
// storage here is id-keyed rather than archetype-keyed (see DESIGN.md).
type TypedEntityView[T any] struct {
	es          *EntitySystem
	matchAny    bool
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
	pred        func(EntityId) bool
	parallel    bool
	queue       *JobQueue
}

// NewTypedEntityView builds a typed view over T, matching all of T's
// non-optional fields if matchAny is false, or any of T's fields if true.
func NewTypedEntityView[T any](es *EntitySystem, matchAny bool) *TypedEntityView[T] {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() != reflect.Struct {
		panic("TypedEntityView type parameter must be a struct")
	}

	v := &TypedEntityView[T]{es: es, matchAny: matchAny}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("TypedEntityView struct fields must be pointer types")
		}
		v.types = append(v.types, field.Type.Elem())
		v.fieldOffset = append(v.fieldOffset, field.Offset)

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" {
			if tag != "optional" {
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
			optional = true
		}
		v.optional = append(v.optional, optional)
	}
	return v
}

// Where installs a predicate applied after structural matching.
func (v *TypedEntityView[T]) Where(pred func(EntityId) bool) *TypedEntityView[T] {
	v.pred = pred
	return v
}

// Parallel opts into a parallel forEach; see EntityView.Parallel.
func (v *TypedEntityView[T]) Parallel(enable bool, queue ...*JobQueue) *TypedEntityView[T] {
	v.parallel = enable
	if len(queue) > 0 {
		v.queue = queue[0]
	}
	return v
}

// fill populates out's fields for rec, returning false if a required field
// (non-optional in MatchAll mode; any field in MatchAny mode is always
// optional-for-fill purposes) could not be resolved.
func (v *TypedEntityView[T]) fill(rec *entityRecord, out *T) bool {
	outPtr := unsafe.Pointer(out)
	matched := false
	for i, typ := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(outPtr) + v.fieldOffset[i])

		family, known := v.es.registry.familyForType(typ)
		var boxed any
		if known && int(family) < len(v.es.pools) && v.es.pools[family] != nil {
			if cid := rec.componentFor(family); !cid.IsNone() {
				boxed = v.es.pools[family].ptrAt(int(cid.Index()))
			}
		}

		if boxed == nil {
			if v.matchAny || v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}
		matched = true
		componentPtr := (*iface)(unsafe.Pointer(&boxed)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}
	if v.matchAny {
		return matched
	}
	return true
}

func (v *TypedEntityView[T]) visit(eid EntityId, rec *entityRecord, fn func(EntityId, *T)) {
	var out T
	if !v.fill(rec, &out) {
		return
	}
	if v.pred != nil && !v.pred(eid) {
		return
	}
	fn(eid, &out)
}

// Iter returns a sequential iterator over (EntityId, *T) pairs.
func (v *TypedEntityView[T]) Iter() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for i := 0; i < v.es.entityCount(); i++ {
			eid, rec, ok := v.es.entityAt(i)
			if !ok {
				continue
			}
			var out T
			if !v.fill(rec, &out) {
				continue
			}
			if v.pred != nil && !v.pred(eid) {
				continue
			}
			if !yield(eid, &out) {
				return
			}
		}
	}
}

// ForEach runs fn over every matched entity; see EntityView.ForEach for
// the parallel contract.
func (v *TypedEntityView[T]) ForEach(fn func(EntityId, *T)) {
	if !v.parallel {
		for i := 0; i < v.es.entityCount(); i++ {
			eid, rec, ok := v.es.entityAt(i)
			if !ok {
				continue
			}
			v.visit(eid, rec, fn)
		}
		return
	}
	q := v.queue
	if q == nil {
		q = defaultJobQueue
	}
	n := v.es.entityCount()
	q.RunEach(n, func(i int) {
		eid, rec, ok := v.es.entityAt(i)
		if !ok {
			return
		}
		v.visit(eid, rec, fn)
	})
}
