package ecs

import (
	"sync/atomic"
	"unsafe"
)

// defaultChunkSize is the number of slots per chunk when a pool is
// created without an explicit override (spec §4.2 "default 256 slots").
const defaultChunkSize = 256

// slotMeta is the per-slot metadata a pool keeps alongside its raw
// storage: the slot's current generation and its live handle refcount.
// Generation is bumped every time the slot is recycled; refCount is
// mutated with atomics so ComponentHandle can be copied/dropped from any
// goroutine (spec §5 "thread-safe refcount updates").
type slotMeta struct {
	generation uint32
	refCount   int32
	owner      EntityId
}

// componentPool is the type-erased contract every family's storage
// satisfies, so the EntitySystem can hold one per family without knowing
// the concrete component type. The typed pool[T] below is the only
// implementation; callers that know T obtain direct *T access via a type
// assertion back to *pool[T] instead of going through this interface
// (spec §4.2: "type-erased at the base level and strongly typed in its
// template subclass").
type componentPool interface {
	ensure(n int)
	resize(n int, shrink bool)
	hasBit(index int) bool
	setBit(index int)
	resetBit(index int)
	countBits() int
	componentSize() int
	chunkSizeOf() int
	sizeOf() int
	freeCount() int

	// alloc returns a fresh slot index, preferring the free-index stack
	// (LIFO reuse per spec §4.3) and extending capacity by one chunk on
	// miss. The returned slot's generation is unchanged; the caller is
	// responsible for setting the presence bit once the value is written.
	alloc() int
	// destroy invokes T's zero-value reset on index without touching the
	// presence bit (spec §4.2: "does not clear the presence bit").
	destroy(index int)
	// free bumps the slot's generation and pushes it onto the free-index
	// stack. Returns the new generation.
	free(index int) uint32

	generationAt(index int) uint32
	refCountAt(index int) int32
	acquireAt(index int) int32
	releaseAt(index int) int32

	ownerAt(index int) EntityId
	setOwnerAt(index int, eid EntityId)
	clearOwnerAt(index int)

	// ptrAt boxes a *T for slot index into an any, for views that only
	// know T's reflect.Type (see iface.go).
	ptrAt(index int) any

	// compactTail removes a contiguous run of already-free (presence bit
	// clear) slots from the end of the pool, stopping at the first slot
	// that is still present (spec §4.3 cleanComponents / §9 Open
	// Question 2). It returns the slot indices it reclaimed, in
	// descending order.
	compactTail() []int
}

// pool is the chunked, per-family storage for components of type T.
// Slots never relocate once allocated: data returns a pointer to a
// slot inside a chunk, and chunks are only ever appended, never copied.
type pool[T any] struct {
	chunks    [][]T
	present   Bitfield
	meta      []slotMeta
	freeList  []int
	chunkSize int
	size      int // high-water mark of slot indices, counting reserved index 0; lowered by compactTail
}

func newPool[T any](chunkSize int) *pool[T] {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	p := &pool[T]{chunkSize: chunkSize}
	// Index 0 is reserved and never handed out by alloc: it is what lets
	// the zero ComponentId mean "no component" unambiguously, rather than
	// colliding with the very first real slot a family ever allocates.
	p.ensure(1)
	p.size = 1
	return p
}

func (p *pool[T]) componentSize() int { var zero T; return int(unsafe.Sizeof(zero)) }
func (p *pool[T]) chunkSizeOf() int   { return p.chunkSize }
func (p *pool[T]) sizeOf() int        { return p.size }
func (p *pool[T]) freeCount() int     { return len(p.freeList) }

// ensure makes the pool able to hold at least n slots without
// reallocating chunk storage.
func (p *pool[T]) ensure(n int) {
	needChunks := (n + p.chunkSize - 1) / p.chunkSize
	for len(p.chunks) < needChunks {
		p.chunks = append(p.chunks, make([]T, p.chunkSize))
	}
	if n > len(p.meta) {
		grown := make([]slotMeta, n)
		copy(grown, p.meta)
		p.meta = grown
	}
	p.present.ensure(n)
}

// resize changes the logical size of the pool. When shrink is requested
// and the trailing slots are absent, the tail chunks are released.
func (p *pool[T]) resize(n int, shrink bool) {
	if n > p.size {
		p.ensure(n)
		p.size = n
		return
	}
	p.size = n
	if !shrink {
		return
	}
	keepChunks := (n + p.chunkSize - 1) / p.chunkSize
	for i := keepChunks; i < len(p.chunks); i++ {
		for s := 0; s < p.chunkSize; s++ {
			if p.present.HasBit(i*p.chunkSize + s) {
				return
			}
		}
	}
	if keepChunks < len(p.chunks) {
		p.chunks = p.chunks[:keepChunks]
		if keepChunks*p.chunkSize < len(p.meta) {
			p.meta = p.meta[:keepChunks*p.chunkSize]
		}
		p.present.Resize(keepChunks*p.chunkSize, true)
	}
}

func (p *pool[T]) hasBit(index int) bool { return p.present.HasBit(index) }
func (p *pool[T]) setBit(index int)      { p.present.SetBit(index) }
func (p *pool[T]) resetBit(index int)    { p.present.ClearBit(index) }
func (p *pool[T]) countBits() int        { return p.present.CountBits() }

// data returns a stable pointer to the slot's storage. The caller must
// pre-check presence; out-of-range access is undefined (spec §4.2).
func (p *pool[T]) data(index int) *T {
	return &p.chunks[index/p.chunkSize][index%p.chunkSize]
}

func (p *pool[T]) alloc() int {
	if n := len(p.freeList); n > 0 {
		index := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return index
	}
	index := p.size
	p.size++
	p.ensure(p.size)
	return index
}

func (p *pool[T]) destroy(index int) {
	var zero T
	*p.data(index) = zero
}

func (p *pool[T]) free(index int) uint32 {
	p.meta[index].generation++
	p.meta[index].refCount = 0
	p.meta[index].owner = 0
	p.freeList = append(p.freeList, index)
	return p.meta[index].generation
}

func (p *pool[T]) generationAt(index int) uint32 { return p.meta[index].generation }
func (p *pool[T]) refCountAt(index int) int32     { return loadRefCount(&p.meta[index].refCount) }
func (p *pool[T]) acquireAt(index int) int32      { return addRefCount(&p.meta[index].refCount, 1) }
func (p *pool[T]) releaseAt(index int) int32      { return addRefCount(&p.meta[index].refCount, -1) }

func (p *pool[T]) ownerAt(index int) EntityId { return p.meta[index].owner }
func (p *pool[T]) setOwnerAt(index int, eid EntityId) { p.meta[index].owner = eid }
func (p *pool[T]) clearOwnerAt(index int) { p.meta[index].owner = 0 }

func (p *pool[T]) ptrAt(index int) any {
	if !p.present.HasBit(index) {
		return nil
	}
	return p.data(index)
}

// compactTail removes a contiguous run of already-free slots (presence bit
// clear, sitting on the free list from an earlier destroy) from the end of
// the pool (spec §4.3 cleanComponents / §9 Open Question 2). It scans
// backwards from the high-water mark and stops at the first slot that is
// still present, so survivors always keep their stable index. A present
// slot is never reclaimed here regardless of its refcount: refCount only
// tracks outstanding ComponentHandles, and a live, attached component can
// legitimately sit at refCount 0 between CreateComponent and its first
// GetComponent call, so refcount is not a valid compaction signal — only
// DestroyComponent (which already cleared the bit and pushed the slot onto
// the free list) makes a slot eligible. Reclaimed indices are returned in
// the order they were removed (descending).
func (p *pool[T]) compactTail() []int {
	var removed []int
	for p.size > 1 {
		last := p.size - 1
		if p.present.HasBit(last) {
			break
		}
		removed = append(removed, last)
		p.size = last
	}
	if removed != nil {
		// These indices are already on the free list from their earlier
		// destroy; drop them so the free list never outlives the slots it
		// names.
		p.pruneFree()
	}
	return removed
}

func (p *pool[T]) pruneFree() {
	kept := p.freeList[:0]
	for _, idx := range p.freeList {
		if idx < p.size {
			kept = append(kept, idx)
		}
	}
	p.freeList = kept
}

func loadRefCount(addr *int32) int32        { return atomic.LoadInt32(addr) }
func addRefCount(addr *int32, delta int32) int32 { return atomic.AddInt32(addr, delta) }
