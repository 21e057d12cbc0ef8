// Package arena provides a generation-checked slot allocator, pooled
// to reduce garbage-collection pressure in high-churn scenarios the
// way the rest of this module's ecosystem pools its own heavyweight
// values (see the constraint-store pool this package is modeled on).
//
// The core Rete network addresses its nodes and tokens with ordinary
// Go pointers rather than arena handles, since Go's garbage collector
// already resolves the reference cycles a token/WME graph creates
// safely and efficiently; see DESIGN.md for that tradeoff. This
// package exists for call sites that want the handle-based discipline
// anyway — bulk WME ingestion pipelines being the prototypical case —
// without adopting it as the whole package's addressing scheme.
package arena

import "sync/atomic"

// Handle references a slot in an Arena. A Handle from one Arena must
// never be used with another; Get reports ok == false if the slot's
// generation no longer matches (the slot was freed and reused).
type Handle struct {
	index      int
	generation uint32
}

// Valid reports whether h refers to any slot at all (the zero Handle
// is never valid).
func (h Handle) Valid() bool { return h.generation != 0 }

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Stats tracks allocator activity, mirroring the hit/miss/eviction
// counters the rest of this codebase's pools report.
type Stats struct {
	Allocated int64
	Freed     int64
	Reused    int64
	Live      int64
}

// Arena is a generic freelist slot allocator: Put reuses a freed slot
// before growing, and every Handle it returns carries a generation
// counter so a stale Handle into a reused slot is detected rather than
// silently reading someone else's value.
type Arena[T any] struct {
	slots   []slot[T]
	freeIdx []int

	allocated int64
	freed     int64
	reused    int64
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Put stores value in a free (or freshly grown) slot and returns a
// Handle to it.
func (a *Arena[T]) Put(value T) Handle {
	atomic.AddInt64(&a.allocated, 1)
	if n := len(a.freeIdx); n > 0 {
		idx := a.freeIdx[n-1]
		a.freeIdx = a.freeIdx[:n-1]
		atomic.AddInt64(&a.reused, 1)
		s := &a.slots[idx]
		s.value = value
		s.occupied = true
		return Handle{index: idx, generation: s.generation}
	}
	a.slots = append(a.slots, slot[T]{value: value, generation: 1, occupied: true})
	return Handle{index: len(a.slots) - 1, generation: 1}
}

// Get dereferences h. ok is false if h is stale (its slot was freed
// and possibly reused since h was issued) or out of range.
func (a *Arena[T]) Get(h Handle) (value T, ok bool) {
	if h.index < 0 || h.index >= len(a.slots) {
		return value, false
	}
	s := &a.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return value, false
	}
	return s.value, true
}

// Free releases h's slot for reuse. Freeing an already-free or stale
// handle is a no-op.
func (a *Arena[T]) Free(h Handle) {
	if h.index < 0 || h.index >= len(a.slots) {
		return
	}
	s := &a.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return
	}
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	a.freeIdx = append(a.freeIdx, h.index)
	atomic.AddInt64(&a.freed, 1)
}

// Stats reports cumulative allocator activity.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Allocated: atomic.LoadInt64(&a.allocated),
		Freed:     atomic.LoadInt64(&a.freed),
		Reused:    atomic.LoadInt64(&a.reused),
		Live:      atomic.LoadInt64(&a.allocated) - atomic.LoadInt64(&a.freed),
	}
}
