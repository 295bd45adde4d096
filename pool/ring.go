// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pool provides fixed-capacity slot rings for streaming caches.
//
// A Ring holds released (free) slots in FIFO order. Releasing a slot with
// Enqueue returns a Pointer naming where it was stored; a later Dequeue by
// the same owner with that Pointer gets the very same slot back, with its
// contents still valid, as long as nobody else took it in between. Any
// other Dequeue takes the oldest released slot.
//
// Rings are not safe for concurrent mutation; the owning scene serializes
// access. Statistics are atomic so they can be read at any time.
package pool

import "sync/atomic"

// Pointer names a released slot. It embeds the slot's cell in the ring's
// arena and the generation stamped at release time, so a Pointer whose
// slot has since been handed out (or re-released by someone else) no
// longer validates. Cells never move, so a Pointer stays valid while other
// owners reacquire around it. The zero Pointer never validates.
type Pointer struct {
	cell int
	gen  uint64
}

// Valid reports whether p was returned by a successful Enqueue.
func (p Pointer) Valid() bool {
	return p.gen != 0
}

type slot[K comparable, V any] struct {
	owner K
	value V
	gen   uint64
}

// Ring is a fixed-capacity circular buffer of owner-tagged free slots.
//
// Slots live in a fixed arena; the circular buffer orders arena cells.
type Ring[K comparable, V any] struct {
	cells []slot[K, V]
	at    []int // queue position of each cell, -1 when not released
	spare []int // cells not currently released
	order []int // released cells, oldest first from read
	read  int
	count int
	null  V
	gen   uint64

	// Statistics (atomic for zero-allocation reads)
	hits     atomic.Uint64
	misses   atomic.Uint64
	empties  atomic.Uint64
	rejected atomic.Uint64
}

// NewRing creates an empty ring holding at most capacity slots.
// Dequeue on an empty ring returns null.
// If capacity <= 0, a ring of capacity 1 is created.
func NewRing[K comparable, V any](capacity int, null V) *Ring[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	r := &Ring[K, V]{
		cells: make([]slot[K, V], capacity),
		at:    make([]int, capacity),
		spare: make([]int, capacity),
		order: make([]int, capacity),
		null:  null,
	}
	for i := range r.at {
		r.at[i] = -1
		r.spare[i] = capacity - 1 - i
	}
	return r
}

// Cap returns the ring capacity.
func (r *Ring[K, V]) Cap() int {
	return len(r.cells)
}

// Len returns the number of released slots waiting in the ring.
func (r *Ring[K, V]) Len() int {
	return r.count
}

// Full reports whether another Enqueue would be rejected.
func (r *Ring[K, V]) Full() bool {
	return r.count == len(r.cells)
}

// Empty reports whether Dequeue would return the null value.
func (r *Ring[K, V]) Empty() bool {
	return r.count == 0
}

// Enqueue releases value on behalf of owner and returns a Pointer that
// owner can present to Dequeue to reacquire it. If the ring is full the
// value is not stored and ok is false.
func (r *Ring[K, V]) Enqueue(owner K, value V) (p Pointer, ok bool) {
	if r.Full() {
		r.rejected.Add(1)
		return Pointer{}, false
	}
	cell := r.spare[len(r.spare)-1]
	r.spare = r.spare[:len(r.spare)-1]

	r.gen++
	r.cells[cell] = slot[K, V]{owner: owner, value: value, gen: r.gen}
	pos := (r.read + r.count) % len(r.order)
	r.order[pos] = cell
	r.at[cell] = pos
	r.count++
	return Pointer{cell: cell, gen: r.gen}, true
}

// Owns reports whether p still names a released slot owned by owner,
// that is, whether Dequeue(owner, p) would be a hit.
func (r *Ring[K, V]) Owns(owner K, p Pointer) bool {
	if !p.Valid() || p.cell < 0 || p.cell >= len(r.cells) || r.at[p.cell] < 0 {
		return false
	}
	s := &r.cells[p.cell]
	return s.gen == p.gen && s.owner == owner
}

// Dequeue acquires a slot for owner.
//
// If p still names a slot owned by owner, that slot is returned with
// fresh == false: its contents are exactly what owner released. It trades
// queue positions with the oldest slot before being taken, so the oldest
// slot moves back to where the hit was; its Pointer is unaffected.
//
// Otherwise the oldest released slot is returned regardless of its owner,
// with fresh == true: the caller must repopulate it.
//
// If the ring is empty, Dequeue returns the null value and ok == false.
func (r *Ring[K, V]) Dequeue(owner K, p Pointer) (value V, fresh bool, ok bool) {
	if r.count == 0 {
		r.empties.Add(1)
		return r.null, false, false
	}
	fresh = true
	if r.Owns(owner, p) {
		pos, oldest := r.at[p.cell], r.order[r.read]
		r.order[pos], r.order[r.read] = oldest, p.cell
		r.at[oldest], r.at[p.cell] = pos, r.read
		fresh = false
		r.hits.Add(1)
	} else {
		r.misses.Add(1)
	}
	cell := r.order[r.read]
	value = r.cells[cell].value
	r.cells[cell] = slot[K, V]{value: r.null}
	r.at[cell] = -1
	r.spare = append(r.spare, cell)
	r.read = (r.read + 1) % len(r.order)
	r.count--
	return value, fresh, true
}

// Each calls fn for every released slot, oldest first.
func (r *Ring[K, V]) Each(fn func(owner K, value V)) {
	for i := 0; i < r.count; i++ {
		s := &r.cells[r.order[(r.read+i)%len(r.order)]]
		fn(s.owner, s.value)
	}
}

// Stats contains ring statistics for monitoring.
type Stats struct {
	// Hits counts Dequeues that returned the caller's own slot.
	Hits uint64
	// Misses counts Dequeues that handed out the oldest slot.
	Misses uint64
	// Empties counts Dequeues on an empty ring.
	Empties uint64
	// Rejected counts Enqueues on a full ring.
	Rejected uint64
}

// Stats returns ring statistics.
func (r *Ring[K, V]) Stats() Stats {
	return Stats{
		Hits:     r.hits.Load(),
		Misses:   r.misses.Load(),
		Empties:  r.empties.Load(),
		Rejected: r.rejected.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (r *Ring[K, V]) ResetStats() {
	r.hits.Store(0)
	r.misses.Store(0)
	r.empties.Store(0)
	r.rejected.Store(0)
}
