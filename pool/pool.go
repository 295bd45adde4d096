// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pool

// DefaultCeiling caps the number of slots a budget-derived pool may have.
const DefaultCeiling = 1024

// bytesPerMB is the number of bytes in a megabyte.
const bytesPerMB = 1024 * 1024

// CapacityFor returns how many slots of bytesPerSlot fit in budgetBytes,
// capped at ceiling. At least one slot is always granted so that a
// streaming cache can make progress under any budget.
//
// If bytesPerSlot <= 0 the ceiling is returned. If ceiling <= 0,
// DefaultCeiling is used.
func CapacityFor(budgetBytes, bytesPerSlot int64, ceiling int) int {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if bytesPerSlot <= 0 {
		return ceiling
	}
	n := budgetBytes / bytesPerSlot
	switch {
	case n < 1:
		return 1
	case n > int64(ceiling):
		return ceiling
	default:
		return int(n)
	}
}

// MB converts megabytes to bytes.
func MB(n int) int64 {
	return int64(n) * bytesPerMB
}

// Pool is a Ring pre-filled with capacity unowned slots holding the null
// value. Handles are created lazily by whoever acquires a null slot, so a
// fresh pool costs no memory beyond the ring itself.
type Pool[K comparable, V any] struct {
	name string
	ring *Ring[K, V]
}

// New creates a pool with capacity free slots.
func New[K comparable, V any](name string, capacity int, null V) *Pool[K, V] {
	r := NewRing[K](capacity, null)
	var nobody K
	for !r.Full() {
		r.Enqueue(nobody, null)
	}
	return &Pool[K, V]{name: name, ring: r}
}

// Name returns the pool's diagnostic name.
func (p *Pool[K, V]) Name() string {
	return p.name
}

// Capacity returns the total number of slots.
func (p *Pool[K, V]) Capacity() int {
	return p.ring.Cap()
}

// Available returns the number of free slots.
func (p *Pool[K, V]) Available() int {
	return p.ring.Len()
}

// Outstanding returns the number of slots currently held by owners.
// It never exceeds Capacity.
func (p *Pool[K, V]) Outstanding() int {
	return p.ring.Cap() - p.ring.Len()
}

// Acquire takes a slot for owner. See Ring.Dequeue.
func (p *Pool[K, V]) Acquire(owner K, ptr Pointer) (value V, fresh bool, ok bool) {
	return p.ring.Dequeue(owner, ptr)
}

// Release returns a slot on behalf of owner. See Ring.Enqueue. Releasing
// more slots than were acquired is a caller bug and is reported by ok.
func (p *Pool[K, V]) Release(owner K, value V) (Pointer, bool) {
	return p.ring.Enqueue(owner, value)
}

// Owns reports whether Acquire(owner, ptr) would return owner's own slot.
func (p *Pool[K, V]) Owns(owner K, ptr Pointer) bool {
	return p.ring.Owns(owner, ptr)
}

// EachFree calls fn for every free slot value, oldest first.
func (p *Pool[K, V]) EachFree(fn func(value V)) {
	p.ring.Each(func(_ K, v V) { fn(v) })
}

// Stats returns the underlying ring statistics.
func (p *Pool[K, V]) Stats() Stats {
	return p.ring.Stats()
}
