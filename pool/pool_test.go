// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pool

import "testing"

func TestCapacityFor(t *testing.T) {
	tests := []struct {
		name    string
		budget  int64
		perSlot int64
		ceiling int
		want    int
	}{
		{"exact fit", MB(64), MB(1), 0, 64},
		{"rounds down", 10, 3, 100, 3},
		{"capped", MB(4096), MB(1), 0, DefaultCeiling},
		{"custom ceiling", MB(64), MB(1), 16, 16},
		{"tiny budget keeps one slot", 10, 100, 0, 1},
		{"unknown slot size", MB(1), 0, 32, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapacityFor(tt.budget, tt.perSlot, tt.ceiling); got != tt.want {
				t.Errorf("CapacityFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPoolStartsFull(t *testing.T) {
	p := New[string, *int]("bitmaps", 3, nil)
	if p.Name() != "bitmaps" || p.Capacity() != 3 {
		t.Fatalf("Name/Capacity = %q/%d", p.Name(), p.Capacity())
	}
	if p.Available() != 3 || p.Outstanding() != 0 {
		t.Errorf("Available/Outstanding = %d/%d, want 3/0", p.Available(), p.Outstanding())
	}

	v, fresh, ok := p.Acquire("layer", Pointer{})
	if !ok || !fresh || v != nil {
		t.Errorf("first Acquire = (%v, %v, %v), want (nil, true, true)", v, fresh, ok)
	}
	if p.Outstanding() != 1 {
		t.Errorf("Outstanding = %d, want 1", p.Outstanding())
	}

	n := 0
	p.EachFree(func(*int) { n++ })
	if n != 2 {
		t.Errorf("EachFree visited %d, want 2", n)
	}
}

func TestPoolReacquire(t *testing.T) {
	p := New[string, int]("textures", 2, 0)
	p.Acquire("a", Pointer{})
	p.Acquire("b", Pointer{})

	ptr, ok := p.Release("a", 42)
	if !ok {
		t.Fatal("Release rejected")
	}
	if !p.Owns("a", ptr) {
		t.Fatal("Owns = false after Release")
	}
	v, fresh, _ := p.Acquire("a", ptr)
	if fresh || v != 42 {
		t.Errorf("Acquire(a, ptr) = (%d, %v), want (42, false)", v, fresh)
	}
	if s := p.Stats(); s.Hits != 1 {
		t.Errorf("Hits = %d, want 1", s.Hits)
	}
}
