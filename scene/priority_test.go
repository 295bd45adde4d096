// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"math"
	"testing"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/transform"
)

func TestOnDrawn(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		selected bool
		want     float64
	}{
		{"half", 0.5, false, 500},
		{"half selected", 0.5, true, 1000},
		{"full", 1, false, 1000},
		{"clamped above", 3, false, 1000},
		{"clamped below", -1, true, 0},
		{"nan", math.NaN(), false, 0},
	}
	sc, _ := newTestScene(t, 1)
	l := sc.Layers()[0]
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc.OnDrawn(l, tt.fraction, tt.selected)
			if l.Priority() != tt.want {
				t.Errorf("priority = %v, want %v", l.Priority(), tt.want)
			}
		})
	}
}

func TestOnDrawnCustomWeights(t *testing.T) {
	sc, _ := newTestScene(t, 1, WithPriorities(Priorities{Render: 10, Selected: 30, Prefetch: 12, VisibleFloor: 1}))
	l := sc.Layers()[0]
	sc.OnDrawn(l, 0.5, true)
	if l.Priority() != 15 {
		t.Errorf("priority = %v, want 15", l.Priority())
	}
}

func TestDecay(t *testing.T) {
	tests := []struct {
		from, want float64
	}{
		{1000, 0},
		{0.5, 0},
		{0, -1},
		{-3, -4},
	}
	for _, tt := range tests {
		l := &Layer{priority: tt.from}
		decay(l)
		if l.priority != tt.want {
			t.Errorf("decay(%v) = %v, want %v", tt.from, l.priority, tt.want)
		}
	}
}

func TestDecayWhileInvisibleIsMonotonic(t *testing.T) {
	sc, _ := newTestScene(t, 1)
	cam := testCamera()
	it := sc.Items()[0]
	l := it.Layers()[0]

	_ = sc.BeginFrame(0)
	if _, ok := sc.IsVisible(it, cam); !ok {
		t.Fatal("item should start visible")
	}
	sc.OnDrawn(l, 1, false)

	sc.SetBaseline(it, false, cinema.IdentityColor)
	prev := l.Priority()
	for k := 1; k <= 6; k++ {
		_ = sc.BeginFrame(0)
		if _, ok := sc.IsVisible(it, cam); ok {
			t.Fatalf("frame %d: hidden item visible", k)
		}
		p := l.Priority()
		if p > prev {
			t.Fatalf("frame %d: priority rose from %v to %v", k, prev, p)
		}
		if p > -float64(k-1) {
			t.Errorf("frame %d: priority %v, want <= %v", k, p, -float64(k-1))
		}
		prev = p
	}
}

func TestInactiveLayersDecayWhenVisible(t *testing.T) {
	sc, _ := newTestScene(t, 1)
	it := sc.Items()[0]
	sc.SetActive(func(*Layer) bool { return false })
	if _, ok := sc.IsVisible(it, testCamera()); !ok {
		t.Fatal("item culled")
	}
	if p := it.Layers()[0].Priority(); p != -1 {
		t.Errorf("inactive layer priority = %v, want -1", p)
	}
}

func TestPrefetch(t *testing.T) {
	sc, _ := newTestScene(t, 3)
	sc.AddTransformAll(transform.TimeWindow(0, 1))
	cam := testCamera()
	items := sc.Items()
	_ = sc.BeginFrame(0)

	if n := sc.Prefetch(cam); n != 1 {
		t.Fatalf("Prefetch marked %d layers, want 1", n)
	}
	if sc.Now() != 0 {
		t.Fatalf("clock not restored: %v", sc.Now())
	}
	pr := DefaultPriorities()
	if p := items[1].Layers()[0].Priority(); p != pr.Prefetch {
		t.Errorf("upcoming layer priority = %v, want %v", p, pr.Prefetch)
	}
	if p := items[0].Layers()[0].Priority(); p != 0 {
		t.Errorf("current layer priority = %v, want 0", p)
	}

	// The real pass keeps the prefetch score instead of decaying it.
	if _, ok := sc.IsVisible(items[1], cam); ok {
		t.Fatal("future item visible now")
	}
	if p := items[1].Layers()[0].Priority(); p != pr.Prefetch {
		t.Errorf("after real pass priority = %v, want %v", p, pr.Prefetch)
	}
	if _, ok := sc.IsVisible(items[0], cam); !ok {
		t.Fatal("current item culled")
	}
	if _, ok := sc.IsVisible(items[2], cam); ok {
		t.Fatal("far future item visible")
	}
	if p := items[2].Layers()[0].Priority(); p != -1 {
		t.Errorf("far future priority = %v, want -1", p)
	}

	// Marks expire with the frame.
	_ = sc.BeginFrame(0)
	sc.IsVisible(items[1], cam)
	if p := items[1].Layers()[0].Priority(); p != 0 {
		t.Errorf("stale prefetch priority = %v, want 0", p)
	}
	if st := sc.Stats(); st.Prefetched != 1 || st.DecodesThisFrame != 0 {
		t.Errorf("Prefetched=%d DecodesThisFrame=%d, want 1 and 0", st.Prefetched, st.DecodesThisFrame)
	}
}

func TestPrefetchIgnoresDynamicSkips(t *testing.T) {
	sc, _ := newTestScene(t, 2)
	items := sc.Items()
	sc.AddTransformAll(transform.TimeWindow(0, 1))
	sc.AddTransform(items[1], &transform.Transform{
		Skip:         func(transform.Target) bool { return true },
		SkipInterval: transform.Dynamic,
	})
	if n := sc.Prefetch(testCamera()); n != 1 {
		t.Errorf("Prefetch marked %d layers, want 1", n)
	}
}

func TestPrefetchDisabled(t *testing.T) {
	sc, _ := newTestScene(t, 2, WithPrefetchWindow(0))
	sc.AddTransformAll(transform.TimeWindow(0, 1))
	if n := sc.Prefetch(testCamera()); n != 0 {
		t.Errorf("Prefetch marked %d layers with window 0", n)
	}
}

func TestLoadQueue(t *testing.T) {
	sc, _ := newTestScene(t, 4)
	ls := sc.Layers()
	sc.OnDrawn(ls[0], 0.1, false)
	sc.OnDrawn(ls[1], 0.9, false)
	sc.OnDrawn(ls[2], 0.5, false)
	sc.SetActive(func(l *Layer) bool { return l != ls[2] })

	q := sc.LoadQueue()
	if len(q) != 2 || q[0] != ls[1] || q[1] != ls[0] {
		t.Fatalf("LoadQueue = %v", q)
	}
}
