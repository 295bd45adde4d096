// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import "github.com/gogpu/cinema/pool"

// counters accumulate over the scene's lifetime.
type counters struct {
	decodes    uint64
	uploads    uint64
	reclaimed  uint64
	evictions  uint64
	failures   uint64
	prefetched uint64
}

// PoolStats describes one slot pool.
type PoolStats struct {
	Capacity    int
	Outstanding int
	pool.Stats
}

// Stats is a snapshot of the scene for diagnostic overlays.
type Stats struct {
	Frame uint64

	// DecodesThisFrame counts decodes started since BeginFrame.
	DecodesThisFrame int
	// Deferred counts loads postponed by the decode budget this frame.
	Deferred int

	Decodes    uint64
	Uploads    uint64
	Reclaimed  uint64
	Evictions  uint64
	Failures   uint64
	Prefetched uint64

	Items        int
	Layers       int
	Visible      int
	BitmapReady  int
	TextureReady int

	Bitmaps  PoolStats
	Textures PoolStats
}

// LayerStatus is a consistent snapshot of one layer.
type LayerStatus struct {
	State    LayerState
	Priority float64
	Active   bool
	Selected bool
	Failures int
	Texture  Texture
}

// LayerStatus returns l's state read under the scene lock. The texture is
// copied, so its Handle must not be used once the layer is evicted.
func (s *Scene) LayerStatus(l *Layer) LayerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := LayerStatus{
		State:    l.State(),
		Priority: l.priority,
		Active:   l.active,
		Selected: l.item.selected,
		Failures: l.failures,
	}
	if l.texture != nil {
		st.Texture = *l.texture
	}
	return st
}

// Stats returns a snapshot of the scene's counters.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Frame:            s.frame,
		DecodesThisFrame: s.decodes,
		Deferred:         s.deferred,
		Decodes:          s.counters.decodes,
		Uploads:          s.counters.uploads,
		Reclaimed:        s.counters.reclaimed,
		Evictions:        s.counters.evictions,
		Failures:         s.counters.failures,
		Prefetched:       s.counters.prefetched,
		Items:            len(s.items),
		Layers:           len(s.layers),
		Bitmaps: PoolStats{
			Capacity:    s.bitmaps.Capacity(),
			Outstanding: s.bitmaps.Outstanding(),
			Stats:       s.bitmaps.Stats(),
		},
		Textures: PoolStats{
			Capacity:    s.textures.Capacity(),
			Outstanding: s.textures.Outstanding(),
			Stats:       s.textures.Stats(),
		},
	}
	for _, it := range s.items {
		if it.visible {
			st.Visible++
		}
	}
	for _, l := range s.layers {
		switch l.State() {
		case BitmapReady:
			st.BitmapReady++
		case TextureReady:
			st.TextureReady++
		}
	}
	return st
}
