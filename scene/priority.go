// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"math"
	"sort"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/transform"
)

// decay lowers the priority of a layer whose item was not visible: a
// positive score drops to 0, anything else loses 1 per frame.
func decay(l *Layer) {
	if l.priority > 0 {
		l.priority = 0
		return
	}
	l.priority--
}

// OnDrawn records the occlusion result of a drawn layer. fraction is the
// share of framebuffer pixels the layer covered, clamped to [0, 1].
func (s *Scene) OnDrawn(l *Layer, fraction float64, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	weight := s.opts.priorities.Render
	if selected {
		weight = s.opts.priorities.Selected
	}
	l.priority = fraction * weight
}

// Prefetch looks ahead along time: the clock is advanced by the prefetch
// window and every item is tested using only its Temporal skips. Active
// layers of items visible ahead but not now get the prefetch score. The
// clock is restored before returning and nothing is loaded.
//
// It returns the number of layers marked.
func (s *Scene) Prefetch(cam Camera) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.opts.prefetchWindow <= 0 {
		return 0
	}
	f := cam.Frustum()
	now := make([]bool, len(s.items))
	for i, it := range s.items {
		now[i] = s.visibleTo(it, f, true)
	}
	marked := 0
	score := s.opts.priorities.Prefetch
	s.clock.Lookahead(s.opts.prefetchWindow, func() {
		for i, it := range s.items {
			if now[i] || !s.visibleTo(it, f, true) {
				continue
			}
			for _, l := range it.layers {
				if !l.active {
					continue
				}
				l.priority = score
				l.prefetched = s.frame + 1
				marked++
			}
		}
	})
	s.counters.prefetched += uint64(marked)
	if marked > 0 {
		cinema.Logger().Debug("scene: prefetch", "frame", s.frame, "layers", marked)
	}
	return marked
}

// LoadQueue returns the active layers with a positive priority that are
// not yet TextureReady, highest priority first.
func (s *Scene) LoadQueue() []*Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var queue []*Layer
	for _, l := range s.layers {
		if l.active && l.priority > 0 && l.texture == nil {
			queue = append(queue, l)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].priority != queue[j].priority {
			return queue[i].priority > queue[j].priority
		}
		return queue[i].index < queue[j].index
	})
	return queue
}

// SetActive sets the active flag of every layer from filter. Inactive
// layers are left out of compositing and decay like invisible ones.
func (s *Scene) SetActive(filter func(*Layer) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setActive(filter)
}

// Select makes the item bound to key the only selected item. A key that
// matches no item clears the selection. It reports whether an item was
// selected.
func (s *Scene) Select(key transform.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectKey(key)
}

// SetActive is Scene.SetActive under a held lock.
func (tx *Tx) SetActive(filter func(*Layer) bool) { tx.s.setActive(filter) }

// Select is Scene.Select under a held lock.
func (tx *Tx) Select(key transform.Key) bool { return tx.s.selectKey(key) }

func (s *Scene) setActive(filter func(*Layer) bool) {
	for _, l := range s.layers {
		active := filter == nil || filter(l)
		if active != l.active {
			l.active = active
			s.redraw = true
		}
	}
}

func (s *Scene) selectKey(key transform.Key) bool {
	target := s.byKey[key.String()]
	for _, it := range s.items {
		if it.selected != (it == target) {
			it.selected = it == target
			s.redraw = true
		}
	}
	return target != nil
}
