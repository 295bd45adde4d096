// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/google/uuid"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/pool"
)

// Load brings l toward TextureReady and reports whether it holds a usable
// texture. It never fails loudly: a decode deferred by the per-frame
// budget, an exhausted pool or a decode or upload error all return false,
// and the layer is retried on a later frame.
func (s *Scene) Load(l *Layer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.load(l)
}

// UnloadLayer returns both of l's handles to their pools. The layer keeps the
// pointers so a later Load may reclaim its own slots.
func (s *Scene) UnloadLayer(l *Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadTexture(l)
	s.unloadBitmap(l)
}

// UnloadTexture returns l's texture to its pool and keeps its bitmap.
func (s *Scene) UnloadTexture(l *Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadTexture(l)
}

func (s *Scene) load(l *Layer) bool {
	if l.texture != nil {
		return true
	}
	if l.bitmap == nil && !s.loadBitmap(l) {
		return false
	}
	return s.loadTexture(l)
}

// loadBitmap acquires and, when the slot is fresh, decodes l's bitmap.
func (s *Scene) loadBitmap(l *Layer) bool {
	hit := s.bitmaps.Owns(l.ID, l.bitmapPtr)
	if !hit && s.decodes >= s.opts.maxFrameLoads {
		s.deferred++
		return false
	}
	bmp, fresh, ok := s.bitmaps.Acquire(l.ID, l.bitmapPtr)
	if !ok {
		if !s.evict(l, bitmapKind) {
			return false
		}
		bmp, fresh, ok = s.bitmaps.Acquire(l.ID, l.bitmapPtr)
		if !ok {
			return false
		}
	}
	l.bitmapPtr = pool.Pointer{}
	if !fresh {
		l.bitmap = bmp
		return true
	}

	if bmp == nil {
		bmp = cinema.NewBitmap(s.opts.imageWidth, s.opts.imageHeight)
	}
	s.decodes++
	s.counters.decodes++
	if err := s.opts.decoder.Decode(l.files, bmp); err != nil {
		l.failures++
		s.counters.failures++
		cinema.Logger().Warn("scene: decode failed",
			"item", l.item.key.String(), "layer", l.name, "file", l.files.Primary, "err", err)
		bmp.Reset()
		// Released anonymously so no layer can reclaim the broken content.
		s.bitmaps.Release(uuid.Nil, bmp)
		return false
	}
	l.bitmap = bmp
	return true
}

// loadTexture acquires and, when the slot is fresh, uploads l's texture.
func (s *Scene) loadTexture(l *Layer) bool {
	tex, fresh, ok := s.textures.Acquire(l.ID, l.texturePtr)
	if !ok {
		if !s.evict(l, textureKind) {
			return false
		}
		tex, fresh, ok = s.textures.Acquire(l.ID, l.texturePtr)
		if !ok {
			return false
		}
	}
	l.texturePtr = pool.Pointer{}
	if !fresh {
		s.counters.reclaimed++
		l.texture = tex
		return true
	}

	if tex == nil {
		tex = &Texture{}
	}
	if err := s.opts.uploader.Upload(tex, l.bitmap); err != nil {
		l.failures++
		s.counters.failures++
		cinema.Logger().Warn("scene: upload failed",
			"item", l.item.key.String(), "layer", l.name, "err", err)
		s.textures.Release(uuid.Nil, tex)
		return false
	}
	s.counters.uploads++
	l.texture = tex
	s.redraw = true
	return true
}

func (s *Scene) unloadBitmap(l *Layer) {
	if l.bitmap == nil {
		return
	}
	ptr, ok := s.bitmaps.Release(l.ID, l.bitmap)
	if !ok {
		cinema.Logger().Warn("scene: bitmap pool overflow", "item", l.item.key.String())
	}
	l.bitmap = nil
	l.bitmapPtr = ptr
}

func (s *Scene) unloadTexture(l *Layer) {
	if l.texture == nil {
		return
	}
	ptr, ok := s.textures.Release(l.ID, l.texture)
	if !ok {
		cinema.Logger().Warn("scene: texture pool overflow", "item", l.item.key.String())
	}
	l.texture = nil
	l.texturePtr = ptr
	s.redraw = true
}

type slotKind uint8

const (
	bitmapKind slotKind = iota
	textureKind
)

func (k slotKind) String() string {
	if k == bitmapKind {
		return "bitmap"
	}
	return "texture"
}

// evict releases a slot of the given kind for requester and reports
// whether one was freed.
func (s *Scene) evict(requester *Layer, kind slotKind) bool {
	victim := s.victim(requester, kind)
	if victim == nil {
		return false
	}
	if kind == bitmapKind {
		s.unloadBitmap(victim)
	} else {
		s.unloadTexture(victim)
	}
	s.counters.evictions++
	cinema.Logger().Debug("scene: evicted",
		"kind", kind.String(), "victim", victim.item.key.String(),
		"victim_priority", victim.priority, "for", requester.item.key.String(),
		"priority", requester.priority)
	return true
}

// victim picks the layer that gives up its slot to requester. A bitmap
// whose layer is already TextureReady is not needed on screen, so it goes
// first regardless of priority, provided requester can then obtain a
// texture. Otherwise the lowest-ranked holder whose priority is strictly
// below requester's is chosen.
func (s *Scene) victim(requester *Layer, kind slotKind) *Layer {
	lower := func(l *Layer) bool { return l.priority < requester.priority }
	if kind == bitmapKind && (s.textures.Available() > 0 || s.lowest(requester, textureKind, lower) != nil) {
		uploaded := func(l *Layer) bool { return l.texture != nil }
		if v := s.lowest(requester, bitmapKind, uploaded); v != nil {
			return v
		}
	}
	return s.lowest(requester, kind, lower)
}

// lowest returns the lowest-ranked layer other than requester that holds
// a slot of the given kind and passes ok.
func (s *Scene) lowest(requester *Layer, kind slotKind, ok func(*Layer) bool) *Layer {
	var victim *Layer
	for _, l := range s.layers {
		if l == requester || !holds(l, kind) || !ok(l) {
			continue
		}
		if victim == nil || l.ranks(victim) {
			victim = l
		}
	}
	return victim
}

func holds(l *Layer, kind slotKind) bool {
	if kind == bitmapKind {
		return l.bitmap != nil
	}
	return l.texture != nil
}
