// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scene streams an ensemble of image layers through fixed-size
// bitmap and texture pools.
//
// A Scene owns the items of one loaded ensemble, the two slot pools, the
// logical clock and the per-frame bookkeeping. It is driven by one render
// goroutine following the frame protocol:
//
//	sc.BeginFrame(dt)
//	sc.Prefetch(cam)
//	for _, it := range sc.Items() {
//		mvp, ok := sc.IsVisible(it, cam)
//		...
//		sc.OnDrawn(layer, fraction, it.Selected())
//	}
//	for _, l := range sc.LoadQueue() {
//		sc.Load(l)
//	}
//
// Every exported Scene method takes the scene lock, so a UI goroutine may
// call them concurrently. Use Locked to batch several edits under one
// acquisition. Item and Layer accessors do not lock; a UI goroutine reads
// layers through Scene.LayerStatus instead.
package scene

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/pool"
	"github.com/gogpu/cinema/transform"
)

// Scene errors.
var (
	// ErrClosed is returned by operations on a closed scene.
	ErrClosed = errors.New("scene: closed")

	// ErrNoEnsemble is returned when loading a nil ensemble index.
	ErrNoEnsemble = errors.New("scene: no ensemble")
)

// Camera is the per-frame view state.
type Camera struct {
	Position cinema.Vec3
	ViewProj cinema.Mat4
}

// NewCamera creates a perspective camera at eye looking at target with +Y up.
func NewCamera(eye, target cinema.Vec3, fovY, aspect, near, far float32) Camera {
	view := cinema.LookAt(eye, target, cinema.V3(0, 1, 0))
	return Camera{
		Position: eye,
		ViewProj: cinema.Perspective(fovY, aspect, near, far).Multiply(view),
	}
}

// Frustum returns the camera's view volume.
func (c Camera) Frustum() cinema.Frustum {
	return cinema.NewFrustum(c.ViewProj)
}

// Scene is the streaming context of one loaded ensemble.
type Scene struct {
	mu   sync.Mutex
	opts options

	clock  *cinema.Clock
	items  []*Item
	byKey  map[string]*Item
	layers []*Layer

	bitmaps  *pool.Pool[uuid.UUID, *cinema.Bitmap]
	textures *pool.Pool[uuid.UUID, *Texture]

	frame    uint64
	decodes  int
	deferred int
	redraw   bool
	closed   bool

	counters counters
}

// New creates an empty scene. Pool capacities are derived from the memory
// budgets and the image size.
func New(opts ...Option) *Scene {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.decoder == nil {
		o.decoder = NewFileDecoder()
	}
	if o.uploader == nil {
		o.uploader = &MemoryUploader{}
	}

	pixels := int64(o.imageWidth) * int64(o.imageHeight)
	bitmapSlots := pool.CapacityFor(o.bitmapBudget, pixels*4, o.ceiling)
	textureSlots := pool.CapacityFor(o.textureBudget, pixels*texelSize(textureFormat), o.ceiling)

	s := &Scene{
		opts:     o,
		clock:    cinema.NewClock(o.startTime),
		byKey:    make(map[string]*Item),
		bitmaps:  pool.New[uuid.UUID, *cinema.Bitmap]("bitmaps", bitmapSlots, nil),
		textures: pool.New[uuid.UUID, *Texture]("textures", textureSlots, nil),
	}
	cinema.Logger().Debug("scene: pools sized",
		"bitmaps", bitmapSlots, "textures", textureSlots,
		"width", o.imageWidth, "height", o.imageHeight)
	return s
}

// Locked runs fn with the scene lock held. fn edits the scene through tx
// and must not call Scene methods, which would deadlock.
func (s *Scene) Locked(fn func(tx *Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Tx{s: s})
}

// Tx edits a scene whose lock is held. It is only valid inside Locked.
type Tx struct {
	s *Scene
}

// Items returns a snapshot of the scene's items in ensemble order.
func (s *Scene) Items() []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Layers returns a snapshot of every layer of every item.
func (s *Scene) Layers() []*Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Lookup returns the item bound to key.
func (s *Scene) Lookup(key transform.Key) (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.byKey[key.String()]
	return it, ok
}

// Frame returns the number of frames begun so far.
func (s *Scene) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Now returns the logical clock.
func (s *Scene) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Now()
}

// SetTime sets the logical clock.
func (s *Scene) SetTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Set(t)
	s.redraw = true
}

// Play starts advancing the logical clock by speed time units per second.
func (s *Scene) Play(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Play(speed)
}

// Pause stops the logical clock.
func (s *Scene) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Pause()
}

// BeginFrame starts a frame: the decode budget is reset, the clock
// advances by dt seconds and every item is updated.
func (s *Scene) BeginFrame(dt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frame++
	s.decodes = 0
	s.deferred = 0
	if s.clock.Playing() && dt > 0 {
		s.redraw = true
	}
	s.clock.Step(dt)
	for _, it := range s.items {
		s.update(it, dt)
	}
	return nil
}

// TakeRedraw reports whether the scene changed since the last call and
// clears the flag.
func (s *Scene) TakeRedraw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.redraw
	s.redraw = false
	return r
}

// Unload drops the ensemble. Every held handle goes back to its pool;
// the pools and their backend textures survive for the next ensemble.
func (s *Scene) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadAll()
}

func (s *Scene) unloadAll() {
	for _, l := range s.layers {
		s.unloadTexture(l)
		s.unloadBitmap(l)
	}
	s.items = nil
	s.layers = nil
	s.byKey = make(map[string]*Item)
	s.redraw = true
}

// Close unloads the ensemble and destroys every backend texture.
// The scene cannot be used afterwards.
func (s *Scene) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.unloadAll()
	s.textures.EachFree(func(t *Texture) {
		s.opts.uploader.Destroy(t)
	})
	s.closed = true
	cinema.Logger().Info("scene: closed", "frames", s.frame)
	return nil
}
