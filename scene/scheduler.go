// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/transform"
)

// AddTransform attaches t to it. Facets t declares Static or Triggered
// are refolded immediately.
func (s *Scene) AddTransform(it *Item, t *transform.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attach(it, t)
}

// AddTransformAll attaches t to every item.
func (s *Scene) AddTransformAll(t *transform.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		s.attach(it, t)
	}
}

// RemoveTransform detaches every attachment of t from it and refolds all
// cached facets. It reports whether t was attached.
func (s *Scene) RemoveTransform(it *Item, t *transform.Transform) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detach(it, t)
}

// ClearTransforms detaches every transform from it.
func (s *Scene) ClearTransforms(it *Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachAll(it)
}

// SetBaseline sets the manual visibility and color the cached facets are
// folded onto.
func (s *Scene) SetBaseline(it *Item, visible bool, color cinema.ColorOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBaseline(it, visible, color)
}

// Update refolds triggered facets of it and eases its animated position
// toward the logical one.
func (s *Scene) Update(it *Item, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(it, dt)
}

// IsVisible tests it against the camera. Visible items get the visibility
// floor on their active layers and the camera-space matrix is returned;
// other items have their layers decay. Layers marked by Prefetch this
// frame keep the prefetch score instead of decaying.
func (s *Scene) IsVisible(it *Item, cam Camera) (cinema.Mat4, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.visibleTo(it, cam.Frustum(), false)
	it.visible = visible
	pr := s.opts.priorities
	for _, l := range it.layers {
		switch {
		case visible && l.active:
			if l.priority <= 0 {
				l.priority = pr.VisibleFloor
			}
		case !visible && l.active && l.prefetched == s.frame+1:
			l.priority = pr.Prefetch
		default:
			decay(l)
		}
	}
	if !visible {
		return cinema.Mat4{}, false
	}
	return cam.ViewProj.Multiply(it.World()), true
}

// Color returns the per-frame color of it: the static color followed by
// every Dynamic or Temporal color transform.
func (s *Scene) Color(it *Item) cinema.ColorOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := it.staticColor
	for _, t := range it.transforms {
		if t.Interval(transform.Color).Volatile() {
			c = c.Then(t.Color(it).Sanitize())
		}
	}
	return c
}

// AddTransform is Scene.AddTransform under a held lock.
func (tx *Tx) AddTransform(it *Item, t *transform.Transform) { tx.s.attach(it, t) }

// RemoveTransform is Scene.RemoveTransform under a held lock.
func (tx *Tx) RemoveTransform(it *Item, t *transform.Transform) bool { return tx.s.detach(it, t) }

// ClearTransforms is Scene.ClearTransforms under a held lock.
func (tx *Tx) ClearTransforms(it *Item) { tx.s.detachAll(it) }

// SetBaseline is Scene.SetBaseline under a held lock.
func (tx *Tx) SetBaseline(it *Item, visible bool, color cinema.ColorOp) {
	tx.s.setBaseline(it, visible, color)
}

func (s *Scene) attach(it *Item, t *transform.Transform) {
	if t == nil {
		return
	}
	it.transforms = append(it.transforms, t)
	it.seen = append(it.seen, t.Pulses())
	if t.Interval(transform.Location).Cached() {
		foldLocation(it)
	}
	if t.Interval(transform.Visibility).Cached() {
		foldVisibility(it)
	}
	if t.Interval(transform.Color).Cached() {
		foldColor(it)
	}
	s.redraw = true
}

func (s *Scene) detach(it *Item, t *transform.Transform) bool {
	n := 0
	for i, other := range it.transforms {
		if other == t {
			continue
		}
		it.transforms[n] = other
		it.seen[n] = it.seen[i]
		n++
	}
	if n == len(it.transforms) {
		return false
	}
	clear(it.transforms[n:])
	it.transforms = it.transforms[:n]
	it.seen = it.seen[:n]
	refold(it)
	s.redraw = true
	return true
}

func (s *Scene) detachAll(it *Item) {
	clear(it.transforms)
	it.transforms = it.transforms[:0]
	it.seen = it.seen[:0]
	refold(it)
	s.redraw = true
}

func (s *Scene) setBaseline(it *Item, visible bool, color cinema.ColorOp) {
	it.baseVisible = visible
	it.baseColor = color.Sanitize()
	foldVisibility(it)
	foldColor(it)
	s.redraw = true
}

func (s *Scene) update(it *Item, dt float64) {
	var pulsed [transform.NumFacets]bool
	volatileLocation := false
	for i, t := range it.transforms {
		now := t.Pulses()
		for f := range now {
			if now[f] != it.seen[i][f] {
				pulsed[f] = true
			}
		}
		it.seen[i] = now
		if t.Interval(transform.Location).Volatile() {
			volatileLocation = true
		}
	}
	if pulsed[transform.Location] || volatileLocation {
		foldLocation(it)
	}
	if pulsed[transform.Visibility] {
		foldVisibility(it)
	}
	if pulsed[transform.Color] {
		foldColor(it)
	}
	if pulsed != [transform.NumFacets]bool{} {
		s.redraw = true
	}
	if ease(&it.animated, it.position, s.opts.easing, float32(dt)) {
		s.redraw = true
	}
}

// visibleTo evaluates the dynamic visibility of it and tests its box
// against f. With temporalOnly set, only Temporal skips are evaluated on
// top of the cached visibility.
func (s *Scene) visibleTo(it *Item, f cinema.Frustum, temporalOnly bool) bool {
	if !it.staticVisible {
		return false
	}
	for _, t := range it.transforms {
		iv := t.Interval(transform.Visibility)
		evaluate := iv.Volatile()
		if temporalOnly {
			evaluate = iv == transform.Temporal
		}
		if evaluate && t.Skip(it) {
			return false
		}
	}
	return f.IntersectsBox(it.World(), it.extent)
}

func refold(it *Item) {
	foldVisibility(it)
	foldColor(it)
	foldLocation(it)
}

// foldLocation sums the offsets of every Location transform. Each offset
// is expressed in the frame accumulated from the transforms before it.
// Non-finite axes contribute 0.
func foldLocation(it *Item) {
	pos := cinema.Vec3{}
	frame := cinema.Identity4()
	for _, t := range it.transforms {
		if t.Location == nil {
			continue
		}
		p := t.Location(it)
		pos = pos.Add(frame.TransformVector(p.Offset.Sanitize()).Sanitize())
		frame = frame.Multiply(p.Frame())
	}
	it.position = pos.Sanitize()
	it.frame = frame
}

func foldVisibility(it *Item) {
	visible := it.baseVisible
	for _, t := range it.transforms {
		if !visible {
			break
		}
		if t.Interval(transform.Visibility).Cached() && t.Skip(it) {
			visible = false
		}
	}
	it.staticVisible = visible
}

func foldColor(it *Item) {
	c := it.baseColor
	for _, t := range it.transforms {
		if t.Interval(transform.Color).Cached() {
			c = c.Then(t.Color(it).Sanitize())
		}
	}
	it.staticColor = c
}

// ease moves cur toward target by |d|^0.5 * sign(d) * k * dt per axis,
// snapping to the target instead of overshooting. It reports whether cur
// changed.
func ease(cur *cinema.Vec3, target cinema.Vec3, k, dt float32) bool {
	if *cur == target {
		return false
	}
	if dt <= 0 || k <= 0 {
		return false
	}
	axes := [3]*float32{&cur.X, &cur.Y, &cur.Z}
	goal := [3]float32{target.X, target.Y, target.Z}
	for i, c := range axes {
		d := goal[i] - *c
		if d == 0 {
			continue
		}
		step := math32.Sqrt(math32.Abs(d)) * k * dt
		if d < 0 {
			step = -step
		}
		if math32.Abs(step) >= math32.Abs(d) || math32.IsNaN(step) {
			*c = goal[i]
			continue
		}
		*c += step
	}
	return true
}
