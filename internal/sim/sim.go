// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sim drives a scene without a GPU. It orbits a camera around the
// ensemble, runs the frame protocol and stands in for the occlusion query
// by measuring the projected area of every drawn quad.
package sim

import (
	"context"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/scene"
)

// Options configures a Renderer.
type Options struct {
	// FPS is the simulated frame rate.
	FPS float64
	// Orbit is the camera's angular speed in turns per second.
	Orbit float64
	// Distance is the camera's distance from the ensemble center.
	Distance float32
	// FovY is the vertical field of view in radians.
	FovY float32
}

func (o *Options) defaults() {
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.Distance <= 0 {
		o.Distance = 12
	}
	if o.FovY <= 0 {
		o.FovY = math32.Pi / 3
	}
}

// Frame summarizes one simulated frame.
type Frame struct {
	Index    int
	Time     float64
	Visible  int
	Drawn    int
	Loaded   int
	Marked   int
	Coverage float64
	Stats    scene.Stats
}

// Renderer is a headless renderer bound to one scene.
type Renderer struct {
	sc     *scene.Scene
	opts   Options
	frame  int
	center cinema.Vec3
}

// New creates a renderer for sc.
func New(sc *scene.Scene, opts Options) *Renderer {
	opts.defaults()
	r := &Renderer{sc: sc, opts: opts}
	r.Recenter()
	return r
}

// Recenter aims the camera at the mean logical position of the items.
func (r *Renderer) Recenter() {
	items := r.sc.Items()
	var sum cinema.Vec3
	for _, it := range items {
		sum = sum.Add(it.Position())
	}
	if len(items) > 0 {
		sum = sum.Mul(1 / float32(len(items)))
	}
	r.center = sum
}

// Camera returns the camera of frame i.
func (r *Renderer) Camera(i int) scene.Camera {
	angle := 2 * math.Pi * r.opts.Orbit * float64(i) / r.opts.FPS
	sin, cos := math32.Sincos(float32(angle))
	d := r.opts.Distance
	eye := r.center.Add(cinema.V3(d*sin, 0, d*cos))
	return scene.NewCamera(eye, r.center, r.opts.FovY, 1, 0.1, 10*d)
}

// Step renders one frame.
func (r *Renderer) Step() (Frame, error) {
	dt := 1 / r.opts.FPS
	if err := r.sc.BeginFrame(dt); err != nil {
		return Frame{}, err
	}
	cam := r.Camera(r.frame)
	f := Frame{Index: r.frame, Time: r.sc.Now()}
	f.Marked = r.sc.Prefetch(cam)

	for _, it := range r.sc.Items() {
		mvp, ok := r.sc.IsVisible(it, cam)
		if !ok {
			continue
		}
		f.Visible++
		coverage := Coverage(mvp, it.Extent())
		for _, l := range it.Layers() {
			if !l.Active() || l.Texture() == nil {
				continue
			}
			r.sc.OnDrawn(l, coverage, it.Selected())
			f.Drawn++
			f.Coverage += coverage
		}
	}
	for _, l := range r.sc.LoadQueue() {
		if r.sc.Load(l) {
			f.Loaded++
		}
	}
	f.Stats = r.sc.Stats()
	r.frame++
	return f, nil
}

// Run renders n frames, calling fn after each one. It stops early when
// ctx is done.
func (r *Renderer) Run(ctx context.Context, n int, fn func(Frame)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := r.Step()
		if err != nil {
			return err
		}
		if fn != nil {
			fn(f)
		}
	}
	return nil
}

// Coverage returns the share of the viewport covered by the quad
// [-half.X, half.X] x [-half.Y, half.Y] mapped through mvp, clipped to the
// viewport. Quads crossing the camera plane count as full coverage.
func Coverage(mvp cinema.Mat4, half cinema.Vec3) float64 {
	corners := [4]cinema.Vec3{
		cinema.V3(-half.X, -half.Y, 0),
		cinema.V3(half.X, -half.Y, 0),
		cinema.V3(half.X, half.Y, 0),
		cinema.V3(-half.X, half.Y, 0),
	}
	var poly [][2]float64
	for _, c := range corners {
		p := mvp.Project(c)
		if p.W <= 0 {
			return 1
		}
		poly = append(poly, [2]float64{float64(p.X / p.W), float64(p.Y / p.W)})
	}
	poly = clip(poly)
	area := 0.0
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		area += a[0]*b[1] - b[0]*a[1]
	}
	// The viewport spans [-1, 1] on both axes.
	return math.Min(1, math.Abs(area)/2/4)
}

// clip cuts poly to the square [-1, 1]^2 (Sutherland-Hodgman).
func clip(poly [][2]float64) [][2]float64 {
	edges := []struct {
		axis int
		sign float64
	}{{0, 1}, {0, -1}, {1, 1}, {1, -1}}
	for _, e := range edges {
		if len(poly) == 0 {
			return nil
		}
		inside := func(p [2]float64) bool { return e.sign*p[e.axis] <= 1 }
		var out [][2]float64
		for i := range poly {
			cur, prev := poly[i], poly[(i+len(poly)-1)%len(poly)]
			if inside(cur) {
				if !inside(prev) {
					out = append(out, intersect(prev, cur, e.axis, e.sign))
				}
				out = append(out, cur)
			} else if inside(prev) {
				out = append(out, intersect(prev, cur, e.axis, e.sign))
			}
		}
		poly = out
	}
	return poly
}

func intersect(a, b [2]float64, axis int, sign float64) [2]float64 {
	t := (sign - a[axis]) / (b[axis] - a[axis])
	return [2]float64{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}
