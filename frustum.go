// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import "github.com/chewxy/math32"

// Plane is the half-space N·p + D >= 0.
type Plane struct {
	N Vec3
	D float32
}

// Distance returns the signed distance of p from the plane, scaled by |N|.
func (p Plane) Distance(v Vec3) float32 {
	return p.N.Dot(v) + p.D
}

// Frustum is the viewable volume of a camera, bounded by six inward-facing
// planes in world space.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the frustum planes from a view-projection matrix.
func NewFrustum(viewProj Mat4) Frustum {
	row := func(i int) (Vec3, float32) {
		return Vec3{X: viewProj[i*4], Y: viewProj[i*4+1], Z: viewProj[i*4+2]}, viewProj[i*4+3]
	}
	n3, d3 := row(3)
	var f Frustum
	for i := 0; i < 3; i++ {
		n, d := row(i)
		f.Planes[2*i] = Plane{N: n3.Add(n), D: d3 + d}
		f.Planes[2*i+1] = Plane{N: n3.Sub(n), D: d3 - d}
	}
	return f
}

// IntersectsBox reports whether the oriented box produced by mapping the
// cube [-half, half] through world overlaps the frustum. The test is
// conservative: boxes straddling a frustum corner may report true.
func (f Frustum) IntersectsBox(world Mat4, half Vec3) bool {
	center := world.Origin()
	axes := [3]Vec3{world.Axis(0), world.Axis(1), world.Axis(2)}
	for _, p := range f.Planes {
		r := half.X*math32.Abs(p.N.Dot(axes[0])) +
			half.Y*math32.Abs(p.N.Dot(axes[1])) +
			half.Z*math32.Abs(p.N.Dot(axes[2]))
		if p.Distance(center) < -r {
			return false
		}
	}
	return true
}
