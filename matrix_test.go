// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func near(a, b Vec3) bool {
	d := a.Sub(b)
	return math32.Abs(d.X) < eps && math32.Abs(d.Y) < eps && math32.Abs(d.Z) < eps
}

func TestMat4Identity(t *testing.T) {
	m := Identity4()
	if !m.IsIdentity() {
		t.Error("Identity4() should be identity")
	}
	p := V3(1, 2, 3)
	if got := m.TransformPoint(p); got != p {
		t.Errorf("TransformPoint = %v, want %v", got, p)
	}
	if Rotation(Vec3{}) != m {
		t.Error("Rotation(zero) should be identity")
	}
}

func TestMat4Compose(t *testing.T) {
	m := Compose(V3(10, 0, 0), V3(0, 0, math32.Pi/2), V3(2, 2, 2))

	// Scale, then rotate 90 degrees around Z, then translate.
	got := m.TransformPoint(V3(1, 0, 0))
	if !near(got, V3(10, 2, 0)) {
		t.Errorf("TransformPoint = %v, want (10,2,0)", got)
	}
	if got := m.TransformVector(V3(1, 0, 0)); !near(got, V3(0, 2, 0)) {
		t.Errorf("TransformVector = %v, want (0,2,0)", got)
	}
	if got := m.Origin(); got != V3(10, 0, 0) {
		t.Errorf("Origin = %v", got)
	}
	if got := m.Axis(1); !near(got, V3(-2, 0, 0)) {
		t.Errorf("Axis(1) = %v, want (-2,0,0)", got)
	}
}

func TestMat4MultiplyOrder(t *testing.T) {
	tr := Translation(V3(1, 0, 0))
	sc := Scaling(V3(3, 3, 3))

	// tr * sc scales first.
	if got := tr.Multiply(sc).TransformPoint(V3(1, 0, 0)); !near(got, V3(4, 0, 0)) {
		t.Errorf("tr*sc = %v, want (4,0,0)", got)
	}
	// sc * tr translates first.
	if got := sc.Multiply(tr).TransformPoint(V3(1, 0, 0)); !near(got, V3(6, 0, 0)) {
		t.Errorf("sc*tr = %v, want (6,0,0)", got)
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(V3(0, 0, 10), V3(0, 0, 0), V3(0, 1, 0))
	if got := view.TransformPoint(V3(0, 0, 0)); !near(got, V3(0, 0, -10)) {
		t.Errorf("origin in view space = %v, want (0,0,-10)", got)
	}
}
