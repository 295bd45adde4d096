// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import (
	"image/color"
	"testing"

	"github.com/chewxy/math32"
)

func TestColorOpThen(t *testing.T) {
	darken := ColorOp{Mul: RGBA{0.5, 0.5, 0.5, 1}}
	redden := ColorOp{Mul: White, Add: RGBA{R: 0.25}}

	in := RGBA{1, 1, 1, 1}
	got := darken.Then(redden).Apply(in)
	want := redden.Apply(darken.Apply(in))
	if got != want {
		t.Errorf("Then().Apply = %v, want %v", got, want)
	}
	if got != (RGBA{0.75, 0.5, 0.5, 1}) {
		t.Errorf("Then().Apply = %v, want (0.75,0.5,0.5,1)", got)
	}

	// Order matters.
	if darken.Then(redden) == redden.Then(darken) {
		t.Error("Then should not be commutative for these ops")
	}
}

func TestColorOpIdentity(t *testing.T) {
	c := RGBA{0.2, 0.4, 0.6, 0.8}
	if got := IdentityColor.Apply(c); got != c {
		t.Errorf("IdentityColor.Apply = %v, want %v", got, c)
	}
	op := ColorOp{Mul: RGBA{2, 2, 2, 2}, Add: RGBA{0.1, 0, 0, 0}}
	if got := IdentityColor.Then(op); got != op {
		t.Errorf("IdentityColor.Then(op) = %v, want %v", got, op)
	}
}

func TestColorOpSanitize(t *testing.T) {
	op := ColorOp{
		Mul: RGBA{math32.NaN(), 0.5, 1, 1},
		Add: RGBA{0, math32.Inf(1), 0.1, 0},
	}
	got := op.Sanitize()
	want := ColorOp{Mul: RGBA{1, 0.5, 1, 1}, Add: RGBA{0, 0, 0.1, 0}}
	if got != want {
		t.Errorf("Sanitize = %v, want %v", got, want)
	}
}

func TestRGBAColorRoundTrip(t *testing.T) {
	c := FromColor(color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if c.R != 1 || c.G != 0 || c.A != 1 {
		t.Errorf("FromColor = %v", c)
	}
	n := RGBA{2, -1, 0.5, 1}.Color().(color.NRGBA)
	if n.R != 255 || n.G != 0 || n.B != 127 {
		t.Errorf("Color() = %v, want clamped", n)
	}
}
