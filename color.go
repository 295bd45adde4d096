// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import (
	"image/color"

	"github.com/chewxy/math32"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Components are nominally in [0, 1] but may exceed it while ColorOps
// are being composed.
type RGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	White       = RGBA{1, 1, 1, 1}
	Transparent = RGBA{}
)

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	return RGBA{
		R: float32(r) / 65535,
		G: float32(g) / 65535,
		B: float32(b) / 65535,
		A: float32(a) / 65535,
	}
}

// Mul returns the component-wise product.
func (c RGBA) Mul(o RGBA) RGBA {
	return RGBA{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Add returns the component-wise sum.
func (c RGBA) Add(o RGBA) RGBA {
	return RGBA{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

// Sanitize replaces NaN or infinite components with fallback's.
func (c RGBA) Sanitize(fallback RGBA) RGBA {
	if !finite(c.R) {
		c.R = fallback.R
	}
	if !finite(c.G) {
		c.G = fallback.G
	}
	if !finite(c.B) {
		c.B = fallback.B
	}
	if !finite(c.A) {
		c.A = fallback.A
	}
	return c
}

func clamp255(x float32) float32 {
	return math32.Max(0, math32.Min(255, x))
}

// ColorOp is an affine per-channel color adjustment: out = in*Mul + Add.
// It is the (multiply, add) pair produced by a color transform.
type ColorOp struct {
	Mul RGBA
	Add RGBA
}

// IdentityColor leaves colors unchanged.
var IdentityColor = ColorOp{Mul: White}

// Then returns the op that applies c first and next second.
func (c ColorOp) Then(next ColorOp) ColorOp {
	return ColorOp{
		Mul: c.Mul.Mul(next.Mul),
		Add: c.Add.Mul(next.Mul).Add(next.Add),
	}
}

// Apply adjusts in.
func (c ColorOp) Apply(in RGBA) RGBA {
	return in.Mul(c.Mul).Add(c.Add)
}

// Sanitize replaces non-finite multipliers with 1 and non-finite
// offsets with 0, channel by channel.
func (c ColorOp) Sanitize() ColorOp {
	return ColorOp{Mul: c.Mul.Sanitize(White), Add: c.Add.Sanitize(Transparent)}
}
