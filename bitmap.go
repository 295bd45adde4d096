// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import (
	"image"
	"image/color"
	"image/draw"
)

// Bitmap is a decoded image held in CPU memory: straight-alpha RGBA
// pixels plus the optional depth and luminance side channels of a
// Cinema layer. A Bitmap is reused across decodes, so its buffers keep
// their capacity when a smaller image is decoded into it.
type Bitmap struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel

	// Depth holds one value per pixel in [0, 1]. It is empty when the
	// layer has no depth channel; a nil check is not enough.
	Depth []float32

	// Luminance holds one value per pixel, or is empty.
	Luminance []uint8
}

// NewBitmap creates a new bitmap with the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	b := &Bitmap{}
	b.Resize(width, height)
	return b
}

// Width returns the width of the bitmap.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the height of the bitmap.
func (b *Bitmap) Height() int {
	return b.height
}

// Data returns the raw pixel data (RGBA format).
func (b *Bitmap) Data() []uint8 {
	return b.data
}

// Size returns the number of bytes held by the bitmap's buffers.
func (b *Bitmap) Size() int {
	return len(b.data) + 4*len(b.Depth) + len(b.Luminance)
}

// Resize sets the dimensions, reusing the pixel buffer when it is large
// enough. Side channels are truncated to length zero but keep their
// capacity for the next decode. Pixel contents are unspecified afterwards.
func (b *Bitmap) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height * 4
	if cap(b.data) >= n {
		b.data = b.data[:n]
	} else {
		b.data = make([]uint8, n)
	}
	b.width = width
	b.height = height
	b.Depth = b.Depth[:0]
	b.Luminance = b.Luminance[:0]
}

// Reset releases nothing but marks the bitmap empty.
func (b *Bitmap) Reset() {
	b.Resize(0, 0)
}

// SetImage copies img into the bitmap, resizing it to img's bounds.
func (b *Bitmap) SetImage(img image.Image) {
	bounds := img.Bounds()
	b.Resize(bounds.Dx(), bounds.Dy())
	if src, ok := img.(*image.NRGBA); ok && src.Stride == 4*b.width {
		copy(b.data, src.Pix)
		return
	}
	dst := &image.NRGBA{Pix: b.data, Stride: 4 * b.width, Rect: image.Rect(0, 0, b.width, b.height)}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
}

// SetDepth stores img's gray levels as the depth channel. img must
// match the bitmap dimensions.
func (b *Bitmap) SetDepth(img image.Image) bool {
	if !b.matches(img) {
		return false
	}
	b.Depth = grow(b.Depth, b.width*b.height)
	min := img.Bounds().Min
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			g := color.Gray16Model.Convert(img.At(min.X+x, min.Y+y)).(color.Gray16)
			b.Depth[y*b.width+x] = float32(g.Y) / 0xffff
		}
	}
	return true
}

// SetLuminance stores img's gray levels as the luminance channel. img
// must match the bitmap dimensions.
func (b *Bitmap) SetLuminance(img image.Image) bool {
	if !b.matches(img) {
		return false
	}
	b.Luminance = grow(b.Luminance, b.width*b.height)
	min := img.Bounds().Min
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			g := color.GrayModel.Convert(img.At(min.X+x, min.Y+y)).(color.Gray)
			b.Luminance[y*b.width+x] = g.Y
		}
	}
	return true
}

func (b *Bitmap) matches(img image.Image) bool {
	r := img.Bounds()
	return r.Dx() == b.width && r.Dy() == b.height
}

// ToImage returns an image.NRGBA sharing the bitmap's pixel buffer.
func (b *Bitmap) ToImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.data,
		Stride: 4 * b.width,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

func grow[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}
