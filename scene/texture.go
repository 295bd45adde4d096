// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cinema"
)

// ErrEmptyBitmap is returned when uploading a bitmap with no pixels.
var ErrEmptyBitmap = errors.New("scene: empty bitmap")

// textureFormat is the format of every texture slot.
var textureFormat = gputypes.TextureFormatRGBA8Unorm

// Texture is a texture slot handle. Handle is the backend texture, or nil
// until the slot is first uploaded to.
type Texture struct {
	Handle any
	Size   gputypes.Extent3D
	Format gputypes.TextureFormat
}

// Bytes returns the GPU memory held by the texture.
func (t *Texture) Bytes() int64 {
	if t == nil || t.Handle == nil {
		return 0
	}
	return int64(t.Size.Width) * int64(t.Size.Height) * int64(t.Size.DepthOrArrayLayers) * texelSize(t.Format)
}

func (t *Texture) fits(w, h int) bool {
	return t.Handle != nil && int(t.Size.Width) == w && int(t.Size.Height) == h
}

// texelSize returns the bytes per texel of format.
func texelSize(format gputypes.TextureFormat) int64 {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	default:
		return 4
	}
}

// Uploader copies a decoded bitmap into a texture slot. When dst already
// holds a backend texture of the right size, it should be refreshed in
// place; otherwise it is replaced.
type Uploader interface {
	Upload(dst *Texture, src *cinema.Bitmap) error
	Destroy(t *Texture)
}

// textureDestroyer matches backend textures that can be released.
type textureDestroyer interface {
	Destroy()
}

// GPUUploader uploads bitmaps through a gpucontext texture creator, such
// as the one returned by gogpu's Context.TextureCreator().
type GPUUploader struct {
	creator gpucontext.TextureCreator
}

// NewGPUUploader creates an uploader backed by creator.
func NewGPUUploader(creator gpucontext.TextureCreator) *GPUUploader {
	return &GPUUploader{creator: creator}
}

// Upload implements Uploader.
func (u *GPUUploader) Upload(dst *Texture, src *cinema.Bitmap) error {
	if src == nil || len(src.Data()) == 0 {
		return ErrEmptyBitmap
	}
	w, h := src.Width(), src.Height()
	if dst.fits(w, h) {
		if updater, ok := dst.Handle.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(src.Data()); err != nil {
				return fmt.Errorf("scene: texture update failed: %w", err)
			}
			return nil
		}
	}
	tex, err := u.creator.NewTextureFromRGBA(w, h, src.Data())
	if err != nil {
		return fmt.Errorf("scene: texture creation failed: %w", err)
	}
	u.Destroy(dst)
	dst.Handle = tex
	dst.Size = gputypes.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	dst.Format = textureFormat
	return nil
}

// Destroy implements Uploader.
func (u *GPUUploader) Destroy(t *Texture) {
	if t == nil || t.Handle == nil {
		return
	}
	if d, ok := t.Handle.(textureDestroyer); ok {
		d.Destroy()
	}
	t.Handle = nil
}

// MemoryUploader keeps texture contents in CPU memory. It stands in for a
// GPU in headless runs and tests; Handle holds a []byte copy.
type MemoryUploader struct {
	uploads   int
	destroyed int
}

// Upload implements Uploader.
func (u *MemoryUploader) Upload(dst *Texture, src *cinema.Bitmap) error {
	if src == nil || len(src.Data()) == 0 {
		return ErrEmptyBitmap
	}
	w, h := src.Width(), src.Height()
	buf, _ := dst.Handle.([]byte)
	if cap(buf) < len(src.Data()) {
		buf = make([]byte, len(src.Data()))
	}
	buf = buf[:len(src.Data())]
	copy(buf, src.Data())
	dst.Handle = buf
	dst.Size = gputypes.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	dst.Format = textureFormat
	u.uploads++
	return nil
}

// Destroy implements Uploader.
func (u *MemoryUploader) Destroy(t *Texture) {
	if t == nil || t.Handle == nil {
		return
	}
	t.Handle = nil
	u.destroyed++
}

// Uploads returns the number of successful uploads.
func (u *MemoryUploader) Uploads() int {
	return u.uploads
}
