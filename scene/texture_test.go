// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cinema"
)

func TestMemoryUploader(t *testing.T) {
	up := &MemoryUploader{}
	src := cinema.NewBitmap(3, 2)
	src.Data()[0] = 7

	var tex Texture
	if err := up.Upload(&tex, src); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := gputypes.Extent3D{Width: 3, Height: 2, DepthOrArrayLayers: 1}
	if tex.Size != want || tex.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("texture = %+v", tex)
	}
	if tex.Bytes() != 24 {
		t.Errorf("Bytes = %d, want 24", tex.Bytes())
	}
	if buf := tex.Handle.([]byte); buf[0] != 7 {
		t.Errorf("contents not copied")
	}

	up.Destroy(&tex)
	if tex.Handle != nil || tex.Bytes() != 0 {
		t.Error("Destroy kept the handle")
	}
	if up.Uploads() != 1 {
		t.Errorf("Uploads = %d, want 1", up.Uploads())
	}
}

func TestMemoryUploaderRejectsEmpty(t *testing.T) {
	up := &MemoryUploader{}
	if err := up.Upload(&Texture{}, cinema.NewBitmap(0, 0)); !errors.Is(err, ErrEmptyBitmap) {
		t.Errorf("err = %v, want ErrEmptyBitmap", err)
	}
}

// gpuTexture is a backend texture recording what the uploader did to it.
type gpuTexture struct {
	w, h      int
	data      []byte
	updates   int
	destroyed bool
	updateErr error
}

func (t *gpuTexture) Width() int  { return t.w }
func (t *gpuTexture) Height() int { return t.h }
func (t *gpuTexture) Destroy()    { t.destroyed = true }

func (t *gpuTexture) UpdateData(data []byte) error {
	if t.updateErr != nil {
		return t.updateErr
	}
	t.updates++
	t.data = append(t.data[:0], data...)
	return nil
}

type textureCreator struct {
	created []*gpuTexture
	err     error
}

func (c *textureCreator) NewTextureFromRGBA(w, h int, data []byte) (gpucontext.Texture, error) {
	if c.err != nil {
		return nil, c.err
	}
	t := &gpuTexture{w: w, h: h, data: append([]byte(nil), data...)}
	c.created = append(c.created, t)
	return t, nil
}

func filledBitmap(w, h int, v byte) *cinema.Bitmap {
	b := cinema.NewBitmap(w, h)
	for i := range b.Data() {
		b.Data()[i] = v
	}
	return b
}

func TestGPUUploaderCreatesThenUpdatesInPlace(t *testing.T) {
	creator := &textureCreator{}
	up := NewGPUUploader(creator)

	var tex Texture
	if err := up.Upload(&tex, filledBitmap(2, 2, 1)); err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	if len(creator.created) != 1 {
		t.Fatalf("created %d textures, want 1", len(creator.created))
	}
	first := creator.created[0]
	if tex.Handle != first {
		t.Fatal("Handle is not the created texture")
	}
	want := gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1}
	if tex.Size != want || tex.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("texture = %+v", tex)
	}

	if err := up.Upload(&tex, filledBitmap(2, 2, 9)); err != nil {
		t.Fatalf("same-size Upload: %v", err)
	}
	if len(creator.created) != 1 || first.updates != 1 {
		t.Errorf("created = %d updates = %d, want 1 and 1", len(creator.created), first.updates)
	}
	if first.data[0] != 9 || first.destroyed {
		t.Errorf("in-place update: data[0] = %d destroyed = %v", first.data[0], first.destroyed)
	}
}

func TestGPUUploaderReplacesOnResize(t *testing.T) {
	creator := &textureCreator{}
	up := NewGPUUploader(creator)

	var tex Texture
	_ = up.Upload(&tex, filledBitmap(2, 2, 1))
	if err := up.Upload(&tex, filledBitmap(4, 2, 1)); err != nil {
		t.Fatalf("resize Upload: %v", err)
	}
	if len(creator.created) != 2 {
		t.Fatalf("created %d textures, want 2", len(creator.created))
	}
	if !creator.created[0].destroyed {
		t.Error("old texture not destroyed on resize")
	}
	if tex.Handle != creator.created[1] || tex.Size.Width != 4 {
		t.Errorf("texture = %+v, want the 4x2 replacement", tex)
	}
	if tex.Bytes() != 32 {
		t.Errorf("Bytes = %d, want 32", tex.Bytes())
	}
}

func TestGPUUploaderErrors(t *testing.T) {
	boom := errors.New("device lost")

	t.Run("create", func(t *testing.T) {
		creator := &textureCreator{}
		up := NewGPUUploader(creator)
		var tex Texture
		_ = up.Upload(&tex, filledBitmap(2, 2, 1))
		old := tex.Handle

		creator.err = boom
		err := up.Upload(&tex, filledBitmap(3, 3, 1))
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped %v", err, boom)
		}
		if tex.Handle != old || creator.created[0].destroyed {
			t.Error("a failed create must keep the old texture")
		}
	})

	t.Run("update", func(t *testing.T) {
		creator := &textureCreator{}
		up := NewGPUUploader(creator)
		var tex Texture
		_ = up.Upload(&tex, filledBitmap(2, 2, 1))
		creator.created[0].updateErr = boom
		if err := up.Upload(&tex, filledBitmap(2, 2, 2)); !errors.Is(err, boom) {
			t.Errorf("err = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("empty", func(t *testing.T) {
		up := NewGPUUploader(&textureCreator{})
		var tex Texture
		if err := up.Upload(&tex, &cinema.Bitmap{}); !errors.Is(err, ErrEmptyBitmap) {
			t.Errorf("err = %v, want ErrEmptyBitmap", err)
		}
	})
}

func TestSceneWithGPUUploader(t *testing.T) {
	creator := &textureCreator{}
	sc, _ := newTestScene(t, 1, WithUploader(NewGPUUploader(creator)))
	l := sc.Layers()[0]
	sc.OnDrawn(l, 1, false)
	_ = sc.BeginFrame(0)
	if !sc.Load(l) {
		t.Fatal("Load failed")
	}
	if len(creator.created) != 1 || l.Texture().Handle != creator.created[0] {
		t.Fatalf("layer texture not created through the creator")
	}

	if err := sc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !creator.created[0].destroyed {
		t.Error("Close did not destroy the GPU texture")
	}
}
