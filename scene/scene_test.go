// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/chewxy/math32"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/database"
	"github.com/gogpu/cinema/transform"
)

var errBroken = errors.New("broken file")

// fakeDecoder produces 4x4 bitmaps and fails for listed files.
type fakeDecoder struct {
	calls int
	fail  map[string]bool
}

func (d *fakeDecoder) Decode(files database.Files, dst *cinema.Bitmap) error {
	d.calls++
	if d.fail[files.Primary] {
		return errBroken
	}
	dst.Resize(4, 4)
	for i := range dst.Data() {
		dst.Data()[i] = 0xff
	}
	return nil
}

// testIndex builds an in-memory ensemble of n items along one "time"
// dimension, one layer each.
func testIndex(n int) *database.Index {
	dim := database.Dimension{Name: "time"}
	ix := &database.Index{Root: "mem"}
	for i := 0; i < n; i++ {
		dim.Labels = append(dim.Labels, strconv.Itoa(i))
		dim.Values = append(dim.Values, float64(i))
		ix.Entries = append(ix.Entries, database.Entry{
			Key: []int{i},
			Sources: []database.Source{{
				Files: database.Files{Primary: fmt.Sprintf("img%d.png", i)},
			}},
		})
	}
	ix.Dimensions = []database.Dimension{dim}
	return ix
}

func newTestScene(t *testing.T, n int, opts ...Option) (*Scene, *fakeDecoder) {
	t.Helper()
	dec := &fakeDecoder{fail: map[string]bool{}}
	all := append([]Option{WithImageSize(4, 4), WithSlotCeiling(16), WithDecoder(dec)}, opts...)
	sc := New(all...)
	got, err := sc.LoadEnsemble(testIndex(n))
	if err != nil {
		t.Fatalf("LoadEnsemble: %v", err)
	}
	if got != n {
		t.Fatalf("LoadEnsemble loaded %d items, want %d", got, n)
	}
	return sc, dec
}

func testCamera() Camera {
	return NewCamera(cinema.V3(0, 0, 10), cinema.V3(0, 0, 0), math32.Pi/3, 1, 0.1, 100)
}

func TestNewSizesPools(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		wantBitmaps  int
		wantTextures int
	}{
		{"ceiling caps", []Option{WithImageSize(4, 4), WithSlotCeiling(8)}, 8, 8},
		{"budget limits", []Option{WithImageSize(16, 16), WithMemoryBudget(16*16*4*3, 16*16*4*5)}, 3, 5},
		{"tiny budget keeps one slot", []Option{WithImageSize(16, 16), WithMemoryBudget(1, 1)}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := New(tt.opts...).Stats()
			if st.Bitmaps.Capacity != tt.wantBitmaps {
				t.Errorf("bitmap capacity = %d, want %d", st.Bitmaps.Capacity, tt.wantBitmaps)
			}
			if st.Textures.Capacity != tt.wantTextures {
				t.Errorf("texture capacity = %d, want %d", st.Textures.Capacity, tt.wantTextures)
			}
		})
	}
}

func TestLoadEnsemble(t *testing.T) {
	sc, _ := newTestScene(t, 3)
	items := sc.Items()
	if len(items) != 3 || len(sc.Layers()) != 3 {
		t.Fatalf("items=%d layers=%d, want 3 and 3", len(items), len(sc.Layers()))
	}
	it, ok := sc.Lookup(transform.Key{2})
	if !ok {
		t.Fatal("Lookup({2}) failed")
	}
	if it.Value(0) != 2 {
		t.Errorf("Value(0) = %v, want 2", it.Value(0))
	}
	if it.Value(5) != 0 {
		t.Errorf("Value(5) = %v, want 0", it.Value(5))
	}
	if !it.StaticVisible() || it.StaticColor() != cinema.IdentityColor {
		t.Error("fresh item should be visible with identity color")
	}
	if l := it.Layers()[0]; l.Item() != it || !l.Active() || l.State() != Unloaded {
		t.Errorf("fresh layer: item ok=%v active=%v state=%v", l.Item() == it, l.Active(), l.State())
	}
}

func TestLoadEnsembleSkipsBadEntries(t *testing.T) {
	ix := testIndex(3)
	ix.Entries = append(ix.Entries,
		database.Entry{Key: []int{0, 1}, Sources: ix.Entries[0].Sources}, // wrong arity
		database.Entry{Key: []int{7}, Sources: ix.Entries[0].Sources},    // out of range
		database.Entry{Key: []int{1}},                                    // no source
		database.Entry{Key: []int{2}, Sources: ix.Entries[2].Sources},    // duplicate
	)
	sc := New(WithImageSize(4, 4))
	n, err := sc.LoadEnsemble(ix)
	if err != nil {
		t.Fatalf("LoadEnsemble: %v", err)
	}
	if n != 3 {
		t.Errorf("loaded %d items, want 3", n)
	}
}

func TestLoadEnsembleNil(t *testing.T) {
	sc := New()
	if _, err := sc.LoadEnsemble(nil); !errors.Is(err, ErrNoEnsemble) {
		t.Errorf("err = %v, want ErrNoEnsemble", err)
	}
}

func TestLoadEnsembleReplacesAndReleases(t *testing.T) {
	sc, _ := newTestScene(t, 2)
	_ = sc.BeginFrame(0)
	l := sc.Layers()[0]
	sc.OnDrawn(l, 1, false)
	if !sc.Load(l) {
		t.Fatal("Load failed")
	}
	if _, err := sc.LoadEnsemble(testIndex(4)); err != nil {
		t.Fatal(err)
	}
	st := sc.Stats()
	if st.Items != 4 {
		t.Errorf("items = %d, want 4", st.Items)
	}
	if st.Bitmaps.Outstanding != 0 || st.Textures.Outstanding != 0 {
		t.Errorf("outstanding after reload = %d/%d, want 0/0", st.Bitmaps.Outstanding, st.Textures.Outstanding)
	}
}

func TestSelect(t *testing.T) {
	sc, _ := newTestScene(t, 3)
	if !sc.Select(transform.Key{1}) {
		t.Fatal("Select({1}) = false")
	}
	for _, it := range sc.Items() {
		if want := it.Key().Equal(transform.Key{1}); it.Selected() != want {
			t.Errorf("item %v selected = %v, want %v", it.Key(), it.Selected(), want)
		}
	}
	if sc.Select(transform.Key{9}) {
		t.Error("Select of unknown key = true")
	}
	for _, it := range sc.Items() {
		if it.Selected() {
			t.Errorf("item %v still selected", it.Key())
		}
	}
}

func TestLocked(t *testing.T) {
	sc, _ := newTestScene(t, 2)
	it := sc.Items()[0]
	sc.Locked(func(tx *Tx) {
		tx.AddTransform(it, transform.Offset(cinema.V3(3, 0, 0)))
		tx.Select(it.Key())
	})
	if it.Position() != cinema.V3(3, 0, 0) {
		t.Errorf("position = %v, want (3,0,0)", it.Position())
	}
	if !it.Selected() {
		t.Error("item not selected")
	}
	if !sc.TakeRedraw() {
		t.Error("edits should request a redraw")
	}
	if sc.TakeRedraw() {
		t.Error("redraw flag should clear")
	}
}

func TestClockControls(t *testing.T) {
	sc, _ := newTestScene(t, 1, WithStartTime(2))
	if sc.Now() != 2 {
		t.Fatalf("Now = %v, want 2", sc.Now())
	}
	_ = sc.BeginFrame(1)
	if sc.Now() != 2 {
		t.Errorf("paused clock moved to %v", sc.Now())
	}
	sc.Play(0.5)
	_ = sc.BeginFrame(1)
	if sc.Now() != 2.5 {
		t.Errorf("Now = %v, want 2.5", sc.Now())
	}
	sc.Pause()
	sc.SetTime(7)
	_ = sc.BeginFrame(1)
	if sc.Now() != 7 {
		t.Errorf("Now = %v, want 7", sc.Now())
	}
	if sc.Frame() != 3 {
		t.Errorf("Frame = %d, want 3", sc.Frame())
	}
}

func TestClose(t *testing.T) {
	up := &MemoryUploader{}
	sc, _ := newTestScene(t, 1, WithUploader(up))
	_ = sc.BeginFrame(0)
	l := sc.Layers()[0]
	sc.OnDrawn(l, 1, false)
	if !sc.Load(l) {
		t.Fatal("Load failed")
	}
	tex := l.Texture()
	if err := sc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if tex.Handle != nil {
		t.Error("texture not destroyed on Close")
	}
	if up.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", up.destroyed)
	}
	if err := sc.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
	if err := sc.BeginFrame(0); !errors.Is(err, ErrClosed) {
		t.Errorf("BeginFrame after Close = %v, want ErrClosed", err)
	}
	if sc.Load(l) {
		t.Error("Load after Close = true")
	}
}

func TestStatsCountsStates(t *testing.T) {
	sc, _ := newTestScene(t, 3, WithMaxFrameLoads(3))
	_ = sc.BeginFrame(0)
	for _, l := range sc.Layers() {
		sc.OnDrawn(l, 1, false)
		sc.Load(l)
	}
	sc.UnloadTexture(sc.Layers()[0])
	st := sc.Stats()
	if st.BitmapReady != 1 || st.TextureReady != 2 {
		t.Errorf("BitmapReady=%d TextureReady=%d, want 1 and 2", st.BitmapReady, st.TextureReady)
	}
	if st.Decodes != 3 || st.Uploads != 3 {
		t.Errorf("Decodes=%d Uploads=%d, want 3 and 3", st.Decodes, st.Uploads)
	}
}

func TestLayerStatusWhileRendering(t *testing.T) {
	sc, _ := newTestScene(t, 4, WithMaxFrameLoads(1))
	layers := sc.Layers()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for frame := 0; frame < 20; frame++ {
			_ = sc.BeginFrame(1.0 / 60)
			for _, it := range sc.Items() {
				for _, l := range it.Layers() {
					sc.OnDrawn(l, 1, sc.LayerStatus(l).Selected)
				}
			}
			for _, l := range sc.LoadQueue() {
				sc.Load(l)
			}
		}
	}()
	for i := 0; i < 50; i++ {
		sc.Select(transform.Key{i % 4})
		for j, l := range layers {
			st := sc.LayerStatus(l)
			if st.State == TextureReady && st.Texture.Handle == nil {
				t.Errorf("layer %d TextureReady without a handle", j)
			}
		}
	}
	wg.Wait()

	sc.Select(transform.Key{2})
	for i, l := range layers {
		st := sc.LayerStatus(l)
		if st.State != TextureReady {
			t.Errorf("layer %d state = %v, want TextureReady", i, st.State)
		}
		if st.Priority != l.Priority() || !st.Active {
			t.Errorf("layer %d status = %+v", i, st)
		}
		if want := i == 2; st.Selected != want {
			t.Errorf("layer %d selected = %v, want %v", i, st.Selected, want)
		}
	}
}
