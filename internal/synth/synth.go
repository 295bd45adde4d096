// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package synth writes synthetic Cinema databases for demos and tests.
package synth

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/HugoSmits86/nativewebp"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/database"
	"github.com/gogpu/cinema/internal/parallel"
)

// ErrOptions is returned for unusable generator options.
var ErrOptions = errors.New("synth: invalid options")

// Options describes the database to generate.
type Options struct {
	// Root is the database directory. It is created if missing.
	Root string
	// Times and Angles are the sizes of the "time" and "phi" dimensions.
	Times  int
	Angles int
	// Width and Height are the image size in pixels.
	Width  int
	Height int
	// Format selects the index layout.
	Format database.Format
	// Layers is the number of layers per item. Only the CSV layout can
	// hold more than one.
	Layers int
	// Depth adds a depth side channel to every layer (CSV layout only).
	Depth bool
	// Workers bounds encoding concurrency; 0 uses GOMAXPROCS.
	Workers int
}

// Result summarizes a generated database.
type Result struct {
	Dimensions []database.Dimension
	Entries    []database.Entry
	Files      int
}

func (o *Options) validate() error {
	switch {
	case o.Root == "":
		return fmt.Errorf("%w: empty root", ErrOptions)
	case o.Times <= 0 || o.Angles <= 0:
		return fmt.Errorf("%w: dimensions must be positive", ErrOptions)
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: image size must be positive", ErrOptions)
	case o.Format != database.FormatInfoJSON && o.Format != database.FormatCSV:
		return fmt.Errorf("%w: unknown format %q", ErrOptions, o.Format)
	case o.Format == database.FormatInfoJSON && (o.Layers > 1 || o.Depth):
		return fmt.Errorf("%w: info.json holds one plain layer per item", ErrOptions)
	}
	if o.Layers <= 0 {
		o.Layers = 1
	}
	return nil
}

// Generate writes the images and the index.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	dims := []database.Dimension{
		dimension("time", opts.Times, 1),
		dimension("phi", opts.Angles, 360/float64(opts.Angles)),
	}

	res := &Result{Dimensions: dims}
	var jobs []parallel.Job
	for t := 0; t < opts.Times; t++ {
		for p := 0; p < opts.Angles; p++ {
			key := []int{t, p}
			entry := database.Entry{Key: key}
			for l := 0; l < opts.Layers; l++ {
				src := source(opts, dims, key, l)
				entry.Sources = append(entry.Sources, src)
				jobs = append(jobs, encodeJob(opts, key, l, src.Files))
				res.Files++
				if src.Files.Depth != "" {
					res.Files++
				}
			}
			res.Entries = append(res.Entries, entry)
		}
	}

	pool := parallel.NewWorkerPool(opts.Workers)
	defer pool.Close()
	if err := pool.Run(ctx, jobs); err != nil {
		return nil, err
	}

	var err error
	if opts.Format == database.FormatCSV {
		err = database.WriteCSV(opts.Root, dims, res.Entries)
	} else {
		err = database.WriteInfo(opts.Root, infoPattern, dims)
	}
	if err != nil {
		return nil, err
	}
	cinema.Logger().Info("synth: database written",
		"root", opts.Root, "format", opts.Format, "entries", len(res.Entries), "files", res.Files)
	return res, nil
}

const infoPattern = "{time}/{phi}.webp"

func dimension(name string, n int, step float64) database.Dimension {
	d := database.Dimension{Name: name}
	for i := 0; i < n; i++ {
		v := float64(i) * step
		d.Labels = append(d.Labels, strconv.FormatFloat(v, 'g', -1, 64))
		d.Values = append(d.Values, v)
	}
	return d
}

func source(opts Options, dims []database.Dimension, key []int, layer int) database.Source {
	if opts.Format == database.FormatInfoJSON {
		rel := database.Expand(infoPattern, dims, key)
		return database.Source{Files: database.Files{
			Primary: filepath.Join(opts.Root, "image", filepath.FromSlash(rel)),
		}}
	}
	base := filepath.Join(opts.Root, "images", fmt.Sprintf("t%03d_p%03d_l%d", key[0], key[1], layer))
	src := database.Source{Files: database.Files{Primary: base + ".webp"}}
	if opts.Layers > 1 {
		src.Name = fmt.Sprintf("layer%d", layer)
	}
	if opts.Depth {
		src.Files.Depth = base + "_depth.png"
	}
	return src
}

func encodeJob(opts Options, key []int, layer int, files database.Files) parallel.Job {
	return func() error {
		if err := os.MkdirAll(filepath.Dir(files.Primary), 0o755); err != nil {
			return fmt.Errorf("synth: %w", err)
		}
		img := picture(opts, key, layer)
		if err := writeFile(files.Primary, func(f *os.File) error { return nativewebp.Encode(f, img, nil) }); err != nil {
			return err
		}
		if files.Depth == "" {
			return nil
		}
		depth := depthMap(opts.Width, opts.Height, layer)
		return writeFile(files.Depth, func(f *os.File) error { return png.Encode(f, depth) })
	}
}

func writeFile(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("synth: encode %s: %w", path, err)
	}
	return f.Close()
}

// picture draws a disc whose hue follows time and whose highlight follows
// the camera angle, so neighbouring items are easy to tell apart.
func picture(opts Options, key []int, layer int) *image.NRGBA {
	w, h := opts.Width, opts.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	tf := float64(key[0]) / float64(opts.Times)
	pf := float64(key[1]) / float64(opts.Angles)
	base := color.NRGBA{
		R: uint8(255 * tf),
		G: uint8(255 * (1 - tf)),
		B: uint8(255 * pf),
		A: 0xff,
	}
	cx, cy := float64(w)/2, float64(h)/2
	r2 := cx * cx
	if cy < cx {
		r2 = cy * cy
	}
	hx := cx + (cx/2)*float64(1-2*pf)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy > r2 {
				continue
			}
			c := base
			if ex := float64(x) - hx; ex*ex+dy*dy < r2/16 {
				c = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			}
			if layer > 0 {
				c.A = 0x80
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func depthMap(w, h, layer int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y + layer*16) % 256)})
		}
	}
	return img
}
