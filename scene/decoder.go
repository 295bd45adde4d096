// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga" // register TGA
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/database"
)

// Decoder errors.
var (
	// ErrUnsupportedFormat is returned for files that are not images.
	ErrUnsupportedFormat = errors.New("scene: unsupported image format")

	// ErrChannelSize is returned when a side channel does not match the
	// size of the primary image.
	ErrChannelSize = errors.New("scene: side channel size mismatch")
)

// Decoder turns the files of a layer into a flat pixel buffer.
// Decode may reuse dst's buffers; on error dst's content is unspecified.
type Decoder interface {
	Decode(files database.Files, dst *cinema.Bitmap) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(files database.Files, dst *cinema.Bitmap) error

// Decode calls f.
func (f DecoderFunc) Decode(files database.Files, dst *cinema.Bitmap) error {
	return f(files, dst)
}

// FileDecoder reads images from disk. PNG, JPEG, GIF, WebP, BMP, TIFF and
// TGA are supported. Side channels are read as gray levels.
type FileDecoder struct{}

// NewFileDecoder creates a decoder for on-disk images.
func NewFileDecoder() *FileDecoder {
	return &FileDecoder{}
}

// Decode implements Decoder.
func (d *FileDecoder) Decode(files database.Files, dst *cinema.Bitmap) error {
	img, err := d.read(files.Primary)
	if err != nil {
		return err
	}
	dst.SetImage(img)

	if files.Depth != "" {
		depth, err := d.read(files.Depth)
		if err != nil {
			return err
		}
		if !dst.SetDepth(depth) {
			return fmt.Errorf("%w: %s", ErrChannelSize, files.Depth)
		}
	}
	if files.Luminance != "" {
		lum, err := d.read(files.Luminance)
		if err != nil {
			return err
		}
		if !dst.SetLuminance(lum) {
			return fmt.Errorf("%w: %s", ErrChannelSize, files.Luminance)
		}
	}
	return nil
}

func (d *FileDecoder) read(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	// TGA has no magic number; trust the extension for it.
	if !filetype.IsImage(data) && !strings.EqualFold(filepath.Ext(path), ".tga") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("scene: decode %s: %w", path, err)
	}
	return img, nil
}
