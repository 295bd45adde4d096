// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package database reads the indexes of Cinema image databases.
//
// Two layouts are recognized:
//
//   - "spec A": image/info.json (or info.json) with a name_pattern such as
//     "{time}/{phi}_{theta}.png" and a parameter_list giving the values of
//     every argument.
//   - "spec D": data.csv with one column per argument plus FILE columns
//     naming the image (FILE), its depth channel (FILE_DEPTH) and its
//     luminance channel (FILE_LUMINANCE). An optional LAYER column groups
//     several rows into one item.
//
// Entries whose sources are missing are skipped and reported in
// Index.Skipped; the rest of the database loads normally.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gogpu/cinema"
)

// Index errors.
var (
	// ErrNoIndex is returned when a directory holds no recognized index.
	ErrNoIndex = errors.New("database: no info.json or data.csv found")

	// ErrMalformed is returned when an index cannot be parsed.
	ErrMalformed = errors.New("database: malformed index")

	// ErrMissingSource is recorded for entries whose primary image is missing.
	ErrMissingSource = errors.New("database: missing source file")
)

// Format identifies the index layout.
type Format string

// Format constants.
const (
	FormatInfoJSON Format = "info.json"
	FormatCSV      Format = "data.csv"
)

// Dimension is one argument axis of the ensemble.
type Dimension struct {
	// Name is the argument name, e.g. "time" or "phi".
	Name string `json:"name"`
	// Labels holds the values as written in the index.
	Labels []string `json:"labels"`
	// Values holds the numeric values; non-numeric labels get their index.
	Values []float64 `json:"values"`
}

// Len returns the number of values along the dimension.
func (d Dimension) Len() int {
	return len(d.Labels)
}

// Files names the image files of one layer. Paths are absolute.
type Files struct {
	Primary   string `json:"primary"`
	Depth     string `json:"depth,omitempty"`
	Luminance string `json:"luminance,omitempty"`
}

// Source is one decodable layer of an entry.
type Source struct {
	Name  string `json:"name,omitempty"`
	Files Files  `json:"files"`
}

// Entry is one item of the ensemble.
type Entry struct {
	// Key holds the value index along every dimension.
	Key []int `json:"key"`
	// Sources holds the item's layers, at least one.
	Sources []Source `json:"sources"`
}

// Skip records an entry left out of the index.
type Skip struct {
	Where string `json:"where"`
	Err   error  `json:"-"`
}

// Index is the parsed content of a Cinema database.
type Index struct {
	Root       string      `json:"root"`
	Format     Format      `json:"format"`
	Dimensions []Dimension `json:"dimensions"`
	Entries    []Entry     `json:"entries"`
	Skipped    []Skip      `json:"skipped,omitempty"`
}

// Open detects the index layout under root and parses it.
func Open(root string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	candidates := []struct {
		path   string
		format Format
	}{
		{filepath.Join(abs, "data.csv"), FormatCSV},
		{filepath.Join(abs, "image", "info.json"), FormatInfoJSON},
		{filepath.Join(abs, "info.json"), FormatInfoJSON},
	}
	for _, c := range candidates {
		if _, err := os.Stat(c.path); err != nil {
			continue
		}
		var ix *Index
		switch c.format {
		case FormatCSV:
			ix, err = readCSV(c.path)
		default:
			ix, err = readInfo(c.path)
		}
		if err != nil {
			return nil, err
		}
		ix.Root = abs
		ix.Format = c.format
		cinema.Logger().Info("database opened",
			"root", abs, "format", c.format,
			"entries", len(ix.Entries), "skipped", len(ix.Skipped))
		return ix, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoIndex, abs)
}

// IndexPath returns the path of the index file Open would read, so that
// callers can watch it for changes.
func IndexPath(root string) (string, error) {
	for _, p := range []string{
		filepath.Join(root, "data.csv"),
		filepath.Join(root, "image", "info.json"),
		filepath.Join(root, "info.json"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoIndex, root)
}

// Lookup returns the dimension index of the named argument.
func (ix *Index) Lookup(name string) (int, bool) {
	for i, d := range ix.Dimensions {
		if d.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Value returns the numeric value of index i along dimension dim.
func (ix *Index) Value(dim, i int) float64 {
	if dim < 0 || dim >= len(ix.Dimensions) {
		return 0
	}
	d := ix.Dimensions[dim]
	if i < 0 || i >= len(d.Values) {
		return 0
	}
	return d.Values[i]
}

// Layers returns the total number of sources over all entries.
func (ix *Index) Layers() int {
	n := 0
	for _, e := range ix.Entries {
		n += len(e.Sources)
	}
	return n
}

// skip records an entry left out of the index and logs it.
func (ix *Index) skip(where string, err error) {
	ix.Skipped = append(ix.Skipped, Skip{Where: where, Err: err})
	cinema.Logger().Warn("database entry skipped", "where", where, "error", err)
}

// checkFiles verifies that the files of a source exist.
func checkFiles(f Files) error {
	for _, p := range []string{f.Primary, f.Depth, f.Luminance} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingSource, p)
		}
	}
	return nil
}

// newDimension builds a dimension from labels, parsing numeric values.
// When every label is numeric the labels are ordered by value; otherwise
// they keep their given order and each value is its position.
func newDimension(name string, labels []string) Dimension {
	values := make([]float64, len(labels))
	numeric := true
	for i, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}
	if !numeric {
		for i := range values {
			values[i] = float64(i)
		}
		return Dimension{Name: name, Labels: labels, Values: values}
	}
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })
	d := Dimension{Name: name, Labels: make([]string, len(labels)), Values: make([]float64, len(labels))}
	for i, o := range order {
		d.Labels[i] = labels[o]
		d.Values[i] = values[o]
	}
	return d
}

// position returns the index of label in d, or -1.
func (d Dimension) position(label string) int {
	for i, l := range d.Labels {
		if l == label {
			return i
		}
	}
	if v, err := strconv.ParseFloat(label, 64); err == nil {
		for i, dv := range d.Values {
			if dv == v {
				return i
			}
		}
	}
	return -1
}
