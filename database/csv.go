// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reserved spec D column names, compared case-insensitively.
const (
	colFile      = "FILE"
	colDepth     = "FILE_DEPTH"
	colLuminance = "FILE_LUMINANCE"
	colLayer     = "LAYER"
)

type csvColumns struct {
	file, depth, luminance, layer int
	dims                          []int // column index of every dimension
	names                         []string
}

func parseHeader(header []string) (csvColumns, error) {
	c := csvColumns{file: -1, depth: -1, luminance: -1, layer: -1}
	for i, h := range header {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case colFile:
			c.file = i
		case colDepth:
			c.depth = i
		case colLuminance:
			c.luminance = i
		case colLayer:
			c.layer = i
		default:
			c.dims = append(c.dims, i)
			c.names = append(c.names, strings.TrimSpace(h))
		}
	}
	if c.file < 0 {
		return c, fmt.Errorf("%w: no FILE column", ErrMalformed)
	}
	return c, nil
}

func readCSV(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ix := &Index{}
	type row struct {
		line   int
		fields []string
	}
	var rows []row
	labels := make([][]string, len(cols.dims))
	seen := make([]map[string]bool, len(cols.dims))
	for i := range seen {
		seen[i] = map[string]bool{}
	}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ix.skip(fmt.Sprintf("line %d", line), fmt.Errorf("%w: %v", ErrMalformed, err))
			continue
		}
		if len(rec) != len(header) {
			ix.skip(fmt.Sprintf("line %d", line),
				fmt.Errorf("%w: %d fields, want %d", ErrMalformed, len(rec), len(header)))
			continue
		}
		for d, c := range cols.dims {
			v := strings.TrimSpace(rec[c])
			if !seen[d][v] {
				seen[d][v] = true
				labels[d] = append(labels[d], v)
			}
		}
		rows = append(rows, row{line: line, fields: rec})
	}
	for d, name := range cols.names {
		ix.Dimensions = append(ix.Dimensions, newDimension(name, labels[d]))
	}

	dir := filepath.Dir(path)
	resolve := func(rec []string, col int) string {
		if col < 0 || strings.TrimSpace(rec[col]) == "" {
			return ""
		}
		return filepath.Join(dir, filepath.FromSlash(strings.TrimSpace(rec[col])))
	}
	byKey := map[string]int{}
	for _, rw := range rows {
		key := make([]int, len(cols.dims))
		for d, c := range cols.dims {
			key[d] = ix.Dimensions[d].position(strings.TrimSpace(rw.fields[c]))
		}
		src := Source{Files: Files{
			Primary:   resolve(rw.fields, cols.file),
			Depth:     resolve(rw.fields, cols.depth),
			Luminance: resolve(rw.fields, cols.luminance),
		}}
		if cols.layer >= 0 {
			src.Name = strings.TrimSpace(rw.fields[cols.layer])
		}
		where := fmt.Sprintf("line %d", rw.line)
		if src.Files.Primary == "" {
			ix.skip(where, fmt.Errorf("%w: empty FILE", ErrMissingSource))
			continue
		}
		if err := checkFiles(src.Files); err != nil {
			ix.skip(where, err)
			continue
		}
		ks := fmt.Sprint(key)
		if i, ok := byKey[ks]; ok {
			ix.Entries[i].Sources = append(ix.Entries[i].Sources, src)
			continue
		}
		byKey[ks] = len(ix.Entries)
		ix.Entries = append(ix.Entries, Entry{Key: key, Sources: []Source{src}})
	}
	return ix, nil
}

// WriteCSV writes a spec D index to root/data.csv. File paths in the
// entries must be absolute or relative to root; they are stored relative.
func WriteCSV(root string, dims []Dimension, entries []Entry) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	f, err := os.Create(filepath.Join(root, "data.csv"))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	w := csv.NewWriter(f)

	header := make([]string, 0, len(dims)+4)
	for _, d := range dims {
		header = append(header, d.Name)
	}
	header = append(header, colLayer, colFile, colDepth, colLuminance)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("database: %w", err)
	}
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		if r, err := filepath.Rel(root, p); err == nil && filepath.IsAbs(p) {
			return filepath.ToSlash(r)
		}
		return filepath.ToSlash(p)
	}
	for _, e := range entries {
		for _, s := range e.Sources {
			rec := make([]string, 0, len(header))
			for d, k := range e.Key {
				rec = append(rec, dims[d].Labels[k])
			}
			rec = append(rec, s.Name, rel(s.Files.Primary), rel(s.Files.Depth), rel(s.Files.Luminance))
			if err := w.Write(rec); err != nil {
				f.Close()
				return fmt.Errorf("database: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("database: %w", err)
	}
	return f.Close()
}
