// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// infoFile is the on-disk form of a spec A info.json.
type infoFile struct {
	Type          string               `json:"type"`
	Version       string               `json:"version"`
	NamePattern   string               `json:"name_pattern"`
	ParameterList map[string]infoParam `json:"parameter_list"`
}

type infoParam struct {
	Label   string            `json:"label,omitempty"`
	Type    string            `json:"type,omitempty"`
	Default json.RawMessage   `json:"default,omitempty"`
	Values  []json.RawMessage `json:"values"`
}

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// placeholders returns the parameter names of pattern in order of
// first appearance.
func placeholders(pattern string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(pattern, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// label renders a JSON value as it should appear in a file name.
func label(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func readInfo(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("database: read %s: %w", path, err)
	}
	var info infoFile
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if info.NamePattern == "" {
		return nil, fmt.Errorf("%w: %s: empty name_pattern", ErrMalformed, path)
	}

	ix := &Index{}
	for _, name := range placeholders(info.NamePattern) {
		p, ok := info.ParameterList[name]
		if !ok || len(p.Values) == 0 {
			return nil, fmt.Errorf("%w: %s: no values for parameter %q", ErrMalformed, path, name)
		}
		labels := make([]string, len(p.Values))
		for i, v := range p.Values {
			labels[i] = label(v)
		}
		ix.Dimensions = append(ix.Dimensions, newDimension(name, labels))
	}

	dir := filepath.Dir(path)
	forEachKey(ix.Dimensions, func(key []int) {
		rel := Expand(info.NamePattern, ix.Dimensions, key)
		files := Files{Primary: filepath.Join(dir, filepath.FromSlash(rel))}
		if err := checkFiles(files); err != nil {
			ix.skip(rel, err)
			return
		}
		ix.Entries = append(ix.Entries, Entry{
			Key:     append([]int(nil), key...),
			Sources: []Source{{Files: files}},
		})
	})
	return ix, nil
}

// forEachKey calls fn for every key of the cartesian product of dims,
// last dimension varying fastest. fn must not retain key.
func forEachKey(dims []Dimension, fn func(key []int)) {
	for _, d := range dims {
		if d.Len() == 0 {
			return
		}
	}
	key := make([]int, len(dims))
	for {
		fn(key)
		i := len(key) - 1
		for ; i >= 0; i-- {
			key[i]++
			if key[i] < dims[i].Len() {
				break
			}
			key[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// Expand substitutes the labels of key into a name pattern. Dimensions
// are matched to placeholders by name.
func Expand(pattern string, dims []Dimension, key []int) string {
	return placeholder.ReplaceAllStringFunc(pattern, func(m string) string {
		name := m[1 : len(m)-1]
		for i, d := range dims {
			if d.Name == name && i < len(key) && key[i] >= 0 && key[i] < d.Len() {
				return d.Labels[key[i]]
			}
		}
		return m
	})
}

// WriteInfo writes a spec A index to root/image/info.json.
func WriteInfo(root, pattern string, dims []Dimension) error {
	info := infoFile{
		Type:          "simple",
		Version:       "1.1",
		NamePattern:   pattern,
		ParameterList: make(map[string]infoParam, len(dims)),
	}
	for _, d := range dims {
		p := infoParam{Label: d.Name, Type: "range"}
		for _, l := range d.Labels {
			if _, err := strconv.ParseFloat(l, 64); err == nil && json.Valid([]byte(l)) {
				p.Values = append(p.Values, json.RawMessage(l))
			} else {
				p.Values = append(p.Values, json.RawMessage(strconv.Quote(l)))
			}
		}
		if len(p.Values) > 0 {
			p.Default = p.Values[0]
		}
		info.ParameterList[d.Name] = p
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("database: encode info.json: %w", err)
	}
	dir := filepath.Join(root, "image")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "info.json"), data, 0o644)
}
