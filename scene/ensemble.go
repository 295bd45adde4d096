// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"fmt"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/database"
	"github.com/gogpu/cinema/transform"
)

// LoadEnsemble replaces the scene's items with one item per index entry.
// Entries whose key does not fit the index dimensions, that have no
// source or that repeat a key are skipped with a warning; the rest load
// normally. It returns the number of items created.
func (s *Scene) LoadEnsemble(ix *database.Index) (int, error) {
	if ix == nil {
		return 0, ErrNoEnsemble
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.unloadAll()

	for _, e := range ix.Entries {
		key := transform.Key(append([]int(nil), e.Key...))
		if err := checkEntry(ix, e); err != nil {
			cinema.Logger().Warn("scene: entry skipped", "key", key.String(), "err", err)
			continue
		}
		if _, dup := s.byKey[key.String()]; dup {
			cinema.Logger().Warn("scene: duplicate entry skipped", "key", key.String())
			continue
		}
		values := make([]float64, len(key))
		for dim, i := range key {
			values[dim] = ix.Value(dim, i)
		}
		it := newItem(s, len(s.items), key, values)
		for _, src := range e.Sources {
			l := newLayer(it, len(s.layers), src)
			it.layers = append(it.layers, l)
			s.layers = append(s.layers, l)
		}
		s.items = append(s.items, it)
		s.byKey[key.String()] = it
	}
	cinema.Logger().Info("scene: ensemble loaded",
		"root", ix.Root, "items", len(s.items), "layers", len(s.layers),
		"skipped", len(ix.Entries)-len(s.items))
	return len(s.items), nil
}

func checkEntry(ix *database.Index, e database.Entry) error {
	if len(e.Key) != len(ix.Dimensions) {
		return fmt.Errorf("%w: key has %d indices, index has %d dimensions",
			database.ErrMalformed, len(e.Key), len(ix.Dimensions))
	}
	for dim, i := range e.Key {
		if i < 0 || i >= ix.Dimensions[dim].Len() {
			return fmt.Errorf("%w: index %d out of range for %q",
				database.ErrMalformed, i, ix.Dimensions[dim].Name)
		}
	}
	if len(e.Sources) == 0 {
		return database.ErrMissingSource
	}
	return nil
}
