// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

const unknownStr = "Unknown"

// Interval declares how often a facet of a transform must be recomputed.
type Interval uint8

// Interval constants.
const (
	// Never means the transform does not contribute to the facet.
	Never Interval = iota

	// Static results depend only on the item and are folded into the
	// item's cached facet once, when the transform is attached.
	Static

	// Dynamic results may change every frame and are evaluated on use.
	Dynamic

	// Temporal results depend on the logical clock. They are evaluated
	// on use like Dynamic ones, and are the only ones consulted by the
	// look-ahead prefetch pass.
	Temporal

	// Triggered results are cached like Static ones until the transform
	// fires a pulse for the facet, which invalidates the item's whole
	// cached facet.
	Triggered
)

// String returns a human-readable name for the interval.
func (i Interval) String() string {
	switch i {
	case Never:
		return "Never"
	case Static:
		return "Static"
	case Dynamic:
		return "Dynamic"
	case Temporal:
		return "Temporal"
	case Triggered:
		return "Triggered"
	default:
		return unknownStr
	}
}

// Cached reports whether results are folded into an item's static cache.
func (i Interval) Cached() bool {
	return i == Static || i == Triggered
}

// Volatile reports whether results must be re-evaluated on every use.
func (i Interval) Volatile() bool {
	return i == Dynamic || i == Temporal
}

// Facet identifies one of the three independent outputs of a transform.
type Facet uint8

// Facet constants.
const (
	Location Facet = iota
	Visibility
	Color

	// NumFacets is the number of facets.
	NumFacets = 3
)

// String returns a human-readable name for the facet.
func (f Facet) String() string {
	switch f {
	case Location:
		return "Location"
	case Visibility:
		return "Visibility"
	case Color:
		return "Color"
	default:
		return unknownStr
	}
}

// Facets lists every facet in evaluation order.
var Facets = [NumFacets]Facet{Location, Visibility, Color}
