// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cinema streams huge parametric image ensembles ("Cinema"
// databases) through a fixed amount of CPU and GPU memory.
//
// # Overview
//
// A Cinema database holds one pre-rendered image per combination of its
// arguments (time, camera angle, isovalue, ...). The full ensemble is far
// larger than memory, so every frame the scene decides which images are
// resident, which are evicted and which are fetched ahead of need.
//
// # Architecture
//
// The module is organized into:
//   - cinema: math (Vec3, Mat4, Frustum), ColorOp, Bitmap, Clock and logging
//   - pool: fixed-capacity owner-tagged slot rings for bitmaps and textures
//   - transform: the Location, Visibility and Color facets items are built from
//   - scene: items, layers, the update scheduler, priorities and the loader
//   - database: readers for Cinema database indexes
//   - config: TOML and YAML configuration files
//   - cmd/cinema: a command line to generate, inspect and replay databases
//
// # Frame Protocol
//
// One render goroutine drives a scene once per frame:
//
//	sc.BeginFrame(dt)            // reset decode budget, update items
//	sc.Prefetch(cam)             // look ahead along time, priorities only
//	for _, it := range sc.Items() {
//	    mvp, ok := sc.IsVisible(it, cam)
//	    ...                      // draw, then report the occlusion result
//	    sc.OnDrawn(layer, fraction, it.Selected())
//	}
//	for _, l := range sc.LoadQueue() {
//	    sc.Load(l)               // decode at most MaxFrameLoads per frame
//	}
//
// # Logging
//
// cinema is silent by default. Call SetLogger to receive diagnostics.
package cinema

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
