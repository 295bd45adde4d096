// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

// Clock is the global logical time of an ensemble, measured in the units
// of its time dimension. It is not safe for concurrent use; the owning
// scene serializes access.
type Clock struct {
	now     float64
	speed   float64
	playing bool
}

// NewClock creates a paused clock at t with playback speed 1.
func NewClock(t float64) *Clock {
	return &Clock{now: t, speed: 1}
}

// Now returns the current logical time.
func (c *Clock) Now() float64 {
	return c.now
}

// Set jumps to t.
func (c *Clock) Set(t float64) {
	c.now = t
}

// Play starts playback at the given speed in time units per second.
func (c *Clock) Play(speed float64) {
	c.speed = speed
	c.playing = true
}

// Pause stops playback.
func (c *Clock) Pause() {
	c.playing = false
}

// Playing reports whether the clock advances on Step.
func (c *Clock) Playing() bool {
	return c.playing
}

// Step advances the clock by dt seconds of wall time if it is playing.
func (c *Clock) Step(dt float64) {
	if c.playing {
		c.now += dt * c.speed
	}
}

// Lookahead runs fn with the clock temporarily advanced by window and
// restores the previous time afterwards, even if fn panics.
func (c *Clock) Lookahead(window float64, fn func()) {
	saved := c.now
	c.now += window
	defer func() { c.now = saved }()
	fn()
}
