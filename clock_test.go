// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import "testing"

func TestClockPlayback(t *testing.T) {
	c := NewClock(2)
	c.Step(1)
	if c.Now() != 2 {
		t.Errorf("paused Step moved clock to %v", c.Now())
	}
	c.Play(0.5)
	c.Step(4)
	if c.Now() != 4 {
		t.Errorf("Now = %v, want 4", c.Now())
	}
	c.Pause()
	if c.Playing() {
		t.Error("Playing after Pause")
	}
}

func TestClockLookahead(t *testing.T) {
	c := NewClock(10)
	var seen float64
	c.Lookahead(1.1, func() { seen = c.Now() })
	if seen != 11.1 {
		t.Errorf("time inside Lookahead = %v, want 11.1", seen)
	}
	if c.Now() != 10 {
		t.Errorf("time after Lookahead = %v, want 10", c.Now())
	}

	func() {
		defer func() { _ = recover() }()
		c.Lookahead(5, func() { panic("boom") })
	}()
	if c.Now() != 10 {
		t.Errorf("time after panicking Lookahead = %v, want 10", c.Now())
	}
}
