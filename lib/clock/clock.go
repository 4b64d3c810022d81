// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake with a pinned instant so that
// manifest generation is byte-for-byte reproducible under test.
//
// The manifest pipeline only ever asks for the current instant, so
// the interface carries Now alone — no tickers or timers.
package clock

import "time"

// Clock supplies the current time. Every production function that
// would call time.Now should accept a Clock (or be a method on a
// struct with a Clock field) instead of calling the time package
// directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the system clock.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake is a Clock pinned to a fixed instant. It never moves, so it
// is safe for concurrent use.
type Fake struct {
	current time.Time
}

// NewFake returns a Fake pinned to the given instant.
func NewFake(now time.Time) *Fake {
	return &Fake{current: now}
}

// Now returns the pinned instant.
func (f *Fake) Now() time.Time { return f.current }
