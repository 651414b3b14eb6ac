// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "gonum.org/v1/gonum/spatial/r3"

// FilterAlpha is the smoothing constant of the gravity low-pass filter.
const FilterAlpha = 0.8

// GravityFilter is an exponential low-pass filter tracking the slow-moving
// gravity component of the accelerometer signal. The filtered output is the
// gravity estimate itself; nothing is subtracted from the raw reading.
type GravityFilter struct {
	alpha float64
	state r3.Vec
}

// NewGravityFilter returns a filter with a zero state.
func NewGravityFilter() *GravityFilter {
	return &GravityFilter{alpha: FilterAlpha}
}

// Apply folds s into the running estimate and returns the updated estimate.
func (f *GravityFilter) Apply(s Sample) Sample {
	// state = α·state + (1−α)·s
	f.state = r3.Add(r3.Scale(f.alpha, f.state), r3.Scale(1-f.alpha, s.vec()))
	return fromVec(f.state)
}

// State returns the current gravity estimate.
func (f *GravityFilter) State() Sample {
	return fromVec(f.state)
}

// Reset zeroes the estimate.
func (f *GravityFilter) Reset() {
	f.state = r3.Vec{}
}
