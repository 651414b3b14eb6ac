// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "math"

// DistanceAccumulator keeps a non-decreasing running total of distance.
type DistanceAccumulator struct {
	total float64
}

// Add adds d to the total and returns the new total. Negative and non-finite
// values are ignored.
func (a *DistanceAccumulator) Add(d float64) float64 {
	if d > 0 && !math.IsInf(d, 1) {
		a.total += d
	}
	return a.total
}

// Total returns the running total.
func (a *DistanceAccumulator) Total() float64 {
	return a.total
}

// Reset zeroes the total.
func (a *DistanceAccumulator) Reset() {
	a.total = 0
}
