// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample represents a single 3-axis accelerometer reading.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (s Sample) vec() r3.Vec {
	return r3.Vec{X: s.X, Y: s.Y, Z: s.Z}
}

func fromVec(v r3.Vec) Sample {
	return Sample{X: v.X, Y: v.Y, Z: v.Z}
}

// Valid reports whether every axis is a finite number.
func (s Sample) Valid() bool {
	for _, v := range [3]float64{s.X, s.Y, s.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// exceedsAxisDelta reports whether any per-axis absolute delta between a and b
// is strictly greater than threshold.
func exceedsAxisDelta(a, b Sample, threshold float64) bool {
	d := r3.Sub(a.vec(), b.vec())
	return math.Abs(d.X) > threshold || math.Abs(d.Y) > threshold || math.Abs(d.Z) > threshold
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Sample) float64 {
	return r3.Norm(r3.Sub(a.vec(), b.vec()))
}
