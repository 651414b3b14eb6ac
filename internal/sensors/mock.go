// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

type mockReader struct {
	start time.Time
	now   func() time.Time
}

// NewMockReader creates a mock accelerometer that alternates between
// resting flat and walking: gravity on Z plus a periodic step signal that is
// switched on for ten seconds out of every twenty.
func NewMockReader() AccelReader {
	return &mockReader{start: time.Now(), now: time.Now}
}

func (m *mockReader) ReadAccel() (motion.Sample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	s := motion.Sample{Z: StandardGravity}
	if math.Mod(elapsed, 20) >= 10 {
		// ~2 steps per second
		s.X = 3 * math.Sin(elapsed*4*math.Pi)
		s.Y = 1.5 * math.Cos(elapsed*2*math.Pi)
		s.Z += 4 * math.Abs(math.Sin(elapsed*2*math.Pi))
	}
	return s, nil
}
