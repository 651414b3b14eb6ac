package motion

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGravityFilterFirstStep(t *testing.T) {
	f := NewGravityFilter()

	out := f.Apply(Sample{X: 5, Y: -10, Z: 0})

	assert.InDelta(t, 1.0, out.X, 1e-12)
	assert.InDelta(t, -2.0, out.Y, 1e-12)
	assert.InDelta(t, 0.0, out.Z, 1e-12)
	assert.Equal(t, out, f.State())
}

func TestGravityFilterConvergesUnderConstantInput(t *testing.T) {
	f := NewGravityFilter()
	target := Sample{X: 0.3, Y: -9.81, Z: 1.2}

	for i := 0; i < 200; i++ {
		f.Apply(target)
	}

	require.Less(t, Distance(f.State(), target), 1e-9)
}

func TestGravityFilterConvexity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	f := NewGravityFilter()

	between := func(v, a, b float64) bool {
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		return v >= lo-1e-12 && v <= hi+1e-12
	}

	for i := 0; i < 500; i++ {
		prev := f.State()
		s := Sample{X: rng.Float64()*40 - 20, Y: rng.Float64()*40 - 20, Z: rng.Float64()*40 - 20}
		next := f.Apply(s)

		assert.True(t, between(next.X, prev.X, s.X), "x out of range at step %d", i)
		assert.True(t, between(next.Y, prev.Y, s.Y), "y out of range at step %d", i)
		assert.True(t, between(next.Z, prev.Z, s.Z), "z out of range at step %d", i)
	}
}

func TestGravityFilterReset(t *testing.T) {
	f := NewGravityFilter()
	f.Apply(Sample{X: 1, Y: 2, Z: 3})

	f.Reset()

	assert.Equal(t, Sample{}, f.State())
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(Sample{X: 3, Y: 4}, Sample{}), 1e-12)
	assert.InDelta(t, 0.0, Distance(Sample{X: 1, Y: 1, Z: 1}, Sample{X: 1, Y: 1, Z: 1}), 1e-12)
	assert.InDelta(t, 3.0, Distance(Sample{X: 1, Y: 2, Z: 3}, Sample{X: -1, Y: 0, Z: 2}), 1e-12)
}
