package motion

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDistanceScenario(t *testing.T) {
	s := NewSession(PolicyDistance(), 0)

	out, err := s.Process(Sample{})
	require.NoError(t, err)
	assert.Equal(t, VerdictSeeded, out.Decision.Verdict)
	assert.False(t, out.Stream)
	assert.False(t, out.Notify)
	assert.Equal(t, Sample{}, s.Reference())

	// filtered x = 0.2*5 = 1.0, which is past the 0.75 significance distance
	out, err = s.Process(Sample{X: 5})
	require.NoError(t, err)
	assert.Equal(t, VerdictMoving, out.Decision.Verdict)
	assert.Equal(t, StatusMoving, out.Status.Status)
	assert.InDelta(t, 1.0, out.Status.X, 1e-9)
	assert.InDelta(t, 1.0, out.Status.Distance, 1e-9)
	assert.InDelta(t, 1.0, out.Status.TotalDistance, 1e-9)
	assert.True(t, out.Stream)
	assert.True(t, out.Notify)

	// filtered x = 1.8, distance 0.8
	out, err = s.Process(Sample{X: 5})
	require.NoError(t, err)
	assert.Equal(t, StatusMoving, out.Status.Status)
	assert.InDelta(t, 0.8, out.Status.Distance, 1e-9)
	assert.InDelta(t, 1.8, out.Status.TotalDistance, 1e-9)

	// filtered x = 2.44, distance 0.64 from reference 1.8
	out, err = s.Process(Sample{X: 5})
	require.NoError(t, err)
	assert.Equal(t, StatusStationary, out.Status.Status)
	assert.InDelta(t, 0.64, out.Status.Distance, 1e-9)
	assert.InDelta(t, 1.8, out.Status.TotalDistance, 1e-9)
	assert.True(t, out.Stream)
	assert.False(t, out.Notify)
	assert.InDelta(t, 1.8, s.Reference().X, 1e-9)

	// filtered x = 2.952, distance 1.152 from reference 1.8
	out, err = s.Process(Sample{X: 5})
	require.NoError(t, err)
	assert.Equal(t, StatusMoving, out.Status.Status)
	assert.InDelta(t, 1.152, out.Status.Distance, 1e-9)
	assert.InDelta(t, 2.952, out.Status.TotalDistance, 1e-9)
}

func TestSessionDistanceStationaryBelowSignificance(t *testing.T) {
	s := NewSession(PolicyDistance(), 0)
	_, err := s.Process(Sample{})
	require.NoError(t, err)

	// filtered x = 0.5
	out, err := s.Process(Sample{X: 2.5})
	require.NoError(t, err)

	assert.Equal(t, StatusStationary, out.Status.Status)
	assert.False(t, out.Status.Significant)
	assert.InDelta(t, 0.5, out.Status.Distance, 1e-9)
	assert.Zero(t, out.Status.TotalDistance)
	assert.Equal(t, Sample{}, s.Reference())
}

func TestSessionDistanceNoiseGateNeverMoves(t *testing.T) {
	s := NewSession(PolicyDistance(), 0)

	for i := 0; i < 50; i++ {
		out, err := s.Process(Sample{X: 0.004 * float64(i%2), Y: -0.003, Z: 0.002})
		require.NoError(t, err)
		assert.NotEqual(t, VerdictMoving, out.Decision.Verdict)
		assert.False(t, out.Notify)
	}
	assert.Zero(t, s.TotalDistance())
}

func TestSessionTotalIsMonotonicAndReferenceMovesOnlyWhenMoving(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	s := NewSession(PolicyDistance(), 0)
	prevTotal := 0.0

	for i := 0; i < 2000; i++ {
		raw := Sample{X: rng.NormFloat64() * 6, Y: rng.NormFloat64() * 6, Z: 9.81 + rng.NormFloat64()*6}
		before := s.Reference()

		out, err := s.Process(raw)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, s.TotalDistance(), prevTotal)
		prevTotal = s.TotalDistance()

		if out.Decision.Verdict == VerdictSeeded {
			continue
		}
		moved := before != s.Reference()
		assert.Equal(t, out.Decision.Verdict == VerdictMoving, moved, "step %d verdict %v", i, out.Decision.Verdict)
	}
	assert.Positive(t, prevTotal)
}

func TestSessionStepSmallFirstSampleIsQuiet(t *testing.T) {
	s := NewSession(PolicyStep(), 0)

	// filtered = 0.01 per axis, below the 0.2 step size
	out, err := s.Process(Sample{X: 0.05, Y: 0.05, Z: 0.05})
	require.NoError(t, err)

	assert.Equal(t, VerdictIgnored, out.Decision.Verdict)
	assert.False(t, out.Notify)
	assert.False(t, out.Stream)
	assert.Equal(t, Sample{}, s.Reference())
}

func TestSessionStepLargeFirstSampleMisfires(t *testing.T) {
	s := NewSession(PolicyStep(), 0)

	// filtered z = 1.962 against the zero reference
	out, err := s.Process(Sample{Z: 9.81})
	require.NoError(t, err)

	assert.Equal(t, VerdictMoving, out.Decision.Verdict)
	assert.True(t, out.Notify)
	assert.False(t, out.Stream)
	assert.Zero(t, s.TotalDistance())

	n := out.Notification(false)
	assert.InDelta(t, 1.962, n.Z, 1e-9)
	assert.Nil(t, n.Distance)
	assert.Nil(t, n.TotalDistance)
}

func TestSessionStepSeededFirstSample(t *testing.T) {
	p := PolicyStep()
	p.SeedReference = true
	s := NewSession(p, 0)

	out, err := s.Process(Sample{Z: 9.81})
	require.NoError(t, err)

	assert.Equal(t, VerdictSeeded, out.Decision.Verdict)
	assert.False(t, out.Notify)
}

func TestSessionRejectsNonFiniteSamples(t *testing.T) {
	s := NewSession(PolicyDistance(), 2.5)
	_, err := s.Process(Sample{X: 1})
	require.NoError(t, err)
	before := s.FilterState()

	for _, bad := range []Sample{
		{X: math.NaN()},
		{Y: math.Inf(1)},
		{Z: math.Inf(-1)},
	} {
		_, err := s.Process(bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSample))
	}

	assert.Equal(t, before, s.FilterState())
	assert.InDelta(t, 2.5, s.TotalDistance(), 1e-12)
	assert.Equal(t, 1, s.Processed())
}

func TestNilSessionPanics(t *testing.T) {
	var s *Session
	assert.Panics(t, func() { _, _ = s.Process(Sample{}) })
}

func TestOutcomeNotificationWithDistance(t *testing.T) {
	out := Outcome{Status: MotionStatus{X: 1, Y: 2, Z: 3, Distance: 0.9, TotalDistance: 4}}

	n := out.Notification(true)

	require.NotNil(t, n.Distance)
	require.NotNil(t, n.TotalDistance)
	assert.Equal(t, 0.9, *n.Distance)
	assert.Equal(t, 4.0, *n.TotalDistance)
}

func TestDistanceAccumulatorIgnoresBadValues(t *testing.T) {
	var a DistanceAccumulator
	a.Add(1.5)
	a.Add(-3)
	a.Add(math.NaN())
	a.Add(math.Inf(1))

	assert.Equal(t, 1.5, a.Total())

	a.Reset()
	assert.Zero(t, a.Total())
}
