package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

func TestRunReplayDistance(t *testing.T) {
	input := strings.Join([]string{
		"# x,y,z",
		"0,0,0",
		"5,0,0",
		"5,0,0",
		"5,0,0",
		"5,0,0",
		"",
		"NaN,0,0",
	}, "\n")

	var out bytes.Buffer
	sum, err := RunReplay(strings.NewReader(input), motion.PolicyDistance(), &out)
	require.NoError(t, err)

	assert.Equal(t, 8, sum.Lines)
	assert.Equal(t, 6, sum.Samples)
	assert.Equal(t, 1, sum.Rejected)
	assert.Equal(t, 3, sum.Moving)
	assert.InDelta(t, 2.952, sum.Total, 1e-9)

	text := out.String()
	assert.Equal(t, 3, strings.Count(text, "Moving"))
	assert.Equal(t, 1, strings.Count(text, "Stationary"))
	assert.Contains(t, text, "rejected: invalid sample")
}

func TestRunReplayStepPolicyStreamsNothing(t *testing.T) {
	input := "0.1,0,0\n0.1,0,0\n3,0,0\n"

	var out bytes.Buffer
	sum, err := RunReplay(strings.NewReader(input), motion.PolicyStep(), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Samples)
	assert.Equal(t, 1, sum.Moving)
	assert.Zero(t, sum.Total)
	assert.Empty(t, out.String())
}

func TestRunReplayBadLine(t *testing.T) {
	_, err := RunReplay(strings.NewReader("0,0,0\n1,2\n"), motion.PolicyDistance(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
