package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/movement_detection/internal/config"
	"github.com/relabs-tech/movement_detection/internal/motion"
)

func TestConsoleSinkFormats(t *testing.T) {
	out := &syncBuffer{}
	sink := NewConsoleSink(out)
	det, src := newDetector(t, motion.PolicyDistance(), motion.WithNotifier(sink), motion.WithObserver(sink))

	require.NoError(t, det.Start())
	src.emit(motion.Sample{}, motion.Sample{X: 5})
	sink.SendError(errors.New("invalid sample"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[MOVE] x=  1.000 y=  0.000 z=  0.000 d=1.000 total=1.000", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[STRM] Moving     x=  1.000"))
	assert.Equal(t, "[STRM] error: invalid sample", lines[2])
}

func TestConsoleSinkStepNotificationHasNoDistance(t *testing.T) {
	out := &syncBuffer{}
	NewConsoleSink(out).NotifyMovement(motion.Notification{X: 0.5})
	assert.Equal(t, "[MOVE] x=  0.500 y=  0.000 z=  0.000\n", out.String())
}

func TestRunConsoleWithMockSource(t *testing.T) {
	cfg := config.Default()
	cfg.MQTTBroker = "tcp://unused:1883"
	cfg.SampleInterval = 5

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out := &syncBuffer{}
	require.NoError(t, RunConsole(ctx, cfg, out, quietLogger()))
	assert.Contains(t, out.String(), "processed=")
}

func TestRunConsoleWithoutSource(t *testing.T) {
	cfg := config.Default()
	cfg.SourceType = config.SourceNone

	err := RunConsole(context.Background(), cfg, &syncBuffer{}, quietLogger())
	assert.ErrorIs(t, err, motion.ErrNoSource)
}
