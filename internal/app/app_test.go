package app

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manualSource delivers samples when the test calls emit.
type manualSource struct {
	mu      sync.Mutex
	handler func(motion.Sample)
}

type manualSub struct{ src *manualSource }

func (s manualSub) Unsubscribe() {
	s.src.mu.Lock()
	defer s.src.mu.Unlock()
	s.src.handler = nil
}

func (m *manualSource) Available() bool { return true }

func (m *manualSource) Subscribe(h func(motion.Sample)) (motion.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
	return manualSub{src: m}, nil
}

func (m *manualSource) emit(samples ...motion.Sample) {
	for _, s := range samples {
		m.mu.Lock()
		h := m.handler
		m.mu.Unlock()
		if h != nil {
			h(s)
		}
	}
}

func (m *manualSource) subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

func newDetector(t *testing.T, p motion.Policy, opts ...motion.Option) (*motion.Detector, *manualSource) {
	t.Helper()
	src := &manualSource{}
	d, err := motion.NewDetector(src, p, append([]motion.Option{motion.WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return d, src
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// recordingStream counts stream records.
type recordingStream struct {
	mu       sync.Mutex
	statuses []motion.MotionStatus
	errs     []error
}

func (r *recordingStream) SendStatus(st motion.MotionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, st)
}

func (r *recordingStream) SendError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingStream) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses)
}
