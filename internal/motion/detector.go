// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoSource is returned when an operation needs a sample source and none is
// available.
var ErrNoSource = errors.New("no sample source available")

// Source delivers accelerometer samples. Deliveries for one subscription must
// be serialised.
type Source interface {
	Available() bool
	Subscribe(handler func(Sample)) (Subscription, error)
}

// Subscription is an active registration with a Source.
type Subscription interface {
	Unsubscribe()
}

// Snapshot is a point-in-time view of the detector.
type Snapshot struct {
	Active          bool          `json:"active"`
	SourceAvailable bool          `json:"sourceAvailable"`
	TotalDistance   float64       `json:"totalDistance"`
	Processed       int           `json:"processed"`
	Last            *MotionStatus `json:"last,omitempty"`
}

// Detector owns the session lifecycle and routes pipeline output to sinks.
type Detector struct {
	source Source
	policy Policy
	logger *slog.Logger

	// lifecycle serialises Start and Stop. mu guards the session state and
	// is never held while calling into the source.
	lifecycle sync.Mutex
	mu        sync.Mutex
	session   *Session
	sub       Subscription
	total     float64 // carried across sessions unless ResetTotalOnStart
	notifier  Notifier
	stream    StreamSink
	observers Sink
	last      *MotionStatus
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// WithNotifier sets the movement notification sink.
func WithNotifier(n Notifier) Option {
	return func(d *Detector) { d.notifier = n }
}

// WithObserver adds a sink that receives the stream for every session,
// independent of AttachStream.
func WithObserver(s StreamSink) Option {
	return func(d *Detector) { d.observers = append(d.observers, s) }
}

// NewDetector creates a detector. src may be nil, which is treated as an
// unavailable source.
func NewDetector(src Source, p Policy, opts ...Option) (*Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("motion policy: %w", err)
	}
	d := &Detector{source: src, policy: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Policy returns the detector's policy.
func (d *Detector) Policy() Policy { return d.policy }

// IsSourceAvailable reports whether a sample source exists.
func (d *Detector) IsSourceAvailable() bool {
	return d.source != nil && d.source.Available()
}

// SetNotifier replaces the movement notification sink. nil detaches it.
func (d *Detector) SetNotifier(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifier = n
}

// Start begins a new session. It is a no-op when a session is already active
// or when no source is available.
func (d *Detector) Start() error {
	if !d.IsSourceAvailable() {
		d.logger.Info("motion: accelerometer not available, start ignored")
		return nil
	}

	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.mu.Lock()
	if d.session != nil {
		d.mu.Unlock()
		d.logger.Debug("motion: detection already active, start ignored")
		return nil
	}
	initial := d.total
	if d.policy.ResetTotalOnStart {
		initial = 0
	}
	session := NewSession(d.policy, initial)
	d.session = session
	d.last = nil
	d.mu.Unlock()

	sub, err := d.source.Subscribe(func(s Sample) { d.handle(session, s) })
	if err != nil {
		d.mu.Lock()
		d.session = nil
		d.mu.Unlock()
		return fmt.Errorf("subscribe to sample source: %w", err)
	}

	d.mu.Lock()
	d.sub = sub
	d.mu.Unlock()
	d.logger.Info("motion: accelerometer listener registered")
	return nil
}

// Stop ends the active session. It is a no-op when no session is active.
// A sample being processed when Stop is called completes first.
func (d *Detector) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.mu.Lock()
	if d.session == nil {
		d.mu.Unlock()
		d.logger.Debug("motion: no accelerometer listener to unregister")
		return
	}
	d.total = d.session.TotalDistance()
	d.session = nil
	sub := d.sub
	d.sub = nil
	d.mu.Unlock()

	// A source may wait for a delivery that is blocked on d.mu.
	sub.Unsubscribe()
	d.logger.Info("motion: accelerometer listener unregistered")
}

// Active reports whether a session is running.
func (d *Detector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session != nil
}

// AttachStream attaches the continuous stream sink and starts a session.
func (d *Detector) AttachStream(s StreamSink) error {
	d.mu.Lock()
	d.stream = s
	d.mu.Unlock()
	return d.Start()
}

// DetachStream detaches the stream sink and stops the session.
func (d *Detector) DetachStream() {
	d.mu.Lock()
	d.stream = nil
	d.mu.Unlock()
	d.Stop()
}

// Snapshot returns the current state.
func (d *Detector) Snapshot() Snapshot {
	avail := d.IsSourceAvailable()

	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{
		Active:          d.session != nil,
		SourceAvailable: avail,
		TotalDistance:   d.total,
	}
	if d.session != nil {
		snap.TotalDistance = d.session.TotalDistance()
		snap.Processed = d.session.Processed()
	}
	if d.last != nil {
		last := *d.last
		snap.Last = &last
	}
	return snap
}

// handle processes one delivered sample under the detector lock.
func (d *Detector) handle(session *Session, s Sample) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Late delivery from a subscription that has been stopped.
	if d.session != session {
		return
	}

	out, err := session.Process(s)
	if err != nil {
		d.logger.Warn("motion: sample rejected", "err", err)
		d.sendError(err)
		return
	}

	switch out.Decision.Verdict {
	case VerdictSeeded:
		d.logger.Debug("motion: reference initialised", "x", out.Filtered.X, "y", out.Filtered.Y, "z", out.Filtered.Z)
		return
	case VerdictIgnored:
		return
	case VerdictMoving:
		d.logger.Debug("motion: significant movement detected",
			"x", out.Status.X, "y", out.Status.Y, "z", out.Status.Z,
			"distance", out.Status.Distance, "total", out.Status.TotalDistance)
	case VerdictStationary:
		d.logger.Debug("motion: no significant movement", "distance", out.Status.Distance)
	}

	st := out.Status
	d.last = &st
	if out.Notify && d.notifier != nil {
		d.notifier.NotifyMovement(out.Notification(d.policy.TrackDistance))
	}
	if out.Stream {
		if d.stream != nil {
			d.stream.SendStatus(st)
		}
		d.observers.SendStatus(st)
	}
}

func (d *Detector) sendError(err error) {
	if d.stream != nil {
		d.stream.SendError(err)
	}
	d.observers.SendError(err)
}
