// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"fmt"
)

// ErrInvalidSample is returned for samples with NaN or infinite components.
var ErrInvalidSample = errors.New("invalid sample")

// Outcome is the result of processing one raw sample.
type Outcome struct {
	Filtered Sample
	Decision Decision
	Status   MotionStatus
	Stream   bool // send Status to the stream sink
	Notify   bool // send a movement notification
}

// Notification builds the notification payload for this outcome.
func (o Outcome) Notification(trackDistance bool) Notification {
	n := Notification{X: o.Status.X, Y: o.Status.Y, Z: o.Status.Z}
	if trackDistance {
		d, total := o.Status.Distance, o.Status.TotalDistance
		n.Distance = &d
		n.TotalDistance = &total
	}
	return n
}

// Session bundles all state of one detection run: filter state, classifier
// reference and running total. A new Session starts from zero.
type Session struct {
	policy     Policy
	filter     *GravityFilter
	classifier *Classifier
	acc        DistanceAccumulator
	processed  int
}

// NewSession creates a session. initialTotal seeds the running total.
func NewSession(p Policy, initialTotal float64) *Session {
	s := &Session{
		policy:     p,
		filter:     NewGravityFilter(),
		classifier: NewClassifier(p),
	}
	s.acc.Add(initialTotal)
	return s
}

// Process runs one raw sample through filter, classifier and accumulator.
// Invalid samples leave the session untouched.
func (s *Session) Process(raw Sample) (Outcome, error) {
	if !raw.Valid() {
		return Outcome{}, fmt.Errorf("%w: x=%v y=%v z=%v", ErrInvalidSample, raw.X, raw.Y, raw.Z)
	}
	s.processed++

	filtered := s.filter.Apply(raw)
	d := s.classifier.Classify(filtered)
	out := Outcome{Filtered: filtered, Decision: d}

	switch d.Verdict {
	case VerdictSeeded, VerdictIgnored:
		return out, nil
	case VerdictMoving:
		if s.policy.TrackDistance {
			s.acc.Add(d.Distance)
		}
		out.Status = s.status(filtered, d, StatusMoving)
		out.Stream = s.policy.StreamSignificant || s.policy.EmitAllSamples
		out.Notify = true
	case VerdictStationary:
		out.Status = s.status(filtered, d, StatusStationary)
		out.Stream = s.policy.EmitAllSamples
	}
	return out, nil
}

func (s *Session) status(f Sample, d Decision, st Status) MotionStatus {
	return MotionStatus{
		X:             f.X,
		Y:             f.Y,
		Z:             f.Z,
		Distance:      d.Distance,
		TotalDistance: s.acc.Total(),
		Status:        st,
		Significant:   st == StatusMoving,
	}
}

// FilterState returns the gravity estimate.
func (s *Session) FilterState() Sample { return s.filter.State() }

// Reference returns the classifier reference sample.
func (s *Session) Reference() Sample { return s.classifier.Reference() }

// TotalDistance returns the running total.
func (s *Session) TotalDistance() float64 { return s.acc.Total() }

// Processed returns how many valid samples the session has seen.
func (s *Session) Processed() int { return s.processed }
