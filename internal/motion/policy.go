// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "fmt"

// Default thresholds.
const (
	DefaultMovementThreshold    = 0.01 // distance policy noise gate
	DefaultSignificanceDistance = 0.75
	DefaultStepSize             = 0.2 // step policy gate
)

// Policy configures how samples are classified and what gets emitted.
//
// The distance policy (PolicyDistance) uses a per-axis noise gate followed by
// a Euclidean distance check and accumulates travelled distance. The step
// policy (PolicyStep) uses the per-axis gate alone and only notifies on
// significant samples.
type Policy struct {
	// NoiseGate is the per-axis delta a sample must strictly exceed on at
	// least one axis to be considered at all.
	NoiseGate float64

	// SignificanceDistance is the Euclidean distance from the reference at or
	// above which a gated sample is significant. Zero makes every gated sample
	// significant.
	SignificanceDistance float64

	// SeedReference captures the first sample of a session as the reference
	// without classifying it. When false the reference starts at the zero
	// vector and the first sample is compared against it.
	SeedReference bool

	// UpdateReferenceOnlyOnSignificant advances the reference only on
	// significant samples. When false it advances on every classified sample,
	// including those below the noise gate.
	UpdateReferenceOnlyOnSignificant bool

	// EmitAllSamples sends every gated sample to the stream sink, significant
	// or not.
	EmitAllSamples bool

	// StreamSignificant sends significant samples to the stream sink. With
	// both this and EmitAllSamples false the stream receives nothing and
	// movement is only reported through the notifier.
	StreamSignificant bool

	// TrackDistance adds significant distances to the running total.
	TrackDistance bool

	// ResetTotalOnStart zeroes the running total when a session starts. When
	// false the total carries across sessions.
	ResetTotalOnStart bool
}

// PolicyDistance returns the two-tier distance and threshold policy.
func PolicyDistance() Policy {
	return Policy{
		NoiseGate:                        DefaultMovementThreshold,
		SignificanceDistance:             DefaultSignificanceDistance,
		SeedReference:                    true,
		UpdateReferenceOnlyOnSignificant: true,
		EmitAllSamples:                   true,
		StreamSignificant:                true,
		TrackDistance:                    true,
	}
}

// PolicyStep returns the single-tier step size policy. The reference starts
// at the zero vector, so a first sample with any axis above the step size is
// reported as significant. Set SeedReference to suppress that.
func PolicyStep() Policy {
	return Policy{
		NoiseGate:                        DefaultStepSize,
		UpdateReferenceOnlyOnSignificant: true,
	}
}

// PolicyByName returns the named base policy ("distance" or "step").
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "distance":
		return PolicyDistance(), nil
	case "step":
		return PolicyStep(), nil
	default:
		return Policy{}, fmt.Errorf("unknown motion policy %q", name)
	}
}

// Validate checks that thresholds are usable.
func (p Policy) Validate() error {
	if p.NoiseGate < 0 {
		return fmt.Errorf("noise gate must be >= 0, got %v", p.NoiseGate)
	}
	if p.SignificanceDistance < 0 {
		return fmt.Errorf("significance distance must be >= 0, got %v", p.SignificanceDistance)
	}
	return nil
}
