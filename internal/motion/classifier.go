// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Verdict is the classifier's decision for one filtered sample.
type Verdict int

const (
	// VerdictSeeded means the sample became the first reference of a session.
	VerdictSeeded Verdict = iota
	// VerdictIgnored means no axis moved past the noise gate.
	VerdictIgnored
	// VerdictStationary means the sample passed the gate but not the
	// significance check.
	VerdictStationary
	// VerdictMoving means the sample is significant.
	VerdictMoving
)

func (v Verdict) String() string {
	switch v {
	case VerdictSeeded:
		return "seeded"
	case VerdictIgnored:
		return "ignored"
	case VerdictStationary:
		return "stationary"
	case VerdictMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// Decision is the outcome of classifying one sample.
type Decision struct {
	Verdict  Verdict
	Distance float64 // from the reference; zero for seeded/ignored samples
}

// Classifier compares filtered samples against a reference sample.
type Classifier struct {
	policy      Policy
	reference   Sample
	initialized bool
}

// NewClassifier returns a classifier with a zero reference.
func NewClassifier(p Policy) *Classifier {
	return &Classifier{policy: p}
}

// Reference returns the current reference sample.
func (c *Classifier) Reference() Sample {
	return c.reference
}

// Classify decides whether s is significant relative to the reference and
// advances the reference according to the policy.
func (c *Classifier) Classify(s Sample) Decision {
	if c.policy.SeedReference && !c.initialized {
		c.reference = s
		c.initialized = true
		return Decision{Verdict: VerdictSeeded}
	}
	c.initialized = true

	if !exceedsAxisDelta(s, c.reference, c.policy.NoiseGate) {
		if !c.policy.UpdateReferenceOnlyOnSignificant {
			c.reference = s
		}
		return Decision{Verdict: VerdictIgnored}
	}

	d := Distance(s, c.reference)
	if d >= c.policy.SignificanceDistance {
		c.reference = s
		return Decision{Verdict: VerdictMoving, Distance: d}
	}

	if !c.policy.UpdateReferenceOnlyOnSignificant {
		c.reference = s
	}
	return Decision{Verdict: VerdictStationary, Distance: d}
}

// Reset returns the classifier to its session-start state.
func (c *Classifier) Reset() {
	c.reference = Sample{}
	c.initialized = false
}
