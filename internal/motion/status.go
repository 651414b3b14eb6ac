// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Status is the movement tag carried by a MotionStatus.
type Status string

const (
	StatusMoving     Status = "Moving"
	StatusStationary Status = "Stationary"
)

// MotionStatus is the per-sample record sent to the stream sink.
type MotionStatus struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	Distance      float64 `json:"distance"`
	TotalDistance float64 `json:"totalDistance"`
	Status        Status  `json:"status"`
	Significant   bool    `json:"significant"`
}

// Notification is the one-shot "movement detected" payload. Distance fields
// are only set when the policy tracks distance.
type Notification struct {
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Z             float64  `json:"z"`
	Distance      *float64 `json:"distance,omitempty"`
	TotalDistance *float64 `json:"totalDistance,omitempty"`
}

// Notifier receives significant movement notifications.
type Notifier interface {
	NotifyMovement(Notification)
}

// StreamSink receives per-sample status records and classification errors.
type StreamSink interface {
	SendStatus(MotionStatus)
	SendError(error)
}

// Sink fans every call out to a list of sinks.
type Sink []StreamSink

func (s Sink) SendStatus(st MotionStatus) {
	for _, sink := range s {
		sink.SendStatus(st)
	}
}

func (s Sink) SendError(err error) {
	for _, sink := range s {
		sink.SendError(err)
	}
}
