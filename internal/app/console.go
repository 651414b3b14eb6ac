// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/relabs-tech/movement_detection/internal/config"
	"github.com/relabs-tech/movement_detection/internal/motion"
	"github.com/relabs-tech/movement_detection/internal/sensors"
)

// RunConsole runs detection in-process against the configured source and
// prints every notification and stream record to w until ctx is done. No
// MQTT broker is needed.
func RunConsole(ctx context.Context, cfg *config.Config, w io.Writer, logger *slog.Logger) error {
	policy, err := cfg.Policy()
	if err != nil {
		return fmt.Errorf("motion policy: %w", err)
	}

	src, err := sensors.NewSource(cfg, logger)
	if err != nil {
		return err
	}
	defer sensors.Close(src)

	sink := NewConsoleSink(w)
	det, err := motion.NewDetector(src, policy,
		motion.WithLogger(logger),
		motion.WithNotifier(sink),
		motion.WithObserver(sink),
	)
	if err != nil {
		return err
	}

	logPolicy(logger, det.Policy())

	if !det.IsSourceAvailable() {
		return motion.ErrNoSource
	}
	if err := det.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	det.Stop()

	snap := det.Snapshot()
	fmt.Fprintf(w, "processed=%d total=%.3f\n", snap.Processed, snap.TotalDistance)
	return nil
}

// ConsoleSink prints detector output, one line per record.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink writes to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) NotifyMovement(n motion.Notification) {
	fmt.Fprintln(c.w, formatNotification(n))
}

func (c *ConsoleSink) SendStatus(st motion.MotionStatus) {
	fmt.Fprintln(c.w, formatStatus(st))
}

func (c *ConsoleSink) SendError(err error) {
	fmt.Fprintf(c.w, "[STRM] error: %v\n", err)
}

func formatNotification(n motion.Notification) string {
	line := fmt.Sprintf("[MOVE] x=%7.3f y=%7.3f z=%7.3f", n.X, n.Y, n.Z)
	if n.Distance != nil && n.TotalDistance != nil {
		line += fmt.Sprintf(" d=%.3f total=%.3f", *n.Distance, *n.TotalDistance)
	}
	return line
}

func formatStatus(st motion.MotionStatus) string {
	return fmt.Sprintf("[STRM] %-10s x=%7.3f y=%7.3f z=%7.3f d=%.3f total=%.3f",
		st.Status, st.X, st.Y, st.Z, st.Distance, st.TotalDistance)
}
