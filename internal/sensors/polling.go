// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"log/slog"
	"sync"
	"time"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// AccelReader reads one accelerometer sample on demand.
type AccelReader interface {
	ReadAccel() (motion.Sample, error)
}

// PollingSource turns an AccelReader into a push source by reading it on a
// ticker. Every subscription gets its own goroutine, so deliveries for one
// subscription never overlap.
type PollingSource struct {
	reader   AccelReader
	interval time.Duration
	logger   *slog.Logger
}

// NewPollingSource creates a source reading r every interval.
func NewPollingSource(r AccelReader, interval time.Duration, logger *slog.Logger) *PollingSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingSource{reader: r, interval: interval, logger: logger}
}

// Available reports whether a reader is configured.
func (p *PollingSource) Available() bool {
	return p.reader != nil
}

// Subscribe starts polling and delivers each sample to handler.
func (p *PollingSource) Subscribe(handler func(motion.Sample)) (motion.Subscription, error) {
	if p.reader == nil {
		return nil, motion.ErrNoSource
	}
	sub := &pollSubscription{stop: make(chan struct{}), done: make(chan struct{})}
	go p.run(sub, handler)
	return sub, nil
}

func (p *PollingSource) run(sub *pollSubscription, handler func(motion.Sample)) {
	defer close(sub.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.stop:
			return
		case <-ticker.C:
			s, err := p.reader.ReadAccel()
			if err != nil {
				p.logger.Warn("sensors: accelerometer read error", "err", err)
				continue
			}
			handler(s)
		}
	}
}

type pollSubscription struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// Unsubscribe stops polling and waits for the in-flight delivery to return.
func (s *pollSubscription) Unsubscribe() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
