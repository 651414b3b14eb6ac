// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// LineSource reads "x,y,z" lines from a stream and pushes each parsed sample.
// A tethered phone streaming its accelerometer over USB serial is the usual
// producer.
type LineSource struct {
	open   func() (io.ReadCloser, error)
	logger *slog.Logger
}

// NewLineSource creates a source that calls open for every subscription.
func NewLineSource(open func() (io.ReadCloser, error), logger *slog.Logger) *LineSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineSource{open: open, logger: logger}
}

// NewSerialSource creates a LineSource on a serial port.
func NewSerialSource(port string, baud int, logger *slog.Logger) *LineSource {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	return NewLineSource(func() (io.ReadCloser, error) {
		rwc, err := serial.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", port, err)
		}
		logger.Info("sensors: serial port opened", "port", port, "baud", baud)
		return rwc, nil
	}, logger)
}

// Available reports whether an opener is configured.
func (l *LineSource) Available() bool {
	return l.open != nil
}

// Subscribe opens the stream and starts delivering samples.
func (l *LineSource) Subscribe(handler func(motion.Sample)) (motion.Subscription, error) {
	if l.open == nil {
		return nil, motion.ErrNoSource
	}
	rc, err := l.open()
	if err != nil {
		return nil, err
	}
	sub := &lineSubscription{rc: rc, done: make(chan struct{})}
	go l.run(sub, handler)
	return sub, nil
}

func (l *LineSource) run(sub *lineSubscription, handler func(motion.Sample)) {
	defer close(sub.done)

	scanner := bufio.NewScanner(sub.rc)
	for scanner.Scan() {
		s, ok, err := ParseLine(scanner.Text())
		if err != nil {
			// noisy link or partial line
			l.logger.Debug("sensors: unparsable line", "err", err)
			continue
		}
		if ok {
			handler(s)
		}
	}
	if err := scanner.Err(); err != nil && !sub.isClosed() {
		l.logger.Warn("sensors: line source read error", "err", err)
	}
}

type lineSubscription struct {
	mu     sync.Mutex
	closed bool
	rc     io.ReadCloser
	done   chan struct{}
}

func (s *lineSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Unsubscribe closes the stream and waits for the reader goroutine.
func (s *lineSubscription) Unsubscribe() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		_ = s.rc.Close()
	}
	s.mu.Unlock()
	<-s.done
}

var errFieldCount = errors.New("expected 3 fields")

// ParseLine parses "x,y,z" (comma, semicolon or whitespace separated).
// Blank lines and lines starting with '#' return ok=false and no error.
func ParseLine(line string) (s motion.Sample, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return motion.Sample{}, false, nil
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return motion.Sample{}, false, fmt.Errorf("%w, got %d in %q", errFieldCount, len(fields), line)
	}

	var v [3]float64
	for i, f := range fields {
		v[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			return motion.Sample{}, false, fmt.Errorf("field %d: %w", i, err)
		}
	}
	return motion.Sample{X: v[0], Y: v[1], Z: v[2]}, true, nil
}
