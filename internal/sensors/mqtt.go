// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// MQTTSource delivers samples published on an MQTT topic, usually by
// sample_producer running next to the sensor.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

// NewMQTTSource reads samples from topic using an already connected client.
func NewMQTTSource(client mqtt.Client, topic string, logger *slog.Logger) *MQTTSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTSource{client: client, topic: topic, logger: logger}
}

// Available reports whether the client is connected (or reconnecting).
func (m *MQTTSource) Available() bool {
	return m.client != nil && m.client.IsConnected()
}

// Subscribe subscribes to the sample topic. Payloads are JSON
// {"x":..,"y":..,"z":..} or a plain "x,y,z" line.
func (m *MQTTSource) Subscribe(handler func(motion.Sample)) (motion.Subscription, error) {
	if !m.Available() {
		return nil, motion.ErrNoSource
	}

	sub := &mqttSubscription{src: m}
	token := m.client.Subscribe(m.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if sub.closed.Load() {
			return
		}
		s, err := DecodeSample(msg.Payload())
		if err != nil {
			m.logger.Warn("sensors: bad sample payload", "topic", msg.Topic(), "err", err)
			return
		}
		handler(s)
	})
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("subscribe %s: timed out", m.topic)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", m.topic, err)
	}
	m.logger.Info("sensors: subscribed to sample topic", "topic", m.topic)
	return sub, nil
}

// Close disconnects the client.
func (m *MQTTSource) Close() error {
	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
		m.logger.Info("sensors: MQTT sample source disconnected")
	}
	return nil
}

type mqttSubscription struct {
	src    *MQTTSource
	closed atomic.Bool
}

// Unsubscribe stops deliveries. Messages already queued by the client are
// discarded.
func (s *mqttSubscription) Unsubscribe() {
	if s.closed.Swap(true) {
		return
	}
	token := s.src.client.Unsubscribe(s.src.topic)
	if !token.WaitTimeout(2*time.Second) || token.Error() != nil {
		s.src.logger.Warn("sensors: unsubscribe failed", "topic", s.src.topic, "err", token.Error())
	}
}

// DecodeSample parses one sample payload.
func DecodeSample(payload []byte) (motion.Sample, error) {
	var s motion.Sample
	if err := json.Unmarshal(payload, &s); err == nil {
		return s, nil
	}
	s, ok, err := ParseLine(string(payload))
	if err != nil {
		return motion.Sample{}, err
	}
	if !ok {
		return motion.Sample{}, fmt.Errorf("empty sample payload")
	}
	return s, nil
}
