// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/movement_detection/internal/config"
	"github.com/relabs-tech/movement_detection/internal/motion"
)

// NoSource is a device without an accelerometer.
type NoSource struct{}

func (NoSource) Available() bool { return false }

func (NoSource) Subscribe(func(motion.Sample)) (motion.Subscription, error) {
	return nil, motion.ErrNoSource
}

// Close releases whatever src holds open (the MQTT source's client). Other
// sources need no cleanup.
func Close(src motion.Source) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewSource builds the sample source selected by cfg.SourceType. A hardware
// source that fails to initialize is reported as unavailable, not as an
// error, so the bridge still answers availability requests.
func NewSource(cfg *config.Config, logger *slog.Logger) (motion.Source, error) {
	interval := time.Duration(cfg.SampleInterval) * time.Millisecond

	switch cfg.SourceType {
	case config.SourceMPU9250:
		r, err := NewMPU9250Reader(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange, logger)
		if err != nil {
			logger.Warn("sensors: MPU9250 not available", "err", err)
			return NoSource{}, nil
		}
		logger.Info("sensors: using MPU9250 accelerometer", "device", cfg.IMUSPIDevice)
		return NewPollingSource(r, interval, logger), nil
	case config.SourceSerial:
		logger.Info("sensors: using serial accelerometer", "port", cfg.SerialPort)
		return NewSerialSource(cfg.SerialPort, cfg.SerialBaudRate, logger), nil
	case config.SourceMQTT:
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientIDBridge + "-samples").
			SetAutoReconnect(true)
		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Warn("sensors: MQTT sample source not available", "err", token.Error())
			return NoSource{}, nil
		}
		logger.Info("sensors: using MQTT samples", "broker", cfg.MQTTBroker, "topic", cfg.TopicSamples)
		return NewMQTTSource(client, cfg.TopicSamples, logger), nil
	case config.SourceMock:
		logger.Info("sensors: using mock accelerometer")
		return NewPollingSource(NewMockReader(), interval, logger), nil
	case config.SourceNone:
		logger.Info("sensors: no accelerometer configured")
		return NoSource{}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.SourceType)
	}
}
