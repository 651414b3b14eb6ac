package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/movement_detection/internal/config"
	"github.com/relabs-tech/movement_detection/internal/motion"
	"github.com/relabs-tech/movement_detection/internal/sensors"
)

// RunSampleProducer reads the local accelerometer and publishes every sample
// to TOPIC_SAMPLES until ctx is done. A bridge elsewhere consumes them with
// SOURCE_TYPE=mqtt.
func RunSampleProducer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting accelerometer sample producer")

	if cfg.SourceType == config.SourceMQTT {
		return errors.New("sample producer needs a local SOURCE_TYPE, not mqtt")
	}

	src, err := sensors.NewSource(cfg, logger)
	if err != nil {
		return err
	}
	if !src.Available() {
		return motion.ErrNoSource
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	logger.Info("connected to MQTT, starting publish loop", "topic", cfg.TopicSamples)

	pub, err := PublishSamples(src, client, cfg.TopicSamples, logger)
	if err != nil {
		return err
	}

	<-ctx.Done()
	pub.Unsubscribe()
	logger.Info("sample producer stopped", "published", pub.Published())
	return nil
}

// SamplePublisher forwards samples from a source to an MQTT topic.
type SamplePublisher struct {
	sub       motion.Subscription
	published atomic.Int64
}

// PublishSamples subscribes to src and publishes each sample as JSON.
func PublishSamples(src motion.Source, client mqtt.Client, topic string, logger *slog.Logger) (*SamplePublisher, error) {
	p := &SamplePublisher{}
	sub, err := src.Subscribe(func(s motion.Sample) {
		payload, err := json.Marshal(s)
		if err != nil {
			logger.Error("producer: json marshal error", "err", err)
			return
		}
		if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
			logger.Warn("producer: MQTT publish error", "err", token.Error())
			return
		}
		p.published.Add(1)
		logger.Debug("producer: sample published", "x", s.X, "y", s.Y, "z", s.Z)
	})
	if err != nil {
		return nil, err
	}
	p.sub = sub
	return p, nil
}

// Published returns the number of samples published so far.
func (p *SamplePublisher) Published() int64 {
	return p.published.Load()
}

// Unsubscribe stops reading the source.
func (p *SamplePublisher) Unsubscribe() {
	p.sub.Unsubscribe()
}
