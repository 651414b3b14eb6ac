// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/movement_detection/internal/config"
	"github.com/relabs-tech/movement_detection/internal/motion"
	"github.com/relabs-tech/movement_detection/internal/sensors"
)

// RunBridge wires the sample source, the detector, the MQTT channel, the
// websocket stream and the optional display, and runs until ctx is done.
func RunBridge(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting movement detection bridge")

	policy, err := cfg.Policy()
	if err != nil {
		return fmt.Errorf("motion policy: %w", err)
	}

	src, err := sensors.NewSource(cfg, logger)
	if err != nil {
		return err
	}
	defer sensors.Close(src)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDBridge).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	logger.Info("connected to MQTT", "broker", cfg.MQTTBroker)

	channel := NewMQTTChannel(client, TopicsFromConfig(cfg), logger)

	detOpts := []motion.Option{
		motion.WithLogger(logger),
		motion.WithNotifier(channel),
		motion.WithObserver(channel),
	}

	var display *DisplayData
	if cfg.DisplayEnabled {
		display = &DisplayData{}
		detOpts = append(detOpts, motion.WithObserver(display))
	}

	det, err := motion.NewDetector(src, policy, detOpts...)
	if err != nil {
		return err
	}
	defer det.Stop()

	if display != nil {
		// Notifications go to MQTT and the display.
		det.SetNotifier(notifiers{channel, display})
		go func() {
			interval := time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond
			if err := RunDisplay(ctx, display, interval, logger); err != nil {
				logger.Error("display: stopped", "err", err)
			}
		}()
	}

	if err := channel.Serve(det); err != nil {
		return err
	}
	defer channel.Close()

	logPolicy(logger, det.Policy())
	logger.Info("accelerometer", "available", det.IsSourceAvailable())

	hub := NewStreamHub(det, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           NewWebHandler(det, hub, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logPolicy(logger *slog.Logger, p motion.Policy) {
	logger.Info("motion policy",
		"noise_gate", p.NoiseGate,
		"significance", p.SignificanceDistance,
		"seed_reference", p.SeedReference,
		"emit_all", p.EmitAllSamples,
		"stream_significant", p.StreamSignificant,
		"track_distance", p.TrackDistance,
	)
}

// notifiers fans a notification out to several notifiers.
type notifiers []motion.Notifier

func (ns notifiers) NotifyMovement(n motion.Notification) {
	for _, x := range ns {
		x.NotifyMovement(n)
	}
}
