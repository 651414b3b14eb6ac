// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/movement_detection/internal/app"
	"github.com/relabs-tech/movement_detection/internal/config"
)

func main() {
	configPath := flag.String("config", "./movement_config.txt", "path to configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		app.NewLogger(os.Stderr, slog.LevelInfo).Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := config.Get()

	logger := app.NewLogger(os.Stderr, cfg.LogLevel)
	logger.Info("starting movement-detection sample producer (accelerometer → MQTT)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunSampleProducer(ctx, cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
