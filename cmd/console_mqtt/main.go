package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/relabs-tech/movement_detection/internal/app"
	"github.com/relabs-tech/movement_detection/internal/config"
)

func main() {
	configPath := flag.String("config", "./movement_config.txt", "path to configuration file")
	request := flag.String("request", "", "request to send once connected: available, start or stop")
	flag.Parse()

	logger := app.NewLogger(os.Stderr, slog.LevelInfo)
	logger.Info("starting movement-detection console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	if err := app.RunConsoleMQTT(config.Get(), *request, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
