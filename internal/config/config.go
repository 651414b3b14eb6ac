// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// Source types accepted by SOURCE_TYPE.
const (
	SourceMPU9250 = "mpu9250"
	SourceSerial  = "serial"
	SourceMock    = "mock"
	SourceMQTT    = "mqtt"
	SourceNone    = "none"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDBridge   string
	MQTTClientIDConsole  string
	MQTTClientIDProducer string

	// Topics
	TopicRequest  string
	TopicResponse string
	TopicNotify   string
	TopicStream   string
	TopicSamples  string

	// Motion policy
	PolicyName string
	// Overrides applied on top of the named policy; nil means "use the
	// policy's value".
	NoiseGate                        *float64
	SignificanceDistance             *float64
	SeedReference                    *bool
	UpdateReferenceOnlyOnSignificant *bool
	EmitAllSamples                   *bool
	StreamSignificant                *bool
	ResetTotalOnStart                *bool

	// Sample source
	SourceType     string
	SampleInterval int // milliseconds

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte

	// Serial source
	SerialPort     string
	SerialBaudRate int

	// Web Server
	WebServerPort int

	// Display
	DisplayEnabled        bool
	DisplayUpdateInterval int // milliseconds

	// Logging
	LogLevel slog.Level
}

// Package-level state for the singleton: InitGlobal sets it once, Get reads
// it under a read lock.
var (
	globalConfig *Config
	globalErr    error
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDBridge:    "movement-bridge",
		MQTTClientIDConsole:   "movement-console",
		MQTTClientIDProducer:  "movement-producer",
		TopicRequest:          "movement/sensor/request",
		TopicResponse:         "movement/sensor/response",
		TopicNotify:           "movement/sensor/detected",
		TopicStream:           "movement/sensor/stream",
		TopicSamples:          "movement/sensor/samples",
		PolicyName:            "distance",
		SourceType:            SourceMock,
		SampleInterval:        200, // roughly SENSOR_DELAY_NORMAL
		SerialBaudRate:        115200,
		WebServerPort:         8080,
		DisplayUpdateInterval: 500,
		LogLevel:              slog.LevelInfo,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r on top of Default().
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_BRIDGE":
		c.MQTTClientIDBridge = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value

	// Topics
	case "TOPIC_REQUEST":
		c.TopicRequest = value
	case "TOPIC_RESPONSE":
		c.TopicResponse = value
	case "TOPIC_NOTIFY":
		c.TopicNotify = value
	case "TOPIC_STREAM":
		c.TopicStream = value
	case "TOPIC_SAMPLES":
		c.TopicSamples = value

	// Motion policy
	case "POLICY":
		if _, err := motion.PolicyByName(value); err != nil {
			return fmt.Errorf("POLICY must be distance or step: %w", err)
		}
		c.PolicyName = value
	case "NOISE_GATE":
		v, err := parseThreshold(key, value)
		if err != nil {
			return err
		}
		c.NoiseGate = &v
	case "SIGNIFICANCE_DISTANCE":
		v, err := parseThreshold(key, value)
		if err != nil {
			return err
		}
		c.SignificanceDistance = &v
	case "SEED_REFERENCE":
		return setBool(&c.SeedReference, key, value)
	case "UPDATE_REFERENCE_ONLY_ON_SIGNIFICANT":
		return setBool(&c.UpdateReferenceOnlyOnSignificant, key, value)
	case "EMIT_ALL_SAMPLES":
		return setBool(&c.EmitAllSamples, key, value)
	case "STREAM_SIGNIFICANT":
		return setBool(&c.StreamSignificant, key, value)
	case "RESET_TOTAL_ON_START":
		return setBool(&c.ResetTotalOnStart, key, value)

	// Sample source
	case "SOURCE_TYPE":
		switch value {
		case SourceMPU9250, SourceSerial, SourceMock, SourceMQTT, SourceNone:
			c.SourceType = value
		default:
			return fmt.Errorf("SOURCE_TYPE must be one of mpu9250, serial, mock, mqtt, none, got %q", value)
		}
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)

	// Serial source
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_ENABLED":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = v
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	// Logging
	case "LOG_LEVEL":
		if err := c.LogLevel.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
		}

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseThreshold(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must be >= 0, got %v", key, v)
	}
	return v, nil
}

func setBool(dst **bool, key, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = &v
	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be > 0")
	}
	switch c.SourceType {
	case SourceMPU9250:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for SOURCE_TYPE=mpu9250")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required for SOURCE_TYPE=mpu9250")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SOURCE_TYPE=serial")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be > 0")
		}
	case SourceMQTT:
		if c.TopicSamples == "" {
			return fmt.Errorf("TOPIC_SAMPLES is required for SOURCE_TYPE=mqtt")
		}
	}
	if c.DisplayEnabled && c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be > 0")
	}
	return nil
}

// Policy builds the motion policy: the named base policy with any explicit
// overrides applied.
func (c *Config) Policy() (motion.Policy, error) {
	p, err := motion.PolicyByName(c.PolicyName)
	if err != nil {
		return motion.Policy{}, err
	}
	if c.NoiseGate != nil {
		p.NoiseGate = *c.NoiseGate
	}
	if c.SignificanceDistance != nil {
		p.SignificanceDistance = *c.SignificanceDistance
	}
	if c.SeedReference != nil {
		p.SeedReference = *c.SeedReference
	}
	if c.UpdateReferenceOnlyOnSignificant != nil {
		p.UpdateReferenceOnlyOnSignificant = *c.UpdateReferenceOnlyOnSignificant
	}
	if c.EmitAllSamples != nil {
		p.EmitAllSamples = *c.EmitAllSamples
	}
	if c.StreamSignificant != nil {
		p.StreamSignificant = *c.StreamSignificant
	}
	if c.ResetTotalOnStart != nil {
		p.ResetTotalOnStart = *c.ResetTotalOnStart
	}
	return p, p.Validate()
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return the first call's error.
func InitGlobal(configPath string) error {
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, globalErr = Load(configPath)
	})
	configMu.RLock()
	defer configMu.RUnlock()
	return globalErr
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
