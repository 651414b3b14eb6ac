package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

const sampleConfig = `
# broker
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_BRIDGE = bridge-1

TOPIC_STREAM=phone/stream
POLICY=step
SEED_REFERENCE=true
SOURCE_TYPE=serial
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD_RATE=9600
SAMPLE_INTERVAL=60
DISPLAY_ENABLED=true
DISPLAY_UPDATE_INTERVAL=250
LOG_LEVEL=debug
`

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "bridge-1", cfg.MQTTClientIDBridge)
	assert.Equal(t, "phone/stream", cfg.TopicStream)
	assert.Equal(t, "movement/sensor/request", cfg.TopicRequest)
	assert.Equal(t, SourceSerial, cfg.SourceType)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 9600, cfg.SerialBaudRate)
	assert.Equal(t, 60, cfg.SampleInterval)
	assert.True(t, cfg.DisplayEnabled)
	assert.Equal(t, 250, cfg.DisplayUpdateInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	p, err := cfg.Policy()
	require.NoError(t, err)
	want := motion.PolicyStep()
	want.SeedReference = true
	assert.Equal(t, want, p)
}

func TestPolicyOverrides(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`MQTT_BROKER=tcp://b:1883
NOISE_GATE=0.05
SIGNIFICANCE_DISTANCE=1.5
UPDATE_REFERENCE_ONLY_ON_SIGNIFICANT=false
EMIT_ALL_SAMPLES=false
STREAM_SIGNIFICANT=false
RESET_TOTAL_ON_START=true
`))
	require.NoError(t, err)

	p, err := cfg.Policy()
	require.NoError(t, err)

	assert.Equal(t, 0.05, p.NoiseGate)
	assert.Equal(t, 1.5, p.SignificanceDistance)
	assert.True(t, p.SeedReference)
	assert.False(t, p.UpdateReferenceOnlyOnSignificant)
	assert.False(t, p.EmitAllSamples)
	assert.False(t, p.StreamSignificant)
	assert.True(t, p.TrackDistance)
	assert.True(t, p.ResetTotalOnStart)
}

func TestDefaultPolicyIsDistance(t *testing.T) {
	cfg, err := Parse(strings.NewReader("MQTT_BROKER=tcp://b:1883\n"))
	require.NoError(t, err)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, motion.PolicyDistance(), p)
	assert.Equal(t, SourceMock, cfg.SourceType)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing broker", "SOURCE_TYPE=mock\n", "MQTT_BROKER is required"},
		{"no equals", "MQTT_BROKER\n", "invalid config line 1"},
		{"unknown key", "MQTT_BROKER=x\nFOO=bar\n", `config line 2: unknown config key: "FOO"`},
		{"bad policy", "POLICY=kalman\n", "POLICY must be distance or step"},
		{"negative gate", "NOISE_GATE=-1\n", "NOISE_GATE must be >= 0"},
		{"bad bool", "SEED_REFERENCE=maybe\n", "invalid SEED_REFERENCE"},
		{"bad source", "SOURCE_TYPE=gyro\n", "SOURCE_TYPE must be one of"},
		{"accel range", "IMU_ACCEL_RANGE=4\n", "IMU_ACCEL_RANGE must be 0-3"},
		{"mpu without device", "MQTT_BROKER=x\nSOURCE_TYPE=mpu9250\n", "IMU_SPI_DEVICE is required"},
		{"serial without port", "MQTT_BROKER=x\nSOURCE_TYPE=serial\n", "SERIAL_PORT is required"},
		{"mqtt without topic", "MQTT_BROKER=x\nSOURCE_TYPE=mqtt\nTOPIC_SAMPLES=\n", "TOPIC_SAMPLES is required"},
		{"zero interval", "MQTT_BROKER=x\nSAMPLE_INTERVAL=0\n", "SAMPLE_INTERVAL must be > 0"},
		{"bad log level", "LOG_LEVEL=loud\n", "invalid LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAndGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movement_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("MQTT_BROKER=tcp://pi:1883\n"), 0o644))

	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, "tcp://pi:1883", Get().MQTTBroker)

	// later calls keep the first result
	assert.NoError(t, InitGlobal(filepath.Join(t.TempDir(), "missing.txt")))
	assert.Equal(t, "tcp://pi:1883", Get().MQTTBroker)
}
