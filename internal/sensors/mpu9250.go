// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// StandardGravity in m/s².
const StandardGravity = 9.80665

// accelLSBPerG maps the MPU9250 ACCEL_FS_SEL setting to counts per g.
var accelLSBPerG = [4]float64{16384, 8192, 4096, 2048}

// MPU9250Reader reads the accelerometer of an MPU9250 over SPI.
type MPU9250Reader struct {
	imu   *mpu9250.MPU9250
	scale float64 // m/s² per count
}

// NewMPU9250Reader initializes the MPU9250 on spiDev with chip select csPin.
// accelRange is the ACCEL_FS_SEL value (0=±2g ... 3=±16g).
func NewMPU9250Reader(spiDev, csPin string, accelRange byte, logger *slog.Logger) (*MPU9250Reader, error) {
	if accelRange > 3 {
		return nil, fmt.Errorf("IMU: accel range %d out of range 0-3", accelRange)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := imu.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	logger.Info("IMU: accelerometer range set", "range", accelRange, "g", []int{2, 4, 8, 16}[accelRange])

	// Calibration failure is not fatal; readings are just less accurate.
	if err := imu.Calibrate(); err != nil {
		logger.Warn("IMU: calibration failed", "err", err)
	} else {
		logger.Info("IMU: calibration complete")
	}

	return &MPU9250Reader{imu: imu, scale: CountsToMS2(1, accelRange)}, nil
}

// ReadAccel reads the three accelerometer axes in m/s².
func (r *MPU9250Reader) ReadAccel() (motion.Sample, error) {
	ax, err := r.imu.GetAccelerationX()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := r.imu.GetAccelerationY()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := r.imu.GetAccelerationZ()
	if err != nil {
		return motion.Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	return motion.Sample{
		X: float64(ax) * r.scale,
		Y: float64(ay) * r.scale,
		Z: float64(az) * r.scale,
	}, nil
}

// CountsToMS2 converts raw accelerometer counts at the given range to m/s².
func CountsToMS2(counts int16, accelRange byte) float64 {
	return float64(counts) / accelLSBPerG[accelRange&3] * StandardGravity
}
