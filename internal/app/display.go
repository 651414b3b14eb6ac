package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// DisplayData holds the latest data for the OLED.
type DisplayData struct {
	mu sync.RWMutex

	status     motion.MotionStatus
	haveStatus bool
	movements  int
	lastErr    string
}

// SendStatus records the latest stream record.
func (d *DisplayData) SendStatus(st motion.MotionStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = st
	d.haveStatus = true
	d.lastErr = ""
}

// SendError records a classification error.
func (d *DisplayData) SendError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = err.Error()
}

// NotifyMovement counts movement notifications.
func (d *DisplayData) NotifyMovement(motion.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.movements++
}

type displaySnapshot struct {
	status     motion.MotionStatus
	haveStatus bool
	movements  int
	lastErr    string
}

func (d *DisplayData) snapshot() displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		status:     d.status,
		haveStatus: d.haveStatus,
		movements:  d.movements,
		lastErr:    d.lastErr,
	}
}

// RunDisplay drives an SSD1306 on the default I2C bus until ctx is done.
func RunDisplay(ctx context.Context, data *DisplayData, interval time.Duration, logger *slog.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	logger.Info("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		logger.Warn("display: error showing splash", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = dev.Halt()
			return nil
		case <-ticker.C:
			img := renderStatus(data.snapshot())
			if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
				logger.Warn("display: error updating display", "err", err)
			}
		}
	}
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, y int, s string) {
	d.Dot = fixed.P(0, y)
	d.DrawString(s)
}

func renderStatus(s displaySnapshot) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	switch {
	case s.lastErr != "":
		drawLine(drawer, 13, "Sensor error")
		drawLine(drawer, 26, truncate(s.lastErr, 18))
	case !s.haveStatus:
		drawLine(drawer, 26, "Movement")
		drawLine(drawer, 39, "Waiting...")
	default:
		drawLine(drawer, 13, string(s.status.Status))
		drawLine(drawer, 26, fmt.Sprintf("d:   %7.2f", s.status.Distance))
		drawLine(drawer, 39, fmt.Sprintf("tot: %7.2f", s.status.TotalDistance))
		drawLine(drawer, 52, fmt.Sprintf("moves: %d", s.movements))
	}
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()
	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("Movement")
	drawer.Dot = fixed.P(10, 43)
	drawer.DrawString("Detection")
	return img
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
