// Package camera captures plant images into the gallery directory as JPEG.
// Capture prefers V4L2 through OpenCV and falls back to the libcamera CLI
// utilities on Raspberry Pi OS builds without a V4L2 plant camera.
package camera

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/errors"
	"github.com/leafsense/leafsense-go/internal/logging"
)

// Camera produces gallery captures. TakePhoto returns the bare filename and
// the full path of the written JPEG. An empty path with nil error means the
// capture cycle should be skipped quietly.
type Camera interface {
	TakePhoto() (filename, path string, err error)
}

// filenameLayout renders plant_YYYYMMDD_HHMMSS.jpg.
const filenameLayout = "plant_20060102_150405.jpg"

// V4L2Camera captures frames from a V4L2 device via OpenCV, falling back to
// the libcamera CLI when the device cannot be opened.
type V4L2Camera struct {
	settings *conf.Settings
	logger   *slog.Logger
}

// New returns a camera for the configured device and gallery directory.
// Construction does not probe hardware; the first capture does.
func New(settings *conf.Settings) *V4L2Camera {
	return &V4L2Camera{
		settings: settings,
		logger:   logging.ForService("camera"),
	}
}

// TakePhoto captures one frame and writes it to the gallery.
func (c *V4L2Camera) TakePhoto() (string, string, error) {
	if err := ensureGallery(c.settings.Camera.GalleryDir); err != nil {
		return "", "", err
	}

	filename := time.Now().Format(filenameLayout)
	path := filepath.Join(c.settings.Camera.GalleryDir, filename)

	if err := c.captureOpenCV(path); err == nil {
		return filename, path, nil
	} else {
		c.logger.Warn("OpenCV capture failed, trying libcamera CLI", "error", err)
	}

	if err := c.captureCLI(path); err != nil {
		return "", "", errors.New(fmt.Errorf("all capture backends failed: %w", err)).
			Component("camera").
			Category(errors.CategoryImageCapture).
			Context("device", c.settings.Camera.Device).
			Build()
	}
	return filename, path, nil
}

// ensureGallery creates the gallery directory on first use.
func ensureGallery(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating gallery directory %s: %w", dir, err)
	}
	return nil
}

func (c *V4L2Camera) captureOpenCV(path string) error {
	capture, err := gocv.OpenVideoCaptureWithAPI(c.settings.Camera.Device, gocv.VideoCaptureV4L2)
	if err != nil {
		return fmt.Errorf("opening V4L2 device %d: %w", c.settings.Camera.Device, err)
	}
	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()

	// First frames from a cold sensor are often dark; discard a few.
	for range 3 {
		capture.Read(&img)
	}
	if ok := capture.Read(&img); !ok || img.Empty() {
		return fmt.Errorf("device %d returned no frame", c.settings.Camera.Device)
	}

	if c.settings.Camera.Enhance {
		enhanced := enhance(img)
		defer enhanced.Close()
		return writeJPEG(path, enhanced, c.settings.Camera.JPEGQuality)
	}
	return writeJPEG(path, img, c.settings.Camera.JPEGQuality)
}

// captureCLI shells out to the libcamera still utilities.
func (c *V4L2Camera) captureCLI(path string) error {
	var lastErr error
	for _, tool := range []string{"rpicam-still", "libcamera-still"} {
		cmd := exec.Command(tool, "-o", path, "--nopreview", "-t", "1000")
		if err := cmd.Run(); err != nil {
			lastErr = fmt.Errorf("%s: %w", tool, err)
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no capture utility available")
	}
	return lastErr
}

func writeJPEG(path string, img gocv.Mat, quality int) error {
	ok := gocv.IMWriteWithParams(path, img, []int{gocv.IMWriteJpegQuality, quality})
	if !ok {
		return fmt.Errorf("writing JPEG %s failed", path)
	}
	return nil
}

// MockCamera returns a fixed capture result. Used in tests and as a
// stand-in when no camera hardware exists.
type MockCamera struct {
	Filename string
	Path     string
	Err      error
}

// TakePhoto returns the configured result.
func (m *MockCamera) TakePhoto() (string, string, error) {
	return m.Filename, m.Path, m.Err
}
