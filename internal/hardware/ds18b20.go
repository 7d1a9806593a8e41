package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FallbackTemperature is returned when the 1-Wire bus cannot be read.
// Mid-range for the default lettuce ideal band.
const FallbackTemperature = 21.0

// DS18B20 reads water temperature from a 1-Wire DS18B20 probe through the
// kernel w1 sysfs interface.
type DS18B20 struct {
	name       string
	devicePath string
}

// NewDS18B20 locates the first DS18B20 device (family code 28) under the
// given sysfs directory. A missing bus is not fatal: the sensor is returned
// with an empty device path and reads fall back.
func NewDS18B20(sysfsDir string) *DS18B20 {
	s := &DS18B20{name: "temperature"}

	matches, err := filepath.Glob(filepath.Join(sysfsDir, "28-*"))
	if err != nil || len(matches) == 0 {
		logger().Warn("no DS18B20 device found, temperature reads will use fallback", "dir", sysfsDir)
		return s
	}
	s.devicePath = filepath.Join(matches[0], "w1_slave")
	return s
}

func (s *DS18B20) Name() string { return s.name }

// Read returns the water temperature in °C.
func (s *DS18B20) Read() float64 {
	if s.devicePath == "" {
		return FallbackTemperature
	}

	value, err := s.readDevice()
	if err != nil {
		logBurst(s.name, "DS18B20 read failed, using fallback sample", err)
		return FallbackTemperature
	}
	clearBurst(s.name)
	return value
}

// readDevice parses the w1_slave report. The second line carries the
// temperature in millidegrees after "t=".
func (s *DS18B20) readDevice() (float64, error) {
	data, err := os.ReadFile(s.devicePath)
	if err != nil {
		return 0, err
	}

	text := string(data)
	if strings.Contains(text, "NO") && !strings.Contains(text, "YES") {
		return 0, fmt.Errorf("CRC check failed")
	}

	idx := strings.LastIndex(text, "t=")
	if idx < 0 {
		return 0, fmt.Errorf("no temperature field in %s", s.devicePath)
	}

	raw := strings.TrimSpace(text[idx+2:])
	milli, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing temperature %q: %w", raw, err)
	}
	return float64(milli) / 1000.0, nil
}
