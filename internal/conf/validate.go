// conf/validate.go settings validation
package conf

import (
	"fmt"
)

// ValidateSettings checks the loaded settings for values the engine cannot
// run with. Validation failures are configuration errors and abort startup.
func ValidateSettings(settings *Settings) error {
	if settings.Control.TickPeriod <= 0 {
		return fmt.Errorf("control.tickperiod must be positive, got %d", settings.Control.TickPeriod)
	}
	if settings.Control.SensorPeriod <= 0 {
		return fmt.Errorf("control.sensorperiod must be positive, got %d", settings.Control.SensorPeriod)
	}
	if settings.Control.CameraPeriod <= 0 {
		return fmt.Errorf("control.cameraperiod must be positive, got %d", settings.Control.CameraPeriod)
	}

	if settings.LeafNet.ImageSize <= 0 {
		return fmt.Errorf("leafnet.imagesize must be positive, got %d", settings.LeafNet.ImageSize)
	}
	if settings.LeafNet.MinConfidence < 0 || settings.LeafNet.MinConfidence > 1 {
		return fmt.Errorf("leafnet.minconfidence must be within [0, 1], got %v", settings.LeafNet.MinConfidence)
	}
	if settings.LeafNet.MinGreenRatio < 0 || settings.LeafNet.MinGreenRatio > 1 {
		return fmt.Errorf("leafnet.mingreenratio must be within [0, 1], got %v", settings.LeafNet.MinGreenRatio)
	}
	if settings.LeafNet.EntropyThreshold < 0 {
		return fmt.Errorf("leafnet.entropythreshold must be non-negative, got %v", settings.LeafNet.EntropyThreshold)
	}

	if settings.Camera.JPEGQuality < 1 || settings.Camera.JPEGQuality > 100 {
		return fmt.Errorf("camera.jpegquality must be within [1, 100], got %d", settings.Camera.JPEGQuality)
	}

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return fmt.Errorf("no output database enabled, enable output.sqlite or output.mysql")
	}

	return nil
}
