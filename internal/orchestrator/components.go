package orchestrator

import (
	"github.com/leafsense/leafsense-go/internal/camera"
	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/hardware"
	"github.com/leafsense/leafsense-go/internal/leafnet"
	"github.com/leafsense/leafsense-go/internal/logging"
)

// BuildComponents constructs the hardware-facing collaborators from
// settings. Bus probe failures downgrade individual components without
// aborting (sensors return fallback samples, GPIO actuators become no-ops):
// a unit with a dead ADC still heats, captures and persists.
func BuildComponents(settings *conf.Settings) *Components {
	if settings.Hardware.Mock {
		return MockComponents(settings)
	}

	c := &Components{
		TempSensor: hardware.NewDS18B20(settings.Hardware.OneWireDir),
		Heater:     hardware.NewGPIOActuator("heater", settings.Hardware.HeaterPin),
		PhUp:       hardware.NewGPIOActuator("ph-up", settings.Hardware.PhUpPin),
		PhDown:     hardware.NewGPIOActuator("ph-down", settings.Hardware.PhDownPin),
		Nutrient:   hardware.NewGPIOActuator("nutrient", settings.Hardware.NutrientPin),
		AlertLED:   hardware.NewAlertLED(settings.Hardware.AlertLedPin),
		Camera:     camera.New(settings),
		Classifier: leafnet.New(settings),
	}

	adc, err := hardware.NewADC(settings.Hardware.ADCAddress)
	if err != nil {
		logging.Warn("ADC probe failed, pH and EC reads will use fallback samples", "error", err)
		adc = nil
	}
	c.PHSensor = hardware.NewPHSensor(adc, 0)
	c.ECSensor = hardware.NewECSensor(adc, 1)

	return c
}

// MockComponents returns a full mock component set for development hosts
// and tests. The classifier still loads normally so degraded mode depends
// only on the model file.
func MockComponents(settings *conf.Settings) *Components {
	return &Components{
		TempSensor: hardware.NewMockSensor("temperature", 21.0),
		PHSensor:   hardware.NewMockSensor("ph", 6.0),
		ECSensor:   hardware.NewMockSensor("ec", 700.0),
		Heater:     hardware.NewMockActuator("heater"),
		PhUp:       hardware.NewMockActuator("ph-up"),
		PhDown:     hardware.NewMockActuator("ph-down"),
		Nutrient:   hardware.NewMockActuator("nutrient"),
		AlertLED:   hardware.NewMockActuator("alert-led"),
		Camera:     &camera.MockCamera{},
		Classifier: leafnet.New(settings),
	}
}
