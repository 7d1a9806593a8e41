package hardware

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/leafsense/leafsense-go/internal/errors"
)

// Fallback samples for ADC-backed sensors, mid-range for lettuce.
const (
	FallbackPH = 6.0
	FallbackEC = 700.0
)

// pH probe calibration: the amplifier board outputs 2.5 V at pH 7 and
// swings roughly 0.18 V per pH unit.
const (
	phNeutralVoltage  = 2.5
	phVoltsPerUnit    = 0.18
)

// EC probe calibration: linear µS/cm per volt for the analog TDS board.
const ecMicrosiemensPerVolt = 500.0

// ADC wraps an ADS1115 on the I2C bus, configured for the 4.096 V range at
// 128 samples per second, single-shot. Both the pH and EC sensors share one
// ADC; channel reads are serialized.
type ADC struct {
	mu   sync.Mutex
	bus  i2c.BusCloser
	pins map[int]analog.PinADC
}

// NewADC opens the default I2C bus and probes the ADS1115 at the given
// address. Callers treat a probe failure as a downgrade to fallback reads,
// not a startup failure.
func NewADC(address uint16) (*ADC, error) {
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("opening I2C bus: %w", err)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = address
	dev, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, errors.New(fmt.Errorf("probing ADS1115 failed: %w", err)).
			Component("hardware").
			Category(errors.CategoryHardwareInit).
			Context("address", fmt.Sprintf("0x%02x", address)).
			Build()
	}

	channels := []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}
	pins := make(map[int]analog.PinADC, len(channels))
	for i, ch := range channels {
		pin, err := dev.PinForChannel(ch, 4096*physic.MilliVolt, 128*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("configuring ADS1115 channel %d: %w", i, err)
		}
		pins[i] = pin
	}

	return &ADC{bus: bus, pins: pins}, nil
}

// ReadVoltage performs a single-shot conversion on the given channel.
func (a *ADC) ReadVoltage(channel int) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pin, ok := a.pins[channel]
	if !ok {
		return 0, fmt.Errorf("no ADC channel %d", channel)
	}
	sample, err := pin.Read()
	if err != nil {
		return 0, fmt.Errorf("reading ADC channel %d: %w", channel, err)
	}
	return float64(sample.V) / float64(physic.Volt), nil
}

// Close releases the I2C bus.
func (a *ADC) Close() error {
	if a.bus == nil {
		return nil
	}
	return a.bus.Close()
}

// PHSensor converts channel voltage to pH.
type PHSensor struct {
	adc     *ADC
	channel int
}

// NewPHSensor returns a pH sensor on the given ADC channel. A nil ADC
// produces fallback samples.
func NewPHSensor(adc *ADC, channel int) *PHSensor {
	return &PHSensor{adc: adc, channel: channel}
}

func (s *PHSensor) Name() string { return "ph" }

// Read returns the solution pH.
func (s *PHSensor) Read() float64 {
	if s.adc == nil {
		return FallbackPH
	}
	volts, err := s.adc.ReadVoltage(s.channel)
	if err != nil {
		logBurst(s.Name(), "pH read failed, using fallback sample", err)
		return FallbackPH
	}
	clearBurst(s.Name())
	return 7.0 + (phNeutralVoltage-volts)/phVoltsPerUnit
}

// ECSensor converts channel voltage to electrical conductivity in µS/cm.
type ECSensor struct {
	adc     *ADC
	channel int
}

// NewECSensor returns an EC sensor on the given ADC channel. A nil ADC
// produces fallback samples.
func NewECSensor(adc *ADC, channel int) *ECSensor {
	return &ECSensor{adc: adc, channel: channel}
}

func (s *ECSensor) Name() string { return "ec" }

// Read returns the solution conductivity in µS/cm.
func (s *ECSensor) Read() float64 {
	if s.adc == nil {
		return FallbackEC
	}
	volts, err := s.adc.ReadVoltage(s.channel)
	if err != nil {
		logBurst(s.Name(), "EC read failed, using fallback sample", err)
		return FallbackEC
	}
	clearBurst(s.Name())
	return volts * ecMicrosiemensPerVolt
}
