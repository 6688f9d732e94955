// Package hardware binds the node to its sensors and outputs: a BH1750 light
// sensor and an SHTC3 climate sensor on I²C, a soil moisture probe read from
// an IIO ADC channel or over Modbus RTU, and GPIO relays. A simulated plant
// stands in for all of them on a workstation.
package hardware

import (
	"errors"
	"fmt"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bh1750"
	"tinygo.org/x/drivers/shtc3"
)

// SoilSource reads soil moisture in percent.
type SoilSource interface {
	ReadMoisture() (float64, error)
	Close() error
}

// I2CSensors reads the BH1750, the SHTC3 and a soil source. Reads are
// serialized because both I²C devices may share one bus.
type I2CSensors struct {
	mu         sync.Mutex
	lightBus   *trackingBus
	climateBus *trackingBus
	light      bh1750.Device
	climate    shtc3.Device
	soil       SoilSource
}

// NewI2CSensors brings up both I²C devices: the BH1750 is powered on and put
// in continuous high resolution mode, the SHTC3 is woken up.
func NewI2CSensors(lightBus, climateBus drivers.I2C, soil SoilSource) (*I2CSensors, error) {
	s := &I2CSensors{
		lightBus:   newTrackingBus(lightBus),
		climateBus: newTrackingBus(climateBus),
		soil:       soil,
	}
	s.light = bh1750.New(s.lightBus)
	s.climate = shtc3.New(s.climateBus)

	s.light.Configure()
	if err := s.lightBus.takeErr(); err != nil {
		return nil, fmt.Errorf("bh1750 bring-up: %w", err)
	}
	if err := s.climate.WakeUp(); err != nil {
		return nil, fmt.Errorf("shtc3 wake-up: %w", err)
	}
	if err := s.climateBus.takeErr(); err != nil {
		return nil, fmt.Errorf("shtc3 wake-up: %w", err)
	}
	return s, nil
}

func (s *I2CSensors) ReadSoilMoisture() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.soil.ReadMoisture()
}

// ReadLightIntensity returns lux.
func (s *I2CSensors) ReadLightIntensity() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	milliLux := s.light.Illuminance()
	if err := s.lightBus.takeErr(); err != nil {
		return 0, fmt.Errorf("bh1750: %w", err)
	}
	return float64(milliLux) / 1000, nil
}

// ReadClimate returns °C and %RH from one SHTC3 measurement.
func (s *I2CSensors) ReadClimate() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	milliC, centiRH, err := s.climate.ReadTemperatureHumidity()
	if err == nil {
		err = s.climateBus.takeErr()
	}
	if err != nil {
		return 0, 0, fmt.Errorf("shtc3: %w", err)
	}
	return float64(milliC) / 1000, float64(centiRH) / 100, nil
}

func (s *I2CSensors) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.soil != nil {
		errs = append(errs, s.soil.Close())
	}
	return errors.Join(errs...)
}
