package hardware

import (
	"math"
	"sync"
	"time"

	"irrigation_node/internal/models"
)

// Simulation constants
const (
	SimStartMoisture   = 35.0  // % at start
	SimWetPerSec       = 4.0   // % per second while the pump runs
	SimDryPerSec       = 0.05  // % per second otherwise
	SimAmbientC        = 24.0  // °C
	SimAmbientRH       = 55.0  // %RH
	SimFanCoolC        = 2.5   // °C below ambient with the fan on
	SimDaylightLux     = 420.0 // lux
	SimGrowLightLux    = 900.0 // lux added by the grow light
	simTemperatureWave = 0.5   // °C amplitude of the slow drift
)

// Sim is a small plant model that serves as both sensors and outputs, so
// watering raises the reported soil moisture.
type Sim struct {
	mu       sync.Mutex
	now      func() time.Time
	started  time.Time
	last     time.Time
	moisture float64
	outputs  models.ActuatorState
	led      bool
}

func NewSim(now func() time.Time) *Sim {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Sim{now: now, started: t, last: t, moisture: SimStartMoisture}
}

// advance integrates soil moisture up to the current time.
func (s *Sim) advance() time.Time {
	now := s.now()
	elapsed := now.Sub(s.last).Seconds()
	if elapsed <= 0 {
		return now
	}
	s.last = now
	if s.outputs.PumpRelay {
		s.moisture = math.Min(s.moisture+SimWetPerSec*elapsed, 100)
	} else {
		s.moisture = math.Max(s.moisture-SimDryPerSec*elapsed, 0)
	}
	return now
}

func (s *Sim) ReadSoilMoisture() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.moisture, nil
}

func (s *Sim) ReadLightIntensity() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lux := SimDaylightLux
	if s.outputs.Light {
		lux += SimGrowLightLux
	}
	return lux, nil
}

func (s *Sim) ReadClimate() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.advance()
	minutes := now.Sub(s.started).Minutes()
	temp := SimAmbientC + simTemperatureWave*math.Sin(minutes/10)
	if s.outputs.Fan {
		temp -= SimFanCoolC
	}
	rh := SimAmbientRH + (s.moisture-SimStartMoisture)/10
	return temp, math.Max(0, math.Min(rh, 100)), nil
}

func (s *Sim) SetPump(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	s.outputs.PumpRelay = on
	return nil
}

func (s *Sim) SetFan(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs.Fan = on
	return nil
}

func (s *Sim) SetLight(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs.Light = on
	return nil
}

func (s *Sim) SetHeartbeat(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.led = on
	return nil
}

// Outputs returns the simulated output levels.
func (s *Sim) Outputs() models.ActuatorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputs
}

func (s *Sim) Close() error { return nil }
