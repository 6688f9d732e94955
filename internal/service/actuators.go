package service

import (
	"fmt"
	"sync"

	"irrigation_node/internal/models"
)

// OutputDriver sets the physical outputs. Levels are logical: true means
// the device is on, whatever the wiring polarity.
type OutputDriver interface {
	SetPump(on bool) error
	SetFan(on bool) error
	SetLight(on bool) error
	SetHeartbeat(on bool) error
}

// Actuators remembers the last level successfully written to each output.
type Actuators struct {
	mu     sync.Mutex
	driver OutputDriver
	state  models.ActuatorState
}

func NewActuators(driver OutputDriver) *Actuators {
	return &Actuators{driver: driver}
}

func (a *Actuators) SetPump(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.driver.SetPump(on); err != nil {
		return fmt.Errorf("pump relay: %w", err)
	}
	a.state.PumpRelay = on
	return nil
}

func (a *Actuators) SetFan(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.driver.SetFan(on); err != nil {
		return fmt.Errorf("fan output: %w", err)
	}
	a.state.Fan = on
	return nil
}

func (a *Actuators) SetLight(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.driver.SetLight(on); err != nil {
		return fmt.Errorf("light output: %w", err)
	}
	a.state.Light = on
	return nil
}

func (a *Actuators) State() models.ActuatorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}
