package hardware

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

type outputPin interface {
	Out(l gpio.Level) error
}

// GPIOOutputs drives the relays and the heartbeat LED. Levels passed in are
// logical (true = on); the pump relay may be wired active-low.
type GPIOOutputs struct {
	mu            sync.Mutex
	pump          outputPin
	fan           outputPin
	light         outputPin
	heartbeat     outputPin // optional
	pumpActiveLow bool
}

func NewGPIOOutputs(pump, fan, light, heartbeat outputPin, pumpActiveLow bool) *GPIOOutputs {
	return &GPIOOutputs{
		pump:          pump,
		fan:           fan,
		light:         light,
		heartbeat:     heartbeat,
		pumpActiveLow: pumpActiveLow,
	}
}

func (o *GPIOOutputs) SetPump(on bool) error {
	level := gpio.Level(on)
	if o.pumpActiveLow {
		level = !level
	}
	return o.write("pump", o.pump, level)
}

func (o *GPIOOutputs) SetFan(on bool) error {
	return o.write("fan", o.fan, gpio.Level(on))
}

func (o *GPIOOutputs) SetLight(on bool) error {
	return o.write("light", o.light, gpio.Level(on))
}

func (o *GPIOOutputs) SetHeartbeat(on bool) error {
	if o.heartbeat == nil {
		return nil
	}
	return o.write("heartbeat", o.heartbeat, gpio.Level(on))
}

// Close switches everything off.
func (o *GPIOOutputs) Close() error {
	return errors.Join(o.SetPump(false), o.SetFan(false), o.SetLight(false), o.SetHeartbeat(false))
}

func (o *GPIOOutputs) write(name string, pin outputPin, level gpio.Level) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := pin.Out(level); err != nil {
		return fmt.Errorf("set %s pin %s: %w", name, level, err)
	}
	return nil
}
