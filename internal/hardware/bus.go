package hardware

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// trackingBus hands a bus to the tinygo drivers and keeps the first
// transaction error, since those drivers drop it.
type trackingBus struct {
	bus drivers.I2C
	err error
}

func newTrackingBus(bus drivers.I2C) *trackingBus {
	return &trackingBus{bus: bus}
}

func (b *trackingBus) Tx(addr uint16, w, r []byte) error {
	err := b.bus.Tx(addr, w, r)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("i2c tx to %#02x: %w", addr, err)
	}
	return err
}

// takeErr returns and clears the recorded error.
func (b *trackingBus) takeErr() error {
	err := b.err
	b.err = nil
	return err
}
