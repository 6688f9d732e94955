package service

import "sync"

// TransmitGate says whether telemetry may be written. It is closed while
// the pump runs so records never compete with actuation on the serial link.
type TransmitGate struct {
	mu        sync.Mutex
	permitted bool
}

// NewTransmitGate returns an open gate.
func NewTransmitGate() *TransmitGate {
	return &TransmitGate{permitted: true}
}

func (g *TransmitGate) Permitted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.permitted
}

func (g *TransmitGate) Open() {
	g.mu.Lock()
	g.permitted = true
	g.mu.Unlock()
}

func (g *TransmitGate) Close() {
	g.mu.Lock()
	g.permitted = false
	g.mu.Unlock()
}
