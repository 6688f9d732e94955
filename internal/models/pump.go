package models

import "time"

// Pump modes
const (
	PumpIdle    = "IDLE"
	PumpRunning = "RUNNING"
)

// PumpState is a snapshot of the pump scheduler.
type PumpState struct {
	Mode             string    `json:"mode"` // IDLE | RUNNING
	Running          bool      `json:"running"`
	StartedAt        time.Time `json:"started_at,omitempty"`
	StopAt           time.Time `json:"stop_at,omitempty"` // only meaningful while running
	RemainingSeconds float64   `json:"remaining_seconds,omitempty"`
}

// ActuatorState is the last level successfully written to each output.
type ActuatorState struct {
	PumpRelay bool `json:"pump_relay"`
	Fan       bool `json:"fan"`
	Light     bool `json:"light"`
}
