package models

import "time"

// NodeStatus is what the diagnostics API reports.
type NodeStatus struct {
	Pump              PumpState      `json:"pump"`
	Actuators         ActuatorState  `json:"actuators"`
	TransmitPermitted bool           `json:"transmit_permitted"`
	Telemetry         TelemetryStats `json:"telemetry"`
	Commands          CommandStats   `json:"commands"`
	Uptime            string         `json:"uptime"`
	ReportedAt        time.Time      `json:"reported_at"`
}

// CommandStats counts consumer activity since start.
type CommandStats struct {
	Lines      uint64    `json:"lines"`
	Recognized uint64    `json:"recognized"` // lines with at least one known field
	Injected   uint64    `json:"injected"`   // lines submitted through the API
	ReadErrors uint64    `json:"read_errors"`
	LastLine   string    `json:"last_line,omitempty"`
	LastLineAt time.Time `json:"last_line_at,omitempty"`
}
