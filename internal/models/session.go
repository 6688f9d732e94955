package models

import "time"

// SessionCheckpoint is the last known state of a node session. It is kept for
// diagnostics only and never used to restore outputs.
type SessionCheckpoint struct {
	ID            int       `json:"-"`
	PumpMode      string    `json:"pump_mode"`
	Fan           bool      `json:"fan"`
	Light         bool      `json:"light"`
	TelemetrySent uint64    `json:"telemetry_sent"`
	LinesReceived uint64    `json:"lines_received"`
	CleanShutdown bool      `json:"clean_shutdown"`
	UpdatedAt     time.Time `json:"updated_at"`
}
