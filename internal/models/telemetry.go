package models

import "time"

// TelemetryRecord is one set of sensor readings sent to the companion module.
type TelemetryRecord struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %RH
	Moisture    float64 `json:"moisture"`    // % soil moisture
	Light       float64 `json:"light"`       // lux
}

// TelemetryStats counts producer cycles since start.
type TelemetryStats struct {
	Sent         uint64           `json:"sent"`
	Skipped      uint64           `json:"skipped"`       // gate closed
	WriteFailed  uint64           `json:"write_failed"`  // record dropped by the transport
	SensorFaults uint64           `json:"sensor_faults"` // cycle suppressed by a sensor error
	Last         *TelemetryRecord `json:"last,omitempty"`
	LastSentAt   time.Time        `json:"last_sent_at,omitempty"`
}
