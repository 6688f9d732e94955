package models

import "time"

// Event types stored in the node journal.
const (
	EventPumpStart    = "PUMP_START"
	EventPumpStop     = "PUMP_STOP"
	EventPumpExpired  = "PUMP_EXPIRED"
	EventFan          = "FAN"
	EventLight        = "LIGHT"
	EventSensorFault  = "SENSOR_FAULT"
	EventWriteFailed  = "WRITE_FAILED"
	EventActuatorFail = "ACTUATOR_FAULT"
	EventUnclean      = "UNCLEAN_SHUTDOWN"
)

// NodeEvent is a single journal entry.
type NodeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
