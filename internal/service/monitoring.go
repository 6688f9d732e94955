package service

import (
	"context"
	"time"

	"irrigation_node/internal/models"
)

// MonitoringService assembles a status snapshot from the running loops.
type MonitoringService struct {
	pump      *PumpScheduler
	gate      *TransmitGate
	actuators *Actuators
	telemetry *TelemetryProducer
	consumer  *CommandConsumer
	clock     Clock
	startedAt time.Time
}

func NewMonitoringService(pump *PumpScheduler, gate *TransmitGate, actuators *Actuators,
	telemetry *TelemetryProducer, consumer *CommandConsumer, clock Clock) *MonitoringService {
	if clock == nil {
		clock = SystemClock
	}
	return &MonitoringService{
		pump:      pump,
		gate:      gate,
		actuators: actuators,
		telemetry: telemetry,
		consumer:  consumer,
		clock:     clock,
		startedAt: clock.Now(),
	}
}

// GetStatus never fails today; the error is kept for API symmetry with the
// repository-backed services.
func (s *MonitoringService) GetStatus(ctx context.Context) (models.NodeStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.NodeStatus{}, err
	}
	now := s.clock.Now()
	st := models.NodeStatus{
		Pump:              s.pump.Snapshot(now),
		Actuators:         s.actuators.State(),
		TransmitPermitted: s.gate.Permitted(),
		Telemetry:         s.telemetry.Stats(),
		Commands:          s.consumer.Stats(),
		Uptime:            now.Sub(s.startedAt).Truncate(time.Second).String(),
		ReportedAt:        now.UTC(),
	}
	st.Pump.StartedAt = toUTC(st.Pump.StartedAt)
	st.Pump.StopAt = toUTC(st.Pump.StopAt)
	return st, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
