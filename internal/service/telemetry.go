package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"irrigation_node/internal/logger"
	"irrigation_node/internal/models"
	"irrigation_node/internal/protocol"
)

// Sensors is the read side of the sensor hardware.
type Sensors interface {
	ReadSoilMoisture() (float64, error)   // %
	ReadLightIntensity() (float64, error) // lux
	ReadClimate() (temperatureC, humidityRH float64, err error)
}

// LineWriter writes one complete record atomically.
type LineWriter interface {
	Write(p []byte) error
}

// CycleResult tells what one telemetry cycle did.
type CycleResult string

const (
	CycleSent        CycleResult = "sent"
	CycleSkipped     CycleResult = "skipped"
	CycleSensorFault CycleResult = "sensor_fault"
	CycleWriteFailed CycleResult = "write_failed"
)

const DefaultTelemetryPeriod = 300 * time.Millisecond

// TelemetryProducer periodically sends one record while the gate is open.
// Closed-gate cycles are dropped, never queued.
type TelemetryProducer struct {
	sensors Sensors
	out     LineWriter
	gate    *TransmitGate
	events  EventRecorder
	clock   Clock
	log     *logger.Logger

	buf        []byte
	faulted    bool // inside a streak of sensor failures
	linkFailed bool // inside a streak of write failures

	mu    sync.Mutex
	stats models.TelemetryStats
}

func NewTelemetryProducer(sensors Sensors, out LineWriter, gate *TransmitGate, events EventRecorder, clock Clock, log *logger.Logger) *TelemetryProducer {
	if events == nil {
		events = nopRecorder{}
	}
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TelemetryProducer{
		sensors: sensors,
		out:     out,
		gate:    gate,
		events:  events,
		clock:   clock,
		log:     log,
		buf:     make([]byte, 0, 96),
	}
}

// Run performs a cycle right away and then once per period until ctx is canceled.
func (t *TelemetryProducer) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = DefaultTelemetryPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	t.Cycle()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Cycle()
		}
	}
}

// Cycle runs one telemetry cycle.
func (t *TelemetryProducer) Cycle() CycleResult {
	if !t.gate.Permitted() {
		t.count(CycleSkipped, nil)
		return CycleSkipped
	}

	rec, err := t.read()
	if err != nil {
		if !t.faulted {
			t.faulted = true
			t.log.Warnw("sensor_read_failed", "err", err)
			t.events.Record(models.NodeEvent{
				Type:        models.EventSensorFault,
				Description: "Telemetry suppressed: sensor read failed",
				Metadata:    map[string]any{"err": err.Error()},
			})
		}
		t.count(CycleSensorFault, nil)
		return CycleSensorFault
	}
	if t.faulted {
		t.faulted = false
		t.log.Infow("sensor_read_recovered")
	}

	// The pump may have started while the sensors were being read.
	if !t.gate.Permitted() {
		t.count(CycleSkipped, nil)
		return CycleSkipped
	}

	t.buf = protocol.AppendRecord(t.buf[:0], rec)
	if err := t.out.Write(t.buf); err != nil {
		if !t.linkFailed {
			t.linkFailed = true
			t.log.Warnw("telemetry_write_failed", "err", err)
			t.events.Record(models.NodeEvent{
				Type:        models.EventWriteFailed,
				Description: "Telemetry record dropped",
				Metadata:    map[string]any{"err": err.Error()},
			})
		}
		t.count(CycleWriteFailed, nil)
		return CycleWriteFailed
	}
	if t.linkFailed {
		t.linkFailed = false
		t.log.Infow("telemetry_write_recovered")
	}

	t.log.Debugw("telemetry_sent", "record", string(t.buf[:len(t.buf)-1]))
	t.count(CycleSent, &rec)
	return CycleSent
}

// read takes the sensors in the fixed order moisture, light, climate.
func (t *TelemetryProducer) read() (models.TelemetryRecord, error) {
	var rec models.TelemetryRecord
	var err error

	if rec.Moisture, err = t.sensors.ReadSoilMoisture(); err != nil {
		return rec, fmt.Errorf("soil moisture: %w", err)
	}
	if rec.Light, err = t.sensors.ReadLightIntensity(); err != nil {
		return rec, fmt.Errorf("light: %w", err)
	}
	if rec.Temperature, rec.Humidity, err = t.sensors.ReadClimate(); err != nil {
		return rec, fmt.Errorf("temperature/humidity: %w", err)
	}
	return rec, nil
}

func (t *TelemetryProducer) count(res CycleResult, rec *models.TelemetryRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch res {
	case CycleSent:
		t.stats.Sent++
		t.stats.Last = rec
		t.stats.LastSentAt = t.clock.Now().UTC()
	case CycleSkipped:
		t.stats.Skipped++
	case CycleSensorFault:
		t.stats.SensorFaults++
	case CycleWriteFailed:
		t.stats.WriteFailed++
	}
}

// Stats returns a copy of the counters.
func (t *TelemetryProducer) Stats() models.TelemetryStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stats
	if st.Last != nil {
		last := *st.Last
		st.Last = &last
	}
	return st
}
