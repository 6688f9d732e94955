package service

import (
	"math"
	"sync/atomic"
	"time"

	"irrigation_node/internal/logger"
	"irrigation_node/internal/models"
)

// PumpRelay energizes or releases the pump relay.
type PumpRelay interface {
	SetPump(on bool) error
}

type pumpInputKind int

const (
	inputWater pumpInputKind = iota // duration command
	inputTick                       // periodic deadline check
	inputHalt                       // shutdown
)

type pumpInput struct {
	kind    pumpInputKind
	seconds float64
}

// PumpScheduler is the IDLE/RUNNING state machine of the pump. All inputs go
// through step and must come from a single goroutine (the command consumer);
// other goroutines read published snapshots only.
//
// Invariants kept by every transition:
//   - RUNNING implies the transmit gate is closed.
//   - Leaving RUNNING happens only after the relay was released.
type PumpScheduler struct {
	relay  PumpRelay
	gate   *TransmitGate
	events EventRecorder
	log    *logger.Logger

	mode      string
	startedAt time.Time
	stopAt    time.Time
	stuck     bool // the last release attempt failed

	published atomic.Pointer[models.PumpState]
}

func NewPumpScheduler(relay PumpRelay, gate *TransmitGate, events EventRecorder, log *logger.Logger) *PumpScheduler {
	if events == nil {
		events = nopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &PumpScheduler{
		relay:  relay,
		gate:   gate,
		events: events,
		log:    log,
		mode:   models.PumpIdle,
	}
	p.publish()
	return p
}

// Init forces the startup state: IDLE, relay off, gate open.
func (p *PumpScheduler) Init() error {
	p.mode = models.PumpIdle
	p.startedAt, p.stopAt = time.Time{}, time.Time{}
	p.stuck = false
	err := p.relay.SetPump(false)
	p.gate.Open()
	p.publish()
	return err
}

// Water handles a water_duration command received at now. A positive
// duration starts the pump or, if it already runs, replaces the deadline
// with now+seconds. Zero or negative stops it.
func (p *PumpScheduler) Water(now time.Time, seconds float64) error {
	return p.step(now, pumpInput{kind: inputWater, seconds: seconds})
}

// Tick stops the pump once now has reached the deadline. It reports whether
// the pump was stopped by this call.
func (p *PumpScheduler) Tick(now time.Time) bool {
	wasRunning := p.mode == models.PumpRunning
	if err := p.step(now, pumpInput{kind: inputTick}); err != nil {
		return false
	}
	return wasRunning && p.mode == models.PumpIdle
}

// Halt stops the pump regardless of the deadline.
func (p *PumpScheduler) Halt(now time.Time) error {
	return p.step(now, pumpInput{kind: inputHalt})
}

// Running reports the current mode as seen by the owning goroutine.
func (p *PumpScheduler) Running() bool { return p.mode == models.PumpRunning }

// Snapshot returns the last published state with the remaining time
// computed against now. Safe from any goroutine.
func (p *PumpScheduler) Snapshot(now time.Time) models.PumpState {
	st := *p.published.Load()
	if st.Running {
		remaining := st.StopAt.Sub(now).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		st.RemainingSeconds = remaining
	}
	return st
}

func (p *PumpScheduler) step(now time.Time, in pumpInput) error {
	defer p.publish()

	switch in.kind {
	case inputWater:
		if in.seconds > 0 {
			if p.mode == models.PumpRunning {
				return p.extend(now, in.seconds)
			}
			return p.start(now, in.seconds)
		}
		if p.mode == models.PumpRunning {
			return p.stop(now, models.EventPumpStop, "Pump stopped by command")
		}
		return p.settleIdle()

	case inputTick:
		if p.mode == models.PumpRunning && !now.Before(p.stopAt) {
			return p.stop(now, models.EventPumpExpired, "Pump stopped after scheduled duration")
		}
		return nil

	case inputHalt:
		if p.mode == models.PumpRunning {
			return p.stop(now, models.EventPumpStop, "Pump stopped on shutdown")
		}
		return p.settleIdle()
	}
	return nil
}

// IDLE -> RUNNING. The gate closes before the relay is energized.
func (p *PumpScheduler) start(now time.Time, seconds float64) error {
	p.gate.Close()
	if err := p.relay.SetPump(true); err != nil {
		p.gate.Open()
		p.log.Errorw("pump_start_failed", "err", err, "duration_s", seconds)
		p.events.Record(models.NodeEvent{
			Type:        models.EventActuatorFail,
			Description: "Pump relay could not be energized",
			Metadata:    map[string]any{"err": err.Error(), "duration_s": seconds},
		})
		return err
	}

	p.mode = models.PumpRunning
	p.startedAt = now
	p.stopAt = now.Add(secondsToDuration(seconds))
	p.log.Infow("pump_started", "duration_s", seconds)
	p.events.Record(models.NodeEvent{
		Type:        models.EventPumpStart,
		Description: "Pump started",
		Metadata:    map[string]any{"duration_s": seconds},
	})
	return nil
}

// RUNNING -> RUNNING with a fresh deadline. Durations do not accumulate.
func (p *PumpScheduler) extend(now time.Time, seconds float64) error {
	previous := p.stopAt
	p.stopAt = now.Add(secondsToDuration(seconds))
	p.log.Infow("pump_deadline_reset", "duration_s", seconds, "previous_remaining_s", previous.Sub(now).Seconds())
	p.events.Record(models.NodeEvent{
		Type:        models.EventPumpStart,
		Description: "Pump deadline replaced by a new command",
		Metadata:    map[string]any{"duration_s": seconds, "restart": true},
	})
	return nil
}

// RUNNING -> IDLE. If the relay cannot be released the scheduler stays
// RUNNING with the gate closed, and the next tick retries.
func (p *PumpScheduler) stop(now time.Time, eventType, description string) error {
	if err := p.relay.SetPump(false); err != nil {
		p.releaseFailed(err)
		return err
	}
	p.releaseOK()

	ranFor := now.Sub(p.startedAt).Seconds()
	p.mode = models.PumpIdle
	p.startedAt, p.stopAt = time.Time{}, time.Time{}
	p.gate.Open()

	p.log.Infow("pump_stopped", "reason", eventType, "ran_s", ranFor)
	p.events.Record(models.NodeEvent{
		Type:        eventType,
		Description: description,
		Metadata:    map[string]any{"ran_s": ranFor},
	})
	return nil
}

// IDLE -> IDLE: make sure the relay is released and telemetry may flow.
func (p *PumpScheduler) settleIdle() error {
	err := p.relay.SetPump(false)
	p.gate.Open()
	if err != nil {
		p.releaseFailed(err)
		return err
	}
	p.releaseOK()
	p.log.Debugw("no_watering_needed")
	return nil
}

// releaseFailed reports a stuck relay once per streak; the tick retries
// every consumer period and would otherwise flood the journal.
func (p *PumpScheduler) releaseFailed(err error) {
	if p.stuck {
		p.log.Debugw("pump_release_retry_failed", "err", err)
		return
	}
	p.stuck = true
	p.log.Errorw("pump_stop_failed", "err", err)
	p.events.Record(models.NodeEvent{
		Type:        models.EventActuatorFail,
		Description: "Pump relay could not be released",
		Metadata:    map[string]any{"err": err.Error()},
	})
}

func (p *PumpScheduler) releaseOK() {
	if p.stuck {
		p.stuck = false
		p.log.Infow("pump_release_recovered")
	}
}

func (p *PumpScheduler) publish() {
	st := models.PumpState{
		Mode:      p.mode,
		Running:   p.mode == models.PumpRunning,
		StartedAt: p.startedAt,
		StopAt:    p.stopAt,
	}
	p.published.Store(&st)
}

// secondsToDuration converts without overflowing time.Duration.
func secondsToDuration(seconds float64) time.Duration {
	ns := seconds * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
