package service

import (
	"context"
	"time"

	"irrigation_node/internal/logger"
)

const DefaultHeartbeatPeriod = 500 * time.Millisecond

// HeartbeatOutput drives the status LED.
type HeartbeatOutput interface {
	SetHeartbeat(on bool) error
}

// Heartbeat blinks the status LED so a stuck process is visible on the board.
type Heartbeat struct {
	out HeartbeatOutput
	log *logger.Logger
	on  bool
}

func NewHeartbeat(out HeartbeatOutput, log *logger.Logger) *Heartbeat {
	if log == nil {
		log = logger.Nop()
	}
	return &Heartbeat{out: out, log: log}
}

// Run toggles the LED every period until ctx is canceled, then turns it off.
func (h *Heartbeat) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = DefaultHeartbeatPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = h.out.SetHeartbeat(false)
			return
		case <-ticker.C:
			h.Toggle()
		}
	}
}

// Toggle flips the LED once.
func (h *Heartbeat) Toggle() {
	next := !h.on
	if err := h.out.SetHeartbeat(next); err != nil {
		h.log.Debugw("heartbeat_failed", "err", err)
		return
	}
	h.on = next
}
