package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"irrigation_node/internal/logger"
	"irrigation_node/internal/models"
	"irrigation_node/internal/protocol"
)

// ByteSource returns the inbound bytes queued right now without waiting.
type ByteSource interface {
	ReadAvailable() ([]byte, error)
}

// ErrCommandQueueFull is returned by Submit when the consumer is behind.
var ErrCommandQueueFull = errors.New("command queue full")

const (
	DefaultCommandPeriod = 20 * time.Millisecond
	DefaultStatusPeriod  = 5 * time.Second
	defaultCommandQueue  = 8
)

// ConsumerConfig tunes the command consumer.
type ConsumerConfig struct {
	LineCapacity int           // inbound line buffer, bytes
	QueueSize    int           // lines accepted through Submit
	StatusPeriod time.Duration // how often a running pump logs its remaining time
}

// CommandConsumer drains the serial link, rebuilds lines, applies fan and
// light commands and drives the pump scheduler. It is the only goroutine
// that reads the link or mutates the scheduler.
type CommandConsumer struct {
	in        ByteSource
	assembler *protocol.LineAssembler
	pump      *PumpScheduler
	actuators *Actuators
	events    EventRecorder
	clock     Clock
	log       *logger.Logger

	injected     chan string
	statusPeriod time.Duration
	lastStatus   time.Time
	readFailing  bool

	mu    sync.Mutex
	stats models.CommandStats
}

func NewCommandConsumer(cfg ConsumerConfig, in ByteSource, pump *PumpScheduler, actuators *Actuators, events EventRecorder, clock Clock, log *logger.Logger) *CommandConsumer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultCommandQueue
	}
	if cfg.StatusPeriod <= 0 {
		cfg.StatusPeriod = DefaultStatusPeriod
	}
	if events == nil {
		events = nopRecorder{}
	}
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CommandConsumer{
		in:           in,
		assembler:    protocol.NewLineAssembler(cfg.LineCapacity),
		pump:         pump,
		actuators:    actuators,
		events:       events,
		clock:        clock,
		log:          log,
		injected:     make(chan string, cfg.QueueSize),
		statusPeriod: cfg.StatusPeriod,
	}
}

// Run polls once per period until ctx is canceled.
func (c *CommandConsumer) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = DefaultCommandPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Poll()
		}
	}
}

// Poll runs one iteration: drain the link, handle complete lines and
// submitted lines, then check the pump deadline.
func (c *CommandConsumer) Poll() {
	now := c.clock.Now()

	if c.in != nil {
		data, err := c.in.ReadAvailable()
		c.noteReadError(err)
		if len(data) > 0 {
			c.assembler.Feed(data, func(line []byte, truncated bool) {
				c.handleLine(now, line, truncated, false)
			})
		}
	}

	for drained := false; !drained; {
		select {
		case line := <-c.injected:
			c.handleLine(now, []byte(line), false, true)
		default:
			drained = true
		}
	}

	c.pump.Tick(now)
	c.logStatus(now)
}

// Submit queues a command line for the next Poll. The trailing terminator,
// if any, is dropped and the line is cut to the line buffer capacity.
func (c *CommandConsumer) Submit(line string) error {
	line = strings.TrimRight(line, "\r\n")
	if limit := c.assembler.Capacity(); len(line) > limit {
		line = line[:limit]
	}
	select {
	case c.injected <- line:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Stats returns a copy of the counters.
func (c *CommandConsumer) Stats() models.CommandStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *CommandConsumer) handleLine(now time.Time, line []byte, truncated, injected bool) {
	text := string(line)
	c.log.Debugw("line_received", "line", text, "truncated", truncated, "injected", injected)

	cmd := protocol.ParseCommand(line)
	c.countLine(now, text, !cmd.Empty(), injected)
	c.apply(now, cmd)
}

// apply runs the recognized fields in a fixed order: pump, fan, light.
// A failing output does not prevent the other fields from applying.
func (c *CommandConsumer) apply(now time.Time, cmd models.Command) {
	if cmd.WaterDuration != nil {
		c.log.Debugw("water_duration_parsed", "duration_s", *cmd.WaterDuration)
		_ = c.pump.Water(now, *cmd.WaterDuration)
	}
	if cmd.Fan != nil {
		c.setSwitch("fan", models.EventFan, *cmd.Fan, c.actuators.State().Fan, c.actuators.SetFan)
	}
	if cmd.Light != nil {
		c.setSwitch("light", models.EventLight, *cmd.Light, c.actuators.State().Light, c.actuators.SetLight)
	}
}

func (c *CommandConsumer) setSwitch(name, eventType string, on, was bool, set func(bool) error) {
	if err := set(on); err != nil {
		c.log.Errorw("output_failed", "output", name, "on", on, "err", err)
		c.events.Record(models.NodeEvent{
			Type:        models.EventActuatorFail,
			Description: "Output " + name + " could not be set",
			Metadata:    map[string]any{"output": name, "on": on, "err": err.Error()},
		})
		return
	}
	if on == was {
		return
	}
	c.log.Infow("output_changed", "output", name, "on", on)
	c.events.Record(models.NodeEvent{
		Type:        eventType,
		Description: strings.ToUpper(name[:1]) + name[1:] + " " + onOff(on),
		Metadata:    map[string]any{"on": on},
	})
}

func (c *CommandConsumer) noteReadError(err error) {
	if err == nil {
		if c.readFailing {
			c.readFailing = false
			c.log.Infow("serial_read_recovered")
		}
		return
	}
	c.mu.Lock()
	c.stats.ReadErrors++
	c.mu.Unlock()
	if !c.readFailing {
		c.readFailing = true
		c.log.Warnw("serial_read_failed", "err", err)
	}
}

// logStatus reports the remaining pump time every statusPeriod while running.
func (c *CommandConsumer) logStatus(now time.Time) {
	if now.Sub(c.lastStatus) < c.statusPeriod {
		return
	}
	c.lastStatus = now
	if st := c.pump.Snapshot(now); st.Running {
		c.log.Debugw("pump_status", "remaining_s", st.RemainingSeconds)
	}
}

func (c *CommandConsumer) countLine(now time.Time, text string, recognized, injected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Lines++
	if recognized {
		c.stats.Recognized++
	}
	if injected {
		c.stats.Injected++
	}
	c.stats.LastLine = text
	c.stats.LastLineAt = now.UTC()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
