package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"irrigation_node/internal/logger"
	"irrigation_node/internal/models"
	"irrigation_node/internal/repository"
)

const checkpointTimeout = 2 * time.Second

// Link is the serial connection to the companion module.
type Link interface {
	ByteSource
	LineWriter
}

// NodeConfig holds the loop periods and buffer sizes of a node.
type NodeConfig struct {
	TelemetryPeriod time.Duration
	CommandPeriod   time.Duration
	HeartbeatPeriod time.Duration
	StatusPeriod    time.Duration
	LineCapacity    int
	CommandQueue    int
	JournalQueue    int
}

// Node owns the control loops of one irrigation node and the state they share.
type Node struct {
	cfg NodeConfig

	Gate       *TransmitGate
	Actuators  *Actuators
	Pump       *PumpScheduler
	Telemetry  *TelemetryProducer
	Consumer   *CommandConsumer
	Heartbeat  *Heartbeat
	Journal    *Journal
	Monitoring *MonitoringService

	sessions repository.SessionRepo
	clock    Clock
	log      *logger.Logger
}

func NewNode(cfg NodeConfig, sensors Sensors, outputs OutputDriver, link Link,
	events repository.EventRepo, sessions repository.SessionRepo, clock Clock, log *logger.Logger) *Node {
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.StatusPeriod <= 0 {
		cfg.StatusPeriod = DefaultStatusPeriod
	}

	gate := NewTransmitGate()
	actuators := NewActuators(outputs)
	journal := NewJournal(events, cfg.JournalQueue, log.Named("journal"))
	pump := NewPumpScheduler(actuators, gate, journal, log.Named("pump"))
	telemetry := NewTelemetryProducer(sensors, link, gate, journal, clock, log.Named("telemetry"))
	consumer := NewCommandConsumer(ConsumerConfig{
		LineCapacity: cfg.LineCapacity,
		QueueSize:    cfg.CommandQueue,
		StatusPeriod: cfg.StatusPeriod,
	}, link, pump, actuators, journal, clock, log.Named("commands"))

	return &Node{
		cfg:        cfg,
		Gate:       gate,
		Actuators:  actuators,
		Pump:       pump,
		Telemetry:  telemetry,
		Consumer:   consumer,
		Heartbeat:  NewHeartbeat(outputs, log.Named("heartbeat")),
		Journal:    journal,
		Monitoring: NewMonitoringService(pump, gate, actuators, telemetry, consumer, clock),
		sessions:   sessions,
		clock:      clock,
		log:        log,
	}
}

// Run starts the node from IDLE with every output off and blocks until ctx
// is canceled. On the way out the pump is forced off before Run returns.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Pump.Init(); err != nil {
		return fmt.Errorf("release pump relay at start: %w", err)
	}
	for name, set := range map[string]func(bool) error{"fan": n.Actuators.SetFan, "light": n.Actuators.SetLight} {
		if err := set(false); err != nil {
			n.log.Warnw("output_reset_failed", "output", name, "err", err)
		}
	}

	// The journal outlives the loops so shutdown events still reach the disk.
	journalCtx, stopJournal := context.WithCancel(context.Background())
	journalDone := make(chan struct{})
	go func() {
		defer close(journalDone)
		n.Journal.Run(journalCtx)
	}()

	n.checkPreviousSession(ctx)
	n.saveCheckpoint(false)

	n.log.Infow("node_started",
		"telemetry_period", n.cfg.TelemetryPeriod,
		"command_period", n.cfg.CommandPeriod,
		"line_capacity", n.Consumer.assembler.Capacity(),
	)

	var wg sync.WaitGroup
	for _, loop := range []func(){
		func() { n.Telemetry.Run(ctx, n.cfg.TelemetryPeriod) },
		func() { n.Consumer.Run(ctx, n.cfg.CommandPeriod) },
		func() { n.Heartbeat.Run(ctx, n.cfg.HeartbeatPeriod) },
		func() { n.runCheckpoints(ctx) },
	} {
		wg.Add(1)
		go func(run func()) {
			defer wg.Done()
			run()
		}(loop)
	}
	<-ctx.Done()
	wg.Wait()

	n.shutdown()

	stopJournal()
	<-journalDone
	if dropped := n.Journal.Dropped(); dropped > 0 {
		n.log.Warnw("journal_events_dropped", "count", dropped)
	}
	n.log.Infow("node_stopped")
	return nil
}

// shutdown forces every output off. The checkpoint is marked clean only when
// the pump relay was released.
func (n *Node) shutdown() {
	now := n.clock.Now()
	pumpErr := n.Pump.Halt(now)
	if pumpErr != nil {
		n.log.Errorw("pump_halt_failed", "err", pumpErr)
	}
	if err := n.Actuators.SetFan(false); err != nil {
		n.log.Warnw("fan_off_failed", "err", err)
	}
	if err := n.Actuators.SetLight(false); err != nil {
		n.log.Warnw("light_off_failed", "err", err)
	}
	n.saveCheckpoint(pumpErr == nil)
}

func (n *Node) runCheckpoints(ctx context.Context) {
	ticker := time.NewTicker(n.cfg.StatusPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.saveCheckpoint(false)
		}
	}
}

// Checkpoint describes the running node for the session table.
func (n *Node) Checkpoint(clean bool) models.SessionCheckpoint {
	now := n.clock.Now()
	act := n.Actuators.State()
	return models.SessionCheckpoint{
		PumpMode:      n.Pump.Snapshot(now).Mode,
		Fan:           act.Fan,
		Light:         act.Light,
		TelemetrySent: n.Telemetry.Stats().Sent,
		LinesReceived: n.Consumer.Stats().Lines,
		CleanShutdown: clean,
		UpdatedAt:     now.UTC(),
	}
}

func (n *Node) saveCheckpoint(clean bool) {
	if n.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
	defer cancel()
	if err := n.sessions.Save(ctx, n.Checkpoint(clean)); err != nil {
		n.log.Warnw("session_checkpoint_failed", "err", err)
	}
}

// checkPreviousSession reports a session that ended without a clean shutdown.
// Nothing is restored from it.
func (n *Node) checkPreviousSession(ctx context.Context) {
	if n.sessions == nil {
		return
	}
	prev, ok, err := n.sessions.Load(ctx)
	if err != nil {
		n.log.Warnw("session_load_failed", "err", err)
		return
	}
	if !ok || prev.CleanShutdown {
		return
	}
	n.log.Warnw("previous_session_unclean",
		"pump_mode", prev.PumpMode,
		"last_checkpoint", prev.UpdatedAt,
	)
	n.Journal.Record(models.NodeEvent{
		Type:        models.EventUnclean,
		Description: "Previous session ended without a clean shutdown",
		Metadata: map[string]any{
			"pump_mode":       prev.PumpMode,
			"last_checkpoint": prev.UpdatedAt,
		},
	})
}
