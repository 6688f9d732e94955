package service

import (
	"context"
	"sync/atomic"
	"time"

	"irrigation_node/internal/logger"
	"irrigation_node/internal/models"
	"irrigation_node/internal/repository"

	"github.com/google/uuid"
)

// EventRecorder accepts journal entries without blocking the caller.
type EventRecorder interface {
	Record(ev models.NodeEvent)
}

type nopRecorder struct{}

func (nopRecorder) Record(models.NodeEvent) {}

const (
	defaultJournalQueue = 64
	journalFlushTimeout = 2 * time.Second
)

// Journal hands events from the control loops to the event repository on
// its own goroutine, so a slow disk never delays the pump deadline check.
// When the queue is full the event is dropped and counted.
type Journal struct {
	repo    repository.EventRepo
	queue   chan models.NodeEvent
	log     *logger.Logger
	dropped atomic.Uint64
}

func NewJournal(repo repository.EventRepo, size int, log *logger.Logger) *Journal {
	if size <= 0 {
		size = defaultJournalQueue
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Journal{repo: repo, queue: make(chan models.NodeEvent, size), log: log}
}

// Record stamps ev and queues it.
func (j *Journal) Record(ev models.NodeEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case j.queue <- ev:
	default:
		j.dropped.Add(1)
	}
}

// Dropped returns how many events were lost to a full queue.
func (j *Journal) Dropped() uint64 { return j.dropped.Load() }

// Run appends queued events until ctx is canceled, then flushes what is
// left with a short deadline.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			j.flush()
			return
		case ev := <-j.queue:
			j.append(ctx, ev)
		}
	}
}

func (j *Journal) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), journalFlushTimeout)
	defer cancel()
	for {
		select {
		case ev := <-j.queue:
			j.append(ctx, ev)
		default:
			return
		}
	}
}

func (j *Journal) append(ctx context.Context, ev models.NodeEvent) {
	if err := j.repo.Append(ctx, ev); err != nil {
		j.log.Warnw("journal_append_failed", "err", err, "type", ev.Type)
	}
}
