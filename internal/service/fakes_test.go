package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"irrigation_node/internal/models"
)

var errBoom = errors.New("boom")

// fakeClock is a manual time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 1, 6, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// recordingOutputs is an OutputDriver that remembers every write.
type recordingOutputs struct {
	mu sync.Mutex

	pump, fan, light, heartbeat bool
	pumpWrites                  []bool
	heartbeatWrites             int

	pumpErr, fanErr, lightErr error
	pumpOnErr                 error // only for SetPump(true)
	pumpOffErr                error // only for SetPump(false)
}

func (o *recordingOutputs) SetPump(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pumpErr != nil {
		return o.pumpErr
	}
	if on && o.pumpOnErr != nil {
		return o.pumpOnErr
	}
	if !on && o.pumpOffErr != nil {
		return o.pumpOffErr
	}
	o.pump = on
	o.pumpWrites = append(o.pumpWrites, on)
	return nil
}

func (o *recordingOutputs) SetFan(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fanErr != nil {
		return o.fanErr
	}
	o.fan = on
	return nil
}

func (o *recordingOutputs) SetLight(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lightErr != nil {
		return o.lightErr
	}
	o.light = on
	return nil
}

func (o *recordingOutputs) SetHeartbeat(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.heartbeat = on
	o.heartbeatWrites++
	return nil
}

func (o *recordingOutputs) pumpOn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pump
}

func (o *recordingOutputs) setPumpOffErr(err error) {
	o.mu.Lock()
	o.pumpOffErr = err
	o.mu.Unlock()
}

// scriptedSensors returns fixed readings, or errors when set.
type scriptedSensors struct {
	mu sync.Mutex

	moisture, light, temperature, humidity float64
	moistureErr, lightErr, climateErr      error
	reads                                  int

	// onRead runs after the moisture read; tests use it to race the gate.
	onRead func()
}

func (s *scriptedSensors) ReadSoilMoisture() (float64, error) {
	s.mu.Lock()
	s.reads++
	v, err, hook := s.moisture, s.moistureErr, s.onRead
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return v, err
}

func (s *scriptedSensors) ReadLightIntensity() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.light, s.lightErr
}

func (s *scriptedSensors) ReadClimate() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature, s.humidity, s.climateErr
}

func (s *scriptedSensors) setMoistureErr(err error) {
	s.mu.Lock()
	s.moistureErr = err
	s.mu.Unlock()
}

// fakeLink is an in-memory serial link. Inbound bytes are queued with push
// and returned by the next ReadAvailable.
type fakeLink struct {
	mu       sync.Mutex
	inbound  []byte
	readErr  error
	written  [][]byte
	writeErr error
}

func (l *fakeLink) push(s string) {
	l.mu.Lock()
	l.inbound = append(l.inbound, s...)
	l.mu.Unlock()
}

func (l *fakeLink) ReadAvailable() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return nil, l.readErr
	}
	out := l.inbound
	l.inbound = nil
	return out, nil
}

func (l *fakeLink) Write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeErr != nil {
		return l.writeErr
	}
	l.written = append(l.written, append([]byte(nil), p...))
	return nil
}

func (l *fakeLink) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.written))
	for i, w := range l.written {
		out[i] = string(w)
	}
	return out
}

// eventSink is an EventRecorder that keeps events in memory.
type eventSink struct {
	mu     sync.Mutex
	events []models.NodeEvent
}

func (s *eventSink) Record(ev models.NodeEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *eventSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

func (s *eventSink) count(typ string) int {
	n := 0
	for _, t := range s.types() {
		if t == typ {
			n++
		}
	}
	return n
}

// memEventRepo satisfies repository.EventRepo.
type memEventRepo struct {
	mu sync.Mutex

	appended  []models.NodeEvent
	appendErr error

	// List inputs and outputs
	gotFrom   time.Time
	gotTo     time.Time
	gotType   string
	listResp  []models.NodeEvent
	listErr   error
	listCalls int
}

func (r *memEventRepo) Append(ctx context.Context, e models.NodeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.appended = append(r.appended, e)
	return nil
}

func (r *memEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.NodeEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.gotFrom, r.gotTo, r.gotType = from, to, typ
	return r.listResp, r.listErr
}

func (r *memEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.appended))
	for i, ev := range r.appended {
		out[i] = ev.Type
	}
	return out
}

// memSessionRepo satisfies repository.SessionRepo.
type memSessionRepo struct {
	mu      sync.Mutex
	prev    *models.SessionCheckpoint
	loadErr error
	saved   []models.SessionCheckpoint
}

func (r *memSessionRepo) Save(ctx context.Context, s models.SessionCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	return nil
}

func (r *memSessionRepo) Load(ctx context.Context) (models.SessionCheckpoint, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return models.SessionCheckpoint{}, false, r.loadErr
	}
	if r.prev == nil {
		return models.SessionCheckpoint{}, false, nil
	}
	return *r.prev, true, nil
}

func (r *memSessionRepo) last() (models.SessionCheckpoint, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return models.SessionCheckpoint{}, 0
	}
	return r.saved[len(r.saved)-1], len(r.saved)
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
