package service

import "time"

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "PUMP_START", "PUMP_STOP", "PUMP_EXPIRED", "FAN", "LIGHT", ...
}

// Clock is the time source of the node loops. Tests inject a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock, which in Go carries a monotonic reading.
var SystemClock Clock = systemClock{}
