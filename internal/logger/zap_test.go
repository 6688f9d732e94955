package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"verbose":  zapcore.InfoLevel,
		"":         zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	for _, l := range []string{DebugLevel, InfoLevel, WarnLevel, ErrorLevel} {
		if !Valid(l) {
			t.Fatalf("%q should be valid", l)
		}
	}
	if Valid("trace") {
		t.Fatalf("trace should not be valid")
	}
}

func TestGet_ReturnsSingleton(t *testing.T) {
	a := Get(DebugLevel)
	b := Get(ErrorLevel)
	if a != b {
		t.Fatalf("expected the same logger instance")
	}
}

func TestNopAndNamed(t *testing.T) {
	l := Nop().Named("pump")
	l.Infow("pump_started", "duration_s", 5)
	if l.SugaredLogger == nil {
		t.Fatalf("expected a usable logger")
	}
}
