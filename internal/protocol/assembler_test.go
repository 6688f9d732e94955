package protocol

import (
	"bytes"
	"strings"
	"testing"
)

type collectedLine struct {
	text      string
	truncated bool
}

func feedAll(a *LineAssembler, chunks ...string) []collectedLine {
	var out []collectedLine
	for _, c := range chunks {
		a.Feed([]byte(c), func(line []byte, truncated bool) {
			out = append(out, collectedLine{text: string(line), truncated: truncated})
		})
	}
	return out
}

func TestLineAssembler_SplitsAcrossChunks(t *testing.T) {
	a := NewLineAssembler(DefaultLineCapacity)
	lines := feedAll(a, `{"fan": `, `"on"}`, "\n{\"light\"", `: "off"}`+"\n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].text != `{"fan": "on"}` || lines[1].text != `{"light": "off"}` {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if a.Pending() != 0 {
		t.Fatalf("expected empty buffer, got %d pending", a.Pending())
	}
}

func TestLineAssembler_EmptyLinesStillReset(t *testing.T) {
	a := NewLineAssembler(8)
	lines := feedAll(a, "\n\nab\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].text != "" || lines[1].text != "" || lines[2].text != "ab" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestLineAssembler_OverflowTruncatesAndRecovers(t *testing.T) {
	a := NewLineAssembler(DefaultLineCapacity)
	long := strings.Repeat("x", 300)

	lines := feedAll(a, long, "\n", `{"fan": "on"}`+"\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0].text) != DefaultLineCapacity || !lines[0].truncated {
		t.Fatalf("expected truncated %d-byte line, got len=%d truncated=%v",
			DefaultLineCapacity, len(lines[0].text), lines[0].truncated)
	}
	if lines[1].text != `{"fan": "on"}` || lines[1].truncated {
		t.Fatalf("line after overflow not clean: %+v", lines[1])
	}
}

func TestLineAssembler_PartialLineKeptUntilTerminator(t *testing.T) {
	a := NewLineAssembler(16)
	if lines := feedAll(a, "abc"); len(lines) != 0 {
		t.Fatalf("no line expected yet, got %+v", lines)
	}
	if a.Pending() != 3 {
		t.Fatalf("pending=%d, want 3", a.Pending())
	}
	a.Reset()
	lines := feedAll(a, "d\n")
	if len(lines) != 1 || lines[0].text != "d" {
		t.Fatalf("reset did not drop partial line: %+v", lines)
	}
}

func TestLineAssembler_LineSliceReusedAfterCallback(t *testing.T) {
	a := NewLineAssembler(16)
	var kept []byte
	a.Feed([]byte("one\n"), func(line []byte, _ bool) { kept = bytes.Clone(line) })
	a.Feed([]byte("two\n"), nil)
	if string(kept) != "one" {
		t.Fatalf("cloned line changed: %q", kept)
	}
}

func TestNewLineAssembler_DefaultsCapacity(t *testing.T) {
	if got := NewLineAssembler(0).Capacity(); got != DefaultLineCapacity {
		t.Fatalf("capacity=%d, want %d", got, DefaultLineCapacity)
	}
}
