package protocol

import (
	"bytes"
	"errors"
	"math"
	"strconv"

	"irrigation_node/internal/models"
)

// Recognized inbound keys.
const (
	KeyWaterDuration = "water_duration"
	KeyFan           = "fan"
	KeyLight         = "light"

	valueOn  = "on"
	valueOff = "off"
)

var commandKeys = []string{KeyWaterDuration, KeyFan, KeyLight}

// fieldValue is the token bound to one key occurrence.
type fieldValue struct {
	raw    string
	quoted bool
}

func anyValue(fieldValue) bool { return true }

// ExtractFields looks up each key independently in line and returns the raw
// value bound to its first occurrence. A key is bound to a value when the
// quoted key is followed by a colon and either a quoted string or a bare
// token. Keys without a value are left out of the result.
func ExtractFields(line []byte, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := findValue(line, key, anyValue); ok {
			out[key] = v.raw
		}
	}
	return out
}

// ParseCommand extracts the recognized fields of one command line. Each
// field takes the first occurrence whose value fits it: a bare number for
// the duration, a quoted "on" or "off" for fan and light. Anything else is
// skipped, so a key whose every value is unfit is absent.
func ParseCommand(line []byte) models.Command {
	var cmd models.Command
	if v, ok := findValue(line, KeyWaterDuration, isDuration); ok {
		d, _ := parseFloatPrefix(v.raw)
		cmd.WaterDuration = &d
	}
	if v, ok := findValue(line, KeyFan, isSwitch); ok {
		cmd.Fan = parseSwitch(v.raw)
	}
	if v, ok := findValue(line, KeyLight, isSwitch); ok {
		cmd.Light = parseSwitch(v.raw)
	}
	return cmd
}

func isDuration(v fieldValue) bool {
	if v.quoted {
		return false
	}
	_, ok := parseFloatPrefix(v.raw)
	return ok
}

func isSwitch(v fieldValue) bool {
	return v.quoted && parseSwitch(v.raw) != nil
}

// findValue scans every occurrence of "key" and returns the value of the
// first one followed by ':' and a value token that accept takes.
func findValue(line []byte, key string, accept func(fieldValue) bool) (fieldValue, bool) {
	tag := make([]byte, 0, len(key)+2)
	tag = append(tag, '"')
	tag = append(tag, key...)
	tag = append(tag, '"')

	for off := 0; off < len(line); {
		i := bytes.Index(line[off:], tag)
		if i < 0 {
			return fieldValue{}, false
		}
		pos := off + i + len(tag)
		if v, ok := valueAt(line, pos); ok && accept(v) {
			return v, true
		}
		off = pos
	}
	return fieldValue{}, false
}

// valueAt reads `<ws>:<ws>value` starting at pos.
func valueAt(line []byte, pos int) (fieldValue, bool) {
	pos = skipSpace(line, pos)
	if pos >= len(line) || line[pos] != ':' {
		return fieldValue{}, false
	}
	pos = skipSpace(line, pos+1)
	if pos >= len(line) {
		return fieldValue{}, false
	}

	if line[pos] == '"' {
		end := bytes.IndexByte(line[pos+1:], '"')
		if end < 0 {
			return fieldValue{}, false
		}
		return fieldValue{raw: string(line[pos+1 : pos+1+end]), quoted: true}, true
	}

	end := pos
	for end < len(line) && isBareByte(line[end]) {
		end++
	}
	if end == pos {
		return fieldValue{}, false
	}
	return fieldValue{raw: string(line[pos:end])}, true
}

func skipSpace(line []byte, pos int) int {
	for pos < len(line) {
		switch line[pos] {
		case ' ', '\t', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func isBareByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b == '.', b == '+', b == '-':
		return true
	}
	return false
}

// parseFloatPrefix parses the longest finite float at the start of s.
func parseFloatPrefix(s string) (float64, bool) {
	end := 0
	for end < len(s) && isFloatByte(s[end]) {
		end++
	}
	for ; end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		if err != nil {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func isFloatByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '+' || b == '-' || b == 'e' || b == 'E'
}

func parseSwitch(raw string) *bool {
	var on bool
	switch raw {
	case valueOn:
		on = true
	case valueOff:
		on = false
	default:
		return nil
	}
	return &on
}
