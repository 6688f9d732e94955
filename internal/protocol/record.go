package protocol

import (
	"fmt"

	"irrigation_node/internal/models"
)

const (
	// RecordSentinel marks the end of a telemetry record, just before the newline.
	RecordSentinel = '#'
	// LineTerminator ends every line in both directions.
	LineTerminator = '\n'

	recordFormat = `{"temperature": %.2f, "humidity": %.2f, "moisture": %.2f, "light": %.2f}`
)

// AppendRecord appends the wire form of r, sentinel and newline included, to dst.
func AppendRecord(dst []byte, r models.TelemetryRecord) []byte {
	dst = fmt.Appendf(dst, recordFormat, r.Temperature, r.Humidity, r.Moisture, r.Light)
	return append(dst, RecordSentinel, LineTerminator)
}

// FormatRecord returns the wire form of r.
func FormatRecord(r models.TelemetryRecord) []byte {
	return AppendRecord(make([]byte, 0, 96), r)
}
