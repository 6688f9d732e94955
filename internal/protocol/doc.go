// Package protocol implements the line protocol spoken with the companion
// module: outbound telemetry records, inbound line reassembly and command
// field extraction.
//
// Outbound, one record per line:
//
//	{"temperature": 21.50, "humidity": 60.00, "moisture": 41.20, "light": 180.00}#\n
//
// Inbound, one command per line, carrying any of:
//
//	{"water_duration": 5.0, "fan": "on", "light": "off"}\n
//
// Inbound parsing is substring based and does not validate JSON structure.
package protocol
