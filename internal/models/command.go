package models

// Command holds the fields recognized in one inbound command line.
// A nil field means no change was requested for it.
type Command struct {
	WaterDuration *float64 `json:"water_duration,omitempty"` // seconds
	Fan           *bool    `json:"fan,omitempty"`
	Light         *bool    `json:"light,omitempty"`
}

// Empty reports whether the line carried no recognized field.
func (c Command) Empty() bool {
	return c.WaterDuration == nil && c.Fan == nil && c.Light == nil
}
