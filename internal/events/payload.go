package events

import "github.com/spf13/cast"

// Payload keys
const (
	KeyPosition = "position"
	KeyDuration = "duration"
	KeyError    = "error"
	KeySource   = "source"
	KeyMimeType = "mimeType"
	KeyPlayback = "playback"
	KeyFrom     = "from"
	KeyTo       = "to"
)

// Payload carries optional event data
type Payload map[string]any

// Float returns a numeric value, 0 when missing or not numeric
func (p Payload) Float(key string) float64 {
	return cast.ToFloat64(p[key])
}

// Int returns an integer value, 0 when missing or not numeric
func (p Payload) Int(key string) int {
	return cast.ToInt(p[key])
}

// String returns a string value, "" when missing
func (p Payload) String(key string) string {
	return cast.ToString(p[key])
}

// Err returns the error stored under KeyError, if any
func (p Payload) Err() error {
	err, _ := p[KeyError].(error)
	return err
}
