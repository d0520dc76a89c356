package model

import (
	"bytes"
	"fmt"
	"time"
)

// Timestamp is a time.Time that is lenient about what it accepts.
//
// WHY NOT time.Time DIRECTLY?
// time.Time only unmarshals strict RFC 3339. Collaborators written in other
// stacks often emit timestamps without a zone ("2024-01-15T08:30:00.123456").
// One such value would make a whole diary listing undecodable, so we accept
// the common naive layouts and read them as UTC. Output is always RFC 3339 in UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewTimestamp wraps t, normalised to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// MarshalJSON writes the instant as an RFC 3339 string in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

// UnmarshalJSON accepts RFC 3339 and the zone-less layouts above. null leaves
// the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected a JSON string, got %s", data)
	}
	s := string(data[1 : len(data)-1])
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}
