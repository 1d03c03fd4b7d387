package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts tried in order. Zone-less forms are read in the local zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999-07",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Timestamp is a created_at value. It keeps the raw text it was read from so
// that unparsable values survive untouched.
type Timestamp struct {
	raw   string
	t     time.Time
	valid bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{raw: t.Format(time.RFC3339Nano), t: t, valid: true}
}

func ParseTimestamp(raw string) Timestamp {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Timestamp{raw: raw}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Timestamp{raw: raw, t: t, valid: true}
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return Timestamp{raw: raw, t: t, valid: true}
		}
	}
	// date-only values are UTC midnight
	if t, err := time.Parse(time.DateOnly, trimmed); err == nil {
		return Timestamp{raw: raw, t: t, valid: true}
	}
	return Timestamp{raw: raw}
}

// Time returns the parsed instant and whether parsing succeeded.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.valid
}

func (ts Timestamp) Valid() bool {
	return ts.valid
}

func (ts Timestamp) Raw() string {
	return ts.raw
}

// Absent reports a missing value, as opposed to a present but unparsable one.
func (ts Timestamp) Absent() bool {
	return !ts.valid && strings.TrimSpace(ts.raw) == ""
}

// UnixMilli is the epoch millisecond value, 0 when unparsable.
func (ts Timestamp) UnixMilli() int64 {
	if !ts.valid {
		return 0
	}
	return ts.t.UnixMilli()
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts = Timestamp{}
	case time.Time:
		*ts = NewTimestamp(v)
	case []byte:
		*ts = ParseTimestamp(string(v))
	case string:
		*ts = ParseTimestamp(v)
	default:
		return fmt.Errorf("timestamp: unsupported scan type %T", src)
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Absent() {
		return []byte("null"), nil
	}
	if ts.valid {
		return json.Marshal(ts.t.Format(time.RFC3339Nano))
	}
	return json.Marshal(ts.raw)
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*ts = ParseTimestamp(str)
	return nil
}
