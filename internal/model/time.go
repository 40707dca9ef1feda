package model

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	isoSecond = "2006-01-02T15:04:05-07:00"
	isoMicro  = "2006-01-02T15:04:05.000000-07:00"
)

// Time is a UTC instant that serializes as ISO-8601 with an explicit
// "+00:00" offset, or null when zero.
type Time struct {
	time.Time
}

// NewTime normalizes t to UTC at microsecond precision.
func NewTime(t time.Time) Time {
	if t.IsZero() {
		return Time{}
	}
	return Time{t.UTC().Truncate(time.Microsecond)}
}

// UnixMilli builds a Time from epoch milliseconds.
func UnixMilli(ms int64) Time {
	return NewTime(time.UnixMilli(ms))
}

// String returns the ISO form, or "" for the zero time.
func (t Time) String() string {
	if t.IsZero() {
		return ""
	}
	if t.Nanosecond() == 0 {
		return t.UTC().Format(isoSecond)
	}
	return t.UTC().Format(isoMicro)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = NewTime(parsed)
	return nil
}
