package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Date wraps [time.Time] to decode the timestamp shapes the promotion API emits.
//
// The API sends RFC3339 values, zone-less ISO timestamps and bare dates.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate parses s with each known layout in turn.
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date: %q", s)
}

// MustParseDate is [ParseDate] for literals; it panics on bad input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// MarshalYAML emits an RFC3339 string, or null for the zero date.
func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time.Format(time.RFC3339), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Short formats the date as YYYY-MM-DD, or "-" when unset.
func (d Date) Short() string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(time.DateOnly)
}
