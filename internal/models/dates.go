package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// CalendarDateLayout is the dataset's publication_date format
	CalendarDateLayout = "02/01/2006"
	// TimestampLayout is the dataset's part Date format (RSS pubDate style)
	TimestampLayout = time.RFC1123Z

	storageDateLayout = "2006-01-02"
)

// CalendarDate is a day without time of day. The zero value means unknown.
type CalendarDate struct {
	time.Time
}

// NewCalendarDate truncates t to its calendar day
func NewCalendarDate(t time.Time) CalendarDate {
	if t.IsZero() {
		return CalendarDate{}
	}
	y, m, d := t.Date()
	return CalendarDate{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String renders DD/MM/YYYY, empty when unknown
func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(CalendarDateLayout)
}

// MarshalJSON implements json.Marshaler
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = CalendarDate{}
		return nil
	}
	t, err := time.Parse(CalendarDateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid publication date %q: %w", s, err)
	}
	*d = CalendarDate{Time: t}
	return nil
}

// GormDataType stores calendar dates as text
func (CalendarDate) GormDataType() string {
	return "string"
}

// Value implements driver.Valuer
func (d CalendarDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(storageDateLayout), nil
}

// Scan implements sql.Scanner
func (d *CalendarDate) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*d = NewCalendarDate(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CalendarDate", value)
	}
	if s == "" {
		*d = CalendarDate{}
		return nil
	}
	t, err := time.Parse(storageDateLayout, s)
	if err != nil {
		return err
	}
	*d = CalendarDate{Time: t}
	return nil
}

// Before reports whether d is a known date earlier than other, or other is unknown
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.IsZero() {
		return false
	}
	return other.IsZero() || d.Time.Before(other.Time)
}

// Timestamp is a publication instant. The zero value means unknown.
type Timestamp struct {
	time.Time
}

// String renders the RSS pubDate style, empty when unknown
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid part date %q: %w", s, err)
	}
	*t = Timestamp{Time: parsed}
	return nil
}

// GormDataType stores timestamps as datetime
func (Timestamp) GormDataType() string {
	return "time"
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time.UTC(), nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = Timestamp{Time: v}
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			parsed, err = time.Parse("2006-01-02 15:04:05.999999999-07:00", v)
			if err != nil {
				return err
			}
		}
		*t = Timestamp{Time: parsed}
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
	return nil
}
