package db

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the text forms a timestamp column may come back in
// when the driver does not convert it to time.Time itself.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UTCTime is a time.Time that is always written and read back in UTC.
// It implements sql.Scanner and driver.Valuer so it works with both the
// sqlite3 and postgres drivers.
type UTCTime struct {
	time.Time
}

// NewUTCTime wraps t, normalised to UTC.
func NewUTCTime(t time.Time) UTCTime {
	return UTCTime{Time: t.UTC()}
}

// Scan implements sql.Scanner
func (t *UTCTime) Scan(src interface{}) error {
	if t == nil {
		return fmt.Errorf("dbtypes: Scan on nil *UTCTime")
	}

	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("dbtypes: cannot scan type %T into UTCTime", src)
	}
}

func (t *UTCTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("dbtypes: cannot parse %q as timestamp", s)
}

// Value implements driver.Valuer
func (t UTCTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC(), nil
}
