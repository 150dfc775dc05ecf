// models/measurement.go
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Measurement is one row of an EEA air-quality CSV, projected to the
// columns the pipeline keeps. CSV tags match the Discomap headers exactly.
type Measurement struct {
	Concentration NullFloat `csv:"Concentration" db:"Concentration"`
	DatetimeBegin Timestamp `csv:"DatetimeBegin" db:"DatetimeBegin"`
	DatetimeEnd   Timestamp `csv:"DatetimeEnd" db:"DatetimeEnd"`
}

// Table is the merged time series. The row index is the slice position.
type Table struct {
	Name string
	Rows []Measurement
}

// Len returns the row count; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NullFloat is a float64 that may be missing. Unparseable CSV cells decode
// to a missing value instead of failing the whole file.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present value.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

func (n *NullFloat) UnmarshalCSV(b []byte) error {
	*n = ParseNullFloat(string(b))
	return nil
}

func (n NullFloat) MarshalCSV() ([]byte, error) {
	if !n.Valid {
		return nil, nil
	}
	return []byte(strconv.FormatFloat(n.Float64, 'f', -1, 64)), nil
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}

// ParseNullFloat coerces s to a number; anything non-numeric is missing.
func ParseNullFloat(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullFloat{}
	}
	return Float(v)
}

// Timestamp is a time that may be missing (NaT).
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// At returns a present timestamp.
func At(t time.Time) Timestamp { return Timestamp{Time: t, Valid: true} }

// Layouts seen in Discomap exports, most specific first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp tries the known layouts; an unparseable value is missing.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t)
		}
	}
	return Timestamp{}
}

func (ts *Timestamp) UnmarshalCSV(b []byte) error {
	*ts = ParseTimestamp(string(b))
	return nil
}

func (ts Timestamp) MarshalCSV() ([]byte, error) {
	if !ts.Valid {
		return nil, nil
	}
	return []byte(ts.Time.Format(time.RFC3339)), nil
}

func (ts Timestamp) String() string {
	if !ts.Valid {
		return "NaT"
	}
	return ts.Time.Format(time.RFC3339)
}

// Before orders timestamps with missing values last.
func (ts Timestamp) Before(other Timestamp) bool {
	switch {
	case !ts.Valid:
		return false
	case !other.Valid:
		return true
	default:
		return ts.Time.Before(other.Time)
	}
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s %s", m.DatetimeBegin, m.Concentration)
}
