package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2013-01-01 00:00:00 +01:00", time.Date(2012, 12, 31, 23, 0, 0, 0, time.UTC)},
		{"2020-01-01T05:06:07Z", time.Date(2020, 1, 1, 5, 6, 7, 0, time.UTC)},
		{"2020-01-01T05:06:07.5+02:00", time.Date(2020, 1, 1, 3, 6, 7, 500_000_000, time.UTC)},
		{"2020-01-01 05:06:07+02:00", time.Date(2020, 1, 1, 3, 6, 7, 0, time.UTC)},
		{"2020-01-01 05:06:07", time.Date(2020, 1, 1, 5, 6, 7, 0, time.UTC)},
		{"2020-01-01T05:06:07", time.Date(2020, 1, 1, 5, 6, 7, 0, time.UTC)},
		{"2020-01-01 05:06", time.Date(2020, 1, 1, 5, 6, 0, 0, time.UTC)},
		{"2020-01-01", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"  2020-01-01  ", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts := ParseTimestamp(tt.in)
			require.True(t, ts.Valid)
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestParseTimestamp_Missing(t *testing.T) {
	for _, in := range []string{"", "   ", "garbage", "2020-13-01", "01.01.2020"} {
		assert.False(t, ParseTimestamp(in).Valid, in)
	}
}

func TestParseNullFloat(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"12.5", 12.5, true},
		{" 3 ", 3, true},
		{"-1e2", -100, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,5", 0, false},
		{"NaN", 0, false},
		{"nan", 0, false},
		{"Inf", 0, false},
		{"-Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNullFloat(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Float64)
			}
		})
	}
}

func TestTimestamp_BeforeMissingLast(t *testing.T) {
	early := At(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := At(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
	assert.True(t, late.Before(Timestamp{}))
	assert.False(t, Timestamp{}.Before(early))
	assert.False(t, Timestamp{}.Before(Timestamp{}))
}
