package report

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"2.17", 2.17},
		{"  42 ", 42},
		{"", 0},
		{"abc", 0},
		{"6:30", 6.5},
		{"6:30:15", 6.5}, // seconds segment ignored in clock-form hours
		{"x:y", 0},
		{"-3", -3},
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CoerceNumber(tc.input), "input %q", tc.input)
	}
}

func TestCoerceNumberKeepsRowsEncodable(t *testing.T) {
	result := RowsFromCSV("Date,Orders,Total Hours\n11/01/2025,NaN,2\n")
	if assert.Len(t, result.Rows, 1) {
		assert.Equal(t, 0.0, result.Rows[0].OrdersInput)
		_, err := json.Marshal(result.Rows[0])
		assert.NoError(t, err)
	}
}

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"6:42 PM", 18*3600 + 42*60, true},
		{"6:42pm", 18*3600 + 42*60, true},
		{"12:00 AM", 0, true},
		{"12:00 PM", 12 * 3600, true},
		{"08:15:30", 8*3600 + 15*60 + 30, true},
		{"8:15", 8*3600 + 15*60, true},
		{"not a time", 0, false},
		{"", 0, false},
		{"8", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseClockTime(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.input)
		}
	}
}

func TestHoursBetween(t *testing.T) {
	assert.InDelta(t, 2.2, HoursBetween("6:42 PM", "8:54 PM"), 0.0001)
	assert.InDelta(t, 8.0, HoursBetween("09:00", "17:00"), 0.0001)
	assert.Zero(t, HoursBetween("", "8:54 PM"))
	assert.Zero(t, HoursBetween("6:42 PM", ""))
	assert.Zero(t, HoursBetween("garbage", "8:54 PM"))
}

func TestHoursBetweenNoOvernightWrap(t *testing.T) {
	// Crossing midnight is not supported: end <= start collapses to 0.
	assert.Zero(t, HoursBetween("10:00 PM", "1:33 AM"))
	assert.Zero(t, HoursBetween("9:00", "9:00"))
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Sat", DayName("11/01/2025"))
	assert.Equal(t, "Sat", DayName("2025-11-01"))
	assert.Equal(t, "Mon", DayName("2025-11-03"))
	assert.Equal(t, "", DayName("2025-13-40"))
	assert.Equal(t, "", DayName("not a date"))
	assert.Equal(t, "", DayName(""))
}

func TestISODate(t *testing.T) {
	assert.Equal(t, "2025-11-01", ISODate("11/01/2025"))
	assert.Equal(t, "2025-11-01", ISODate("11/1/2025"))
	assert.Equal(t, "2025-11-01", ISODate("2025-11-01"))
	assert.Equal(t, "", ISODate("11/31/2025"))
	assert.Equal(t, "", ISODate("2025/13/40"))
	assert.Equal(t, "", ISODate("hello"))
}

func TestParseTimeToDecimal(t *testing.T) {
	assert.InDelta(t, 2.5, ParseTimeToDecimal("2:30"), 0.0001)
	assert.InDelta(t, 2.505, ParseTimeToDecimal("2:30:18"), 0.0001)
	assert.True(t, math.IsNaN(ParseTimeToDecimal("2")))
	assert.True(t, math.IsNaN(ParseTimeToDecimal("2:30:18:05")))
	assert.True(t, math.IsNaN(ParseTimeToDecimal("a:b")))
	assert.True(t, math.IsNaN(ParseTimeToDecimal("")))
}

func TestFormatDecimalToTime(t *testing.T) {
	assert.Equal(t, "2:30", FormatDecimalToTime(2.5))
	assert.Equal(t, "2:10", FormatDecimalToTime(2.17))
	assert.Equal(t, "", FormatDecimalToTime(0))
	assert.Equal(t, "", FormatDecimalToTime(-1))
	assert.Equal(t, "", FormatDecimalToTime(math.NaN()))
}

func TestTo24h(t *testing.T) {
	assert.Equal(t, "18:42", To24h("6:42 PM"))
	assert.Equal(t, "00:00", To24h("12:00 AM"))
	assert.Equal(t, "12:00", To24h("12:00 PM"))
	assert.Equal(t, "09:05", To24h("9:05"))
	assert.Equal(t, "09:05:30", To24h("9:05:30"))
	assert.Equal(t, "", To24h("25:00"))
	assert.Equal(t, "", To24h("9:61"))
	assert.Equal(t, "", To24h("nope"))
}

func TestTo12h(t *testing.T) {
	assert.Equal(t, "06:42 PM", To12h("18:42"))
	assert.Equal(t, "12:00 AM", To12h("00:00"))
	assert.Equal(t, "12:00 PM", To12h("12:00"))
	assert.Equal(t, "", To12h("bad"))
}
