package report

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(am|pm)?\s*$`)

// CoerceNumber turns a cell value into a number, never failing. Plain
// numerics parse directly; "H:MM" clock forms become decimal hours (some
// historical sheets supplied hours that way); anything else is 0.
func CoerceNumber(value string) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return v
	}
	if strings.Contains(trimmed, ":") {
		parts := strings.Split(trimmed, ":")
		h, errH := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		m := 0.0
		var errM error
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			m, errM = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		}
		if errH == nil && errM == nil {
			return h + m/60
		}
	}
	return 0
}

// ParseClockTime parses "H:MM", "H:MM:SS", optionally with an am/pm suffix,
// into seconds since midnight. In 12-hour form, hour 12 maps to 0 before
// the pm offset, so 12:00 AM is midnight and 12:00 PM is noon. The second
// return is false on any parse failure.
func ParseClockTime(value string) (int, bool) {
	match := clockPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	s := 0
	if match[3] != "" {
		s, _ = strconv.Atoi(match[3])
	}
	if meridiem := strings.ToLower(match[4]); meridiem != "" {
		if h == 12 {
			h = 0
		}
		if meridiem == "pm" {
			h += 12
		}
	}
	return h*3600 + m*60 + s, true
}

// HoursBetween derives decimal hours from a start/end clock pair. Either
// side failing to parse, or end at-or-before start, yields 0. Overnight
// spans are not supported: crossing midnight gives 0, not a negative or
// wrapped value.
func HoursBetween(start, end string) float64 {
	if start == "" || end == "" {
		return 0
	}
	startSec, okStart := ParseClockTime(start)
	endSec, okEnd := ParseClockTime(end)
	if !okStart || !okEnd || endSec <= startSec {
		return 0
	}
	return float64(endSec-startSec) / 3600
}

// ISODate converts a MM/DD/YYYY or YYYY-MM-DD date string to YYYY-MM-DD,
// validating it against the calendar. Any other shape, or an impossible
// date, returns "".
func ISODate(dateStr string) string {
	trimmed := strings.TrimSpace(dateStr)
	if trimmed == "" {
		return ""
	}
	sep := "-"
	if strings.Contains(trimmed, "/") {
		sep = "/"
	}
	parts := strings.Split(trimmed, sep)
	if len(parts) != 3 {
		return ""
	}
	var iso string
	if sep == "/" {
		iso = fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[0]), pad2(parts[1]))
	} else {
		iso = fmt.Sprintf("%s-%s-%s", parts[0], pad2(parts[1]), pad2(parts[2]))
	}
	if _, err := time.Parse("2006-01-02", iso); err != nil {
		return ""
	}
	return iso
}

// DayName returns the short English weekday label ("Mon".."Sun") for a
// MM/DD/YYYY or YYYY-MM-DD date string, or "" when the date is unparseable.
func DayName(dateStr string) string {
	iso := ISODate(dateStr)
	if iso == "" {
		return ""
	}
	parsed, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return ""
	}
	return parsed.UTC().Weekday().String()[:3]
}

// ParseTimeToDecimal converts 24-hour "H:MM" or "H:MM:SS" into decimal
// hours. Malformed input yields NaN so callers can distinguish "0:00" from
// garbage.
func ParseTimeToDecimal(value string) float64 {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return math.NaN()
	}
	nums := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return math.NaN()
		}
		nums[i] = v
	}
	return nums[0] + nums[1]/60 + nums[2]/3600
}

// FormatDecimalToTime renders decimal hours as "H:MM" for display, rounding
// to the nearest minute. Non-finite or non-positive input yields "".
func FormatDecimalToTime(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return ""
	}
	totalMinutes := int(math.Round(value * 60))
	return fmt.Sprintf("%d:%02d", totalMinutes/60, totalMinutes%60)
}

// To24h normalizes a clock string (12h or 24h) to "HH:MM" or "HH:MM:SS",
// dropping a zero seconds component. Invalid input yields "".
func To24h(value string) string {
	match := clockPattern.FindStringSubmatch(value)
	if match == nil {
		return ""
	}
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	s := 0
	if match[3] != "" {
		s, _ = strconv.Atoi(match[3])
	}
	if m > 59 || s > 59 {
		return ""
	}
	if meridiem := strings.ToLower(match[4]); meridiem != "" {
		if h == 12 {
			h = 0
		}
		if meridiem == "pm" {
			h += 12
		}
	}
	if h > 23 {
		return ""
	}
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// To12h renders a clock string in 12-hour display form, e.g. "06:42 PM".
func To12h(value string) string {
	v24 := To24h(value)
	if v24 == "" {
		return ""
	}
	h, _ := strconv.Atoi(v24[:2])
	m, _ := strconv.Atoi(v24[3:5])
	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h = h % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, m, meridiem)
}

func pad2(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
