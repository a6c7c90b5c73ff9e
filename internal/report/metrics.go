package report

import "math"

// Derive fills in the computed fields of a row: total hours (falling back
// to the start/end clock pair), the weekday label, the ISO date form, and
// the three productivity metrics. Derived outputs are rounded to 2 decimal
// places; intermediate math runs at full precision.
func Derive(row SessionRow) SessionRow {
	if row.TotalHours <= 0 {
		row.TotalHours = HoursBetween(row.TimeStart, row.TimeEnd)
	}
	row.TotalHours = Round2(row.TotalHours)

	if row.Day == "" {
		row.Day = DayName(row.Date)
	}
	if iso := ISODate(row.Date); iso != "" {
		row.Date = iso
	}

	activities := row.OrdersInput + row.DisputedOrders + row.EmailsFollowedUp +
		row.UpdatedOrders + row.VideosUploaded
	row.ProductivityTotalActivities = Round2(activities)

	if row.TotalHours > 0 {
		row.ProductivityPerHour = Round2(activities / row.TotalHours)
	} else {
		row.ProductivityPerHour = 0
	}

	if row.TotalHours > 0 && row.Branches > 0 {
		row.AverageActivitiesPerSite = Round2(activities / (row.Branches * row.TotalHours))
	} else {
		row.AverageActivitiesPerSite = 0
	}

	return row
}

// Summary aggregates a set of rows for the dashboard header. Two distinct
// stats are exposed on purpose: ProductivityPerHour on each row is
// activities/hours, while MinutesPerActivity here is (hours*60)/activities.
// They are not interchangeable and carry different names for that reason.
type Summary struct {
	TotalHours           float64 `json:"totalHours"`
	TotalActivities      float64 `json:"totalActivities"`
	TotalOrdersInput     float64 `json:"totalOrdersInput"`
	TotalDisputed        float64 `json:"totalDisputed"`
	TotalEmails          float64 `json:"totalEmails"`
	MinutesPerActivity   float64 `json:"minutesPerActivity"`
	AvgActivitiesPerSite float64 `json:"avgActivitiesPerSite"`
}

// Summarize computes the aggregate stats over derived rows.
func Summarize(rows []SessionRow) Summary {
	var s Summary
	var siteSum float64
	for _, row := range rows {
		s.TotalHours += row.TotalHours
		s.TotalActivities += row.ProductivityTotalActivities
		s.TotalOrdersInput += row.OrdersInput
		s.TotalDisputed += row.DisputedOrders
		s.TotalEmails += row.EmailsFollowedUp
		siteSum += row.AverageActivitiesPerSite
	}
	if s.TotalActivities > 0 {
		s.MinutesPerActivity = Round2(s.TotalHours * 60 / s.TotalActivities)
	}
	if len(rows) > 0 {
		s.AvgActivitiesPerSite = Round2(siteSum / float64(len(rows)))
	}
	s.TotalHours = Round2(s.TotalHours)
	return s
}

// Round2 rounds to 2 decimal places for display-layer consumption.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
