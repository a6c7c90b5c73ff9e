package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveMetricsDeterminism(t *testing.T) {
	row := Derive(SessionRow{
		Date:             "2025-11-01",
		TotalHours:       2.17,
		OrdersInput:      12,
		DisputedOrders:   11,
		EmailsFollowedUp: 34,
		UpdatedOrders:    20,
		VideosUploaded:   10,
	})

	assert.Equal(t, 87.0, row.ProductivityTotalActivities)
	assert.InDelta(t, 40.09, row.ProductivityPerHour, 0.001)
}

func TestDeriveHoursFallbackFromTimes(t *testing.T) {
	row := Derive(SessionRow{
		Date:      "11/01/2025",
		TimeStart: "6:42 PM",
		TimeEnd:   "8:54 PM",
	})
	assert.InDelta(t, 2.2, row.TotalHours, 0.001)
}

func TestDeriveExplicitHoursWins(t *testing.T) {
	row := Derive(SessionRow{
		Date:       "2025-11-01",
		TimeStart:  "09:00",
		TimeEnd:    "17:00",
		TotalHours: 2.17,
	})
	assert.Equal(t, 2.17, row.TotalHours)
}

func TestDeriveDayFromDate(t *testing.T) {
	row := Derive(SessionRow{Date: "11/01/2025", TotalHours: 1})
	assert.Equal(t, "Sat", row.Day)
	assert.Equal(t, "2025-11-01", row.Date)

	row = Derive(SessionRow{Day: "Fri", Date: "11/01/2025", TotalHours: 1})
	assert.Equal(t, "Fri", row.Day, "given day is not overwritten")
}

func TestDeriveZeroHoursZeroesRates(t *testing.T) {
	row := Derive(SessionRow{Date: "2025-11-01", OrdersInput: 10, Branches: 2})
	assert.Zero(t, row.ProductivityPerHour)
	assert.Zero(t, row.AverageActivitiesPerSite)
}

func TestDeriveZeroBranchesZeroesPerSite(t *testing.T) {
	row := Derive(SessionRow{Date: "2025-11-01", TotalHours: 2, OrdersInput: 10})
	assert.Equal(t, 5.0, row.ProductivityPerHour)
	assert.Zero(t, row.AverageActivitiesPerSite)
}

func TestAcceptable(t *testing.T) {
	ok := SessionRow{Date: "2025-11-01", TotalHours: 2}
	assert.True(t, Acceptable(ok))
	assert.True(t, Acceptable(SessionRow{Date: "11/1/2025", TotalHours: 0.5}))

	assert.False(t, Acceptable(SessionRow{Date: "2025/13/40", TotalHours: 2}))
	assert.False(t, Acceptable(SessionRow{Date: "", TotalHours: 2}))
	assert.False(t, Acceptable(SessionRow{Date: "2025-11-01", TotalHours: 0}))
	assert.False(t, Acceptable(SessionRow{Date: "2025-11-01", TotalHours: -1}))
}

func TestSummarize(t *testing.T) {
	rows := []SessionRow{
		Derive(SessionRow{Date: "2025-11-01", TotalHours: 2, OrdersInput: 10, Branches: 5}),
		Derive(SessionRow{Date: "2025-11-02", TotalHours: 4, EmailsFollowedUp: 20, Branches: 5}),
	}
	s := Summarize(rows)

	assert.Equal(t, 6.0, s.TotalHours)
	assert.Equal(t, 30.0, s.TotalActivities)
	assert.Equal(t, 10.0, s.TotalOrdersInput)
	assert.Equal(t, 20.0, s.TotalEmails)
	// 6 hours over 30 activities = 12 minutes per activity.
	assert.Equal(t, 12.0, s.MinutesPerActivity)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalHours)
	assert.Zero(t, s.MinutesPerActivity)
	assert.Zero(t, s.AvgActivitiesPerSite)
}
