// Package report implements the spreadsheet ingestion pipeline: tolerant CSV
// parsing, header detection, column aliasing, time/number coercion, and the
// derived productivity metrics shared by the import and manual-entry paths.
package report

// SessionRow is one recorded work shift with its activity counters.
// Derived fields are always recomputed from the base fields and never
// accepted as input or persisted.
type SessionRow struct {
	ID               int64   `json:"id,omitempty"`
	Day              string  `json:"day"`
	Date             string  `json:"date"`
	TimeStart        string  `json:"timeStart"`
	TimeEnd          string  `json:"timeEnd"`
	TotalHours       float64 `json:"totalHours"`
	Branches         float64 `json:"branches"`
	OrdersInput      float64 `json:"ordersInput"`
	DisputedOrders   float64 `json:"disputedOrders"`
	EmailsFollowedUp float64 `json:"emailsFollowedUp"`
	UpdatedOrders    float64 `json:"updatedOrders"`
	VideosUploaded   float64 `json:"videosUploaded"`
	PlatformUsed     string  `json:"platformUsed"`
	Remarks          string  `json:"remarks"`

	ProductivityTotalActivities float64 `json:"productivityTotalActivities"`
	ProductivityPerHour         float64 `json:"productivityPerHour"`
	AverageActivitiesPerSite    float64 `json:"averageActivitiesPerSite"`

	// 1-based position within the data section of the source sheet.
	// Diagnostics only, never persisted.
	SourceRowIndex int `json:"-"`
}

// HasID reports whether the row carries a database identity. Rows without
// one are inserts; rows with one are updates.
func (r SessionRow) HasID() bool {
	return r.ID > 0
}
