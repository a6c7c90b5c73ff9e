package report

import (
	"math"
	"strconv"
	"strings"
)

// Alias tables: every column name the sheet has historically used, in
// lookup order, per canonical field. Supporting a renamed column is a data
// change here, never new branching in the mapper.
var (
	dayAliases       = []string{"day", "day_of_week", "dayname", "day_name"}
	dateAliases      = []string{"date", "report_date"}
	timeStartAliases = []string{"time_start", "time_start_hh_mm", "time_start_h_mm", "timestart"}
	timeEndAliases   = []string{"time_end", "time_end_hh_mm", "time_end_h_mm", "timeend", "time_ends"}
	hoursAliases     = []string{
		"total_hours", "total_hours_hh_mm", "total_hours_h_mm", "hours", "totalhours",
		"total_hours_in_decimal", "total_hours_decimal", "total___of_hours", "hours_decimalised",
	}
	branchesAliases = []string{"branches", "num_branches", "number_of_branches", "of_branches"}
	ordersAliases   = []string{"orders_input", "orders", "ordersinput", "orders_input_order_tracking", "orders_input_order_tracking_"}
	disputedAliases = []string{"disputed_orders", "disputed", "of_disputed_orders"}
	emailsAliases   = []string{"emails_followed_up", "emails", "emailsfollowedup", "of_emails_followed_up"}
	updatedAliases  = []string{"updated_orders", "updated", "of_updated_orders_success_failed_value", "of_updated_orders"}
	videosAliases   = []string{"videos_uploaded", "videos", "of_videos_uploaded"}
	platformAliases = []string{"platform_used", "platform", "platforms", "platform_use", "platform_used_"}
	remarksAliases  = []string{"remarks", "notes"}
)

// RawRecord maps normalized header tokens to raw cell values for one data
// line. It is the common input shape for both CSV rows and manual entry.
type RawRecord map[string]string

// Record zips normalized headers with a cell row. Missing cells are empty.
func Record(headers, cells []string) RawRecord {
	rec := make(RawRecord, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			rec[h] = cells[i]
		} else {
			rec[h] = ""
		}
	}
	return rec
}

// MapRecord resolves a raw record into a partial SessionRow through the
// alias tables, coercing numeric fields. Derived fields are not filled in
// here; Derive does that.
func MapRecord(rec RawRecord, index int) SessionRow {
	row := SessionRow{
		Day:              rec.pick(dayAliases),
		Date:             rec.pick(dateAliases),
		TimeStart:        rec.pick(timeStartAliases),
		TimeEnd:          rec.pick(timeEndAliases),
		TotalHours:       CoerceNumber(rec.pick(hoursAliases)),
		Branches:         CoerceNumber(rec.pick(branchesAliases)),
		OrdersInput:      CoerceNumber(rec.pick(ordersAliases)),
		DisputedOrders:   CoerceNumber(rec.pick(disputedAliases)),
		EmailsFollowedUp: CoerceNumber(rec.pick(emailsAliases)),
		UpdatedOrders:    CoerceNumber(rec.pick(updatedAliases)),
		VideosUploaded:   CoerceNumber(rec.pick(videosAliases)),
		PlatformUsed:     rec.pick(platformAliases),
		Remarks:          rec.pick(remarksAliases),
		SourceRowIndex:   index,
	}

	// An id column is honored only when it parses as a finite number;
	// anything else is treated as absent so the database assigns one.
	if raw := strings.TrimSpace(rec["id"]); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			row.ID = int64(v)
		}
	}
	return row
}

func (rec RawRecord) pick(aliases []string) string {
	for _, alias := range aliases {
		if v := strings.TrimSpace(rec[alias]); v != "" {
			return v
		}
	}
	return ""
}
