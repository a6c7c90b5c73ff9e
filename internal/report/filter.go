package report

import "regexp"

var acceptableDate = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})$`)

// Acceptable is the final gate before persistence: a row must carry a
// recognizable date and positive derived hours. Everything else was already
// coerced to defaults upstream, so this is the only place a row can drop.
func Acceptable(row SessionRow) bool {
	return acceptableDate.MatchString(row.Date) && row.TotalHours > 0
}
