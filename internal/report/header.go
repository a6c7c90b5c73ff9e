package report

import (
	"regexp"
	"strings"
)

var nonTokenRuns = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader folds a raw header cell into its canonical token form:
// lowercase, runs of non-alphanumerics collapsed to a single underscore,
// edge underscores stripped. "Time Start (HH:MM)" -> "time_start_hh_mm".
func NormalizeHeader(cell string) string {
	token := nonTokenRuns.ReplaceAllString(strings.ToLower(cell), "_")
	return strings.Trim(token, "_")
}

// ResolveHeader locates the true header row among parsed rows and returns
// its index plus the normalized header tokens. Sheets often carry title or
// metadata lines before the real header, so the first row containing the
// token "date" wins; when none does, row 0 is used as a degraded fallback
// and the acceptance filter downstream will discard everything.
func ResolveHeader(rows [][]string) (int, []string) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i, row := range rows {
		norm := normalizeAll(row)
		for _, token := range norm {
			if token == "date" {
				return i, norm
			}
		}
	}
	return 0, normalizeAll(rows[0])
}

func normalizeAll(row []string) []string {
	tokens := make([]string, len(row))
	for i, cell := range row {
		tokens[i] = NormalizeHeader(cell)
	}
	return tokens
}
