package report

// ImportResult carries the accepted rows of one CSV payload plus the count
// of rows the acceptance filter discarded.
type ImportResult struct {
	Rows     []SessionRow
	Rejected int
}

// RowsFromCSV runs the full pipeline over one CSV payload: tokenize,
// locate the header row, map each data line through the alias tables,
// derive the computed fields, and filter. Pure and synchronous; fetching
// the payload and persisting the result belong to the caller.
func RowsFromCSV(text string) ImportResult {
	parsed := ParseCSV(text)
	if len(parsed) == 0 {
		return ImportResult{}
	}

	headerIndex, headers := ResolveHeader(parsed)

	var result ImportResult
	for i, cells := range parsed[headerIndex+1:] {
		row := Derive(MapRecord(Record(headers, cells), i+1))
		if !Acceptable(row) {
			result.Rejected++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}
