package report

import "strings"

// ParseCSV tokenizes raw CSV text into rows of trimmed cells. It is
// deliberately more forgiving than encoding/csv: blank lines are dropped,
// quoting is scoped to a single line, and an unterminated quote is treated
// as closed at end of line. Sheet exports edited by hand routinely violate
// strict CSV, so this stage never fails.
func ParseCSV(text string) [][]string {
	lines := splitLines(text)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, parseLine(line))
	}
	return rows
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseLine(line string) []string {
	var cells []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	cells = append(cells, strings.TrimSpace(current.String()))
	return cells
}
