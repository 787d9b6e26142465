// Package formatter renders analysis results as markdown text.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 3

// FormatTable renders header and rows as a markdown table whose columns are
// padded to a common display width. Rows shorter than the header are padded
// with empty cells; pipes inside cells are escaped.
func FormatTable(header []string, rows [][]string) []string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, escapeCells(header))

	for _, row := range rows {
		table = append(table, escapeCells(row))
	}

	// 1. Column count is the widest row
	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	if colCount == 0 {
		return nil
	}

	// 2. Max display width per column
	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	for i := range colWidths {
		colWidths[i] = max(colWidths[i], minColumnWidth)
	}

	// 3. Header, separator, rows
	lines := make([]string, 0, len(table)+1)
	lines = append(lines, formatRow(table[0], colWidths))

	separator := make([]string, colCount)
	for i, w := range colWidths {
		separator[i] = strings.Repeat("-", w)
	}

	lines = append(lines, formatRow(separator, colWidths))

	for _, row := range table[1:] {
		lines = append(lines, formatRow(row, colWidths))
	}

	return lines
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		// Pad with spaces based on display width
		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.ReplaceAll(strings.TrimSpace(cell), "|", `\|`)
	}

	return out
}
