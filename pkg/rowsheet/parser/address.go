// Package parser provides mapping and cell parsing utilities.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseColumn normalizes a column identifier to upper-case column letters.
// It accepts letters ("b", "AA") or a 1-based column number ("2").
func ParseColumn(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty column")
	}
	if n, err := strconv.Atoi(s); err == nil {
		name, err := excelize.ColumnNumberToName(n)
		if err != nil {
			return "", fmt.Errorf("invalid column %q: %w", s, err)
		}
		return name, nil
	}
	if _, err := excelize.ColumnNameToNumber(s); err != nil {
		return "", fmt.Errorf("invalid column %q: %w", s, err)
	}
	return strings.ToUpper(s), nil
}

// ParseCell normalizes an A1 style cell address, dropping "$" markers.
func ParseCell(s string) (string, error) {
	ref := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "$", ""))
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return "", fmt.Errorf("invalid cell %q: %w", s, err)
	}
	return excelize.CoordinatesToCellName(col, row)
}

// parseSource splits a mapping source into a column or a fixed cell.
// Exactly one of the returned values is non-empty on success.
func parseSource(s string) (column, cell string, err error) {
	if column, err = ParseColumn(s); err == nil {
		return column, "", nil
	}
	if cell, err = ParseCell(s); err == nil {
		return "", cell, nil
	}
	return "", "", fmt.Errorf("invalid source %q: not a column or cell address", s)
}
