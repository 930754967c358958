package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReadValue reads the typed value of a cell.
// It returns nil for empty cells, bool for boolean cells, time.Time for ISO
// date cells, int64 or float64 for numeric cells and string otherwise.
func ReadValue(f *excelize.File, sheetName, cell string) (interface{}, error) {
	cellType, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetCellValue(sheetName, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, nil
		}
		return raw, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return parseValue(raw), nil
	default:
		return raw, nil
	}
}

// ReadText reads the formatted text of a cell, as displayed by a spreadsheet.
func ReadText(f *excelize.File, sheetName, cell string) (string, error) {
	return f.GetCellValue(sheetName, cell)
}

// WriteValue writes a value produced by ReadValue to a cell.
// A nil value clears the cell content and keeps its style.
func WriteValue(f *excelize.File, sheetName, cell string, value interface{}) error {
	switch v := value.(type) {
	case nil:
		return f.SetCellDefault(sheetName, cell, "")
	case string:
		return f.SetCellStr(sheetName, cell, v)
	case bool:
		return f.SetCellBool(sheetName, cell, v)
	default:
		return f.SetCellValue(sheetName, cell, v)
	}
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
