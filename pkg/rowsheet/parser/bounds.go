package parser

import (
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/models"
	"github.com/xuri/excelize/v2"
)

// UsedArea returns the bounding box of the non-empty cells of a sheet.
// It returns nil when the sheet holds no values.
func UsedArea(f *excelize.File, sheetName string) (*models.Area, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return nil, nil
	}

	return &models.Area{
		R1: minRow + 1,
		C1: minCol + 1,
		R2: maxRow + 1,
		C2: maxCol + 1,
	}, nil
}

// LastRow returns the 1-based index of the last row holding a value, or 0
// for an empty sheet.
func LastRow(f *excelize.File, sheetName string) (int, error) {
	area, err := UsedArea(f, sheetName)
	if err != nil || area == nil {
		return 0, err
	}
	return area.R2, nil
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}
