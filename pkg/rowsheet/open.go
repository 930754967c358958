package rowsheet

import (
	"io"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/workbook"
)

// OpenWorkbook reads a workbook from r, classifying failures as KindIO.
func OpenWorkbook(r io.Reader, name string) (*workbook.Workbook, error) {
	wb, err := workbook.Open(r, name)
	if err != nil {
		return nil, NewError(KindIO, name, err)
	}
	return wb, nil
}

// OpenWorkbookFile opens the workbook stored at path, classifying failures as KindIO.
func OpenWorkbookFile(path string) (*workbook.Workbook, error) {
	wb, err := workbook.OpenFile(path)
	if err != nil {
		return nil, NewError(KindIO, path, err)
	}
	return wb, nil
}
