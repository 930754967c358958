// Package output serializes mapped workbooks.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/workbook"
)

// MIMEType is the content type of generated workbooks.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultExtension is the extension shown before a template is chosen.
const DefaultExtension = ".xlsx"

// Finalize activates the first sheet and moves the selection of the first two
// sheets to the home cell.
func Finalize(wb *workbook.Workbook) error {
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil
	}
	wb.SetActiveSheet(0)
	for _, name := range sheets[:min(2, len(sheets))] {
		if err := wb.SetActiveCell(name, rowsheet.HomeCell); err != nil {
			return rowsheet.NewError(rowsheet.KindIO, name, err)
		}
	}
	return nil
}

// Write finalizes the workbook and serializes it to w.
func Write(wb *workbook.Workbook, w io.Writer) error {
	if err := Finalize(wb); err != nil {
		return err
	}
	if _, err := wb.WriteTo(w); err != nil {
		return rowsheet.NewError(rowsheet.KindIO, wb.Name(), err)
	}
	return nil
}

// Bytes finalizes the workbook and returns its serialized form.
func Bytes(wb *workbook.Workbook) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(wb, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile finalizes the workbook and writes it to path.
// The data goes to a temporary file in the same directory first, so path is
// only created or replaced when serialization succeeds.
func WriteFile(wb *workbook.Workbook, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return rowsheet.NewError(rowsheet.KindIO, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Write(wb, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return rowsheet.NewError(rowsheet.KindIO, path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return rowsheet.NewError(rowsheet.KindIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return rowsheet.NewError(rowsheet.KindIO, path, fmt.Errorf("rename output: %w", err))
	}
	return nil
}
