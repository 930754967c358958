// Package workbook adapts an excelize workbook to the operations needed for
// row-to-sheet mapping: sheet lookup and cloning, typed cell access and
// serialization.
package workbook

import (
	"errors"
	"fmt"
	"io"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/parser"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound indicates a named sheet does not exist in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrSheetExists indicates a sheet with the requested name already exists.
var ErrSheetExists = errors.New("sheet already exists")

// ErrInvalidSheetName indicates a name cannot be used as a sheet name.
var ErrInvalidSheetName = errors.New("invalid sheet name")

// MaxSheetNameLength is the longest sheet name a workbook accepts, in characters.
const MaxSheetNameLength = excelize.MaxSheetNameLength

// Workbook is a handle over an open spreadsheet.
type Workbook struct {
	f    *excelize.File
	name string
}

// New wraps an already open excelize file.
func New(f *excelize.File, name string) *Workbook {
	return &Workbook{f: f, name: name}
}

// Open reads a workbook from r. The name is used in error messages only.
func Open(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return New(f, name), nil
}

// OpenFile opens the workbook stored at path.
func OpenFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return New(f, path), nil
}

// Name returns the name the workbook was opened with.
func (w *Workbook) Name() string { return w.name }

// File returns the underlying excelize file.
func (w *Workbook) File() *excelize.File { return w.f }

// Close releases the resources held by the workbook.
func (w *Workbook) Close() error { return w.f.Close() }

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string { return w.f.GetSheetList() }

// HasSheet reports whether a sheet with the given name exists.
// Sheet names compare case-insensitively, as in spreadsheet applications.
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// sheetIndex returns the index of an existing sheet.
func (w *Workbook) sheetIndex(name string) (int, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return -1, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, name, w.name)
	}
	return idx, nil
}

// CheckSheet returns ErrSheetNotFound when the named sheet does not exist.
func (w *Workbook) CheckSheet(name string) error {
	_, err := w.sheetIndex(name)
	return err
}

// CloneSheet appends a copy of the template sheet under a new name.
// Cells, styles, views and page setup are copied. Drawings and tables are
// not, as excelize drops them when copying a sheet.
func (w *Workbook) CloneSheet(template, name string) error {
	from, err := w.sheetIndex(template)
	if err != nil {
		return err
	}

	// GetSheetIndex validates the name as well as looking it up
	existing, err := w.f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSheetName, name, err)
	}
	if existing >= 0 {
		return fmt.Errorf("%w: %q in %s", ErrSheetExists, name, w.name)
	}

	to, err := w.f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSheetName, name, err)
	}
	if err := w.f.CopySheet(from, to); err != nil {
		return fmt.Errorf("copy sheet %q to %q: %w", template, name, err)
	}
	if err := w.copyPageSetup(template, name); err != nil {
		return fmt.Errorf("copy page setup %q to %q: %w", template, name, err)
	}
	return nil
}

// copyPageSetup copies the page layout, margins and header/footer of one
// sheet to another.
func (w *Workbook) copyPageSetup(from, to string) error {
	layout, err := w.f.GetPageLayout(from)
	if err != nil {
		return err
	}
	if err := w.f.SetPageLayout(to, &layout); err != nil {
		return err
	}

	margins, err := w.f.GetPageMargins(from)
	if err != nil {
		return err
	}
	if err := w.f.SetPageMargins(to, &margins); err != nil {
		return err
	}

	hf, err := w.f.GetHeaderFooter(from)
	if err != nil || hf == nil {
		return err
	}
	return w.f.SetHeaderFooter(to, hf)
}

// LastRow returns the index of the last row of a sheet holding a value.
func (w *Workbook) LastRow(sheet string) (int, error) {
	if err := w.CheckSheet(sheet); err != nil {
		return 0, err
	}
	return parser.LastRow(w.f, sheet)
}

// Value reads the typed value of a cell.
func (w *Workbook) Value(sheet, cell string) (interface{}, error) {
	return parser.ReadValue(w.f, sheet, cell)
}

// Text reads the displayed text of a cell.
func (w *Workbook) Text(sheet, cell string) (string, error) {
	return parser.ReadText(w.f, sheet, cell)
}

// SetValue writes a typed value to a cell.
func (w *Workbook) SetValue(sheet, cell string, value interface{}) error {
	return parser.WriteValue(w.f, sheet, cell, value)
}

// SetActiveCell moves the selection of a sheet to the given cell, keeping
// any frozen or split panes of the sheet.
func (w *Workbook) SetActiveCell(sheet, cell string) error {
	panes, err := w.f.GetPanes(sheet)
	if err != nil {
		return err
	}
	// GetPanes does not report split panes, and SetPanes drops panes
	// that are neither frozen nor split
	if !panes.Freeze && (panes.XSplit != 0 || panes.YSplit != 0) {
		panes.Split = true
	}
	panes.Selection = []excelize.Selection{{
		SQRef:      cell,
		ActiveCell: cell,
		Pane:       panes.ActivePane,
	}}
	return w.f.SetPanes(sheet, &panes)
}

// ActiveCell returns the active cell of a sheet, or "" when none is recorded.
func (w *Workbook) ActiveCell(sheet string) (string, error) {
	panes, err := w.f.GetPanes(sheet)
	if err != nil {
		return "", err
	}
	for _, sel := range panes.Selection {
		if sel.Pane == panes.ActivePane && sel.ActiveCell != "" {
			return sel.ActiveCell, nil
		}
	}
	return "", nil
}

// SetActiveSheet selects the sheet at the given index.
func (w *Workbook) SetActiveSheet(index int) {
	w.f.SetActiveSheet(index)
}

// WriteTo serializes the workbook to wr.
func (w *Workbook) WriteTo(wr io.Writer) (int64, error) {
	return w.f.WriteTo(wr)
}
