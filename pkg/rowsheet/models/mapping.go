// Package models defines data structures for row-to-sheet mapping.
package models

import "strconv"

// MappingConfig is the parsed mapping description for one run.
type MappingConfig struct {
	// ModelSheetName is the template sheet cloned once per source row.
	ModelSheetName string `json:"model_sheet_name"`
	// GeneratedFileName is the suggested output file name (optional).
	GeneratedFileName string `json:"generated_file_name,omitempty"`
	// Sheets lists the sheet specs in declaration order.
	Sheets []SheetSpec `json:"sheets"`
}

// SheetSpec describes how the rows of one source sheet become cloned sheets.
type SheetSpec struct {
	// Key is the entry key when sheets are declared as a mapping, empty for a list.
	Key string `json:"key,omitempty"`
	// SourceSheetName is the sheet of the source workbook to read rows from.
	SourceSheetName string `json:"source_sheet_name"`
	// TargetDomain is written to the domain cell of every clone (optional).
	TargetDomain string `json:"target_domain,omitempty"`
	// StartRow is the first source row to read (1-based).
	StartRow int `json:"start_row"`
	// StopRow is the exclusive upper row bound, 0 when absent.
	StopRow int `json:"stop_row,omitempty"`
	// ReferenceColumn is the column naming each clone, in column letters.
	ReferenceColumn string `json:"reference_column"`
	// RecordState is written to the status cell of every clone (optional).
	RecordState string `json:"record_state,omitempty"`
	// Fields lists the cells copied per row, in declaration order.
	Fields []FieldMapping `json:"fields,omitempty"`
}

// Label returns a human readable name for the spec, used in error messages.
func (s SheetSpec) Label() string {
	if s.Key != "" {
		return s.Key
	}
	return s.SourceSheetName
}

// FieldMapping copies one source cell into one target cell.
type FieldMapping struct {
	// Source is the source reference as written in the configuration.
	Source string `json:"source"`
	// SourceColumn is set when the value is read from the current row.
	SourceColumn string `json:"source_column,omitempty"`
	// SourceCell is set when the value is read from a fixed cell.
	SourceCell string `json:"source_cell,omitempty"`
	// Target is the A1 address written on the clone.
	Target string `json:"target"`
}

// SourceRef returns the source cell address for the given row.
func (m FieldMapping) SourceRef(row int) string {
	if m.SourceCell != "" {
		return m.SourceCell
	}
	return m.SourceColumn + strconv.Itoa(row)
}
