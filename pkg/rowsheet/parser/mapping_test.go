package parser

import (
	"errors"
	"strings"
	"testing"
)

const scenarioMapping = `
modelSheetName: Template
sheets:
  a:
    sheet:
      name: Data
      startRow: 2
      referenceColumn: A
      mapping:
        - source: B
          target: C10
`

func TestParseMapping(t *testing.T) {
	cfg, err := ParseMapping([]byte(scenarioMapping))
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}

	if cfg.ModelSheetName != "Template" {
		t.Errorf("Expected model sheet 'Template', got %q", cfg.ModelSheetName)
	}
	if len(cfg.Sheets) != 1 {
		t.Fatalf("Expected 1 sheet spec, got %d", len(cfg.Sheets))
	}

	spec := cfg.Sheets[0]
	if spec.Key != "a" {
		t.Errorf("Expected key 'a', got %q", spec.Key)
	}
	if spec.SourceSheetName != "Data" || spec.StartRow != 2 || spec.StopRow != 0 || spec.ReferenceColumn != "A" {
		t.Errorf("Unexpected sheet spec: %+v", spec)
	}
	if len(spec.Fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(spec.Fields))
	}
	if spec.Fields[0].SourceColumn != "B" || spec.Fields[0].Target != "C10" {
		t.Errorf("Unexpected field: %+v", spec.Fields[0])
	}
}

func TestParseMappingAllKeys(t *testing.T) {
	doc := `
modelSheetName: Model
generatedFileName: records.xlsx
sheets:
  - sheet:
      name: People
      domain: HR
      startRow: 3
      stopRow: 10
      referenceColumn: 2
      recordState: DRAFT
      mapping:
        first: {source: c, target: "$D$4"}
        header: {source: A1, target: F1}
`
	cfg, err := ParseMapping([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}

	if cfg.GeneratedFileName != "records.xlsx" {
		t.Errorf("Expected generated file name, got %q", cfg.GeneratedFileName)
	}
	spec := cfg.Sheets[0]
	if spec.Key != "" {
		t.Errorf("Expected no key for list entries, got %q", spec.Key)
	}
	if spec.TargetDomain != "HR" || spec.RecordState != "DRAFT" {
		t.Errorf("Unexpected markers: domain=%q state=%q", spec.TargetDomain, spec.RecordState)
	}
	if spec.StopRow != 10 {
		t.Errorf("Expected stopRow 10, got %d", spec.StopRow)
	}
	if spec.ReferenceColumn != "B" {
		t.Errorf("Expected numeric reference column to normalize to 'B', got %q", spec.ReferenceColumn)
	}
	if len(spec.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(spec.Fields))
	}
	if spec.Fields[0].SourceColumn != "C" || spec.Fields[0].Target != "D4" {
		t.Errorf("Unexpected first field: %+v", spec.Fields[0])
	}
	if spec.Fields[1].SourceCell != "A1" || spec.Fields[1].SourceColumn != "" {
		t.Errorf("Expected fixed source cell, got %+v", spec.Fields[1])
	}
}

func TestParseMappingPreservesOrder(t *testing.T) {
	doc := `
modelSheetName: T
sheets:
  zeta: {sheet: {name: Z, startRow: 1, referenceColumn: A}}
  alpha: {sheet: {name: A, startRow: 1, referenceColumn: A}}
  mid: {sheet: {name: M, startRow: 1, referenceColumn: A}}
`
	cfg, err := ParseMapping([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}

	var got []string
	for _, s := range cfg.Sheets {
		got = append(got, s.Key)
	}
	if strings.Join(got, ",") != "zeta,alpha,mid" {
		t.Errorf("Expected declaration order zeta,alpha,mid, got %v", got)
	}
}

func TestParseMappingErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{
			name:    "malformed yaml",
			doc:     "modelSheetName: [unclosed",
			message: "invalid mapping",
		},
		{
			name:    "missing model sheet",
			doc:     "sheets:\n  a: {sheet: {name: D, startRow: 1, referenceColumn: A}}",
			message: "missing modelSheetName",
		},
		{
			name:    "no sheets",
			doc:     "modelSheetName: T",
			message: "no sheets declared",
		},
		{
			name:    "missing sheet object",
			doc:     "modelSheetName: T\nsheets:\n  a: {name: D}",
			message: "missing sheet object",
		},
		{
			name:    "missing sheet name",
			doc:     "modelSheetName: T\nsheets:\n  a: {sheet: {startRow: 1, referenceColumn: A}}",
			message: "missing source sheet name",
		},
		{
			name:    "missing start row",
			doc:     "modelSheetName: T\nsheets:\n  a: {sheet: {name: D, referenceColumn: A}}",
			message: "missing startRow",
		},
		{
			name:    "zero start row",
			doc:     "modelSheetName: T\nsheets:\n  a: {sheet: {name: D, startRow: 0, referenceColumn: A}}",
			message: "startRow must be at least 1",
		},
		{
			name:    "missing reference column",
			doc:     "modelSheetName: T\nsheets:\n  a: {sheet: {name: D, startRow: 2}}",
			message: "sheets[a]: missing referenceColumn",
		},
		{
			name:    "bad target",
			doc:     "modelSheetName: T\nsheets:\n  - sheet: {name: D, startRow: 2, referenceColumn: A, mapping: [{source: B, target: C}]}",
			message: "sheets[0].mapping[0]: target",
		},
		{
			name:    "missing source",
			doc:     "modelSheetName: T\nsheets:\n  - sheet: {name: D, startRow: 2, referenceColumn: A, mapping: [{target: C1}]}",
			message: "missing source",
		},
		{
			name:    "sheets is a scalar",
			doc:     "modelSheetName: T\nsheets: nope",
			message: "expected a list or mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMapping([]byte(tt.doc))
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if !errors.Is(err, ErrInvalidMapping) {
				t.Errorf("Expected ErrInvalidMapping, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected error containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}
