package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
)

const testMapping = `
modelSheetName: Template
sheets:
  a:
    sheet:
      name: Data
      startRow: 2
      referenceColumn: A
      recordState: DRAFT
      mapping:
        - source: B
          target: C10
`

type fixture struct {
	dir      string
	template string
	source   string
	mapping  string
	output   string
}

func saveWorkbook(t *testing.T, path, sheet string, cells map[string]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("Failed to rename sheet: %v", err)
	}
	for cell, v := range cells {
		f.SetCellValue(sheet, cell, v)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save %s: %v", path, err)
	}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	fx := fixture{
		dir:      dir,
		template: filepath.Join(dir, "template.xlsx"),
		source:   filepath.Join(dir, "source.xlsx"),
		mapping:  filepath.Join(dir, "mapping.yaml"),
		output:   filepath.Join(dir, "generated.xlsx"),
	}
	saveWorkbook(t, fx.template, "Template", map[string]interface{}{"A1": "Record"})
	saveWorkbook(t, fx.source, "Data", map[string]interface{}{
		"A2": "Rec1", "B2": "x",
		"A3": "Rec2", "B3": "y",
		"B4": "z",
	})
	if err := os.WriteFile(fx.mapping, []byte(testMapping), 0644); err != nil {
		t.Fatalf("Failed to write mapping: %v", err)
	}
	return fx
}

func (fx fixture) args(extra ...string) []string {
	args := []string{"-t", fx.template, "-s", fx.source, "-m", fx.mapping, "-o", fx.output}
	return append(args, extra...)
}

func execute(t *testing.T, args []string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetErr(&stderr)
	cmd.SetOut(&stderr)
	err := cmd.Execute()
	return stderr.String(), err
}

func TestConvertCommand(t *testing.T) {
	fx := newFixture(t)

	out, err := execute(t, fx.args("-v"))
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if !strings.Contains(out, "File successfully generated: "+fx.output) {
		t.Errorf("Expected a success message, got %q", out)
	}

	f, err := excelize.OpenFile(fx.output)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()

	if got := strings.Join(f.GetSheetList(), ","); got != "Template,Rec1,Rec2" {
		t.Errorf("Unexpected sheets %s", got)
	}
	if v, _ := f.GetCellValue("Rec1", "C10"); v != "x" {
		t.Errorf("Expected Rec1!C10 = x, got %q", v)
	}
	if v, _ := f.GetCellValue("Rec2", rowsheet.RecordStateCell); v != "DRAFT" {
		t.Errorf("Expected record state DRAFT, got %q", v)
	}
	if idx := f.GetActiveSheetIndex(); idx != 0 {
		t.Errorf("Expected the first sheet active, got %d", idx)
	}
}

func TestConvertCommandMissingInputs(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name    string
		args    []string
		subject string
	}{
		{"no arguments", nil, "templateFile"},
		{"missing source", []string{"-t", fx.template, "-m", fx.mapping, "-o", fx.output}, "sourceFile"},
		{"missing mapping", []string{"-t", fx.template, "-s", fx.source, "-o", fx.output}, "mappingFile"},
		{"missing output", []string{"-t", fx.template, "-s", fx.source, "-m", fx.mapping}, "outputFile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args)
			var e *rowsheet.Error
			if !errors.As(err, &e) || e.Kind != rowsheet.KindConfigMissing || e.Subject != tt.subject {
				t.Errorf("Expected config missing for %s, got %v", tt.subject, err)
			}
		})
	}

	if _, err := os.Stat(fx.output); !os.IsNotExist(err) {
		t.Error("No output must be written when inputs are missing")
	}
}

func TestConvertCommandFailureLeavesNoOutput(t *testing.T) {
	fx := newFixture(t)
	bad := strings.Replace(testMapping, "name: Data", "name: Missing", 1)
	if err := os.WriteFile(fx.mapping, []byte(bad), 0644); err != nil {
		t.Fatalf("Failed to write mapping: %v", err)
	}

	_, err := execute(t, fx.args())
	if !errors.Is(err, rowsheet.KindLookup) {
		t.Fatalf("Expected a lookup error, got %v", err)
	}
	if _, err := os.Stat(fx.output); !os.IsNotExist(err) {
		t.Error("No output must be written on failure")
	}
}

func TestConvertCommandSettingsFile(t *testing.T) {
	fx := newFixture(t)
	settings := filepath.Join(fx.dir, "settings.toml")
	content := "template_file = \"" + filepath.ToSlash(fx.template) + "\"\n" +
		"source_file = \"" + filepath.ToSlash(fx.source) + "\"\n" +
		"mapping_file = \"" + filepath.ToSlash(fx.mapping) + "\"\n" +
		"output_file = \"" + filepath.ToSlash(filepath.Join(fx.dir, "from-file.xlsx")) + "\"\n"
	if err := os.WriteFile(settings, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	// The output flag overrides the settings file
	if _, err := execute(t, []string{"--config", settings, "-o", fx.output}); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if _, err := os.Stat(fx.output); err != nil {
		t.Errorf("Expected output at the flag path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fx.dir, "from-file.xlsx")); !os.IsNotExist(err) {
		t.Error("Settings file must not override an explicit flag")
	}
}

func TestConvertCommandDuplicates(t *testing.T) {
	fx := newFixture(t)
	if _, err := execute(t, fx.args()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Using the generated workbook as template makes every clone name collide
	second := filepath.Join(fx.dir, "second.xlsx")
	args := []string{"-t", fx.output, "-s", fx.source, "-m", fx.mapping, "-o", second}
	if _, err := execute(t, args); !errors.Is(err, rowsheet.KindDuplicateName) {
		t.Fatalf("Expected a duplicate name error, got %v", err)
	}

	if _, err := execute(t, append(args, "--duplicates", "suffix")); err != nil {
		t.Fatalf("Suffix run failed: %v", err)
	}
	f, err := excelize.OpenFile(second)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("Rec1 (2)"); idx < 0 {
		t.Errorf("Expected a suffixed clone, got %v", f.GetSheetList())
	}
}

func TestConvertCommandInvalidPolicy(t *testing.T) {
	fx := newFixture(t)
	if _, err := execute(t, fx.args("--duplicates", "rename")); err == nil {
		t.Error("Expected an error for an unknown policy")
	}
}
