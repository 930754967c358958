package rowsheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/models"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/parser"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/workbook"
)

// Job is a fully assembled mapping request.
type Job struct {
	Mapping  *models.MappingConfig
	Template *workbook.Workbook
	Source   *workbook.Workbook
}

// Validate reports the first missing input of the job.
func (j Job) Validate() error {
	switch {
	case j.Template == nil:
		return NewError(KindConfigMissing, "template", errors.New("template workbook not provided"))
	case j.Source == nil:
		return NewError(KindConfigMissing, "source", errors.New("source workbook not provided"))
	case j.Mapping == nil:
		return NewError(KindConfigMissing, "mapping", errors.New("mapping configuration not provided"))
	}
	return nil
}

// SheetResult lists the clones produced for one sheet spec.
type SheetResult struct {
	// Source is the source sheet name.
	Source string
	// Clones holds the clone names in creation order.
	Clones []string
}

// Result summarizes a run.
type Result struct {
	Sheets []SheetResult
}

// Clones returns the total number of sheets created.
func (r *Result) Clones() int {
	n := 0
	for _, s := range r.Sheets {
		n += len(s.Clones)
	}
	return n
}

// ParseMapping parses a mapping description, classifying failures as KindParse.
func ParseMapping(data []byte) (*models.MappingConfig, error) {
	cfg, err := parser.ParseMapping(data)
	if err != nil {
		return nil, NewError(KindParse, "mapping", err)
	}
	return cfg, nil
}

// Run maps every sheet spec of the job in order and stops at the first failure.
// The template workbook is modified in place.
func Run(job Job, opts Options) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, spec := range job.Mapping.Sheets {
		sr, err := MapSheet(job.Mapping, spec, job.Template, job.Source, opts)
		if err != nil {
			return result, err
		}
		result.Sheets = append(result.Sheets, sr)
	}
	return result, nil
}

// MapSheet clones the model sheet of the template once per source row of spec.
// Iteration stops at the stop row or at the first row whose reference cell is
// empty, whichever comes first.
func MapSheet(cfg *models.MappingConfig, spec models.SheetSpec, template, source *workbook.Workbook, opts Options) (SheetResult, error) {
	sr := SheetResult{Source: spec.SourceSheetName}
	log := opts.Logger.With().Str("sheet", spec.Label()).Logger()

	// Resolve sheets
	if err := template.CheckSheet(cfg.ModelSheetName); err != nil {
		return sr, wrap(cfg.ModelSheetName, err)
	}
	if err := source.CheckSheet(spec.SourceSheetName); err != nil {
		return sr, wrap(spec.SourceSheetName, err)
	}

	// Compute the row range
	stop := spec.StopRow
	if stop == 0 {
		last, err := source.LastRow(spec.SourceSheetName)
		if err != nil {
			return sr, wrap(spec.SourceSheetName, err)
		}
		stop = last + 1
	}
	log.Debug().Int("start", spec.StartRow).Int("stop", stop).Msg("mapping rows")

	for row := spec.StartRow; row < stop; row++ {
		if opts.Progress != nil {
			opts.Progress(Progress{Sheet: spec.SourceSheetName, Row: row, Start: spec.StartRow, Stop: stop})
		}

		ref, err := source.Text(spec.SourceSheetName, spec.ReferenceColumn+strconv.Itoa(row))
		if err != nil {
			return sr, wrap(spec.SourceSheetName, err)
		}
		ref = strings.TrimSpace(ref)
		if ref == "" {
			log.Debug().Int("row", row).Msg("empty reference, end of data")
			break
		}

		name := cloneName(template, ref, opts.Duplicates)
		if err := fillClone(cfg, spec, template, source, row, name); err != nil {
			return sr, err
		}

		sr.Clones = append(sr.Clones, name)
		log.Debug().Int("row", row).Str("clone", name).Msg("sheet cloned")
	}

	return sr, nil
}

// fillClone creates the clone for one source row and copies its fields.
func fillClone(cfg *models.MappingConfig, spec models.SheetSpec, template, source *workbook.Workbook, row int, name string) error {
	if err := template.CloneSheet(cfg.ModelSheetName, name); err != nil {
		return wrap(name, err)
	}

	if spec.RecordState != "" {
		if err := template.SetValue(name, RecordStateCell, spec.RecordState); err != nil {
			return wrap(name, err)
		}
	}
	if spec.TargetDomain != "" {
		if err := template.SetValue(name, DomainCell, spec.TargetDomain); err != nil {
			return wrap(name, err)
		}
	}

	for _, field := range spec.Fields {
		ref := field.SourceRef(row)
		value, err := source.Value(spec.SourceSheetName, ref)
		if err != nil {
			return wrap(spec.SourceSheetName+"!"+ref, err)
		}
		if err := template.SetValue(name, field.Target, value); err != nil {
			return wrap(name+"!"+field.Target, err)
		}
	}

	return wrap(name, template.SetActiveCell(name, HomeCell))
}

// cloneName returns the sheet name for a reference value under the given policy.
func cloneName(template *workbook.Workbook, ref string, policy DuplicatePolicy) string {
	if policy != DuplicateSuffix || !template.HasSheet(ref) {
		return ref
	}
	n := 2
	for template.HasSheet(withSuffix(ref, n)) {
		n++
	}
	return withSuffix(ref, n)
}

// withSuffix appends " (n)" to name, truncating name so the result stays
// within the sheet name length limit. The limit counts UTF-16 code units.
func withSuffix(name string, n int) string {
	suffix := fmt.Sprintf(" (%d)", n)
	limit := workbook.MaxSheetNameLength - utf16Len(suffix)
	runes := []rune(name)
	for len(runes) > 0 && utf16Len(string(runes)) > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + suffix
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
