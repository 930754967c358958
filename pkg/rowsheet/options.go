// Package rowsheet copies rows of a source workbook into clones of a template
// sheet, driven by a mapping configuration.
package rowsheet

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DuplicatePolicy decides what happens when a clone name is already taken.
type DuplicatePolicy string

const (
	// DuplicateFail aborts the run with a KindDuplicateName error.
	DuplicateFail DuplicatePolicy = "fail"
	// DuplicateSuffix appends " (2)", " (3)", ... until the name is free.
	DuplicateSuffix DuplicatePolicy = "suffix"
)

// ParseDuplicatePolicy parses a policy name. An empty name selects DuplicateFail.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateFail:
		return DuplicateFail, nil
	case DuplicateSuffix:
		return DuplicateSuffix, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy: %s (must be fail or suffix)", s)
	}
}

// Fixed cells written on every clone.
const (
	// RecordStateCell receives SheetSpec.RecordState.
	RecordStateCell = "E6"
	// DomainCell receives SheetSpec.TargetDomain.
	DomainCell = "C9"
	// HomeCell is the active cell of clones and of the finalized workbook.
	HomeCell = "A1"
)

// Progress reports the row being visited by the mapper.
type Progress struct {
	// Sheet is the source sheet name.
	Sheet string
	// Row is the current source row.
	Row int
	// Start and Stop bound the row range, Stop exclusive.
	Start, Stop int
}

// Options configures mapping behavior.
type Options struct {
	// Duplicates selects the clone name collision policy. Empty means DuplicateFail.
	Duplicates DuplicatePolicy
	// Progress, if set, is called before each source row is read.
	Progress func(Progress)
	// Logger receives debug events. The zero value discards them.
	Logger zerolog.Logger
}

// DefaultOptions returns default mapping options.
func DefaultOptions() Options {
	return Options{
		Duplicates: DuplicateFail,
	}
}
