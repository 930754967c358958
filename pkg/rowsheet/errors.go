package rowsheet

import (
	"errors"
	"fmt"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/parser"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/workbook"
)

// Kind classifies the errors returned by this package.
// Kinds are errors themselves, so errors.Is(err, KindLookup) reports whether
// err is a lookup failure.
type Kind int

const (
	// KindConfigMissing indicates a required input was not supplied.
	KindConfigMissing Kind = iota + 1
	// KindParse indicates a malformed mapping or an unusable value.
	KindParse
	// KindLookup indicates a named sheet was not found.
	KindLookup
	// KindDuplicateName indicates a clone name collides with an existing sheet.
	KindDuplicateName
	// KindIO indicates a failure reading or writing a workbook.
	KindIO
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfigMissing:
		return "config missing"
	case KindParse:
		return "parse error"
	case KindLookup:
		return "lookup error"
	case KindDuplicateName:
		return "duplicate name"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error implements the error interface.
func (k Kind) Error() string { return k.String() }

// Error represents a classified failure.
type Error struct {
	Kind    Kind
	Subject string // sheet, input or path the error is about
	Err     error
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches an Error against its Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// NewError creates a new Error.
func NewError(kind Kind, subject string, err error) *Error {
	return &Error{
		Kind:    kind,
		Subject: subject,
		Err:     err,
	}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// wrap classifies err from the workbook and parser packages.
// Errors that are already classified are returned unchanged.
func wrap(subject string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return NewError(classify(err), subject, err)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, workbook.ErrSheetNotFound):
		return KindLookup
	case errors.Is(err, workbook.ErrSheetExists):
		return KindDuplicateName
	case errors.Is(err, workbook.ErrInvalidSheetName), errors.Is(err, parser.ErrInvalidMapping):
		return KindParse
	default:
		return KindIO
	}
}
