package rowsheet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/parser"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/workbook"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err      *Error
		expected string
	}{
		{NewError(KindLookup, "Data", errors.New("sheet not found")), "lookup error (Data): sheet not found"},
		{NewError(KindIO, "", errors.New("disk full")), "io error: disk full"},
		{NewError(Kind(99), "", errors.New("boom")), "unknown error: boom"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.expected {
			t.Errorf("Error() = %q, expected %q", got, tt.expected)
		}
	}
}

func TestErrorIsKind(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("context: %w", NewError(KindDuplicateName, "Rec1", cause))

	if !errors.Is(err, KindDuplicateName) {
		t.Error("Expected errors.Is to match the kind")
	}
	if errors.Is(err, KindLookup) {
		t.Error("Expected errors.Is not to match another kind")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
	if KindOf(err) != KindDuplicateName {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if KindOf(cause) != 0 {
		t.Errorf("KindOf(unclassified) = %v, expected 0", KindOf(cause))
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"sheet not found", fmt.Errorf("%w: x", workbook.ErrSheetNotFound), KindLookup},
		{"sheet exists", fmt.Errorf("%w: x", workbook.ErrSheetExists), KindDuplicateName},
		{"invalid sheet name", fmt.Errorf("%w: x", workbook.ErrInvalidSheetName), KindParse},
		{"invalid mapping", fmt.Errorf("%w: x", parser.ErrInvalidMapping), KindParse},
		{"other", errors.New("read failed"), KindIO},
		{"already classified", NewError(KindConfigMissing, "source", errors.New("x")), KindConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(wrap("subject", tt.err)); got != tt.kind {
				t.Errorf("wrap kind = %v, expected %v", got, tt.kind)
			}
		})
	}

	if wrap("subject", nil) != nil {
		t.Error("wrap(nil) must be nil")
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected DuplicatePolicy
		wantErr  bool
	}{
		{"", DuplicateFail, false},
		{"fail", DuplicateFail, false},
		{"suffix", DuplicateSuffix, false},
		{"rename", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuplicatePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
