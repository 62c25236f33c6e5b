package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestEngineErrorMessage(t *testing.T) {
	err := New(CategoryValidation, CodeEmptyTable, "table %s has no rows", "资产负债表")
	if !strings.Contains(err.Error(), "资产负债表") {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithSuggestion("check the input file")
	if !strings.Contains(err.Error(), "check the input file") {
		t.Errorf("suggestion not rendered: %q", err.Error())
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		category Category
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryReconciliation, 5},
		{Category("other"), 1},
	}
	for _, tt := range tests {
		err := New(tt.category, CodeProcessingError, "boom")
		if got := err.ExitCode(); got != tt.want {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(cause, CategoryParse, CodeInvalidFormat, "parse failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestWithContext(t *testing.T) {
	err := NewFileError(stderrors.New("no such file"), "/tmp/t.csv")
	if err.Context["path"] != "/tmp/t.csv" {
		t.Errorf("context = %v", err.Context)
	}
	if err.Category != CategoryFile {
		t.Errorf("category = %s", err.Category)
	}
}

func TestIsCategory(t *testing.T) {
	err := NewConfigError(CodeInvalidTolerance, "negative")
	if !IsCategory(err, CategoryConfiguration) {
		t.Error("config error not recognized")
	}
	if IsCategory(err, CategoryFile) {
		t.Error("category mismatch accepted")
	}
	if IsCategory(stderrors.New("plain"), CategoryFile) {
		t.Error("plain error matched a category")
	}
}

func TestAsEngineError(t *testing.T) {
	original := NewConfigError(CodeInvalidConfig, "bad")
	if got := AsEngineError(original); got != original {
		t.Error("existing EngineError not returned as-is")
	}

	plain := stderrors.New("plain failure")
	wrapped := AsEngineError(plain)
	if wrapped.Category != CategoryReconciliation || wrapped.Code != CodeProcessingError {
		t.Errorf("plain error wrapped as %s/%s", wrapped.Category, wrapped.Code)
	}
	if wrapped.ExitCode() != 5 {
		t.Errorf("exit code = %d, want 5", wrapped.ExitCode())
	}
}
