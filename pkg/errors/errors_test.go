package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidLens, "test message: %s", "value")

	if err.Code != ErrCodeInvalidLens {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidLens)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_LENS: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidConfig, cause, "failed to load")

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "INVALID_CONFIG: failed to load: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeParse,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInvalidLens, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeInvalidLens,
			expected: true,
		},
		{
			name:     "parse error behind fmt wrapping",
			err:      fmt.Errorf("read diagram: %w", &ParseError{Format: "mermaid", Line: 3}),
			code:     ErrCodeParse,
			expected: true,
		},
		{
			name:     "selector error",
			err:      &SelectorError{Field: "text", Pattern: "("},
			code:     ErrCodeSelector,
			expected: true,
		},
		{
			name:     "unsupported construct",
			err:      &UnsupportedConstructError{Construct: "return"},
			code:     ErrCodeUnsupported,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidFormat, "test"),
			expected: ErrCodeInvalidFormat,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Format: "plantuml", Line: 4, Column: 2, Message: "unexpected \"end\""}
	expected := `plantuml:4:2: unexpected "end"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestSelectorErrorMessage(t *testing.T) {
	cause := errors.New("missing closing )")
	err := &SelectorError{Field: "text", Pattern: "(a", Cause: cause}

	expected := `invalid selector text "(a": missing closing )`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("SelectorError should unwrap to its cause")
	}
}

func TestUnsupportedConstructErrorMessage(t *testing.T) {
	err := &UnsupportedConstructError{Format: "mermaid", Construct: "properties", Line: 7, Reason: "no AST representation"}
	expected := `mermaid:7:0: unsupported construct "properties": no AST representation`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}
