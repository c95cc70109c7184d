package errors

import "fmt"

// ParseError reports malformed diagram source. Line is 1-indexed, Column
// and Offset are 0-indexed.
type ParseError struct {
	Format  string
	Line    int
	Column  int
	Offset  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Format, e.Line, e.Column, e.Message)
}

// ErrorCode returns ErrCodeParse.
func (e *ParseError) ErrorCode() Code { return ErrCodeParse }

// UnsupportedConstructError reports syntax that the parser recognizes but
// cannot represent faithfully in the AST.
type UnsupportedConstructError struct {
	Format    string
	Construct string
	Line      int
	Column    int
	Reason    string
}

// Error implements the error interface.
func (e *UnsupportedConstructError) Error() string {
	msg := fmt.Sprintf("%s:%d:%d: unsupported construct %q", e.Format, e.Line, e.Column, e.Construct)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ErrorCode returns ErrCodeUnsupported.
func (e *UnsupportedConstructError) ErrorCode() Code { return ErrCodeUnsupported }

// SelectorError reports an invalid selector, typically a regular expression
// or glob that does not compile.
type SelectorError struct {
	Field   string // attribute that failed, e.g. "text"
	Pattern string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SelectorError) Error() string {
	msg := "invalid selector"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Pattern != "" {
		msg += fmt.Sprintf(" %q", e.Pattern)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying compile error.
func (e *SelectorError) Unwrap() error { return e.Cause }

// ErrorCode returns ErrCodeSelector.
func (e *SelectorError) ErrorCode() Code { return ErrCodeSelector }
