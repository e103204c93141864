package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// DocblockError is implemented by every error the tool reports to users.
type DocblockError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	ParseErrorCode
	SourceErrorCode
	CacheErrorCode
	ConfigurationErrorCode
	FileSystemErrorCode
	ServerErrorCode
)

func (e ErrorCode) String() string {
	switch e {
	case ParseErrorCode:
		return "ParseError"
	case SourceErrorCode:
		return "SourceError"
	case CacheErrorCode:
		return "CacheError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ServerErrorCode:
		return "ServerError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where an error occurred in source code
type SourceLocation struct {
	File   string // file path where error occurred
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the DocblockError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

func (e *BaseError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), msg)
}

func (e *BaseError) ErrorCode() ErrorCode { return e.Code }

func (e *BaseError) Location() SourceLocation { return e.Loc }

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

func (e *BaseError) Suggestions() []string { return e.Hints }

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error { return e.Cause }

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestions adds helpful suggestions
func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// MultipleErrors collects independent failures, e.g. one per declaration.
type MultipleErrors struct {
	Errors []DocblockError
}

func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{Errors: make([]DocblockError, 0)}
}

func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *MultipleErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

func (e *MultipleErrors) Add(err DocblockError) {
	e.Errors = append(e.Errors, err)
}

// Merge adds err, flattening collected errors. Plain errors are kept
// with an unknown code.
func (e *MultipleErrors) Merge(err error) {
	if err == nil {
		return
	}
	var multi *MultipleErrors
	var derr DocblockError
	switch {
	case stderrors.As(err, &multi):
		e.Errors = append(e.Errors, multi.Errors...)
	case stderrors.As(err, &derr):
		e.Add(derr)
	default:
		e.Add(Wrap(UnknownErrorCode, "unexpected failure", err))
	}
}

func (e *MultipleErrors) IsEmpty() bool { return len(e.Errors) == 0 }

func (e *MultipleErrors) Count() int { return len(e.Errors) }

// ErrOrNil returns nil when nothing was collected.
func (e *MultipleErrors) ErrOrNil() error {
	if e == nil || e.IsEmpty() {
		return nil
	}
	return e
}
