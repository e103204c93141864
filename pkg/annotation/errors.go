package annotation

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every error returned from Parse.
	ErrParse = errors.New("annotation parse error")
	// ErrNotFound is matched by lookups for an annotation type a collection does not hold.
	ErrNotFound = errors.New("annotation not found")
	// ErrNoAccessor is matched by Invoke calls that name no known accessor.
	ErrNoAccessor = errors.New("annotation accessor does not exist")
)

// ErrorKind classifies malformed docblock input.
type ErrorKind int

const (
	EmptyName ErrorKind = iota
	InvalidName
	EmptyType
	InvalidType
	EmptyArgument
	InvalidArgument
	MissingEquals
	ParamStartsWithEquals
	InvalidParamName
	DuplicateSingleValue
	SingleValueAfterNamed
	Unterminated
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyName:
		return "EmptyName"
	case InvalidName:
		return "InvalidName"
	case EmptyType:
		return "EmptyType"
	case InvalidType:
		return "InvalidType"
	case EmptyArgument:
		return "EmptyArgument"
	case InvalidArgument:
		return "InvalidArgument"
	case MissingEquals:
		return "MissingEquals"
	case ParamStartsWithEquals:
		return "ParamStartsWithEquals"
	case InvalidParamName:
		return "InvalidParamName"
	case DuplicateSingleValue:
		return "DuplicateSingleValue"
	case SingleValueAfterNamed:
		return "SingleValueAfterNamed"
	case Unterminated:
		return "Unterminated"
	default:
		return "Unknown"
	}
}

// ParseError describes malformed annotation syntax.
type ParseError struct {
	Kind    ErrorKind
	Context string // in-progress annotation, e.g. Bar::someMethod()@Foo[Baz]
	Literal string // offending text, if any
	Msg     string
}

func (e *ParseError) Error() string { return e.Msg }

func (e *ParseError) Unwrap() error { return ErrParse }

func newParseError(kind ErrorKind, cur *currentAnnotation, literal, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Context: cur.String(),
		Literal: literal,
		Msg:     fmt.Sprintf(format, args...),
	}
}

// NotFoundError is returned by Collection.FirstNamed.
type NotFoundError struct {
	Type   string
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("can not find annotation %s for %s", e.Type, e.Target)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AccessorError is returned by Annotation.Invoke for unknown accessors.
type AccessorError struct {
	Method     string
	Annotation string
	Target     string
}

func (e *AccessorError) Error() string {
	return fmt.Sprintf("the value with name %q for annotation @%s at %s does not exist", e.Method, e.Annotation, e.Target)
}

func (e *AccessorError) Unwrap() error { return ErrNoAccessor }
