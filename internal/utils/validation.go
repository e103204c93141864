package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Validator represents a validation function
type Validator[T any] func(T) error

// Problems collects every validation failure instead of stopping at the
// first one.
type Problems struct {
	errs []error
}

func (p *Problems) Add(err error) {
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

func (p *Problems) Len() int { return len(p.errs) }

// Fields lists the fields that failed, in order.
func (p *Problems) Fields() []string {
	var fields []string
	for _, err := range p.errs {
		var verr ValidationError
		if errors.As(err, &verr) {
			fields = append(fields, verr.Field)
		}
	}
	return fields
}

// Err joins the collected messages with "; ", or returns nil.
func (p *Problems) Err() error {
	if len(p.errs) == 0 {
		return nil
	}
	messages := make([]string, len(p.errs))
	for i, err := range p.errs {
		messages[i] = err.Error()
	}
	return errors.New(strings.Join(messages, "; "))
}

// Check runs validators against value and records their failures.
func Check[T any](p *Problems, value T, validators ...Validator[T]) {
	for _, validate := range validators {
		p.Add(validate(value))
	}
}

// CheckEach runs validators against every element of values.
func CheckEach[T any](p *Problems, values []T, validators ...Validator[T]) {
	for _, v := range values {
		Check(p, v, validators...)
	}
}

// Custom fails with message when valid returns false. A message holding a
// formatting verb receives the value.
func Custom[T any](field string, valid func(T) bool, message string) Validator[T] {
	return func(value T) error {
		if valid(value) {
			return nil
		}
		msg := message
		if strings.Contains(message, "%") {
			msg = fmt.Sprintf(message, value)
		}
		return ValidationError{Field: field, Value: value, Message: msg}
	}
}

// NotEmpty validates that a string is not empty
func NotEmpty(field, message string) Validator[string] {
	return Custom(field, func(s string) bool { return s != "" }, message)
}

// SliceNotEmpty validates that a slice has at least one element.
func SliceNotEmpty[T any](field, message string) Validator[[]T] {
	return Custom(field, func(s []T) bool { return len(s) > 0 }, message)
}

func Positive(field, message string) Validator[int] {
	return Custom(field, func(n int) bool { return n > 0 }, message)
}

// IsOneOf validates that a value is one of the allowed values
func IsOneOf[T comparable](field, message string, allowed ...T) Validator[T] {
	return Custom(field, func(value T) bool {
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}, message)
}
