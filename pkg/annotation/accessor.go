package annotation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/docblock/pkg/scalar"
)

// Get returns the converted value of property, or def when it is unset.
// An annotation holding only a positional value answers every property with it.
func (a *Annotation) Get(property string, def any) any {
	if a.values.onlySingle() {
		return a.Value()
	}
	return a.ValueByName(property, def)
}

// Is reports the boolean value of property. Unset properties are false.
func (a *Annotation) Is(property string) bool {
	if a.values.onlySingle() {
		s, _ := a.values.Get(SingleValueKey)
		return scalar.ToBool(s)
	}
	s, ok := a.values.Get(property)
	return ok && scalar.ToBool(s)
}

// Has reports whether property is set. "value" also matches a lone
// positional value.
func (a *Annotation) Has(property string) bool {
	if property == "value" && a.values.onlySingle() {
		return true
	}
	return a.values.Has(property)
}

// Invoke dispatches accessor style method names: the name of a value,
// getX(default), isX and hasX. The first letter of X is lower cased.
func (a *Annotation) Invoke(method string, args ...any) (any, error) {
	if raw, ok := a.values.Get(method); ok {
		return coerce(raw), nil
	}

	switch {
	case strings.HasPrefix(method, "get"):
		var def any
		if len(args) > 0 {
			def = args[0]
		}
		return a.Get(lowerFirst(method[3:]), def), nil
	case strings.HasPrefix(method, "is"):
		return a.Is(lowerFirst(method[2:])), nil
	case strings.HasPrefix(method, "has"):
		return a.Has(lowerFirst(method[3:])), nil
	}

	name := a.name
	if a.typ != a.name {
		name += "[" + a.typ + "]"
	}
	return nil, &AccessorError{Method: method, Annotation: name, Target: a.target}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
