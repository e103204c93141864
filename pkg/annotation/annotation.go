// Package annotation parses @-annotations out of /** */ documentation
// comments and models the result.
//
// A doc comment such as
//
//	/**
//	 * @Route(path='/users', method=GET)
//	 * @Inject{repo}[Repository]
//	 */
//
// yields one Collection per target. Values are kept as raw strings and
// converted on read.
package annotation

import (
	"encoding/json"
	"strings"

	"github.com/toyz/docblock/pkg/scalar"
)

// Annotation is a single parsed annotation. It is immutable.
type Annotation struct {
	name   string
	typ    string
	target string
	values Values
}

// New creates an annotation. An empty typ means the annotation is not casted
// and its type equals its name.
func New(name, target string, values Values, typ string) *Annotation {
	if typ == "" {
		typ = name
	}
	return &Annotation{
		name:   name,
		typ:    typ,
		target: target,
		values: values.Clone(),
	}
}

// Name is the symbol written after @.
func (a *Annotation) Name() string { return a.name }

// Type is the casted type, or the name when no cast was given.
func (a *Annotation) Type() string { return a.typ }

func (a *Annotation) Target() string { return a.target }

// Values returns a copy of the raw values.
func (a *Annotation) Values() Values { return a.values.Clone() }

func (a *Annotation) HasValueByName(name string) bool { return a.values.Has(name) }

// ValueByName returns the named value converted to its Go type, or def when
// the value is absent. def is returned as given.
func (a *Annotation) ValueByName(name string, def any) any {
	raw, ok := a.values.Get(name)
	if !ok {
		return def
	}
	return coerce(raw)
}

// Raw returns the unconverted value.
func (a *Annotation) Raw(name string) (string, bool) { return a.values.Get(name) }

// HasValue reports whether the positional value is set.
func (a *Annotation) HasValue() bool { return a.values.Has(SingleValueKey) }

// Value returns the converted positional value, or nil.
func (a *Annotation) Value() any { return a.ValueByName(SingleValueKey, nil) }

// Scalar gives typed access to the raw value of name.
func (a *Annotation) Scalar(name string) scalar.Value {
	raw, ok := a.values.Get(name)
	if !ok {
		return scalar.Empty()
	}
	return scalar.Of(raw)
}

// Equal reports whether both annotations carry the same name, type, target
// and values in the same order.
func (a *Annotation) Equal(b *Annotation) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.name != b.name || a.typ != b.typ || a.target != b.target || a.values.Len() != b.values.Len() {
		return false
	}
	bn := b.values.Names()
	for i, k := range a.values.Names() {
		if bn[i] != k {
			return false
		}
		av, _ := a.values.Get(k)
		bv, _ := b.values.Get(k)
		if av != bv {
			return false
		}
	}
	return true
}

func (a *Annotation) String() string {
	var b strings.Builder
	b.WriteByte('@')
	b.WriteString(a.name)
	if a.typ != a.name {
		b.WriteByte('[')
		b.WriteString(a.typ)
		b.WriteByte(']')
	}
	if a.values.Len() > 0 {
		b.WriteByte('(')
		writeValues(&b, a.values)
		b.WriteByte(')')
	}
	return b.String()
}

type jsonAnnotation struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Target string      `json:"target"`
	Values []jsonValue `json:"values,omitempty"`
}

type jsonValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (a *Annotation) MarshalJSON() ([]byte, error) {
	out := jsonAnnotation{Name: a.name, Type: a.typ, Target: a.target}
	for k, v := range a.values.All() {
		out.Values = append(out.Values, jsonValue{Name: k, Value: v})
	}
	return json.Marshal(out)
}

// writeValues renders a lone positional value bare, everything else as k=v.
func writeValues(b *strings.Builder, v Values) {
	if v.onlySingle() {
		s, _ := v.Get(SingleValueKey)
		b.WriteString(s)
		return
	}
	i := 0
	for k, s := range v.All() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s)
		i++
	}
}

func coerce(raw string) any {
	if n := len(raw); n >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[n-1] == raw[0] {
		return raw[1 : n-1]
	}
	return scalar.ToType(raw)
}
