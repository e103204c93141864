package annotation

import (
	"encoding/json"
	"iter"
)

// Collection holds every annotation of one target, grouped by type.
type Collection struct {
	target string
	types  []string
	byType map[string][]*Annotation
}

func NewCollection(target string) *Collection {
	return &Collection{
		target: target,
		byType: make(map[string][]*Annotation),
	}
}

func (c *Collection) Target() string { return c.target }

// Add appends a and returns the collection for chaining.
func (c *Collection) Add(a *Annotation) *Collection {
	if _, ok := c.byType[a.Type()]; !ok {
		c.types = append(c.types, a.Type())
	}
	c.byType[a.Type()] = append(c.byType[a.Type()], a)
	return c
}

func (c *Collection) Contain(typ string) bool {
	return len(c.byType[typ]) > 0
}

// FirstNamed returns the first annotation of typ.
func (c *Collection) FirstNamed(typ string) (*Annotation, error) {
	if list := c.byType[typ]; len(list) > 0 {
		return list[0], nil
	}
	return nil, &NotFoundError{Type: typ, Target: c.target}
}

// Named returns all annotations of typ. The result is never nil.
func (c *Collection) Named(typ string) []*Annotation {
	list := c.byType[typ]
	out := make([]*Annotation, len(list))
	copy(out, list)
	return out
}

// All yields every annotation, grouped by type in the order types were first
// added and in insertion order within a type.
func (c *Collection) All() iter.Seq[*Annotation] {
	return func(yield func(*Annotation) bool) {
		for _, t := range c.types {
			for _, a := range c.byType[t] {
				if !yield(a) {
					return
				}
			}
		}
	}
}

// Types lists the annotation types present in first-insertion order.
func (c *Collection) Types() []string {
	out := make([]string, len(c.types))
	copy(out, c.types)
	return out
}

func (c *Collection) Count() int {
	n := 0
	for _, list := range c.byType {
		n += len(list)
	}
	return n
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	out := struct {
		Target      string        `json:"target"`
		Annotations []*Annotation `json:"annotations"`
	}{Target: c.target, Annotations: []*Annotation{}}
	for a := range c.All() {
		out.Annotations = append(out.Annotations, a)
	}
	return json.Marshal(out)
}
