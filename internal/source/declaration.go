// Package source finds documented declarations in source files and turns
// them into (doc comment, target) pairs for the annotation parser.
//
// Targets follow one notation regardless of language:
//
//	Class                 a type
//	Class::method()       a method
//	Class->property       an instance property or struct field
//	Class::$property      a static property or package variable
//	function()            a free function
//	function()#param      a parameter of a function or method
package source

import (
	"sort"
	"strings"
)

type Kind int

const (
	KindClass Kind = iota
	KindFunction
	KindMethod
	KindProperty
	KindStaticProperty
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindStaticProperty:
		return "static property"
	default:
		return "unknown"
	}
}

// Declaration is one documented element of a source file.
type Declaration struct {
	Kind   Kind
	Target string
	// Doc is the doc comment in /** ... */ form, or empty.
	Doc    string
	Params []string
	// Owner is the target of the enclosing class for methods and properties.
	Owner string
	Name  string
	File  string
	Line  int
}

// ParamTarget returns the target of the named parameter.
func (d Declaration) ParamTarget(param string) string {
	return d.Target + "#" + param
}

// ParamTargets returns the targets of every parameter in declaration order.
func (d Declaration) ParamTargets() []string {
	targets := make([]string, len(d.Params))
	for i, p := range d.Params {
		targets[i] = d.ParamTarget(p)
	}
	return targets
}

// Set is an ordered collection of declarations indexed by target.
type Set struct {
	decls    []Declaration
	byTarget map[string]int
}

func NewSet(decls ...Declaration) *Set {
	s := &Set{byTarget: make(map[string]int, len(decls))}
	s.Add(decls...)
	return s
}

// Add appends declarations. A declaration whose target is already present
// replaces the earlier one in place.
func (s *Set) Add(decls ...Declaration) {
	for _, d := range decls {
		if i, ok := s.byTarget[d.Target]; ok {
			s.decls[i] = d
			continue
		}
		s.byTarget[d.Target] = len(s.decls)
		s.decls = append(s.decls, d)
	}
}

// RemoveFile drops every declaration that came from file.
func (s *Set) RemoveFile(file string) []Declaration {
	var removed []Declaration
	kept := s.decls[:0]
	for _, d := range s.decls {
		if d.File == file {
			removed = append(removed, d)
			continue
		}
		kept = append(kept, d)
	}
	s.decls = kept
	s.byTarget = make(map[string]int, len(kept))
	for i, d := range kept {
		s.byTarget[d.Target] = i
	}
	return removed
}

func (s *Set) All() []Declaration {
	return append([]Declaration(nil), s.decls...)
}

func (s *Set) Len() int { return len(s.decls) }

// Lookup finds a declaration by target. Parameter targets resolve to the
// declaring function.
func (s *Set) Lookup(target string) (Declaration, bool) {
	if i, ok := s.byTarget[target]; ok {
		return s.decls[i], true
	}
	if owner, _, found := strings.Cut(target, "#"); found {
		if i, ok := s.byTarget[owner]; ok {
			return s.decls[i], true
		}
	}
	return Declaration{}, false
}

// Methods returns the methods declared on owner.
func (s *Set) Methods(owner string) []Declaration {
	return s.filter(func(d Declaration) bool {
		return d.Owner == owner && d.Kind == KindMethod
	})
}

// Properties returns instance and static properties declared on owner.
func (s *Set) Properties(owner string) []Declaration {
	return s.filter(func(d Declaration) bool {
		return d.Owner == owner && (d.Kind == KindProperty || d.Kind == KindStaticProperty)
	})
}

// Parameters returns the parameter targets of the function or method target.
func (s *Set) Parameters(target string) []string {
	d, ok := s.Lookup(target)
	if !ok {
		return nil
	}
	return d.ParamTargets()
}

// Targets returns every declaration and parameter target, sorted.
func (s *Set) Targets() []string {
	targets := make([]string, 0, len(s.decls))
	for _, d := range s.decls {
		targets = append(targets, d.Target)
		targets = append(targets, d.ParamTargets()...)
	}
	sort.Strings(targets)
	return targets
}

func (s *Set) filter(keep func(Declaration) bool) []Declaration {
	var out []Declaration
	for _, d := range s.decls {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// docblock renders comment lines as a /** */ block.
func docblock(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("/**\n")
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(" *\n")
			continue
		}
		b.WriteString(" * ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(" */")
	return b.String()
}
