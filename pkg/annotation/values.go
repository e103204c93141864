package annotation

import "iter"

// SingleValueKey is the key under which an unnamed positional value is stored.
const SingleValueKey = "__value"

// Values holds raw parameter values in declaration order.
// The zero value is ready to use.
type Values struct {
	keys []string
	m    map[string]string
}

// Set stores value under name. Overwriting keeps the original position.
func (v *Values) Set(name, value string) {
	if v.m == nil {
		v.m = make(map[string]string)
	}
	if _, ok := v.m[name]; !ok {
		v.keys = append(v.keys, name)
	}
	v.m[name] = value
}

func (v Values) Get(name string) (string, bool) {
	s, ok := v.m[name]
	return s, ok
}

func (v Values) Has(name string) bool {
	_, ok := v.m[name]
	return ok
}

func (v Values) Len() int { return len(v.keys) }

// Names returns the parameter names in declaration order.
func (v Values) Names() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// All iterates name/value pairs in declaration order.
func (v Values) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range v.keys {
			if !yield(k, v.m[k]) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	var out Values
	for k, s := range v.All() {
		out.Set(k, s)
	}
	return out
}

// Map returns the values as a plain map. Order is lost.
func (v Values) Map() map[string]string {
	out := make(map[string]string, len(v.keys))
	for k, s := range v.All() {
		out[k] = s
	}
	return out
}

// onlySingle reports whether the positional value is the only value present.
func (v Values) onlySingle() bool {
	return len(v.keys) == 1 && v.keys[0] == SingleValueKey
}

// ValuesOf builds Values from alternating name/value pairs.
func ValuesOf(pairs ...string) Values {
	var v Values
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}
