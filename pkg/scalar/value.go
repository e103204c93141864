package scalar

// Value wraps a possibly absent raw value for typed access.
type Value struct {
	raw     string
	present bool
}

func Of(raw string) Value { return Value{raw: raw, present: true} }

// Empty is a value that was never set. Every accessor returns its zero value.
func Empty() Value { return Value{} }

func (v Value) IsEmpty() bool { return !v.present }

func (v Value) String() string { return v.raw }

func (v Value) Int() int {
	if !v.present {
		return 0
	}
	return ToInt(v.raw)
}

func (v Value) Float() float64 {
	if !v.present {
		return 0
	}
	return ToFloat(v.raw)
}

func (v Value) Bool() bool {
	return v.present && ToBool(v.raw)
}

func (v Value) List() []string {
	if !v.present {
		return nil
	}
	return ToList(v.raw)
}

func (v Value) Map() map[string]string {
	if !v.present {
		return nil
	}
	return ToMap(v.raw)
}

func (v Value) Range() []int {
	if !v.present {
		return nil
	}
	return ToRange(v.raw)
}

// Any returns the value classified by ToType, or nil when absent.
func (v Value) Any() any {
	if !v.present {
		return nil
	}
	return ToType(v.raw)
}
