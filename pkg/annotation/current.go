package annotation

import "strings"

// currentAnnotation is the annotation being assembled while scanning.
type currentAnnotation struct {
	name           string
	typ            string
	target         string
	originalTarget string
	targetParam    string
	params         Values
	currentParam   string
	// pending collects a quoted value across escape sequences.
	pending strings.Builder
}

func newCurrentAnnotation(target string) *currentAnnotation {
	return &currentAnnotation{
		target:         target,
		originalTarget: target,
		currentParam:   SingleValueKey,
	}
}

func (c *currentAnnotation) register(name string) {
	c.name = name
	c.typ = name
}

func (c *currentAnnotation) bindArgument(arg string) {
	c.targetParam = arg
	c.target = c.originalTarget + "#" + arg
}

// store assigns value to the parameter currently accepting one and resets
// it to the positional slot.
func (c *currentAnnotation) store(value string) error {
	param := c.currentParam
	c.currentParam = SingleValueKey
	if param != SingleValueKey {
		c.params.Set(param, value)
		return nil
	}
	if c.params.Has(SingleValueKey) {
		return newParseError(DuplicateSingleValue, c, value,
			"error in annotation %s, contains two values without name", c)
	}
	if c.params.Len() > 0 {
		return newParseError(SingleValueAfterNamed, c, value,
			"error in annotation %s, contains value \"%s\" without a name after named values", c, value)
	}
	c.params.Set(SingleValueKey, value)
	return nil
}

func (c *currentAnnotation) annotation() *Annotation {
	return New(c.name, c.target, c.params, c.typ)
}

// String renders target@Name[Type]{arg}(params) for error messages.
func (c *currentAnnotation) String() string {
	var b strings.Builder
	b.WriteString(c.originalTarget)
	b.WriteByte('@')
	b.WriteString(c.name)
	if c.typ != c.name {
		b.WriteString("[" + c.typ + "]")
	}
	if c.targetParam != "" {
		b.WriteString("{" + c.targetParam + "}")
	}
	if c.params.Len() > 0 {
		b.WriteByte('(')
		writeValues(&b, c.params)
		b.WriteByte(')')
	}
	return b.String()
}
