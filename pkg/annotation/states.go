package annotation

import (
	"regexp"
	"strings"
)

type state int

const (
	stateDocblock state = iota
	stateInAnnotation
	stateAnnotationName
	stateAnnotationType
	stateAnnotationForArgument
	stateParamName
	stateParamValue
	stateSingleQuoted
	stateDoubleQuoted
	stateSingleQuotedEscape
	stateDoubleQuotedEscape
)

func (s state) String() string {
	switch s {
	case stateDocblock:
		return "Docblock"
	case stateInAnnotation:
		return "InAnnotation"
	case stateAnnotationName:
		return "AnnotationName"
	case stateAnnotationType:
		return "AnnotationType"
	case stateAnnotationForArgument:
		return "AnnotationForArgument"
	case stateParamName:
		return "ParamName"
	case stateParamValue:
		return "ParamValue"
	case stateSingleQuoted:
		return "SingleQuotedParamValue"
	case stateDoubleQuoted:
		return "DoubleQuotedParamValue"
	case stateSingleQuotedEscape:
		return "SingleQuotedEscape"
	case stateDoubleQuotedEscape:
		return "DoubleQuotedEscape"
	default:
		return "Unknown"
	}
}

// signals reports whether c ends the current word in state s.
func (s state) signals(c byte) bool {
	switch s {
	case stateDocblock:
		return c == '@'
	case stateAnnotationName:
		return c == ' ' || c == '\n' || c == '\r' || c == '{' || c == '[' || c == '('
	case stateInAnnotation:
		return c == '\n' || c == '{' || c == '[' || c == '('
	case stateAnnotationType:
		return c == ']'
	case stateAnnotationForArgument:
		return c == '}'
	case stateParamName:
		return c == '\'' || c == '"' || c == '=' || c == ')'
	case stateParamValue:
		return c == '\'' || c == '"' || c == ',' || c == ')'
	case stateSingleQuoted:
		return c == '\'' || c == '\\'
	case stateDoubleQuoted:
		return c == '"' || c == '\\'
	case stateSingleQuotedEscape, stateDoubleQuotedEscape:
		return true
	}
	return false
}

type action int

const (
	// actionTransition clears the word and moves to the next state.
	actionTransition action = iota
	// actionAppend keeps the signal as part of the word.
	actionAppend
	// actionIgnore drops the annotation and returns to Docblock.
	actionIgnore
)

type step struct {
	action action
	next   state
}

func to(next state) step { return step{action: actionTransition, next: next} }

var (
	appendSignal = step{action: actionAppend}
	ignore       = step{action: actionIgnore, next: stateDocblock}
)

// paramPadding surrounds parameter names in multi-line lists.
const paramPadding = " \t\r\n,*"

// continuation matches a trailing line break with its leading asterisk.
var continuation = regexp.MustCompile(`(\r?\n[ \t]*\*?[ \t]*)+$`)

func trimValue(word string) string {
	return strings.TrimSpace(continuation.ReplaceAllString(word, ""))
}

func quotedState(c byte) state {
	if c == '"' {
		return stateDoubleQuoted
	}
	return stateSingleQuoted
}

func (p *Parser) transition(s state, word string, c byte, cur *currentAnnotation) (step, error) {
	switch s {
	case stateDocblock:
		return to(stateAnnotationName), nil

	case stateAnnotationName:
		if word != "" {
			if p.isReserved(word) {
				return ignore, nil
			}
			if !isIdentifier(word) {
				return step{}, newParseError(InvalidName, cur, word,
					"annotation name for %s must start with a letter or underscore and may contain letters, underscores and numbers, but contains an invalid character: @%s", cur, word)
			}
			cur.register(word)
		}
		if c == ' ' {
			if word == "" {
				return to(stateDocblock), nil
			}
			return to(stateInAnnotation), nil
		}
		if word == "" {
			return step{}, newParseError(EmptyName, cur, "", "annotation name for %s can not be empty", cur)
		}
		return to(afterDeclaration(c)), nil

	case stateInAnnotation:
		return to(afterDeclaration(c)), nil

	case stateAnnotationType:
		if word == "" {
			return step{}, newParseError(EmptyType, cur, "", "annotation type for %s can not be empty", cur)
		}
		if !isIdentifier(word) {
			return step{}, newParseError(InvalidType, cur, word,
				"annotation type for %s must start with a letter or underscore and may contain letters, underscores and numbers, but contains an invalid character: %s", cur, word)
		}
		cur.typ = word
		return to(stateInAnnotation), nil

	case stateAnnotationForArgument:
		if word == "" {
			return step{}, newParseError(EmptyArgument, cur, "", "argument name for annotation %s is empty", cur)
		}
		if !isIdentifier(word) {
			return step{}, newParseError(InvalidArgument, cur, word,
				"argument name for annotation %s is not a valid parameter name: %s", cur, word)
		}
		cur.bindArgument(word)
		return to(stateInAnnotation), nil

	case stateParamName:
		name := strings.Trim(word, paramPadding)
		switch c {
		case '\'', '"':
			if name != "" {
				return step{}, newParseError(MissingEquals, cur, name,
					"annotation parameter \"%s\" for %s may contain letters, underscores and numbers, but contains %c. Probably an equal sign is missing", name, cur, c)
			}
			cur.currentParam = SingleValueKey
			return to(quotedState(c)), nil
		case '=':
			if name == "" {
				return step{}, newParseError(ParamStartsWithEquals, cur, "=",
					"annotation parameter for %s has to start with a letter or underscore, but starts with \"=\"", cur)
			}
			if !isIdentifier(name) {
				return step{}, newParseError(InvalidParamName, cur, name,
					"annotation parameter for %s must start with a letter or underscore and contain letters, underscores and numbers, but contains an invalid character: %s", cur, name)
			}
			cur.currentParam = name
			return to(stateParamValue), nil
		default:
			if name != "" {
				if err := cur.store(name); err != nil {
					return step{}, err
				}
			}
			return to(stateDocblock), nil
		}

	case stateParamValue:
		switch c {
		case '\'', '"':
			if strings.TrimSpace(word) != "" {
				return appendSignal, nil
			}
			return to(quotedState(c)), nil
		case ',':
			if err := cur.store(trimValue(word)); err != nil {
				return step{}, err
			}
			return to(stateParamName), nil
		default:
			if err := cur.store(trimValue(word)); err != nil {
				return step{}, err
			}
			return to(stateDocblock), nil
		}

	case stateSingleQuoted, stateDoubleQuoted:
		cur.pending.WriteString(word)
		if c == '\\' {
			if s == stateSingleQuoted {
				return to(stateSingleQuotedEscape), nil
			}
			return to(stateDoubleQuotedEscape), nil
		}
		value := cur.pending.String()
		cur.pending.Reset()
		if err := cur.store(value); err != nil {
			return step{}, err
		}
		return to(stateParamName), nil

	case stateSingleQuotedEscape, stateDoubleQuotedEscape:
		back, quote := stateSingleQuoted, byte('\'')
		if s == stateDoubleQuotedEscape {
			back, quote = stateDoubleQuoted, '"'
		}
		if c != quote && c != '\\' {
			cur.pending.WriteByte('\\')
		}
		cur.pending.WriteByte(c)
		return to(back), nil
	}
	return step{}, newParseError(Unterminated, cur, "", "annotation parser reached unknown state %d", int(s))
}

// afterDeclaration maps the signals shared by AnnotationName and InAnnotation.
func afterDeclaration(c byte) state {
	switch c {
	case '{':
		return stateAnnotationForArgument
	case '[':
		return stateAnnotationType
	case '(':
		return stateParamName
	default:
		return stateDocblock
	}
}
