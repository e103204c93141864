package annotation

// Parser extracts annotations from doc comments. It holds no per-call state
// and is safe for concurrent use.
type Parser struct {
	reserved map[string]struct{}
}

type ParserOption func(*Parser)

// WithReservedNames adds tag names that are skipped like @param or @return.
func WithReservedNames(names ...string) ParserOption {
	return func(p *Parser) {
		for _, n := range names {
			p.reserved[n] = struct{}{}
		}
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{reserved: make(map[string]struct{}, len(reservedNames))}
	for _, n := range reservedNames {
		p.reserved[n] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses doc with the default reserved names.
func Parse(doc, target string) (map[string]*Collection, error) {
	return defaultParser.Parse(doc, target)
}

// Parse scans the interior of the /** */ comment doc and returns the
// annotations found, keyed by target. The map always contains target;
// annotations bound to a parameter with {name} are stored under target#name.
//
// The first six bytes (the opening delimiter and the indentation that
// follows it) and the last two bytes (the closing delimiter) are not scanned.
func (p *Parser) Parse(doc, target string) (map[string]*Collection, error) {
	result := map[string]*Collection{target: NewCollection(target)}
	cur := newCurrentAnnotation(target)
	st := stateDocblock
	word := make([]byte, 0, 64)

	for i, end := 6, len(doc)-2; i < end; i++ {
		c := doc[i]
		if !st.signals(c) {
			word = append(word, c)
			continue
		}

		next, err := p.transition(st, string(word), c, cur)
		if err != nil {
			return nil, err
		}
		switch next.action {
		case actionAppend:
			word = append(word, c)
			continue
		case actionIgnore:
			word = word[:0]
			st = stateDocblock
			cur = newCurrentAnnotation(target)
			continue
		}

		word = word[:0]
		st = next.next
		if st == stateDocblock {
			finalize(result, cur)
			cur = newCurrentAnnotation(target)
		}
	}

	switch st {
	case stateDocblock:
	case stateInAnnotation:
		finalize(result, cur)
	case stateAnnotationName:
		// A name running into the end of the comment ends like a line.
		next, err := p.transition(st, string(word), '\n', cur)
		if err != nil {
			return nil, err
		}
		if next.action == actionTransition {
			finalize(result, cur)
		}
	default:
		return nil, newParseError(Unterminated, cur, string(word),
			"annotation parser finished in wrong state for annotation %s@%s, annotation probably closed incorrectly, last state was %s",
			target, cur.name, st)
	}
	return result, nil
}

func finalize(result map[string]*Collection, cur *currentAnnotation) {
	if cur.name == "" {
		return
	}
	c, ok := result[cur.target]
	if !ok {
		c = NewCollection(cur.target)
		result[cur.target] = c
	}
	c.Add(cur.annotation())
}
