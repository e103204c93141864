package scalar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// listNode is the grammar for [a|b|c] and [k:v|k2:v2]; the brackets are optional.
type listNode struct {
	Open  bool        `parser:"@'['?"`
	Items []*itemNode `parser:"( @@ ( '|' @@ )* )?"`
	Close bool        `parser:"@']'?"`
}

type itemNode struct {
	Key  string    `parser:"@Text"`
	Pair *pairNode `parser:"@@?"`
}

type pairNode struct {
	Value string `parser:"':' @Text?"`
}

// rangeNode is the grammar for 1..5.
type rangeNode struct {
	From int `parser:"@Int '..'"`
	To   int `parser:"@Int"`
}

var (
	listParser = participle.MustBuild[listNode](
		participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
			{Name: "Punct", Pattern: `[\[\]|:]`},
			{Name: "Text", Pattern: `[^\[\]|:]+`},
		})),
		participle.UseLookahead(2),
	)

	rangeParser = participle.MustBuild[rangeNode](
		participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
			{Name: "Int", Pattern: `[-+]?[0-9]+`},
			{Name: "Dots", Pattern: `\.\.`},
			{Name: "Whitespace", Pattern: `\s+`},
		})),
		participle.Elide("Whitespace"),
	)
)

func parseList(raw string) (*listNode, error) {
	return listParser.ParseString("", raw)
}

func (n *listNode) bracketed() bool { return n.Open && n.Close }

func (n *listNode) hasPairs() bool {
	for _, item := range n.Items {
		if item.Pair != nil {
			return true
		}
	}
	return false
}

func (n *listNode) list() []string {
	out := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		out = append(out, strings.TrimSpace(item.Key))
	}
	return out
}

// mapping keys items without a name by their position among unnamed items.
func (n *listNode) mapping() map[string]string {
	out := make(map[string]string, len(n.Items))
	next := 0
	for _, item := range n.Items {
		if item.Pair == nil {
			out[strconv.Itoa(next)] = strings.TrimSpace(item.Key)
			next++
			continue
		}
		out[strings.TrimSpace(item.Key)] = strings.TrimSpace(item.Pair.Value)
	}
	return out
}

// MaxRangeSpan bounds how many integers a range may expand to. Wider
// ranges stay strings.
const MaxRangeSpan = 10000

var errRangeTooWide = errors.New("range too wide")

func parseRange(raw string) ([]int, error) {
	n, err := rangeParser.ParseString("", raw)
	if err != nil {
		return nil, err
	}
	// A negative difference means the subtraction overflowed.
	if span := max(n.From, n.To) - min(n.From, n.To); span < 0 || span >= MaxRangeSpan {
		return nil, fmt.Errorf("%w: %d..%d", errRangeTooWide, n.From, n.To)
	}
	step := 1
	if n.To < n.From {
		step = -1
	}
	out := make([]int, 0, abs(n.To-n.From)+1)
	for i := n.From; ; i += step {
		out = append(out, i)
		if i == n.To {
			break
		}
	}
	return out, nil
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
