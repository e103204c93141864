package annotation

import "strings"

// reservedNames are standard documentation tags. They never produce an
// annotation. Matching is case sensitive.
var reservedNames = []string{
	"deprecated", "example", "ignore", "internal", "link", "method",
	"package", "param", "property", "property-read", "property-write",
	"return", "see", "since", "static", "subpackage", "throws", "todo",
	"type", "uses", "var", "version", "api",
	"author", "copyright", "license", "inheritdoc", "inheritDoc",
	"abstract", "final", "global", "category", "filesource", "source",
	"template", "mixin", "codeCoverageIgnore",
}

// reservedPrefixes mark tool specific tags such as @psalm-param.
var reservedPrefixes = []string{"psalm-", "phpstan-"}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (p *Parser) isReserved(name string) bool {
	if _, ok := p.reserved[name]; ok {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
