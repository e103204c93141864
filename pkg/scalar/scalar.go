// Package scalar turns raw annotation values into Go values.
//
// Values are classified in a fixed order: null, booleans, integers, floats,
// ranges (1..5), bracketed lists ([a|b]) and maps ([k:v|k2:v2]). Anything
// else is returned as the original string.
package scalar

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	intPattern   = regexp.MustCompile(`^[-+]?[0-9]+$`)
	floatPattern = regexp.MustCompile(`^[-+]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][-+]?[0-9]+)?$`)
	rangePattern = regexp.MustCompile(`^\s*[-+]?[0-9]+\s*\.\.\s*[-+]?[0-9]+\s*$`)
)

var (
	trueWords  = []string{"true", "yes", "on"}
	falseWords = []string{"false", "no", "off"}
)

// ToType returns the most specific Go value for raw.
func ToType(raw string) any {
	s := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(s, "null"):
		return nil
	case oneOf(s, trueWords):
		return true
	case oneOf(s, falseWords):
		return false
	case intPattern.MatchString(s):
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case floatPattern.MatchString(s):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case rangePattern.MatchString(s):
		if r, err := parseRange(s); err == nil {
			return r
		}
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		if n, err := parseList(s); err == nil && n.bracketed() {
			if n.hasPairs() {
				return n.mapping()
			}
			return n.list()
		}
	}
	return raw
}

// ToBool reports whether raw is one of true, yes or on.
func ToBool(raw string) bool {
	return oneOf(strings.TrimSpace(raw), trueWords)
}

// ToInt converts raw to an int. Floats are truncated, anything else is 0.
func ToInt(raw string) int {
	s := strings.TrimSpace(raw)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func ToFloat(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

// ToList splits a pipe separated list, optionally enclosed in brackets.
// An empty input yields an empty list.
func ToList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	n, err := parseList(strings.TrimSpace(raw))
	if err != nil {
		return []string{raw}
	}
	return n.list()
}

// ToMap parses k:v pairs separated by pipes. Entries without a key are
// stored under their position among the unkeyed entries.
func ToMap(raw string) map[string]string {
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}
	}
	n, err := parseList(strings.TrimSpace(raw))
	if err != nil {
		return map[string]string{"0": raw}
	}
	return n.mapping()
}

// ToRange expands from..to into every integer in between, inclusive.
// Ranges wider than MaxRangeSpan yield an empty slice.
func ToRange(raw string) []int {
	r, err := parseRange(raw)
	if err != nil {
		return []int{}
	}
	return r
}

func oneOf(s string, words []string) bool {
	for _, w := range words {
		if strings.EqualFold(s, w) {
			return true
		}
	}
	return false
}
