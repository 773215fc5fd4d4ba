package typeexpr

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	nameCode
	pathCode
	hashCode
	slashCode
	arrayCode
	optionalCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	nameToken       = parsly.NewToken(nameCode, "Name", newNameMatcher())
	pathToken       = parsly.NewToken(pathCode, "Path", newPathMatcher())
	hashToken       = parsly.NewToken(hashCode, "#", matcher.NewByte('#'))
	slashToken      = parsly.NewToken(slashCode, "/", matcher.NewByte('/'))
	arrayToken      = parsly.NewToken(arrayCode, "[]", matcher.NewFragment("[]"))
	optionalToken   = parsly.NewToken(optionalCode, "?", matcher.NewByte('?'))
)

// Custom matchers
func newNameMatcher() parsly.Matcher {
	return &nameMatcher{}
}

func newPathMatcher() parsly.Matcher {
	return &pathMatcher{}
}

// nameMatcher matches a type, step or port identifier.
type nameMatcher struct{}

func (m *nameMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	// First character must be a letter or underscore
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}

	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '_' || c == '-' || c == '.' {
			matched++
			continue
		}
		break
	}

	return matched
}

// pathMatcher matches the document component of a qualified type reference,
// everything up to the fragment marker.
type pathMatcher struct{}

func (m *pathMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == '#' {
			break
		}
		matched++
	}

	if matched == 0 {
		return 0
	}

	return matched
}

// Helper functions
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
