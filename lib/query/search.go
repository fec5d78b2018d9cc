package query

import (
	"regexp"
	"strings"
	"unicode"
)

type Operator string

const OpEquals Operator = "="

// Term is one unit of a search string. A term without a key matches
// against the task name.
type Term struct {
	Key   string
	Op    Operator
	Value string
}

func (t Term) Keyed() bool { return t.Key != "" }

var termKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseSearchTerms splits text on whitespace and commas. "key:value"
// tokens become keyed terms, everything else is bare text.
func ParseSearchTerms(text string) []Term {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	terms := make([]Term, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, parseToken(tok))
	}
	return terms
}

func parseToken(tok string) Term {
	key, value, found := strings.Cut(tok, ":")
	if !found || value == "" || !termKey.MatchString(key) {
		return Term{Op: OpEquals, Value: tok}
	}
	return Term{Key: key, Op: OpEquals, Value: value}
}
