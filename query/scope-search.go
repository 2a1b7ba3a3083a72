package query

import (
	"strings"
	"unicode"

	"github.com/neuronlabs/fancy/mapping"
)

// Search is the scope's search definition. A model matches the search if every term
// is contained (case insensitive) within at least one of the search fields.
type Search struct {
	Fields []*mapping.StructField
	Terms  []string
}

// ParseSearchTerms splits the search parameter value into the terms.
// The terms are separated with the whitespaces or commas. Null characters are removed.
func ParseSearchTerms(raw string) []string {
	raw = strings.Replace(raw, "\x00", "", -1)
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// NewSearch creates new search for the provided 'raw' search parameter value. Returns nil if
// no terms or fields are provided.
func NewSearch(raw string, fields []*mapping.StructField) *Search {
	terms := ParseSearchTerms(raw)
	if len(terms) == 0 || len(fields) == 0 {
		return nil
	}
	return &Search{Fields: fields, Terms: terms}
}
