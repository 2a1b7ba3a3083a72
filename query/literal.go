package query

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/neuronlabs/fancy/errors"
)

// LiteralEval evaluates the literal expression 's'. It supports tuples '(1, 2)', lists '[1, 2]',
// single or double quoted strings, integers, floats and the 'True', 'False', 'None' constants
// (together with their lowercase 'true', 'false', 'null' forms).
// A top level comma separated sequence '1,2' results in a tuple. Tuples and lists are returned
// as []interface{}. Unquoted words that are not numbers nor constants are returned as strings.
func LiteralEval(s string) (interface{}, error) {
	p := &literalParser{input: []rune(s)}
	value, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}
	return value, nil
}

// literalSeparators are the runes that ends the unquoted literal.
const literalSeparators = ",()[]'\""

type literalParser struct {
	input []rune
	pos   int
}

func (p *literalParser) parseTopLevel() (interface{}, error) {
	p.skipSpaces()
	if p.end() {
		return nil, p.errorf("empty literal")
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.end() {
		return first, nil
	}
	if p.current() != ',' {
		return nil, p.errorf("unexpected character: '%c'", p.current())
	}

	values := []interface{}{first}
	for !p.end() {
		if p.current() != ',' {
			return nil, p.errorf("expected ',' but got: '%c'", p.current())
		}
		p.pos++
		p.skipSpaces()
		if p.end() {
			break
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		p.skipSpaces()
	}
	return values, nil
}

func (p *literalParser) parseValue() (interface{}, error) {
	switch c := p.current(); c {
	case '(':
		return p.parseSequence(')')
	case '[':
		return p.parseSequence(']')
	case '\'', '"':
		return p.parseString(c)
	case ')', ']', ',':
		return nil, p.errorf("unexpected character: '%c'", c)
	}
	return p.parseBare()
}

// parseSequence parses the tuple or list. A parenthesized single value without
// the trailing comma is not a tuple, but the value itself.
func (p *literalParser) parseSequence(closing rune) (interface{}, error) {
	p.pos++
	values := []interface{}{}
	var hasComma bool
	for {
		p.skipSpaces()
		if p.end() {
			return nil, p.errorf("missing closing: '%c'", closing)
		}
		if p.current() == closing {
			p.pos++
			break
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		p.skipSpaces()
		if p.end() {
			return nil, p.errorf("missing closing: '%c'", closing)
		}
		switch p.current() {
		case ',':
			hasComma = true
			p.pos++
		case closing:
		default:
			return nil, p.errorf("unexpected character: '%c'", p.current())
		}
	}
	if closing == ')' && len(values) == 1 && !hasComma {
		return values[0], nil
	}
	return values, nil
}

func (p *literalParser) parseString(quote rune) (interface{}, error) {
	p.pos++
	sb := strings.Builder{}
	for !p.end() {
		c := p.current()
		p.pos++
		switch c {
		case quote:
			return sb.String(), nil
		case '\\':
			if p.end() {
				return nil, p.errorf("unterminated string")
			}
			escaped := p.current()
			p.pos++
			switch escaped {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			default:
				sb.WriteRune(escaped)
			}
		default:
			sb.WriteRune(c)
		}
	}
	return nil, p.errorf("unterminated string")
}

func (p *literalParser) parseBare() (interface{}, error) {
	start := p.pos
	for !p.end() {
		c := p.current()
		if unicode.IsSpace(c) || strings.ContainsRune(literalSeparators, c) {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return nil, p.errorf("unexpected character: '%c'", p.current())
	}
	return bareLiteral(string(p.input[start:p.pos])), nil
}

func bareLiteral(word string) interface{} {
	switch word {
	case "None", "null":
		return nil
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return i
	}
	if isFloatLiteral(word) {
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return f
		}
	}
	return word
}

// isFloatLiteral checks if the 'word' contains only the characters of the decimal float notation.
// It excludes the 'inf' and 'nan' words accepted by the strconv.ParseFloat.
func isFloatLiteral(word string) bool {
	var hasDigit bool
	for _, c := range word {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune("+-.eE", c):
		default:
			return false
		}
	}
	return hasDigit
}

func (p *literalParser) skipSpaces() {
	for !p.end() && unicode.IsSpace(p.current()) {
		p.pos++
	}
}

func (p *literalParser) current() rune {
	return p.input[p.pos]
}

func (p *literalParser) end() bool {
	return p.pos >= len(p.input)
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return errors.NewDetf(ClassInvalidParameter, "malformed literal: '%s'", string(p.input)).
		SetDetailsf(format+" at position: %d", append(args, p.pos)...)
}
