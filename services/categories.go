package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LiteralKind is the type of a parsed structured-text value.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitString
	LitNumber
	LitBool
	LitList
	LitDict
)

// Literal is one value of the list-of-objects text stored in the genres,
// production_companies and production_countries columns.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
	List []Literal
	Dict []KeyValue
}

// KeyValue is one entry of a dict literal, in source order.
type KeyValue struct {
	Key   string
	Value Literal
}

// Lookup returns the value stored under key in a dict literal.
func (l Literal) Lookup(key string) (Literal, bool) {
	for _, kv := range l.Dict {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return Literal{}, false
}

var errTrailing = errors.New("unexpected trailing input")

// ParseLiteral parses JSON or Python-literal text (single or double quoted
// strings, None/True/False) made of lists, dicts, strings and numbers.
// Nothing is ever evaluated.
func ParseLiteral(s string) (Literal, error) {
	p := &literalParser{src: s}
	v, err := p.value()
	if err != nil {
		return Literal{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Literal{}, fmt.Errorf("offset %d: %w", p.pos, errTrailing)
	}
	return v, nil
}

// ParseCategoryList extracts the ordered "name" values from a list of
// {id, name} objects. Null or malformed text yields an empty list and false.
func ParseCategoryList(s string) ([]string, bool) {
	if strings.TrimSpace(s) == "" {
		return []string{}, false
	}
	v, err := ParseLiteral(s)
	if err != nil || v.Kind != LitList {
		return []string{}, false
	}

	names := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item.Kind != LitDict {
			return []string{}, false
		}
		name, ok := item.Lookup("name")
		if !ok || name.Kind != LitString {
			return []string{}, false
		}
		names = append(names, name.Str)
	}
	return names, true
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) value() (Literal, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Literal{}, p.errorf("unexpected end of input")
	}

	switch c := p.src[p.pos]; {
	case c == '[':
		return p.list()
	case c == '{':
		return p.dict()
	case c == '\'' || c == '"':
		s, err := p.str()
		return Literal{Kind: LitString, Str: s}, err
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.keyword()
	}
}

func (p *literalParser) list() (Literal, error) {
	p.pos++ // [
	out := Literal{Kind: LitList, List: []Literal{}}
	for {
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ']' {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return Literal{}, err
		}
		out.List = append(out.List, v)
		if err := p.separator(']'); err != nil {
			return Literal{}, err
		}
	}
}

func (p *literalParser) dict() (Literal, error) {
	p.pos++ // {
	out := Literal{Kind: LitDict, Dict: []KeyValue{}}
	for {
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '}' {
			p.pos++
			return out, nil
		}
		if p.pos >= len(p.src) || (p.src[p.pos] != '\'' && p.src[p.pos] != '"') {
			return Literal{}, p.errorf("expected string key")
		}
		key, err := p.str()
		if err != nil {
			return Literal{}, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return Literal{}, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return Literal{}, err
		}
		out.Dict = append(out.Dict, KeyValue{Key: key, Value: v})
		if err := p.separator('}'); err != nil {
			return Literal{}, err
		}
	}
}

// separator consumes a ',' or leaves the closing delimiter for the caller.
func (p *literalParser) separator(closing byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return p.errorf("unterminated container")
	}
	switch p.src[p.pos] {
	case ',':
		p.pos++
		return nil
	case closing:
		return nil
	default:
		return p.errorf("expected ',' or %q", closing)
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("dangling escape")
			}
			r, n, err := p.escape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			p.pos += n
		default:
			r, n := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += n
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) escape() (rune, int, error) {
	switch e := p.src[p.pos+1]; e {
	case 'n':
		return '\n', 2, nil
	case 't':
		return '\t', 2, nil
	case 'r':
		return '\r', 2, nil
	case 'b':
		return '\b', 2, nil
	case 'f':
		return '\f', 2, nil
	case '\\', '\'', '"', '/':
		return rune(e), 2, nil
	case 'u', 'x':
		width := 4
		if e == 'x' {
			width = 2
		}
		end := p.pos + 2 + width
		if end > len(p.src) {
			return 0, 0, p.errorf("short \\%c escape", e)
		}
		n, err := strconv.ParseUint(p.src[p.pos+2:end], 16, 32)
		if err != nil {
			return 0, 0, p.errorf("bad \\%c escape", e)
		}
		return rune(n), 2 + width, nil
	default:
		return 0, 0, p.errorf("unknown escape \\%c", e)
	}
}

func (p *literalParser) number() (Literal, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-.0123456789eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return Literal{}, fmt.Errorf("offset %d: bad number %q", start, p.src[start:p.pos])
	}
	return Literal{Kind: LitNumber, Num: n}, nil
}

func (p *literalParser) keyword() (Literal, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		p.pos++
	}
	switch p.src[start:p.pos] {
	case "None", "null":
		return Literal{Kind: LitNull}, nil
	case "True", "true":
		return Literal{Kind: LitBool, Bool: true}, nil
	case "False", "false":
		return Literal{Kind: LitBool, Bool: false}, nil
	}
	p.pos = start
	return Literal{}, p.errorf("unexpected token")
}
