package ir

import (
	"math"
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokIdent tokenKind = iota + 1
	tokTemp
	tokBuiltin
	tokNumber
	tokString
	tokDirective
	tokPunct
)

type token struct {
	text    string
	num     float64
	version int
	kind    tokenKind
	escaped bool
}

// is matches punctuation, directives and keywords. An escaped identifier is
// never a keyword.
func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text && !t.escaped
}

// lexLine splits one line of text IR into tokens. Comments start with '#'
// or "//" and run to the end of the line. A '$' before an identifier marks
// it as a plain name even when it spells a keyword.
func lexLine(line string) ([]token, string) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#' || strings.HasPrefix(line[i:], "//"):
			return toks, ""
		case isIdentStart(c) || (c == '$' && i+1 < len(line) && isIdentStart(line[i+1])):
			escaped := c == '$'
			if escaped {
				i++
			}
			j := i + 1
			for j < len(line) && isIdentChar(line[j]) {
				j++
			}
			tok := token{kind: tokIdent, text: line[i:j], version: Unversioned, escaped: escaped}
			if j+1 < len(line) && line[j] == '.' && isDigit(line[j+1]) {
				k := j + 1
				for k < len(line) && isDigit(line[k]) {
					k++
				}
				v, err := strconv.Atoi(line[j+1 : k])
				if err != nil {
					return nil, "bad version in " + strconv.Quote(line[i:k])
				}
				tok.version = v
				j = k
			}
			toks = append(toks, tok)
			i = j
		case c == '%':
			j := i + 1
			for j < len(line) && isDigit(line[j]) {
				j++
			}
			tok := token{kind: tokTemp, text: line[i:j], version: Unversioned}
			if j > i+1 {
				v, err := strconv.Atoi(line[i+1 : j])
				if err != nil {
					return nil, "bad temporary " + strconv.Quote(line[i:j])
				}
				tok.version = v
			}
			toks = append(toks, tok)
			i = j
		case c == '@':
			j := i + 1
			for j < len(line) && (isIdentChar(line[j]) || line[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokBuiltin, text: line[i+1 : j]})
			i = j
		case c == '"':
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				return nil, "unterminated string"
			}
			s, err := strconv.Unquote(line[i : j+1])
			if err != nil {
				return nil, "bad string literal " + line[i:j+1]
			}
			toks = append(toks, token{kind: tokString, text: s})
			i = j + 1
		case c == '.' && i+1 < len(line) && isIdentStart(line[i+1]):
			j := i + 1
			for j < len(line) && isIdentChar(line[j]) {
				j++
			}
			toks = append(toks, token{kind: tokDirective, text: line[i:j]})
			i = j
		case isNumberStart(line, i):
			j := i + 1
			for j < len(line) && isNumberChar(line, j) {
				j++
			}
			n, ok := parseNumber(line[i:j])
			if !ok {
				return nil, "bad number " + strconv.Quote(line[i:j])
			}
			toks = append(toks, token{kind: tokNumber, text: line[i:j], num: n})
			i = j
		case strings.IndexByte(":,()[]=;", c) >= 0:
			toks = append(toks, token{kind: tokPunct, text: line[i : i+1]})
			i++
		default:
			return nil, "unexpected character " + strconv.QuoteRune(rune(c))
		}
	}
	return toks, ""
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberStart(line string, i int) bool {
	c := line[i]
	if isDigit(c) {
		return true
	}
	if i+1 >= len(line) {
		return false
	}
	next := line[i+1]
	switch c {
	case '-', '+':
		return isDigit(next) || next == '.' || next == 'i' || next == 'n'
	case '.':
		return isDigit(next)
	}
	return false
}

func isNumberChar(line string, j int) bool {
	c := line[j]
	if isIdentChar(c) || c == '.' {
		return true
	}
	if (c == '+' || c == '-') && (line[j-1] == 'e' || line[j-1] == 'E') {
		return true
	}
	return false
}

func parseNumber(s string) (float64, bool) {
	switch s {
	case "+inf", "inf":
		return math.Inf(1), true
	case "-inf":
		return math.Inf(-1), true
	case "+nan", "-nan", "nan":
		return math.NaN(), true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
