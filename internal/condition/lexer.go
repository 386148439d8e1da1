package condition

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// ParseError reports a syntax error and the byte offset where it occurred.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition: %s at offset %d", e.Message, e.Pos)
}

// operators ordered longest first so that "===" wins over "==".
var operators = []string{"===", "!==", ">=", "<=", "==", "!=", "&&", "||", ">", "<", "-"}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, &ParseError{Pos: i, Message: "unterminated string"}
			}
			toks = append(toks, token{kind: tokString, text: src[i+1 : i+1+end], pos: i})
			i += end + 2
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.' || src[i] == '_') {
				i++
			}
			text := strings.ReplaceAll(src[start:i], "_", "")
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{Pos: start, Message: fmt.Sprintf("bad number %q", text)}
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		default:
			op := matchOperator(src[i:])
			if op == "" {
				return nil, &ParseError{Pos: i, Message: fmt.Sprintf("unexpected character %q", c)}
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
