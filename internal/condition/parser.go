package condition

import (
	"fmt"
	"strings"
)

// Parse turns src into an AST. An empty or blank src parses to nil with
// no error.
func Parse(src string) (Node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isOp("||") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Logical{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	for p.isOp("&&") {
		p.next()
		right, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		left = Logical{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseRel() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	switch {
	case p.isOp(">", "<", ">=", "<=", "==", "!=", "===", "!=="):
		op := normalizeOp(p.next().text)
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Compare{Op: op, Left: left, Right: right}, nil
	case p.peek().kind == tokIdent && p.peek().text == "in":
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Membership{Needle: left, Haystack: right}, nil
	}
	return left, nil
}

func normalizeOp(op string) string {
	switch op {
	case "===":
		return "=="
	case "!==":
		return "!="
	}
	return op
}

func (p *parser) parseUnary() (Node, error) {
	if p.isOp("-") {
		p.next()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return Negate{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return NumberLit{Value: tok.num}, nil
	case tokString:
		return StringLit{Value: tok.text}, nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, &ParseError{Pos: tok.pos, Message: "missing closing parenthesis"}
		}
		return inner, nil
	case tokIdent:
		switch tok.text {
		case "true":
			return BoolLit{Value: true}, nil
		case "false":
			return BoolLit{Value: false}, nil
		case "in":
			return nil, &ParseError{Pos: tok.pos, Message: "unexpected keyword in"}
		case "includes":
			return p.parseIncludes(tok)
		}
		return Ident{Name: tok.text}, nil
	case tokEOF:
		return nil, &ParseError{Pos: tok.pos, Message: "unexpected end of expression"}
	}
	return nil, &ParseError{Pos: tok.pos, Message: fmt.Sprintf("unexpected %q", tok.text)}
}

func (p *parser) parseIncludes(fn token) (Node, error) {
	if p.next().kind != tokLParen {
		return nil, &ParseError{Pos: fn.pos, Message: "includes requires an argument list"}
	}
	coll, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.next().kind != tokComma {
		return nil, &ParseError{Pos: fn.pos, Message: "includes takes two arguments"}
	}
	val, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.next().kind != tokRParen {
		return nil, &ParseError{Pos: fn.pos, Message: "includes takes two arguments"}
	}
	return Includes{Collection: coll, Value: val}, nil
}
