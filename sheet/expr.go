package sheet

import (
	"fmt"
	"strconv"
)

// exprNode is a parsed formula fragment. Identifiers and function calls are
// resolved against the owning sheet at evaluation time.
type exprNode interface {
	eval(s *Sheet) (float64, error)
}

type numberNode float64

type identNode string

type callNode struct {
	name string
	arg  string
}

type unaryNode struct {
	op    byte
	child exprNode
}

type binaryNode struct {
	op          byte
	left, right exprNode
}

func (n numberNode) eval(*Sheet) (float64, error) {
	return float64(n), nil
}

func (n identNode) eval(s *Sheet) (float64, error) {
	if coordRe.MatchString(string(n)) {
		return s.Value(string(n))
	}
	// An identifier that is not a coordinate counts as an empty cell.
	return 0, nil
}

func (n *callNode) eval(s *Sheet) (float64, error) {
	fn, ok := s.funcs[n.name]
	if !ok {
		// Unregistered function names resolve to zero, like any other
		// unresolved identifier.
		return 0, nil
	}
	return fn(s, n.arg)
}

func (n *unaryNode) eval(s *Sheet) (float64, error) {
	v, err := n.child.eval(s)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

func (n *binaryNode) eval(s *Sheet) (float64, error) {
	l, err := n.left.eval(s)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(s)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		return l / r, nil
	}
}

// parseExpr parses formula text into its expression tree. The grammar is
// deliberately small: numbers, coordinate identifiers, function calls with a
// single quoted argument, unary sign, the four arithmetic operators and
// parentheses. Anything else is ErrFormulaSyntax.
func parseExpr(input string) (exprNode, error) {
	p := &exprParser{input: input}
	n, err := p.addSub()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return n, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrFormulaSyntax, fmt.Sprintf(format, args...), p.pos)
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) addSub() (exprNode, error) {
	n, err := p.mulDiv()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return n, nil
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			return n, nil
		}
		p.pos++
		right, err := p.mulDiv()
		if err != nil {
			return nil, err
		}
		n = &binaryNode{op: op, left: n, right: right}
	}
}

func (p *exprParser) mulDiv() (exprNode, error) {
	n, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return n, nil
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			return n, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		n = &binaryNode{op: op, left: n, right: right}
	}
}

func (p *exprParser) unary() (exprNode, error) {
	p.skipSpaces()
	if p.pos < len(p.input) && (p.input[p.pos] == '-' || p.input[p.pos] == '+') {
		op := p.input[p.pos]
		p.pos++
		child, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, child: child}, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (exprNode, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return nil, p.errorf("unexpected end of formula")
	}
	switch c := p.input[p.pos]; {
	case c == '(':
		p.pos++
		n, err := p.addSub()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return n, nil
	case isDigit(c) || c == '.':
		return p.number()
	case isLetter(c):
		return p.identOrCall()
	}
	return nil, p.errorf("unexpected character %q", string(p.input[p.pos]))
}

func (p *exprParser) number() (exprNode, error) {
	start := p.pos
	seenDot, seenExp := false, false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case isDigit(c):
			p.pos++
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			p.pos++
		case (c == 'e' || c == 'E') && !seenExp && p.pos > start:
			seenExp = true
			p.pos++
			if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", p.input[start:p.pos])
	}
	return numberNode(v), nil
}

// identOrCall reads letters and decides between a coordinate identifier
// (letters directly followed by digits), a function call (letters followed
// by a parenthesized string literal) and a bare name.
func (p *exprParser) identOrCall() (exprNode, error) {
	start := p.pos
	for p.pos < len(p.input) && isLetter(p.input[p.pos]) {
		p.pos++
	}
	name := p.input[start:p.pos]
	if p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
		return identNode(p.input[start:p.pos]), nil
	}
	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++
		p.skipSpaces()
		arg, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, p.errorf("missing \")\" after %s(...", name)
		}
		p.pos++
		return &callNode{name: name, arg: arg}, nil
	}
	return identNode(name), nil
}

func (p *exprParser) stringLit() (string, error) {
	if p.pos >= len(p.input) || (p.input[p.pos] != '"' && p.input[p.pos] != '\'') {
		return "", p.errorf("function argument must be a quoted string")
	}
	quote := p.input[p.pos]
	p.pos++
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.input) {
		return "", p.errorf("unterminated string literal")
	}
	s := p.input[start:p.pos]
	p.pos++
	return s, nil
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
