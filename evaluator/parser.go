package evaluator

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shibukawa/bytelayout"
	"github.com/shopspring/decimal"
)

// Parse parses an arithmetic expression:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('+' | '-') unary | primary
//	primary := number | '(' expr ')' | '${' path '}' | '$' Ident '(' path ')'
//	path    := Ident ('[' digits ']')? ('.' Ident ('[' digits ']')?)*
//	number  := digits ('.' digits)? | '0x' hexdigits
func Parse(expr string) (Node, error) {
	p := newParser(expr)

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.eof() {
		return nil, p.unexpected()
	}

	return node, nil
}

type parser struct {
	src []rune
	pos int
}

func newParser(expr string) *parser {
	return &parser{src: []rune(expr)}
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()

		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}

		p.pos++

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = p.binary(op, left, right)
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()

		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}

		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = p.binary(op, left, right)
	}
}

func (p *parser) binary(op rune, left, right Node) Node {
	start := left.Pos().Offset
	end := right.Pos().Offset + right.Pos().Length

	return &BinaryExpr{Op: op, Left: left, Right: right, Position: Position{Offset: start, Length: end - start}}
}

func (p *parser) parseUnary() (Node, error) {
	p.skipWhitespace()

	op := p.peek()
	if op != '+' && op != '-' {
		return p.parsePrimary()
	}

	start := p.pos
	p.pos++

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	end := operand.Pos().Offset + operand.Pos().Length

	return &UnaryExpr{Op: op, Operand: operand, Position: Position{Offset: start, Length: end - start}}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	p.skipWhitespace()

	switch r := p.peek(); {
	case isDigit(r):
		return p.parseNumber()
	case r == '(':
		p.pos++

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()

		if !p.match(')') {
			return nil, fmt.Errorf("%w: expected ')' at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
		}

		return inner, nil
	case r == '$':
		return p.parseReference()
	case p.eof():
		return nil, fmt.Errorf("%w: expected expression at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
	default:
		return nil, p.unexpected()
	}
}

// parseReference parses ${path} or $Name(path) starting at '$'.
func (p *parser) parseReference() (Node, error) {
	start := p.pos
	p.pos++

	if p.match('{') {
		path, err := p.readPath()
		if err != nil {
			return nil, err
		}

		if !p.match('}') {
			return nil, fmt.Errorf("%w: expected '}' to close variable at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
		}

		return &VariableRef{Path: path, Position: Position{Offset: start, Length: p.pos - start}}, nil
	}

	name, ok := p.readIdentifier()
	if !ok {
		return nil, fmt.Errorf("%w: expected '{' or function name after '$' at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
	}

	if _, known := builtins[name]; !known {
		return nil, fmt.Errorf("%w: unknown function '%s' at position %d", bytelayout.ErrInvalidExpression, name, start+1)
	}

	if !p.match('(') {
		return nil, fmt.Errorf("%w: expected '(' after %s at position %d", bytelayout.ErrInvalidExpression, name, p.pos+1)
	}

	path, err := p.readPath()
	if err != nil {
		return nil, err
	}

	if !p.match(')') {
		return nil, fmt.Errorf("%w: expected ')' to close %s at position %d", bytelayout.ErrInvalidExpression, name, p.pos+1)
	}

	return &BuiltinCall{Name: name, Path: path, Position: Position{Offset: start, Length: p.pos - start}}, nil
}

// builtinAhead reports whether the '$' at the cursor is followed by the name
// of a builtin function.
func (p *parser) builtinAhead() bool {
	end := p.pos + 1
	for end < len(p.src) && isIdentPart(p.src[end]) {
		end++
	}

	_, known := builtins[string(p.src[p.pos+1:end])]

	return known
}

// readPath reads a dotted, optionally indexed symbol path and returns it in
// canonical form, e.g. "Weapons[2].Ammo". Surrounding whitespace is skipped.
func (p *parser) readPath() (string, error) {
	var b strings.Builder

	p.skipWhitespace()

	for {
		ident, ok := p.readIdentifier()
		if !ok {
			return "", fmt.Errorf("%w: expected identifier at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
		}

		b.WriteString(ident)

		if p.match('[') {
			digits := p.readDigits()
			if digits == "" {
				return "", fmt.Errorf("%w: expected integer index after '[' at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
			}

			index, err := strconv.Atoi(digits)
			if err != nil {
				return "", fmt.Errorf("%w: index %s out of range", bytelayout.ErrInvalidExpression, digits)
			}

			if !p.match(']') {
				return "", fmt.Errorf("%w: expected ']' to close index at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
			}

			fmt.Fprintf(&b, "[%d]", index)
		}

		if !p.match('.') {
			break
		}

		b.WriteByte('.')
	}

	p.skipWhitespace()

	return b.String(), nil
}

func (p *parser) parseNumber() (Node, error) {
	start := p.pos

	if p.peek() == '0' && (p.peekAt(1) == 'x' || p.peekAt(1) == 'X') {
		p.pos += 2

		digitsStart := p.pos
		for isHexDigit(p.peek()) {
			p.pos++
		}

		if p.pos == digitsStart {
			return nil, fmt.Errorf("%w: expected hexadecimal digits at position %d", bytelayout.ErrInvalidExpression, p.pos+1)
		}

		n, _ := new(big.Int).SetString(string(p.src[digitsStart:p.pos]), 16)

		return &NumberLiteral{Value: decimal.NewFromBigInt(n, 0), Position: Position{Offset: start, Length: p.pos - start}}, nil
	}

	p.readDigits()

	if p.peek() == '.' && isDigit(p.peekAt(1)) {
		p.pos++
		p.readDigits()
	}

	text := string(p.src[start:p.pos])

	value, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number '%s' at position %d", bytelayout.ErrInvalidExpression, text, start+1)
	}

	return &NumberLiteral{Value: value, Position: Position{Offset: start, Length: p.pos - start}}, nil
}

func (p *parser) unexpected() error {
	return fmt.Errorf("%w: unexpected character '%c' at position %d", bytelayout.ErrInvalidExpression, p.peek(), p.pos+1)
}

func (p *parser) skipWhitespace() {
	for p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\n' || p.peek() == '\r' {
		p.pos++
	}
}

func (p *parser) match(r rune) bool {
	if p.eof() || p.peek() != r {
		return false
	}

	p.pos++

	return true
}

func (p *parser) readIdentifier() (string, bool) {
	if !isIdentStart(p.peek()) {
		return "", false
	}

	start := p.pos

	p.pos++
	for isIdentPart(p.peek()) {
		p.pos++
	}

	return string(p.src[start:p.pos]), true
}

func (p *parser) readDigits() string {
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}

	return string(p.src[start:p.pos])
}

func (p *parser) peek() rune {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) rune {
	if p.pos+n >= len(p.src) {
		return 0
	}

	return p.src[p.pos+n]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
