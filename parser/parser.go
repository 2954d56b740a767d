// Copyright 2023 Practical Formal Methods

// This file is part of stfold.
//
// stfold is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// stfold is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with stfold.  If not, see <https://www.gnu.org/licenses/>.

package parser

import (
	"github.com/pkg/errors"

	"github.com/practical-formal-methods/stfold/ast"
)

// integerTypeNames are the IEC 61131-3 integer types usable as typed
// literal prefixes (e.g. INT#5).
var integerTypeNames = map[string]bool{
	"SINT": true, "INT": true, "DINT": true, "LINT": true,
	"USINT": true, "UINT": true, "UDINT": true, "ULINT": true,
}

// bitStringTypeNames are the bit-string types (e.g. WORD#16#FFFF).
var bitStringTypeNames = map[string]bool{
	"BYTE": true, "WORD": true, "DWORD": true, "LWORD": true,
}

var realTypeNames = map[string]bool{
	"REAL": true, "LREAL": true,
}

type parser struct {
	file string
	toks []Token
	pos  int
}

// ParseExpression parses a single ST expression and returns its tree.
// The whole input must be consumed.
func ParseExpression(src, file string) (ast.Expression, error) {
	toks, err := Tokenize(src, file)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, toks: toks}
	exp, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != EOF {
		return nil, p.errorf("unexpected %q after expression", p.peek().Lexeme)
	}
	return exp, nil
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) take() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) match(tts ...TokenType) (Token, bool) {
	for _, tt := range tts {
		if p.peek().Type == tt {
			return p.take(), true
		}
	}
	return Token{}, false
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.errorf("expected %s, found %q", what, p.peek().Lexeme)
	}
	return p.take(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	tok := p.peek()
	err := errors.Errorf(format, args...)
	return errors.Wrapf(err, "%s:%d:%d", p.file, tok.Line, tok.Col)
}

// tokenLoc builds the location of a single-token leaf. The token index
// serves as the node's source-order position (FirstOrder/LastOrder).
func (p *parser) tokenLoc(tok Token, idx int) ast.Location {
	return ast.Location{
		FirstFile:   p.file,
		FirstLine:   tok.Line,
		FirstColumn: tok.Col,
		LastLine:    tok.EndLine,
		LastColumn:  tok.EndCol,
		FirstOrder:  idx,
		LastOrder:   idx,
	}
}

// span merges the locations of the first and last constituents of an
// interior node.
func span(first, last *ast.Location) ast.Location {
	return ast.Location{
		FirstFile:   first.FirstFile,
		FirstLine:   first.FirstLine,
		FirstColumn: first.FirstColumn,
		LastLine:    last.LastLine,
		LastColumn:  last.LastColumn,
		FirstOrder:  first.FirstOrder,
		LastOrder:   last.LastOrder,
	}
}

func binary(op ast.BinaryOp, l, r ast.Expression) ast.Expression {
	exp := &ast.Binary{Op: op, LExp: l, RExp: r}
	exp.Location = span(l.Loc(), r.Loc())
	return exp
}

// Expression grammar per B 3.1, loosest-binding first:
//   OR < XOR < AND < (= <>) < (< > <= >=) < (+ -) < (* / MOD) < ** < unary

func (p *parser) parseExpression() (ast.Expression, error) {
	l, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.match(OR); !ok {
			return l, nil
		}
		r, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		l = binary(ast.OpOr, l, r)
	}
}

func (p *parser) parseXor() (ast.Expression, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.match(XOR); !ok {
			return l, nil
		}
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = binary(ast.OpXor, l, r)
	}
}

func (p *parser) parseAnd() (ast.Expression, error) {
	l, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.match(AND, AMPERSAND); !ok {
			return l, nil
		}
		r, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		l = binary(ast.OpAnd, l, r)
	}
}

func (p *parser) parseComparison() (ast.Expression, error) {
	l, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case EQ:
			op = ast.OpEqu
		case NEQ:
			op = ast.OpNotEqu
		default:
			return l, nil
		}
		p.take()
		r, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		l = binary(op, l, r)
	}
}

func (p *parser) parseRelational() (ast.Expression, error) {
	l, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case LESS:
			op = ast.OpLt
		case GREATER:
			op = ast.OpGt
		case LESS_EQ:
			op = ast.OpLe
		case GREATER_EQ:
			op = ast.OpGe
		default:
			return l, nil
		}
		p.take()
		r, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		l = binary(op, l, r)
	}
}

func (p *parser) parseAdd() (ast.Expression, error) {
	l, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case PLUS:
			op = ast.OpAdd
		case MINUS:
			op = ast.OpSub
		default:
			return l, nil
		}
		p.take()
		r, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		l = binary(op, l, r)
	}
}

func (p *parser) parseTerm() (ast.Expression, error) {
	l, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case STAR:
			op = ast.OpMul
		case SLASH:
			op = ast.OpDiv
		case MOD:
			op = ast.OpMod
		default:
			return l, nil
		}
		p.take()
		r, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		l = binary(op, l, r)
	}
}

// parsePower parses the exponentiation level. ** is right-associative.
func (p *parser) parsePower() (ast.Expression, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.match(POWER); !ok {
		return l, nil
	}
	r, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	return binary(ast.OpPower, l, r), nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	if tok, ok := p.match(MINUS); ok {
		idx := p.pos - 1
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.negate(tok, idx, inner), nil
	}
	if tok, ok := p.match(NOT); ok {
		idx := p.pos - 1
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		exp := &ast.Not{Exp: inner}
		loc := p.tokenLoc(tok, idx)
		exp.Location = span(&loc, inner.Loc())
		return exp, nil
	}
	return p.parsePrimary()
}

// negate wraps inner in the unary minus node matching its shape. A '-'
// applied directly to a numeric literal becomes NegInteger/NegReal, the
// forms the folder gives literal-specific treatment.
func (p *parser) negate(minus Token, idx int, inner ast.Expression) ast.Expression {
	minusLoc := p.tokenLoc(minus, idx)
	loc := span(&minusLoc, inner.Loc())
	switch inner.(type) {
	case *ast.Integer, *ast.BinaryInteger, *ast.OctalInteger, *ast.HexInteger:
		exp := &ast.NegInteger{Exp: inner}
		exp.Location = loc
		return exp
	case *ast.Real:
		exp := &ast.NegReal{Exp: inner}
		exp.Location = loc
		return exp
	}
	exp := &ast.Neg{Exp: inner}
	exp.Location = loc
	return exp
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	idx := p.pos
	switch tok := p.peek(); tok.Type {
	case INTEGER:
		p.take()
		exp := &ast.Integer{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case BINARY_INTEGER:
		p.take()
		exp := &ast.BinaryInteger{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case OCTAL_INTEGER:
		p.take()
		exp := &ast.OctalInteger{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case HEX_INTEGER:
		p.take()
		exp := &ast.HexInteger{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case REAL:
		p.take()
		exp := &ast.Real{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case TRUE:
		p.take()
		exp := &ast.BoolTrue{}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case FALSE:
		p.take()
		exp := &ast.BoolFalse{}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case TYPE_PREFIX:
		return p.parseTypedLiteral()
	case IDENT:
		return p.parseVariable()
	case LPAREN:
		p.take()
		exp, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, `")"`); err != nil {
			return nil, err
		}
		return exp, nil
	}
	return nil, p.errorf("expected expression, found %q", p.peek().Lexeme)
}

// parseTypedLiteral handles the T#value forms: INT#-5, LREAL#1.5,
// BOOL#TRUE, WORD#16#00FF.
func (p *parser) parseTypedLiteral() (ast.Expression, error) {
	idx := p.pos
	prefix := p.take()
	prefixLoc := p.tokenLoc(prefix, idx)
	name := prefix.Lexeme

	switch {
	case integerTypeNames[name]:
		value, err := p.parseSignedInteger()
		if err != nil {
			return nil, err
		}
		exp := &ast.IntegerLiteral{TypeName: name, Value: value}
		exp.Location = span(&prefixLoc, value.Loc())
		return exp, nil

	case realTypeNames[name]:
		negated := false
		var minus Token
		var minusIdx int
		if tok, ok := p.match(MINUS); ok {
			negated, minus, minusIdx = true, tok, p.pos-1
		} else {
			p.match(PLUS)
		}
		tok, err := p.expect(REAL, "real literal")
		if err != nil {
			return nil, err
		}
		r := &ast.Real{Value: tok.Lexeme}
		r.Location = p.tokenLoc(tok, p.pos-1)
		var value ast.Expression = r
		if negated {
			value = p.negate(minus, minusIdx, value)
		}
		exp := &ast.RealLiteral{TypeName: name, Value: value}
		exp.Location = span(&prefixLoc, value.Loc())
		return exp, nil

	case name == "BOOL":
		var value ast.Expression
		switch tok := p.peek(); {
		case tok.Type == TRUE || (tok.Type == INTEGER && tok.Lexeme == "1"):
			p.take()
			v := &ast.BoolTrue{}
			v.Location = p.tokenLoc(tok, p.pos-1)
			value = v
		case tok.Type == FALSE || (tok.Type == INTEGER && tok.Lexeme == "0"):
			p.take()
			v := &ast.BoolFalse{}
			v.Location = p.tokenLoc(tok, p.pos-1)
			value = v
		default:
			return nil, p.errorf("expected TRUE, FALSE, 0 or 1 after BOOL#, found %q", tok.Lexeme)
		}
		exp := &ast.BooleanLiteral{TypeName: name, Value: value}
		exp.Location = span(&prefixLoc, value.Loc())
		return exp, nil

	case bitStringTypeNames[name]:
		value, err := p.parseUnsignedInteger()
		if err != nil {
			return nil, err
		}
		exp := &ast.BitString{TypeName: name, Value: value}
		exp.Location = span(&prefixLoc, value.Loc())
		return exp, nil
	}
	return nil, p.errorf("unsupported typed literal prefix %s#", name)
}

func (p *parser) parseSignedInteger() (ast.Expression, error) {
	if tok, ok := p.match(MINUS); ok {
		idx := p.pos - 1
		value, err := p.parseUnsignedInteger()
		if err != nil {
			return nil, err
		}
		return p.negate(tok, idx, value), nil
	}
	p.match(PLUS)
	return p.parseUnsignedInteger()
}

func (p *parser) parseUnsignedInteger() (ast.Expression, error) {
	idx := p.pos
	switch tok := p.peek(); tok.Type {
	case INTEGER:
		p.take()
		exp := &ast.Integer{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case BINARY_INTEGER:
		p.take()
		exp := &ast.BinaryInteger{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case OCTAL_INTEGER:
		p.take()
		exp := &ast.OctalInteger{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	case HEX_INTEGER:
		p.take()
		exp := &ast.HexInteger{Value: tok.Lexeme}
		exp.Location = p.tokenLoc(tok, idx)
		return exp, nil
	}
	return nil, p.errorf("expected integer literal, found %q", p.peek().Lexeme)
}

// parseVariable handles identifiers, function calls and array accesses.
// None of these ever produce constant values; they are parsed so larger
// expressions containing them keep their shape.
func (p *parser) parseVariable() (ast.Expression, error) {
	idx := p.pos
	name := p.take()
	nameLoc := p.tokenLoc(name, idx)

	if _, ok := p.match(LPAREN); ok {
		var args []ast.Expression
		if p.peek().Type != RPAREN {
			for {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if _, ok := p.match(COMMA); !ok {
					break
				}
			}
		}
		closing, err := p.expect(RPAREN, `")"`)
		if err != nil {
			return nil, err
		}
		closingLoc := p.tokenLoc(closing, p.pos-1)
		exp := &ast.Call{Name: name.Lexeme, Args: args}
		exp.Location = span(&nameLoc, &closingLoc)
		return exp, nil
	}

	if _, ok := p.match(LBRACKET); ok {
		base := &ast.Identifier{Name: name.Lexeme}
		base.Location = nameLoc
		var subs []ast.Expression
		for {
			sub, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
		closing, err := p.expect(RBRACKET, `"]"`)
		if err != nil {
			return nil, err
		}
		closingLoc := p.tokenLoc(closing, p.pos-1)
		exp := &ast.Index{Base: base, Subscripts: subs}
		exp.Location = span(&nameLoc, &closingLoc)
		return exp, nil
	}

	exp := &ast.Identifier{Name: name.Lexeme}
	exp.Location = nameLoc
	return exp, nil
}
