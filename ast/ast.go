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

// Package ast defines the expression nodes of the IEC 61131-3 Structured
// Text subset handled by the constant-folding pass, together with the
// source locations and candidate constant values attached to each node.
package ast

import "fmt"

// Location is the source range of a node. FirstOrder and LastOrder are
// the indices of the node's first and last token, assigned by the parser;
// they order nodes by source position so diagnostic ranges can pick the
// earliest/latest of two nodes.
type Location struct {
	FirstFile   string `json:"file"`
	FirstLine   int    `json:"firstLine"`
	FirstColumn int    `json:"firstColumn"`
	LastLine    int    `json:"lastLine"`
	LastColumn  int    `json:"lastColumn"`
	FirstOrder  int    `json:"-"`
	LastOrder   int    `json:"-"`
}

// Range formats the location as file:L1-C1..L2-C2.
func (l *Location) Range() string {
	return fmt.Sprintf("%s:%d-%d..%d-%d", l.FirstFile, l.FirstLine, l.FirstColumn, l.LastLine, l.LastColumn)
}

// First returns whichever of the two expressions starts earlier in the source.
func First(a, b Expression) Expression {
	if a.Loc().FirstOrder < b.Loc().FirstOrder {
		return a
	}
	return b
}

// Last returns whichever of the two expressions ends later in the source.
func Last(a, b Expression) Expression {
	if a.Loc().LastOrder > b.Loc().LastOrder {
		return a
	}
	return b
}

// Symbol is the base embedded in every expression node. It owns the
// node's location and its four candidate constant values.
type Symbol struct {
	Location Location
	Values   ConstValues
}

func (s *Symbol) Loc() *Location      { return &s.Location }
func (s *Symbol) Const() *ConstValues { return &s.Values }

// Expression is implemented by every node of the expression tree.
type Expression interface {
	Loc() *Location
	Const() *ConstValues
}

// BinaryOp enumerates the binary operators of the expression grammar.
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpXor
	OpAnd
	OpEqu
	OpNotEqu
	OpLt
	OpGt
	OpLe
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPower
)

var binaryOpNames = [...]string{
	OpOr: "OR", OpXor: "XOR", OpAnd: "AND",
	OpEqu: "=", OpNotEqu: "<>",
	OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "MOD",
	OpPower: "**",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// Integer is a decimal integer literal. Value is the raw source text,
// possibly containing '_' digit separators.
type Integer struct {
	Symbol
	Value string
}

// BinaryInteger is a base-2 integer literal including its "2#" prefix.
type BinaryInteger struct {
	Symbol
	Value string
}

// OctalInteger is a base-8 integer literal including its "8#" prefix.
type OctalInteger struct {
	Symbol
	Value string
}

// HexInteger is a base-16 integer literal including its "16#" prefix.
type HexInteger struct {
	Symbol
	Value string
}

// Real is a real literal: integer "." integer with an optional exponent.
type Real struct {
	Symbol
	Value string
}

// BoolTrue is the TRUE literal.
type BoolTrue struct {
	Symbol
}

// BoolFalse is the FALSE literal.
type BoolFalse struct {
	Symbol
}

// IntegerLiteral is a typed integer literal such as INT#5. The type name
// is consumed by data-type checking; this pass only propagates the inner
// literal's candidate values.
type IntegerLiteral struct {
	Symbol
	TypeName string
	Value    Expression
}

// RealLiteral is a typed real literal such as LREAL#1.5.
type RealLiteral struct {
	Symbol
	TypeName string
	Value    Expression
}

// BooleanLiteral is a typed boolean literal such as BOOL#TRUE.
type BooleanLiteral struct {
	Symbol
	TypeName string
	Value    Expression
}

// BitString is a typed bit-string literal such as WORD#16#00FF.
type BitString struct {
	Symbol
	TypeName string
	Value    Expression
}

// Identifier is a variable reference. Never constant.
type Identifier struct {
	Symbol
	Name string
}

// Call is a function invocation. Never constant.
type Call struct {
	Symbol
	Name string
	Args []Expression
}

// Index is an array access. Never constant.
type Index struct {
	Symbol
	Base       Expression
	Subscripts []Expression
}

// Binary is an interior operator node with two children.
type Binary struct {
	Symbol
	Op   BinaryOp
	LExp Expression
	RExp Expression
}

// NegInteger is '-' applied directly to an integer literal. It is kept
// distinct from Neg because -9223372036854775808 is representable in
// int64 even though the positive literal itself is not.
type NegInteger struct {
	Symbol
	Exp Expression
}

// NegReal is '-' applied directly to a real literal.
type NegReal struct {
	Symbol
	Exp Expression
}

// Neg is unary '-' applied to a general expression.
type Neg struct {
	Symbol
	Exp Expression
}

// Not is the unary NOT operator.
type Not struct {
	Symbol
	Exp Expression
}

// Children returns the direct subexpressions of a node in source order.
func Children(exp Expression) []Expression {
	switch sym := exp.(type) {
	case *IntegerLiteral:
		return []Expression{sym.Value}
	case *RealLiteral:
		return []Expression{sym.Value}
	case *BooleanLiteral:
		return []Expression{sym.Value}
	case *BitString:
		return []Expression{sym.Value}
	case *Call:
		return sym.Args
	case *Index:
		return append([]Expression{sym.Base}, sym.Subscripts...)
	case *Binary:
		return []Expression{sym.LExp, sym.RExp}
	case *NegInteger:
		return []Expression{sym.Exp}
	case *NegReal:
		return []Expression{sym.Exp}
	case *Neg:
		return []Expression{sym.Exp}
	case *Not:
		return []Expression{sym.Exp}
	}
	return nil
}

// Inspect walks the tree rooted at exp in pre-order, calling fn for
// every node.
func Inspect(exp Expression, fn func(Expression)) {
	fn(exp)
	for _, child := range Children(exp) {
		Inspect(child, fn)
	}
}

// Kind returns a short name for the node's kind, used in driver reports.
func Kind(exp Expression) string {
	switch sym := exp.(type) {
	case *Integer:
		return "integer"
	case *BinaryInteger:
		return "binary_integer"
	case *OctalInteger:
		return "octal_integer"
	case *HexInteger:
		return "hex_integer"
	case *Real:
		return "real"
	case *BoolTrue:
		return "boolean_true"
	case *BoolFalse:
		return "boolean_false"
	case *IntegerLiteral:
		return "integer_literal"
	case *RealLiteral:
		return "real_literal"
	case *BooleanLiteral:
		return "boolean_literal"
	case *BitString:
		return "bit_string_literal"
	case *Identifier:
		return "identifier"
	case *Call:
		return "call"
	case *Index:
		return "index"
	case *Binary:
		return sym.Op.String()
	case *NegInteger:
		return "neg_integer"
	case *NegReal:
		return "neg_real"
	case *Neg:
		return "neg"
	case *Not:
		return "NOT"
	}
	return fmt.Sprintf("%T", exp)
}
