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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationRange(t *testing.T) {
	loc := Location{
		FirstFile:   "plant.st",
		FirstLine:   3,
		FirstColumn: 7,
		LastLine:    3,
		LastColumn:  12,
	}
	assert.Equal(t, "plant.st:3-7..3-12", loc.Range())
}

func TestFirstLast(t *testing.T) {
	a := &Integer{Value: "1"}
	a.Location = Location{FirstOrder: 0, LastOrder: 0}
	b := &Integer{Value: "2"}
	b.Location = Location{FirstOrder: 2, LastOrder: 2}

	assert.Same(t, Expression(a), First(a, b))
	assert.Same(t, Expression(a), First(b, a))
	assert.Same(t, Expression(b), Last(a, b))
	assert.Same(t, Expression(b), Last(b, a))
}

func TestInspectOrder(t *testing.T) {
	one := &Integer{Value: "1"}
	two := &Integer{Value: "2"}
	sum := &Binary{Op: OpAdd, LExp: one, RExp: two}
	neg := &Neg{Exp: sum}

	var kinds []string
	Inspect(neg, func(exp Expression) {
		kinds = append(kinds, Kind(exp))
	})
	assert.Equal(t, []string{"neg", "+", "integer", "integer"}, kinds)
}

func TestChildren(t *testing.T) {
	base := &Identifier{Name: "arr"}
	sub := &Integer{Value: "1"}
	index := &Index{Base: base, Subscripts: []Expression{sub}}
	assert.Equal(t, []Expression{base, sub}, Children(index))

	leaf := &Real{Value: "1.5"}
	assert.Nil(t, Children(leaf))

	lit := &IntegerLiteral{TypeName: "INT", Value: sub}
	assert.Equal(t, []Expression{sub}, Children(lit))
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "hex_integer", Kind(&HexInteger{Value: "16#FF"}))
	assert.Equal(t, "bit_string_literal", Kind(&BitString{TypeName: "WORD"}))
	assert.Equal(t, "MOD", Kind(&Binary{Op: OpMod}))
	assert.Equal(t, "**", Kind(&Binary{Op: OpPower}))
	assert.Equal(t, "NOT", Kind(&Not{}))
}
