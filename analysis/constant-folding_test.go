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

package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practical-formal-methods/stfold/ast"
	"github.com/practical-formal-methods/stfold/parser"
)

// cvWant describes the expected state of the four candidate slots.
// A nil pointer means the slot must never have been allocated.
type cvWant struct {
	boolSlot   *ast.BoolConst
	int64Slot  *ast.Int64Const
	uint64Slot *ast.Uint64Const
	real64Slot *ast.Real64Const
}

func defBool(v bool) *ast.BoolConst {
	return &ast.BoolConst{Status: ast.StatusDefined, Value: v}
}

func defInt64(v int64) *ast.Int64Const {
	return &ast.Int64Const{Status: ast.StatusDefined, Value: v}
}

func defUint64(v uint64) *ast.Uint64Const {
	return &ast.Uint64Const{Status: ast.StatusDefined, Value: v}
}

func defReal64(v float64) *ast.Real64Const {
	return &ast.Real64Const{Status: ast.StatusDefined, Value: v}
}

var (
	ovflInt64  = &ast.Int64Const{Status: ast.StatusOverflow}
	ovflUint64 = &ast.Uint64Const{Status: ast.StatusOverflow}
	ovflReal64 = &ast.Real64Const{Status: ast.StatusOverflow}
)

func foldSource(t *testing.T, src string) ast.Expression {
	t.Helper()
	root, err := parser.ParseExpression(src, "test.st")
	require.NoError(t, err)
	folder := NewConstantFolder()
	assert.Zero(t, folder.Fold(root))
	assert.Zero(t, folder.GetErrorCount())
	return root
}

func assertConstValues(t *testing.T, cv *ast.ConstValues, want cvWant) {
	t.Helper()
	assert.Equal(t, want.boolSlot, cv.Bool, "bool candidate")
	assert.Equal(t, want.int64Slot, cv.Int64, "int64 candidate")
	assert.Equal(t, want.uint64Slot, cv.Uint64, "uint64 candidate")
	if want.real64Slot == nil || want.real64Slot.Status != ast.StatusDefined {
		assert.Equal(t, want.real64Slot, cv.Real64, "real64 candidate")
		return
	}
	require.NotNil(t, cv.Real64, "real64 candidate")
	assert.Equal(t, ast.StatusDefined, cv.Real64.Status, "real64 candidate")
	assert.InDelta(t, want.real64Slot.Value, cv.Real64.Value, 1e-9)
}

func TestFoldExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want cvWant
	}{
		{"2 + 3", cvWant{uint64Slot: defUint64(5), int64Slot: defInt64(5)}},
		{"22.2 - 5.0", cvWant{real64Slot: defReal64(17.2)}},
		{"9223372036854775807 + 1", cvWant{uint64Slot: defUint64(1 << 63), int64Slot: ovflInt64}},
		{"1 AND 0", cvWant{boolSlot: defBool(false), uint64Slot: defUint64(0)}},
		{"5 / 0", cvWant{uint64Slot: ovflUint64, int64Slot: ovflInt64}},
		{"5 MOD 0", cvWant{uint64Slot: defUint64(0), int64Slot: defInt64(0)}},
		{"-9223372036854775808", cvWant{uint64Slot: ovflUint64, int64Slot: defInt64(math.MinInt64)}},
		{"2.0 ** 10", cvWant{real64Slot: defReal64(1024.0)}},
		{"1.0 / 0.0", cvWant{real64Slot: ovflReal64}},

		{"TRUE OR FALSE", cvWant{boolSlot: defBool(true)}},
		{"TRUE XOR TRUE", cvWant{boolSlot: defBool(false)}},
		{"NOT TRUE", cvWant{boolSlot: defBool(false)}},
		{"NOT 16#FF", cvWant{uint64Slot: defUint64(^uint64(0xFF))}},
		{"1 & 1", cvWant{boolSlot: defBool(true), uint64Slot: defUint64(1)}},
		{"16#F0 OR 16#0F", cvWant{uint64Slot: defUint64(0xFF)}},

		{"3 < 4", cvWant{boolSlot: defBool(true)}},
		{"3 >= 4", cvWant{boolSlot: defBool(false)}},
		{"3 = 3", cvWant{boolSlot: defBool(true)}},
		{"3 <> 3", cvWant{boolSlot: defBool(false)}},
		{"1.5 <= 1.5", cvWant{boolSlot: defBool(true)}},
		{"FALSE < TRUE", cvWant{boolSlot: defBool(true)}},

		{"2#1010 + 8#10", cvWant{uint64Slot: defUint64(18), int64Slot: defInt64(18)}},
		{"7 MOD 3", cvWant{uint64Slot: defUint64(1), int64Slot: defInt64(1)}},
		{"(1 + 2) * 3", cvWant{uint64Slot: defUint64(9), int64Slot: defInt64(9)}},
		{"6 / 3", cvWant{uint64Slot: defUint64(2), int64Slot: defInt64(2)}},
		{"0 - 1", cvWant{uint64Slot: ovflUint64, int64Slot: defInt64(-1)}},
		{"-5", cvWant{uint64Slot: ovflUint64, int64Slot: defInt64(-5)}},
		{"-0", cvWant{uint64Slot: defUint64(0), int64Slot: defInt64(0)}},
		{"-1.5", cvWant{real64Slot: defReal64(-1.5)}},
		{"-9223372036854775808 / -1", cvWant{int64Slot: ovflInt64}},
		{"-9223372036854775808 MOD -1", cvWant{int64Slot: ovflInt64}},
		{"18446744073709551615 + 1", cvWant{uint64Slot: ovflUint64}},
		{"2.0 ** 0.5", cvWant{}},
		{"1.0e308 * 10.0", cvWant{real64Slot: ovflReal64}},

		{"INT#5", cvWant{uint64Slot: defUint64(5), int64Slot: defInt64(5)}},
		{"INT#-5", cvWant{int64Slot: defInt64(-5)}},
		{"LREAL#-1.5", cvWant{real64Slot: defReal64(-1.5)}},
		{"BOOL#TRUE", cvWant{boolSlot: defBool(true)}},
		{"BOOL#0", cvWant{boolSlot: defBool(false)}},
		{"INT#5 + INT#5", cvWant{uint64Slot: defUint64(10), int64Slot: defInt64(10)}},
		{"WORD#16#00FF", cvWant{}},

		{"x + 1", cvWant{}},
		{"MAX(1, 2)", cvWant{}},
		{"arr[2] * 3", cvWant{}},
		{"NOT x", cvWant{}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := foldSource(t, tt.src)
			assertConstValues(t, root.Const(), tt.want)
		})
	}
}

// Constant operands inside a non-constant expression stay annotated even
// though the enclosing node cannot fold.
func TestFoldAnnotatesConstantSubtrees(t *testing.T) {
	root := foldSource(t, "x + (2 * 3)")
	binary, ok := root.(*ast.Binary)
	require.True(t, ok)
	assert.True(t, binary.LExp.Const().Empty())
	assertConstValues(t, binary.RExp.Const(), cvWant{
		uint64Slot: defUint64(6),
		int64Slot:  defInt64(6),
	})
}

func TestFoldCallArguments(t *testing.T) {
	root := foldSource(t, "MAX(1 + 1, y)")
	call, ok := root.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	assertConstValues(t, call.Args[0].Const(), cvWant{
		uint64Slot: defUint64(2),
		int64Slot:  defInt64(2),
	})
	assert.True(t, call.Args[1].Const().Empty())
}

func TestFoldIdempotent(t *testing.T) {
	root, err := parser.ParseExpression("1 + 2 * 3 - x / (4 MOD 0)", "test.st")
	require.NoError(t, err)

	NewConstantFolder().Fold(root)
	first := snapshot(t, root)
	NewConstantFolder().Fold(root)
	assert.Equal(t, first, snapshot(t, root))
}

func snapshot(t *testing.T, root ast.Expression) []string {
	t.Helper()
	var states []string
	ast.Inspect(root, func(exp ast.Expression) {
		raw, err := json.Marshal(exp.Const())
		require.NoError(t, err)
		states = append(states, string(raw))
	})
	return states
}

// A literal too large for int64 still seeds a usable uint64 candidate,
// and one too large for uint64 overflows both.
func TestFoldLiteralSeeding(t *testing.T) {
	root := foldSource(t, "9223372036854775808")
	assertConstValues(t, root.Const(), cvWant{
		uint64Slot: defUint64(1 << 63),
		int64Slot:  ovflInt64,
	})

	root = foldSource(t, "18446744073709551616")
	assertConstValues(t, root.Const(), cvWant{
		uint64Slot: ovflUint64,
		int64Slot:  ovflInt64,
	})
}

func TestIEC559Probe(t *testing.T) {
	assert.True(t, iec559Float64())
}
