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

// Package analysis implements constant folding for IEC 61131-3 ST
// expressions.
//
// The pass walks the expression tree in post-order and, for every
// subexpression built exclusively from literals and constant operators,
// computes the resulting value. Because the language leaves literals
// polymorphic until data types are resolved, every node carries up to
// four candidate results (bool, int64, uint64, real64), each folded
// independently. The pass never reports overflow itself: it records the
// per-candidate status on the node and leaves diagnostics to the
// data-type checking pass, which knows the expression's actual type.
package analysis

import (
	"math"

	"github.com/ethereum/go-ethereum/log"

	"github.com/practical-formal-methods/stfold/ast"
)

// ConstantFolder annotates expression trees with candidate constant
// values. It is not safe for concurrent use; run one per compilation unit.
type ConstantFolder struct {
	errorCount   int
	warningFound bool
}

// NewConstantFolder creates a folder. If the host floating-point
// implementation does not follow IEC 60559, a single warning is emitted
// on the diagnostics channel: overflow detection on real literals may
// then be imprecise.
func NewConstantFolder() *ConstantFolder {
	f := &ConstantFolder{}
	if !iec559Float64() {
		log.Warn("the platform running the compiler does not implement IEC 60559 floating point numbers; " +
			"overflow detection on the result of operations on REAL/LREAL literals may be imprecise")
		f.warningFound = true
	}
	return f
}

// Fold runs the pass over the tree rooted at exp and returns the number
// of errors accumulated, which is always zero: this pass only annotates.
func (f *ConstantFolder) Fold(exp ast.Expression) int {
	f.fold(exp)
	return f.errorCount
}

// GetErrorCount returns the errors accumulated so far.
func (f *ConstantFolder) GetErrorCount() int {
	return f.errorCount
}

func (f *ConstantFolder) fold(exp ast.Expression) {
	switch sym := exp.(type) {
	case *ast.Integer:
		f.seedInteger(sym, &sym.Symbol)
		// The unprefixed digits 0 and 1 are also boolean literals, so the
		// bool candidate is seeded alongside the integer ones.
		if sym.Values.Uint64Valid() && sym.Values.Uint64Value() <= 1 {
			sym.Values.SetBool(sym.Values.Uint64Value() == 1)
		}
	case *ast.BinaryInteger:
		f.seedInteger(sym, &sym.Symbol)
	case *ast.OctalInteger:
		f.seedInteger(sym, &sym.Symbol)
	case *ast.HexInteger:
		f.seedInteger(sym, &sym.Symbol)
	case *ast.Real:
		f.seedReal(sym, &sym.Symbol)
	case *ast.BoolTrue:
		sym.Const().SetBool(true)
	case *ast.BoolFalse:
		sym.Const().SetBool(false)

	case *ast.IntegerLiteral:
		// The type name is for the data-type checker; only the inner
		// literal's integer candidates propagate up.
		f.fold(sym.Value)
		value, res := sym.Value.Const(), sym.Const()
		if value.Int64Valid() {
			res.SetInt64(value.Int64Value())
		}
		if value.Uint64Valid() {
			res.SetUint64(value.Uint64Value())
		}
	case *ast.RealLiteral:
		f.fold(sym.Value)
		if value := sym.Value.Const(); value.Real64Valid() {
			sym.Const().SetReal64(value.Real64Value())
		}
	case *ast.BooleanLiteral:
		f.fold(sym.Value)
		if value := sym.Value.Const(); value.BoolValid() {
			sym.Const().SetBool(value.BoolValue())
		}
	case *ast.BitString:
		// Bit strings carry no candidate values yet.

	case *ast.NegInteger:
		f.fold(sym.Exp)
		value, res := sym.Exp.Const(), sym.Const()
		if value.Int64Valid() {
			if v, overflow := negInt64(value.Int64Value()); overflow {
				res.OverflowInt64()
			} else {
				res.SetInt64(v)
			}
		}
		// -(MaxInt64+1) is MinInt64, but the positive magnitude only
		// exists in the operand's uint64 candidate.
		if value.Uint64Valid() && value.Uint64Value() == uint64(math.MaxInt64)+1 {
			res.SetInt64(math.MinInt64)
		}
		// A negated literal denotes a negative value, which no unsigned
		// type represents. -0 stays zero.
		if value.Uint64Valid() {
			if value.Uint64Value() == 0 {
				res.SetUint64(0)
			} else {
				res.OverflowUint64()
			}
		}
	case *ast.NegReal:
		f.fold(sym.Exp)
		if value := sym.Exp.Const(); value.Real64Valid() {
			setReal64Checked(sym.Const(), -value.Real64Value())
		}
	case *ast.Neg:
		f.fold(sym.Exp)
		value, res := sym.Exp.Const(), sym.Const()
		if value.Int64Valid() {
			if v, overflow := negInt64(value.Int64Value()); overflow {
				res.OverflowInt64()
			} else {
				res.SetInt64(v)
			}
		}
		if value.Real64Valid() {
			setReal64Checked(res, -value.Real64Value())
		}
	case *ast.Not:
		f.fold(sym.Exp)
		value, res := sym.Exp.Const(), sym.Const()
		if value.BoolValid() {
			res.SetBool(!value.BoolValue())
		}
		if value.Uint64Valid() {
			res.SetUint64(^value.Uint64Value())
		}

	case *ast.Binary:
		f.foldBinary(sym)

	case *ast.Identifier:
		// Not constant; the node keeps all candidates undefined.
	case *ast.Call:
		for _, arg := range sym.Args {
			f.fold(arg)
		}
	case *ast.Index:
		f.fold(sym.Base)
		for _, sub := range sym.Subscripts {
			f.fold(sub)
		}
	}
}

func (f *ConstantFolder) foldBinary(sym *ast.Binary) {
	f.fold(sym.LExp)
	f.fold(sym.RExp)
	l, r, res := sym.LExp.Const(), sym.RExp.Const(), sym.Const()

	switch sym.Op {
	case ast.OpOr:
		foldBoolPair(res, l, r, func(a, b bool) bool { return a || b })
		foldUint64Pair(res, l, r, func(a, b uint64) (uint64, bool) { return a | b, false })
	case ast.OpXor:
		foldBoolPair(res, l, r, func(a, b bool) bool { return a != b })
		foldUint64Pair(res, l, r, func(a, b uint64) (uint64, bool) { return a ^ b, false })
	case ast.OpAnd:
		foldBoolPair(res, l, r, func(a, b bool) bool { return a && b })
		foldUint64Pair(res, l, r, func(a, b uint64) (uint64, bool) { return a & b, false })

	case ast.OpEqu:
		foldBoolCmp(res, l, r, func(a, b bool) bool { return a == b })
		foldUint64Cmp(res, l, r, func(a, b uint64) bool { return a == b })
		foldInt64Cmp(res, l, r, func(a, b int64) bool { return a == b })
		foldReal64Cmp(res, l, r, func(a, b float64) bool { return a == b })
	case ast.OpNotEqu:
		foldBoolCmp(res, l, r, func(a, b bool) bool { return a != b })
		foldUint64Cmp(res, l, r, func(a, b uint64) bool { return a != b })
		foldInt64Cmp(res, l, r, func(a, b int64) bool { return a != b })
		foldReal64Cmp(res, l, r, func(a, b float64) bool { return a != b })
	case ast.OpLt:
		foldBoolCmp(res, l, r, func(a, b bool) bool { return !a && b })
		foldUint64Cmp(res, l, r, func(a, b uint64) bool { return a < b })
		foldInt64Cmp(res, l, r, func(a, b int64) bool { return a < b })
		foldReal64Cmp(res, l, r, func(a, b float64) bool { return a < b })
	case ast.OpGt:
		foldBoolCmp(res, l, r, func(a, b bool) bool { return a && !b })
		foldUint64Cmp(res, l, r, func(a, b uint64) bool { return a > b })
		foldInt64Cmp(res, l, r, func(a, b int64) bool { return a > b })
		foldReal64Cmp(res, l, r, func(a, b float64) bool { return a > b })
	case ast.OpLe:
		foldBoolCmp(res, l, r, func(a, b bool) bool { return !a || b })
		foldUint64Cmp(res, l, r, func(a, b uint64) bool { return a <= b })
		foldInt64Cmp(res, l, r, func(a, b int64) bool { return a <= b })
		foldReal64Cmp(res, l, r, func(a, b float64) bool { return a <= b })
	case ast.OpGe:
		foldBoolCmp(res, l, r, func(a, b bool) bool { return a || !b })
		foldUint64Cmp(res, l, r, func(a, b uint64) bool { return a >= b })
		foldInt64Cmp(res, l, r, func(a, b int64) bool { return a >= b })
		foldReal64Cmp(res, l, r, func(a, b float64) bool { return a >= b })

	case ast.OpAdd:
		foldUint64Pair(res, l, r, addUint64)
		foldInt64Pair(res, l, r, addInt64)
		foldReal64Pair(res, l, r, func(a, b float64) float64 { return a + b })
	case ast.OpSub:
		foldUint64Pair(res, l, r, subUint64)
		foldInt64Pair(res, l, r, subInt64)
		foldReal64Pair(res, l, r, func(a, b float64) float64 { return a - b })
	case ast.OpMul:
		foldUint64Pair(res, l, r, mulUint64)
		foldInt64Pair(res, l, r, mulInt64)
		foldReal64Pair(res, l, r, func(a, b float64) float64 { return a * b })

	case ast.OpDiv:
		if r.Uint64IsZero() {
			res.OverflowUint64()
		} else {
			foldUint64Pair(res, l, r, divUint64)
		}
		if r.Int64IsZero() {
			res.OverflowInt64()
		} else {
			foldInt64Pair(res, l, r, divInt64)
		}
		if r.Real64IsZero() {
			res.OverflowReal64()
		} else {
			foldReal64Pair(res, l, r, func(a, b float64) float64 { return a / b })
		}
	case ast.OpMod:
		// IN1 MOD IN2 is defined as IF IN2=0 THEN 0 ELSE IN1-(IN1/IN2)*IN2,
		// so a zero divisor yields a defined zero, not overflow.
		if r.Uint64IsZero() {
			res.SetUint64(0)
		} else {
			foldUint64Pair(res, l, r, modUint64)
		}
		if r.Int64IsZero() {
			res.SetInt64(0)
		} else {
			foldInt64Pair(res, l, r, modInt64)
		}

	case ast.OpPower:
		// Folded only for integer exponents. When the exponent fits both
		// integer candidates both paths run; the results agree.
		if l.Real64Valid() && r.Int64Valid() {
			setReal64Checked(res, math.Pow(l.Real64Value(), float64(r.Int64Value())))
		}
		if l.Real64Valid() && r.Uint64Valid() {
			setReal64Checked(res, math.Pow(l.Real64Value(), float64(r.Uint64Value())))
		}
	}
}

// seedInteger attempts both integer candidates of a literal. Either may
// individually overflow while the other stays defined.
func (f *ConstantFolder) seedInteger(exp ast.Expression, sym *ast.Symbol) {
	i, overflow, err := extractInt64(exp)
	if err != nil {
		f.internalError(exp, err)
		return
	}
	if overflow {
		sym.Values.OverflowInt64()
	} else {
		sym.Values.SetInt64(i)
	}
	u, overflow, err := extractUint64(exp)
	if err != nil {
		f.internalError(exp, err)
		return
	}
	if overflow {
		sym.Values.OverflowUint64()
	} else {
		sym.Values.SetUint64(u)
	}
}

func (f *ConstantFolder) seedReal(exp ast.Expression, sym *ast.Symbol) {
	v, overflow, err := extractReal64(exp)
	if err != nil {
		f.internalError(exp, err)
		return
	}
	if overflow {
		sym.Values.OverflowReal64()
	} else {
		sym.Values.SetReal64(v)
	}
}

// internalError is the fatal sink for invariant violations, e.g. a
// malformed literal that survived parsing.
func (f *ConstantFolder) internalError(exp ast.Expression, err error) {
	log.Crit("constant folding internal error", "range", exp.Loc().Range(), "err", err)
}

func foldBoolPair(res, l, r *ast.ConstValues, op func(a, b bool) bool) {
	if l.BoolValid() && r.BoolValid() {
		res.SetBool(op(l.BoolValue(), r.BoolValue()))
	}
}

func foldUint64Pair(res, l, r *ast.ConstValues, op func(a, b uint64) (uint64, bool)) {
	if l.Uint64Valid() && r.Uint64Valid() {
		if v, overflow := op(l.Uint64Value(), r.Uint64Value()); overflow {
			res.OverflowUint64()
		} else {
			res.SetUint64(v)
		}
	}
}

func foldInt64Pair(res, l, r *ast.ConstValues, op func(a, b int64) (int64, bool)) {
	if l.Int64Valid() && r.Int64Valid() {
		if v, overflow := op(l.Int64Value(), r.Int64Value()); overflow {
			res.OverflowInt64()
		} else {
			res.SetInt64(v)
		}
	}
}

func foldReal64Pair(res, l, r *ast.ConstValues, op func(a, b float64) float64) {
	if l.Real64Valid() && r.Real64Valid() {
		setReal64Checked(res, op(l.Real64Value(), r.Real64Value()))
	}
}

func setReal64Checked(res *ast.ConstValues, v float64) {
	if real64Overflow(v) {
		res.OverflowReal64()
	} else {
		res.SetReal64(v)
	}
}

func foldBoolCmp(res, l, r *ast.ConstValues, cmp func(a, b bool) bool) {
	if l.BoolValid() && r.BoolValid() {
		res.SetBool(cmp(l.BoolValue(), r.BoolValue()))
	}
}

func foldUint64Cmp(res, l, r *ast.ConstValues, cmp func(a, b uint64) bool) {
	if l.Uint64Valid() && r.Uint64Valid() {
		res.SetBool(cmp(l.Uint64Value(), r.Uint64Value()))
	}
}

func foldInt64Cmp(res, l, r *ast.ConstValues, cmp func(a, b int64) bool) {
	if l.Int64Valid() && r.Int64Valid() {
		res.SetBool(cmp(l.Int64Value(), r.Int64Value()))
	}
}

func foldReal64Cmp(res, l, r *ast.ConstValues, cmp func(a, b float64) bool) {
	if l.Real64Valid() && r.Real64Valid() {
		res.SetBool(cmp(l.Real64Value(), r.Real64Value()))
	}
}

// iec559Float64 probes the host float64 implementation for IEC 60559
// special-value behavior.
func iec559Float64() bool {
	if math.Float64bits(1.0) != 0x3FF0000000000000 {
		return false
	}
	huge := math.MaxFloat64
	if !math.IsInf(huge*2, 1) {
		return false
	}
	if !math.IsNaN(math.NaN()) {
		return false
	}
	tiny := math.SmallestNonzeroFloat64
	return tiny/2 == 0
}
