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
	"math"

	ethmath "github.com/ethereum/go-ethereum/common/math"
)

// Integer overflow is detected by precondition tests on the operands,
// never by inspecting a wrapped result. The unsigned checks come from
// go-ethereum's Safe* helpers, which use the same formulation. Floats
// are the exception: the operation runs first and the result is then
// tested for NaN and infinities.

// addUint64 returns a+b and whether the sum wrapped.
func addUint64(a, b uint64) (uint64, bool) {
	return ethmath.SafeAdd(a, b)
}

// subUint64 returns a-b and whether b > a.
func subUint64(a, b uint64) (uint64, bool) {
	return ethmath.SafeSub(a, b)
}

// mulUint64 returns a*b and whether the product wrapped.
func mulUint64(a, b uint64) (uint64, bool) {
	return ethmath.SafeMul(a, b)
}

// divUint64 returns a/b. The caller guards b != 0.
func divUint64(a, b uint64) (uint64, bool) {
	return a / b, false
}

// modUint64 returns a MOD b. The caller absorbs b == 0 to zero; no other
// case overflows.
func modUint64(a, b uint64) (uint64, bool) {
	return a % b, false
}

// addInt64 returns a+b and whether the mathematical sum is outside int64.
func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, true
	}
	return a + b, false
}

// subInt64 returns a-b and whether the mathematical difference is outside int64.
func subInt64(a, b int64) (int64, bool) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, true
	}
	return a - b, false
}

// mulInt64 returns a*b and whether the mathematical product is outside
// int64, testing each sign quadrant against the limits divided by the
// non-zero operand.
func mulInt64(a, b int64) (int64, bool) {
	if (a > 0 && b > 0 && a > math.MaxInt64/b) ||
		(a > 0 && b <= 0 && b < math.MinInt64/a) ||
		(a <= 0 && b > 0 && a < math.MinInt64/b) ||
		(a <= 0 && b <= 0 && a != 0 && b < math.MaxInt64/a) {
		return 0, true
	}
	return a * b, false
}

// divInt64 returns a/b. The caller guards b != 0; the only remaining
// overflow is MinInt64 / -1.
func divInt64(a, b int64) (int64, bool) {
	if a == math.MinInt64 && b == -1 {
		return 0, true
	}
	return a / b, false
}

// modInt64 returns a MOD b. The caller absorbs b == 0 to zero. MinInt64
// MOD -1 overflows: the standard defines MOD through a division that
// itself overflows.
func modInt64(a, b int64) (int64, bool) {
	if a == math.MinInt64 && b == -1 {
		return 0, true
	}
	return a % b, false
}

// negInt64 returns -a and whether a is MinInt64, whose negation is not
// representable.
func negInt64(a int64) (int64, bool) {
	if a == math.MinInt64 {
		return 0, true
	}
	return -a, false
}

// real64Overflow reports whether a float result must be treated as
// overflow. Section 2.5.1.5.2 forbids results exceeding the range of the
// output type, so infinities count as overflow along with NaN.
func real64Overflow(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
