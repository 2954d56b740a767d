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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/practical-formal-methods/stfold/ast"
)

// integerText returns the digits of an integer literal with the base
// prefix removed, together with the base to parse them in.
func integerText(sym ast.Expression) (string, int, error) {
	switch lit := sym.(type) {
	case *ast.Integer:
		return lit.Value, 10, nil
	case *ast.BinaryInteger:
		return strings.TrimPrefix(lit.Value, "2#"), 2, nil
	case *ast.OctalInteger:
		return strings.TrimPrefix(lit.Value, "8#"), 8, nil
	case *ast.HexInteger:
		return strings.TrimPrefix(lit.Value, "16#"), 16, nil
	}
	return "", 0, errors.Errorf("not an integer literal: %T", sym)
}

// rangeError reports whether a strconv failure was a pure out-of-range
// condition (the text itself was well-formed).
func rangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// extractInt64 parses an integer literal as a signed 64-bit value.
// overflow is true when the textual value lies outside [MinInt64, MaxInt64].
// An error means the scanner handed over text the parser should never have
// accepted, an internal invariant violation.
func extractInt64(sym ast.Expression) (int64, bool, error) {
	text, base, err := integerText(sym)
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), base, 64)
	if err != nil {
		if rangeError(err) {
			return v, true, nil
		}
		return 0, false, errors.Wrap(err, "malformed integer literal")
	}
	return v, false, nil
}

// extractUint64 parses an integer literal as an unsigned 64-bit value.
// overflow is true when the textual value lies outside [0, MaxUint64].
func extractUint64(sym ast.Expression) (uint64, bool, error) {
	text, base, err := integerText(sym)
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(text, "_", ""), base, 64)
	if err != nil {
		if rangeError(err) {
			return v, true, nil
		}
		return 0, false, errors.Wrap(err, "malformed integer literal")
	}
	return v, false, nil
}

// extractReal64 parses a real literal (integer "." integer with an
// optional exponent) as a 64-bit float. overflow is true when the parsed
// magnitude is outside the representable range.
func extractReal64(sym ast.Expression) (float64, bool, error) {
	lit, ok := sym.(*ast.Real)
	if !ok {
		return 0, false, errors.Errorf("not a real literal: %T", sym)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(lit.Value, "_", ""), 64)
	if err != nil {
		if rangeError(err) {
			return v, true, nil
		}
		return 0, false, errors.Wrap(err, "malformed real literal")
	}
	return v, false, nil
}
