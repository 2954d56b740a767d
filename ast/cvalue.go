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

// ConstStatus is the state of one candidate constant value.
type ConstStatus int

const (
	// StatusUndefined means the slot was allocated but never assigned.
	StatusUndefined ConstStatus = iota
	// StatusDefined means the slot holds a usable value.
	StatusDefined
	// StatusOverflow means an evaluation was attempted but the result
	// does not fit the slot's type. The value must not be read.
	StatusOverflow
)

// String implements fmt.Stringer, and is also used by MarshalJSON.
func (s ConstStatus) String() string {
	switch s {
	case StatusDefined:
		return "defined"
	case StatusOverflow:
		return "overflow"
	}
	return "undefined"
}

func (s ConstStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// BoolConst is the bool candidate constant of an expression.
type BoolConst struct {
	Status ConstStatus `json:"status"`
	Value  bool        `json:"value"`
}

// Int64Const is the signed 64-bit candidate constant of an expression.
type Int64Const struct {
	Status ConstStatus `json:"status"`
	Value  int64       `json:"value"`
}

// Uint64Const is the unsigned 64-bit candidate constant of an expression.
type Uint64Const struct {
	Status ConstStatus `json:"status"`
	Value  uint64      `json:"value"`
}

// Real64Const is the 64-bit float candidate constant of an expression.
type Real64Const struct {
	Status ConstStatus `json:"status"`
	Value  float64     `json:"value"`
}

// ConstValues carries the four candidate constant values of an expression.
//
// The same source text (e.g. "1 AND 0") may legally denote a boolean, a
// signed integer, an unsigned integer or a float, and the actual data type
// is only resolved by a later pass. Each candidate is therefore tracked
// independently: a nil slot means the candidate was never considered
// (undefined), and an allocated slot is either defined or overflowed.
// Overflow in one candidate never taints the others.
type ConstValues struct {
	Bool   *BoolConst   `json:"bool,omitempty"`
	Int64  *Int64Const  `json:"int64,omitempty"`
	Uint64 *Uint64Const `json:"uint64,omitempty"`
	Real64 *Real64Const `json:"real64,omitempty"`
}

// SetBool makes the bool candidate defined with the given value.
func (cv *ConstValues) SetBool(v bool) {
	cv.Bool = &BoolConst{Status: StatusDefined, Value: v}
}

// OverflowBool marks the bool candidate as overflowed.
func (cv *ConstValues) OverflowBool() {
	cv.Bool = &BoolConst{Status: StatusOverflow}
}

// BoolValid reports whether the bool candidate is defined.
func (cv *ConstValues) BoolValid() bool {
	return cv.Bool != nil && cv.Bool.Status == StatusDefined
}

// BoolValue returns the bool candidate. Only meaningful when BoolValid.
func (cv *ConstValues) BoolValue() bool {
	return cv.Bool.Value
}

// BoolIsZero reports whether the bool candidate is defined and false.
func (cv *ConstValues) BoolIsZero() bool {
	return cv.BoolValid() && !cv.Bool.Value
}

// SetInt64 makes the int64 candidate defined with the given value.
func (cv *ConstValues) SetInt64(v int64) {
	cv.Int64 = &Int64Const{Status: StatusDefined, Value: v}
}

// OverflowInt64 marks the int64 candidate as overflowed.
func (cv *ConstValues) OverflowInt64() {
	cv.Int64 = &Int64Const{Status: StatusOverflow}
}

// Int64Valid reports whether the int64 candidate is defined.
func (cv *ConstValues) Int64Valid() bool {
	return cv.Int64 != nil && cv.Int64.Status == StatusDefined
}

// Int64Value returns the int64 candidate. Only meaningful when Int64Valid.
func (cv *ConstValues) Int64Value() int64 {
	return cv.Int64.Value
}

// Int64IsZero reports whether the int64 candidate is defined and zero.
func (cv *ConstValues) Int64IsZero() bool {
	return cv.Int64Valid() && cv.Int64.Value == 0
}

// SetUint64 makes the uint64 candidate defined with the given value.
func (cv *ConstValues) SetUint64(v uint64) {
	cv.Uint64 = &Uint64Const{Status: StatusDefined, Value: v}
}

// OverflowUint64 marks the uint64 candidate as overflowed.
func (cv *ConstValues) OverflowUint64() {
	cv.Uint64 = &Uint64Const{Status: StatusOverflow}
}

// Uint64Valid reports whether the uint64 candidate is defined.
func (cv *ConstValues) Uint64Valid() bool {
	return cv.Uint64 != nil && cv.Uint64.Status == StatusDefined
}

// Uint64Value returns the uint64 candidate. Only meaningful when Uint64Valid.
func (cv *ConstValues) Uint64Value() uint64 {
	return cv.Uint64.Value
}

// Uint64IsZero reports whether the uint64 candidate is defined and zero.
func (cv *ConstValues) Uint64IsZero() bool {
	return cv.Uint64Valid() && cv.Uint64.Value == 0
}

// SetReal64 makes the real64 candidate defined with the given value.
func (cv *ConstValues) SetReal64(v float64) {
	cv.Real64 = &Real64Const{Status: StatusDefined, Value: v}
}

// OverflowReal64 marks the real64 candidate as overflowed.
func (cv *ConstValues) OverflowReal64() {
	cv.Real64 = &Real64Const{Status: StatusOverflow}
}

// Real64Valid reports whether the real64 candidate is defined.
func (cv *ConstValues) Real64Valid() bool {
	return cv.Real64 != nil && cv.Real64.Status == StatusDefined
}

// Real64Value returns the real64 candidate. Only meaningful when Real64Valid.
func (cv *ConstValues) Real64Value() float64 {
	return cv.Real64.Value
}

// Real64IsZero reports whether the real64 candidate is defined and zero.
func (cv *ConstValues) Real64IsZero() bool {
	return cv.Real64Valid() && cv.Real64.Value == 0
}

// Empty reports whether no candidate slot was ever allocated.
func (cv *ConstValues) Empty() bool {
	return cv.Bool == nil && cv.Int64 == nil && cv.Uint64 == nil && cv.Real64 == nil
}
