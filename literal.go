// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package icescan

import (
	"cmp"
	"fmt"
	"strings"
)

// LiteralType is the set of Go types a Literal may wrap. It mirrors the
// primitive domain PrimitiveType enumerates.
type LiteralType interface {
	bool | int64 | float64 | string
}

// PrimitiveType identifies the type of a field or literal value.
type PrimitiveType int

const (
	BooleanType PrimitiveType = iota
	Int64Type
	Float64Type
	StringType
	// DateType values are stored as int64 days since epoch.
	DateType
	// TimestampType values are stored as int64 microseconds since epoch.
	TimestampType
)

func (t PrimitiveType) String() string {
	switch t {
	case BooleanType:
		return "boolean"
	case Int64Type:
		return "long"
	case Float64Type:
		return "double"
	case StringType:
		return "string"
	case DateType:
		return "date"
	case TimestampType:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Literal is a bound constant value with a known primitive type. It is pure
// and comparable: evaluators never mutate a Literal, only compare it against
// bounds pulled from manifest or data-file statistics.
type Literal interface {
	fmt.Stringer
	Type() PrimitiveType
	// Compare returns -1, 0, or 1 comparing this literal to other, following
	// the usual cmp.Compare contract. Panics if other has a different
	// underlying Go type than this literal (callers only compare literals
	// already known to share a field's type).
	Compare(other Literal) int
	Equals(other Literal) bool
}

// TypedLiteral is the concrete Literal implementation for a given Go type.
type TypedLiteral[T LiteralType] struct {
	val     T
	primTyp PrimitiveType
}

// NewLiteral constructs a Literal wrapping a bool, int64, float64, or string
// value under its natural primitive type (bool->Boolean, int64->Long,
// float64->Double, string->String).
func NewLiteral[T LiteralType](v T) Literal {
	var prim PrimitiveType
	switch any(v).(type) {
	case bool:
		prim = BooleanType
	case int64:
		prim = Int64Type
	case float64:
		prim = Float64Type
	case string:
		prim = StringType
	}

	return TypedLiteral[T]{val: v, primTyp: prim}
}

// NewDateLiteral wraps an int64 day count under DateType rather than Int64Type
// so it compares correctly against date-typed field bounds.
func NewDateLiteral(days int64) Literal {
	return TypedLiteral[int64]{val: days, primTyp: DateType}
}

// NewTimestampLiteral wraps an int64 microsecond count under TimestampType.
func NewTimestampLiteral(micros int64) Literal {
	return TypedLiteral[int64]{val: micros, primTyp: TimestampType}
}

func (t TypedLiteral[T]) Value() T            { return t.val }
func (t TypedLiteral[T]) Type() PrimitiveType { return t.primTyp }

func (t TypedLiteral[T]) String() string {
	return fmt.Sprintf("%v", t.val)
}

func (t TypedLiteral[T]) Compare(other Literal) int {
	rhs, ok := other.(TypedLiteral[T])
	if !ok {
		panic(fmt.Errorf("%w: cannot compare %s literal to %s literal", ErrType, t.Type(), other.Type()))
	}

	switch v := any(t.val).(type) {
	case bool:
		ov := any(rhs.val).(bool)
		if v == ov {
			return 0
		}
		if !v {
			return -1
		}

		return 1
	case string:
		return strings.Compare(v, any(rhs.val).(string))
	case int64:
		return cmp.Compare(v, any(rhs.val).(int64))
	case float64:
		return cmp.Compare(v, any(rhs.val).(float64))
	default:
		panic(fmt.Errorf("%w: unsupported literal value %T", ErrType, t.val))
	}
}

func (t TypedLiteral[T]) Equals(other Literal) bool {
	rhs, ok := other.(TypedLiteral[T])
	if !ok {
		return false
	}

	return t.primTyp == rhs.primTyp && any(t.val) == any(rhs.val)
}
