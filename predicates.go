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

import "fmt"

// Reference names a column by its unbound (pre-binding) name. BindExpr
// resolves it to a Field under a given case sensitivity.
type Reference string

// BoundTerm is a Reference resolved against a Schema: it carries the
// field id an evaluator indexes bounds/statistics by.
type BoundTerm struct {
	FieldID int
	Name    string
	Type    PrimitiveType
}

// UnboundPredicate is a single-term predicate before binding: a comparison,
// null check, or set membership test against a named column.
type UnboundPredicate struct {
	op       Operation
	term     Reference
	literals []Literal
}

// LiteralPredicate builds a two-operand comparison predicate (EQ, NEQ, LT,
// LTEQ, GT, GTEQ).
func LiteralPredicate(op Operation, term Reference, lit Literal) UnboundPredicate {
	return UnboundPredicate{op: op, term: term, literals: []Literal{lit}}
}

// UnaryPredicate builds a one-operand predicate (IsNull, NotNull).
func UnaryPredicate(op Operation, term Reference) UnboundPredicate {
	return UnboundPredicate{op: op, term: term}
}

// SetPredicate builds an In/NotIn predicate over a literal set.
func SetPredicate(op Operation, term Reference, lits []Literal) BooleanExpression {
	if len(lits) == 0 {
		if op == OpIn {
			return AlwaysFalse{}
		}

		return AlwaysTrue{}
	}
	if len(lits) == 1 {
		if op == OpIn {
			return LiteralPredicate(OpEQ, term, lits[0])
		}

		return LiteralPredicate(OpNEQ, term, lits[0])
	}

	return UnboundPredicate{op: op, term: term, literals: lits}
}

func (p UnboundPredicate) Op() Operation { return p.op }
func (p UnboundPredicate) Term() Reference { return p.term }
func (p UnboundPredicate) Literals() []Literal { return p.literals }

func (p UnboundPredicate) String() string {
	return fmt.Sprintf("%s(%s, %v)", opName(p.op), p.term, p.literals)
}

func (p UnboundPredicate) Negate() BooleanExpression {
	return UnboundPredicate{op: negate(p.op), term: p.term, literals: p.literals}
}

// BoundPredicate is an UnboundPredicate after its term has been resolved to
// a field id. Evaluators only ever operate on BoundPredicates.
type BoundPredicate struct {
	op       Operation
	term     BoundTerm
	literals []Literal
}

func (p BoundPredicate) Op() Operation       { return p.op }
func (p BoundPredicate) Term() BoundTerm     { return p.term }
func (p BoundPredicate) Literals() []Literal { return p.literals }

func (p BoundPredicate) String() string {
	return fmt.Sprintf("%s(#%d %s, %v)", opName(p.op), p.term.FieldID, p.term.Name, p.literals)
}

func (p BoundPredicate) Negate() BooleanExpression {
	return BoundPredicate{op: negate(p.op), term: p.term, literals: p.literals}
}

func negate(op Operation) Operation {
	switch op {
	case OpIsNull:
		return OpNotNull
	case OpNotNull:
		return OpIsNull
	case OpLT:
		return OpGTEQ
	case OpLTEQ:
		return OpGT
	case OpGT:
		return OpLTEQ
	case OpGTEQ:
		return OpLT
	case OpEQ:
		return OpNEQ
	case OpNEQ:
		return OpEQ
	case OpIn:
		return OpNotIn
	case OpNotIn:
		return OpIn
	default:
		panic(fmt.Errorf("%w: no negation for operation %v", ErrInternal, op))
	}
}

func opName(op Operation) string {
	switch op {
	case OpIsNull:
		return "is_null"
	case OpNotNull:
		return "not_null"
	case OpLT:
		return "lt"
	case OpLTEQ:
		return "lteq"
	case OpGT:
		return "gt"
	case OpGTEQ:
		return "gteq"
	case OpEQ:
		return "eq"
	case OpNEQ:
		return "neq"
	case OpIn:
		return "in"
	case OpNotIn:
		return "not_in"
	default:
		return "unknown"
	}
}

// IsNull builds an IsNull predicate on the named column.
func IsNull(term Reference) UnboundPredicate { return UnaryPredicate(OpIsNull, term) }

// NotNull builds a NotNull predicate on the named column.
func NotNull(term Reference) UnboundPredicate { return UnaryPredicate(OpNotNull, term) }

// EqualTo builds an equality predicate.
func EqualTo[T LiteralType](term Reference, v T) UnboundPredicate {
	return LiteralPredicate(OpEQ, term, NewLiteral(v))
}

// NotEqualTo builds an inequality predicate.
func NotEqualTo[T LiteralType](term Reference, v T) UnboundPredicate {
	return LiteralPredicate(OpNEQ, term, NewLiteral(v))
}

// LessThan builds a strict less-than predicate.
func LessThan[T LiteralType](term Reference, v T) UnboundPredicate {
	return LiteralPredicate(OpLT, term, NewLiteral(v))
}

// LessThanEqual builds a less-than-or-equal predicate.
func LessThanEqual[T LiteralType](term Reference, v T) UnboundPredicate {
	return LiteralPredicate(OpLTEQ, term, NewLiteral(v))
}

// GreaterThan builds a strict greater-than predicate.
func GreaterThan[T LiteralType](term Reference, v T) UnboundPredicate {
	return LiteralPredicate(OpGT, term, NewLiteral(v))
}

// GreaterThanEqual builds a greater-than-or-equal predicate.
func GreaterThanEqual[T LiteralType](term Reference, v T) UnboundPredicate {
	return LiteralPredicate(OpGTEQ, term, NewLiteral(v))
}

// IsIn builds a set-membership predicate, reducing to AlwaysFalse, EqualTo,
// or a genuine In predicate depending on how many values are given.
func IsIn[T LiteralType](term Reference, vals ...T) BooleanExpression {
	lits := make([]Literal, len(vals))
	for i, v := range vals {
		lits[i] = NewLiteral(v)
	}

	return SetPredicate(OpIn, term, lits)
}

// NotIn builds the negated set-membership predicate.
func NotIn[T LiteralType](term Reference, vals ...T) BooleanExpression {
	lits := make([]Literal, len(vals))
	for i, v := range vals {
		lits[i] = NewLiteral(v)
	}

	return SetPredicate(OpNotIn, term, lits)
}
