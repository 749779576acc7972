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

// BindExpr resolves every Reference in expr against schema under the given
// case sensitivity, replacing UnboundPredicate leaves with BoundPredicate
// leaves carrying a field id. It fails with ErrValidation if any reference
// is unknown or, under case-insensitive resolution, ambiguous.
func BindExpr(schema *Schema, expr BooleanExpression, caseSensitive bool) (BooleanExpression, error) {
	switch e := expr.(type) {
	case nil:
		return AlwaysTrue{}, nil
	case AlwaysTrue, AlwaysFalse:
		return e, nil
	case NotExpr:
		child, err := BindExpr(schema, e.Child, caseSensitive)
		if err != nil {
			return nil, err
		}

		return NewNot(child), nil
	case AndExpr:
		left, err := BindExpr(schema, e.Left, caseSensitive)
		if err != nil {
			return nil, err
		}
		right, err := BindExpr(schema, e.Right, caseSensitive)
		if err != nil {
			return nil, err
		}

		return NewAnd(left, right), nil
	case OrExpr:
		left, err := BindExpr(schema, e.Left, caseSensitive)
		if err != nil {
			return nil, err
		}
		right, err := BindExpr(schema, e.Right, caseSensitive)
		if err != nil {
			return nil, err
		}

		return NewOr(left, right), nil
	case UnboundPredicate:
		field, found, ambiguous := schema.FindByName(string(e.term), caseSensitive)
		if ambiguous {
			return nil, fmt.Errorf("%w: ambiguous column reference %q", ErrValidation, e.term)
		}
		if !found {
			return nil, fmt.Errorf("%w: could not find column %q", ErrValidation, e.term)
		}

		return BoundPredicate{
			op:       e.op,
			term:     BoundTerm{FieldID: field.ID, Name: field.Name, Type: field.Type},
			literals: e.literals,
		}, nil
	case BoundPredicate:
		// already bound, e.g. re-binding a residual; pass through unchanged.
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized expression type %T", ErrInternal, expr)
	}
}

// BoundFieldIDs walks a bound expression and returns the set of field ids it
// references.
func BoundFieldIDs(expr BooleanExpression) map[int]struct{} {
	out := make(map[int]struct{})
	collectFieldIDs(expr, out)

	return out
}

func collectFieldIDs(expr BooleanExpression, out map[int]struct{}) {
	switch e := expr.(type) {
	case NotExpr:
		collectFieldIDs(e.Child, out)
	case AndExpr:
		collectFieldIDs(e.Left, out)
		collectFieldIDs(e.Right, out)
	case OrExpr:
		collectFieldIDs(e.Left, out)
		collectFieldIDs(e.Right, out)
	case BoundPredicate:
		out[e.term.FieldID] = struct{}{}
	}
}

// FilterFieldIDs binds rowFilter against schema under caseSensitive and
// returns the set of field ids it references. This is the first step of
// projection resolution (spec §4.2 step 1): it fails with ErrValidation
// under the same conditions BindExpr does.
func FilterFieldIDs(schema *Schema, rowFilter BooleanExpression, caseSensitive bool) (map[int]struct{}, error) {
	bound, err := BindExpr(schema, rowFilter, caseSensitive)
	if err != nil {
		return nil, err
	}

	return BoundFieldIDs(bound), nil
}
