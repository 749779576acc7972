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

package table

import (
	"fmt"

	icescan "github.com/riverlake/icescan"
)

const (
	rowsMightMatch  = true
	rowsCannotMatch = false
)

// partitionFieldMaps resolves every field of spec against schema through
// PartitionSpec.FieldBySourceName, the single source of truth for mapping a
// partition column to its source field and its position in a manifest's
// PartitionSummary (which is parallel to spec.Fields). A field spec.Fields
// names but schema no longer carries is simply absent from both maps.
func partitionFieldMaps(spec icescan.PartitionSpec, schema *icescan.Schema, caseSensitive bool) (posBySourceID, fieldIDBySourceID map[int]int) {
	posBySourceID = make(map[int]int, len(spec.Fields))
	fieldIDBySourceID = make(map[int]int, len(spec.Fields))
	for _, pf := range spec.Fields {
		src, ok := schema.FindByID(pf.SourceID)
		if !ok {
			continue
		}
		resolved, pos, ok := spec.FieldBySourceName(schema, src.Name, caseSensitive)
		if !ok {
			continue
		}
		posBySourceID[resolved.SourceID] = pos
		fieldIDBySourceID[resolved.SourceID] = resolved.FieldID
	}

	return posBySourceID, fieldIDBySourceID
}

// NewManifestEvaluator builds a function deciding whether a manifest file
// might contain a row matching filter, given spec and schema. One instance
// is built per (spec id, filter, case sensitivity) and memoized for the
// scan's lifetime (spec.md §4.3); the function itself is pure.
//
// filter is bound against the table schema; a bound predicate whose column
// is the source of a partition field is answered from that field's entry in
// the manifest's partition summary, and a predicate on any other column is
// treated as an unknown operand evaluating to true. Unlike the
// teacher's two-pass inclusive-projection-then-bind pipeline (which maps a
// source-column predicate through a field transform into a partition-column
// predicate), this module projects directly — every partition field here is
// an identity alias of its source column (see DESIGN.md open-question 3),
// so there is no transform step to run.
func NewManifestEvaluator(spec icescan.PartitionSpec, schema *icescan.Schema, filter icescan.BooleanExpression, caseSensitive bool) (func(icescan.ManifestFile) (bool, error), error) {
	if pt := spec.PartitionType(schema); len(pt.Fields) != len(spec.Fields) {
		return nil, fmt.Errorf("%w: partition spec %d names a source column absent from schema %d", icescan.ErrInvalidArgument, spec.ID, schema.ID)
	}

	rewritten := icescan.RewriteNotExpr(filter)
	bound, err := icescan.BindExpr(schema, rewritten, caseSensitive)
	if err != nil {
		return nil, err
	}

	posBySourceID, _ := partitionFieldMaps(spec, schema, caseSensitive)

	return func(mf icescan.ManifestFile) (bool, error) {
		if len(mf.PartitionSummary) == 0 {
			return rowsMightMatch, nil
		}

		return evalManifest(bound, posBySourceID, mf.PartitionSummary)
	}, nil
}

func evalManifest(expr icescan.BooleanExpression, posBySourceID map[int]int, summary []icescan.FieldSummary) (bool, error) {
	switch e := expr.(type) {
	case icescan.AlwaysTrue:
		return rowsMightMatch, nil
	case icescan.AlwaysFalse:
		return rowsCannotMatch, nil
	case icescan.AndExpr:
		left, err := evalManifest(e.Left, posBySourceID, summary)
		if err != nil || !left {
			return left, err
		}

		return evalManifest(e.Right, posBySourceID, summary)
	case icescan.OrExpr:
		left, err := evalManifest(e.Left, posBySourceID, summary)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}

		return evalManifest(e.Right, posBySourceID, summary)
	case icescan.BoundPredicate:
		pos, ok := posBySourceID[e.Term().FieldID]
		if !ok {
			// not a partition column: unknown operand, evaluates to true
			// (spec.md §4.3).
			return rowsMightMatch, nil
		}

		return evalPartitionPredicate(e, summary[pos]), nil
	default:
		return false, fmt.Errorf("%w: manifest evaluator cannot walk %T (Not should already be rewritten)", icescan.ErrInternal, expr)
	}
}

func evalPartitionPredicate(pred icescan.BoundPredicate, fs icescan.FieldSummary) bool {
	switch pred.Op() {
	case icescan.OpIsNull:
		return fs.ContainsNull
	case icescan.OpNotNull:
		return !(fs.ContainsNull && fs.LowerBound == nil)
	case icescan.OpEQ:
		lit := pred.Literals()[0]
		if fs.LowerBound == nil || fs.UpperBound == nil {
			return rowsCannotMatch
		}
		if fs.LowerBound.Compare(lit) > 0 || fs.UpperBound.Compare(lit) < 0 {
			return rowsCannotMatch
		}

		return rowsMightMatch
	case icescan.OpNEQ:
		// bounds are not necessarily a true min/max of the file, so this
		// cannot be ruled out from them.
		return rowsMightMatch
	case icescan.OpLT:
		if fs.LowerBound == nil {
			return rowsCannotMatch
		}

		return fs.LowerBound.Compare(pred.Literals()[0]) < 0
	case icescan.OpLTEQ:
		if fs.LowerBound == nil {
			return rowsCannotMatch
		}

		return fs.LowerBound.Compare(pred.Literals()[0]) <= 0
	case icescan.OpGT:
		if fs.UpperBound == nil {
			return rowsCannotMatch
		}

		return fs.UpperBound.Compare(pred.Literals()[0]) > 0
	case icescan.OpGTEQ:
		if fs.UpperBound == nil {
			return rowsCannotMatch
		}

		return fs.UpperBound.Compare(pred.Literals()[0]) >= 0
	case icescan.OpIn:
		if fs.LowerBound == nil {
			return rowsCannotMatch
		}
		for _, lit := range pred.Literals() {
			if fs.LowerBound.Compare(lit) <= 0 && fs.UpperBound.Compare(lit) >= 0 {
				return rowsMightMatch
			}
		}

		return rowsCannotMatch
	case icescan.OpNotIn:
		return rowsMightMatch
	default:
		return rowsMightMatch
	}
}

// NewMetricsEvaluator builds a function deciding whether a data file might
// contain a row matching filter, using the file's per-column statistics
// (spec.md §4.5's filter_rows refinement). It is the manifest evaluator's
// counterpart at entry granularity: same inclusive-evaluation shape, but
// keyed by column id against ColumnStat rather than by partition position
// against FieldSummary.
func NewMetricsEvaluator(schema *icescan.Schema, filter icescan.BooleanExpression, caseSensitive bool) (func(icescan.DataFile) (bool, error), error) {
	rewritten := icescan.RewriteNotExpr(filter)
	bound, err := icescan.BindExpr(schema, rewritten, caseSensitive)
	if err != nil {
		return nil, err
	}

	return func(df icescan.DataFile) (bool, error) {
		return evalMetrics(bound, df)
	}, nil
}

func evalMetrics(expr icescan.BooleanExpression, df icescan.DataFile) (bool, error) {
	switch e := expr.(type) {
	case icescan.AlwaysTrue:
		return rowsMightMatch, nil
	case icescan.AlwaysFalse:
		return rowsCannotMatch, nil
	case icescan.AndExpr:
		left, err := evalMetrics(e.Left, df)
		if err != nil || !left {
			return left, err
		}

		return evalMetrics(e.Right, df)
	case icescan.OrExpr:
		left, err := evalMetrics(e.Left, df)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}

		return evalMetrics(e.Right, df)
	case icescan.BoundPredicate:
		stat, ok := df.Stats[e.Term().FieldID]
		if !ok {
			return rowsMightMatch, nil
		}

		return evalStatPredicate(e, stat, df.RecordCount), nil
	default:
		return false, fmt.Errorf("%w: metrics evaluator cannot walk %T (Not should already be rewritten)", icescan.ErrInternal, expr)
	}
}

func evalStatPredicate(pred icescan.BoundPredicate, stat icescan.ColumnStat, recordCount int64) bool {
	// A nil bound means unknown unless the counts show every value is null.
	allNull := stat.ValueCount > 0 && stat.NullValueCount == stat.ValueCount

	switch pred.Op() {
	case icescan.OpIsNull:
		return stat.NullValueCount > 0
	case icescan.OpNotNull:
		return recordCount == 0 || stat.NullValueCount < recordCount
	case icescan.OpEQ:
		lit := pred.Literals()[0]
		if stat.LowerBound == nil || stat.UpperBound == nil {
			return !allNull
		}
		if stat.LowerBound.Compare(lit) > 0 || stat.UpperBound.Compare(lit) < 0 {
			return rowsCannotMatch
		}

		return rowsMightMatch
	case icescan.OpNEQ:
		return rowsMightMatch
	case icescan.OpLT:
		if stat.LowerBound == nil {
			return !allNull
		}

		return stat.LowerBound.Compare(pred.Literals()[0]) < 0
	case icescan.OpLTEQ:
		if stat.LowerBound == nil {
			return !allNull
		}

		return stat.LowerBound.Compare(pred.Literals()[0]) <= 0
	case icescan.OpGT:
		if stat.UpperBound == nil {
			return !allNull
		}

		return stat.UpperBound.Compare(pred.Literals()[0]) > 0
	case icescan.OpGTEQ:
		if stat.UpperBound == nil {
			return !allNull
		}

		return stat.UpperBound.Compare(pred.Literals()[0]) >= 0
	case icescan.OpIn:
		if stat.LowerBound == nil || stat.UpperBound == nil {
			return !allNull
		}
		for _, lit := range pred.Literals() {
			if stat.LowerBound.Compare(lit) <= 0 && stat.UpperBound.Compare(lit) >= 0 {
				return rowsMightMatch
			}
		}

		return rowsCannotMatch
	case icescan.OpNotIn:
		return rowsMightMatch
	default:
		return rowsMightMatch
	}
}

// Residual computes, for a given data file's partition tuple, the row
// filter a per-row reader must still enforce (spec.md §4.4). Predicates on
// partition columns are resolved against the concrete value the file was
// written under, collapsing to AlwaysTrue/AlwaysFalse; everything else
// (predicates on non-partition columns, and connectives that don't fully
// collapse) survives into the returned expression. schema/caseSensitive are
// the same pair filter was bound under, and are passed through to
// PartitionSpec.FieldBySourceName so residual and the manifest evaluator
// resolve partition columns the same way.
func Residual(spec icescan.PartitionSpec, schema *icescan.Schema, caseSensitive bool, filter icescan.BooleanExpression, partition map[int]icescan.Literal) icescan.BooleanExpression {
	posBySourceID, partitionFieldIDBySourceID := partitionFieldMaps(spec, schema, caseSensitive)

	return residualize(icescan.RewriteNotExpr(filter), posBySourceID, partitionFieldIDBySourceID, partition)
}

func residualize(expr icescan.BooleanExpression, posBySourceID, partitionFieldIDBySourceID map[int]int, partition map[int]icescan.Literal) icescan.BooleanExpression {
	switch e := expr.(type) {
	case icescan.AndExpr:
		return icescan.NewAnd(
			residualize(e.Left, posBySourceID, partitionFieldIDBySourceID, partition),
			residualize(e.Right, posBySourceID, partitionFieldIDBySourceID, partition),
		)
	case icescan.OrExpr:
		return icescan.NewOr(
			residualize(e.Left, posBySourceID, partitionFieldIDBySourceID, partition),
			residualize(e.Right, posBySourceID, partitionFieldIDBySourceID, partition),
		)
	case icescan.BoundPredicate:
		if _, ok := posBySourceID[e.Term().FieldID]; !ok {
			return e
		}
		fieldID := partitionFieldIDBySourceID[e.Term().FieldID]
		val, hasVal := partition[fieldID]
		if evalPredicateAgainstValue(e, val, hasVal) {
			return icescan.AlwaysTrue{}
		}

		return icescan.AlwaysFalse{}
	default:
		return e
	}
}

func evalPredicateAgainstValue(pred icescan.BoundPredicate, val icescan.Literal, hasVal bool) bool {
	switch pred.Op() {
	case icescan.OpIsNull:
		return !hasVal
	case icescan.OpNotNull:
		return hasVal
	}

	if !hasVal {
		return false
	}

	switch pred.Op() {
	case icescan.OpEQ:
		return val.Equals(pred.Literals()[0])
	case icescan.OpNEQ:
		return !val.Equals(pred.Literals()[0])
	case icescan.OpLT:
		return val.Compare(pred.Literals()[0]) < 0
	case icescan.OpLTEQ:
		return val.Compare(pred.Literals()[0]) <= 0
	case icescan.OpGT:
		return val.Compare(pred.Literals()[0]) > 0
	case icescan.OpGTEQ:
		return val.Compare(pred.Literals()[0]) >= 0
	case icescan.OpIn:
		for _, lit := range pred.Literals() {
			if val.Equals(lit) {
				return true
			}
		}

		return false
	case icescan.OpNotIn:
		for _, lit := range pred.Literals() {
			if val.Equals(lit) {
				return false
			}
		}

		return true
	default:
		return true
	}
}
