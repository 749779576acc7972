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

// PartitionField maps one partition column to the source column it derives
// from. Partition fields in this module are always identity aliases of a
// source column (see SPEC_FULL.md §4 / DESIGN.md open-question 3): no
// bucket, truncate, or time-derived transforms.
type PartitionField struct {
	SourceID int
	FieldID  int
	Name     string
}

// PartitionSpec is an ordered, versioned list of partition fields.
type PartitionSpec struct {
	ID     int
	Fields []PartitionField
}

// FieldBySourceName resolves a row-filter column name to the partition field
// derived from it, if the table is partitioned by that column. Used by the
// manifest and residual evaluators to decide whether a predicate can be
// answered from partition-level statistics at all.
func (ps PartitionSpec) FieldBySourceName(schema *Schema, name string, caseSensitive bool) (PartitionField, int, bool) {
	srcField, found, ambiguous := schema.FindByName(name, caseSensitive)
	if !found || ambiguous {
		return PartitionField{}, -1, false
	}

	for i, pf := range ps.Fields {
		if pf.SourceID == srcField.ID {
			return pf, i, true
		}
	}

	return PartitionField{}, -1, false
}

// PartitionType returns the Schema a partition tuple's values are typed
// against: one field per partition column, typed like its source column.
func (ps PartitionSpec) PartitionType(schema *Schema) *Schema {
	fields := make([]Field, 0, len(ps.Fields))
	for _, pf := range ps.Fields {
		srcField, ok := schema.FindByID(pf.SourceID)
		if !ok {
			continue
		}
		fields = append(fields, Field{ID: pf.FieldID, Name: pf.Name, Type: srcField.Type})
	}

	return &Schema{Fields: fields}
}
