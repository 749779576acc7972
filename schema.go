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
	"fmt"
	"strings"
)

// Field is one column of a Schema: a stable field id, a name, and a type.
// Unlike the teacher's NestedField, Field is always a leaf of a flat
// top-level struct: scan planning only needs field-id binding for row
// filters and projections, never nested struct/list/map navigation (see
// SPEC_FULL.md §4 on the partition-transform scope decision for the
// parallel reasoning behind this simplification).
type Field struct {
	ID       int
	Name     string
	Type     PrimitiveType
	Required bool
}

func (f Field) String() string {
	req := "optional"
	if f.Required {
		req = "required"
	}

	return fmt.Sprintf("%d: %s: %s %s", f.ID, f.Name, req, f.Type)
}

// Schema is an ordered, immutable list of fields. A *Schema is shared
// read-only across scans; all "with"-style operations return a new Schema.
type Schema struct {
	ID     int
	Fields []Field
}

// NewSchema constructs a Schema from a list of fields in table order.
func NewSchema(id int, fields ...Field) *Schema {
	return &Schema{ID: id, Fields: fields}
}

// FieldIDs returns every field id in table order.
func (s *Schema) FieldIDs() []int {
	out := make([]int, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.ID
	}

	return out
}

// FindByID returns the field with the given id, if present.
func (s *Schema) FindByID(id int) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}

	return Field{}, false
}

// FindByName resolves name to a field under the given case sensitivity.
// Case-insensitive resolution that matches more than one field is reported
// as ambiguous via the second return value.
func (s *Schema) FindByName(name string, caseSensitive bool) (f Field, found, ambiguous bool) {
	if caseSensitive {
		for _, field := range s.Fields {
			if field.Name == name {
				return field, true, false
			}
		}

		return Field{}, false, false
	}

	lower := strings.ToLower(name)
	for _, field := range s.Fields {
		if strings.ToLower(field.Name) == lower {
			if found {
				return Field{}, true, true
			}
			f, found = field, true
		}
	}

	return f, found, false
}

// Select returns a new Schema containing only the named columns, in the
// original table order, resolved under the given case sensitivity.
// caseInsensitiveSelect ambiguity is a ValidationError, as is an unknown
// column name.
func (s *Schema) Select(caseSensitive bool, names ...string) (*Schema, error) {
	wanted := make(map[int]struct{}, len(names))
	for _, name := range names {
		f, found, ambiguous := s.FindByName(name, caseSensitive)
		if ambiguous {
			return nil, fmt.Errorf("%w: ambiguous column reference %q", ErrValidation, name)
		}
		if !found {
			return nil, fmt.Errorf("%w: could not find column %q", ErrValidation, name)
		}
		wanted[f.ID] = struct{}{}
	}

	return s.SelectIDs(wanted), nil
}

// SelectIDs returns a new Schema containing only the fields whose id is in
// ids, preserving table order. Unknown ids are silently ignored, matching
// TypeUtil.select's behavior in the teacher.
func (s *Schema) SelectIDs(ids map[int]struct{}) *Schema {
	out := make([]Field, 0, len(ids))
	for _, f := range s.Fields {
		if _, ok := ids[f.ID]; ok {
			out = append(out, f)
		}
	}

	return &Schema{ID: s.ID, Fields: out}
}
