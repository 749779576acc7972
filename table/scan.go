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

// Scan is an immutable scan plan under construction: a snapshot pin, a row
// filter, a projected set of columns, and the case sensitivity refinements
// are resolved under. Every "with"-style method returns a new *Scan rather
// than mutating the receiver, mirroring the teacher's Scan
// (table/scanner.go): a Scan handed to one goroutine can be refined by
// another into an unrelated plan without either observing the other's
// change.
type Scan struct {
	metadata      Metadata
	snapshotID    *int64
	asOfTimeMs    *int64
	rowFilter     icescan.BooleanExpression
	caseSensitive bool
	selected      []string
	listeners     *Listeners
}

// NewScan starts a scan against metadata's current snapshot, selecting every
// column of the current schema under case-sensitive resolution and an
// unconditional row filter, matching the teacher's Table.Scan defaults.
func NewScan(metadata Metadata) *Scan {
	return &Scan{
		metadata:      metadata,
		rowFilter:     icescan.AlwaysTrue{},
		caseSensitive: true,
		listeners:     NewListeners(),
	}
}

func (s *Scan) copy() *Scan {
	out := *s
	return &out
}

// UseSnapshot pins the scan to a specific snapshot id. It fails with
// ErrInvalidArgument if a snapshot (by id or as-of-time) is already pinned,
// or if id names no snapshot in the table (spec.md §4.1).
func (s *Scan) UseSnapshot(id int64) (*Scan, error) {
	if s.snapshotID != nil || s.asOfTimeMs != nil {
		return nil, fmt.Errorf("%w: snapshot already pinned for this scan", icescan.ErrInvalidArgument)
	}
	if s.metadata.SnapshotByID(id) == nil {
		return nil, fmt.Errorf("%w: unknown snapshot id %d", icescan.ErrInvalidArgument, id)
	}

	out := s.copy()
	out.snapshotID = &id

	return out, nil
}

// AsOfTime pins the scan to the snapshot that was current as of tsMs,
// resolved from the table's snapshot log. It fails with ErrInvalidArgument
// if a snapshot is already pinned, or if no snapshot exists at or before
// tsMs (spec.md §4.1).
func (s *Scan) AsOfTime(tsMs int64) (*Scan, error) {
	if s.snapshotID != nil || s.asOfTimeMs != nil {
		return nil, fmt.Errorf("%w: snapshot already pinned for this scan", icescan.ErrInvalidArgument)
	}

	id, ok := ResolveAsOfTime(s.metadata.SnapshotLog(), tsMs)
	if !ok {
		return nil, fmt.Errorf("%w: no snapshot as of time %d", icescan.ErrInvalidArgument, tsMs)
	}

	out := s.copy()
	out.snapshotID = &id
	out.asOfTimeMs = &tsMs

	return out, nil
}

// resolveSnapshot returns the pinned snapshot, or the table's current
// snapshot if none was pinned. It returns nil if the table has no current
// snapshot and none was pinned (an unpopulated table): planning such a scan
// yields zero tasks rather than an error.
func (s *Scan) resolveSnapshot() *Snapshot {
	if s.snapshotID != nil {
		return s.metadata.SnapshotByID(*s.snapshotID)
	}

	return s.metadata.CurrentSnapshot()
}

// CaseSensitive returns a copy of the scan with column-name resolution
// (Select, and any column reference in Filter) switched to sensitive.
func (s *Scan) CaseSensitive(sensitive bool) *Scan {
	out := s.copy()
	out.caseSensitive = sensitive

	return out
}

// Select restricts the scan's projection to the named columns, resolved
// under the scan's current case sensitivity (spec.md §4.2). An empty names
// list projects every column, matching the teacher's Scan.Project(nil).
func (s *Scan) Select(names ...string) *Scan {
	out := s.copy()
	out.selected = append([]string(nil), names...)

	return out
}

// Filter combines expr into the scan's row filter by logical conjunction
// (spec.md §4.6.3): calling Filter twice ANDs both filters together rather
// than replacing the first.
func (s *Scan) Filter(expr icescan.BooleanExpression) *Scan {
	out := s.copy()
	out.rowFilter = icescan.NewAnd(out.rowFilter, expr)

	return out
}

// AddListener registers a listener that is notified once per PlanFiles call
// that resolves a snapshot, with the ScanEvent describing that snapshot,
// filter and schema.
func (s *Scan) AddListener(l Listener) *Scan {
	out := s.copy()
	out.listeners = s.listeners.Clone()
	out.listeners.Register(l)

	return out
}

// Schema resolves and returns the scan's projected schema against the
// table's current schema (spec.md §6's schema() accessor). Planning itself
// resolves projection against the snapshot's own schema id
// (schemaForSnapshot); this accessor exists for callers that want to inspect
// the projection before a snapshot is pinned.
func (s *Scan) Schema() (*icescan.Schema, error) {
	return s.projectedSchema(s.metadata.CurrentSchema())
}

// RowFilter returns the scan's current row filter (spec.md §6's filter()
// accessor). Named RowFilter rather than Filter since Filter is already the
// refinement method that combines a new predicate into this one.
func (s *Scan) RowFilter() icescan.BooleanExpression { return s.rowFilter }

// IsCaseSensitive reports whether column-name resolution is case-sensitive
// (spec.md §6's is_case_sensitive() accessor).
func (s *Scan) IsCaseSensitive() bool { return s.caseSensitive }

// Table returns the scan's borrowed table metadata (spec.md §6's table()
// accessor).
func (s *Scan) Table() Metadata { return s.metadata }

// projectedSchema resolves the scan's projection against schema: the union
// of every field id the bound row filter references and every explicitly
// selected field id, preserving schema's field order (spec.md §4.2,
// invariant 2). If no explicit selection was made, the full schema is
// returned, matching the teacher's Scan.Projection default.
func (s *Scan) projectedSchema(schema *icescan.Schema) (*icescan.Schema, error) {
	filterIDs, err := icescan.FilterFieldIDs(schema, s.rowFilter, s.caseSensitive)
	if err != nil {
		return nil, err
	}

	if len(s.selected) == 0 {
		return schema, nil
	}

	selected, err := schema.Select(s.caseSensitive, s.selected...)
	if err != nil {
		return nil, err
	}

	ids := make(map[int]struct{}, len(selected.Fields)+len(filterIDs))
	for _, f := range selected.Fields {
		ids[f.ID] = struct{}{}
	}
	for id := range filterIDs {
		ids[id] = struct{}{}
	}

	return schema.SelectIDs(ids), nil
}
