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
	"github.com/google/uuid"

	icescan "github.com/riverlake/icescan"
)

// Metadata is the borrowed, read-only view of a table's current state the
// planner is built against. Planning never mutates it.
type Metadata interface {
	TableUUID() uuid.UUID
	CurrentSchema() *icescan.Schema
	Schemas() []*icescan.Schema
	PartitionSpecs() []icescan.PartitionSpec
	PartitionSpecByID(id int) (icescan.PartitionSpec, bool)
	Snapshots() []Snapshot
	SnapshotByID(id int64) *Snapshot
	SnapshotByName(name string) *Snapshot
	CurrentSnapshot() *Snapshot
	SnapshotLog() []SnapshotLogEntry
	Properties() icescan.Properties
}

// memMetadata is the in-memory Metadata implementation this module ships:
// a plain value built by a catalog layer (out of scope here) and handed to
// NewScan. Real deployments construct one from a parsed table metadata
// document; this module only needs the accessors above.
type memMetadata struct {
	uuid        uuid.UUID
	schemas     []*icescan.Schema
	currentID   int
	specs       []icescan.PartitionSpec
	snapshots   []Snapshot
	currentSnap *int64
	snapshotLog []SnapshotLogEntry
	properties  icescan.Properties
}

// NewMetadata builds a Metadata value from its constituent parts. currentSnapshotID
// is nil when the table has no current snapshot.
func NewMetadata(
	id uuid.UUID,
	schemas []*icescan.Schema,
	currentSchemaID int,
	specs []icescan.PartitionSpec,
	snapshots []Snapshot,
	currentSnapshotID *int64,
	snapshotLog []SnapshotLogEntry,
	properties icescan.Properties,
) Metadata {
	return &memMetadata{
		uuid:        id,
		schemas:     schemas,
		currentID:   currentSchemaID,
		specs:       specs,
		snapshots:   snapshots,
		currentSnap: currentSnapshotID,
		snapshotLog: snapshotLog,
		properties:  properties,
	}
}

func (m *memMetadata) TableUUID() uuid.UUID { return m.uuid }

func (m *memMetadata) Schemas() []*icescan.Schema { return m.schemas }

func (m *memMetadata) CurrentSchema() *icescan.Schema {
	for _, s := range m.schemas {
		if s.ID == m.currentID {
			return s
		}
	}

	return nil
}

func (m *memMetadata) PartitionSpecs() []icescan.PartitionSpec { return m.specs }

func (m *memMetadata) PartitionSpecByID(id int) (icescan.PartitionSpec, bool) {
	for _, s := range m.specs {
		if s.ID == id {
			return s, true
		}
	}

	return icescan.PartitionSpec{}, false
}

func (m *memMetadata) Snapshots() []Snapshot { return m.snapshots }

func (m *memMetadata) SnapshotByID(id int64) *Snapshot {
	for i := range m.snapshots {
		if m.snapshots[i].SnapshotID == id {
			return &m.snapshots[i]
		}
	}

	return nil
}

// SnapshotByName resolves a ref name (branch or tag) to its snapshot. Refs
// are a catalog-layer concern (spec.md §1's catalog exclusion); this module
// carries no ref map, so it always reports no match. The accessor is kept on
// Metadata for interface parity with the teacher's ref-aware table.Metadata.
func (m *memMetadata) SnapshotByName(name string) *Snapshot {
	return nil
}

func (m *memMetadata) CurrentSnapshot() *Snapshot {
	if m.currentSnap == nil {
		return nil
	}

	return m.SnapshotByID(*m.currentSnap)
}

func (m *memMetadata) SnapshotLog() []SnapshotLogEntry { return m.snapshotLog }

func (m *memMetadata) Properties() icescan.Properties { return m.properties }
