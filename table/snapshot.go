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
	"context"
	"fmt"
	"sort"

	"github.com/thanos-io/objstore"

	icescan "github.com/riverlake/icescan"
)

// Snapshot is an immutable, point-in-time view of a table: its id, the
// sequence number and timestamp it was created at, and the manifest list it
// references. Snapshots are never mutated; a new snapshot supersedes this
// one by metadata replacement.
type Snapshot struct {
	SnapshotID     int64
	SequenceNumber int64
	TimestampMs    int64
	ManifestList   string
	SchemaID       *int
}

func (s Snapshot) String() string {
	return fmt.Sprintf("id=%d, sequence_number=%d, timestamp_ms=%d, manifest_list=%s",
		s.SnapshotID, s.SequenceNumber, s.TimestampMs, s.ManifestList)
}

// Manifests fetches and decodes this snapshot's manifest list from bucket,
// typing each manifest's partition summary against spec/schema. ctx bounds
// the fetch so a caller closing the scan's context cancels it rather than
// blocking planning indefinitely.
func (s Snapshot) Manifests(ctx context.Context, bucket objstore.Bucket, spec icescan.PartitionSpec, schema *icescan.Schema) ([]icescan.ManifestFile, error) {
	if s.ManifestList == "" {
		return nil, nil
	}

	r, err := bucket.Get(ctx, s.ManifestList)
	if err != nil {
		return nil, fmt.Errorf("%w: opening manifest list %q: %w", icescan.ErrIO, s.ManifestList, err)
	}
	defer r.Close()

	return icescan.ReadManifestList(r, spec, schema)
}

// SnapshotLogEntry is one entry of a table's snapshot log: the snapshot that
// was current as of timestamp_ms.
type SnapshotLogEntry struct {
	SnapshotID  int64
	TimestampMs int64
}

// ResolveAsOfTime selects the latest snapshot log entry with timestamp_ms <=
// tsMs. The spec's own source presumes log is already sorted ascending by
// timestamp (see DESIGN.md open-question 1); this function does not trust
// that precondition and sorts a copy defensively before walking it, so an
// out-of-order log never produces an ambiguous result. Ties (equal
// timestamps) resolve to the last matching entry in (sorted) log order.
func ResolveAsOfTime(log []SnapshotLogEntry, tsMs int64) (int64, bool) {
	sorted := make([]SnapshotLogEntry, len(log))
	copy(sorted, log)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})

	var (
		found   int64
		hasSnap bool
	)
	for _, e := range sorted {
		if e.TimestampMs <= tsMs {
			found = e.SnapshotID
			hasSnap = true
		}
	}

	return found, hasSnap
}
