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

package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverlake/icescan/table"
)

func seedLog() []table.SnapshotLogEntry {
	return []table.SnapshotLogEntry{
		{SnapshotID: 1, TimestampMs: 1000},
		{SnapshotID: 2, TimestampMs: 2000},
		{SnapshotID: 3, TimestampMs: 3000},
	}
}

func TestResolveAsOfTimeExactMatch(t *testing.T) {
	id, ok := table.ResolveAsOfTime(seedLog(), 2000)
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestResolveAsOfTimeBetweenEntries(t *testing.T) {
	id, ok := table.ResolveAsOfTime(seedLog(), 2500)
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestResolveAsOfTimeLatest(t *testing.T) {
	id, ok := table.ResolveAsOfTime(seedLog(), 3000)
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
}

func TestResolveAsOfTimeBeforeFirst(t *testing.T) {
	_, ok := table.ResolveAsOfTime(seedLog(), 999)
	assert.False(t, ok)
}

func TestResolveAsOfTimeToleratesUnsortedLog(t *testing.T) {
	unsorted := []table.SnapshotLogEntry{
		{SnapshotID: 3, TimestampMs: 3000},
		{SnapshotID: 1, TimestampMs: 1000},
		{SnapshotID: 2, TimestampMs: 2000},
	}

	id, ok := table.ResolveAsOfTime(unsorted, 2500)
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestResolveAsOfTimeTieResolvesToLastInOrder(t *testing.T) {
	log := []table.SnapshotLogEntry{
		{SnapshotID: 1, TimestampMs: 1000},
		{SnapshotID: 2, TimestampMs: 1000},
	}

	id, ok := table.ResolveAsOfTime(log, 1000)
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}
