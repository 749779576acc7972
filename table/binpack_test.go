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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func weightedItems(weights ...int64) func(func(Split, int64) bool) {
	return func(yield func(Split, int64) bool) {
		for i, w := range weights {
			if !yield(Split{Offset: int64(i), Length: w}, w) {
				return
			}
		}
	}
}

func TestPackSeedScenarioTwo(t *testing.T) {
	// 200 MiB file split at 128 MiB target, weight floored by a 4 MiB
	// open-file-cost (both splits here already exceed it).
	items := weightedItems(128*mib, 72*mib)

	var tasks []CombinedScanTask
	for task := range Pack(items, 128*mib, 10) {
		tasks = append(tasks, task)
	}

	require.Len(t, tasks, 2)

	var total int64
	for _, task := range tasks {
		total += task.TotalWeight()
	}
	assert.Equal(t, int64(200*mib), total)
	assert.GreaterOrEqual(t, tasks[0].TotalWeight(), int64(100*mib))
}

func TestPackFirstFitIntoExistingBin(t *testing.T) {
	// three items that fit two-per-bin under a 100-weight target.
	items := weightedItems(60, 30, 40)

	var tasks []CombinedScanTask
	for task := range Pack(items, 100, 10) {
		tasks = append(tasks, task)
	}

	require.Len(t, tasks, 2)
	assert.Equal(t, int64(90), tasks[0].TotalWeight())
	assert.Equal(t, int64(40), tasks[1].TotalWeight())
}

func TestPackLookbackOneFillsSingleBinUntilTarget(t *testing.T) {
	items := weightedItems(10, 10, 10)

	var tasks []CombinedScanTask
	for task := range Pack(items, 100, 1) {
		tasks = append(tasks, task)
	}

	// with only one open bin allowed, nothing ever fits "another" bin while
	// the first is open and under target, so each item lands in the single
	// open bin until it would exceed target; here none do, so they all pack
	// into one bin.
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(30), tasks[0].TotalWeight())
}

func TestPackLookbackOneFlushesWhenBinFull(t *testing.T) {
	items := weightedItems(60, 60, 60)

	var tasks []CombinedScanTask
	for task := range Pack(items, 100, 1) {
		tasks = append(tasks, task)
	}

	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.Equal(t, int64(60), task.TotalWeight())
	}
}

func TestPackSingleOversizedItemOccupiesOwnBin(t *testing.T) {
	items := weightedItems(500, 10)

	var tasks []CombinedScanTask
	for task := range Pack(items, 100, 10) {
		tasks = append(tasks, task)
	}

	require.Len(t, tasks, 2)
	assert.Equal(t, int64(500), tasks[0].TotalWeight())
	assert.Equal(t, int64(10), tasks[1].TotalWeight())
}

func TestPackStopsPullingOnEarlyBreak(t *testing.T) {
	items := weightedItems(10, 10, 10, 10)

	count := 0
	for range Pack(items, 5, 1) {
		count++
		if count == 1 {
			break
		}
	}

	assert.Equal(t, 1, count)
}
