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

	icescan "github.com/riverlake/icescan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCoversWholeFile(t *testing.T) {
	task := FileScanTask{File: icescan.DataFile{Path: "f1"}, Length: 200 * 1024 * 1024}

	splits := split(task, 128*1024*1024)
	require.Len(t, splits, 2)
	assert.Equal(t, int64(0), splits[0].Offset)
	assert.Equal(t, int64(128*1024*1024), splits[0].Length)
	assert.Equal(t, int64(128*1024*1024), splits[1].Offset)
	assert.Equal(t, int64(72*1024*1024), splits[1].Length)

	var total int64
	for _, s := range splits {
		total += s.Length
	}
	assert.Equal(t, task.Length, total)
}

func TestSplitZeroLengthFileStillEmitsOneSplit(t *testing.T) {
	task := FileScanTask{File: icescan.DataFile{Path: "empty"}, Length: 0}

	splits := split(task, 128*1024*1024)
	require.Len(t, splits, 1)
	assert.Equal(t, int64(0), splits[0].Length)
}

func TestSplitNonPositiveTargetSizeYieldsOneSplit(t *testing.T) {
	task := FileScanTask{File: icescan.DataFile{Path: "f1"}, Length: 500}

	splits := split(task, 0)
	require.Len(t, splits, 1)
	assert.Equal(t, int64(500), splits[0].Length)
}

func TestCombinedScanTaskTotalWeight(t *testing.T) {
	c := CombinedScanTask{Splits: []Split{
		{Length: 10},
		{Length: 20},
	}}

	assert.Equal(t, int64(30), c.TotalWeight())
}
