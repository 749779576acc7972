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
	"encoding/json"
	"fmt"

	icescan "github.com/riverlake/icescan"
)

// FileScanTask binds one manifest entry's data file to the spec and schema
// it was planned under, plus the residual predicate a reader must still
// apply per row. Spec and schema travel as their plain exported-field Go
// values; SerializeSpec/SerializeSchema below render the canonical JSON form
// tasks carry across a process boundary (spec.md §6).
type FileScanTask struct {
	File      icescan.DataFile
	Spec      icescan.PartitionSpec
	Schema    *icescan.Schema
	Residual  icescan.BooleanExpression
	Start     int64
	Length    int64
}

// SerializeSpec renders t.Spec as canonical JSON.
func (t FileScanTask) SerializeSpec() ([]byte, error) {
	return json.Marshal(t.Spec)
}

// SerializeSchema renders t.Schema as canonical JSON.
func (t FileScanTask) SerializeSchema() ([]byte, error) {
	return json.Marshal(t.Schema)
}

// Split is a byte sub-range of a FileScanTask, independently readable.
type Split struct {
	Task   FileScanTask
	Offset int64
	Length int64
}

// Weight is the split's planning weight: its own byte length, which
// PlanTasks floors against the configured open-file cost before handing the
// split to Pack.
func (s Split) Weight() int64 { return s.Length }

// split breaks t into contiguous splits of at most targetSize bytes each,
// covering the whole file. A file of length 0 still produces one
// zero-length split (spec.md §8 boundary: "a file of weight 0 is still
// emitted").
func split(t FileScanTask, targetSize int64) []Split {
	if targetSize <= 0 {
		return []Split{{Task: t, Offset: t.Start, Length: t.Length}}
	}
	if t.Length <= 0 {
		return []Split{{Task: t, Offset: t.Start, Length: 0}}
	}

	var out []Split
	for off := int64(0); off < t.Length; off += targetSize {
		length := targetSize
		if off+length > t.Length {
			length = t.Length - off
		}
		out = append(out, Split{Task: t, Offset: t.Start + off, Length: length})
	}

	return out
}

// CombinedScanTask is an ordered group of splits packed to approximate a
// target weight (spec.md §3, §4.7).
type CombinedScanTask struct {
	Splits []Split
}

// TotalWeight sums the weight of every split in the task.
func (c CombinedScanTask) TotalWeight() int64 {
	var total int64
	for _, s := range c.Splits {
		total += s.Weight()
	}

	return total
}

func (c CombinedScanTask) String() string {
	return fmt.Sprintf("CombinedScanTask(splits=%d, weight=%d)", len(c.Splits), c.TotalWeight())
}
