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
	"iter"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterSeq(id, n int, opened *atomic.Int64) iter.Seq[int] {
	return func(yield func(int) bool) {
		opened.Add(1)
		for i := 0; i < n; i++ {
			if !yield(id*100 + i) {
				return
			}
		}
	}
}

func TestParallelIterablePreservesWithinSequenceOrder(t *testing.T) {
	var opened atomic.Int64
	inners := []iter.Seq[int]{
		counterSeq(0, 5, &opened),
		counterSeq(1, 5, &opened),
	}

	byInner := map[int][]int{}
	for v, err := range ParallelIterable(context.Background(), inners, 2) {
		require.NoError(t, err)
		byInner[v/100] = append(byInner[v/100], v)
	}

	assert.True(t, sort.IntsAreSorted(byInner[0]))
	assert.True(t, sort.IntsAreSorted(byInner[1]))
	assert.Len(t, byInner[0], 5)
	assert.Len(t, byInner[1], 5)
}

func TestParallelIterableDrainsAllItems(t *testing.T) {
	var opened atomic.Int64
	inners := make([]iter.Seq[int], 0, 20)
	for i := 0; i < 20; i++ {
		inners = append(inners, counterSeq(i, 3, &opened))
	}

	count := 0
	for _, err := range ParallelIterable(context.Background(), inners, 4) {
		require.NoError(t, err)
		count++
	}

	assert.Equal(t, 60, count)
	assert.EqualValues(t, 20, opened.Load())
}

func TestParallelIterableStoppingEarlyDoesNotHang(t *testing.T) {
	var opened atomic.Int64
	inners := make([]iter.Seq[int], 0, 20)
	for i := 0; i < 20; i++ {
		inners = append(inners, counterSeq(i, 50, &opened))
	}

	count := 0
	for range ParallelIterable(context.Background(), inners, 4) {
		count++
		if count == 3 {
			break
		}
	}

	assert.Equal(t, 3, count)
}
