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

func TestListenersNotifyAllCallsEveryRegisteredListener(t *testing.T) {
	ls := NewListeners()

	var a, b []ScanEvent
	ls.Register(ListenerFunc(func(e ScanEvent) { a = append(a, e) }))
	ls.Register(ListenerFunc(func(e ScanEvent) { b = append(b, e) }))

	ls.NotifyAll(ScanEvent{SnapshotID: 1})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, int64(1), a[0].SnapshotID)
}

func TestListenersNotifyAllRecoversFromPanickingListener(t *testing.T) {
	ls := NewListeners()

	var called bool
	ls.Register(ListenerFunc(func(ScanEvent) { panic("boom") }))
	ls.Register(ListenerFunc(func(ScanEvent) { called = true }))

	assert.NotPanics(t, func() { ls.NotifyAll(ScanEvent{}) })
	assert.True(t, called, "a panicking listener must not stop later listeners from being notified")
}

func TestListenersCloneIsIndependentOfOriginal(t *testing.T) {
	ls := NewListeners()

	var originalCalls int
	ls.Register(ListenerFunc(func(ScanEvent) { originalCalls++ }))

	clone := ls.Clone()
	var cloneOnlyCalls int
	clone.Register(ListenerFunc(func(ScanEvent) { cloneOnlyCalls++ }))

	ls.NotifyAll(ScanEvent{})
	assert.Equal(t, 1, originalCalls)
	assert.Equal(t, 0, cloneOnlyCalls, "registering on a clone must not register on the original")

	clone.NotifyAll(ScanEvent{})
	assert.Equal(t, 2, originalCalls, "the clone must still carry every listener the original had at clone time")
	assert.Equal(t, 1, cloneOnlyCalls)
}

func TestListenersCloneOfEmptyRegistryNotifiesNothing(t *testing.T) {
	ls := NewListeners()
	clone := ls.Clone()

	assert.NotPanics(t, func() { clone.NotifyAll(ScanEvent{}) })
}
