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
	"log"
	"sync"

	icescan "github.com/riverlake/icescan"
)

// ScanEvent is emitted once per plan_files call that resolves a snapshot,
// after the manifest list is read and before any manifest file is opened.
// No event is emitted when the table has no snapshot to scan.
type ScanEvent struct {
	// TableUUID identifies the table being scanned.
	TableUUID string
	// SnapshotID is the snapshot resolved for this scan.
	SnapshotID int64
	// Filter is the string form of the bound row filter.
	Filter string
	// Schema is the string form of the projected schema.
	Schema string
}

// Listener receives ScanEvent notifications. Listener.Notify must not panic;
// Listeners.NotifyAll recovers and logs so a misbehaving listener never
// reaches the planner.
type Listener interface {
	Notify(ScanEvent)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(ScanEvent)

func (f ListenerFunc) Notify(e ScanEvent) { f(e) }

// Listeners is a thread-safe registry of scan listeners, fired fire-and-
// forget from the planner. A misbehaving or slow listener must never stall
// or fail planning; NotifyAll calls each listener synchronously but
// recovers any panic and logs it rather than propagating.
type Listeners struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewListeners builds an empty listener registry.
func NewListeners() *Listeners {
	return &Listeners{}
}

// Clone returns a new registry holding a snapshot of ls's current listeners,
// so a caller can append to the clone without the original observing the
// change (Scan.AddListener relies on this to preserve the immutable-builder
// contract across copies that share the same struct value).
func (ls *Listeners) Clone() *Listeners {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	out := make([]Listener, len(ls.listeners))
	copy(out, ls.listeners)

	return &Listeners{listeners: out}
}

// Register adds l to the registry.
func (ls *Listeners) Register(l Listener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.listeners = append(ls.listeners, l)
}

// NotifyAll calls Notify on every registered listener, swallowing any panic.
func (ls *Listeners) NotifyAll(e ScanEvent) {
	ls.mu.RLock()
	snapshot := make([]Listener, len(ls.listeners))
	copy(snapshot, ls.listeners)
	ls.mu.RUnlock()

	for _, l := range snapshot {
		notifyOne(l, e)
	}
}

func notifyOne(l Listener, e ScanEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%v: scan listener panicked: %v", icescan.ErrInternal, r)
		}
	}()
	l.Notify(e)
}
