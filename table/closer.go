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
	"io"
	"sync"

	icescan "github.com/riverlake/icescan"
)

// closeList is the only mutable state parallel manifest expansion shares
// (spec.md §5, §9): each worker opens a manifest reader and hands ownership
// of it to the list via Add, and the scan's consumer (whether it drains the
// task iterable to exhaustion or abandons it early) calls CloseAll exactly
// once to release every reader that was ever opened. Add tolerates being
// called concurrently by many workers; CloseAll tolerates being called more
// than once, and closes each reader at most once even if Add raced it in.
type closeList struct {
	mu     sync.Mutex
	closed bool
	items  []io.Closer
}

// newCloseList returns an empty, open close list.
func newCloseList() *closeList {
	return &closeList{}
}

// Add registers c as owned by the list. If the list has already been
// closed, c is closed immediately instead of being retained, so a worker
// that opens a reader after the consumer has walked away never leaks it.
func (l *closeList) Add(c io.Closer) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		c.Close()

		return
	}
	l.items = append(l.items, c)
	l.mu.Unlock()
}

// CloseAll closes every reader registered so far and marks the list closed,
// so any reader Add'd afterward is closed on registration instead. Safe to
// call more than once; only the first call closes anything.
func (l *closeList) CloseAll() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()

		return nil
	}
	l.closed = true
	items := l.items
	l.items = nil
	l.mu.Unlock()

	var first error
	for _, c := range items {
		if err := c.Close(); err != nil && first == nil {
			first = fmt.Errorf("%w: closing manifest reader: %w", icescan.ErrIO, err)
		}
	}

	return first
}
