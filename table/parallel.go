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

	"golang.org/x/sync/errgroup"
)

// item2 carries one produced value or the error that ended its producer.
type item2[T any] struct {
	val T
	err error
}

// ParallelIterable drains each inner sequence of inners concurrently, up to
// parallelism workers, feeding everything through one bounded queue the
// caller pulls from. Within a single inner sequence order is preserved;
// across inner sequences order is unspecified — the same contract the
// teacher's collectManifestEntries leaves undocumented by construction
// (table/scanner.go uses errgroup.WithContext + SetLimit with no ordering
// promise across manifests); here it is a documented property instead (see
// DESIGN.md open-question 2). Stopping the returned iterator cancels the
// context, which unblocks any worker parked on a full queue and lets
// errgroup.Wait return.
func ParallelIterable[T any](ctx context.Context, inners []iter.Seq[T], parallelism int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if parallelism <= 0 {
			parallelism = 1
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		queue := make(chan item2[T], parallelism)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)

		// Submission runs in its own goroutine: with len(inners) >
		// parallelism, the (parallelism+1)-th g.Go call blocks on the
		// errgroup's semaphore until a worker finishes, and a worker only
		// finishes once something drains queue. Submitting inline here
		// would block this function before the consumer loop below ever
		// got a chance to start draining, deadlocking the whole thing.
		done := make(chan error, 1)
		go func() {
			for _, inner := range inners {
				inner := inner
				g.Go(func() error {
					for v := range inner {
						select {
						case queue <- item2[T]{val: v}:
						case <-gctx.Done():
							return gctx.Err()
						}
					}

					return nil
				})
			}
			done <- g.Wait()
			close(queue)
		}()

		for {
			select {
			case it, ok := <-queue:
				if !ok {
					if err := <-done; err != nil {
						yield(*new(T), err)
					}

					return
				}
				if !yield(it.val, nil) {
					cancel()

					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}
