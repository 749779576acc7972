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
	"iter"
	"sync"

	"github.com/thanos-io/objstore"

	icescan "github.com/riverlake/icescan"
	icescanio "github.com/riverlake/icescan/io"
)

// defaultScanParallelism bounds the worker pool used for manifest expansion
// when no more manifests need it. The spec's worker-pool toggle
// (iceberg.scan-planning.worker-pool-enabled) controls whether the pool is
// used at all; its size is an implementation constant here rather than a
// table property, since spec.md §6 names no such key.
const defaultScanParallelism = 4

// FileScanIterable is plan_files's return value: a closeable lazy sequence
// of (FileScanTask, error) pairs. Close releases every manifest reader
// opened during planning, exactly once, regardless of whether the sequence
// was drained to exhaustion or abandoned early.
type FileScanIterable struct {
	Seq iter.Seq2[FileScanTask, error]
	cl  *closeList
}

// Close closes every manifest reader this plan_files call opened.
func (f *FileScanIterable) Close() error { return f.cl.CloseAll() }

func emptyFileScanIterable() *FileScanIterable {
	return &FileScanIterable{
		Seq: func(func(FileScanTask, error) bool) {},
		cl:  newCloseList(),
	}
}

// evaluatorCache memoizes one manifest evaluator per partition-spec-id for
// the lifetime of a single plan_files call (spec.md §4.3, §5): construction
// is idempotent under the lock, so concurrent callers never observe a
// half-built evaluator.
type evaluatorCache struct {
	mu  sync.Mutex
	fns map[int]func(icescan.ManifestFile) (bool, error)
}

func newEvaluatorCache() *evaluatorCache {
	return &evaluatorCache{fns: make(map[int]func(icescan.ManifestFile) (bool, error))}
}

func (c *evaluatorCache) get(specID int, build func() (func(icescan.ManifestFile) (bool, error), error)) (func(icescan.ManifestFile) (bool, error), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fn, ok := c.fns[specID]; ok {
		return fn, nil
	}

	fn, err := build()
	if err != nil {
		return nil, err
	}
	c.fns[specID] = fn

	return fn, nil
}

func (s *Scan) schemaForSnapshot(snap *Snapshot) *icescan.Schema {
	schema := s.metadata.CurrentSchema()
	if snap.SchemaID == nil {
		return schema
	}
	for _, sc := range s.metadata.Schemas() {
		if sc.ID == *snap.SchemaID {
			return sc
		}
	}

	return schema
}

// primarySpec is the partition spec the manifest list's positional summary
// is typed against. This module's manifest-list decoder (ReadManifestList)
// types each manifest's summary against one spec, since a table's manifest
// list is overwhelmingly written under a single active spec in practice;
// spec evolution across concurrently-referenced specs is out of scope.
func (s *Scan) primarySpec() icescan.PartitionSpec {
	specs := s.metadata.PartitionSpecs()
	if len(specs) == 0 {
		return icescan.PartitionSpec{}
	}

	return specs[0]
}

func (s *Scan) specForID(id int, fallback icescan.PartitionSpec) icescan.PartitionSpec {
	if spec, ok := s.metadata.PartitionSpecByID(id); ok {
		return spec
	}

	return fallback
}

// PlanFiles implements spec.md §4.6.1. bucket resolves the snapshot's
// manifest list; fileIO opens each individual manifest file. Both
// collaborators are borrowed for the duration of the call; PlanFiles itself
// never closes bucket or fileIO, only the manifest readers it opens through
// fileIO.
func (s *Scan) PlanFiles(ctx context.Context, bucket objstore.Bucket, fileIO icescanio.FileIO) (*FileScanIterable, error) {
	snap := s.resolveSnapshot()
	if snap == nil {
		return emptyFileScanIterable(), nil
	}

	schema := s.schemaForSnapshot(snap)

	bound, err := icescan.BindExpr(schema, s.rowFilter, s.caseSensitive)
	if err != nil {
		return nil, err
	}

	// projSchema is the schema attached to each FileScanTask: the union of
	// filter-referenced and explicitly selected field ids (spec.md §4.2,
	// invariant 2), not necessarily every field of the table schema that
	// bound/the evaluators below are built against.
	projSchema, err := s.projectedSchema(schema)
	if err != nil {
		return nil, err
	}

	primarySpec := s.primarySpec()
	manifests, err := snap.Manifests(ctx, bucket, primarySpec, schema)
	if err != nil {
		return nil, err
	}

	s.listeners.NotifyAll(ScanEvent{
		TableUUID:  s.metadata.TableUUID().String(),
		SnapshotID: snap.SnapshotID,
		Filter:     bound.String(),
		Schema:     fmt.Sprintf("%v", projSchema.Fields),
	})

	if len(manifests) == 0 {
		return emptyFileScanIterable(), nil
	}

	cache := newEvaluatorCache()
	filtered := make([]icescan.ManifestFile, 0, len(manifests))
	for _, mf := range manifests {
		spec := s.specForID(mf.PartitionSpecID, primarySpec)
		eval, err := cache.get(mf.PartitionSpecID, func() (func(icescan.ManifestFile) (bool, error), error) {
			return NewManifestEvaluator(spec, schema, s.rowFilter, s.caseSensitive)
		})
		if err != nil {
			return nil, err
		}
		might, err := eval(mf)
		if err != nil {
			return nil, err
		}
		if might {
			filtered = append(filtered, mf)
		}
	}
	if len(filtered) == 0 {
		return emptyFileScanIterable(), nil
	}

	metricsEval, err := NewMetricsEvaluator(schema, s.rowFilter, s.caseSensitive)
	if err != nil {
		return nil, err
	}

	cl := newCloseList()
	inners := make([]iter.Seq[FileScanTask], 0, len(filtered))
	for _, mf := range filtered {
		spec := s.specForID(mf.PartitionSpecID, primarySpec)
		inner, err := s.manifestTasks(ctx, fileIO, cl, mf, spec, schema, projSchema, bound, metricsEval)
		if err != nil {
			cl.CloseAll()

			return nil, err
		}
		inners = append(inners, inner)
	}

	workerPoolEnabled := s.metadata.Properties().AsBool(icescan.WorkerPoolEnabledKey, icescan.WorkerPoolEnabledDefault)

	var seq iter.Seq2[FileScanTask, error]
	if workerPoolEnabled && len(inners) > 1 {
		parallelism := defaultScanParallelism
		if parallelism > len(inners) {
			parallelism = len(inners)
		}
		seq = ParallelIterable(ctx, inners, parallelism)
	} else {
		seq = sequentialIterable(inners)
	}

	return &FileScanIterable{Seq: seq, cl: cl}, nil
}

// manifestTasks opens one manifest file through fileIO, registers it on cl,
// and returns a lazy sequence of the FileScanTasks its surviving entries
// produce. Entries are pruned twice more beyond the manifest-level evaluator
// that already selected this manifest: per-entry column statistics
// (metricsEval) and the residual against this entry's partition tuple. A
// metricsEval error is treated as "might match" rather than propagated,
// preserving the evaluator's soundness contract (never drop a matching row)
// even in the internal-error case, which evalMetrics's well-typed,
// already-bound input makes unreachable in practice.
func (s *Scan) manifestTasks(
	ctx context.Context,
	fileIO icescanio.FileIO,
	cl *closeList,
	mf icescan.ManifestFile,
	spec icescan.PartitionSpec,
	schema *icescan.Schema,
	projSchema *icescan.Schema,
	bound icescan.BooleanExpression,
	metricsEval func(icescan.DataFile) (bool, error),
) (iter.Seq[FileScanTask], error) {
	rc, err := fileIO.NewInputFile(ctx, mf.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening manifest %q: %w", icescan.ErrIO, mf.Path, err)
	}
	cl.Add(rc)

	entries, err := icescan.ReadManifestEntries(rc, spec, schema)
	if err != nil {
		return nil, err
	}

	return func(yield func(FileScanTask) bool) {
		for _, e := range entries {
			might, mErr := metricsEval(e.DataFile)
			if mErr == nil && !might {
				continue
			}

			residual := Residual(spec, schema, s.caseSensitive, bound, e.DataFile.Partition)
			if _, isFalse := residual.(icescan.AlwaysFalse); isFalse {
				continue
			}

			task := FileScanTask{
				File:     e.DataFile,
				Spec:     spec,
				Schema:   projSchema,
				Residual: residual,
				Start:    0,
				Length:   e.DataFile.Length,
			}
			if !yield(task) {
				return
			}
		}
	}, nil
}

func sequentialIterable(inners []iter.Seq[FileScanTask]) iter.Seq2[FileScanTask, error] {
	return func(yield func(FileScanTask, error) bool) {
		for _, inner := range inners {
			for v := range inner {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// CombinedScanIterable is plan_tasks's return value: a closeable lazy
// sequence of (CombinedScanTask, error) pairs. Closing it closes the
// underlying FileScanIterable it was built from (spec.md §4.6.2 step 4).
type CombinedScanIterable struct {
	Seq   iter.Seq2[CombinedScanTask, error]
	files *FileScanIterable
}

// Close closes the file-scan iterable this plan_tasks call was built on.
func (c *CombinedScanIterable) Close() error { return c.files.Close() }

// PlanTasks implements spec.md §4.6.2: expand plan_files's tasks into
// splits, then bin-pack them. An error encountered while draining the
// underlying file-scan sequence ends packing early and is surfaced as the
// final (zero-value, error) pair after every task produced up to that point.
func (s *Scan) PlanTasks(ctx context.Context, bucket objstore.Bucket, fileIO icescanio.FileIO) (*CombinedScanIterable, error) {
	files, err := s.PlanFiles(ctx, bucket, fileIO)
	if err != nil {
		return nil, err
	}

	props := s.metadata.Properties()
	targetSize := props.AsLong(icescan.SplitSizeKey, icescan.SplitSizeDefault)
	lookback := props.AsInt(icescan.SplitLookbackKey, icescan.SplitLookbackDefault)
	openFileCost := props.AsLong(icescan.OpenFileCostKey, icescan.OpenFileCostDefault)

	var firstErr error
	splits := func(yield func(Split, int64) bool) {
		for task, err := range files.Seq {
			if err != nil {
				firstErr = err

				return
			}
			for _, sp := range split(task, targetSize) {
				w := sp.Weight()
				if w < openFileCost {
					w = openFileCost
				}
				if !yield(sp, w) {
					return
				}
			}
		}
	}

	packed := Pack(splits, targetSize, lookback)

	seq := func(yield func(CombinedScanTask, error) bool) {
		for t := range packed {
			if !yield(t, nil) {
				return
			}
		}
		if firstErr != nil {
			yield(CombinedScanTask{}, firstErr)
		}
	}

	return &CombinedScanIterable{Seq: seq, files: files}, nil
}
