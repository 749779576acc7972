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

// Package io provides the FileIO collaborator the scan planner reads
// manifests through (spec.md §6's FileIO::new_input_file). Credential and
// cloud-provider wiring are a catalog concern and out of scope here; this
// package only resolves a bucket-relative path to a readable handle via
// objstore.Bucket, the way the teacher's io.go resolves a location to an
// objstore.Bucket before handing it to a reader.
package io

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/providers/filesystem"
)

// FileIO opens readable handles for manifest and manifest-list paths. It is
// the only storage dependency the scan planner has; everything else
// (writing, deleting, listing) belongs to the writer/catalog layers this
// module does not implement.
type FileIO interface {
	NewInputFile(ctx context.Context, path string) (io.ReadCloser, error)
}

// bucketIO adapts an objstore.Bucket to FileIO.
type bucketIO struct {
	bucket objstore.Bucket
}

// NewBucketIO wraps an already-resolved objstore.Bucket.
func NewBucketIO(bucket objstore.Bucket) FileIO {
	return &bucketIO{bucket: bucket}
}

func (b *bucketIO) NewInputFile(ctx context.Context, path string) (io.ReadCloser, error) {
	return b.bucket.Get(ctx, path)
}

// LoadFS resolves location's URL scheme to a FileIO. Only the local
// filesystem is wired here (via thanos-io/objstore's filesystem provider);
// every cloud provider the teacher's io.go supports (S3, GCS, Azure, HDFS)
// is a catalog/credential integration concern explicitly out of scope
// (spec.md §1).
func LoadFS(location string) (FileIO, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", location, err)
	}

	switch parsed.Scheme {
	case "file", "":
		bucket, err := filesystem.NewBucket("/")
		if err != nil {
			return nil, err
		}

		return NewBucketIO(bucket), nil
	default:
		return nil, fmt.Errorf("file IO for scheme %q not implemented in this module", parsed.Scheme)
	}
}
