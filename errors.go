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

package icescan

import "errors"

// Sentinel error kinds. Callers should wrap these with fmt.Errorf("%w: ...")
// to add context; they should never be returned bare.
var (
	// ErrInvalidArgument is returned from builder methods for malformed or
	// conflicting refinements: unknown snapshot id, double snapshot pin,
	// no snapshot at or before a requested as-of time. NewManifestEvaluator
	// also returns it for a partition spec whose source column is absent
	// from the schema. Ambiguous column names are reported as ErrValidation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation is returned when a row filter references an unknown or
	// ambiguously-cased column under the active case sensitivity.
	ErrValidation = errors.New("validation error")

	// ErrType is returned when a literal or predicate is applied to an
	// incompatible field type.
	ErrType = errors.New("type error")

	// ErrIO marks failures reading or closing a manifest list, manifest
	// file, or other storage object — a fault in the environment, not in
	// this package.
	ErrIO = errors.New("io error")

	// ErrInternal marks invariant violations that should never happen if the
	// rest of the package is correct.
	ErrInternal = errors.New("internal error")
)
