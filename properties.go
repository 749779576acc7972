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

import "strconv"

// Properties is the table's string-keyed property bag, matching the
// teacher's iceberg.Properties. Every config key this module reads is
// listed here with its default.
type Properties map[string]string

const (
	SplitSizeKey         = "read.split.target-size"
	SplitSizeDefault     = int64(128 * 1024 * 1024)
	SplitLookbackKey     = "read.split.planning-lookback"
	SplitLookbackDefault = 10
	OpenFileCostKey      = "read.split.open-file-cost"
	OpenFileCostDefault  = int64(4 * 1024 * 1024)
	WorkerPoolEnabledKey = "iceberg.scan-planning.worker-pool-enabled"
	WorkerPoolEnabledDefault = true
)

// AsLong reads key as an int64, falling back to def if absent or malformed.
func (p Properties) AsLong(key string, def int64) int64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}

	return n
}

// AsInt reads key as an int, falling back to def if absent or malformed.
func (p Properties) AsInt(key string, def int) int {
	return int(p.AsLong(key, int64(def)))
}

// AsBool reads key as a bool, falling back to def if absent or malformed.
func (p Properties) AsBool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}

	return b
}
