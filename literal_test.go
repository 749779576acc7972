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

package icescan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	icescan "github.com/riverlake/icescan"
)

func TestLiteralCompare(t *testing.T) {
	assert.Equal(t, -1, icescan.NewLiteral(int64(1)).Compare(icescan.NewLiteral(int64(2))))
	assert.Equal(t, 0, icescan.NewLiteral(int64(2)).Compare(icescan.NewLiteral(int64(2))))
	assert.Equal(t, 1, icescan.NewLiteral(int64(3)).Compare(icescan.NewLiteral(int64(2))))

	assert.Equal(t, -1, icescan.NewLiteral("a").Compare(icescan.NewLiteral("b")))
	assert.Equal(t, -1, icescan.NewLiteral(false).Compare(icescan.NewLiteral(true)))
	assert.Equal(t, 0, icescan.NewLiteral(1.5).Compare(icescan.NewLiteral(1.5)))
}

func TestLiteralCompareMismatchedTypePanics(t *testing.T) {
	require.Panics(t, func() {
		icescan.NewLiteral(int64(1)).Compare(icescan.NewLiteral("1"))
	})
}

func TestLiteralEquals(t *testing.T) {
	assert.True(t, icescan.NewLiteral(int64(5)).Equals(icescan.NewLiteral(int64(5))))
	assert.False(t, icescan.NewLiteral(int64(5)).Equals(icescan.NewLiteral(int64(6))))
	assert.False(t, icescan.NewLiteral(int64(5)).Equals(icescan.NewLiteral("5")))
}

func TestDateAndTimestampLiteralsCarryDistinctTypes(t *testing.T) {
	date := icescan.NewDateLiteral(19723)
	ts := icescan.NewTimestampLiteral(19723 * 86400 * 1_000_000)

	assert.Equal(t, icescan.DateType, date.Type())
	assert.Equal(t, icescan.TimestampType, ts.Type())
	assert.False(t, date.Equals(icescan.NewLiteral(int64(19723))), "date literal must not equal a plain long literal with the same underlying value")
}
