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

func TestFieldBySourceNameResolvesPartitionColumn(t *testing.T) {
	schema := icescan.NewSchema(1,
		icescan.Field{ID: 1, Name: "id", Type: icescan.Int64Type},
		icescan.Field{ID: 2, Name: "date", Type: icescan.DateType},
	)
	spec := icescan.PartitionSpec{ID: 0, Fields: []icescan.PartitionField{
		{SourceID: 2, FieldID: 1000, Name: "date"},
	}}

	pf, idx, found := spec.FieldBySourceName(schema, "date", true)
	require.True(t, found)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1000, pf.FieldID)

	_, _, found = spec.FieldBySourceName(schema, "id", true)
	assert.False(t, found, "id is not a partition column")
}

func TestPartitionTypeTypesFieldsLikeSource(t *testing.T) {
	schema := icescan.NewSchema(1,
		icescan.Field{ID: 1, Name: "id", Type: icescan.Int64Type},
		icescan.Field{ID: 2, Name: "date", Type: icescan.DateType},
	)
	spec := icescan.PartitionSpec{ID: 0, Fields: []icescan.PartitionField{
		{SourceID: 2, FieldID: 1000, Name: "date"},
	}}

	pt := spec.PartitionType(schema)
	require.Len(t, pt.Fields, 1)
	assert.Equal(t, icescan.DateType, pt.Fields[0].Type)
	assert.Equal(t, "date", pt.Fields[0].Name)
}
