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

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hamba/avro/v2/ocf"
)

// ManifestContent distinguishes manifests listing live data files from
// manifests listing delete files. This module only plans data-file reads;
// delete-manifest handling is the query engine's concern per spec.md §1.
type ManifestContent int32

const (
	ManifestContentData ManifestContent = 0
)

// FieldSummary is one partition column's authoritative summary for a single
// manifest file: the bounds and null-containment the manifest evaluator
// prunes against. It is the manifest-level analog of ColumnStat.
type FieldSummary struct {
	ContainsNull bool
	LowerBound   Literal // nil if every partition value is null
	UpperBound   Literal // nil if every partition value is null
}

// ManifestFile references one manifest: its path, length, the partition
// spec its entries were written under, and the per-partition-column
// summary the manifest evaluator prunes with.
type ManifestFile struct {
	Path             string
	Length           int64
	PartitionSpecID  int
	Content          ManifestContent
	PartitionSummary []FieldSummary
}

// ColumnStat is one column's per-data-file statistics, as carried by a
// manifest entry. Lower/UpperBound are nil when unknown (absent from the
// file's footer) or when every value in the column is null.
type ColumnStat struct {
	ValueCount     int64
	NullValueCount int64
	LowerBound     Literal
	UpperBound     Literal
}

// DataFile is one manifest entry's data-file record: its path, format,
// size, the partition tuple it was written under, and per-column
// statistics for row-group-level pruning.
type DataFile struct {
	Path        string
	Format      string
	Length      int64
	RecordCount int64
	// Partition maps partition field id -> the literal value this file was
	// written under.
	Partition map[int]Literal
	// Stats maps source column id -> its column statistics.
	Stats map[int]ColumnStat
}

// ManifestEntry is one row of a manifest file: the data file it describes.
type ManifestEntry struct {
	DataFile DataFile
}

// avroManifestEntry is the on-disk avro record shape a manifest entry is
// decoded from. Real Iceberg manifests carry considerably more metadata
// (snapshot id, sequence numbers, status); this module keeps only what scan
// planning consumes. Bounds and partition values are carried as their
// canonical string form rather than Iceberg's single-value binary encoding,
// since the physical column-file encoding is explicitly out of scope
// (spec.md §1) — only the typed value each string round-trips to matters
// here.
type avroManifestEntry struct {
	DataFile avroDataFile `avro:"data_file"`
}

type avroDataFile struct {
	FilePath    string            `avro:"file_path"`
	FileFormat  string            `avro:"file_format"`
	FileSize    int64             `avro:"file_size_in_bytes"`
	RecordCount int64             `avro:"record_count"`
	Partition   map[string]string `avro:"partition"`
	ColumnStats []avroColumnStat  `avro:"column_stats"`
}

type avroColumnStat struct {
	ColumnID   int     `avro:"column_id"`
	ValueCount int64   `avro:"value_count"`
	NullCount  int64   `avro:"null_value_count"`
	LowerBound *string `avro:"lower_bound"`
	UpperBound *string `avro:"upper_bound"`
}

// ReadManifestEntries decodes the Avro object-container-file entries in r
// into ManifestEntry values, resolving each entry's partition tuple against
// spec and its column stats against schema.
//
// This is the default, in-pack implementation of the ManifestReader
// collaborator contract (spec.md §6): a real deployment may swap it for a
// reader backed by whatever FileIO the catalog wires up, but the decode
// logic itself — Avro object container format via hamba/avro — is what the
// teacher's own manifest.go uses.
func ReadManifestEntries(r io.Reader, spec PartitionSpec, schema *Schema) ([]ManifestEntry, error) {
	dec, err := ocf.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening manifest avro stream: %w", ErrIO, err)
	}

	fieldTypeByID := make(map[int]PrimitiveType, len(schema.Fields))
	for _, f := range schema.Fields {
		fieldTypeByID[f.ID] = f.Type
	}
	partitionFieldByName := make(map[string]PartitionField, len(spec.Fields))
	for _, pf := range spec.Fields {
		partitionFieldByName[pf.Name] = pf
	}

	var out []ManifestEntry
	for dec.HasNext() {
		var raw avroManifestEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: decoding manifest entry: %w", ErrIO, err)
		}

		entry, err := entryFromAvro(raw, partitionFieldByName, fieldTypeByID)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("%w: reading manifest stream: %w", ErrIO, err)
	}

	return out, nil
}

func entryFromAvro(raw avroManifestEntry, partitionFieldByName map[string]PartitionField, fieldTypeByID map[int]PrimitiveType) (ManifestEntry, error) {
	partition := make(map[int]Literal, len(raw.DataFile.Partition))
	for name, v := range raw.DataFile.Partition {
		pf, ok := partitionFieldByName[name]
		if !ok {
			continue
		}
		typ := fieldTypeByID[pf.SourceID]
		lit, err := ParseLiteral(v, typ)
		if err != nil {
			return ManifestEntry{}, fmt.Errorf("%w: partition value for %q: %w", ErrInternal, name, err)
		}
		partition[pf.FieldID] = lit
	}

	stats := make(map[int]ColumnStat, len(raw.DataFile.ColumnStats))
	for _, cs := range raw.DataFile.ColumnStats {
		typ := fieldTypeByID[cs.ColumnID]
		stat := ColumnStat{ValueCount: cs.ValueCount, NullValueCount: cs.NullCount}
		if cs.LowerBound != nil {
			lit, err := ParseLiteral(*cs.LowerBound, typ)
			if err != nil {
				return ManifestEntry{}, fmt.Errorf("%w: lower bound for column %d: %w", ErrInternal, cs.ColumnID, err)
			}
			stat.LowerBound = lit
		}
		if cs.UpperBound != nil {
			lit, err := ParseLiteral(*cs.UpperBound, typ)
			if err != nil {
				return ManifestEntry{}, fmt.Errorf("%w: upper bound for column %d: %w", ErrInternal, cs.ColumnID, err)
			}
			stat.UpperBound = lit
		}
		stats[cs.ColumnID] = stat
	}

	return ManifestEntry{DataFile: DataFile{
		Path:        raw.DataFile.FilePath,
		Format:      raw.DataFile.FileFormat,
		Length:      raw.DataFile.FileSize,
		RecordCount: raw.DataFile.RecordCount,
		Partition:   partition,
		Stats:       stats,
	}}, nil
}

// avroFieldSummary is the on-disk form of one partition column's manifest
// summary: bounds carried as canonical strings, same rationale as
// avroColumnStat.
type avroFieldSummary struct {
	ContainsNull bool    `avro:"contains_null"`
	LowerBound   *string `avro:"lower_bound"`
	UpperBound   *string `avro:"upper_bound"`
}

type avroManifestListEntry struct {
	Path             string             `avro:"manifest_path"`
	Length           int64              `avro:"manifest_length"`
	PartitionSpecID  int                `avro:"partition_spec_id"`
	Content          int32              `avro:"content"`
	PartitionSummary []avroFieldSummary `avro:"partitions"`
}

// ReadManifestList decodes a snapshot's manifest-list Avro stream into the
// ManifestFile records the planner prunes against. Each manifest file's
// partition summary is typed against the partition column it describes, in
// spec field order, since the avro encoding carries them positionally.
func ReadManifestList(r io.Reader, spec PartitionSpec, schema *Schema) ([]ManifestFile, error) {
	dec, err := ocf.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening manifest list avro stream: %w", ErrIO, err)
	}

	var out []ManifestFile
	for dec.HasNext() {
		var raw avroManifestListEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: decoding manifest list entry: %w", ErrIO, err)
		}

		mf, err := manifestFileFromAvro(raw, spec, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("%w: reading manifest list stream: %w", ErrIO, err)
	}

	return out, nil
}

func manifestFileFromAvro(raw avroManifestListEntry, spec PartitionSpec, schema *Schema) (ManifestFile, error) {
	summary := make([]FieldSummary, len(raw.PartitionSummary))
	for i, fs := range raw.PartitionSummary {
		out := FieldSummary{ContainsNull: fs.ContainsNull}
		if i >= len(spec.Fields) {
			summary[i] = out

			continue
		}
		srcField, ok := schema.FindByID(spec.Fields[i].SourceID)
		if !ok {
			summary[i] = out

			continue
		}
		if fs.LowerBound != nil {
			lit, err := ParseLiteral(*fs.LowerBound, srcField.Type)
			if err != nil {
				return ManifestFile{}, fmt.Errorf("%w: partition summary lower bound at position %d: %w", ErrInternal, i, err)
			}
			out.LowerBound = lit
		}
		if fs.UpperBound != nil {
			lit, err := ParseLiteral(*fs.UpperBound, srcField.Type)
			if err != nil {
				return ManifestFile{}, fmt.Errorf("%w: partition summary upper bound at position %d: %w", ErrInternal, i, err)
			}
			out.UpperBound = lit
		}
		summary[i] = out
	}

	return ManifestFile{
		Path:             raw.Path,
		Length:           raw.Length,
		PartitionSpecID:  raw.PartitionSpecID,
		Content:          ManifestContent(raw.Content),
		PartitionSummary: summary,
	}, nil
}

// ParseLiteral parses the canonical string form of a value under typ into a
// Literal. Used to decode manifest-entry bounds and partition values, and
// available to callers that need to build a FieldSummary or DataFile from
// textual test fixtures.
func ParseLiteral(s string, typ PrimitiveType) (Literal, error) {
	switch typ {
	case BooleanType:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}

		return NewLiteral(b), nil
	case Int64Type:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}

		return NewLiteral(n), nil
	case Float64Type:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}

		return NewLiteral(f), nil
	case StringType:
		return NewLiteral(s), nil
	case DateType:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}

		return NewDateLiteral(n), nil
	case TimestampType:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}

		return NewTimestampLiteral(n), nil
	default:
		return nil, fmt.Errorf("%w: unsupported literal type %v", ErrType, typ)
	}
}
