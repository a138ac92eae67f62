// Copyright 2026 Expatwise
//
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


package storage

import (
	"github.com/expatwise/retrieval/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Field serializers shared by the record serializers below.
var (
	metadataSer = ord.NewMapSer[string, string](ord.String, ord.String)
	vectorSer   = ord.NewSliceSer[float32](raw.Float32)
)

// Record serializers. Hand-written in the MUS format rather than generated:
// field order is part of the stored format and must not change.
var (
	DocumentMUS       = documentSer{}
	ScoredDocumentMUS = scoredDocumentSer{}
	SearchResultMUS   = searchResultSer{}
	CacheEntryMUS     = cacheEntrySer{}
	PartitionInfoMUS  = partitionInfoSer{}
)

var (
	documentPtrSer = ord.NewPtrSer[core.Document](DocumentMUS)
	scoredPtrSer   = ord.NewPtrSer[core.ScoredDocument](ScoredDocumentMUS)
	scoredSliceSer = ord.NewSliceSer[*core.ScoredDocument](scoredPtrSer)
)

type documentSer struct{}

func (documentSer) Marshal(v core.Document, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	n += metadataSer.Marshal(v.Metadata, bs[n:])
	n += vectorSer.Marshal(v.Vector, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.InsertedAt, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (documentSer) Unmarshal(bs []byte) (v core.Document, n int, err error) {
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = core.ID(id)
	var n1 int
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentSer) Size(v core.Document) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Content)
	size += metadataSer.Size(v.Metadata)
	size += vectorSer.Size(v.Vector)
	size += raw.TimeUnixMicroUTC.Size(v.InsertedAt)
	size += raw.TimeUnixMicroUTC.Size(v.UpdatedAt)
	return
}

func (documentSer) Skip(bs []byte) (n int, err error) {
	n, err = varint.Uint64.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = metadataSer.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorSer.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicroUTC.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicroUTC.Skip(bs[n:])
	n += n1
	return
}

type scoredDocumentSer struct{}

func (scoredDocumentSer) Marshal(v core.ScoredDocument, bs []byte) (n int) {
	n = documentPtrSer.Marshal(v.Document, bs)
	n += raw.Float32.Marshal(v.Score, bs[n:])
	return
}

func (scoredDocumentSer) Unmarshal(bs []byte) (v core.ScoredDocument, n int, err error) {
	v.Document, n, err = documentPtrSer.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Score, n1, err = raw.Float32.Unmarshal(bs[n:])
	n += n1
	return
}

func (scoredDocumentSer) Size(v core.ScoredDocument) (size int) {
	return documentPtrSer.Size(v.Document) + raw.Float32.Size(v.Score)
}

func (scoredDocumentSer) Skip(bs []byte) (n int, err error) {
	n, err = documentPtrSer.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = raw.Float32.Skip(bs[n:])
	n += n1
	return
}

type searchResultSer struct{}

// CacheHit is intentionally not serialized: a cached result's hit kind is
// determined by how it was found on read, not by how it was produced.
func (searchResultSer) Marshal(v core.SearchResult, bs []byte) (n int) {
	n = scoredSliceSer.Marshal(v.Documents, bs)
	n += ord.String.Marshal(v.PartitionUsed, bs[n:])
	n += ord.Bool.Marshal(v.Degraded, bs[n:])
	return
}

func (searchResultSer) Unmarshal(bs []byte) (v core.SearchResult, n int, err error) {
	v.Documents, n, err = scoredSliceSer.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.PartitionUsed, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Degraded, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func (searchResultSer) Size(v core.SearchResult) (size int) {
	size = scoredSliceSer.Size(v.Documents)
	size += ord.String.Size(v.PartitionUsed)
	size += ord.Bool.Size(v.Degraded)
	return
}

func (searchResultSer) Skip(bs []byte) (n int, err error) {
	n, err = scoredSliceSer.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	return
}

type cacheEntrySer struct{}

func (cacheEntrySer) Marshal(v core.CacheEntry, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Key), bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	n += vectorSer.Marshal(v.Vector, bs[n:])
	n += ord.ByteSlice.Marshal(v.Payload, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.CreatedAt, bs[n:])
	return
}

func (cacheEntrySer) Unmarshal(bs []byte) (v core.CacheEntry, n int, err error) {
	key, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Key = core.ID(key)
	var n1 int
	v.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Payload, n1, err = ord.ByteSlice.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (cacheEntrySer) Size(v core.CacheEntry) (size int) {
	size = varint.Uint64.Size(uint64(v.Key))
	size += ord.String.Size(v.Query)
	size += vectorSer.Size(v.Vector)
	size += ord.ByteSlice.Size(v.Payload)
	size += raw.TimeUnixMicroUTC.Size(v.CreatedAt)
	return
}

func (cacheEntrySer) Skip(bs []byte) (n int, err error) {
	n, err = varint.Uint64.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorSer.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.ByteSlice.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicroUTC.Skip(bs[n:])
	n += n1
	return
}

type partitionInfoSer struct{}

func (partitionInfoSer) Marshal(v core.PartitionInfo, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += raw.TimeUnixMicroUTC.Marshal(v.CreatedAt, bs[n:])
	return
}

func (partitionInfoSer) Unmarshal(bs []byte) (v core.PartitionInfo, n int, err error) {
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (partitionInfoSer) Size(v core.PartitionInfo) (size int) {
	return ord.String.Size(v.Name) + raw.TimeUnixMicroUTC.Size(v.CreatedAt)
}

func (partitionInfoSer) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = raw.TimeUnixMicroUTC.Skip(bs[n:])
	n += n1
	return
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, DocumentMUS.Size(*doc))
	DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalSearchResult serializes a SearchResult to bytes.
func MarshalSearchResult(result *core.SearchResult) []byte {
	buf := make([]byte, SearchResultMUS.Size(*result))
	SearchResultMUS.Marshal(*result, buf)
	return buf
}

// UnmarshalSearchResult deserializes a SearchResult from bytes.
func UnmarshalSearchResult(data []byte) (*core.SearchResult, error) {
	result, _, err := SearchResultMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// MarshalCacheEntry serializes a CacheEntry to bytes.
func MarshalCacheEntry(entry *core.CacheEntry) []byte {
	buf := make([]byte, CacheEntryMUS.Size(*entry))
	CacheEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCacheEntry deserializes a CacheEntry from bytes.
func UnmarshalCacheEntry(data []byte) (*core.CacheEntry, error) {
	entry, _, err := CacheEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalPartitionInfo serializes a PartitionInfo to bytes.
func MarshalPartitionInfo(info *core.PartitionInfo) []byte {
	buf := make([]byte, PartitionInfoMUS.Size(*info))
	PartitionInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalPartitionInfo deserializes a PartitionInfo from bytes.
func UnmarshalPartitionInfo(data []byte) (*core.PartitionInfo, error) {
	info, _, err := PartitionInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
