// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package hashindex implements the id lookup index used by the entity
// managers: an extendible hash table held fully in memory, with a doubling
// directory and bucket splits on overflow.
package hashindex

import (
	"github.com/cespare/xxhash"
)

// entriesPerBucket trades directory growth against scan length inside a
// bucket. Buckets are scanned linearly, so keep them small.
const entriesPerBucket = 16

type entry[V any] struct {
	hash  uint64
	key   string
	value V
}

type bucket[V any] struct {
	localDepth uint
	entries    []entry[V]
}

// Index maps string ids to values of type V. It is not safe for concurrent
// use; the storage layer is single-writer by design.
type Index[V any] struct {
	directory   []*bucket[V]
	globalDepth uint
	count       int
}

// NewIndex returns an empty index.
func NewIndex[V any]() *Index[V] {
	b := &bucket[V]{entries: make([]entry[V], 0, entriesPerBucket)}
	return &Index[V]{directory: []*bucket[V]{b}}
}

// not for crypto; xxhash spreads ids well enough for the directory bits.
func hashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (ix *Index[V]) bucketFor(hash uint64) *bucket[V] {
	return ix.directory[hash&((1<<ix.globalDepth)-1)]
}

// Get returns the value stored under key.
func (ix *Index[V]) Get(key string) (V, bool) {
	hash := hashKey(key)
	b := ix.bucketFor(hash)
	for i := range b.entries {
		if b.entries[i].hash == hash && b.entries[i].key == key {
			return b.entries[i].value, true
		}
	}
	var zero V
	return zero, false
}

// Put stores value under key. If the key was already present its previous
// value is returned with displaced set to true and the entry is overwritten.
func (ix *Index[V]) Put(key string, value V) (prev V, displaced bool) {
	hash := hashKey(key)
	b := ix.bucketFor(hash)
	for i := range b.entries {
		if b.entries[i].hash == hash && b.entries[i].key == key {
			prev = b.entries[i].value
			b.entries[i].value = value
			return prev, true
		}
	}
	for len(b.entries) >= entriesPerBucket {
		ix.split(b)
		b = ix.bucketFor(hash)
	}
	b.entries = append(b.entries, entry[V]{hash: hash, key: key, value: value})
	ix.count++
	return prev, false
}

// Delete removes key from the index, reporting whether it was present. The
// bucket keeps its storage; nothing shrinks.
func (ix *Index[V]) Delete(key string) bool {
	hash := hashKey(key)
	b := ix.bucketFor(hash)
	for i := range b.entries {
		if b.entries[i].hash == hash && b.entries[i].key == key {
			last := len(b.entries) - 1
			b.entries[i] = b.entries[last]
			var zero entry[V]
			b.entries[last] = zero
			b.entries = b.entries[:last]
			ix.count--
			return true
		}
	}
	return false
}

// Len returns the number of keys stored.
func (ix *Index[V]) Len() int { return ix.count }

// split rehashes b's entries into two buckets of one greater local depth,
// doubling the directory first when b was at global depth.
func (ix *Index[V]) split(b *bucket[V]) {
	if b.localDepth == ix.globalDepth {
		ix.directory = append(ix.directory, ix.directory...)
		ix.globalDepth++
	}

	hiBit := uint64(1) << b.localDepth
	b0 := &bucket[V]{localDepth: b.localDepth + 1, entries: make([]entry[V], 0, entriesPerBucket)}
	b1 := &bucket[V]{localDepth: b.localDepth + 1, entries: make([]entry[V], 0, entriesPerBucket)}
	for _, e := range b.entries {
		if e.hash&hiBit > 0 {
			b1.entries = append(b1.entries, e)
		} else {
			b0.entries = append(b0.entries, e)
		}
	}

	// Redirect every directory slot that pointed at b.
	for j := range ix.directory {
		if ix.directory[j] != b {
			continue
		}
		if uint64(j)&hiBit > 0 {
			ix.directory[j] = b1
		} else {
			ix.directory[j] = b0
		}
	}
}
