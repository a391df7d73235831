// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package pool

import "unsafe"

// Interner stores string bytes in block-growing storage decoupled from any
// entity's lifetime. Put always copies; the returned string aliases
// interner-owned bytes and stays valid until the interner is collected.
// There is no deduplication, so ids and other expected-unique fields belong
// here rather than in a DedupInterner whose lookup map would never hit.
type Interner struct {
	blocks   [][]byte
	blockCap int
}

// NewInterner returns an interner whose blocks hold blockCap bytes each.
func NewInterner(blockCap int) *Interner {
	if blockCap < 1 {
		blockCap = DefaultBlockCap
	}
	return &Interner{blockCap: blockCap}
}

// Put copies s into interner-owned storage and returns the stored copy.
// A string longer than a whole block gets its own dedicated block.
func (in *Interner) Put(s string) string {
	n := len(s)
	if n == 0 {
		return ""
	}
	if n > in.blockCap {
		block := append([]byte(nil), s...)
		in.blocks = append(in.blocks, block)
		return unsafeString(block)
	}
	top := len(in.blocks) - 1
	if top < 0 || len(in.blocks[top])+n > in.blockCap {
		in.blocks = append(in.blocks, make([]byte, 0, in.blockCap))
		top = len(in.blocks) - 1
	}
	block := in.blocks[top]
	off := len(block)
	block = append(block, s...)
	in.blocks[top] = block
	return unsafeString(block[off : off+n])
}

// Reset empties the interner for reuse, keeping regular blocks. Intended for
// transient per-batch buffers, not entity storage.
func (in *Interner) Reset() {
	kept := in.blocks[:0]
	for _, block := range in.blocks {
		if cap(block) == in.blockCap {
			kept = append(kept, block[:0])
		}
	}
	in.blocks = kept
}

// DedupInterner wraps an Interner with a content lookup so equal content
// always returns the identical stored string. Meant for high-repetition
// fields (airline, plane model, hotel name).
type DedupInterner struct {
	pool   *Interner
	lookup map[string]string
}

// NewDedupInterner returns a deduplicating interner over blocks of blockCap
// bytes.
func NewDedupInterner(blockCap int) *DedupInterner {
	return &DedupInterner{
		pool:   NewInterner(blockCap),
		lookup: make(map[string]string),
	}
}

// Put returns the previously stored copy of s if equal content was seen
// before, else stores a copy and registers it.
func (d *DedupInterner) Put(s string) string {
	if stored, ok := d.lookup[s]; ok {
		return stored
	}
	stored := d.pool.Put(s)
	d.lookup[stored] = stored
	return stored
}

// Len returns the number of distinct strings stored.
func (d *DedupInterner) Len() int { return len(d.lookup) }

// unsafeString views b as a string without copying. Callers must never
// mutate b afterwards; interner blocks are append-only, which satisfies
// that.
func unsafeString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}
