// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package pool implements the arena allocators backing the entity managers:
// a block-growing pool of fixed-size items and two string interners built on
// the same growth strategy.
package pool

// Pool is a bump allocator of items of type T over a list of fixed-capacity
// blocks. Items are never freed individually; addresses are stable for the
// life of the pool because blocks are allocated once and never resized or
// moved (only the block list itself grows).
type Pool[T any] struct {
	blocks   [][]T // each block is allocated at blockCap and sliced by use
	blockCap int
	count    int
}

const DefaultBlockCap = 4096

// NewPool returns a pool whose blocks hold blockCap items each. A blockCap
// below 1 falls back to DefaultBlockCap.
func NewPool[T any](blockCap int) *Pool[T] {
	if blockCap < 1 {
		blockCap = DefaultBlockCap
	}
	return &Pool[T]{blockCap: blockCap}
}

// Alloc returns a pointer to a zeroed item in the current top block, growing
// a new block when the top block is full.
func (p *Pool[T]) Alloc() *T {
	items := p.AllocN(1)
	return &items[0]
}

// AllocN returns n contiguous zeroed items. A run longer than a whole block
// gets its own dedicated block; the previous block's unused tail is
// abandoned so iteration order stays allocation order.
func (p *Pool[T]) AllocN(n int) []T {
	if n < 1 {
		return nil
	}
	if n > p.blockCap {
		// A dedicated oversize block. The current top block's tail is
		// abandoned so iteration keeps allocation order.
		block := make([]T, n)
		p.blocks = append(p.blocks, block)
		p.count += n
		return block
	}
	top := len(p.blocks) - 1
	if top < 0 || len(p.blocks[top])+n > p.blockCap {
		p.blocks = append(p.blocks, make([]T, 0, p.blockCap))
		top = len(p.blocks) - 1
	}
	block := p.blocks[top]
	off := len(block)
	block = block[: off+n : p.blockCap]
	p.blocks[top] = block
	p.count += n
	return block[off : off+n]
}

// Put copies v into the pool and returns the stored item's address.
func (p *Pool[T]) Put(v T) *T {
	item := p.Alloc()
	*item = v
	return item
}

// Len returns the number of items allocated.
func (p *Pool[T]) Len() int { return p.count }

// Iterate visits every allocated item in allocation order until fn returns
// false.
func (p *Pool[T]) Iterate(fn func(*T) bool) {
	for _, block := range p.blocks {
		for i := range block {
			if !fn(&block[i]) {
				return
			}
		}
	}
}

// Reset empties the pool for reuse, keeping regular blocks to avoid
// reallocation. Dedicated oversize blocks are dropped. Previously returned
// pointers become invalid for the caller's purposes, though the memory is
// retained until the pool is collected.
func (p *Pool[T]) Reset() {
	kept := p.blocks[:0]
	var zero T
	for _, block := range p.blocks {
		if cap(block) == p.blockCap {
			full := block[:cap(block)]
			for i := range full {
				full[i] = zero
			}
			kept = append(kept, block[:0])
		}
	}
	p.blocks = kept
	p.count = 0
}
