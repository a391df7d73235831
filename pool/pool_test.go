// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package pool_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/featurebasedb/traveldb/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_PutIterateRoundTrip(t *testing.T) {
	// Small blocks so the test crosses several block boundaries.
	p := pool.NewPool[int](4)
	const n = 19
	for i := 0; i < n; i++ {
		p.Put(i * 3)
	}
	require.Equal(t, n, p.Len())

	var got []int
	p.Iterate(func(v *int) bool {
		got = append(got, *v)
		return true
	})
	require.Len(t, got, n)
	for i, v := range got {
		assert.Equal(t, i*3, v, "item %d", i)
	}
}

func TestPool_AddressStability(t *testing.T) {
	p := pool.NewPool[[2]uint64](2)
	var ptrs []*[2]uint64
	for i := 0; i < 50; i++ {
		item := p.Alloc()
		item[0] = uint64(i)
		ptrs = append(ptrs, item)
	}
	// Growth must never have moved earlier items.
	for i, ptr := range ptrs {
		require.Equal(t, uint64(i), ptr[0])
	}
}

func TestPool_IterateEarlyStop(t *testing.T) {
	p := pool.NewPool[int](4)
	for i := 0; i < 10; i++ {
		p.Put(i)
	}
	visited := 0
	p.Iterate(func(v *int) bool {
		visited++
		return *v < 5
	})
	assert.Equal(t, 6, visited) // stops after seeing 5 fail the predicate
}

func TestPool_AllocN(t *testing.T) {
	t.Run("Contiguous", func(t *testing.T) {
		p := pool.NewPool[byte](8)
		run := p.AllocN(5)
		require.Len(t, run, 5)
		for i := range run {
			run[i] = byte('a' + i)
		}
		assert.Equal(t, "abcde", string(run))
	})

	t.Run("Oversize", func(t *testing.T) {
		p := pool.NewPool[int](4)
		p.Put(1)
		run := p.AllocN(10) // bigger than a block
		require.Len(t, run, 10)
		for i := range run {
			run[i] = 100 + i
		}
		p.Put(2)

		var got []int
		p.Iterate(func(v *int) bool {
			got = append(got, *v)
			return true
		})
		// Allocation order survives the dedicated block.
		require.Equal(t, 12, len(got))
		assert.Equal(t, 1, got[0])
		assert.Equal(t, 100, got[1])
		assert.Equal(t, 109, got[10])
		assert.Equal(t, 2, got[11])
	})
}

func TestPool_Reset(t *testing.T) {
	p := pool.NewPool[int](4)
	for i := 0; i < 9; i++ {
		p.Put(i + 1)
	}
	p.Reset()
	assert.Equal(t, 0, p.Len())

	got := 0
	p.Iterate(func(v *int) bool { got++; return true })
	assert.Equal(t, 0, got)

	// Reused blocks must hand out zeroed items.
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, *p.Alloc())
	}
}

func TestInterner_PutCopies(t *testing.T) {
	in := pool.NewInterner(16)
	src := []byte("lisbon")
	s := in.Put(string(src))
	src[0] = 'L'
	assert.Equal(t, "lisbon", s)
	assert.Equal(t, "", in.Put(""))
}

func TestInterner_OversizeString(t *testing.T) {
	in := pool.NewInterner(8)
	long := "a much longer string than one block holds"
	short := in.Put("abc")
	got := in.Put(long)
	assert.Equal(t, long, got)
	assert.Equal(t, "abc", short)
	assert.Equal(t, "def", in.Put("def"))
}

func TestDedupInterner_Idempotent(t *testing.T) {
	d := pool.NewDedupInterner(64)
	a1 := d.Put("TAP Air Portugal")
	a2 := d.Put("TAP" + " Air Portugal") // equal content, distinct backing
	b := d.Put("Lufthansa")

	assert.True(t, sameString(a1, a2), "equal content must intern to one string")
	assert.False(t, sameString(a1, b))
	assert.Equal(t, 2, d.Len())
}

// sameString reports whether two strings share backing storage, which is the
// dedup guarantee (stronger than ==).
func sameString(a, b string) bool {
	if a != b {
		return false
	}
	ah := (*reflect.StringHeader)(unsafe.Pointer(&a))
	bh := (*reflect.StringHeader)(unsafe.Pointer(&b))
	return ah.Data == bh.Data
}

func BenchmarkPoolPut(b *testing.B) {
	p := pool.NewPool[[4]uint64](4096)
	var v [4]uint64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v[0] = uint64(i)
		p.Put(v)
	}
	if p.Len() != b.N {
		b.Fatalf("expected %d items, got %d", b.N, p.Len())
	}
}
