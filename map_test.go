// Modifications copyright (c) Cloudpeak Systems, Inc. 2024
// Underlying
// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hashtable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func newIntStringMap(opts ...Option) *Map[int, string] {
	return New[int, string](NewIntHasher(), intLess, opts...)
}

// TestBasic covers scenario S1: insert, duplicate insert, contains.
func TestBasic(t *testing.T) {
	m := newIntStringMap()
	require.True(t, m.Insert(1, "one"))
	require.True(t, m.Insert(2, "two"))
	require.False(t, m.Insert(1, "one"))

	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Contains(1))
	assert.True(t, m.Contains(2))
	assert.False(t, m.Contains(3))
}

// TestRehashTrigger covers scenario S2: growing past the load factor
// keeps every previously inserted key findable throughout.
func TestRehashTrigger(t *testing.T) {
	m := newIntStringMap(WithInitialCapacity(2))
	for i := 0; i < 10; i++ {
		m.Insert(i, fmt.Sprintf("v%d", i))
		for j := 0; j <= i; j++ {
			v, ok := m.Get(j)
			require.True(t, ok, "key %d should be findable after inserting %d", j, i)
			require.Equal(t, fmt.Sprintf("v%d", j), v)
		}
	}
	assert.Equal(t, 10, m.Len())
	assert.GreaterOrEqual(t, m.current.Capacity(), 8)
}

// TestRehashInterleaving covers scenario S3: erase and re-insert while
// a rehash is in flight.
func TestRehashInterleaving(t *testing.T) {
	m := newIntStringMap(WithInitialCapacity(2))
	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Insert(3, "c")
	m.Insert(4, "d") // the grow to capacity 4 began at Insert(2)
	require.True(t, m.rehashing || m.Len() == 4)

	m.Delete(2)
	m.Insert(2, "b")

	assert.Equal(t, 4, m.Len())
	for i := 1; i <= 4; i++ {
		assert.True(t, m.Contains(i), "key %d", i)
	}
	v, ok := m.Get(2)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

// TestMassInsertErase covers scenario S4.
func TestMassInsertErase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mass insert/erase in short mode")
	}
	const n = 100_000
	m := newIntStringMap()
	for i := 0; i < n; i++ {
		m.Insert(i, fmt.Sprintf("value%d", i))
	}
	for i := 0; i < n; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("value%d", i), v)
	}

	for i := 0; i < n; i += 2 {
		require.True(t, m.Delete(i))
	}
	assert.Equal(t, n/2, m.Len())
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			assert.False(t, m.Contains(i))
		} else {
			assert.True(t, m.Contains(i))
		}
	}

	for i := 1; i < n; i += 2 {
		require.True(t, m.Delete(i))
	}
	assert.Equal(t, 0, m.Len())
}

// collidingHasher maps every key to the same bucket, forcing a single
// bucket through both the list->tree and tree->list transitions.
func collidingHasher() Hasher[int] {
	return func(int) uint64 { return 0 }
}

// TestBucketPromotion covers scenario S5. Capacity 16 keeps 11 keys
// under the 75% load factor, so no resize splits the colliding keys
// between current and old.
func TestBucketPromotion(t *testing.T) {
	m := New[int, string](collidingHasher(), intLess, WithInitialCapacity(16))

	for i := 0; i < 11; i++ {
		m.Insert(i, fmt.Sprintf("v%d", i))
	}
	b := m.current.bucketAt(0)
	require.Equal(t, bucketTree, b.kind, "bucket should have promoted to a tree")
	for i := 0; i < 11; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("v%d", i), v)
	}

	for i := 0; i < 8; i++ {
		require.True(t, m.Delete(i))
	}
	b = m.current.bucketAt(0)
	assert.Equal(t, bucketList, b.kind, "bucket should have demoted back to a list")
	assert.Equal(t, 3, b.Size())
	for i := 8; i < 11; i++ {
		assert.True(t, m.Contains(i))
	}
}

// TestMigrationCorrectness covers scenario S6: read-only calls never
// trigger a migration step.
func TestMigrationCorrectness(t *testing.T) {
	m := newIntStringMap(WithInitialCapacity(2))
	m.Insert(1, "a")
	m.Insert(2, "b") // 2 of capacity 2 is over 75%: starts a grow to 4
	if !m.rehashing {
		m.beginResize(4)
	}
	require.True(t, m.rehashing)

	oldSizeBefore := m.old.Size()
	m.Contains(1) // read-only: must not migrate
	assert.Equal(t, oldSizeBefore, m.old.Size())

	m.Insert(3, "c") // mutating: migrates at most stealBatch elements
	assert.LessOrEqual(t, oldSizeBefore-m.old.Size(), m.stealBatch)
}

func TestAtInsertsDefaultOnMiss(t *testing.T) {
	m := newIntStringMap()
	v := m.At(42)
	assert.Equal(t, "", *v)
	*v = "answer"
	got, ok := m.Get(42)
	require.True(t, ok)
	assert.Equal(t, "answer", got)
}

func TestMustAtMissing(t *testing.T) {
	m := newIntStringMap()
	m.Insert(1, "one")
	_, err := m.MustAt(1)
	require.NoError(t, err)

	_, err = m.MustAt(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyMissing)
}

func TestClear(t *testing.T) {
	m := newIntStringMap(WithInitialCapacity(2))
	for i := 0; i < 20; i++ {
		m.Insert(i, "x")
	}
	require.Greater(t, m.Len(), 0)
	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.rehashing)
	assert.False(t, m.Contains(0))
}

func TestShrink(t *testing.T) {
	m := newIntStringMap(WithInitialCapacity(2))
	for i := 0; i < 200; i++ {
		m.Insert(i, "x")
	}
	// Drain any in-flight rehash.
	for j := 0; j < 10_000 && m.rehashing; j++ {
		m.Insert(-1, "sentinel")
		m.Delete(-1)
	}
	require.False(t, m.rehashing)
	capBeforeShrink := m.current.Capacity()

	for i := 0; i < 190; i++ {
		m.Delete(i)
	}
	for j := 0; j < 10_000 && m.rehashing; j++ {
		m.Insert(-1, "sentinel")
		m.Delete(-1)
	}
	assert.Equal(t, 10, m.Len())
	assert.Less(t, m.current.Capacity(), capBeforeShrink)
}

func TestAllIterationVisitsEveryElementOnce(t *testing.T) {
	m := newIntStringMap(WithInitialCapacity(2))
	want := map[int]string{}
	for i := 0; i < 50; i++ {
		v := fmt.Sprintf("v%d", i)
		m.Insert(i, v)
		want[i] = v
	}
	got := map[int]string{}
	m.All()(func(k int, v string) bool {
		_, dup := got[k]
		require.False(t, dup, "key %d visited twice", k)
		got[k] = v
		return true
	})
	assert.Equal(t, want, got)
}

func TestAllEarlyStop(t *testing.T) {
	m := newIntStringMap()
	for i := 0; i < 10; i++ {
		m.Insert(i, "x")
	}
	count := 0
	m.All()(func(int, string) bool {
		count++
		return count < 3
	})
	assert.Equal(t, 3, count)
}
