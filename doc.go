// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hashtable provides Map, a hash table with amortized O(1)
// incremental rehashing and adaptive per-bucket representation.
//
// Map is organized in three layers. A bucket (see bucket.go) holds the
// elements that hash to the same slot, either as a singly linked list
// while small or as a red-black tree once it grows past a threshold,
// so that lookups stay fast even under an adversarial key distribution.
// A FixedTable (see table.go) is a flat, non-resizable array of buckets
// plus a migration cursor used to drain it incrementally. Map itself
// (see map.go) owns two FixedTables, current and old, and moves a
// small constant number of elements from old to current on every
// mutating call, so no single call ever pays for a full rehash.
//
// The following requirements are the caller's responsibility:
//   - less(a, b) and equal(a, b) must agree: exactly one of less(a,b),
//     less(b,a) holds unless a and b have equal keys, in which case
//     neither does.
//   - equal(a, b) => hasher(a) == hasher(b).
//   - hasher should return uniformly distributed values across the
//     full 64 bits for good performance.
//
// Map is not safe for concurrent use. A caller sharing a Map across
// goroutines must guard it with an external sync.Mutex or
// sync.RWMutex.
package hashtable
