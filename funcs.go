// Modifications copyright (c) Cloudpeak Systems, Inc. 2024
// Underlying
// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hashtable

import (
	"fmt"
	"slices"
	"strings"
)

// String converts m to a string representation using K's and V's
// String methods, with keys sorted for a deterministic result.
func String[K fmt.Stringer, V fmt.Stringer](m *Map[K, V]) string {
	return StringFunc(m,
		func(key K) string { return key.String() },
		func(val V) string { return val.String() },
	)
}

type strKV struct {
	k string
	v string
}

// StringFunc converts m to a string representation, using strK and
// strV to render keys and values, sorted by rendered key.
func StringFunc[K any, V any](m *Map[K, V], strK func(K) string, strV func(V) string) string {
	if m == nil || m.Len() == 0 {
		return "hashtable.Map[]"
	}
	pairs := make([]strKV, 0, m.Len())
	m.All()(func(k K, v V) bool {
		pairs = append(pairs, strKV{k: strK(k), v: strV(v)})
		return true
	})
	slices.SortFunc(pairs, func(a, b strKV) int { return strings.Compare(a.k, b.k) })

	var b strings.Builder
	b.WriteString("hashtable.Map[")
	for i, p := range pairs {
		if i != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.k)
		b.WriteByte(':')
		b.WriteString(p.v)
	}
	b.WriteByte(']')
	return b.String()
}

// Equal reports whether m1 and m2 contain the same set of keys, with
// values compared using ==.
func Equal[K any, V comparable](m1, m2 *Map[K, V]) bool {
	if m1.Len() != m2.Len() {
		return false
	}
	equal := true
	m1.All()(func(k K, v V) bool {
		v2, ok := m2.Get(k)
		if !ok || v != v2 {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// EqualFunc reports whether m1 and m2 contain the same set of keys,
// with values compared using eq.
func EqualFunc[K any, V any](m1, m2 *Map[K, V], eq func(V, V) bool) bool {
	if m1.Len() != m2.Len() {
		return false
	}
	equal := true
	m1.All()(func(k K, v V) bool {
		v2, ok := m2.Get(k)
		if !ok || !eq(v, v2) {
			equal = false
			return false
		}
		return true
	})
	return equal
}
