package hashtable

// FixedTable is a flat, non-resizable hash table: an array of
// buckets, each an adaptive list/tree, indexed by hasher(key) mod
// capacity. It never grows or shrinks in place — Map models a resize
// by replacing a FixedTable wholesale and draining the replaced one
// incrementally via steal.
type FixedTable[K any, V any] struct {
	buckets         backingArray[bucket[K, V]]
	size            int
	migrationCursor int
	hasher          Hasher[K]
	less            LessFunc[K]
	promote         int
	demote          int
}

func newFixedTable[K any, V any](capacity int, hasher Hasher[K], less LessFunc[K], promote, demote int) (*FixedTable[K, V], error) {
	if capacity < 1 {
		capacity = 1
	}
	arr, err := newBackingArray[bucket[K, V]](capacity)
	if err != nil {
		return nil, err
	}
	return &FixedTable[K, V]{
		buckets:         arr,
		migrationCursor: capacity - 1,
		hasher:          hasher,
		less:            less,
		promote:         promote,
		demote:          demote,
	}, nil
}

func (t *FixedTable[K, V]) Size() int     { return t.size }
func (t *FixedTable[K, V]) Empty() bool   { return t.size == 0 }
func (t *FixedTable[K, V]) Capacity() int { return t.buckets.len() }

func (t *FixedTable[K, V]) bucketIndex(key K) int {
	return int(t.hasher(key) % uint64(t.buckets.len()))
}

func (t *FixedTable[K, V]) bucketAt(i int) *bucket[K, V] { return t.buckets.at(i) }

// insert looks up the bucket for key and delegates to
// bucket.insert, tracking the size delta.
func (t *FixedTable[K, V]) insert(key K, val V) (handle[K, V], bool) {
	b := t.bucketAt(t.bucketIndex(key))
	h, inserted := b.insert(key, val, t.less, t.promote)
	if inserted {
		t.size++
	}
	return h, inserted
}

func (t *FixedTable[K, V]) find(key K) (handle[K, V], bool) {
	b := t.bucketAt(t.bucketIndex(key))
	return b.find(key, t.less)
}

func (t *FixedTable[K, V]) contains(key K) bool {
	_, ok := t.find(key)
	return ok
}

// at returns a pointer to the value stored under key, inserting a
// zero value first if key is absent.
func (t *FixedTable[K, V]) at(key K) *V {
	b := t.bucketAt(t.bucketIndex(key))
	h, inserted := b.insert(key, *new(V), t.less, t.promote)
	if inserted {
		t.size++
	}
	return &h.entry().val
}

func (t *FixedTable[K, V]) erase(key K) bool {
	b := t.bucketAt(t.bucketIndex(key))
	if b.erase(key, t.less, t.demote) {
		t.size--
		return true
	}
	return false
}

// steal drains up to n elements from the highest-index non-empty
// bucket downward, visiting at most maxScan buckets, and returns them.
// It is the incremental-rehash migration primitive: after it returns,
// no bucket at an index greater than t.migrationCursor is non-empty.
func (t *FixedTable[K, V]) steal(n, maxScan int) []entry[K, V] {
	if n <= 0 || t.migrationCursor < 0 {
		return nil
	}
	var stolen []entry[K, V]
	startCursor := t.migrationCursor
	scanned := 0
	for n > 0 && t.migrationCursor >= 0 {
		if scanned >= maxScan {
			break
		}
		b := t.bucketAt(t.migrationCursor)
		for n > 0 && !b.Empty() {
			e, ok := b.popFront()
			if !ok {
				break
			}
			stolen = append(stolen, e)
			t.size--
			n--
		}
		if t.migrationCursor == 0 {
			break
		}
		if b.Empty() {
			t.migrationCursor--
			scanned = startCursor - t.migrationCursor
		}
	}
	return stolen
}

func (t *FixedTable[K, V]) clear() {
	for i := 0; i < t.buckets.len(); i++ {
		t.bucketAt(i).Clear()
	}
	t.size = 0
	t.migrationCursor = t.buckets.len() - 1
}

func (t *FixedTable[K, V]) swap(other *FixedTable[K, V]) {
	t.buckets.swap(&other.buckets)
	t.size, other.size = other.size, t.size
	t.migrationCursor, other.migrationCursor = other.migrationCursor, t.migrationCursor
	t.hasher, other.hasher = other.hasher, t.hasher
	t.less, other.less = other.less, t.less
	t.promote, other.promote = other.promote, t.promote
	t.demote, other.demote = other.demote, t.demote
}

// forEach visits every element in bucket-index order, stopping early
// if fn returns false.
func (t *FixedTable[K, V]) forEach(fn func(K, V) bool) bool {
	for i := 0; i < t.buckets.len(); i++ {
		if !t.bucketAt(i).forEach(fn) {
			return false
		}
	}
	return true
}
