package hashtable

import "github.com/cockroachdb/errors"

// entry is a single key/value pair stored in a bucket.
type entry[K any, V any] struct {
	key K
	val V
}

type bucketKind uint8

const (
	bucketList bucketKind = iota
	bucketTree
)

type listNode[K any, V any] struct {
	e    entry[K, V]
	next *listNode[K, V]
}

type rbColor uint8

const (
	red rbColor = iota
	black
)

type rbNode[K any, V any] struct {
	e                   entry[K, V]
	left, right, parent *rbNode[K, V]
	color               rbColor
}

// handle is a cursor into a bucket, referencing either a list node or
// a tree node depending on the bucket's current representation. The
// zero value is the "end" handle; use bucket.find/insert/eraseHandle
// to obtain one.
type handle[K any, V any] struct {
	kind bucketKind
	list *listNode[K, V]
	tree *rbNode[K, V]
}

func (h handle[K, V]) valid() bool {
	if h.kind == bucketList {
		return h.list != nil
	}
	return h.tree != nil
}

func (h handle[K, V]) key() K { return h.entry().key }

func (h handle[K, V]) entry() *entry[K, V] {
	if h.kind == bucketList {
		return &h.list.e
	}
	return &h.tree.e
}

// bucket holds the elements that hash to one FixedTable slot, as
// either a singly linked list (small regime) or a red-black tree
// (large regime). Callers supply less and the promotion/demotion
// thresholds on every call rather than the bucket storing them, so a
// million empty buckets don't each carry a duplicate closure pointer.
type bucket[K any, V any] struct {
	kind bucketKind
	size int
	head *listNode[K, V]
	root *rbNode[K, V]
}

func (b *bucket[K, V]) Size() int   { return b.size }
func (b *bucket[K, V]) Empty() bool { return b.size == 0 }

func (b *bucket[K, V]) Clear() {
	b.head = nil
	b.root = nil
	b.size = 0
	b.kind = bucketList
}

// find returns a handle to the element keyed by key, or ok=false.
func (b *bucket[K, V]) find(key K, less LessFunc[K]) (h handle[K, V], ok bool) {
	if b.kind == bucketList {
		for n := b.head; n != nil; n = n.next {
			if !less(n.e.key, key) && !less(key, n.e.key) {
				return handle[K, V]{kind: bucketList, list: n}, true
			}
		}
		return handle[K, V]{}, false
	}
	n := b.treeSearch(key, less)
	if n == nil {
		return handle[K, V]{}, false
	}
	return handle[K, V]{kind: bucketTree, tree: n}, true
}

// insert adds (key, val) if no element with an equal key exists.
// Returns a handle to the stored element (new or pre-existing) and
// whether it was newly inserted.
func (b *bucket[K, V]) insert(key K, val V, less LessFunc[K], promote int) (h handle[K, V], inserted bool) {
	if existing, ok := b.find(key, less); ok {
		return existing, false
	}
	if b.kind == bucketList {
		n := &listNode[K, V]{e: entry[K, V]{key: key, val: val}, next: b.head}
		b.head = n
		b.size++
		if b.size >= promote {
			b.treeify(less)
			// Re-locate the just-inserted element; treeify rebuilds
			// node identity so the pre-treeify handle is stale.
			h, _ = b.find(key, less)
			return h, true
		}
		return handle[K, V]{kind: bucketList, list: n}, true
	}
	n := &rbNode[K, V]{e: entry[K, V]{key: key, val: val}, color: red}
	b.treeInsertFixup(n, less)
	b.size++
	return handle[K, V]{kind: bucketTree, tree: n}, true
}

// erase removes the element keyed by key, if present, returning
// whether it was found and removed.
func (b *bucket[K, V]) erase(key K, less LessFunc[K], demote int) bool {
	h, ok := b.find(key, less)
	if !ok {
		return false
	}
	_, err := b.eraseHandle(h, less, demote)
	return err == nil
}

// eraseHandle removes the element referenced by h, which must be
// valid and currently belong to b, and returns a handle to its
// successor (the zero, "end" handle if h referenced the last
// element). Passing an already-invalid h is a programming fault,
// reported as ErrIteratorPastEnd rather than a panic.
func (b *bucket[K, V]) eraseHandle(h handle[K, V], less LessFunc[K], demote int) (handle[K, V], error) {
	if !h.valid() {
		return handle[K, V]{}, errors.Wrap(ErrIteratorPastEnd, "erase bucket handle")
	}
	if b.kind == bucketList {
		successor := h.list.next
		if b.head == h.list {
			b.head = h.list.next
		} else {
			prev := b.head
			for prev != nil && prev.next != h.list {
				prev = prev.next
			}
			if prev != nil {
				prev.next = h.list.next
			}
		}
		b.size--
		return handle[K, V]{kind: bucketList, list: successor}, nil
	}

	z := h.tree
	twoChildren := z.left != nil && z.right != nil
	successor := treeSuccessor[K, V](z)
	b.treeDelete(z)
	b.size--
	if b.size <= demote {
		b.untreeify()
		// Tree node identity is gone; untreeify rebuilds the bucket as
		// a list and a stale *rbNode handle can't be resolved back, so
		// the caller only gets a valid successor handle when the
		// bucket stays in tree regime.
		return handle[K, V]{}, nil
	}
	if twoChildren {
		// z's slot now holds the former successor's payload (see
		// treeDelete), so z itself is the correct successor handle.
		return handle[K, V]{kind: bucketTree, tree: z}, nil
	}
	return handle[K, V]{kind: bucketTree, tree: successor}, nil
}

// popFront removes and returns an arbitrary single element: the list
// head in list regime, the leftmost (minimum) node in tree regime.
// Used by FixedTable.steal during migration.
func (b *bucket[K, V]) popFront() (entry[K, V], bool) {
	if b.size == 0 {
		return entry[K, V]{}, false
	}
	if b.kind == bucketList {
		n := b.head
		b.head = n.next
		b.size--
		return n.e, true
	}
	n := b.root
	for n.left != nil {
		n = n.left
	}
	e := n.e
	b.treeDelete(n)
	b.size--
	// No demotion check here: popFront is only used while draining a
	// table wholesale (migration), where the bucket is discarded
	// regardless of regime once empty.
	return e, true
}

// forEach visits every element once, in list-traversal order or
// tree in-order, stopping early if fn returns false.
func (b *bucket[K, V]) forEach(fn func(key K, val V) bool) bool {
	if b.kind == bucketList {
		for n := b.head; n != nil; n = n.next {
			if !fn(n.e.key, n.e.val) {
				return false
			}
		}
		return true
	}
	return b.treeInOrder(b.root, fn)
}

func (b *bucket[K, V]) treeInOrder(n *rbNode[K, V], fn func(K, V) bool) bool {
	if n == nil {
		return true
	}
	if !b.treeInOrder(n.left, fn) {
		return false
	}
	if !fn(n.e.key, n.e.val) {
		return false
	}
	return b.treeInOrder(n.right, fn)
}

// treeify converts a list-regime bucket into a tree-regime bucket
// holding the same elements.
func (b *bucket[K, V]) treeify(less LessFunc[K]) {
	nodes := make([]*listNode[K, V], 0, b.size)
	for n := b.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	b.root = nil
	b.kind = bucketTree
	for _, n := range nodes {
		tn := &rbNode[K, V]{e: n.e, color: red}
		b.treeInsertFixup(tn, less)
	}
	b.head = nil
}

// untreeify converts a tree-regime bucket into a list-regime bucket
// holding the same elements.
func (b *bucket[K, V]) untreeify() {
	var head *listNode[K, V]
	var walk func(n *rbNode[K, V])
	walk = func(n *rbNode[K, V]) {
		if n == nil {
			return
		}
		walk(n.left)
		head = &listNode[K, V]{e: n.e, next: head}
		walk(n.right)
	}
	walk(b.root)
	b.root = nil
	b.head = head
	b.kind = bucketList
}

// ---- red-black tree, per CLRS, adapted from parent-pointer form ----

func (b *bucket[K, V]) treeSearch(key K, less LessFunc[K]) *rbNode[K, V] {
	n := b.root
	for n != nil {
		if !less(key, n.e.key) && !less(n.e.key, key) {
			return n
		}
		if less(key, n.e.key) {
			n = n.left
		} else {
			n = n.right
		}
	}
	return nil
}

func (b *bucket[K, V]) leftRotate(x *rbNode[K, V]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		b.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (b *bucket[K, V]) rightRotate(y *rbNode[K, V]) {
	x := y.left
	y.left = x.right
	if x.right != nil {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == nil {
		b.root = x
	} else if y == y.parent.left {
		y.parent.left = x
	} else {
		y.parent.right = x
	}
	x.right = y
	y.parent = x
}

// treeInsertFixup links z into the tree in sorted position and
// restores the red-black invariants.
func (b *bucket[K, V]) treeInsertFixup(z *rbNode[K, V], less LessFunc[K]) {
	var y *rbNode[K, V]
	x := b.root
	for x != nil {
		y = x
		if less(z.e.key, x.e.key) {
			x = x.left
		} else {
			x = x.right
		}
	}
	z.parent = y
	if y == nil {
		b.root = z
	} else if less(z.e.key, y.e.key) {
		y.left = z
	} else {
		y.right = z
	}
	z.color = red

	for z != b.root && z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y != nil && y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					b.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				b.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y != nil && y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					b.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				b.leftRotate(z.parent.parent)
			}
		}
	}
	b.root.color = black
}

func treeMinimum[K any, V any](x *rbNode[K, V]) *rbNode[K, V] {
	for x.left != nil {
		x = x.left
	}
	return x
}

func treeSuccessor[K any, V any](x *rbNode[K, V]) *rbNode[K, V] {
	if x.right != nil {
		return treeMinimum(x.right)
	}
	y := x.parent
	for y != nil && x == y.right {
		x = y
		y = y.parent
	}
	return y
}

// treeDelete removes z from the tree, preserving the red-black
// invariants. If z has two children, its in-order successor is
// unlinked instead and only its element payload is copied into z,
// per CLRS's standard refinement (links and color stay put).
func (b *bucket[K, V]) treeDelete(z *rbNode[K, V]) {
	var y *rbNode[K, V]
	if z.left == nil || z.right == nil {
		y = z
	} else {
		y = treeSuccessor[K, V](z)
	}

	var x *rbNode[K, V]
	if y.left != nil {
		x = y.left
	} else {
		x = y.right
	}

	var xParent *rbNode[K, V]
	if x != nil {
		x.parent = y.parent
		xParent = x.parent
	} else {
		xParent = y.parent
	}
	if y.parent == nil {
		b.root = x
	} else if y == y.parent.left {
		y.parent.left = x
	} else {
		y.parent.right = x
	}
	if y != z {
		z.e = y.e
	}

	if y.color == black {
		b.deleteFixup(x, xParent)
	}
}

func (b *bucket[K, V]) deleteFixup(x, xParent *rbNode[K, V]) {
	for x != b.root && (x == nil || x.color == black) {
		if x == xParent.left {
			w := xParent.right
			if w.color == red {
				w.color = black
				xParent.color = red
				b.leftRotate(xParent)
				w = xParent.right
			}
			if (w.left == nil || w.left.color == black) && (w.right == nil || w.right.color == black) {
				w.color = red
				x = xParent
				xParent = x.parent
			} else {
				if w.right == nil || w.right.color == black {
					if w.left != nil {
						w.left.color = black
					}
					w.color = red
					b.rightRotate(w)
					w = xParent.right
				}
				w.color = xParent.color
				xParent.color = black
				if w.right != nil {
					w.right.color = black
				}
				b.leftRotate(xParent)
				x = b.root
				xParent = x.parent
			}
		} else {
			w := xParent.left
			if w.color == red {
				w.color = black
				xParent.color = red
				b.rightRotate(xParent)
				w = xParent.left
			}
			if (w.right == nil || w.right.color == black) && (w.left == nil || w.left.color == black) {
				w.color = red
				x = xParent
				xParent = x.parent
			} else {
				if w.left == nil || w.left.color == black {
					if w.right != nil {
						w.right.color = black
					}
					w.color = red
					b.leftRotate(w)
					w = xParent.left
				}
				w.color = xParent.color
				xParent.color = black
				if w.left != nil {
					w.left.color = black
				}
				b.rightRotate(xParent)
				x = b.root
				xParent = x.parent
			}
		}
	}
	if x != nil {
		x.color = black
	}
}
