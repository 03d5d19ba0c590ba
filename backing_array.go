package hashtable

import (
	"reflect"
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// mmapThreshold mirrors the original implementation's cutover point
// between a heap allocation and an anonymous mmap: below this many
// bytes the overhead of a syscall isn't worth it.
const mmapThreshold = 4096

// backingArray is the fixed-length, default-initialized, indexed
// storage collaborator a FixedTable allocates its bucket slots from.
// Below mmapThreshold bytes it is a plain Go slice; at or above it,
// and only for element types with no pointers, it is backed by an
// anonymous mmap region so large tables don't tie up GC scan time on
// memory the collector never needs to trace.
//
// Element types that embed pointers (our own bucket[K, V], whose
// nodes live on the Go heap) always take the slice path regardless of
// size: storing Go pointers inside mmap'd memory would hide them from
// the garbage collector, which only scans memory it allocated, and
// the referenced nodes could be collected out from under a live
// bucket. newBackingArray detects this with a reflect-based scan and
// falls back rather than risk it.
type backingArray[T any] struct {
	data   []T
	mapped []byte // non-nil iff data is backed by an mmap region
}

func newBackingArray[T any](n int) (backingArray[T], error) {
	var zero T
	if n == 0 {
		return backingArray[T]{}, nil
	}
	elemSize := int(unsafe.Sizeof(zero))
	totalBytes := elemSize * n
	if totalBytes >= mmapThreshold && !containsPointers(reflect.TypeOf(zero)) {
		region, err := unix.Mmap(-1, 0, totalBytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return backingArray[T]{}, errors.Wrapf(ErrAllocation, "mmap %d bytes: %v", totalBytes, err)
		}
		arr := backingArray[T]{
			data:   unsafe.Slice((*T)(unsafe.Pointer(&region[0])), n),
			mapped: region,
		}
		runtime.SetFinalizer(&arr, func(a *backingArray[T]) { a.release() })
		return arr, nil
	}
	return backingArray[T]{data: make([]T, n)}, nil
}

// containsPointers reports whether t's representation may contain a
// pointer the garbage collector needs to trace.
func containsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return containsPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (a *backingArray[T]) len() int { return len(a.data) }

func (a *backingArray[T]) at(i int) *T { return &a.data[i] }

// release returns the mmap region, if any, to the OS. It is safe to
// call more than once and safe to call on a zero-value backingArray.
func (a *backingArray[T]) release() {
	if a.mapped != nil {
		_ = unix.Munmap(a.mapped)
		a.mapped = nil
	}
	a.data = nil
}

func (a *backingArray[T]) swap(other *backingArray[T]) {
	a.data, other.data = other.data, a.data
	a.mapped, other.mapped = other.mapped, a.mapped
}
