package hashtable

import "github.com/cockroachdb/errors"

// ErrKeyMissing is returned by MustAt when the requested key is not
// present in the map.
var ErrKeyMissing = errors.New("hashtable: key missing")

// ErrAllocation is returned when a FixedTable's backing array cannot
// be obtained, e.g. the mmap syscall used for large bucket arrays
// fails.
var ErrAllocation = errors.New("hashtable: allocation failed")

// ErrIteratorPastEnd is returned when a cursor already at the end of
// its bucket is advanced again.
var ErrIteratorPastEnd = errors.New("hashtable: iterator past end")
