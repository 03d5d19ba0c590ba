package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// TestPropertyRandomOpsAgainstReferenceMap drives a random sequence of
// Insert/Delete/Get/Contains calls against both the Map under test and
// a plain Go map used as an oracle, checking invariants #2 (size tracks
// the live key set), #7 (an inserted value reads back through Get) and
// #8 (a duplicate insert leaves the stored value unchanged) from the
// testable-properties list, and that Insert and Delete report key
// presence the same way the oracle does.
func TestPropertyRandomOpsAgainstReferenceMap(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	m := newIntStringMap(WithInitialCapacity(4))
	oracle := map[int]string{}

	const ops = 20_000
	const keySpace = 500
	for i := 0; i < ops; i++ {
		key := rng.Intn(keySpace)
		switch rng.Intn(4) {
		case 0, 1: // insert weighted higher to keep the map populated
			val := randString(rng, 6)
			_, existed := oracle[key]
			inserted := m.Insert(key, val)
			assert.Equal(t, !existed, inserted, "insert return must match oracle presence for key %d", key)
			if !existed {
				oracle[key] = val
			}
		case 2: // delete
			_, existed := oracle[key]
			removed := m.Delete(key)
			assert.Equal(t, existed, removed, "delete return must match oracle presence for key %d", key)
			delete(oracle, key)
		case 3: // read-only check
			want, existed := oracle[key]
			got, ok := m.Get(key)
			require.Equal(t, existed, ok, "contains mismatch for key %d", key)
			if existed {
				assert.Equal(t, want, got, "value mismatch for key %d", key)
			}
		}
		require.Equal(t, len(oracle), m.Len(), "size invariant violated after %d ops", i)
	}

	for k, v := range oracle {
		got, ok := m.Get(k)
		require.True(t, ok, "key %d missing at end", k)
		assert.Equal(t, v, got)
	}
}

// TestPropertyClearAlwaysEmpties runs random insert/delete batches
// interspersed with Clear and checks the map never reports stale keys
// or a nonzero length afterward.
func TestPropertyClearAlwaysEmpties(t *testing.T) {
	rng := rand.New(rand.NewSource(999))
	for trial := 0; trial < 50; trial++ {
		m := newIntStringMap(WithInitialCapacity(2))
		n := rng.Intn(200)
		for i := 0; i < n; i++ {
			m.Insert(rng.Intn(100), "x")
		}
		m.Clear()
		assert.Equal(t, 0, m.Len())
		for i := 0; i < 100; i++ {
			assert.False(t, m.Contains(i))
		}
	}
}

func randString(rng *rand.Rand, n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}
