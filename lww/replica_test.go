package lww

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicaConcurrentWriters(t *testing.T) {
	clock := NewLogicalClock(0)
	r := NewReplica(newStringSet(clock))
	peer := newStringSet(clock)
	for i := 0; i < 50; i++ {
		peer.Add("peer-" + strconv.Itoa(i))
	}
	snap := peer.Snapshot()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			r.Add("local-" + strconv.Itoa(i))
		}(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Merge(snap))
		}()
		go func() {
			defer wg.Done()
			r.Values()
			r.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
	assert.Equal(t, 100, r.Members().Cardinality())
	assert.True(t, r.Has("local-7"))
	assert.True(t, r.Has("peer-7"))
}

func TestReplicaRemoveAndDo(t *testing.T) {
	r := NewReplica(newStringSet(NewLogicalClock(0)))
	r.Add("a")
	r.Add("b")
	r.Remove("a")
	assert.Equal(t, []string{"b"}, r.Values())

	var clone *Set[string]
	r.Do(func(s *Set[string]) { clone = s.Clone() })
	require.NotNil(t, clone)
	assert.Equal(t, r.Snapshot(), clone.Snapshot())

	assert.Error(t, r.Merge(nil))
}
