package lww

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Replica guards a Set with a RWMutex so it can be shared between goroutines.
type Replica[T comparable] struct {
	mu  sync.RWMutex
	set *Set[T]
}

func NewReplica[T comparable](set *Set[T]) *Replica[T] {
	return &Replica[T]{set: set}
}

func (r *Replica[T]) Add(e T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Add(e)
}

func (r *Replica[T]) Remove(e T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Remove(e)
}

func (r *Replica[T]) Merge(snap *Snapshot[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.Merge(snap)
}

func (r *Replica[T]) Has(e T) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Has(e)
}

func (r *Replica[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Values()
}

func (r *Replica[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Len()
}

func (r *Replica[T]) Members() mapset.Set[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Members()
}

func (r *Replica[T]) Snapshot() *Snapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Snapshot()
}

// Do runs fn with exclusive access to the underlying set.
func (r *Replica[T]) Do(fn func(s *Set[T])) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.set)
}
