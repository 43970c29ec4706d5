package lww

import (
	"cmp"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kevinxiao27/lww-set/util"
	"github.com/sanity-io/litter"
)

// Set is a last-write-wins element set. It is not safe for concurrent use,
// wrap it in a Replica for that.
type Set[T comparable] struct {
	adds    records[T]
	removes records[T]
	compare func(a, b T) int
	clock   Clock
	tie     TiePolicy
}

// New returns an empty set over an ordered element type. Values come back in
// ascending order.
func New[T cmp.Ordered](opts ...Option) *Set[T] {
	return NewFunc[T](cmp.Compare[T], opts...)
}

// NewFunc returns an empty set that orders Values and Snapshot with compare.
// compare must be a total order consistent with ==.
func NewFunc[T comparable](compare func(a, b T) int, opts ...Option) *Set[T] {
	if compare == nil {
		panic("lww: nil compare func")
	}
	o := buildOptions(opts)
	return &Set[T]{
		adds:    records[T]{},
		removes: records[T]{},
		compare: compare,
		clock:   o.clock,
		tie:     o.tie,
	}
}

func (s *Set[T]) TiePolicy() TiePolicy { return s.tie }

// Add records e as added now. A local add always overwrites the previous add
// timestamp. Elements that are not equal to themselves (NaN) are ignored.
func (s *Set[T]) Add(e T) {
	if !usable(e) {
		return
	}
	s.adds[e] = s.clock.Now()
}

// Remove records e as removed now, whether or not it was ever added.
func (s *Set[T]) Remove(e T) {
	if !usable(e) {
		return
	}
	s.removes[e] = s.clock.Now()
}

// usable reports whether e can be a map key that is found again. A NaN, or a
// struct holding one, would get a fresh entry on every write.
func usable[T comparable](e T) bool {
	return e == e
}

func (s *Set[T]) Has(e T) bool {
	added, ok := s.adds[e]
	if !ok {
		return false
	}
	removed, hasRemove := s.removes[e]
	return s.tie.present(added, removed, hasRemove)
}

func (s *Set[T]) AddedAt(e T) (Timestamp, bool) {
	ts, ok := s.adds[e]
	return ts, ok
}

func (s *Set[T]) RemovedAt(e T) (Timestamp, bool) {
	ts, ok := s.removes[e]
	return ts, ok
}

// Values lists the members in ascending order.
func (s *Set[T]) Values() []T {
	vals := util.Filter(util.Keys(s.adds), s.Has)
	slices.SortFunc(vals, s.compare)
	return vals
}

func (s *Set[T]) Len() int {
	n := 0
	for e := range s.adds {
		if s.Has(e) {
			n++
		}
	}
	return n
}

func (s *Set[T]) Members() mapset.Set[T] {
	return mapset.NewThreadUnsafeSet(s.Values()...)
}

// Snapshot exports both record maps sorted by element. The result shares no
// memory with s.
func (s *Set[T]) Snapshot() *Snapshot[T] {
	return &Snapshot[T]{
		AddSet:    s.sorted(s.adds),
		RemoveSet: s.sorted(s.removes),
	}
}

func (s *Set[T]) sorted(r records[T]) []Record[T] {
	out := util.Map(util.Keys(r), func(e T) Record[T] {
		return Record[T]{Element: e, Timestamp: r[e]}
	})
	slices.SortFunc(out, func(a, b Record[T]) int {
		return s.compare(a.Element, b.Element)
	})
	return out
}

// Clone copies state, clock and policy. The clock is shared, not copied.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{
		adds:    maps.Clone(s.adds),
		removes: maps.Clone(s.removes),
		compare: s.compare,
		clock:   s.clock,
		tie:     s.tie,
	}
}

func (s *Set[T]) Dump() string {
	return litter.Options{HidePrivateFields: true}.Sdump(s.Snapshot())
}
