package lww

type Timestamp int64

// Record is one entry of the add-set or remove-set: the latest timestamp a
// replica has seen for Element.
type Record[T any] struct {
	Element   T
	Timestamp Timestamp
}

// Snapshot is the exchange format between replicas. Both slices must be
// non-nil for Merge to accept it; empty slices are fine.
type Snapshot[T any] struct {
	AddSet    []Record[T] `json:"addSetData"`
	RemoveSet []Record[T] `json:"removeSetData"`
}

type TiePolicy int

const (
	// RemoveWins hides an element whose add and remove timestamps are equal.
	RemoveWins TiePolicy = iota
	// AddWins keeps it.
	AddWins
)

func (p TiePolicy) String() string {
	switch p {
	case RemoveWins:
		return "remove-wins"
	case AddWins:
		return "add-wins"
	}
	return "unknown"
}

// present decides membership given both records. hasRemove is false when the
// element has never been removed.
func (p TiePolicy) present(added Timestamp, removed Timestamp, hasRemove bool) bool {
	if !hasRemove || added > removed {
		return true
	}
	return added == removed && p == AddWins
}

type records[T comparable] map[T]Timestamp

// join folds a single record in, keeping the larger timestamp.
func (r records[T]) join(e T, ts Timestamp) {
	if cur, ok := r[e]; !ok || ts > cur {
		r[e] = ts
	}
}
