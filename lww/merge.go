package lww

// Merge joins a foreign snapshot into s by taking, per element and per map,
// the larger of the two timestamps. It is idempotent, commutative and
// associative. A nil snapshot or a missing sequence leaves s untouched and
// returns ErrMalformedMergePayload, as does a record whose element is not
// equal to itself.
func (s *Set[T]) Merge(snap *Snapshot[T]) error {
	if err := Validate(snap); err != nil {
		return err
	}
	if err := validateElements(snap); err != nil {
		return err
	}

	var latest Timestamp
	for _, r := range snap.AddSet {
		s.adds.join(r.Element, r.Timestamp)
		latest = max(latest, r.Timestamp)
	}
	for _, r := range snap.RemoveSet {
		s.removes.join(r.Element, r.Timestamp)
		latest = max(latest, r.Timestamp)
	}

	if o, ok := s.clock.(Observer); ok {
		o.Observe(latest)
	}
	return nil
}

// MergeSet merges other's state without going through a Snapshot.
func (s *Set[T]) MergeSet(other *Set[T]) {
	if other == nil || other == s {
		return
	}
	var latest Timestamp
	for e, ts := range other.adds {
		s.adds.join(e, ts)
		latest = max(latest, ts)
	}
	for e, ts := range other.removes {
		s.removes.join(e, ts)
		latest = max(latest, ts)
	}
	if o, ok := s.clock.(Observer); ok {
		o.Observe(latest)
	}
}

func Validate[T any](snap *Snapshot[T]) error {
	switch {
	case snap == nil:
		return malformed("nil snapshot")
	case snap.AddSet == nil:
		return malformed("missing addSetData")
	case snap.RemoveSet == nil:
		return malformed("missing removeSetData")
	}
	return nil
}

func validateElements[T comparable](snap *Snapshot[T]) error {
	for _, rs := range [][]Record[T]{snap.AddSet, snap.RemoveSet} {
		for _, r := range rs {
			if !usable(r.Element) {
				return malformed("element %v is not equal to itself", r.Element)
			}
		}
	}
	return nil
}
