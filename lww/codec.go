package lww

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MarshalJSON writes a record as the pair [element, timestamp].
func (r Record[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Element, r.Timestamp})
}

func (r *Record[T]) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.Errorf("record should be an [element, timestamp] pair, got %d items", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Element); err != nil {
		return errors.Wrap(err, "element")
	}
	if err := json.Unmarshal(pair[1], &r.Timestamp); err != nil {
		return errors.Wrap(err, "timestamp")
	}
	return nil
}

func EncodeSnapshot[T any](snap *Snapshot[T]) ([]byte, error) {
	if err := Validate(snap); err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// DecodeSnapshot parses and validates a JSON snapshot. Any failure, syntax or
// shape, is reported as ErrMalformedMergePayload.
func DecodeSnapshot[T any](data []byte) (*Snapshot[T], error) {
	var snap Snapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, malformed("%v", err)
	}
	if err := Validate(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
