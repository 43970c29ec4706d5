package lww

import "github.com/pkg/errors"

// ErrMalformedMergePayload is returned by Merge and DecodeSnapshot when the
// payload is missing or lacks the add or remove sequence.
var ErrMalformedMergePayload = errors.New("merge payload should not be nil and should contain addSetData and removeSetData")

func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedMergePayload, format, args...)
}
