package filter

import "errors"

// ErrNilSource is the value FilterEvaluator.Apply panics with when it is
// called with a nil source image. A nil source is a programmer error,
// not a recoverable condition: the caller must supply a live dynamic
// source image to Apply.
var ErrNilSource = errors.New("filter: nil source image")

// ErrNilOffset is the value FilterEvaluator.Apply panics with when it is
// called with a nil offset output pointer.
var ErrNilOffset = errors.New("filter: nil offset output pointer")

// ErrInvalidEncoding is returned by Decode when a serialized filter graph
// is malformed: a negative input count, a count/payload mismatch, a
// non-finite crop rectangle, or a truncated buffer.
var ErrInvalidEncoding = errors.New("filter: invalid encoding")
