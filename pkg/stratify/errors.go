package stratify

import "errors"

// Sampling errors. Both are returned wrapped with context and can be checked
// with errors.Is.
var (
	// ErrInvalidInput is returned for malformed or out-of-range arguments:
	// a negative target, a target larger than the pool, an empty pool with a
	// nonzero target, or a record missing its id or group.
	ErrInvalidInput = errors.New("stratify: invalid input")

	// ErrAllocationMismatch is returned when an allocation disagrees with the
	// pool it is applied to. It indicates a programming error, not bad input.
	ErrAllocationMismatch = errors.New("stratify: allocation does not match pool")
)
