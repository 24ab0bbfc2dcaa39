package blit

import "errors"

// ErrUnsupportedConversion is returned when the source and destination RGB
// definitions do not match any entry in the recognized conversion table.
var ErrUnsupportedConversion = errors.New("blit: unsupported RGB conversion")

// ErrUnsupportedDepth names the case of a stage requested for a
// bytes-per-pixel value no registered kernel covers. No function in this
// package returns it; unsupported layouts are reported as
// ErrUnsupportedConversion.
var ErrUnsupportedDepth = errors.New("blit: unsupported pixel depth")

// ErrCapabilityMissing is returned by initializers that require a hardware
// capability (wide-register fast-write path) the host did not report.
var ErrCapabilityMissing = errors.New("blit: required capability not available")

// ArenaOverflowError reports that a scratch allocation would exceed the
// arena's fixed block size or slot count. This is a programmer error: the
// pipeline depth is bounded at assembly time, and a correctly assembled
// pipeline never overflows.
type ArenaOverflowError struct {
	Requested int
	Available int
}

func (e *ArenaOverflowError) Error() string {
	return "blit: scratch arena overflow (requested additional bytes that would exceed the fixed block)"
}

// ArenaUnderflowError reports a Free call with no matching Alloc, or frees
// issued out of LIFO order. Also a programmer error.
type ArenaUnderflowError struct{}

func (e *ArenaUnderflowError) Error() string {
	return "blit: scratch arena free without a matching allocation"
}

// ArenaNotEmptyError reports that Done was called while allocations were
// still outstanding.
type ArenaNotEmptyError struct {
	Outstanding int
}

func (e *ArenaNotEmptyError) Error() string {
	return "blit: arena torn down with outstanding allocations"
}
