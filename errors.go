package phicomp

import "github.com/pkg/errors"

// ErrInvalidContainer is returned by Decompress when the input is too
// short, carries the wrong magic bytes, or decodes to a different number
// of bytes than its header declares.
var ErrInvalidContainer = errors.New("phicomp: invalid container")

// ErrInternalInvariantViolation is returned when a decoded scaled value
// cannot be located in the cumulative frequency table. It should be
// unreachable; seeing it indicates the model and coder have desynced.
var ErrInternalInvariantViolation = errors.New("phicomp: internal invariant violation")
