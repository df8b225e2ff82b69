package fcm

import "github.com/pkg/errors"

// ErrEmptyConfiguration is returned by New when given an empty order set.
var ErrEmptyConfiguration = errors.New("fcm: orders must be non-empty")
