//go:build !ios && !android && (amd64 || arm64)

package cf

import (
	"errors"
)

var (
	// ErrUnsupportedType is returned when a value has no property-list representation.
	ErrUnsupportedType = errors.New("cf: unsupported property list type")

	// ErrNullObject is returned when a create call yields no object.
	ErrNullObject = errors.New("cf: create returned NULL")

	// ErrReleased is returned when a released handle is used.
	ErrReleased = errors.New("cf: object already released")
)
