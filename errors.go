//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"errors"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/internal/bindings"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Error is a failed SystemConfiguration call.
// It carries the SCError status code and the framework's message.
type Error = sc.Error

// Common errors
var (
	// ErrNotLoaded indicates the frameworks are not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrLibraryNotFound indicates a framework could not be opened.
	ErrLibraryNotFound = bindings.ErrLibraryNotFound

	// ErrReleased indicates a handle was used after Release.
	ErrReleased = cf.ErrReleased

	// ErrUnsupportedType indicates a Go value has no property list form.
	ErrUnsupportedType = cf.ErrUnsupportedType

	// ErrClosed indicates the session has been closed.
	ErrClosed = errors.New("scgo: session is closed")
)

// Status codes re-exported from sc
const (
	StatusFailed          = sc.StatusFailed
	StatusInvalidArgument = sc.StatusInvalidArgument
	StatusAccessError     = sc.StatusAccessError
	StatusNoKey           = sc.StatusNoKey
	StatusNoStoreServer   = sc.StatusNoStoreServer
	StatusPrefsBusy       = sc.StatusPrefsBusy
	StatusStale           = sc.StatusStale
)

// ErrorCode returns the SCError status from an error, or 0 if err is not an *Error.
func ErrorCode(err error) int32 {
	return sc.Code(err)
}

// IsAccessError returns true if the call needed privileges the process lacks.
func IsAccessError(err error) bool {
	return sc.IsAccessError(err)
}

// IsNoKey returns true if the error reports a missing key.
func IsNoKey(err error) bool {
	return sc.IsNoKey(err)
}
