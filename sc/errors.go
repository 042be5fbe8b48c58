//go:build !ios && !android && (amd64 || arm64)

package sc

import (
	"errors"
	"fmt"
)

// SCError status codes.
const (
	StatusOK                  int32 = 0
	StatusFailed              int32 = 1001
	StatusInvalidArgument     int32 = 1002
	StatusAccessError         int32 = 1003
	StatusNoKey               int32 = 1004
	StatusKeyExists           int32 = 1005
	StatusLocked              int32 = 1006
	StatusNeedLock            int32 = 1007
	StatusNoStoreSession      int32 = 2001
	StatusNoStoreServer       int32 = 2002
	StatusNotifierActive      int32 = 2003
	StatusNoPrefsSession      int32 = 3001
	StatusPrefsBusy           int32 = 3002
	StatusNoConfigFile        int32 = 3003
	StatusNoLink              int32 = 3004
	StatusStale               int32 = 3005
	StatusMaxLink             int32 = 3006
	StatusReachabilityUnknown int32 = 4001
	StatusConnectionNoService int32 = 5001
	StatusConnectionIgnore    int32 = 5002
)

// Error is a failed SystemConfiguration call.
type Error struct {
	Op      string // Operation that failed
	Code    int32  // SCError() status
	Message string // SCErrorString()
}

func (e *Error) Error() string {
	return fmt.Sprintf("sc %s: %s (status %d)", e.Op, e.Message, e.Code)
}

// LastError captures the calling thread's SCError as an *Error for op.
// Callers on goroutines should lock the OS thread around the failing call
// and this one, or accept that the status may belong to another call.
func LastError(rt Runtime, op string) error {
	code := rt.LastError()
	if code == StatusOK {
		code = StatusFailed
	}
	return &Error{Op: op, Code: code, Message: rt.ErrorString(code)}
}

// Code returns the status code of err, or 0 if err is not an *Error.
func Code(err error) int32 {
	var scErr *Error
	if errors.As(err, &scErr) {
		return scErr.Code
	}
	return 0
}

// IsNoKey reports whether err means the key does not exist.
func IsNoKey(err error) bool { return Code(err) == StatusNoKey }

// IsAccessError reports whether err means permission was denied.
func IsAccessError(err error) bool { return Code(err) == StatusAccessError }

// IsStale reports whether err means the preferences changed underneath the session.
func IsStale(err error) bool { return Code(err) == StatusStale }

// IsNoServer reports whether err means configd could not be reached.
func IsNoServer(err error) bool { return Code(err) == StatusNoStoreServer }

// StatusText returns a message for the codes above. Runtimes without a
// native SCErrorString use it.
func StatusText(code int32) string {
	switch code {
	case StatusOK:
		return "Success!"
	case StatusFailed:
		return "Failed!"
	case StatusInvalidArgument:
		return "Invalid argument"
	case StatusAccessError:
		return "Permission denied"
	case StatusNoKey:
		return "No such key"
	case StatusKeyExists:
		return "Key already defined"
	case StatusLocked:
		return "Lock already held"
	case StatusNeedLock:
		return "Lock required for this operation"
	case StatusNoStoreSession:
		return "Configuration daemon session not active"
	case StatusNoStoreServer:
		return "Configuration daemon not (no longer) available"
	case StatusNotifierActive:
		return "Notifier is currently active"
	case StatusNoPrefsSession:
		return "Preferences session not active"
	case StatusPrefsBusy:
		return "Preferences update currently in progress"
	case StatusNoConfigFile:
		return "Configuration file not found"
	case StatusNoLink:
		return "No such link"
	case StatusStale:
		return "Write attempted on stale version of object"
	case StatusMaxLink:
		return "Maximum link count exceeded"
	case StatusReachabilityUnknown:
		return "Network reachability cannot be determined"
	case StatusConnectionNoService:
		return "Network service for connection not available"
	case StatusConnectionIgnore:
		return "Network connection information not available at this time"
	default:
		return fmt.Sprintf("Unknown error: %d", code)
	}
}
