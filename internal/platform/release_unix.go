//go:build !ios && !android && (amd64 || arm64) && unix

package platform

import (
	"golang.org/x/sys/unix"
)

// OSRelease returns the kernel release string (uname -r), e.g. "23.5.0" on macOS 14.5.
// Returns "" when uname fails.
func OSRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
