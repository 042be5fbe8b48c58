//go:build !ios && !android && (amd64 || arm64)

// Package platform describes where Apple frameworks live and what the host can load.
package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"unsafe"
)

// HasFrameworks reports whether the host OS ships Apple's CoreFoundation and
// SystemConfiguration frameworks. Everywhere else only fake runtimes work.
const HasFrameworks = runtime.GOOS == "darwin"

// Is64Bit indicates whether the platform is 64-bit.
// purego callbacks and struct layouts used by scgo assume 64-bit words.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// SystemFrameworksDir is the directory holding the OS frameworks on macOS.
const SystemFrameworksDir = "/System/Library/Frameworks"

// FrameworkBinary returns the path of a framework's loadable binary below dir.
//
// Examples:
//   - FrameworkBinary("/System/Library/Frameworks", "CoreFoundation")
//     -> "/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation"
//   - FrameworkBinary("", "SystemConfiguration")
//     -> "SystemConfiguration.framework/SystemConfiguration"
func FrameworkBinary(dir, name string) string {
	bundle := fmt.Sprintf("%s.framework", name)
	if dir == "" {
		return filepath.Join(bundle, name)
	}
	return filepath.Join(dir, bundle, name)
}

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}
