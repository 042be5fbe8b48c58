//go:build !ios && !android && (amd64 || arm64) && !unix

package platform

// OSRelease is not available on this platform.
func OSRelease() string {
	return ""
}
