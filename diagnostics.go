//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"github.com/obinnaokechukwu/scgo/internal/bindings"
	"github.com/obinnaokechukwu/scgo/internal/platform"
)

// Framework describes where one framework binary was found.
type Framework struct {
	Name string
	// Path is empty when no binary exists on disk. Since macOS 11 system
	// frameworks live only in the dyld shared cache, so an empty Path does
	// not mean loading fails.
	Path string
}

// Diagnostics describes the host and the frameworks scgo binds.
type Diagnostics struct {
	GOOS        string
	GOARCH      string
	OSRelease   string
	Loaded      bool
	SearchPaths []string
	Frameworks  []Framework
}

// Diagnose reports the platform, whether the frameworks are loaded and
// where their binaries live. It does not load anything.
func Diagnose() Diagnostics {
	d := Diagnostics{
		GOOS:        platform.GOOS(),
		GOARCH:      platform.GOARCH(),
		OSRelease:   platform.OSRelease(),
		Loaded:      bindings.IsLoaded(),
		SearchPaths: bindings.FrameworkSearchPaths(),
	}
	for _, name := range []string{bindings.CoreFoundation, bindings.SystemConfiguration} {
		path, _ := bindings.FindFramework(name)
		d.Frameworks = append(d.Frameworks, Framework{Name: name, Path: path})
	}
	return d
}
