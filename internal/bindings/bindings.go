//go:build !ios && !android && (amd64 || arm64)

// Package bindings loads Apple's CoreFoundation and SystemConfiguration
// frameworks with purego and resolves their exported symbols.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/scgo/internal/platform"
)

// ErrNotLoaded is returned when framework functions are called before Load().
var ErrNotLoaded = errors.New("scgo: frameworks not loaded; call scgo.Init() first")

// ErrLibraryNotFound is returned when a required framework cannot be opened.
var ErrLibraryNotFound = errors.New("scgo: framework not found")

// ErrSymbolNotFound is returned when an exported symbol is missing from the loaded frameworks.
var ErrSymbolNotFound = errors.New("scgo: symbol not found")

// FrameworkDirEnv overrides the directory searched first for frameworks.
const FrameworkDirEnv = "SCGO_FRAMEWORK_DIR"

// Framework names, in load order.
const (
	CoreFoundation      = "CoreFoundation"
	SystemConfiguration = "SystemConfiguration"
)

var (
	libCoreFoundation      uintptr
	libSystemConfiguration uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// IsLoaded returns true if both frameworks have been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load opens CoreFoundation and SystemConfiguration.
// It is safe to call multiple times; subsequent calls return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	var err error

	// SystemConfiguration links against CoreFoundation; open CF first so its
	// symbols are global before SC resolves them.
	libCoreFoundation, err = loadFramework(CoreFoundation)
	if err != nil {
		return fmt.Errorf("loading %s: %w", CoreFoundation, err)
	}

	libSystemConfiguration, err = loadFramework(SystemConfiguration)
	if err != nil {
		return fmt.Errorf("loading %s: %w", SystemConfiguration, err)
	}
	return nil
}

func loadFramework(name string) (uintptr, error) {
	for _, dir := range FrameworkSearchPaths() {
		lib, err := tryOpen(platform.FrameworkBinary(dir, name))
		if err == nil {
			return lib, nil
		}
	}

	// Let dyld search DYLD_FRAMEWORK_PATH and its fallback list.
	if lib, err := tryOpen(platform.FrameworkBinary("", name)); err == nil {
		return lib, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FrameworkSearchPaths returns the directories probed for frameworks, in order.
func FrameworkSearchPaths() []string {
	var paths []string
	if dir := os.Getenv(FrameworkDirEnv); dir != "" {
		paths = append(paths, filepath.SplitList(dir)...)
	}
	if platform.HasFrameworks {
		paths = append(paths, platform.SystemFrameworksDir, "/Library/Frameworks")
	}
	return paths
}

// FindFramework returns the on-disk path of a framework binary.
// Since macOS 11 system frameworks live only in the dyld shared cache, so a
// miss here does not mean Load will fail. Useful for diagnostics.
func FindFramework(name string) (string, error) {
	for _, dir := range FrameworkSearchPaths() {
		path := platform.FrameworkBinary(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibCoreFoundation returns the CoreFoundation library handle.
func LibCoreFoundation() uintptr {
	return libCoreFoundation
}

// LibSystemConfiguration returns the SystemConfiguration library handle.
func LibSystemConfiguration() uintptr {
	return libSystemConfiguration
}

// Symbol returns the address of an exported symbol, searching
// SystemConfiguration first and CoreFoundation second.
func Symbol(name string) (uintptr, error) {
	if !loaded {
		return 0, ErrNotLoaded
	}
	for _, lib := range []uintptr{libSystemConfiguration, libCoreFoundation} {
		if addr, err := purego.Dlsym(lib, name); err == nil && addr != 0 {
			return addr, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
}

// Pointer reads the value of an exported pointer variable such as
// kCFBooleanTrue or kSCDynamicStoreUseSessionKeys.
func Pointer(name string) (uintptr, error) {
	addr, err := Symbol(name)
	if err != nil {
		return 0, err
	}
	// addr is a dlsym result inside the mapped framework image, not Go
	// memory, so the GC never moves or frees it and vet's unsafeptr
	// warning does not apply here.
	return *(*uintptr)(unsafe.Pointer(addr)), nil
}
