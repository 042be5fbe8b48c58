//go:build !ios && !android && (amd64 || arm64)

// Package scgo provides bindings to Apple's SystemConfiguration framework
// without cgo, using purego.
//
// For most uses, open a Session: it holds one dynamic store session and one
// preferences session and answers the common questions (primary service,
// default router, DNS). The lower level packages are available for
// everything else:
//
//	dynamicstore  live configuration, change notifications
//	preferences   persistent configuration, commit and apply
//	network       services, interfaces, protocols and sets
//	reachability  host and address reachability
//	cf            Core Foundation handles and property lists
package scgo

import (
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/dynamicstore"
	"github.com/obinnaokechukwu/scgo/internal/bindings"
	"github.com/obinnaokechukwu/scgo/internal/platform"
	"github.com/obinnaokechukwu/scgo/network"
	"github.com/obinnaokechukwu/scgo/preferences"
	"github.com/obinnaokechukwu/scgo/reachability"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Init loads CoreFoundation and SystemConfiguration. It is called
// automatically when a session is opened, but can be called explicitly to
// check for errors. It is safe to call multiple times.
func Init() error {
	_, err := sc.Default()
	return err
}

// IsLoaded returns true if the frameworks have been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// OSRelease returns the kernel release of the running system, such as
// "23.4.0", or "" when it cannot be determined.
func OSRelease() string {
	return platform.OSRelease()
}

// Re-export common types for convenience
type (
	// Object is an owned or borrowed Core Foundation reference.
	Object = cf.Object

	// Store is a dynamic store session.
	Store = dynamicstore.Store

	// Preferences is a preferences session.
	Preferences = preferences.Preferences

	// Service is a network service.
	Service = network.Service

	// Interface is a network interface.
	Interface = network.Interface

	// Set is a network location.
	Set = network.Set

	// DNS holds a service's State and Setup DNS blocks.
	DNS = network.DNS

	// DNSSetting is one DNS block.
	DNSSetting = network.DNSSetting

	// MTU is an interface's MTU and its allowed range.
	MTU = network.MTU

	// Target is a reachability target.
	Target = reachability.Target

	// ReachabilityFlags describe how a target can be reached.
	ReachabilityFlags = reachability.Flags
)
