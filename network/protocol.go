//go:build !ios && !android && (amd64 || arm64)

package network

import (
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Protocol is an SCNetworkProtocol configured on a service.
type Protocol struct{ *cf.Object }

// ProtocolKind downcasts generic objects to Protocol.
var ProtocolKind = cf.Kind[Protocol]{
	Class: sc.ClassNetworkProtocol,
	Wrap:  func(o *cf.Object) Protocol { return Protocol{o} },
}

// TypeName returns the raw kSCNetworkProtocolType* tag.
func (p Protocol) TypeName() string {
	if p.Object == nil {
		return ""
	}
	rt := runtimeOf(p.Object)
	defer p.KeepAlive()
	s, _ := borrowedString(rt, rt.NetworkProtocolGetProtocolType(p.Ref()))
	return s
}

// Type returns the protocol type; ProtocolUnrecognized if the tag is new.
func (p Protocol) Type() ProtocolType {
	return ParseProtocolType(p.TypeName())
}

// Enabled reports whether the protocol is enabled.
func (p Protocol) Enabled() bool {
	if p.Object == nil {
		return false
	}
	defer p.KeepAlive()
	return runtimeOf(p.Object).NetworkProtocolGetEnabled(p.Ref())
}

// Config returns an owned handle to the protocol's configuration.
func (p Protocol) Config() (cf.Dictionary, bool) {
	if p.Object == nil {
		return cf.Dictionary{}, false
	}
	rt := runtimeOf(p.Object)
	defer p.KeepAlive()
	return borrowedDictionary(rt, rt.NetworkProtocolGetConfiguration(p.Ref()))
}
