//go:build !ios && !android && (amd64 || arm64)

// Package reachability reports whether a host or address can be reached
// with the current network configuration, and notifies on changes.
//
// Reachability says nothing about whether the remote end answers: a target
// is reachable when a packet addressed to it would leave the machine.
package reachability

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

// ErrInvalidAddress is returned by NewWithAddress for the zero AddrPort.
var ErrInvalidAddress = errors.New("reachability: invalid address")

// Target is an SCNetworkReachability object.
type Target struct {
	*cf.Object
	rt sc.Runtime
}

// Kind downcasts generic objects to Target.
var Kind = cf.Kind[Target]{
	Class: sc.ClassReachability,
	Wrap: func(o *cf.Object) Target {
		rt, _ := o.Runtime().(sc.Runtime)
		return Target{Object: o, rt: rt}
	},
}

type config struct {
	rt sc.Runtime
}

// Option configures a new Target.
type Option func(*config)

// WithRuntime selects the runtime. The default is sc.Default().
func WithRuntime(rt sc.Runtime) Option {
	return func(c *config) { c.rt = rt }
}

func resolve(opts []Option) (sc.Runtime, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.rt != nil {
		return c.rt, nil
	}
	return sc.Default()
}

// NewWithName creates a target for a host name, such as "example.com".
func NewWithName(host string, opts ...Option) (Target, error) {
	rt, err := resolve(opts)
	if err != nil {
		return Target{}, err
	}
	o, ok := cf.WrapOwned(rt, rt.ReachabilityCreateWithName(host))
	if !ok {
		return Target{}, fmt.Errorf("reachability: %q: %w", host, sc.LastError(rt, "SCNetworkReachabilityCreateWithName"))
	}
	return Target{Object: o, rt: rt}, nil
}

// NewWithAddress creates a target for an IP address. The port is carried
// in the sockaddr but the framework ignores it.
func NewWithAddress(ap netip.AddrPort, opts ...Option) (Target, error) {
	if !ap.Addr().IsValid() {
		return Target{}, ErrInvalidAddress
	}
	rt, err := resolve(opts)
	if err != nil {
		return Target{}, err
	}
	o, ok := cf.WrapOwned(rt, rt.ReachabilityCreateWithAddress(sockaddr(ap)))
	if !ok {
		return Target{}, fmt.Errorf("reachability: %s: %w", ap, sc.LastError(rt, "SCNetworkReachabilityCreateWithAddress"))
	}
	return Target{Object: o, rt: rt}, nil
}

// Runtime returns the target's runtime.
func (t Target) Runtime() sc.Runtime { return t.rt }

func (t Target) usable() bool { return t.Object != nil && !t.Released() }

// Flags returns the target's current flags. For name targets this may
// block on a DNS lookup.
func (t Target) Flags() (Flags, error) {
	if !t.usable() {
		return 0, cf.ErrReleased
	}
	defer t.KeepAlive()
	f, ok := t.rt.ReachabilityGetFlags(t.Ref())
	if !ok {
		return 0, sc.LastError(t.rt, "SCNetworkReachabilityGetFlags")
	}
	return Flags(f), nil
}

// Schedule delivers flag changes to the target's callback on loop.
func (t Target) Schedule(loop cf.RunLoop, mode cf.RunLoopMode) error {
	if !t.usable() || loop.Object == nil {
		return cf.ErrReleased
	}
	defer t.KeepAlive()
	defer loop.KeepAlive()
	if !t.rt.ReachabilityScheduleWithRunLoop(t.Ref(), loop.Ref(), mode) {
		return sc.LastError(t.rt, "SCNetworkReachabilityScheduleWithRunLoop")
	}
	return nil
}

// Unschedule stops delivering flag changes on loop.
func (t Target) Unschedule(loop cf.RunLoop, mode cf.RunLoopMode) error {
	if !t.usable() || loop.Object == nil {
		return cf.ErrReleased
	}
	defer t.KeepAlive()
	defer loop.KeepAlive()
	if !t.rt.ReachabilityUnscheduleFromRunLoop(t.Ref(), loop.Ref(), mode) {
		return sc.LastError(t.rt, "SCNetworkReachabilityUnscheduleFromRunLoop")
	}
	return nil
}
