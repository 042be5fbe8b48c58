//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"encoding/binary"
	"net/netip"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

const (
	afInet  = 2
	afInet6 = 30
)

type reachState struct {
	host       string
	callout    sc.ReachabilityCallout
	ctx        sc.Context
	hasCallout bool
	pending    bool
}

func (s *reachState) dealloc(r *Runtime, self cf.Ref) {
	if s.hasCallout && s.ctx.Release != nil {
		release, info := s.ctx.Release, s.ctx.Info
		r.post = append(r.post, func() { release(info) })
	}
}

func (r *Runtime) reachLocked(ref cf.Ref) *reachState {
	return r.mustLocked(ref, sc.ClassReachability).state.(*reachState)
}

func (r *Runtime) ReachabilityCreateWithName(name string) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLocked("ReachabilityCreateWithName") {
		return 0
	}
	if name == "" {
		r.lastErr = sc.StatusInvalidArgument
		return 0
	}
	return r.allocLocked(&object{class: sc.ClassReachability, state: &reachState{host: name}})
}

// parseSockaddr decodes a BSD sockaddr_in or sockaddr_in6.
func parseSockaddr(b []byte) (netip.AddrPort, bool) {
	if len(b) < 2 || int(b[0]) > len(b) {
		return netip.AddrPort{}, false
	}
	switch b[1] {
	case afInet:
		if b[0] < 16 {
			return netip.AddrPort{}, false
		}
		addr := netip.AddrFrom4([4]byte(b[4:8]))
		return netip.AddrPortFrom(addr, binary.BigEndian.Uint16(b[2:4])), true
	case afInet6:
		if b[0] < 28 {
			return netip.AddrPort{}, false
		}
		addr := netip.AddrFrom16([16]byte(b[8:24]))
		return netip.AddrPortFrom(addr, binary.BigEndian.Uint16(b[2:4])), true
	}
	return netip.AddrPort{}, false
}

func (r *Runtime) ReachabilityCreateWithAddress(sockaddr []byte) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLocked("ReachabilityCreateWithAddress") {
		return 0
	}
	ap, ok := parseSockaddr(sockaddr)
	if !ok {
		r.lastErr = sc.StatusInvalidArgument
		return 0
	}
	return r.allocLocked(&object{class: sc.ClassReachability, state: &reachState{host: ap.Addr().String()}})
}

func (r *Runtime) ReachabilityGetFlags(target cf.Ref) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.reachLocked(target)
	if r.failLocked("ReachabilityGetFlags") {
		return 0, false
	}
	return r.reach[s.host], true
}

func (r *Runtime) ReachabilitySetCallback(target cf.Ref, callout sc.ReachabilityCallout, ctx *sc.Context) bool {
	r.mu.Lock()
	defer r.unlock()
	s := r.reachLocked(target)
	if r.failLocked("ReachabilitySetCallback") {
		if callout != nil && ctx != nil && ctx.Release != nil {
			release, info := ctx.Release, ctx.Info
			r.post = append(r.post, func() { release(info) })
		}
		return false
	}
	if s.hasCallout && s.ctx.Release != nil {
		release, info := s.ctx.Release, s.ctx.Info
		r.post = append(r.post, func() { release(info) })
	}
	s.callout, s.ctx, s.hasCallout, s.pending = nil, sc.Context{}, false, false
	if callout != nil {
		s.callout, s.hasCallout = callout, true
		if ctx != nil {
			s.ctx = *ctx
		}
	}
	return true
}

func (r *Runtime) ReachabilityScheduleWithRunLoop(target, loop cf.Ref, mode cf.RunLoopMode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reachLocked(target)
	if r.failLocked("ReachabilityScheduleWithRunLoop") {
		return false
	}
	r.scheduleLocked(r.loopLocked(loop), target, mode)
	return true
}

func (r *Runtime) ReachabilityUnscheduleFromRunLoop(target, loop cf.Ref, mode cf.RunLoopMode) bool {
	r.mu.Lock()
	defer r.unlock()
	r.reachLocked(target)
	if !r.unscheduleLocked(r.loopLocked(loop), target, mode) {
		r.lastErr = sc.StatusInvalidArgument
		return false
	}
	return true
}

// SetReachability sets the flags reported for host, a host name or an
// address string, and queues a callout for every target watching it.
func (r *Runtime) SetReachability(host string, flags uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reach[host] = flags
	for _, o := range r.objects {
		if o.freed {
			continue
		}
		if s, ok := o.state.(*reachState); ok && s.host == host && s.hasCallout {
			s.pending = true
		}
	}
	r.loop.signal()
}
