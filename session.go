//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"errors"
	"net/netip"
	"sync"

	"github.com/obinnaokechukwu/scgo/dynamicstore"
	"github.com/obinnaokechukwu/scgo/network"
	"github.com/obinnaokechukwu/scgo/preferences"
	"github.com/obinnaokechukwu/scgo/sc"
)

// ErrNoPrimaryService is returned when no service holds the default route.
var ErrNoPrimaryService = errors.New("scgo: no primary service")

// Session is one client's view of the configuration: a single dynamic
// store session and a single preferences session, shared by every query.
//
// A Session is safe for concurrent use. Handles it returns are owned by the
// caller and stay valid after Close.
type Session struct {
	mu     sync.RWMutex
	rt     sc.Runtime
	store  dynamicstore.Store
	prefs  preferences.Preferences
	closed bool
}

type sessionConfig struct {
	rt        sc.Runtime
	prefsID   string
	storeOpts []dynamicstore.Option
}

// Option configures NewSession.
type Option func(*sessionConfig)

// WithRuntime selects the runtime. The default is the native frameworks.
func WithRuntime(rt sc.Runtime) Option {
	return func(c *sessionConfig) { c.rt = rt }
}

// WithPreferencesID opens a preferences file other than the system network
// configuration.
func WithPreferencesID(prefsID string) Option {
	return func(c *sessionConfig) { c.prefsID = prefsID }
}

// WithStoreOptions passes options through to dynamicstore.New, for example
// a change callback.
func WithStoreOptions(opts ...dynamicstore.Option) Option {
	return func(c *sessionConfig) { c.storeOpts = append(c.storeOpts, opts...) }
}

// NewSession opens a session named name. The name identifies the client to
// configd and appears in its logs.
func NewSession(name string, opts ...Option) (*Session, error) {
	var c sessionConfig
	for _, opt := range opts {
		opt(&c)
	}
	if c.rt == nil {
		rt, err := sc.Default()
		if err != nil {
			return nil, err
		}
		c.rt = rt
	}

	storeOpts := append([]dynamicstore.Option{dynamicstore.WithRuntime(c.rt)}, c.storeOpts...)
	store, err := dynamicstore.New(name, storeOpts...)
	if err != nil {
		return nil, err
	}
	prefs, err := preferences.NewGroup(name, c.prefsID, preferences.WithRuntime(c.rt))
	if err != nil {
		store.Release()
		return nil, err
	}
	return &Session{rt: c.rt, store: store, prefs: prefs}, nil
}

// Runtime returns the session's runtime.
func (s *Session) Runtime() sc.Runtime { return s.rt }

// Store returns the session's dynamic store. It is released by Close.
func (s *Session) Store() dynamicstore.Store { return s.store }

// Preferences returns the session's preferences. They are released by Close.
func (s *Session) Preferences() preferences.Preferences { return s.prefs }

// Close releases both sessions. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.store.Release()
	s.prefs.Release()
	return nil
}

// use runs fn with the session held open.
func (s *Session) use(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn()
}

// GlobalService returns the primary service.
func (s *Session) GlobalService() (svc network.Service, ok bool) {
	s.use(func() error {
		svc, ok = network.GlobalService(s.prefs, s.store)
		return nil
	})
	return svc, ok
}

// GlobalInterface returns the primary service's interface.
func (s *Session) GlobalInterface() (iface network.Interface, ok bool) {
	s.use(func() error {
		iface, ok = network.GlobalInterface(s.prefs, s.store)
		return nil
	})
	return iface, ok
}

// GlobalRouter returns the default router.
func (s *Session) GlobalRouter() (addr netip.Addr, ok bool) {
	s.use(func() error {
		addr, ok = network.GlobalRouter(s.store)
		return nil
	})
	return addr, ok
}

// Services returns every configured service.
func (s *Session) Services() (out []network.Service, err error) {
	err = s.use(func() error {
		out, err = network.ListServices(s.prefs)
		return err
	})
	return out, err
}

// ServiceOrder returns the current set's services in preferred order.
func (s *Session) ServiceOrder() (out []network.Service) {
	s.use(func() error {
		out = network.ServiceOrder(s.prefs)
		return nil
	})
	return out
}

// Interfaces returns every network-capable interface.
func (s *Session) Interfaces() (out []network.Interface, err error) {
	err = s.use(func() error {
		out, err = network.ListInterfaces(s.rt)
		return err
	})
	return out, err
}

// ServiceByID returns the service with the given identifier.
func (s *Session) ServiceByID(id string) (svc network.Service, ok bool) {
	s.use(func() error {
		svc, ok = network.ServiceByID(s.prefs, id)
		return nil
	})
	return svc, ok
}

// DNS returns the DNS configuration of a service.
func (s *Session) DNS(svc network.Service) (dns network.DNS, err error) {
	err = s.use(func() error {
		dns = svc.DNS(s.store)
		return nil
	})
	return dns, err
}

// SetDNS writes the configured DNS block of a service.
func (s *Session) SetDNS(svc network.Service, setting network.DNSSetting) error {
	return s.use(func() error {
		return svc.SetDNS(s.store, setting)
	})
}

// PrimaryDNS returns the DNS configuration of the primary service.
func (s *Session) PrimaryDNS() (network.DNS, error) {
	svc, ok := s.GlobalService()
	if !ok {
		if s.isClosed() {
			return network.DNS{}, ErrClosed
		}
		return network.DNS{}, ErrNoPrimaryService
	}
	defer svc.Release()
	return s.DNS(svc)
}

// SetPrimaryDNS writes the configured DNS block of the primary service.
func (s *Session) SetPrimaryDNS(setting network.DNSSetting) error {
	svc, ok := s.GlobalService()
	if !ok {
		if s.isClosed() {
			return ErrClosed
		}
		return ErrNoPrimaryService
	}
	defer svc.Release()
	return s.SetDNS(svc, setting)
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
