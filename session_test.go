//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"net/netip"
	"sync"
	"testing"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/dynamicstore"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/obinnaokechukwu/scgo/schema"
	"github.com/obinnaokechukwu/scgo/sctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*sctest.Runtime, string) {
	t.Helper()
	rt := sctest.New()
	rt.AddInterface(sctest.Interface{BSDName: "en0", Type: schema.InterfaceTypeEthernet})
	id := rt.AddService(sctest.Service{Name: "Ethernet", Enabled: true, Interface: "en0"})
	rt.AddSet(sctest.Set{Name: "Automatic", Services: []string{id}})
	rt.SetStoreValue(schema.GlobalKey(schema.DomainState, schema.EntityIPv4), map[string]any{
		schema.PrimaryService:   id,
		schema.PrimaryInterface: "en0",
		schema.Router:           "10.0.0.1",
	})
	return rt, id
}

func TestSessionQueries(t *testing.T) {
	rt, id := newFixture(t)
	base := rt.Live()

	s, err := NewSession("scgo-test", WithRuntime(rt))
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Stores())

	svc, ok := s.GlobalService()
	require.True(t, ok)
	assert.Equal(t, id, svc.ID())
	svc.Release()

	iface, ok := s.GlobalInterface()
	require.True(t, ok)
	assert.Equal(t, "Ethernet", iface.TypeName())
	iface.Release()

	router, ok := s.GlobalRouter()
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), router)

	services, err := s.Services()
	require.NoError(t, err)
	assert.Len(t, services, 1)
	cf.ReleaseSlice(services)

	ordered := s.ServiceOrder()
	require.Len(t, ordered, 1)
	assert.Equal(t, id, ordered[0].ID())
	cf.ReleaseSlice(ordered)

	ifaces, err := s.Interfaces()
	require.NoError(t, err)
	assert.Len(t, ifaces, 1)
	cf.ReleaseSlice(ifaces)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, rt.Stores())
	assert.Equal(t, base, rt.Live(), rt.LiveObjects())
}

func TestSessionPrimaryDNS(t *testing.T) {
	rt, id := newFixture(t)
	s, err := NewSession("scgo-test", WithRuntime(rt))
	require.NoError(t, err)
	defer s.Close()

	setting := DNSSetting{
		DomainName:      "home.arpa",
		ServerAddresses: []netip.Addr{netip.MustParseAddr("10.0.0.1")},
	}
	require.NoError(t, s.SetPrimaryDNS(setting))

	got, ok := rt.StoreValue(schema.ServiceKey(schema.DomainSetup, id, schema.EntityDNS))
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		schema.DomainName:      "home.arpa",
		schema.ServerAddresses: []any{"10.0.0.1"},
	}, got)

	dns, err := s.PrimaryDNS()
	require.NoError(t, err)
	assert.Equal(t, setting, dns.Setup)
	assert.True(t, dns.State.IsZero())
}

func TestSessionNoPrimaryService(t *testing.T) {
	rt := sctest.New()
	s, err := NewSession("scgo-test", WithRuntime(rt))
	require.NoError(t, err)

	_, err = s.PrimaryDNS()
	assert.ErrorIs(t, err, ErrNoPrimaryService)
	assert.ErrorIs(t, s.SetPrimaryDNS(DNSSetting{}), ErrNoPrimaryService)

	require.NoError(t, s.Close())
	_, err = s.PrimaryDNS()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Services()
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := s.GlobalRouter()
	assert.False(t, ok)
}

func TestSessionOpenFailure(t *testing.T) {
	rt := sctest.New()
	rt.Fail("PreferencesCreate", sc.StatusNoPrefsSession)
	_, err := NewSession("scgo-test", WithRuntime(rt))
	assert.Equal(t, sc.StatusNoPrefsSession, ErrorCode(err))
	assert.Equal(t, 0, rt.Stores(), "the store is released when preferences fail")
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())

	rt.Fail("DynamicStoreCreate", sc.StatusNoStoreServer)
	_, err = NewSession("scgo-test", WithRuntime(rt))
	var scErr *Error
	require.ErrorAs(t, err, &scErr)
	assert.Equal(t, StatusNoStoreServer, scErr.Code)
}

func TestSessionStoreOptions(t *testing.T) {
	rt, _ := newFixture(t)
	s, err := NewSession("scgo-test", WithRuntime(rt), WithStoreOptions(dynamicstore.WithSessionKeys(true)))
	require.NoError(t, err)

	require.NoError(t, s.Store().SetValue("State:/Network/Service/scgo/Temp", map[string]any{"x": 1}))
	require.NoError(t, s.Close())
	_, ok := rt.StoreValue("State:/Network/Service/scgo/Temp")
	assert.False(t, ok, "session keys go away with the session")
}

func TestSessionConcurrentClose(t *testing.T) {
	rt, _ := newFixture(t)
	s, err := NewSession("scgo-test", WithRuntime(rt))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if svc, ok := s.GlobalService(); ok {
					svc.Release()
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Close()
	}()
	wg.Wait()
	require.NoError(t, s.Close())
}
