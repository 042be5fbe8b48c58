//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"bytes"
	"io"
	"runtime"
	"testing"

	"github.com/obinnaokechukwu/scgo/reachability"
	"github.com/obinnaokechukwu/scgo/schema"
	"github.com/obinnaokechukwu/scgo/sctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rt     *sctest.Runtime
	wifiID string
	ethID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt := sctest.New()
	rt.AddInterface(sctest.Interface{BSDName: "en0", Type: schema.InterfaceTypeIEEE80211, DisplayName: "Wi-Fi", HardwareAddress: "a4:83:e7:11:22:33"})
	rt.AddInterface(sctest.Interface{BSDName: "en7", Type: schema.InterfaceTypeEthernet, DisplayName: "USB LAN", MTU: &sctest.MTU{Current: 1500, Min: 1280, Max: 9000}})
	f := &fixture{rt: rt}
	f.wifiID = rt.AddService(sctest.Service{Name: "Wi-Fi", Enabled: true, Interface: "en0"})
	f.ethID = rt.AddService(sctest.Service{Name: "USB LAN", Enabled: false, Interface: "en7"})
	rt.AddSet(sctest.Set{Name: "Home", Services: []string{f.wifiID, f.ethID}})
	rt.SetStoreValue(schema.GlobalKey(schema.DomainState, schema.EntityIPv4), map[string]any{
		schema.PrimaryService:   f.wifiID,
		schema.PrimaryInterface: "en0",
		schema.Router:           "192.168.1.1",
	})
	return f
}

// exec runs the CLI against the fixture runtime.
func (f *fixture) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&app{rt: f.rt})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	assert.Equal(t, 0, f.rt.Stores(), "every command closes its session")
	return out.String(), err
}

// run is exec for commands that write nothing, so every object they
// created must be gone afterwards.
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base := f.rt.Live()
	out, err := f.exec(t, args...)
	assert.Equal(t, base, f.rt.Live(), f.rt.LiveObjects())
	return out, err
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(&app{})
	for _, name := range []string{"dns", "set-dns", "services", "interfaces", "sets", "get", "watch", "reach", "info"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestDNS(t *testing.T) {
	f := newFixture(t)
	f.rt.SetStoreValue(schema.ServiceKey(schema.DomainState, f.wifiID, schema.EntityDNS), map[string]any{
		schema.DomainName:      "lan",
		schema.ServerAddresses: []string{"192.168.1.1"},
	})

	out, err := f.run(t, "dns")
	require.NoError(t, err)
	assert.Contains(t, out, "Wi-Fi")
	assert.Contains(t, out, "lan")
	assert.Contains(t, out, "192.168.1.1")
	assert.Contains(t, out, "none", "no setup block")

	out, err = f.run(t, "dns", f.ethID)
	require.NoError(t, err)
	assert.Contains(t, out, "USB LAN")

	_, err = f.run(t, "dns", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid service id")
}

func TestDNSNoPrimary(t *testing.T) {
	f := &fixture{rt: sctest.New()}
	_, err := f.run(t, "dns")
	assert.ErrorContains(t, err, "no primary service")
}

func TestSetDNS(t *testing.T) {
	f := newFixture(t)
	key := schema.ServiceKey(schema.DomainSetup, f.wifiID, schema.EntityDNS)

	out, err := f.exec(t, "set-dns", "--domain", "home.arpa", "--server", "1.1.1.1", "--server", "2606:4700::1111")
	require.NoError(t, err)
	assert.Contains(t, out, "updated")
	got, ok := f.rt.StoreValue(key)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		schema.DomainName:      "home.arpa",
		schema.ServerAddresses: []any{"1.1.1.1", "2606:4700::1111"},
	}, got)

	_, err = f.exec(t, "set-dns", "--service", f.wifiID, "--domain", "")
	require.NoError(t, err)
	got, _ = f.rt.StoreValue(key)
	assert.Equal(t, map[string]any{schema.ServerAddresses: []any{"1.1.1.1", "2606:4700::1111"}}, got)

	_, err = f.exec(t, "set-dns", "--clear")
	require.NoError(t, err)
	_, ok = f.rt.StoreValue(key)
	assert.False(t, ok)
}

func TestSetDNSErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec(t, "set-dns")
	assert.ErrorContains(t, err, "nothing to set")

	_, err = f.exec(t, "set-dns", "--server", "dns.google")
	assert.ErrorContains(t, err, "invalid server address")

	_, err = f.exec(t, "set-dns", "--clear", "--domain", "x")
	assert.Error(t, err)

	f.rt.Fail("DynamicStoreSetValue", 1003)
	_, err = f.exec(t, "set-dns", "--domain", "home.arpa")
	assert.ErrorContains(t, err, "run as root")
}

func TestServices(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "services")
	require.NoError(t, err)
	assert.Contains(t, out, f.wifiID)
	assert.Contains(t, out, f.ethID)
	assert.Contains(t, out, "en7")
	assert.Contains(t, out, "IEEE80211")
	assert.Less(t, bytes.Index([]byte(out), []byte(f.wifiID)), bytes.Index([]byte(out), []byte(f.ethID)))

	out, err = f.run(t, "services", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "USB LAN")
}

func TestInterfaces(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "interfaces")
	require.NoError(t, err)
	assert.Contains(t, out, "en0")
	assert.Contains(t, out, "a4:83:e7:11:22:33")
	assert.Contains(t, out, "1500 [1280, 9000]")
}

func TestSets(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "sets")
	require.NoError(t, err)
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "Wi-Fi, USB LAN")
}

func TestGet(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "get", "State:/Network/Global/IPv4")
	require.NoError(t, err)
	assert.Contains(t, out, "PrimaryService: "+f.wifiID)
	assert.Contains(t, out, "Router: 192.168.1.1")

	out, err = f.run(t, "get", "--list", "State:/Network/Global/.*")
	require.NoError(t, err)
	assert.Equal(t, "State:/Network/Global/IPv4\n", out)

	_, err = f.run(t, "get", "State:/Network/Global/IPv6")
	assert.ErrorContains(t, err, "no value")

	_, err = f.run(t, "get", "-o", "json", "State:/Network/Global/IPv4")
	assert.ErrorContains(t, err, "unsupported output")

	out, err = f.run(t, "get", "--prefs", "-o", "text", "/Sets")
	require.NoError(t, err)
	assert.Contains(t, out, "Home")
}

func TestReach(t *testing.T) {
	f := newFixture(t)
	f.rt.SetReachability("example.com", uint32(reachability.Reachable|reachability.IsDirect))
	f.rt.SetReachability("10.0.0.9", uint32(reachability.Reachable|reachability.ConnectionRequired))

	out, err := f.run(t, "reach", "example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "reachable")
	assert.Contains(t, out, "Reachable|IsDirect")

	out, err = f.run(t, "reach", "10.0.0.9:443")
	require.NoError(t, err)
	assert.Contains(t, out, "unreachable")

	out, err = f.run(t, "reach", "--watch", "--timeout", "20ms", "10.0.0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "ConnectionRequired")
}

func TestInfo(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, out, "CoreFoundation")
	assert.Contains(t, out, "SystemConfiguration")
}

func TestWatchTimeout(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "watch", "--timeout", "20ms", "--values")
	require.NoError(t, err)
	assert.Equal(t, 0, f.rt.Scheduled())
}
