//go:build !ios && !android && (amd64 || arm64)

package preferences

import (
	"errors"
	"testing"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/obinnaokechukwu/scgo/schema"
	"github.com/obinnaokechukwu/scgo/sctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, rt *sctest.Runtime) Preferences {
	t.Helper()
	p, err := New("scgo-test", WithRuntime(rt))
	require.NoError(t, err)
	return p
}

func TestNewFailure(t *testing.T) {
	rt := sctest.New()
	rt.Fail("PreferencesCreate", sc.StatusNoPrefsSession)
	_, err := New("fail", WithRuntime(rt))
	assert.Equal(t, sc.StatusNoPrefsSession, sc.Code(err))
	assert.Equal(t, 0, rt.Live())
}

func TestKeysAndGet(t *testing.T) {
	rt := sctest.New()
	rt.SetPreference(schema.PrefSystem, map[string]any{"System": map[string]any{schema.ComputerName: "mac"}})
	base := rt.Live()

	p := open(t, rt)
	assert.Equal(t, []string{schema.PrefSystem}, p.Keys())

	o, ok := p.Get(schema.PrefSystem)
	require.True(t, ok)
	d, ok := cf.Downcast(o, cf.DictionaryKind)
	require.True(t, ok)
	sys, ok := d.GetDictionary("System")
	require.True(t, ok)
	name, _ := sys.GetString(schema.ComputerName)
	assert.Equal(t, "mac", name)
	cf.ReleaseAll(sys, d)

	_, ok = p.Get("Missing")
	assert.False(t, ok)

	p.Release()
	assert.Equal(t, base, rt.Live(), rt.LiveObjects())
}

func TestPathGet(t *testing.T) {
	rt := sctest.New()
	rt.AddSet(sctest.Set{ID: "SET-1", Name: "Automatic"})
	rt.AddSet(sctest.Set{ID: "SET-2", Name: "Office"})
	p := open(t, rt)
	defer p.Release()

	sets, ok := p.PathGetDictionary(schema.PrefPath(schema.PrefSets))
	require.True(t, ok)
	ids := sets.Keys()
	sets.Release()
	assert.Equal(t, []string{"SET-1", "SET-2"}, ids)

	names := map[string]string{}
	for _, id := range ids {
		set, ok := p.PathGetDictionary(schema.PrefPath(schema.PrefSets, id))
		require.True(t, ok)
		names[id], _ = set.GetString(schema.UserDefinedName)
		set.Release()
	}
	assert.Equal(t, map[string]string{"SET-1": "Automatic", "SET-2": "Office"}, names)

	_, ok = p.PathGet("/Sets/None")
	assert.False(t, ok)
}

func TestSetCommitApply(t *testing.T) {
	rt := sctest.New()
	p := open(t, rt)
	defer p.Release()

	err := p.Update(func(p Preferences) error {
		return p.SetValue(schema.PrefSystem, map[string]any{"HostName": "box"})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Applied())

	got, ok := rt.Preference(schema.PrefSystem)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"HostName": "box"}, got)

	assert.True(t, p.Remove(schema.PrefSystem))
	assert.False(t, p.Remove(schema.PrefSystem))
}

func TestUpdateReleasesLock(t *testing.T) {
	rt := sctest.New()
	p := open(t, rt)
	defer p.Release()

	boom := errors.New("boom")
	assert.ErrorIs(t, p.Update(func(Preferences) error { return boom }), boom)
	require.NoError(t, p.Lock(false))
	require.NoError(t, p.Unlock())
	assert.Equal(t, 0, rt.Applied())
}

func TestStaleCommit(t *testing.T) {
	rt := sctest.New()
	p := open(t, rt)
	defer p.Release()

	require.NoError(t, p.SetValue("Key", "mine"))
	rt.SetPreference("Key", "theirs")
	err := p.Commit()
	assert.True(t, sc.IsStale(err))

	var scErr *sc.Error
	require.ErrorAs(t, err, &scErr)
	assert.Equal(t, "SCPreferencesCommitChanges", scErr.Op)
}

func TestApplyPublishesSetup(t *testing.T) {
	rt := sctest.New()
	id := rt.AddService(sctest.Service{
		Name:      "Wi-Fi",
		Protocols: []sctest.Protocol{{Type: schema.ProtocolTypeDNS, Enabled: true, Config: map[string]any{schema.ServerAddresses: []string{"1.1.1.1"}}}},
	})
	p := open(t, rt)
	defer p.Release()

	require.NoError(t, p.Apply())
	v, ok := rt.StoreValue(schema.ServiceKey(schema.DomainSetup, id, schema.EntityDNS))
	require.True(t, ok)
	assert.Equal(t, map[string]any{schema.ServerAddresses: []any{"1.1.1.1"}}, v)
}

func TestDowncast(t *testing.T) {
	rt := sctest.New()
	p := open(t, rt)
	defer p.Release()
	got, ok := cf.Downcast(p.Object, Kind)
	require.True(t, ok)
	assert.NotNil(t, got.Runtime())
}
