//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"fmt"
	"testing"
	"time"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetainRelease(t *testing.T) {
	rt := New()
	s := rt.CreateString("hello")
	require.Equal(t, 1, rt.RetainCount(s))

	rt.Retain(s)
	assert.Equal(t, 2, rt.RetainCount(s))

	rt.Release(s)
	rt.Release(s)
	assert.True(t, rt.IsFreed(s))
	assert.Equal(t, 0, rt.Live())
}

func TestUseAfterFreePanics(t *testing.T) {
	rt := New()
	s := rt.CreateString("gone")
	rt.Release(s)

	assert.PanicsWithValue(t, fmt.Sprintf("sctest: use after free of CFString %#x", uintptr(s)), func() {
		rt.StringValue(s)
	})
	assert.Panics(t, func() { rt.Retain(s) })
}

func TestOverReleasePanics(t *testing.T) {
	rt := New()
	s := rt.CreateString("x")
	rt.Release(s)
	assert.Panics(t, func() { rt.Release(s) })
}

func TestImmortalConstants(t *testing.T) {
	rt := New()
	b := rt.Boolean(true)
	for i := 0; i < 5; i++ {
		rt.Release(b)
	}
	assert.True(t, rt.BooleanValue(b))
	assert.NotZero(t, rt.Constant("kSCPropNetDNSServerAddresses"))
	assert.Equal(t, "ServerAddresses", rt.StringValue(rt.Constant("kSCPropNetDNSServerAddresses")))
	assert.Zero(t, rt.Constant("kNoSuchConstant"))
}

func TestContainersRetainElements(t *testing.T) {
	rt := New()
	a := rt.CreateString("a")
	arr := rt.CreateArray([]cf.Ref{a})
	assert.Equal(t, 2, rt.RetainCount(a))

	rt.Release(a)
	assert.False(t, rt.IsFreed(a))
	assert.Equal(t, "a", rt.StringValue(rt.ArrayValueAt(arr, 0)))

	rt.Release(arr)
	assert.True(t, rt.IsFreed(a))
	assert.Equal(t, 0, rt.Live())
}

func TestDictionary(t *testing.T) {
	rt := New()
	k := rt.CreateString("key")
	v := rt.CreateInt(42)
	d := rt.CreateDictionary([]cf.Ref{k}, []cf.Ref{v})
	rt.Release(k)
	rt.Release(v)

	q := rt.CreateString("key")
	defer rt.Release(q)
	got := rt.DictionaryValue(d, q)
	require.NotZero(t, got)
	i, _, isFloat := rt.NumberValue(got)
	assert.Equal(t, int64(42), i)
	assert.False(t, isFloat)

	rt.Release(d)
	assert.Equal(t, 1, rt.Live())
}

func TestEqual(t *testing.T) {
	rt := New()
	a := rt.valueForTest(map[string]any{"x": []string{"1", "2"}})
	b := rt.valueForTest(map[string]any{"x": []string{"1", "2"}})
	c := rt.valueForTest(map[string]any{"x": []string{"1"}})
	assert.True(t, rt.Equal(a, b))
	assert.False(t, rt.Equal(a, c))
}

func (r *Runtime) valueForTest(v any) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked(v)
}

func TestStoreKeyList(t *testing.T) {
	rt := New()
	rt.SetStoreValue("State:/Network/Service/A/DNS", map[string]any{"DomainName": "a"})
	rt.SetStoreValue("Setup:/Network/Service/A/DNS", map[string]any{"DomainName": "b"})
	rt.SetStoreValue("State:/Network/Global/IPv4", map[string]any{})

	name := rt.CreateString("test")
	store := rt.DynamicStoreCreate(name, 0, nil, nil)
	pattern := rt.CreateString("State:/Network/Service/.*")
	keys := rt.DynamicStoreCopyKeyList(store, pattern)

	rt.mu.Lock()
	got := rt.stringsLocked(keys)
	rt.mu.Unlock()
	assert.Equal(t, []string{"State:/Network/Service/A/DNS"}, got)

	for _, ref := range []cf.Ref{keys, pattern, store, name} {
		rt.Release(ref)
	}
}

func TestNotificationsAreCoalesced(t *testing.T) {
	rt := New()
	var batches [][]string
	callout := func(store, changed cf.Ref, info uintptr) {
		rt.mu.Lock()
		batches = append(batches, rt.stringsLocked(changed))
		rt.mu.Unlock()
	}

	name := rt.CreateString("watch")
	store := rt.DynamicStoreCreate(name, 0, callout, &sc.Context{})
	patterns := rt.valueForTest([]string{"State:/Network/Service/.*/DNS"})
	require.True(t, rt.DynamicStoreSetNotificationKeys(store, 0, patterns))
	src := rt.DynamicStoreCreateRunLoopSource(store, 0)
	loop := rt.CurrentRunLoop()
	rt.RunLoopAddSource(loop, src, cf.DefaultMode)

	rt.SetStoreValue("State:/Network/Service/A/DNS", map[string]any{"DomainName": "a"})
	rt.SetStoreValue("State:/Network/Service/B/DNS", map[string]any{"DomainName": "b"})
	rt.SetStoreValue("State:/Network/Service/A/DNS", map[string]any{"DomainName": "c"})
	rt.SetStoreValue("State:/Network/Global/IPv4", map[string]any{})

	res := rt.RunLoopRunInMode(cf.DefaultMode, 1, true)
	assert.Equal(t, cf.RunLoopHandledSource, res)
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"State:/Network/Service/A/DNS", "State:/Network/Service/B/DNS"}, batches[0])

	assert.Equal(t, cf.RunLoopTimedOut, rt.RunLoopRunInMode(cf.DefaultMode, 0, true))

	rt.RunLoopRemoveSource(loop, src, cf.DefaultMode)
	for _, ref := range []cf.Ref{src, patterns, store, name} {
		rt.Release(ref)
	}
	assert.Equal(t, 0, rt.Stores())
}

func TestRunLoopFinishesWithoutSources(t *testing.T) {
	rt := New()
	assert.Equal(t, cf.RunLoopFinished, rt.RunLoopRunInMode(cf.DefaultMode, 5, false))
}

func TestRunLoopStop(t *testing.T) {
	rt := New()
	name := rt.CreateString("stop")
	store := rt.DynamicStoreCreate(name, 0, func(cf.Ref, cf.Ref, uintptr) {}, nil)
	src := rt.DynamicStoreCreateRunLoopSource(store, 0)
	loop := rt.CurrentRunLoop()
	rt.RunLoopAddSource(loop, src, cf.CommonModes)

	done := make(chan cf.RunLoopResult)
	go func() { done <- rt.RunLoopRunInMode(cf.DefaultMode, 30, false) }()

	require.Eventually(t, func() bool {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		return rt.loop.running > 0
	}, time.Second, time.Millisecond)
	rt.RunLoopStop(loop)

	select {
	case res := <-done:
		assert.Equal(t, cf.RunLoopStopped, res)
	case <-time.After(5 * time.Second):
		t.Fatal("run loop did not stop")
	}

	rt.RunLoopRemoveSource(loop, src, cf.CommonModes)
	rt.Release(src)
	rt.Release(store)
	rt.Release(name)
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestSessionKeysRemovedWithStore(t *testing.T) {
	rt := New()
	name := rt.CreateString("session")
	opts := rt.valueForTest(map[string]any{"UseSessionKeys": true})
	store := rt.DynamicStoreCreate(name, opts, nil, nil)
	key := rt.CreateString("State:/Network/Test")
	val := rt.CreateString("v")
	require.True(t, rt.DynamicStoreSetValue(store, key, val))

	_, ok := rt.StoreValue("State:/Network/Test")
	require.True(t, ok)

	rt.Release(store)
	_, ok = rt.StoreValue("State:/Network/Test")
	assert.False(t, ok)

	for _, ref := range []cf.Ref{val, key, opts, name} {
		rt.Release(ref)
	}
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestFailInjection(t *testing.T) {
	rt := New()
	released := 0
	rt.Fail("DynamicStoreCreate", sc.StatusNoStoreServer)

	name := rt.CreateString("fail")
	defer rt.Release(name)
	ref := rt.DynamicStoreCreate(name, 0, func(cf.Ref, cf.Ref, uintptr) {}, &sc.Context{
		Info:    7,
		Release: func(info uintptr) { released += int(info) },
	})
	assert.Zero(t, ref)
	assert.Equal(t, sc.StatusNoStoreServer, rt.LastError())
	assert.Equal(t, 7, released)

	store := rt.DynamicStoreCreate(name, 0, nil, nil)
	assert.NotZero(t, store)
	rt.Release(store)
}

func TestPreferencesStaleCommit(t *testing.T) {
	rt := New()
	name := rt.CreateString("prefs")
	defer rt.Release(name)

	p := rt.PreferencesCreate(name, 0)
	defer rt.Release(p)

	rt.SetPreference("System", map[string]any{"ComputerName": "other"})

	key := rt.CreateString("System")
	defer rt.Release(key)
	val := rt.valueForTest(map[string]any{"ComputerName": "mine"})
	defer rt.Release(val)

	require.True(t, rt.PreferencesSetValue(p, key, val))
	assert.False(t, rt.PreferencesCommitChanges(p))
	assert.Equal(t, sc.StatusStale, rt.LastError())
}

func TestPreferencesLock(t *testing.T) {
	rt := New()
	name := rt.CreateString("prefs")
	defer rt.Release(name)
	a := rt.PreferencesCreate(name, 0)
	b := rt.PreferencesCreate(name, 0)

	require.True(t, rt.PreferencesLock(a, false))
	assert.False(t, rt.PreferencesLock(a, false))
	assert.Equal(t, sc.StatusLocked, rt.LastError())
	assert.False(t, rt.PreferencesLock(b, false))
	assert.Equal(t, sc.StatusPrefsBusy, rt.LastError())
	assert.False(t, rt.PreferencesUnlock(b))

	rt.Release(a)
	assert.True(t, rt.PreferencesLock(b, false))
	assert.True(t, rt.PreferencesUnlock(b))
	rt.Release(b)
}

func TestParseSockaddr(t *testing.T) {
	in4 := []byte{16, afInet, 0x01, 0xbb, 10, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	ap, ok := parseSockaddr(in4)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1:443", ap.String())

	_, ok = parseSockaddr([]byte{16, 99})
	assert.False(t, ok)
}
