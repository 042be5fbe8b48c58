//go:build !ios && !android && (amd64 || arm64)

package dynamicstore

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/internal/handles"
	"github.com/obinnaokechukwu/scgo/internal/logging"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/obinnaokechukwu/scgo/sctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, rt *sctest.Runtime, opts ...Option) Store {
	t.Helper()
	s, err := New("scgo-test", append([]Option{WithRuntime(rt)}, opts...)...)
	require.NoError(t, err)
	return s
}

// deliver schedules the store on the run loop and runs one turn.
func deliver(t *testing.T, rt *sctest.Runtime, s Store) cf.RunLoopResult {
	t.Helper()
	src, err := s.CreateRunLoopSource(0)
	require.NoError(t, err)
	defer src.Release()
	loop := cf.CurrentRunLoop(rt)
	defer loop.Release()
	loop.AddSource(src, cf.DefaultMode)
	defer loop.RemoveSource(src, cf.DefaultMode)
	return cf.RunInMode(rt, cf.DefaultMode, time.Second, true)
}

func TestNewAndRelease(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	assert.Equal(t, 1, rt.Stores())
	assert.True(t, s.Is(sc.ClassDynamicStore))

	s.Release()
	s.Release()
	assert.Equal(t, 0, rt.Stores())
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestNewFailure(t *testing.T) {
	rt := sctest.New()
	before := handles.Count()
	rt.Fail("DynamicStoreCreate", sc.StatusNoStoreServer)

	_, err := New("fail", WithRuntime(rt), WithCallback(CallbackContext[int]{
		Callout: func(Store, cf.Array, *int) {},
	}))
	require.Error(t, err)
	assert.True(t, sc.IsNoServer(err))
	assert.Equal(t, before, handles.Count())
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestNilCallout(t *testing.T) {
	rt := sctest.New()
	_, err := New("nil", WithRuntime(rt), WithCallback(CallbackContext[int]{}))
	assert.ErrorIs(t, err, ErrNilCallout)
}

func TestGetSet(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"string", "hello", "hello"},
		{"string array", []string{"8.8.8.8", "8.8.4.4"}, []any{"8.8.8.8", "8.8.4.4"}},
		{"dictionary", map[string]any{"DomainName": "example.com"}, map[string]any{"DomainName": "example.com"}},
		{"boolean", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "State:/Test/" + tt.name
			require.NoError(t, s.SetValue(key, tt.value))
			got, ok := s.GetValue(key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	v, ok := s.GetString("State:/Test/string")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	d, ok := s.GetDictionary("State:/Test/dictionary")
	require.True(t, ok)
	name, _ := d.GetString("DomainName")
	assert.Equal(t, "example.com", name)
	d.Release()

	_, ok = s.GetDictionary("State:/Test/string")
	assert.False(t, ok)
}

func TestSetTyped(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	arr := cf.NewStringArray(rt, []string{"a"})
	assert.True(t, s.Set("State:/Test/Array", arr))
	arr.Release()

	o, ok := s.Get("State:/Test/Array")
	require.True(t, ok)
	got, ok := cf.Downcast(o, cf.ArrayKind)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got.Strings())
	o.Release()

	assert.False(t, s.Set("State:/Test/Nil", nil))
}

func TestSetRejected(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	rt.Fail("DynamicStoreSetValue", sc.StatusAccessError)
	err := s.SetValue("Setup:/Network/Service/X/DNS", map[string]any{})
	assert.True(t, sc.IsAccessError(err))

	err = s.SetValue("State:/Bad", struct{}{})
	assert.ErrorIs(t, err, cf.ErrUnsupportedType)
}

func TestGetMissing(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	_, ok := s.Get("State:/Nope")
	assert.False(t, ok)
	_, ok = s.GetString("State:/Nope")
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	assert.False(t, s.Remove("State:/Missing"))
	require.NoError(t, s.SetValue("State:/Present", "x"))
	assert.True(t, s.Remove("State:/Present"))
	_, ok := s.Get("State:/Present")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	rt := sctest.New()
	rt.SetStoreValue("State:/Network/Service/A/DNS", map[string]any{})
	rt.SetStoreValue("State:/Network/Service/B/DNS", map[string]any{})
	rt.SetStoreValue("State:/Network/Service/B/IPv4", map[string]any{})
	s := newStore(t, rt)
	defer s.Release()

	assert.Equal(t, []string{"State:/Network/Service/A/DNS", "State:/Network/Service/B/DNS"},
		s.Keys("State:/Network/Service/[^/]+/DNS"))
	assert.Empty(t, s.Keys("Setup:/.*"))
	assert.Nil(t, s.Keys("("))
}

func TestProxies(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	d, ok := s.Proxies()
	require.True(t, ok)
	assert.Equal(t, 0, d.Len())
	d.Release()

	rt.SetStoreValue("State:/Network/Global/Proxies", map[string]any{"HTTPEnable": 1, "HTTPProxy": "proxy.local"})
	d, ok = s.Proxies()
	require.True(t, ok)
	host, _ := d.GetString("HTTPProxy")
	assert.Equal(t, "proxy.local", host)
	d.Release()
}

func TestSessionKeys(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt, WithSessionKeys(true))
	require.NoError(t, s.SetValue("State:/Session/Value", "x"))

	other := newStore(t, rt)
	defer other.Release()
	_, ok := other.GetString("State:/Session/Value")
	require.True(t, ok)

	s.Release()
	_, ok = other.GetString("State:/Session/Value")
	assert.False(t, ok)
}

type counter struct {
	calls int
	keys  [][]string
}

func TestCallbackCounts(t *testing.T) {
	rt := sctest.New()
	var seen *counter
	s := newStore(t, rt, WithCallback(CallbackContext[counter]{
		Callout: func(store Store, changed cf.Array, info *counter) {
			info.calls++
			info.keys = append(info.keys, changed.Strings())
			seen = info
		},
	}))
	defer s.Release()
	require.NoError(t, s.SetNotificationKeys([]string{"State:/Network/Global/DNS"}, nil))

	rt.SetStoreValue("State:/Network/Global/DNS", map[string]any{"ServerAddresses": []string{"1.1.1.1"}})
	assert.Equal(t, cf.RunLoopHandledSource, deliver(t, rt, s))
	rt.SetStoreValue("State:/Network/Global/DNS", map[string]any{"ServerAddresses": []string{"9.9.9.9"}})
	assert.Equal(t, cf.RunLoopHandledSource, deliver(t, rt, s))

	require.NotNil(t, seen)
	assert.Equal(t, 2, seen.calls)
	assert.Equal(t, [][]string{{"State:/Network/Global/DNS"}, {"State:/Network/Global/DNS"}}, seen.keys)
}

func TestCallbackEmptyKeys(t *testing.T) {
	rt := sctest.New()
	calls := 0
	s := newStore(t, rt, WithCallback(CallbackContext[*int]{
		Callout: func(_ Store, changed cf.Array, info **int) {
			**info++
			assert.Equal(t, 0, changed.Len())
		},
		Info: &calls,
	}))
	defer s.Release()

	rt.NotifyStore(s.Ref())
	deliver(t, rt, s)
	assert.Equal(t, 1, calls)
}

func TestCallbackStoreView(t *testing.T) {
	rt := sctest.New()
	var got string
	s := newStore(t, rt, WithCallback(CallbackContext[struct{}]{
		Callout: func(store Store, changed cf.Array, _ *struct{}) {
			for _, key := range changed.Strings() {
				got, _ = store.GetString(key)
			}
			store.Release()
		},
	}))
	defer s.Release()
	require.NoError(t, s.SetNotificationKeys(nil, []string{"State:/Watch/.*"}))

	rt.SetStoreValue("State:/Watch/A", "value")
	deliver(t, rt, s)
	assert.Equal(t, "value", got)
	assert.False(t, s.Released(), "releasing a view must not release the session")
}

func TestCallbackPanicIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer logging.SetLogger(nil)

	rt := sctest.New()
	s := newStore(t, rt, WithCallback(CallbackContext[int]{
		Callout: func(Store, cf.Array, *int) { panic("boom") },
	}))
	defer s.Release()

	rt.NotifyStore(s.Ref(), "State:/X")
	assert.NotPanics(t, func() { deliver(t, rt, s) })
	assert.Contains(t, buf.String(), "dynamic store callout panicked")
	assert.Contains(t, buf.String(), "boom")
}

func TestReleaseHookFiresOnce(t *testing.T) {
	rt := sctest.New()
	before := handles.Count()

	s := newStore(t, rt, WithCallback(CallbackContext[int]{
		Callout: func(Store, cf.Array, *int) {},
	}))
	assert.Equal(t, before+1, handles.Count())

	src, err := s.CreateRunLoopSource(0)
	require.NoError(t, err)
	s.Release()
	assert.Equal(t, before+1, handles.Count(), "source keeps the session alive")

	src.Release()
	assert.Equal(t, before, handles.Count())
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestWatch(t *testing.T) {
	rt := sctest.New()
	got := make(chan []string, 4)
	s := newStore(t, rt, WithCallback(CallbackContext[chan []string]{
		Callout: func(_ Store, changed cf.Array, info *chan []string) {
			*info <- changed.Strings()
		},
		Info: got,
	}))
	require.NoError(t, s.SetNotificationKeys(nil, []string{"State:/Network/Service/.*/DNS"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	require.Eventually(t, func() bool { return rt.Scheduled() == 1 }, time.Second, time.Millisecond)
	rt.SetStoreValue("State:/Network/Service/A/DNS", map[string]any{"DomainName": "a"})

	select {
	case keys := <-got:
		assert.Equal(t, []string{"State:/Network/Service/A/DNS"}, keys)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}

	s.Release()
	assert.Equal(t, 0, rt.Scheduled())
	rt.RemoveStoreValue("State:/Network/Service/A/DNS")
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestDowncastStore(t *testing.T) {
	rt := sctest.New()
	s := newStore(t, rt)
	defer s.Release()

	got, ok := cf.Downcast(s.Object, Kind)
	require.True(t, ok)
	assert.True(t, got.Equal(s))
	assert.NotNil(t, got.Runtime())

	str := cf.NewString(rt, "not a store")
	defer str.Release()
	_, ok = cf.Downcast(str.Object, Kind)
	assert.False(t, ok)
}

// collectingRuntime runs the garbage collector, and gives cleanups time to
// run, in the middle of every value read.
type collectingRuntime struct{ *sctest.Runtime }

func (r collectingRuntime) DynamicStoreCopyValue(store, key cf.Ref) cf.Ref {
	runtime.GC()
	time.Sleep(5 * time.Millisecond)
	return r.Runtime.DynamicStoreCopyValue(store, key)
}

func TestStoreAliveDuringLastCall(t *testing.T) {
	rt := collectingRuntime{sctest.New()}
	rt.SetStoreValue("State:/Network/Global/IPv4", map[string]any{"Router": "10.0.0.1"})

	for i := 0; i < 3; i++ {
		s, err := New("scgo-test", WithRuntime(rt))
		require.NoError(t, err)
		// The Get is the handle's last use; the cleanup must not run before
		// the runtime call returns.
		v, ok := s.GetValue("State:/Network/Global/IPv4")
		require.True(t, ok)
		assert.Equal(t, map[string]any{"Router": "10.0.0.1"}, v)
	}

	// Unreleased sessions are still given back once unreachable.
	require.Eventually(t, func() bool {
		runtime.GC()
		return rt.Stores() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
