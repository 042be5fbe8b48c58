//go:build !ios && !android && (amd64 || arm64)

package cf_test

import (
	"math"
	"net/netip"
	"testing"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray(t *testing.T) {
	rt := sctest.New()
	arr := cf.NewStringArray(rt, []string{"8.8.8.8", "8.8.4.4"})
	defer arr.Release()

	assert.Equal(t, 2, arr.Len())
	assert.Equal(t, []string{"8.8.8.8", "8.8.4.4"}, arr.Strings())

	first, ok := arr.At(0)
	require.True(t, ok)
	s, ok := cf.Downcast(first, cf.StringKind)
	require.True(t, ok)
	assert.Equal(t, "8.8.8.8", s.Value())
	first.Release()

	_, ok = arr.At(2)
	assert.False(t, ok)
}

func TestDictionary(t *testing.T) {
	rt := sctest.New()
	name := cf.NewString(rt, "example.com")
	servers := cf.NewStringArray(rt, []string{"1.1.1.1"})
	mtu := cf.NewInt(rt, 1500)
	d := cf.NewDictionary(rt, map[string]cf.Handle{
		"DomainName":      name,
		"ServerAddresses": servers,
		"MTU":             mtu,
	})
	cf.ReleaseAll(name, servers, mtu)
	defer d.Release()

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []string{"DomainName", "MTU", "ServerAddresses"}, d.Keys())

	v, ok := d.GetString("DomainName")
	assert.True(t, ok)
	assert.Equal(t, "example.com", v)

	list, ok := d.GetStrings("ServerAddresses")
	assert.True(t, ok)
	assert.Equal(t, []string{"1.1.1.1"}, list)

	n, ok := d.GetInt("MTU")
	assert.True(t, ok)
	assert.Equal(t, int64(1500), n)

	_, ok = d.GetString("MTU")
	assert.False(t, ok, "wrong type is absent")
	_, ok = d.GetString("Missing")
	assert.False(t, ok)
}

func TestMarshalRoundTrip(t *testing.T) {
	rt := sctest.New()
	in := map[string]any{
		"DomainName":      "corp.example",
		"ServerAddresses": []string{"10.0.0.53"},
		"Enabled":         true,
		"Port":            uint16(53),
		"Weight":          0.5,
		"Raw":             []byte{0xde, 0xad},
		"Router":          netip.MustParseAddr("192.168.1.1"),
		"Nested":          map[string]string{"a": "b"},
		"Mixed":           []any{"x", int32(2)},
	}

	o, err := cf.Marshal(rt, in)
	require.NoError(t, err)
	got, err := cf.Unmarshal(o)
	require.NoError(t, err)
	o.Release()

	assert.Equal(t, map[string]any{
		"DomainName":      "corp.example",
		"ServerAddresses": []any{"10.0.0.53"},
		"Enabled":         true,
		"Port":            int64(53),
		"Weight":          0.5,
		"Raw":             []byte{0xde, 0xad},
		"Router":          "192.168.1.1",
		"Nested":          map[string]any{"a": "b"},
		"Mixed":           []any{"x", int64(2)},
	}, got)
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestMarshalUnsupported(t *testing.T) {
	rt := sctest.New()
	for _, v := range []any{nil, struct{}{}, make(chan int), map[int]string{1: "x"}, []any{"ok", struct{}{}}, netip.Addr{},
		uint64(math.MaxUint64), uint(math.MaxInt64) + 1,
		[]netip.Addr{netip.MustParseAddr("1.1.1.1"), {}},
	} {
		_, err := cf.Marshal(rt, v)
		assert.ErrorIs(t, err, cf.ErrUnsupportedType, "%T", v)
	}
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestMarshalUnsignedRange(t *testing.T) {
	rt := sctest.New()
	o, err := cf.Marshal(rt, uint64(math.MaxInt64))
	require.NoError(t, err)
	v, err := cf.Unmarshal(o)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)
	o.Release()
	assert.Equal(t, 0, rt.Live(), rt.LiveObjects())
}

func TestMarshalHandleClones(t *testing.T) {
	rt := sctest.New()
	s := cf.NewString(rt, "x")
	o, err := cf.Marshal(rt, s)
	require.NoError(t, err)
	assert.True(t, o.Equal(s))
	assert.Equal(t, 2, rt.RetainCount(s.Ref()))
	cf.ReleaseAll(o, s)

	_, err = cf.Marshal(rt, s)
	assert.ErrorIs(t, err, cf.ErrReleased)
}

func TestUnmarshalUnsupported(t *testing.T) {
	rt := sctest.New()
	_, err := cf.Unmarshal(cf.CurrentRunLoop(rt))
	assert.ErrorIs(t, err, cf.ErrUnsupportedType)
	_, err = cf.Unmarshal(nil)
	assert.ErrorIs(t, err, cf.ErrUnsupportedType)
}
