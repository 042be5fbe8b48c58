//go:build !ios && !android && (amd64 || arm64)

// Package sctest provides an in-memory sc.Runtime for tests.
//
// Every object it hands out is tracked with its own retain count. Using a
// reference after its count reached zero, or releasing it once too often,
// panics with a message naming the reference, so ownership mistakes fail
// loudly instead of corrupting memory the way they would against the real
// frameworks. A simulated configuration daemon, a run loop and network
// fixtures back the SystemConfiguration half of the contract.
//
// The fake has a single run loop shared by every goroutine.
package sctest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

var typeIDs = map[cf.Class]cf.TypeID{
	cf.ClassString:           7,
	cf.ClassNumber:           22,
	cf.ClassBoolean:          21,
	cf.ClassData:             20,
	cf.ClassArray:            19,
	cf.ClassDictionary:       18,
	cf.ClassRunLoop:          43,
	cf.ClassRunLoopSource:    46,
	sc.ClassDynamicStore:     300,
	sc.ClassPreferences:      301,
	sc.ClassNetworkService:   302,
	sc.ClassNetworkInterface: 303,
	sc.ClassNetworkProtocol:  304,
	sc.ClassNetworkSet:       305,
	sc.ClassReachability:     306,
}

// object is one tracked reference.
type object struct {
	class    cf.Class
	count    int
	freed    bool
	immortal bool

	str     string
	i       int64
	f       float64
	isFloat bool
	b       bool
	data    []byte
	items   []cf.Ref // array elements or dictionary keys
	values  []cf.Ref // dictionary values

	// children holds get-rule results owned by this object.
	children map[string]cf.Ref
	state    any
}

type deallocator interface {
	dealloc(r *Runtime, self cf.Ref)
}

// Runtime is an in-memory sc.Runtime. The zero value is not usable; use New.
type Runtime struct {
	mu      sync.Mutex
	objects map[cf.Ref]*object
	next    cf.Ref
	post    []func()

	retains  int
	releases int
	lastErr  int32
	failures map[string]int32

	constants map[string]cf.Ref
	trueRef   cf.Ref
	falseRef  cf.Ref

	daemon  daemon
	loop    *loopState
	loopRef cf.Ref

	prefs    prefsTree
	lockedBy cf.Ref
	applied  int

	network networkFixtures
	reach   map[string]uint32
}

var _ sc.Runtime = (*Runtime)(nil)

// New returns an empty runtime.
func New() *Runtime {
	r := &Runtime{
		objects:   make(map[cf.Ref]*object),
		next:      0x1000,
		failures:  make(map[string]int32),
		constants: make(map[string]cf.Ref),
		reach:     make(map[string]uint32),
	}
	r.daemon.init()
	r.prefs.init()

	r.trueRef = r.allocLocked(&object{class: cf.ClassBoolean, b: true, immortal: true})
	r.falseRef = r.allocLocked(&object{class: cf.ClassBoolean, immortal: true})
	r.loop = newLoopState()
	r.loopRef = r.allocLocked(&object{class: cf.ClassRunLoop, immortal: true, state: r.loop})
	return r
}

func (r *Runtime) allocLocked(o *object) cf.Ref {
	if !o.immortal {
		o.count = 1
	}
	r.next += 0x10
	r.objects[r.next] = o
	return r.next
}

func (r *Runtime) getLocked(ref cf.Ref) *object {
	if ref == 0 {
		panic("sctest: NULL reference passed to the runtime")
	}
	o, ok := r.objects[ref]
	if !ok {
		panic(fmt.Sprintf("sctest: unknown reference %#x", uintptr(ref)))
	}
	if o.freed {
		panic(fmt.Sprintf("sctest: use after free of %s %#x", o.class, uintptr(ref)))
	}
	return o
}

func (r *Runtime) retainLocked(ref cf.Ref) cf.Ref {
	o := r.getLocked(ref)
	r.retains++
	if !o.immortal {
		o.count++
	}
	return ref
}

func (r *Runtime) releaseLocked(ref cf.Ref) {
	o, ok := r.objects[ref]
	if !ok {
		panic(fmt.Sprintf("sctest: release of unknown reference %#x", uintptr(ref)))
	}
	if o.freed {
		panic(fmt.Sprintf("sctest: over-release of %s %#x", o.class, uintptr(ref)))
	}
	r.releases++
	if o.immortal {
		return
	}
	o.count--
	if o.count > 0 {
		return
	}
	o.freed = true
	if d, ok := o.state.(deallocator); ok {
		d.dealloc(r, ref)
	}
	for _, c := range o.items {
		r.releaseLocked(c)
	}
	for _, c := range o.values {
		r.releaseLocked(c)
	}
	for _, c := range o.children {
		r.releaseLocked(c)
	}
	o.items, o.values, o.children = nil, nil, nil
}

// unlock releases the mutex and runs work queued while it was held, such
// as user release hooks, which may call back into the runtime.
func (r *Runtime) unlock() {
	post := r.post
	r.post = nil
	r.mu.Unlock()
	for _, fn := range post {
		fn()
	}
}

// childLocked returns the get-rule result called name, creating it with
// create on first use. The parent owns it until the parent is freed.
func (r *Runtime) childLocked(parent cf.Ref, name string, create func() cf.Ref) cf.Ref {
	p := r.getLocked(parent)
	if ref, ok := p.children[name]; ok {
		return ref
	}
	ref := create()
	if ref == 0 {
		return 0
	}
	if p.children == nil {
		p.children = make(map[string]cf.Ref)
	}
	p.children[name] = ref
	return ref
}

// Fail makes the next call of op fail with code. op is the sc.Runtime method
// name, such as "DynamicStoreSetValue".
func (r *Runtime) Fail(op string, code int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = code
}

func (r *Runtime) failLocked(op string) bool {
	code, ok := r.failures[op]
	if !ok {
		return false
	}
	delete(r.failures, op)
	r.lastErr = code
	return true
}

// Retains returns the number of Retain calls, including those made by
// containers retaining their elements.
func (r *Runtime) Retains() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retains
}

// Releases returns the number of Release calls.
func (r *Runtime) Releases() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releases
}

// Live returns the number of mortal objects that have not been freed.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.objects {
		if !o.immortal && !o.freed {
			n++
		}
	}
	return n
}

// LiveObjects describes every mortal object that has not been freed, for
// leak reports.
func (r *Runtime) LiveObjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for ref, o := range r.objects {
		if o.immortal || o.freed {
			continue
		}
		desc := fmt.Sprintf("%#x %s count=%d", uintptr(ref), o.class, o.count)
		if o.class == cf.ClassString {
			desc += fmt.Sprintf(" %q", o.str)
		}
		out = append(out, desc)
	}
	sort.Strings(out)
	return out
}

// IsFreed reports whether ref was deallocated.
func (r *Runtime) IsFreed(ref cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[ref]
	return ok && o.freed
}

func (r *Runtime) Retain(ref cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retainLocked(ref)
}

func (r *Runtime) Release(ref cf.Ref) {
	r.mu.Lock()
	defer r.unlock()
	r.releaseLocked(ref)
}

func (r *Runtime) RetainCount(ref cf.Ref) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.getLocked(ref)
	if o.immortal {
		return int(^uint(0) >> 1)
	}
	return o.count
}

func (r *Runtime) TypeIDOf(ref cf.Ref) cf.TypeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return typeIDs[r.getLocked(ref).class]
}

func (r *Runtime) ClassTypeID(class cf.Class) cf.TypeID {
	return typeIDs[class]
}

func (r *Runtime) Equal(a, b cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.equalLocked(a, b)
}

func (r *Runtime) equalLocked(a, b cf.Ref) bool {
	if a == b {
		return true
	}
	x, y := r.getLocked(a), r.getLocked(b)
	if x.class != y.class {
		return false
	}
	switch x.class {
	case cf.ClassString:
		return x.str == y.str
	case cf.ClassNumber:
		if x.isFloat || y.isFloat {
			return x.f == y.f
		}
		return x.i == y.i
	case cf.ClassBoolean:
		return x.b == y.b
	case cf.ClassData:
		return string(x.data) == string(y.data)
	case cf.ClassArray:
		if len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !r.equalLocked(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case cf.ClassDictionary:
		if len(x.items) != len(y.items) {
			return false
		}
		for i, k := range x.items {
			v := r.dictValueLocked(y, r.getLocked(k).str)
			if v == 0 || !r.equalLocked(x.values[i], v) {
				return false
			}
		}
		return true
	}
	return false
}

// Constant returns the fake's value for well known framework constants.
// Unknown names return 0.
func (r *Runtime) Constant(name string) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch name {
	case "kCFBooleanTrue":
		return r.trueRef
	case "kCFBooleanFalse":
		return r.falseRef
	}
	if ref, ok := r.constants[name]; ok {
		return ref
	}
	value, ok := constantValues[name]
	if !ok {
		return 0
	}
	ref := r.allocLocked(&object{class: cf.ClassString, str: value, immortal: true})
	r.constants[name] = ref
	return ref
}

var constantValues = map[string]string{
	string(cf.DefaultMode):                   "kCFRunLoopDefaultMode",
	string(cf.CommonModes):                   "kCFRunLoopCommonModes",
	"kSCDynamicStoreUseSessionKeys":          "UseSessionKeys",
	"kSCDynamicStoreDomainState":             "State:",
	"kSCDynamicStoreDomainSetup":             "Setup:",
	"kSCPropNetDNSServerAddresses":           "ServerAddresses",
	"kSCPropNetDNSDomainName":                "DomainName",
	"kSCPropNetDNSSearchDomains":             "SearchDomains",
	"kSCDynamicStorePropNetPrimaryService":   "PrimaryService",
	"kSCDynamicStorePropNetPrimaryInterface": "PrimaryInterface",
	"kSCPropNetIPv4Router":                   "Router",
	"kSCPrefSets":                            "Sets",
	"kSCPrefCurrentSet":                      "CurrentSet",
	"kSCPrefNetworkServices":                 "NetworkServices",
	"kSCPropUserDefinedName":                 "UserDefinedName",
	"kSCNetworkProtocolTypeDNS":              "DNS",
	"kSCNetworkProtocolTypeIPv4":             "IPv4",
	"kSCNetworkProtocolTypeIPv6":             "IPv6",
	"kSCNetworkProtocolTypeProxies":          "Proxies",
	"kSCNetworkProtocolTypeSMB":              "SMB",
}

func (r *Runtime) CreateString(s string) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocLocked(&object{class: cf.ClassString, str: s})
}

func (r *Runtime) StringValue(ref cf.Ref) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(ref).str
}

func (r *Runtime) CreateInt(v int64) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocLocked(&object{class: cf.ClassNumber, i: v, f: float64(v)})
}

func (r *Runtime) CreateFloat(v float64) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocLocked(&object{class: cf.ClassNumber, i: int64(v), f: v, isFloat: true})
}

func (r *Runtime) NumberValue(ref cf.Ref) (int64, float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.getLocked(ref)
	return o.i, o.f, o.isFloat
}

func (r *Runtime) Boolean(v bool) cf.Ref {
	if v {
		return r.trueRef
	}
	return r.falseRef
}

func (r *Runtime) BooleanValue(ref cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(ref).b
}

func (r *Runtime) CreateData(b []byte) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocLocked(&object{class: cf.ClassData, data: append([]byte{}, b...)})
}

func (r *Runtime) DataBytes(ref cf.Ref) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte{}, r.getLocked(ref).data...)
}

func (r *Runtime) CreateArray(values []cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createArrayLocked(values)
}

func (r *Runtime) createArrayLocked(values []cf.Ref) cf.Ref {
	items := make([]cf.Ref, len(values))
	for i, v := range values {
		items[i] = r.retainLocked(v)
	}
	return r.allocLocked(&object{class: cf.ClassArray, items: items})
}

func (r *Runtime) ArrayCount(ref cf.Ref) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.getLocked(ref).items)
}

func (r *Runtime) ArrayValueAt(ref cf.Ref, index int) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.getLocked(ref)
	if index < 0 || index >= len(o.items) {
		panic(fmt.Sprintf("sctest: array index %d out of range [0,%d)", index, len(o.items)))
	}
	return o.items[index]
}

func (r *Runtime) CreateDictionary(keys, values []cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createDictionaryLocked(keys, values)
}

func (r *Runtime) createDictionaryLocked(keys, values []cf.Ref) cf.Ref {
	if len(keys) != len(values) {
		panic("sctest: dictionary keys and values differ in length")
	}
	d := &object{class: cf.ClassDictionary}
	for i, k := range keys {
		ko := r.getLocked(k)
		if idx := r.dictIndexLocked(d, ko.str); idx >= 0 {
			r.releaseLocked(d.values[idx])
			d.values[idx] = r.retainLocked(values[i])
			continue
		}
		d.items = append(d.items, r.retainLocked(k))
		d.values = append(d.values, r.retainLocked(values[i]))
	}
	return r.allocLocked(d)
}

// dictIndexLocked finds a string key. The fake only supports string keys.
func (r *Runtime) dictIndexLocked(d *object, key string) int {
	for i, k := range d.items {
		if r.getLocked(k).str == key {
			return i
		}
	}
	return -1
}

func (r *Runtime) dictValueLocked(d *object, key string) cf.Ref {
	if i := r.dictIndexLocked(d, key); i >= 0 {
		return d.values[i]
	}
	return 0
}

func (r *Runtime) DictionaryCount(ref cf.Ref) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.getLocked(ref).items)
}

func (r *Runtime) DictionaryValue(dict, key cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dictValueLocked(r.getLocked(dict), r.getLocked(key).str)
}

func (r *Runtime) DictionaryEntries(ref cf.Ref) ([]cf.Ref, []cf.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.getLocked(ref)
	return append([]cf.Ref{}, o.items...), append([]cf.Ref{}, o.values...)
}

func (r *Runtime) LastError() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *Runtime) ErrorString(code int32) string { return sc.StatusText(code) }
