//go:build !ios && !android && (amd64 || arm64)

// Package cf wraps Core Foundation objects in reference-counted Go handles.
//
// Every function on Runtime mirrors one Core Foundation call. Calls whose
// name contains Create or Copy follow the create rule: the returned reference
// is owned (+1) and must be released once. All other calls returning a
// reference follow the get rule: the caller borrows it and must retain it
// before keeping it. WrapOwned and WrapBorrowed encode that distinction, so
// code outside this package never calls Retain or Release directly.
package cf

// Ref is the address of a Core Foundation object. It points to memory not
// owned by Go and is never dereferenced by scgo.
type Ref uintptr

// TypeID is a CFTypeID, the runtime class identifier of an object.
type TypeID uint64

// Class names a Core Foundation or SystemConfiguration type. The native
// runtime resolves its TypeID by calling "<Class>GetTypeID".
type Class string

// Core Foundation classes.
const (
	ClassString        Class = "CFString"
	ClassNumber        Class = "CFNumber"
	ClassBoolean       Class = "CFBoolean"
	ClassData          Class = "CFData"
	ClassArray         Class = "CFArray"
	ClassDictionary    Class = "CFDictionary"
	ClassRunLoop       Class = "CFRunLoop"
	ClassRunLoopSource Class = "CFRunLoopSource"
)

// RunLoopMode is the exported symbol name of a run loop mode constant.
type RunLoopMode string

const (
	DefaultMode RunLoopMode = "kCFRunLoopDefaultMode"
	CommonModes RunLoopMode = "kCFRunLoopCommonModes"
)

// RunLoopResult is the reason CFRunLoopRunInMode returned.
type RunLoopResult int32

const (
	RunLoopFinished      RunLoopResult = 1
	RunLoopStopped       RunLoopResult = 2
	RunLoopTimedOut      RunLoopResult = 3
	RunLoopHandledSource RunLoopResult = 4
)

func (r RunLoopResult) String() string {
	switch r {
	case RunLoopFinished:
		return "finished"
	case RunLoopStopped:
		return "stopped"
	case RunLoopTimedOut:
		return "timed out"
	case RunLoopHandledSource:
		return "handled source"
	default:
		return "unknown"
	}
}

// Runtime is the Core Foundation ABI consumed by scgo.
//
// A zero Ref returned from a Create/Copy call means "nothing to return".
// Implementations must be safe for concurrent use of Retain and Release.
type Runtime interface {
	Retain(ref Ref) Ref
	Release(ref Ref)
	RetainCount(ref Ref) int
	TypeIDOf(ref Ref) TypeID
	ClassTypeID(class Class) TypeID
	Equal(a, b Ref) bool

	// Constant returns the value of an exported CFStringRef (or other
	// object) variable such as kSCPropNetDNSServerAddresses. Get rule.
	Constant(name string) Ref

	CreateString(s string) Ref
	StringValue(ref Ref) string

	CreateInt(v int64) Ref
	CreateFloat(v float64) Ref
	NumberValue(ref Ref) (i int64, f float64, isFloat bool)

	// Boolean returns kCFBooleanTrue or kCFBooleanFalse. Get rule.
	Boolean(v bool) Ref
	BooleanValue(ref Ref) bool

	CreateData(b []byte) Ref
	DataBytes(ref Ref) []byte

	// CreateArray retains every element.
	CreateArray(values []Ref) Ref
	ArrayCount(ref Ref) int
	ArrayValueAt(ref Ref, index int) Ref

	// CreateDictionary retains every key and value.
	CreateDictionary(keys, values []Ref) Ref
	DictionaryCount(ref Ref) int
	DictionaryValue(dict, key Ref) Ref
	DictionaryEntries(ref Ref) (keys, values []Ref)

	CurrentRunLoop() Ref
	RunLoopAddSource(loop, source Ref, mode RunLoopMode)
	RunLoopRemoveSource(loop, source Ref, mode RunLoopMode)
	RunLoopRunInMode(mode RunLoopMode, seconds float64, returnAfterSourceHandled bool) RunLoopResult
	RunLoopStop(loop Ref)
}
