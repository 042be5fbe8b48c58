//go:build !ios && !android && (amd64 || arm64)

package cf

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/scgo/internal/bindings"
)

const (
	kCFStringEncodingUTF8 = 0x08000100
	kCFNumberSInt64Type   = 4
	kCFNumberFloat64Type  = 6
)

// Function bindings, registered by registerBindings.
var (
	cfRetain         func(ref Ref) Ref
	cfRelease        func(ref Ref)
	cfGetRetainCount func(ref Ref) int
	cfGetTypeID      func(ref Ref) TypeID
	cfEqual          func(a, b Ref) bool

	cfStringCreateWithBytes           func(alloc Ref, bytes unsafe.Pointer, n int, encoding uint32, external bool) Ref
	cfStringGetLength                 func(ref Ref) int
	cfStringGetMaximumSizeForEncoding func(n int, encoding uint32) int
	cfStringGetCString                func(ref Ref, buf unsafe.Pointer, size int, encoding uint32) bool

	cfNumberCreate      func(alloc Ref, typ int, value unsafe.Pointer) Ref
	cfNumberGetValue    func(ref Ref, typ int, out unsafe.Pointer) bool
	cfNumberIsFloatType func(ref Ref) bool

	cfBooleanGetValue func(ref Ref) bool

	cfDataCreate     func(alloc Ref, bytes unsafe.Pointer, n int) Ref
	cfDataGetLength  func(ref Ref) int
	cfDataGetBytePtr func(ref Ref) unsafe.Pointer

	cfArrayCreate          func(alloc Ref, values unsafe.Pointer, n int, callbacks uintptr) Ref
	cfArrayGetCount        func(ref Ref) int
	cfArrayGetValueAtIndex func(ref Ref, index int) Ref

	cfDictionaryCreate           func(alloc Ref, keys, values unsafe.Pointer, n int, keyCallbacks, valueCallbacks uintptr) Ref
	cfDictionaryGetCount         func(ref Ref) int
	cfDictionaryGetValue         func(dict, key Ref) Ref
	cfDictionaryGetKeysAndValues func(dict Ref, keys, values unsafe.Pointer)

	cfRunLoopGetCurrent   func() Ref
	cfRunLoopAddSource    func(loop, source, mode Ref)
	cfRunLoopRemoveSource func(loop, source, mode Ref)
	cfRunLoopRunInMode    func(mode Ref, seconds float64, returnAfterSourceHandled bool) int32
	cfRunLoopStop         func(loop Ref)

	// Addresses of the callback structs, not their contents.
	typeArrayCallBacks           uintptr
	typeDictionaryKeyCallBacks   uintptr
	typeDictionaryValueCallBacks uintptr
)

var (
	nativeOnce sync.Once
	nativeRT   *native
	nativeErr  error
)

// Native returns the Runtime backed by the system CoreFoundation framework.
// It loads the frameworks on first use.
func Native() (Runtime, error) {
	nativeOnce.Do(func() {
		if err := bindings.Load(); err != nil {
			nativeErr = err
			return
		}
		if err := registerBindings(); err != nil {
			nativeErr = err
			return
		}
		nativeRT = &native{}
	})
	if nativeErr != nil {
		return nil, nativeErr
	}
	return nativeRT, nil
}

func registerBindings() error {
	lib := bindings.LibCoreFoundation()
	if lib == 0 {
		return bindings.ErrNotLoaded
	}

	purego.RegisterLibFunc(&cfRetain, lib, "CFRetain")
	purego.RegisterLibFunc(&cfRelease, lib, "CFRelease")
	purego.RegisterLibFunc(&cfGetRetainCount, lib, "CFGetRetainCount")
	purego.RegisterLibFunc(&cfGetTypeID, lib, "CFGetTypeID")
	purego.RegisterLibFunc(&cfEqual, lib, "CFEqual")

	purego.RegisterLibFunc(&cfStringCreateWithBytes, lib, "CFStringCreateWithBytes")
	purego.RegisterLibFunc(&cfStringGetLength, lib, "CFStringGetLength")
	purego.RegisterLibFunc(&cfStringGetMaximumSizeForEncoding, lib, "CFStringGetMaximumSizeForEncoding")
	purego.RegisterLibFunc(&cfStringGetCString, lib, "CFStringGetCString")

	purego.RegisterLibFunc(&cfNumberCreate, lib, "CFNumberCreate")
	purego.RegisterLibFunc(&cfNumberGetValue, lib, "CFNumberGetValue")
	purego.RegisterLibFunc(&cfNumberIsFloatType, lib, "CFNumberIsFloatType")

	purego.RegisterLibFunc(&cfBooleanGetValue, lib, "CFBooleanGetValue")

	purego.RegisterLibFunc(&cfDataCreate, lib, "CFDataCreate")
	purego.RegisterLibFunc(&cfDataGetLength, lib, "CFDataGetLength")
	purego.RegisterLibFunc(&cfDataGetBytePtr, lib, "CFDataGetBytePtr")

	purego.RegisterLibFunc(&cfArrayCreate, lib, "CFArrayCreate")
	purego.RegisterLibFunc(&cfArrayGetCount, lib, "CFArrayGetCount")
	purego.RegisterLibFunc(&cfArrayGetValueAtIndex, lib, "CFArrayGetValueAtIndex")

	purego.RegisterLibFunc(&cfDictionaryCreate, lib, "CFDictionaryCreate")
	purego.RegisterLibFunc(&cfDictionaryGetCount, lib, "CFDictionaryGetCount")
	purego.RegisterLibFunc(&cfDictionaryGetValue, lib, "CFDictionaryGetValue")
	purego.RegisterLibFunc(&cfDictionaryGetKeysAndValues, lib, "CFDictionaryGetKeysAndValues")

	purego.RegisterLibFunc(&cfRunLoopGetCurrent, lib, "CFRunLoopGetCurrent")
	purego.RegisterLibFunc(&cfRunLoopAddSource, lib, "CFRunLoopAddSource")
	purego.RegisterLibFunc(&cfRunLoopRemoveSource, lib, "CFRunLoopRemoveSource")
	purego.RegisterLibFunc(&cfRunLoopRunInMode, lib, "CFRunLoopRunInMode")
	purego.RegisterLibFunc(&cfRunLoopStop, lib, "CFRunLoopStop")

	var err error
	if typeArrayCallBacks, err = bindings.Symbol("kCFTypeArrayCallBacks"); err != nil {
		return err
	}
	if typeDictionaryKeyCallBacks, err = bindings.Symbol("kCFTypeDictionaryKeyCallBacks"); err != nil {
		return err
	}
	if typeDictionaryValueCallBacks, err = bindings.Symbol("kCFTypeDictionaryValueCallBacks"); err != nil {
		return err
	}
	return nil
}

// native implements Runtime with the CoreFoundation framework.
type native struct {
	typeIDs   sync.Map // Class -> TypeID
	constants sync.Map // string -> Ref
}

func (n *native) Retain(ref Ref) Ref { return cfRetain(ref) }

func (n *native) Release(ref Ref) { cfRelease(ref) }

func (n *native) RetainCount(ref Ref) int { return cfGetRetainCount(ref) }

func (n *native) TypeIDOf(ref Ref) TypeID { return cfGetTypeID(ref) }

func (n *native) ClassTypeID(class Class) TypeID {
	if id, ok := n.typeIDs.Load(class); ok {
		return id.(TypeID)
	}
	addr, err := bindings.Symbol(string(class) + "GetTypeID")
	if err != nil {
		return 0
	}
	r1, _, _ := purego.SyscallN(addr)
	id := TypeID(r1)
	n.typeIDs.Store(class, id)
	return id
}

func (n *native) Equal(a, b Ref) bool { return cfEqual(a, b) }

func (n *native) Constant(name string) Ref {
	if ref, ok := n.constants.Load(name); ok {
		return ref.(Ref)
	}
	p, err := bindings.Pointer(name)
	if err != nil {
		return 0
	}
	n.constants.Store(name, Ref(p))
	return Ref(p)
}

func (n *native) CreateString(s string) Ref {
	var p unsafe.Pointer
	if len(s) > 0 {
		p = unsafe.Pointer(unsafe.StringData(s))
	}
	return cfStringCreateWithBytes(0, p, len(s), kCFStringEncodingUTF8, false)
}

func (n *native) StringValue(ref Ref) string {
	length := cfStringGetLength(ref)
	if length == 0 {
		return ""
	}
	size := cfStringGetMaximumSizeForEncoding(length, kCFStringEncodingUTF8) + 1
	buf := make([]byte, size)
	if !cfStringGetCString(ref, unsafe.Pointer(&buf[0]), size, kCFStringEncodingUTF8) {
		return ""
	}
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func (n *native) CreateInt(v int64) Ref {
	return cfNumberCreate(0, kCFNumberSInt64Type, unsafe.Pointer(&v))
}

func (n *native) CreateFloat(v float64) Ref {
	return cfNumberCreate(0, kCFNumberFloat64Type, unsafe.Pointer(&v))
}

func (n *native) NumberValue(ref Ref) (int64, float64, bool) {
	if cfNumberIsFloatType(ref) {
		var f float64
		cfNumberGetValue(ref, kCFNumberFloat64Type, unsafe.Pointer(&f))
		return int64(f), f, true
	}
	var i int64
	cfNumberGetValue(ref, kCFNumberSInt64Type, unsafe.Pointer(&i))
	return i, float64(i), false
}

func (n *native) Boolean(v bool) Ref {
	if v {
		return n.Constant("kCFBooleanTrue")
	}
	return n.Constant("kCFBooleanFalse")
}

func (n *native) BooleanValue(ref Ref) bool { return cfBooleanGetValue(ref) }

func (n *native) CreateData(b []byte) Ref {
	var p unsafe.Pointer
	if len(b) > 0 {
		p = unsafe.Pointer(&b[0])
	}
	return cfDataCreate(0, p, len(b))
}

func (n *native) DataBytes(ref Ref) []byte {
	length := cfDataGetLength(ref)
	if length == 0 {
		return []byte{}
	}
	p := cfDataGetBytePtr(ref)
	if p == nil {
		return []byte{}
	}
	out := make([]byte, length)
	copy(out, unsafe.Slice((*byte)(p), length))
	return out
}

func (n *native) CreateArray(values []Ref) Ref {
	var p unsafe.Pointer
	if len(values) > 0 {
		p = unsafe.Pointer(&values[0])
	}
	return cfArrayCreate(0, p, len(values), typeArrayCallBacks)
}

func (n *native) ArrayCount(ref Ref) int { return cfArrayGetCount(ref) }

func (n *native) ArrayValueAt(ref Ref, index int) Ref { return cfArrayGetValueAtIndex(ref, index) }

func (n *native) CreateDictionary(keys, values []Ref) Ref {
	var kp, vp unsafe.Pointer
	if len(keys) > 0 {
		kp = unsafe.Pointer(&keys[0])
		vp = unsafe.Pointer(&values[0])
	}
	return cfDictionaryCreate(0, kp, vp, len(keys), typeDictionaryKeyCallBacks, typeDictionaryValueCallBacks)
}

func (n *native) DictionaryCount(ref Ref) int { return cfDictionaryGetCount(ref) }

func (n *native) DictionaryValue(dict, key Ref) Ref { return cfDictionaryGetValue(dict, key) }

func (n *native) DictionaryEntries(ref Ref) ([]Ref, []Ref) {
	count := cfDictionaryGetCount(ref)
	if count == 0 {
		return nil, nil
	}
	keys := make([]Ref, count)
	values := make([]Ref, count)
	cfDictionaryGetKeysAndValues(ref, unsafe.Pointer(&keys[0]), unsafe.Pointer(&values[0]))
	return keys, values
}

func (n *native) CurrentRunLoop() Ref { return cfRunLoopGetCurrent() }

func (n *native) RunLoopAddSource(loop, source Ref, mode RunLoopMode) {
	cfRunLoopAddSource(loop, source, n.Constant(string(mode)))
}

func (n *native) RunLoopRemoveSource(loop, source Ref, mode RunLoopMode) {
	cfRunLoopRemoveSource(loop, source, n.Constant(string(mode)))
}

func (n *native) RunLoopRunInMode(mode RunLoopMode, seconds float64, returnAfterSourceHandled bool) RunLoopResult {
	return RunLoopResult(cfRunLoopRunInMode(n.Constant(string(mode)), seconds, returnAfterSourceHandled))
}

func (n *native) RunLoopStop(loop Ref) { cfRunLoopStop(loop) }
