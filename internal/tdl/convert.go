package tdl

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

var bytesType = reflect.TypeOf([]byte(nil))

// classRegistry maps a Class<name> name to the Go struct type it
// resolves to. Forward conversion (struct type -> Class name) needs
// no registry: reflect.Type.PkgPath()+"."+Name() already gives a
// stable, unique name. Reverse resolution (name -> struct type)
// does, because Go cannot dynamically import a package by a string
// path the way Python's importlib can (spec.md §9's design note,
// grounded on type/utils.py's get_class_by_name).
var (
	classRegistryMu sync.RWMutex
	classRegistry   = map[string]reflect.Type{}
)

// Register associates name with the concrete Go type of sample, so
// that ResolveClass can later recover it. Call this once per class
// type during program initialization, mirroring the explicit
// registration the generated Go code needs in place of Python's
// dynamic import.
func Register(name string, sample any) {
	classRegistryMu.Lock()
	defer classRegistryMu.Unlock()
	classRegistry[name] = reflect.TypeOf(sample)
}

// ResolveClass looks up the Go type registered under name. It returns
// a type_error if nothing was registered under that name, mirroring
// get_class_by_name's ImportError/AttributeError wrapping.
func ResolveClass(name string) (reflect.Type, error) {
	classRegistryMu.RLock()
	defer classRegistryMu.RUnlock()
	t, ok := classRegistry[name]
	if !ok {
		return nil, core.NewTypeError("no class registered under name %q", name)
	}
	return t, nil
}

// ClassName returns the registry name a struct type converts to:
// its full package path joined with its type name (spec.md §9,
// grounded on type/utils.py's get_class_name using
// f"{cls.__module__}.{cls.__qualname__}").
func ClassName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return fmt.Sprintf("%s.%s", t.PkgPath(), t.Name())
}

// ToTDLType derives the TDL type for a Go native type (spec.md §4.1,
// grounded on type/tdl_convert.py's to_tdl_type). It explicitly
// rejects Go's machine-width int/uint and complex64/128, the same
// way the original rejects bare Python int/float/complex: TDL has no
// ambiguous-width integer and no complex type at all.
func ToTDLType(t reflect.Type) (*Type, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == bytesType {
		return Bytes(), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return Bool(), nil
	case reflect.Int8:
		return Int8(), nil
	case reflect.Int16:
		return Int16(), nil
	case reflect.Int32:
		return Int32(), nil
	case reflect.Int64:
		return Int64(), nil
	case reflect.Float32:
		return Float(), nil
	case reflect.Float64:
		return Double(), nil
	case reflect.Int, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil, core.NewTypeError("TDL has no type for machine-width or unsigned integer %s; use a sized signed type (int8/16/32/64)", t.Kind())
	case reflect.Complex64, reflect.Complex128:
		return nil, core.NewTypeError("TDL has no complex number type, got %s", t.Kind())
	case reflect.String:
		return nil, core.NewTypeError("TDL has no string type, got %s; use []byte (bytes)", t.Kind())
	case reflect.Slice, reflect.Array:
		elem, err := ToTDLType(t.Elem())
		if err != nil {
			return nil, err
		}
		return List(elem), nil
	case reflect.Map:
		key, err := ToTDLType(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := ToTDLType(t.Elem())
		if err != nil {
			return nil, err
		}
		return Map(key, value)
	case reflect.Struct:
		return Class(ClassName(t)), nil
	default:
		return nil, core.NewTypeError("cannot derive a TDL type for Go kind %s", t.Kind())
	}
}

// ToTDLTypeStr is a convenience wrapper returning the canonical
// string form directly (spec.md §4.1 "to_tdl_type_str").
func ToTDLTypeStr(t reflect.Type) (string, error) {
	tt, err := ToTDLType(t)
	if err != nil {
		return "", err
	}
	return tt.String(), nil
}

// NativeType is ToTDLType's inverse: it derives the Go reflect.Type a
// TDL type decodes into, used where a value arrives with only a TDL
// type string attached (e.g. a task output read back from storage)
// and nothing else names its native type (spec.md §4.6, grounded on
// client/job.py's parse_tdl_type(...).native_type()). Class types
// resolve through the same registry Register populates.
func NativeType(t *Type) (reflect.Type, error) {
	switch t.Kind {
	case KindBool:
		return reflect.TypeOf(bool(false)), nil
	case KindInt8:
		return reflect.TypeOf(int8(0)), nil
	case KindInt16:
		return reflect.TypeOf(int16(0)), nil
	case KindInt32:
		return reflect.TypeOf(int32(0)), nil
	case KindInt64:
		return reflect.TypeOf(int64(0)), nil
	case KindFloat:
		return reflect.TypeOf(float32(0)), nil
	case KindDouble:
		return reflect.TypeOf(float64(0)), nil
	case KindBytes:
		return bytesType, nil
	case KindList:
		elem, err := NativeType(t.Elem)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case KindMap:
		key, err := NativeType(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := NativeType(t.Value)
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, value), nil
	case KindClass:
		return ResolveClass(t.ClassName)
	default:
		return nil, core.NewTypeError("cannot derive a native type for TDL kind %v", t.Kind)
	}
}
