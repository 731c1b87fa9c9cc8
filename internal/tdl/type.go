// Package tdl implements Spider's Task Description Language: a small
// tagged-variant type system used to describe task parameter and
// return types independently of any wire codec (spec.md §4.1).
package tdl

import (
	"fmt"
	"strings"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

// Kind enumerates TDL's primitive and generic type tags (spec.md §3).
type Kind int

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat
	KindDouble
	KindBytes
	KindList
	KindMap
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindClass:
		return "Class"
	default:
		return "unknown"
	}
}

// Type is a TDL type value. Primitive kinds need nothing else; List
// needs Elem; Map needs Key and Value; Class needs ClassName.
type Type struct {
	Kind Kind

	Elem *Type // List<Elem>

	Key   *Type // Map<Key, Value>
	Value *Type

	ClassName string // Class<ClassName>
}

func Bool() *Type   { return &Type{Kind: KindBool} }
func Int8() *Type   { return &Type{Kind: KindInt8} }
func Int16() *Type  { return &Type{Kind: KindInt16} }
func Int32() *Type  { return &Type{Kind: KindInt32} }
func Int64() *Type  { return &Type{Kind: KindInt64} }
func Float() *Type  { return &Type{Kind: KindFloat} }
func Double() *Type { return &Type{Kind: KindDouble} }
func Bytes() *Type  { return &Type{Kind: KindBytes} }

// List constructs a List<elem> type.
func List(elem *Type) *Type {
	return &Type{Kind: KindList, Elem: elem}
}

// Map constructs a Map<key, value> type. It returns a type_error if
// key is not a valid map key type (spec.md §3: "Map key types are
// restricted to the primitive, non-container TDL types").
func Map(key, value *Type) (*Type, error) {
	if !key.IsMapKey() {
		return nil, core.NewTypeError("map key type %s is not a valid map key type", key)
	}
	return &Type{Kind: KindMap, Key: key, Value: value}, nil
}

// Class constructs a Class<name> type, where name is the class's
// fully-qualified registry name (spec.md §4.3, §9's registry note).
func Class(name string) *Type {
	return &Type{Kind: KindClass, ClassName: name}
}

// IsIntegral reports whether t is one of the four bounded integer
// kinds.
func (t *Type) IsIntegral() bool {
	switch t.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// IsMapKey reports whether t is eligible to be used as a Map key:
// any primitive scalar kind, but never List, Map, or Class (spec.md
// §3, grounded on type/tdl_type.py's is_map_key).
func (t *Type) IsMapKey() bool {
	switch t.Kind {
	case KindBool, KindInt8, KindInt16, KindInt32, KindInt64, KindFloat, KindDouble, KindBytes:
		return true
	default:
		return false
	}
}

// String renders t in TDL's canonical textual form, e.g.
// "Map<int32,List<bytes>>" (spec.md §3: "List<...>, Map<K,V> with no
// whitespace; class names verbatim" — a Class type's string form is
// its dotted name with no wrapper, not "Class<name>").
func (t *Type) String() string {
	switch t.Kind {
	case KindList:
		return fmt.Sprintf("List<%s>", t.Elem.String())
	case KindMap:
		return fmt.Sprintf("Map<%s,%s>", t.Key.String(), t.Value.String())
	case KindClass:
		return t.ClassName
	default:
		return t.Kind.String()
	}
}

// Equal reports whether t and other describe the same TDL type.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindList:
		return t.Elem.Equal(other.Elem)
	case KindMap:
		return t.Key.Equal(other.Key) && t.Value.Equal(other.Value)
	case KindClass:
		return t.ClassName == other.ClassName
	default:
		return true
	}
}

// trimOuter trims surrounding whitespace. Nothing in the package calls
// it; the parser skips whitespace itself.
func trimOuter(s string) string {
	return strings.TrimSpace(s)
}
