// Package serde implements structural lowering and raising between Go
// native values and the built-in primitive/collection shapes a wire
// codec understands: bool, the sized integers, float32/float64,
// []byte, []any, and map[any]any (spec.md §4.2, grounded on
// utils/serde.py's to_serializable/from_serializable).
package serde

import (
	"reflect"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

var byteSliceType = reflect.TypeOf([]byte(nil))

// ToSerializable transforms obj into a form built only from bool,
// the sized integers, float32/float64, []byte, []any, and
// map[any]any. Structs are transformed field-by-field into a
// map[string]any keyed by field name, recursing into nested
// structs/slices/maps the same way utils/serde.py's to_serializable
// walks dataclass fields. Unexported fields are skipped, since Go
// reflection cannot read them and they would never round-trip
// through FromSerializable anyway.
func ToSerializable(obj any) any {
	if obj == nil {
		return nil
	}
	return toSerializableValue(reflect.ValueOf(obj))
}

func toSerializableValue(v reflect.Value) any {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Type() == byteSliceType {
		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = toSerializableValue(v.Field(i))
		}
		return out

	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = toSerializableValue(v.Index(i))
		}
		return out

	case reflect.Map:
		out := make(map[any]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[toSerializableValue(iter.Key())] = toSerializableValue(iter.Value())
		}
		return out

	default:
		return v.Interface()
	}
}

// FromSerializable transforms data, in the shape ToSerializable
// produces, back into an instance of target. It returns a type_error
// if data is not compatible with target, mirroring
// _deserialize_as_class's TypeError.
func FromSerializable(target reflect.Type, data any) (any, error) {
	for target.Kind() == reflect.Ptr {
		target = target.Elem()
	}

	if target == byteSliceType {
		return convertScalar(target, data)
	}

	switch target.Kind() {
	case reflect.Slice:
		items, ok := data.([]any)
		if !ok {
			return nil, core.NewTypeError("cannot create instance of %s with %#v", target, data)
		}
		out := reflect.MakeSlice(target, len(items), len(items))
		for i, item := range items {
			elem, err := FromSerializable(target.Elem(), item)
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(reflect.ValueOf(elem).Convert(target.Elem()))
		}
		return out.Interface(), nil

	case reflect.Map:
		items, ok := asAnyMap(data)
		if !ok {
			return nil, core.NewTypeError("cannot create instance of %s with %#v", target, data)
		}
		out := reflect.MakeMapWithSize(target, len(items))
		for k, val := range items {
			key, err := FromSerializable(target.Key(), k)
			if err != nil {
				return nil, err
			}
			value, err := FromSerializable(target.Elem(), val)
			if err != nil {
				return nil, err
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(target.Key()), reflect.ValueOf(value).Convert(target.Elem()))
		}
		return out.Interface(), nil

	case reflect.Struct:
		return deserializeAsStruct(target, data)

	default:
		return convertScalar(target, data)
	}
}

func deserializeAsStruct(target reflect.Type, data any) (any, error) {
	fields, ok := asStringMap(data)
	if !ok {
		return nil, core.NewTypeError("cannot create instance of %s with %#v", target, data)
	}

	out := reflect.New(target).Elem()
	for name, value := range fields {
		field, ok := target.FieldByName(name)
		if !ok || !field.IsExported() {
			return nil, core.NewTypeError("cannot create instance of %s with %#v", target, data)
		}
		converted, err := FromSerializable(field.Type, value)
		if err != nil {
			return nil, err
		}
		out.FieldByName(name).Set(reflect.ValueOf(converted).Convert(field.Type))
	}
	return out.Interface(), nil
}

// asAnyMap accepts either shape a map might arrive in: the
// map[any]any ToSerializable produces, or the map[string]any a
// msgpack decode of string-keyed data produces.
func asAnyMap(data any) (map[any]any, bool) {
	switch m := data.(type) {
	case map[any]any:
		return m, true
	case map[string]any:
		out := make(map[any]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// asStringMap accepts either shape a struct's fields might arrive in.
func asStringMap(data any) (map[string]any, bool) {
	switch m := data.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// convertScalar handles the leaf case: bool, sized integers,
// float32/float64, and []byte pass straight through a reflect
// Convert, since the wire codec already decoded them to a compatible
// Go type.
func convertScalar(target reflect.Type, data any) (any, error) {
	v := reflect.ValueOf(data)
	if !v.IsValid() {
		return nil, core.NewTypeError("cannot create instance of %s with nil", target)
	}
	if !v.Type().ConvertibleTo(target) {
		return nil, core.NewTypeError("cannot create instance of %s with %#v", target, data)
	}
	return v.Convert(target).Interface(), nil
}
