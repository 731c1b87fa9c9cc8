package serde

import (
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgpack lowers obj with ToSerializable and packs the result
// with MessagePack. The original Python implementation keeps a
// second, near-duplicate lowering pass in utils/msgpack_serde.py
// purely to decouple the wire codec from the generic structural
// layer; here that decoupling is a thin wrapper around the same
// ToSerializable instead of a second hand-rolled walk, since Go's
// msgpack library already accepts the lowered map[string]any/[]any
// shape directly (spec.md §4.2, §6 "wire codec").
func EncodeMsgpack(obj any) ([]byte, error) {
	return msgpack.Marshal(ToSerializable(obj))
}

// DecodeMsgpack unpacks data with MessagePack and raises it into an
// instance of target with FromSerializable. msgpack.Unmarshal
// produces map[string]interface{} for string-keyed maps and
// []interface{} for arrays; FromSerializable's map/struct cases
// already accept either that shape or ToSerializable's own
// map[any]any/[]any shape.
func DecodeMsgpack(data []byte, target reflect.Type) (any, error) {
	var generic any
	if err := msgpack.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return FromSerializable(target, generic)
}
