package ipc

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

// argRequestLength is the expected length of an Arguments request's
// msgpack array: [kind, payload] (spec.md §6, grounded on
// task_executor_message.py's ArgRequestLength).
const argRequestLength = 2

// EncodeRequest packs kind and payload as a two-element msgpack array
// frame body.
func EncodeRequest(kind RequestKind, payload any) ([]byte, error) {
	return msgpack.Marshal([]any{int(kind), payload})
}

// DecodeArgumentsRequest unpacks a frame body and extracts its
// payload, requiring the message header to be RequestArguments
// (spec.md §6, grounded on get_request_body).
func DecodeArgumentsRequest(body []byte) ([]any, error) {
	var data []any
	if err := msgpack.Unmarshal(body, &data); err != nil {
		return nil, core.NewFramingError("message is not a msgpack list").WithCause(err)
	}
	if len(data) != argRequestLength {
		return nil, core.NewFramingError("message is too short")
	}

	kind, ok := toInt(data[0])
	if !ok {
		return nil, core.NewFramingError("message header is not an integer")
	}
	if RequestKind(kind) != RequestArguments {
		return nil, core.NewFramingError("message header is not Arguments: %d", kind)
	}

	payload, ok := data[1].([]any)
	if !ok {
		return nil, core.NewFramingError("message payload is not a list")
	}
	return payload, nil
}

// EncodeResponse packs kind and payload as a two-element msgpack
// array frame body.
func EncodeResponse(kind ResponseKind, payload any) ([]byte, error) {
	return msgpack.Marshal([]any{int(kind), payload})
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int8:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
