package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnsupportedArg is returned for values with no wire representation.
var ErrUnsupportedArg = errors.New("unsupported script argument")

// Encode converts v into a Redis argument. Strings, numbers and booleans
// are sent as they are and a non-empty byte sequence is sent as a raw
// string. Other sequences (including empty byte sequences), maps and
// structs are msgpack encoded with sorted map keys; packed reports this so
// the script can unpack them into tables. Byte sequences nested in a packed
// value use the msgpack bin format, which unpacks as a Lua string. A nil
// value is an empty string.
func Encode(v any) (wire any, packed bool, err error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x, false, nil
	case []byte:
		if len(x) > 0 {
			return x, false, nil
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", false, nil
		}
		return Encode(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), false, nil
	case reflect.Bool:
		return rv.Bool(), false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), false, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), false, nil
	case reflect.Slice, reflect.Array:
		if b, ok := byteSeq(rv); ok {
			if len(b) > 0 {
				return b, false, nil
			}
			v = []any{}
		} else if rv.Kind() == reflect.Slice && rv.IsNil() {
			v = []any{}
		}
	case reflect.Map:
		if rv.IsNil() {
			v = map[string]any{}
		}
	case reflect.Struct:
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedArg, rv.Type())
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err = enc.Encode(v); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrUnsupportedArg, rv.Type(), err)
	}
	return buf.String(), true, nil
}

func byteSeq(rv reflect.Value) ([]byte, bool) {
	if rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}
	return b, true
}
