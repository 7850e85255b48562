package resp

import (
	"strings"
)

// SerializeCommand builds the request frame for name and args, the inverse of
// ParseCommand. Arguments must be non-null bulk strings
func SerializeCommand(name string, args []Value, opts ...Option) ([]byte, error) {
	elems := make([]Value, 0, 1+len(args))
	elems = append(elems, MakeBulkString(name))

	for i, arg := range args {
		bs, ok := arg.(BulkString)
		if !ok || bs.Null {
			return nil, Messagef("argument %d is %s, expected bulk string", i, typeName(arg))
		}
		elems = append(elems, bs)
	}

	return Marshal(MakeArray(elems), opts...)
}

// ParseCommand splits a request frame into an upper-cased command name and
// its arguments. Requests must be non-null arrays of bulk strings
func ParseCommand(v Value) (string, []Value, error) {
	arr, ok := v.(Array)
	if !ok {
		return "", nil, Messagef("expected array request, got %s", typeName(v))
	}
	if arr.Null || len(arr.Elems) == 0 {
		return "", nil, Messagef("empty request")
	}

	for i, el := range arr.Elems {
		bs, ok := el.(BulkString)
		if !ok || bs.Null {
			return "", nil, Messagef("request element %d is %s, expected bulk string", i, typeName(el))
		}
	}

	name := arr.Elems[0].(BulkString).Data
	return strings.ToUpper(string(name)), arr.Elems[1:], nil
}

func typeName(v Value) string {
	switch v := v.(type) {
	case SimpleString:
		return "simple string"
	case Error:
		return "error"
	case Integer:
		return "integer"
	case BulkString:
		if v.Null {
			return "null bulk string"
		}
		return "bulk string"
	case Array:
		if v.Null {
			return "null array"
		}
		return "array"
	}
	return "nil"
}
