package resp

import "fmt"

// MakeSimpleString construct SimpleString Value from string
func MakeSimpleString(s string) Value {
	return SimpleString(s)
}

// MakeError construct Error Value from string
func MakeError(s string) Value {
	return Error(s)
}

// MakeErrorWrongNumberOfArguments construct Error Value that command had wrong number of arguments for command
func MakeErrorWrongNumberOfArguments(cmd string) Value {
	return MakeError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmd))
}

// MakeBulkString construct BulkString Value from string
func MakeBulkString(s string) Value {
	return BulkString{Data: []byte(s)}
}

// MakeBulkBytes construct BulkString Value from raw bytes. The slice is not copied
func MakeBulkBytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return BulkString{Data: b}
}

// MakeNullBulkString construct nil BulkString Value
func MakeNullBulkString() Value {
	return BulkString{Null: true}
}

// MakeInteger construct Integer Value from int64
func MakeInteger(n int64) Value {
	return Integer(n)
}

// MakeArray creates a standard RESP array containing the provided elements
func MakeArray(values []Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Array{Elems: values}
}

// MakeNullArray construct nil Array Value
func MakeNullArray() Value {
	return Array{Null: true}
}
