package resp

import (
	"bytes"
	"strconv"
	"strings"
)

// Type is the single-byte tag that starts every RESP2 frame
type Type byte

const (
	TypeSimpleString Type = '+'
	TypeError        Type = '-'
	TypeInteger      Type = ':'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

// String returns the tag as a one-character string
func (t Type) String() string {
	return string(rune(t))
}

// Value is one RESP2 value. It is implemented only by SimpleString, Error,
// Integer, BulkString and Array
type Value interface {
	Type() Type
	String() string

	respValue()
}

// SimpleString is a line of text without CR or LF
type SimpleString string

// Error is an error reply. The text follows the same rules as SimpleString
type Error string

// Integer is a signed 64-bit number
type Integer int64

// BulkString is a binary-safe string. Null marks the "$-1" reply and is
// distinct from an empty, present string
type BulkString struct {
	Data []byte
	Null bool
}

// Array is an ordered list of values. Null marks the "*-1" reply and is
// distinct from an empty, present array
type Array struct {
	Elems []Value
	Null  bool
}

func (SimpleString) Type() Type { return TypeSimpleString }
func (Error) Type() Type        { return TypeError }
func (Integer) Type() Type      { return TypeInteger }
func (BulkString) Type() Type   { return TypeBulkString }
func (Array) Type() Type        { return TypeArray }

func (SimpleString) respValue() {}
func (Error) respValue()        {}
func (Integer) respValue()      {}
func (BulkString) respValue()   {}
func (Array) respValue()        {}

const nilDisplay = "(nil)"

func (s SimpleString) String() string { return string(s) }
func (e Error) String() string        { return string(e) }
func (n Integer) String() string      { return strconv.FormatInt(int64(n), 10) }

func (b BulkString) String() string {
	if b.Null {
		return nilDisplay
	}
	return string(b.Data)
}

func (a Array) String() string {
	if a.Null {
		return nilDisplay
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, el := range a.Elems {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if el == nil {
			sb.WriteString(nilDisplay)
			continue
		}
		sb.WriteString(el.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether a and b describe the same RESP value.
// A nil and an empty slice compare equal as long as neither value is null
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case SimpleString, Error, Integer:
		return a == b
	case BulkString:
		bv, ok := b.(BulkString)
		if !ok || av.Null != bv.Null {
			return false
		}
		return bytes.Equal(av.Data, bv.Data)
	case Array:
		bv, ok := b.(Array)
		if !ok || av.Null != bv.Null || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	}

	return false
}
