package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"unicode/utf8"
)

var (
	crlf          = []byte("\r\n")
	nullBulkFrame = []byte("$-1\r\n")
	nullArrFrame  = []byte("*-1\r\n")
)

// Encoder handles the serialization of RESP Value objects into an output stream
type Encoder struct {
	w      io.Writer
	writer *bufio.Writer
	own    bool // writer was created by NewEncoder and may be reset on failure
	opts   options
}

// NewEncoder initializes an Encoder with a buffered writer. A *bufio.Writer
// is used as is; in that case a failed Write may leave part of a frame in
// the caller's buffer, and the caller must Reset it before writing again
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	e := &Encoder{w: w, opts: buildOptions(opts)}

	if bw, ok := w.(*bufio.Writer); ok {
		e.writer = bw
	} else {
		e.writer = bufio.NewWriter(w)
		e.own = true
	}

	return e
}

// Write serializes a RESP Value and writes the complete frame to the
// underlying stream before returning
func (e *Encoder) Write(v Value) error {
	if err := e.write(v, 0); err != nil {
		// drop the partial frame so it never reaches the stream on a later call
		if e.own {
			e.writer.Reset(e.w)
		}
		return err
	}

	if err := e.writer.Flush(); err != nil {
		if e.own {
			e.writer.Reset(e.w)
		}
		return writeError(err)
	}

	return nil
}

func (e *Encoder) write(v Value, depth int) error {
	switch v := v.(type) {
	case Integer:
		return e.writeHeader(byte(TypeInteger), int64(v))

	case SimpleString:
		return e.writeRaw(byte(TypeSimpleString), string(v))

	case Error:
		return e.writeRaw(byte(TypeError), string(v))

	case BulkString:
		if v.Null {
			return e.writeBytes(nullBulkFrame)
		}
		if err := e.writeHeader(byte(TypeBulkString), int64(len(v.Data))); err != nil {
			return err
		}
		if err := e.writeBytes(v.Data); err != nil {
			return err
		}
		return e.writeBytes(crlf)

	case Array:
		if v.Null {
			return e.writeBytes(nullArrFrame)
		}
		if e.opts.depthExceeded(depth + 1) {
			return &CodecError{Kind: KindTooDeep, Msg: "array nesting exceeds limit"}
		}
		if err := e.writeHeader(byte(TypeArray), int64(len(v.Elems))); err != nil {
			return err
		}
		for _, el := range v.Elems {
			if err := e.write(el, depth+1); err != nil {
				return err
			}
		}
		return nil

	case nil:
		return Messagef("cannot encode nil value")
	}

	return Messagef("cannot encode %T", v)
}

// writeHeader writes the type prefix, numeric value, and CRLF
func (e *Encoder) writeHeader(prefix byte, n int64) error {
	if err := e.writer.WriteByte(prefix); err != nil {
		return writeError(err)
	}
	if err := e.appendInt(n); err != nil {
		return err
	}
	return e.writeBytes(crlf)
}

// writeRaw writes the type prefix, the text, and CRLF (for SimpleString and Error)
func (e *Encoder) writeRaw(prefix byte, s string) error {
	if err := e.writer.WriteByte(prefix); err != nil {
		return writeError(err)
	}
	if _, err := e.writer.WriteString(s); err != nil {
		return writeError(err)
	}
	return e.writeBytes(crlf)
}

func (e *Encoder) writeBytes(b []byte) error {
	if _, err := e.writer.Write(b); err != nil {
		return writeError(err)
	}
	return nil
}

// appendInt converts an integer to decimal text and writes it to the buffer
func (e *Encoder) appendInt(n int64) error {
	b := e.writer.AvailableBuffer()
	b = strconv.AppendInt(b, n, 10)
	return e.writeBytes(b)
}

func writeError(err error) error {
	return &CodecError{Kind: KindIO, Err: err}
}

// Encode writes v to w as one RESP frame
func Encode(w io.Writer, v Value, opts ...Option) error {
	return NewEncoder(w, opts...).Write(v)
}

// Marshal returns the wire bytes of v
func Marshal(v Value, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeToString returns the wire form of v as a string. It fails with
// ErrInvalidUTF8 when a bulk payload makes the frame non-textual
func EncodeToString(v Value, opts ...Option) (string, error) {
	b, err := Marshal(v, opts...)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", &CodecError{Kind: KindUTF8, Msg: "encoded frame is not valid UTF-8"}
	}

	return string(b), nil
}
