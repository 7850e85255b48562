package resp

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// arrays announcing more elements than this grow on demand instead of
	// being allocated up front
	maxPrealloc = 1024
	// bulk bodies are allocated at most this many bytes ahead of the data read
	bulkChunk = 64 << 10
)

// Decoder reads RESP2 values from a byte stream
type Decoder struct {
	rd   *bufio.Reader
	opts options
}

// NewDecoder returns a Decoder reading from rd. A *bufio.Reader is used as is,
// anything else gets wrapped in one, so bytes past the last decoded value may
// end up buffered inside the Decoder
func NewDecoder(rd io.Reader, opts ...Option) *Decoder {
	br, ok := rd.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(rd)
	}

	return &Decoder{
		rd:   br,
		opts: buildOptions(opts),
	}
}

// Read decodes the next complete value. It stops right after the last byte of
// that value, so calling it in a loop walks a stream of pipelined frames.
//
// A stream that ends exactly between two frames yields an error matching both
// ErrEOF and io.EOF. A stream that ends inside a frame yields ErrEOF wrapping
// io.ErrUnexpectedEOF
func (d *Decoder) Read() (Value, error) {
	return d.readValue(0)
}

func (d *Decoder) readValue(depth int) (Value, error) {
	tag, err := d.rd.ReadByte()
	if err != nil {
		return nil, streamError(err, depth > 0)
	}

	switch Type(tag) {
	case TypeSimpleString:
		s, err := d.readText()
		if err != nil {
			return nil, err
		}
		return SimpleString(s), nil

	case TypeError:
		s, err := d.readText()
		if err != nil {
			return nil, err
		}
		return Error(s), nil

	case TypeInteger:
		n, err := d.readNumber()
		if err != nil {
			return nil, err
		}
		return Integer(n), nil

	case TypeBulkString:
		return d.readBulkString()

	case TypeArray:
		return d.readArray(depth + 1)
	}

	return nil, syntaxError("unexpected type byte %q", tag)
}

// readLine returns the next line without its CRLF. The result may alias the
// bufio buffer and is only valid until the next read
func (d *Decoder) readLine() ([]byte, error) {
	var buf []byte

	for {
		line, err := d.rd.ReadSlice('\n')
		if err == nil {
			if buf == nil {
				buf = line
			} else {
				buf = append(buf, line...)
			}
			break
		}
		if err != bufio.ErrBufferFull {
			return nil, streamError(err, true)
		}

		buf = append(buf, line...)
		if d.opts.maxBulkLength > 0 && int64(len(buf)) > d.opts.maxBulkLength {
			return nil, syntaxError("line exceeds %d bytes", d.opts.maxBulkLength)
		}
	}

	if len(buf) < 2 || buf[len(buf)-2] != '\r' {
		return nil, syntaxError("line not terminated by CRLF")
	}

	return buf[:len(buf)-2], nil
}

func (d *Decoder) readText() (string, error) {
	line, err := d.readLine()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(line) {
		return "", &CodecError{Kind: KindUTF8, Msg: "simple text is not valid UTF-8"}
	}

	return string(line), nil
}

func (d *Decoder) readNumber() (int64, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}

	n, ok := parseInteger(line)
	if !ok {
		return 0, syntaxError("invalid integer %q", line)
	}

	return n, nil
}

func (d *Decoder) readBulkString() (Value, error) {
	n, err := d.readNumber()
	if err != nil {
		return nil, err
	}

	if n < 0 {
		return BulkString{Null: true}, nil
	}

	if n > math.MaxInt64-2 {
		return nil, syntaxError("bulk length %d out of range", n)
	}
	if d.opts.maxBulkLength > 0 && n > d.opts.maxBulkLength {
		return nil, syntaxError("bulk length %d exceeds limit %d", n, d.opts.maxBulkLength)
	}

	data, err := d.readBody(n)
	if err != nil {
		return nil, err
	}

	var trailer [2]byte
	if _, err := io.ReadFull(d.rd, trailer[:]); err != nil {
		return nil, streamError(err, true)
	}
	if trailer[0] != '\r' || trailer[1] != '\n' {
		return nil, syntaxError("bulk string not terminated by CRLF")
	}

	return BulkString{Data: data}, nil
}

// readBody reads exactly n payload bytes. Memory grows with the bytes that
// actually arrive, not with the announced length
func (d *Decoder) readBody(n int64) ([]byte, error) {
	if n <= bulkChunk {
		buf := make([]byte, n)
		if _, err := io.ReadFull(d.rd, buf); err != nil {
			return nil, streamError(err, true)
		}
		return buf, nil
	}

	var buf bytes.Buffer
	buf.Grow(bulkChunk)
	if _, err := io.CopyN(&buf, d.rd, n); err != nil {
		return nil, streamError(err, true)
	}
	return buf.Bytes(), nil
}

func (d *Decoder) readArray(depth int) (Value, error) {
	n, err := d.readNumber()
	if err != nil {
		return nil, err
	}

	if n < 0 {
		return Array{Null: true}, nil
	}

	if d.opts.depthExceeded(depth) {
		return nil, &CodecError{Kind: KindTooDeep, Msg: "array nesting exceeds limit"}
	}

	elems := make([]Value, 0, min(n, maxPrealloc))
	for remaining := n; remaining > 0; remaining-- {
		v, err := d.readValue(depth)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	return Array{Elems: elems}, nil
}

// parseInteger accepts an optional '-' followed by one or more ASCII digits.
// Leading '+', spaces and values outside int64 are rejected
func parseInteger(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}

	neg := b[0] == '-'
	if neg {
		b = b[1:]
		if len(b) == 0 {
			return 0, false
		}
	}

	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}

	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		digit := uint64(c - '0')
		if n > (limit-digit)/10 {
			return 0, false
		}
		n = n*10 + digit
	}

	if neg {
		return -int64(n), true
	}
	return int64(n), true
}

// Decode reads one value from rd. Bytes buffered past the value are lost
// unless rd is a *bufio.Reader; use a Decoder to read several frames
func Decode(rd io.Reader, opts ...Option) (Value, error) {
	return NewDecoder(rd, opts...).Read()
}

// DecodeBytes decodes the first value in b. Trailing bytes are ignored
func DecodeBytes(b []byte, opts ...Option) (Value, error) {
	return Decode(bytes.NewReader(b), opts...)
}

// DecodeString decodes the first value in s. Trailing bytes are ignored
func DecodeString(s string, opts ...Option) (Value, error) {
	return Decode(strings.NewReader(s), opts...)
}
