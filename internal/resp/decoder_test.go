package resp_test

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/moonresp/internal/resp"
)

func TestDecoder_Read(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  resp.Value
	}{
		{
			name:  "Simple String",
			input: "+Hello\r\n",
			want:  resp.SimpleString("Hello"),
		},
		{
			name:  "Simple String Empty",
			input: "+\r\n",
			want:  resp.SimpleString(""),
		},
		{
			name:  "Error",
			input: "-UNEXPECTED\r\n",
			want:  resp.Error("UNEXPECTED"),
		},
		{
			name:  "Integer",
			input: ":23\r\n",
			want:  resp.Integer(23),
		},
		{
			name:  "Bulk String",
			input: "$5\r\nHello\r\n",
			want:  resp.BulkString{Data: []byte("Hello")},
		},
		{
			name:  "Bulk String Empty",
			input: "$0\r\n\r\n",
			want:  resp.BulkString{Data: []byte{}},
		},
		{
			name:  "Bulk String Null",
			input: "$-1\r\n",
			want:  resp.BulkString{Null: true},
		},
		{
			name:  "Bulk String Any Negative Length Is Null",
			input: "$-7\r\n",
			want:  resp.BulkString{Null: true},
		},
		{
			name:  "Bulk String With CRLF Inside",
			input: "$7\r\nab\r\ncd\n\r\n",
			want:  resp.BulkString{Data: []byte("ab\r\ncd\n")},
		},
		{
			name:  "Array Null",
			input: "*-1\r\n",
			want:  resp.Array{Null: true},
		},
		{
			name:  "Array Empty",
			input: "*0\r\n",
			want:  resp.Array{Elems: []resp.Value{}},
		},
		{
			name:  "Mixed Array",
			input: "*3\r\n:23\r\n+Hello\r\n$5\r\nthere\r\n",
			want: resp.Array{Elems: []resp.Value{
				resp.Integer(23),
				resp.SimpleString("Hello"),
				resp.BulkString{Data: []byte("there")},
			}},
		},
		{
			name:  "Nested Array",
			input: "*2\r\n*2\r\n:1\r\n$-1\r\n*1\r\n*-1\r\n",
			want: resp.Array{Elems: []resp.Value{
				resp.Array{Elems: []resp.Value{resp.Integer(1), resp.BulkString{Null: true}}},
				resp.Array{Elems: []resp.Value{resp.Array{Null: true}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resp.DecodeString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_ReadInteger(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "Valid positive", input: ":1000\r\n", want: 1000},
		{name: "Valid negative", input: ":-15\r\n", want: -15},
		{name: "Valid zero", input: ":0\r\n", want: 0},
		{name: "Leading zeros", input: ":007\r\n", want: 7},
		{name: "Max int64", input: ":9223372036854775807\r\n", want: 9223372036854775807},
		{name: "Min int64", input: ":-9223372036854775808\r\n", want: -9223372036854775808},
		{name: "Leading plus", input: ":+1230\r\n", wantErr: resp.ErrSyntax},
		{name: "Leading space", input: ": 1\r\n", wantErr: resp.ErrSyntax},
		{name: "Trailing space", input: ":1 \r\n", wantErr: resp.ErrSyntax},
		{name: "Letters", input: ":abc\r\n", wantErr: resp.ErrSyntax},
		{name: "Digits then letters", input: ":12a\r\n", wantErr: resp.ErrSyntax},
		{name: "Empty", input: ":\r\n", wantErr: resp.ErrSyntax},
		{name: "Lone minus", input: ":-\r\n", wantErr: resp.ErrSyntax},
		{name: "Overflow", input: ":9223372036854775808\r\n", wantErr: resp.ErrSyntax},
		{name: "Negative overflow", input: ":-9223372036854775809\r\n", wantErr: resp.ErrSyntax},
		{name: "Non-ASCII digit", input: ":١\r\n", wantErr: resp.ErrSyntax},
		{name: "Invalid ending", input: ":1000\n", wantErr: resp.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := resp.DecodeString(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, val)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, resp.Integer(tt.want), val)
		})
	}
}

func TestDecoder_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "Unknown type byte", input: "!oops\r\n", wantErr: resp.ErrSyntax},
		{name: "RESP3 null is unknown", input: "_\r\n", wantErr: resp.ErrSyntax},
		{name: "Bulk length not a number", input: "$x\r\nab\r\n", wantErr: resp.ErrSyntax},
		{name: "Bulk missing terminator", input: "$5\r\nHelloXX", wantErr: resp.ErrSyntax},
		{name: "Array count not a number", input: "*two\r\n", wantErr: resp.ErrSyntax},
		{name: "Simple string bare LF", input: "+OK\n", wantErr: resp.ErrSyntax},
		{name: "Invalid UTF-8 simple string", input: "+\xff\xfe\r\n", wantErr: resp.ErrInvalidUTF8},
		{name: "Invalid UTF-8 error", input: "-\xc3\x28\r\n", wantErr: resp.ErrInvalidUTF8},
		{name: "Bad element inside array", input: "*2\r\n:1\r\n?\r\n", wantErr: resp.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := resp.DecodeString(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, val)
		})
	}
}

func TestDecoder_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Bulk body", input: "$5\r\nHel"},
		{name: "Bulk terminator", input: "$5\r\nHello\r"},
		{name: "Bulk header", input: "$5"},
		{name: "Simple string", input: "+Hel"},
		{name: "Integer", input: ":12"},
		{name: "Array elements", input: "*2\r\n:1\r\n"},
		{name: "Nested array", input: "*1\r\n*2\r\n+a\r\n"},
		{name: "Tag only", input: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resp.DecodeString(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, resp.ErrEOF)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			assert.False(t, errors.Is(err, io.EOF), "mid-frame EOF must not look like a clean end")
			assert.Equal(t, resp.KindEOF, resp.KindOf(err))
		})
	}
}

func TestDecoder_CleanEOF(t *testing.T) {
	_, err := resp.DecodeString("")
	assert.ErrorIs(t, err, resp.ErrEOF)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_IOError(t *testing.T) {
	boom := errors.New("boom")

	_, err := resp.Decode(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, resp.ErrIO)
	assert.ErrorIs(t, err, boom)

	// failure after part of the frame was consumed
	rd := io.MultiReader(strings.NewReader("$10\r\nabc"), iotest.ErrReader(boom))
	_, err = resp.Decode(rd)
	assert.ErrorIs(t, err, resp.ErrIO)
	assert.ErrorIs(t, err, boom)
}

func TestDecoder_Pipeline(t *testing.T) {
	input := "+OK\r\n:1\r\n$3\r\nfoo\r\n*-1\r\n$-1\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"
	want := []resp.Value{
		resp.SimpleString("OK"),
		resp.Integer(1),
		resp.BulkString{Data: []byte("foo")},
		resp.Array{Null: true},
		resp.BulkString{Null: true},
		resp.Array{Elems: []resp.Value{
			resp.BulkString{Data: []byte("GET")},
			resp.BulkString{Data: []byte("k")},
		}},
	}

	// one byte at a time exercises every partial-read path of the buffered reader
	dec := resp.NewDecoder(iotest.OneByteReader(strings.NewReader(input)))

	var got []resp.Value
	for {
		v, err := dec.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, want, got)
}

func TestDecoder_StopsAtValueEnd(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("*1\r\n:5\r\nrest"))

	v, err := resp.NewDecoder(br).Read()
	require.NoError(t, err)
	assert.Equal(t, resp.Array{Elems: []resp.Value{resp.Integer(5)}}, v)

	rest, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, "rest", string(rest))
}

func TestDecoder_LongLine(t *testing.T) {
	text := strings.Repeat("x", 10_000)
	br := bufio.NewReaderSize(strings.NewReader("+"+text+"\r\n"), 16)

	v, err := resp.NewDecoder(br).Read()
	require.NoError(t, err)
	assert.Equal(t, resp.SimpleString(text), v)
}

func TestDecoder_MaxDepth(t *testing.T) {
	nested := func(depth int) string {
		return strings.Repeat("*1\r\n", depth) + ":1\r\n"
	}

	tests := []struct {
		name    string
		input   string
		opts    []resp.Option
		wantErr error
	}{
		{"at limit", nested(3), []resp.Option{resp.WithMaxDepth(3)}, nil},
		{"past limit", nested(4), []resp.Option{resp.WithMaxDepth(3)}, resp.ErrTooDeep},
		{"past default", nested(resp.DefaultMaxDepth + 1), nil, resp.ErrTooDeep},
		{"limit disabled", nested(resp.DefaultMaxDepth + 1), []resp.Option{resp.WithMaxDepth(0)}, nil},
		{"null array past limit", "*1\r\n*-1\r\n", []resp.Option{resp.WithMaxDepth(1)}, nil},
		{"null array at top level", "*-1\r\n", []resp.Option{resp.WithMaxDepth(1)}, nil},
		{"empty array past limit", "*1\r\n*0\r\n", []resp.Option{resp.WithMaxDepth(1)}, resp.ErrTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resp.DecodeString(tt.input, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecoder_MaxBulkLength(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    []resp.Option
		want    string
		wantErr error
	}{
		{
			name:  "at limit",
			input: "$4\r\nabcd\r\n",
			opts:  []resp.Option{resp.WithMaxBulkLength(4)},
			want:  "abcd",
		},
		{
			name:    "past limit",
			input:   "$5\r\nabcde\r\n",
			opts:    []resp.Option{resp.WithMaxBulkLength(4)},
			wantErr: resp.ErrSyntax,
		},
		{
			name:    "huge length under default limit",
			input:   "$9223372036854775806\r\n",
			wantErr: resp.ErrSyntax,
		},
		{
			name:    "max int64 length without limit",
			input:   "$9223372036854775807\r\n",
			opts:    []resp.Option{resp.WithMaxBulkLength(0)},
			wantErr: resp.ErrSyntax,
		},
		{
			name:    "length leaving no room for CRLF without limit",
			input:   "$9223372036854775806\r\n",
			opts:    []resp.Option{resp.WithMaxBulkLength(0)},
			wantErr: resp.ErrSyntax,
		},
		{
			name:    "huge length with short body without limit",
			input:   "$9223372036854775805\r\nabc",
			opts:    []resp.Option{resp.WithMaxBulkLength(0)},
			wantErr: resp.ErrEOF,
		},
		{
			name:    "large length with short body",
			input:   "$1048576\r\nabc",
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:  "body larger than one read chunk",
			input: "$200000\r\n" + strings.Repeat("x", 200000) + "\r\n",
			want:  strings.Repeat("x", 200000),
		},
		{
			name:    "body larger than one read chunk missing CRLF",
			input:   "$200000\r\n" + strings.Repeat("x", 200000) + "xx",
			wantErr: resp.ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				v   resp.Value
				err error
			)
			require.NotPanics(t, func() {
				v, err = resp.DecodeString(tt.input, tt.opts...)
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func FuzzDecode(f *testing.F) {
	for _, seed := range []string{
		"+Hello\r\n",
		"-ERR x\r\n",
		":-42\r\n",
		"$5\r\nHello\r\n",
		"$-1\r\n",
		"*-1\r\n",
		"*0\r\n",
		"*3\r\n:23\r\n+Hello\r\n$5\r\nthere\r\n",
		"*1\r\n*1\r\n$2\r\n\r\n\r\n",
	} {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := resp.DecodeBytes(data, resp.WithMaxBulkLength(1<<20))
		if err != nil {
			if resp.KindOf(err) == 0 {
				t.Fatalf("untyped error: %v", err)
			}
			return
		}

		encoded, err := resp.Marshal(v)
		require.NoError(t, err)

		again, err := resp.DecodeBytes(encoded)
		require.NoError(t, err)
		require.True(t, resp.Equal(v, again), "%q decoded to %v, re-decoded to %v", data, v, again)
	})
}
