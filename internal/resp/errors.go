package resp

import (
	"errors"
	"fmt"
	"io"
)

// Kind classifies codec failures
type Kind int

const (
	// KindSyntax means the input broke the wire grammar: unknown tag,
	// malformed number or a body not followed by CRLF
	KindSyntax Kind = iota + 1
	// KindEOF means the stream ended before a frame was complete
	KindEOF
	// KindIO means the stream failed for a reason other than end of input
	KindIO
	// KindUTF8 means bytes that must be text were not valid UTF-8
	KindUTF8
	// KindMessage is a custom failure raised by a consumer of the codec
	KindMessage
	// KindTooDeep means arrays were nested deeper than the configured limit
	KindTooDeep
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindEOF:
		return "eof"
	case KindIO:
		return "io"
	case KindUTF8:
		return "utf8"
	case KindMessage:
		return "message"
	case KindTooDeep:
		return "too deep"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// CodecError is returned by every Decoder and Encoder failure
type CodecError struct {
	Kind Kind
	Msg  string
	Err  error // underlying stream error, if any
}

func (e *CodecError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return "resp: " + e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return "resp: " + e.Msg
	case e.Err != nil:
		return "resp: " + e.Err.Error()
	}
	return "resp: " + e.Kind.String() + " error"
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSyntax) and friends match on Kind alone
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is. They carry only a Kind
var (
	ErrSyntax      = &CodecError{Kind: KindSyntax}
	ErrEOF         = &CodecError{Kind: KindEOF}
	ErrIO          = &CodecError{Kind: KindIO}
	ErrInvalidUTF8 = &CodecError{Kind: KindUTF8}
	ErrMessage     = &CodecError{Kind: KindMessage}
	ErrTooDeep     = &CodecError{Kind: KindTooDeep}
)

// Messagef builds a KindMessage error for consumers that reject a decoded shape
func Messagef(format string, args ...any) error {
	return &CodecError{Kind: KindMessage, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or 0 if err is not a CodecError
func KindOf(err error) Kind {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func syntaxError(format string, args ...any) error {
	return &CodecError{Kind: KindSyntax, Msg: fmt.Sprintf(format, args...)}
}

// streamError classifies an error coming from the underlying reader or writer.
// midFrame turns a bare io.EOF into io.ErrUnexpectedEOF
func streamError(err error, midFrame bool) error {
	if err == nil {
		return nil
	}

	var ce *CodecError
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, io.EOF):
		if midFrame {
			err = io.ErrUnexpectedEOF
		}
		return &CodecError{Kind: KindEOF, Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &CodecError{Kind: KindEOF, Err: err}
	}

	return &CodecError{Kind: KindIO, Err: err}
}
