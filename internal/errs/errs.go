// Package errs defines the error kinds reported by the serializers.
//
// None of them is fatal. Callers match on kind with errors.Is:
//
//	if errors.Is(err, errs.ErrIO) { ... }
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindIO Kind = iota + 1
	KindParse
	KindSchema
	KindLookup
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IOError"
	case KindParse:
		return "ParseError"
	case KindSchema:
		return "SchemaError"
	case KindLookup:
		return "LookupError"
	default:
		return "Error"
	}
}

// Sentinels for errors.Is. They carry no cause.
var (
	ErrIO     = &Error{Kind: KindIO}
	ErrParse  = &Error{Kind: KindParse}
	ErrSchema = &Error{Kind: KindSchema}
	ErrLookup = &Error{Kind: KindLookup}
)

// Error is a classified failure. Offset is the byte offset of a parse error,
// -1 when unknown.
type Error struct {
	Kind   Kind
	Op     string
	Path   string
	Offset int64
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Kind == KindParse && e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind when target is a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op == "" && t.Err == nil && t.Msg == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

func IO(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Path: path, Offset: -1, Err: err}
}

func Parse(op string, offset int64, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Offset: offset, Err: err}
}

// JSON classifies a json decoding failure as a ParseError, keeping the byte
// offset when the decoder reports one.
func JSON(op string, err error) *Error {
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		return Parse(op, syntax.Offset, err)
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return Parse(op, typ.Offset, err)
	}
	return Parse(op, -1, err)
}

func Schema(op, format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Op: op, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

func Lookup(op, format string, args ...any) *Error {
	return &Error{Kind: KindLookup, Op: op, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
