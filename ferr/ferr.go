// Package ferr defines the error taxonomy shared by every fdocodec package.
package ferr

import (
	"errors"
	"fmt"
)

// Code identifies the class of failure, independent of message text.
type Code int32

const (
	UnrecognizedAtom Code = iota
	BadArgumentFormat
	BadNumberFormat
	BadStringFormat
	BadGidFormat
	UnrecognizedEnum
	ValueTooLarge
	InvalidBinaryFormat
	UnexpectedEof
	BufferTooSmall
)

var codeNames = map[Code]string{
	UnrecognizedAtom:    "UnrecognizedAtom",
	BadArgumentFormat:   "BadArgumentFormat",
	BadNumberFormat:     "BadNumberFormat",
	BadStringFormat:     "BadStringFormat",
	BadGidFormat:        "BadGidFormat",
	UnrecognizedEnum:    "UnrecognizedEnum",
	ValueTooLarge:       "ValueTooLarge",
	InvalidBinaryFormat: "InvalidBinaryFormat",
	UnexpectedEof:       "UnexpectedEof",
	BufferTooSmall:      "BufferTooSmall",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int32(c))
}

// Pos is a source position attached to an Error: either a parsed AST's
// line/column, or a byte offset when no AST was available.
type Pos struct {
	Line, Col int // 1-based; zero value means "no line/col known"
	Offset    int // byte offset, valid when Line == 0
}

func (p Pos) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("offset %d", p.Offset)
}

// Error is the concrete error type returned by every compile/decompile
// operation in fdocodec. It carries a Code for programmatic dispatch plus
// a human message, and optionally wraps an underlying cause.
type Error struct {
	code Code
	msg  string
	pos  *Pos
	err  error
}

// New creates an Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// WithPos attaches a source position and returns the receiver for chaining.
func (e *Error) WithPos(p Pos) *Error {
	e.pos = &p
	return e
}

// WithErr attaches an underlying cause and returns the receiver for chaining.
func (e *Error) WithErr(err error) *Error {
	e.err = err
	return e
}

// Code returns the error's taxonomy code.
func (e *Error) Code() Code { return e.code }

// Error implements the error interface.
func (e *Error) Error() string {
	if e.pos != nil {
		return fmt.Sprintf("%s at %s: %s", e.code, e.pos, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Unwrap supports errors.Is / errors.As against a wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether err is a *Error with the same Code.
func (e *Error) Is(err error) bool {
	var t *Error
	if errors.As(err, &t) {
		return t.code == e.code
	}
	return false
}

// Wrap upgrades a plain error into one carrying code, unless err is already
// a *Error (in which case it is returned unchanged).
func Wrap(code Code, err error) *Error {
	var t *Error
	if errors.As(err, &t) {
		return t
	}
	return &Error{code: code, msg: err.Error(), err: err}
}
