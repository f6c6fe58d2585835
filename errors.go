package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by StringReader. Test with errors.Is/errors.As,
// never by comparing strings.
var (
	ErrReaderInvalidEscape        = errors.New("invalid escape sequence")
	ErrReaderExpectedStartOfQuote = errors.New("expected quote to start a string")
	ErrReaderExpectedEndOfQuote   = errors.New("unclosed quoted string")
	ErrReaderExpectedBool         = errors.New("expected bool")
	ErrReaderExpectedInt          = errors.New("expected int")
	ErrReaderExpectedFloat        = errors.New("expected float")
	ErrReaderInvalidInt           = errors.New("invalid int")
	ErrReaderInvalidFloat         = errors.New("invalid float")
	ErrReaderExpectedValue        = errors.New("expected value")
)

// Sentinel errors returned by argument types during Parse.
var (
	ErrArgumentIntegerTooHigh = errors.New("integer too high")
	ErrArgumentIntegerTooLow  = errors.New("integer too low")
	ErrArgumentFloatTooHigh   = errors.New("float too high")
	ErrArgumentFloatTooLow    = errors.New("float too low")
	ErrArgumentInvalidValue   = errors.New("invalid value")
)

// Sentinel errors returned by the Dispatcher during Parse/Execute.
var (
	ErrDispatcherUnknownCommand             = errors.New("unknown command")
	ErrDispatcherUnknownArgument             = errors.New("incorrect argument for command")
	ErrDispatcherExpectedArgumentSeparator   = errors.New("expected whitespace to end one argument, but found trailing data")
	ErrNoNodeBeforeCursor                    = errors.New("no node before cursor")
)

// ErrNodeKindMismatch is the runtime (programmer-misuse) error raised when
// AddChild is asked to merge a literal and an argument node under the same
// name. Unlike the syntax errors above it is never expected during normal
// parsing, so AddChild panics with it instead of threading it through a
// return value every caller would otherwise have to check.
var ErrNodeKindMismatch = errors.New("node type (literal/argument) mismatch")

// NodeKindMismatchError names the offending child in ErrNodeKindMismatch.
type NodeKindMismatchError struct{ Name string }

func (e *NodeKindMismatchError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNodeKindMismatch, e.Name)
}

func (e *NodeKindMismatchError) Unwrap() error { return ErrNodeKindMismatch }

// ReaderError wraps a sentinel error with the StringReader snapshot at the
// point of failure, so callers can render "...context...<--[HERE]".
type ReaderError struct {
	Err    error
	Reader *StringReader
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("%s at position %d: %s", e.Err, e.Reader.Cursor, e.contextHere())
}

func (e *ReaderError) Unwrap() error { return e.Err }

func (e *ReaderError) contextHere() string {
	cursor := e.Reader.Cursor
	if cursor > len(e.Reader.String) {
		cursor = len(e.Reader.String)
	}
	const maxContext = 10
	start := cursor - maxContext
	if start < 0 {
		start = 0
	}
	before := e.Reader.String[start:cursor]
	prefix := ""
	if start > 0 {
		prefix = "..."
	}
	after := e.Reader.String[cursor:]
	if len(after) > maxContext {
		after = after[:maxContext] + "..."
	}
	return prefix + before + "<--[HERE]" + after
}

// ReaderInvalidValueError records the literal text that failed to parse as
// a typed value (bool, int, float).
type ReaderInvalidValueError struct {
	Value string
}

func (e *ReaderInvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q", e.Value)
}

func newReaderErr(r *StringReader, sentinel error) error {
	return &ReaderError{Err: sentinel, Reader: r.Copy()}
}

func newReaderInvalidValueErr(r *StringReader, sentinel error, value string) error {
	return &multiErr{
		first:  &ReaderError{Err: sentinel, Reader: r.Copy()},
		second: &ReaderInvalidValueError{Value: value},
	}
}

// multiErr lets errors.As reach either of two wrapped error types, mirroring
// a ReaderError that is simultaneously a ReaderInvalidValueError.
type multiErr struct {
	first  error
	second error
}

func (e *multiErr) Error() string { return e.first.Error() }
func (e *multiErr) Unwrap() []error {
	return []error{e.first, e.second}
}

// CommandSyntaxError is the error type returned from Parse/Execute for any
// malformed or unresolvable command input. It always carries the reader
// positioned at the point the error was raised.
type CommandSyntaxError struct {
	Err    error
	Reader *StringReader
	Input  string
	Cursor int
}

func (e *CommandSyntaxError) Error() string {
	if e.Reader != nil {
		return e.Err.Error() + ": " + (&ReaderError{Err: e.Err, Reader: e.Reader}).contextHere()
	}
	return e.Err.Error()
}

func (e *CommandSyntaxError) Unwrap() error { return e.Err }

func syntaxErr(err error, r *StringReader) *CommandSyntaxError {
	cp := r.Copy()
	return &CommandSyntaxError{Err: err, Reader: cp, Input: cp.String, Cursor: cp.Cursor}
}

// sentinelSyntaxErr wraps sentinel as a *ReaderError (so callers can
// errors.As for the reader position) before raising it as a
// CommandSyntaxError, the form every dispatcher- and argument-type-level
// sentinel error is raised through.
func sentinelSyntaxErr(sentinel error, r *StringReader) *CommandSyntaxError {
	return syntaxErr(newReaderErr(r, sentinel), r)
}
