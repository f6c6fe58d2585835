package dispatch

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Quote/escape syntax characters recognized by StringReader.
const (
	SyntaxDoubleQuote rune = '"'
	SyntaxSingleQuote rune = '\''
	SyntaxEscape      rune = '\\'
)

// ArgumentSeparator is the character that separates arguments/literal
// tokens in a command input string.
const ArgumentSeparator = ' '

// StringReader is a cursor over a string, the lexer primitive every
// ArgumentType.Parse implementation and the dispatcher's own tokenizer is
// built on. It never allocates a new string except where a quoted or
// escaped run forces a copy.
type StringReader struct {
	Cursor int
	String string
}

// NewStringReader returns a reader positioned at the start of s.
func NewStringReader(s string) *StringReader { return &StringReader{String: s} }

// Copy returns an independent snapshot of the reader's current state, used
// to attach reader position to error values without aliasing the live
// reader (whose Cursor keeps moving after the error is constructed).
func (r *StringReader) Copy() *StringReader {
	cp := *r
	return &cp
}

// CanRead indicates whether a next rune can be read by a call to Read.
func (r *StringReader) CanRead() bool { return r.CanReadLen(1) }

// CanReadLen indicates whether the next length runes can be read.
func (r *StringReader) CanReadLen(length int) bool { return r.Cursor+length <= len(r.String) }

// Peek returns the next rune without incrementing the Cursor.
func (r *StringReader) Peek() rune { return r.PeekOffset(0) }

// PeekOffset returns the rune at Cursor+offset without advancing.
func (r *StringReader) PeekOffset(offset int) rune { return rune(r.String[r.Cursor+offset]) }

// Read returns the next rune, advancing the Cursor past it.
func (r *StringReader) Read() rune {
	c := r.String[r.Cursor]
	r.Cursor++
	return rune(c)
}

// Skip increments the Cursor.
func (r *StringReader) Skip() { r.Cursor++ }

// SkipWhitespace advances the cursor past a run of spaces.
func (r *StringReader) SkipWhitespace() {
	for r.CanRead() && r.Peek() == ' ' {
		r.Skip()
	}
}

// Remaining returns the remaining string beginning at the current Cursor.
func (r *StringReader) Remaining() string { return r.String[r.Cursor:] }

// RemainingLen returns the remaining string length beginning at the current Cursor.
func (r *StringReader) RemainingLen() int { return len(r.String) - r.Cursor }

// ReadBool tries to read a bool.
func (r *StringReader) ReadBool() (bool, error) {
	start := r.Cursor
	if !r.CanRead() {
		return false, newReaderErr(r, ErrReaderExpectedBool)
	}
	value, err := r.ReadString()
	if err != nil {
		return false, err
	}
	if len(value) == 0 {
		r.Cursor = start
		return false, newReaderErr(r, ErrReaderExpectedBool)
	}
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	r.Cursor = start
	return false, newReaderInvalidValueErr(r, ErrReaderExpectedBool, value)
}

// ReadString returns the next quoted or unquoted string.
func (r *StringReader) ReadString() (string, error) {
	if !r.CanRead() {
		return "", nil
	}
	next := r.Peek()
	if IsQuotedStringStart(next) {
		r.Skip()
		return r.ReadStringUntil(next)
	}
	return r.ReadUnquotedString(), nil
}

// ReadStringUntil reads a string until the terminator rune, unescaping
// \\ and \<terminator> along the way.
func (r *StringReader) ReadStringUntil(terminator rune) (string, error) {
	var (
		result  strings.Builder
		escaped = false
	)
	for r.CanRead() {
		c := r.Read()
		if escaped {
			if c == terminator || c == SyntaxEscape {
				result.WriteRune(c)
				escaped = false
			} else {
				r.Cursor--
				return "", newReaderErr(r, ErrReaderInvalidEscape)
			}
		} else if c == SyntaxEscape {
			escaped = true
		} else if c == terminator {
			return result.String(), nil
		} else {
			result.WriteRune(c)
		}
	}
	return "", newReaderErr(r, ErrReaderExpectedEndOfQuote)
}

// ReadUnquotedString reads the longest run of IsAllowedInUnquotedString
// characters at the cursor.
func (r *StringReader) ReadUnquotedString() string {
	start := r.Cursor
	for r.CanRead() && IsAllowedInUnquotedString(r.Peek()) {
		r.Skip()
	}
	return r.String[start:r.Cursor]
}

// ReadQuotedString reads a quoted string. At end of input it returns an
// empty string with no error, matching ReadString's treatment of a missing
// trailing argument as empty rather than malformed.
func (r *StringReader) ReadQuotedString() (string, error) {
	if !r.CanRead() {
		return "", nil
	}
	next := r.Peek()
	if !IsQuotedStringStart(next) {
		return "", newReaderErr(r, ErrReaderExpectedStartOfQuote)
	}
	r.Skip()
	return r.ReadStringUntil(next)
}

// ReadRune reads exactly one rune, used by the Char argument type.
func (r *StringReader) ReadRune() (rune, error) {
	if !r.CanRead() {
		return 0, newReaderErr(r, ErrReaderExpectedValue)
	}
	c, size := utf8.DecodeRuneInString(r.String[r.Cursor:])
	r.Cursor += size
	return c, nil
}

// ReadInt tries to read a platform int (via ReadInt64).
func (r *StringReader) ReadInt() (int, error) {
	i, err := r.ReadInt64()
	return int(i), err
}

// ReadInt32 tries to read a signed 32-bit integer literal.
func (r *StringReader) ReadInt32() (int32, error) {
	i, err := r.readInt(32, true)
	return int32(i), err
}

// ReadInt64 tries to read a signed 64-bit integer literal.
func (r *StringReader) ReadInt64() (int64, error) { return r.readInt(64, true) }

// ReadUint32 tries to read an unsigned 32-bit integer literal (no '-').
func (r *StringReader) ReadUint32() (uint32, error) {
	i, err := r.readInt(32, false)
	return uint32(i), err
}

// ReadUint64 tries to read an unsigned 64-bit integer literal (no '-').
func (r *StringReader) ReadUint64() (uint64, error) {
	i, err := r.readInt(64, false)
	return uint64(i), err
}

// readInt scans the allowed-number character class (see IsAllowedNumber)
// with allowFloat off, so a '.' stops the scan rather than being consumed
// into the run, gated by allowNegative, and parses the resulting run with
// strconv. "12.34" therefore reads as 12, leaving ".34" unread.
func (r *StringReader) readInt(bitSize int, allowNegative bool) (int64, error) {
	start := r.Cursor
	for r.CanRead() && IsAllowedNumber(r.Peek(), false, allowNegative) {
		r.Skip()
	}
	number := r.String[start:r.Cursor]
	if number == "" {
		r.Cursor = start
		return 0, newReaderErr(r, ErrReaderExpectedInt)
	}
	var (
		i   int64
		err error
	)
	if allowNegative {
		i, err = strconv.ParseInt(number, 10, bitSize)
	} else {
		var u uint64
		u, err = strconv.ParseUint(number, 10, bitSize)
		i = int64(u)
	}
	if err != nil {
		r.Cursor = start
		return 0, newReaderInvalidValueErr(r, ErrReaderInvalidInt, number)
	}
	return i, nil
}

// ReadFloat32 tries to read a signed 32-bit float literal.
func (r *StringReader) ReadFloat32() (float32, error) {
	f, err := r.readFloat(32)
	return float32(f), err
}

// ReadFloat64 tries to read a signed 64-bit float literal.
func (r *StringReader) ReadFloat64() (float64, error) {
	return r.readFloat(64)
}

func (r *StringReader) readFloat(bitSize int) (float64, error) {
	start := r.Cursor
	for r.CanRead() && IsAllowedNumber(r.Peek(), true, true) {
		r.Skip()
	}
	number := r.String[start:r.Cursor]
	if number == "" {
		r.Cursor = start
		return 0, newReaderErr(r, ErrReaderExpectedFloat)
	}
	f, err := strconv.ParseFloat(number, bitSize)
	if err != nil {
		r.Cursor = start
		return 0, newReaderInvalidValueErr(r, ErrReaderInvalidFloat, number)
	}
	return f, nil
}

// IsAllowedNumber reports whether c may appear in a numeric literal, gated
// by whether the value may contain a decimal point (allowFloat) and a
// leading minus sign (allowNegative). Mirrors the original
// IsAllowedNumber<allow_float, allow_negative> template, expressed as two
// boolean flags rather than C++ non-type template parameters.
func IsAllowedNumber(c rune, allowFloat, allowNegative bool) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if allowFloat && c == '.' {
		return true
	}
	if allowNegative && c == '-' {
		return true
	}
	return false
}

// IsQuotedStringStart indicates whether c is the start of a quoted string.
func IsQuotedStringStart(c rune) bool {
	return c == SyntaxDoubleQuote || c == SyntaxSingleQuote
}

// IsAllowedInUnquotedString indicates whether c is an allowed rune in an
// unquoted string or literal token.
func IsAllowedInUnquotedString(c rune) bool {
	return c >= '0' && c <= '9' ||
		c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c == '_' || c == '-' ||
		c == '.' || c == '+'
}

// StringRange is a half-open [Start, End) span into the original input
// string associated with a parsed node or argument.
type StringRange struct{ Start, End int }

func NewStringRange(start, end int) StringRange { return StringRange{Start: start, End: end} }

// NewStringRangeAt returns the zero-length range [pos, pos).
func NewStringRangeAt(pos int) StringRange { return StringRange{Start: pos, End: pos} }

// IsEmpty indicates whether Start and End are equal.
func (r *StringRange) IsEmpty() bool { return r.Start == r.End }

// Copy copies the StringRange.
func (r StringRange) Copy() StringRange { return r }

// Get returns the substring of s from Start to End.
func (r *StringRange) Get(s string) string { return s[r.Start:r.End] }

// EncompassingRange returns the smallest range covering both r1 and r2.
func EncompassingRange(r1, r2 *StringRange) *StringRange {
	return &StringRange{
		Start: min(r1.Start, r2.Start),
		End:   max(r1.End, r2.End),
	}
}

// EncompassingRange returns the smallest range covering both r and other,
// the value-receiver form used when threading a running CommandContext.Range
// forward node by node.
func (r StringRange) EncompassingRange(other StringRange) StringRange {
	return StringRange{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
