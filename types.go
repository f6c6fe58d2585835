package dispatch

import (
	"math"
	"strings"
)

// ArgumentType is a parsable argument type: Parse consumes the Arguments
// own syntax from a StringReader, and String names the type for use in
// generated usage strings.
type ArgumentType interface {
	Parse(rd *StringReader) (interface{}, error)
	String() string
}

// ArgumentTypeFuncs is a convenient ArgumentType built from plain
// functions, used both by the builtin types below and by callers defining
// their own.
type ArgumentTypeFuncs struct {
	Name    string
	ParseFn func(rd *StringReader) (interface{}, error)
	// SuggestionsFn optionally supplies completion suggestions; if nil the
	// type contributes no suggestions of its own.
	SuggestionsFn func(ctx *CommandContext, builder *SuggestionsBuilder) *Suggestions
	// ExamplesFn optionally supplies example values for ambiguity
	// detection; if nil the type contributes no examples.
	ExamplesFn func() []string
}

func (t *ArgumentTypeFuncs) Parse(rd *StringReader) (interface{}, error) { return t.ParseFn(rd) }
func (t *ArgumentTypeFuncs) String() string                              { return t.Name }
func (t *ArgumentTypeFuncs) Examples() []string {
	if t.ExamplesFn == nil {
		return nil
	}
	return t.ExamplesFn()
}

// StringType distinguishes the three string-reading strategies: a single
// unquoted word, a quotable phrase, or the rest of the input verbatim.
type StringType uint8

const (
	SingleWord StringType = iota
	QuotablePhase
	GreedyPhrase
)

func (t StringType) String() string { return "string" }

func (t StringType) Parse(rd *StringReader) (interface{}, error) {
	switch t {
	case GreedyPhrase:
		text := rd.Remaining()
		rd.Cursor = len(rd.String)
		return text, nil
	case SingleWord:
		return rd.ReadUnquotedString(), nil
	default:
		return rd.ReadString()
	}
}

// Builtin argument types.
var (
	StringWord   ArgumentType = SingleWord
	StringPhrase ArgumentType = QuotablePhase
	StringGreedy ArgumentType = GreedyPhrase

	Bool ArgumentType = &BoolArgumentType{}

	Int32  ArgumentType = &Int32ArgumentType{Min: MinInt32, Max: MaxInt32}
	Int64  ArgumentType = &Int64ArgumentType{Min: MinInt64, Max: MaxInt64}
	Uint32 ArgumentType = &Uint32ArgumentType{Min: 0, Max: MaxUint32}
	Uint64 ArgumentType = &Uint64ArgumentType{Min: 0, Max: MaxUint64}
	Int                 = Int32

	Float32 ArgumentType = &Float32ArgumentType{Min: MinFloat32, Max: MaxFloat32}
	Float64 ArgumentType = &Float64ArgumentType{Min: MinFloat64, Max: MaxFloat64}

	Char ArgumentType = &CharArgumentType{}

	// Integer, Long, Float and Double are the signed numeric types under
	// their width-agnostic names.
	Integer = Int32
	Long    = Int64
	Float   = Float32
	Double  = Float64
)

// Default minimums and maximums of builtin numeric ArgumentType values.
const (
	MinInt32   = math.MinInt32
	MaxInt32   = math.MaxInt32
	MinInt64   = math.MinInt64
	MaxInt64   = math.MaxInt64
	MaxUint32  = math.MaxUint32
	MaxUint64  = math.MaxUint64
	MinFloat32 = -math.MaxFloat32
	MaxFloat32 = math.MaxFloat32
	MinFloat64 = -math.MaxFloat64
	MaxFloat64 = math.MaxFloat64
)

// Int is the same as CommandContext.Int32.
func (c *CommandContext) Int(argumentName string) int { return int(c.Int32(argumentName)) }

// Int32 returns the parsed int32 argument, or the zero value if absent.
func (c *CommandContext) Int32(argumentName string) int32 {
	v, _ := c.argument(argumentName).(int32)
	return v
}

// Int64 returns the parsed int64 argument, or the zero value if absent.
func (c *CommandContext) Int64(argumentName string) int64 {
	v, _ := c.argument(argumentName).(int64)
	return v
}

// Uint32 returns the parsed uint32 argument, or the zero value if absent.
func (c *CommandContext) Uint32(argumentName string) uint32 {
	v, _ := c.argument(argumentName).(uint32)
	return v
}

// Uint64 returns the parsed uint64 argument, or the zero value if absent.
func (c *CommandContext) Uint64(argumentName string) uint64 {
	v, _ := c.argument(argumentName).(uint64)
	return v
}

// Bool returns the parsed bool argument, or false if absent.
func (c *CommandContext) Bool(argumentName string) bool {
	v, _ := c.argument(argumentName).(bool)
	return v
}

// Float32 returns the parsed float32 argument, or the zero value if absent.
func (c *CommandContext) Float32(argumentName string) float32 {
	v, _ := c.argument(argumentName).(float32)
	return v
}

// Float64 returns the parsed float64 argument, or the zero value if absent.
func (c *CommandContext) Float64(argumentName string) float64 {
	v, _ := c.argument(argumentName).(float64)
	return v
}

// String returns the parsed string argument, or "" if absent.
func (c *CommandContext) String(argumentName string) string {
	v, _ := c.argument(argumentName).(string)
	return v
}

// Rune returns the parsed Char argument, or the zero rune if absent.
func (c *CommandContext) Rune(argumentName string) rune {
	v, _ := c.argument(argumentName).(rune)
	return v
}

func (c *CommandContext) argument(name string) interface{} {
	if c.Arguments == nil {
		return nil
	}
	r, ok := c.Arguments[name]
	if !ok {
		return nil
	}
	return r.Result
}

// BoolArgumentType parses "true"/"false" and suggests both.
type BoolArgumentType struct{}

func (t *BoolArgumentType) String() string                             { return "bool" }
func (t *BoolArgumentType) Parse(rd *StringReader) (interface{}, error) { return rd.ReadBool() }
func (t *BoolArgumentType) Examples() []string                         { return []string{"true", "false"} }
func (t *BoolArgumentType) Suggestions(_ *CommandContext, builder *SuggestionsBuilder) *Suggestions {
	if strings.HasPrefix("true", builder.RemainingLowerCase) {
		builder.Suggest("true")
	}
	if strings.HasPrefix("false", builder.RemainingLowerCase) {
		builder.Suggest("false")
	}
	return builder.Build()
}

// Int32ArgumentType parses a bounded signed 32-bit integer.
type Int32ArgumentType struct{ Min, Max int32 }

func (t *Int32ArgumentType) String() string { return "int" }
func (t *Int32ArgumentType) Parse(rd *StringReader) (interface{}, error) {
	i, err := parseSignedInt(rd, 32, int64(t.Min), int64(t.Max))
	return int32(i), err
}

// Int64ArgumentType parses a bounded signed 64-bit integer.
type Int64ArgumentType struct{ Min, Max int64 }

func (t *Int64ArgumentType) String() string { return "int" }
func (t *Int64ArgumentType) Parse(rd *StringReader) (interface{}, error) {
	return parseSignedInt(rd, 64, t.Min, t.Max)
}

// Uint32ArgumentType parses a bounded unsigned 32-bit integer.
type Uint32ArgumentType struct{ Min, Max uint32 }

func (t *Uint32ArgumentType) String() string { return "uint" }
func (t *Uint32ArgumentType) Parse(rd *StringReader) (interface{}, error) {
	i, err := parseUnsignedInt(rd, 32, uint64(t.Min), uint64(t.Max))
	return uint32(i), err
}

// Uint64ArgumentType parses a bounded unsigned 64-bit integer.
type Uint64ArgumentType struct{ Min, Max uint64 }

func (t *Uint64ArgumentType) String() string { return "uint" }
func (t *Uint64ArgumentType) Parse(rd *StringReader) (interface{}, error) {
	return parseUnsignedInt(rd, 64, t.Min, t.Max)
}

func parseSignedInt(rd *StringReader, bitSize int, lo, hi int64) (int64, error) {
	start := rd.Cursor
	var (
		result int64
		err    error
	)
	if bitSize == 32 {
		var v int32
		v, err = rd.ReadInt32()
		result = int64(v)
	} else {
		result, err = rd.ReadInt64()
	}
	if err != nil {
		return 0, err
	}
	if result < lo {
		rd.Cursor = start
		return 0, sentinelSyntaxErr(ErrArgumentIntegerTooLow, rd)
	}
	if result > hi {
		rd.Cursor = start
		return 0, sentinelSyntaxErr(ErrArgumentIntegerTooHigh, rd)
	}
	return result, nil
}

func parseUnsignedInt(rd *StringReader, bitSize int, lo, hi uint64) (uint64, error) {
	start := rd.Cursor
	var (
		result uint64
		err    error
	)
	if bitSize == 32 {
		var v uint32
		v, err = rd.ReadUint32()
		result = uint64(v)
	} else {
		result, err = rd.ReadUint64()
	}
	if err != nil {
		return 0, err
	}
	if result < lo {
		rd.Cursor = start
		return 0, sentinelSyntaxErr(ErrArgumentIntegerTooLow, rd)
	}
	if result > hi {
		rd.Cursor = start
		return 0, sentinelSyntaxErr(ErrArgumentIntegerTooHigh, rd)
	}
	return result, nil
}

// Float32ArgumentType parses a bounded signed 32-bit float.
type Float32ArgumentType struct{ Min, Max float32 }

func (t *Float32ArgumentType) String() string { return "float" }
func (t *Float32ArgumentType) Parse(rd *StringReader) (interface{}, error) {
	f, err := parseFloat(rd, 32, float64(t.Min), float64(t.Max))
	return float32(f), err
}

// Float64ArgumentType parses a bounded signed 64-bit float.
type Float64ArgumentType struct{ Min, Max float64 }

func (t *Float64ArgumentType) String() string { return "double" }
func (t *Float64ArgumentType) Parse(rd *StringReader) (interface{}, error) {
	return parseFloat(rd, 64, t.Min, t.Max)
}

func parseFloat(rd *StringReader, bitSize int, lo, hi float64) (float64, error) {
	start := rd.Cursor
	var (
		result float64
		err    error
	)
	if bitSize == 32 {
		var v float32
		v, err = rd.ReadFloat32()
		result = float64(v)
	} else {
		result, err = rd.ReadFloat64()
	}
	if err != nil {
		return 0, err
	}
	if result < lo {
		rd.Cursor = start
		return 0, sentinelSyntaxErr(ErrArgumentFloatTooLow, rd)
	}
	if result > hi {
		rd.Cursor = start
		return 0, sentinelSyntaxErr(ErrArgumentFloatTooHigh, rd)
	}
	return result, nil
}

// CharArgumentType consumes exactly one rune.
type CharArgumentType struct{}

func (t *CharArgumentType) String() string { return "char" }
func (t *CharArgumentType) Parse(rd *StringReader) (interface{}, error) {
	return rd.ReadRune()
}

// EnumArgumentType parses a StringPhrase restricted to a fixed,
// case-insensitive set of permitted names, and suggests the names whose
// case-folded spelling prefix-matches what's typed so far.
type EnumArgumentType struct {
	Values []string

	foldedToCanonical map[string]string
}

// Enum returns an EnumArgumentType accepting exactly the given names
// (case-insensitively).
func Enum(values ...string) *EnumArgumentType {
	return &EnumArgumentType{Values: values}
}

func (t *EnumArgumentType) String() string { return "enum" }

func (t *EnumArgumentType) init() {
	if t.foldedToCanonical != nil {
		return
	}
	t.foldedToCanonical = make(map[string]string, len(t.Values))
	for _, v := range t.Values {
		t.foldedToCanonical[strings.ToLower(v)] = v
	}
}

func (t *EnumArgumentType) Parse(rd *StringReader) (interface{}, error) {
	t.init()
	start := rd.Cursor
	text, err := StringPhrase.Parse(rd)
	if err != nil {
		return nil, err
	}
	word, _ := text.(string)
	if canonical, ok := t.foldedToCanonical[strings.ToLower(word)]; ok {
		return canonical, nil
	}
	rd.Cursor = start
	return nil, syntaxErr(newReaderInvalidValueErr(rd, ErrArgumentInvalidValue, word), rd)
}

func (t *EnumArgumentType) Examples() []string { return t.Values }

func (t *EnumArgumentType) Suggestions(_ *CommandContext, builder *SuggestionsBuilder) *Suggestions {
	t.init()
	for _, v := range t.Values {
		if strings.HasPrefix(strings.ToLower(v), builder.RemainingLowerCase) {
			builder.Suggest(v)
		}
	}
	return builder.Build()
}
