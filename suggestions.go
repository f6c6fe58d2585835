package dispatch

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
)

// CancelToken is the cooperative cancellation handle for
// CompletionSuggestionsCursorCancelable: Cancel is safe to call
// concurrently from another goroutine while a suggestion collection is in
// flight. Checked only between sibling suggestion collections, never
// preemptively, so a single slow SuggestionProvider still runs to
// completion. A nil *CancelToken is never cancelled.
type CancelToken struct {
	cancelled atomic.Bool
}

// Cancel marks the token as cancelled.
func (c *CancelToken) Cancel() { c.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called.
func (c *CancelToken) Cancelled() bool { return c != nil && c.cancelled.Load() }

// SuggestionProvider supplies Suggestions for a partial argument. A
// CommandNode's own argument type, or an explicit Suggests() override,
// implements this to add completion support.
type SuggestionProvider interface {
	Suggestions(*CommandContext, *SuggestionsBuilder) *Suggestions
}

// SuggestionProviderFunc adapts a plain function to SuggestionProvider.
type SuggestionProviderFunc func(*CommandContext, *SuggestionsBuilder) *Suggestions

func (f SuggestionProviderFunc) Suggestions(c *CommandContext, b *SuggestionsBuilder) *Suggestions {
	return f(c, b)
}

// ProvideSuggestions returns i's Suggestions if it implements
// SuggestionProvider, or the empty set otherwise.
func ProvideSuggestions(i interface{}, ctx *CommandContext, builder *SuggestionsBuilder) *Suggestions {
	if i == nil {
		return emptySuggestions
	}
	if p, ok := i.(SuggestionProvider); ok {
		return p.Suggestions(ctx, builder)
	}
	return emptySuggestions
}

// CanProvideSuggestions reports whether i implements SuggestionProvider.
func CanProvideSuggestions(i interface{}) bool {
	if i == nil {
		return false
	}
	_, ok := i.(SuggestionProvider)
	return ok
}

// Suggestions are completion suggestions anchored to a range of the input.
type Suggestions struct {
	Range       StringRange
	Suggestions []*Suggestion
}

// Suggestion is one completion suggestion.
type Suggestion struct {
	Range   StringRange
	Text    string
	Tooltip fmt.Stringer
}

// SuggestionContext names the node whose children should contribute
// suggestions, and the offset in the input those suggestions replace from.
type SuggestionContext struct {
	Parent CommandNode
	Start  int
}

// SuggestionsBuilder accumulates Suggestion values for a single node's
// Suggestions call.
type SuggestionsBuilder struct {
	Input              string
	InputLowerCase     string
	Start              int
	Remaining          string
	RemainingLowerCase string
	Result             []*Suggestion
}

// NewSuggestionsBuilder constructs a builder for input, anchored at start.
func NewSuggestionsBuilder(input string, start int) *SuggestionsBuilder {
	lower := strings.ToLower(input)
	return &SuggestionsBuilder{
		Input:              input,
		InputLowerCase:     lower,
		Start:              start,
		Remaining:          input[start:],
		RemainingLowerCase: lower[start:],
	}
}

// Suggest adds a textual completion. A suggestion equal to what's already
// typed is dropped (there is nothing to complete).
func (b *SuggestionsBuilder) Suggest(text string) *SuggestionsBuilder {
	if text != b.Remaining {
		b.Result = append(b.Result, &Suggestion{Range: StringRange{Start: b.Start, End: len(b.Input)}, Text: text})
	}
	return b
}

// SuggestWithTooltip is Suggest with an attached tooltip.
func (b *SuggestionsBuilder) SuggestWithTooltip(text string, tooltip fmt.Stringer) *SuggestionsBuilder {
	if text != b.Remaining {
		b.Result = append(b.Result, &Suggestion{Range: StringRange{Start: b.Start, End: len(b.Input)}, Text: text, Tooltip: tooltip})
	}
	return b
}

// Build finalizes the builder into a Suggestions value.
func (b *SuggestionsBuilder) Build() *Suggestions { return CreateSuggestion(b.Input, b.Result) }

// Restart returns a fresh builder over the same input/start, discarding any
// suggestions accumulated so far.
func (b *SuggestionsBuilder) Restart() *SuggestionsBuilder { return NewSuggestionsBuilder(b.Input, b.Start) }

// CompletionSuggestions returns suggestions for what comes next after a
// fully parsed input string.
func (d *Dispatcher) CompletionSuggestions(parse *ParseResults) (*Suggestions, error) {
	return d.CompletionSuggestionsCursor(parse, len(parse.Reader.String))
}

// CompletionSuggestionsCursor returns suggestions for what comes next,
// anchored at an arbitrary cursor position within the parsed input
// (supporting completion mid-string, not just at the end).
func (d *Dispatcher) CompletionSuggestionsCursor(parse *ParseResults, cursor int) (*Suggestions, error) {
	return d.CompletionSuggestionsCursorCancelable(parse, cursor, nil)
}

// CompletionSuggestionsCursorCancelable is CompletionSuggestionsCursor with
// an opt-in CancelToken: if cancel.Cancelled() between two sibling
// suggestion collections, the merge short-circuits and returns only the
// suggestions gathered so far, rather than collecting every child.
func (d *Dispatcher) CompletionSuggestionsCursorCancelable(parse *ParseResults, cursor int, cancel *CancelToken) (*Suggestions, error) {
	ctx := parse.Context

	nodeBeforeCursor, err := ctx.FindSuggestionContext(cursor)
	if err != nil {
		return nil, err
	}
	parent := nodeBeforeCursor.Parent
	start := min(nodeBeforeCursor.Start, cursor)

	fullInput := parse.Reader.String
	truncatedInput := fullInput[:cursor]
	builtCtx := ctx.build(truncatedInput)

	children := parent.Children()
	all := make([]*Suggestions, 0, children.Size())
	children.Range(func(_ string, node CommandNode) bool {
		if cancel.Cancelled() {
			return false
		}
		if !CanProvideSuggestions(node) {
			return true
		}
		builder := NewSuggestionsBuilder(truncatedInput, start)
		all = append(all, ProvideSuggestions(node, builtCtx, builder))
		return true
	})

	return MergeSuggestions(fullInput, all), nil
}

// MergeSuggestions combines several Suggestions sets into one, deduplicated
// by text and re-sorted as a whole.
func MergeSuggestions(command string, input []*Suggestions) *Suggestions {
	if len(input) == 0 {
		return emptySuggestions
	}
	if len(input) == 1 {
		return input[0]
	}

	seen := make(map[string]struct{}, len(input))
	a := make([]*Suggestion, 0, len(input))
	for _, suggestions := range input {
		for _, suggestion := range suggestions.Suggestions {
			key := strings.ToLower(suggestion.Text)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				a = append(a, suggestion)
			}
		}
	}
	return CreateSuggestion(command, a)
}

// CreateSuggestion builds a Suggestions value from a set of individual
// suggestions, expanding each to the encompassing range and ordering the
// result by the case-folded text.
func CreateSuggestion(command string, suggestions []*Suggestion) *Suggestions {
	if len(suggestions) == 0 {
		return emptySuggestions
	}
	start := math.MaxInt32
	end := math.MinInt32
	for _, suggestion := range suggestions {
		start = min(suggestion.Range.Start, start)
		end = max(suggestion.Range.End, end)
	}
	strRange := StringRange{Start: start, End: end}
	seen := make(map[string]struct{}, len(suggestions))
	a := make([]*Suggestion, 0, len(suggestions))
	for _, suggestion := range suggestions {
		key := strings.ToLower(suggestion.Text)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			a = append(a, suggestion.Expand(command, strRange))
		}
	}
	// Iteration order is the sort order of the case-folded text. A
	// sort.Slice "less" must be a strict weak ordering; folding then
	// comparing case-sensitively (rather than testing fold-equality) is
	// what actually produces one.
	sort.SliceStable(a, func(i, j int) bool {
		return strings.ToLower(a[i].Text) < strings.ToLower(a[j].Text)
	})
	return &Suggestions{Range: strRange, Suggestions: a}
}

// Expand rewrites the suggestion's text to stand in for the whole
// encompassing range, padding with the original command text on either side
// where this suggestion's own range is narrower than the target range.
func (s *Suggestion) Expand(command string, r StringRange) *Suggestion {
	if r == s.Range {
		return s
	}
	var sb strings.Builder
	if r.Start < s.Range.Start {
		sb.WriteString(command[r.Start:s.Range.Start])
	}
	sb.WriteString(s.Text)
	if r.End > s.Range.End {
		sb.WriteString(command[s.Range.End:r.End])
	}
	return &Suggestion{Range: r, Text: sb.String(), Tooltip: s.Tooltip}
}

var emptySuggestions = &Suggestions{}

// Suggestions implements SuggestionProvider for an argument node: custom
// suggestions override the argument type's own, if set.
func (a *ArgumentCommandNode) Suggestions(ctx *CommandContext, builder *SuggestionsBuilder) *Suggestions {
	if a.customSuggestions != nil {
		return a.customSuggestions.Suggestions(ctx, builder)
	}
	return ProvideSuggestions(a.argType, ctx, builder)
}

// Suggestions implements SuggestionProvider for a literal node: the
// literal's own spelling, if it prefix-matches what's typed so far.
func (n *LiteralCommandNode) Suggestions(_ *CommandContext, builder *SuggestionsBuilder) *Suggestions {
	if n.cachedLiteralLowerCase == "" {
		n.cachedLiteralLowerCase = strings.ToLower(n.Literal)
	}
	if strings.HasPrefix(n.cachedLiteralLowerCase, builder.RemainingLowerCase) {
		return builder.Suggest(n.Literal).Build()
	}
	return emptySuggestions
}

// Suggestions implements SuggestionProvider for ArgumentTypeFuncs, calling
// through to the optional SuggestionsFn hook.
func (t *ArgumentTypeFuncs) Suggestions(ctx *CommandContext, builder *SuggestionsBuilder) *Suggestions {
	if t.SuggestionsFn == nil {
		return emptySuggestions
	}
	return t.SuggestionsFn(ctx, builder)
}
