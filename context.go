package dispatch

import "context"

// ParsedArgument is one argument's parsed value together with the input
// range it was read from.
type ParsedArgument struct {
	Range  StringRange
	Result interface{}
}

// ParsedCommandNode pairs a tree node with the input range it consumed
// during a parse.
type ParsedCommandNode struct {
	Node  CommandNode
	Range StringRange
}

// RedirectModifier transforms one matched context into zero or more
// redirected contexts to continue execution from. A plain redirect's
// modifier returns exactly its input context unchanged; a fork's modifier
// may expand one context into many (or none).
type RedirectModifier interface {
	Apply(ctx *CommandContext) ([]context.Context, error)
}

// RedirectModifierFunc adapts a plain function to RedirectModifier.
type RedirectModifierFunc func(ctx *CommandContext) ([]context.Context, error)

func (f RedirectModifierFunc) Apply(ctx *CommandContext) ([]context.Context, error) { return f(ctx) }

// SingleRedirectModifier adapts a function producing exactly one resulting
// context into a RedirectModifier, the degenerate list-of-one case of the
// general, fork-capable interface.
func SingleRedirectModifier(fn func(ctx *CommandContext) (context.Context, error)) RedirectModifier {
	return RedirectModifierFunc(func(ctx *CommandContext) ([]context.Context, error) {
		next, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return []context.Context{next}, nil
	})
}

// CommandContext accumulates everything discovered while walking a parse:
// which nodes matched, their consumed ranges, the typed arguments parsed
// along the way, and (for a redirect or fork) a chain of child contexts to
// continue execution from. Source is carried as a context.Context, Go's
// idiomatic carry-anything-by-reference value, rather than as a generic
// type parameter.
type CommandContext struct {
	context.Context

	RootNode  CommandNode
	Arguments map[string]*ParsedArgument
	Nodes     []ParsedCommandNode
	Range     StringRange
	Input     string

	Command  Command
	Child    *CommandContext
	Modifier RedirectModifier
	Forks    bool

	cursor int
}

// NewCommandContext starts a fresh, empty context rooted at root.
func NewCommandContext(ctx context.Context, root CommandNode) *CommandContext {
	return &CommandContext{Context: ctx, RootNode: root}
}

// HasNodes reports whether any node has been matched yet.
func (c *CommandContext) HasNodes() bool { return len(c.Nodes) != 0 }

// Copy returns an independent copy safe to continue parsing divergent
// branches from, sharing backing Context/RootNode/Command but with its own
// Arguments map and Nodes slice.
func (c *CommandContext) Copy() *CommandContext {
	cp := &CommandContext{
		Context:  c.Context,
		RootNode: c.RootNode,
		Child:    c.Child,
		Command:  c.Command,
		Range:    c.Range.Copy(),
		Modifier: c.Modifier,
		Forks:    c.Forks,
		Input:    c.Input,
		cursor:   c.cursor,
	}
	if len(c.Arguments) != 0 {
		cp.Arguments = make(map[string]*ParsedArgument, len(c.Arguments))
		for k, v := range c.Arguments {
			cp.Arguments[k] = v
		}
	}
	if len(c.Nodes) != 0 {
		cp.Nodes = append([]ParsedCommandNode(nil), c.Nodes...)
	}
	return cp
}

// CopyFor rebinds this context onto a new Source, used by Execute to hand a
// forked/redirected branch a context produced by its RedirectModifier. The
// Child chain is shared with the original and keeps its own Source.
func (c *CommandContext) CopyFor(source context.Context) *CommandContext {
	if source == c.Context {
		return c
	}
	cp := c.Copy()
	cp.Context = source
	return cp
}

// build finalizes the context chain against the raw input string, used
// once parsing of the whole command line is complete and before Execute
// walks the chain.
func (c *CommandContext) build(input string) *CommandContext {
	var child *CommandContext
	if c.Child != nil {
		child = c.Child.build(input)
	}
	return &CommandContext{
		Context:   c.Context,
		Input:     input,
		Arguments: c.Arguments,
		Command:   c.Command,
		RootNode:  c.RootNode,
		Nodes:     c.Nodes,
		Range:     c.Range,
		Child:     child,
		Modifier:  c.Modifier,
		Forks:     c.Forks,
	}
}

func (c *CommandContext) withNode(node CommandNode, r StringRange) {
	c.Nodes = append(c.Nodes, ParsedCommandNode{Node: node, Range: r})
	c.Range = c.Range.EncompassingRange(r)
	c.Modifier = node.RedirectModifier()
	c.Forks = node.IsFork()
}

func (c *CommandContext) withArgument(name string, parsed *ParsedArgument) {
	if c.Arguments == nil {
		c.Arguments = map[string]*ParsedArgument{}
	}
	c.Arguments[name] = parsed
}

// CanUse reports whether every node matched in this context still permits
// the context's current Source. Execute does not call it; child contexts
// are not checked.
func (c *CommandContext) CanUse() bool {
	for _, n := range c.Nodes {
		if !n.Node.CanUse(c.Context) {
			return false
		}
	}
	return true
}

// FindSuggestionContext walks the node chain to find the node whose range
// the given cursor position falls within (or immediately after), returning
// the parent to collect suggestions from and the start offset suggestions
// should be anchored at. Returns ErrNoNodeBeforeCursor if cursor precedes
// every matched node (should not happen for a cursor within Range).
func (c *CommandContext) FindSuggestionContext(cursor int) (*SuggestionContext, error) {
	if c.Range.Start <= cursor {
		if c.Range.End < cursor {
			if c.Child != nil {
				return c.Child.FindSuggestionContext(cursor)
			}
			if c.HasNodes() {
				last := c.Nodes[len(c.Nodes)-1]
				return &SuggestionContext{Parent: last.Node, Start: last.Range.End + 1}, nil
			}
			return &SuggestionContext{Parent: c.RootNode, Start: c.Range.Start}, nil
		}
		prev := c.RootNode
		for _, n := range c.Nodes {
			if n.Range.Start <= cursor && cursor <= n.Range.End {
				return &SuggestionContext{Parent: prev, Start: n.Range.Start}, nil
			}
			prev = n.Node
		}
		return &SuggestionContext{Parent: prev, Start: c.Range.Start}, nil
	}
	return nil, ErrNoNodeBeforeCursor
}
