package dispatch

import (
	"context"
	"fmt"
)

// RequireFn gates whether a source may use a node. A nil RequireFn always
// permits use.
type RequireFn func(context.Context) bool

// Command is anything runnable at the end of a matched command path. The
// returned int32 is the command's arbitrary numeric result, meaningful only
// to the caller; Dispatcher.Execute sums it across a non-forked chain and
// reports it to the registered ResultConsumer.
type Command interface {
	Run(c *CommandContext) (int32, error)
}

// CommandFunc adapts a plain function to the Command interface.
type CommandFunc func(c *CommandContext) (int32, error)

func (cf CommandFunc) Run(c *CommandContext) (int32, error) { return cf(c) }

// CommandNode is one node in the command tree: the root, a fixed literal
// token, or a typed argument slot. Every concrete node embeds Node, which
// supplies the shared bookkeeping (children, requirement, redirect,
// command, modifier, forks).
type CommandNode interface {
	Name() string
	UsageText() string
	Children() CommandNodeChildren
	Literals() map[string]*LiteralCommandNode
	Arguments() map[string]*ArgumentCommandNode
	CanUse(ctx context.Context) bool
	RelevantNodes(input *StringReader) []CommandNode
	Parse(ctx *CommandContext, rd *StringReader) error
	Redirect() CommandNode
	Command() Command
	RedirectModifier() RedirectModifier
	IsFork() bool
	AddChild(nodes ...CommandNode)
	Examples() []string
	IsValidInput(input string) bool
	CreateBuilder() NodeBuilder

	setCommand(Command)
}

// Node is the shared state every concrete CommandNode embeds.
type Node struct {
	children    CommandNodeChildren
	literals    map[string]*LiteralCommandNode
	arguments   map[string]*ArgumentCommandNode
	requirement RequireFn
	redirect    CommandNode
	command     Command
	modifier    RedirectModifier
	forks       bool
}

func (n *Node) RedirectModifier() RedirectModifier { return n.modifier }
func (n *Node) IsFork() bool                       { return n.forks }
func (n *Node) Redirect() CommandNode              { return n.redirect }
func (n *Node) Command() Command                   { return n.command }
func (n *Node) setCommand(c Command)               { n.command = c }
func (n *Node) Requirement() RequireFn             { return n.requirement }

// Children returns this node's children in registration order, the order
// usage generation and suggestion merging both rely on.
func (n *Node) Children() CommandNodeChildren {
	if n.children == nil {
		n.children = NewCommandNodeChildren()
	}
	return n.children
}

func (n *Node) Literals() map[string]*LiteralCommandNode {
	if n.literals == nil {
		n.literals = map[string]*LiteralCommandNode{}
	}
	return n.literals
}

func (n *Node) Arguments() map[string]*ArgumentCommandNode {
	if n.arguments == nil {
		n.arguments = map[string]*ArgumentCommandNode{}
	}
	return n.arguments
}

func (n *Node) CanUse(ctx context.Context) bool {
	if n.requirement == nil {
		return true
	}
	return n.requirement(ctx)
}

// AddChild merges nodes into this node's children. A child with the same
// Name as an existing one merges onto it (adopting its command if set, and
// recursively merging its own children) rather than replacing it, matching
// how repeated Then() registrations build up a shared subtree. Merging a
// literal onto an argument (or vice versa) sharing the same name is a
// programmer error, not a parse failure, and panics with
// *NodeKindMismatchError rather than silently adopting the wrong kind.
func (n *Node) AddChild(nodes ...CommandNode) {
	for _, node := range nodes {
		if _, ok := node.(*RootCommandNode); ok {
			continue
		}

		if child, ok := n.Children().Get(node.Name()); ok {
			if !sameNodeKind(child, node) {
				panic(&NodeKindMismatchError{Name: node.Name()})
			}
			if node.Command() != nil {
				child.setCommand(node.Command())
			}
			node.Children().Range(func(_ string, grandchild CommandNode) bool {
				child.AddChild(grandchild)
				return true
			})
			continue
		}

		n.Children().Put(node.Name(), node)
		switch t := node.(type) {
		case *LiteralCommandNode:
			n.Literals()[node.Name()] = t
		case *ArgumentCommandNode:
			n.Arguments()[node.Name()] = t
		}
	}
}

// sameNodeKind reports whether a and b are both literal nodes or both
// argument nodes, the merge-compatibility check spec's invariant (ii) and
// original_source's CommandNode::addChild require.
func sameNodeKind(a, b CommandNode) bool {
	switch a.(type) {
	case *LiteralCommandNode:
		_, ok := b.(*LiteralCommandNode)
		return ok
	case *ArgumentCommandNode:
		_, ok := b.(*ArgumentCommandNode)
		return ok
	default:
		return false
	}
}

// RelevantNodes narrows the children to try for the text at the reader's
// current cursor: if a literal child's spelling matches exactly, only that
// literal is tried (literal shadows argument); otherwise every argument
// child is a candidate.
func (n *Node) RelevantNodes(input *StringReader) []CommandNode {
	if len(n.literals) != 0 {
		cursor := input.Cursor
		for input.CanRead() && input.Peek() != ArgumentSeparator {
			input.Skip()
		}
		text := input.String[cursor:input.Cursor]
		input.Cursor = cursor
		if literal, ok := n.literals[text]; ok {
			return []CommandNode{literal}
		}
	}
	nodes := make([]CommandNode, 0, len(n.arguments))
	for _, a := range n.arguments {
		nodes = append(nodes, a)
	}
	return nodes
}

// RootCommandNode is the invisible node every registered command hangs off.
// It has no name, no usage text, and can never itself be parsed.
type RootCommandNode struct{ Node }

func (r *RootCommandNode) String() string    { return "<root>" }
func (r *RootCommandNode) Name() string      { return "" }
func (r *RootCommandNode) UsageText() string { return "" }
func (r *RootCommandNode) Parse(*CommandContext, *StringReader) error {
	return nil
}
func (r *RootCommandNode) Examples() []string       { return nil }
func (r *RootCommandNode) IsValidInput(string) bool { return false }

// IncorrectLiteralError is returned when a literal node's fixed spelling
// does not match the input at the cursor.
type IncorrectLiteralError struct{ Literal string }

func (e *IncorrectLiteralError) Error() string { return fmt.Sprintf("incorrect literal %q", e.Literal) }

// LiteralCommandNode matches one fixed, case-sensitive keyword.
type LiteralCommandNode struct {
	Node
	Literal string

	cachedLiteralLowerCase string
}

func (n *LiteralCommandNode) String() string    { return n.Literal }
func (n *LiteralCommandNode) Name() string      { return n.Literal }
func (n *LiteralCommandNode) UsageText() string { return n.Literal }

func (n *LiteralCommandNode) Parse(ctx *CommandContext, rd *StringReader) error {
	start := rd.Cursor
	end := n.parse(rd)
	if end <= -1 {
		return syntaxErr(&IncorrectLiteralError{Literal: n.Literal}, rd)
	}
	ctx.withNode(n, StringRange{Start: start, End: end})
	return nil
}

func (n *LiteralCommandNode) parse(rd *StringReader) int {
	start := rd.Cursor
	if rd.CanReadLen(len(n.Literal)) {
		end := start + len(n.Literal)
		if rd.String[start:end] == n.Literal {
			rd.Cursor = end
			if !rd.CanRead() || rd.Peek() == ArgumentSeparator {
				return end
			}
			rd.Cursor = start
		}
	}
	return -1
}

// Examples returns the literal's own spelling, its one possible completion.
func (n *LiteralCommandNode) Examples() []string { return []string{n.Literal} }

// IsValidInput reports whether input parses as exactly this literal, by
// re-running Parse against a fresh reader over input alone.
func (n *LiteralCommandNode) IsValidInput(input string) bool {
	rd := NewStringReader(input)
	return n.parse(rd) > -1
}

const (
	UsageArgumentOpen  rune = '<'
	UsageArgumentClose rune = '>'
)

// ArgumentCommandNode matches one value of a typed ArgumentType.
type ArgumentCommandNode struct {
	Node
	name    string
	argType ArgumentType

	customSuggestions SuggestionProvider
}

func (a *ArgumentCommandNode) Parse(ctx *CommandContext, rd *StringReader) error {
	start := rd.Cursor
	result, err := a.argType.Parse(rd)
	if err != nil {
		return err
	}
	parsed := &ParsedArgument{Range: StringRange{Start: start, End: rd.Cursor}, Result: result}
	ctx.withArgument(a.name, parsed)
	ctx.withNode(a, parsed.Range)
	return nil
}

func (a *ArgumentCommandNode) String() string     { return a.name }
func (a *ArgumentCommandNode) Name() string       { return a.name }
func (a *ArgumentCommandNode) Type() ArgumentType { return a.argType }

// CustomSuggestions returns the explicit SuggestionProvider set via
// Suggests(), or nil if this argument suggests from its type alone.
func (a *ArgumentCommandNode) CustomSuggestions() SuggestionProvider { return a.customSuggestions }

func (a *ArgumentCommandNode) UsageText() string {
	return fmt.Sprintf("%c%s%c", UsageArgumentOpen, a.name, UsageArgumentClose)
}

// Examples delegates to the argument type's own example values, or returns
// nil if the type doesn't advertise any.
func (a *ArgumentCommandNode) Examples() []string {
	if p, ok := a.argType.(interface{ Examples() []string }); ok {
		return p.Examples()
	}
	return nil
}

// IsValidInput reports whether input parses fully (or up to a trailing
// space) as this argument's type, swallowing any parse error as "no".
func (a *ArgumentCommandNode) IsValidInput(input string) bool {
	rd := NewStringReader(input)
	_, err := a.argType.Parse(rd)
	if err != nil {
		return false
	}
	return !rd.CanRead() || rd.Peek() == ArgumentSeparator
}
