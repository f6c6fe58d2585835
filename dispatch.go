package dispatch

import (
	"context"
	"sync/atomic"
)

// Dispatcher is the command dispatch tree. The zero value is ready to use:
// Register commands onto it, then Parse and Execute (or ParseExecute) input
// lines against it.
type Dispatcher struct {
	Root RootCommandNode

	generation uint64
	consumer   ResultConsumer
}

// ResultConsumer is notified once for every command run during Execute,
// including once per successful or failed forked sub-command, in addition
// to Execute's own returned int32. success is false and result is 0 for a
// command or redirect modifier that returned an error.
type ResultConsumer func(ctx *CommandContext, success bool, result int32)

// SetConsumer registers fn to receive every ResultConsumer notification
// from subsequent Execute calls. The zero value (no consumer set) is a
// silent no-op.
func (d *Dispatcher) SetConsumer(fn ResultConsumer) { d.consumer = fn }

func (d *Dispatcher) notify(ctx *CommandContext, success bool, result int32) {
	if d.consumer != nil {
		d.consumer(ctx, success, result)
	}
}

// Register adds the given command trees as children of Root, merging onto
// any existing node of the same name (see Node.AddChild). Each call bumps
// the Dispatcher's generation counter, the signal a ParseCache fronting
// this Dispatcher uses to discard entries computed against an older tree.
//
// commands takes LiteralNodeBuilder rather than the concrete
// *LiteralArgumentBuilder so that a chained builder expression (whose last
// call, e.g. Then/Executes/Requires, returns the interface) can be passed
// straight through without an intermediate type assertion.
func (d *Dispatcher) Register(commands ...LiteralNodeBuilder) *LiteralCommandNode {
	var last *LiteralCommandNode
	for _, c := range commands {
		built := c.BuildLiteral()
		d.Root.AddChild(built)
		last = built
	}
	atomic.AddUint64(&d.generation, 1)
	return last
}

// generationOf returns the Dispatcher's current generation counter.
func (d *Dispatcher) generationOf() uint64 { return atomic.LoadUint64(&d.generation) }

// ParseExecute parses and immediately executes command, the common case
// when a caller has no use for the intermediate ParseResults (e.g. no
// caching, no completion support).
func (d *Dispatcher) ParseExecute(ctx context.Context, command string) (int32, error) {
	return d.Execute(d.Parse(ctx, command))
}

// Execute runs a previously parsed command line. Root and intermediate
// nodes along a fork/redirect chain each get their own CommandContext;
// Execute walks the chain breadth-first so a fork's several redirected
// contexts all execute before the next level down is visited.
//
// The returned int32 is the sum of every executed Command's result, unless
// the walk passed through a forked node, in which case it is instead the
// count of forked sub-commands that succeeded. SetConsumer registers a
// callback notified once per command (or forked sub-command) in addition
// to this return value.
//
// A Command or redirect modifier that returns an error aborts the walk
// immediately, unless the error occurred while executing on behalf of a
// forked branch, in which case the remaining forked branches still run
// (one bad fork target shouldn't take down its siblings).
func (d *Dispatcher) Execute(parse *ParseResults) (int32, error) {
	if parse.Reader.CanRead() {
		switch {
		case len(parse.Errs) == 1:
			return 0, parse.firstErr()
		case parse.Context.Range.IsEmpty():
			return 0, sentinelSyntaxErr(ErrDispatcherUnknownCommand, parse.Reader)
		default:
			return 0, sentinelSyntaxErr(ErrDispatcherUnknownArgument, parse.Reader)
		}
	}

	var result int32
	var successfulForks int32
	forked := false
	foundCommand := false
	original := parse.Context.build(parse.Reader.String)
	contexts := []*CommandContext{original}
	var next []*CommandContext

	for contexts != nil {
		for _, theContext := range contexts {
			child := theContext.Child
			if child != nil {
				forked = forked || theContext.Forks
				if child.HasNodes() {
					foundCommand = true
					modifier := theContext.Modifier
					if modifier == nil {
						if theContext.Context == child.Context {
							next = append(next, child)
						} else {
							next = append(next, child.CopyFor(theContext.Context))
						}
						continue
					}
					results, err := modifier.Apply(theContext)
					if err != nil {
						d.notify(theContext, false, 0)
						if !forked {
							return 0, err
						}
						continue
					}
					for _, source := range results {
						next = append(next, child.CopyFor(source))
					}
				}
			} else if theContext.Command != nil {
				foundCommand = true
				value, err := theContext.Command.Run(theContext)
				if err != nil {
					d.notify(theContext, false, 0)
					if !forked {
						return 0, err
					}
					continue
				}
				result += value
				successfulForks++
				d.notify(theContext, true, value)
			}
		}

		contexts = next
		next = nil
	}

	if !foundCommand {
		d.notify(original, false, 0)
		return 0, sentinelSyntaxErr(ErrDispatcherUnknownCommand, parse.Reader)
	}
	if forked {
		return successfulForks, nil
	}
	return result, nil
}

// FindNode walks path from Root, returning the node at the end of it, or
// nil if path does not name a registered command.
func (d *Dispatcher) FindNode(path ...string) CommandNode {
	var node CommandNode = &d.Root
	for _, p := range path {
		child, ok := node.Children().Get(p)
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// Path builds the path of names from Root down to target, the inverse of
// FindNode, used to report a node's location (e.g. in error messages or a
// help command) without the caller needing to track it during Register.
func (d *Dispatcher) Path(target CommandNode) []string {
	var path []string
	d.findPathTo(&d.Root, target, &path)
	return path
}

func (d *Dispatcher) findPathTo(node CommandNode, target CommandNode, path *[]string) bool {
	if node == target {
		return true
	}
	found := false
	node.Children().Range(func(name string, child CommandNode) bool {
		*path = append(*path, name)
		if d.findPathTo(child, target, path) {
			found = true
			return false
		}
		*path = (*path)[:len(*path)-1]
		return true
	})
	return found
}
