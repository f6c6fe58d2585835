package dispatch

import (
	"context"
	"sort"
)

// Parse parses a given command.
//
// The result of this method can be cached, and it is advised to do so where
// appropriate. Parsing is often the most expensive step, and this allows
// you to essentially "precompile" a command if it will be run often.
//
// If the command passes through a node that is CommandNode.IsFork then the
// resulting context will be marked as 'forked'. Forked contexts may contain
// child contexts, which may be modified by the RedirectModifier attached to
// the fork.
//
// Parsing a command can never fail, you will always be provided with a new
// ParseResults. However, that does not mean that it will always parse into
// a valid command. You should inspect the returned results to check for
// validity. If ParseResults.Reader.CanRead() then it did not finish parsing
// successfully. You can use that position as an indicator to the user where
// the command stopped being valid. You may inspect ParseResults.Errs if you
// know the parse failed, as it will explain why it could not find any
// valid commands. It may contain multiple errors, one for each "potential
// node" that it could have visited, explaining why it did not go down that
// node.
//
// When you eventually call Dispatcher.Execute with the result of this
// method, the above error checking will occur. You only need to inspect it
// yourself if you wish to handle that yourself.
func (d *Dispatcher) Parse(ctx context.Context, command string) *ParseResults {
	return d.ParseReader(ctx, NewStringReader(command))
}

// ParseReader parses a given command within a reader, honoring whatever
// StringReader.Cursor offset the reader already has.
func (d *Dispatcher) ParseReader(ctx context.Context, command *StringReader) *ParseResults {
	root := NewCommandContext(ctx, &d.Root)
	root.Range = StringRange{Start: command.Cursor, End: command.Cursor}
	return d.parseNodes(command, &d.Root, root)
}

// ParseResults stores the parse results returned by Dispatcher.Parse.
type ParseResults struct {
	Context *CommandContext
	Reader  *StringReader
	Errs    map[CommandNode]error
}

func (r *ParseResults) firstErr() error {
	for _, err := range r.Errs {
		return err
	}
	return nil
}

func (d *Dispatcher) parseNodes(originalReader *StringReader, node CommandNode, ctxSoFar *CommandContext) *ParseResults {
	errs := map[CommandNode]error{}
	var potentials []*ParseResults
	cursor := originalReader.Cursor

	for _, child := range node.RelevantNodes(originalReader) {
		if !child.CanUse(ctxSoFar) {
			continue
		}
		ctx := ctxSoFar.Copy()
		rd := &StringReader{Cursor: originalReader.Cursor, String: originalReader.String}

		err := child.Parse(ctx, rd)
		if err == nil && rd.CanRead() && rd.Peek() != ArgumentSeparator {
			err = sentinelSyntaxErr(ErrDispatcherExpectedArgumentSeparator, rd)
		}
		if err != nil {
			errs[child] = err
			rd.Cursor = cursor
			continue
		}

		ctx.Command = child.Command()
		redirect := child.Redirect()
		wantRead := 1
		if redirect == nil {
			wantRead = 2
		}
		if rd.CanReadLen(wantRead) {
			rd.Skip()
			if redirect != nil {
				childCtx := NewCommandContext(ctx, redirect)
				childCtx.cursor = rd.Cursor
				childCtx.Range = StringRange{Start: rd.Cursor, End: rd.Cursor}
				parse := d.parseNodes(rd, redirect, childCtx)
				ctx.Child = parse.Context
				return &ParseResults{Context: ctx, Reader: parse.Reader, Errs: parse.Errs}
			}
			potentials = append(potentials, d.parseNodes(rd, child, ctx))
		} else {
			potentials = append(potentials, &ParseResults{Context: ctx, Reader: rd})
		}
	}

	if len(potentials) != 0 {
		if len(potentials) > 1 {
			sort.SliceStable(potentials, func(i, j int) bool {
				a, b := potentials[i], potentials[j]
				if !a.Reader.CanRead() && b.Reader.CanRead() {
					return true
				}
				if a.Reader.CanRead() && !b.Reader.CanRead() {
					return false
				}
				if len(a.Errs) == 0 && len(b.Errs) != 0 {
					return true
				}
				if len(a.Errs) != 0 && len(b.Errs) == 0 {
					return false
				}
				return false
			})
		}
		return potentials[0]
	}

	return &ParseResults{Context: ctxSoFar, Reader: originalReader, Errs: errs}
}
