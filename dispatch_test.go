package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_ParseExecute(t *testing.T) {
	const cmd = `base`
	var (
		d     Dispatcher
		input string
	)
	d.Register(Literal(cmd).Executes(CommandFunc(func(c *CommandContext) (int32, error) {
		input = c.Input
		return 42, nil
	})))

	result, err := d.ParseExecute(context.TODO(), cmd)
	require.NoError(t, err)
	require.Equal(t, int32(42), result)
	require.Equal(t, cmd, input)
}

func TestDispatcher_MergeCommands(t *testing.T) {
	var (
		d     Dispatcher
		times int
	)
	cmdFn := CommandFunc(func(c *CommandContext) (int32, error) { times++; return 0, nil })
	d.Register(Literal("base").Then(Literal("foo").Executes(cmdFn)))
	d.Register(Literal("base").Then(Literal("bar").Executes(cmdFn)))

	_, err := d.ParseExecute(context.TODO(), "base foo")
	require.NoError(t, err)
	_, err = d.ParseExecute(context.TODO(), "base bar")
	require.NoError(t, err)
	require.Equal(t, 2, times)
}

func TestDispatcher_Execute_UnknownCommand(t *testing.T) {
	var d Dispatcher
	d.Register(Literal("bar"))
	d.Register(Literal("baz"))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownCommand)
	require.Equal(t, 0, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_UnknownSubCommand(t *testing.T) {
	var (
		d     Dispatcher
		times int
	)
	cmdFn := CommandFunc(func(c *CommandContext) (int32, error) { times++; return 0, nil })
	d.Register(Literal("foo").Executes(cmdFn))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo bar")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownArgument)
	require.Equal(t, 0, times)
	require.Equal(t, 4, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_ImpermissibleCommand(t *testing.T) {
	var d Dispatcher
	d.Register(Literal("foo").Requires(func(context.Context) bool { return false }))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownCommand)
	require.Equal(t, 0, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_EmptyCommand(t *testing.T) {
	var d Dispatcher
	d.Register(Literal(""))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownCommand)
	require.Equal(t, 0, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_IncorrectLiteral(t *testing.T) {
	var (
		d     Dispatcher
		times int
	)
	cmdFn := CommandFunc(func(c *CommandContext) (int32, error) { times++; return 0, nil })
	d.Register(Literal("foo").Executes(cmdFn).Then(Literal("bar")))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo baz")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownArgument)
	require.Equal(t, 0, times)
	require.Equal(t, 4, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_AmbiguousIncorrectArgument(t *testing.T) {
	var d Dispatcher
	cmdFn := CommandFunc(func(c *CommandContext) (int32, error) { return 0, nil })

	d.Register(Literal("foo").Executes(cmdFn).
		Then(Literal("bar")).
		Then(Literal("baz")),
	)

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo unknown")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownArgument)
	require.Equal(t, 4, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_Subcommand(t *testing.T) {
	var d Dispatcher
	var input string
	cmdFn := CommandFunc(func(c *CommandContext) (int32, error) { input = c.Input; return 0, nil })
	d.Register(Literal("foo").Then(
		Literal("a"),
	).Then(
		Literal("=").Executes(cmdFn),
	).Then(
		Literal("c"),
	).Executes(cmdFn))

	_, err := d.ParseExecute(context.TODO(), "foo =")
	require.NoError(t, err)
	require.Equal(t, "foo =", input)
}

func TestDispatcher_ParseIncompleteLiteral(t *testing.T) {
	var d Dispatcher
	d.Register(Literal("foo").Then(Literal("bar")))

	parse := d.Parse(context.TODO(), "foo ")
	require.Equal(t, " ", parse.Reader.Remaining())
	require.Len(t, parse.Context.Nodes, 1)
}

func TestDispatcher_ParseIncompleteArgument(t *testing.T) {
	var d Dispatcher
	d.Register(Literal("foo").Then(Argument("bar", Int)))

	parse := d.Parse(context.TODO(), "foo ")
	require.Equal(t, " ", parse.Reader.Remaining())
	require.Len(t, parse.Context.Nodes, 1)
}

func TestDispatcher_Execute_AmbiguousParentSubcommandViaRedirect(t *testing.T) {
	var d Dispatcher
	var c1, c2 bool
	cmdFn := CommandFunc(func(c *CommandContext) (int32, error) { c1 = true; return 0, nil })
	subCmdFn := CommandFunc(func(c *CommandContext) (int32, error) {
		c2 = true
		require.Equal(t, 1, c.Int("right"))
		require.Equal(t, 2, c.Int("sub"))
		return 0, nil
	})

	r := d.Register(Literal("test").
		Then(
			Argument("incorrect", Int).Executes(cmdFn)).
		Then(
			Argument("right", Int).Then(
				Argument("sub", Int).Executes(subCmdFn),
			)),
	)

	d.Register(Literal("redirect").Redirect(r))

	_, err := d.ParseExecute(context.TODO(), "redirect 1 2")
	require.NoError(t, err)
	require.False(t, c1)
	require.True(t, c2)
}

func TestDispatcher_Execute_RedirectMultipleTimes(t *testing.T) {
	var d Dispatcher
	var cmdInput string
	cmd := CommandFunc(func(c *CommandContext) (int32, error) { cmdInput += c.Input; return 42, nil })

	concreteNode := d.Register(Literal("actual").Executes(cmd))
	redirectNode := d.Register(Literal("redirected").Redirect(&d.Root))

	const input = "redirected redirected actual"

	parse := d.Parse(context.TODO(), input)
	require.Equal(t, "redirected", parse.Context.Range.Get(input))
	require.Len(t, parse.Context.Nodes, 1)
	require.Equal(t, CommandNode(&d.Root), parse.Context.RootNode)
	require.Equal(t, redirectNode, parse.Context.Nodes[0].Node)

	child1 := parse.Context.Child
	require.NotNil(t, child1)
	require.Equal(t, "redirected", child1.Range.Get(input))
	require.Len(t, child1.Nodes, 1)
	require.Equal(t, CommandNode(&d.Root), child1.RootNode)
	require.Equal(t, child1.Range, child1.Nodes[0].Range)
	require.Equal(t, CommandNode(redirectNode), child1.Nodes[0].Node)

	child2 := child1.Child
	require.NotNil(t, child2)
	require.Equal(t, "actual", child2.Range.Get(input))
	require.Len(t, child2.Nodes, 1)
	require.Equal(t, CommandNode(&d.Root), child2.RootNode)
	require.Equal(t, child2.Range, child2.Nodes[0].Range)
	require.Equal(t, CommandNode(concreteNode), child2.Nodes[0].Node)

	result, err := d.Execute(parse)
	require.NoError(t, err)
	require.Equal(t, int32(42), result)
	require.Equal(t, input, cmdInput)
}

func TestDispatcher_Execute_Redirected(t *testing.T) {
	var d Dispatcher
	var cmdInput string
	cmd := CommandFunc(func(c *CommandContext) (int32, error) { cmdInput += c.Input; return 42, nil })
	mod := SingleRedirectModifier(func(c *CommandContext) (context.Context, error) {
		return context.Background(), nil
	})

	concreteNode := d.Register(Literal("actual").Executes(cmd))
	redirectNode := d.Register(Literal("redirected").Fork(&d.Root, mod))

	const input = "redirected actual"
	parse := d.Parse(context.TODO(), input)
	require.Equal(t, "redirected", parse.Context.Range.Get(input))
	require.Len(t, parse.Context.Nodes, 1)
	require.Equal(t, CommandNode(&d.Root), parse.Context.RootNode)
	require.Equal(t, parse.Context.Range, parse.Context.Nodes[0].Range)
	require.Equal(t, CommandNode(redirectNode), parse.Context.Nodes[0].Node)

	parent := parse.Context.Child
	require.NotNil(t, parent)
	require.Equal(t, "actual", parent.Range.Get(input))
	require.Len(t, parse.Context.Nodes, 1)
	require.Equal(t, CommandNode(&d.Root), parse.Context.RootNode)
	require.Equal(t, parent.Range, parent.Nodes[0].Range)
	require.Equal(t, CommandNode(concreteNode), parent.Nodes[0].Node)

	result, err := d.Execute(parse)
	require.NoError(t, err)
	require.Equal(t, int32(1), result)
	require.Equal(t, input, cmdInput)
}

// TestDispatcher_Execute_ForkedSumsSuccessfulForks exercises spec.md §8
// scenario 6: a fork that expands into two sources running the same
// command returns the count of successful forked commands, not the sum of
// their results.
func TestDispatcher_Execute_ForkedSumsSuccessfulForks(t *testing.T) {
	var d Dispatcher
	var runs int

	actual := d.Register(Literal("actual").Executes(CommandFunc(func(c *CommandContext) (int32, error) {
		runs++
		return 42, nil
	})))
	_ = actual

	mod := RedirectModifierFunc(func(c *CommandContext) ([]context.Context, error) {
		return []context.Context{context.Background(), context.Background()}, nil
	})
	d.Register(Literal("fork").Fork(&d.Root, mod))

	result, err := d.ParseExecute(context.TODO(), "fork actual")
	require.NoError(t, err)
	require.Equal(t, int32(2), result)
	require.Equal(t, 2, runs)
}

// TestDispatcher_Execute_ForkedSwallowsFailures confirms a failing forked
// branch neither aborts its sibling forks nor is counted as successful.
func TestDispatcher_Execute_ForkedSwallowsFailures(t *testing.T) {
	var d Dispatcher
	var runs int

	d.Register(Literal("actual").Executes(CommandFunc(func(c *CommandContext) (int32, error) {
		runs++
		if runs == 1 {
			return 0, sentinelSyntaxErr(ErrDispatcherUnknownCommand, NewStringReader(""))
		}
		return 0, nil
	})))

	mod := RedirectModifierFunc(func(c *CommandContext) ([]context.Context, error) {
		return []context.Context{context.Background(), context.Background()}, nil
	})
	d.Register(Literal("fork").Fork(&d.Root, mod))

	result, err := d.ParseExecute(context.TODO(), "fork actual")
	require.NoError(t, err)
	require.Equal(t, int32(1), result)
	require.Equal(t, 2, runs)
}

func TestDispatcher_Execute_ConsumerNotifiedPerCommand(t *testing.T) {
	var d Dispatcher
	d.Register(Literal("foo").Executes(CommandFunc(func(c *CommandContext) (int32, error) {
		return 7, nil
	})))

	type call struct {
		success bool
		result  int32
	}
	var calls []call
	d.SetConsumer(func(ctx *CommandContext, success bool, result int32) {
		calls = append(calls, call{success: success, result: result})
	})

	_, err := d.ParseExecute(context.TODO(), "foo")
	require.NoError(t, err)
	require.Equal(t, []call{{success: true, result: 7}}, calls)
}

func TestDispatcher_Execute_OrphanedSubcommand(t *testing.T) {
	var d Dispatcher
	cmd := CommandFunc(func(c *CommandContext) (int32, error) { return 0, nil })
	d.Register(Literal("foo").Then(Argument("bar", Int)).Executes(cmd))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo 5")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownCommand)
	require.Equal(t, 5, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_invalidOther(t *testing.T) {
	var d Dispatcher
	var i int
	cmd := CommandFunc(func(c *CommandContext) (int32, error) { i += 1; return 0, nil })
	wrongCmd := CommandFunc(func(c *CommandContext) (int32, error) { i -= 100; return 0, nil })
	d.Register(Literal("w").Executes(wrongCmd))
	d.Register(Literal("world").Executes(cmd))

	_, err := d.ParseExecute(context.TODO(), "world")
	require.NoError(t, err)
	require.Equal(t, 1, i)
}

func TestDispatcher_Execute_noSpaceSeparator(t *testing.T) {
	var d Dispatcher
	cmd := CommandFunc(func(c *CommandContext) (int32, error) { return 0, nil })
	d.Register(Literal("foo").Then(Argument("bar", Int)).Executes(cmd))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo$")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrDispatcherUnknownCommand)
	require.Equal(t, 0, rErr.Reader.Cursor)
}

func TestDispatcher_Execute_InvalidSubcommand(t *testing.T) {
	var d Dispatcher
	cmd := CommandFunc(func(c *CommandContext) (int32, error) { return 0, nil })
	d.Register(Literal("foo").Then(Argument("bar", Int)).Executes(cmd))

	var rErr *ReaderError
	_, err := d.ParseExecute(context.TODO(), "foo bar")
	require.True(t, errors.As(err, &rErr))
	require.ErrorIs(t, rErr, ErrReaderExpectedInt)
	require.Equal(t, 4, rErr.Reader.Cursor)
}

func TestDispatcher_Path(t *testing.T) {
	var d Dispatcher
	bar := Literal("bar").Build()
	d.Register(Literal("foo").Then(bar))

	require.Equal(t, []string{"foo", "bar"}, d.Path(bar))
}

func TestDispatcher_FindNode(t *testing.T) {
	var d Dispatcher
	bar := Literal("bar").Build()
	d.Register(Literal("foo").Then(bar))

	require.Equal(t, bar, d.FindNode("foo", "bar"))
}

func TestDispatcher_FindNode_DoesntExist(t *testing.T) {
	var d Dispatcher
	require.Nil(t, d.FindNode("foo", "bar"))
}
