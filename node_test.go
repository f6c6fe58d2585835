package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNode_AddChild_KindMismatchPanics(t *testing.T) {
	var root RootCommandNode
	root.AddChild(Literal("foo").Build())

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, ErrNodeKindMismatch))
		var kindErr *NodeKindMismatchError
		require.True(t, errors.As(err, &kindErr))
		require.Equal(t, "foo", kindErr.Name)
	}()

	root.AddChild(Argument("foo", StringWord).Build())
}

func TestNode_AddChild_SameKindMerges(t *testing.T) {
	var root RootCommandNode
	root.AddChild(Literal("foo").Then(Literal("bar")).Build())
	root.AddChild(Literal("foo").Then(Literal("baz")).Build())

	foo, ok := root.Children().Get("foo")
	require.True(t, ok)
	require.Equal(t, 2, foo.Children().Size())
}
