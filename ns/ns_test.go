package ns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afed-lang/afed/aferr"
)

func TestDefineAnonymousLine(t *testing.T) {
	n := New(false)
	b, _, err := n.Define("1 + 2", 1)
	require.NoError(t, err)
	assert.Equal(t, "", b.Name)
	assert.Equal(t, 0, b.Arity)
}

func TestDefineLabeledBinding(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("a: 1 + 2", 1)
	require.NoError(t, err)

	b, ok := n.Get("a")
	require.True(t, ok)
	assert.False(t, b.IsForward())
	assert.Equal(t, 0, b.Arity)
}

func TestDefineWithArguments(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("f(x): x + 1", 1)
	require.NoError(t, err)

	b, ok := n.Get("f")
	require.True(t, ok)
	assert.Equal(t, 1, b.Arity)
}

func TestRedefinitionIsRejected(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("a: 1", 1)
	require.NoError(t, err)

	_, _, err = n.Define("a: 2", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, aferr.ErrRedef))
	assert.Equal(t, "a", n.StrRedef())
}

func TestForwardReferenceIsCompletedNotRedefined(t *testing.T) {
	n := New(false)
	// b refers to a before a is defined, leaving a forward-declared.
	_, _, err := n.Define("b: a + 1", 1)
	require.NoError(t, err)

	a, ok := n.Get("a")
	require.True(t, ok)
	assert.True(t, a.IsForward())

	_, _, err = n.Define("a: 5", 2)
	require.NoError(t, err)
	assert.False(t, a.IsForward())
}

func TestArityMismatchAgainstForwardDeclaration(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("b: f(1)", 1)
	require.NoError(t, err)

	_, _, err = n.Define("f(x, y): x + y", 2)
	assert.True(t, errors.Is(err, aferr.ErrArityMismatch))
}

func TestCircularDefinitionIsRejected(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("a: b + 1", 1)
	require.NoError(t, err)

	_, _, err = n.Define("b: a + 1", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, aferr.ErrCircular))
	assert.Contains(t, n.StrCirc(), "b")
	assert.Contains(t, n.StrCirc(), "a")
}

func TestSelfReferenceIsCircular(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("a: a + 1", 1)
	assert.True(t, errors.Is(err, aferr.ErrCircular))
}

func TestParseErrorLeavesForwardDeclarationsIntact(t *testing.T) {
	n := New(false)
	_, _, err := n.Define("b: c +", 1)
	require.Error(t, err)

	c, ok := n.Get("c")
	require.True(t, ok)
	assert.True(t, c.IsForward())
}
