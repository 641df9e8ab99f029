package ptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongestPrefixPicksLongerMatch(t *testing.T) {
	n := New()
	n.Put("+", 1)
	n.Put("++", 2)

	val, length, ok := n.LongestPrefix("++x")
	require.True(t, ok)
	assert.Equal(t, 2, val)
	assert.Equal(t, 2, length)
}

func TestLongestPrefixFallsBackToShorterMatch(t *testing.T) {
	n := New()
	n.Put("+", 1)
	n.Put("++", 2)

	val, length, ok := n.LongestPrefix("+x")
	require.True(t, ok)
	assert.Equal(t, 1, val)
	assert.Equal(t, 1, length)
}

func TestLongestPrefixNoMatch(t *testing.T) {
	n := New()
	n.Put("+", 1)

	_, _, ok := n.LongestPrefix("*x")
	assert.False(t, ok)
}

func TestLongestPrefixEmptyTree(t *testing.T) {
	n := New()
	_, _, ok := n.LongestPrefix("anything")
	assert.False(t, ok)
}
