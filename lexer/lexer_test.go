package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerAdvanceTracksLines(t *testing.T) {
	s := New("ab\ncd\nef", 1)
	assert.Equal(t, byte('a'), s.Peek())
	s.Advance(3)
	assert.Equal(t, 2, s.Line())
	assert.Equal(t, byte('c'), s.Peek())
	s.Advance(3)
	assert.Equal(t, 3, s.Line())
	assert.Equal(t, "ef", s.Rest())
}

func TestScannerPeekAtEOF(t *testing.T) {
	s := New("a", 1)
	assert.Equal(t, byte('a'), s.PeekAt(0))
	assert.Equal(t, byte(0), s.PeekAt(1))
	assert.Equal(t, byte(0), s.PeekAt(5))
	s.Advance(1)
	assert.True(t, s.AtEOF())
	assert.Equal(t, byte(0), s.Peek())
}

func TestSkipBlanksStopsAtNewline(t *testing.T) {
	s := New("  \t x\n", 1)
	s.SkipBlanks()
	assert.Equal(t, byte('x'), s.Peek())
}

func TestSkipBlanksAndNewlinesConsumesNewline(t *testing.T) {
	s := New(" \n\t\n x", 1)
	s.SkipBlanksAndNewlines()
	assert.Equal(t, byte('x'), s.Peek())
	assert.Equal(t, 3, s.Line())
}

func TestScanWord(t *testing.T) {
	s := New("foo_Bar2 + 1", 1)
	word, ok := s.ScanWord()
	require.True(t, ok)
	assert.Equal(t, "foo_Bar2", word)
	assert.Equal(t, byte(' '), s.Peek())
}

func TestScanWordFailsOnDigitStart(t *testing.T) {
	s := New("2abc", 1)
	_, ok := s.ScanWord()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Pos())
}

func TestSkipComment(t *testing.T) {
	s := New("# a comment\nnext", 1)
	assert.True(t, s.SkipComment())
	assert.Equal(t, byte('\n'), s.Peek())
	assert.False(t, s.SkipComment())
}

func TestIsIdentStartAndPart(t *testing.T) {
	assert.True(t, IsIdentStart('_'))
	assert.True(t, IsIdentStart('a'))
	assert.False(t, IsIdentStart('1'))
	assert.True(t, IsIdentPart('1'))
}
