// Package lexer implements the low-level character cursor the shunting-yard
// parser drives directly, rather than a two-stage lexer->token-stream
// pipeline.
//
// The source grammar needs context to tokenize correctly (whether a `-`
// is unary or binary depends on whether the previous token behaved as a
// value; newlines terminate an expression outside parentheses but are
// plain whitespace inside them), so package parser owns token
// classification. This package only owns the byte-at-a-time cursor
// mechanics, following Kong's lexer.Lexer in shape (input/position/
// readPosition/ch, readChar/peekChar) but exposing them instead of hiding
// them behind NextToken, since the parser needs to try several
// classifications (value literal, operator prefix tree, word) at the same
// position before committing to one.
package lexer

// Scanner is a cursor over a document's remaining source text, tracking
// the current line number for diagnostics.
type Scanner struct {
	input string
	pos   int
	line  int
}

// New returns a Scanner positioned at the start of input, reporting
// startLine as the line number of input's first byte.
func New(input string, startLine int) *Scanner {
	return &Scanner{input: input, line: startLine}
}

// Pos returns the current byte offset into the original input.
func (s *Scanner) Pos() int { return s.pos }

// Line returns the 1-based line number of the current position.
func (s *Scanner) Line() int { return s.line }

// Rest returns the unconsumed suffix of the input.
func (s *Scanner) Rest() string { return s.input[s.pos:] }

// AtEOF reports whether the cursor has consumed all input.
func (s *Scanner) AtEOF() bool { return s.pos >= len(s.input) }

// Peek returns the byte at the cursor, or 0 at EOF.
func (s *Scanner) Peek() byte {
	if s.AtEOF() {
		return 0
	}
	return s.input[s.pos]
}

// PeekAt returns the byte n positions ahead of the cursor, or 0 past EOF.
func (s *Scanner) PeekAt(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos+n]
}

// Advance consumes n bytes, tracking line numbers as newlines are passed.
func (s *Scanner) Advance(n int) {
	end := s.pos + n
	if end > len(s.input) {
		end = len(s.input)
	}
	for i := s.pos; i < end; i++ {
		if s.input[i] == '\n' {
			s.line++
		}
	}
	s.pos = end
}

// SkipBlanks consumes spaces, tabs and carriage returns, never newlines: used outside
// parentheses, where a bare newline must remain visible as the end of the
// expression.
func (s *Scanner) SkipBlanks() {
	for s.Peek() == ' ' || s.Peek() == '\t' || s.Peek() == '\r' {
		s.Advance(1)
	}
}

// SkipBlanksAndNewlines additionally consumes newlines: used inside an
// open parenthesis, per the grammar's "newlines inside ( … ) are
// whitespace."
func (s *Scanner) SkipBlanksAndNewlines() {
	for {
		switch s.Peek() {
		case ' ', '\t', '\r', '\n':
			s.Advance(1)
		default:
			return
		}
	}
}

// IsIdentStart reports whether b can begin a word-class token.
func IsIdentStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// IsIdentPart reports whether b can continue a word-class token.
func IsIdentPart(b byte) bool {
	return IsIdentStart(b) || ('0' <= b && b <= '9')
}

// ScanWord consumes a maximal `[A-Za-z_][A-Za-z0-9_]*` token at the
// cursor. ok is false (and nothing is consumed) if the cursor isn't
// positioned at a valid identifier start.
func (s *Scanner) ScanWord() (word string, ok bool) {
	if !IsIdentStart(s.Peek()) {
		return "", false
	}
	start := s.pos
	for IsIdentPart(s.Peek()) {
		s.Advance(1)
	}
	return s.input[start:s.pos], true
}

// SkipComment consumes a `#`-to-end-of-line comment if the cursor is
// positioned at one, reporting whether it did.
func (s *Scanner) SkipComment() bool {
	if s.Peek() != '#' {
		return false
	}
	for !s.AtEOF() && s.Peek() != '\n' {
		s.Advance(1)
	}
	return true
}
