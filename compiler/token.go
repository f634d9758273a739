package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Instruction bytes and the token source
// ---------------------------------------------------------------------------

// The eight recognized instruction bytes. Every other byte is a syntax error.
const (
	ByteIncrement = '+'
	ByteDecrement = '-'
	ByteMoveRight = '>'
	ByteMoveLeft  = '<'
	BytePrint     = '.'
	ByteRead      = ','
	ByteLoopOpen  = '['
	ByteLoopClose = ']'
)

// TokenSource is a one-shot, left-to-right view over raw instruction bytes.
// Each byte is consumed exactly once; the parser needs no lookahead.
type TokenSource struct {
	code []byte
	pos  int
}

// NewTokenSource creates a token source over the given instruction bytes.
// The slice is not copied; callers must not mutate it during parsing.
func NewTokenSource(code []byte) *TokenSource {
	return &TokenSource{code: code}
}

// HasNext reports whether any unconsumed bytes remain.
func (s *TokenSource) HasNext() bool {
	return s.pos < len(s.code)
}

// Next consumes and returns the next instruction byte and its offset.
// It panics if the source is exhausted; callers check HasNext first.
func (s *TokenSource) Next() (byte, int) {
	if s.pos >= len(s.code) {
		panic("compiler: Next called on exhausted TokenSource")
	}
	b := s.code[s.pos]
	off := s.pos
	s.pos++
	return b, off
}

// ---------------------------------------------------------------------------
// Syntax errors
// ---------------------------------------------------------------------------

// SyntaxError reports an instruction byte outside the recognized set.
// Parsing stops at the first such byte; no execution happens afterwards.
type SyntaxError struct {
	Byte   byte // the offending byte
	Offset int  // its position in the instruction stream
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: unrecognized instruction byte %#x (%q) at offset %d",
		e.Byte, string(rune(e.Byte)), e.Offset)
}
