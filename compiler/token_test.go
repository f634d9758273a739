package compiler

import "testing"

// ---------------------------------------------------------------------------
// TokenSource consumption
// ---------------------------------------------------------------------------

func TestTokenSourceConsumesInOrder(t *testing.T) {
	src := NewTokenSource([]byte("+-><"))

	want := []byte{'+', '-', '>', '<'}
	for i, wb := range want {
		if !src.HasNext() {
			t.Fatalf("HasNext() = false before byte %d", i)
		}
		b, off := src.Next()
		if b != wb {
			t.Errorf("Next() byte %d = %q, want %q", i, b, wb)
		}
		if off != i {
			t.Errorf("Next() offset %d = %d, want %d", i, off, i)
		}
	}

	if src.HasNext() {
		t.Error("HasNext() = true after consuming all bytes")
	}
}

func TestTokenSourceEmpty(t *testing.T) {
	src := NewTokenSource(nil)
	if src.HasNext() {
		t.Error("HasNext() = true for empty source")
	}
}

func TestTokenSourceNextPastEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Next() on exhausted source did not panic")
		}
	}()

	src := NewTokenSource([]byte("+"))
	src.Next()
	src.Next()
}

func TestSyntaxErrorMessage(t *testing.T) {
	err := &SyntaxError{Byte: '#', Offset: 3}
	want := `syntax error: unrecognized instruction byte 0x23 ("#") at offset 3`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
