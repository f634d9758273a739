package compiler

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Token to node mapping
// ---------------------------------------------------------------------------

func TestParseLeafInstructions(t *testing.T) {
	block, err := Parse([]byte("+-><.,"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	wantOps := []Op{OpIncrement, OpDecrement, OpMoveRight, OpMoveLeft, OpPrint, OpRead}
	if len(block.Nodes) != len(wantOps) {
		t.Fatalf("len(Nodes) = %d, want %d", len(block.Nodes), len(wantOps))
	}

	for i, want := range wantOps {
		instr, ok := block.Nodes[i].(*Instruction)
		if !ok {
			t.Fatalf("Nodes[%d] is %T, want *Instruction", i, block.Nodes[i])
		}
		if instr.Op != want {
			t.Errorf("Nodes[%d].Op = %v, want %v", i, instr.Op, want)
		}
		if instr.Offset != i {
			t.Errorf("Nodes[%d].Offset = %d, want %d", i, instr.Offset, i)
		}
	}
}

func TestParseEmptyProgram(t *testing.T) {
	block, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(block.Nodes) != 0 {
		t.Errorf("len(Nodes) = %d, want 0", len(block.Nodes))
	}
}

// ---------------------------------------------------------------------------
// Loops and nesting
// ---------------------------------------------------------------------------

func TestParseLoop(t *testing.T) {
	block, err := Parse([]byte("+[-]"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(block.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(block.Nodes))
	}

	loop, ok := block.Nodes[1].(*Loop)
	if !ok {
		t.Fatalf("Nodes[1] is %T, want *Loop", block.Nodes[1])
	}
	if len(loop.Body.Nodes) != 1 {
		t.Fatalf("len(loop.Body.Nodes) = %d, want 1", len(loop.Body.Nodes))
	}
	instr, ok := loop.Body.Nodes[0].(*Instruction)
	if !ok || instr.Op != OpDecrement {
		t.Errorf("loop body = %v, want Decrement instruction", loop.Body.Nodes[0])
	}
}

func TestParseNestedLoops(t *testing.T) {
	block, err := Parse([]byte("[[[+]]]"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	depth := 0
	node := Node(block)
	for {
		b, ok := node.(*Block)
		if !ok {
			t.Fatalf("expected *Block at depth %d, got %T", depth, node)
		}
		if len(b.Nodes) != 1 {
			t.Fatalf("depth %d: len(Nodes) = %d, want 1", depth, len(b.Nodes))
		}
		if loop, ok := b.Nodes[0].(*Loop); ok {
			node = loop.Body
			depth++
			continue
		}
		if instr, ok := b.Nodes[0].(*Instruction); ok {
			if depth != 3 {
				t.Errorf("innermost instruction at depth %d, want 3", depth)
			}
			if instr.Op != OpIncrement {
				t.Errorf("innermost Op = %v, want Increment", instr.Op)
			}
			return
		}
		t.Fatalf("unexpected node %T", b.Nodes[0])
	}
}

// ---------------------------------------------------------------------------
// Syntax errors
// ---------------------------------------------------------------------------

func TestParseUnrecognizedByte(t *testing.T) {
	_, err := Parse([]byte("++#--"))
	if err == nil {
		t.Fatal("Parse() succeeded on unrecognized byte")
	}

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse() error is %T, want *SyntaxError", err)
	}
	if synErr.Byte != '#' {
		t.Errorf("SyntaxError.Byte = %q, want '#'", synErr.Byte)
	}
	if synErr.Offset != 2 {
		t.Errorf("SyntaxError.Offset = %d, want 2", synErr.Offset)
	}
}

func TestParseUnrecognizedByteInsideLoop(t *testing.T) {
	_, err := Parse([]byte("[+!]"))
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse() error = %v, want *SyntaxError", err)
	}
	if synErr.Byte != '!' || synErr.Offset != 2 {
		t.Errorf("SyntaxError = {%q, %d}, want {'!', 2}", synErr.Byte, synErr.Offset)
	}
}

// ---------------------------------------------------------------------------
// Unbalanced brackets: accepted silently, pinned down here
// ---------------------------------------------------------------------------

func TestParseStrayCloseBracket(t *testing.T) {
	block, err := Parse([]byte("]"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(block.Nodes) != 0 {
		t.Errorf("len(Nodes) = %d, want 0 (stray ']' terminates the empty top block)", len(block.Nodes))
	}
}

func TestParseStrayCloseBracketTruncates(t *testing.T) {
	// The ']' returns control from the top-level block; trailing bytes are
	// still consumed by nobody, so only the leading '+' survives.
	block, err := Parse([]byte("+]-"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(block.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(block.Nodes))
	}
	if instr := block.Nodes[0].(*Instruction); instr.Op != OpIncrement {
		t.Errorf("Nodes[0].Op = %v, want Increment", instr.Op)
	}
}

func TestParseUnmatchedOpenBracket(t *testing.T) {
	block, err := Parse([]byte("[+"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(block.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(block.Nodes))
	}
	loop, ok := block.Nodes[0].(*Loop)
	if !ok {
		t.Fatalf("Nodes[0] is %T, want *Loop", block.Nodes[0])
	}
	if len(loop.Body.Nodes) != 1 {
		t.Errorf("len(loop.Body.Nodes) = %d, want 1", len(loop.Body.Nodes))
	}
}
