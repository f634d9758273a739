package compiler

import "fmt"

// ---------------------------------------------------------------------------
// AST: syntax tree for the tape machine
// ---------------------------------------------------------------------------

// Node is the interface implemented by all syntax tree nodes. The node set is
// closed: *Instruction, *Block and *Loop are the only implementations, and the
// interpreter switches over them exhaustively. Trees are built once by the
// parser and never mutated afterwards.
type Node interface {
	node() // marker method
}

// Op identifies a leaf instruction.
type Op int

const (
	OpIncrement Op = iota // add 1 to the current cell, mod 256
	OpDecrement           // subtract 1 from the current cell, mod 256
	OpMoveRight           // add 1 to the pointer, mod tape length
	OpMoveLeft            // subtract 1 from the pointer, mod tape length
	OpPrint               // write the current cell to the output sink
	OpRead                // read one byte into the current cell, 0 at end of input
)

var opNames = map[Op]string{
	OpIncrement: "Increment",
	OpDecrement: "Decrement",
	OpMoveRight: "MoveRight",
	OpMoveLeft:  "MoveLeft",
	OpPrint:     "Print",
	OpRead:      "Read",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Instruction is a leaf node: one of the six non-structural instructions.
type Instruction struct {
	Op     Op
	Offset int // position of the instruction byte in the source stream
}

func (n *Instruction) node() {}

// Block is an ordered sequence of nodes executed once, front to back.
// A Block exclusively owns its children.
type Block struct {
	Nodes []Node
}

func (n *Block) node() {}

// Loop re-executes its Block while the current cell is nonzero, re-checking
// the cell after every full pass. It owns exactly one Block.
type Loop struct {
	Body *Block
}

func (n *Loop) node() {}
