package vm

import (
	"fmt"

	"github.com/4atj/bfvm/compiler"
)

// ---------------------------------------------------------------------------
// Interpreter: tree-walking execution engine
// ---------------------------------------------------------------------------

// Interpreter executes a parsed syntax tree against a Context. Execution is
// single-threaded and synchronous; the only abort mechanism is the cycle
// budget check made before each node runs.
type Interpreter struct {
	ctx *Context
}

// NewInterpreter creates an interpreter bound to the given context.
func NewInterpreter(ctx *Context) *Interpreter {
	return &Interpreter{ctx: ctx}
}

// Run executes the program's top-level block. It returns nil on normal
// completion, a *CycleLimitError when the budget runs out, or the underlying
// I/O error if the output sink fails.
func (in *Interpreter) Run(program *compiler.Block) error {
	return in.exec(program)
}

// exec charges one cycle and runs a single node. Blocks and loop entries are
// charged like leaves; that keeps a loop with an empty body bounded by the
// budget instead of spinning forever.
func (in *Interpreter) exec(n compiler.Node) error {
	if err := in.ctx.ConsumeCycle(); err != nil {
		return err
	}

	switch node := n.(type) {
	case *compiler.Instruction:
		return in.execInstruction(node)

	case *compiler.Block:
		for _, child := range node.Nodes {
			if err := in.exec(child); err != nil {
				return err
			}
		}
		return nil

	case *compiler.Loop:
		for in.ctx.Cell() != 0 {
			if err := in.exec(node.Body); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("vm: unknown node type %T", n)
	}
}

func (in *Interpreter) execInstruction(instr *compiler.Instruction) error {
	switch instr.Op {
	case compiler.OpIncrement:
		in.ctx.SetCell(in.ctx.Cell() + 1)
	case compiler.OpDecrement:
		in.ctx.SetCell(in.ctx.Cell() - 1)
	case compiler.OpMoveRight:
		in.ctx.SetPointer(in.ctx.Pointer() + 1)
	case compiler.OpMoveLeft:
		in.ctx.SetPointer(in.ctx.Pointer() - 1)
	case compiler.OpPrint:
		return in.ctx.WriteByte(in.ctx.Cell())
	case compiler.OpRead:
		in.ctx.SetCell(in.ctx.ReadByte())
	default:
		return fmt.Errorf("vm: unknown instruction %v", instr.Op)
	}
	return nil
}
