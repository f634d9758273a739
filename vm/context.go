package vm

import (
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Context: mutable run state threaded through every node execution
// ---------------------------------------------------------------------------

const (
	// DefaultTapeLength is the number of cells on the tape.
	DefaultTapeLength = 1 << 16 // 65,536

	// DefaultCycleLimit bounds the number of node executions in one run.
	DefaultCycleLimit = 1 << 24 // 16,777,216
)

// Context owns everything a run mutates: the circular tape, the data pointer,
// the remaining cycle budget, and the input/output byte streams. It belongs
// to exactly one run and is passed explicitly to each interpreting call.
type Context struct {
	tape   []byte
	ptr    int
	limit  uint64 // budget the run started with
	cycles uint64 // budget remaining
	in     io.Reader
	out    io.Writer

	inDone   bool // input exhausted; reads yield 0 from here on
	readBuf  [1]byte
	writeBuf [1]byte
}

type flusher interface {
	Flush() error
}

// NewContext creates a run context. A tapeLength or cycleLimit of zero selects
// the default. A nil input means every read yields 0; a nil output discards.
func NewContext(tapeLength int, cycleLimit uint64, in io.Reader, out io.Writer) *Context {
	if tapeLength <= 0 {
		tapeLength = DefaultTapeLength
	}
	if cycleLimit == 0 {
		cycleLimit = DefaultCycleLimit
	}
	if out == nil {
		out = io.Discard
	}
	return &Context{
		tape:   make([]byte, tapeLength),
		limit:  cycleLimit,
		cycles: cycleLimit,
		in:     in,
		out:    out,
	}
}

// TapeLength returns the fixed length of the tape.
func (c *Context) TapeLength() int {
	return len(c.tape)
}

// Cell returns the value of the cell under the pointer.
func (c *Context) Cell() byte {
	return c.tape[c.ptr]
}

// SetCell stores a value in the cell under the pointer. Byte arithmetic at
// call sites wraps modulo 256 on its own, matching the cell invariant.
func (c *Context) SetCell(v byte) {
	c.tape[c.ptr] = v
}

// Pointer returns the current tape index.
func (c *Context) Pointer() int {
	return c.ptr
}

// SetPointer moves the pointer, reducing the index modulo the tape length.
// Negative intermediates wrap to the high end: -1 lands on tapeLength-1.
func (c *Context) SetPointer(i int) {
	n := len(c.tape)
	c.ptr = ((i % n) + n) % n
}

// Preload copies data into the front of the tape. Data longer than the tape
// is truncated to fit.
func (c *Context) Preload(data []byte) {
	copy(c.tape, data)
}

// ReadByte consumes one byte from the input stream. Exhausted or absent input
// yields 0; that is defined fallback behavior, not an error.
func (c *Context) ReadByte() byte {
	if c.in == nil || c.inDone {
		return 0
	}
	n, err := io.ReadFull(c.in, c.readBuf[:])
	if n == 0 || err != nil {
		c.inDone = true
		return 0
	}
	return c.readBuf[0]
}

// WriteByte sends one byte to the output sink and flushes immediately, so
// output stays observable even when the run later aborts.
func (c *Context) WriteByte(b byte) error {
	c.writeBuf[0] = b
	if _, err := c.out.Write(c.writeBuf[:]); err != nil {
		return fmt.Errorf("writing output byte: %w", err)
	}
	if f, ok := c.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing output: %w", err)
		}
	}
	return nil
}

// ConsumeCycle charges one budget unit for the node about to execute. Once
// the budget is spent it fails with a CycleLimitError and the run aborts.
func (c *Context) ConsumeCycle() error {
	if c.cycles == 0 {
		return &CycleLimitError{Limit: c.limit}
	}
	c.cycles--
	return nil
}

// CyclesUsed returns how many budget units the run has charged so far.
func (c *Context) CyclesUsed() uint64 {
	return c.limit - c.cycles
}

// CyclesRemaining returns the unspent budget.
func (c *Context) CyclesRemaining() uint64 {
	return c.cycles
}
